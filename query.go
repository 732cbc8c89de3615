package velibdata

import (
	"strconv"
	"strings"
)

type QueryError struct{ Msg string }

func (e *QueryError) Error() string { return e.Msg }

// parseLimit parses a limit query parameter, falling back to def when absent.
// Values above max are rejected to keep result sets bounded.
func parseLimit(s string, def, max int) (int, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return 0, &QueryError{Msg: "limit must be a positive integer"}
	}
	if v > max {
		return 0, &QueryError{Msg: "limit must be at most " + itoa(max)}
	}
	return v, nil
}

func itoa(v int) string { return strconv.Itoa(v) }

// parseOptionalBool parses flag parameters like electric=true. Empty input
// means "no filter" and returns a nil pointer.
func parseOptionalBool(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return nil, &QueryError{Msg: "boolean parameter must be true or false"}
	}
	return &v, nil
}
