package snapshot

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// DecodeError reports snapshot content that is not a JSON list of station
// observations. It covers both invalid syntax and a valid document of the
// wrong shape; the import pipeline counts both as the same error class.
type DecodeError struct {
	Msg string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode parses one snapshot payload into its station observations.
// Failures reading the stream (including a corrupt gzip envelope) are
// returned as plain errors; only malformed content yields a *DecodeError.
func Decode(r io.Reader, gzipped bool) ([]Observation, error) {
	if gzipped {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip open: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	var observations []Observation
	if err := json.Unmarshal(data, &observations); err != nil {
		return nil, &DecodeError{Msg: "content is not a JSON list of station observations", Err: err}
	}
	// a literal null unmarshals into a nil slice without error
	if observations == nil {
		return nil, &DecodeError{Msg: "content is not a JSON list of station observations"}
	}
	return observations, nil
}

// DecodeFile reads and decodes one snapshot file, selecting gzip by the .gz
// extension.
func DecodeFile(path string) ([]Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, strings.HasSuffix(path, ".gz"))
}
