package velibdata

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns the process logger, writing to stdout.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}

// NewETLLogger returns a logger that writes to stdout and appends to the
// per-file import error log. The caller closes the returned file handle when
// the run finishes.
func NewETLLogger(errorLogPath string) (*logrus.Logger, io.Closer, error) {
	f, err := os.OpenFile(errorLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open error log: %w", err)
	}
	log := NewLogger()
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return log, f, nil
}
