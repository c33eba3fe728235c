package shared

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// SetupLogger configures a console logger on stderr at the named level
func SetupLogger(level string) (*log.Logger, error) {
	return NewLogger(os.Stderr, level)
}

// NewLogger builds a timestamped logger writing to w
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	}), nil
}

// SetupFileLogger appends log output to path, for commands that own the
// terminal. The returned closer closes the file.
func SetupFileLogger(path, level string) (*log.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger, err := NewLogger(f, level)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return logger, f, nil
}
