package logging

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
)

// LogFilePath builds a log file path using OS-appropriate path separators.
// Each hunt session gets its own timestamped file.
func LogFilePath(logsDir string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("arcoin.%s.log", sessionStart.Format("20060102_150405")),
	)
}

// NewGelfWriter connects a GELF UDP writer for shipping logs to Graylog.
// The returned writer is safe to hand to the slog manager as an extra sink.
func NewGelfWriter(addr string) (*gelf.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("gelf writer to %s: %w", addr, err)
	}
	w.Facility = "arcoin"
	return w, nil
}
