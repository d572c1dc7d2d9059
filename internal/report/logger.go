// Package report aggregates per-star scores and detection events for
// the end-of-run summary, and wraps the run's ambient logging and
// timestamp formatting (spec.md §6 --sort, spec.md §7 ambient
// logging).
package report

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

// Logger is a thin wrapper around github.com/charmbracelet/log, the
// teacher's logging library of choice (named in its go.mod, exercised
// here). Fatal startup errors print and exit with status -1 (spec.md
// §6's exit code table) from cmd/lenswatch, not from this package.
type Logger struct {
	*log.Logger
}

// NewLogger builds a Logger writing to w with timestamps enabled.
func NewLogger(w io.Writer) *Logger {
	return &Logger{Logger: log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})}
}

// SetLevel parses a level name ("debug", "info", "warn", "error") and
// applies it.
func (l *Logger) SetLevel(name string) error {
	var lvl, err = log.ParseLevel(name)
	if err != nil {
		return err
	}

	l.Logger.SetLevel(lvl)

	return nil
}

// reportFilenamePattern follows the teacher's C strftime use in
// beacon.go/xmit.go/kissutil.go; here via the pure-Go library already
// in the teacher's own go.mod.
const reportFilenamePattern = "lenswatch-report-%Y%m%dT%H%M%S.txt"

// DefaultReportFilename formats a run-start timestamp into a default
// report filename.
func DefaultReportFilename(t time.Time) (string, error) {
	var f, err = strftime.New(reportFilenamePattern)
	if err != nil {
		return "", err
	}

	return f.FormatString(t), nil
}
