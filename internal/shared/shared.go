// package shared defines shared helpers
package shared

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true, Prefix: "ga4x"}
	return log.NewWithOptions(w, opts)
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// ParseLogLevel maps a level name (debug, info, warn, error, fatal) to a [log.Level].
func ParseLogLevel(name string) (log.Level, error) {
	if name == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("%w: log level %q", ErrInvalidFlag, name)
	}
	return lvl, nil
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// IsID reports whether s parses as a [uuid.UUID].
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
