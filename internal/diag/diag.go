// Package diag holds the logger used to report skipped paths, elements and
// images. Skips never abort a page; they are only logged.
package diag

import (
	"io"
	"log"
	"os"
)

var logger = log.New(os.Stderr, "pagecrop: ", log.LstdFlags)

// SetOutput redirects diagnostic output. Pass io.Discard to silence it,
// nil to go back to stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	logger.SetOutput(w)
}

// Logger returns the shared logger
func Logger() *log.Logger {
	return logger
}

// Printf logs a formatted diagnostic line
func Printf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}
