// Package output provides consistent formatting for operator-facing
// diagnostics. Structured results are emitted as JSON elsewhere; this
// writer only carries human-readable notices and errors.
package output

import (
	"fmt"
	"io"
)

// Writer provides formatted diagnostic output.
type Writer struct {
	out io.Writer
}

// New creates a new output Writer.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Notice prints an informational message.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Notice(msg string) {
	_, _ = fmt.Fprintln(w.out, msg)
}

// Noticef prints a formatted informational message.
func (w *Writer) Noticef(format string, args ...any) {
	w.Notice(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	_, _ = fmt.Fprintf(w.out, "error: %s\n", msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Line prints a raw line without any prefix.
func (w *Writer) Line(msg string) {
	_, _ = fmt.Fprintln(w.out, msg)
}
