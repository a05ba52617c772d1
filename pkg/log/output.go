package log

import (
	"io"
	"os"
)

// ConsoleOutput writes formatted entries to standard error.
type ConsoleOutput struct{}

// NewConsoleOutput creates a console output.
func NewConsoleOutput() *ConsoleOutput { return &ConsoleOutput{} }

// Write implements Output.
func (o *ConsoleOutput) Write(_ *Entry, formatted []byte) error {
	_, err := os.Stderr.Write(formatted)
	return err
}

// Close implements Output.
func (o *ConsoleOutput) Close() error { return nil }

// WriterOutput adapts any io.Writer into an Output; used by tests and for
// log files opened by the caller.
type WriterOutput struct {
	W io.Writer
}

// NewWriterOutput creates an output backed by w.
func NewWriterOutput(w io.Writer) *WriterOutput { return &WriterOutput{W: w} }

// Write implements Output.
func (o *WriterOutput) Write(_ *Entry, formatted []byte) error {
	_, err := o.W.Write(formatted)
	return err
}

// Close implements Output.
func (o *WriterOutput) Close() error {
	if c, ok := o.W.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
