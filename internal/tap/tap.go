// Package tap writes the Test Anything Protocol version 14 stream the
// harness emits on standard output, keeping a single disciplined writer
// between internal state and a protocol-shaped output stream.
package tap

import (
	"bufio"
	"fmt"
	"io"
)

// Writer emits a well-formed TAP version 14 stream. It is not safe for
// concurrent use; the harness runs tests one at a time, so it doesn't
// need to be.
type Writer struct {
	w io.Writer
}

// New wraps w as a TAP Writer.
func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Version writes the "TAP version 14" header line. Must be the first
// line written.
func (t *Writer) Version() {
	fmt.Fprintln(t.w, "TAP version 14")
}

// Plan writes the "1..N" plan line, fixing the test count before any
// result line is written.
func (t *Writer) Plan(n int) {
	fmt.Fprintf(t.w, "1..%d\n", n)
}

// Ok writes a passing result line for test i.
func (t *Writer) Ok(i int, display string) {
	fmt.Fprintf(t.w, "ok %d - %s\n", i, display)
}

// NotOk writes a failing result line for test i, with reason in
// parentheses.
func (t *Writer) NotOk(i int, display, reason string) {
	fmt.Fprintf(t.w, "not ok %d - %s (%s)\n", i, display, reason)
}

// Diagnostics streams r as TAP diagnostic lines: the first byte of each
// logical line is prefixed "#: ", internal newlines are preserved
// verbatim, and a trailing newline is synthesized if r's content doesn't
// end in one, so the next TAP line starts at column 0.
func (t *Writer) Diagnostics(r io.Reader) error {
	br := bufio.NewReader(r)
	freshLine := true
	for {
		chunk, err := br.ReadString('\n')
		if len(chunk) > 0 {
			if freshLine {
				if _, werr := io.WriteString(t.w, "#: "); werr != nil {
					return werr
				}
				freshLine = false
			}
			if _, werr := io.WriteString(t.w, chunk); werr != nil {
				return werr
			}
			if len(chunk) > 0 && chunk[len(chunk)-1] == '\n' {
				freshLine = true
			}
		}
		if err == io.EOF {
			if !freshLine {
				// EOF without a trailing newline: synthesize one so the
				// following TAP line starts at column 0.
				if _, werr := io.WriteString(t.w, "\n"); werr != nil {
					return werr
				}
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Truncated writes a continuation diagnostic line noting that captured
// output was cut off, layered on top of the diagnostic grammar above,
// not a replacement for it.
func (t *Writer) Truncated(humanSize string) {
	fmt.Fprintf(t.w, "#: ... (truncated, %s total)\n", humanSize)
}
