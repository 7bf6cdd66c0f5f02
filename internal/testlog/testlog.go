// Package testlog builds hclog.Loggers that write through *testing.T, so
// a failing test's log lines show up attributed to that test instead of
// interleaved on a shared stderr.
package testlog

import (
	"testing"

	hclog "github.com/hashicorp/go-hclog"
)

// tWriter adapts a *testing.T into an io.Writer, stripping the single
// trailing newline hclog always appends (t.Log adds its own).
type tWriter struct {
	t *testing.T
}

func (w tWriter) Write(p []byte) (int, error) {
	n := len(p)
	if n > 0 && p[n-1] == '\n' {
		p = p[:n-1]
	}
	w.t.Log(string(p))
	return n, nil
}

// HCLogger returns an hclog.Logger at Trace level that writes through t.
func HCLogger(t *testing.T) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:            "test",
		Level:           hclog.Trace,
		Output:          tWriter{t: t},
		IncludeLocation: true,
	})
}
