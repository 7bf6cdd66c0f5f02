// Package assert is the assertion primitive a test body calls from inside
// its own isolated child process. A failed assertion must crash the
// child (so the parent observes a fatal signal), not merely report a
// failure the way testify or shoenig assertions do against a *testing.T,
// since there is no *testing.T inside an isolated test's child process.
package assert

import (
	"fmt"
	"os"

	"github.com/jwdevantier/tapdance/internal/faultinject"
)

// That aborts the current process with faultinject.Abort if cond is
// false, first writing the formatted message to stderr so it lands in the
// test's capture file and is replayed as a TAP diagnostic.
func That(cond bool, format string, args ...any) {
	if cond {
		return
	}
	fmt.Fprintf(os.Stderr, "assertion failed: "+format+"\n", args...)
	faultinject.Abort()
}
