// Package tapdance defines the test descriptor and plan types the
// isolated test runner consumes. Whatever registers tests (hand-written,
// as in cmd/tapdance, or generated) produces values of these types.
package tapdance

import "github.com/jwdevantier/tapdance/internal/custodian"

// Body is a test function. It receives the root custodian for this test
// run and returns a status: 0 for pass, non-zero for fail. A Body that
// terminates the process instead of returning (by signal, by calling
// faultinject.Abort, or by hanging past the watchdog) is also a failure,
// classified by the runner rather than by its return value.
type Body func(c *custodian.Custodian) int

// Test pairs a display string (used verbatim in TAP output, and may embed
// argument literals, e.g. "test_add(2, 3, 5)") with its Body.
type Test struct {
	Display string
	Body    Body
}

// Plan is the fixed, ordered sequence of tests emitted as "1..N" before
// the first result and consumed by the runner in index order, starting
// at 1.
type Plan []Test
