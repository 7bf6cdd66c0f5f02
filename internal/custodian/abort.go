package custodian

import "github.com/jwdevantier/tapdance/internal/faultinject"

// fatalAbort terminates the process after a root shutdown triggered by
// allocator exhaustion. It is a variable, not a direct call, so tests can
// substitute a non-fatal stand-in and observe that abort reached the
// point of termination without actually killing the test binary.
var fatalAbort = faultinject.Abort
