package custodian

import "github.com/jwdevantier/tapdance/internal/allocator"

// entry is one unit on a Custodian's stack: three concrete types
// satisfying one interface, each carrying its own prev link and knowing
// how to release itself.
type entry interface {
	prevEntry() entry
	release(a allocator.Allocator)
}

// allocEntry backs a plain custodian.Alloc region. Releasing it returns
// the region to the allocator; the region itself needs no further
// teardown.
type allocEntry struct {
	prev   entry
	region allocator.Region
}

func (e *allocEntry) prevEntry() entry { return e.prev }

func (e *allocEntry) release(a allocator.Allocator) {
	a.Release(e.region)
}

// deferredEntry backs a custodian.Defer registration: an opaque handle
// paired with a cleanup callable, invoked at release time.
type deferredEntry struct {
	prev    entry
	handle  any
	cleanup func(any)
}

func (e *deferredEntry) prevEntry() entry { return e.prev }

func (e *deferredEntry) release(allocator.Allocator) {
	if e.cleanup != nil {
		e.cleanup(e.handle)
	}
}

// childEntry backs an embedded child Custodian. Releasing it recursively
// shuts the child down first.
type childEntry struct {
	prev  entry
	child *Custodian
}

func (e *childEntry) prevEntry() entry { return e.prev }

func (e *childEntry) release(allocator.Allocator) {
	e.child.Shutdown()
}
