// Package custodian implements a hierarchical, stack-ordered resource
// arena: allocations, deferred cleanups, and nested child scopes are
// released in strict LIFO order, and a failure anywhere in the tree can
// unwind the whole tree from any node via Abort. Resources acquired by a
// child scope are always released before the entries its parent acquired
// around it, the same way a task's resources are released before the
// allocation they belong to is torn down.
package custodian

import "github.com/jwdevantier/tapdance/internal/allocator"

// Custodian is a node in the resource-tracking forest. The zero value is
// not usable; construct one with New or ChildCreate.
type Custodian struct {
	stack  entry
	alloc  allocator.Allocator
	parent *Custodian
}

// New initializes a fresh root or child Custodian. parent may be nil,
// denoting a root. Construction never fails.
func New(parent *Custodian, alloc allocator.Allocator) *Custodian {
	return &Custodian{alloc: alloc, parent: parent}
}

// Alloc returns a Region of size bytes that this Custodian exclusively
// owns until Shutdown. On allocator exhaustion it calls abort, which does
// not return.
func (c *Custodian) Alloc(size int) allocator.Region {
	r, ok := c.alloc.Allocate(size)
	if !ok {
		c.abort()
	}
	c.stack = &allocEntry{prev: c.stack, region: r}
	return r
}

// Defer registers handle/cleanup as a deferred resource: cleanup(handle)
// runs when this Custodian's stack unwinds to this entry. handle and
// cleanup may both be nil; a nil cleanup makes release a no-op for the
// handle, but the entry's own bookkeeping is still reclaimed in order.
//
// Defer itself never fails: no allocation backs a deferred entry beyond
// ordinary Go heap allocation of the entry struct, so there's no
// allocator call to escalate on failure.
func (c *Custodian) Defer(handle any, cleanup func(any)) {
	c.stack = &deferredEntry{prev: c.stack, handle: handle, cleanup: cleanup}
}

// ChildCreate returns a new child Custodian sharing this node's
// Allocator. The child is pushed onto this node's stack as a child-scope
// entry, so it is released (recursively shut down) in its turn when this
// node's Shutdown walks past it.
func (c *Custodian) ChildCreate() *Custodian {
	child := New(c, c.alloc)
	c.stack = &childEntry{prev: c.stack, child: child}
	return child
}

// Shutdown releases every entry on this node's stack in strict LIFO
// order, then empties the stack. Shutdown is idempotent: calling it again
// on an already-empty stack performs no cleanup and is not an error.
func (c *Custodian) Shutdown() {
	for e := c.stack; e != nil; e = e.prevEntry() {
		e.release(c.alloc)
	}
	c.stack = nil
}

// abort walks parent links to the root, shuts the whole tree down, and
// unconditionally terminates the process. It never returns.
func (c *Custodian) abort() {
	root := c
	for root.parent != nil {
		root = root.parent
	}
	root.Shutdown()
	fatalAbort()
}
