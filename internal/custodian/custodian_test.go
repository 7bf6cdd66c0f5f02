package custodian

import (
	"testing"

	"github.com/jwdevantier/tapdance/internal/allocator"
	"github.com/shoenig/test/must"
	"github.com/stretchr/testify/require"
)

func TestShutdown_Idempotent(t *testing.T) {
	c := New(nil, allocator.New())
	c.Alloc(8)

	var calls int
	c.Defer(nil, func(any) { calls++ })

	c.Shutdown()
	must.Eq(t, 1, calls)

	// second shutdown performs no cleanup and doesn't panic on an empty
	// stack.
	c.Shutdown()
	must.Eq(t, 1, calls)
}

func TestShutdown_LIFOOrder(t *testing.T) {
	c := New(nil, allocator.New())

	var order []string
	c.Defer("A", func(any) { order = append(order, "A") })
	c.Defer("B", func(any) { order = append(order, "B") })
	c.Defer("C", func(any) { order = append(order, "C") })

	c.Shutdown()

	require.Equal(t, []string{"C", "B", "A"}, order)
}

func TestShutdown_RecursiveChildBeforeParentEntry(t *testing.T) {
	c := New(nil, allocator.New())

	var order []string
	c.Defer("before-child", func(any) { order = append(order, "before-child") })

	child := c.ChildCreate()
	child.Defer("child-1", func(any) { order = append(order, "child-1") })
	child.Defer("child-2", func(any) { order = append(order, "child-2") })

	c.Defer("after-child", func(any) { order = append(order, "after-child") })

	c.Shutdown()

	require.Equal(t, []string{"after-child", "child-2", "child-1", "before-child"}, order)
}

func TestDefer_NilCleanupStillReclaimsEntry(t *testing.T) {
	c := New(nil, allocator.New())

	c.Defer("ignored-handle", nil)
	var ran bool
	c.Defer(nil, func(any) { ran = true })

	c.Shutdown()
	must.True(t, ran)
	must.Nil(t, c.stack)
}

func TestChildCreate_SharesParentAllocator(t *testing.T) {
	a := allocator.New()
	c := New(nil, a)
	child := c.ChildCreate()

	must.Eq(t, c.alloc, child.alloc)
	must.Eq(t, c, child.parent)
}

func TestAlloc_ReturnsRequestedSize(t *testing.T) {
	c := New(nil, allocator.New())
	r := c.Alloc(32)
	must.Eq(t, 32, len(r))
}

func TestAbort_ShutsDownRootAndTerminates(t *testing.T) {
	terminated := false
	old := fatalAbort
	fatalAbort = func() { terminated = true }
	defer func() { fatalAbort = old }()

	root := New(nil, allocator.New())
	var rootCleaned bool
	root.Defer(nil, func(any) { rootCleaned = true })

	mid := root.ChildCreate()
	leaf := mid.ChildCreate()

	faulty := allocator.NewFault(allocator.New(), 0)
	leaf.alloc = faulty

	// Allocating on the deeply nested leaf must walk all the way to the
	// root, shut the entire tree down, and then terminate — not just
	// shut down the leaf.
	leaf.Alloc(4)

	must.True(t, rootCleaned)
	must.True(t, terminated)
	must.Nil(t, root.stack)
}

func TestAbort_FromChildDoesNotDoublyShutdownChild(t *testing.T) {
	old := fatalAbort
	fatalAbort = func() {}
	defer func() { fatalAbort = old }()

	root := New(nil, allocator.New())
	child := root.ChildCreate()

	var calls int
	child.Defer(nil, func(any) { calls++ })

	faulty := allocator.NewFault(allocator.New(), 0)
	child.alloc = faulty
	child.Alloc(1)

	must.Eq(t, 1, calls)
}
