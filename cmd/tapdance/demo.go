package main

import (
	"fmt"
	"time"

	"github.com/jwdevantier/tapdance/internal/assert"
	"github.com/jwdevantier/tapdance/internal/custodian"
	"github.com/jwdevantier/tapdance/internal/faultinject"
	"github.com/jwdevantier/tapdance/internal/tapdance"
)

// demoPlan registers the fixed set of tests this binary runs, in the
// order the harness executes them.
func demoPlan() tapdance.Plan {
	return tapdance.Plan{
		{Display: "test_program()", Body: testProgram},
		{Display: "test_add(2, 3, 5)", Body: testAdd(2, 3, 5)},
		{Display: "test_segfault()", Body: testSegfault},
		{Display: "test_add(2, 3, 6)", Body: testAdd(2, 3, 6)},
		{Display: "test_add(4, 8, 12)", Body: testAdd(4, 8, 12)},
		{Display: "test_hang()", Body: testHang},
		{Display: "test_double_shutdown()", Body: testDoubleShutdown},
		{Display: "test_nested_deferred()", Body: testNestedDeferred},
	}
}

// testProgram exercises nested allocation, a deferred cleanup, and a
// child scope, then performs an in-test shutdown before forcing a
// failure. The failing assertion aborts the child process, so the
// harness's own end-of-test shutdown never runs for this test.
func testProgram(c *custodian.Custodian) int {
	c.Alloc(100)
	c.Defer(nil, func(any) { fmt.Println("CLEANER CALLED") })
	c.Alloc(200)

	child := c.ChildCreate()
	child.Alloc(300)
	fmt.Println("SHOULD NOT SEE THIS")
	child.Alloc(20)

	c.Alloc(50)
	fmt.Println("in-test cleaning:")
	c.Shutdown()

	assert.That(1 == 2, "1 == 2")
	return 0
}

// testAdd returns a Body that asserts x+y == expected, then passes.
func testAdd(x, y, expected int) tapdance.Body {
	return func(*custodian.Custodian) int {
		assert.That(x+y == expected, "%d + %d != %d", x, y, expected)
		return 0
	}
}

// testSegfault forces a fault that must reach the parent as a delivered
// fatal signal, not a returned status. See internal/faultinject.Segfault
// for why this is a direct signal rather than a real invalid dereference.
func testSegfault(*custodian.Custodian) int {
	faultinject.Segfault()
	return 0
}

// testHang never returns within the watchdog's 10 seconds.
func testHang(*custodian.Custodian) int {
	faultinject.Hang(30 * time.Second)
	return 0
}

// testDoubleShutdown calls Shutdown on its root custodian twice before
// returning 0, demonstrating idempotence: the second call must perform
// no cleanup callbacks.
func testDoubleShutdown(c *custodian.Custodian) int {
	c.Shutdown()
	c.Shutdown()
	return 0
}

// testNestedDeferred allocs on the root, defers a cleanup, creates a
// child, allocs on the child, then returns 0, relying on the harness to
// shut the root down afterward. The deferred cleanup must run exactly
// once, after the child scope's entries are released.
func testNestedDeferred(c *custodian.Custodian) int {
	c.Alloc(16)
	c.Defer(nil, func(any) { fmt.Println("root cleanup") })

	child := c.ChildCreate()
	child.Alloc(8)

	return 0
}
