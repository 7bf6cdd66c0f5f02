package allocator

import (
	"testing"

	"github.com/shoenig/test/must"
)

func TestStd_Allocate(t *testing.T) {
	a := New()

	r, ok := a.Allocate(16)
	must.True(t, ok)
	must.Eq(t, 16, len(r))
}

func TestStd_Resize_PreservesPrefix(t *testing.T) {
	a := New()

	r, ok := a.Allocate(4)
	must.True(t, ok)
	copy(r, []byte{1, 2, 3, 4})

	grown, ok := a.Resize(r, 8)
	must.True(t, ok)
	must.Eq(t, 8, len(grown))
	must.Eq(t, Region{1, 2, 3, 4, 0, 0, 0, 0}, grown)

	shrunk, ok := a.Resize(grown, 2)
	must.True(t, ok)
	must.Eq(t, Region{1, 2}, shrunk)
}

func TestStd_Release_NilIsNoop(t *testing.T) {
	a := New()
	a.Release(nil)
}

func TestFault_FailsAfterLimit(t *testing.T) {
	f := NewFault(New(), 2)

	_, ok := f.Allocate(8)
	must.True(t, ok)

	_, ok = f.Allocate(8)
	must.True(t, ok)

	_, ok = f.Allocate(8)
	must.False(t, ok)
}

func TestFault_ZeroLimitFailsImmediately(t *testing.T) {
	f := NewFault(New(), 0)

	_, ok := f.Allocate(1)
	must.False(t, ok)
}
