package allocator

// Fault wraps another Allocator and fails Allocate/Resize once the number
// of successful allocations it has granted reaches Limit. It exists so
// tests can exercise the custodian's abort path deterministically instead
// of waiting on real OOM.
type Fault struct {
	Inner Allocator
	Limit int

	granted int
}

// NewFault returns a Fault allocator delegating to inner and failing the
// (limit+1)th and subsequent allocation requests.
func NewFault(inner Allocator, limit int) *Fault {
	return &Fault{Inner: inner, Limit: limit}
}

func (f *Fault) Allocate(size int) (Region, bool) {
	if f.granted >= f.Limit {
		return nil, false
	}
	r, ok := f.Inner.Allocate(size)
	if ok {
		f.granted++
	}
	return r, ok
}

func (f *Fault) Release(r Region) {
	f.Inner.Release(r)
}

func (f *Fault) Resize(r Region, newSize int) (Region, bool) {
	if f.granted >= f.Limit {
		return r, false
	}
	out, ok := f.Inner.Resize(r, newSize)
	if ok {
		f.granted++
	}
	return out, ok
}
