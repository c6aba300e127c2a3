// SPDX-License-Identifier: Apache-2.0

package storage

// rcInner is the single allocation behind every clone of an Rc: the strong
// count and the value, with no separate indirection.
type rcInner[T any] struct {
	strong uintptr
	value  T
}

// Rc is a shared-ownership container. Every clone physically owns a storage
// value, obtained through MakeSharedCopy, yet all clones observe the same
// allocation; the embedded strong count decides when the value is destroyed
// and the allocation freed.
//
// Rc is not safe for concurrent use: the strong count is unsynchronized.
type Rc[T any] struct {
	storage ShareableStorage
	handle  Handle
}

// NewRc allocates value in the Global storage.
func NewRc[T any](value T) (*Rc[T], error) {
	return NewRcIn(value, Global{})
}

// NewRcIn allocates one {strong count, value} region in s. The new Rc is the
// only reference, so the count starts at 1.
func NewRcIn[T any](value T, s ShareableStorage) (*Rc[T], error) {
	b, err := NewBoxIn(rcInner[T]{strong: 1, value: value}, s)
	if err != nil {
		return nil, err
	}
	_, handle := b.IntoRawParts()
	return &Rc[T]{storage: s, handle: handle}, nil
}

func (rc *Rc[T]) inner() *rcInner[T] {
	return (*rcInner[T])(rc.storage.Resolve(rc.handle))
}

// Get returns the address of the shared value.
func (rc *Rc[T]) Get() *T {
	return &rc.inner().value
}

// StrongCount returns the number of live clones referencing the allocation.
func (rc *Rc[T]) StrongCount() int {
	return int(rc.inner().strong)
}

// Clone increments the strong count and returns a new Rc whose storage is an
// aliasing copy of this one's. A saturated count is a logic bug, not a
// recoverable condition, and panics.
func (rc *Rc[T]) Clone() *Rc[T] {
	inner := rc.inner()
	if inner.strong == ^uintptr(0) {
		panic("storage: rc strong count overflow")
	}
	inner.strong++
	return &Rc[T]{storage: rc.storage.MakeSharedCopy(), handle: rc.handle}
}

// IntoInner moves the value out if this is the only remaining reference.
// Otherwise it reports false and leaves the Rc unchanged and usable.
func (rc *Rc[T]) IntoInner() (T, bool) {
	inner := rc.inner()
	if inner.strong != 1 {
		var zero T
		return zero, false
	}
	value := inner.value
	*inner = rcInner[T]{}
	rc.storage.Deallocate(LayoutOf[rcInner[T]](), rc.handle)
	rc.storage = nil
	return value, true
}

// Drop releases this reference, exactly once per Rc. The clone that brings
// the strong count to zero clears the value and frees the allocation.
func (rc *Rc[T]) Drop() {
	if rc.storage == nil {
		return
	}
	inner := rc.inner()
	if inner.strong == 0 {
		panic("storage: rc strong count underflow")
	}
	inner.strong--
	if inner.strong == 0 {
		*inner = rcInner[T]{}
		rc.storage.Deallocate(LayoutOf[rcInner[T]](), rc.handle)
	}
	rc.storage = nil
}
