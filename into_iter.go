// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"unsafe"
)

// VecIntoIter is an owning, double-ended iterator produced by consuming a
// Vec. The elements still inside the buffer are the range
// [start, start+length); whatever remains there when the iterator is
// dropped is destroyed exactly once, regardless of how many elements were
// consumed from either end first.
//
// The iterator is fused: once empty it stays empty.
type VecIntoIter[T any] struct {
	storage  Storage
	handle   Handle
	start    int
	length   int
	capacity int
}

func newVecIntoIter[T any](v *Vec[T]) *VecIntoIter[T] {
	s, handle, length, capacity := v.IntoRawParts()
	return &VecIntoIter[T]{
		storage:  s,
		handle:   handle,
		length:   length,
		capacity: capacity,
	}
}

func (it *VecIntoIter[T]) elem(i int) *T {
	var x T
	return (*T)(unsafe.Add(it.storage.Resolve(it.handle), uintptr(i)*unsafe.Sizeof(x)))
}

// Next removes and returns the front element, reporting false when the
// iterator is empty.
func (it *VecIntoIter[T]) Next() (T, bool) {
	if it.length == 0 {
		var zero T
		return zero, false
	}
	p := it.elem(it.start)
	value := *p
	var zero T
	*p = zero
	it.start++
	it.length--
	return value, true
}

// NextBack removes and returns the last remaining element without moving the
// front, reporting false when the iterator is empty.
func (it *VecIntoIter[T]) NextBack() (T, bool) {
	if it.length == 0 {
		var zero T
		return zero, false
	}
	it.length--
	p := it.elem(it.start + it.length)
	value := *p
	var zero T
	*p = zero
	return value, true
}

// Len returns the exact number of remaining elements.
func (it *VecIntoIter[T]) Len() int {
	return it.length
}

// Slice returns the remaining elements. The slice aliases the allocation and
// is valid until the next Next, NextBack, or Drop.
func (it *VecIntoIter[T]) Slice() []T {
	if it.length == 0 {
		return nil
	}
	return unsafe.Slice(it.elem(it.start), it.length)
}

// Drop clears the remaining unread elements and releases the backing
// allocation, each exactly once.
func (it *VecIntoIter[T]) Drop() {
	if it.storage == nil {
		return
	}
	clear(it.Slice())
	it.storage.Deallocate(layoutArrayOfUnchecked[T](it.capacity), it.handle)
	it.storage = nil
}
