// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"unsafe"
)

// VecDeque is a double-ended queue over the same storage contract as Vec,
// laid out as a ring buffer: the live elements are the length entries
// starting at head, wrapping past the end of the buffer back to offset 0.
type VecDeque[T any] struct {
	storage  Storage
	handle   Handle
	head     int
	length   int
	capacity int
}

// NewDeque constructs an empty VecDeque in the Global storage.
func NewDeque[T any]() (*VecDeque[T], error) {
	return NewDequeIn[T](Global{})
}

// NewDequeIn constructs an empty VecDeque allocated in s.
func NewDequeIn[T any](s Storage) (*VecDeque[T], error) {
	return DequeWithCapacityIn[T](0, s)
}

// DequeWithCapacityIn constructs a VecDeque with room for at least capacity
// elements allocated in s. The resulting capacity may be greater than
// requested.
func DequeWithCapacityIn[T any](capacity int, s Storage) (*VecDeque[T], error) {
	layout, err := LayoutArrayOf[T](capacity)
	if err != nil {
		return nil, ErrAllocFailed
	}
	handle, usable, err := s.Allocate(layout)
	if err != nil {
		return nil, err
	}
	return &VecDeque[T]{
		storage:  s,
		handle:   handle,
		capacity: elemCount[T](usable),
	}, nil
}

// DequeFromRawParts reconstructs a VecDeque from a Storage, Handle, head,
// length, and capacity.
//
// handle must be a valid allocation in s of capacity elements of T, with the
// length entries starting at head (wrapping at capacity) initialized.
func DequeFromRawParts[T any](s Storage, handle Handle, head, length, capacity int) *VecDeque[T] {
	return &VecDeque[T]{storage: s, handle: handle, head: head, length: length, capacity: capacity}
}

// IntoRawParts decomposes the VecDeque into its Storage, Handle, head,
// length, and capacity without touching elements or freeing memory.
func (d *VecDeque[T]) IntoRawParts() (Storage, Handle, int, int, int) {
	s, handle := d.storage, d.handle
	d.storage = nil
	return s, handle, d.head, d.length, d.capacity
}

// Len returns the number of elements.
func (d *VecDeque[T]) Len() int { return d.length }

// Cap returns the number of elements the deque can hold before it
// reallocates.
func (d *VecDeque[T]) Cap() int { return d.capacity }

// IsEmpty reports whether the deque holds no elements.
func (d *VecDeque[T]) IsEmpty() bool { return d.length == 0 }

// IsContiguous reports whether the live range does not wrap past the end of
// the buffer.
func (d *VecDeque[T]) IsContiguous() bool {
	return d.head <= d.capacity-d.length
}

func (d *VecDeque[T]) ptr() unsafe.Pointer {
	return d.storage.Resolve(d.handle)
}

func (d *VecDeque[T]) buf() []T {
	return unsafe.Slice((*T)(d.ptr()), d.capacity)
}

// AsSlices returns the at most two contiguous runs of elements in logical
// front-to-back order: the run starting at head, then, if the data wraps,
// the run starting at offset 0.
func (d *VecDeque[T]) AsSlices() ([]T, []T) {
	s := d.buf()
	first := min(d.length, d.capacity-d.head)
	return s[d.head : d.head+first], s[:d.length-first]
}

// growTo grows the backing allocation to hold at least newCapacity elements,
// re-homing the wrapped tail run to the new high end of the region so that
// head-relative offsets keep their logical order. On failure the old handle,
// layout, and contents are untouched.
func (d *VecDeque[T]) growTo(newCapacity int) error {
	newLayout, err := LayoutArrayOf[T](newCapacity)
	if err != nil {
		return ErrAllocFailed
	}
	wasContiguous := d.IsContiguous()
	oldCapacity := d.capacity

	handle, usable, err := d.storage.Grow(layoutArrayOfUnchecked[T](d.capacity), newLayout, d.handle)
	if err != nil {
		return err
	}
	d.handle = handle
	d.capacity = elemCount[T](usable)

	if !wasContiguous {
		// The run that used to touch the old end of the buffer must move to
		// the new end, or the offsets implied by head would interleave the
		// two runs out of order.
		s := d.buf()
		newHead := d.head + d.capacity - oldCapacity
		copy(s[newHead:], s[d.head:oldCapacity])
		clear(s[d.head:newHead])
		d.head = newHead
	}
	return nil
}

// ReserveExact makes room for at least extra more elements, without a growth
// factor.
func (d *VecDeque[T]) ReserveExact(extra int) error {
	newCapacity, ok := addNonNeg(d.length, extra)
	if !ok {
		return ErrAllocFailed
	}
	if newCapacity < d.capacity {
		return nil
	}
	return d.growTo(newCapacity)
}

// Reserve makes room for at least extra more elements with the same
// geometric policy as Vec.Reserve.
func (d *VecDeque[T]) Reserve(extra int) error {
	newCapacity, ok := addNonNeg(d.length, extra)
	if !ok {
		return ErrAllocFailed
	}
	if newCapacity <= d.capacity {
		return nil
	}
	if doubled := d.capacity * 2; doubled >= 0 {
		doubled = max(doubled, 1)
		if doubled > newCapacity {
			if err := d.growTo(doubled); err == nil {
				return nil
			}
		}
	}
	return d.growTo(newCapacity)
}

// PushBack adds value to the back of the deque and returns its address. On
// allocation failure the value is handed back inside a PushError.
func (d *VecDeque[T]) PushBack(value T) (*T, error) {
	if err := d.Reserve(1); err != nil {
		return nil, &PushError[T]{Value: value, Err: err}
	}
	s := d.buf()
	i := d.head + d.length
	if i >= d.capacity {
		i -= d.capacity
	}
	s[i] = value
	d.length++
	return &s[i], nil
}

// PushFront adds value to the front of the deque and returns its address. On
// allocation failure the value is handed back inside a PushError.
func (d *VecDeque[T]) PushFront(value T) (*T, error) {
	if err := d.Reserve(1); err != nil {
		return nil, &PushError[T]{Value: value, Err: err}
	}
	s := d.buf()
	i := d.head - 1
	if i < 0 {
		i += d.capacity
	}
	s[i] = value
	d.head = i
	d.length++
	return &s[i], nil
}

// PopFront removes and returns the front element, reporting false when
// empty. Capacity is unchanged.
func (d *VecDeque[T]) PopFront() (T, bool) {
	if d.length == 0 {
		var zero T
		return zero, false
	}
	s := d.buf()
	value := s[d.head]
	var zero T
	s[d.head] = zero
	d.head++
	if d.head == d.capacity {
		d.head = 0
	}
	d.length--
	return value, true
}

// PopBack removes and returns the back element, reporting false when empty.
// Capacity is unchanged.
func (d *VecDeque[T]) PopBack() (T, bool) {
	if d.length == 0 {
		var zero T
		return zero, false
	}
	s := d.buf()
	i := d.head + d.length - 1
	if i >= d.capacity {
		i -= d.capacity
	}
	value := s[i]
	var zero T
	s[i] = zero
	d.length--
	return value, true
}

// MakeContiguous rotates the buffer so all elements occupy one contiguous
// run starting at offset 0, and returns that run.
//
// The wrapped case uses a three-reversal rotation of the whole buffer, which
// is in-place and O(capacity).
func (d *VecDeque[T]) MakeContiguous() []T {
	s := d.buf()
	if d.IsContiguous() {
		return s[d.head : d.head+d.length]
	}
	reverse(s[:d.head])
	reverse(s[d.head:])
	reverse(s)
	d.head = 0
	return s[:d.length]
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Drop clears both live runs and releases the allocation, exactly once.
func (d *VecDeque[T]) Drop() {
	if d.storage == nil {
		return
	}
	front, back := d.AsSlices()
	clear(front)
	clear(back)
	d.storage.Deallocate(layoutArrayOfUnchecked[T](d.capacity), d.handle)
	d.storage = nil
}
