// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"fmt"
	"unsafe"
)

// Vec is a growable contiguous array backed by a single allocation of a
// Storage. Length and capacity are tracked in element counts; the capacity
// is derived from the byte count the backend actually reserved, which may
// exceed what was requested.
type Vec[T any] struct {
	storage  Storage
	handle   Handle
	length   int
	capacity int
}

// PushError is returned by Push when the storage cannot grow. It carries the
// value that could not be placed, so failure never destroys caller data.
type PushError[T any] struct {
	Value T
	Err   error
}

func (e *PushError[T]) Error() string {
	return fmt.Sprintf("storage: push failed: %v", e.Err)
}

func (e *PushError[T]) Unwrap() error { return e.Err }

// InsertError is returned by Insert. Err is ErrIndexOutOfRange when the
// index was past the length (no allocation attempted), or ErrAllocFailed
// when the storage could not grow. Value is the value that was not placed.
type InsertError[T any] struct {
	Value T
	Err   error
}

func (e *InsertError[T]) Error() string {
	return fmt.Sprintf("storage: insert failed: %v", e.Err)
}

func (e *InsertError[T]) Unwrap() error { return e.Err }

// NewVec constructs an empty Vec in the Global storage.
func NewVec[T any]() (*Vec[T], error) {
	return NewVecIn[T](Global{})
}

// NewVecIn constructs an empty Vec allocated in s, the same as
// VecWithCapacityIn(0, s).
func NewVecIn[T any](s Storage) (*Vec[T], error) {
	return VecWithCapacityIn[T](0, s)
}

// VecWithCapacityIn constructs a Vec with room for at least capacity
// elements allocated in s. The resulting capacity may be greater than
// requested because the backend may reserve more space.
func VecWithCapacityIn[T any](capacity int, s Storage) (*Vec[T], error) {
	layout, err := LayoutArrayOf[T](capacity)
	if err != nil {
		return nil, ErrAllocFailed
	}
	handle, usable, err := s.Allocate(layout)
	if err != nil {
		return nil, err
	}
	return &Vec[T]{
		storage:  s,
		handle:   handle,
		capacity: elemCount[T](usable),
	}, nil
}

// elemCount converts a usable byte count reported by a backend into an
// element capacity, saturating on the zero-size-element edge case.
func elemCount[T any](usable uintptr) int {
	var x T
	size := unsafe.Sizeof(x)
	if size == 0 {
		return maxInt
	}
	n := usable / size
	if n > uintptr(maxInt) {
		return maxInt
	}
	return int(n)
}

// VecFromRawParts reconstructs a Vec from a Storage, Handle, length, and
// capacity.
//
// handle must be a valid allocation in s of capacity elements of T, the
// first length of which are initialized. The opposite of IntoRawParts.
func VecFromRawParts[T any](s Storage, handle Handle, length, capacity int) *Vec[T] {
	return &Vec[T]{storage: s, handle: handle, length: length, capacity: capacity}
}

// IntoRawParts decomposes the Vec into its Storage, Handle, length, and
// capacity, transferring ownership of the allocation to the caller without
// touching elements or freeing memory. The opposite of VecFromRawParts.
func (v *Vec[T]) IntoRawParts() (Storage, Handle, int, int) {
	s, handle := v.storage, v.handle
	v.storage = nil
	return s, handle, v.length, v.capacity
}

// Len returns the number of elements.
func (v *Vec[T]) Len() int { return v.length }

// Cap returns the number of elements the Vec can hold before it reallocates.
func (v *Vec[T]) Cap() int { return v.capacity }

func (v *Vec[T]) ptr() unsafe.Pointer {
	return v.storage.Resolve(v.handle)
}

func (v *Vec[T]) elem(i int) *T {
	var x T
	return (*T)(unsafe.Add(v.ptr(), uintptr(i)*unsafe.Sizeof(x)))
}

// Slice returns the initialized elements. The slice aliases the allocation
// and is valid until the next growth, shrink, or drop.
func (v *Vec[T]) Slice() []T {
	return unsafe.Slice((*T)(v.ptr()), v.length)
}

// Get returns the address of element i.
func (v *Vec[T]) Get(i int) (*T, error) {
	if i < 0 || i >= v.length {
		return nil, ErrIndexOutOfRange
	}
	return v.elem(i), nil
}

// growTo grows the backing allocation to hold at least newCapacity elements.
// On failure the old handle and capacity are untouched.
func (v *Vec[T]) growTo(newCapacity int) error {
	newLayout, err := LayoutArrayOf[T](newCapacity)
	if err != nil {
		return ErrAllocFailed
	}
	handle, usable, err := v.storage.Grow(layoutArrayOfUnchecked[T](v.capacity), newLayout, v.handle)
	if err != nil {
		return err
	}
	v.handle = handle
	v.capacity = elemCount[T](usable)
	return nil
}

// ReserveExact makes room for at least extra more elements, without a growth
// factor. Prefer Reserve when more pushes will follow; exact requests forfeit
// amortized growth.
func (v *Vec[T]) ReserveExact(extra int) error {
	newCapacity, ok := addNonNeg(v.length, extra)
	if !ok {
		return ErrAllocFailed
	}
	if newCapacity < v.capacity {
		return nil
	}
	return v.growTo(newCapacity)
}

// Reserve makes room for at least extra more elements using a geometric
// growth policy: it first tries to double the current capacity (minimum 1)
// when that covers the requirement, and falls back to the exact requirement
// when the backend cannot honor the doubling. Against fixed-capacity
// backends this degrades to a one-shot exact request.
func (v *Vec[T]) Reserve(extra int) error {
	newCapacity, ok := addNonNeg(v.length, extra)
	if !ok {
		return ErrAllocFailed
	}
	if newCapacity <= v.capacity {
		return nil
	}
	if doubled := v.capacity * 2; doubled >= 0 {
		doubled = max(doubled, 1)
		if doubled > newCapacity {
			if err := v.growTo(doubled); err == nil {
				return nil
			}
		}
	}
	return v.growTo(newCapacity)
}

// addNonNeg adds two non-negative counts, reporting overflow or a negative
// operand.
func addNonNeg(a, b int) (int, bool) {
	if b < 0 {
		return 0, false
	}
	sum := a + b
	return sum, sum >= a
}

// Push adds value to the end of the Vec and returns its address. On
// allocation failure the value is handed back inside a PushError.
func (v *Vec[T]) Push(value T) (*T, error) {
	if err := v.Reserve(1); err != nil {
		return nil, &PushError[T]{Value: value, Err: err}
	}
	p := v.elem(v.length)
	*p = value
	v.length++
	return p, nil
}

// Insert places value at index, shifting later elements right. An index past
// the length fails with ErrIndexOutOfRange before any allocation is
// attempted; on allocation failure the value is handed back inside an
// InsertError.
func (v *Vec[T]) Insert(index int, value T) (*T, error) {
	if index < 0 || index > v.length {
		return nil, &InsertError[T]{Value: value, Err: ErrIndexOutOfRange}
	}
	if err := v.Reserve(1); err != nil {
		return nil, &InsertError[T]{Value: value, Err: err}
	}
	s := unsafe.Slice((*T)(v.ptr()), v.length+1)
	copy(s[index+1:], s[index:v.length])
	s[index] = value
	v.length++
	return &s[index], nil
}

// Pop removes and returns the last element, reporting false when empty.
// Capacity is unchanged.
func (v *Vec[T]) Pop() (T, bool) {
	if v.length == 0 {
		var zero T
		return zero, false
	}
	v.length--
	p := v.elem(v.length)
	value := *p
	var zero T
	*p = zero
	return value, true
}

// Remove removes and returns the element at index, shifting later elements
// left. O(length - index). Reports false when index is out of range.
func (v *Vec[T]) Remove(index int) (T, bool) {
	if index < 0 || index >= v.length {
		var zero T
		return zero, false
	}
	s := unsafe.Slice((*T)(v.ptr()), v.length)
	value := s[index]
	copy(s[index:], s[index+1:])
	var zero T
	s[v.length-1] = zero
	v.length--
	return value, true
}

// ExtendFromSlice appends the elements of values and returns the appended
// run inside the Vec. On failure prior contents are unchanged.
func (v *Vec[T]) ExtendFromSlice(values []T) ([]T, error) {
	if err := v.Reserve(len(values)); err != nil {
		return nil, err
	}
	s := unsafe.Slice((*T)(v.ptr()), v.length+len(values))
	copy(s[v.length:], values)
	v.length += len(values)
	return s[v.length-len(values) : v.length], nil
}

// ShrinkToFit releases unused tail capacity. Capacity may still exceed the
// length afterwards if the backend reserves more than requested.
func (v *Vec[T]) ShrinkToFit() error {
	if v.capacity == v.length {
		return nil
	}
	handle, usable, err := v.storage.Shrink(
		layoutArrayOfUnchecked[T](v.capacity),
		layoutArrayOfUnchecked[T](v.length),
		v.handle,
	)
	if err != nil {
		return err
	}
	v.handle = handle
	v.capacity = elemCount[T](usable)
	return nil
}

// IntoBoxedSlice shrinks the Vec to its exact length and reinterprets its
// raw parts as a BoxedSlice, transferring ownership without copying.
func (v *Vec[T]) IntoBoxedSlice() (*BoxedSlice[T], error) {
	if err := v.ShrinkToFit(); err != nil {
		return nil, err
	}
	s, handle, length, _ := v.IntoRawParts()
	return BoxedSliceFromRawParts[T](s, handle, length), nil
}

// IntoIter consumes the Vec into an owning, double-ended iterator.
func (v *Vec[T]) IntoIter() *VecIntoIter[T] {
	return newVecIntoIter(v)
}

// Drop clears every live element and releases the allocation, exactly once.
func (v *Vec[T]) Drop() {
	if v.storage == nil {
		return
	}
	clear(v.Slice())
	v.storage.Deallocate(layoutArrayOfUnchecked[T](v.capacity), v.handle)
	v.storage = nil
}
