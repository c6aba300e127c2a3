// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"unsafe"
)

// Box is a single-owner container holding exactly one T inside one
// allocation of a Storage.
type Box[T any] struct {
	storage Storage
	handle  Handle
}

// NewBox allocates value in the Global storage.
func NewBox[T any](value T) (*Box[T], error) {
	return NewBoxIn(value, Global{})
}

// NewBoxIn allocates room for one T in s and moves value into it.
func NewBoxIn[T any](value T, s Storage) (*Box[T], error) {
	handle, _, err := s.Allocate(LayoutOf[T]())
	if err != nil {
		return nil, err
	}
	*(*T)(s.Resolve(handle)) = value
	return &Box[T]{storage: s, handle: handle}, nil
}

// Get returns the address of the contained value. The handle is resolved on
// every call rather than cached, so the address stays correct even for
// backends that are not StableStorage.
func (b *Box[T]) Get() *T {
	return (*T)(b.storage.Resolve(b.handle))
}

// Set overwrites the contained value.
func (b *Box[T]) Set(value T) {
	*b.Get() = value
}

// IntoInner moves the value out of the Box and releases the allocation. The
// Box must not be used afterwards.
func (b *Box[T]) IntoInner() T {
	value := *b.Get()
	s, handle := b.IntoRawParts()
	var zero T
	*(*T)(s.Resolve(handle)) = zero
	s.Deallocate(LayoutOf[T](), handle)
	return value
}

// IntoRawParts decomposes the Box into its Storage and Handle, transferring
// ownership of the allocation to the caller without reading the value or
// freeing memory. The opposite of BoxFromRawParts.
func (b *Box[T]) IntoRawParts() (Storage, Handle) {
	s, handle := b.storage, b.handle
	b.storage = nil
	return s, handle
}

// BoxFromRawParts reconstructs a Box from a Storage and Handle.
//
// handle must be a valid allocation in s of at least the size and alignment
// of T, holding a valid value of T. The opposite of (*Box[T]).IntoRawParts.
func BoxFromRawParts[T any](s Storage, handle Handle) *Box[T] {
	return &Box[T]{storage: s, handle: handle}
}

// Drop clears the contained value and releases the allocation, exactly once.
func (b *Box[T]) Drop() {
	if b.storage == nil {
		return
	}
	var zero T
	*b.Get() = zero
	b.storage.Deallocate(LayoutOf[T](), b.handle)
	b.storage = nil
}

// BoxedSlice owns one allocation holding a fixed number of contiguous
// elements. It is the slice counterpart of Box: handles carry no metadata by
// design, so the element count is kept out of band and combined with the
// resolved address on access.
//
// A BoxedSlice is produced by Vec.IntoBoxedSlice or BoxedSliceFromRawParts.
type BoxedSlice[T any] struct {
	storage Storage
	handle  Handle
	length  int
}

// BoxedSliceFromRawParts reconstructs a BoxedSlice from a Storage, a Handle,
// and its out-of-band metadata, the element count.
//
// handle must be a valid allocation in s of exactly length elements of T,
// all initialized. The opposite of (*BoxedSlice[T]).IntoRawParts.
func BoxedSliceFromRawParts[T any](s Storage, handle Handle, length int) *BoxedSlice[T] {
	return &BoxedSlice[T]{storage: s, handle: handle, length: length}
}

// IntoRawParts decomposes the BoxedSlice into its Storage, Handle, and
// element count without freeing memory.
func (b *BoxedSlice[T]) IntoRawParts() (Storage, Handle, int) {
	s, handle := b.storage, b.handle
	b.storage = nil
	return s, handle, b.length
}

// Len returns the element count.
func (b *BoxedSlice[T]) Len() int {
	return b.length
}

// Slice returns the elements. The slice is valid until the storage moves or
// the BoxedSlice is dropped.
func (b *BoxedSlice[T]) Slice() []T {
	return unsafe.Slice((*T)(b.storage.Resolve(b.handle)), b.length)
}

// Drop clears the elements and releases the allocation, exactly once.
func (b *BoxedSlice[T]) Drop() {
	if b.storage == nil {
		return
	}
	clear(b.Slice())
	b.storage.Deallocate(layoutArrayOfUnchecked[T](b.length), b.handle)
	b.storage = nil
}

// BoxedStr owns one allocation holding a fixed run of UTF-8 bytes, the
// string counterpart of BoxedSlice. Produced by String.IntoBoxedStr.
type BoxedStr struct {
	storage Storage
	handle  Handle
	length  int
}

// BoxedStrFromRawParts reconstructs a BoxedStr from a Storage, a Handle, and
// the byte count.
//
// handle must be a valid allocation in s of exactly length initialized bytes
// forming valid UTF-8.
func BoxedStrFromRawParts(s Storage, handle Handle, length int) *BoxedStr {
	return &BoxedStr{storage: s, handle: handle, length: length}
}

// IntoRawParts decomposes the BoxedStr without freeing memory.
func (b *BoxedStr) IntoRawParts() (Storage, Handle, int) {
	s, handle := b.storage, b.handle
	b.storage = nil
	return s, handle, b.length
}

// Len returns the byte count.
func (b *BoxedStr) Len() int {
	return b.length
}

// Str returns the contents. The string header aliases the allocation and is
// valid until the BoxedStr is dropped.
func (b *BoxedStr) Str() string {
	if b.length == 0 {
		return ""
	}
	return unsafe.String((*byte)(b.storage.Resolve(b.handle)), b.length)
}

// Drop clears the bytes and releases the allocation, exactly once.
func (b *BoxedStr) Drop() {
	if b.storage == nil {
		return
	}
	if b.length > 0 {
		clear(unsafe.Slice((*byte)(b.storage.Resolve(b.handle)), b.length))
	}
	b.storage.Deallocate(layoutArrayOfUnchecked[byte](b.length), b.handle)
	b.storage = nil
}
