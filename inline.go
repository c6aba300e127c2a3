// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"unsafe"
)

// InlineStorage is a Storage backed by a fixed region sized and aligned like
// T, co-located with the storage value itself. There is only ever one
// possible allocation, so its handle is the zero token.
//
// InlineStorage is not a StableStorage: the data lives inside the storage
// value, so copying or moving the value invalidates previously resolved
// addresses. Use it through the pointer returned by NewInlineStorage.
type InlineStorage[T any] struct {
	slot T
}

// NewInlineStorage returns an empty InlineStorage with room for one T, or
// anything smaller with a compatible alignment.
func NewInlineStorage[T any]() *InlineStorage[T] {
	return &InlineStorage[T]{}
}

// Resolve satisfies the Storage interface.
func (s *InlineStorage[T]) Resolve(handle Handle) unsafe.Pointer {
	_ = handle
	return unsafe.Pointer(&s.slot)
}

// Allocate satisfies the Storage interface. It succeeds exactly when the
// requested size and alignment both fit the fixed region, and always reports
// the full region as usable.
func (s *InlineStorage[T]) Allocate(layout Layout) (Handle, uintptr, error) {
	if layout.Align() <= unsafe.Alignof(s.slot) && layout.Size() <= unsafe.Sizeof(s.slot) {
		return Handle{}, unsafe.Sizeof(s.slot), nil
	}
	return Handle{}, 0, ErrAllocFailed
}

// Deallocate satisfies the Storage interface.
func (s *InlineStorage[T]) Deallocate(layout Layout, handle Handle) {
	_ = layout
	_ = handle
}

// Grow satisfies the Storage interface. The region is fixed, so growing just
// re-validates the new layout against it; there is never a move or copy.
func (s *InlineStorage[T]) Grow(oldLayout, newLayout Layout, handle Handle) (Handle, uintptr, error) {
	_ = oldLayout
	_ = handle
	return s.Allocate(newLayout)
}

// Shrink satisfies the Storage interface. Like Grow, it only re-validates.
func (s *InlineStorage[T]) Shrink(oldLayout, newLayout Layout, handle Handle) (Handle, uintptr, error) {
	_ = oldLayout
	_ = handle
	return s.Allocate(newLayout)
}
