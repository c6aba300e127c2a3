// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"unsafe"
)

// Global is the default Storage. It delegates to the process heap, supports
// any number of live allocations, and is freely copyable: every copy aliases
// the same (stateless) heap service, so Global is also a ShareableStorage.
type Global struct{}

var (
	_ MultipleStorage  = Global{}
	_ StableStorage    = Global{}
	_ ShareableStorage = Global{}
)

// zeroSized is the address behind every zero-size allocation. It is never
// read or written through, only used as a dangling non-nil pointer.
var zeroSized uint64

// Resolve satisfies the Storage interface. The sentinel handle of a
// zero-size allocation resolves to a dangling non-nil address, since such an
// allocation has no storage of its own.
func (Global) Resolve(handle Handle) unsafe.Pointer {
	if handle.ptr == nil {
		return unsafe.Pointer(&zeroSized)
	}
	return handle.ptr
}

// Allocate satisfies the Storage interface.
//
// Zero-size requests return a sentinel handle carrying only the requested
// alignment, without touching the heap: a zero-size allocation has no
// addressable storage.
func (Global) Allocate(layout Layout) (Handle, uintptr, error) {
	if layout.Size() == 0 {
		return Handle{off: layout.Align()}, 0, nil
	}
	ptr, usable := heapAlloc(layout)
	if ptr == nil {
		return Handle{}, 0, ErrAllocFailed
	}
	return Handle{ptr: ptr}, usable, nil
}

// Deallocate satisfies the Storage interface. Dropping the handle releases
// the last reference the heap service holds on the block.
func (Global) Deallocate(layout Layout, handle Handle) {
	_ = layout
	_ = handle
}

// Grow satisfies the Storage interface.
func (g Global) Grow(oldLayout, newLayout Layout, handle Handle) (Handle, uintptr, error) {
	return g.realloc(oldLayout, newLayout, handle)
}

// Shrink satisfies the Storage interface.
func (g Global) Shrink(oldLayout, newLayout Layout, handle Handle) (Handle, uintptr, error) {
	return g.realloc(oldLayout, newLayout, handle)
}

// realloc reshapes an allocation from oldLayout to newLayout. When the
// existing block already covers the new layout the handle is returned as is;
// otherwise a new block is allocated, the overlap copied, and the old block
// released. On failure the old allocation is left in place and its handle
// stays valid.
func (g Global) realloc(oldLayout, newLayout Layout, handle Handle) (Handle, uintptr, error) {
	switch {
	case newLayout.Size() == 0:
		// Nothing to preserve; the old block is released and the caller
		// gets the zero-size sentinel for the new alignment.
		g.Deallocate(oldLayout, handle)
		return Handle{off: newLayout.Align()}, 0, nil
	case oldLayout.Size() == 0:
		return g.Allocate(newLayout)
	case newLayout.Size() <= oldLayout.Size() && newLayout.Align() <= oldLayout.Align():
		return handle, oldLayout.Size(), nil
	default:
		newHandle, usable, err := g.Allocate(newLayout)
		if err != nil {
			return Handle{}, 0, err
		}
		n := min(oldLayout.Size(), newLayout.Size())
		copy(
			unsafe.Slice((*byte)(newHandle.ptr), n),
			unsafe.Slice((*byte)(handle.ptr), n),
		)
		g.Deallocate(oldLayout, handle)
		return newHandle, usable, nil
	}
}

// MultipleAllocations satisfies the MultipleStorage marker.
func (Global) MultipleAllocations() {}

// StableResolve satisfies the StableStorage marker.
func (Global) StableResolve() {}

// MakeSharedCopy satisfies the ShareableStorage interface. Global is
// stateless, so every copy trivially aliases the same allocations.
func (g Global) MakeSharedCopy() ShareableStorage {
	return g
}

// heapAlloc asks the process heap for layout.Size() bytes at layout.Align()
// alignment, returning the aligned address and the usable size. The heap
// only guarantees small alignments for byte buffers, so the block is
// over-allocated and the first aligned offset inside it is used; the
// returned interior pointer keeps the whole block live.
func heapAlloc(layout Layout) (unsafe.Pointer, uintptr) {
	buf := make([]byte, layout.Size()+layout.Align()-1)
	base := unsafe.Pointer(unsafe.SliceData(buf))
	pad := alignPad(uintptr(base), layout.Align())
	return unsafe.Add(base, pad), uintptr(len(buf)) - pad
}
