// SPDX-License-Identifier: Apache-2.0

// Package storage provides a pluggable memory-allocation abstraction and a
// family of containers (Box, Rc, Vec, VecDeque, String) built on top of it.
//
// A Storage hands out opaque Handles instead of pointers, which lets a
// container's backing memory live on the process heap (Global), inside a
// fixed inline region (InlineStorage), or in a caller-supplied byte buffer
// (SlotStorage) without the container caring which.
//
// Element types stored through a Storage must not rely on the backing buffer
// for garbage-collector reachability: offset-based backends keep element
// bytes in buffers the collector scans as pointer-free.
package storage

import (
	"errors"
	"math/bits"
	"unsafe"
)

// ErrAllocFailed is returned when a Storage cannot satisfy an allocation,
// grow, or shrink request. It carries no further diagnostics.
var ErrAllocFailed = errors.New("storage: allocation failed")

// ErrInvalidLayout is returned when a requested (size, alignment) pair is
// malformed or would overflow the address space. Layout construction rejects
// such requests before any backend is consulted.
var ErrInvalidLayout = errors.New("storage: invalid layout")

// ErrIndexOutOfRange is returned by container operations that received an
// index past the current length. No allocation is attempted in that case.
var ErrIndexOutOfRange = errors.New("storage: index out of range")

const maxInt = int(^uint(0) >> 1)

// maxLayoutSize bounds the size of any Layout, leaving headroom so that
// rounding a size up to its alignment can never overflow.
const maxLayoutSize = ^uintptr(0) >> 1

// Layout describes a memory request as a (size, alignment) pair.
// The zero value is the empty layout with alignment 1.
type Layout struct {
	size  uintptr
	align uintptr
}

// NewLayout constructs a Layout, rejecting alignments that are not a power
// of two and sizes that could overflow the address space once rounded up to
// the alignment.
func NewLayout(size, align uintptr) (Layout, error) {
	if align == 0 || align&(align-1) != 0 {
		return Layout{}, ErrInvalidLayout
	}
	if size > maxLayoutSize-(align-1) {
		return Layout{}, ErrInvalidLayout
	}
	return Layout{size: size, align: align}, nil
}

// LayoutOf returns the Layout of a single value of type T.
func LayoutOf[T any]() Layout {
	var x T
	return Layout{size: unsafe.Sizeof(x), align: unsafe.Alignof(x)}
}

// LayoutArrayOf returns the Layout of n contiguous values of type T,
// rejecting negative counts and arithmetic overflow.
func LayoutArrayOf[T any](n int) (Layout, error) {
	if n < 0 {
		return Layout{}, ErrInvalidLayout
	}
	var x T
	hi, total := bits.Mul(uint(unsafe.Sizeof(x)), uint(n))
	if hi != 0 {
		return Layout{}, ErrInvalidLayout
	}
	return NewLayout(uintptr(total), unsafe.Alignof(x))
}

// layoutArrayOfUnchecked is LayoutArrayOf for counts already known to be
// valid, e.g. a capacity a Storage previously reported.
func layoutArrayOfUnchecked[T any](n int) Layout {
	var x T
	return Layout{size: unsafe.Sizeof(x) * uintptr(n), align: unsafe.Alignof(x)}
}

// Size returns the requested size in bytes.
func (l Layout) Size() uintptr { return l.size }

// Align returns the requested alignment. The zero Layout reports 1.
func (l Layout) Align() uintptr {
	if l.align == 0 {
		return 1
	}
	return l.align
}

// alignPad returns how many bytes addr must advance to satisfy align.
// align must be a power of two.
func alignPad(addr, align uintptr) uintptr {
	return (align - addr&(align-1)) & (align - 1)
}

// Handle identifies one allocation inside the Storage instance that issued
// it. It is not a pointer: it has no meaning outside that instance, and only
// the issuing Storage may interpret its contents. Handles are comparable
// with ==, usable as map keys, and orderable via Less.
//
// A Handle is valid from the moment the allocating call succeeds until it is
// consumed by Deallocate or by a successful Grow or Shrink, or until the
// issuing Storage is destroyed. A failed Grow or Shrink leaves the original
// handle valid; every backend in this package keeps that discipline.
//
// The zero Handle is the dangling handle.
type Handle struct {
	ptr unsafe.Pointer
	off uintptr
}

// Less orders handles by (address word, offset word).
func (h Handle) Less(other Handle) bool {
	if h.ptr != other.ptr {
		return uintptr(h.ptr) < uintptr(other.ptr)
	}
	return h.off < other.off
}

// Storage is the allocation contract all backends implement and all
// containers are built against.
//
// Allocate, Grow, and Shrink report the usable size of the allocation in
// bytes, which may exceed what the Layout requested; callers deriving an
// element capacity must use the reported size, never the requested one.
//
// Unless the backend also implements MultipleStorage, calling Allocate again
// invalidates every handle previously issued by that instance.
//
// Grow requires newLayout.Size() >= oldLayout.Size(); Shrink requires <=.
// Violating either is a caller contract violation, not a reported error.
// On success the old handle is invalid; on failure it remains valid and the
// allocation is untouched.
//
// Methods perform no internal synchronization; see ConcurrentStorage.
type Storage interface {
	// Resolve converts a valid Handle into the address of its allocation.
	// Resolving an invalid handle is a caller contract violation.
	Resolve(handle Handle) unsafe.Pointer

	// Allocate reserves memory for layout, returning the handle and the
	// usable size in bytes.
	Allocate(layout Layout) (Handle, uintptr, error)

	// Deallocate releases an allocation. layout must be the layout it was
	// allocated with, except that the size may be anything up to the usable
	// size last reported for the handle.
	Deallocate(layout Layout, handle Handle)

	// Grow enlarges an allocation from oldLayout to newLayout, moving the
	// contents if necessary.
	Grow(oldLayout, newLayout Layout, handle Handle) (Handle, uintptr, error)

	// Shrink reduces an allocation from oldLayout to newLayout.
	Shrink(oldLayout, newLayout Layout, handle Handle) (Handle, uintptr, error)
}

// MultipleStorage marks a Storage that supports multiple live allocations:
// Allocate does not invalidate previously issued handles.
type MultipleStorage interface {
	Storage

	// MultipleAllocations is a marker and has no behavior.
	MultipleAllocations()
}

// StableStorage marks a Storage whose resolved pointers survive the Storage
// value itself being moved or copied. InlineStorage is the counterexample:
// its data lives inside the storage value, so relocating the value
// invalidates previously resolved addresses.
type StableStorage interface {
	Storage

	// StableResolve is a marker and has no behavior.
	StableResolve()
}

// ShareableStorage is a Storage that can produce aliasing copies of itself,
// each behaving identically with respect to the same set of handles. Rc
// requires it so that every clone can own a storage value while all clones
// observe one underlying allocation.
type ShareableStorage interface {
	Storage

	// MakeSharedCopy returns a storage aliasing the same allocations.
	// The caller must ensure that no copy issues a mutating call that
	// would invalidate a handle another copy still depends on; for
	// backends that are not MultipleStorage that means no copy may call
	// Allocate at all while handles are live elsewhere.
	MakeSharedCopy() ShareableStorage
}
