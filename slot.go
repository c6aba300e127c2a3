// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"unsafe"
)

// SlotStorage is a bump allocator over a caller-supplied, externally owned
// byte buffer. Handles encode a byte offset from the start of the buffer,
// which makes SlotStorage a StableStorage: the buffer's address does not
// depend on where the SlotStorage value lives.
//
// SlotStorage supports a single live allocation at a time. Calling Allocate
// again computes a fresh offset independent of any prior handle, and every
// previously issued handle becomes semantically stale even though nothing
// prevents resolving it. Callers must not keep a stale handle alive across a
// fresh Allocate.
type SlotStorage struct {
	buf []byte
}

var _ StableStorage = (*SlotStorage)(nil)

// NewSlotStorage wraps buf. The buffer stays owned by the caller and must
// outlive every handle issued by the returned storage.
func NewSlotStorage(buf []byte) *SlotStorage {
	return &SlotStorage{buf: buf}
}

func (s *SlotStorage) base() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(s.buf))
}

// Resolve satisfies the Storage interface.
func (s *SlotStorage) Resolve(handle Handle) unsafe.Pointer {
	return unsafe.Add(s.base(), handle.off)
}

// Allocate satisfies the Storage interface. It places the allocation at the
// smallest buffer offset satisfying the requested alignment and reports the
// whole remaining tail as usable.
func (s *SlotStorage) Allocate(layout Layout) (Handle, uintptr, error) {
	pad := alignPad(uintptr(s.base()), layout.Align())
	if pad > uintptr(len(s.buf)) || uintptr(len(s.buf))-pad < layout.Size() {
		return Handle{}, 0, ErrAllocFailed
	}
	return Handle{off: pad}, uintptr(len(s.buf)) - pad, nil
}

// Deallocate satisfies the Storage interface. The buffer is externally
// owned, so there is nothing to release.
func (s *SlotStorage) Deallocate(layout Layout, handle Handle) {
	_ = layout
	_ = handle
}

// Grow satisfies the Storage interface. It computes a fresh offset for the
// new layout and copies the old contents over. On failure the old handle
// stays valid.
func (s *SlotStorage) Grow(oldLayout, newLayout Layout, handle Handle) (Handle, uintptr, error) {
	return s.relocate(oldLayout.Size(), newLayout, handle)
}

// Shrink satisfies the Storage interface. Only the bytes covered by the new
// layout are preserved.
func (s *SlotStorage) Shrink(oldLayout, newLayout Layout, handle Handle) (Handle, uintptr, error) {
	_ = oldLayout
	return s.relocate(newLayout.Size(), newLayout, handle)
}

func (s *SlotStorage) relocate(keep uintptr, newLayout Layout, handle Handle) (Handle, uintptr, error) {
	newHandle, usable, err := s.Allocate(newLayout)
	if err != nil {
		return Handle{}, 0, err
	}
	// Same buffer, possibly overlapping ranges; copy is memmove-safe.
	copy(s.buf[newHandle.off:newHandle.off+keep], s.buf[handle.off:handle.off+keep])
	return newHandle, usable, nil
}

// StableResolve satisfies the StableStorage marker.
func (s *SlotStorage) StableResolve() {}
