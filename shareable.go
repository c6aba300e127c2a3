// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"unsafe"
)

// ShareableStorageWrapper adapts a uniquely-referenced Storage into a
// ShareableStorage by handing out copies that all delegate to the one
// wrapped instance.
//
// The wrapper itself enforces nothing: the caller accepts the obligation
// that no copy issues a mutating call (Allocate, or a successful Grow or
// Shrink) that would invalidate a handle another copy still depends on. That
// is safe in general only when the wrapped storage is a MultipleStorage;
// for anything else this is an explicit escape hatch.
type ShareableStorageWrapper struct {
	inner Storage
}

var _ ShareableStorage = (*ShareableStorageWrapper)(nil)

// NewShareableStorageWrapper wraps inner. The caller must be the only holder
// of inner, or must already satisfy the aliasing obligation above.
func NewShareableStorageWrapper(inner Storage) *ShareableStorageWrapper {
	return &ShareableStorageWrapper{inner: inner}
}

// Resolve satisfies the Storage interface.
func (w *ShareableStorageWrapper) Resolve(handle Handle) unsafe.Pointer {
	return w.inner.Resolve(handle)
}

// Allocate satisfies the Storage interface.
func (w *ShareableStorageWrapper) Allocate(layout Layout) (Handle, uintptr, error) {
	return w.inner.Allocate(layout)
}

// Deallocate satisfies the Storage interface.
func (w *ShareableStorageWrapper) Deallocate(layout Layout, handle Handle) {
	w.inner.Deallocate(layout, handle)
}

// Grow satisfies the Storage interface.
func (w *ShareableStorageWrapper) Grow(oldLayout, newLayout Layout, handle Handle) (Handle, uintptr, error) {
	return w.inner.Grow(oldLayout, newLayout, handle)
}

// Shrink satisfies the Storage interface.
func (w *ShareableStorageWrapper) Shrink(oldLayout, newLayout Layout, handle Handle) (Handle, uintptr, error) {
	return w.inner.Shrink(oldLayout, newLayout, handle)
}

// MakeSharedCopy satisfies the ShareableStorage interface by duplicating the
// reference to the wrapped storage.
func (w *ShareableStorageWrapper) MakeSharedCopy() ShareableStorage {
	return w
}
