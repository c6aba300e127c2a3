// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"sync"
	"unsafe"
)

type concurrentStorage struct {
	mtx sync.Mutex
	s   Storage
}

// NewConcurrentStorage returns a Storage that serializes every call to the
// wrapped storage with a mutex. Backends perform no internal
// synchronization, so this is the packaged form of the external locking a
// caller must otherwise supply before mutating one storage instance from
// multiple goroutines.
func NewConcurrentStorage(s Storage) Storage {
	return &concurrentStorage{s: s}
}

// Resolve satisfies the Storage interface.
func (c *concurrentStorage) Resolve(handle Handle) unsafe.Pointer {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.s.Resolve(handle)
}

// Allocate satisfies the Storage interface.
func (c *concurrentStorage) Allocate(layout Layout) (Handle, uintptr, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.s.Allocate(layout)
}

// Deallocate satisfies the Storage interface.
func (c *concurrentStorage) Deallocate(layout Layout, handle Handle) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.s.Deallocate(layout, handle)
}

// Grow satisfies the Storage interface.
func (c *concurrentStorage) Grow(oldLayout, newLayout Layout, handle Handle) (Handle, uintptr, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.s.Grow(oldLayout, newLayout, handle)
}

// Shrink satisfies the Storage interface.
func (c *concurrentStorage) Shrink(oldLayout, newLayout Layout, handle Handle) (Handle, uintptr, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.s.Shrink(oldLayout, newLayout, handle)
}
