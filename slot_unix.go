// SPDX-License-Identifier: Apache-2.0

//go:build unix

package storage

import (
	"golang.org/x/sys/unix"
)

// MmapSlotBuffer allocates a page-aligned, anonymous, off-heap buffer of at
// least size bytes, suitable for backing a SlotStorage whose allocations
// need alignments the Go heap cannot promise. The buffer must be released
// with MunmapSlotBuffer.
func MmapSlotBuffer(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidLayout
	}
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, ErrAllocFailed
	}
	return buf, nil
}

// MunmapSlotBuffer releases a buffer obtained from MmapSlotBuffer. Every
// handle issued by a SlotStorage over the buffer is invalid afterwards.
func MunmapSlotBuffer(buf []byte) error {
	return unix.Munmap(buf)
}
