// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"errors"
	"unicode/utf8"
	"unsafe"
)

// ErrInvalidUTF8 is returned when bytes that are not valid UTF-8 would enter
// a String through a checked operation.
var ErrInvalidUTF8 = errors.New("storage: invalid UTF-8")

// String is a growable UTF-8 string backed by a Vec[byte]: every byte
// observable through the safe surface is part of a valid UTF-8 sequence.
type String struct {
	vec Vec[byte]
}

// NewString constructs an empty String in the Global storage.
func NewString() (*String, error) {
	return NewStringIn(Global{})
}

// NewStringIn constructs an empty String allocated in s.
func NewStringIn(s Storage) (*String, error) {
	return StringWithCapacityIn(0, s)
}

// StringWithCapacityIn constructs a String with room for at least capacity
// bytes allocated in s.
func StringWithCapacityIn(capacity int, s Storage) (*String, error) {
	v, err := VecWithCapacityIn[byte](capacity, s)
	if err != nil {
		return nil, err
	}
	return &String{vec: *v}, nil
}

// StringFromIn constructs a String holding the contents of str.
func StringFromIn(str string, s Storage) (*String, error) {
	out, err := StringWithCapacityIn(len(str), s)
	if err != nil {
		return nil, err
	}
	if err := out.PushStr(str); err != nil {
		return nil, err
	}
	return out, nil
}

// StringFromRawPartsUnchecked reconstructs a String from a Storage, Handle,
// length, and capacity.
//
// handle must be a valid allocation in s of capacity bytes, the first length
// of which are initialized and form valid UTF-8; passing non-UTF-8 bytes
// here is a caller contract violation, not a reported error.
func StringFromRawPartsUnchecked(s Storage, handle Handle, length, capacity int) *String {
	return &String{vec: *VecFromRawParts[byte](s, handle, length, capacity)}
}

// IntoRawParts decomposes the String into its Storage, Handle, length, and
// capacity without freeing memory.
func (s *String) IntoRawParts() (Storage, Handle, int, int) {
	return s.vec.IntoRawParts()
}

// Len returns the length in bytes.
func (s *String) Len() int { return s.vec.Len() }

// Cap returns the number of bytes the String can hold before it reallocates.
func (s *String) Cap() int { return s.vec.Cap() }

// Reserve makes room for at least extra more bytes with a growth factor.
func (s *String) Reserve(extra int) error { return s.vec.Reserve(extra) }

// ReserveExact makes room for at least extra more bytes without a growth
// factor.
func (s *String) ReserveExact(extra int) error { return s.vec.ReserveExact(extra) }

// ShrinkToFit releases unused tail capacity.
func (s *String) ShrinkToFit() error { return s.vec.ShrinkToFit() }

// PushStr appends the bytes of str. Go strings are not guaranteed to be
// UTF-8, so the input is validated; on any failure prior contents are
// unchanged byte for byte.
func (s *String) PushStr(str string) error {
	if !utf8.ValidString(str) {
		return ErrInvalidUTF8
	}
	if len(str) == 0 {
		return nil
	}
	_, err := s.vec.ExtendFromSlice(unsafe.Slice(unsafe.StringData(str), len(str)))
	return err
}

// PushRune appends the UTF-8 encoding of r. Invalid runes are encoded as the
// replacement character, preserving the UTF-8 invariant.
func (s *String) PushRune(r rune) error {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	_, err := s.vec.ExtendFromSlice(buf[:n])
	return err
}

// Str returns the contents. The string header aliases the allocation and is
// valid until the next growth, shrink, or drop.
func (s *String) Str() string {
	if s.vec.Len() == 0 {
		return ""
	}
	return unsafe.String((*byte)(s.vec.ptr()), s.vec.Len())
}

// Bytes returns the contents as a byte slice with the same validity rules as
// Str. Mutating the bytes can break the UTF-8 invariant and is a caller
// contract violation.
func (s *String) Bytes() []byte {
	return s.vec.Slice()
}

// IntoBoxedStr shrinks the String to its exact length and reinterprets its
// raw parts as a BoxedStr, transferring ownership without copying.
func (s *String) IntoBoxedStr() (*BoxedStr, error) {
	boxed, err := s.vec.IntoBoxedSlice()
	if err != nil {
		return nil, err
	}
	st, handle, length := boxed.IntoRawParts()
	return BoxedStrFromRawParts(st, handle, length), nil
}

// Drop clears the contents and releases the allocation, exactly once.
func (s *String) Drop() {
	s.vec.Drop()
}
