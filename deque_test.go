// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDequePushPopBothEnds(t *testing.T) {
	d, err := NewDeque[int]()
	require.NoError(t, err)

	_, err = d.PushBack(2)
	require.NoError(t, err)
	_, err = d.PushBack(3)
	require.NoError(t, err)
	_, err = d.PushFront(1)
	require.NoError(t, err)
	require.Equal(t, 3, d.Len())

	value, ok := d.PopFront()
	require.True(t, ok)
	require.Equal(t, 1, value)
	value, ok = d.PopBack()
	require.True(t, ok)
	require.Equal(t, 3, value)
	value, ok = d.PopFront()
	require.True(t, ok)
	require.Equal(t, 2, value)

	_, ok = d.PopFront()
	require.False(t, ok)
	_, ok = d.PopBack()
	require.False(t, ok)
	require.True(t, d.IsEmpty())
	d.Drop()
}

func TestDequeWrapAroundOverInlineBackend(t *testing.T) {
	d, err := NewDequeIn[int32](NewInlineStorage[[4]int32]())
	require.NoError(t, err)
	require.Equal(t, 4, d.Cap())

	for _, v := range []int32{1, 2, 3} {
		_, err := d.PushBack(v)
		require.NoError(t, err)
	}
	value, ok := d.PopFront()
	require.True(t, ok)
	require.Equal(t, int32(1), value)

	// These wrap past the end of the buffer.
	_, err = d.PushBack(4)
	require.NoError(t, err)
	_, err = d.PushBack(5)
	require.NoError(t, err)
	require.False(t, d.IsContiguous())

	// Full, and the backend cannot grow: the value comes back in the error.
	_, err = d.PushBack(6)
	require.ErrorIs(t, err, ErrAllocFailed)
	var pushErr *PushError[int32]
	require.True(t, errors.As(err, &pushErr))
	require.Equal(t, int32(6), pushErr.Value)

	front, back := d.AsSlices()
	require.Equal(t, []int32{2, 3, 4}, front)
	require.Equal(t, []int32{5}, back)

	for _, want := range []int32{2, 3, 4, 5} {
		value, ok := d.PopFront()
		require.True(t, ok)
		require.Equal(t, want, value)
	}
	require.Equal(t, 4, d.Cap())
	d.Drop()
}

func TestDequeMakeContiguous(t *testing.T) {
	d, err := NewDequeIn[int32](NewInlineStorage[[4]int32]())
	require.NoError(t, err)

	// Wrap: two runs, [2 3 4] at the high end and [5] at offset 0.
	for _, v := range []int32{1, 2, 3, 4} {
		_, err := d.PushBack(v)
		require.NoError(t, err)
	}
	d.PopFront()
	_, err = d.PushBack(5)
	require.NoError(t, err)
	require.False(t, d.IsContiguous())

	s := d.MakeContiguous()
	require.Equal(t, []int32{2, 3, 4, 5}, s)
	require.True(t, d.IsContiguous())

	front, back := d.AsSlices()
	require.Equal(t, []int32{2, 3, 4, 5}, front)
	require.Empty(t, back)

	// Already contiguous: a no-op.
	require.Equal(t, []int32{2, 3, 4, 5}, d.MakeContiguous())
	d.Drop()
}

func TestDequeGrowWhileWrappedKeepsOrder(t *testing.T) {
	d, err := NewDeque[int]()
	require.NoError(t, err)

	for _, v := range []int{1, 2, 3, 4} {
		_, err := d.PushBack(v)
		require.NoError(t, err)
	}
	d.PopFront()
	d.PopFront()
	_, err = d.PushBack(5)
	require.NoError(t, err)
	_, err = d.PushBack(6)
	require.NoError(t, err)
	require.False(t, d.IsContiguous())

	// Growing a wrapped buffer must re-home the high run so the logical
	// order survives.
	require.NoError(t, d.ReserveExact(8))
	require.GreaterOrEqual(t, d.Cap(), d.Len()+8)

	for _, want := range []int{3, 4, 5, 6} {
		value, ok := d.PopFront()
		require.True(t, ok)
		require.Equal(t, want, value)
	}
	require.True(t, d.IsEmpty())
	d.Drop()
}

func TestDequeReserveGuarantee(t *testing.T) {
	d, err := NewDeque[int64]()
	require.NoError(t, err)
	for _, k := range []int{1, 5, 40} {
		require.NoError(t, d.Reserve(k))
		require.GreaterOrEqual(t, d.Cap(), d.Len()+k)
		_, err := d.PushFront(int64(k))
		require.NoError(t, err)
	}
	d.Drop()
}

func TestDequeRawPartsRoundTrip(t *testing.T) {
	d, err := NewDeque[int]()
	require.NoError(t, err)
	_, err = d.PushBack(1)
	require.NoError(t, err)
	_, err = d.PushFront(0)
	require.NoError(t, err)

	s, handle, head, length, capacity := d.IntoRawParts()
	rebuilt := DequeFromRawParts[int](s, handle, head, length, capacity)

	value, ok := rebuilt.PopFront()
	require.True(t, ok)
	require.Equal(t, 0, value)
	value, ok = rebuilt.PopBack()
	require.True(t, ok)
	require.Equal(t, 1, value)
	rebuilt.Drop()
}

func TestDequeDropIdempotent(t *testing.T) {
	d, err := NewDeque[int]()
	require.NoError(t, err)
	_, err = d.PushBack(1)
	require.NoError(t, err)
	d.Drop()
	d.Drop()
}
