// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVecPushOverInlineBackend(t *testing.T) {
	// Room for exactly two elements.
	v, err := NewVecIn[int32](NewInlineStorage[[2]int32]())
	require.NoError(t, err)

	_, err = v.Push(1)
	require.NoError(t, err)
	_, err = v.Push(2)
	require.NoError(t, err)

	// The failed value comes back inside the error instead of being lost.
	_, err = v.Push(3)
	require.ErrorIs(t, err, ErrAllocFailed)
	var pushErr *PushError[int32]
	require.True(t, errors.As(err, &pushErr))
	require.Equal(t, int32(3), pushErr.Value)

	require.Equal(t, []int32{1, 2}, v.Slice())
	v.Drop()
}

func TestVecInsertOverInlineBackend(t *testing.T) {
	v, err := NewVecIn[int32](NewInlineStorage[[3]int32]())
	require.NoError(t, err)

	// Out of range: no allocation is attempted.
	_, err = v.Insert(1, 1)
	var insErr *InsertError[int32]
	require.True(t, errors.As(err, &insErr))
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	require.Equal(t, int32(1), insErr.Value)

	_, err = v.Insert(0, 2)
	require.NoError(t, err)
	_, err = v.Insert(1, 3)
	require.NoError(t, err)
	_, err = v.Insert(1, 4)
	require.NoError(t, err)

	// Full: a true allocation failure, carrying the value.
	_, err = v.Insert(1, 5)
	require.True(t, errors.As(err, &insErr))
	require.ErrorIs(t, err, ErrAllocFailed)
	require.Equal(t, int32(5), insErr.Value)

	require.Equal(t, []int32{2, 4, 3}, v.Slice())
	v.Drop()
}

func TestVecPushPopLeavesCapacityUnchanged(t *testing.T) {
	v, err := NewVec[int]()
	require.NoError(t, err)

	for n := 1; n <= 64; n *= 4 {
		for i := 0; i < n; i++ {
			_, err := v.Push(i)
			require.NoError(t, err)
		}
		capacity := v.Cap()
		for i := n - 1; i >= 0; i-- {
			value, ok := v.Pop()
			require.True(t, ok)
			require.Equal(t, i, value)
		}
		require.Zero(t, v.Len())
		require.Equal(t, capacity, v.Cap())
	}

	_, ok := v.Pop()
	require.False(t, ok)
	v.Drop()
}

func TestVecReserveGuarantee(t *testing.T) {
	v, err := NewVec[int64]()
	require.NoError(t, err)

	for _, k := range []int{1, 3, 17, 100} {
		require.NoError(t, v.Reserve(k))
		require.GreaterOrEqual(t, v.Cap(), v.Len()+k)
		_, err := v.Push(int64(k))
		require.NoError(t, err)
	}
	v.Drop()
}

func TestVecReserveExact(t *testing.T) {
	v, err := NewVec[int32]()
	require.NoError(t, err)
	require.NoError(t, v.ReserveExact(5))
	require.GreaterOrEqual(t, v.Cap(), 5)
	v.Drop()
}

func TestVecWithCapacityIn(t *testing.T) {
	v, err := VecWithCapacityIn[int32](4, Global{})
	require.NoError(t, err)
	require.GreaterOrEqual(t, v.Cap(), 4)
	require.Zero(t, v.Len())
	v.Drop()

	// Capacity derives from the bytes the backend reserved, so a backend
	// with a larger region reports more than requested.
	v, err = VecWithCapacityIn[int32](1, NewInlineStorage[[8]int32]())
	require.NoError(t, err)
	require.Equal(t, 8, v.Cap())
	v.Drop()
}

func TestVecRemove(t *testing.T) {
	v, err := NewVec[int]()
	require.NoError(t, err)
	_, err = v.ExtendFromSlice([]int{1, 2, 3})
	require.NoError(t, err)

	_, ok := v.Remove(3)
	require.False(t, ok)

	value, ok := v.Remove(1)
	require.True(t, ok)
	require.Equal(t, 2, value)
	require.Equal(t, []int{1, 3}, v.Slice())

	value, ok = v.Remove(0)
	require.True(t, ok)
	require.Equal(t, 1, value)
	value, ok = v.Remove(0)
	require.True(t, ok)
	require.Equal(t, 3, value)
	_, ok = v.Remove(0)
	require.False(t, ok)
	v.Drop()
}

func TestVecGet(t *testing.T) {
	v, err := NewVec[int]()
	require.NoError(t, err)
	_, err = v.ExtendFromSlice([]int{10, 20})
	require.NoError(t, err)

	p, err := v.Get(1)
	require.NoError(t, err)
	require.Equal(t, 20, *p)

	_, err = v.Get(2)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = v.Get(-1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	v.Drop()
}

func TestVecExtendFromSliceFailureLeavesContents(t *testing.T) {
	v, err := NewVecIn[int32](NewInlineStorage[[3]int32]())
	require.NoError(t, err)

	_, err = v.ExtendFromSlice([]int32{1, 2})
	require.NoError(t, err)
	_, err = v.ExtendFromSlice([]int32{3, 4})
	require.ErrorIs(t, err, ErrAllocFailed)
	require.Equal(t, []int32{1, 2}, v.Slice())
	v.Drop()
}

func TestVecShrinkToFit(t *testing.T) {
	v, err := VecWithCapacityIn[int64](32, Global{})
	require.NoError(t, err)
	_, err = v.ExtendFromSlice([]int64{1, 2, 3})
	require.NoError(t, err)

	require.NoError(t, v.ShrinkToFit())
	require.GreaterOrEqual(t, v.Cap(), 3)
	require.Equal(t, []int64{1, 2, 3}, v.Slice())
	v.Drop()
}

func TestVecRawPartsRoundTrip(t *testing.T) {
	v, err := NewVec[int]()
	require.NoError(t, err)
	_, err = v.ExtendFromSlice([]int{5, 6, 7})
	require.NoError(t, err)

	s, handle, length, capacity := v.IntoRawParts()
	rebuilt := VecFromRawParts[int](s, handle, length, capacity)
	require.Equal(t, []int{5, 6, 7}, rebuilt.Slice())
	require.Equal(t, capacity, rebuilt.Cap())
	rebuilt.Drop()
}

func TestVecIntoIterDrainsInOrder(t *testing.T) {
	v, err := NewVec[int]()
	require.NoError(t, err)
	_, err = v.ExtendFromSlice([]int{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	it := v.IntoIter()
	require.Equal(t, 6, it.Len())
	for want := 1; want <= 6; want++ {
		value, ok := it.Next()
		require.True(t, ok)
		require.Equal(t, want, value)
	}

	// Fused: once empty, stays empty.
	_, ok := it.Next()
	require.False(t, ok)
	_, ok = it.NextBack()
	require.False(t, ok)
	require.Zero(t, it.Len())
	it.Drop()
}

func TestVecIntoIterBothEnds(t *testing.T) {
	v, err := NewVec[int]()
	require.NoError(t, err)
	_, err = v.ExtendFromSlice([]int{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	it := v.IntoIter()
	value, ok := it.Next()
	require.True(t, ok)
	require.Equal(t, 1, value)
	value, ok = it.NextBack()
	require.True(t, ok)
	require.Equal(t, 6, value)
	value, ok = it.Next()
	require.True(t, ok)
	require.Equal(t, 2, value)

	require.Equal(t, 3, it.Len())
	require.Equal(t, []int{3, 4, 5}, it.Slice())

	// Dropping a partially consumed iterator frees the rest exactly once.
	it.Drop()
	it.Drop()
}

func TestVecDropIdempotent(t *testing.T) {
	v, err := NewVec[int]()
	require.NoError(t, err)
	_, err = v.Push(1)
	require.NoError(t, err)
	v.Drop()
	v.Drop()
}

func TestVecZeroSizeElements(t *testing.T) {
	v, err := NewVec[struct{}]()
	require.NoError(t, err)
	// Zero-size elements never need storage.
	require.Equal(t, maxInt, v.Cap())
	for i := 0; i < 100; i++ {
		_, err := v.Push(struct{}{})
		require.NoError(t, err)
	}
	require.Equal(t, 100, v.Len())
	v.Drop()
}
