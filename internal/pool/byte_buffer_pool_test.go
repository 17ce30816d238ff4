package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(16)
	require.Equal(t, 0, bb.Len())
	require.Equal(t, 16, bb.Cap())
}

func TestByteBuffer_MustWrite(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.MustWrite([]byte{1, 2, 3})
	require.Equal(t, []byte{1, 2, 3}, bb.Bytes())
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.MustWrite([]byte{1, 2, 3})
	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.GreaterOrEqual(t, bb.Cap(), 4)
}

func TestByteBuffer_Write(t *testing.T) {
	bb := NewByteBuffer(0)
	n, err := bb.Write([]byte{0xDE, 0xAD})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []byte{0xDE, 0xAD}, bb.Bytes())
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(0)
	bb.MustWrite([]byte{1, 2, 3})

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
	require.Equal(t, []byte{1, 2, 3}, out.Bytes())
}

func TestByteBuffer_Grow_SufficientCapacity(t *testing.T) {
	bb := NewByteBuffer(16)
	before := bb.Cap()
	bb.Grow(4)
	require.Equal(t, before, bb.Cap())
}

func TestByteBuffer_Grow_PreservesData(t *testing.T) {
	bb := NewByteBuffer(2)
	bb.MustWrite([]byte{1, 2})
	bb.Grow(FrameBufferDefaultSize * 2)
	require.Equal(t, []byte{1, 2}, bb.Bytes())
}

func TestByteBuffer_SliceAndSetLength(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.SetLength(4)
	require.Equal(t, 4, bb.Len())

	s := bb.Slice(0, 4)
	require.Len(t, s, 4)
}

func TestByteBuffer_Slice_PanicsOnInvalid(t *testing.T) {
	bb := NewByteBuffer(4)
	require.Panics(t, func() { bb.Slice(-1, 2) })
	require.Panics(t, func() { bb.Slice(2, 1) })
	require.Panics(t, func() { bb.Slice(0, 8) })
}

func TestByteBuffer_ExtendOrGrow(t *testing.T) {
	bb := NewByteBuffer(0)
	bb.ExtendOrGrow(10)
	require.Equal(t, 10, bb.Len())
}

func TestGetPutFrameBuffer_Reuse(t *testing.T) {
	bb := GetFrameBuffer()
	bb.MustWrite([]byte{1, 2, 3})
	PutFrameBuffer(bb)

	again := GetFrameBuffer()
	require.Equal(t, 0, again.Len(), "pool must reset buffers before reuse")
}

func TestPutFrameBuffer_Nil(t *testing.T) {
	require.NotPanics(t, func() { PutFrameBuffer(nil) })
}

func TestByteBufferPool_MaxThreshold_Discard(t *testing.T) {
	p := NewByteBufferPool(4, 8)
	bb := NewByteBuffer(32)
	p.Put(bb) // larger than threshold, discarded rather than retained

	fresh := p.Get()
	require.Equal(t, 4, fresh.Cap())
}

func TestGetArchiveBuffer(t *testing.T) {
	bb := GetArchiveBuffer()
	require.NotNil(t, bb)
	PutArchiveBuffer(bb)
}

func TestDefaultPools_Independence(t *testing.T) {
	frame := GetFrameBuffer()
	archive := GetArchiveBuffer()
	require.NotSame(t, frame, archive)
	PutFrameBuffer(frame)
	PutArchiveBuffer(archive)
}
