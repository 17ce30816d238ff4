package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert_InOrderReleasesImmediately(t *testing.T) {
	b := New(4, 16)
	released := b.Insert(0, []byte{0x00})
	require.Len(t, released, 1)
	assert.Equal(t, []byte{0x00}, released[0])
	assert.Equal(t, uint64(1), b.NextExpected())
}

func TestInsert_OutOfOrderThenFillsGap(t *testing.T) {
	b := New(4, 16)

	released := b.Insert(2, []byte{0x02})
	assert.Empty(t, released)

	released = b.Insert(1, []byte{0x01})
	assert.Empty(t, released)

	released = b.Insert(0, []byte{0x00})
	require.Len(t, released, 3)
	assert.Equal(t, []byte{0x00}, released[0])
	assert.Equal(t, []byte{0x01}, released[1])
	assert.Equal(t, []byte{0x02}, released[2])
	assert.Equal(t, uint64(3), b.NextExpected())
}

func TestInsert_BeyondWindowDiscardedImmediately(t *testing.T) {
	b := New(2, 16)
	released := b.Insert(10, []byte{0xFF})
	assert.Empty(t, released)
	assert.Equal(t, uint64(1), b.DiscardCount())
}

func TestFlush_ReturnsAscendingOrderAndEmpties(t *testing.T) {
	b := New(4, 16)
	b.Insert(3, []byte{0x03})
	b.Insert(1, []byte{0x01})
	b.Insert(2, []byte{0x02})

	out := b.Flush()
	require.Len(t, out, 3)
	assert.Equal(t, []byte{0x01}, out[0])
	assert.Equal(t, []byte{0x02}, out[1])
	assert.Equal(t, []byte{0x03}, out[2])

	assert.Empty(t, b.Flush())
}

func TestSetNextExpected_ResyncsAfterReset(t *testing.T) {
	b := New(4, 16)
	b.SetNextExpected(10)
	released := b.Insert(10, []byte{0x0A})
	require.Len(t, released, 1)
}

func TestWithStartSequence_SetsInitialNextExpected(t *testing.T) {
	b := New(4, 16, WithStartSequence(10))
	assert.Equal(t, uint64(10), b.NextExpected())

	released := b.Insert(10, []byte{0x0A})
	require.Len(t, released, 1)
}

func TestWithStartSequence_WrapsAtModulus(t *testing.T) {
	b := New(4, 16, WithStartSequence(20))
	assert.Equal(t, uint64(4), b.NextExpected())
}
