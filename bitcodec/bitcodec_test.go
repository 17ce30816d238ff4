package bitcodec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanzhen74/apdl/errs"
)

func TestWriteThenReadBits_Invertible(t *testing.T) {
	cases := []struct {
		offset, width int
		value         uint64
	}{
		{0, 1, 1},
		{0, 3, 5},
		{3, 1, 1},
		{4, 5, 0x1F},
		{0, 8, 0xFF},
		{0, 64, 0xFFFFFFFFFFFFFFFF},
		{1, 64, 0xAAAAAAAAAAAAAAAA >> 1},
		{7, 11, 0x2AA},
	}

	for _, c := range cases {
		buf := make([]byte, 16)
		require.NoError(t, WriteBits(buf, c.offset, c.width, c.value))
		got, err := ReadBits(buf, c.offset, c.width)
		require.NoError(t, err)
		assert.Equal(t, c.value, got)
	}
}

func TestWriteBits_DoesNotDisturbSurroundingBits(t *testing.T) {
	buf := []byte{0xFF, 0xFF}
	require.NoError(t, WriteBits(buf, 4, 4, 0x0))
	assert.Equal(t, []byte{0xF0, 0xFF}, buf)
}

func TestWriteBits_PacksMultipleRunsIntoOneByte(t *testing.T) {
	// Three adjacent bit runs (1+2+5 bits) packed MSB-first into a single byte.
	buf := make([]byte, 1)
	require.NoError(t, WriteBits(buf, 0, 1, 1))
	require.NoError(t, WriteBits(buf, 1, 2, 0b10))
	require.NoError(t, WriteBits(buf, 3, 5, 0b01111))
	assert.Equal(t, byte(0xCF), buf[0])
}

func TestReadBits_OutOfBounds(t *testing.T) {
	buf := make([]byte, 1)
	_, err := ReadBits(buf, 4, 8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidFrameFormat))
}

func TestReadBits_WidthTooWide(t *testing.T) {
	buf := make([]byte, 16)
	_, err := ReadBits(buf, 0, 65)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidFrameFormat))
}

func TestWriteBits_ValueOutOfRange(t *testing.T) {
	buf := make([]byte, 1)
	err := WriteBits(buf, 0, 3, 8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrValueOutOfRange))
}

func TestWriteBits_OutOfBounds(t *testing.T) {
	buf := make([]byte, 1)
	err := WriteBits(buf, 4, 8, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidFrameFormat))
}
