// Package bitcodec reads and writes arbitrary-width unsigned integers at arbitrary
// bit offsets in a byte buffer, big-endian and MSB-first: bit 0 is the high bit of
// byte 0.
package bitcodec

import (
	"fmt"

	"github.com/yanzhen74/apdl/errs"
)

const maxBitWidth = 64

// ReadBits extracts bitLen (<=64) bits starting at bitOffset from buf and returns
// them right-justified in a uint64.
func ReadBits(buf []byte, bitOffset, bitLen int) (uint64, error) {
	if bitLen < 0 || bitLen > maxBitWidth {
		return 0, fmt.Errorf("%w: bit length %d exceeds %d", errs.ErrInvalidFrameFormat, bitLen, maxBitWidth)
	}
	if bitOffset < 0 || bitOffset+bitLen > 8*len(buf) {
		return 0, fmt.Errorf("%w: bit range [%d,%d) exceeds buffer of %d bits",
			errs.ErrInvalidFrameFormat, bitOffset, bitOffset+bitLen, 8*len(buf))
	}

	var value uint64
	remaining := bitLen
	pos := bitOffset

	for remaining > 0 {
		byteIdx := pos / 8
		bitInByte := pos % 8
		take := 8 - bitInByte
		if take > remaining {
			take = remaining
		}

		shift := 8 - bitInByte - take
		mask := byte((1 << take) - 1)
		bits := (buf[byteIdx] >> shift) & mask

		value = (value << take) | uint64(bits)

		pos += take
		remaining -= take
	}

	return value, nil
}

// WriteBits clears then sets the bitLen bits starting at bitOffset in buf to value.
func WriteBits(buf []byte, bitOffset, bitLen int, value uint64) error {
	if bitLen < 0 || bitLen > maxBitWidth {
		return fmt.Errorf("%w: bit length %d exceeds %d", errs.ErrInvalidFrameFormat, bitLen, maxBitWidth)
	}
	if bitOffset < 0 || bitOffset+bitLen > 8*len(buf) {
		return fmt.Errorf("%w: bit range [%d,%d) exceeds buffer of %d bits",
			errs.ErrInvalidFrameFormat, bitOffset, bitOffset+bitLen, 8*len(buf))
	}
	if bitLen < maxBitWidth && value >= (uint64(1)<<uint(bitLen)) {
		return fmt.Errorf("%w: value %d does not fit in %d bits", errs.ErrValueOutOfRange, value, bitLen)
	}

	remaining := bitLen
	pos := bitOffset

	for remaining > 0 {
		byteIdx := pos / 8
		bitInByte := pos % 8
		take := 8 - bitInByte
		if take > remaining {
			take = remaining
		}

		shift := 8 - bitInByte - take
		mask := byte((1 << take) - 1)

		// The next `take` bits of value, most-significant-first among the
		// remaining bits yet to be written.
		chunkShift := uint(remaining - take)
		chunk := byte((value >> chunkShift) & uint64(mask))

		buf[byteIdx] = (buf[byteIdx] &^ (mask << shift)) | (chunk << shift)

		pos += take
		remaining -= take
	}

	return nil
}
