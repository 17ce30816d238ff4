// Package endian provides byte order utilities for binary encoding and decoding.
//
// It combines encoding/binary's ByteOrder and AppendByteOrder interfaces into a
// single EndianEngine, so the rest of the toolkit can take one value and get both
// read/write and allocation-free append operations.
//
// apdl's wire format is always big-endian, MSB-first, so callers should
// use GetBigEndianEngine() almost everywhere; GetLittleEndianEngine() exists for
// completeness and for protocols embedded in a larger little-endian transport.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library, making it fully compatible with existing Go code while
// providing access to both read/write and append operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	// For a big-endian system, the MSB (0x01) is first.
	var i uint16 = 0x0100

	// Create a byte slice pointing to the memory address of 'i'.
	// We only need the first byte.
	b := (*[2]byte)(unsafe.Pointer(&i))

	// Check the first byte at the lowest memory address
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

func CompareNativeEndian(engine EndianEngine) bool {
	return engine == CheckEndianness()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
//
// apdl's wire format is always big-endian. In this module the archive
// package's record framing uses this engine; the frame and connector
// packages encode their big-endian fields with their own helpers.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
