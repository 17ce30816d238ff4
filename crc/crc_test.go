package crc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCCITT16_KnownVector(t *testing.T) {
	// "123456789" -> 0x29B1 is the standard CRC-16/CCITT-FALSE check value,
	// which uses the same poly/init/no-reflection parameters implemented here.
	assert.Equal(t, uint16(0x29B1), CCITT16([]byte("123456789")))
}

func TestCCITT16_TransferFrameSyncAndPayload(t *testing.T) {
	data := []byte{0xEB, 0x90, 0xCA, 0xFE, 0xBA, 0xBE}
	got := CCITT16(data)
	assert.NotEqual(t, uint16(0), got)
}

func TestIEEE32_MatchesStdlib(t *testing.T) {
	data := []byte("123456789")
	assert.Equal(t, uint32(0xCBF43926), IEEE32(data))
}

func TestCAN15_ZeroInputIsZero(t *testing.T) {
	assert.Equal(t, uint16(0), CAN15(nil))
}

func TestCAN15_Deterministic(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	assert.Equal(t, CAN15(data), CAN15(data))
	assert.NotEqual(t, CAN15(data), CAN15([]byte{0x01, 0x02, 0x04}))
}

func TestXOR8(t *testing.T) {
	assert.Equal(t, uint8(0x00), XOR8([]byte{0xFF, 0xFF}))
	assert.Equal(t, uint8(0x0F), XOR8([]byte{0xF0, 0xFF}))
	assert.Equal(t, uint8(0), XOR8(nil))
}
