package fieldtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanzhen74/apdl/field"
)

func spacePacketHeader() *Table {
	t := New()
	_ = t.Add(field.Descriptor{Name: "version", Kind: field.KindUint, Length: field.BitLength(3)})
	_ = t.Add(field.Descriptor{Name: "type", Kind: field.KindUint, Length: field.BitLength(1)})
	_ = t.Add(field.Descriptor{Name: "sec_hdr", Kind: field.KindUint, Length: field.BitLength(1)})
	_ = t.Add(field.Descriptor{Name: "apid", Kind: field.KindUint, Length: field.BitLength(11)})
	_ = t.Add(field.Descriptor{Name: "seq_flags", Kind: field.KindUint, Length: field.BitLength(2)})
	_ = t.Add(field.Descriptor{Name: "seq_count", Kind: field.KindUint, Length: field.BitLength(14)})
	_ = t.Add(field.Descriptor{Name: "pkt_len", Kind: field.KindBytes, Length: field.ByteLength(2)})
	return t
}

func TestAdd_DuplicateName(t *testing.T) {
	tbl := spacePacketHeader()
	err := tbl.Add(field.Descriptor{Name: "apid", Kind: field.KindUint, Length: field.BitLength(1)})
	require.Error(t, err)
}

func TestIndexOf_UnknownField(t *testing.T) {
	tbl := spacePacketHeader()
	_, err := tbl.IndexOf("nope")
	require.Error(t, err)
}

func TestOffsetBits_BitFieldOffsetStartsAfterAllByteFields(t *testing.T) {
	tbl := spacePacketHeader()

	idx, err := tbl.IndexOf("seq_count")
	require.NoError(t, err)

	offset, err := tbl.OffsetBits(idx)
	require.NoError(t, err)
	// pkt_len is the table's only byte-typed field (16 bits) and lands
	// before the trailing bit block regardless of its declared position,
	// so seq_count's offset is 16 + (3+1+1+11+2).
	assert.Equal(t, 16+3+1+1+11+2, offset)
}

func TestPosition_ByteFieldsPackedBeforeTrailingBitBlock(t *testing.T) {
	tbl := spacePacketHeader()

	pos, err := tbl.Position("pkt_len")
	require.NoError(t, err)
	// pkt_len is the only byte-typed field, so it starts the buffer at 0
	// regardless of the six bit-typed fields declared before it.
	assert.Equal(t, 0, pos)
}

func TestPosition_SecondByteFieldFollowsFirstRegardlessOfBitFieldsBetween(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.Add(field.Descriptor{Name: "first_byte", Kind: field.KindBytes, Length: field.ByteLength(1)}))
	require.NoError(t, tbl.Add(field.Descriptor{Name: "flag", Kind: field.KindUint, Length: field.BitLength(3)}))
	require.NoError(t, tbl.Add(field.Descriptor{Name: "second_byte", Kind: field.KindBytes, Length: field.ByteLength(1)}))

	pos, err := tbl.Position("second_byte")
	require.NoError(t, err)
	// Byte-typed fields pack contiguously among themselves; the 3-bit
	// "flag" field between them contributes nothing to this offset since
	// it is deferred to the trailing bit block.
	assert.Equal(t, 1, pos)

	pos, err = tbl.Position("flag")
	require.NoError(t, err)
	// The bit block starts after both byte fields (2 bytes = 16 bits).
	assert.Equal(t, 2, pos)
}

func TestSizeBytes_ByteField(t *testing.T) {
	tbl := spacePacketHeader()
	n, err := tbl.SizeBytes("pkt_len")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSizeBits_DynamicBeforeAndAfterSet(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.Add(field.Descriptor{Name: "payload", Kind: field.KindBytes, Length: field.DynamicLength()}))

	bits, err := tbl.SizeBits("payload")
	require.NoError(t, err)
	assert.Equal(t, 0, bits)

	require.NoError(t, tbl.SetDynamicLength("payload", 7))
	bits, err = tbl.SizeBits("payload")
	require.NoError(t, err)
	assert.Equal(t, 56, bits)
}

func TestSizeBits_ExpressionDeferred(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.Add(field.Descriptor{Name: "computed", Kind: field.KindBytes, Length: field.ExpressionLength()}))
	bits, err := tbl.SizeBits("computed")
	require.NoError(t, err)
	assert.Equal(t, 0, bits)
}
