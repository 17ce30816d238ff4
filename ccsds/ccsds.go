// Package ccsds provides a ready-built CCSDS Space Packet primary header on
// top of the generic fieldtable/frame engine, plus the protocol's named
// constants (sync marker, sequence modulus, MPDU pointer sentinels).
package ccsds

import (
	"github.com/yanzhen74/apdl/connector"
	"github.com/yanzhen74/apdl/field"
	"github.com/yanzhen74/apdl/frame"
)

// DefaultSyncMarker is the CCSDS TM Transfer Frame attached-sync marker.
var DefaultSyncMarker = []byte{0xEB, 0x90}

// SequenceModulus is the width of the Space Packet 14-bit sequence counter.
const SequenceModulus = 0x4000

// MPDU first-header-pointer sentinels, re-exported from connector for
// callers that only need the ccsds convenience layer.
const (
	PointerNoHeader         = connector.PointerNoHeader
	PointerIdle             = connector.PointerIdle
	PointerContinuationOnly = connector.PointerContinuationOnly
)

// PrimaryHeader is the fixed 6-byte CCSDS Space Packet primary header:
// 3-bit version, 1-bit type, 1-bit secondary-header flag, 11-bit APID,
// 2-bit sequence flags, 14-bit sequence count, 16-bit data length.
type PrimaryHeader struct {
	Version     uint64
	Type        uint64
	SecHdrFlag  uint64
	APID        uint64
	SeqFlags    uint64
	SeqCount    uint64
	DataLength  uint64
}

// newHeaderAssembler declares every header field, including data_length, as
// bit-typed. The frame engine packs byte-typed fields ahead of a single
// trailing block holding every bit-typed field in declared order; since
// data_length must land immediately after seq_count in the wire format
// rather than before it, it has to be part of that same bit block (a 16-bit
// bit-typed field packs identically to a big-endian byte-typed one, so
// nothing is lost by declaring it this way).
func newHeaderAssembler() *frame.Assembler {
	a := frame.NewAssembler(nil)
	_ = a.AddField(field.Descriptor{Name: "version", Kind: field.KindUint, Length: field.BitLength(3)})
	_ = a.AddField(field.Descriptor{Name: "type", Kind: field.KindUint, Length: field.BitLength(1)})
	_ = a.AddField(field.Descriptor{Name: "sec_hdr_flag", Kind: field.KindUint, Length: field.BitLength(1)})
	_ = a.AddField(field.Descriptor{Name: "apid", Kind: field.KindUint, Length: field.BitLength(11)})
	_ = a.AddField(field.Descriptor{Name: "seq_flags", Kind: field.KindUint, Length: field.BitLength(2)})
	_ = a.AddField(field.Descriptor{Name: "seq_count", Kind: field.KindUint, Length: field.BitLength(14)})
	_ = a.AddField(field.Descriptor{Name: "data_length", Kind: field.KindUint, Length: field.BitLength(16)})

	return a
}

// Bytes assembles h into the 6-byte wire representation, driving a
// fieldtable.Table + frame.Assembler internally rather than hand-packing
// bits — the generic engine applied to one fixed, well-known layout.
func (h PrimaryHeader) Bytes() ([]byte, error) {
	a := newHeaderAssembler()

	if err := a.SetBitField("version", h.Version); err != nil {
		return nil, err
	}
	if err := a.SetBitField("type", h.Type); err != nil {
		return nil, err
	}
	if err := a.SetBitField("sec_hdr_flag", h.SecHdrFlag); err != nil {
		return nil, err
	}
	if err := a.SetBitField("apid", h.APID); err != nil {
		return nil, err
	}
	if err := a.SetBitField("seq_flags", h.SeqFlags); err != nil {
		return nil, err
	}
	if err := a.SetBitField("seq_count", h.SeqCount); err != nil {
		return nil, err
	}
	if err := a.SetBitField("data_length", h.DataLength); err != nil {
		return nil, err
	}

	return a.Assemble()
}

// ParsePrimaryHeader splits buf's first 6 bytes back into a PrimaryHeader.
func ParsePrimaryHeader(buf []byte) (PrimaryHeader, error) {
	a := newHeaderAssembler()

	fields, err := a.Disassemble(buf)
	if err != nil {
		return PrimaryHeader{}, err
	}

	var h PrimaryHeader
	for _, f := range fields {
		switch f.Name {
		case "version":
			h.Version = f.Value
		case "type":
			h.Type = f.Value
		case "sec_hdr_flag":
			h.SecHdrFlag = f.Value
		case "apid":
			h.APID = f.Value
		case "seq_flags":
			h.SeqFlags = f.Value
		case "seq_count":
			h.SeqCount = f.Value
		case "data_length":
			h.DataLength = f.Value
		}
	}

	return h, nil
}
