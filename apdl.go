// Package apdl provides a declarative toolkit for describing bit-oriented
// telemetry and command protocols (CCSDS TM/TC transfer frames, Space
// Packets, Encapsulation Packets, CAN-class bus frames) and building or
// parsing them without hand-writing a byte-packing routine per protocol.
//
// # Core Features
//
//   - A generic field table and rule engine (fieldtable, frame) driving
//     arbitrary-width bit/byte field layout, length rules, and checksum
//     ranges from field descriptors rather than bespoke struct packing
//   - CCSDS convenience types (ccsds) for the Space Packet primary header
//     and the well-known sync marker, sequence modulus, and MPDU pointer
//     sentinels
//   - A reception pipeline (recv, demux, seq, reorder) that finds frame
//     boundaries in a byte stream, demultiplexes by channel, validates
//     sequence continuity, and reorders out-of-sequence arrivals
//   - A field-mapping connector (connector) for translating one frame's
//     fields onto another's, including CCSDS MPDU packing
//   - Layered disassembly (layered) for peeling nested protocol layers off
//     one buffer in a single pass
//   - A named-package registry (registry) and a compressed capture log
//     (archive) for persisting received frames for replay
//
// # Basic Usage
//
// Describing a frame layout and assembling it:
//
// Byte-typed fields are packed, in declared order, at the front of the
// buffer; bit-typed fields are packed, in declared order among themselves,
// into a single block appended after every byte-typed field, regardless of
// how the two kinds are interleaved in AddField calls:
//
//	a := frame.NewAssembler(nil)
//	a.AddField(field.Descriptor{Name: "payload", Kind: field.KindBytes, Length: field.ByteLength(4)})
//	a.AddField(field.Descriptor{Name: "apid", Kind: field.KindUint, Length: field.BitLength(11)})
//	a.SetField("payload", []byte{1, 2, 3, 4})
//	a.SetBitField("apid", 0x123)
//	data, err := a.Assemble() // data[:4] is payload, data[4:] is apid's bit block
//
// Running a reception pipeline over an arriving byte stream:
//
//	p := NewPipeline(PipelineConfig{
//	    MaxFrameSize: 1024,
//	    SyncMarker:   ccsds.DefaultSyncMarker,
//	    QueueLen:     64,
//	    Modulus:      ccsds.SequenceModulus,
//	})
//	frames, err := p.Feed(incoming)
//
// # Package Structure
//
// This file provides a convenience wrapper around the sub-packages for the
// common reception-pipeline case. For fine-grained control over layout,
// rules, and field mapping, use the frame, fieldtable, connector, and recv
// packages directly.
package apdl

import (
	"github.com/yanzhen74/apdl/demux"
	"github.com/yanzhen74/apdl/errs"
	"github.com/yanzhen74/apdl/recv"
	"github.com/yanzhen74/apdl/seq"
)

// PipelineConfig configures NewPipeline.
type PipelineConfig struct {
	// MaxFrameSize bounds both the receive buffer (2x this) and the largest
	// frame length the length-field decode will accept.
	MaxFrameSize int
	// SyncMarker is the fixed byte-string frame synchronization marker.
	// ExtractNextFrame requires a configured marker to find frame
	// boundaries, so a nil SyncMarker means Feed never extracts a frame.
	SyncMarker []byte
	// LenOffset, LenSize, LenIncludesHeader, HeaderSize describe the
	// length-field layout passed to recv.Buffer.ExtractNextFrame.
	LenOffset         int
	LenSize           int
	LenIncludesHeader bool
	HeaderSize        int
	// QueueLen is the per-channel bounded queue capacity for Demultiplex.
	QueueLen int
	// Modulus is the sequence-counter modulus (CCSDS: 0x4000).
	Modulus uint64
}

// Pipeline combines a receive buffer with a demultiplexer: bytes in, bounded
// per-channel PDU queues out.
type Pipeline struct {
	cfg   PipelineConfig
	recv  *recv.Buffer
	demux *demux.Demultiplexer
}

// NewPipeline builds a Pipeline from cfg.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	var searcher recv.SyncSearcher
	if len(cfg.SyncMarker) > 0 {
		searcher = recv.NewFixedSyncSearcher(cfg.SyncMarker)
	}

	return &Pipeline{
		cfg:   cfg,
		recv:  recv.New(cfg.MaxFrameSize, searcher),
		demux: demux.New(cfg.QueueLen, cfg.Modulus),
	}
}

// Feed appends data to the receive buffer and extracts every frame that is
// now fully buffered, returning each extracted frame's raw bytes in order.
// Frames are not yet demultiplexed; call Classify with the extracted frame's
// channel ID and sequence number to route it.
func (p *Pipeline) Feed(data []byte) ([][]byte, error) {
	p.recv.Append(data)

	var frames [][]byte
	for {
		f, err := p.recv.ExtractNextFrame(p.cfg.LenOffset, p.cfg.LenSize, p.cfg.LenIncludesHeader, p.cfg.HeaderSize)
		if err != nil {
			return frames, err
		}
		if f == nil {
			break
		}
		frames = append(frames, f)
	}

	return frames, nil
}

// Classify routes one extracted frame into its channel's queue, validating
// sequence continuity along the way.
func (p *Pipeline) Classify(channelID string, sequence uint64, frame []byte) (seq.Result, error) {
	return p.demux.Demultiplex(channelID, sequence, frame)
}

// Drain pops the oldest queued PDU for channelID.
func (p *Pipeline) Drain(channelID string) ([]byte, bool) {
	return p.demux.ExtractPDU(channelID)
}

// Stats returns channelID's counters.
func (p *Pipeline) Stats(channelID string) demux.Stats {
	return p.demux.Stats(channelID)
}

// ErrNoParentTemplate re-exports errs.ErrNoParentTemplate for callers that
// only import the top-level apdl package. The connector package does not
// return it (see the errs doc comment).
var ErrNoParentTemplate = errs.ErrNoParentTemplate
