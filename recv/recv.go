// Package recv implements the bounded receive buffer that sits in front of
// a reception pipeline: sync-marker search, length-prefixed frame
// extraction, and ring-style overflow eviction, backed by
// internal/pool.ByteBuffer for its growable storage.
package recv

import (
	"bytes"
	"fmt"

	"github.com/yanzhen74/apdl/errs"
	"github.com/yanzhen74/apdl/internal/options"
	"github.com/yanzhen74/apdl/internal/pool"
)

// SyncSearcher locates a frame synchronization marker in a byte stream.
type SyncSearcher interface {
	// Find returns the offset of the marker's first byte, or false if absent.
	Find(buf []byte) (int, bool)
}

// FixedSyncSearcher searches for a fixed byte-string marker, e.g. the CCSDS
// TM transfer frame sync marker 0xEB90.
type FixedSyncSearcher struct {
	Marker []byte
}

// NewFixedSyncSearcher returns a searcher for the given marker bytes.
func NewFixedSyncSearcher(marker []byte) FixedSyncSearcher {
	return FixedSyncSearcher{Marker: append([]byte(nil), marker...)}
}

// Find implements SyncSearcher.
func (s FixedSyncSearcher) Find(buf []byte) (int, bool) {
	idx := bytes.Index(buf, s.Marker)
	if idx < 0 {
		return 0, false
	}

	return idx, true
}

// Buffer is a bounded FIFO of bytes accumulated from a transport, capped at
// capacityMultiplier * maxFrameSize by dropping the oldest bytes on overflow.
type Buffer struct {
	buf                *pool.ByteBuffer
	maxFrameSize       int
	searcher           SyncSearcher
	capacityMultiplier int
}

// Option configures a Buffer at construction time.
type Option = options.Option[*Buffer]

// WithCapacityMultiplier overrides the default 2x maxFrameSize ceiling
// Append enforces before evicting the oldest buffered bytes. A transport
// with bursty, irregularly-sized frames may need more headroom than 2x to
// avoid evicting a frame that is still being completed.
func WithCapacityMultiplier(n int) Option {
	return options.NoError(func(b *Buffer) {
		if n > 0 {
			b.capacityMultiplier = n
		}
	})
}

// New returns a receive buffer with the given maximum frame size and an
// optional sync searcher (nil disables FindSyncMarker/ExtractNextFrame's
// marker search, which then always reports absent).
func New(maxFrameSize int, searcher SyncSearcher, opts ...Option) *Buffer {
	b := &Buffer{
		buf:                pool.NewByteBuffer(pool.FrameBufferDefaultSize),
		maxFrameSize:       maxFrameSize,
		searcher:           searcher,
		capacityMultiplier: 2,
	}

	_ = options.Apply(b, opts...)

	return b
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int { return b.buf.Len() }

// Bytes exposes the buffered bytes read-only. The caller must not retain the
// slice across a call that mutates the buffer.
func (b *Buffer) Bytes() []byte { return b.buf.Bytes() }

// Append adds data to the buffer, dropping the oldest bytes if the result
// would exceed capacityMultiplier*maxFrameSize (2*maxFrameSize by default).
func (b *Buffer) Append(data []byte) {
	b.buf.MustWrite(data)

	limit := b.capacityMultiplier * b.maxFrameSize
	if b.buf.Len() > limit {
		b.dropFront(b.buf.Len() - limit)
	}
}

// dropFront removes the first n bytes (n clamped to the buffer length).
func (b *Buffer) dropFront(n int) {
	if n <= 0 {
		return
	}
	if n >= b.buf.Len() {
		b.buf.Reset()

		return
	}

	remaining := b.buf.Len() - n
	copy(b.buf.Bytes()[:remaining], b.buf.Bytes()[n:])
	b.buf.SetLength(remaining)
}

// FindSyncMarker returns the offset of the configured sync marker, or false
// if none is configured or none is found.
func (b *Buffer) FindSyncMarker() (int, bool) {
	if b.searcher == nil {
		return 0, false
	}

	return b.searcher.Find(b.buf.Bytes())
}

// CalculateFrameLength reads a big-endian length field at lenOffset (1, 2,
// or 4 bytes) and returns the total frame length: the field's value directly
// when lenIncludesHeader, else headerSize plus the field's value.
func (b *Buffer) CalculateFrameLength(lenOffset, lenSize int, lenIncludesHeader bool, headerSize int) (int, error) {
	if lenSize != 1 && lenSize != 2 && lenSize != 4 {
		return 0, fmt.Errorf("%w: unsupported length field size %d", errs.ErrInvalidFrameFormat, lenSize)
	}

	buf := b.buf.Bytes()
	if lenOffset < 0 || lenOffset+lenSize > len(buf) {
		return 0, fmt.Errorf("%w: length field at offset %d exceeds buffered %d bytes", errs.ErrInvalidFrameFormat, lenOffset, len(buf))
	}

	var value uint64
	for _, bb := range buf[lenOffset : lenOffset+lenSize] {
		value = (value << 8) | uint64(bb)
	}

	if lenIncludesHeader {
		return int(value), nil
	}

	return headerSize + int(value), nil
}

// ExtractFrame drains and returns the first length bytes, or false if fewer
// than length bytes are currently buffered.
func (b *Buffer) ExtractFrame(length int) ([]byte, bool) {
	if length < 0 || length > b.buf.Len() {
		return nil, false
	}

	out := append([]byte(nil), b.buf.Bytes()[:length]...)
	b.dropFront(length)

	return out, true
}

// ExtractNextFrame searches for the sync marker, discards any leading junk
// before it, computes the frame length from the header, and drains the
// frame if it is fully buffered. It returns (nil, nil) when no marker is
// found yet or the frame is not yet fully buffered, and an
// ErrInvalidFrameFormat error when the computed length exceeds
// maxFrameSize.
func (b *Buffer) ExtractNextFrame(lenOffset, lenSize int, lenIncludesHeader bool, headerSize int) ([]byte, error) {
	offset, ok := b.FindSyncMarker()
	if !ok {
		return nil, nil
	}
	if offset > 0 {
		b.dropFront(offset)
	}

	if lenSize != 1 && lenSize != 2 && lenSize != 4 {
		return nil, fmt.Errorf("%w: unsupported length field size %d", errs.ErrInvalidFrameFormat, lenSize)
	}
	if lenOffset+lenSize > b.buf.Len() {
		// Header not fully buffered yet; wait for more data.
		return nil, nil
	}

	length, err := b.CalculateFrameLength(lenOffset, lenSize, lenIncludesHeader, headerSize)
	if err != nil {
		return nil, err
	}

	if length > b.maxFrameSize {
		return nil, fmt.Errorf("%w: computed frame length %d exceeds max %d", errs.ErrInvalidFrameFormat, length, b.maxFrameSize)
	}

	frame, ok := b.ExtractFrame(length)
	if !ok {
		return nil, nil
	}

	return frame, nil
}
