// Package archive captures received frames into a compressed batch log for
// replay and offline analysis, wiring the compress package's codec family
// into the reception pipeline.
package archive

import (
	"fmt"
	"io"

	"github.com/yanzhen74/apdl/compress"
	"github.com/yanzhen74/apdl/endian"
	"github.com/yanzhen74/apdl/errs"
	"github.com/yanzhen74/apdl/internal/pool"
)

// Record is one captured frame: its channel sequence number and raw bytes.
type Record struct {
	Seq  uint64
	Data []byte
}

// Batch is one compressed group of records.
type Batch struct {
	Algorithm    compress.Algorithm
	Compressed   []byte
	OriginalSize int
	RecordCount  int
}

// Log buffers records and flushes them into compressed batches, either on
// demand or once BatchSize records have accumulated.
type Log struct {
	codec     compress.Codec
	algorithm compress.Algorithm
	batchSize int
	pending   []Record
	batches   []Batch
}

// New returns a Log that compresses with alg's codec and auto-flushes every
// batchSize appended records. A batchSize of 0 disables auto-flush; the
// caller must call Flush explicitly.
func New(alg compress.Algorithm, batchSize int) (*Log, error) {
	codec, err := compress.CreateCodec(alg)
	if err != nil {
		return nil, err
	}

	return &Log{
		codec:     codec,
		algorithm: alg,
		batchSize: batchSize,
	}, nil
}

// Append buffers one captured frame, auto-flushing if the pending batch has
// reached batchSize.
func (l *Log) Append(seq uint64, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	l.pending = append(l.pending, Record{Seq: seq, Data: cp})

	if l.batchSize > 0 && len(l.pending) >= l.batchSize {
		return l.Flush()
	}

	return nil
}

// Flush compresses every pending record into one new Batch. It is a no-op
// if no records are pending.
func (l *Log) Flush() error {
	if len(l.pending) == 0 {
		return nil
	}

	raw := encodeRecords(l.pending)
	compressed, err := l.codec.Compress(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidFrameFormat, err)
	}

	l.batches = append(l.batches, Batch{
		Algorithm:    l.algorithm,
		Compressed:   compressed,
		OriginalSize: len(raw),
		RecordCount:  len(l.pending),
	})
	l.pending = l.pending[:0]

	return nil
}

// Batches returns every flushed batch so far. Pending, not-yet-flushed
// records are not included; call Flush first to include them.
func (l *Log) Batches() []Batch {
	return l.batches
}

// ReadBatch decompresses and decodes the records in batch.
func ReadBatch(batch Batch) ([]Record, error) {
	codec, err := compress.CreateCodec(batch.Algorithm)
	if err != nil {
		return nil, err
	}

	raw, err := codec.Decompress(batch.Compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidFrameFormat, err)
	}

	return decodeRecords(raw, batch.RecordCount)
}

// WriteTo writes every flushed batch to w as a simple length-prefixed
// stream: per batch, a 1-byte algorithm tag, a big-endian uint32 record
// count, a big-endian uint32 compressed length, then the compressed bytes.
func (l *Log) WriteTo(w io.Writer) (int64, error) {
	engine := endian.GetBigEndianEngine()
	var total int64

	for _, b := range l.batches {
		header := make([]byte, 0, 9)
		header = append(header, byte(b.Algorithm))
		header = engine.AppendUint32(header, uint32(b.RecordCount))
		header = engine.AppendUint32(header, uint32(len(b.Compressed)))

		n, err := w.Write(header)
		total += int64(n)
		if err != nil {
			return total, err
		}

		n, err = w.Write(b.Compressed)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

func encodeRecords(records []Record) []byte {
	buf := pool.GetArchiveBuffer()
	defer pool.PutArchiveBuffer(buf)

	engine := endian.GetBigEndianEngine()
	var hdr [12]byte
	for _, r := range records {
		engine.PutUint64(hdr[:8], r.Seq)
		engine.PutUint32(hdr[8:], uint32(len(r.Data)))
		buf.MustWrite(hdr[:])
		buf.MustWrite(r.Data)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out
}

func decodeRecords(raw []byte, count int) ([]Record, error) {
	engine := endian.GetBigEndianEngine()
	records := make([]Record, 0, count)
	off := 0

	for off < len(raw) {
		if off+12 > len(raw) {
			return nil, fmt.Errorf("%w: truncated record header", errs.ErrInvalidFrameFormat)
		}

		seq := engine.Uint64(raw[off : off+8])
		off += 8
		length := int(engine.Uint32(raw[off : off+4]))
		off += 4

		if off+length > len(raw) {
			return nil, fmt.Errorf("%w: truncated record body", errs.ErrInvalidFrameFormat)
		}

		data := make([]byte, length)
		copy(data, raw[off:off+length])
		off += length

		records = append(records, Record{Seq: seq, Data: data})
	}

	if len(records) != count {
		return nil, fmt.Errorf("%w: record count mismatch", errs.ErrInvalidFrameFormat)
	}

	return records, nil
}
