// Package reorder implements a sliding-window reorder buffer keyed by
// modular sequence number, releasing PDUs in order as gaps fill in and
// discarding entries that fall outside the window.
package reorder

import "github.com/yanzhen74/apdl/internal/options"

// Buffer holds out-of-order PDUs until they can be released in sequence
// order, within a bounded window.
type Buffer struct {
	window       uint64
	modulus      uint64
	nextExpected uint64
	buf          map[uint64][]byte
	discardCount uint64
}

// Option configures a Buffer at construction time.
type Option = options.Option[*Buffer]

// WithStartSequence sets the first sequence number the buffer expects,
// instead of the default 0. Useful when a reorder buffer is created mid
// stream, e.g. after a prior buffer was torn down and the channel's next
// expected sequence is already known.
func WithStartSequence(seqNum uint64) Option {
	return options.NoError(func(b *Buffer) {
		b.nextExpected = seqNum % b.modulus
	})
}

// New returns a reorder buffer with window size W and sequence modulus M,
// starting at next-expected sequence 0 unless overridden by WithStartSequence.
func New(window, modulus uint64, opts ...Option) *Buffer {
	b := &Buffer{
		window:  window,
		modulus: modulus,
		buf:     make(map[uint64][]byte),
	}

	_ = options.Apply(b, opts...)

	return b
}

// Insert places pdu at seq and returns the run of PDUs released in order, if
// any. A seq that equals nextExpected releases immediately and drains every
// subsequently-contiguous buffered entry; a seq within the window is
// buffered; anything else (too far ahead, or the window overflows) is
// discarded.
func (b *Buffer) Insert(seqNum uint64, pdu []byte) [][]byte {
	if seqNum == b.nextExpected {
		released := [][]byte{pdu}
		b.advance()

		for {
			next, ok := b.buf[b.nextExpected]
			if !ok {
				break
			}
			delete(b.buf, b.nextExpected)
			released = append(released, next)
			b.advance()
		}

		return released
	}

	distance := (seqNum + b.modulus - b.nextExpected) % b.modulus
	if distance >= b.window {
		b.discardCount++

		return nil
	}

	b.buf[seqNum] = pdu
	// The distance<window admission check above keeps len(buf) <= window-1
	// while nextExpected only moves by release. SetNextExpected can leave
	// entries from the old window buffered, and then this loop evicts the
	// entries nearest nextExpected until len(buf) <= window.
	for uint64(len(b.buf)) > b.window {
		var minKey uint64
		first := true
		for k := range b.buf {
			d := (k + b.modulus - b.nextExpected) % b.modulus
			if first {
				minKey = k
				first = false

				continue
			}
			if (minKey+b.modulus-b.nextExpected)%b.modulus > d {
				minKey = k
			}
		}
		delete(b.buf, minKey)
		b.discardCount++
	}

	return nil
}

func (b *Buffer) advance() {
	b.nextExpected = (b.nextExpected + 1) % b.modulus
}

// Flush returns every buffered PDU in ascending key order and empties the
// buffer. The ordering guarantee normally provided by Insert is waived.
func (b *Buffer) Flush() [][]byte {
	keys := make([]uint64, 0, len(b.buf))
	for k := range b.buf {
		keys = append(keys, k)
	}
	// Insertion sort: window sizes are small and this avoids pulling in
	// sort for one call site.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}

	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		out = append(out, b.buf[k])
	}
	b.buf = make(map[uint64][]byte)

	return out
}

// SetNextExpected re-syncs the buffer after a controlled reset.
func (b *Buffer) SetNextExpected(seqNum uint64) {
	b.nextExpected = seqNum % b.modulus
}

// DiscardCount returns the total number of PDUs dropped so far, either for
// falling outside the window or for being evicted by window overflow.
func (b *Buffer) DiscardCount() uint64 { return b.discardCount }

// NextExpected returns the sequence number the buffer is currently waiting
// to release next.
func (b *Buffer) NextExpected() uint64 { return b.nextExpected }
