// Package demux implements per-channel demultiplexing of received frames
// into bounded queues, validated for sequence continuity on the way in.
package demux

import (
	"fmt"

	"github.com/yanzhen74/apdl/errs"
	"github.com/yanzhen74/apdl/internal/options"
	"github.com/yanzhen74/apdl/seq"
)

// Stats tracks per-channel counters.
type Stats struct {
	Count    uint64
	Lost     uint64
	LastSeq  uint64
	HasSeq   bool
	Active   bool
}

type channel struct {
	queue [][]byte
	stats Stats
}

// Demultiplexer routes frames into bounded per-channel queues, each guarded
// by a shared seq.Validator.
type Demultiplexer struct {
	maxQueueLen    int
	validator      *seq.Validator
	channels       map[string]*channel
	dropOldestOnFull bool
}

// Option configures a Demultiplexer at construction time.
type Option = options.Option[*Demultiplexer]

// WithDropOldestOnFull makes Demultiplex evict the oldest queued frame
// instead of failing with ErrQueueFull when a channel's queue is at
// capacity. Useful for a receiver that prefers to keep ingesting the most
// recent traffic over preserving every backlogged frame.
func WithDropOldestOnFull() Option {
	return options.NoError(func(d *Demultiplexer) {
		d.dropOldestOnFull = true
	})
}

// New returns a demultiplexer with the given per-channel queue capacity and
// sequence-counter modulus (CCSDS: 0x4000).
func New(maxQueueLen int, modulus uint64, opts ...Option) *Demultiplexer {
	d := &Demultiplexer{
		maxQueueLen: maxQueueLen,
		validator:   seq.NewValidator(modulus),
		channels:    make(map[string]*channel),
	}

	_ = options.Apply(d, opts...)

	return d
}

func (d *Demultiplexer) channelFor(channelID string) *channel {
	ch, ok := d.channels[channelID]
	if !ok {
		ch = &channel{}
		d.channels[channelID] = ch
	}

	return ch
}

// Demultiplex validates seq on channelID, records statistics, and enqueues
// frame. If the channel's queue is at capacity it fails with ErrQueueFull,
// or, when built with WithDropOldestOnFull, drops the oldest queued frame.
func (d *Demultiplexer) Demultiplex(channelID string, sequence uint64, frame []byte) (seq.Result, error) {
	ch := d.channelFor(channelID)
	if len(ch.queue) >= d.maxQueueLen {
		if !d.dropOldestOnFull {
			return seq.Result{}, fmt.Errorf("%w: channel %q", errs.ErrQueueFull, channelID)
		}
		ch.queue = ch.queue[1:]
	}

	result := d.validator.Validate(channelID, sequence)

	ch.stats.Count++
	ch.stats.LastSeq = sequence
	ch.stats.HasSeq = true
	ch.stats.Active = true
	if result.Kind == seq.ResultFrameLost {
		ch.stats.Lost += result.Lost
	}

	ch.queue = append(ch.queue, frame)

	return result, nil
}

// ExtractPDU pops the oldest queued frame for channelID, or false if empty.
func (d *Demultiplexer) ExtractPDU(channelID string) ([]byte, bool) {
	ch, ok := d.channels[channelID]
	if !ok || len(ch.queue) == 0 {
		return nil, false
	}

	frame := ch.queue[0]
	ch.queue = ch.queue[1:]

	return frame, true
}

// Stats returns a copy of channelID's current statistics.
func (d *Demultiplexer) Stats(channelID string) Stats {
	ch, ok := d.channels[channelID]
	if !ok {
		return Stats{}
	}

	return ch.stats
}

// ResetChannel clears channelID's statistics, queue, and validator state.
func (d *Demultiplexer) ResetChannel(channelID string) {
	delete(d.channels, channelID)
	d.validator.Reset(channelID)
}

// ClearChannel empties channelID's queue only, preserving statistics and
// validator state.
func (d *Demultiplexer) ClearChannel(channelID string) {
	if ch, ok := d.channels[channelID]; ok {
		ch.queue = nil
	}
}
