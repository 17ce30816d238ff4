// Package seq implements per-channel modular sequence-number validation,
// classifying each observed sequence number as Ok, Duplicate, lost frames,
// or a clean wraparound.
package seq

// Result classifies one validate() call.
type Result struct {
	// Kind is one of the Result* constants below.
	Kind ResultKind
	// Lost is populated only for ResultFrameLost: the number of frames
	// between the last-seen and current sequence number.
	Lost uint64
}

// ResultKind enumerates the outcomes of Validate.
type ResultKind uint8

const (
	// ResultOk means seq was the expected next value (or the first
	// observation on this channel).
	ResultOk ResultKind = iota
	// ResultDuplicate means seq repeats the last-seen value; no state change.
	ResultDuplicate
	// ResultFrameLost means one or more sequence numbers were skipped.
	ResultFrameLost
	// ResultWraparound means seq rolled over from modulus-1 back to 0 with
	// no loss. Distinguishes a clean wrap from the ordinary Ok case for
	// callers that log wraps separately.
	ResultWraparound
)

func (k ResultKind) String() string {
	switch k {
	case ResultOk:
		return "Ok"
	case ResultDuplicate:
		return "Duplicate"
	case ResultFrameLost:
		return "FrameLost"
	case ResultWraparound:
		return "Wraparound"
	default:
		return "Unknown"
	}
}

// Validator tracks the last-seen sequence number per channel under a fixed
// modulus.
type Validator struct {
	modulus uint64
	last    map[string]uint64
	seen    map[string]bool
}

// NewValidator returns a validator with the given sequence-counter modulus
// (CCSDS Space Packet sequence counters use 0x4000).
func NewValidator(modulus uint64) *Validator {
	return &Validator{
		modulus: modulus,
		last:    make(map[string]uint64),
		seen:    make(map[string]bool),
	}
}

// Validate classifies seq on channelID and updates the channel's state.
func (v *Validator) Validate(channelID string, seq uint64) Result {
	if !v.seen[channelID] {
		v.seen[channelID] = true
		v.last[channelID] = seq

		return Result{Kind: ResultOk}
	}

	last := v.last[channelID]
	if seq == last {
		return Result{Kind: ResultDuplicate}
	}

	v.last[channelID] = seq

	if last == v.modulus-1 && seq == 0 {
		return Result{Kind: ResultWraparound}
	}
	if seq == last+1 {
		return Result{Kind: ResultOk}
	}

	lost := (seq + v.modulus - last - 1) % v.modulus

	return Result{Kind: ResultFrameLost, Lost: lost}
}

// Reset clears a channel's tracked state, so the next Validate call on it is
// treated as a first observation.
func (v *Validator) Reset(channelID string) {
	delete(v.last, channelID)
	delete(v.seen, channelID)
}
