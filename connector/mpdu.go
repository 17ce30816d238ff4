package connector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yanzhen74/apdl/errs"
	"github.com/yanzhen74/apdl/frame"
)

// Sentinel pointer values from the CCSDS Multiplexing Protocol Data Unit
// first-header-pointer convention, preserved bit-exactly.
const (
	// PointerNoHeader marks a frame where no complete child header has been
	// located yet (the in-progress "haven't decided" state).
	PointerNoHeader uint64 = 0xFFFF
	// PointerIdle marks a frame carrying only idle/padding data.
	PointerIdle uint64 = 0x07FE
	// PointerContinuationOnly marks a frame that is entirely the tail of a
	// child packet begun in a previous frame.
	PointerContinuationOnly uint64 = 0x07FF
)

// continuation tracks a child packet that overflowed one parent frame and
// must be split across the next.
type continuation struct {
	remainingChild []byte
}

// MpduManager packs child packets into parent frames using the CCSDS MPDU
// first-header-pointer protocol: one FIFO of pending children and one FIFO
// of parent templates per parent type, plus an optional in-flight
// continuation carried across calls.
type MpduManager struct {
	children      map[string][][]byte
	parents       map[string][]*frame.Assembler
	continuations map[string]*continuation
}

// NewMpduManager returns an empty manager.
func NewMpduManager() *MpduManager {
	return &MpduManager{
		children:      make(map[string][][]byte),
		parents:       make(map[string][]*frame.Assembler),
		continuations: make(map[string]*continuation),
	}
}

// Enqueue pushes a fully assembled child packet onto parentType's FIFO.
func (m *MpduManager) Enqueue(parentType string, child []byte) {
	m.children[parentType] = append(m.children[parentType], child)
}

// PushParentTemplate queues a pre-seeded parent frame to be filled by the
// next BuildMpduPacket call for parentType.
func (m *MpduManager) PushParentTemplate(parentType string, parent *frame.Assembler) {
	m.parents[parentType] = append(m.parents[parentType], parent)
}

func (m *MpduManager) popParent(parentType string) (*frame.Assembler, bool) {
	queue := m.parents[parentType]
	if len(queue) == 0 {
		return nil, false
	}

	m.parents[parentType] = queue[1:]

	return queue[0], true
}

func (m *MpduManager) popChild(parentType string) ([]byte, bool) {
	queue := m.children[parentType]
	if len(queue) == 0 {
		return nil, false
	}

	m.children[parentType] = queue[1:]

	return queue[0], true
}

func parsePaddingValue(raw string) (byte, error) {
	if raw == "" {
		return 0xFF, nil
	}
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		n, err := strconv.ParseUint(raw[2:], 16, 8)

		return byte(n), err
	}

	n, err := strconv.ParseUint(raw, 10, 8)

	return byte(n), err
}

// BuildMpduPacket pops a parent template for parentType and fills it with as
// many pending child packets as fit, writing the first-header-pointer into
// the field named by placement.Params["pointer_field"] and the packed data
// into placement.TargetField. It returns (nil, nil) when no parent template
// is queued.
func (m *MpduManager) BuildMpduPacket(parentType string, placement Placement) ([]byte, error) {
	parent, ok := m.popParent(parentType)
	if !ok {
		return nil, nil
	}

	pointerField := placement.Params["pointer_field"]
	if pointerField == "" {
		return nil, fmt.Errorf("%w: mpdu placement missing pointer_field param", errs.ErrInvalidFrameFormat)
	}

	capacity, err := parent.Table().SizeBytes(placement.TargetField)
	if err != nil {
		return nil, err
	}
	paddingByte, err := parsePaddingValue(placement.Params["padding_value"])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid padding_value: %v", errs.ErrInvalidFrameFormat, err)
	}

	pointer := PointerNoHeader
	used := 0
	data := make([]byte, 0, capacity)

	if cont, ok := m.continuations[parentType]; ok && len(cont.remainingChild) > 0 {
		n := capacity
		if n > len(cont.remainingChild) {
			n = len(cont.remainingChild)
		}
		data = append(data, cont.remainingChild[:n]...)
		used += n
		pointer = PointerContinuationOnly

		if n < len(cont.remainingChild) {
			cont.remainingChild = cont.remainingChild[n:]

			return m.finalize(parent, pointerField, placement.TargetField, pointer, data)
		}

		delete(m.continuations, parentType)
	}

	for used < capacity {
		child, ok := m.popChild(parentType)
		if !ok {
			break
		}

		if pointer == PointerNoHeader || pointer == PointerContinuationOnly {
			pointer = uint64(used)
		}

		remaining := capacity - used
		if len(child) <= remaining {
			data = append(data, child...)
			used += len(child)

			continue
		}

		data = append(data, child[:remaining]...)
		used = capacity
		m.continuations[parentType] = &continuation{remainingChild: append([]byte(nil), child[remaining:]...)}
	}

	if used < capacity {
		for i := 0; i < capacity-used; i++ {
			data = append(data, paddingByte)
		}
		if pointer == PointerNoHeader {
			pointer = PointerIdle
		}
	}

	return m.finalize(parent, pointerField, placement.TargetField, pointer, data)
}

func (m *MpduManager) finalize(parent *frame.Assembler, pointerField, targetField string, pointer uint64, data []byte) ([]byte, error) {
	pointerSize, err := parent.Table().SizeBytes(pointerField)
	if err != nil {
		return nil, err
	}
	pointerBytes := make([]byte, pointerSize)
	putBigEndianTrunc(pointerBytes, pointer)

	if err := parent.SetField(pointerField, pointerBytes); err != nil {
		return nil, err
	}
	if err := parent.SetField(targetField, data); err != nil {
		return nil, err
	}

	return parent.Assemble()
}
