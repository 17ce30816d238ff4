// Package fieldtable holds the ordered list of field descriptors a frame is
// built from, plus the cumulative offset bookkeeping the assembler, rule
// engine, and expression evaluator all share.
package fieldtable

import (
	"fmt"

	"github.com/yanzhen74/apdl/errs"
	"github.com/yanzhen74/apdl/field"
)

// Table is an ordered list of field descriptors with a name -> index map.
// Names are unique; fields are appended in declared order and never
// reordered or removed — descriptors are immutable once constructed.
type Table struct {
	fields  []field.Descriptor
	indexOf map[string]int
	// dynamicLen holds the current stored byte length of Dynamic and
	// Expression fields, which SizeBits/SizeBytes report as their size.
	// Absent entries are 0.
	dynamicLen map[string]int
}

// New returns an empty field table.
func New() *Table {
	return &Table{
		indexOf:    make(map[string]int),
		dynamicLen: make(map[string]int),
	}
}

// Add appends desc to the table, recording its index. It fails with
// ErrValidationError if the name is already present.
func (t *Table) Add(desc field.Descriptor) error {
	if _, exists := t.indexOf[desc.Name]; exists {
		return fmt.Errorf("%w: duplicate field name %q", errs.ErrValidationError, desc.Name)
	}

	t.indexOf[desc.Name] = len(t.fields)
	t.fields = append(t.fields, desc)

	return nil
}

// IndexOf returns the declared-order index of name.
func (t *Table) IndexOf(name string) (int, error) {
	idx, ok := t.indexOf[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrFieldNotFound, name)
	}

	return idx, nil
}

// Field returns the descriptor for name.
func (t *Table) Field(name string) (field.Descriptor, error) {
	idx, err := t.IndexOf(name)
	if err != nil {
		return field.Descriptor{}, err
	}

	return t.fields[idx], nil
}

// FieldAt returns the descriptor at declared-order index idx.
func (t *Table) FieldAt(idx int) (field.Descriptor, error) {
	if idx < 0 || idx >= len(t.fields) {
		return field.Descriptor{}, fmt.Errorf("%w: index %d out of range", errs.ErrFieldNotFound, idx)
	}

	return t.fields[idx], nil
}

// Len returns the number of fields in the table.
func (t *Table) Len() int { return len(t.fields) }

// All returns the fields in declared order. The caller must not mutate the
// returned slice.
func (t *Table) All() []field.Descriptor { return t.fields }

// SetDynamicLength records the current stored byte length of a Dynamic field,
// so SizeBits/SizeBytes/OffsetBits downstream of it reflect the real size.
func (t *Table) SetDynamicLength(name string, byteLen int) error {
	if _, err := t.IndexOf(name); err != nil {
		return err
	}

	t.dynamicLen[name] = byteLen

	return nil
}

// SizeBits returns the declared bit width of a field: explicit for Bit,
// ×8 for Byte, and the stored dynamic length ×8 for Dynamic and Expression
// (0 until a length has been stored for the field).
func (t *Table) SizeBits(name string) (int, error) {
	desc, err := t.Field(name)
	if err != nil {
		return 0, err
	}

	return t.sizeBits(desc), nil
}

func (t *Table) sizeBits(desc field.Descriptor) int {
	switch desc.Length.Unit {
	case field.Bit:
		return desc.Length.Value
	case field.Byte:
		return desc.Length.Value * 8
	case field.Dynamic, field.Expression:
		// Expression-length fields are deferred at declaration time but, once
		// a value has been stored for them, behave exactly like Dynamic for
		// layout purposes: their size is whatever was last set.
		return t.dynamicLen[desc.Name] * 8
	default:
		return 0
	}
}

// OffsetBits returns field idx's starting bit offset in the assembled
// buffer under the trailing-bit-block layout: every byte-typed field is
// packed in declared order starting at the front of the buffer, and every
// bit-typed field is packed, in declared order relative to the other
// bit-typed fields, into a single block appended after every byte-typed
// field — regardless of where the bit field falls in overall declaration
// order. A byte field declared after a bit field still lands before that
// bit field's bits in the assembled buffer.
func (t *Table) OffsetBits(idx int) (int, error) {
	if idx < 0 || idx > len(t.fields) {
		return 0, fmt.Errorf("%w: index %d out of range", errs.ErrFieldNotFound, idx)
	}

	totalByteBits := 0
	for _, d := range t.fields {
		if !d.IsBitTyped() {
			totalByteBits += t.sizeBits(d)
		}
	}

	byteBits, bitBits := 0, 0
	for i := 0; i < idx; i++ {
		if t.fields[i].IsBitTyped() {
			bitBits += t.sizeBits(t.fields[i])
		} else {
			byteBits += t.sizeBits(t.fields[i])
		}
	}

	if idx == len(t.fields) {
		return totalByteBits + bitBits, nil
	}
	if t.fields[idx].IsBitTyped() {
		return totalByteBits + bitBits, nil
	}

	return byteBits, nil
}

// Position returns the byte offset of name: floor(OffsetBits(index_of(name))/8).
func (t *Table) Position(name string) (int, error) {
	idx, err := t.IndexOf(name)
	if err != nil {
		return 0, err
	}

	bits, err := t.OffsetBits(idx)
	if err != nil {
		return 0, err
	}

	return bits / 8, nil
}

// SizeBytes returns the ceiling, in bytes, of name's bit width.
func (t *Table) SizeBytes(name string) (int, error) {
	bits, err := t.SizeBits(name)
	if err != nil {
		return 0, err
	}

	return (bits + 7) / 8, nil
}
