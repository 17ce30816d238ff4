// Package frame implements the FrameAssembler, FrameDisassembler, and the
// semantic rule engine that runs as the assembler's second phase: length
// rules, checksum ranges, and structural validation.
package frame

import (
	"fmt"

	"github.com/yanzhen74/apdl/bitcodec"
	"github.com/yanzhen74/apdl/crc"
	"github.com/yanzhen74/apdl/errs"
	"github.com/yanzhen74/apdl/expr"
	"github.com/yanzhen74/apdl/field"
	"github.com/yanzhen74/apdl/fieldtable"
	"github.com/yanzhen74/apdl/internal/options"
	"github.com/yanzhen74/apdl/rule"
)

var defaultChecksumTargetNames = []string{"fecf", "crc", "checksum", "crc_field", "check_field"}

// NamedField is one entry of a Disassemble result: either a byte-typed
// field's raw bytes, or a bit-typed field's numeric value.
type NamedField struct {
	Name  string
	Bytes []byte
	Value uint64
	IsBit bool
}

// Assembler holds field descriptors, rules, and the two value stores (one for
// byte-typed fields, one for bit-typed fields) for a single protocol frame.
// It is a single-owner mutable object; concurrent mutation is not supported.
type Assembler struct {
	table              *fieldtable.Table
	byteStore          map[string][]byte
	bitStore           map[string]uint64
	rules              []rule.Rule
	observer           rule.Observer
	checksumTargetNames []string
}

// Option configures an Assembler at construction time.
type Option = options.Option[*Assembler]

// WithChecksumFieldNames overrides the conventional checksum-field names
// findChecksumTarget falls back to when no field is tagged with the target
// algorithm. Different protocol families name this field differently (e.g.
// CCSDS's "fecf" vs a CAN frame's "crc15"); the default list covers the
// common cases without every caller having to tag every checksum field.
func WithChecksumFieldNames(names ...string) Option {
	return options.NoError(func(a *Assembler) {
		a.checksumTargetNames = append([]string(nil), names...)
	})
}

// NewAssembler returns an empty Assembler. A nil observer is replaced with
// rule.NoopObserver. Options configure construction-time knobs such as
// WithChecksumFieldNames; invalid options are ignored since none of the
// current options can fail (options.NoError-based).
func NewAssembler(observer rule.Observer, opts ...Option) *Assembler {
	if observer == nil {
		observer = rule.NoopObserver
	}

	a := &Assembler{
		table:               fieldtable.New(),
		byteStore:           make(map[string][]byte),
		bitStore:            make(map[string]uint64),
		observer:            observer,
		checksumTargetNames: defaultChecksumTargetNames,
	}

	_ = options.Apply(a, opts...)

	return a
}

// Table exposes the underlying field table read-only, for connector and
// expression consumers that need position/size bookkeeping without
// duplicating it.
func (a *Assembler) Table() *fieldtable.Table { return a.table }

// AddField appends a field descriptor in declared order.
func (a *Assembler) AddField(desc field.Descriptor) error {
	return a.table.Add(desc)
}

// AddRule appends a semantic rule, to be applied in Assemble's Phase B.
func (a *Assembler) AddRule(r rule.Rule) {
	a.rules = append(a.rules, r)
}

// SetField sets a byte-typed field's value. It fails with ErrTypeError for a
// bit-typed field, and with ErrLengthMismatch when len(data) does not match
// the field's declared byte size (Dynamic and Expression fields are exempt).
func (a *Assembler) SetField(name string, data []byte) error {
	desc, err := a.table.Field(name)
	if err != nil {
		return err
	}
	if desc.IsBitTyped() {
		return fmt.Errorf("%w: field %q is bit-typed, use SetBitField", errs.ErrTypeError, name)
	}

	switch desc.Length.Unit {
	case field.Dynamic:
		if err := a.table.SetDynamicLength(name, len(data)); err != nil {
			return err
		}
	case field.Expression:
		// Size is deferred to a LengthRule, but once a value lands the table
		// must track its real size for offset/position bookkeeping.
		if err := a.table.SetDynamicLength(name, len(data)); err != nil {
			return err
		}
	default:
		declBytes, err := a.table.SizeBytes(name)
		if err != nil {
			return err
		}
		if len(data) != declBytes {
			return fmt.Errorf("%w: field %q expected %d bytes, got %d", errs.ErrLengthMismatch, name, declBytes, len(data))
		}
	}

	a.byteStore[name] = append([]byte(nil), data...)

	return nil
}

// SetBitField sets a bit-typed field's value. It fails with ErrTypeError for
// a byte-typed field, and with ErrValueOutOfRange when value exceeds the
// field's declared bit width.
func (a *Assembler) SetBitField(name string, value uint64) error {
	desc, err := a.table.Field(name)
	if err != nil {
		return err
	}
	if !desc.IsBitTyped() {
		return fmt.Errorf("%w: field %q is byte-typed, use SetField", errs.ErrTypeError, name)
	}
	if desc.Length.Value < 64 && value >= (uint64(1)<<uint(desc.Length.Value)) {
		return fmt.Errorf("%w: value %d does not fit in %d bits (field %q)", errs.ErrValueOutOfRange, value, desc.Length.Value, name)
	}

	a.bitStore[name] = value

	return nil
}

// GetField returns a byte-typed field's current stored bytes, or nil if
// unset. Call after Assemble to read back length/checksum fields the rule
// engine overwrote.
func (a *Assembler) GetField(name string) ([]byte, error) {
	desc, err := a.table.Field(name)
	if err != nil {
		return nil, err
	}
	if desc.IsBitTyped() {
		return nil, fmt.Errorf("%w: field %q is bit-typed", errs.ErrTypeError, name)
	}

	return a.byteStore[name], nil
}

// GetBitField returns a bit-typed field's current stored value, or its
// fixed-value default (else 0) if unset.
func (a *Assembler) GetBitField(name string) (uint64, error) {
	desc, err := a.table.Field(name)
	if err != nil {
		return 0, err
	}
	if !desc.IsBitTyped() {
		return 0, fmt.Errorf("%w: field %q is byte-typed", errs.ErrTypeError, name)
	}
	if v, ok := a.bitStore[name]; ok {
		return v, nil
	}

	return desc.DefaultValue(), nil
}

// Assemble runs Phase A (layout) then Phase B (the semantic rule engine) and
// returns the finished frame. On any error the partial buffer is discarded;
// the caller gets either a finished frame or the first error, never both.
func (a *Assembler) Assemble() ([]byte, error) {
	buf, err := a.layout()
	if err != nil {
		return nil, err
	}

	if err := a.applyRules(buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// layout implements Phase A, the trailing-bit-block packing rule: every
// byte-typed field is packed in declared order starting at the front of the
// buffer, and every bit-typed field is packed, in declared order relative to
// the other bit-typed fields, into a single block appended after every
// byte-typed field — regardless of where a bit field falls in the overall
// declaration order. Each field's bit offset is FieldTable.OffsetBits, which
// is the single source of truth for this layout; layout and Disassemble must
// never compute offsets independently of it.
func (a *Assembler) layout() ([]byte, error) {
	fields := a.table.All()

	totalBits, err := a.table.OffsetBits(len(fields))
	if err != nil {
		return nil, err
	}

	buf := make([]byte, (totalBits+7)/8)

	for i, desc := range fields {
		width, err := a.table.SizeBits(desc.Name)
		if err != nil {
			return nil, err
		}
		offset, err := a.table.OffsetBits(i)
		if err != nil {
			return nil, err
		}

		if desc.IsBitTyped() {
			val, ok := a.bitStore[desc.Name]
			if !ok {
				val = desc.DefaultValue()
			}
			if err := bitcodec.WriteBits(buf, offset, width, val); err != nil {
				return nil, err
			}
		} else {
			data, err := a.resolveByteField(desc, width/8)
			if err != nil {
				return nil, err
			}
			if err := writeBytesAtBitOffset(buf, offset, data); err != nil {
				return nil, err
			}
		}
	}

	return buf, nil
}

func (a *Assembler) resolveByteField(desc field.Descriptor, size int) ([]byte, error) {
	if b, ok := a.byteStore[desc.Name]; ok {
		return b, nil
	}

	if desc.Constraint.Kind == field.ConstraintFixed {
		out := make([]byte, size)
		putBigEndian(out, desc.Constraint.FixedValue)

		return out, nil
	}

	return make([]byte, size), nil
}

// writeBytesAtBitOffset writes data (a byte-typed field's value) into buf
// starting at bitOffset, which need not be byte-aligned. It chunks in
// <=64-bit pieces since bitcodec caps a single write at 64 bits.
func writeBytesAtBitOffset(buf []byte, bitOffset int, data []byte) error {
	offset := bitOffset
	for i := 0; i < len(data); i += 8 {
		end := i + 8
		if end > len(data) {
			end = len(data)
		}
		chunk := data[i:end]
		width := len(chunk) * 8
		if err := bitcodec.WriteBits(buf, offset, width, readBigEndian(chunk)); err != nil {
			return err
		}
		offset += width
	}

	return nil
}

// readBytesAtBitOffset is the inverse of writeBytesAtBitOffset: it reads
// byteLen bytes' worth of bits starting at bitOffset back out as a []byte.
func readBytesAtBitOffset(buf []byte, bitOffset, byteLen int) ([]byte, error) {
	out := make([]byte, byteLen)
	offset := bitOffset
	for i := 0; i < byteLen; i += 8 {
		end := i + 8
		if end > byteLen {
			end = byteLen
		}
		width := (end - i) * 8
		val, err := bitcodec.ReadBits(buf, offset, width)
		if err != nil {
			return nil, err
		}
		putBigEndian(out[i:end], val)
		offset += width
	}

	return out, nil
}

func readBigEndian(src []byte) uint64 {
	var v uint64
	for _, b := range src {
		v = (v << 8) | uint64(b)
	}

	return v
}

func putBigEndian(dst []byte, value uint64) {
	n := len(dst)
	for i := 0; i < n; i++ {
		shift := uint(8 * (n - 1 - i))
		dst[i] = byte(value >> shift)
	}
}

// frameResolver implements expr.Resolver against the field table and the
// in-progress buffer. Name resolution is the only place the evaluator
// touches the field table.
type frameResolver struct {
	table *fieldtable.Table
	buf   []byte
}

func (r frameResolver) FieldLen(name string) (uint64, error) {
	n, err := r.table.SizeBytes(name)

	return uint64(n), err
}

func (r frameResolver) FieldPos(name string) (uint64, error) {
	n, err := r.table.Position(name)

	return uint64(n), err
}

func (r frameResolver) TotalLength() uint64 { return uint64(len(r.buf)) }

// applyRules implements Phase B: length rules first, then checksum ranges,
// then structural rules and hook-only dispatch. This order is fixed because
// checksums typically cover length fields.
func (a *Assembler) applyRules(buf []byte) error {
	for _, r := range a.rules {
		if r.Kind == rule.KindLengthRule {
			if err := a.applyLengthRule(buf, r.LengthRule); err != nil {
				return err
			}
		}
	}

	for _, r := range a.rules {
		if r.Kind == rule.KindChecksumRange {
			if err := a.applyChecksumRange(buf, r.ChecksumRange); err != nil {
				return err
			}
		}
	}

	for _, r := range a.rules {
		switch {
		case r.Kind.IsStructural():
			if err := a.applyStructural(buf, r); err != nil {
				return err
			}
		case r.Kind.IsHookOnly(), r.Kind == rule.KindFieldMapping:
			a.observer.ObserveRule(r)
		}
	}

	return nil
}

func (a *Assembler) applyLengthRule(buf []byte, r rule.LengthRule) error {
	value, err := expr.Eval(r.Expression, frameResolver{table: a.table, buf: buf})
	if err != nil {
		return err
	}

	pos, err := a.table.Position(r.Field)
	if err != nil {
		return err
	}
	size, err := a.table.SizeBytes(r.Field)
	if err != nil {
		return err
	}
	if pos+size > len(buf) {
		return fmt.Errorf("%w: length field %q exceeds buffer of %d bytes", errs.ErrInvalidFrameFormat, r.Field, len(buf))
	}
	if size < 8 && value >= (uint64(1)<<uint(size*8)) {
		return fmt.Errorf("%w: value %d does not fit in %d-byte field %q", errs.ErrValueOutOfRange, value, size, r.Field)
	}

	putBigEndian(buf[pos:pos+size], value)
	a.byteStore[r.Field] = append([]byte(nil), buf[pos:pos+size]...)

	return nil
}

func (a *Assembler) applyChecksumRange(buf []byte, r rule.ChecksumRange) error {
	startPos, err := a.table.Position(r.StartField)
	if err != nil {
		return err
	}
	endPos, err := a.table.Position(r.EndField)
	if err != nil {
		return err
	}
	endSize, err := a.table.SizeBytes(r.EndField)
	if err != nil {
		return err
	}

	rangeEnd := endPos + endSize
	if rangeEnd > len(buf) || startPos > rangeEnd {
		return fmt.Errorf("%w: checksum range [%d,%d) exceeds buffer of %d bytes", errs.ErrInvalidFrameFormat, startPos, rangeEnd, len(buf))
	}
	data := buf[startPos:rangeEnd]

	target, err := a.findChecksumTarget(r.Algorithm)
	if err != nil {
		return err
	}
	targetPos, err := a.table.Position(target.Name)
	if err != nil {
		return err
	}
	targetSize, err := a.table.SizeBytes(target.Name)
	if err != nil {
		return err
	}
	if targetPos+targetSize > len(buf) {
		return fmt.Errorf("%w: checksum field %q exceeds buffer of %d bytes", errs.ErrInvalidFrameFormat, target.Name, len(buf))
	}

	var value uint64
	switch r.Algorithm {
	case field.AlgorithmCRC16:
		value = uint64(crc.CCITT16(data))
	case field.AlgorithmCRC32:
		value = uint64(crc.IEEE32(data))
	case field.AlgorithmCRC15:
		value = uint64(crc.CAN15(data))
	case field.AlgorithmXOR:
		value = uint64(crc.XOR8(data))
	default:
		return fmt.Errorf("%w: unsupported checksum algorithm for field %q", errs.ErrInvalidFrameFormat, target.Name)
	}

	putBigEndian(buf[targetPos:targetPos+targetSize], value)
	a.byteStore[target.Name] = append([]byte(nil), buf[targetPos:targetPos+targetSize]...)

	return nil
}

// findChecksumTarget resolves a ChecksumRange rule's destination field:
// first a field tagged with the matching Algorithm, else the first field
// named one of the conventional checksum-field names.
func (a *Assembler) findChecksumTarget(alg field.Algorithm) (field.Descriptor, error) {
	for _, d := range a.table.All() {
		if d.Algorithm == alg {
			return d, nil
		}
	}

	for _, name := range a.checksumTargetNames {
		if d, err := a.table.Field(name); err == nil {
			return d, nil
		}
	}

	return field.Descriptor{}, fmt.Errorf("%w: no checksum target field for algorithm", errs.ErrFieldNotFound)
}

func (a *Assembler) applyStructural(buf []byte, r rule.Rule) error {
	switch r.Kind {
	case rule.KindOrder:
		firstIdx, err := a.table.IndexOf(r.Order.First)
		if err != nil {
			return err
		}
		secondIdx, err := a.table.IndexOf(r.Order.Second)
		if err != nil {
			return err
		}
		if firstIdx >= secondIdx {
			return fmt.Errorf("%w: order rule violated: %q must precede %q", errs.ErrInvalidFrameFormat, r.Order.First, r.Order.Second)
		}
	case rule.KindDependency:
		if _, err := a.table.IndexOf(r.Dependency.Dep); err != nil {
			return err
		}
		if _, err := a.table.IndexOf(r.Dependency.On); err != nil {
			return err
		}
	case rule.KindPointer:
		if _, err := a.table.IndexOf(r.Pointer.From); err != nil {
			return err
		}
		if _, err := a.table.IndexOf(r.Pointer.To); err != nil {
			return err
		}
	case rule.KindConditional:
		if _, err := expr.Eval(r.Conditional.Expression, frameResolver{table: a.table, buf: buf}); err != nil {
			return err
		}
	}

	return nil
}

// Disassemble splits buf into named field slices, mirroring the Phase A
// layout exactly: byte-typed fields read back in declared order from the
// front of the buffer, then bit-typed fields read back from the trailing
// bit block, using FieldTable.OffsetBits for every field's position. It
// fails with ErrInvalidFrameFormat when buf is shorter than the sum of
// declared sizes.
func (a *Assembler) Disassemble(buf []byte) ([]NamedField, error) {
	fields := a.table.All()

	totalBits, err := a.table.OffsetBits(len(fields))
	if err != nil {
		return nil, err
	}
	if (totalBits+7)/8 > len(buf) {
		return nil, fmt.Errorf("%w: buffer of %d bytes too short for declared fields totaling %d bits",
			errs.ErrInvalidFrameFormat, len(buf), totalBits)
	}

	var results []NamedField
	for i, desc := range fields {
		width, err := a.table.SizeBits(desc.Name)
		if err != nil {
			return nil, err
		}
		offset, err := a.table.OffsetBits(i)
		if err != nil {
			return nil, err
		}

		if desc.IsBitTyped() {
			val, err := bitcodec.ReadBits(buf, offset, width)
			if err != nil {
				return nil, err
			}
			results = append(results, NamedField{Name: desc.Name, Value: val, IsBit: true})
		} else {
			data, err := readBytesAtBitOffset(buf, offset, width/8)
			if err != nil {
				return nil, err
			}
			results = append(results, NamedField{Name: desc.Name, Bytes: data})
		}
	}

	return results, nil
}
