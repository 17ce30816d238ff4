// Package field defines the field descriptor: the immutable, parser-produced
// record that the rest of the toolkit (fieldtable, frame, connector, ...) builds
// frames from.
package field

// Kind is the logical type of a field.
type Kind uint8

const (
	// KindUint is an unsigned integer of 1..64 bits.
	KindUint Kind = iota
	// KindBytes is a raw byte blob of declared or dynamic size.
	KindBytes
	// KindAddress128 is a fixed 128-bit address blob.
	KindAddress128
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindBytes:
		return "bytes"
	case KindAddress128:
		return "address128"
	default:
		return "unknown"
	}
}

// LengthUnit is the unit a field's declared length is expressed in.
type LengthUnit uint8

const (
	// Byte means Length counts whole bytes.
	Byte LengthUnit = iota
	// Bit means Length counts bits.
	Bit
	// Dynamic means the field has no fixed declared size; its size is the
	// length of whatever value is currently stored for it.
	Dynamic
	// Expression means the field's size is computed at assemble time by a
	// LengthRule rather than declared up front.
	Expression
)

func (u LengthUnit) String() string {
	switch u {
	case Byte:
		return "byte"
	case Bit:
		return "bit"
	case Dynamic:
		return "dynamic"
	case Expression:
		return "expression"
	default:
		return "unknown"
	}
}

// Length is a field's declared length: a value paired with the unit it is
// expressed in.
type Length struct {
	Unit  LengthUnit
	Value int // bit or byte count; meaningless when Unit is Dynamic/Expression
}

// ByteLength returns a declared byte-count length.
func ByteLength(n int) Length { return Length{Unit: Byte, Value: n} }

// BitLength returns a declared bit-width length.
func BitLength(n int) Length { return Length{Unit: Bit, Value: n} }

// DynamicLength returns a dynamic (unbounded, stored-length) field length.
func DynamicLength() Length { return Length{Unit: Dynamic} }

// ExpressionLength returns an expression-deferred field length.
func ExpressionLength() Length { return Length{Unit: Expression} }

// Algorithm is the checksum/hash algorithm a field is tagged to carry.
type Algorithm uint8

const (
	// AlgorithmNone means the field carries no checksum tag.
	AlgorithmNone Algorithm = iota
	AlgorithmCRC16
	AlgorithmCRC32
	AlgorithmCRC15
	AlgorithmXOR
	// AlgorithmCustom is a named, externally-implemented algorithm; Custom
	// holds the name.
	AlgorithmCustom
)

// Constraint restricts the values a field may take. At most one of its
// non-zero-value forms applies to a given field.
type Constraint struct {
	// Kind selects which of the fields below is active.
	Kind ConstraintKind
	// FixedValue is the single allowed value (ConstraintFixed).
	FixedValue uint64
	// Min/Max bound the allowed value (ConstraintRange), inclusive.
	Min, Max uint64
	// Enum lists the allowed values (ConstraintEnum).
	Enum []uint64
	// CustomName names an externally-validated constraint (ConstraintCustom).
	CustomName string
}

// ConstraintKind selects the active form of a Constraint.
type ConstraintKind uint8

const (
	ConstraintNone ConstraintKind = iota
	ConstraintFixed
	ConstraintRange
	ConstraintEnum
	ConstraintCustom
)

// Descriptor is an immutable field descriptor, as produced by the (external,
// out-of-scope) DSL/JSON parser.
type Descriptor struct {
	// Name is the field's unique identifier within its FieldTable.
	Name string
	// Kind is the field's logical type.
	Kind Kind
	// Length is the field's declared length.
	Length Length
	// Constraint optionally restricts the field's legal values; the zero value
	// (ConstraintNone) means unconstrained.
	Constraint Constraint
	// Algorithm optionally tags the field as the target of a checksum rule.
	Algorithm Algorithm
	// CustomAlgorithmName names the algorithm when Algorithm is AlgorithmCustom.
	CustomAlgorithmName string
	// AssociatedFields names other fields this one is semantically linked to
	// (e.g. a length field's target, a pointer field's referent). Informational
	// only to the core; consumers may use it for diagnostics.
	AssociatedFields []string
	// Description is free-text documentation carried through from the parser.
	Description string
}

// IsBitTyped reports whether this descriptor belongs in the bit-typed value
// store: true for KindUint fields declared in Bit units.
func (d Descriptor) IsBitTyped() bool {
	return d.Kind == KindUint && d.Length.Unit == Bit
}

// DefaultValue returns the value implied by the field's fixed-value
// constraint, or zero if none is set.
func (d Descriptor) DefaultValue() uint64 {
	if d.Constraint.Kind == ConstraintFixed {
		return d.Constraint.FixedValue
	}

	return 0
}
