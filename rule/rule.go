// Package rule defines the semantic rule tagged union the frame engine
// evaluates after laying out raw field bytes: length rules, checksum ranges,
// structural rules, and field-mapping rules, plus the declarative tags that
// are recognized but have no byte-level effect in this core.
package rule

import "github.com/yanzhen74/apdl/field"

// Kind tags which variant of Rule is populated.
type Kind uint8

const (
	KindChecksumRange Kind = iota
	KindLengthRule
	KindDependency
	KindOrder
	KindPointer
	KindConditional
	KindFieldMapping
	// The remaining kinds are recognized and dispatched to an Observer but
	// never mutate frame bytes.
	KindRouting
	KindPriority
	KindStateMachine
	KindMultiplexing
	KindFiltering
	KindSecurity
	KindRedundancy
	KindTimeSync
	KindAddressResolution
)

func (k Kind) String() string {
	names := map[Kind]string{
		KindChecksumRange:     "checksum_range",
		KindLengthRule:        "length_rule",
		KindDependency:        "dependency",
		KindOrder:             "order",
		KindPointer:           "pointer",
		KindConditional:       "conditional",
		KindFieldMapping:      "field_mapping",
		KindRouting:           "routing",
		KindPriority:          "priority",
		KindStateMachine:      "state_machine",
		KindMultiplexing:      "multiplexing",
		KindFiltering:         "filtering",
		KindSecurity:          "security",
		KindRedundancy:        "redundancy",
		KindTimeSync:          "time_sync",
		KindAddressResolution: "address_resolution",
	}
	if s, ok := names[k]; ok {
		return s
	}

	return "unknown"
}

// IsStructural applies (§4.4.3) the Order/Dependency/Pointer/Conditional
// variants: validated but never write bytes.
func (k Kind) IsStructural() bool {
	switch k {
	case KindDependency, KindOrder, KindPointer, KindConditional:
		return true
	default:
		return false
	}
}

// IsHookOnly reports whether k is one of the declarative tags that are
// recognized and dispatched to an Observer but otherwise inert in this core.
func (k Kind) IsHookOnly() bool {
	switch k {
	case KindRouting, KindPriority, KindStateMachine, KindMultiplexing,
		KindFiltering, KindSecurity, KindRedundancy, KindTimeSync, KindAddressResolution:
		return true
	default:
		return false
	}
}

// ChecksumRange computes alg over the byte range [pos(StartField),
// pos(EndField)+size(EndField)) and writes it into the field tagged with alg,
// or else the first field found in the assembler's fallback name list
// (fecf/crc/checksum/crc_field/check_field unless overridden with
// frame.WithChecksumFieldNames).
type ChecksumRange struct {
	Algorithm  field.Algorithm
	StartField string
	EndField   string
}

// LengthRule evaluates Expression and writes the result into Field using
// big-endian encoding of the field's declared byte width.
type LengthRule struct {
	Field      string
	Expression string
}

// Dependency records that Dep depends on On. Assembly checks only that both
// fields exist in the table; it does not check that On has a value.
// Structural only: produces no bytes.
type Dependency struct {
	Dep string
	On  string
}

// Order asserts that First must precede Second in the field table's declared
// order. Violations fail assembly with InvalidFrameFormat.
type Order struct {
	First  string
	Second string
}

// Pointer asserts a referential relationship between two fields (e.g. an
// MPDU pointer field and its data field) for validation purposes.
type Pointer struct {
	From string
	To   string
}

// Conditional carries an Expression that assembly evaluates, failing only if
// the evaluation fails. The result gates no other rule. Structural only in
// this core.
type Conditional struct {
	Expression string
}

// FieldMappingEntry maps one source field to one target field when this rule
// runs inside the connector engine. See the connector package for the fuller
// FieldMapping record consumed there; this is the subset attached to a
// frame-level rule set.
type FieldMappingEntry struct {
	SourceField  string
	TargetField  string
	MappingLogic string
}

// FieldMapping is the rule-engine-visible form of a connector mapping: which
// source/target packages it links and the per-field entries.
type FieldMapping struct {
	SourcePackage string
	TargetPackage string
	Entries       []FieldMappingEntry
}

// Rule is a tagged union over every semantic rule variant. Exactly the field
// matching Kind is meaningful; the rest are zero values.
type Rule struct {
	Kind Kind

	ChecksumRange ChecksumRange
	LengthRule    LengthRule
	Dependency    Dependency
	Order         Order
	Pointer       Pointer
	Conditional   Conditional
	FieldMapping  FieldMapping

	// RawTag carries the original tag text for hook-only rule kinds, so an
	// Observer can distinguish e.g. "routing:vcid" from "routing:apid"
	// without the core needing to understand the difference.
	RawTag string
}

// NewChecksumRange constructs a Rule wrapping a ChecksumRange.
func NewChecksumRange(alg field.Algorithm, start, end string) Rule {
	return Rule{Kind: KindChecksumRange, ChecksumRange: ChecksumRange{Algorithm: alg, StartField: start, EndField: end}}
}

// NewLengthRule constructs a Rule wrapping a LengthRule.
func NewLengthRule(fieldName, expression string) Rule {
	return Rule{Kind: KindLengthRule, LengthRule: LengthRule{Field: fieldName, Expression: expression}}
}

// NewOrder constructs a Rule wrapping an Order.
func NewOrder(first, second string) Rule {
	return Rule{Kind: KindOrder, Order: Order{First: first, Second: second}}
}

// NewHookOnly constructs a Rule of a dispatch-only kind carrying rawTag for
// the Observer.
func NewHookOnly(kind Kind, rawTag string) Rule {
	return Rule{Kind: kind, RawTag: rawTag}
}

// Observer receives hook-only rules and FieldMapping rules as the engine
// encounters them; length, checksum and structural rules are not passed to
// it. It never influences assembled bytes; it
// exists so callers can implement routing/priority/state-machine/etc.
// side-effects outside this core.
type Observer interface {
	ObserveRule(r Rule)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(r Rule)

// ObserveRule implements Observer.
func (f ObserverFunc) ObserveRule(r Rule) { f(r) }

// NoopObserver discards every rule. It is the default when a caller supplies
// none.
var NoopObserver Observer = ObserverFunc(func(Rule) {})
