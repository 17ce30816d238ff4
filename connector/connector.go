// Package connector implements field mapping between a source and target
// frame, and the MPDU first-header-pointer packing protocol.
package connector

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yanzhen74/apdl/errs"
	"github.com/yanzhen74/apdl/frame"
)

// MaskMappingEntry matches when (source & Mask) == SrcMasked, byte-aligned
// from the right: Mask and SrcMasked are compared against the last len(Mask)
// bytes of the source. Nothing is padded; a source shorter than Mask never
// matches.
type MaskMappingEntry struct {
	Mask      []byte
	SrcMasked []byte
	Dst       []byte
}

// EnumMapping wildcard-matches a UTF-8 source value against Pattern
// ('*' any run, '?' one char) and yields Target on match.
type EnumMapping struct {
	Pattern string
	Target  string
}

// FieldMapping maps one source field to one target field.
type FieldMapping struct {
	SourceField      string
	TargetField      string
	MappingLogic     string
	DefaultValue     string
	EnumMappings     []EnumMapping
	MaskMappingTable []MaskMappingEntry
}

// resolveSource reads the source field's bytes, falling back to DefaultValue
// (parsed as hex if it has a "0x" prefix, else as raw UTF-8 bytes) when the
// field has never been set.
func (m FieldMapping) resolveSource(source *frame.Assembler) ([]byte, error) {
	val, err := source.GetField(m.SourceField)
	if err == nil && val != nil {
		return val, nil
	}

	if m.DefaultValue == "" {
		return nil, nil
	}
	if strings.HasPrefix(m.DefaultValue, "0x") || strings.HasPrefix(m.DefaultValue, "0X") {
		return hex.DecodeString(m.DefaultValue[2:])
	}

	return []byte(m.DefaultValue), nil
}

// Apply evaluates this mapping and writes the result into target.
func (m FieldMapping) Apply(source, target *frame.Assembler) error {
	src, err := m.resolveSource(source)
	if err != nil {
		return fmt.Errorf("%w: resolving default for %q: %v", errs.ErrInvalidFrameFormat, m.SourceField, err)
	}

	out, err := m.resolve(src)
	if err != nil {
		return err
	}

	return target.SetField(m.TargetField, out)
}

func (m FieldMapping) resolve(src []byte) ([]byte, error) {
	if len(m.MaskMappingTable) > 0 {
		for _, entry := range m.MaskMappingTable {
			if maskedEquals(src, entry.Mask, entry.SrcMasked) {
				return entry.Dst, nil
			}
		}

		return nil, fmt.Errorf("%w: no mask-mapping-table entry matched field %q", errs.ErrInvalidFrameFormat, m.SourceField)
	}

	if len(m.EnumMappings) > 0 {
		srcStr := string(src)
		for _, e := range m.EnumMappings {
			if wildcardMatch(e.Pattern, srcStr) {
				return []byte(e.Target), nil
			}
		}

		return nil, fmt.Errorf("%w: no enum-mapping matched field %q", errs.ErrInvalidFrameFormat, m.SourceField)
	}

	return applyMappingLogic(m.MappingLogic, src)
}

// maskedEquals hand-rolls the comparison instead of bytes.Equal because mask
// and srcMasked anchor to the least-significant end of src rather than its
// start, and are typically shorter than src.
func maskedEquals(src, mask, srcMasked []byte) bool {
	n := len(mask)
	if len(src) < n {
		return false
	}
	// Align from the right: mask anchors to the least-significant end of
	// src (src is never shorter here; that case returned false above).
	offset := len(src) - n
	for i := 0; i < n; i++ {
		if (src[offset+i] & mask[i]) != srcMasked[i] {
			return false
		}
	}

	return true
}

func wildcardMatch(pattern, s string) bool {
	return wildcardMatchRunes([]rune(pattern), []rune(s))
}

func wildcardMatchRunes(pattern, s []rune) bool {
	if len(pattern) == 0 {
		return len(s) == 0
	}

	switch pattern[0] {
	case '*':
		for i := 0; i <= len(s); i++ {
			if wildcardMatchRunes(pattern[1:], s[i:]) {
				return true
			}
		}

		return false
	case '?':
		if len(s) == 0 {
			return false
		}

		return wildcardMatchRunes(pattern[1:], s[1:])
	default:
		if len(s) == 0 || s[0] != pattern[0] {
			return false
		}

		return wildcardMatchRunes(pattern[1:], s[1:])
	}
}

func applyMappingLogic(logic string, src []byte) ([]byte, error) {
	lower := strings.ToLower(logic)

	switch {
	case lower == "identity" || lower == "direct" || lower == "passthrough":
		return src, nil
	case strings.Contains(lower, "hash"):
		h := djb2(src)
		if mod, ok := parseModulus(lower); ok && mod > 0 {
			h %= mod
		}
		out := make([]byte, len(src))
		putBigEndianTrunc(out, h)

		return out, nil
	case strings.Contains(lower, "shift"):
		return applyShift(lower, src)
	case strings.Contains(lower, "scale"):
		return applyScale(lower, src)
	case strings.Contains(lower, "mask"):
		return applyMask(lower, src)
	default:
		return nil, fmt.Errorf("%w: unrecognized mapping_logic %q", errs.ErrInvalidFrameFormat, logic)
	}
}

// djb2 is the classic Bernstein hash: h = h*33 ^ c, seeded at 5381.
func djb2(data []byte) uint64 {
	var h uint64 = 5381
	for _, b := range data {
		h = h*33 ^ uint64(b)
	}

	return h
}

func parseModulus(logic string) (uint64, bool) {
	idx := strings.Index(logic, "%")
	if idx < 0 {
		return 0, false
	}
	rest := strings.TrimSpace(logic[idx+1:])
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.ParseUint(fields[0], 10, 64)

	return n, err == nil
}

func applyShift(logic string, src []byte) ([]byte, error) {
	amount, ok := parseTrailingDecimal(logic)
	if !ok {
		return nil, fmt.Errorf("%w: shift logic %q has no shift amount", errs.ErrInvalidFrameFormat, logic)
	}

	val := readBigEndian(src)
	if strings.Contains(logic, "left") || strings.Contains(logic, "<<") {
		val <<= amount
	} else {
		val >>= amount
	}

	out := make([]byte, len(src))
	putBigEndianTrunc(out, val)

	return out, nil
}

// maxValueForWidth returns the maximum unsigned value representable in n
// bytes, capped at math.MaxUint64 for n >= 8.
func maxValueForWidth(n int) uint64 {
	if n >= 8 {
		return math.MaxUint64
	}

	return (uint64(1) << uint(n*8)) - 1
}

func applyScale(logic string, src []byte) ([]byte, error) {
	factor, ok := parseTrailingDecimal(logic)
	if !ok {
		return nil, fmt.Errorf("%w: scale logic %q has no factor", errs.ErrInvalidFrameFormat, logic)
	}

	val := readBigEndian(src)
	limit := maxValueForWidth(len(src))

	if strings.Contains(logic, "*") {
		if factor != 0 && val > limit/factor {
			val = limit
		} else {
			val *= factor
		}
	} else if strings.Contains(logic, "/") {
		if factor == 0 {
			return nil, errs.ErrDivisionByZero
		}
		val /= factor
	}

	if val > limit {
		val = limit
	}

	out := make([]byte, len(src))
	putBigEndianTrunc(out, val)

	return out, nil
}

func applyMask(logic string, src []byte) ([]byte, error) {
	v, ok := parseTrailingValue(logic)
	if !ok {
		return nil, fmt.Errorf("%w: mask logic %q has no operand", errs.ErrInvalidFrameFormat, logic)
	}

	val := readBigEndian(src)
	if strings.Contains(logic, "|") {
		val |= v
	} else {
		val &= v
	}

	out := make([]byte, len(src))
	putBigEndianTrunc(out, val)

	return out, nil
}

// parseTrailingDecimal extracts the last whitespace-separated decimal token
// in logic, e.g. "shift left 3" -> 3.
func parseTrailingDecimal(logic string) (uint64, bool) {
	fields := strings.Fields(logic)
	for i := len(fields) - 1; i >= 0; i-- {
		if n, err := strconv.ParseUint(fields[i], 10, 64); err == nil {
			return n, true
		}
	}

	return 0, false
}

// parseTrailingValue extracts the last token as either a decimal or a
// 0x-prefixed hex literal.
func parseTrailingValue(logic string) (uint64, bool) {
	fields := strings.Fields(logic)
	for i := len(fields) - 1; i >= 0; i-- {
		tok := fields[i]
		if strings.HasPrefix(tok, "0x") {
			if n, err := strconv.ParseUint(tok[2:], 16, 64); err == nil {
				return n, true
			}
			continue
		}
		if n, err := strconv.ParseUint(tok, 10, 64); err == nil {
			return n, true
		}
	}

	return 0, false
}

func readBigEndian(src []byte) uint64 {
	var v uint64
	for _, b := range src {
		v = (v << 8) | uint64(b)
	}

	return v
}

func putBigEndianTrunc(dst []byte, value uint64) {
	n := len(dst)
	for i := 0; i < n; i++ {
		shift := uint(8 * (n - 1 - i))
		dst[i] = byte(value >> shift)
	}
}

// PlacementKind selects a data-placement strategy.
type PlacementKind uint8

const (
	PlacementDirect PlacementKind = iota
	PlacementPointerBased
	PlacementStreamBased
	PlacementCustom
)

// Placement configures how an assembled source frame lands in the target.
type Placement struct {
	Kind       PlacementKind
	TargetField string
	// CustomName names the strategy when Kind is PlacementCustom.
	CustomName string
	// Params is an associative bag of string parameters, e.g.
	// padding_value=0xFF, pointer_field=first_hdr_ptr.
	Params map[string]string
}

// ApplyDirect writes the entire assembled source frame into the named
// target field, which must be Dynamic or exactly the source length.
func ApplyDirect(target *frame.Assembler, targetField string, sourceFrame []byte) error {
	return target.SetField(targetField, sourceFrame)
}

// Engine runs field mappings and data placement between a source and target
// frame.
type Engine struct {
	Mpdu *MpduManager
}

// NewEngine returns a connector engine backed by a fresh MpduManager.
func NewEngine() *Engine {
	return &Engine{Mpdu: NewMpduManager()}
}

// Connect applies every mapping from source to target, then performs data
// placement per placement.Kind. For PlacementPointerBased, the parentType
// names the MpduManager FIFO the source frame is queued into.
func (e *Engine) Connect(source, target *frame.Assembler, mappings []FieldMapping, placement Placement, parentType string) ([]byte, error) {
	for _, m := range mappings {
		if err := m.Apply(source, target); err != nil {
			return nil, err
		}
	}

	sourceBytes, err := source.Assemble()
	if err != nil {
		return nil, err
	}

	switch placement.Kind {
	case PlacementDirect:
		if err := ApplyDirect(target, placement.TargetField, sourceBytes); err != nil {
			return nil, err
		}

		return target.Assemble()
	case PlacementPointerBased:
		e.Mpdu.PushParentTemplate(parentType, target)
		e.Mpdu.Enqueue(parentType, sourceBytes)

		return e.Mpdu.BuildMpduPacket(parentType, placement)
	case PlacementStreamBased, PlacementCustom:
		// Left as a no-op hook for callers that need a custom/stream
		// placement strategy.
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown placement kind", errs.ErrInvalidFrameFormat)
	}
}
