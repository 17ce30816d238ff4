// Package errs defines the sentinel errors returned across the toolkit.
//
// Every operation returns one of these values directly, or wraps one with
// fmt.Errorf("%w: ...", errs.ErrX, ...) to attach context. Callers should match
// with errors.Is, never string comparison.
package errs

import "errors"

var (
	// ErrFieldNotFound is returned by field-table lookups against an unknown name.
	ErrFieldNotFound = errors.New("apdl: field not found")

	// ErrLengthMismatch is returned by SetField on a non-dynamic byte field when
	// the supplied value's length does not equal the field's declared size.
	ErrLengthMismatch = errors.New("apdl: length mismatch")

	// ErrValueOutOfRange is returned when a bit-field value does not fit its
	// declared width, or a constraint's allowed range/enum is violated.
	ErrValueOutOfRange = errors.New("apdl: value out of range")

	// ErrTypeError is returned when a bit-typed operation targets a byte-typed
	// field, or vice versa.
	ErrTypeError = errors.New("apdl: field type mismatch")

	// ErrInvalidFrameFormat covers parsing failures, bit-codec bounds violations,
	// and structural rule violations (e.g. an Order rule that is not satisfied).
	ErrInvalidFrameFormat = errors.New("apdl: invalid frame format")

	// ErrInvalidExpression is returned by the expression evaluator on malformed
	// input or an unknown identifier/function.
	ErrInvalidExpression = errors.New("apdl: invalid expression")

	// ErrDivisionByZero is returned by the expression evaluator's '/' operator.
	ErrDivisionByZero = errors.New("apdl: division by zero")

	// ErrUnderflow is returned by the expression evaluator's '-' operator when
	// the right operand exceeds the left under 64-bit unsigned arithmetic.
	ErrUnderflow = errors.New("apdl: arithmetic underflow")

	// ErrQueueFull is returned by the demultiplexer when a channel's bounded
	// queue is at capacity.
	ErrQueueFull = errors.New("apdl: channel queue full")

	// ErrParseError is surfaced as-is from the external DSL/JSON parser; the
	// core never constructs it itself but recognizes it when propagating.
	ErrParseError = errors.New("apdl: parse error")

	// ErrValidationError is returned by fieldtable.Table.Add for a duplicate
	// field name and by registry.Register for an empty package name.
	ErrValidationError = errors.New("apdl: validation error")

	// ErrFingerprintCollision is returned by collision.Tracker.TrackFingerprint
	// when a fingerprint is tracked twice (EXPANSION). The package registry
	// does not return it: a collision there only sets the flag
	// Registry.HasFingerprintCollision reports.
	ErrFingerprintCollision = errors.New("apdl: fingerprint collision")

	// ErrDuplicatePackage is returned by the package registry when the same
	// package name is registered twice (EXPANSION).
	ErrDuplicatePackage = errors.New("apdl: duplicate package name")

	// ErrNoParentTemplate names the "no parent template queued" condition. No
	// function in this module returns it: the MPDU manager's BuildMpduPacket
	// reports that case with a nil packet and a nil error.
	ErrNoParentTemplate = errors.New("apdl: no parent template queued")
)
