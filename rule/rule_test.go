package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yanzhen74/apdl/field"
)

func TestKind_IsStructural(t *testing.T) {
	assert.True(t, KindOrder.IsStructural())
	assert.True(t, KindPointer.IsStructural())
	assert.False(t, KindLengthRule.IsStructural())
	assert.False(t, KindChecksumRange.IsStructural())
}

func TestKind_IsHookOnly(t *testing.T) {
	assert.True(t, KindRouting.IsHookOnly())
	assert.True(t, KindSecurity.IsHookOnly())
	assert.False(t, KindLengthRule.IsHookOnly())
	assert.False(t, KindOrder.IsHookOnly())
}

func TestObserverFunc_Invoked(t *testing.T) {
	var seen []Rule
	obs := ObserverFunc(func(r Rule) { seen = append(seen, r) })

	r := NewHookOnly(KindRouting, "routing:vcid")
	obs.ObserveRule(r)

	assert.Len(t, seen, 1)
	assert.Equal(t, "routing:vcid", seen[0].RawTag)
}

func TestNoopObserver_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		NoopObserver.ObserveRule(NewLengthRule("len", "total_length"))
	})
}

func TestNewChecksumRange(t *testing.T) {
	r := NewChecksumRange(field.AlgorithmCRC16, "sync", "payload")
	assert.Equal(t, KindChecksumRange, r.Kind)
	assert.Equal(t, field.AlgorithmCRC16, r.ChecksumRange.Algorithm)
}
