package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanzhen74/apdl/errs"
	"github.com/yanzhen74/apdl/field"
	"github.com/yanzhen74/apdl/fieldtable"
)

func sampleTable(t *testing.T) *fieldtable.Table {
	t.Helper()

	tbl := fieldtable.New()
	require.NoError(t, tbl.Add(field.Descriptor{Name: "apid", Kind: field.KindUint, Length: field.BitLength(11)}))

	return tbl
}

func TestRegister_AndLookup(t *testing.T) {
	r := New()
	tbl := sampleTable(t)

	require.NoError(t, r.Register("tm.frame.v1", tbl))

	got, err := r.Lookup("tm.frame.v1")
	require.NoError(t, err)
	assert.Same(t, tbl, got)
}

func TestRegister_DuplicateNameFails(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("tm.frame.v1", sampleTable(t)))

	err := r.Register("tm.frame.v1", sampleTable(t))
	assert.ErrorIs(t, err, errs.ErrDuplicatePackage)
}

func TestRegister_EmptyNameFails(t *testing.T) {
	r := New()
	err := r.Register("", sampleTable(t))
	assert.ErrorIs(t, err, errs.ErrValidationError)
}

func TestLookup_UnknownNameFails(t *testing.T) {
	r := New()
	_, err := r.Lookup("no.such.package")
	assert.ErrorIs(t, err, errs.ErrFieldNotFound)
}

func TestFingerprint_IsDeterministic(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("tm.frame.v1", sampleTable(t)))

	fp1, err := r.Fingerprint("tm.frame.v1")
	require.NoError(t, err)
	fp2, err := r.Fingerprint("tm.frame.v1")
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)
	assert.NotZero(t, fp1)
}

func TestNames_ReturnsRegistrationOrder(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("tm.frame.v1", sampleTable(t)))
	require.NoError(t, r.Register("tc.frame.v1", sampleTable(t)))
	require.NoError(t, r.Register("can.frame.std", sampleTable(t)))

	assert.Equal(t, []string{"tm.frame.v1", "tc.frame.v1", "can.frame.std"}, r.Names())
	assert.Equal(t, 3, r.Count())
}

func TestHasFingerprintCollision_FalseByDefault(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("tm.frame.v1", sampleTable(t)))
	assert.False(t, r.HasFingerprintCollision())
}
