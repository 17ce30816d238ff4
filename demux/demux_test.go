package demux

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanzhen74/apdl/errs"
	"github.com/yanzhen74/apdl/seq"
)

func TestDemultiplex_EnqueuesAndTracksStats(t *testing.T) {
	d := New(4, 0x4000)

	result, err := d.Demultiplex("vc0", 0, []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, seq.ResultOk, result.Kind)

	stats := d.Stats("vc0")
	assert.Equal(t, uint64(1), stats.Count)
	assert.True(t, stats.Active)
}

func TestDemultiplex_QueueFullFails(t *testing.T) {
	d := New(1, 0x4000)

	_, err := d.Demultiplex("vc0", 0, []byte{0x01})
	require.NoError(t, err)

	_, err = d.Demultiplex("vc0", 1, []byte{0x02})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrQueueFull))
}

func TestDemultiplex_RecordsLostCount(t *testing.T) {
	d := New(4, 0x4000)

	_, err := d.Demultiplex("vc0", 0, []byte{0x01})
	require.NoError(t, err)
	result, err := d.Demultiplex("vc0", 3, []byte{0x02})
	require.NoError(t, err)
	assert.Equal(t, seq.ResultFrameLost, result.Kind)

	stats := d.Stats("vc0")
	assert.Equal(t, uint64(2), stats.Lost)
}

func TestDemultiplex_DropOldestOnFullEvictsInsteadOfErroring(t *testing.T) {
	d := New(1, 0x4000, WithDropOldestOnFull())

	_, err := d.Demultiplex("vc0", 0, []byte{0x01})
	require.NoError(t, err)

	_, err = d.Demultiplex("vc0", 1, []byte{0x02})
	require.NoError(t, err)

	pdu, ok := d.ExtractPDU("vc0")
	require.True(t, ok)
	assert.Equal(t, []byte{0x02}, pdu)

	_, ok = d.ExtractPDU("vc0")
	assert.False(t, ok)
}

func TestExtractPDU_FIFOOrder(t *testing.T) {
	d := New(4, 0x4000)
	_, _ = d.Demultiplex("vc0", 0, []byte{0x01})
	_, _ = d.Demultiplex("vc0", 1, []byte{0x02})

	first, ok := d.ExtractPDU("vc0")
	require.True(t, ok)
	assert.Equal(t, []byte{0x01}, first)

	second, ok := d.ExtractPDU("vc0")
	require.True(t, ok)
	assert.Equal(t, []byte{0x02}, second)

	_, ok = d.ExtractPDU("vc0")
	assert.False(t, ok)
}

func TestResetChannel_ClearsStatsAndValidator(t *testing.T) {
	d := New(4, 0x4000)
	_, _ = d.Demultiplex("vc0", 5, []byte{0x01})

	d.ResetChannel("vc0")
	assert.Equal(t, Stats{}, d.Stats("vc0"))

	result, err := d.Demultiplex("vc0", 200, []byte{0x02})
	require.NoError(t, err)
	assert.Equal(t, seq.ResultOk, result.Kind)
}

func TestClearChannel_PreservesStats(t *testing.T) {
	d := New(4, 0x4000)
	_, _ = d.Demultiplex("vc0", 0, []byte{0x01})

	d.ClearChannel("vc0")
	_, ok := d.ExtractPDU("vc0")
	assert.False(t, ok)

	stats := d.Stats("vc0")
	assert.Equal(t, uint64(1), stats.Count)
}
