package archive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanzhen74/apdl/compress"
)

func TestAppend_AutoFlushesAtBatchSize(t *testing.T) {
	log, err := New(compress.AlgorithmNone, 2)
	require.NoError(t, err)

	require.NoError(t, log.Append(1, []byte{0x01}))
	assert.Empty(t, log.Batches())

	require.NoError(t, log.Append(2, []byte{0x02}))
	require.Len(t, log.Batches(), 1)
	assert.Equal(t, 2, log.Batches()[0].RecordCount)
}

func TestFlush_NoOpWhenEmpty(t *testing.T) {
	log, err := New(compress.AlgorithmZstd, 0)
	require.NoError(t, err)

	require.NoError(t, log.Flush())
	assert.Empty(t, log.Batches())
}

func TestReadBatch_RoundTrip(t *testing.T) {
	for _, alg := range []compress.Algorithm{compress.AlgorithmNone, compress.AlgorithmZstd, compress.AlgorithmS2, compress.AlgorithmLZ4} {
		log, err := New(alg, 0)
		require.NoError(t, err, alg.String())

		require.NoError(t, log.Append(10, []byte{0xAA, 0xBB, 0xCC}))
		require.NoError(t, log.Append(11, []byte{0xDD}))
		require.NoError(t, log.Flush())
		require.Len(t, log.Batches(), 1, alg.String())

		records, err := ReadBatch(log.Batches()[0])
		require.NoError(t, err, alg.String())
		require.Len(t, records, 2, alg.String())
		assert.Equal(t, uint64(10), records[0].Seq, alg.String())
		assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, records[0].Data, alg.String())
		assert.Equal(t, uint64(11), records[1].Seq, alg.String())
		assert.Equal(t, []byte{0xDD}, records[1].Data, alg.String())
	}
}

func TestAppend_CopiesInputData(t *testing.T) {
	log, err := New(compress.AlgorithmNone, 0)
	require.NoError(t, err)

	data := []byte{0x01, 0x02}
	require.NoError(t, log.Append(1, data))
	data[0] = 0xFF

	require.NoError(t, log.Flush())
	records, err := ReadBatch(log.Batches()[0])
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), records[0].Data[0])
}

func TestWriteTo_WritesAllBatches(t *testing.T) {
	log, err := New(compress.AlgorithmNone, 1)
	require.NoError(t, err)

	require.NoError(t, log.Append(1, []byte{0x01, 0x02}))
	require.NoError(t, log.Append(2, []byte{0x03}))
	require.Len(t, log.Batches(), 2)

	var buf bytes.Buffer
	n, err := log.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.NotZero(t, buf.Len())
}
