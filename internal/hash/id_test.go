package hash

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"package name", "space_packet_tm", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fingerprint(tt.data)
			if tt.id != 0 {
				assert.Equal(t, tt.id, got)
			}
			// Fingerprinting is deterministic: same input, same output.
			assert.Equal(t, got, Fingerprint(tt.data))
		})
	}
}

func TestFingerprintBytes_MatchesFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint("ccsds-tm"), FingerprintBytes([]byte("ccsds-tm")))
}

func randString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, n)
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := range b {
		b[i] = letters[seededRand.Intn(len(letters))]
	}

	return string(b)
}

func BenchmarkFingerprint(b *testing.B) {
	randStr := randString(20)
	b.ResetTimer()
	for b.Loop() {
		Fingerprint(randStr)
	}
}
