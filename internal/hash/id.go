// Package hash provides the fast, non-cryptographic fingerprint the registry
// package uses to identify protocol packages by name.
package hash

import "github.com/cespare/xxhash/v2"

// Fingerprint computes the xxHash64 of the given string.
//
// It is used by the registry package to give each named package a cheap 64-bit
// identity for equality checks, and is distinct from the DJB2-style hash the
// connector package's "hash" mapping logic computes over field values, which
// must match a specific algorithm rather than just be fast.
func Fingerprint(data string) uint64 {
	return xxhash.Sum64String(data)
}

// FingerprintBytes computes the xxHash64 of the given byte slice.
func FingerprintBytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}
