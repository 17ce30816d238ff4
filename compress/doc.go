// Package compress provides the compression codecs that back the archive
// package's captured-frame batches, letting received frames be persisted for
// replay and offline analysis.
//
// Four algorithms are available:
//   - None: no compression, fastest, useful as a baseline or when frames are already
//     dense (CCSDS frames are bit-packed, not byte-redundant, so this is often the
//     right default)
//   - Zstd: best ratio, moderate speed; good for cold-storage capture logs
//   - S2: balanced ratio and speed; good for a capture log still being appended to
//   - LZ4: fastest decompression; good when a capture log is replayed often
//
// All four implement the Codec interface (Compressor + Decompressor) so the archive
// package can select one at construction time without caring which it got.
package compress
