// Package codec owns the payload byte/integer transforms.
//
// Ownership boundary:
// - text <-> byte sequence (utf-8 style, surrogate-aware)
// - byte sequence <-> packed integers (1-3 bytes + 2-bit length tag)
// - start/end marker framing and extraction
//
// Nothing in this package returns an error. Malformed input degrades to a
// best-effort result so a growing, partially received stream can be decoded
// repeatedly.
package codec
