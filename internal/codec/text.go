package codec

import (
	"unicode"
	"unicode/utf16"
)

const replacementUnit uint16 = 0xFFFD

// Encode converts text to its byte sequence.
func Encode(text string) []byte {
	return EncodeUnits(utf16.Encode([]rune(text)))
}

// Decode converts a byte sequence back to text. Truncated trailing sequences
// are dropped and stray bytes decode to U+FFFD.
func Decode(b []byte) string {
	return string(utf16.Decode(DecodeUnits(b)))
}

// EncodeUnits encodes UTF-16 code units, composing surrogate pairs into one
// scalar before emitting 4 bytes. A lone surrogate is emitted as its own
// 3-byte sequence.
func EncodeUnits(units []uint16) []byte {
	out := make([]byte, 0, len(units))
	for i := 0; i < len(units); i++ {
		code := uint32(units[i])
		if code >= 0xD800 && code <= 0xDBFF && i+1 < len(units) {
			if r := utf16.DecodeRune(rune(code), rune(units[i+1])); r != unicode.ReplacementChar {
				code = uint32(r)
				i++
			}
		}
		out = appendScalar(out, code)
	}
	return out
}

func appendScalar(out []byte, code uint32) []byte {
	switch {
	case code <= 0x7F:
		return append(out, byte(code))
	case code <= 0x7FF:
		return append(out,
			0xC0|byte(code>>6),
			0x80|byte(code&0x3F),
		)
	case code <= 0xFFFF:
		return append(out,
			0xE0|byte(code>>12),
			0x80|byte((code>>6)&0x3F),
			0x80|byte(code&0x3F),
		)
	default:
		return append(out,
			0xF0|byte(code>>18),
			0x80|byte((code>>12)&0x3F),
			0x80|byte((code>>6)&0x3F),
			0x80|byte(code&0x3F),
		)
	}
}

// DecodeUnits decodes a byte sequence to UTF-16 code units, splitting 4-byte
// scalars back into surrogate pairs.
func DecodeUnits(b []byte) []uint16 {
	out := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		lead := b[i]
		n := sequenceLen(lead)
		if n == 0 {
			out = append(out, replacementUnit)
			i++
			continue
		}
		if i+n > len(b) {
			// incomplete tail; more bytes may arrive with the next chunk
			break
		}
		seq := b[i : i+n]
		i += n
		switch n {
		case 1:
			out = append(out, uint16(lead))
		case 2:
			out = append(out, uint16(lead&0x1F)<<6|uint16(seq[1]&0x3F))
		case 3:
			out = append(out,
				uint16(lead&0x0F)<<12|uint16(seq[1]&0x3F)<<6|uint16(seq[2]&0x3F))
		case 4:
			code := rune(lead&0x07)<<18 |
				rune(seq[1]&0x3F)<<12 |
				rune(seq[2]&0x3F)<<6 |
				rune(seq[3]&0x3F)
			if code < 0x10000 || code > 0x10FFFF {
				out = append(out, replacementUnit)
				continue
			}
			hi, lo := utf16.EncodeRune(code)
			out = append(out, uint16(hi), uint16(lo))
		}
	}
	return out
}

func sequenceLen(lead byte) int {
	switch {
	case lead < 0x80:
		return 1
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}
