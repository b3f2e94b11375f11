package codec

// MaxGroupBytes is the most bytes one packed integer carries.
const MaxGroupBytes = 3

const tagSpan = 4

// Pack groups bytes left to right, up to MaxGroupBytes at a time, into
// integers of the form value*4 + (length-1) where value is the group's
// big-endian integer. A k-byte input yields ceil(k/3) integers.
func Pack(b []byte) []int64 {
	out := make([]int64, 0, (len(b)+MaxGroupBytes-1)/MaxGroupBytes)
	var value int64
	count := 0
	for _, c := range b {
		if count == MaxGroupBytes {
			out = append(out, value*tagSpan+int64(count-1))
			value, count = 0, 0
		}
		value = value<<8 | int64(c)
		count++
	}
	if count > 0 {
		out = append(out, value*tagSpan+int64(count-1))
	}
	return out
}

// Unpack reverses Pack. A single scalar and a one-element slice are the same
// input. Each unit yields exactly its tagged length, so leading zero bytes
// survive; negative units carry no bytes.
func Unpack(units ...int64) []byte {
	out := make([]byte, 0, len(units)*MaxGroupBytes)
	for _, packed := range units {
		out = append(out, UnpackUnit(packed)...)
	}
	return out
}

// UnpackUnit decodes one packed integer.
func UnpackUnit(packed int64) []byte {
	if packed < 0 {
		return nil
	}
	count := int(packed%tagSpan) + 1
	value := packed / tagSpan
	block := make([]byte, count)
	for i := count - 1; i >= 0; i-- {
		block[i] = byte(value % 256)
		value /= 256
	}
	return block
}

// UnitLen reports how many bytes a packed integer carries.
func UnitLen(packed int64) int {
	if packed < 0 {
		return 0
	}
	return int(packed%tagSpan) + 1
}

// PackText encodes text and packs the resulting bytes.
func PackText(text string) []int64 {
	return Pack(Encode(text))
}

// UnpackText unpacks integers and decodes the bytes as text.
func UnpackText(units ...int64) string {
	return Decode(Unpack(units...))
}
