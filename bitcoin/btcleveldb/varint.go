package btcleveldb

import (
	"github.com/pkg/errors"
)

// EndOfBuffer is returned as the next offset when a field runs to the end of its buffer.
const EndOfBuffer = -1

// Varint is a buffer holding back-to-back MSB base-128 varints, the encoding
// bitcoin core uses for every number inside a chainstate value.
//
//	b98276a2ec7700cbc2986ff9aed6825920aece14aa6f5382ca5580
//	<----><----><><-------------------------------------->
//	  0     1    2   remaining bytes
//
// Each byte carries 7 bits of the number in its low bits. The high bit is set on
// every byte except the last one of a field. Every non-final digit is stored
// minus one, which makes the encoding unique (no redundant leading zeros).
type Varint struct {
	buf    []byte
	starts []int
}

// NewVarint indexes the start offset of every field in buf.
func NewVarint(buf []byte) *Varint {
	v := &Varint{buf: buf}
	if len(buf) == 0 {
		return v
	}

	v.starts = append(v.starts, 0)
	for i, b := range buf {
		// a byte without the 8th bit set ends a field, the next one starts right after
		if b&0x80 == 0 && i != len(buf)-1 {
			v.starts = append(v.starts, i+1)
		}
	}

	return v
}

// Fields returns how many field start offsets were found.
func (v *Varint) Fields() int {
	return len(v.starts)
}

// Start returns the offset of the first byte of field n.
func (v *Varint) Start(n int) (int, error) {
	if n < 0 || n >= len(v.starts) {
		return 0, errors.Wrapf(ErrFieldIndex, "field %d of %d", n, len(v.starts))
	}

	return v.starts[n], nil
}

// Decode reads field n and returns its value as big-endian base-256 bytes,
// together with the offset of the byte following the field (or EndOfBuffer).
func (v *Varint) Decode(n int) ([]byte, int, error) {
	start, err := v.Start(n)
	if err != nil {
		return nil, 0, err
	}

	digits := make([]byte, 0, 10)
	end := start
	terminated := false
	for end < len(v.buf) {
		b := v.buf[end]
		end++
		if b&0x80 == 0 {
			digits = append(digits, b&0x7f)
			terminated = true
			break
		}
		digits = append(digits, (b&0x7f)+1)
	}
	if !terminated {
		return nil, 0, errors.Wrapf(ErrTruncated, "varint field %d has no terminating byte", n)
	}

	if end >= len(v.buf) {
		end = EndOfBuffer
	}

	return Base128To256(digits), end, nil
}

// Uint64 decodes field n as an unsigned integer.
func (v *Varint) Uint64(n int) (uint64, int, error) {
	b, next, err := v.Decode(n)
	if err != nil {
		return 0, 0, err
	}

	value, err := BytesToUint64(b)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "varint field %d", n)
	}

	return value, next, nil
}

// Remaining returns the buffer from offset to the end. EndOfBuffer yields nil.
func (v *Varint) Remaining(offset int) []byte {
	if offset < 0 || offset >= len(v.buf) {
		return nil
	}

	return v.buf[offset:]
}

// Base128To256 converts skewed base-128 digits (most significant first) into
// big-endian base-256 bytes. The result has as many bytes as there are digits,
// which always suffices since 7 bits per digit (plus the skew) fit in 8.
func Base128To256(digits []byte) []byte {
	out := make([]byte, len(digits))
	for _, d := range digits {
		// out = out*128 + d
		carry := uint(d)
		for i := len(out) - 1; i >= 0; i-- {
			acc := uint(out[i])<<7 + carry
			out[i] = byte(acc)
			carry = acc >> 8
		}
	}

	return out
}

// EncodeVarint is the inverse of Decode for a single unsigned integer.
func EncodeVarint(n uint64) []byte {
	var tmp [10]byte
	i := len(tmp) - 1
	tmp[i] = byte(n & 0x7f)
	for n > 0x7f {
		n = (n >> 7) - 1
		i--
		tmp[i] = byte(n&0x7f) | 0x80
	}

	out := make([]byte, len(tmp)-i)
	copy(out, tmp[i:])

	return out
}

// BytesToUint64 reads big-endian bytes as an unsigned integer.
func BytesToUint64(b []byte) (uint64, error) {
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	if len(b) > 8 {
		return 0, errors.Wrapf(ErrOverflow, "%d significant bytes", len(b))
	}

	var n uint64
	for _, c := range b {
		n = n<<8 | uint64(c)
	}

	return n, nil
}

// ShiftRight shifts a big-endian byte string right by n bits (n < 8),
// carrying bits across byte boundaries. The input is left untouched.
func ShiftRight(b []byte, n uint) []byte {
	out := make([]byte, len(b))
	var carry byte
	for i, c := range b {
		out[i] = c>>n | carry
		carry = c << (8 - n)
	}

	return out
}
