package modbuspayload

import (
	"encoding/binary"
	"math"
)

// appendUint16 append one register worth of bytes in the configured byte order
func (c codec) appendUint16(dst []byte, word uint16) []byte {
	var buf [2]byte
	if c.byteOrder == LittleEndian {
		binary.LittleEndian.PutUint16(buf[:], word)
	} else {
		binary.BigEndian.PutUint16(buf[:], word)
	}
	return append(dst, buf[:]...)
}

// uint16At read one register worth of bytes in the configured byte order
func (c codec) uint16At(data []byte) uint16 {
	if c.byteOrder == LittleEndian {
		return binary.LittleEndian.Uint16(data)
	}
	return binary.BigEndian.Uint16(data)
}

// packWords transform a canonical big-endian byte string into its wire
// layout: split into 16-bit words, reverse the words if the word order is
// little endian, then re-encode each word with the configured byte order.
// Byte order and word order are orthogonal and applied in this sequence.
func (c codec) packWords(raw []byte) []byte {
	words := make([]uint16, len(raw)/2)
	for i := range words {
		words[i] = binary.BigEndian.Uint16(raw[2*i:])
	}
	if c.wordOrder == LittleEndian {
		reverse(words)
	}
	out := make([]byte, 0, len(raw))
	for _, word := range words {
		out = c.appendUint16(out, word)
	}
	return out
}

// unpackWords inverse of packWords: recover the canonical big-endian byte
// string from its wire layout.
func (c codec) unpackWords(data []byte) []byte {
	words := make([]uint16, len(data)/2)
	for i := range words {
		words[i] = c.uint16At(data[2*i:])
	}
	if c.wordOrder == LittleEndian {
		reverse(words)
	}
	out := make([]byte, len(data))
	for i, word := range words {
		binary.BigEndian.PutUint16(out[2*i:], word)
	}
	return out
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// padBits left-pad with false until the length is a multiple of 8
func padBits(bits []bool) []bool {
	if pad := len(bits) % 8; pad != 0 {
		padded := make([]bool, 8-pad, 8-pad+len(bits))
		return append(padded, bits...)
	}
	return bits
}

// packBitstring pack bits 8 at a time, element j of a group becoming bit j
// of the byte. The input must already be a multiple of 8 long.
func packBitstring(bits []bool) []byte {
	out := make([]byte, len(bits)/8)
	for i, bit := range bits {
		if bit {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

// unpackBitstring one byte into 8 bools, bit 0 first
func unpackBitstring(b byte) []bool {
	bits := make([]bool, 8)
	for i := range bits {
		bits[i] = b&(1<<i) != 0
	}
	return bits
}

// float16bits convert a float32 to IEEE 754 half-precision bits, rounding
// to nearest even. Out of range values collapse to infinity.
func float16bits(f float32) uint16 {
	b := math.Float32bits(f)
	sign := uint16(b>>16) & 0x8000
	exp := int(b>>23&0xff) - 127 + 15
	mant := b & 0x7fffff

	switch {
	case exp >= 0x1f:
		if b&0x7fffffff > 0x7f800000 {
			return sign | 0x7e00 // NaN
		}
		return sign | 0x7c00
	case exp <= 0:
		if exp < -10 {
			return sign
		}
		// subnormal half
		mant |= 0x800000
		shift := uint(14 - exp)
		half := uint16(mant >> shift)
		round := mant & (1<<shift - 1)
		if round > 1<<(shift-1) || (round == 1<<(shift-1) && half&1 != 0) {
			half++
		}
		return sign | half
	default:
		half := sign | uint16(exp)<<10 | uint16(mant>>13)
		round := mant & 0x1fff
		if round > 0x1000 || (round == 0x1000 && half&1 != 0) {
			half++ // carries into the exponent when needed
		}
		return half
	}
}

// float16frombits convert IEEE 754 half-precision bits to a float32.
// Every half value is exactly representable as a float32.
func float16frombits(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := int(h >> 10 & 0x1f)
	mant := uint32(h & 0x3ff)

	switch {
	case exp == 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | mant<<13)
	case exp == 0:
		if mant == 0 {
			return math.Float32frombits(sign)
		}
		// normalize the subnormal
		exp = 1
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		mant &= 0x3ff
	}
	return math.Float32frombits(sign | uint32(exp+112)<<23 | mant<<13)
}
