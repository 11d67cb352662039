package modbuspayload

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Decoder reads typed values back out of a modbus payload. It keeps a
// cursor into an immutable buffer; every decode consumes exactly the byte
// width of its type, and the decode sequence must match the sequence the
// payload was built with. A Decoder is not safe for concurrent use.
/*
	decoder, err := modbuspayload.FromRegisters(registers)
	if err != nil {
		return err
	}
	first, err := decoder.Decode8BitUint()
	second, err := decoder.Decode16BitUint()
*/
type Decoder struct {
	codec
	payload []byte
	pointer int
}

// NewDecoder new decoder over a raw byte payload
func NewDecoder(payload []byte, opts ...Option) *Decoder {
	c := defaultCodec()
	for _, opt := range opts {
		opt(&c)
	}
	return &Decoder{codec: c, payload: payload}
}

// FromRegisters new decoder from the result of reading a block of
// registers. Each register contributes its 2 bytes in canonical
// big-endian order, regardless of the configured byte order.
func FromRegisters(registers []uint16, opts ...Option) (*Decoder, error) {
	if registers == nil {
		return nil, ErrInvalidRegisters
	}
	payload := make([]byte, 2*len(registers))
	for i, register := range registers {
		binary.BigEndian.PutUint16(payload[2*i:], register)
	}
	return NewDecoder(payload, opts...), nil
}

// FromCoils new decoder from the result of reading a block of coils.
/*
	The coils are left-padded with false to a multiple of 8 and packed 8
	at a time with each group reversed first. The reversal mirrors
	AddBits: the two conventions differ on purpose so that
	FromCoils(ToCoils()) followed by DecodeBits reproduces the bits
	AddBits was given. External devices depend on this layout.
*/
func FromCoils(coils []bool, opts ...Option) (*Decoder, error) {
	if coils == nil {
		return nil, ErrInvalidCoils
	}
	padded := padBits(coils)
	payload := make([]byte, 0, len(padded)/8)
	for i := 0; i < len(padded); i += 8 {
		chunk := make([]bool, 8)
		copy(chunk, padded[i:i+8])
		reverse(chunk)
		payload = append(payload, packBitstring(chunk)...)
	}
	return NewDecoder(payload, opts...), nil
}

// take consume n bytes, failing instead of reading past the buffer end
func (d *Decoder) take(n int) ([]byte, error) {
	if d.pointer+n > len(d.payload) {
		return nil, errors.Wrapf(ErrBufferUnderrun,
			"need %d bytes at offset %d, have %d", n, d.pointer, len(d.payload)-d.pointer)
	}
	handle := d.payload[d.pointer : d.pointer+n]
	d.pointer += n
	return handle, nil
}

// DecodeBits decode a byte worth of bits, bit 0 first
func (d *Decoder) DecodeBits() ([]bool, error) {
	handle, err := d.take(1)
	if err != nil {
		return nil, err
	}
	return unpackBitstring(handle[0]), nil
}

// Decode8BitUint decode a 8 bit unsigned int
func (d *Decoder) Decode8BitUint() (uint8, error) {
	handle, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return handle[0], nil
}

// Decode16BitUint decode a 16 bit unsigned int
func (d *Decoder) Decode16BitUint() (uint16, error) {
	handle, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return d.uint16At(handle), nil
}

// Decode32BitUint decode a 32 bit unsigned int
func (d *Decoder) Decode32BitUint() (uint32, error) {
	value, err := d.decodeWords(4)
	return uint32(value), err
}

// Decode64BitUint decode a 64 bit unsigned int
func (d *Decoder) Decode64BitUint() (uint64, error) {
	return d.decodeWords(8)
}

// Decode8BitInt decode a 8 bit signed int
func (d *Decoder) Decode8BitInt() (int8, error) {
	value, err := d.Decode8BitUint()
	return int8(value), err
}

// Decode16BitInt decode a 16 bit signed int
func (d *Decoder) Decode16BitInt() (int16, error) {
	value, err := d.Decode16BitUint()
	return int16(value), err
}

// Decode32BitInt decode a 32 bit signed int
func (d *Decoder) Decode32BitInt() (int32, error) {
	value, err := d.decodeWords(4)
	return int32(uint32(value)), err
}

// Decode64BitInt decode a 64 bit signed int
func (d *Decoder) Decode64BitInt() (int64, error) {
	value, err := d.decodeWords(8)
	return int64(value), err
}

// Decode16BitFloat decode a 16 bit (half-precision) float
func (d *Decoder) Decode16BitFloat() (float32, error) {
	value, err := d.Decode16BitUint()
	return float16frombits(value), err
}

// Decode32BitFloat decode a 32 bit float
func (d *Decoder) Decode32BitFloat() (float32, error) {
	value, err := d.decodeWords(4)
	return math.Float32frombits(uint32(value)), err
}

// Decode64BitFloat decode a 64 bit float
func (d *Decoder) Decode64BitFloat() (float64, error) {
	value, err := d.decodeWords(8)
	return math.Float64frombits(value), err
}

// DecodeString decode size raw bytes, verbatim
func (d *Decoder) DecodeString(size int) (string, error) {
	handle, err := d.take(size)
	if err != nil {
		return "", err
	}
	return string(handle), nil
}

// SkipBytes advance the cursor over nbytes without decoding a value
func (d *Decoder) SkipBytes(nbytes int) error {
	_, err := d.take(nbytes)
	return err
}

// Reset rewind the cursor to the start of the payload
func (d *Decoder) Reset() {
	d.pointer = 0
}

// decodeWords decode a value of 2 or more registers: undo the byte order
// and word order stages with unpackWords, then read the canonical
// big-endian value.
func (d *Decoder) decodeWords(width int) (uint64, error) {
	handle, err := d.take(width)
	if err != nil {
		return 0, err
	}
	raw := make([]byte, 8)
	copy(raw[8-width:], d.unpackWords(handle))
	return binary.BigEndian.Uint64(raw), nil
}
