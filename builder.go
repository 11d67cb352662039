package modbuspayload

import (
	"encoding/binary"
	"math"
)

// Builder assembles a modbus payload from typed values. Values are
// appended in call order; the finished buffer can be materialized as raw
// bytes, as a register block or as a coil block, repeatedly and without
// consuming it. A Builder is not safe for concurrent use.
/*
	builder := modbuspayload.NewBuilder(
		modbuspayload.WithByteOrder(modbuspayload.LittleEndian),
	)
	builder.Add8BitUint(1)
	builder.Add16BitUint(2)
	registers := builder.ToRegisters()
*/
type Builder struct {
	codec
	payload [][]byte
}

// NewBuilder new payload builder
func NewBuilder(opts ...Option) *Builder {
	c := defaultCodec()
	for _, opt := range opts {
		opt(&c)
	}
	return &Builder{codec: c}
}

// AddBits add a collection of bits to the payload.
/*
	The bits are left-padded with false to a multiple of 8, then packed
	8 at a time with element j of each group becoming bit j of the byte.
	This is the convention ToCoils/FromCoils round-trips depend on.
*/
func (b *Builder) AddBits(values []bool) {
	b.payload = append(b.payload, packBitstring(padBits(values)))
}

// Add8BitUint add a 8 bit unsigned int to the payload
func (b *Builder) Add8BitUint(value uint8) {
	b.payload = append(b.payload, []byte{value})
}

// Add16BitUint add a 16 bit unsigned int to the payload
func (b *Builder) Add16BitUint(value uint16) {
	b.payload = append(b.payload, b.appendUint16(nil, value))
}

// Add32BitUint add a 32 bit unsigned int to the payload
func (b *Builder) Add32BitUint(value uint32) {
	b.addWords(uint64(value), 4)
}

// Add64BitUint add a 64 bit unsigned int to the payload
func (b *Builder) Add64BitUint(value uint64) {
	b.addWords(value, 8)
}

// Add8BitInt add a 8 bit signed int to the payload
func (b *Builder) Add8BitInt(value int8) {
	b.Add8BitUint(uint8(value))
}

// Add16BitInt add a 16 bit signed int to the payload
func (b *Builder) Add16BitInt(value int16) {
	b.Add16BitUint(uint16(value))
}

// Add32BitInt add a 32 bit signed int to the payload
func (b *Builder) Add32BitInt(value int32) {
	b.addWords(uint64(uint32(value)), 4)
}

// Add64BitInt add a 64 bit signed int to the payload
func (b *Builder) Add64BitInt(value int64) {
	b.addWords(uint64(value), 8)
}

// Add16BitFloat add a 16 bit (half-precision) float to the payload
func (b *Builder) Add16BitFloat(value float32) {
	b.payload = append(b.payload, b.appendUint16(nil, float16bits(value)))
}

// Add32BitFloat add a 32 bit float to the payload
func (b *Builder) Add32BitFloat(value float32) {
	b.addWords(uint64(math.Float32bits(value)), 4)
}

// Add64BitFloat add a 64 bit float to the payload
func (b *Builder) Add64BitFloat(value float64) {
	b.addWords(math.Float64bits(value), 8)
}

// AddString add the raw bytes of a string to the payload, verbatim.
// Strings are opaque byte runs, no byte or word reordering applies.
func (b *Builder) AddString(value string) {
	b.payload = append(b.payload, []byte(value))
}

// addWords pack a value of 2 or more registers: canonical big-endian
// first, then the word order and byte order stages from packWords.
func (b *Builder) addWords(value uint64, width int) {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, value)
	b.payload = append(b.payload, b.packWords(raw[8-width:]))
}

// Bytes the payload as one flat byte slice
func (b *Builder) Bytes() []byte {
	var n int
	for _, fragment := range b.payload {
		n += len(fragment)
	}
	out := make([]byte, 0, n)
	for _, fragment := range b.payload {
		out = append(out, fragment...)
	}
	return out
}

// String the payload as a string
func (b *Builder) String() string {
	return string(b.Bytes())
}

// Build the payload split into 2-byte chunks, zero-padded at the end if
// the total length is odd. Each chunk is one register worth of bytes.
func (b *Builder) Build() [][]byte {
	data := b.Bytes()
	if len(data)%2 != 0 {
		data = append(data, 0x00)
	}
	chunks := make([][]byte, 0, len(data)/2)
	for i := 0; i < len(data); i += 2 {
		chunks = append(chunks, data[i:i+2])
	}
	return chunks
}

// ToRegisters the payload as a register block.
/*
	Each 2-byte chunk is read as a canonical big-endian unsigned 16 bit
	integer. With repack, the chunk is read with the configured byte
	order instead, correcting the block for a wire that expects the
	registers in the packed byte order.
*/
func (b *Builder) ToRegisters() []uint16 {
	chunks := b.Build()
	registers := make([]uint16, len(chunks))
	for i, chunk := range chunks {
		if b.repack {
			registers[i] = b.uint16At(chunk)
		} else {
			registers[i] = binary.BigEndian.Uint16(chunk)
		}
	}
	return registers
}

// ToCoils the payload as a coil block, each register expanded into 16
// bools, most significant bit first.
func (b *Builder) ToCoils() []bool {
	registers := b.ToRegisters()
	coils := make([]bool, 0, len(registers)*16)
	for _, register := range registers {
		for bit := 15; bit >= 0; bit-- {
			coils = append(coils, register&(1<<bit) != 0)
		}
	}
	return coils
}

// Reset clear the payload
func (b *Builder) Reset() {
	b.payload = nil
}
