package modbuspayload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderWorkedVector(t *testing.T) {
	// u32(1) with bytes swapped within each word and word order intact:
	// high word first, each word byte-swapped.
	b := NewBuilder(WithByteOrder(LittleEndian), WithWordOrder(BigEndian))
	b.Add32BitUint(1)
	require.Equal(t, []uint16{0x0000, 0x0100}, b.ToRegisters())
}

func TestBuilder32BitUintVectors(t *testing.T) {
	tests := []struct {
		name      string
		byteOrder Endianness
		wordOrder Endianness
		want      []uint16
	}{
		{"big/big", BigEndian, BigEndian, []uint16{0x0102, 0x0304}},
		{"little/big", LittleEndian, BigEndian, []uint16{0x0201, 0x0403}},
		{"big/little", BigEndian, LittleEndian, []uint16{0x0304, 0x0102}},
		{"little/little", LittleEndian, LittleEndian, []uint16{0x0403, 0x0201}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(WithByteOrder(tt.byteOrder), WithWordOrder(tt.wordOrder))
			b.Add32BitUint(0x01020304)
			require.Equal(t, tt.want, b.ToRegisters())
		})
	}
}

func TestBuilder64BitUintVectors(t *testing.T) {
	tests := []struct {
		name      string
		byteOrder Endianness
		wordOrder Endianness
		want      []uint16
	}{
		{"big/big", BigEndian, BigEndian, []uint16{0x0102, 0x0304, 0x0506, 0x0708}},
		{"little/big", LittleEndian, BigEndian, []uint16{0x0201, 0x0403, 0x0605, 0x0807}},
		{"big/little", BigEndian, LittleEndian, []uint16{0x0708, 0x0506, 0x0304, 0x0102}},
		{"little/little", LittleEndian, LittleEndian, []uint16{0x0807, 0x0605, 0x0403, 0x0201}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(WithByteOrder(tt.byteOrder), WithWordOrder(tt.wordOrder))
			b.Add64BitUint(0x0102030405060708)
			require.Equal(t, tt.want, b.ToRegisters())
		})
	}
}

func TestBuilderSmallWidthVectors(t *testing.T) {
	b := NewBuilder()
	b.Add8BitUint(0xAB)
	b.Add16BitUint(0x0102)
	require.Equal(t, []byte{0xAB, 0x01, 0x02}, b.Bytes())

	b = NewBuilder(WithByteOrder(LittleEndian))
	b.Add8BitUint(0xAB)
	b.Add16BitUint(0x0102)
	require.Equal(t, []byte{0xAB, 0x02, 0x01}, b.Bytes())
}

func TestBuilderFloatVectors(t *testing.T) {
	b := NewBuilder()
	b.Add32BitFloat(1.0) // 0x3F800000
	require.Equal(t, []uint16{0x3F80, 0x0000}, b.ToRegisters())

	b = NewBuilder(WithWordOrder(LittleEndian))
	b.Add32BitFloat(1.0)
	require.Equal(t, []uint16{0x0000, 0x3F80}, b.ToRegisters())

	b = NewBuilder()
	b.Add64BitFloat(1.0) // 0x3FF0000000000000
	require.Equal(t, []uint16{0x3FF0, 0x0000, 0x0000, 0x0000}, b.ToRegisters())

	b = NewBuilder()
	b.Add16BitFloat(1.0) // half 0x3C00
	require.Equal(t, []uint16{0x3C00}, b.ToRegisters())
}

func TestBuilderString(t *testing.T) {
	// strings are opaque byte runs, the byte order must not touch them
	b := NewBuilder(WithByteOrder(LittleEndian), WithWordOrder(LittleEndian))
	b.AddString("abcd")
	require.Equal(t, []byte("abcd"), b.Bytes())
	require.Equal(t, "abcd", b.String())
}

func TestBuilderOddLengthPadding(t *testing.T) {
	b := NewBuilder()
	b.AddString("abc")
	b.Add8BitUint(0xFF) // 4 bytes total, even again
	b.Add8BitUint(0x01) // 5 bytes, odd

	chunks := b.Build()
	require.Len(t, chunks, 3)
	assert.Equal(t, byte(0x00), chunks[2][1])
	assert.Equal(t, []uint16{0x6162, 0x63FF, 0x0100}, b.ToRegisters())
}

func TestBuilderRepack(t *testing.T) {
	// without repack the register block reads the buffer big-endian, with
	// repack each chunk is re-read with the configured byte order
	b := NewBuilder(WithByteOrder(LittleEndian))
	b.Add32BitUint(1)
	require.Equal(t, []uint16{0x0000, 0x0100}, b.ToRegisters())

	b = NewBuilder(WithByteOrder(LittleEndian), WithRepack(true))
	b.Add32BitUint(1)
	require.Equal(t, []uint16{0x0000, 0x0001}, b.ToRegisters())
}

func TestBuilderToCoils(t *testing.T) {
	b := NewBuilder()
	b.Add16BitUint(0x8001)
	coils := b.ToCoils()
	require.Len(t, coils, 16)
	assert.True(t, coils[0])  // msb first
	assert.True(t, coils[15]) // lsb last
	for i := 1; i < 15; i++ {
		assert.False(t, coils[i])
	}
}

func TestBuilderMaterializeIsPure(t *testing.T) {
	b := NewBuilder()
	b.AddString("abc")

	first := b.ToRegisters()
	second := b.ToRegisters()
	require.Equal(t, first, second)
	require.Equal(t, b.Bytes(), b.Bytes())
	require.Len(t, b.Bytes(), 3) // padding must not leak into the buffer
}

func TestBuilderReset(t *testing.T) {
	b := NewBuilder()
	b.Add16BitUint(0x0102)
	b.Reset()
	require.Empty(t, b.Bytes())
	require.Empty(t, b.ToRegisters())

	b.Add8BitUint(0x01)
	require.Equal(t, []byte{0x01}, b.Bytes())
}

func TestBuilderAddBits(t *testing.T) {
	// [T,F,T] left-pads to [F,F,F,F,F,T,F,T], element j -> bit j
	b := NewBuilder()
	b.AddBits([]bool{true, false, true})
	require.Equal(t, []byte{0xA0}, b.Bytes())

	// a full group packs without padding
	b.Reset()
	b.AddBits([]bool{true, false, false, false, false, false, false, true})
	require.Equal(t, []byte{0x81}, b.Bytes())
}
