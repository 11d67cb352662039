package modbuspayload

// ConnType connection type
type ConnType uint8

const (
	ConnTypeTCP ConnType = 1
	ConnTypeRTU ConnType = 2
)

// Endianness byte or word ordering
type Endianness uint8

const (
	BigEndian    Endianness = iota // high byte (or word) first
	LittleEndian                   // low byte (or word) first
)
