package modbuspayload

import "time"

// codec is the wire contract shared by a Builder and a Decoder: the byte
// order within one register, the word order across the registers of a
// multi-register value, and whether raw register output is repacked.
// Both endpoints must agree on it out-of-band, there is no in-band marker.
type codec struct {
	byteOrder Endianness
	wordOrder Endianness
	repack    bool
}

func defaultCodec() codec {
	return codec{
		byteOrder: BigEndian,
		wordOrder: BigEndian,
	}
}

type Option func(*codec)

// WithByteOrder Set the ordering of the two bytes within one register
func WithByteOrder(order Endianness) Option {
	return func(c *codec) {
		c.byteOrder = order
	}
}

// WithWordOrder Set the ordering of the registers within a multi-register value
func WithWordOrder(order Endianness) Option {
	return func(c *codec) {
		c.wordOrder = order
	}
}

// WithRepack Re-decode each register with the byte order before raw block output
/*
	Repack only affects ToRegisters and ToCoils. It corrects for a byte
	order mismatch between how multi-register values were packed into the
	buffer and how the raw register block is interpreted on the wire.
	It does not change how individual values are packed or decoded.
*/
func WithRepack(repack bool) Option {
	return func(c *codec) {
		c.repack = repack
	}
}

type ConnOption func(*Conn)

// WithSlaveID Set the slave id of the modbus connection
func WithSlaveID(slaveID uint8) ConnOption {
	return func(c *Conn) {
		c.slaveID = slaveID
	}
}

// WithTimeout Set the timeout of the modbus connection
func WithTimeout(timeout time.Duration) ConnOption {
	return func(c *Conn) {
		c.timeout = timeout
	}
}

// WithMaxQuantity Set the max quantity per read request
func WithMaxQuantity(maxQuantity uint16) ConnOption {
	return func(c *Conn) {
		c.maxQuantity = maxQuantity
	}
}

// WithMaxOpenConns Set the max open connections of the modbus TCP
func WithMaxOpenConns(maxOpenConns int) ConnOption {
	return func(c *Conn) {
		c.MaxOpenConns = maxOpenConns
	}
}

// WithConnMaxLifetime Set the max connection lifetime of the modbus TCP
func WithConnMaxLifetime(connMaxLifetime time.Duration) ConnOption {
	return func(c *Conn) {
		c.ConnMaxLifetime = connMaxLifetime
	}
}

// WithBaudRate Set the baud rate of the modbus RTU
func WithBaudRate(baudRate int) ConnOption {
	return func(c *Conn) {
		c.BaudRate = baudRate
	}
}

// WithDataBits Set the data bits of the modbus RTU
func WithDataBits(dataBits int) ConnOption {
	return func(c *Conn) {
		c.DataBits = dataBits
	}
}

// WithParity Set the parity of the modbus RTU
func WithParity(parity string) ConnOption {
	return func(c *Conn) {
		c.Parity = parity
	}
}

// WithStopBits Set the stop bits of the modbus RTU
func WithStopBits(stopBits int) ConnOption {
	return func(c *Conn) {
		c.StopBits = stopBits
	}
}

// WithCodec Set the codec options used for decoders handed out by the connection
func WithCodec(opts ...Option) ConnOption {
	return func(c *Conn) {
		c.codecOpts = opts
	}
}
