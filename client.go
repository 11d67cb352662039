package modbuspayload

import (
	"context"
	"fmt"
	"time"

	"github.com/goburrow/modbus"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// modbusTCP Connection config of TCP
type modbusTCP struct {
	Host            string
	Port            int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// modbusRTU Connection config of RTU
type modbusRTU struct {
	ComAddr  string
	BaudRate int
	DataBits int
	Parity   string // (N, E, O)
	StopBits int
}

// Conn a modbus connection that exchanges payloads with a device: reads
// come back as ready Decoders, writes are materialized Builders. The codec
// itself never touches the wire, this is the transport collaborator.
type Conn struct {
	connType ConnType
	modbusTCP
	modbusRTU
	slaveID     uint8
	timeout     time.Duration
	maxQuantity uint16

	codecOpts []Option

	connPool ConnPool
}

func newDefaultConn() *Conn {
	return &Conn{
		slaveID:     1,
		maxQuantity: 125,
		timeout:     10 * time.Second,
	}
}

// NewTCP new TCP connection configuration
func NewTCP(host string, port int, opts ...ConnOption) *Conn {
	c := newDefaultConn()
	c.connType = ConnTypeTCP
	c.modbusTCP = modbusTCP{
		Host:            host,
		Port:            port,
		MaxOpenConns:    3,
		ConnMaxLifetime: 30 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRTU new RTU connection configuration
func NewRTU(comAddr string, opts ...ConnOption) *Conn {
	c := newDefaultConn()
	c.connType = ConnTypeRTU
	c.modbusRTU = modbusRTU{
		ComAddr:  comAddr,
		BaudRate: 9600,
		DataBits: 8,
		Parity:   "N",
		StopBits: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Conn connect to the modbus server
func (c *Conn) Conn() error {
	if c.connType == ConnTypeTCP {
		return c.connTCP()
	} else if c.connType == ConnTypeRTU {
		return c.connRTU()
	}
	return nil
}

func (c *Conn) connTCP() error {
	addr := fmt.Sprintf("%s:%d", c.Host, c.Port)
	factory := func() (Client, error) {
		handler := modbus.NewTCPClientHandler(addr)
		handler.Timeout = c.timeout
		handler.SlaveId = c.slaveID
		if e := handler.Connect(); e != nil {
			return nil, e
		}
		return &poolClient{
			Client:     modbus.NewClient(handler),
			closer:     handler,
			probe:      true,
			createTime: time.Now(),
		}, nil
	}

	pool, err := newTCPPool(c.MaxOpenConns, c.ConnMaxLifetime, factory)
	if err != nil {
		return fmt.Errorf("failed to create TCP pool: %w", err)
	}
	c.connPool = pool
	return nil
}

func (c *Conn) connRTU() error {
	handler := modbus.NewRTUClientHandler(c.ComAddr)
	handler.BaudRate = c.BaudRate
	handler.DataBits = c.DataBits
	handler.Parity = c.Parity
	handler.StopBits = c.StopBits
	handler.SlaveId = c.slaveID
	handler.Timeout = c.timeout
	if e := handler.Connect(); e != nil {
		return e
	}
	c.connPool = newRTUPool(&poolClient{
		Client:     modbus.NewClient(handler),
		closer:     handler,
		createTime: time.Now(),
	})
	return nil
}

// Close close the connection pool
func (c *Conn) Close() error {
	return c.connPool.Close()
}

// ReadHoldingRegisters read quantity holding registers starting at
// address and wrap them in a Decoder configured with the connection's
// codec options.
func (c *Conn) ReadHoldingRegisters(ctx context.Context, address, quantity uint16) (*Decoder, error) {
	conn, err := c.connPool.Get()
	if err != nil {
		return nil, errors.Wrap(err, "conn slave failed")
	}
	defer c.connPool.Put(conn)

	data, err := c.readRegisters(conn.ReadHoldingRegisters, address, quantity)
	if err != nil {
		return nil, errors.Wrapf(err, "ReadHoldingRegisters at %d failed", address)
	}
	return FromRegisters(bytesToRegisters(data), c.codecOpts...)
}

// ReadInputRegisters read quantity input registers starting at address
// and wrap them in a Decoder.
func (c *Conn) ReadInputRegisters(ctx context.Context, address, quantity uint16) (*Decoder, error) {
	conn, err := c.connPool.Get()
	if err != nil {
		return nil, errors.Wrap(err, "conn slave failed")
	}
	defer c.connPool.Put(conn)

	data, err := c.readRegisters(conn.ReadInputRegisters, address, quantity)
	if err != nil {
		return nil, errors.Wrapf(err, "ReadInputRegisters at %d failed", address)
	}
	return FromRegisters(bytesToRegisters(data), c.codecOpts...)
}

// ReadCoils read quantity coils starting at address and wrap them in a
// Decoder. The wire packs coils 8 per byte, lowest address in bit 0.
func (c *Conn) ReadCoils(ctx context.Context, address, quantity uint16) (*Decoder, error) {
	conn, err := c.connPool.Get()
	if err != nil {
		return nil, errors.Wrap(err, "conn slave failed")
	}
	defer c.connPool.Put(conn)

	data, err := conn.ReadCoils(address, quantity)
	if err != nil {
		return nil, errors.Wrapf(err, "ReadCoils at %d failed", address)
	}
	coils := make([]bool, 0, quantity)
	for _, b := range data {
		coils = append(coils, unpackBitstring(b)...)
	}
	return FromCoils(coils[:quantity], c.codecOpts...)
}

// WriteRegisters materialize the builder and write it as one register
// block starting at address.
func (c *Conn) WriteRegisters(ctx context.Context, address uint16, b *Builder) error {
	registers := b.ToRegisters()
	if len(registers) == 0 {
		return nil
	}

	conn, err := c.connPool.Get()
	if err != nil {
		return errors.Wrap(err, "conn slave failed")
	}
	defer c.connPool.Put(conn)

	if len(registers) == 1 {
		_, err = conn.WriteSingleRegister(address, registers[0])
	} else {
		_, err = conn.WriteMultipleRegisters(address, uint16(len(registers)), registersToBytes(registers))
	}
	return errors.Wrapf(err, "write %d registers at %d failed", len(registers), address)
}

// WriteCoils materialize the builder and write it as one coil block
// starting at address.
func (c *Conn) WriteCoils(ctx context.Context, address uint16, b *Builder) error {
	coils := b.ToCoils()
	if len(coils) == 0 {
		return nil
	}

	conn, err := c.connPool.Get()
	if err != nil {
		return errors.Wrap(err, "conn slave failed")
	}
	defer c.connPool.Put(conn)

	data := make([]byte, (len(coils)+7)/8)
	for i, coil := range coils {
		if coil {
			data[i/8] |= 1 << (i % 8)
		}
	}
	_, err = conn.WriteMultipleCoils(address, uint16(len(coils)), data)
	return errors.Wrapf(err, "write %d coils at %d failed", len(coils), address)
}

// readRegisters allow reading a quantity larger than maxQuantity by
// splitting the request
func (c *Conn) readRegisters(read func(address, quantity uint16) ([]byte, error), address, quantity uint16) (results []byte, err error) {
	if quantity <= c.maxQuantity {
		return read(address, quantity)
	}
	for quantity > 0 {
		currentQuantity := min(quantity, c.maxQuantity)
		data, err := read(address, currentQuantity)
		if err != nil {
			return nil, err
		}
		results = append(results, data...)
		address += currentQuantity
		quantity -= currentQuantity
	}
	return results, nil
}

func min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// bytesToRegisters each 2 bytes of a wire response is one big-endian register
func bytesToRegisters(data []byte) []uint16 {
	registers := make([]uint16, len(data)/2)
	for i := range registers {
		registers[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return registers
}

// registersToBytes inverse of bytesToRegisters
func registersToBytes(registers []uint16) []byte {
	data := make([]byte, 2*len(registers))
	for i, register := range registers {
		data[2*i] = byte(register >> 8)
		data[2*i+1] = byte(register)
	}
	return data
}
