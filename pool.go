package modbuspayload

import (
	"net"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

type Client interface {
	modbus.Client
	Close() error
	IsAlive() bool
	CreateTime() time.Time
}

type ConnPool interface {
	Get() (Client, error)
	Put(conn Client) error
	Close() error
}

// poolClient one pooled connection: the goburrow client plus the handler
// that owns the underlying transport
type poolClient struct {
	modbus.Client
	closer     interface{ Close() error }
	probe      bool // probe liveness before reuse (TCP only)
	createTime time.Time
}

func (c *poolClient) Close() error {
	return c.closer.Close()
}

func (c *poolClient) IsAlive() bool {
	if !c.probe {
		return true
	}
	_, err := c.ReadHoldingRegisters(1, 1)
	if err != nil {
		if strings.Contains(err.Error(), "EOF") {
			return false
		}
		if strings.Contains(err.Error(), "connection refused") {
			return false
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return false
		}
	}
	return true
}

func (c *poolClient) CreateTime() time.Time {
	return c.createTime
}

type tcpPool struct {
	mutex       sync.Mutex
	connections chan Client
	factory     func() (Client, error)
	closed      bool

	maxOpenConns    int
	connMaxLifetime time.Duration
}

func newTCPPool(maxOpenConns int, connMaxLifetime time.Duration, factory func() (Client, error)) (ConnPool, error) {
	if factory == nil {
		return nil, ErrFactoryNil
	}
	if maxOpenConns <= 0 {
		maxOpenConns = 5
	}

	pool := &tcpPool{
		factory:         factory,
		connections:     make(chan Client, maxOpenConns),
		maxOpenConns:    maxOpenConns,
		connMaxLifetime: connMaxLifetime,
	}

	for i := 0; i < maxOpenConns; i++ {
		conn, err := factory()
		if err != nil {
			return nil, err
		}
		pool.connections <- conn
	}

	return pool, nil
}

// Get get a connection from the pool
func (p *tcpPool) Get() (Client, error) {
	if p.closed {
		return nil, ErrPoolClosed
	}

	select {
	case conn := <-p.connections:
		return conn, nil
	default:
		// no available connection, new one
		return p.factory()
	}
}

// Put return the connection to the pool
func (p *tcpPool) Put(conn Client) error {
	if p.closed {
		return conn.Close()
	}
	if time.Since(conn.CreateTime()) > p.connMaxLifetime {
		// expired
		return conn.Close()
	}
	if !conn.IsAlive() {
		return conn.Close()
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	select {
	case p.connections <- conn:
		return nil
	default:
		// pool is full
		return conn.Close()
	}
}

// Close close the pool
func (p *tcpPool) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed {
		return ErrPoolClosed
	}
	p.closed = true

	for {
		select {
		case conn, ok := <-p.connections:
			if !ok {
				return nil
			}
			conn.Close()
		default:
			close(p.connections)
			return nil
		}
	}
}

// rtuPool a serial line carries a single connection, so the pool hands out
// the same client every time
type rtuPool struct {
	client Client
}

func newRTUPool(client Client) ConnPool {
	return &rtuPool{client: client}
}

func (p *rtuPool) Get() (Client, error) {
	return p.client, nil
}

func (p *rtuPool) Put(conn Client) error {
	return nil
}

func (p *rtuPool) Close() error {
	return p.client.Close()
}
