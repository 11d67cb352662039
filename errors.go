package modbuspayload

import "errors"

var (
	ErrInvalidRegisters = errors.New("invalid collection of registers supplied")
	ErrInvalidCoils     = errors.New("invalid collection of coils supplied")
	ErrBufferUnderrun   = errors.New("payload buffer underrun")
	ErrPoolClosed       = errors.New("modbus pool is closed")
	ErrFactoryNil       = errors.New("factory cannot be nil")
)
