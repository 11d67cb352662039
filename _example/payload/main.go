package main

import (
	"context"
	"log"

	modbuspayload "github.com/TwoMental/modbus-payload"
)

func main() {
	opts := []modbuspayload.Option{
		modbuspayload.WithByteOrder(modbuspayload.BigEndian),
		modbuspayload.WithWordOrder(modbuspayload.LittleEndian),
	}

	builder := modbuspayload.NewBuilder(opts...)
	builder.AddString("abcdefgh")
	builder.Add32BitInt(0x12345678)
	builder.Add16BitInt(0x5678)
	builder.Add32BitFloat(22.34)
	builder.Add64BitFloat(-123.4567)
	log.Printf("Registers: %#04x", builder.ToRegisters())

	decoder, err := modbuspayload.FromRegisters(builder.ToRegisters(), opts...)
	if err != nil {
		log.Fatalf("Error: %s", err)
	}
	s, _ := decoder.DecodeString(8)
	i32, _ := decoder.Decode32BitInt()
	i16, _ := decoder.Decode16BitInt()
	f32, _ := decoder.Decode32BitFloat()
	f64, _ := decoder.Decode64BitFloat()
	log.Printf("Decoded: %q %#x %#x %v %v", s, i32, i16, f32, f64)

	// the same layout against a live device
	conn := modbuspayload.NewTCP("localhost", 1502,
		modbuspayload.WithSlaveID(1),
		modbuspayload.WithCodec(opts...),
	)
	if e := conn.Conn(); e != nil {
		log.Fatalf("Error: %s", e)
	}
	defer conn.Close()
	ctx := context.Background()

	if e := conn.WriteRegisters(ctx, 100, builder); e != nil {
		log.Fatalf("Write: %s", e)
	}
	decoder, err = conn.ReadHoldingRegisters(ctx, 100, uint16(len(builder.ToRegisters())))
	if err != nil {
		log.Fatalf("Read: %s", err)
	}
	s, _ = decoder.DecodeString(8)
	log.Printf("Read back: %q", s)
}
