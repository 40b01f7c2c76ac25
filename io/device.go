// Package io provides the interrupt driven devices of the xor64 emulator.
// It includes the host monitor (Monitor), sequential byte I/O (Tape),
// a bounded FIFO (Temporary) and persistent byte storage (Ring).
package io

import (
	"iter"

	"github.com/ezrec/xor64/cpu"
)

// Device defines the interface for all interrupt driven devices in the
// xor64 system. Devices exchange values with the program through its
// registers and memory.
type Device interface {
	cpu.Handler
	// Rewind resets the device to its initial state.
	Rewind()
	// Defines returns the assembler predefines of the device.
	Defines() iter.Seq2[string, string]
	// Numbers returns the interrupt numbers serviced by the device.
	Numbers() []uint32
}

// Attach maps every interrupt number of a device in an interrupt table.
func Attach(it *cpu.InterruptTable, dev Device) {
	for _, number := range dev.Numbers() {
		it.Set(number, dev)
	}
}
