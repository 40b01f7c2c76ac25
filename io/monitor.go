package io

import (
	"fmt"
	"iter"
	"maps"

	"github.com/ezrec/xor64/cpu"
)

const (
	INT_MONITOR_EXIT  = uint32(0) // Halt the CPU.
	INT_MONITOR_JUMP  = uint32(1) // Request a jump to r0.
	INT_MONITOR_ALERT = uint32(2) // Queue r0 for the host.
	INT_MONITOR_AWAIT = uint32(3) // Pop a host value into r0, r1 = 1 if present.
)

var _monitor_defines = map[string]string{
	"INT_MONITOR_EXIT":  fmt.Sprintf("%d", INT_MONITOR_EXIT),
	"INT_MONITOR_JUMP":  fmt.Sprintf("%d", INT_MONITOR_JUMP),
	"INT_MONITOR_ALERT": fmt.Sprintf("%d", INT_MONITOR_ALERT),
	"INT_MONITOR_AWAIT": fmt.Sprintf("%d", INT_MONITOR_AWAIT),
}

// Monitor is the host control device. It stops the program, and exchanges
// values between the program and the host.
type Monitor struct {
	ToDevice   []uint32 // Values alerted by the program.
	FromDevice []uint32 // Values sent by the host, awaited by the program.
}

var _ Device = (*Monitor)(nil)

// Rewind drops all queued values.
func (mon *Monitor) Rewind() {
	mon.FromDevice = nil
	mon.ToDevice = nil
}

// Defines returns an iter of defines for the monitor.
func (mon *Monitor) Defines() iter.Seq2[string, string] {
	return maps.All(_monitor_defines)
}

// Numbers returns the monitor interrupts.
func (mon *Monitor) Numbers() []uint32 {
	return []uint32{INT_MONITOR_EXIT, INT_MONITOR_JUMP, INT_MONITOR_ALERT, INT_MONITOR_AWAIT}
}

// GetAlert pops the oldest value alerted by the program.
func (mon *Monitor) GetAlert() (alert uint32, ok bool) {
	if len(mon.ToDevice) > 0 {
		ok = true
		alert = mon.ToDevice[0]
		mon.ToDevice = mon.ToDevice[1:]
	}

	return
}

// SendAwait queues a value for the program.
func (mon *Monitor) SendAwait(value uint32) {
	mon.FromDevice = append(mon.FromDevice, value)
}

// Interrupt services the monitor interrupts.
func (mon *Monitor) Interrupt(cp *cpu.Cpu, number uint32) (outcome cpu.Outcome, err error) {
	switch number {
	case INT_MONITOR_EXIT:
		outcome.Halt = true
	case INT_MONITOR_JUMP:
		outcome.Jump = true
		outcome.Target = cp.R[0]
	case INT_MONITOR_ALERT:
		mon.ToDevice = append(mon.ToDevice, cp.R[0])
	case INT_MONITOR_AWAIT:
		cp.R[1] = 0
		if len(mon.FromDevice) > 0 {
			cp.R[0] = mon.FromDevice[0]
			cp.R[1] = 1
			mon.FromDevice = mon.FromDevice[1:]
		}
	default:
		err = cpu.ErrInterrupt(number)
	}

	return
}
