package io

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/ezrec/xor64/cpu"
)

const (
	INT_TAPE_PUTC = uint32(4) // Write the low byte of r0.
	INT_TAPE_GETC = uint32(5) // Read a byte into r0, TAPE_EOF at end of input.

	TAPE_EOF = ^uint32(0) // End of input marker.
)

var _tape_defines = map[string]string{
	"INT_TAPE_PUTC": fmt.Sprintf("%d", INT_TAPE_PUTC),
	"INT_TAPE_GETC": fmt.Sprintf("%d", INT_TAPE_GETC),
	"TAPE_EOF":      fmt.Sprintf("%#x", TAPE_EOF),
}

// Tape provides sequential I/O operations for reading and writing byte streams.
// It wraps an io.Reader for input and io.Writer for output. A missing Input
// reads as end of input.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	Read    int // Bytes read since the last rewind.
	Written int // Bytes written since the last rewind.
}

var _ Device = (*Tape)(nil)

// Defines returns an iter of defines for the tape.
func (tc *Tape) Defines() iter.Seq2[string, string] {
	return maps.All(_tape_defines)
}

// Numbers returns the tape interrupts.
func (tc *Tape) Numbers() []uint32 {
	return []uint32{INT_TAPE_PUTC, INT_TAPE_GETC}
}

// Rewind is not possible on a tape; only the counters are reset.
func (tc *Tape) Rewind() {
	tc.Read = 0
	tc.Written = 0
}

// Interrupt services the tape interrupts.
func (tc *Tape) Interrupt(cp *cpu.Cpu, number uint32) (outcome cpu.Outcome, err error) {
	switch number {
	case INT_TAPE_PUTC:
		if tc.Output == nil {
			err = ErrTapeMissing
			return
		}
		_, err = tc.Output.Write([]byte{byte(cp.R[0])})
		if err != nil {
			return
		}
		tc.Written++
	case INT_TAPE_GETC:
		cp.R[0] = TAPE_EOF
		if tc.Input == nil {
			return
		}
		var one [1]byte
		_, err = io.ReadFull(tc.Input, one[:])
		if errors.Is(err, io.EOF) {
			err = nil
			return
		}
		if err != nil {
			return
		}
		cp.R[0] = uint32(one[0])
		tc.Read++
	default:
		err = cpu.ErrInterrupt(number)
	}

	return
}
