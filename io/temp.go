package io

import (
	"fmt"
	"iter"
	"maps"

	"github.com/ezrec/xor64/cpu"
)

const (
	INT_TEMP_PUSH = uint32(6) // Push r0.
	INT_TEMP_POP  = uint32(7) // Pop into r0.

	TEMP_DEFAULT_CAPACITY = 1024 // Default capacity, in values.
)

var _temp_defines = map[string]string{
	"INT_TEMP_PUSH": fmt.Sprintf("%d", INT_TEMP_PUSH),
	"INT_TEMP_POP":  fmt.Sprintf("%d", INT_TEMP_POP),
}

// Temporary implements a circular buffer for temporary value storage.
// It operates as a FIFO queue with a fixed capacity and separate read/write positions.
type Temporary struct {
	Capacity int // Capacity in values.

	ReadIndex  int
	WriteIndex int
	Size       int
	Data       []uint32
}

var _ Device = (*Temporary)(nil)

// Defines returns an iter of defines for the temporary buffer.
func (temp *Temporary) Defines() iter.Seq2[string, string] {
	defines := maps.Clone(_temp_defines)
	defines["TEMP_CAPACITY"] = fmt.Sprintf("%d", temp.capacity())
	return maps.All(defines)
}

// Numbers returns the temporary buffer interrupts.
func (temp *Temporary) Numbers() []uint32 {
	return []uint32{INT_TEMP_PUSH, INT_TEMP_POP}
}

func (temp *Temporary) capacity() int {
	if temp.Capacity <= 0 {
		return TEMP_DEFAULT_CAPACITY
	}
	return temp.Capacity
}

// Rewind resets the temporary storage to empty, resetting indices and
// reinitializing the data buffer.
func (temp *Temporary) Rewind() {
	temp.ReadIndex = 0
	temp.WriteIndex = 0
	temp.Size = 0
	temp.Data = make([]uint32, temp.capacity())
}

// Push writes a value to the buffer at the current write position.
// Returns ErrTempFull if the buffer has reached capacity.
func (temp *Temporary) Push(value uint32) (err error) {
	if temp.Data == nil {
		temp.Rewind()
	}

	if temp.Size >= len(temp.Data) {
		err = ErrTempFull
		return
	}

	temp.Data[temp.WriteIndex] = value

	temp.WriteIndex++
	if temp.WriteIndex == len(temp.Data) {
		temp.WriteIndex = 0
	}
	temp.Size++

	return
}

// Pop reads the oldest value from the buffer.
// Returns ErrTempEmpty if the buffer is empty.
func (temp *Temporary) Pop() (value uint32, err error) {
	if temp.Size == 0 {
		err = ErrTempEmpty
		return
	}

	value = temp.Data[temp.ReadIndex]
	temp.ReadIndex++
	if temp.ReadIndex == len(temp.Data) {
		temp.ReadIndex = 0
	}
	temp.Size--

	return
}

// Interrupt services the temporary buffer interrupts.
func (temp *Temporary) Interrupt(cp *cpu.Cpu, number uint32) (outcome cpu.Outcome, err error) {
	switch number {
	case INT_TEMP_PUSH:
		err = temp.Push(cp.R[0])
	case INT_TEMP_POP:
		var value uint32
		value, err = temp.Pop()
		if err != nil {
			return
		}
		cp.R[0] = value
	default:
		err = cpu.ErrInterrupt(number)
	}

	return
}
