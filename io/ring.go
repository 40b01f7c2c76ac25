package io

import (
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/ezrec/xor64/cpu"
)

const (
	INT_RING_READ   = uint32(8)  // Copy up to r1 bytes into memory at r0, r1 = bytes copied.
	INT_RING_WRITE  = uint32(9)  // Copy r1 bytes from memory at r0.
	INT_RING_REWIND = uint32(10) // Rewind the position selected by r0.

	// RING_OP_REWIND_READ resets the read position to the start.
	RING_OP_REWIND_READ = 0
	// RING_OP_REWIND_WRITE resets the write position to the start.
	RING_OP_REWIND_WRITE = 1

	// RING_DEFAULT_CAPACITY is the default capacity in bytes for a new ring.
	RING_DEFAULT_CAPACITY = 65536
)

var _ring_defines = map[string]string{
	"INT_RING_READ":        fmt.Sprintf("%d", INT_RING_READ),
	"INT_RING_WRITE":       fmt.Sprintf("%d", INT_RING_WRITE),
	"INT_RING_REWIND":      fmt.Sprintf("%d", INT_RING_REWIND),
	"RING_OP_REWIND_READ":  fmt.Sprintf("%d", RING_OP_REWIND_READ),
	"RING_OP_REWIND_WRITE": fmt.Sprintf("%d", RING_OP_REWIND_WRITE),
}

// Ring represents a persistent storage device with separate read and write
// positions. Reads stop at the write position.
type Ring struct {
	Capacity int // Capacity in bytes.

	WriteIndex int
	ReadIndex  int
	Data       []uint8
}

var _ Device = (*Ring)(nil)

// Defines returns an iter of defines for the ring.
func (ring *Ring) Defines() iter.Seq2[string, string] {
	return maps.All(_ring_defines)
}

// Numbers returns the ring interrupts.
func (ring *Ring) Numbers() []uint32 {
	return []uint32{INT_RING_READ, INT_RING_WRITE, INT_RING_REWIND}
}

// Rewind resets the ring's read position to the start and write position to the end
// of existing data.
func (ring *Ring) Rewind() {
	if ring.Capacity == 0 {
		ring.Capacity = max(RING_DEFAULT_CAPACITY, len(ring.Data))
	}

	ring.ReadIndex = 0
	ring.WriteIndex = len(ring.Data)
}

// Unmarshal loads ring data from a reader, replacing any existing data.
func (ring *Ring) Unmarshal(file io.Reader) (err error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return
	}

	ring.Data = data
	ring.ReadIndex = 0
	ring.WriteIndex = len(ring.Data)

	return
}

// Marshal writes the ring's data to a writer up to the current write position.
func (ring *Ring) Marshal(file io.Writer) (err error) {
	_, err = file.Write(ring.Data[:ring.WriteIndex])

	return
}

// Read copies up to count bytes from the read position.
func (ring *Ring) Read(count uint32) (data []byte) {
	end := ring.ReadIndex + int(min(count, uint32(ring.WriteIndex-ring.ReadIndex)))
	data = ring.Data[ring.ReadIndex:end]
	ring.ReadIndex = end
	return
}

// Write stores data at the write position.
// Returns ErrRingFull, and stores nothing, if the data exceeds the capacity.
func (ring *Ring) Write(data []byte) (err error) {
	if ring.Capacity == 0 {
		ring.Rewind()
	}

	end := ring.WriteIndex + len(data)
	if end > ring.Capacity {
		err = ErrRingFull
		return
	}

	ring.Data = append(ring.Data[:ring.WriteIndex], data...)
	ring.WriteIndex = end

	return
}

// Interrupt services the ring interrupts.
func (ring *Ring) Interrupt(cp *cpu.Cpu, number uint32) (outcome cpu.Outcome, err error) {
	switch number {
	case INT_RING_READ:
		// Validate the whole destination before copying.
		_, err = cp.Memory.Peek(cp.R[0], cp.R[1])
		if err != nil {
			return
		}
		data := ring.Read(cp.R[1])
		err = cp.Memory.Load(cp.R[0], data)
		if err != nil {
			return
		}
		cp.R[1] = uint32(len(data))
	case INT_RING_WRITE:
		var data []byte
		data, err = cp.Memory.Peek(cp.R[0], cp.R[1])
		if err != nil {
			return
		}
		err = ring.Write(data)
	case INT_RING_REWIND:
		switch cp.R[0] {
		case RING_OP_REWIND_READ:
			ring.ReadIndex = 0
		case RING_OP_REWIND_WRITE:
			ring.Data = ring.Data[:0]
			ring.WriteIndex = 0
			ring.ReadIndex = 0
		default:
			err = ErrRingRequest
		}
	default:
		err = cpu.ErrInterrupt(number)
	}

	return
}
