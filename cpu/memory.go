package cpu

import (
	"encoding/binary"
	"fmt"
	"io"
	"slices"
)

const (
	MEMORY_SIZE = 0x10000 // Default memory size, in bytes.
)

// Memory is a flat, byte addressable, little-endian memory image.
type Memory struct {
	Data []byte
}

// NewMemory creates a zeroed memory image of size bytes.
func NewMemory(size uint32) *Memory {
	return &Memory{Data: make([]byte, size)}
}

// Size returns the memory size in bytes.
func (mem *Memory) Size() uint32 {
	return uint32(len(mem.Data))
}

// check validates an access of size bytes at addr.
func (mem *Memory) check(addr uint32, size uint32) (err error) {
	if uint64(addr)+uint64(size) > uint64(len(mem.Data)) {
		err = ErrAddress{Address: addr, Size: size}
	}
	return
}

// Read returns width bytes at addr.
func (mem *Memory) Read(addr uint32, width Width) (value uint32, err error) {
	err = mem.check(addr, width.Size())
	if err != nil {
		return
	}

	data := mem.Data[addr:]
	switch width {
	case WIDTH_BYTE:
		value = uint32(data[0])
	case WIDTH_WORD:
		value = uint32(binary.LittleEndian.Uint16(data))
	default:
		value = binary.LittleEndian.Uint32(data)
	}

	return
}

// Write replaces width bytes at addr with the low bytes of value. The
// access is validated before any byte is written.
func (mem *Memory) Write(addr uint32, width Width, value uint32) (err error) {
	err = mem.check(addr, width.Size())
	if err != nil {
		return
	}

	data := mem.Data[addr:]
	switch width {
	case WIDTH_BYTE:
		data[0] = byte(value)
	case WIDTH_WORD:
		binary.LittleEndian.PutUint16(data, uint16(value))
	default:
		binary.LittleEndian.PutUint32(data, value)
	}

	return
}

// Load copies an image into memory at base.
func (mem *Memory) Load(base uint32, image []byte) (err error) {
	if uint64(len(image)) > uint64(^uint32(0)) {
		err = ErrAddress{Address: base, Size: ^uint32(0)}
		return
	}
	err = mem.check(base, uint32(len(image)))
	if err != nil {
		return
	}

	copy(mem.Data[base:], image)
	return
}

// Peek returns a copy of count bytes at addr.
func (mem *Memory) Peek(addr uint32, count uint32) (data []byte, err error) {
	err = mem.check(addr, count)
	if err != nil {
		return
	}

	data = slices.Clone(mem.Data[addr : addr+count])
	return
}

// Reset zeros the memory.
func (mem *Memory) Reset() {
	clear(mem.Data)
}

// Dump writes all non-zero 16 byte rows of memory to w in the format
//
//	00000010: 00 11 22 33 44 55 66 77 88 99 aa bb cc dd ee ff
//
// Rows containing a highlighted address are always written, with the
// highlighted bytes bracketed.
func (mem *Memory) Dump(w io.Writer, highlights ...uint32) (err error) {
	const width = 16

	marked := func(addr int) bool {
		return slices.Contains(highlights, uint32(addr))
	}

	for row := 0; row < len(mem.Data); row += width {
		end := min(row+width, len(mem.Data))
		data := mem.Data[row:end]

		show := slices.ContainsFunc(data, func(b byte) bool { return b != 0 })
		for addr := row; !show && addr < end; addr++ {
			show = marked(addr)
		}
		if !show {
			continue
		}

		line := fmt.Sprintf("%08x:", row)
		for n, b := range data {
			if marked(row + n) {
				line += fmt.Sprintf("[%02x]", b)
			} else {
				line += fmt.Sprintf(" %02x", b)
			}
		}
		_, err = io.WriteString(w, line+"\n")
		if err != nil {
			return
		}
	}

	return
}
