package cpu

import (
	"errors"
	"fmt"
)

// Register is a register id, in encoding order.
type Register uint8

//go:generate go tool stringer -linecomment -type=Register
const (
	REG_R0 = Register(0)  // r0
	REG_R1 = Register(1)  // r1
	REG_R2 = Register(2)  // r2
	REG_R3 = Register(3)  // r3
	REG_R4 = Register(4)  // r4
	REG_R5 = Register(5)  // r5
	REG_R6 = Register(6)  // r6
	REG_R7 = Register(7)  // r7
	REG_R8 = Register(8)  // r8
	REG_R9 = Register(9)  // r9
	REG_F0 = Register(10) // f0
	REG_F1 = Register(11) // f1
	REG_F2 = Register(12) // f2
	REG_F3 = Register(13) // f3
	REG_F4 = Register(14) // f4
	REG_F5 = Register(15) // f5
	REG_F6 = Register(16) // f6
	REG_F7 = Register(17) // f7
	REG_F8 = Register(18) // f8
	REG_F9 = Register(19) // f9
	REG_I0 = Register(20) // i0
	REG_IP = Register(21) // ip
	REG_CF = Register(22) // cf
)

// REGISTER_COUNT is the number of defined register ids.
const REGISTER_COUNT = 23

// Valid returns true if the register id is defined.
func (reg Register) Valid() bool {
	return reg < REGISTER_COUNT
}

// Float returns true for the reserved float registers.
func (reg Register) Float() bool {
	return reg >= REG_F0 && reg <= REG_F9
}

// Readable returns true if the register may be used as an operand.
func (reg Register) Readable() bool {
	return reg.Valid() && !reg.Float()
}

// Writable returns true if the register may be used as a destination.
func (reg Register) Writable() bool {
	return reg <= REG_R9 || reg == REG_I0
}

// check returns the decode error for using reg as an operand, or as a
// destination when write is set.
func (reg Register) check(write bool) (err error) {
	switch {
	case !reg.Valid():
		err = errors.Join(ErrDecode, ErrRegisterInvalid)
	case reg.Float():
		err = errors.Join(ErrDecode, ErrRegisterReserved)
	case write && !reg.Writable():
		err = errors.Join(ErrDecode, ErrRegisterReadOnly)
	}
	return
}

// Flags is the compare flag register, a GEL bitmap.
type Flags uint8

const (
	FLAG_LESS    = Flags(1 << 0) // Less than.
	FLAG_EQUAL   = Flags(1 << 1) // Equal.
	FLAG_GREATER = Flags(1 << 2) // Greater than.
	FLAG_MASK    = Flags(0b111)  // Mask of meaningful bits.
)

// Compare returns the flags for the unsigned comparison of a and b.
// Exactly one flag is set.
func Compare(a, b uint32) (cf Flags) {
	switch {
	case a > b:
		cf = FLAG_GREATER
	case a == b:
		cf = FLAG_EQUAL
	default:
		cf = FLAG_LESS
	}
	return
}

// String returns the flags as GEL, with '-' for clear bits.
func (cf Flags) String() string {
	out := []byte("---")
	for n, ch := range "GEL" {
		if cf&(FLAG_GREATER>>n) != 0 {
			out[n] = byte(ch)
		}
	}
	return string(out)
}

// Registers is the register file.
type Registers struct {
	R  [10]uint32 // General purpose registers.
	F  [10]uint32 // Float registers, reserved.
	I0 uint32     // Internal scratch register.
	Ip uint32     // Instruction pointer.
	Cf Flags      // Compare flags.
}

// Get returns the low width bytes of a readable register.
func (rf *Registers) Get(reg Register, width Width) (value uint32, err error) {
	err = reg.check(false)
	if err != nil {
		return
	}

	switch {
	case reg <= REG_R9:
		value = rf.R[reg]
	case reg == REG_I0:
		value = rf.I0
	case reg == REG_IP:
		value = rf.Ip
	case reg == REG_CF:
		value = uint32(rf.Cf)
	}

	value &= width.Mask()
	return
}

// Set replaces the low width bytes of a writable register. The untransferred
// upper bytes are left untouched.
func (rf *Registers) Set(reg Register, width Width, value uint32) (err error) {
	err = reg.check(true)
	if err != nil {
		return
	}

	cell := &rf.I0
	if reg <= REG_R9 {
		cell = &rf.R[reg]
	}

	mask := width.Mask()
	*cell = (*cell &^ mask) | (value & mask)
	return
}

// Reset zeros every register.
func (rf *Registers) Reset() {
	*rf = Registers{}
}

// String returns the register file as a string.
func (rf *Registers) String() (text string) {
	for n, val := range rf.R {
		text += fmt.Sprintf("% 5s: %04X_%04X\n", Register(n), val>>16, val&0xffff)
	}
	text += fmt.Sprintf("% 5s: %04X_%04X\n", REG_I0, rf.I0>>16, rf.I0&0xffff)
	text += fmt.Sprintf("% 5s: %08x\n", REG_IP, rf.Ip)
	text += fmt.Sprintf("% 5s: %v\n", REG_CF, rf.Cf)
	return
}
