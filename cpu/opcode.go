package cpu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Opcode is an instruction operation tag.
type Opcode uint16

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_LD  = Opcode(0)  // ld
	OP_ST  = Opcode(1)  // st
	OP_CMP = Opcode(2)  // cmp
	OP_ADD = Opcode(3)  // add
	OP_SUB = Opcode(4)  // sub
	OP_MUL = Opcode(5)  // mul
	OP_DIV = Opcode(6)  // div
	OP_MOD = Opcode(7)  // mod
	OP_JMP = Opcode(8)  // jmp
	OP_JE  = Opcode(9)  // je
	OP_JNE = Opcode(10) // jne
	OP_JG  = Opcode(11) // jg
	OP_JGE = Opcode(12) // jge
	OP_JL  = Opcode(13) // jl
	OP_JLE = Opcode(14) // jle
	OP_INT = Opcode(15) // int
)

// OPCODE_COUNT is the number of defined opcodes.
const OPCODE_COUNT = 16

// Valid returns true if the opcode is one of the sixteen defined opcodes.
func (op Opcode) Valid() bool {
	return op < OPCODE_COUNT
}

// HasDst returns true if the opcode carries a destination and a width.
func (op Opcode) HasDst() bool {
	return op <= OP_MOD
}

// IsJump returns true for the unconditional and conditional jumps.
func (op Opcode) IsJump() bool {
	return op >= OP_JMP && op <= OP_JLE
}

// Taken returns true if the jump opcode transfers control for the given
// compare flags.
func (op Opcode) Taken(cf Flags) bool {
	switch op {
	case OP_JMP:
		return true
	case OP_JE:
		return cf&FLAG_EQUAL != 0
	case OP_JNE:
		return cf&FLAG_EQUAL == 0
	case OP_JG:
		return cf&FLAG_GREATER != 0
	case OP_JGE:
		return cf&(FLAG_GREATER|FLAG_EQUAL) != 0
	case OP_JL:
		return cf&FLAG_LESS != 0
	case OP_JLE:
		return cf&(FLAG_LESS|FLAG_EQUAL) != 0
	}

	return false
}

// Width is the access width of a data operation.
type Width uint8

//go:generate go tool stringer -linecomment -type=Width
const (
	WIDTH_BYTE   = Width(0) // b
	WIDTH_WORD   = Width(1) // w
	WIDTH_DOUBLE = Width(2) // d
)

// Valid returns true for the byte, word and double widths.
func (w Width) Valid() bool {
	return w <= WIDTH_DOUBLE
}

// Size returns the width in bytes.
func (w Width) Size() uint32 {
	return 1 << w
}

// Mask returns the bit mask covering the low Size() bytes.
func (w Width) Mask() uint32 {
	return uint32((uint64(1) << (8 * w.Size())) - 1)
}

// ArgKind is the encoding tag of an instruction operand.
type ArgKind uint8

//go:generate go tool stringer -linecomment -type=ArgKind
const (
	ARG_IMM = ArgKind(0) // imm
	ARG_REG = ArgKind(1) // reg
	ARG_PTR = ArgKind(2) // ptr
)

// DstKind is the encoding tag of an instruction destination.
type DstKind uint8

//go:generate go tool stringer -linecomment -type=DstKind
const (
	DST_REG = DstKind(0) // reg
	DST_MEM = DstKind(1) // mem
)

// Operand is a decoded instruction argument.
type Operand struct {
	Kind  ArgKind  // Operand encoding.
	Reg   Register // Register, for ARG_REG.
	Value uint32   // Immediate value for ARG_IMM, address for ARG_PTR.
}

// Imm returns an immediate operand.
func Imm(value uint32) Operand {
	return Operand{Kind: ARG_IMM, Value: value}
}

// Reg returns a register operand.
func Reg(reg Register) Operand {
	return Operand{Kind: ARG_REG, Reg: reg}
}

// Ptr returns a memory pointer operand.
func Ptr(address uint32) Operand {
	return Operand{Kind: ARG_PTR, Value: address}
}

// String returns the assembler syntax of the operand.
func (arg Operand) String() string {
	switch arg.Kind {
	case ARG_IMM:
		return fmt.Sprintf("%#x", arg.Value)
	case ARG_REG:
		return arg.Reg.String()
	case ARG_PTR:
		return fmt.Sprintf("[%#x]", arg.Value)
	}

	return fmt.Sprintf("<%v>", arg.Kind)
}

// size returns the encoded size of the operand, including its tag.
func (arg Operand) size() uint32 {
	if arg.Kind == ARG_REG {
		return 2
	}
	return 5
}

// Location is a decoded instruction destination, a register or a memory
// address. It is never an immediate.
type Location struct {
	Kind    DstKind  // Destination encoding.
	Reg     Register // Register, for DST_REG.
	Address uint32   // Address, for DST_MEM.
}

// DstReg returns a register destination.
func DstReg(reg Register) Location {
	return Location{Kind: DST_REG, Reg: reg}
}

// DstMem returns a memory destination.
func DstMem(address uint32) Location {
	return Location{Kind: DST_MEM, Address: address}
}

// String returns the assembler syntax of the destination.
func (dst Location) String() string {
	switch dst.Kind {
	case DST_REG:
		return dst.Reg.String()
	case DST_MEM:
		return fmt.Sprintf("[%#x]", dst.Address)
	}

	return fmt.Sprintf("<%v>", dst.Kind)
}

// size returns the encoded size of the destination, including its tag.
func (dst Location) size() uint32 {
	if dst.Kind == DST_REG {
		return 2
	}
	return 5
}

// Instruction is the decoded form of one fetched opcode.
type Instruction struct {
	Op     Opcode   // Operation.
	Width  Width    // Access width, data operations only.
	Dst    Location // Destination, data operations only.
	Arg    Operand  // Operand, or jump target, or interrupt number.
	Length uint32   // Encoded length in bytes.
}

// MakeData creates a data operation (ld, st, cmp, add, sub, mul, div, mod).
func MakeData(op Opcode, width Width, dst Location, arg Operand) (inst Instruction) {
	inst = Instruction{Op: op, Width: width, Dst: dst, Arg: arg}
	inst.Length = 3 + dst.size() + arg.size()
	return
}

// MakeJump creates an unconditional or conditional jump.
func MakeJump(op Opcode, arg Operand) (inst Instruction) {
	inst = Instruction{Op: op, Arg: arg}
	inst.Length = 2 + arg.size()
	return
}

// MakeInt creates a software interrupt.
func MakeInt(arg Operand) Instruction {
	return MakeJump(OP_INT, arg)
}

// AppendBinary appends the little-endian encoding of the instruction to b.
func (inst Instruction) AppendBinary(b []byte) (out []byte, err error) {
	out = b

	if !inst.Op.Valid() {
		err = errors.Join(ErrDecode, ErrOpcodeInvalid)
		return
	}

	out = binary.LittleEndian.AppendUint16(out, uint16(inst.Op))

	if inst.Op.HasDst() {
		if !inst.Width.Valid() {
			err = errors.Join(ErrDecode, ErrWidthInvalid)
			return
		}
		out = append(out, byte(inst.Width), byte(inst.Dst.Kind))
		switch inst.Dst.Kind {
		case DST_REG:
			out = append(out, byte(inst.Dst.Reg))
		case DST_MEM:
			out = binary.LittleEndian.AppendUint32(out, inst.Dst.Address)
		default:
			err = errors.Join(ErrDecode, ErrTagInvalid)
			return
		}
	}

	out = append(out, byte(inst.Arg.Kind))
	switch inst.Arg.Kind {
	case ARG_IMM, ARG_PTR:
		out = binary.LittleEndian.AppendUint32(out, inst.Arg.Value)
	case ARG_REG:
		out = append(out, byte(inst.Arg.Reg))
	default:
		err = errors.Join(ErrDecode, ErrTagInvalid)
		return
	}

	return
}

// MarshalBinary returns the little-endian encoding of the instruction.
func (inst Instruction) MarshalBinary() ([]byte, error) {
	return inst.AppendBinary(make([]byte, 0, inst.Length))
}

// String returns the assembly language representation of this instruction.
func (inst Instruction) String() string {
	if inst.Op.HasDst() {
		return fmt.Sprintf("%v_%v %v %v", inst.Op, inst.Width, inst.Dst, inst.Arg)
	}
	return fmt.Sprintf("%v %v", inst.Op, inst.Arg)
}
