package cpu

import (
	"errors"
)

// fetcher reads consecutive little-endian fields from memory. The first
// error is sticky; later reads return zero.
type fetcher struct {
	mem  *Memory
	addr uint32
	err  error
}

func (ft *fetcher) read(width Width) (value uint32) {
	if ft.err != nil {
		return
	}
	value, ft.err = ft.mem.Read(ft.addr, width)
	ft.addr += width.Size()
	return
}

func (ft *fetcher) location() (dst Location, err error) {
	dst.Kind = DstKind(ft.read(WIDTH_BYTE))
	switch dst.Kind {
	case DST_REG:
		dst.Reg = Register(ft.read(WIDTH_BYTE))
		if ft.err == nil {
			err = dst.Reg.check(true)
		}
	case DST_MEM:
		dst.Address = ft.read(WIDTH_DOUBLE)
	default:
		err = errors.Join(ErrDecode, ErrTagInvalid)
	}
	if ft.err != nil {
		err = ft.err
	}
	return
}

func (ft *fetcher) operand() (arg Operand, err error) {
	arg.Kind = ArgKind(ft.read(WIDTH_BYTE))
	switch arg.Kind {
	case ARG_IMM, ARG_PTR:
		arg.Value = ft.read(WIDTH_DOUBLE)
	case ARG_REG:
		arg.Reg = Register(ft.read(WIDTH_BYTE))
		if ft.err == nil {
			err = arg.Reg.check(false)
		}
	default:
		err = errors.Join(ErrDecode, ErrTagInvalid)
	}
	if ft.err != nil {
		err = ft.err
	}
	return
}

// Decode fetches and decodes the instruction at ip.
//
// Reading past the end of memory fails with ErrMemoryFault, every other
// malformed encoding fails with ErrDecode.
func Decode(mem *Memory, ip uint32) (inst Instruction, err error) {
	ft := &fetcher{mem: mem, addr: ip}

	inst.Op = Opcode(ft.read(WIDTH_WORD))
	if ft.err != nil {
		err = ft.err
		return
	}
	if !inst.Op.Valid() {
		err = errors.Join(ErrDecode, ErrOpcodeInvalid)
		return
	}

	if inst.Op.HasDst() {
		inst.Width = Width(ft.read(WIDTH_BYTE))
		if ft.err != nil {
			err = ft.err
			return
		}
		if !inst.Width.Valid() {
			err = errors.Join(ErrDecode, ErrWidthInvalid)
			return
		}
		inst.Dst, err = ft.location()
		if err != nil {
			return
		}
	}

	inst.Arg, err = ft.operand()
	if err != nil {
		return
	}

	if inst.Op == OP_ST && inst.Arg.Kind == ARG_IMM {
		err = errors.Join(ErrDecode, ErrOperandImmediate)
		return
	}

	inst.Length = ft.addr - ip

	return
}
