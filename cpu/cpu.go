package cpu

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"sync/atomic"
)

// State is the execution state of the CPU.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_FETCH   = State(0) // fetch
	STATE_DECODE  = State(1) // decode
	STATE_EXECUTE = State(2) // execute
	STATE_HALTED  = State(3) // halted
	STATE_TRAPPED = State(4) // trapped
)

// TrapKind classifies a fatal execution fault.
type TrapKind int

//go:generate go tool stringer -linecomment -type=TrapKind
const (
	TRAP_NONE       = TrapKind(0) // none
	TRAP_DECODE     = TrapKind(1) // decode
	TRAP_MEMORY     = TrapKind(2) // memory
	TRAP_ARITHMETIC = TrapKind(3) // arithmetic
	TRAP_INTERRUPT  = TrapKind(4) // interrupt
	TRAP_DEVICE     = TrapKind(5) // device
)

// TrapKindOf classifies an execution error. Errors that are none of the
// core kinds come from interrupt handlers.
func TrapKindOf(err error) (kind TrapKind) {
	switch {
	case err == nil:
		kind = TRAP_NONE
	case errors.Is(err, ErrDecode):
		kind = TRAP_DECODE
	case errors.Is(err, ErrMemoryFault):
		kind = TRAP_MEMORY
	case errors.Is(err, ErrArithmetic):
		kind = TRAP_ARITHMETIC
	case errors.Is(err, ErrUnknownInterrupt):
		kind = TRAP_INTERRUPT
	default:
		kind = TRAP_DEVICE
	}
	return
}

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":  fmt.Sprintf("%#x", MEMORY_SIZE),
	"FLAG_LESS":    fmt.Sprintf("%d", FLAG_LESS),
	"FLAG_EQUAL":   fmt.Sprintf("%d", FLAG_EQUAL),
	"FLAG_GREATER": fmt.Sprintf("%d", FLAG_GREATER),
}

// Cpu is the simulation context for the xor64 execution core.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Registers // Register file.

	Memory     Memory     // Memory image.
	Interrupts Interrupts // Interrupt dispatcher.
	IntPolicy  IntPolicy  // Treatment of interrupt requested jumps.

	State State // Execution state.
	Ticks int   // Executed instruction counter.

	trap *ErrTrap    // Trap, when State is STATE_TRAPPED.
	halt atomic.Bool // External halt request.
}

// Snapshot is a read-only copy of the CPU state.
type Snapshot struct {
	Registers
	State State
	Ticks int
	Trap  error
}

// NewCpu creates a new CPU with size bytes of memory and an interrupt
// dispatcher. The interrupt dispatcher may be nil, in which case every int
// instruction traps.
func NewCpu(size uint32, interrupts Interrupts) (cpu *Cpu) {
	cpu = &Cpu{
		Memory:     Memory{Data: make([]byte, size)},
		Interrupts: interrupts,
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("% 5s: %v\n", "state", cpu.State)
	text += cpu.Registers.String()
	text += fmt.Sprintf("% 5s: %d\n", "ticks", cpu.Ticks)
	if cpu.trap != nil {
		text += fmt.Sprintf("% 5s: %v\n", "trap", cpu.trap.Kind)
	}
	return
}

// Snapshot returns a copy of the register file and execution state.
func (cpu *Cpu) Snapshot() (snap Snapshot) {
	snap = Snapshot{
		Registers: cpu.Registers,
		State:     cpu.State,
		Ticks:     cpu.Ticks,
	}
	if cpu.trap != nil {
		snap.Trap = cpu.trap
	}
	return
}

// Trap returns the trap that stopped the CPU, or nil.
func (cpu *Cpu) Trap() error {
	if cpu.trap == nil {
		return nil
	}
	return cpu.trap
}

// Reset the CPU state.
// - Clears the registers, flags and memory.
// - Zeros statistics counters.
// - Clears any trap or halt request.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Registers.Reset()
	cpu.Memory.Reset()
	cpu.Ticks = 0
	cpu.State = STATE_FETCH
	cpu.trap = nil
	cpu.halt.Store(false)
}

// Load copies a program image into memory at base.
func (cpu *Cpu) Load(image []byte, base uint32) (err error) {
	err = cpu.Memory.Load(base, image)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes at 0x%08x", len(image), base)
	}

	return
}

// Halt requests the CPU to stop before the next instruction fetch.
// It is safe to call from another goroutine.
func (cpu *Cpu) Halt() {
	cpu.halt.Store(true)
}

// fault traps the CPU.
func (cpu *Cpu) fault(err error) (State, error) {
	cpu.trap = &ErrTrap{Ip: cpu.Ip, Kind: TrapKindOf(err), Err: err}
	cpu.State = STATE_TRAPPED

	if cpu.Verbose {
		log.Printf("cpu: %v", cpu.trap)
	}

	return cpu.State, cpu.trap
}

// Step executes a single instruction, returning the new state.
func (cpu *Cpu) Step() (state State, err error) {
	switch cpu.State {
	case STATE_TRAPPED:
		return cpu.State, cpu.trap
	case STATE_HALTED:
		return cpu.State, ErrHalted
	}

	if cpu.halt.Load() {
		if cpu.Verbose {
			log.Printf("cpu: halt at 0x%08x", cpu.Ip)
		}
		cpu.State = STATE_HALTED
		return cpu.State, nil
	}

	cpu.State = STATE_DECODE
	inst, err := Decode(&cpu.Memory, cpu.Ip)
	if err != nil {
		return cpu.fault(err)
	}

	cpu.State = STATE_EXECUTE
	err = cpu.Execute(inst)
	if err != nil {
		return cpu.fault(err)
	}

	if cpu.State == STATE_EXECUTE {
		cpu.State = STATE_FETCH
	}

	return cpu.State, nil
}

// Run steps the CPU until it halts or traps, or ctx is done. Cancellation is
// observed between instructions only.
func (cpu *Cpu) Run(ctx context.Context) (state State, err error) {
	for {
		select {
		case <-ctx.Done():
			return cpu.State, ctx.Err()
		default:
		}

		state, err = cpu.Step()
		if err != nil || state == STATE_HALTED {
			return
		}
	}
}

// Execute executes a single decoded instruction at the current Ip.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(inst), err)
		}
	}()

	if cpu.Verbose {
		log.Printf("%08x: %v", cpu.Ip, inst)
	}

	next_ip := cpu.Ip + inst.Length

	switch {
	case inst.Op.HasDst():
		err = cpu.doData(inst, next_ip)
	case inst.Op.IsJump():
		if inst.Op.Taken(cpu.Cf) {
			next_ip, err = cpu.address(inst.Arg, next_ip)
		}
	case inst.Op == OP_INT:
		next_ip, err = cpu.doInt(inst, next_ip)
	default:
		err = errors.Join(ErrDecode, ErrOpcodeInvalid)
	}
	if err != nil {
		return
	}

	cpu.Ip = next_ip
	cpu.Ticks++

	return
}

// doData executes ld, st, cmp and the arithmetic operations. Every read and
// check happens before the single write.
func (cpu *Cpu) doData(inst Instruction, next_ip uint32) (err error) {
	width := inst.Width
	if !width.Valid() {
		err = errors.Join(ErrDecode, ErrWidthInvalid)
		return
	}

	switch inst.Op {
	case OP_LD:
		var value uint32
		value, err = cpu.load(inst.Arg, width, next_ip)
		if err != nil {
			return
		}
		err = cpu.setLocation(inst.Dst, width, value)
	case OP_ST:
		if inst.Arg.Kind == ARG_IMM {
			err = errors.Join(ErrDecode, ErrOperandImmediate)
			return
		}
		var value, addr uint32
		value, err = cpu.getLocation(inst.Dst, width)
		if err != nil {
			return
		}
		addr, err = cpu.address(inst.Arg, next_ip)
		if err != nil {
			return
		}
		err = cpu.Memory.Write(addr, width, value)
	default:
		var input, value uint32
		input, err = cpu.getLocation(inst.Dst, width)
		if err != nil {
			return
		}
		value, err = cpu.value(inst.Arg, width, next_ip)
		if err != nil {
			return
		}
		if inst.Op == OP_CMP {
			cpu.Cf = Compare(input, value)
			return
		}
		var output uint32
		output, err = doAlu(inst.Op, input, value)
		if err != nil {
			return
		}
		err = cpu.setLocation(inst.Dst, width, output&width.Mask())
	}

	return
}

// doInt dispatches a software interrupt, returning the address of the next
// instruction.
func (cpu *Cpu) doInt(inst Instruction, next_ip uint32) (next uint32, err error) {
	next = next_ip

	number, err := cpu.value(inst.Arg, WIDTH_DOUBLE, next_ip)
	if err != nil {
		return
	}

	if cpu.Interrupts == nil {
		err = ErrInterrupt(number)
		return
	}

	ip := cpu.Ip
	outcome, err := cpu.Interrupts.Dispatch(cpu, number)
	cpu.Ip = ip
	if err != nil {
		return
	}

	if outcome.Jump {
		switch cpu.IntPolicy {
		case INT_POLICY_OUTCOME:
			next = outcome.Target
		default:
			if cpu.Verbose {
				log.Printf("cpu: int %d: jump to 0x%08x ignored", number, outcome.Target)
			}
		}
	}

	if outcome.Halt {
		if cpu.Verbose {
			log.Printf("cpu: int %d: halt", number)
		}
		cpu.State = STATE_HALTED
	}

	return
}

// getRegister reads a register operand. ip reads as the address of the next
// instruction.
func (cpu *Cpu) getRegister(reg Register, width Width, next_ip uint32) (value uint32, err error) {
	if reg == REG_IP {
		value = next_ip & width.Mask()
		return
	}
	return cpu.Registers.Get(reg, width)
}

// value gets the width value of an operand.
func (cpu *Cpu) value(arg Operand, width Width, next_ip uint32) (value uint32, err error) {
	switch arg.Kind {
	case ARG_IMM:
		value = arg.Value & width.Mask()
	case ARG_REG:
		value, err = cpu.getRegister(arg.Reg, width, next_ip)
	case ARG_PTR:
		value, err = cpu.Memory.Read(arg.Value, width)
	default:
		err = errors.Join(ErrDecode, ErrTagInvalid)
	}
	return
}

// address resolves the address an operand refers to.
func (cpu *Cpu) address(arg Operand, next_ip uint32) (addr uint32, err error) {
	switch arg.Kind {
	case ARG_IMM, ARG_PTR:
		addr = arg.Value
	case ARG_REG:
		addr, err = cpu.getRegister(arg.Reg, WIDTH_DOUBLE, next_ip)
	default:
		err = errors.Join(ErrDecode, ErrTagInvalid)
	}
	return
}

// load gets the source value of ld: an immediate is loaded as is, registers
// and pointers are dereferenced.
func (cpu *Cpu) load(arg Operand, width Width, next_ip uint32) (value uint32, err error) {
	if arg.Kind == ARG_IMM {
		value = arg.Value & width.Mask()
		return
	}

	addr, err := cpu.address(arg, next_ip)
	if err != nil {
		return
	}

	return cpu.Memory.Read(addr, width)
}

// getLocation reads width bytes of a destination.
func (cpu *Cpu) getLocation(dst Location, width Width) (value uint32, err error) {
	switch dst.Kind {
	case DST_REG:
		err = dst.Reg.check(true)
		if err != nil {
			return
		}
		value, err = cpu.Registers.Get(dst.Reg, width)
	case DST_MEM:
		value, err = cpu.Memory.Read(dst.Address, width)
	default:
		err = errors.Join(ErrDecode, ErrTagInvalid)
	}
	return
}

// setLocation writes width bytes of a destination.
func (cpu *Cpu) setLocation(dst Location, width Width, value uint32) (err error) {
	switch dst.Kind {
	case DST_REG:
		err = cpu.Registers.Set(dst.Reg, width, value)
	case DST_MEM:
		err = cpu.Memory.Write(dst.Address, width, value)
	default:
		err = errors.Join(ErrDecode, ErrTagInvalid)
	}
	return
}

// doAlu performs the requested arithmetic, and returns the output value.
// The caller truncates the output to the operation width.
func doAlu(op Opcode, input uint32, value uint32) (output uint32, err error) {
	switch op {
	case OP_ADD:
		output = input + value
	case OP_SUB:
		output = input - value
	case OP_MUL:
		output = input * value
	case OP_DIV:
		if value == 0 {
			err = ErrArithmetic
			return
		}
		output = input / value
	case OP_MOD:
		if value == 0 {
			err = ErrArithmetic
			return
		}
		output = input % value
	default:
		err = errors.Join(ErrDecode, ErrOpcodeInvalid)
	}

	return
}
