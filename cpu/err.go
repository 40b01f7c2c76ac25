package cpu

import (
	"errors"

	"github.com/ezrec/xor64/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrDecode           = errors.New(f("decode"))
	ErrMemoryFault      = errors.New(f("memory fault"))
	ErrArithmetic       = errors.New(f("divide by zero"))
	ErrUnknownInterrupt = errors.New(f("unknown interrupt"))
	ErrHalted           = errors.New(f("halted"))

	// Instruction decode errors
	ErrOpcodeInvalid    = errors.New(f("opcode invalid"))
	ErrWidthInvalid     = errors.New(f("width invalid"))
	ErrTagInvalid       = errors.New(f("operand tag invalid"))
	ErrRegisterInvalid  = errors.New(f("register invalid"))
	ErrRegisterReserved = errors.New(f("register reserved"))
	ErrRegisterReadOnly = errors.New(f("register read-only"))
	ErrOperandImmediate = errors.New(f("immediate not addressable"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrOrgSyntax          = errors.New(f(".org syntax"))
	ErrOrgBackwards       = errors.New(f(".org moves backwards"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro wihtout .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrWidthMissing       = errors.New(f("width missing"))
	ErrTargetInvalid      = errors.New(f("target invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrValueRange         = errors.New(f("value out of range"))
)

// ErrAddress is a memory access outside of the memory image.
type ErrAddress struct {
	Address uint32 // First byte of the access.
	Size    uint32 // Size of the access, in bytes.
}

func (err ErrAddress) Error() string {
	return f("address 0x%08x size %d out of range", err.Address, err.Size)
}

func (err ErrAddress) Is(target error) bool {
	return target == ErrMemoryFault
}

// ErrInterrupt is an interrupt number with no handler.
type ErrInterrupt uint32

func (ei ErrInterrupt) Error() string {
	return f("interrupt %d has no handler", uint32(ei))
}

func (ei ErrInterrupt) Is(target error) bool {
	return target == ErrUnknownInterrupt
}

// ErrOpcode annotates an error with the instruction that caused it.
type ErrOpcode Instruction

func (eo ErrOpcode) Error() string {
	return f("bad instruction %v", Instruction(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrTrap is a fatal execution fault. Once trapped, the CPU returns the same
// ErrTrap from every Step until it is Reset.
type ErrTrap struct {
	Ip   uint32   // Address of the faulting instruction.
	Kind TrapKind // Fault classification.
	Err  error    // Cause.
}

func (err *ErrTrap) Error() string {
	return f("trap %v at 0x%08x: %v", err.Kind.String(), err.Ip, err.Err)
}

func (err *ErrTrap) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseValue string

func (err ErrParseValue) Error() string {
	return f("'%v' is not a value or register", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
