// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/xor64/cpu"
	"github.com/ezrec/xor64/internal"
	"github.com/ezrec/xor64/io"
)

const (
	EMULATOR_TEMP_CAPACITY = 4096 // Temporary buffer capacity, in values.
)

var _emulator_defines = map[string]string{
	"EMULATOR_TEMP_CAPACITY": fmt.Sprintf("%v", EMULATOR_TEMP_CAPACITY),
}

// Emulator state. CPU + interrupt devices.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Table cpu.InterruptTable // Interrupt table of the devices.

	Monitor   io.Monitor   // Host monitor device.
	Tape      io.Tape      // Tape device.
	Temporary io.Temporary // Temporary buffer device.
	Ring      io.Ring      // Ring storage device.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Program: &cpu.Program{},
	}

	emu.Cpu = cpu.NewCpu(cpu.MEMORY_SIZE, &emu.Table)
	emu.Temporary.Capacity = EMULATOR_TEMP_CAPACITY

	for _, dev := range emu.devices() {
		io.Attach(&emu.Table, dev)
	}

	return
}

func (emu *Emulator) devices() []io.Device {
	return []io.Device{&emu.Monitor, &emu.Tape, &emu.Temporary, &emu.Ring}
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Monitor.Defines(),
		emu.Tape.Defines(),
		emu.Temporary.Defines(),
		emu.Ring.Defines(),
	)
}

// Assembler returns an assembler predefined with the emulator defines.
func (emu *Emulator) Assembler() (asm *cpu.Assembler) {
	asm = &cpu.Assembler{Verbose: emu.Verbose}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}
	return
}

// Reset the emulator state, and load the program.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Reset()
	for _, dev := range emu.devices() {
		dev.Rewind()
	}

	base, image := emu.Program.Binary()
	err = emu.Cpu.Load(image, base)
	if err != nil {
		return
	}

	emu.Cpu.Ip = emu.Program.Entry()

	if emu.Verbose {
		log.Printf("emulator: entry 0x%08x", emu.Cpu.Ip)
	}

	return
}

// Code returns the current instruction, if it is part of the program.
func (emu *Emulator) Code() (inst cpu.Instruction, ok bool) {
	dbg := emu.Program.Debug(emu.Cpu.Ip)
	if dbg.Listing == nil || dbg.Index != 0 || !dbg.Inst {
		return
	}

	inst, err := cpu.Decode(&cpu.Memory{Data: dbg.Data}, 0)
	ok = err == nil

	return
}

// LineNo returns the current line number for the executing instruction.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Ip)
	if dbg.Listing == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	state, err := emu.Cpu.Step()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
		done = true
		return
	}
	if err != nil {
		return
	}

	done = state == cpu.STATE_HALTED

	return
}

// Run ticks the emulator until the program halts or traps, or ctx is done.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for done := false; !done; {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		default:
		}

		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}
