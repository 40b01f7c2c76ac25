// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"

	"github.com/ezrec/xor64/cpu"
	"github.com/ezrec/xor64/emulator"
	"github.com/ezrec/xor64/translate"
)

func main() {
	var compile string
	var binary string
	var base uint
	var ring string
	var save bool
	var input string
	var output string
	var jump bool
	var dump bool
	var verbose bool

	flag.StringVar(&compile, "c", "", ".xs file to compile")
	flag.StringVar(&binary, "b", "", "raw image to run")
	flag.UintVar(&base, "base", 0, "load address of the -b image")
	flag.StringVar(&ring, "r", "", ".ring file to use")
	flag.BoolVar(&save, "s", false, "Save the compiled image to -o, do not execute")
	flag.StringVar(&input, "i", "-", "Tape input")
	flag.StringVar(&output, "o", "-", "Tape output")
	flag.BoolVar(&jump, "jump", false, "Honor interrupt jump requests")
	flag.BoolVar(&dump, "dump", false, "Dump CPU state and memory on exit")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) != 0 && len(binary) != 0 {
		log.Fatalf("%v: -c and -b are exclusive", os.Args[0])
	}

	if verbose {
		log.Printf("%v: language %v", os.Args[0], translate.Language())
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	// Compile a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := emu.Assembler()
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	// Load a raw image.
	if len(binary) != 0 {
		image, err := os.ReadFile(binary)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
		emu.Program = &cpu.Program{
			Listings: []cpu.Listing{{Ip: uint32(base), Data: image}},
		}
	}

	if save {
		_, image := emu.Program.Binary()
		if output == "-" {
			_, err := os.Stdout.Write(image)
			if err != nil {
				log.Fatalf("%v: %v", output, err)
			}
		} else {
			err := os.WriteFile(output, image, 0644)
			if err != nil {
				log.Fatalf("%v: %v", output, err)
			}
		}
		return
	}

	if jump {
		emu.Cpu.IntPolicy = cpu.INT_POLICY_OUTCOME
	}

	if input == "-" {
		emu.Tape.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Tape.Input = inf
	}

	if output == "-" {
		emu.Tape.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Tape.Output = ouf
	}

	if len(ring) != 0 {
		inf, err := os.Open(ring)
		if err == nil {
			err = emu.Ring.Unmarshal(inf)
			inf.Close()
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Fatalf("%v: %v", ring, err)
		}
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	run_err := emu.Run(ctx)

	for alert, ok := emu.Monitor.GetAlert(); ok; alert, ok = emu.Monitor.GetAlert() {
		log.Printf("alert: 0x%08x", alert)
	}

	if dump {
		os.Stderr.WriteString(emu.Cpu.String())
		err = emu.Cpu.Memory.Dump(os.Stderr, emu.Cpu.Ip)
		if err != nil {
			log.Print(err)
		}
	}

	if len(ring) != 0 {
		ouf, err := os.Create(ring)
		if err != nil {
			log.Fatalf("%v: %v", ring, err)
		}
		err = emu.Ring.Marshal(ouf)
		if err == nil {
			err = ouf.Close()
		}
		if err != nil {
			log.Fatalf("%v: %v", ring, err)
		}
	}

	if run_err != nil {
		log.Fatal(run_err)
	}
}
