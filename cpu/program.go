package cpu

import (
	"iter"
	"maps"
)

// Link is a reference to a label, patched with the label address once the
// whole source has been parsed.
type Link struct {
	Offset int    // Byte offset of the 32-bit address in Listing.Data.
	Label  string // Label name.
}

// Listing represents a line of assembled code with its source location and
// generated bytes.
type Listing struct {
	LineNo int      // Source line number.
	Ip     uint32   // Address of the first byte.
	Words  []string // Source words.
	Data   []byte   // Generated bytes.
	Links  []Link   // Label references in Data.
	Inst   bool     // Set if Data is an instruction.
}

// Program is the output of the assembler.
type Program struct {
	Listings []Listing
	Labels   map[string]uint32
}

type Debug struct {
	*Listing
	Index int // Byte offset of the address in the listing.
}

// Debug returns the listing containing the address ip.
func (prog *Program) Debug(ip uint32) (dbg Debug) {
	for n, l := range prog.Listings {
		if ip >= l.Ip && ip-l.Ip < uint32(len(l.Data)) {
			dbg = Debug{
				Listing: &prog.Listings[n],
				Index:   int(ip - l.Ip),
			}
			break
		}
	}

	return
}

// Base returns the lowest address of the program.
func (prog *Program) Base() (base uint32) {
	for n, l := range prog.Listings {
		if n == 0 || l.Ip < base {
			base = l.Ip
		}
	}
	return
}

// Entry returns the address of the 'start' label, if defined, or the
// program base.
func (prog *Program) Entry() uint32 {
	start, ok := prog.Labels["start"]
	if ok {
		return start
	}
	return prog.Base()
}

// Binary returns the memory image of the program, and the address it loads
// at. Gaps left by .org are zero filled.
func (prog *Program) Binary() (base uint32, image []byte) {
	if len(prog.Listings) == 0 {
		return
	}

	base = prog.Base()
	var end uint32
	for _, l := range prog.Listings {
		end = max(end, l.Ip+uint32(len(l.Data)))
	}

	image = make([]byte, end-base)
	for _, l := range prog.Listings {
		copy(image[l.Ip-base:], l.Data)
	}

	return
}

// Codes returns an iterator over the address and decoded form of every
// instruction in the program.
func (prog *Program) Codes() iter.Seq2[uint32, Instruction] {
	return func(yield func(ip uint32, inst Instruction) bool) {
		for _, l := range prog.Listings {
			if !l.Inst {
				continue
			}
			inst, err := Decode(&Memory{Data: l.Data}, 0)
			if err != nil {
				continue
			}
			if !yield(l.Ip, inst) {
				return
			}
		}
	}
}

// Symbols returns an iterator over the label addresses.
func (prog *Program) Symbols() iter.Seq2[string, uint32] {
	return maps.All(prog.Labels)
}
