// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a single pass macro assembler for the xor64 system.
type Assembler struct {
	Verbose bool      // If set, verbosely logs the assembler actions.
	Listing []Listing // List of generated listings.

	predefine map[string]string   // Predefines
	Label     map[string]uint32   // Map of jump labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	ip     uint32 // Address of the next generated byte.
	expand int    // Macro expansion counter, for @ label mangling.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register ids.
var regMap = map[string]Register{}

// opMap is a map of mnemonics to opcodes.
var opMap = map[string]Opcode{}

// widthMap is a map of mnemonic suffixes to widths.
var widthMap = map[string]Width{
	WIDTH_BYTE.String():   WIDTH_BYTE,
	WIDTH_WORD.String():   WIDTH_WORD,
	WIDTH_DOUBLE.String(): WIDTH_DOUBLE,
}

func init() {
	for reg := range Register(REGISTER_COUNT) {
		regMap[reg.String()] = reg
	}
	for op := range Opcode(OPCODE_COUNT) {
		opMap[op.String()] = op
	}
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// splitWords splits a line on whitespace and commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) > 0 && word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	v64, err := strconv.ParseInt(word, 0, 33)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 > 0xffffffff || v64 < -int64(0x80000000) {
		err = ErrValueRange
		return
	}
	value = uint32(v64)

	if invert {
		value = ^value
	}

	return
}

// valueOrLabel returns the value of a word, or the label it names.
func (asm *Assembler) valueOrLabel(word string) (value uint32, label string, err error) {
	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}

	if _, is_reg := regMap[word]; is_reg {
		err = ErrTargetInvalid
		return
	}

	value, err = asm.valueOf(word)
	if err != nil && identRe.MatchString(word) {
		err = nil
		label = word
	}

	return
}

// bracketed returns the inner text of a [pointer] word.
func bracketed(word string) (inner string, ok bool) {
	if len(word) > 2 && strings.HasPrefix(word, "[") && strings.HasSuffix(word, "]") {
		inner = word[1 : len(word)-1]
		ok = true
	}
	return
}

// location parses an instruction destination.
func (asm *Assembler) location(word string) (dst Location, label string, err error) {
	reg, ok := regMap[word]
	if ok {
		if !reg.Writable() {
			err = ErrTargetInvalid
			return
		}
		dst = DstReg(reg)
		return
	}

	inner, ok := bracketed(word)
	if !ok {
		err = ErrTargetInvalid
		return
	}

	var addr uint32
	addr, label, err = asm.valueOrLabel(inner)
	dst = DstMem(addr)

	return
}

// operand parses an instruction argument.
func (asm *Assembler) operand(word string) (arg Operand, label string, err error) {
	reg, ok := regMap[word]
	if ok {
		if !reg.Readable() {
			err = ErrParseValue(word)
			return
		}
		arg = Reg(reg)
		return
	}

	var value uint32
	inner, ok := bracketed(word)
	if ok {
		value, label, err = asm.valueOrLabel(inner)
		arg = Ptr(value)
		return
	}

	value, label, err = asm.valueOrLabel(strings.TrimPrefix(word, "#"))
	arg = Imm(value)

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	err = nil
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeUint(uint(addr))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint32, 16)
		}
		asm.Label[label] = asm.ip
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expand++
		prefix := fmt.Sprintf("%v_%v_", name, asm.expand)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", prefix)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = ErrMacro{Macro: name, Line: lineno, Err: err}
				err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = ErrMacro{Macro: name, Line: lineno, Err: err}
				err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.ip = 0
	asm.expand = 0
	asm.Label = make(map[string]uint32, 16)
	asm.Listing = asm.Listing[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Listing {
		l := &asm.Listing[n]

		for _, link := range l.Links {
			addr, ok := asm.Label[link.Label]
			if !ok {
				lineno = l.LineNo
				line = strings.Join(l.Words, " ")
				err = ErrLabelMissing(link.Label)
				return
			}
			binary.LittleEndian.PutUint32(l.Data[link.Offset:], addr)
		}
	}

	prog = &Program{
		Listings: slices.Clone(asm.Listing),
		Labels:   maps.Clone(asm.Label),
	}

	return
}

// mnemonic splits an OP_T mnemonic into its opcode and width.
func mnemonic(word string) (op Opcode, width Width, err error) {
	name, suffix, has_width := strings.Cut(word, "_")

	op, ok := opMap[name]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	if !op.HasDst() {
		if has_width {
			err = ErrInstructionInvalid
		}
		return
	}

	if !has_width {
		err = ErrWidthMissing
		return
	}

	width, ok = widthMap[suffix]
	if !ok {
		err = ErrWidthInvalid
	}

	return
}

// dataWidth maps data directives to their element width.
var dataWidth = map[string]Width{
	".byte":   WIDTH_BYTE,
	".word":   WIDTH_WORD,
	".double": WIDTH_DOUBLE,
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var data []byte
	var links []Link
	var inst bool

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(data) == 0 {
			return
		}
		listing := Listing{LineNo: lineno, Ip: asm.ip, Words: initial_words, Data: data, Links: links, Inst: inst}
		asm.Listing = append(asm.Listing, listing)
		asm.ip += uint32(len(data))
	}()

	switch words[0] {
	case ".org":
		if len(words) != 2 {
			err = ErrOrgSyntax
			return
		}
		var addr uint32
		addr, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		if len(asm.Listing) > 0 && addr < asm.ip {
			err = ErrOrgBackwards
			return
		}
		asm.ip = addr
		return
	case ".byte", ".word", ".double":
		width := dataWidth[words[0]]
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value uint32
			var label string
			value, label, err = asm.valueOrLabel(word)
			if err != nil {
				return
			}
			if len(label) != 0 {
				if width != WIDTH_DOUBLE {
					err = ErrParseNumber(word)
					return
				}
				links = append(links, Link{Offset: len(data), Label: label})
			}
			mask := width.Mask()
			if value&^mask != 0 && value|mask != 0xffffffff {
				err = ErrValueRange
				return
			}
			switch width {
			case WIDTH_BYTE:
				data = append(data, byte(value))
			case WIDTH_WORD:
				data = binary.LittleEndian.AppendUint16(data, uint16(value))
			default:
				data = binary.LittleEndian.AppendUint32(data, value)
			}
		}
		return
	}

	op, width, err := mnemonic(words[0])
	if err != nil {
		return
	}

	var code Instruction
	if op.HasDst() {
		if len(words) < 3 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		var dst Location
		var dst_label string
		dst, dst_label, err = asm.location(words[1])
		if err != nil {
			return
		}
		if len(dst_label) != 0 {
			links = append(links, Link{Offset: 4, Label: dst_label})
		}
		var arg Operand
		var arg_label string
		arg, arg_label, err = asm.operand(words[2])
		if err != nil {
			return
		}
		if op == OP_ST && arg.Kind == ARG_IMM {
			err = ErrOperandImmediate
			return
		}
		code = MakeData(op, width, dst, arg)
		if len(arg_label) != 0 {
			links = append(links, Link{Offset: int(code.Length) - 4, Label: arg_label})
		}
	} else {
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var arg Operand
		var arg_label string
		arg, arg_label, err = asm.operand(words[1])
		if err != nil {
			return
		}
		code = MakeJump(op, arg)
		if len(arg_label) != 0 {
			links = append(links, Link{Offset: int(code.Length) - 4, Label: arg_label})
		}
	}

	data, err = code.MarshalBinary()
	inst = true

	return
}
