package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Listings))

	assert.Equal("0", asm.Equate["LINENO"])

	asm.Predefine("MEMORY_SIZE", "0x10000")
	_, err = asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal("0x10000", asm.Equate["MEMORY_SIZE"])
}

func listingEqual(t *testing.T, expected, listings []Listing) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(listings))
	if len(expected) == len(listings) {
		for n := range len(expected) {
			assert.Equal(expected[n], listings[n])
		}
	}
}

func TestAssemblerEncoding(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"ld_w r2 [0x100]",
		"st_b i0 r1",
		"cmp_d [0x20] #-1",
		"jmp r9",
		"int 4",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Listing{
		{1, 0, []string{"ld_w", "r2", "[0x100]"},
			[]byte{0x00, 0x00, 0x01, 0x00, 0x02, 0x02, 0x00, 0x01, 0x00, 0x00}, nil, true},
		{2, 10, []string{"st_b", "i0", "r1"},
			[]byte{0x01, 0x00, 0x00, 0x00, 0x14, 0x01, 0x01}, nil, true},
		{3, 17, []string{"cmp_d", "[0x20]", "#-1"},
			[]byte{0x02, 0x00, 0x02, 0x01, 0x20, 0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff}, nil, true},
		{4, 30, []string{"jmp", "r9"},
			[]byte{0x08, 0x00, 0x01, 0x09}, nil, true},
		{5, 34, []string{"int", "4"},
			[]byte{0x0f, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00}, nil, true},
	}

	listingEqual(t, expected, prog.Listings)

	var codes []string
	for _, inst := range prog.Codes() {
		codes = append(codes, inst.String())
	}
	assert.Equal([]string{
		"ld_w r2 [0x100]",
		"st_b i0 r1",
		"cmp_d [0x20] 0xffffffff",
		"jmp r9",
		"int 0x4",
	}, codes)
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"start:",
		"  ld_d r0 #5      ; ip 0",
		"  cmp_d r0 [value]",
		"  jne start",
		"  int 0",
		"value: .double 5",
		"table: .double start value",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Listing{
		{2, 0, []string{"ld_d", "r0", "#5"},
			[]byte{0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00}, nil, true},
		{3, 10, []string{"cmp_d", "r0", "[value]"},
			[]byte{0x02, 0x00, 0x02, 0x00, 0x00, 0x02, 0x22, 0x00, 0x00, 0x00},
			[]Link{{Offset: 6, Label: "value"}}, true},
		{4, 20, []string{"jne", "start"},
			[]byte{0x0a, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
			[]Link{{Offset: 3, Label: "start"}}, true},
		{5, 27, []string{"int", "0"},
			[]byte{0x0f, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, nil, true},
		{6, 34, []string{".double", "5"},
			[]byte{0x05, 0x00, 0x00, 0x00}, nil, false},
		{7, 38, []string{".double", "start", "value"},
			[]byte{0x00, 0x00, 0x00, 0x00, 0x22, 0x00, 0x00, 0x00},
			[]Link{{Offset: 0, Label: "start"}, {Offset: 4, Label: "value"}}, false},
	}

	listingEqual(t, expected, prog.Listings)

	assert.Equal(map[string]uint32{"start": 0, "value": 34, "table": 38}, prog.Labels)
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		".equ BASE 0x200",
		".equ COUNT r3",
		".macro STORE reg addr",
		"st_d reg [addr]",
		".endm",
		"ld_d r0 $(BASE + 4)",
		"STORE r0 BASE",
		"add_b COUNT 'A'",
		"ld_d r1 $(LINENO * 2)",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Listing{
		{6, 0, []string{"ld_d", "r0", "0x204"},
			[]byte{0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x04, 0x02, 0x00, 0x00}, nil, true},
		{4, 10, []string{"st_d", "r0", "[addr]"},
			[]byte{0x01, 0x00, 0x02, 0x00, 0x00, 0x02, 0x00, 0x02, 0x00, 0x00}, nil, true},
		{8, 20, []string{"add_b", "r3", "65"},
			[]byte{0x03, 0x00, 0x00, 0x00, 0x03, 0x00, 0x41, 0x00, 0x00, 0x00}, nil, true},
		{9, 30, []string{"ld_d", "r1", "0x12"},
			[]byte{0x00, 0x00, 0x02, 0x00, 0x01, 0x00, 0x12, 0x00, 0x00, 0x00}, nil, true},
	}

	listingEqual(t, expected, prog.Listings)
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		".macro LOOP n",
		"ld_d r0 #n",
		"@top:",
		"sub_d r0 #1",
		"jne @top",
		".endm",
		"LOOP 3",
		"LOOP 2",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal(6, len(prog.Listings))
	assert.Equal(map[string]uint32{"LOOP_1_top": 10, "LOOP_2_top": 37}, prog.Labels)

	jne := prog.Listings[5]
	assert.Equal(uint32(47), jne.Ip)
	assert.Equal([]byte{0x0a, 0x00, 0x00, 37, 0x00, 0x00, 0x00}, jne.Data)
}

func TestAssemblerOrg(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := []string{
		".org 0x100",
		"start: jmp start",
		".org 0x200",
		".byte 1 2 -1",
		".word 0xBEEF",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal(uint32(0x100), prog.Base())
	assert.Equal(uint32(0x100), prog.Entry())
	assert.Equal(uint32(0x200), prog.Listings[1].Ip)
	assert.Equal([]byte{1, 2, 0xff}, prog.Listings[1].Data)
	assert.Equal(uint32(0x203), prog.Listings[2].Ip)
	assert.Equal([]byte{0xef, 0xbe}, prog.Listings[2].Data)
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		source string
		lineno int
		expect error
	}){
		{"width_missing", "ld r0 1", 1, ErrWidthMissing},
		{"width_jump", "jmp_d 0", 1, ErrInstructionInvalid},
		{"width_invalid", "ld_q r0 1", 1, ErrWidthInvalid},
		{"unknown", "\nfoo r0 1", 2, ErrInstructionInvalid},
		{"target_imm", "ld_d 5 r0", 1, ErrTargetInvalid},
		{"target_ip", "ld_d ip 1", 1, ErrTargetInvalid},
		{"target_float", "add_d f0 1", 1, ErrTargetInvalid},
		{"operand_float", "add_d r0 f1", 1, ErrParseValue("f1")},
		{"pointer_register", "ld_d r0 [r1]", 1, ErrTargetInvalid},
		{"st_imm", "st_d r0 5", 1, ErrOperandImmediate},
		{"label_missing", "jmp nowhere\nint 0", 1, ErrLabelMissing("nowhere")},
		{"value_missing", "add_d r0", 1, ErrOpcodeValueMissing},
		{"extra_args", "add_d r0 1 2", 1, ErrOpcodeExtraArgs},
		{"jump_extra", "jmp 1 2", 1, ErrOpcodeExtraArgs},
		{"equ_syntax", ".equ A", 1, ErrEquateSyntax},
		{"equ_duplicate", ".equ A 1\n.equ A 2", 2, ErrEquateDuplicate},
		{"label_duplicate", "a: int 0\na: int 1", 2, ErrLabelDuplicate},
		{"macro_lonely", ".macro M\nint 0", 2, ErrMacroLonely},
		{"endm_lonely", "int 0\n.endm", 2, ErrMacroLonelyEndm},
		{"macro_nested", ".macro M\n.macro N", 2, ErrMacroNesting},
		{"macro_args", ".macro M a\nint a\n.endm\nM", 4, ErrMacroSyntax},
		{"macro_body", ".macro M\nld r0 1\n.endm\nM", 4, ErrWidthMissing},
		{"org_syntax", ".org", 1, ErrOrgSyntax},
		{"org_backwards", ".org 0x10\n.byte 1\n.org 0", 3, ErrOrgBackwards},
		{"byte_range", ".byte 0x100", 1, ErrValueRange},
		{"word_range", ".word 0x10000", 1, ErrValueRange},
		{"byte_label", "a: .byte a", 1, ErrParseNumber("a")},
		{"value_range", "ld_d r0 -0x80000001", 1, ErrValueRange},
		{"value_number", "ld_d r0 0x100000000", 1, ErrParseNumber("0x100000000")},
		{"expression", "ld_d r0 $(1 +)", 1, nil},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(entry.source))
		assert.Error(err, entry.name)

		var syntax ErrSyntax
		assert.ErrorAs(err, &syntax, entry.name)
		assert.Equal(entry.lineno, syntax.LineNo, entry.name)
		if entry.expect != nil {
			assert.ErrorIs(err, entry.expect, entry.name)
		}
	}
}
