// Package cpu implements the execution core and assembler for the xor64 system.
//
// The CPU consists of ten 32-bit general-purpose registers (r0-r9), ten
// reserved float registers (f0-f9), an internal scratch register (i0), an
// instruction pointer (ip) and a three bit compare flag register (cf, GEL).
// Instructions are fetched from a flat, byte addressable, little-endian
// memory image and operate at byte, word or double width.
//
// Software interrupts (int) are delegated to an Interrupts table supplied
// when the CPU is created.
//
// The assembler provides a small assembly language for the xor64 instruction
// set, supporting macros, labels, equates, and compile-time expression
// evaluation.
package cpu
