package cpu

import (
	"maps"
	"slices"
)

// IntPolicy selects how the CPU treats a jump requested by an interrupt
// handler.
type IntPolicy int

//go:generate go tool stringer -linecomment -type=IntPolicy
const (
	INT_POLICY_ADVANCE = IntPolicy(0) // advance
	INT_POLICY_OUTCOME = IntPolicy(1) // outcome
)

// Outcome is the result of servicing an interrupt.
type Outcome struct {
	Halt   bool   // Halt the CPU once the interrupt returns.
	Jump   bool   // Request a jump to Target.
	Target uint32 // Jump target.
}

// Handler services software interrupts.
//
// A handler may read and modify the register file and memory of the CPU.
// Changes to Ip are discarded; a handler moves Ip only by returning an
// Outcome with Jump set.
type Handler interface {
	Interrupt(cpu *Cpu, number uint32) (outcome Outcome, err error)
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(cpu *Cpu, number uint32) (outcome Outcome, err error)

func (fn HandlerFunc) Interrupt(cpu *Cpu, number uint32) (Outcome, error) {
	return fn(cpu, number)
}

// Interrupts dispatches an interrupt number to its handler.
type Interrupts interface {
	Dispatch(cpu *Cpu, number uint32) (outcome Outcome, err error)
}

// InterruptTable maps interrupt numbers to handlers.
type InterruptTable struct {
	Default Handler // Handler for unmapped numbers, if not nil.

	handler map[uint32]Handler
}

var _ Interrupts = (*InterruptTable)(nil)

// Set maps an interrupt number to a handler. A nil handler removes the
// mapping.
func (it *InterruptTable) Set(number uint32, handler Handler) {
	if handler == nil {
		delete(it.handler, number)
		return
	}

	if it.handler == nil {
		it.handler = make(map[uint32]Handler)
	}
	it.handler[number] = handler
}

// Get returns the handler mapped to an interrupt number.
func (it *InterruptTable) Get(number uint32) (handler Handler, ok bool) {
	handler, ok = it.handler[number]
	return
}

// Numbers returns the mapped interrupt numbers, in ascending order.
func (it *InterruptTable) Numbers() []uint32 {
	return slices.Sorted(maps.Keys(it.handler))
}

// Dispatch calls the handler for number, falling back to Default.
// Returns ErrInterrupt if neither exists.
func (it *InterruptTable) Dispatch(cpu *Cpu, number uint32) (outcome Outcome, err error) {
	handler, ok := it.handler[number]
	if !ok {
		handler = it.Default
	}
	if handler == nil {
		err = ErrInterrupt(number)
		return
	}

	return handler.Interrupt(cpu, number)
}
