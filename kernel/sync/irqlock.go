// Package sync provides the mutual exclusion primitive the kernel needs on
// its single core: masking IRQs around a critical section.
package sync

import "ninjastorms/kernel/cpu"

// irqBit is the I-bit of the CPSR.
const irqBit uint32 = 0x80

var (
	// Overridden by tests which cannot touch the CPSR.
	readCPSRFn   = cpu.ReadCPSR
	disableIRQFn = cpu.DisableInterrupts
	enableIRQFn  = cpu.EnableInterrupts
)

// IrqLock guards kernel state that is shared between trap handlers and
// privileged code running with interrupts open. Acquire records whether
// IRQs were enabled so a critical section entered from a trap handler
// (where they are already masked) does not unmask them on Release.
//
// There is no state to spin on: with a single core, masking the only
// interrupt source is mutual exclusion.
type IrqLock struct {
	wasMasked bool
}

// Acquire masks IRQs for the duration of the critical section.
func (l *IrqLock) Acquire() {
	l.wasMasked = readCPSRFn()&irqBit != 0
	disableIRQFn()
}

// Release restores the interrupt state captured by Acquire.
func (l *IrqLock) Release() {
	if !l.wasMasked {
		enableIRQFn()
	}
}
