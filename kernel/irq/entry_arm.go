package irq

import (
	"ninjastorms/kernel/cpu"
	"ninjastorms/kernel/hal"
	"ninjastorms/kernel/kfmt"
)

// Regs contains a snapshot of the register values when a trap occurred. The
// entry stubs in entry_arm.s spill the interrupted register file into this
// layout before any Go code runs and reload it, with whatever modifications
// the handlers made, on exception return. The assembly depends on the field
// order and offsets below.
type Regs struct {
	R0, R1, R2, R3, R4, R5, R6 uint32
	R7, R8, R9, R10, R11, R12  uint32

	// SP and LR are the banked user-mode registers.
	SP uint32
	LR uint32

	// PC is the resume address, already fixed up per trap kind by the
	// entry stub (LR-4 for IRQ, LR for SWI, LR-8 for data aborts).
	PC uint32

	// SPSR is the interrupted mode's status register; restoring it on
	// exception return reinstates the interrupted mode.
	SPSR uint32
}

// Print outputs a dump of the register values to the active console.
func (r *Regs) Print() {
	kfmt.Printf("r0  = %p r1  = %p r2  = %p\n", r.R0, r.R1, r.R2)
	kfmt.Printf("r3  = %p r4  = %p r5  = %p\n", r.R3, r.R4, r.R5)
	kfmt.Printf("r6  = %p r7  = %p r8  = %p\n", r.R6, r.R7, r.R8)
	kfmt.Printf("r9  = %p r10 = %p r11 = %p\n", r.R9, r.R10, r.R11)
	kfmt.Printf("r12 = %p sp  = %p lr  = %p\n", r.R12, r.SP, r.LR)
	kfmt.Printf("pc  = %p cpsr= %q\n", r.PC, r.SPSR)
}

// The trap handlers, registered once during kernel init. Registration
// rather than direct calls keeps the low-level entry path free of package
// cycles: task, syscall and vmm plug themselves in.
var (
	timerHandlerFn     func(*Regs)
	syscallHandlerFn   func(*Regs)
	dataAbortHandlerFn func(*Regs)
)

// HandleTimer registers the handler invoked for the periodic timer IRQ.
func HandleTimer(fn func(*Regs)) {
	timerHandlerFn = fn
}

// HandleSyscall registers the handler invoked for the SWI trap.
func HandleSyscall(fn func(*Regs)) {
	syscallHandlerFn = fn
}

// HandleDataAbort registers the handler invoked for data aborts.
func HandleDataAbort(fn func(*Regs)) {
	dataAbortHandlerFn = fn
}

// Trap entry stubs, defined in entry_arm.s. Their addresses are written
// into the vector pointer slots by Init.
func irqEntry()
func swiEntry()
func dataAbortEntry()
func undefinedEntry()

// LoadContext installs the supplied register file and resumes execution at
// frame.PC in the mode encoded in frame.SPSR. Calls to LoadContext never
// return; it is how the scheduler first enters user mode and how the exit
// path abandons a dead task's trap frame. Defined in entry_arm.s.
func LoadContext(frame *Regs)

// irqHandler is invoked by the IRQ entry stub with the spilled context. Every
// IRQ is acknowledged at the timer and handed to the timer handler.
//
//go:nosplit
func irqHandler(frame *Regs) {
	hal.TimerAck()
	if timerHandlerFn != nil {
		timerHandlerFn(frame)
	}
}

// swiHandler is invoked by the SWI entry stub with the spilled context.
//
//go:nosplit
func swiHandler(frame *Regs) {
	if syscallHandlerFn != nil {
		syscallHandlerFn(frame)
	}
}

// abortHandler is invoked by the data-abort entry stub with the spilled
// context. On return the faulting instruction restarts.
//
//go:nosplit
func abortHandler(frame *Regs) {
	if dataAbortHandlerFn != nil {
		dataAbortHandlerFn(frame)
		return
	}

	kfmt.Printf("irq: unexpected data abort at %x\n", frame.PC)
	frame.Print()
	cpu.Halt()
}

// undefinedHandler services the undefined instruction trap; there is no
// recovery.
//
//go:nosplit
func undefinedHandler(frame *Regs) {
	kfmt.Printf("irq: undefined instruction at %x\n", frame.PC)
	frame.Print()
	cpu.Halt()
}
