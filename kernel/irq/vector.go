package irq

import (
	"unsafe"

	"ninjastorms/kernel/cpu"
	"ninjastorms/kernel/hal"
	"ninjastorms/kernel/reg"
)

// vectorInstruction is the canonical "ldr pc, [pc, #20]" word. Placed in a
// vector slot it loads the entry address from the pointer slot 0x20 bytes
// ahead, which keeps the 4-byte vector slots free of range-limited branches.
const vectorInstruction uint32 = 0xe59ff014

// Architectural exception vector offsets.
const (
	vecReset         uint32 = 0x00
	vecUndefined     uint32 = 0x04
	vecSWI           uint32 = 0x08
	vecPrefetchAbort uint32 = 0x0c
	vecDataAbort     uint32 = 0x10
	vecReserved      uint32 = 0x14
	vecIRQ           uint32 = 0x18
	vecFIQ           uint32 = 0x1c

	// pointerSlotOffset is the distance between a vector slot and the
	// pointer slot its load instruction reads.
	pointerSlotOffset uint32 = 0x20
)

var (
	// Hardware touch points, overridden by tests.
	writeVectorFn       = reg.Write
	setModeStackFn      = cpu.SetModeStack
	enableHighVectorsFn = cpu.EnableHighVectors
	enableInterruptsFn  = cpu.EnableInterrupts
	controllerInitFn    = hal.InterruptControllerInit
)

// Init prepares interrupt delivery: it writes the exception vector table at
// the board's vector base, points the IRQ and abort mode stack pointers at
// their reserved regions, unmasks the timer at the interrupt controller and
// finally clears the CPSR I-bit.
func Init() {
	installVectors()
	setModeStackFn(cpu.IrqMode, hal.IRQStack)
	setModeStackFn(cpu.AbtMode, hal.AbtStack)
	controllerInitFn()
	enableInterruptsFn()
}

// installVectors writes the eight vector slots and the eight pointer slots
// behind them. Traps the kernel does not service keep a zero word.
func installVectors() {
	base := hal.IVTBase

	writeVectorFn(base+vecReset, 0)
	writeVectorFn(base+vecUndefined, vectorInstruction)
	writeVectorFn(base+vecSWI, vectorInstruction)
	writeVectorFn(base+vecPrefetchAbort, 0)
	writeVectorFn(base+vecDataAbort, vectorInstruction)
	writeVectorFn(base+vecReserved, 0)
	writeVectorFn(base+vecIRQ, vectorInstruction)
	writeVectorFn(base+vecFIQ, 0)

	writeVectorFn(base+vecReset+pointerSlotOffset, 0)
	writeVectorFn(base+vecUndefined+pointerSlotOffset, funcAddr(undefinedEntry))
	writeVectorFn(base+vecSWI+pointerSlotOffset, funcAddr(swiEntry))
	writeVectorFn(base+vecPrefetchAbort+pointerSlotOffset, 0)
	writeVectorFn(base+vecDataAbort+pointerSlotOffset, funcAddr(dataAbortEntry))
	writeVectorFn(base+vecReserved+pointerSlotOffset, 0)
	writeVectorFn(base+vecIRQ+pointerSlotOffset, funcAddr(irqEntry))
	writeVectorFn(base+vecFIQ+pointerSlotOffset, 0)

	if hal.HighVectors {
		// relocate the table to 0xFFFF0000
		enableHighVectorsFn()
	}
}

// funcAddr returns the entry address of fn.
func funcAddr(fn func()) uint32 {
	return uint32(**(**uintptr)(unsafe.Pointer(&fn)))
}
