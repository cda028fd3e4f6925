package irq

import (
	"testing"

	"ninjastorms/kernel/cpu"
	"ninjastorms/kernel/hal"
)

func TestInitInstallsVectorTable(t *testing.T) {
	var (
		words      = map[uint32]uint32{}
		stacks     = map[uint32]uint32{}
		ctrlInits  int
		irqEnables int
		highVecs   int
	)

	origWrite, origStack := writeVectorFn, setModeStackFn
	origHigh, origEnable, origCtrl := enableHighVectorsFn, enableInterruptsFn, controllerInitFn
	defer func() {
		writeVectorFn, setModeStackFn = origWrite, origStack
		enableHighVectorsFn, enableInterruptsFn, controllerInitFn = origHigh, origEnable, origCtrl
	}()

	writeVectorFn = func(addr, val uint32) { words[addr] = val }
	setModeStackFn = func(mode, base uint32) { stacks[mode] = base }
	enableHighVectorsFn = func() { highVecs++ }
	enableInterruptsFn = func() { irqEnables++ }
	controllerInitFn = func() { ctrlInits++ }

	Init()

	base := hal.IVTBase

	// vector slots: the load-pc idiom for handled traps, zero words for
	// the rest
	expSlots := map[uint32]uint32{
		vecReset:         0,
		vecUndefined:     vectorInstruction,
		vecSWI:           vectorInstruction,
		vecPrefetchAbort: 0,
		vecDataAbort:     vectorInstruction,
		vecReserved:      0,
		vecIRQ:           vectorInstruction,
		vecFIQ:           0,
	}
	for off, exp := range expSlots {
		got, ok := words[base+off]
		if !ok {
			t.Fatalf("expected a write to vector slot %x", off)
		}
		if got != exp {
			t.Errorf("vector slot %x: expected word %x; got %x", off, exp, got)
		}
	}

	// pointer slots hold the entry stub addresses
	expPointers := map[uint32]uint32{
		vecReset:         0,
		vecUndefined:     funcAddr(undefinedEntry),
		vecSWI:           funcAddr(swiEntry),
		vecPrefetchAbort: 0,
		vecDataAbort:     funcAddr(dataAbortEntry),
		vecReserved:      0,
		vecIRQ:           funcAddr(irqEntry),
		vecFIQ:           0,
	}
	for off, exp := range expPointers {
		got, ok := words[base+off+pointerSlotOffset]
		if !ok {
			t.Fatalf("expected a write to pointer slot %x", off+pointerSlotOffset)
		}
		if got != exp {
			t.Errorf("pointer slot %x: expected %x; got %x", off+pointerSlotOffset, exp, got)
		}
	}

	if got := stacks[cpu.IrqMode]; got != hal.IRQStack {
		t.Errorf("expected the IRQ stack at %x; got %x", hal.IRQStack, got)
	}
	if got := stacks[cpu.AbtMode]; got != hal.AbtStack {
		t.Errorf("expected the abort stack at %x; got %x", hal.AbtStack, got)
	}

	if ctrlInits != 1 || irqEnables != 1 {
		t.Errorf("expected one controller init and one IRQ unmask; got %d/%d", ctrlInits, irqEnables)
	}

	expHighVecs := 0
	if hal.HighVectors {
		expHighVecs = 1
	}
	if highVecs != expHighVecs {
		t.Errorf("expected %d high-vector switches; got %d", expHighVecs, highVecs)
	}
}

func TestHandlerRegistration(t *testing.T) {
	defer func() {
		syscallHandlerFn = nil
		dataAbortHandlerFn = nil
		timerHandlerFn = nil
	}()

	var gotFrames []*Regs
	HandleSyscall(func(frame *Regs) { gotFrames = append(gotFrames, frame) })

	frame := &Regs{R0: 3}
	swiHandler(frame)

	if len(gotFrames) != 1 || gotFrames[0] != frame {
		t.Fatal("expected the registered syscall handler to receive the trap frame")
	}

	aborts := 0
	HandleDataAbort(func(*Regs) { aborts++ })
	abortHandler(&Regs{})
	if aborts != 1 {
		t.Fatalf("expected the registered abort handler to run; got %d", aborts)
	}
}
