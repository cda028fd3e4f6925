package task

import (
	"ninjastorms/kernel/cpu"
	"ninjastorms/kernel/hal"
	"ninjastorms/kernel/irq"
	"ninjastorms/kernel/kfmt"
)

var (
	schedulerRunning bool

	// Hardware touch points, overridden by tests.
	loadContextFn = irq.LoadContext
	haltFn        = cpu.Halt
	timerStartFn  = hal.TimerStart
	timerStopFn   = hal.TimerStop
	irqInitFn     = irq.Init
)

// Start hands the CPU to the first ready task and arms the periodic tick.
// It returns immediately when the scheduler already runs or when the ready
// queue is empty; otherwise Start never returns.
func Start() {
	if schedulerRunning || ringEmpty() {
		return
	}
	schedulerRunning = true

	irq.HandleTimer(OnTick)

	current = ringRemove()
	timerStopFn()
	irqInitFn()
	timerStartFn(hal.TimerLoadValue)
	loadContextFn(&current.Context)
}

// OnTick rotates the ready queue on the periodic timer interrupt: the
// interrupted context is saved into the current task, the longest waiting
// task becomes current and its context replaces the trap frame. With an
// empty queue current falls back to the slot-0 idle sentinel.
func OnTick(frame *irq.Regs) {
	current.Context = *frame
	ringInsert(current)
	current = ringRemove()
	*frame = current.Context
}

// scheduleAfterExit picks the next ready task without re-inserting the
// dying one and resumes it. With nothing left to run the kernel halts.
func scheduleAfterExit() {
	if ringEmpty() {
		kfmt.Printf("task: no runnable tasks left, halting\n")
		haltFn()
		return
	}

	current = ringRemove()
	kfmt.Printf("task: switching to pid %i\n", current.PID)
	loadContextFn(&current.Context)
}
