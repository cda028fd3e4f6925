package task

import (
	"testing"

	"ninjastorms/kernel/hal"
	"ninjastorms/kernel/irq"
)

func TestStartSchedulerOnce(t *testing.T) {
	resetTaskState()

	first := spawn(t, 0)

	var (
		irqInits    int
		timerStops  int
		timerStarts []uint32
		loaded      []*irq.Regs
	)
	irqInitFn = func() { irqInits++ }
	timerStopFn = func() { timerStops++ }
	timerStartFn = func(load uint32) { timerStarts = append(timerStarts, load) }
	loadContextFn = func(frame *irq.Regs) { loaded = append(loaded, frame) }

	Start()

	if current.PID != first {
		t.Fatalf("expected the first ready task to become current; got pid %d", current.PID)
	}
	if irqInits != 1 || timerStops != 1 {
		t.Fatalf("expected one trap install and one timer stop; got %d/%d", irqInits, timerStops)
	}
	if len(timerStarts) != 1 || timerStarts[0] != hal.TimerLoadValue {
		t.Fatalf("expected the timer to restart with %x; got %v", hal.TimerLoadValue, timerStarts)
	}
	if len(loaded) != 1 || loaded[0] != &current.Context {
		t.Fatal("expected the first task's context to be loaded")
	}

	// the second call is a no-op
	Start()
	if irqInits != 1 || len(loaded) != 1 {
		t.Fatal("expected a second Start call to do nothing")
	}
}

func TestOnTickRotatesReadyQueue(t *testing.T) {
	resetTaskState()

	initPID := spawn(t, 0)
	next := spawn(t, initPID)

	// emulate a running scheduler: init is current, pid 2 waits
	current = findTask(initPID)
	rebuildRing()

	frame := irq.Regs{R0: 0xaaaa, PC: 0x00008100, SPSR: 0x10}
	OnTick(&frame)

	if current.PID != next {
		t.Fatalf("expected the tick to switch to pid %d; got %d", next, current.PID)
	}
	if frame != current.Context {
		t.Fatal("expected the trap frame to hold the new task's context")
	}

	prev := findTask(initPID)
	if prev.Context.R0 != 0xaaaa || prev.Context.PC != 0x00008100 {
		t.Fatal("expected the interrupted context to be saved into the previous task")
	}

	// the previous task waits at the queue tail
	if got := ringRemove(); got != prev {
		t.Fatal("expected the preempted task to be re-enqueued")
	}
}

func TestOnTickWithSingleTask(t *testing.T) {
	resetTaskState()

	only := spawn(t, 0)
	current = findTask(only)
	rebuildRing() // empty queue: the sole task runs

	frame := irq.Regs{PC: 0x00008200}
	OnTick(&frame)

	if current.PID != only {
		t.Fatalf("expected the sole task to keep running; got pid %d", current.PID)
	}
	if frame.PC != 0x00008200 {
		t.Fatal("expected the trap frame to resume the same context")
	}
}
