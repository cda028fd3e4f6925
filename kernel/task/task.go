// Package task owns the fixed task table, the ready ring buffer and the
// round-robin scheduler rotating it.
package task

import (
	"io"
	"unsafe"

	"ninjastorms/kernel"
	"ninjastorms/kernel/cpu"
	"ninjastorms/kernel/hal"
	"ninjastorms/kernel/irq"
	"ninjastorms/kernel/kfmt"
	"ninjastorms/kernel/sync"
)

// MaxTasks fixes the capacity of the task table.
const MaxTasks = 16

// InitPID is the pid of the first user task. It is its own parent and the
// reparenting target for orphans. PID 0 stays reserved as the "no task"
// sentinel and is never allocated.
const InitPID uint32 = 1

// Task is one slot of the task table.
type Task struct {
	// Context is the saved register file; the scheduler swaps it in and
	// out of the trap frame on every tick.
	Context irq.Regs

	PID       uint32
	ParentPID uint32

	// Valid is false in empty slots.
	Valid bool
}

var (
	tasks [MaxTasks]Task

	// current always points at a valid record once the scheduler has
	// started; before that it points at slot 0.
	current = &tasks[0]

	taskCount int

	// nextPID hands out strictly increasing pids starting at init's;
	// pids are never reused within a session.
	nextPID = InitPID

	// isPrivilegedFn is overridden by tests which run without a
	// privileged CPSR mode.
	isPrivilegedFn = cpu.IsPrivileged

	// The table lock; a no-op pair in tests.
	tableLock sync.IrqLock
	lockFn    = tableLock.Acquire
	unlockFn  = tableLock.Release
)

var (
	// ErrPermissionDenied is reported for task table mutations attempted
	// from user mode.
	ErrPermissionDenied = &kernel.Error{Module: "task", Message: "privileged mode required", Code: kernel.EPermission}

	// ErrTooManyTasks is reported when the task table is full.
	ErrTooManyTasks = &kernel.Error{Module: "task", Message: "task table is full", Code: kernel.ETooManyTasks}

	// ErrNoSuchTask is reported when no valid record carries the
	// requested pid.
	ErrNoSuchTask = &kernel.Error{Module: "task", Message: "no task with that pid"}

	// ErrKillSelf is reported when a task tries to kill itself; exit is
	// the supported way out.
	ErrKillSelf = &kernel.Error{Module: "task", Message: "kill refuses the current task, use exit"}
)

// taskExitTrampoline runs in user mode when a task entry function returns
// and issues the exit syscall so teardown goes through the normal privilege
// transition. Defined in task_arm.s.
func taskExitTrampoline()

// FuncAddr returns the entry address of fn, suitable as an AddTask
// entrypoint.
func FuncAddr(fn func()) uint32 {
	return uint32(**(**uintptr)(unsafe.Pointer(&fn)))
}

// CurrentPID returns the pid of the running task.
func CurrentPID() uint32 {
	return current.PID
}

// CurrentParentPID returns the parent pid of the running task.
func CurrentParentPID() uint32 {
	return current.ParentPID
}

// AddTask allocates a task record that will run entrypoint in user mode and
// enqueues it. Only privileged code may call it; user tasks go through the
// create_process syscall. Returns the new task's pid.
func AddTask(entrypoint uint32) (uint32, *kernel.Error) {
	if !isPrivilegedFn() {
		return 0, ErrPermissionDenied
	}
	if taskCount >= MaxTasks {
		return 0, ErrTooManyTasks
	}

	lockFn()
	defer unlockFn()

	slot := freeSlot()
	t := &tasks[slot]
	initTask(t, entrypoint, hal.TaskStackBase-hal.StackSize*uint32(slot))
	ringInsert(t)
	taskCount++

	return t.PID, nil
}

// initTask fills in a fresh task record. The context starts with only the
// registers user-mode entry needs: the slot's stack, the exit trampoline as
// return address and the entrypoint itself.
func initTask(t *Task, entrypoint, stackBase uint32) {
	t.Context = irq.Regs{
		// all tasks share the boot goroutine descriptor; the stack
		// regions are sized so the compiler's split checks stay quiet
		R10: cpu.ReadG(),

		SP:   stackBase,
		LR:   FuncAddr(taskExitTrampoline),
		PC:   entrypoint,
		SPSR: cpu.UsrMode,
	}

	t.PID = nextPID
	nextPID++

	if t.PID == InitPID {
		// init is its own parent
		t.ParentPID = InitPID
	} else {
		t.ParentPID = current.PID
	}

	t.Valid = true
}

// ExitCurrentTask tears down the running task, reparents its children to
// init and hands the CPU to the next ready task. It never returns.
func ExitCurrentTask() {
	diedPID := current.PID
	kfmt.Printf("task: pid %i exiting\n", diedPID)

	clearTask(current)
	reparentTasks(diedPID)
	taskCount--

	scheduleAfterExit()
}

// KillProcess removes the valid record carrying the target pid, reparents
// its children to init and rebuilds the ready queue without it. The current
// task cannot kill itself.
func KillProcess(target uint32) *kernel.Error {
	if target == current.PID {
		return ErrKillSelf
	}

	t := findTask(target)
	if t == nil {
		return ErrNoSuchTask
	}

	clearTask(t)
	taskCount--
	reparentTasks(target)
	rebuildRing()

	return nil
}

// IsDescendentOf reports whether pred appears on child's parent chain. A
// pid counts as its own descendent. Walks terminate at init, at the
// reserved pid 0 and at pids that are no longer in the table.
func IsDescendentOf(child, pred uint32) bool {
	if child == pred {
		return true
	}

	parent, ok := parentOf(child)
	if !ok {
		return false
	}

	for parent != InitPID && parent != pred && parent != 0 {
		if parent, ok = parentOf(parent); !ok {
			return false
		}
	}

	return parent == pred
}

// HasRights reports whether caller may kill target: a task may kill itself
// or any of its descendents.
func HasRights(caller, target uint32) bool {
	return IsDescendentOf(target, caller)
}

// DumpTasks writes the task table and ready queue state to w.
func DumpTasks(w io.Writer) {
	kfmt.Fprintf(w, "current pid %i (parent %i), %i tasks\n", current.PID, current.ParentPID, taskCount)
	for i := range tasks {
		if !tasks[i].Valid {
			continue
		}
		kfmt.Fprintf(w, "  slot %i: pid %i parent %i pc %x sp %x\n",
			i, tasks[i].PID, tasks[i].ParentPID, tasks[i].Context.PC, tasks[i].Context.SP)
	}
	dumpRing(w)
}

// clearTask zeroes a record, marking its slot empty. The pid is not
// recycled.
func clearTask(t *Task) {
	*t = Task{}
}

// reparentTasks makes init adopt every task whose parent died.
func reparentTasks(diedPID uint32) {
	for i := range tasks {
		if tasks[i].Valid && tasks[i].ParentPID == diedPID {
			tasks[i].ParentPID = InitPID
		}
	}
}

// freeSlot returns the first empty table slot. The caller already checked
// that taskCount leaves one.
func freeSlot() int {
	for i := range tasks {
		if !tasks[i].Valid {
			return i
		}
	}
	return -1
}

// findTask returns the valid record carrying pid, or nil.
func findTask(pid uint32) *Task {
	for i := range tasks {
		if tasks[i].Valid && tasks[i].PID == pid {
			return &tasks[i]
		}
	}
	return nil
}

// parentOf returns the parent pid of the valid record carrying pid.
func parentOf(pid uint32) (uint32, bool) {
	t := findTask(pid)
	if t == nil {
		return 0, false
	}
	return t.ParentPID, true
}
