package syscall

import (
	"unsafe"

	"ninjastorms/kernel"
	"ninjastorms/kernel/cpu"
	"ninjastorms/kernel/irq"
	"ninjastorms/kernel/kfmt"
	"ninjastorms/kernel/task"
)

// failure is the -1 every failing syscall returns in r0.
const failure = ^uint32(0)

var (
	errInvalidSyscall = &kernel.Error{Module: "syscall", Message: "unknown syscall number", Code: kernel.EInvalidSyscall}

	// Task layer touch points, overridden by tests.
	addTaskFn          = task.AddTask
	exitTaskFn         = task.ExitCurrentTask
	killTaskFn         = task.KillProcess
	currentPIDFn       = task.CurrentPID
	currentParentPIDFn = task.CurrentParentPID
	isDescendentFn     = task.IsDescendentOf
	hasRightsFn        = task.HasRights
	dumpTasksFn        = task.DumpTasks
	haltFn             = cpu.Halt
)

// Dispatch is the SWI trap handler: it decodes the number and argument
// pointer the gateway placed in r0/r1 and stores the handler result back
// into the frame's r0 slot. Registered with irq.HandleSyscall during kernel
// init.
func Dispatch(frame *irq.Regs) {
	frame.R0 = dispatch(frame.R0, uintptr(frame.R1))
}

func dispatch(number uint32, data uintptr) uint32 {
	switch number {
	case numZero:
		return zeroDispatch()
	case numCreateProcess:
		return createProcessDispatch(data)
	case numExit:
		exitTaskFn()
		return 0
	case numGetPID:
		return currentPIDFn()
	case numGetParentPID:
		return currentParentPIDFn()
	case numKill:
		return killDispatch(data)
	case numIsPredecessor:
		return isPredecessorDispatch(data)
	case numTasksInfo:
		return tasksInfoDispatch()
	case numShutdown:
		return shutdownDispatch()
	default:
		kernel.Errno = errInvalidSyscall.Code
		return failure
	}
}

func zeroDispatch() uint32 {
	kfmt.Printf("syscall: zero is not a real syscall\n")
	return 0
}

func createProcessDispatch(data uintptr) uint32 {
	spec := (*createProcessSpec)(unsafe.Pointer(data))

	pid, err := addTaskFn(spec.function)
	if err != nil {
		kernel.Errno = err.Code
		return failure
	}

	return pid
}

func killDispatch(data uintptr) uint32 {
	spec := (*killSpec)(unsafe.Pointer(data))

	if spec.pid == currentPIDFn() {
		kfmt.Printf("syscall: kill refuses the calling task, use exit\n")
		return failure
	}
	if !hasRightsFn(currentPIDFn(), spec.pid) {
		kernel.Errno = kernel.EPermission
		return failure
	}

	if err := killTaskFn(spec.pid); err != nil {
		if err.Code != kernel.EOK {
			kernel.Errno = err.Code
		}
		return failure
	}

	return 0
}

func isPredecessorDispatch(data uintptr) uint32 {
	spec := (*isPredecessorSpec)(unsafe.Pointer(data))

	if isDescendentFn(spec.child, spec.pred) {
		return 1
	}
	return 0
}

func tasksInfoDispatch() uint32 {
	dumpTasksFn(kfmt.GetOutputSink())
	return 0
}

func shutdownDispatch() uint32 {
	kfmt.Printf("syscall: shutting down\n")
	haltFn()
	return 0
}
