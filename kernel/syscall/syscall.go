// Package syscall implements both halves of the system call surface: the
// user-mode stubs that trap into the kernel through SVC #0 and the
// kernel-mode dispatcher that routes a trapped call to its handler.
//
// The ABI is fixed: r0 carries the syscall number, r1 a pointer to the
// call's argument block, and r0 carries the result back. The SPSR restore
// on exception return reinstates user mode.
package syscall

import (
	"unsafe"

	"ninjastorms/kernel/task"
)

// Syscall numbers.
const (
	numZero          uint32 = 0
	numCreateProcess uint32 = 1
	numExit          uint32 = 2
	numGetPID        uint32 = 3
	numGetParentPID  uint32 = 4
	numKill          uint32 = 5
	numIsPredecessor uint32 = 6
	numTasksInfo     uint32 = 42
	numShutdown      uint32 = 99
)

// Argument blocks passed by pointer in r1. The layouts are shared between
// the user stubs and the dispatcher; both sides run in the same identity
// mapped address space.
type createProcessSpec struct {
	function uint32
}

type killSpec struct {
	pid uint32
}

type isPredecessorSpec struct {
	child uint32
	pred  uint32
}

// invoke issues SVC #0 with the syscall number in r0 and the argument block
// pointer in r1. Defined in syscall_arm.s.
func invoke(number uint32, data unsafe.Pointer) uint32

// CreateProcess asks the kernel to start fn as a new user task. It returns
// the new pid, or -1 with kernel.Errno set.
func CreateProcess(fn func()) int {
	spec := createProcessSpec{function: task.FuncAddr(fn)}
	return int(int32(invoke(numCreateProcess, unsafe.Pointer(&spec))))
}

// Exit terminates the calling task. It never returns.
func Exit() {
	invoke(numExit, nil)
}

// GetPID returns the calling task's pid.
func GetPID() uint32 {
	return invoke(numGetPID, nil)
}

// GetParentPID returns the pid of the task that created the caller.
func GetParentPID() uint32 {
	return invoke(numGetParentPID, nil)
}

// Kill removes the task carrying pid. It returns 0 on success and -1 when
// the target does not exist, is the caller itself, or is no descendent of
// the caller.
func Kill(pid uint32) int {
	spec := killSpec{pid: pid}
	return int(int32(invoke(numKill, unsafe.Pointer(&spec))))
}

// IsPredecessor reports (1 or 0) whether pred appears on child's parent
// chain.
func IsPredecessor(child, pred uint32) int {
	spec := isPredecessorSpec{child: child, pred: pred}
	return int(int32(invoke(numIsPredecessor, unsafe.Pointer(&spec))))
}

// TasksInfo dumps the kernel task table to the console.
func TasksInfo() int {
	return int(int32(invoke(numTasksInfo, nil)))
}

// Shutdown halts the machine. It never returns.
func Shutdown() {
	invoke(numShutdown, nil)
}
