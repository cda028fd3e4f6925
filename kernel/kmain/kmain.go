// Package kmain glues the kernel subsystems together: console, trap
// handlers, memory management, the init task and finally the scheduler.
package kmain

import (
	"ninjastorms/kernel"
	"ninjastorms/kernel/hal"
	"ninjastorms/kernel/irq"
	"ninjastorms/kernel/kfmt"
	"ninjastorms/kernel/mem/vmm"
	"ninjastorms/kernel/syscall"
	"ninjastorms/kernel/task"
)

var errInitFailed = &kernel.Error{Module: "kmain", Message: "scheduler returned without tasks"}

// Kmain is the kernel entrypoint invoked by the rt0 trampoline once the CPU
// runs in SVC mode on the boot stack. It is not expected to return.
func Kmain() {
	kfmt.SetOutputSink(hal.Console())
	kfmt.Printf("This is ninjastorms OS (%s)\n", hal.BoardName)
	kfmt.Printf("  shuriken ready\n")

	irq.HandleSyscall(syscall.Dispatch)
	irq.HandleDataAbort(vmm.HandleDataAbort)
	kernel.RegisterDiagnostic(task.DumpTasks)

	if _, err := task.AddTask(task.FuncAddr(userInit)); err != nil {
		kernel.Panic(err)
	}

	vmm.Init()
	task.Start()

	// Start only returns when the ready queue was empty
	kernel.Panic(errInitFailed)
}
