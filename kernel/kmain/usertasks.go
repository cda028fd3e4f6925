package kmain

import (
	"ninjastorms/kernel/kfmt"
	"ninjastorms/kernel/syscall"
)

// The built-in user program set: a small demo load that exercises process
// creation, exit by falling off the entry function, kill and shutdown. All
// of it runs in user mode and talks to the kernel through syscalls only;
// console output works because the UART pages get lazily mapped on first
// touch.

// spinSink keeps the busy-wait loops from being reduced to nothing.
var spinSink int

func idle(rounds int) {
	for i := 0; i < rounds; i++ {
		spinSink = i
	}
}

func userInit() {
	kfmt.Printf("init: running with pid %i\n", syscall.GetPID())

	ePID := syscall.CreateProcess(taskE)
	syscall.CreateProcess(taskB)
	syscall.CreateProcess(taskD)
	syscall.TasksInfo()

	idle(150000000)

	syscall.Kill(uint32(ePID))
	syscall.TasksInfo()

	for {
		// init runs forever
		idle(1 << 30)
	}
}

func taskA() {
	kfmt.Printf("a: my pid is %i\n", syscall.GetPID())

	for n := 0; ; n++ {
		kfmt.Printf("  task a: %i\n", n)
		idle(10000000)
		if n == 7 {
			syscall.TasksInfo()
		}
	}
}

func taskB() {
	kfmt.Printf("b: my pid is %i\n", syscall.GetPID())

	for n := 0; ; n++ {
		kfmt.Printf("  task b: %i\n", n)
		idle(10000000)
		if n > 7 {
			// returning lands in the exit trampoline
			return
		}
	}
}

func taskC() {
	myPID := syscall.GetPID()
	kfmt.Printf("c: my pid is %i, my parent is pid %i\n", myPID, syscall.GetParentPID())
	for pred := uint32(0); pred <= 6; pred++ {
		kfmt.Printf("c: is %i a predecessor of c? %i\n", pred, syscall.IsPredecessor(myPID, pred))
	}

	for n := 0; ; n++ {
		kfmt.Printf("  task c: %i\n", n)
		if n > 3 {
			syscall.Exit()
		}
		idle(10000000)
	}
}

func taskD() {
	kfmt.Printf("d: my pid is %i\n", syscall.GetPID())
	syscall.CreateProcess(taskC)

	for n := 0; ; n++ {
		kfmt.Printf("  task d: %i\n", n)
		idle(10000000)
		if n > 25 {
			// that's enough for everyone
			syscall.TasksInfo()
			syscall.Shutdown()
		}
	}
}

func taskE() {
	kfmt.Printf("e: my pid is %i\n", syscall.GetPID())

	for n := 0; ; n++ {
		kfmt.Printf("  task e: %i\n", n)
		idle(10000000)
		if n == 10 {
			syscall.CreateProcess(taskA)
		}
	}
}
