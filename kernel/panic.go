package kernel

import (
	"io"

	"ninjastorms/kernel/cpu"
	"ninjastorms/kernel/kfmt"
)

var (
	// haltFn is mocked by tests exercising the fatal path.
	haltFn = cpu.Halt

	// diagnostics holds the post-mortem dump routines registered by the
	// subsystems. A fixed array keeps the fatal path allocation free.
	diagnostics     [4]func(io.Writer)
	diagnosticCount int

	errUnknownCause = &Error{Module: "kernel", Message: "unknown cause"}
)

// RegisterDiagnostic adds a dump routine that Panic runs before halting.
// Subsystems register their state dumpers (the task table, the ready queue)
// so a dying kernel leaves a usable post-mortem on the console. Registrations
// beyond the fixed capacity are dropped.
func RegisterDiagnostic(fn func(io.Writer)) {
	if diagnosticCount == len(diagnostics) {
		return
	}

	diagnostics[diagnosticCount] = fn
	diagnosticCount++
}

// Panic reports an unrecoverable kernel error: it prints the cause and the
// pending errno, runs the registered post-mortem dumps and halts the CPU.
// Calls to Panic never return.
func Panic(e interface{}) {
	err := errUnknownCause
	switch t := e.(type) {
	case *Error:
		err = t
	case string:
		errUnknownCause.Message = t
	case error:
		errUnknownCause.Message = t.Error()
	}

	kfmt.Printf("\nninjastorms: unrecoverable error in %s: %s\n", err.Module, err.Message)
	if Errno != EOK {
		kfmt.Printf("ninjastorms: pending errno %i\n", uint32(Errno))
	}

	w := kfmt.GetOutputSink()
	for i := 0; i < diagnosticCount; i++ {
		diagnostics[i](w)
	}

	kfmt.Printf("ninjastorms: system halted\n")
	haltFn()
}
