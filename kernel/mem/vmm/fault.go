package vmm

import (
	"ninjastorms/kernel"
	"ninjastorms/kernel/cpu"
	"ninjastorms/kernel/irq"
	"ninjastorms/kernel/kfmt"
)

// Fault status codes of interest (FSR bits 3:0).
// Table 3-10 ARM DDI 0198E.
const (
	fsrTranslationSection uint32 = 0b0101
	fsrTranslationPage    uint32 = 0b0111
)

var (
	// readFSRFn and readFARFn are overridden by tests which cannot read
	// CP15.
	readFSRFn = cpu.ReadFSR
	readFARFn = cpu.ReadFAR

	// panicFn is mocked by tests exercising the fatal paths.
	panicFn = kernel.Panic

	errUnhandledAbort = &kernel.Error{Module: "vmm", Message: "unhandled data abort"}
)

// HandleDataAbort services a data abort: for plain translation faults the
// touched page was simply never mapped, so an identity RW/RW small page is
// installed and the faulting instruction restarts. Any other fault status is
// fatal. Registered with irq.HandleDataAbort during kernel init.
func HandleDataAbort(frame *irq.Regs) {
	status := readFSRFn() & 0xf
	faultAddr := readFARFn()

	switch status {
	case fsrTranslationPage, fsrTranslationSection:
		if err := InstallPage(faultAddr, APUserRW); err != nil {
			kfmt.Printf("vmm: cannot map %x on fault at pc %x: %s\n", faultAddr, frame.PC, err.Message)
			panicFn(err)
		}
	default:
		kfmt.Printf("vmm: data abort at %x, status %b, pc %x\n", faultAddr, status, frame.PC)
		panicFn(errUnhandledAbort)
	}
}
