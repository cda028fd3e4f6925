package vmm

import (
	"testing"

	"ninjastorms/kernel/irq"
	"ninjastorms/kernel/mem"
)

func TestDataAbortInstallsMissingPage(t *testing.T) {
	withFakeMMU(t)
	dataEnd = 0x00100000
	Init()

	// touch an address inside the deliberately unmapped fault-test frame
	faultAddr := faultTestPage.Address() | 0x123

	readFSRFn = func() uint32 { return fsrTranslationSection }
	readFARFn = func() uint32 { return faultAddr }
	panics := 0
	panicFn = func(interface{}) { panics++ }

	var frame irq.Regs
	HandleDataAbort(&frame)

	slot, ok := lookupEntry(faultTestPage.Address())
	if !ok {
		t.Fatal("expected the fault to install a mapping for the faulting frame")
	}
	if got := slot.BaseAddress(); got != uint32(faultTestPage) {
		t.Fatalf("expected an identity mapping to frame %x; got %x", uint32(faultTestPage), got)
	}
	for n := 0; n < 4; n++ {
		if got := slot.AP(n); got != APUserRW {
			t.Fatalf("expected AP%d to be RW/RW (%b); got %b", n, APUserRW, got)
		}
	}

	// the retried access faults no more: a second abort on the same frame
	// is absorbed by the idempotent install
	readFSRFn = func() uint32 { return fsrTranslationPage }
	HandleDataAbort(&frame)

	if panics != 0 {
		t.Fatalf("expected no fatal path; the panic hook ran %d times", panics)
	}
}

func TestDataAbortUnknownStatusIsFatal(t *testing.T) {
	withFakeMMU(t)

	readFSRFn = func() uint32 { return 0b0001 } // alignment fault
	readFARFn = func() uint32 { return 0x00001000 }

	var caught interface{}
	panicFn = func(e interface{}) { caught = e }

	HandleDataAbort(&irq.Regs{PC: 0x8000})

	if caught != errUnhandledAbort {
		t.Fatalf("expected the unhandled abort error; got %v", caught)
	}

	if _, ok := lookupEntry(0x00001000); ok {
		t.Fatal("expected no mapping to be installed for a non-translation fault")
	}
}

func TestDataAbortMapsDeviceRegionLazily(t *testing.T) {
	withFakeMMU(t)

	// an MMIO touch far above DataEnd allocates a fresh coarse table
	const deviceAddr = 0x10140010

	readFSRFn = func() uint32 { return fsrTranslationSection }
	readFARFn = func() uint32 { return deviceAddr }
	panicFn = func(interface{}) { t.Fatal("unexpected fatal path") }

	HandleDataAbort(&irq.Regs{})

	slot, ok := lookupEntry(deviceAddr)
	if !ok {
		t.Fatal("expected the device page to be mapped")
	}
	if exp := uint32(mem.PageFromAddress(deviceAddr)); slot.BaseAddress() != exp {
		t.Fatalf("expected identity frame %x; got %x", exp, slot.BaseAddress())
	}
}
