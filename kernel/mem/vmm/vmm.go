// Package vmm owns the kernel translation table: it builds the boot-time
// identity mapping, materialises coarse tables on demand and services the
// translation faults raised for pages that were never mapped.
package vmm

import (
	"unsafe"

	"ninjastorms/kernel"
	"ninjastorms/kernel/cpu"
	"ninjastorms/kernel/hal"
	"ninjastorms/kernel/kfmt"
	"ninjastorms/kernel/mem"
)

// faultTestPage is deliberately left unmapped by Init so the data-abort path
// has a page to prove itself on.
const faultTestPage = mem.Page(0b1010_1010_1010_1010_1010)

var (
	// ErrPoolExhausted is reported when no coarse tables are left in the
	// pool. The kernel cannot recover from it.
	ErrPoolExhausted = &kernel.Error{Module: "vmm", Message: "coarse table pool exhausted", Code: kernel.EPoolExhausted}

	// ErrAlreadyMapped is reported when a level-2 slot already maps a
	// frame other than the identity one.
	ErrAlreadyMapped = &kernel.Error{Module: "vmm", Message: "page entry already maps a different frame", Code: kernel.EAlreadyMapped}
)

var (
	// The CP15 accessors fault outside a privileged ARM context; tests
	// override them.
	setTTBRFn   = cpu.SetTTBR
	setDACRFn   = cpu.SetDACR
	enableMMUFn = cpu.EnableMMU

	// dataEnd is the top of the identity mapped kernel region.
	dataEnd = hal.DataEnd

	// tableBaseFn returns the physical address of a coarse table. With
	// the kernel identity mapped its virtual address is the physical
	// one; tests override this to place the pool at synthetic addresses.
	tableBaseFn = func(table *CoarseTable) uint32 {
		return uint32(uintptr(unsafe.Pointer(table)))
	}

	// tableForEntryFn resolves a level-1 entry back to the coarse table
	// it links. Tests override it to undo their synthetic addressing.
	tableForEntryFn = func(entry Lvl1Entry) *CoarseTable {
		return (*CoarseTable)(unsafe.Pointer(uintptr(entry.BaseAddress()) << 10))
	}

	// mmuEnabled guards against the MMU being turned on twice.
	mmuEnabled bool
)

// Init builds the kernel address space and turns on the MMU: it clears the
// translation table and the coarse table pool, identity-maps every page from
// 0 up to the board's DataEnd except the designated fault-test page, programs
// the TTBR and the domain access control register and finally sets the MMU
// enable bit. After Init returns, virtual addresses equal physical addresses
// for all mapped pages and touching an unmapped page raises a translation
// fault.
func Init() {
	if mmuEnabled {
		return
	}

	kfmt.Printf("vmm: kernel table at %x, coarse table pool at %x\n",
		uint32(uintptr(unsafe.Pointer(&kernelTable))),
		uint32(uintptr(unsafe.Pointer(&coarseTables))))

	kernelTable.Clear()
	for i := range coarseTables {
		coarseTables[i].Clear()
	}
	coarseTablesUsed = 0

	for page := mem.Page(0); page.Address() < dataEnd; page++ {
		if page == faultTestPage {
			// left to the data-abort path
			continue
		}
		if err := InstallPage(page.Address(), APUserRW); err != nil {
			kernel.Panic(err)
		}
	}

	setTTBRFn(uint32(uintptr(unsafe.Pointer(&kernelTable))))
	setDACRFn(cpu.DACRValue(KernelDomain))
	enableMMUFn()
	mmuEnabled = true

	kfmt.Printf("vmm: mmu enabled, identity mapping up to %x\n", dataEnd)
}

// InstallPage maps the 4 KiB page containing virtAddr back to itself with
// the supplied access permissions in all four AP fields. Installing the same
// frame twice is a no-op; a level-2 slot that already maps a different frame
// is reported as ErrAlreadyMapped. Missing coarse tables are allocated from
// the pool.
func InstallPage(virtAddr uint32, ap uint32) *kernel.Error {
	var (
		lvl1Index = virtAddr >> 20
		lvl2Index = (virtAddr >> mem.PageShift) & (CoarseTableEntries - 1)
		frame     = mem.FrameFromAddress(virtAddr)

		table *CoarseTable
		err   *kernel.Error
	)

	entry := &kernelTable.Entries[lvl1Index]
	if entry.Descriptor() == Lvl1Invalid {
		if table, err = allocCoarseTable(); err != nil {
			return err
		}

		entry.SetBaseAddress(tableBaseFn(table) >> 10)
		entry.SetDomain(KernelDomain)
		entry.SetDescriptor(Lvl1Coarse)
	} else {
		table = tableForEntryFn(*entry)
	}

	slot := &table.Entries[lvl2Index]
	if slot.Descriptor() != Lvl2Invalid {
		if slot.BaseAddress() == uint32(frame) {
			return nil
		}
		return ErrAlreadyMapped
	}

	slot.SetBaseAddress(uint32(frame))
	for n := 0; n < 4; n++ {
		slot.SetAP(n, ap)
	}
	slot.SetCacheBehavior(NonCacheableNonBufferable)
	slot.SetDescriptor(Lvl2Small)

	return nil
}
