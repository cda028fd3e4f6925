package cpu

import "github.com/usbarmory/tamago/bits"

// CPSR mode field values.
// Table A2-1 ARM Architecture Reference Manual (ARM DDI 0100I)
const (
	UsrMode uint32 = 0x10
	FiqMode uint32 = 0x11
	IrqMode uint32 = 0x12
	SvcMode uint32 = 0x13
	AbtMode uint32 = 0x17
	UndMode uint32 = 0x1b
	SysMode uint32 = 0x1f

	// ModeMask selects the mode field of the CPSR.
	ModeMask uint32 = 0x1f
)

// Domain access control values (two bits per domain in c3).
const (
	DomainNoAccess uint32 = 0b00
	DomainClient   uint32 = 0b01
	DomainManager  uint32 = 0b11
)

// ReadCPSR returns the current program status register.
func ReadCPSR() uint32

// EnableInterrupts clears the I-bit of the CPSR, allowing IRQ delivery.
func EnableInterrupts()

// DisableInterrupts sets the I-bit of the CPSR, masking IRQ delivery.
func DisableInterrupts()

// Halt masks interrupts and parks the core in a low-power wait loop. Calls
// to Halt never return.
func Halt()

// SetModeStack switches to the banked mode selected by the mode field,
// points that mode's stack pointer at stackBase and returns to SVC mode.
func SetModeStack(mode uint32, stackBase uint32)

// SetTTBR writes the translation table base register (CP15 c2) with the
// 16 KiB aligned address of the level-1 translation table.
func SetTTBR(tableAddr uint32)

// SetDACR writes the domain access control register (CP15 c3).
func SetDACR(value uint32)

// EnableMMU sets the M bit of the system control register (CP15 c1 bit 0).
// The following instructions are fetched through the new translation regime,
// which is safe because the kernel region is identity mapped.
func EnableMMU()

// EnableHighVectors sets the V bit of the system control register (CP15 c1
// bit 13) so the exception vector table is read from 0xFFFF0000.
func EnableHighVectors()

// ReadFSR returns the data fault status register (CP15 c5).
func ReadFSR() uint32

// ReadFAR returns the fault address register (CP15 c6).
func ReadFAR() uint32

// ReadG returns the value of the goroutine pointer register (r10). New
// tasks inherit it so compiler-inserted checks keep working across the
// privilege transition.
func ReadG() uint32

// IsPrivileged returns true when the CPU executes in any mode other than
// user mode.
func IsPrivileged() bool {
	return ReadCPSR()&ModeMask != UsrMode
}

// DACRValue builds a c3 value granting MANAGER access to the given domain
// and NO_ACCESS to all others.
func DACRValue(domain int) uint32 {
	var v uint32
	bits.SetN(&v, domain*2, 0b11, DomainManager)
	return v
}
