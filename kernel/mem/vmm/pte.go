package vmm

import "github.com/usbarmory/tamago/bits"

// The level-1 and level-2 descriptor words the ARM926/Cortex-A MMU reads.
// Reference: ARM DDI 0198E, chapter 3 (MMU descriptor formats).
//
// The hardware consumes these words directly, so the encodings below are
// bit-exact and use explicit shift/mask access instead of language
// bit-fields, whose layout is compiler defined.

// Lvl1Entry is one word of the level-1 translation table:
//
//	31:10  coarse table base address, right-shifted by 10
//	    9  zero
//	  8:5  domain
//	    4  constant one
//	  3:2  zero
//	  1:0  descriptor type
type Lvl1Entry uint32

// Lvl2Entry is one word of a coarse table:
//
//	31:12  frame base address
//	11:10  AP3    9:8  AP2    7:6  AP1    5:4  AP0
//	  3:2  cache/buffer behavior
//	  1:0  descriptor type
type Lvl2Entry uint32

// Level-1 descriptor type values.
const (
	Lvl1Invalid uint32 = 0b00
	Lvl1Coarse  uint32 = 0b01
	Lvl1Section uint32 = 0b10
	Lvl1Fine    uint32 = 0b11
)

// Level-2 descriptor type values.
const (
	Lvl2Invalid uint32 = 0b00
	Lvl2Large   uint32 = 0b01
	Lvl2Small   uint32 = 0b10
	Lvl2Tiny    uint32 = 0b11
)

// Access permission values, applied to each of the four AP fields of a
// small page.
const (
	APNoAccess uint32 = 0b00
	APKernelRW uint32 = 0b01
	APUserRO   uint32 = 0b10
	APUserRW   uint32 = 0b11
)

// Cache and buffer behavior values.
const (
	NonCacheableNonBufferable uint32 = 0b00
	NonCacheableBufferable    uint32 = 0b01
	CacheableWriteThrough     uint32 = 0b10
	CacheableWriteBack        uint32 = 0b11
)

// KernelDomain is the domain all kernel coarse tables are tagged with; c3
// grants it MANAGER access while every other domain stays at NO_ACCESS.
const KernelDomain = 0

// Field positions and masks.
const (
	lvl1BasePos     = 10
	lvl1BaseMask    = 0x3fffff
	lvl1DomainPos   = 5
	lvl1DomainMask  = 0xf
	lvl1ConstOnePos = 4
	lvl1TypePos     = 0
	lvl1TypeMask    = 0b11

	lvl2BasePos   = 12
	lvl2BaseMask  = 0xfffff
	lvl2APPos     = 4
	lvl2APMask    = 0b11
	lvl2CachePos  = 2
	lvl2CacheMask = 0b11
	lvl2TypePos   = 0
	lvl2TypeMask  = 0b11
)

// BaseAddress returns the linked coarse table address right-shifted by 10.
func (e Lvl1Entry) BaseAddress() uint32 {
	v := uint32(e)
	return bits.GetN(&v, lvl1BasePos, lvl1BaseMask)
}

// SetBaseAddress stores a coarse table address right-shifted by 10.
func (e *Lvl1Entry) SetBaseAddress(base uint32) {
	v := uint32(*e)
	bits.SetN(&v, lvl1BasePos, lvl1BaseMask, base)
	*e = Lvl1Entry(v)
}

// Domain returns the domain field.
func (e Lvl1Entry) Domain() uint32 {
	v := uint32(e)
	return bits.GetN(&v, lvl1DomainPos, lvl1DomainMask)
}

// SetDomain stores the domain field.
func (e *Lvl1Entry) SetDomain(domain uint32) {
	v := uint32(*e)
	bits.SetN(&v, lvl1DomainPos, lvl1DomainMask, domain)
	*e = Lvl1Entry(v)
}

// Descriptor returns the descriptor type field.
func (e Lvl1Entry) Descriptor() uint32 {
	v := uint32(e)
	return bits.GetN(&v, lvl1TypePos, lvl1TypeMask)
}

// SetDescriptor stores the descriptor type field.
func (e *Lvl1Entry) SetDescriptor(kind uint32) {
	v := uint32(*e)
	bits.SetN(&v, lvl1TypePos, lvl1TypeMask, kind)
	*e = Lvl1Entry(v)
}

// Clear resets the entry to the default pattern: all fields zero, the
// constant-one bit set and the descriptor invalid.
func (e *Lvl1Entry) Clear() {
	var v uint32
	bits.Set(&v, lvl1ConstOnePos)
	*e = Lvl1Entry(v)
}

// BaseAddress returns the mapped frame number.
func (e Lvl2Entry) BaseAddress() uint32 {
	v := uint32(e)
	return bits.GetN(&v, lvl2BasePos, lvl2BaseMask)
}

// SetBaseAddress stores the mapped frame number.
func (e *Lvl2Entry) SetBaseAddress(frame uint32) {
	v := uint32(*e)
	bits.SetN(&v, lvl2BasePos, lvl2BaseMask, frame)
	*e = Lvl2Entry(v)
}

// AP returns access permission field n (0 through 3).
func (e Lvl2Entry) AP(n int) uint32 {
	v := uint32(e)
	return bits.GetN(&v, lvl2APPos+2*n, lvl2APMask)
}

// SetAP stores access permission field n (0 through 3).
func (e *Lvl2Entry) SetAP(n int, ap uint32) {
	v := uint32(*e)
	bits.SetN(&v, lvl2APPos+2*n, lvl2APMask, ap)
	*e = Lvl2Entry(v)
}

// CacheBehavior returns the cache/buffer field.
func (e Lvl2Entry) CacheBehavior() uint32 {
	v := uint32(e)
	return bits.GetN(&v, lvl2CachePos, lvl2CacheMask)
}

// SetCacheBehavior stores the cache/buffer field.
func (e *Lvl2Entry) SetCacheBehavior(behavior uint32) {
	v := uint32(*e)
	bits.SetN(&v, lvl2CachePos, lvl2CacheMask, behavior)
	*e = Lvl2Entry(v)
}

// Descriptor returns the descriptor type field.
func (e Lvl2Entry) Descriptor() uint32 {
	v := uint32(e)
	return bits.GetN(&v, lvl2TypePos, lvl2TypeMask)
}

// SetDescriptor stores the descriptor type field.
func (e *Lvl2Entry) SetDescriptor(kind uint32) {
	v := uint32(*e)
	bits.SetN(&v, lvl2TypePos, lvl2TypeMask, kind)
	*e = Lvl2Entry(v)
}

// Clear resets the entry to all zeros, i.e. an invalid descriptor.
func (e *Lvl2Entry) Clear() {
	*e = 0
}
