//go:build !ev3
// +build !ev3

package hal

import "ninjastorms/kernel/reg"

// Board: QEMU VersatilePB (ARM926EJ-S, PL190 VIC, SP804 dual timer, PL011
// UART). Register layout per ARM DUI 0225D.
const (
	// BoardName identifies the compiled-in board in boot output.
	BoardName = "versatilepb"

	// IVTBase is where the exception vector table is written. The
	// VersatilePB keeps the architectural default of low vectors.
	IVTBase uint32 = 0x00000000

	// HighVectors selects the 0xFFFF0000 vector base via CP15 c1.
	HighVectors = false

	// DataEnd is the top of the identity-mapped kernel region. The linker
	// script keeps every kernel section, the mode stacks and the task
	// stacks below this address.
	DataEnd uint32 = 0x00800000

	// Per-mode stack bases. Stacks grow down.
	IRQStack      uint32 = 0x007f0000
	AbtStack      uint32 = 0x007e0000
	TaskStackBase uint32 = 0x00700000
	StackSize     uint32 = 0x00010000

	// TimerLoadValue is the tick period in timer cycles.
	TimerLoadValue uint32 = 0x2000
)

// PL190 vectored interrupt controller.
const (
	vicBase      uint32 = 0x10140000
	vicIntEnable        = vicBase + 0x10

	timerIRQBit = 4 // timer 0/1 pair
	swIRQBit    = 1 // software interrupt line
)

// SP804 timer 0.
const (
	timerBase    uint32 = 0x101e2000
	timerLoad           = timerBase + 0x00
	timerControl        = timerBase + 0x08
	timerIntClr         = timerBase + 0x0c

	timerCtlEnable   = 7
	timerCtlPeriodic = 6
	timerCtlIntEn    = 5
	timerCtl32Bit    = 1
)

// PL011 UART 0.
const (
	uartBase uint32 = 0x101f1000
	uartDR          = uartBase + 0x00
	uartFR          = uartBase + 0x18

	uartFRTxFull = 5
)

// InterruptControllerInit unmasks the timer and software interrupt sources
// at the VIC.
func InterruptControllerInit() {
	reg.Set(vicIntEnable, timerIRQBit)
	reg.Set(vicIntEnable, swIRQBit)
}

// TimerStart programs the tick period and starts the timer in periodic
// 32-bit mode with its interrupt enabled.
func TimerStart(load uint32) {
	reg.Write(timerLoad, load)
	reg.Set(timerControl, timerCtl32Bit)
	reg.Set(timerControl, timerCtlPeriodic)
	reg.Set(timerControl, timerCtlIntEn)
	reg.Set(timerControl, timerCtlEnable)
}

// TimerStop disables the timer.
func TimerStop() {
	reg.Clear(timerControl, timerCtlEnable)
}

// TimerAck clears the pending timer interrupt at the peripheral.
func TimerAck() {
	reg.Write(timerIntClr, 1)
}

func putChar(c byte) {
	for reg.Get(uartFR, uartFRTxFull, 1) == 1 {
		// transmit FIFO full
	}
	reg.Write(uartDR, uint32(c))
}
