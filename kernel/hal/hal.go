// Package hal fixes the board contract: the MMIO register layout, the
// per-mode stack bases, the timer and interrupt-controller programming and
// the UART console path. Exactly one board is compiled in, selected with the
// ev3 build tag; the QEMU VersatilePB board is the default.
package hal

import "io"

// consoleWriter adapts the board putChar routine to the io.Writer the kfmt
// output sink expects.
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			putChar('\r')
		}
		putChar(b)
	}

	return len(p), nil
}

var console consoleWriter

// Console returns the board UART as an io.Writer suitable for
// kfmt.SetOutputSink.
func Console() io.Writer {
	return console
}
