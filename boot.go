package main

import "ninjastorms/kernel/kmain"

// main is the only Go symbol that is visible (exported) from the rt0
// initialization code. This function works as a trampoline for calling the
// actual kernel entrypoint (kmain.Kmain) and is intentionally defined to
// prevent the Go compiler from optimizing away the actual kernel code as it
// is not aware of the presence of the rt0 code.
//
// The main function is invoked by the rt0 assembly code after switching the
// CPU to SVC mode and pointing the SVC stack at the region reserved by the
// linker script.
//
// main is not expected to return. If it does, the rt0 code will halt the CPU.
func main() {
	kmain.Kmain()
}
