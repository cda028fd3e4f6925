package kfmt

import "io"

// maxBufSize defines the buffer size for formatting numbers.
const maxBufSize = 16

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	nullValue       = []byte("(null)")

	numFmtBuf = []byte("0123456789012345")

	// singleByte is used as a shared buffer for passing single characters
	// to doWrite.
	singleByte = []byte(" ")

	// earlyBootLog captures Printf output produced before the UART
	// console is initialized.
	earlyBootLog bootLog

	// outputSink is an io.Writer where Printf will send its output. If
	// set to nil, then the output will be redirected to the
	// earlyBootLog.
	outputSink io.Writer
)

// SetOutputSink sets the default target for calls to Printf to w and flushes
// the early boot transcript to it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		earlyBootLog.flushTo(w)
	}
}

// GetOutputSink returns the default target for calls to Printf.
func GetOutputSink() io.Writer {
	if outputSink == nil {
		return &earlyBootLog
	}
	return outputSink
}

// Printf provides a minimal Printf implementation that can be safely used
// in trap handlers. This implementation does not allocate any memory.
//
// The supported placeholder set is the kernel console contract:
//
//	%%  a literal percent sign
//	%c  a single character
//	%s  the uninterpreted bytes of a string or byte slice
//	%i  signed decimal
//	%x  unsigned hexadecimal, lower-case
//	%X  unsigned hexadecimal, upper-case
//	%b  8-bit binary
//	%q  32-bit binary with a space every 8 bits
//	%p  32-bit hexadecimal grouped in pairs
//
// Printf supports all built-in integer types but performs no reflection;
// arguments that do not match the verb print a wrong-type marker instead.
//
// The output of Printf is written to the sink installed by SetOutputSink.
// If no sink is installed yet, the output is captured in the early boot log
// and flushed once a sink is attached.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves exactly like Printf but it writes the formatted output to
// the specified io.Writer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var nextArgIndex int

	for i := 0; i < len(format); i++ {
		ch := format[i]
		if ch != '%' {
			writeByte(w, ch)
			continue
		}

		i++
		if i >= len(format) {
			doWrite(w, errNoVerb)
			break
		}

		verb := format[i]
		if verb == '%' {
			writeByte(w, '%')
			continue
		}

		if nextArgIndex >= len(args) {
			doWrite(w, errMissingArg)
			continue
		}
		arg := args[nextArgIndex]
		nextArgIndex++

		switch verb {
		case 'c':
			fmtChar(w, arg)
		case 's':
			fmtString(w, arg)
		case 'i':
			fmtDecimal(w, arg)
		case 'x':
			fmtHex(w, arg, 'a')
		case 'X':
			fmtHex(w, arg, 'A')
		case 'b':
			fmtBinary8(w, arg)
		case 'q':
			fmtBinary32(w, arg)
		case 'p':
			fmtHexPairs(w, arg)
		default:
			doWrite(w, errNoVerb)
		}
	}

	// Check for unused args
	for ; nextArgIndex < len(args); nextArgIndex++ {
		doWrite(w, errExtraArg)
	}
}

// fmtChar prints a single character value.
func fmtChar(w io.Writer, v interface{}) {
	switch cv := v.(type) {
	case byte:
		writeByte(w, cv)
	case rune:
		writeByte(w, byte(cv))
	default:
		doWrite(w, errWrongArgType)
	}
}

// fmtString prints the uninterpreted bytes of a string or byte slice.
func fmtString(w io.Writer, v interface{}) {
	switch cv := v.(type) {
	case string:
		// converting the string to a byte slice triggers a memory
		// allocation so we need to do this one byte at a time.
		for i := 0; i < len(cv); i++ {
			writeByte(w, cv[i])
		}
	case []byte:
		doWrite(w, cv)
	case nil:
		doWrite(w, nullValue)
	default:
		doWrite(w, errWrongArgType)
	}
}

// fmtDecimal prints a signed decimal version of v using the minimal number
// of digits.
func fmtDecimal(w io.Writer, v interface{}) {
	sval, ok := toInt64(v)
	if !ok {
		doWrite(w, errWrongArgType)
		return
	}

	if sval < 0 {
		writeByte(w, '-')
		sval = -sval
	}

	end := 0
	for {
		numFmtBuf[end] = byte('0' + sval%10)
		end++
		sval /= 10
		if sval == 0 {
			break
		}
	}

	for end--; end >= 0; end-- {
		writeByte(w, numFmtBuf[end])
	}
}

// fmtHex prints an unsigned hexadecimal version of v using the minimal
// number of digits. The letterBase argument selects lower or upper case
// digits beyond 9.
func fmtHex(w io.Writer, v interface{}, letterBase byte) {
	uval, ok := toUint32(v)
	if !ok {
		doWrite(w, errWrongArgType)
		return
	}

	end := 0
	for {
		digit := byte(uval & 0xf)
		if digit > 9 {
			numFmtBuf[end] = letterBase + digit - 10
		} else {
			numFmtBuf[end] = '0' + digit
		}
		end++
		uval >>= 4
		if uval == 0 {
			break
		}
	}

	for end--; end >= 0; end-- {
		writeByte(w, numFmtBuf[end])
	}
}

// fmtBinary8 prints the low 8 bits of v as a fixed-width binary number.
func fmtBinary8(w io.Writer, v interface{}) {
	uval, ok := toUint32(v)
	if !ok {
		doWrite(w, errWrongArgType)
		return
	}

	for i := 7; i >= 0; i-- {
		writeByte(w, '0'+byte((uval>>i)&1))
	}
}

// fmtBinary32 prints v as a 32-digit binary number with a space between
// bytes.
func fmtBinary32(w io.Writer, v interface{}) {
	uval, ok := toUint32(v)
	if !ok {
		doWrite(w, errWrongArgType)
		return
	}

	for i := 31; i >= 0; i-- {
		writeByte(w, '0'+byte((uval>>i)&1))
		if i%8 == 0 && i > 0 {
			writeByte(w, ' ')
		}
	}
}

// fmtHexPairs prints v as 8 hexadecimal digits with a space between byte
// pairs.
func fmtHexPairs(w io.Writer, v interface{}) {
	uval, ok := toUint32(v)
	if !ok {
		doWrite(w, errWrongArgType)
		return
	}

	for i := 0; i < 8; i++ {
		digit := byte((uval >> (4 * (7 - i))) & 0xf)
		if digit > 9 {
			writeByte(w, 'a'+digit-10)
		} else {
			writeByte(w, '0'+digit)
		}
		if i%2 == 1 && i < 7 {
			writeByte(w, ' ')
		}
	}
}

// toInt64 converts any built-in integer value to an int64.
func toInt64(v interface{}) (int64, bool) {
	switch cv := v.(type) {
	case int:
		return int64(cv), true
	case int8:
		return int64(cv), true
	case int16:
		return int64(cv), true
	case int32:
		return int64(cv), true
	case int64:
		return cv, true
	case uint8:
		return int64(cv), true
	case uint16:
		return int64(cv), true
	case uint32:
		return int64(cv), true
	case uint:
		return int64(cv), true
	case uintptr:
		return int64(cv), true
	default:
		return 0, false
	}
}

// toUint32 converts any built-in integer value to its 32-bit unsigned
// representation.
func toUint32(v interface{}) (uint32, bool) {
	switch cv := v.(type) {
	case int:
		return uint32(cv), true
	case int8:
		return uint32(uint8(cv)), true
	case int16:
		return uint32(uint16(cv)), true
	case int32:
		return uint32(cv), true
	case uint8:
		return uint32(cv), true
	case uint16:
		return uint32(cv), true
	case uint32:
		return cv, true
	case uint:
		return uint32(cv), true
	case uintptr:
		return uint32(cv), true
	default:
		return 0, false
	}
}

// writeByte forwards a single byte to doWrite without allocating.
func writeByte(w io.Writer, b byte) {
	singleByte[0] = b
	doWrite(w, singleByte)
}

// doWrite sends b to the supplied writer, falling back to the early boot
// log when no writer is available yet.
func doWrite(w io.Writer, b []byte) {
	if w == nil {
		earlyBootLog.Write(b)
		return
	}
	w.Write(b)
}
