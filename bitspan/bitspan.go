package bitspan

import "fmt"

// MaxWidth is the widest span a single accumulator can carry.
const MaxWidth = 64

// Get returns the width-bit value stored at offset. Bits above width are zero.
func Get(buf []byte, offset, width uint32) uint64 {
	check(buf, offset, width)

	var out uint64
	for done := uint32(0); done < width; {
		bit := offset + done
		pos := bit & 7
		n := chunk(pos, width-done)

		slice := (uint64(buf[bit>>3]) >> pos) & lowMask(n)
		out |= slice << done

		done += n
	}
	return out
}

// Set stores the low width bits of value at offset, leaving every bit
// outside [offset, offset+width) untouched.
func Set(buf []byte, offset, width uint32, value uint64) {
	check(buf, offset, width)

	for done := uint32(0); done < width; {
		bit := offset + done
		pos := bit & 7
		n := chunk(pos, width-done)

		window := byte(lowMask(n) << pos)
		slice := byte(((value >> done) & lowMask(n)) << pos)
		buf[bit>>3] = buf[bit>>3]&^window | slice

		done += n
	}
}

// Mask returns a value with the low width bits set. Mask(64) is all ones.
func Mask(width uint32) uint64 {
	if width == 0 {
		return 0
	}
	if width >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<width - 1
}

// Fits reports whether value is representable in width bits.
func Fits(value uint64, width uint32) bool {
	return value&^Mask(width) == 0
}

// ByteSize returns the number of bytes needed to hold bits.
func ByteSize(bits uint32) uint32 {
	return (bits + 7) / 8
}

// chunk is the number of bits of the current byte a span starting at bit
// pos of that byte covers, given remaining bits still to move.
func chunk(pos, remaining uint32) uint32 {
	n := 8 - pos
	if n > remaining {
		n = remaining
	}
	return n
}

// lowMask is computed in 64-bit arithmetic so n == 8 yields 0xFF rather
// than the zero a byte-wide 0xFF<<8 would give.
func lowMask(n uint32) uint64 {
	return uint64(1)<<n - 1
}

func check(buf []byte, offset, width uint32) {
	if width == 0 || width > MaxWidth {
		panic(fmt.Sprintf("bitspan: width %d outside 1..%d", width, MaxWidth))
	}
	if end := uint64(offset) + uint64(width); end > uint64(len(buf))*8 {
		panic(fmt.Sprintf("bitspan: span [%d,%d) exceeds %d-bit buffer", offset, end, len(buf)*8))
	}
}
