// Package bitspan reads and writes unsigned integers of arbitrary bit width
// at arbitrary bit offsets within a byte buffer.
//
// # Bit Order
//
// The offset space is little-endian at both levels: byte k holds bits
// [8k, 8k+8) and bit 0 of a byte is its least significant bit. A value
// occupying [offset, offset+width) stores its bit 0 at offset, so successive
// bytes hold successively higher-order chunks of the value:
//
//	offset 3, width 12, value 0xABC
//
//	byte 0: 0b11100xxx   bits 0..4 of the value in bits 3..7
//	byte 1: 0bx1010101   bits 5..11 of the value in bits 0..6
//
// Neighbouring spans may share a byte; Set only touches the bits of its own
// span.
//
// # Contract
//
// Widths are 1..64 and the span must lie inside the buffer. Violations are
// programming errors and panic; there is no error return.
package bitspan
