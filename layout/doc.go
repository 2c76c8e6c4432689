// Package layout computes and validates the bit layout of a packed record.
//
// A Layout is built once from an ordered list of field declarations and is
// immutable afterwards; any number of records can share it. Fields are
// packed back to back in declaration order:
//
//	field i offset = sum of widths of fields 0..i-1
//	byte size      = total width / 8
//
// There is no padding and no reordering. The total width must be a multiple
// of 8; a layout that is not byte-aligned is rejected by Build rather than
// discovered on access.
//
// # Usage
//
//	l, err := layout.Build("header",
//		layout.Uint("version", 3),
//		layout.Bool("urgent"),
//		layout.Enum("mode", modes).Expecting(2),
//		layout.Uint("length", 10),
//	)
//
// Build reports every problem it finds in a single error; use
// multierr.Errors to iterate them.
package layout
