// Package witlayout derives packed layouts and ordinal maps from WIT type
// definitions.
//
// Enum cases are numbered densely in declaration order, the way the
// Canonical ABI numbers them:
//
//	enum color { red, green, blue }  ->  red=0 green=1 blue=2, 2 bits
//
// Flags map to one bool field per flag. Because packing is LSB-first, flag i
// lands on bit i%8 of byte i/8, which is exactly the little-endian flags
// image the Canonical ABI stores in linear memory. FlagsLayout pads the
// layout with a trailing reserved field up to the canonical flags size.
//
// Records map field by field: bool to a 1-bit bool, u8 through u64 to
// unsigned fields of natural width (narrowed through the widths argument),
// and enum typedefs to enum fields. Any other type is reported as
// unsupported.
package witlayout
