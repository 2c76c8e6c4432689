// Package ordinal maps a closed set of named enum variants to the small
// unsigned ordinals stored in a packed bit-field, and back.
//
// A Map is built once and is immutable. Two construction policies exist:
//
//   - Build (PolicyExplicit): every variant carries its own ordinal. The
//     field width is BitsRequired(len(variants)) and every ordinal must fit
//     in it. The variant count need not be a power of two.
//   - Auto (PolicyAuto): ordinals are assigned 0..N-1 in declaration order
//     and N must be a power of two, so every bit pattern names a variant.
//
// Decoding a bit pattern no variant owns returns an UnknownOrdinal error; it
// never panics and never substitutes a default.
package ordinal
