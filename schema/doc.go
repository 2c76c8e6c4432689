// Package schema loads layouts and enum maps from declarative YAML or JSONC
// files.
//
// A schema declares enums first and records second. Records refer to enums
// by name:
//
//	enums:
//	  - name: trigger
//	    policy: explicit
//	    variants:
//	      - {name: rising, ordinal: 0}
//	      - {name: falling, ordinal: 2}
//	  - name: lane
//	    policy: auto
//	    variants: [north, east, south, west]
//	records:
//	  - name: header
//	    fields:
//	      - {name: version, bits: 3}
//	      - {name: urgent, kind: bool}
//	      - {name: trig, kind: enum, enum: trigger, expect: 2}
//	      - {name: length, bits: 10}
//
// Under the explicit policy a variant without an ordinal takes the previous
// ordinal plus one, starting at zero. Under the auto policy ordinals are not
// allowed and the variant count must be a power of two.
//
// A field with no kind is unsigned, or an enum when it names one. Building
// is two-phase: the whole document is decoded first, then every enum and
// record is validated and all problems are returned together.
//
// JSONC input is plain JSON with comments and trailing commas.
package schema
