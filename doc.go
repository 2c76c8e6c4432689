// Package bitpack is a bit-level packed-record storage engine.
//
// A record is a fixed-size byte buffer holding named unsigned, boolean and
// enum fields of arbitrary bit width, packed back to back with no padding.
//
// # Architecture Overview
//
//	bitpack/          Root package with the Memory interface
//	├── bitspan/      Bit-offset get/set primitives over byte buffers
//	├── ordinal/      Enum variant <-> ordinal tables
//	├── layout/       Validated, immutable record layouts
//	├── record/       Packed record instances and typed accessors
//	├── memory/       wazero linear memory adapter
//	├── witlayout/    Layouts from WIT enum, flags and record types
//	├── schema/       YAML / JSONC layout definitions
//	├── archive/      Compressed streams of packed records
//	├── errors/       Structured error types
//	└── cmd/bitpack/  Command line inspector
//
// # Quick Start
//
//	modes, err := ordinal.Build("mode",
//	    ordinal.Variant{Name: "idle", Ordinal: 0},
//	    ordinal.Variant{Name: "run", Ordinal: 1},
//	    ordinal.Variant{Name: "halt", Ordinal: 2},
//	)
//
//	hdr, err := layout.Build("header",
//	    layout.Uint("version", 3),
//	    layout.Bool("urgent"),
//	    layout.Enum("mode", modes),
//	    layout.Uint("length", 10),
//	)
//
//	rec := record.New(hdr)
//	rec.Set("version", 5)
//	rec.SetEnum("mode", "run")
//	wire := rec.Bytes() // 2 bytes
//
// # Binary Layout
//
// Byte k of a record holds bits [8k, 8k+8) of the record's bit space, bit 0
// being the least significant bit of the byte. Field i occupies bits
// [offset_i, offset_i+width_i) and its value's bit 0 is its lowest-offset
// bit. The format is exact and reproducible across implementations.
//
// # Thread Safety
//
// Layouts and ordinal maps are immutable and safe for concurrent use.
// Records are plain values with no internal locking; a record must not be
// mutated from several goroutines without external synchronization.
package bitpack
