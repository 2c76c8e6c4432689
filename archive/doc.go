// Package archive stores streams of fixed-size packed records.
//
// An archive is a short frame followed by the payload:
//
//	"BPAK"            magic, 4 bytes
//	version           1 byte
//	header length     uint32, big-endian
//	header            CBOR map, core deterministic encoding
//	payload           packed records back to back, optionally compressed
//
// The header names the layout, its fingerprint, the record size in bytes
// and the payload compression. Readers refuse an archive whose fingerprint
// or record size does not match the layout they were given, so bytes are
// never interpreted through the wrong field table.
//
// Compression applies to the payload stream as a whole: zstd frames via
// klauspost/compress or LZ4 frames via pierrec/lz4. Records are written
// and read one at a time without buffering the whole payload.
package archive
