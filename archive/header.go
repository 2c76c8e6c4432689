package archive

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
)

// Magic opens every archive.
const Magic = "BPAK"

// Version is the frame version written by this package.
const Version = 1

// maxHeaderSize bounds the CBOR header a reader will allocate.
const maxHeaderSize = 1 << 20

// Compression identifies the payload compression. Values are stored in
// the header and must not change.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	}
	return 0, errors.Unsupported(errors.PhaseParse, nil, fmt.Sprintf("compression %q", name))
}

// FieldInfo describes one field in the header.
type FieldInfo struct {
	Name string `cbor:"name"`
	Kind string `cbor:"kind"`
	Bits uint32 `cbor:"bits"`
}

// Header is the archive metadata.
type Header struct {
	Layout      string      `cbor:"layout"`
	Fingerprint []byte      `cbor:"fingerprint"`
	RecordSize  uint32      `cbor:"record_size"`
	Compression Compression `cbor:"compression"`
	Fields      []FieldInfo `cbor:"fields,omitempty"`
}

func headerFor(l *layout.Layout, c Compression) Header {
	fp := l.Fingerprint()
	h := Header{
		Layout:      l.Name(),
		Fingerprint: fp[:],
		RecordSize:  l.ByteSize(),
		Compression: c,
		Fields:      make([]FieldInfo, l.NumFields()),
	}
	for i := range h.Fields {
		f := l.Field(i)
		h.Fields[i] = FieldInfo{Name: f.Name, Kind: f.Kind.String(), Bits: f.Bits}
	}
	return h
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("archive: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: 1 << 16,
	}.DecMode()
	if err != nil {
		panic("archive: CBOR decoder initialization failed: " + err.Error())
	}
}

func writeHeader(w io.Writer, h Header) error {
	body, err := encMode.Marshal(h)
	if err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "encode archive header")
	}

	frame := make([]byte, 0, len(Magic)+5+len(body))
	frame = append(frame, Magic...)
	frame = append(frame, Version)
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(body)))
	frame = append(frame, body...)

	if _, err := w.Write(frame); err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindInvalidInput, err, "write archive header")
	}
	return nil
}

// ReadHeader reads the frame and header, leaving r at the payload.
func ReadHeader(r io.Reader) (Header, error) {
	var pre [len(Magic) + 5]byte
	if _, err := io.ReadFull(r, pre[:]); err != nil {
		return Header{}, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "read archive frame")
	}
	if string(pre[:len(Magic)]) != Magic {
		return Header{}, errors.InvalidData(errors.PhaseLoad, nil,
			fmt.Sprintf("bad magic %q", pre[:len(Magic)]))
	}
	if v := pre[len(Magic)]; v != Version {
		return Header{}, errors.Unsupported(errors.PhaseLoad, nil, fmt.Sprintf("archive version %d", v))
	}

	n := binary.BigEndian.Uint32(pre[len(Magic)+1:])
	if n > maxHeaderSize {
		return Header{}, errors.InvalidData(errors.PhaseLoad, nil,
			fmt.Sprintf("header length %d exceeds %d", n, maxHeaderSize))
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return Header{}, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "read archive header")
	}

	var h Header
	if err := decMode.Unmarshal(body, &h); err != nil {
		return Header{}, errors.ParseFailed("archive header", err)
	}
	return h, nil
}

// check verifies that h describes l.
func (h Header) check(l *layout.Layout) error {
	fp := l.Fingerprint()
	if h.Layout != l.Name() || string(h.Fingerprint) != string(fp[:]) {
		return errors.LayoutMismatch(errors.PhaseLoad,
			fmt.Sprintf("%s@%x", l.Name(), fp[:4]),
			fmt.Sprintf("%s@%x", h.Layout, prefix(h.Fingerprint, 4)))
	}
	if h.RecordSize != l.ByteSize() {
		return errors.InvalidData(errors.PhaseLoad, []string{l.Name()},
			fmt.Sprintf("record size %d, layout needs %d", h.RecordSize, l.ByteSize()))
	}
	return nil
}

func prefix(b []byte, n int) []byte {
	if len(b) < n {
		return b
	}
	return b[:n]
}
