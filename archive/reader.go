package archive

import (
	stderrors "errors"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"go.uber.org/zap"

	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/record"
)

// Reader reads records of one layout from an archive.
type Reader struct {
	layout *layout.Layout
	header Header
	in     io.Reader
	zdec   *zstd.Decoder
	buf    []byte
	count  uint64
}

// NewReader reads the archive header from r and checks it against l.
func NewReader(r io.Reader, l *layout.Layout) (*Reader, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if err := h.check(l); err != nil {
		return nil, err
	}

	ar := &Reader{
		layout: l,
		header: h,
		buf:    make([]byte, l.ByteSize()),
	}

	switch h.Compression {
	case CompressionNone:
		ar.in = r
	case CompressionLZ4:
		ar.in = lz4.NewReader(r)
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "zstd decoder")
		}
		ar.in, ar.zdec = zr, zr
	default:
		return nil, errors.Unsupported(errors.PhaseLoad, []string{l.Name()}, "compression "+h.Compression.String())
	}

	Logger().Debug("archive reader opened",
		zap.String("layout", l.Name()),
		zap.Stringer("compression", h.Compression),
	)
	return ar, nil
}

// Header returns the archive header.
func (r *Reader) Header() Header { return r.header }

// Count returns the number of records read so far.
func (r *Reader) Count() uint64 { return r.count }

// Next returns the next record, or io.EOF after the last one. A trailing
// partial record is reported as invalid data.
func (r *Reader) Next() (*record.Record, error) {
	n, err := io.ReadFull(r.in, r.buf)
	switch {
	case err == nil:
	case stderrors.Is(err, io.EOF):
		return nil, io.EOF
	case stderrors.Is(err, io.ErrUnexpectedEOF):
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Path(r.layout.Name()).
			Value(n).
			Detail("truncated record %d: %d of %d bytes", r.count, n, len(r.buf)).
			Build()
	default:
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "read record")
	}

	rec, err := record.FromBytes(r.layout, r.buf)
	if err != nil {
		return nil, err
	}
	r.count++
	return rec, nil
}

// ReadAll returns every remaining record.
func (r *Reader) ReadAll() ([]*record.Record, error) {
	var out []*record.Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// Close releases decoder resources. The underlying reader stays open.
func (r *Reader) Close() error {
	if r.zdec != nil {
		r.zdec.Close()
		r.zdec = nil
	}
	return nil
}
