package archive

import (
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"go.uber.org/zap"

	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/record"
)

// Option configures a Writer.
type Option func(*writerConfig)

type writerConfig struct {
	compression Compression
	zstdLevel   zstd.EncoderLevel
}

// WithCompression selects the payload compression.
func WithCompression(c Compression) Option {
	return func(cfg *writerConfig) { cfg.compression = c }
}

// WithZstdLevel sets the zstd encoder level. Ignored for other
// compressions.
func WithZstdLevel(level zstd.EncoderLevel) Option {
	return func(cfg *writerConfig) { cfg.zstdLevel = level }
}

// Writer appends records of one layout to an archive.
type Writer struct {
	layout *layout.Layout
	header Header
	out    io.Writer
	closer io.Closer
	buf    []byte
	count  uint64
	closed bool
}

// NewWriter writes the archive header to w and returns a Writer for
// records of layout l. Close must be called to flush the payload; it does
// not close w.
func NewWriter(w io.Writer, l *layout.Layout, opts ...Option) (*Writer, error) {
	cfg := writerConfig{compression: CompressionNone, zstdLevel: zstd.SpeedDefault}
	for _, opt := range opts {
		opt(&cfg)
	}

	aw := &Writer{
		layout: l,
		header: headerFor(l, cfg.compression),
		buf:    make([]byte, 0, l.ByteSize()),
	}

	switch cfg.compression {
	case CompressionNone:
		aw.out = w
	case CompressionLZ4:
		lw := lz4.NewWriter(w)
		aw.out, aw.closer = lw, lw
	case CompressionZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(cfg.zstdLevel))
		if err != nil {
			return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidInput, err, "zstd encoder")
		}
		aw.out, aw.closer = zw, zw
	default:
		return nil, errors.Unsupported(errors.PhaseEncode, []string{l.Name()}, "compression "+cfg.compression.String())
	}

	if err := writeHeader(w, aw.header); err != nil {
		if aw.closer != nil {
			aw.closer.Close()
		}
		return nil, err
	}

	Logger().Debug("archive writer opened",
		zap.String("layout", l.Name()),
		zap.Uint32("record_size", l.ByteSize()),
		zap.Stringer("compression", cfg.compression),
	)
	return aw, nil
}

// Header returns the header written to the archive.
func (w *Writer) Header() Header { return w.header }

// Count returns the number of records written.
func (w *Writer) Count() uint64 { return w.count }

// Write appends one record. The record must use the writer's layout.
func (w *Writer) Write(r *record.Record) error {
	if w.closed {
		return errors.InvalidInput(errors.PhaseEncode, []string{w.layout.Name()}, "write after close")
	}
	if r.Layout() != w.layout {
		return errors.LayoutMismatch(errors.PhaseEncode, w.layout.Name(), r.Layout().Name())
	}

	w.buf = r.AppendBytes(w.buf[:0])
	if _, err := w.out.Write(w.buf); err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindInvalidInput, err, "write record")
	}
	w.count++
	return nil
}

// Close flushes the compressor. The underlying writer stays open.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	Logger().Debug("archive writer closed",
		zap.String("layout", w.layout.Name()),
		zap.Uint64("records", w.count),
	)
	if w.closer == nil {
		return nil
	}
	if err := w.closer.Close(); err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindInvalidInput, err, "flush "+w.header.Compression.String())
	}
	return nil
}
