package record

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wippyai/bitpack/bitspan"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/ordinal"
)

// Record is a packed record: one contiguous buffer laid out by a Layout.
type Record struct {
	layout *layout.Layout
	data   []byte
}

// New returns a zero-filled record.
func New(l *layout.Layout) *Record {
	return &Record{
		layout: l,
		data:   make([]byte, l.ByteSize()),
	}
}

// FromBytes returns a record holding a copy of b, which must be exactly
// the layout's byte size.
func FromBytes(l *layout.Layout, b []byte) (*Record, error) {
	if uint32(len(b)) != l.ByteSize() {
		return nil, errors.New(errors.PhaseLoad, errors.KindOutOfBounds).
			Path(l.Name()).
			Value(len(b)).
			Detail("got %d bytes, layout needs %d", len(b), l.ByteSize()).
			Build()
	}
	r := New(l)
	copy(r.data, b)
	return r, nil
}

// Layout returns the layout the record is bound to.
func (r *Record) Layout() *layout.Layout { return r.layout }

// Len returns the packed size in bytes.
func (r *Record) Len() int { return len(r.data) }

// Bytes returns a copy of the packed bytes.
func (r *Record) Bytes() []byte {
	out := make([]byte, len(r.data))
	copy(out, r.data)
	return out
}

// AppendBytes appends the packed bytes to dst.
func (r *Record) AppendBytes(dst []byte) []byte {
	return append(dst, r.data...)
}

// Reset zeroes every field.
func (r *Record) Reset() {
	clear(r.data)
}

// Clone returns an independent copy sharing the layout.
func (r *Record) Clone() *Record {
	return &Record{layout: r.layout, data: r.Bytes()}
}

// Equal reports whether o has the same layout and bytes. A nil o is never
// equal.
func (r *Record) Equal(o *Record) bool {
	if o == nil {
		return false
	}
	return r.layout == o.layout && bytes.Equal(r.data, o.data)
}

// GetAt returns the raw bits of the i-th field.
func (r *Record) GetAt(i int) uint64 {
	f := r.layout.Field(i)
	return bitspan.Get(r.data, f.Offset, f.Bits)
}

// SetAt stores the low bits of v into the i-th field.
func (r *Record) SetAt(i int, v uint64) {
	f := r.layout.Field(i)
	bitspan.Set(r.data, f.Offset, f.Bits, v)
}

// Get returns the raw bits of the named field, whatever its kind.
func (r *Record) Get(name string) (uint64, error) {
	f, err := r.lookup(errors.PhaseDecode, name)
	if err != nil {
		return 0, err
	}
	return bitspan.Get(r.data, f.Offset, f.Bits), nil
}

// Set stores the low bits of v into the named field. Bits of v above the
// field width are dropped.
func (r *Record) Set(name string, v uint64) error {
	f, err := r.lookup(errors.PhaseEncode, name)
	if err != nil {
		return err
	}
	bitspan.Set(r.data, f.Offset, f.Bits, v)
	return nil
}

// GetBool reads a bool field.
func (r *Record) GetBool(name string) (bool, error) {
	f, err := r.lookupKind(errors.PhaseDecode, name, layout.KindBool)
	if err != nil {
		return false, err
	}
	return bitspan.Get(r.data, f.Offset, f.Bits) != 0, nil
}

// SetBool writes a bool field.
func (r *Record) SetBool(name string, v bool) error {
	f, err := r.lookupKind(errors.PhaseEncode, name, layout.KindBool)
	if err != nil {
		return err
	}
	var raw uint64
	if v {
		raw = 1
	}
	bitspan.Set(r.data, f.Offset, f.Bits, raw)
	return nil
}

// GetEnum decodes an enum field. A stored ordinal with no variant yields
// an UnknownOrdinal error carrying the raw value.
func (r *Record) GetEnum(name string) (ordinal.Variant, error) {
	f, err := r.lookupKind(errors.PhaseDecode, name, layout.KindEnum)
	if err != nil {
		return ordinal.Variant{}, err
	}
	return r.decodeEnum(f)
}

// SetEnum writes the ordinal of the named variant.
func (r *Record) SetEnum(name, variant string) error {
	f, err := r.lookupKind(errors.PhaseEncode, name, layout.KindEnum)
	if err != nil {
		return err
	}
	ord, err := f.Enum.Encode(variant)
	if err != nil {
		return errors.UnknownVariant(r.path(f.Name), variant)
	}
	bitspan.Set(r.data, f.Offset, f.Bits, ord)
	return nil
}

// Value returns the field as its natural Go type: uint8, uint16, uint32 or
// uint64 for unsigned fields by storage class, bool, or ordinal.Variant.
func (r *Record) Value(name string) (any, error) {
	f, err := r.lookup(errors.PhaseDecode, name)
	if err != nil {
		return nil, err
	}
	return r.value(f)
}

func (r *Record) value(f layout.Field) (any, error) {
	raw := bitspan.Get(r.data, f.Offset, f.Bits)

	switch f.Kind {
	case layout.KindBool:
		return raw != 0, nil
	case layout.KindEnum:
		return r.decodeEnum(f)
	}

	switch f.StorageBits() {
	case 8:
		return uint8(raw), nil
	case 16:
		return uint16(raw), nil
	case 32:
		return uint32(raw), nil
	default:
		return raw, nil
	}
}

func (r *Record) decodeEnum(f layout.Field) (ordinal.Variant, error) {
	raw := bitspan.Get(r.data, f.Offset, f.Bits)
	v, err := f.Enum.Decode(raw)
	if err != nil {
		return ordinal.Variant{}, errors.UnknownOrdinal(r.path(f.Name), raw)
	}
	return v, nil
}

func (r *Record) lookup(phase errors.Phase, name string) (layout.Field, error) {
	f, ok := r.layout.Lookup(name)
	if !ok {
		return layout.Field{}, errors.FieldUnknown(phase, []string{r.layout.Name()}, name)
	}
	return f, nil
}

func (r *Record) lookupKind(phase errors.Phase, name string, kind layout.Kind) (layout.Field, error) {
	f, err := r.lookup(phase, name)
	if err != nil {
		return f, err
	}
	if f.Kind != kind {
		return layout.Field{}, errors.TypeMismatch(phase, r.path(name), kind.String(), f.Kind.String())
	}
	return f, nil
}

func (r *Record) path(field string) []string {
	return []string{r.layout.Name(), field}
}

// String renders every field as name=value. Enum fields holding an unknown
// ordinal render as ?<raw>.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteString(r.layout.Name())
	b.WriteByte('{')
	for i := 0; i < r.layout.NumFields(); i++ {
		f := r.layout.Field(i)
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(r.formatField(f))
	}
	b.WriteByte('}')
	return b.String()
}

// FormatField renders one field the way String does.
func (r *Record) FormatField(name string) (string, error) {
	f, err := r.lookup(errors.PhaseDecode, name)
	if err != nil {
		return "", err
	}
	return r.formatField(f), nil
}

func (r *Record) formatField(f layout.Field) string {
	v, err := r.value(f)
	if err != nil {
		return fmt.Sprintf("?%d", bitspan.Get(r.data, f.Offset, f.Bits))
	}
	if variant, ok := v.(ordinal.Variant); ok {
		return variant.Name
	}
	return fmt.Sprint(v)
}
