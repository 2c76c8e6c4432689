package layout

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/zeebo/blake3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/bitpack/bitspan"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/ordinal"
)

// Kind selects how a field's raw bits are interpreted.
type Kind uint8

const (
	KindUnsigned Kind = iota
	KindBool
	KindEnum
)

var kindNames = [...]string{
	KindUnsigned: "uint",
	KindBool:     "bool",
	KindEnum:     "enum",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// FieldSpec declares one field. Bits is the width of unsigned fields; bool
// and enum fields derive their width and only accept a matching Bits.
// Expect, when non-zero, asserts the resolved width.
type FieldSpec struct {
	Enum   *ordinal.Map
	Name   string
	Bits   uint32
	Expect uint32
	Kind   Kind
}

// Uint declares an unsigned field of the given width.
func Uint(name string, bits uint32) FieldSpec {
	return FieldSpec{Name: name, Kind: KindUnsigned, Bits: bits}
}

// Bool declares a one-bit boolean field.
func Bool(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: KindBool}
}

// Enum declares a field holding ordinals of m.
func Enum(name string, m *ordinal.Map) FieldSpec {
	return FieldSpec{Name: name, Kind: KindEnum, Enum: m}
}

// Expecting returns s with an explicit width assertion.
func (s FieldSpec) Expecting(bits uint32) FieldSpec {
	s.Expect = bits
	return s
}

// Field is a resolved field: its place in the record's bit space.
type Field struct {
	Enum   *ordinal.Map
	Name   string
	Offset uint32
	Bits   uint32
	Kind   Kind
}

// End returns the first bit past the field.
func (f Field) End() uint32 { return f.Offset + f.Bits }

// Max returns the largest raw value the field holds.
func (f Field) Max() uint64 { return bitspan.Mask(f.Bits) }

// StorageBits returns the width of the smallest unsigned Go integer that
// holds the field: 8, 16, 32 or 64.
func (f Field) StorageBits() uint32 {
	switch {
	case f.Bits <= 8:
		return 8
	case f.Bits <= 16:
		return 16
	case f.Bits <= 32:
		return 32
	default:
		return 64
	}
}

// Layout is an immutable, validated sequence of fields packed without gaps.
type Layout struct {
	index       map[string]int
	name        string
	fields      []Field
	totalBits   uint32
	fingerprint [32]byte
}

// Build resolves specs into a layout. Offsets are prefix sums of widths in
// declaration order. Every structural problem is reported in one combined
// error and no layout is returned if there is any.
func Build(name string, specs ...FieldSpec) (*Layout, error) {
	if len(specs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLayout, []string{name}, "layout has no fields")
	}

	l := &Layout{
		name:   name,
		fields: make([]Field, 0, len(specs)),
		index:  make(map[string]int, len(specs)),
	}

	var errs error
	var total uint64
	resolved := true

	for _, s := range specs {
		if s.Name == "" {
			errs = multierr.Append(errs, errors.InvalidInput(errors.PhaseLayout, []string{name}, "field with empty name"))
		} else if _, dup := l.index[s.Name]; dup {
			errs = multierr.Append(errs, errors.Duplicate(errors.PhaseLayout, []string{name}, "field", s.Name))
		}

		width, err := resolveWidth(name, s)
		if err != nil {
			errs = multierr.Append(errs, err)
			resolved = false
			continue
		}

		if _, dup := l.index[s.Name]; !dup && s.Name != "" {
			l.index[s.Name] = len(l.fields)
		}
		l.fields = append(l.fields, Field{
			Name:   s.Name,
			Kind:   s.Kind,
			Offset: uint32(total),
			Bits:   width,
			Enum:   s.Enum,
		})
		total += uint64(width)
	}

	if total > math.MaxUint32-7 {
		errs = multierr.Append(errs, errors.Unsupported(errors.PhaseLayout, []string{name},
			fmt.Sprintf("total width %d bits too large", total)))
	} else if resolved && total%8 != 0 {
		errs = multierr.Append(errs, errors.NotByteAligned(name, uint32(total)))
	}

	if errs != nil {
		Logger().Debug("layout rejected", zap.String("layout", name), zap.Error(errs))
		return nil, errs
	}

	l.totalBits = uint32(total)
	l.fingerprint = l.computeFingerprint()

	Logger().Debug("layout built",
		zap.String("layout", name),
		zap.Int("fields", len(l.fields)),
		zap.Uint32("bits", l.totalBits),
		zap.Uint32("bytes", l.ByteSize()))

	return l, nil
}

// MustBuild is Build for static layouts; it panics on error.
func MustBuild(name string, specs ...FieldSpec) *Layout {
	l, err := Build(name, specs...)
	if err != nil {
		panic(err)
	}
	return l
}

func resolveWidth(layout string, s FieldSpec) (uint32, error) {
	path := []string{layout, s.Name}

	var width uint32
	switch s.Kind {
	case KindUnsigned:
		switch {
		case s.Bits == 0:
			return 0, errors.InvalidInput(errors.PhaseLayout, path, "width must be at least 1 bit")
		case s.Bits > bitspan.MaxWidth:
			return 0, errors.Unsupported(errors.PhaseLayout, path,
				fmt.Sprintf("%d-bit field exceeds the %d-bit limit", s.Bits, bitspan.MaxWidth))
		}
		width = s.Bits

	case KindBool:
		width = 1
		if s.Bits != 0 && s.Bits != width {
			return 0, errors.FieldWidthMismatch(layout, s.Name, s.Bits, width)
		}

	case KindEnum:
		if s.Enum == nil {
			return 0, errors.InvalidInput(errors.PhaseLayout, path, "enum field has no ordinal map")
		}
		width = s.Enum.Bits()
		if s.Bits != 0 && s.Bits != width {
			return 0, errors.FieldWidthMismatch(layout, s.Name, s.Bits, width)
		}

	default:
		return 0, errors.Unsupported(errors.PhaseLayout, path, fmt.Sprintf("field kind %d", s.Kind))
	}

	if s.Expect != 0 && s.Expect != width {
		return 0, errors.FieldWidthMismatch(layout, s.Name, s.Expect, width)
	}
	return width, nil
}

// computeFingerprint hashes everything that determines the meaning of the
// packed bytes: field order, names, kinds, widths and enum tables.
func (l *Layout) computeFingerprint() [32]byte {
	var buf []byte
	putString := func(s string) {
		buf = binary.AppendUvarint(buf, uint64(len(s)))
		buf = append(buf, s...)
	}

	putString(l.name)
	buf = binary.AppendUvarint(buf, uint64(len(l.fields)))
	for _, f := range l.fields {
		putString(f.Name)
		buf = append(buf, byte(f.Kind))
		buf = binary.AppendUvarint(buf, uint64(f.Bits))
		if f.Enum != nil {
			putString(f.Enum.Name())
			for _, v := range f.Enum.Variants() {
				putString(v.Name)
				buf = binary.AppendUvarint(buf, v.Ordinal)
			}
		}
	}
	return blake3.Sum256(buf)
}

// Name returns the layout name.
func (l *Layout) Name() string { return l.name }

// NumFields returns the number of fields.
func (l *Layout) NumFields() int { return len(l.fields) }

// Field returns the i-th field in declaration order.
func (l *Layout) Field(i int) Field { return l.fields[i] }

// Fields returns all fields in declaration order.
func (l *Layout) Fields() []Field {
	out := make([]Field, len(l.fields))
	copy(out, l.fields)
	return out
}

// Index returns the position of the named field.
func (l *Layout) Index(name string) (int, bool) {
	i, ok := l.index[name]
	return i, ok
}

// Lookup returns the named field.
func (l *Layout) Lookup(name string) (Field, bool) {
	i, ok := l.index[name]
	if !ok {
		return Field{}, false
	}
	return l.fields[i], true
}

// Offset returns the bit offset of the i-th field.
func (l *Layout) Offset(i int) uint32 { return l.fields[i].Offset }

// TotalBits returns the sum of all field widths.
func (l *Layout) TotalBits() uint32 { return l.totalBits }

// ByteSize returns the packed record size in bytes.
func (l *Layout) ByteSize() uint32 { return bitspan.ByteSize(l.totalBits) }

// Fingerprint identifies the layout's binary meaning.
func (l *Layout) Fingerprint() [32]byte { return l.fingerprint }

func (l *Layout) String() string {
	var b strings.Builder
	b.WriteString(l.name)
	b.WriteByte('{')
	for i, f := range l.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s%d@%d", f.Name, f.Kind, f.Bits, f.Offset)
	}
	fmt.Fprintf(&b, "} %d bytes", l.ByteSize())
	return b.String()
}
