package ordinal

import (
	"math/bits"

	"go.uber.org/multierr"

	"github.com/wippyai/bitpack/errors"
)

// Policy records how a Map assigned its ordinals.
type Policy uint8

const (
	PolicyExplicit Policy = iota
	PolicyAuto
)

func (p Policy) String() string {
	switch p {
	case PolicyExplicit:
		return "explicit"
	case PolicyAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// Variant is one named enum value and its stored ordinal.
type Variant struct {
	Name    string
	Ordinal uint64
}

// Map is an immutable bidirectional variant/ordinal table.
type Map struct {
	byOrdinal map[uint64]int
	byName    map[string]int
	name      string
	variants  []Variant
	bits      uint32
	policy    Policy
}

// BitsRequired returns the smallest width whose 2^width covers count values.
// Zero and one still need one bit.
func BitsRequired(count uint64) uint32 {
	if count <= 1 {
		return 1
	}
	return uint32(bits.Len64(count - 1))
}

// Build creates a map from explicitly numbered variants. The width is
// derived from the variant count and every ordinal must fit in it.
func Build(name string, variants ...Variant) (*Map, error) {
	if len(variants) == 0 {
		return nil, errors.InvalidInput(errors.PhaseMapping, []string{name}, "enum has no variants")
	}

	width := BitsRequired(uint64(len(variants)))
	limit := maxOrdinal(width)

	var errs error
	for _, v := range variants {
		if v.Ordinal > limit {
			errs = multierr.Append(errs, errors.OrdinalOutOfRange(name, v.Name, v.Ordinal, limit))
		}
	}

	m, err := newMap(name, PolicyExplicit, width, variants)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nil, errs
	}
	return m, nil
}

// Auto creates a map numbering names 0..N-1. N must be a power of two.
func Auto(name string, names ...string) (*Map, error) {
	if len(names) == 0 {
		return nil, errors.InvalidInput(errors.PhaseMapping, []string{name}, "enum has no variants")
	}

	width := BitsRequired(uint64(len(names)))

	var errs error
	if uint64(1)<<width != uint64(len(names)) {
		errs = errors.NonPowerOfTwoVariantCount(name, len(names), width)
	}

	variants := make([]Variant, len(names))
	for i, n := range names {
		variants[i] = Variant{Name: n, Ordinal: uint64(i)}
	}

	m, err := newMap(name, PolicyAuto, width, variants)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nil, errs
	}
	return m, nil
}

// MustBuild is Build for static tables; it panics on error.
func MustBuild(name string, variants ...Variant) *Map {
	m, err := Build(name, variants...)
	if err != nil {
		panic(err)
	}
	return m
}

func newMap(name string, policy Policy, width uint32, variants []Variant) (*Map, error) {
	m := &Map{
		name:      name,
		policy:    policy,
		bits:      width,
		variants:  make([]Variant, len(variants)),
		byOrdinal: make(map[uint64]int, len(variants)),
		byName:    make(map[string]int, len(variants)),
	}
	copy(m.variants, variants)

	var errs error
	for i, v := range m.variants {
		if v.Name == "" {
			errs = multierr.Append(errs, errors.InvalidInput(errors.PhaseMapping, []string{name}, "variant with empty name"))
			continue
		}
		if _, dup := m.byName[v.Name]; dup {
			errs = multierr.Append(errs, errors.Duplicate(errors.PhaseMapping, []string{name}, "variant", v.Name))
		} else {
			m.byName[v.Name] = i
		}
		if _, dup := m.byOrdinal[v.Ordinal]; dup {
			errs = multierr.Append(errs, errors.Duplicate(errors.PhaseMapping, []string{name, v.Name}, "ordinal", v.Ordinal))
		} else {
			m.byOrdinal[v.Ordinal] = i
		}
	}
	return m, errs
}

func maxOrdinal(width uint32) uint64 {
	return uint64(1)<<width - 1
}

// Name returns the enum name used in error paths.
func (m *Map) Name() string { return m.name }

// Bits returns the field width the map needs.
func (m *Map) Bits() uint32 { return m.bits }

// Policy returns how ordinals were assigned.
func (m *Map) Policy() Policy { return m.policy }

// Len returns the number of variants.
func (m *Map) Len() int { return len(m.variants) }

// Variants returns the variants in declaration order.
func (m *Map) Variants() []Variant {
	out := make([]Variant, len(m.variants))
	copy(out, m.variants)
	return out
}

// Decode returns the variant owning raw. An unowned pattern is an
// UnknownOrdinal error carrying raw.
func (m *Map) Decode(raw uint64) (Variant, error) {
	i, ok := m.byOrdinal[raw]
	if !ok {
		return Variant{}, errors.UnknownOrdinal([]string{m.name}, raw)
	}
	return m.variants[i], nil
}

// Encode returns the ordinal of the named variant.
func (m *Map) Encode(name string) (uint64, error) {
	i, ok := m.byName[name]
	if !ok {
		return 0, errors.UnknownVariant([]string{m.name}, name)
	}
	return m.variants[i].Ordinal, nil
}

// Contains reports whether v is a variant of m.
func (m *Map) Contains(v Variant) bool {
	i, ok := m.byName[v.Name]
	return ok && m.variants[i] == v
}
