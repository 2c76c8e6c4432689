package witlayout

import (
	"fmt"
	"maps"
	"slices"

	"go.bytecodealliance.org/wit"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/ordinal"
)

// ReservedField names the padding field appended by FlagsLayout. WIT
// identifiers cannot start with an underscore, so it never collides.
const ReservedField = "_reserved"

// EnumMap builds an ordinal map from a WIT enum typedef.
func EnumMap(t *wit.TypeDef) (*ordinal.Map, error) {
	name := typeName(t)
	e, ok := resolve(t).(*wit.Enum)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseMapping, []string{name}, "enum", kindName(t))
	}
	return enumMap(name, e)
}

func enumMap(name string, e *wit.Enum) (*ordinal.Map, error) {
	variants := make([]ordinal.Variant, len(e.Cases))
	for i, c := range e.Cases {
		variants[i] = ordinal.Variant{Name: c.Name, Ordinal: uint64(i)}
	}
	return ordinal.Build(name, variants...)
}

// FlagsSize returns the Canonical ABI byte size of a flags type with n
// flags.
func FlagsSize(n int) uint32 {
	switch {
	case n <= 0:
		return 0
	case n <= 8:
		return 1
	case n <= 16:
		return 2
	case n <= 32:
		return 4
	case n <= 64:
		return 8
	}
	return uint32((n+31)/32) * 4
}

// FlagsLayout builds a layout with one bool per flag, padded to the
// canonical flags size.
func FlagsLayout(t *wit.TypeDef) (*layout.Layout, error) {
	name := typeName(t)
	f, ok := resolve(t).(*wit.Flags)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseLayout, []string{name}, "flags", kindName(t))
	}
	if len(f.Flags) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLayout, []string{name}, "flags type has no flags")
	}

	specs := make([]layout.FieldSpec, 0, len(f.Flags)+1)
	for _, fl := range f.Flags {
		specs = append(specs, layout.Bool(fl.Name))
	}
	if pad := FlagsSize(len(f.Flags))*8 - uint32(len(f.Flags)); pad > 0 {
		specs = append(specs, layout.Uint(ReservedField, pad))
	}

	l, err := layout.Build(name, specs...)
	if err != nil {
		return nil, err
	}
	layout.Logger().Debug("wit flags layout",
		zap.String("type", name),
		zap.Int("flags", len(f.Flags)),
		zap.Uint32("bytes", l.ByteSize()),
	)
	return l, nil
}

// RecordLayout builds a layout from a WIT record typedef. widths narrows
// unsigned fields below their natural width; entries naming other fields
// are errors.
func RecordLayout(t *wit.TypeDef, widths map[string]uint32) (*layout.Layout, error) {
	name := typeName(t)
	r, ok := resolve(t).(*wit.Record)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseLayout, []string{name}, "record", kindName(t))
	}

	var errs error
	enums := make(map[*wit.TypeDef]*ordinal.Map)
	specs := make([]layout.FieldSpec, 0, len(r.Fields))

	for _, fd := range r.Fields {
		path := []string{name, fd.Name}
		spec, err := fieldSpec(fd, enums)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		if w, ok := widths[fd.Name]; ok {
			switch {
			case spec.Kind != layout.KindUnsigned:
				errs = multierr.Append(errs, errors.TypeMismatch(errors.PhaseLayout, path, "uint", spec.Kind.String()))
				continue
			case w == 0 || w > spec.Bits:
				errs = multierr.Append(errs, errors.InvalidInput(errors.PhaseLayout, path,
					fmt.Sprintf("width %d outside 1..%d", w, spec.Bits)))
				continue
			}
			spec.Bits = w
		}
		specs = append(specs, spec)
	}

	for _, field := range slices.Sorted(maps.Keys(widths)) {
		if !hasField(r, field) {
			errs = multierr.Append(errs, errors.FieldUnknown(errors.PhaseLayout, []string{name}, field))
		}
	}
	if errs != nil {
		return nil, errs
	}
	return layout.Build(name, specs...)
}

func fieldSpec(fd wit.Field, enums map[*wit.TypeDef]*ordinal.Map) (layout.FieldSpec, error) {
	switch ft := fd.Type.(type) {
	case wit.Bool:
		return layout.Bool(fd.Name), nil
	case wit.U8:
		return layout.Uint(fd.Name, 8), nil
	case wit.U16:
		return layout.Uint(fd.Name, 16), nil
	case wit.U32:
		return layout.Uint(fd.Name, 32), nil
	case wit.U64:
		return layout.Uint(fd.Name, 64), nil
	case *wit.TypeDef:
		switch k := resolve(ft).(type) {
		case *wit.Enum:
			m, ok := enums[ft]
			if !ok {
				var err error
				if m, err = enumMap(typeName(ft), k); err != nil {
					return layout.FieldSpec{}, err
				}
				enums[ft] = m
			}
			return layout.Enum(fd.Name, m), nil
		case wit.Type:
			return fieldSpec(wit.Field{Name: fd.Name, Type: k}, enums)
		}
	}
	return layout.FieldSpec{}, errors.Unsupported(errors.PhaseLayout, []string{fd.Name},
		fmt.Sprintf("field type %s", kindName(fd.Type)))
}

// resolve follows typedef aliases down to the defining kind.
func resolve(t *wit.TypeDef) wit.TypeDefKind {
	if t == nil {
		return nil
	}
	var k wit.TypeDefKind = t.Kind
	for i := 0; i < 32; i++ {
		td, ok := k.(*wit.TypeDef)
		if !ok {
			return k
		}
		k = td.Kind
	}
	return k
}

func hasField(r *wit.Record, name string) bool {
	for _, f := range r.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func typeName(t *wit.TypeDef) string {
	if t != nil && t.Name != nil {
		return *t.Name
	}
	return "anonymous"
}

func kindName(v any) string {
	if td, ok := v.(*wit.TypeDef); ok {
		v = resolve(td)
	}
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
