package main

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/wippyai/bitpack/bitspan"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/record"
)

// parseAssignment splits "field=value".
func parseAssignment(s string) (string, string, error) {
	field, value, ok := strings.Cut(s, "=")
	field, value = strings.TrimSpace(field), strings.TrimSpace(value)
	if !ok || field == "" || value == "" {
		return "", "", errors.InvalidInput(errors.PhaseParse, nil,
			fmt.Sprintf("assignment %q: want field=value", s))
	}
	return field, value, nil
}

// assign parses value according to the field kind and stores it. Unsigned
// values accept 0x, 0o and 0b prefixes and must fit the field. Enum fields
// take a variant name, or #N for a raw ordinal.
func assign(r *record.Record, field, value string) error {
	f, ok := r.Layout().Lookup(field)
	if !ok {
		return errors.FieldUnknown(errors.PhaseEncode, []string{r.Layout().Name()}, field)
	}
	path := []string{r.Layout().Name(), field}

	switch f.Kind {
	case layout.KindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, "bool value for "+field)
		}
		return r.SetBool(field, b)

	case layout.KindEnum:
		if raw, ok := strings.CutPrefix(value, "#"); ok {
			return setRaw(r, f, path, raw)
		}
		return r.SetEnum(field, value)
	}
	return setRaw(r, f, path, value)
}

func setRaw(r *record.Record, f layout.Field, path []string, value string) error {
	v, err := strconv.ParseUint(strings.ReplaceAll(value, "_", ""), 0, 64)
	if err != nil {
		return errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, "value for "+f.Name)
	}
	if !bitspan.Fits(v, f.Bits) {
		return errors.New(errors.PhaseEncode, errors.KindOutOfBounds).
			Path(path...).
			Value(v).
			Detail("%d does not fit in %d bits (max %d)", v, f.Bits, f.Max()).
			Build()
	}
	return r.Set(f.Name, v)
}

// formatErrors renders collected errors one per line.
func formatErrors(err error) string {
	errs := multierr.Errors(err)
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = "  " + e.Error()
	}
	return strings.Join(lines, "\n")
}
