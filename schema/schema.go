package schema

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/ordinal"
)

// Format selects the document syntax.
type Format int

const (
	FormatYAML Format = iota
	FormatJSONC
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSONC:
		return "jsonc"
	default:
		return "unknown"
	}
}

// FormatFromPath picks the format by file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json", ".jsonc":
		return FormatJSONC, true
	}
	return 0, false
}

// Schema holds the validated enums and record layouts of one document.
type Schema struct {
	enums     map[string]*ordinal.Map
	records   map[string]*layout.Layout
	enumOrder []*ordinal.Map
	order     []*layout.Layout
}

// Load reads and parses a schema file.
func Load(path string) (*Schema, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, errors.Unsupported(errors.PhaseLoad, []string{path},
			fmt.Sprintf("schema extension %q", filepath.Ext(path)))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		kind := errors.KindInvalidInput
		if stderrors.Is(err, fs.ErrNotExist) {
			kind = errors.KindNotFound
		}
		return nil, errors.Wrap(errors.PhaseLoad, kind, err, "read "+path)
	}

	s, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	Logger().Debug("schema loaded",
		zap.String("path", path),
		zap.Int("enums", len(s.enumOrder)),
		zap.Int("records", len(s.order)),
	)
	return s, nil
}

// Parse decodes data and builds every enum and record it declares.
func Parse(data []byte, format Format) (*Schema, error) {
	doc, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	return build(doc)
}

func decode(data []byte, format Format) (*document, error) {
	var doc document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.ParseFailed("yaml schema", err)
		}
	case FormatJSONC:
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.ParseFailed("jsonc schema", err)
		}
	default:
		return nil, errors.Unsupported(errors.PhaseParse, nil, "schema format "+format.String())
	}
	return &doc, nil
}

func build(doc *document) (*Schema, error) {
	s := &Schema{
		enums:   make(map[string]*ordinal.Map, len(doc.Enums)),
		records: make(map[string]*layout.Layout, len(doc.Records)),
	}

	var errs error
	failed := make(map[string]bool)

	for _, ed := range doc.Enums {
		if _, dup := s.enums[ed.Name]; dup || failed[ed.Name] {
			errs = multierr.Append(errs, errors.Duplicate(errors.PhaseParse, nil, "enum", ed.Name))
			continue
		}
		m, err := buildEnum(ed)
		if err != nil {
			errs = multierr.Append(errs, err)
			failed[ed.Name] = true
			continue
		}
		s.enums[ed.Name] = m
		s.enumOrder = append(s.enumOrder, m)
	}

	seen := make(map[string]bool, len(doc.Records))
	for _, rd := range doc.Records {
		if seen[rd.Name] {
			errs = multierr.Append(errs, errors.Duplicate(errors.PhaseParse, nil, "record", rd.Name))
			continue
		}
		seen[rd.Name] = true

		l, err := s.buildRecord(rd, failed)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		s.records[rd.Name] = l
		s.order = append(s.order, l)
	}

	if errs != nil {
		return nil, errs
	}
	return s, nil
}

func buildEnum(ed enumDef) (*ordinal.Map, error) {
	path := []string{ed.Name}
	if ed.Name == "" {
		return nil, errors.InvalidInput(errors.PhaseParse, nil, "enum without a name")
	}

	switch ed.Policy {
	case "", "explicit":
		variants := make([]ordinal.Variant, len(ed.Variants))
		var next uint64
		for i, vd := range ed.Variants {
			if vd.Ordinal != nil {
				next = *vd.Ordinal
			}
			variants[i] = ordinal.Variant{Name: vd.Name, Ordinal: next}
			next++
		}
		return ordinal.Build(ed.Name, variants...)

	case "auto":
		names := make([]string, len(ed.Variants))
		var errs error
		for i, vd := range ed.Variants {
			if vd.Ordinal != nil {
				errs = multierr.Append(errs, errors.InvalidInput(errors.PhaseParse, append(path, vd.Name),
					"auto policy assigns ordinals; remove the explicit ordinal"))
			}
			names[i] = vd.Name
		}
		if errs != nil {
			return nil, errs
		}
		return ordinal.Auto(ed.Name, names...)
	}

	return nil, errors.InvalidInput(errors.PhaseParse, path,
		fmt.Sprintf("unknown policy %q (want explicit or auto)", ed.Policy))
}

func (s *Schema) buildRecord(rd recordDef, failedEnums map[string]bool) (*layout.Layout, error) {
	var errs error
	specs := make([]layout.FieldSpec, 0, len(rd.Fields))

	for _, fd := range rd.Fields {
		path := []string{rd.Name, fd.Name}

		kindName := fd.Kind
		if kindName == "" {
			kindName = layout.KindUnsigned.String()
			if fd.Enum != "" {
				kindName = layout.KindEnum.String()
			}
		}
		kind, ok := layout.ParseKind(kindName)
		if !ok {
			errs = multierr.Append(errs, errors.Unsupported(errors.PhaseParse, path,
				fmt.Sprintf("field kind %q", fd.Kind)))
			continue
		}

		spec := layout.FieldSpec{Name: fd.Name, Kind: kind, Bits: fd.Bits, Expect: fd.Expect}
		switch {
		case kind == layout.KindEnum:
			m, ok := s.enums[fd.Enum]
			if !ok {
				// an enum that failed to build has already been reported
				if !failedEnums[fd.Enum] {
					errs = multierr.Append(errs, errors.NotFound(errors.PhaseParse, "enum", fd.Enum))
				}
				continue
			}
			spec.Enum = m
		case fd.Enum != "":
			errs = multierr.Append(errs, errors.InvalidInput(errors.PhaseParse, path,
				fmt.Sprintf("%s field cannot name enum %q", kind, fd.Enum)))
			continue
		}
		specs = append(specs, spec)
	}

	if errs != nil {
		return nil, errs
	}
	return layout.Build(rd.Name, specs...)
}

// Record returns the named layout.
func (s *Schema) Record(name string) (*layout.Layout, bool) {
	l, ok := s.records[name]
	return l, ok
}

// Enum returns the named enum map.
func (s *Schema) Enum(name string) (*ordinal.Map, bool) {
	m, ok := s.enums[name]
	return m, ok
}

// Records returns the layouts in declaration order.
func (s *Schema) Records() []*layout.Layout {
	out := make([]*layout.Layout, len(s.order))
	copy(out, s.order)
	return out
}

// Enums returns the enum maps in declaration order.
func (s *Schema) Enums() []*ordinal.Map {
	out := make([]*ordinal.Map, len(s.enumOrder))
	copy(out, s.enumOrder)
	return out
}
