package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

type document struct {
	Enums   []enumDef   `yaml:"enums" json:"enums"`
	Records []recordDef `yaml:"records" json:"records"`
}

type enumDef struct {
	Name     string       `yaml:"name" json:"name"`
	Policy   string       `yaml:"policy" json:"policy"`
	Variants []variantDef `yaml:"variants" json:"variants"`
}

// variantDef accepts a bare name or a {name, ordinal} mapping.
type variantDef struct {
	Name    string  `yaml:"name" json:"name"`
	Ordinal *uint64 `yaml:"ordinal" json:"ordinal"`
}

type recordDef struct {
	Name   string     `yaml:"name" json:"name"`
	Fields []fieldDef `yaml:"fields" json:"fields"`
}

type fieldDef struct {
	Name   string `yaml:"name" json:"name"`
	Kind   string `yaml:"kind" json:"kind"`
	Bits   uint32 `yaml:"bits" json:"bits"`
	Enum   string `yaml:"enum" json:"enum"`
	Expect uint32 `yaml:"expect" json:"expect"`
}

// UnmarshalYAML implements the short form: `- rising`.
func (v *variantDef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		v.Name = value.Value
		return nil
	}

	// node.Decode does not inherit KnownFields from the outer decoder
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			switch key := value.Content[i]; key.Value {
			case "name", "ordinal":
			default:
				return fmt.Errorf("line %d: field %s not found in variant", key.Line, key.Value)
			}
		}
	}

	type rawVariant variantDef
	var raw rawVariant
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*v = variantDef(raw)
	return nil
}

// UnmarshalJSON implements the short form: `"rising"`.
func (v *variantDef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		v.Name = name
		return nil
	}

	type rawVariant variantDef
	var raw rawVariant
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = variantDef(raw)
	return nil
}
