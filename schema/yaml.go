package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// LoadYAML builds a registry from one or more YAML documents of the form
//
//	enums:
//	  - name: Sentiment
//	    values: [POSITIVE, {name: NEGATIVE, alias: [bad, negative]}]
//	    default: POSITIVE
//	classes:
//	  - name: Review
//	    fields:
//	      - {name: rating, type: int, alias: score}
//	      - {name: tags, type: "string[]", default: []}
//
// Field types use the ParseType grammar and may reference any name defined
// in any of the documents.
func LoadYAML(data []byte) (*Registry, error) {
	var docs []yamlRegistry
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	for {
		var d yamlRegistry
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
		}
		docs = append(docs, d)
	}

	r := NewRegistry()
	for _, d := range docs {
		for _, e := range d.Enums {
			if err := r.AddEnum(e.toEnum()); err != nil {
				return nil, err
			}
		}
	}
	// register every class name before parsing field types so classes can
	// reference each other regardless of order
	var pending []*Class
	var sources []yamlClass
	for _, d := range docs {
		for _, c := range d.Classes {
			if err := r.checkName(c.Name); err != nil {
				return nil, err
			}
			cl := &Class{Name: c.Name}
			r.classes[c.Name] = cl
			pending = append(pending, cl)
			sources = append(sources, c)
		}
	}
	for i, cl := range pending {
		for _, f := range sources[i].Fields {
			if f.Name == "" {
				return nil, fmt.Errorf("class %s: field without a name", cl.Name)
			}
			t, err := ParseType(f.Type, r)
			if err != nil {
				return nil, fmt.Errorf("class %s field %s: %w", cl.Name, f.Name, err)
			}
			cl.Fields = append(cl.Fields, Field{
				Name:    f.Name,
				Aliases: f.Alias,
				Type:    t,
				Default: f.Default,
			})
		}
	}
	return r, nil
}

type yamlRegistry struct {
	Enums   []yamlEnum  `yaml:"enums"`
	Classes []yamlClass `yaml:"classes"`
}

type yamlEnum struct {
	Name    string          `yaml:"name"`
	Values  []yamlEnumValue `yaml:"values"`
	Default string          `yaml:"default"`
}

func (e yamlEnum) toEnum() Enum {
	out := Enum{Name: e.Name, Default: e.Default}
	for _, v := range e.Values {
		out.Values = append(out.Values, EnumValue{Name: v.Name, Aliases: v.Alias})
	}
	return out
}

type yamlEnumValue struct {
	Name  string       `yaml:"name"`
	Alias stringOrList `yaml:"alias"`
}

// UnmarshalYAML accepts a bare variant name as shorthand.
func (v *yamlEnumValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&v.Name)
	}
	type plain yamlEnumValue
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*v = yamlEnumValue(p)
	return nil
}

type yamlClass struct {
	Name   string      `yaml:"name"`
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name    string       `yaml:"name"`
	Type    string       `yaml:"type"`
	Alias   stringOrList `yaml:"alias"`
	Default any          `yaml:"default"`
}

// stringOrList decodes either a single string or a list of strings.
type stringOrList []string

func (s *stringOrList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}
		if str != "" {
			*s = stringOrList{str}
		} else {
			*s = nil
		}
		return nil
	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}
		*s = arr
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}
