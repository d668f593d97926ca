package schema

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownType reports a reference to a class or enum the registry does
// not define. It signals a schema mismatch, not bad data.
var ErrUnknownType = errors.New("unknown type reference")

// EnumValue is one enum variant with optional alternative spellings.
type EnumValue struct {
	Name    string
	Aliases []string
}

// Enum is a named set of variants. Default, when non-empty, names the
// variant used when nothing matches.
type Enum struct {
	Name    string
	Values  []EnumValue
	Default string
}

// Field is a class member. A nil Default means no default is declared.
type Field struct {
	Name    string
	Aliases []string
	Type    Type
	Default any
}

// Class is a named record with ordered fields.
type Class struct {
	Name   string
	Fields []Field
}

// Registry maps class and enum names to their definitions.
type Registry struct {
	classes map[string]*Class
	enums   map[string]*Enum
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: map[string]*Class{}, enums: map[string]*Enum{}}
}

// AddClass registers c. Names are shared between classes and enums.
func (r *Registry) AddClass(c Class) error {
	if err := r.checkName(c.Name); err != nil {
		return err
	}
	for i, f := range c.Fields {
		if f.Name == "" || f.Type == nil {
			return fmt.Errorf("class %s: field %d needs a name and a type", c.Name, i)
		}
	}
	cp := c
	cp.Fields = append([]Field(nil), c.Fields...)
	r.classes[c.Name] = &cp
	return nil
}

// AddEnum registers e.
func (r *Registry) AddEnum(e Enum) error {
	if err := r.checkName(e.Name); err != nil {
		return err
	}
	if len(e.Values) == 0 {
		return fmt.Errorf("enum %s has no values", e.Name)
	}
	if e.Default != "" && !hasVariant(e, e.Default) {
		return fmt.Errorf("enum %s: default %q is not a variant", e.Name, e.Default)
	}
	cp := e
	cp.Values = append([]EnumValue(nil), e.Values...)
	r.enums[e.Name] = &cp
	return nil
}

func hasVariant(e Enum, name string) bool {
	for _, v := range e.Values {
		if v.Name == name {
			return true
		}
	}
	return false
}

func (r *Registry) checkName(name string) error {
	if name == "" {
		return errors.New("definition needs a name")
	}
	if _, ok := r.classes[name]; ok {
		return fmt.Errorf("duplicate definition %q", name)
	}
	if _, ok := r.enums[name]; ok {
		return fmt.Errorf("duplicate definition %q", name)
	}
	return nil
}

// Class returns the class named name.
func (r *Registry) Class(name string) (*Class, error) {
	if r != nil {
		if c, ok := r.classes[name]; ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: class %q", ErrUnknownType, name)
}

// Enum returns the enum named name.
func (r *Registry) Enum(name string) (*Enum, error) {
	if r != nil {
		if e, ok := r.enums[name]; ok {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: enum %q", ErrUnknownType, name)
}

// Ref returns a ClassRef or EnumRef for a defined name.
func (r *Registry) Ref(name string) (Type, error) {
	if r != nil {
		if _, ok := r.classes[name]; ok {
			return ClassRef{Name: name}, nil
		}
		if _, ok := r.enums[name]; ok {
			return EnumRef{Name: name}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// Names lists every defined class and enum name in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.classes)+len(r.enums))
	for n := range r.classes {
		out = append(out, n)
	}
	for n := range r.enums {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
