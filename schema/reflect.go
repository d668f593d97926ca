package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Enumer is implemented by named string types that should reflect as enums.
// The first value returned is the variant list order.
type Enumer interface {
	EnumValues() []string
}

var enumerType = reflect.TypeOf((*Enumer)(nil)).Elem()

// Reflect derives a Type for the Go type t, registering every struct it
// reaches as a class (and every Enumer as an enum) in r. Pointers and
// omitempty fields become Optional.
func Reflect(t reflect.Type, r *Registry) (Type, error) {
	if r == nil {
		return nil, fmt.Errorf("reflect %s: nil registry", t)
	}
	return reflectType(t, r)
}

func reflectType(t reflect.Type, r *Registry) (Type, error) {
	if t.Implements(enumerType) && t.Kind() == reflect.String {
		return reflectEnum(t, r)
	}
	switch t.Kind() {
	case reflect.String:
		return String, nil
	case reflect.Bool:
		return Bool, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int, nil
	case reflect.Float32, reflect.Float64:
		return Float, nil
	case reflect.Pointer:
		inner, err := reflectType(t.Elem(), r)
		if err != nil {
			return nil, err
		}
		return NewOptional(inner)
	case reflect.Slice, reflect.Array:
		elem, err := reflectType(t.Elem(), r)
		if err != nil {
			return nil, err
		}
		return List{Elem: elem}, nil
	case reflect.Map:
		k, err := reflectType(t.Key(), r)
		if err != nil {
			return nil, err
		}
		v, err := reflectType(t.Elem(), r)
		if err != nil {
			return nil, err
		}
		return NewMap(k, v)
	case reflect.Struct:
		return reflectClass(t, r)
	}
	return nil, fmt.Errorf("reflect: unsupported Go type %s", t)
}

func reflectEnum(t reflect.Type, r *Registry) (Type, error) {
	name := t.Name()
	if _, err := r.Enum(name); err == nil {
		return EnumRef{Name: name}, nil
	}
	vals := reflect.Zero(t).Interface().(Enumer).EnumValues()
	e := Enum{Name: name}
	for _, v := range vals {
		e.Values = append(e.Values, EnumValue{Name: v})
	}
	if err := r.AddEnum(e); err != nil {
		return nil, err
	}
	return EnumRef{Name: name}, nil
}

func reflectClass(t reflect.Type, r *Registry) (Type, error) {
	name := t.Name()
	if name == "" {
		return nil, fmt.Errorf("reflect: anonymous struct %s", t)
	}
	if _, err := r.Class(name); err == nil {
		return ClassRef{Name: name}, nil
	}
	if err := r.checkName(name); err != nil {
		return nil, err
	}
	// register first so self-referential types terminate
	cl := &Class{Name: name}
	r.classes[name] = cl
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" {
			continue
		}
		ft, err := reflectType(sf.Type, r)
		if err != nil {
			delete(r.classes, name)
			return nil, fmt.Errorf("%s.%s: %w", name, sf.Name, err)
		}
		if omitEmpty(sf) {
			if ft, err = NewOptional(ft); err != nil {
				return nil, err
			}
		}
		cl.Fields = append(cl.Fields, Field{Name: key, Aliases: structAliases(sf), Type: ft})
	}
	return ClassRef{Name: name}, nil
}

// ResolveStructKey resolves a struct field's external key.
// Priority: lenient:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	for _, p := range tagParts(sf.Tag.Get("lenient")) {
		if strings.HasPrefix(p, "name=") {
			return strings.TrimPrefix(p, "name=")
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if i == 0 {
				return sf.Name
			}
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

// structAliases reads lenient:"alias=a|b".
func structAliases(sf reflect.StructField) []string {
	for _, p := range tagParts(sf.Tag.Get("lenient")) {
		if strings.HasPrefix(p, "alias=") {
			return strings.Split(strings.TrimPrefix(p, "alias="), "|")
		}
	}
	return nil
}

func omitEmpty(sf reflect.StructField) bool {
	for _, p := range tagParts(sf.Tag.Get("lenient")) {
		if p == "optional" {
			return true
		}
	}
	jt := sf.Tag.Get("json")
	return strings.Contains(jt, ",omitempty") && sf.Type.Kind() != reflect.Pointer
}

func tagParts(tag string) []string {
	if tag == "" {
		return nil
	}
	parts := strings.Split(tag, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
