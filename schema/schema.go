// Package schema describes the target types values are coerced into.
//
// Types form a closed variant: Primitive, EnumRef, ClassRef, List, Map,
// Tuple, Union and Optional. Named enums and classes live in a Registry.
// Everything here is read-only once built.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a schema type node.
type Kind int

const (
	KindPrimitive Kind = iota
	KindEnum
	KindClass
	KindList
	KindMap
	KindTuple
	KindUnion
	KindOptional
)

// Type is the closed set of schema shapes.
type Type interface {
	Kind() Kind
	// String renders the type expression accepted by ParseType.
	String() string
	isType()
}

// PrimKind enumerates primitive types.
type PrimKind int

const (
	PrimString PrimKind = iota
	PrimInt
	PrimFloat
	PrimBool
	PrimNull
)

var primNames = [...]string{
	PrimString: "string",
	PrimInt:    "int",
	PrimFloat:  "float",
	PrimBool:   "bool",
	PrimNull:   "null",
}

// Primitive is a scalar type.
type Primitive struct{ Of PrimKind }

// Common primitives.
var (
	String = Primitive{Of: PrimString}
	Int    = Primitive{Of: PrimInt}
	Float  = Primitive{Of: PrimFloat}
	Bool   = Primitive{Of: PrimBool}
	Null   = Primitive{Of: PrimNull}
)

// EnumRef names an enum in the registry.
type EnumRef struct{ Name string }

// ClassRef names a class in the registry.
type ClassRef struct{ Name string }

// List is a homogeneous sequence.
type List struct{ Elem Type }

// Map is a keyed collection. Key is String, Int or an EnumRef.
type Map struct{ Key, Value Type }

// Tuple is a fixed-arity positional sequence.
type Tuple struct{ Items []Type }

// Union accepts any one of its options.
type Union struct{ Options []Type }

// Optional accepts null or absence in addition to Inner.
type Optional struct{ Inner Type }

func (Primitive) Kind() Kind { return KindPrimitive }
func (EnumRef) Kind() Kind   { return KindEnum }
func (ClassRef) Kind() Kind  { return KindClass }
func (List) Kind() Kind      { return KindList }
func (Map) Kind() Kind       { return KindMap }
func (Tuple) Kind() Kind     { return KindTuple }
func (Union) Kind() Kind     { return KindUnion }
func (Optional) Kind() Kind  { return KindOptional }

func (Primitive) isType() {}
func (EnumRef) isType()   {}
func (ClassRef) isType()  {}
func (List) isType()      {}
func (Map) isType()       {}
func (Tuple) isType()     {}
func (Union) isType()     {}
func (Optional) isType()  {}

func (p Primitive) String() string {
	if int(p.Of) >= 0 && int(p.Of) < len(primNames) {
		return primNames[p.Of]
	}
	return fmt.Sprintf("prim(%d)", int(p.Of))
}

func (e EnumRef) String() string  { return e.Name }
func (c ClassRef) String() string { return c.Name }

func (l List) String() string { return group(l.Elem) + "[]" }

func (m Map) String() string {
	return "map<" + render(m.Key) + ", " + render(m.Value) + ">"
}

func (t Tuple) String() string {
	parts := make([]string, len(t.Items))
	for i, it := range t.Items {
		parts[i] = render(it)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (u Union) String() string {
	parts := make([]string, len(u.Options))
	for i, o := range u.Options {
		parts[i] = group(o)
	}
	return strings.Join(parts, " | ")
}

func (o Optional) String() string { return group(o.Inner) + "?" }

func render(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// group parenthesizes unions so postfix operators bind to the whole.
func group(t Type) string {
	if u, ok := t.(Union); ok {
		return "(" + u.String() + ")"
	}
	return render(t)
}

var (
	errEmptyUnion    = errors.New("union needs at least one option")
	errEmptyOptional = errors.New("optional needs an inner type")
)

// NewUnion builds a Union, rejecting empty or nil options.
func NewUnion(options ...Type) (Union, error) {
	if len(options) == 0 {
		return Union{}, errEmptyUnion
	}
	for i, o := range options {
		if o == nil {
			return Union{}, fmt.Errorf("union option %d is nil", i)
		}
	}
	return Union{Options: append([]Type(nil), options...)}, nil
}

// NewOptional wraps inner, rejecting nil. Optional of Optional collapses.
func NewOptional(inner Type) (Optional, error) {
	if inner == nil {
		return Optional{}, errEmptyOptional
	}
	if o, ok := inner.(Optional); ok {
		return o, nil
	}
	return Optional{Inner: inner}, nil
}

// NewMap builds a Map after checking the key type can be read from a string.
func NewMap(key, val Type) (Map, error) {
	if err := checkMapKey(key); err != nil {
		return Map{}, err
	}
	if val == nil {
		return Map{}, errors.New("map value type is nil")
	}
	return Map{Key: key, Value: val}, nil
}

func checkMapKey(key Type) error {
	switch k := key.(type) {
	case Primitive:
		if k.Of == PrimString || k.Of == PrimInt {
			return nil
		}
	case EnumRef:
		return nil
	}
	return fmt.Errorf("map key must be string, int or an enum, got %s", render(key))
}

// Opt is NewOptional for statically known inner types.
func Opt(inner Type) Optional {
	o, err := NewOptional(inner)
	if err != nil {
		panic(err)
	}
	return o
}

// OneOf is NewUnion for statically known options.
func OneOf(options ...Type) Union {
	u, err := NewUnion(options...)
	if err != nil {
		panic(err)
	}
	return u
}

// MapOf is NewMap for statically known key and value types.
func MapOf(key, val Type) Map {
	m, err := NewMap(key, val)
	if err != nil {
		panic(err)
	}
	return m
}

// ListOf returns List{Elem: elem}.
func ListOf(elem Type) List { return List{Elem: elem} }
