// Package value defines the loose value tree produced by the lenient parser
// before any schema is consulted.
//
// Values are immutable once produced. Each subtree is owned by its parent and
// shared only by read reference during coercion.
package value

import (
	"strconv"
	"strings"
)

// Kind identifies a loose value node type.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindMarkdown
	KindFixed
	KindAnyOf
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindNumber:   "number",
	KindString:   "string",
	KindArray:    "array",
	KindObject:   "object",
	KindMarkdown: "markdown",
	KindFixed:    "fixed",
	KindAnyOf:    "any_of",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is the closed set of loose value nodes.
type Value interface {
	Kind() Kind
	isValue()
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool struct{ V bool }

// Number keeps the literal text so integers and floats stay representable.
type Number struct{ Text string }

// String is a JSON string, or raw text kept verbatim.
type String struct{ V string }

// Array is an ordered sequence of values.
type Array struct{ Items []Value }

// Entry is one key/value pair of an Object.
type Entry struct {
	Key   string
	Value Value
}

// Object keeps its pairs in input order. Keys are not required to be unique.
type Object struct{ Entries []Entry }

// Markdown is a fenced block whose content was parsed as Inner.
type Markdown struct {
	Lang  string
	Inner Value
}

// Fixed is produced when the fixing pass had to alter the text.
type Fixed struct {
	Original string
	Inner    Value
	// Repairs names the rewrites applied, in first-seen order.
	Repairs []string
	// Incomplete reports that closers were appended at end of input.
	Incomplete bool
}

// AnyOf holds several trees parsed from the same span with no preference yet.
type AnyOf struct {
	Original   string
	Candidates []Value
}

func (Null) Kind() Kind     { return KindNull }
func (Bool) Kind() Kind     { return KindBool }
func (Number) Kind() Kind   { return KindNumber }
func (String) Kind() Kind   { return KindString }
func (Array) Kind() Kind    { return KindArray }
func (Object) Kind() Kind   { return KindObject }
func (Markdown) Kind() Kind { return KindMarkdown }
func (Fixed) Kind() Kind    { return KindFixed }
func (AnyOf) Kind() Kind    { return KindAnyOf }

func (Null) isValue()     {}
func (Bool) isValue()     {}
func (Number) isValue()   {}
func (String) isValue()   {}
func (Array) isValue()    {}
func (Object) isValue()   {}
func (Markdown) isValue() {}
func (Fixed) isValue()    {}
func (AnyOf) isValue()    {}

// IsInteger reports whether the literal has no fraction or exponent.
func (n Number) IsInteger() bool {
	return !strings.ContainsAny(n.Text, ".eE")
}

// Int64 parses the literal as an integer.
func (n Number) Int64() (int64, error) { return strconv.ParseInt(n.Text, 10, 64) }

// Float64 parses the literal as a float.
func (n Number) Float64() (float64, error) { return strconv.ParseFloat(n.Text, 64) }

// Lookup returns every value stored under key, in input order.
func (o Object) Lookup(key string) []Value {
	var out []Value
	for _, e := range o.Entries {
		if e.Key == key {
			out = append(out, e.Value)
		}
	}
	return out
}

// Keys returns the keys in input order, duplicates included.
func (o Object) Keys() []string {
	out := make([]string, 0, len(o.Entries))
	for _, e := range o.Entries {
		out = append(out, e.Key)
	}
	return out
}

// Describe names the shape of v for messages. A nil v is "absent".
func Describe(v Value) string {
	if v == nil {
		return "absent"
	}
	return v.Kind().String()
}
