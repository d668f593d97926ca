package lenient

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// TypedKind identifies a typed value node.
type TypedKind int

const (
	TypedNull TypedKind = iota
	TypedBool
	TypedInt
	TypedFloat
	TypedString
	TypedEnum
	TypedClass
	TypedList
	TypedMap
	TypedTuple
)

// Typed is a schema-conformant value. Flags holds the degradations applied
// at this node; AllFlags includes the subtree.
type Typed struct {
	Kind  TypedKind
	Bool  bool
	Int   int64
	Float float64
	// Text holds string values and enum variant names.
	Text string
	// Name is the enum or class name.
	Name    string
	Fields  []TypedField
	Items   []*Typed
	Entries []TypedEntry
	Flags   []Flag
}

// TypedField is one class field in declaration order.
type TypedField struct {
	Name     string
	Value    *Typed
	Presence Presence
}

// TypedEntry is one map entry in input order. Key is a String, Int or Enum.
type TypedEntry struct {
	Key   *Typed
	Value *Typed
}

// AllFlags returns the flags of t and its subtree, parents first.
func (t *Typed) AllFlags() []Flag {
	var out []Flag
	t.walk(func(n *Typed) { out = append(out, n.Flags...) })
	return out
}

// Score is the total weight of AllFlags.
func (t *Typed) Score() int { return Score(t.AllFlags()) }

// HasFlag reports whether kind occurs anywhere in t.
func (t *Typed) HasFlag(kind FlagKind) bool {
	found := false
	t.walk(func(n *Typed) {
		for _, f := range n.Flags {
			if f.Kind == kind {
				found = true
			}
		}
	})
	return found
}

func (t *Typed) walk(fn func(*Typed)) {
	if t == nil {
		return
	}
	fn(t)
	for _, f := range t.Fields {
		f.Value.walk(fn)
	}
	for _, it := range t.Items {
		it.walk(fn)
	}
	for _, e := range t.Entries {
		e.Key.walk(fn)
		e.Value.walk(fn)
	}
}

// Field returns the value of the named class field, or nil.
func (t *Typed) Field(name string) *Typed {
	if t == nil {
		return nil
	}
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// Interface converts t into plain Go values: nil, bool, int64, float64,
// string, []any and map[string]any.
func (t *Typed) Interface() any {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TypedBool:
		return t.Bool
	case TypedInt:
		return t.Int
	case TypedFloat:
		return t.Float
	case TypedString, TypedEnum:
		return t.Text
	case TypedClass:
		m := make(map[string]any, len(t.Fields))
		for _, f := range t.Fields {
			m[f.Name] = f.Value.Interface()
		}
		return m
	case TypedList, TypedTuple:
		out := make([]any, len(t.Items))
		for i, it := range t.Items {
			out[i] = it.Interface()
		}
		return out
	case TypedMap:
		m := make(map[string]any, len(t.Entries))
		for _, e := range t.Entries {
			m[e.Key.keyText()] = e.Value.Interface()
		}
		return m
	}
	return nil
}

func (t *Typed) keyText() string {
	if t == nil {
		return ""
	}
	if t.Kind == TypedInt {
		return strconv.FormatInt(t.Int, 10)
	}
	return t.Text
}

// MarshalJSON renders the value with class fields in declaration order and
// map entries in input order. Flags are not part of the output.
func (t *Typed) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *Typed) writeJSON(buf *bytes.Buffer) error {
	if t == nil {
		buf.WriteString("null")
		return nil
	}
	switch t.Kind {
	case TypedNull:
		buf.WriteString("null")
	case TypedBool:
		buf.WriteString(strconv.FormatBool(t.Bool))
	case TypedInt:
		buf.WriteString(strconv.FormatInt(t.Int, 10))
	case TypedFloat:
		b, err := json.Marshal(t.Float)
		if err != nil {
			return err
		}
		buf.Write(b)
	case TypedString, TypedEnum:
		return writeJSONString(buf, t.Text)
	case TypedClass:
		buf.WriteByte('{')
		for i, f := range t.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, f.Name); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := f.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case TypedList, TypedTuple:
		buf.WriteByte('[')
		for i, it := range t.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case TypedMap:
		buf.WriteByte('{')
		for i, e := range t.Entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, e.Key.keyText()); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := e.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("lenient: cannot marshal typed kind %d", t.Kind)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.MarshalNoEscape(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// MarshalYAML returns an ordered yaml.Node so field order survives.
func (t *Typed) MarshalYAML() (any, error) { return t.yamlNode(), nil }

func (t *Typed) yamlNode() *yaml.Node {
	scalar := func(tag, v string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v}
	}
	if t == nil {
		return scalar("!!null", "null")
	}
	switch t.Kind {
	case TypedBool:
		return scalar("!!bool", strconv.FormatBool(t.Bool))
	case TypedInt:
		return scalar("!!int", strconv.FormatInt(t.Int, 10))
	case TypedFloat:
		return scalar("!!float", strconv.FormatFloat(t.Float, 'g', -1, 64))
	case TypedString, TypedEnum:
		return scalar("!!str", t.Text)
	case TypedClass:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range t.Fields {
			n.Content = append(n.Content, scalar("!!str", f.Name), f.Value.yamlNode())
		}
		return n
	case TypedMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range t.Entries {
			n.Content = append(n.Content, scalar("!!str", e.Key.keyText()), e.Value.yamlNode())
		}
		return n
	case TypedList, TypedTuple:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range t.Items {
			n.Content = append(n.Content, it.yamlNode())
		}
		return n
	}
	return scalar("!!null", "null")
}

// Bind decodes t into a Go value of type T through its JSON form.
func Bind[T any](t *Typed) (T, error) {
	var out T
	data, err := t.MarshalJSON()
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("lenient: bind: %w", err)
	}
	return out, nil
}

func (t *Typed) addFlags(flags ...Flag) *Typed {
	t.Flags = append(t.Flags, flags...)
	return t
}

func nullTyped() *Typed { return &Typed{Kind: TypedNull} }
