package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Render produces the text form of v used when a non-string value must fill
// a string slot. Strings render as their content; everything else as compact
// JSON. Markdown renders its parsed content and Fixed its repaired tree.
func Render(v Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case String:
		return t.V
	case Markdown:
		return Render(t.Inner)
	case Fixed:
		return Render(t.Inner)
	case AnyOf:
		return t.Original
	}
	var b strings.Builder
	writeJSON(&b, v)
	return b.String()
}

// JSON renders v as compact JSON text.
func JSON(v Value) string {
	var b strings.Builder
	writeJSON(&b, v)
	return b.String()
}

func writeJSON(b *strings.Builder, v Value) {
	switch t := v.(type) {
	case nil, Null:
		b.WriteString("null")
	case Bool:
		b.WriteString(strconv.FormatBool(t.V))
	case Number:
		b.WriteString(t.Text)
	case String:
		writeQuoted(b, t.V)
	case Array:
		b.WriteByte('[')
		for i, it := range t.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSON(b, it)
		}
		b.WriteByte(']')
	case Object:
		b.WriteByte('{')
		for i, e := range t.Entries {
			if i > 0 {
				b.WriteByte(',')
			}
			writeQuoted(b, e.Key)
			b.WriteByte(':')
			writeJSON(b, e.Value)
		}
		b.WriteByte('}')
	case Markdown:
		writeJSON(b, t.Inner)
	case Fixed:
		writeJSON(b, t.Inner)
	case AnyOf:
		writeQuoted(b, t.Original)
	}
}

func writeQuoted(b *strings.Builder, s string) {
	q, err := json.MarshalNoEscape(s)
	if err != nil {
		b.WriteString(strconv.Quote(s))
		return
	}
	b.Write(q)
}

// FromAny converts decoded Go data (as produced by YAML or JSON decoders)
// into a loose value. Map keys are sorted for a deterministic order.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case bool:
		return Bool{V: t}, nil
	case string:
		return String{V: t}, nil
	case json.Number:
		return Number{Text: string(t)}, nil
	case int:
		return Number{Text: strconv.Itoa(t)}, nil
	case int64:
		return Number{Text: strconv.FormatInt(t, 10)}, nil
	case uint64:
		return Number{Text: strconv.FormatUint(t, 10)}, nil
	case float64:
		return Number{Text: strconv.FormatFloat(t, 'g', -1, 64)}, nil
	case []any:
		items := make([]Value, 0, len(t))
		for _, it := range t {
			v, err := FromAny(it)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return Array{Items: items}, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			v, err := FromAny(t[k])
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{Key: k, Value: v})
		}
		return Object{Entries: entries}, nil
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, v := range t {
			m[fmt.Sprint(k)] = v
		}
		return FromAny(m)
	default:
		return nil, fmt.Errorf("value: unsupported type %T", x)
	}
}
