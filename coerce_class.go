package lenient

import (
	"github.com/reoring/lenient/schema"
	"github.com/reoring/lenient/value"
)

func coerceClass(c Context, ref schema.ClassRef, v value.Value) (*Typed, Issues) {
	cl, iss := c.Class(ref.Name)
	if iss != nil {
		return nil, iss
	}
	obj, ok := unwrap(v).(value.Object)
	if !ok {
		return impliedClass(c, cl, v)
	}

	out := &Typed{Kind: TypedClass, Name: cl.Name}
	used := make([]bool, len(obj.Entries))
	var errs Issues
	for _, f := range cl.Fields {
		fc := c.field(f.Name)
		idx := matchField(obj, f)
		if len(idx) == 0 {
			tf, iss := missingField(fc, f)
			if iss != nil {
				errs = append(errs, iss...)
				continue
			}
			out.Fields = append(out.Fields, tf)
			continue
		}
		for _, i := range idx {
			used[i] = true
		}
		raw := obj.Entries[idx[0]].Value
		fv, iss := coerce(fc, f.Type, raw)
		if iss != nil {
			errs = append(errs, iss...)
			continue
		}
		if len(idx) > 1 {
			fv.addFlags(fc.flag(FlagDuplicateKey, obj.Entries[idx[0]].Key))
		}
		pres := PresenceSeen
		if unwrap(raw).Kind() == value.KindNull {
			pres |= PresenceWasNull
		}
		out.Fields = append(out.Fields, TypedField{Name: f.Name, Value: fv, Presence: pres})
	}
	if errs != nil {
		return nil, errs
	}
	for i, e := range obj.Entries {
		if !used[i] {
			out.addFlags(flagAt(c.path.Field(e.Key), FlagExtraKey, e.Key))
		}
	}
	return out, nil
}

// matchField returns the entry indexes holding f, trying the declared name,
// then aliases, then case-folded spellings. The first tier with any hit wins.
func matchField(obj value.Object, f schema.Field) []int {
	names := append([]string{f.Name}, f.Aliases...)
	for _, name := range names {
		if idx := entriesWhere(obj, func(k string) bool { return k == name }); len(idx) > 0 {
			return idx
		}
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if k := foldKey(n); k != "" {
			want[k] = true
		}
	}
	return entriesWhere(obj, func(k string) bool { return want[foldKey(k)] })
}

func entriesWhere(obj value.Object, pred func(string) bool) []int {
	var idx []int
	for i, e := range obj.Entries {
		if pred(e.Key) {
			idx = append(idx, i)
		}
	}
	return idx
}

// missingField fills an absent field: declared default, then null for
// optional fields, then null in partial mode.
func missingField(c Context, f schema.Field) (TypedField, Issues) {
	if f.Default != nil {
		dv, err := value.FromAny(f.Default)
		if err == nil {
			fv, iss := coerce(c, f.Type, dv)
			if iss == nil {
				return TypedField{
					Name:     f.Name,
					Value:    fv.addFlags(c.flag(FlagDefaultFromSchema, "")),
					Presence: PresenceDefaultApplied,
				}, nil
			}
			if iss.fatal() {
				return TypedField{}, iss
			}
		}
	}
	if _, ok := f.Type.(schema.Optional); ok {
		return TypedField{Name: f.Name, Value: nullTyped().addFlags(c.flag(FlagMissingNull, ""))}, nil
	}
	if c.Partial() {
		return TypedField{Name: f.Name, Value: nullTyped().addFlags(c.flag(FlagPartialMissing, ""))}, nil
	}
	return TypedField{}, c.fail(CodeRequired, "field", f.Name)
}

// impliedClass builds a single-field class from a bare value.
func impliedClass(c Context, cl *schema.Class, v value.Value) (*Typed, Issues) {
	if len(cl.Fields) != 1 || unwrap(v).Kind() == value.KindNull {
		return nil, c.fail(CodeInvalidType, "expected", cl.Name, "got", value.Describe(unwrap(v)))
	}
	f := cl.Fields[0]
	fc := c.field(f.Name)
	fv, iss := coerce(fc, f.Type, v)
	if iss != nil {
		return nil, iss
	}
	out := &Typed{Kind: TypedClass, Name: cl.Name}
	out.Fields = []TypedField{{Name: f.Name, Value: fv, Presence: PresenceSeen}}
	return out.addFlags(c.flag(FlagImpliedKey, f.Name)), nil
}
