package lenient

import (
	"github.com/reoring/lenient/schema"
	"github.com/reoring/lenient/value"
)

func coerceList(c Context, l schema.List, v value.Value) (*Typed, Issues) {
	arr, ok := v.(value.Array)
	if !ok {
		// a bare value where a list belongs becomes a one-element list
		item, iss := coerce(c.index(0), l.Elem, v)
		if iss != nil {
			return nil, iss
		}
		out := &Typed{Kind: TypedList, Items: []*Typed{item}}
		return out.addFlags(c.flag(FlagSingleToList, value.Describe(v))), nil
	}

	out := &Typed{Kind: TypedList, Items: make([]*Typed, 0, len(arr.Items))}
	var dropped []Flag
	var errs Issues
	for i, it := range arr.Items {
		ic := c.index(i)
		item, iss := coerce(ic, l.Elem, it)
		if iss != nil {
			if iss.fatal() {
				return nil, iss
			}
			errs = append(errs, iss...)
			dropped = append(dropped, ic.flag(FlagArrayItemDropped, iss[0].Code))
			continue
		}
		out.Items = append(out.Items, item)
	}
	if len(arr.Items) > 0 && len(out.Items) == 0 && !c.Partial() {
		return nil, errs
	}
	return out.addFlags(dropped...), nil
}

func coerceTuple(c Context, t schema.Tuple, v value.Value) (*Typed, Issues) {
	arr, ok := v.(value.Array)
	if !ok {
		return nil, c.fail(CodeInvalidType, "expected", t.String(), "got", value.Describe(v))
	}
	if len(arr.Items) != len(t.Items) {
		return nil, c.fail(CodeArity, "expected", len(t.Items), "got", len(arr.Items))
	}
	out := &Typed{Kind: TypedTuple, Items: make([]*Typed, len(t.Items))}
	var errs Issues
	for i, it := range arr.Items {
		item, iss := coerce(c.index(i), t.Items[i], it)
		if iss != nil {
			errs = append(errs, iss...)
			continue
		}
		out.Items[i] = item
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

func coerceMap(c Context, m schema.Map, v value.Value) (*Typed, Issues) {
	obj, ok := v.(value.Object)
	if !ok {
		return nil, c.fail(CodeInvalidType, "expected", m.String(), "got", value.Describe(v))
	}
	out := &Typed{Kind: TypedMap, Entries: make([]TypedEntry, 0, len(obj.Entries))}
	seen := make(map[string]int, len(obj.Entries))
	for _, e := range obj.Entries {
		ec := c.field(e.Key)
		if at, dup := seen[e.Key]; dup {
			out.Entries[at].Value.addFlags(ec.flag(FlagDuplicateKey, e.Key))
			continue
		}
		key, iss := coerce(ec, m.Key, value.String{V: e.Key})
		if iss == nil {
			// object keys are always text; reading an int key from one is not a repair
			key.Flags = withoutKind(key.Flags, FlagStringToNumber)
			var val *Typed
			if val, iss = coerce(ec, m.Value, e.Value); iss == nil {
				seen[e.Key] = len(out.Entries)
				out.Entries = append(out.Entries, TypedEntry{Key: key, Value: val})
				continue
			}
		}
		if iss.fatal() {
			return nil, iss
		}
		out.addFlags(ec.flag(FlagMapEntryDropped, iss[0].Code))
	}
	return out, nil
}

func withoutKind(flags []Flag, kind FlagKind) []Flag {
	out := flags[:0]
	for _, f := range flags {
		if f.Kind != kind {
			out = append(out, f)
		}
	}
	return out
}
