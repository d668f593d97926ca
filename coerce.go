package lenient

import (
	"strings"

	"github.com/reoring/lenient/schema"
	"github.com/reoring/lenient/value"
)

// coerce matches v against t. A nil v means the value is absent.
func coerce(c Context, t schema.Type, v value.Value) (*Typed, Issues) {
	c, iss := c.enter()
	if iss != nil {
		return nil, iss
	}

	switch w := v.(type) {
	case value.Markdown:
		return coerce(c, t, w.Inner)
	case value.Fixed:
		out, iss := coerce(c, t, w.Inner)
		if iss != nil {
			return nil, iss
		}
		return out.addFlags(c.flag(FlagFixedJSON, strings.Join(w.Repairs, ","))), nil
	case value.AnyOf:
		return coerceAnyOf(c, t, w)
	}

	switch tt := t.(type) {
	case schema.Optional:
		return coerceOptional(c, tt, v)
	case schema.Primitive:
		if v == nil && tt.Of != schema.PrimNull {
			return nil, c.fail(CodeRequired, "expected", tt.String())
		}
		return coercePrimitive(c, tt, v)
	case schema.EnumRef:
		if v == nil {
			return nil, c.fail(CodeRequired, "expected", tt.Name)
		}
		return coerceEnum(c, tt, v)
	case schema.ClassRef:
		if v == nil {
			return nil, c.fail(CodeRequired, "expected", tt.Name)
		}
		return coerceClass(c, tt, v)
	case schema.List:
		if v == nil {
			return nil, c.fail(CodeRequired, "expected", tt.String())
		}
		return coerceList(c, tt, v)
	case schema.Map:
		if v == nil {
			return nil, c.fail(CodeRequired, "expected", tt.String())
		}
		return coerceMap(c, tt, v)
	case schema.Tuple:
		if v == nil {
			return nil, c.fail(CodeRequired, "expected", tt.String())
		}
		return coerceTuple(c, tt, v)
	case schema.Union:
		return coerceUnion(c, tt, v)
	}
	return nil, c.fail(CodeInvalidType, "expected", "<nil schema>")
}

// coerceOptional: null or absence is the success path; any other failure
// inside degrades to null unless it is a schema bug or a resource bound.
func coerceOptional(c Context, o schema.Optional, v value.Value) (*Typed, Issues) {
	if v == nil || v.Kind() == value.KindNull {
		return nullTyped(), nil
	}
	out, iss := coerce(c, o.Inner, v)
	if iss == nil {
		return out, nil
	}
	if iss.fatal() {
		return nil, iss
	}
	return nullTyped().addFlags(c.flag(FlagOptionalFallback, iss[0].Code)), nil
}

// coerceAnyOf tries every candidate of an ambiguous span and keeps the best.
// Lists additionally get the candidates gathered as one array.
func coerceAnyOf(c Context, t schema.Type, a value.AnyOf) (*Typed, Issues) {
	cands := a.Candidates
	gathered := -1
	if isListTarget(t) && !anyArray(cands) {
		gathered = len(cands)
		cands = append(append([]value.Value(nil), cands...), value.Array{Items: a.Candidates})
	}
	var ok []candidate
	var first Issues
	for i, cand := range cands {
		out, iss := coerce(c, t, cand)
		if iss != nil {
			if iss.fatal() {
				return nil, iss
			}
			if first == nil {
				first = iss
			}
			continue
		}
		ok = append(ok, candidate{typed: out, rank: RankOf(out.AllFlags(), i)})
	}
	win := best(ok, false)
	if win < 0 {
		return nil, first
	}
	out := ok[win].typed
	if len(ok) > 1 && ok[win].rank.Order != gathered {
		out.addFlags(c.flag(FlagPickedAmbiguous, ""))
	}
	return out, nil
}

func isListTarget(t schema.Type) bool {
	_, ok := unwrapOptional(t).(schema.List)
	return ok
}

func anyArray(vs []value.Value) bool {
	for _, v := range vs {
		if unwrap(v).Kind() == value.KindArray {
			return true
		}
	}
	return false
}

// unwrap strips Markdown and Fixed wrappers.
func unwrap(v value.Value) value.Value {
	for {
		switch w := v.(type) {
		case value.Markdown:
			v = w.Inner
		case value.Fixed:
			v = w.Inner
		default:
			return v
		}
	}
}
