package lenient

import (
	"strconv"

	"github.com/reoring/lenient/schema"
	"github.com/reoring/lenient/value"
)

// coerceUnion coerces v against every option independently and keeps the
// lowest-scoring success. On object input a successful class option rules
// out the primitive options, and class options win remaining score ties;
// declaration order settles the rest.
func coerceUnion(c Context, u schema.Union, v value.Value) (*Typed, Issues) {
	isObject := v != nil && v.Kind() == value.KindObject
	var ok []candidate
	var prims []bool
	var members Issues
	for i, opt := range u.Options {
		out, iss := coerce(c.branch(opt.String()), opt, v)
		if iss != nil {
			if iss.fatal() {
				return nil, iss
			}
			members = append(members, iss...)
			continue
		}
		ok = append(ok, candidate{typed: out, rank: RankOf(out.AllFlags(), i), class: isClassOption(opt)})
		prims = append(prims, isPrimitiveOption(opt))
	}
	switch len(ok) {
	case 0:
		it := c.path.Issue(CodeUnionExhausted, message(CodeUnionExhausted), "options", u.String())
		it.Cause = members
		return nil, Issues{it}
	case 1:
		return ok[0].typed, nil
	}
	viable := ok
	if isObject && anyClass(ok) {
		// an object only reaches a primitive by being rendered to text
		viable = viable[:0:0]
		for i, cand := range ok {
			if !prims[i] {
				viable = append(viable, cand)
			}
		}
	}
	out := viable[best(viable, isObject)].typed
	if out.Score() > 0 {
		out.addFlags(c.flag(FlagUnionResolved, strconv.Itoa(len(ok)-1)))
	}
	return out, nil
}

func anyClass(cands []candidate) bool {
	for _, cand := range cands {
		if cand.class {
			return true
		}
	}
	return false
}

func isClassOption(t schema.Type) bool {
	_, ok := unwrapOptional(t).(schema.ClassRef)
	return ok
}

func isPrimitiveOption(t schema.Type) bool {
	_, ok := unwrapOptional(t).(schema.Primitive)
	return ok
}

func unwrapOptional(t schema.Type) schema.Type {
	if o, ok := t.(schema.Optional); ok {
		return o.Inner
	}
	return t
}
