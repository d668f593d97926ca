package lenient

import (
	"math"
	"strconv"
	"strings"

	"github.com/reoring/lenient/schema"
	"github.com/reoring/lenient/value"
)

func coercePrimitive(c Context, p schema.Primitive, v value.Value) (*Typed, Issues) {
	var (
		out *Typed
		ok  bool
	)
	switch p.Of {
	case schema.PrimString:
		return coerceString(c, v), nil
	case schema.PrimInt:
		out, ok = coerceInt(c, v)
	case schema.PrimFloat:
		out, ok = coerceFloat(c, v)
	case schema.PrimBool:
		out, ok = coerceBool(c, v)
	case schema.PrimNull:
		if v == nil || v.Kind() == value.KindNull {
			return nullTyped(), nil
		}
	}
	if ok {
		return out, nil
	}
	if c.Lenient() && p.Of != schema.PrimNull {
		return zeroTyped(p).addFlags(c.flag(FlagDefaultSubstituted, value.Describe(v))), nil
	}
	return nil, c.fail(CodeInvalidType, "expected", p.String(), "got", value.Describe(v))
}

func zeroTyped(p schema.Primitive) *Typed {
	switch p.Of {
	case schema.PrimInt:
		return &Typed{Kind: TypedInt}
	case schema.PrimFloat:
		return &Typed{Kind: TypedFloat}
	case schema.PrimBool:
		return &Typed{Kind: TypedBool}
	case schema.PrimString:
		return &Typed{Kind: TypedString}
	}
	return nullTyped()
}

// coerceString accepts anything: strings verbatim, everything else rendered.
func coerceString(c Context, v value.Value) *Typed {
	if s, ok := v.(value.String); ok {
		return &Typed{Kind: TypedString, Text: s.V}
	}
	return (&Typed{Kind: TypedString, Text: value.Render(v)}).addFlags(c.flag(FlagJSONToString, value.Describe(v)))
}

func coerceInt(c Context, v value.Value) (*Typed, bool) {
	switch n := v.(type) {
	case value.Number:
		if i, err := n.Int64(); err == nil {
			return &Typed{Kind: TypedInt, Int: i}, true
		}
		f, err := n.Float64()
		if err != nil {
			return nil, false
		}
		return roundToInt(c, f, n.Text)
	case value.String:
		text, ok := numericText(n.V)
		if !ok {
			return nil, false
		}
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return (&Typed{Kind: TypedInt, Int: i}).addFlags(c.flag(FlagStringToNumber, n.V)), true
		}
		f, ok := parseFloatText(text)
		if !ok {
			return nil, false
		}
		out, ok := roundToInt(c, f, n.V)
		if !ok {
			return nil, false
		}
		return out.addFlags(c.flag(FlagStringToNumber, n.V)), true
	}
	return nil, false
}

func roundToInt(c Context, f float64, src string) (*Typed, bool) {
	r := math.Round(f)
	// float64(MaxInt64) is 2^63, which int64 cannot hold
	if math.IsNaN(r) || r >= math.MaxInt64 || r < math.MinInt64 {
		return nil, false
	}
	out := &Typed{Kind: TypedInt, Int: int64(r)}
	if r != f {
		out.addFlags(c.flag(FlagFloatToInt, src))
	}
	return out, true
}

func coerceFloat(c Context, v value.Value) (*Typed, bool) {
	switch n := v.(type) {
	case value.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, false
		}
		return &Typed{Kind: TypedFloat, Float: f}, true
	case value.String:
		text, ok := numericText(n.V)
		if !ok {
			return nil, false
		}
		f, ok := parseFloatText(text)
		if !ok {
			return nil, false
		}
		return (&Typed{Kind: TypedFloat, Float: f}).addFlags(c.flag(FlagStringToNumber, n.V)), true
	}
	return nil, false
}

// numericText trims whitespace, thousands separators and a trailing percent
// sign or currency prefix from s. It fails on anything else non-numeric.
func numericText(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return "", false
	}
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		for i, p := range parts[1:] {
			// 1,234,567.5: every group after the first has three digits
			g := p
			if i == len(parts)-2 {
				g, _, _ = strings.Cut(p, ".")
			}
			if len(g) != 3 {
				return "", false
			}
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	return s, true
}

// parseFloatText parses decimals and simple fractions such as "3/4".
func parseFloatText(s string) (float64, bool) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		a, err1 := strconv.ParseFloat(strings.TrimSpace(num), 64)
		b, err2 := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err1 != nil || err2 != nil || b == 0 {
			return 0, false
		}
		return a / b, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func coerceBool(c Context, v value.Value) (*Typed, bool) {
	switch b := v.(type) {
	case value.Bool:
		return &Typed{Kind: TypedBool, Bool: b.V}, true
	case value.String:
		switch strings.ToLower(strings.TrimSpace(b.V)) {
		case "true":
			return (&Typed{Kind: TypedBool, Bool: true}).addFlags(c.flag(FlagStringToBool, b.V)), true
		case "false":
			return (&Typed{Kind: TypedBool, Bool: false}).addFlags(c.flag(FlagStringToBool, b.V)), true
		}
	}
	return nil, false
}
