package lenient

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/reoring/lenient/schema"
	"github.com/reoring/lenient/value"
)

func coerceEnum(c Context, ref schema.EnumRef, v value.Value) (*Typed, Issues) {
	e, iss := c.Enum(ref.Name)
	if iss != nil {
		return nil, iss
	}
	text, scalar := enumText(v)
	if scalar {
		if hit, iss := matchEnum(c, e, text); hit != nil || iss != nil {
			return hit, iss
		}
	}
	if e.Default != "" {
		return enumTyped(e, e.Default).addFlags(c.flag(FlagDefaultFromSchema, text)), nil
	}
	return nil, c.fail(CodeInvalidEnum, "enum", e.Name, "got", text)
}

func enumText(v value.Value) (string, bool) {
	switch s := v.(type) {
	case value.String:
		return s.V, true
	case value.Number, value.Bool:
		return value.Render(v), true
	}
	return value.Describe(v), false
}

func enumTyped(e *schema.Enum, variant string) *Typed {
	return &Typed{Kind: TypedEnum, Name: e.Name, Text: variant}
}

// matchEnum tries exact, folded and then whole-word substring matching. It
// returns nil, nil when nothing matches.
func matchEnum(c Context, e *schema.Enum, text string) (*Typed, Issues) {
	trimmed := strings.TrimSpace(text)
	tiers := []struct {
		flag  FlagKind
		match func(spelling string) bool
	}{
		{-1, func(s string) bool { return s == trimmed }},
		{FlagEnumNormalized, func(s string) bool { return foldKey(s) != "" && foldKey(s) == foldKey(trimmed) }},
	}
	for _, tier := range tiers {
		var hits []string
		for _, ev := range e.Values {
			for _, s := range spellings(ev) {
				if tier.match(s) {
					hits = appendUnique(hits, ev.Name)
					break
				}
			}
		}
		switch len(hits) {
		case 0:
			continue
		case 1:
			out := enumTyped(e, hits[0])
			if tier.flag >= 0 {
				out.addFlags(c.flag(tier.flag, text))
			}
			return out, nil
		default:
			return nil, c.fail(CodeAmbiguousEnum, "enum", e.Name, "candidates", hits)
		}
	}

	hits := substringMatches(e, text)
	switch len(hits) {
	case 0:
		return nil, nil
	case 1:
		return enumTyped(e, hits[0]).addFlags(c.flag(FlagEnumFromSubstring, text)), nil
	default:
		return nil, c.fail(CodeAmbiguousEnum, "enum", e.Name, "candidates", hits)
	}
}

func spellings(ev schema.EnumValue) []string {
	return append([]string{ev.Name}, ev.Aliases...)
}

func appendUnique(xs []string, s string) []string {
	for _, x := range xs {
		if x == s {
			return xs
		}
	}
	return append(xs, s)
}

type wordSpan struct {
	variant    string
	start, end int
}

// substringMatches finds variants whose words occur as a contiguous run in
// text. A variant whose every occurrence sits inside a longer match of
// another variant ("good" inside "not good") is discarded.
func substringMatches(e *schema.Enum, text string) []string {
	tw := words(text)
	if len(tw) == 0 {
		return nil
	}
	var spans []wordSpan
	for _, ev := range e.Values {
		for _, s := range spellings(ev) {
			sw := words(s)
			if len(sw) == 0 {
				continue
			}
			for i := 0; i+len(sw) <= len(tw); i++ {
				if equalWords(tw[i:i+len(sw)], sw) {
					spans = append(spans, wordSpan{variant: ev.Name, start: i, end: i + len(sw)})
				}
			}
		}
	}
	var out []string
	for _, s := range spans {
		if !dominated(s, spans) {
			out = appendUnique(out, s.variant)
		}
	}
	return out
}

func dominated(s wordSpan, all []wordSpan) bool {
	for _, o := range all {
		if o.variant == s.variant {
			continue
		}
		if o.start <= s.start && s.end <= o.end && o.end-o.start > s.end-s.start {
			return true
		}
	}
	return false
}

func equalWords(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// fold applies Unicode case folding after NFKD decomposition with
// combining marks removed, so "Café" and "CAFE" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

// foldKey folds s and drops everything but letters and digits.
func foldKey(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, fold(s))
}

// words splits folded s into runs of letters and digits. Case changes
// inside identifiers also split, so "InProgress" reads as "in progress".
func words(s string) []string {
	var out []string
	var cur []rune
	var prev rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, fold(string(cur)))
			cur = cur[:0]
		}
	}
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if unicode.IsUpper(r) && unicode.IsLower(prev) {
				flush()
			}
			cur = append(cur, r)
		default:
			flush()
		}
		prev = r
	}
	flush()
	return out
}
