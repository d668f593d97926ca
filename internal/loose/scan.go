package loose

import (
	"strings"

	"github.com/reoring/lenient/value"
)

type span struct{ start, end int }

// scanPass collects every parseable JSON value embedded in text, left to
// right, without overlap.
func scanPass(text string, opt Options, depth int) (value.Value, bool) {
	spans := scanSpans(text, opt.MaxSpans)
	if len(spans) == 0 {
		return nil, false
	}
	if len(spans) == 1 {
		s := spans[0]
		if strings.TrimSpace(text[s.start:s.end]) == strings.TrimSpace(text) {
			// whole input: the fixing pass owns it
			return nil, false
		}
	}
	nested := opt.without(true, true, true)
	var found []value.Value
	for _, s := range spans {
		cands := parse(text[s.start:s.end], nested, depth+1)
		if len(cands) == 0 {
			continue
		}
		found = append(found, cands[0])
	}
	switch len(found) {
	case 0:
		return nil, false
	case 1:
		return found[0], true
	default:
		return value.AnyOf{Original: text, Candidates: found}, true
	}
}

// scanSpans finds candidate value spans. Once a span is taken scanning
// resumes after its end.
func scanSpans(text string, limit int) []span {
	var out []span
	i := 0
	for i < len(text) {
		if limit > 0 && len(out) >= limit {
			break
		}
		end, ok := spanAt(text, i)
		if !ok {
			i++
			continue
		}
		out = append(out, span{start: i, end: end})
		i = end
	}
	return out
}

// spanAt reports the end of a value that could start at i.
func spanAt(text string, i int) (int, bool) {
	c := text[i]
	switch {
	case c == '{' || c == '[':
		return matchBracket(text, i), true
	case c == '"':
		return matchString(text, i)
	case isDigit(c) || (c == '-' && i+1 < len(text) && isDigit(text[i+1])):
		return matchNumber(text, i)
	case c == 't' || c == 'f' || c == 'n':
		for _, lit := range [...]string{"true", "false", "null"} {
			if strings.HasPrefix(text[i:], lit) && wordBoundaryBefore(text, i) && wordBoundaryAfter(text, i+len(lit)) {
				return i + len(lit), true
			}
		}
	}
	return 0, false
}

// matchBracket returns the index after the bracket closing the one at i, or
// len(text) when input ends first. Quotes of either kind are respected.
func matchBracket(text string, i int) int {
	depth := 0
	var quote byte
	for j := i; j < len(text); j++ {
		c := text[j]
		if quote != 0 {
			switch c {
			case '\\':
				j++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return len(text)
}

func matchString(text string, i int) (int, bool) {
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case '"':
			return j + 1, true
		case '\n':
			return 0, false
		}
	}
	return 0, false
}

func matchNumber(text string, i int) (int, bool) {
	if !wordBoundaryBefore(text, i) {
		return 0, false
	}
	j := i
	if text[j] == '-' {
		j++
	}
	for j < len(text) && (isDigit(text[j]) || strings.IndexByte(".eE+-", text[j]) >= 0) {
		j++
	}
	// a sentence-ending period is not part of the number
	for j > i && strings.IndexByte(".eE+-", text[j-1]) >= 0 {
		j--
	}
	if j == i || !wordBoundaryAfter(text, j) {
		return 0, false
	}
	return j, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordByte(c byte) bool {
	return isDigit(c) || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func wordBoundaryBefore(text string, i int) bool {
	return i == 0 || (!isWordByte(text[i-1]) && text[i-1] != '.')
}

func wordBoundaryAfter(text string, j int) bool {
	return j >= len(text) || !isWordByte(text[j])
}
