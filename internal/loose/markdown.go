package loose

import (
	"strings"

	"github.com/reoring/lenient/value"
)

const fence = "```"

type block struct {
	lang string
	body string
}

// findFences returns the fenced code blocks in text. A final fence without
// a closing marker runs to the end of input, which is what a truncated
// stream looks like.
func findFences(text string) []block {
	var out []block
	rest := text
	for {
		start := strings.Index(rest, fence)
		if start < 0 {
			return out
		}
		rest = rest[start+len(fence):]
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			// opening fence on the last line: nothing inside yet
			return out
		}
		lang := strings.TrimSpace(rest[:nl])
		rest = rest[nl+1:]
		end := strings.Index(rest, fence)
		if end < 0 {
			out = append(out, block{lang: lang, body: rest})
			return out
		}
		out = append(out, block{lang: lang, body: rest[:end]})
		rest = rest[end+len(fence):]
	}
}

func markdownPass(text string, opt Options, depth int) (value.Value, bool) {
	blocks := findFences(text)
	if len(blocks) == 0 {
		return nil, false
	}
	nested := opt.without(true, false, true)
	var found []value.Value
	for _, b := range blocks {
		cands := parse(b.body, nested, depth+1)
		if len(cands) == 0 {
			continue
		}
		found = append(found, value.Markdown{Lang: b.lang, Inner: cands[0]})
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
