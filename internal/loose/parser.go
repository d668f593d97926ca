// Package loose turns raw model output into loose value candidates without
// consulting any schema. Strategies run from strict to permissive; nested
// invocations only ever disable strategies so recursion terminates.
package loose

import (
	"strings"

	json "github.com/goccy/go-json"

	eng "github.com/reoring/lenient/internal/engine"
	"github.com/reoring/lenient/source/gojson"
	"github.com/reoring/lenient/value"
)

// Tokenizer opens a token source over a byte slice.
type Tokenizer func(b []byte) eng.TokenSource

// Options toggles the individual strategies.
type Options struct {
	Strict    bool
	Markdown  bool
	MultiScan bool
	Fixing    bool
	AsString  bool

	// MaxDepth bounds strategy recursion (markdown -> scan -> fixing).
	MaxDepth int
	// MaxNesting bounds JSON container nesting in the strict pass.
	MaxNesting int
	// MaxSpans caps how many spans the multi-object scan collects.
	MaxSpans int
	// Tokenize is the strict-pass driver; nil means go-json.
	Tokenize Tokenizer
}

// DefaultOptions enables every strategy.
func DefaultOptions() Options {
	return Options{
		Strict:     true,
		Markdown:   true,
		MultiScan:  true,
		Fixing:     true,
		AsString:   true,
		MaxDepth:   8,
		MaxNesting: 256,
		MaxSpans:   32,
	}
}

// Parse returns the candidates for text in order of preference. When
// AsString is enabled the raw text is always the last candidate, so the
// result is never empty in that mode.
func Parse(text string, opt Options) []value.Value {
	if opt.Tokenize == nil {
		opt.Tokenize = gojson.NewBytes
	}
	return parse(text, opt, 0)
}

func parse(text string, opt Options, depth int) []value.Value {
	var out []value.Value
	if depth <= opt.MaxDepth {
		out = structural(text, opt, depth)
	}
	if opt.AsString {
		out = append(out, value.String{V: text})
	}
	return out
}

// structural runs the strategy cascade and stops at the first strategy that
// yields anything.
func structural(text string, opt Options, depth int) []value.Value {
	if opt.Strict {
		if v, ok := strictParse(text, opt); ok {
			return []value.Value{v}
		}
	}
	if opt.Markdown {
		if v, ok := markdownPass(text, opt, depth); ok {
			return []value.Value{v}
		}
	}
	if opt.MultiScan {
		if v, ok := scanPass(text, opt, depth); ok {
			return []value.Value{v}
		}
	}
	if opt.Fixing {
		if v, ok := fixingPass(text, opt); ok {
			return []value.Value{v}
		}
	}
	return nil
}

// without derives the options for a nested call: it may only disable.
func (o Options) without(markdown, scan, asString bool) Options {
	n := o
	if markdown {
		n.Markdown = false
	}
	if scan {
		n.MultiScan = false
	}
	if asString {
		n.AsString = false
	}
	return n
}

func strictParse(text string, opt Options) (value.Value, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil, false
	}
	b := []byte(t)
	// token decoders do not check separators; anything off-grammar belongs
	// to the fixing pass so it carries its repairs
	if !json.Valid(b) {
		return nil, false
	}
	src := eng.WrapWithEnforcement(opt.Tokenize(b), eng.EnforceOptions{MaxDepth: opt.MaxNesting})
	v, err := eng.DecodeSingle(src)
	if err != nil {
		return nil, false
	}
	return v, true
}

func fixingPass(text string, opt Options) (value.Value, bool) {
	if !strings.ContainsAny(text, "{[") {
		return nil, false
	}
	res, ok := Fix(text)
	if !ok {
		return nil, false
	}
	v, ok := strictParse(res.Text, opt)
	if !ok {
		return nil, false
	}
	return value.Fixed{Original: text, Inner: v, Repairs: res.Repairs, Incomplete: res.Incomplete}, true
}
