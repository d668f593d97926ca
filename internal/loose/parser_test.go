package loose

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	eng "github.com/reoring/lenient/internal/engine"
	jsonsrc "github.com/reoring/lenient/source/json"
	"github.com/reoring/lenient/value"
)

func obj(kv ...any) value.Object {
	var o value.Object
	for i := 0; i+1 < len(kv); i += 2 {
		o.Entries = append(o.Entries, value.Entry{Key: kv[i].(string), Value: kv[i+1].(value.Value)})
	}
	return o
}

func num(s string) value.Number { return value.Number{Text: s} }
func str(s string) value.String { return value.String{V: s} }

func TestParse_StrictJSONFirstCandidate(t *testing.T) {
	text := `{"a": 1, "b": ["x", true, null]}`
	got := Parse(text, DefaultOptions())
	want := []value.Value{
		obj("a", num("1"), "b", value.Array{Items: []value.Value{str("x"), value.Bool{V: true}, value.Null{}}}),
		str(text),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_StrictMatchesEncodingJSONDriver(t *testing.T) {
	text := `[1, 2.5, -3e2, {"k": "v", "k": "w"}]`
	opt := DefaultOptions()
	viaGoJSON := Parse(text, opt)
	opt.Tokenize = func(b []byte) eng.TokenSource { return jsonsrc.NewBytes(b) }
	viaStd := Parse(text, opt)
	if diff := cmp.Diff(viaStd, viaGoJSON); diff != "" {
		t.Fatalf("drivers disagree (-encoding/json +go-json):\n%s", diff)
	}
}

func TestParse_MarkdownBlock(t *testing.T) {
	text := "Here you go:\n```json\n{\"a\": 1, \"b\": \"x\"}\n```\nAnything else?"
	got := Parse(text, DefaultOptions())
	want := []value.Value{
		value.Markdown{Lang: "json", Inner: obj("a", num("1"), "b", str("x"))},
		str(text),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_SeveralMarkdownBlocksBecomeAnyOf(t *testing.T) {
	text := "```\n[1]\n```\nor\n```json\n[2]\n```"
	got := Parse(text, DefaultOptions())
	any, ok := got[0].(value.AnyOf)
	if !ok || len(any.Candidates) != 2 {
		t.Fatalf("expected AnyOf with two blocks, got %#v", got[0])
	}
	if md := any.Candidates[1].(value.Markdown); md.Lang != "json" {
		t.Fatalf("expected second block tagged json, got %q", md.Lang)
	}
}

func TestParse_UnterminatedFenceRunsToEnd(t *testing.T) {
	text := "```json\n{\"a\": [1, 2"
	got := Parse(text, DefaultOptions())
	md, ok := got[0].(value.Markdown)
	if !ok {
		t.Fatalf("expected markdown candidate, got %#v", got[0])
	}
	fixed, ok := md.Inner.(value.Fixed)
	if !ok || !fixed.Incomplete {
		t.Fatalf("expected incomplete fixed value inside fence, got %#v", md.Inner)
	}
	want := obj("a", value.Array{Items: []value.Value{num("1"), num("2")}})
	if diff := cmp.Diff(value.Value(want), fixed.Inner); diff != "" {
		t.Fatalf("inner mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_MultipleObjectsInProse(t *testing.T) {
	text := `The first is {"a": 1} and the second is {"b": 2}.`
	got := Parse(text, DefaultOptions())
	want := []value.Value{
		value.AnyOf{Original: text, Candidates: []value.Value{obj("a", num("1")), obj("b", num("2"))}},
		str(text),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_SingleEmbeddedObject(t *testing.T) {
	text := `Sure! {"a": 1}`
	got := Parse(text, DefaultOptions())
	if diff := cmp.Diff(value.Value(obj("a", num("1"))), got[0]); diff != "" {
		t.Fatalf("first candidate mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_FixingPass(t *testing.T) {
	text := `{a: 'x',}`
	got := Parse(text, DefaultOptions())
	fixed, ok := got[0].(value.Fixed)
	if !ok {
		t.Fatalf("expected fixed candidate, got %#v", got[0])
	}
	if diff := cmp.Diff(value.Value(obj("a", str("x"))), fixed.Inner); diff != "" {
		t.Fatalf("inner mismatch (-want +got):\n%s", diff)
	}
	wantRepairs := []string{RepairUnquotedKey, RepairSingleQuotes, RepairTrailingComma}
	if diff := cmp.Diff(wantRepairs, fixed.Repairs); diff != "" {
		t.Fatalf("repairs mismatch (-want +got):\n%s", diff)
	}
	if fixed.Original != text || fixed.Incomplete {
		t.Fatalf("unexpected fixed metadata: %#v", fixed)
	}
}

func TestParse_PlainTextIsOnlyString(t *testing.T) {
	got := Parse("hello", DefaultOptions())
	if diff := cmp.Diff([]value.Value{str("hello")}, got); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_NumberInProse(t *testing.T) {
	got := Parse("The answer is 42.", DefaultOptions())
	if diff := cmp.Diff(value.Value(num("42")), got[0]); diff != "" {
		t.Fatalf("first candidate mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_AsStringDisabledMayReturnNothing(t *testing.T) {
	opt := DefaultOptions()
	opt.AsString = false
	if got := Parse("no structure here", opt); len(got) != 0 {
		t.Fatalf("expected no candidates, got %#v", got)
	}
}

func TestParse_DepthBoundFallsThroughToString(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxDepth = -1
	got := Parse(`{"a":1}`, opt)
	if diff := cmp.Diff([]value.Value{str(`{"a":1}`)}, got); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_NestingLimitRejectsStrict(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxNesting = 1
	opt.Fixing = false
	opt.MultiScan = false
	got := Parse(`{"a":{"b":1}}`, opt)
	if len(got) != 1 {
		t.Fatalf("expected only the raw string, got %#v", got)
	}
}

func TestParse_SeparatorMistakesGoThroughFixing(t *testing.T) {
	cases := []struct {
		text   string
		inner  value.Value
		repair string
	}{
		{`{"a":1,}`, obj("a", num("1")), RepairTrailingComma},
		{`[1,2,]`, value.Array{Items: []value.Value{num("1"), num("2")}}, RepairTrailingComma},
		{`{"a" 1}`, obj("a", num("1")), RepairMissingColon},
	}
	for _, tc := range cases {
		for name, tokenize := range map[string]Tokenizer{
			"go-json":       nil,
			"encoding/json": func(b []byte) eng.TokenSource { return jsonsrc.NewBytes(b) },
		} {
			opt := DefaultOptions()
			opt.Tokenize = tokenize
			got := Parse(tc.text, opt)
			fixed, ok := got[0].(value.Fixed)
			if !ok {
				t.Fatalf("%s %q: expected fixed candidate, got %#v", name, tc.text, got[0])
			}
			if diff := cmp.Diff(tc.inner, fixed.Inner); diff != "" {
				t.Fatalf("%s %q: inner mismatch (-want +got):\n%s", name, tc.text, diff)
			}
			if !slices.Contains(fixed.Repairs, tc.repair) {
				t.Fatalf("%s %q: expected %s in %v", name, tc.text, tc.repair, fixed.Repairs)
			}
		}
	}
}

func TestParse_StrictOnlyRejectsOffGrammarInput(t *testing.T) {
	opt := DefaultOptions()
	opt.Markdown, opt.MultiScan, opt.Fixing, opt.AsString = false, false, false, false
	for _, text := range []string{`[1,2,]`, `{"a" 1}`, `{"a":1 "b":2}`} {
		if got := Parse(text, opt); len(got) != 0 {
			t.Fatalf("%q: strict pass accepted %#v", text, got)
		}
	}
}
