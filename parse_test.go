package lenient_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	lenient "github.com/reoring/lenient"
	"github.com/reoring/lenient/schema"
)

func mustCoerce(t *testing.T, text string, target schema.Type, reg *schema.Registry, opts ...lenient.ParseOpt) *lenient.Typed {
	t.Helper()
	typed, err := lenient.ParseAndCoerce(context.Background(), text, target, reg, opts...)
	if err != nil {
		t.Fatalf("ParseAndCoerce(%q, %s): %v", text, target, err)
	}
	return typed
}

func jsonOf(t *testing.T, typed *lenient.Typed) string {
	t.Helper()
	b, err := typed.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	return string(b)
}

func issuesOf(t *testing.T, err error) lenient.Issues {
	t.Helper()
	iss, ok := lenient.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected Issues, got %v", err)
	}
	return iss
}

func abClass(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	err := reg.AddClass(schema.Class{Name: "AB", Fields: []schema.Field{
		{Name: "a", Type: schema.Int},
		{Name: "b", Type: schema.String},
	}})
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestScenario_OptionalIntFromNumber(t *testing.T) {
	typed := mustCoerce(t, "42", schema.Opt(schema.Int), nil)
	if typed.Kind != lenient.TypedInt || typed.Int != 42 {
		t.Fatalf("expected Int(42), got %+v", typed)
	}
	if flags := typed.AllFlags(); len(flags) != 0 {
		t.Fatalf("expected no flags, got %v", flags)
	}
}

func TestScenario_BareStringIntoList(t *testing.T) {
	typed := mustCoerce(t, "hello", schema.ListOf(schema.String), nil)
	if got := jsonOf(t, typed); got != `["hello"]` {
		t.Fatalf("unexpected value %s", got)
	}
	want := []lenient.Flag{{Kind: lenient.FlagSingleToList, Path: "/", Detail: "string"}}
	if diff := cmp.Diff(want, typed.AllFlags()); diff != "" {
		t.Fatalf("flags mismatch (-want +got):\n%s", diff)
	}
}

func TestScenario_MarkdownClassWithExtraKey(t *testing.T) {
	reg := abClass(t)
	text := "```json\n{\"a\": 1, \"b\": \"x\", \"c\": \"extra\"}\n```"
	typed := mustCoerce(t, text, schema.ClassRef{Name: "AB"}, reg)
	if got := jsonOf(t, typed); got != `{"a":1,"b":"x"}` {
		t.Fatalf("unexpected value %s", got)
	}
	want := []lenient.Flag{{Kind: lenient.FlagExtraKey, Path: "/c", Detail: "c"}}
	if diff := cmp.Diff(want, typed.AllFlags()); diff != "" {
		t.Fatalf("flags mismatch (-want +got):\n%s", diff)
	}
}

func TestScenario_UnionPrefersInt(t *testing.T) {
	target := schema.OneOf(schema.Int, schema.String)
	for _, text := range []string{"5", " 5 "} {
		typed := mustCoerce(t, text, target, nil)
		if typed.Kind != lenient.TypedInt || typed.Int != 5 {
			t.Fatalf("%q: expected Int(5), got %+v", text, typed)
		}
		if typed.Score() != 0 {
			t.Fatalf("%q: expected a flag-free pick, got %v", text, typed.AllFlags())
		}
	}
}

func TestScenario_FixedMapInput(t *testing.T) {
	typed := mustCoerce(t, `{a: 'x',}`, schema.MapOf(schema.String, schema.String), nil)
	if got := jsonOf(t, typed); got != `{"a":"x"}` {
		t.Fatalf("unexpected value %s", got)
	}
	if !typed.HasFlag(lenient.FlagFixedJSON) {
		t.Fatalf("expected a repair flag, got %v", typed.AllFlags())
	}
}

func TestScenario_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "  \n\t"} {
		_, err := lenient.ParseAndCoerce(context.Background(), text, schema.Int, nil)
		iss := issuesOf(t, err)
		if iss[0].Code != lenient.CodeEmptyInput || iss[0].Path != "/" {
			t.Fatalf("%q: expected empty_input at /, got %+v", text, iss[0])
		}
	}
	typed := mustCoerce(t, "", schema.Opt(schema.String), nil)
	if typed.Kind != lenient.TypedNull || len(typed.AllFlags()) != 0 {
		t.Fatalf("expected flag-free null for optional target, got %+v", typed)
	}
}

func TestRoundTrip_ExactShapeHasNoFlags(t *testing.T) {
	reg := schema.NewRegistry()
	mustAdd(t, reg.AddEnum(schema.Enum{Name: "Color", Values: []schema.EnumValue{{Name: "RED"}, {Name: "BLUE"}}}))
	mustAdd(t, reg.AddClass(schema.Class{Name: "Item", Fields: []schema.Field{
		{Name: "id", Type: schema.Int},
		{Name: "price", Type: schema.Float},
		{Name: "ok", Type: schema.Bool},
		{Name: "color", Type: schema.EnumRef{Name: "Color"}},
		{Name: "tags", Type: schema.ListOf(schema.String)},
		{Name: "attrs", Type: schema.MapOf(schema.String, schema.Int)},
		{Name: "pair", Type: schema.Tuple{Items: []schema.Type{schema.Int, schema.String}}},
		{Name: "note", Type: schema.Opt(schema.String)},
		{Name: "any", Type: schema.OneOf(schema.Int, schema.ClassRef{Name: "Item"})},
	}}))
	text := `{"id": 1, "price": 2.5, "ok": true, "color": "RED", "tags": ["a", "b"],
	  "attrs": {"x": 1}, "pair": [7, "seven"], "note": null, "any": 3}`
	typed := mustCoerce(t, text, schema.ClassRef{Name: "Item"}, reg)
	if flags := typed.AllFlags(); len(flags) != 0 {
		t.Fatalf("expected no flags, got %v", flags)
	}
	want := `{"id":1,"price":2.5,"ok":true,"color":"RED","tags":["a","b"],"attrs":{"x":1},"pair":[7,"seven"],"note":null,"any":3}`
	if got := jsonOf(t, typed); got != want {
		t.Fatalf("unexpected value\n got %s\nwant %s", got, want)
	}
}

func mustAdd(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestStringTargetTakesRawText(t *testing.T) {
	text := `Answer: {"a": 1}`
	typed := mustCoerce(t, text, schema.String, nil)
	if typed.Text != text || len(typed.AllFlags()) != 0 {
		t.Fatalf("expected verbatim text without flags, got %q %v", typed.Text, typed.AllFlags())
	}
}

func TestPartialMode_TruncatedObject(t *testing.T) {
	reg := schema.NewRegistry()
	mustAdd(t, reg.AddClass(schema.Class{Name: "Person", Fields: []schema.Field{
		{Name: "name", Type: schema.String},
		{Name: "age", Type: schema.Int},
	}}))
	text := `{"name": "Jo`

	_, err := lenient.ParseAndCoerce(context.Background(), text, schema.ClassRef{Name: "Person"}, reg)
	iss := issuesOf(t, err)
	if iss[0].Code != lenient.CodeRequired || iss[0].Path != "/age" {
		t.Fatalf("expected required at /age, got %+v", iss)
	}

	typed := mustCoerce(t, text, schema.ClassRef{Name: "Person"}, reg, lenient.ParseOpt{AllowPartial: true})
	if got := jsonOf(t, typed); got != `{"name":"Jo","age":null}` {
		t.Fatalf("unexpected value %s", got)
	}
	if !typed.HasFlag(lenient.FlagPartialMissing) || !typed.HasFlag(lenient.FlagFixedJSON) {
		t.Fatalf("expected partial and repair flags, got %v", typed.AllFlags())
	}
}

func TestUnknownTypeReferenceIsProgrammingError(t *testing.T) {
	_, err := lenient.ParseAndCoerce(context.Background(), `{"a": 1}`, schema.ClassRef{Name: "Nope"}, schema.NewRegistry())
	if !errors.Is(err, schema.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	iss := issuesOf(t, err)
	if iss[0].Code != lenient.CodeUnknownTypeRef {
		t.Fatalf("expected unknown_type_ref, got %+v", iss[0])
	}

	// also through a union and an optional, which must not swallow it
	target := schema.Opt(schema.OneOf(schema.Int, schema.ClassRef{Name: "Nope"}))
	_, err = lenient.ParseAndCoerce(context.Background(), `{"a": 1}`, target, schema.NewRegistry())
	if !errors.Is(err, schema.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType through union, got %v", err)
	}
}

func TestUnionExhausted(t *testing.T) {
	_, err := lenient.ParseAndCoerce(context.Background(), "hello", schema.OneOf(schema.Int, schema.Bool), nil)
	iss := issuesOf(t, err)
	if iss[0].Code != lenient.CodeUnionExhausted {
		t.Fatalf("expected union_exhausted, got %+v", iss[0])
	}
	members, ok := lenient.AsIssues(iss[0].Cause)
	if !ok || len(members) != 2 {
		t.Fatalf("expected two member issues, got %v", iss[0].Cause)
	}
	if members[0].Scope != "|int" || members[1].Scope != "|bool" {
		t.Fatalf("expected branch labels in scope, got %q %q", members[0].Scope, members[1].Scope)
	}
}

func TestUnion_ResolvedFlagWhenWinnerDegraded(t *testing.T) {
	// rendering the number as text costs less than rounding it
	target := schema.OneOf(schema.Int, schema.String, schema.Bool)
	typed := mustCoerce(t, "3.5", target, nil)
	if typed.Kind != lenient.TypedString || typed.Text != "3.5" {
		t.Fatalf("expected the number rendered as string, got %+v", typed)
	}
	want := []lenient.Flag{
		{Kind: lenient.FlagJSONToString, Path: "/", Detail: "number"},
		{Kind: lenient.FlagUnionResolved, Path: "/", Detail: "1"},
	}
	if diff := cmp.Diff(want, typed.AllFlags()); diff != "" {
		t.Fatalf("flags mismatch (-want +got):\n%s", diff)
	}

	typed = mustCoerce(t, "3.5", schema.OneOf(schema.Int, schema.Bool), nil)
	if typed.Int != 4 || !typed.HasFlag(lenient.FlagFloatToInt) {
		t.Fatalf("expected rounded int, got %+v %v", typed, typed.AllFlags())
	}
}

func TestUnion_ClassBeatsTextOnObjectInput(t *testing.T) {
	reg := abClass(t)
	target := schema.OneOf(schema.ClassRef{Name: "AB"}, schema.String)
	cases := []struct {
		name  string
		text  string
		json  string
		flags []lenient.Flag
	}{
		{"exact", `{"a": 1, "b": "x"}`, `{"a":1,"b":"x"}`, nil},
		{"extra key", `{"a": 1, "b": "x", "c": "extra"}`, `{"a":1,"b":"x"}`, []lenient.Flag{
			{Kind: lenient.FlagExtraKey, Path: "/c", Detail: "c"},
			{Kind: lenient.FlagUnionResolved, Path: "/", Detail: "1"},
		}},
		{"fenced", "```json\n{\"a\": 1, \"b\": \"x\", \"c\": \"extra\"}\n```", `{"a":1,"b":"x"}`, []lenient.Flag{
			{Kind: lenient.FlagExtraKey, Path: "/c", Detail: "c"},
			{Kind: lenient.FlagUnionResolved, Path: "/", Detail: "1"},
		}},
		{"numeric string", `{"a": "1", "b": "x"}`, `{"a":1,"b":"x"}`, []lenient.Flag{
			{Kind: lenient.FlagStringToNumber, Path: "/a", Detail: "1"},
			{Kind: lenient.FlagUnionResolved, Path: "/", Detail: "1"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			typed := mustCoerce(t, tc.text, target, reg)
			if typed.Kind != lenient.TypedClass {
				t.Fatalf("expected the class option, got %+v", typed)
			}
			if got := jsonOf(t, typed); got != tc.json {
				t.Fatalf("unexpected value %s", got)
			}
			if diff := cmp.Diff(tc.flags, typed.AllFlags()); diff != "" {
				t.Fatalf("flags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRawTextIsLastResort(t *testing.T) {
	reg := abClass(t)
	// no structure at all: the text is the only reading
	typed := mustCoerce(t, "just words", schema.OneOf(schema.ClassRef{Name: "AB"}, schema.String), reg)
	if typed.Kind != lenient.TypedString || typed.Text != "just words" {
		t.Fatalf("expected the raw text, got %+v", typed)
	}
	// structure present: the embedded object wins over the sentence
	typed = mustCoerce(t, `Result: {"a": 2, "b": "y"}`, schema.OneOf(schema.ClassRef{Name: "AB"}, schema.String), reg)
	if got := jsonOf(t, typed); got != `{"a":2,"b":"y"}` {
		t.Fatalf("unexpected value %s", got)
	}
}

func TestStrictPassLeavesSeparatorMistakesToFixing(t *testing.T) {
	for _, text := range []string{`{"a":1,}`, `{"a" 1}`} {
		typed := mustCoerce(t, text, schema.MapOf(schema.String, schema.Int), nil)
		if got := jsonOf(t, typed); got != `{"a":1}` {
			t.Fatalf("%q: unexpected value %s", text, got)
		}
		flags := typed.AllFlags()
		if len(flags) != 1 || flags[0].Kind != lenient.FlagFixedJSON || flags[0].Path != "/" {
			t.Fatalf("%q: expected one repair flag at /, got %v", text, flags)
		}
	}
	typed := mustCoerce(t, `{"a":1,}`, schema.MapOf(schema.String, schema.Int), nil)
	if d := typed.AllFlags()[0].Detail; d != "trailing_comma" {
		t.Fatalf("expected trailing_comma repair, got %q", d)
	}
}

func TestMaxInputBytes(t *testing.T) {
	_, err := lenient.ParseAndCoerce(context.Background(), "12345", schema.Int, nil, lenient.ParseOpt{MaxInputBytes: 4})
	iss := issuesOf(t, err)
	if iss[0].Code != lenient.CodeInputTooLarge || iss[0].Params["got"] != 5 {
		t.Fatalf("expected input_too_large, got %+v", iss[0])
	}
	typed := mustCoerce(t, "1234", schema.Int, nil, lenient.ParseOpt{MaxInputBytes: 4})
	if typed.Int != 1234 {
		t.Fatalf("input at the limit must pass, got %+v", typed)
	}
}

func TestUnion_ClassPreferredOnTie(t *testing.T) {
	reg := schema.NewRegistry()
	mustAdd(t, reg.AddClass(schema.Class{Name: "Box", Fields: []schema.Field{{Name: "v", Type: schema.Opt(schema.Int)}}}))
	// the map option also matches the object exactly; declaration puts it first
	target := schema.OneOf(schema.MapOf(schema.String, schema.Int), schema.ClassRef{Name: "Box"})
	typed := mustCoerce(t, `{"v": 1}`, target, reg)
	if typed.Kind != lenient.TypedClass {
		t.Fatalf("expected the class option, got kind %v", typed.Kind)
	}
	if typed.HasFlag(lenient.FlagUnionResolved) {
		t.Fatalf("flag-free winner must not carry union_resolved: %v", typed.AllFlags())
	}
}

func TestDeterminism_SequentialAndParallelAgree(t *testing.T) {
	reg := abClass(t)
	target := schema.OneOf(schema.ClassRef{Name: "AB"}, schema.ListOf(schema.ClassRef{Name: "AB"}), schema.String)
	text := "Sure!\n{\"a\": \"1\", \"b\": 2} and also {a: 3, b: 'y'}"
	first := mustCoerce(t, text, target, reg)
	for i := 0; i < 20; i++ {
		again := mustCoerce(t, text, target, reg)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
		par := mustCoerce(t, text, target, reg, lenient.ParseOpt{Parallelism: 4})
		if diff := cmp.Diff(first, par); diff != "" {
			t.Fatalf("parallel run %d differs (-seq +par):\n%s", i, diff)
		}
	}
}

func TestBudgetExceeded(t *testing.T) {
	_, err := lenient.ParseAndCoerce(context.Background(), "5", schema.OneOf(schema.Int, schema.String), nil,
		lenient.ParseOpt{MaxEvaluations: 1})
	iss := issuesOf(t, err)
	if !iss.Has(lenient.CodeBudgetExceeded) {
		t.Fatalf("expected budget_exceeded, got %+v", iss)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := lenient.ParseAndCoerce(ctx, `{"a": 1}`, schema.MapOf(schema.String, schema.Int), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLastOptionWins(t *testing.T) {
	_, err := lenient.ParseAndCoerce(context.Background(), "abc", schema.Int, nil,
		lenient.ParseOpt{Lenient: true}, lenient.ParseOpt{})
	if err == nil {
		t.Fatalf("expected the last (strict) option to apply")
	}
	typed := mustCoerce(t, "abc", schema.Int, nil, lenient.ParseOpt{}, lenient.ParseOpt{Lenient: true})
	if typed.Int != 0 || !typed.HasFlag(lenient.FlagDefaultSubstituted) {
		t.Fatalf("expected zero value substitution, got %+v", typed)
	}
}

func TestStrategiesCanBeDisabled(t *testing.T) {
	opt := lenient.ParseOpt{Strategies: lenient.Strategies{NoFixing: true}}
	_, err := lenient.ParseAndCoerce(context.Background(), `{a: 'x',}`, schema.MapOf(schema.String, schema.String), nil, opt)
	if err == nil {
		t.Fatalf("expected failure without the fixing pass")
	}
	cands := lenient.ParseLoose("hello", lenient.ParseOpt{Strategies: lenient.Strategies{NoAsString: true}})
	if len(cands) != 0 {
		t.Fatalf("expected no candidates, got %v", cands)
	}
}

func TestCoerce_PreparsedTree(t *testing.T) {
	cands := lenient.ParseLoose(`[1, 2, 3]`)
	typed, err := lenient.Coerce(context.Background(), schema.ListOf(schema.Int), nil, cands[0])
	if err != nil {
		t.Fatal(err)
	}
	if got := jsonOf(t, typed); got != "[1,2,3]" {
		t.Fatalf("unexpected value %s", got)
	}
	_, err = lenient.Coerce(context.Background(), schema.Int, nil, nil)
	if iss := issuesOf(t, err); iss[0].Code != lenient.CodeEmptyInput {
		t.Fatalf("expected empty_input for absent value, got %+v", iss)
	}
}

func TestJSONDriverSelection(t *testing.T) {
	defer lenient.UseDefaultJSONDriver()
	if name := lenient.CurrentJSONDriver().Name(); name != "go-json" {
		t.Fatalf("unexpected default driver %q", name)
	}
	lenient.SetJSONDriver(lenient.EncodingJSONDriver)
	if name := lenient.CurrentJSONDriver().Name(); name != "encoding/json" {
		t.Fatalf("driver not switched, got %q", name)
	}
	typed := mustCoerce(t, `{"a": [1, 2]}`, schema.MapOf(schema.String, schema.ListOf(schema.Int)), nil)
	if got := jsonOf(t, typed); got != `{"a":[1,2]}` {
		t.Fatalf("unexpected value %s", got)
	}
	lenient.SetJSONDriver(lenient.JSONDriver{})
	if name := lenient.CurrentJSONDriver().Name(); name != "encoding/json" {
		t.Fatalf("zero driver must be ignored, got %q", name)
	}
}

func TestLoggerReceivesSelection(t *testing.T) {
	var buf strings.Builder
	logger := lenient.NewTextLogger(&buf, lenient.LevelDebug)
	mustCoerce(t, "42", schema.Int, nil, lenient.ParseOpt{Logger: logger})
	out := buf.String()
	if !strings.Contains(out, "[DEBUG]") || !strings.Contains(out, "picked candidate 0") || !strings.Contains(out, "target=int") {
		t.Fatalf("unexpected log output:\n%s", out)
	}

	buf.Reset()
	quiet := lenient.NewTextLogger(&buf, lenient.LevelWarn)
	mustCoerce(t, "42", schema.Int, nil, lenient.ParseOpt{Logger: quiet})
	if buf.Len() != 0 {
		t.Fatalf("debug lines leaked at warn level:\n%s", buf.String())
	}
}
