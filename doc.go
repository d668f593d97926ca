// Package lenient turns free-form language-model output into values that
// conform to a declared schema.
//
// It provides:
//
// - A loose parser that recovers JSON from markdown fences, surrounding prose,
// several candidate objects and near-miss syntax (internal/loose)
// - Schema-directed coercion that records every bend as a degradation Flag
// - A ranked weight table that picks the least lossy interpretation
// - A stable error model via Issues (JSON Pointer, code, message)
//
// Design policy:
// - Keep only public APIs in the root package; put strategies and token
// decoding under internal/.
// - Schema types live in schema/, the untyped parse tree in value/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	reg, _ := schema.LoadYAML(defs)
//	target, _ := schema.ParseType("Review[]", reg)
//	typed, err := lenient.ParseAndCoerce(ctx, modelOutput, target, reg)
//	for _, f := range typed.AllFlags() { log.Print(f) }
//
//	dec, err := lenient.ParseInto[Review](ctx, modelOutput)
package lenient
