package lenient

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/reoring/lenient/internal/loose"
	"github.com/reoring/lenient/schema"
	"github.com/reoring/lenient/value"
)

// ParseAndCoerce is the primary entry point. It runs the loose parser over
// text, coerces every candidate against target and returns the
// best-ranked result, or the issues of the most structural candidate when
// none coerces.
func ParseAndCoerce(ctx context.Context, text string, target schema.Type, reg *schema.Registry, opts ...ParseOpt) (*Typed, error) {
	opt := pickOpt(opts)
	if target == nil {
		return nil, singleIssue(CodeParseError, "nil target type")
	}
	if strings.TrimSpace(text) == "" {
		return absent(target)
	}
	if opt.MaxInputBytes > 0 && len(text) > opt.MaxInputBytes {
		iss := singleIssue(CodeInputTooLarge, message(CodeInputTooLarge))
		iss[0].Params = map[string]any{"max": opt.MaxInputBytes, "got": len(text)}
		return nil, iss
	}
	cands := loose.Parse(text, looseOptions(opt))
	if len(cands) == 0 {
		return nil, singleIssue(CodeParseError, message(CodeParseError))
	}
	raw := -1
	if !opt.Strategies.NoAsString {
		raw = len(cands) - 1
	}
	return evaluate(ctx, reg, target, cands, raw, opt)
}

// Coerce matches an already parsed loose tree against target. A nil v is
// treated like empty input.
func Coerce(ctx context.Context, target schema.Type, reg *schema.Registry, v value.Value, opts ...ParseOpt) (*Typed, error) {
	opt := pickOpt(opts)
	if target == nil {
		return nil, singleIssue(CodeParseError, "nil target type")
	}
	if v == nil {
		return absent(target)
	}
	return evaluate(ctx, reg, target, []value.Value{v}, -1, opt)
}

// ParseLoose runs only the loose parser.
func ParseLoose(text string, opts ...ParseOpt) []value.Value {
	return loose.Parse(text, looseOptions(pickOpt(opts)))
}

func absent(target schema.Type) (*Typed, error) {
	if _, ok := target.(schema.Optional); ok {
		return nullTyped(), nil
	}
	return nil, singleIssue(CodeEmptyInput, message(CodeEmptyInput))
}

func looseOptions(opt ParseOpt) loose.Options {
	lo := loose.DefaultOptions()
	lo.Strict = !opt.Strategies.NoStrict
	lo.Markdown = !opt.Strategies.NoMarkdown
	lo.MultiScan = !opt.Strategies.NoMultiScan
	lo.Fixing = !opt.Strategies.NoFixing
	lo.AsString = !opt.Strategies.NoAsString
	lo.MaxDepth = opt.MaxParseDepth
	lo.MaxNesting = opt.MaxNesting
	lo.Tokenize = CurrentJSONDriver().newBytes
	return lo
}

type outcome struct {
	typed *Typed
	iss   Issues
}

// evaluate coerces every candidate, concurrently when asked, and picks the
// winner by rank. Results are stored by index so the pick never depends on
// completion order. The raw-text candidate at index raw (-1 for none) only
// competes for bare string targets; otherwise it is used when no structural
// candidate coerces.
func evaluate(ctx context.Context, reg *schema.Registry, target schema.Type, cands []value.Value, raw int, opt ParseOpt) (*Typed, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := opt.Logger.With(map[string]any{"target": target.String()})
	c := newContext(ctx, reg, opt)
	results := make([]outcome, len(cands))

	if opt.Parallelism > 1 && len(cands) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opt.Parallelism)
		for i, v := range cands {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				t, iss := coerce(c, target, v)
				results[i] = outcome{typed: t, iss: iss}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, v := range cands {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			t, iss := coerce(c, target, v)
			results[i] = outcome{typed: t, iss: iss}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	competes := raw < 0 || isStringTarget(target)
	var ok []candidate
	var fallback *candidate
	for i, r := range results {
		if r.iss != nil {
			if r.iss.fatal() {
				log.Warnf("candidate %d aborted: %v", i, r.iss)
				return nil, r.iss
			}
			log.Debugf("candidate %d (%s) failed: %v", i, value.Describe(cands[i]), r.iss)
			continue
		}
		cand := candidate{typed: r.typed, rank: RankOf(r.typed.AllFlags(), i)}
		if i == raw && !competes {
			fallback = &cand
			continue
		}
		ok = append(ok, cand)
	}
	if len(ok) == 0 && fallback != nil {
		log.Debugf("no structural candidate coerced; using the raw text")
		ok = append(ok, *fallback)
	}
	win := best(ok, false)
	if win < 0 {
		return nil, results[0].iss
	}
	w := ok[win]
	log.Debugf("picked candidate %d of %d (score %d)", w.rank.Order, len(cands), w.rank.Score)
	return w.typed, nil
}

// isStringTarget reports whether the raw text is itself a direct answer.
func isStringTarget(t schema.Type) bool {
	p, ok := unwrapOptional(t).(schema.Primitive)
	return ok && p.Of == schema.PrimString
}
