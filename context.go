package lenient

import (
	"context"
	"sync/atomic"

	"github.com/reoring/lenient/schema"
)

// Context is the read-only handle threaded through one top-level coercion:
// registry lookups, environment, the current scope path and mode switches.
// It is a value; descending returns a modified copy.
type Context struct {
	ctx      context.Context
	registry *schema.Registry
	env      map[string]string
	path     PathRef
	partial  bool
	lenient  bool
	depth    int
	maxDepth int
	// budget is shared by every copy derived from one top-level call.
	budget *atomic.Int64
}

func newContext(ctx context.Context, reg *schema.Registry, opt ParseOpt) Context {
	b := &atomic.Int64{}
	b.Store(opt.MaxEvaluations)
	return Context{
		ctx:      ctx,
		registry: reg,
		env:      opt.Env,
		path:     RootPath(),
		partial:  opt.AllowPartial,
		lenient:  opt.Lenient,
		maxDepth: opt.MaxDepth,
		budget:   b,
	}
}

// Class looks up a class definition; a missing name is an unknown_type_ref
// issue wrapping schema.ErrUnknownType.
func (c Context) Class(name string) (*schema.Class, Issues) {
	cl, err := c.registry.Class(name)
	if err != nil {
		return nil, c.unknownType(name, err)
	}
	return cl, nil
}

// Enum looks up an enum definition.
func (c Context) Enum(name string) (*schema.Enum, Issues) {
	e, err := c.registry.Enum(name)
	if err != nil {
		return nil, c.unknownType(name, err)
	}
	return e, nil
}

func (c Context) unknownType(name string, err error) Issues {
	it := c.path.Issue(CodeUnknownTypeRef, message(CodeUnknownTypeRef), "name", name)
	it.Cause = err
	return Issues{it}
}

// Env returns an environment value.
func (c Context) Env(key string) (string, bool) {
	v, ok := c.env[key]
	return v, ok
}

// Path is the current scope.
func (c Context) Path() PathRef { return c.path }

// Partial reports whether truncated input is being tolerated.
func (c Context) Partial() bool { return c.partial }

// Lenient reports whether zero-value substitution is enabled.
func (c Context) Lenient() bool { return c.lenient }

func (c Context) field(name string) Context {
	c.path = c.path.Field(name)
	return c
}

func (c Context) index(i int) Context {
	c.path = c.path.Index(i)
	return c
}

func (c Context) branch(label string) Context {
	c.path = c.path.Branch(label)
	return c
}

// enter accounts for one coerce step: it bounds recursion depth and spends
// from the shared evaluation budget.
func (c Context) enter() (Context, Issues) {
	if c.depth >= c.maxDepth {
		return c, issuesAt(c.path, CodeMaxDepth, "max", c.maxDepth)
	}
	if c.budget.Add(-1) < 0 {
		return c, issuesAt(c.path, CodeBudgetExceeded)
	}
	if c.ctx != nil {
		if err := c.ctx.Err(); err != nil {
			it := c.path.Issue(CodeBudgetExceeded, message(CodeBudgetExceeded))
			it.Cause = err
			return c, Issues{it}
		}
	}
	c.depth++
	return c, nil
}

func (c Context) flag(kind FlagKind, detail string) Flag { return flagAt(c.path, kind, detail) }

func (c Context) fail(code string, kv ...any) Issues { return issuesAt(c.path, code, kv...) }
