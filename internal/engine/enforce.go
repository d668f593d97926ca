package engine

import "errors"

// ErrMaxDepth reports container nesting beyond EnforceOptions.MaxDepth.
var ErrMaxDepth = errors.New("engine: max depth exceeded")

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	MaxDepth int
}

// WrapWithEnforcement returns a TokenSource that fails once containers nest
// deeper than MaxDepth. A zero limit disables the check.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	if opt.MaxDepth <= 0 {
		return inner
	}
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	depth int
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		e.depth++
		if e.depth > e.opt.MaxDepth {
			return Token{}, ErrMaxDepth
		}
	case KindEndObject, KindEndArray:
		if e.depth > 0 {
			e.depth--
		}
	}
	return tok, nil
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }
