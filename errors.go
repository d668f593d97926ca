package lenient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/lenient/i18n"
)

// Issue codes.
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeInvalidEnum    = "invalid_enum"
	CodeAmbiguousEnum  = "ambiguous_enum"
	CodeArity          = "arity"
	CodeUnionExhausted = "union_exhausted"
	CodeParseError     = "parse_error"
	// CodeEmptyInput is reported at the root. Its segment list is empty, and
	// an empty JSON Pointer renders as "/".
	CodeEmptyInput     = "empty_input"
	// Schema/runtime mismatches rather than data problems.
	CodeUnknownTypeRef = "unknown_type_ref"
	// Resource bounds.
	CodeBudgetExceeded = "budget_exceeded"
	CodeMaxDepth       = "max_depth"
	CodeInputTooLarge  = "input_too_large"
)

// Issue is a single coercion failure.
type Issue struct {
	Path    string // JSON Pointer of the data node (for example: /items/2/price).
	Scope   string // Path including union branch labels, e.g. /items/2|Person/price.
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error; member Issues for union_exhausted.
	// Params carries structured parameters (e.g., {"expected":"int", "got":"string"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of coercion errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes causes so errors.Is(err, schema.ErrUnknownType) works
// through nested union failures.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// Has reports whether any issue carries code.
func (iss Issues) Has(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// appendIssues appends issues to the destination, initializing the slice when
// needed.
func appendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// fatal reports issues no local recovery rule may swallow: schema bugs and
// an exhausted evaluation budget. Hitting max_depth only fails that branch.
func (iss Issues) fatal() bool {
	return iss.Has(CodeUnknownTypeRef) || iss.Has(CodeBudgetExceeded)
}

func singleIssue(code, msg string) Issues {
	return appendIssues(nil, Issue{Path: "/", Scope: "/", Code: code, Message: msg})
}

func message(code string) string { return i18n.T(code, nil) }
