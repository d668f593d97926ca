package lenient

import "fmt"

// issueAt creates an Issue at the given path with the translated message for
// code and the provided params map.
func issueAt(p PathRef, code string, params map[string]any) Issue {
	return Issue{Path: p.Pointer(), Scope: p.Scope(), Code: code, Message: message(code), Params: params}
}

// issuesAt builds a one-issue Issues at p from key/value params.
func issuesAt(p PathRef, code string, kv ...any) Issues {
	return Issues{issueAt(p, code, kvParams(kv))}
}

// kvParams pairs up alternating keys and values; a dangling key is dropped.
func kvParams(kv []any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return m
}
