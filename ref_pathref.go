package lenient

import (
	"strconv"
	"strings"
)

// PathRef builds JSON Pointer paths in a chain-safe way and creates Issues.
// Branch segments record which union option was being tried; they appear in
// Scope but never in Pointer.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Branch(label string) PathRef
	Pointer() string
	Scope() string
	Issue(code, msg string, kv ...any) Issue
}

// RootPath is the empty path; it renders as "/".
func RootPath() PathRef { return &pathRef{} }

type segment struct {
	text   string
	branch bool
}

type pathRef struct {
	parts []segment
}

func (p *pathRef) with(s segment) PathRef {
	return &pathRef{parts: append(append([]segment{}, p.parts...), s)}
}

func (p *pathRef) Field(name string) PathRef {
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return p.with(segment{text: esc})
}

func (p *pathRef) Index(i int) PathRef { return p.with(segment{text: strconv.Itoa(i)}) }

func (p *pathRef) Branch(label string) PathRef { return p.with(segment{text: label, branch: true}) }

func (p *pathRef) Pointer() string {
	var b strings.Builder
	for _, s := range p.parts {
		if s.branch {
			continue
		}
		b.WriteByte('/')
		b.WriteString(s.text)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

func (p *pathRef) Scope() string {
	var b strings.Builder
	for _, s := range p.parts {
		if s.branch {
			b.WriteByte('|')
		} else {
			b.WriteByte('/')
		}
		b.WriteString(s.text)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

func (p *pathRef) Issue(code, msg string, kv ...any) Issue {
	return Issue{Path: p.Pointer(), Scope: p.Scope(), Code: code, Message: msg, Params: kvParams(kv)}
}

// pointerDepth counts the segments of a JSON Pointer; "/" has none.
func pointerDepth(p string) int {
	if p == "" || p == "/" {
		return 0
	}
	return strings.Count(p, "/")
}
