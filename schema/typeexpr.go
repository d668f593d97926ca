package schema

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseType reads a type expression:
//
//	string | int | float | bool | null | Name
//	T?  T[]  list<T>  map<K, V>  (T1, T2)  A | B
//
// Names resolve through r; a name r does not define wraps ErrUnknownType.
// Parentheses around a single type without a trailing comma only group.
func ParseType(expr string, r *Registry) (Type, error) {
	p := &typeParser{src: expr, reg: r}
	t, err := p.union()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
	reg *Registry
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("type %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *typeParser) accept(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *typeParser) expect(tok string) error {
	if !p.accept(tok) {
		return p.errorf("expected %q", tok)
	}
	return nil
}

func (p *typeParser) union() (Type, error) {
	first, err := p.postfix()
	if err != nil {
		return nil, err
	}
	opts := []Type{first}
	for p.accept("|") {
		t, err := p.postfix()
		if err != nil {
			return nil, err
		}
		opts = append(opts, t)
	}
	if len(opts) == 1 {
		return first, nil
	}
	return NewUnion(opts...)
}

func (p *typeParser) postfix() (Type, error) {
	t, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept("?"):
			if t, err = NewOptional(t); err != nil {
				return nil, err
			}
		case p.accept("[]"):
			t = List{Elem: t}
		default:
			return t, nil
		}
	}
}

func (p *typeParser) atom() (Type, error) {
	p.skipSpace()
	if p.accept("(") {
		return p.parenthesized()
	}
	name := p.ident()
	if name == "" {
		return nil, p.errorf("expected a type")
	}
	switch name {
	case "string":
		return String, nil
	case "int":
		return Int, nil
	case "float":
		return Float, nil
	case "bool":
		return Bool, nil
	case "null":
		return Null, nil
	case "list":
		if p.accept("<") {
			elem, err := p.union()
			if err != nil {
				return nil, err
			}
			if err := p.expect(">"); err != nil {
				return nil, err
			}
			return List{Elem: elem}, nil
		}
	case "map":
		if p.accept("<") {
			k, err := p.union()
			if err != nil {
				return nil, err
			}
			if err := p.expect(","); err != nil {
				return nil, err
			}
			v, err := p.union()
			if err != nil {
				return nil, err
			}
			if err := p.expect(">"); err != nil {
				return nil, err
			}
			return NewMap(k, v)
		}
	}
	return p.reg.Ref(name)
}

func (p *typeParser) parenthesized() (Type, error) {
	var items []Type
	for {
		t, err := p.union()
		if err != nil {
			return nil, err
		}
		items = append(items, t)
		if !p.accept(",") {
			break
		}
		if p.accept(")") {
			return Tuple{Items: items}, nil
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return Tuple{Items: items}, nil
}

func (p *typeParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if c == '_' || c == '.' || unicode.IsLetter(c) || unicode.IsDigit(c) {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}
