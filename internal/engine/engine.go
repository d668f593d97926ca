package engine

import (
	"errors"
	"io"

	"github.com/reoring/lenient/value"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// ErrTrailingData reports tokens after the first complete value.
var ErrTrailingData = errors.New("engine: trailing data after value")

// DecodeValue builds a loose value tree from the token source. Object pairs
// keep input order and duplicate keys.
func DecodeValue(src TokenSource) (value.Value, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	return decodeValue(src, tok)
}

// DecodeSingle is DecodeValue followed by a check that the source holds
// nothing else.
func DecodeSingle(src TokenSource) (value.Value, error) {
	v, err := DecodeValue(src)
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); err == nil {
		return nil, ErrTrailingData
	} else if !errors.Is(err, io.EOF) {
		return nil, err
	}
	return v, nil
}

func decodeValue(src TokenSource, tok Token) (value.Value, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src)
	case KindBeginArray:
		return decodeArray(src)
	case KindString:
		return value.String{V: tok.String}, nil
	case KindNumber:
		return value.Number{Text: tok.Number}, nil
	case KindBool:
		return value.Bool{V: tok.Bool}, nil
	case KindNull:
		return value.Null{}, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func decodeObject(src TokenSource) (value.Value, error) {
	var entries []value.Entry
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, unexpected(err)
		}
		if tok.Kind == KindEndObject {
			return value.Object{Entries: entries}, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, unexpected(err)
		}
		v, err := decodeValue(src, vt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, value.Entry{Key: tok.String, Value: v})
	}
}

func decodeArray(src TokenSource) (value.Value, error) {
	items := []value.Value{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, unexpected(err)
		}
		if tok.Kind == KindEndArray {
			return value.Array{Items: items}, nil
		}
		v, err := decodeValue(src, tok)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
}

// unexpected maps a bare EOF inside a container to io.ErrUnexpectedEOF.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
