package lenient

import (
	"context"
	"fmt"
	"reflect"

	"github.com/reoring/lenient/schema"
)

// Decoded carries a bound Go value along with the typed tree it came from.
// Flags and presence stay available for diagnostics.
type Decoded[T any] struct {
	Value    T
	Typed    *Typed
	Presence PresenceMap
}

// Flags returns every degradation applied while producing Value.
func (d Decoded[T]) Flags() []Flag { return d.Typed.AllFlags() }

// ParseInto derives the target schema from T (see schema.Reflect), parses
// and coerces text against it and binds the result into T.
func ParseInto[T any](ctx context.Context, text string, opts ...ParseOpt) (Decoded[T], error) {
	var zero Decoded[T]
	reg := schema.NewRegistry()
	target, err := schema.Reflect(reflect.TypeOf((*T)(nil)).Elem(), reg)
	if err != nil {
		return zero, fmt.Errorf("lenient: %w", err)
	}
	typed, err := ParseAndCoerce(ctx, text, target, reg, opts...)
	if err != nil {
		return zero, err
	}
	v, err := Bind[T](typed)
	if err != nil {
		return zero, err
	}
	return Decoded[T]{Value: v, Typed: typed, Presence: typed.Presence()}, nil
}
