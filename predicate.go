package litedb

import (
	"fmt"
	"strings"

	"github.com/hupe1980/litedb/field"
	"github.com/hupe1980/litedb/internal/index"
)

// Predicate is a condition on one indexed attribute.
//
// An equality predicate matches records whose attribute equals a value,
// including nil, which matches records where the attribute is null. A range
// predicate matches values within inclusive bounds; a nil bound leaves that
// side open, and an open lower bound also matches nulls.
type Predicate struct {
	field   string
	value   any
	bounds  []any
	isRange bool
}

// Eq returns an equality predicate on attribute name.
func Eq(name string, value any) Predicate {
	return Predicate{field: name, value: value}
}

// Range returns a range predicate on attribute name. Exactly two bounds,
// low and high, are expected; anything else fails at query time with
// ErrInvalidRange.
func Range(name string, bounds ...any) Predicate {
	return Predicate{field: name, bounds: bounds, isRange: true}
}

// Field returns the attribute the predicate applies to.
func (p Predicate) Field() string { return p.field }

// IsRange reports whether p is a range predicate.
func (p Predicate) IsRange() bool { return p.isRange }

func (p Predicate) String() string {
	if !p.isRange {
		return fmt.Sprintf("%s == %v", p.field, p.value)
	}
	parts := make([]string, len(p.bounds))
	for i, b := range p.bounds {
		parts[i] = fmt.Sprint(b)
	}
	return fmt.Sprintf("%s in [%s]", p.field, strings.Join(parts, ", "))
}

func (p Predicate) compile() (index.Predicate, error) {
	ip := index.Predicate{Field: p.field, Range: p.isRange}
	if !p.isRange {
		v, err := p.convert(p.value)
		if err != nil {
			return index.Predicate{}, err
		}
		ip.Value = v
		return ip, nil
	}

	ip.Bounds = make([]field.Value, len(p.bounds))
	for i, b := range p.bounds {
		v, err := p.convert(b)
		if err != nil {
			return index.Predicate{}, err
		}
		ip.Bounds[i] = v
	}
	return ip, nil
}

func (p Predicate) convert(v any) (field.Value, error) {
	fv, err := field.FromAny(v)
	if err != nil {
		return field.Value{}, fmt.Errorf("%w for %q: %w", ErrTypeMismatch, p.field, err)
	}
	return fv, nil
}

func compilePredicates(preds []Predicate) ([]index.Predicate, error) {
	out := make([]index.Predicate, len(preds))
	for i, p := range preds {
		ip, err := p.compile()
		if err != nil {
			return nil, err
		}
		out[i] = ip
	}
	return out, nil
}
