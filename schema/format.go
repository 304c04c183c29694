package schema

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"

	"github.com/hupe1980/vizsync/internal/conv"
	"github.com/hupe1980/vizsync/store"
	"github.com/hupe1980/vizsync/vector"
)

// Params are producer supplied fields. A key is provided when it is present
// with a non-nil value.
type Params map[string]any

// Patch holds formatted fields. Only provided fields are present.
type Patch struct {
	// Fields are the type specific fields, keyed by field name.
	Fields store.Row
	// Style holds the provided style fields (At, Colormap).
	Style store.Row
}

// Has reports whether the type field name was provided.
func (p Patch) Has(name string) bool {
	_, ok := p.Fields[name]
	return ok
}

// HasStyle reports whether any style field was provided.
func (p Patch) HasStyle() bool { return len(p.Style) > 0 }

// IsEmpty reports whether the patch carries nothing.
func (p Patch) IsEmpty() bool { return len(p.Fields) == 0 && len(p.Style) == 0 }

// Names returns the provided type field names, sorted.
func (p Patch) Names() []string {
	return slices.Sorted(maps.Keys(p.Fields))
}

// Immutable returns the provided fields of k that are fixed after creation.
func (p Patch) Immutable(k Kind) []string {
	var out []string
	for _, name := range p.Names() {
		if IsImmutable(k, name) {
			out = append(out, name)
		}
	}
	return out
}

// FormatCreate formats params for a new object of kind k.
// Every required field must be provided.
func FormatCreate(k Kind, params Params) (Patch, error) {
	p, err := format(k, params)
	if err != nil {
		return Patch{}, err
	}
	for _, name := range Required(k) {
		if !p.Has(name) {
			return Patch{}, &MissingFieldError{Kind: k, Field: name}
		}
	}
	return p, nil
}

// FormatUpdate formats params for an existing object of kind k.
// Fields absent from params are absent from the patch.
func FormatUpdate(k Kind, params Params) (Patch, error) {
	return format(k, params)
}

func format(k Kind, params Params) (Patch, error) {
	if !k.Valid() {
		return Patch{}, fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}

	p := Patch{Fields: store.Row{}, Style: store.Row{}}
	for _, name := range slices.Sorted(maps.Keys(params)) {
		v := params[name]
		if v == nil {
			continue
		}

		switch name {
		case At:
			at, err := toInt(v)
			if err != nil || at < 0 {
				return Patch{}, &FieldError{Kind: k, Field: name, Reason: "window index must be a non-negative integer", cause: err}
			}
			p.Style[At] = at
			continue
		case Colormap:
			s, ok := v.(string)
			if !ok {
				return Patch{}, &FieldError{Kind: k, Field: name, Reason: fmt.Sprintf("expected string, got %T", v)}
			}
			p.Style[Colormap] = s
			continue
		case VisualFK:
			return Patch{}, &FieldError{Kind: k, Field: name, Reason: "style relation is assigned by the factory"}
		}

		fs, ok := lookup(k, name)
		if !ok {
			return Patch{}, &FieldError{Kind: k, Field: name, Reason: "unknown field"}
		}
		val, err := coerce(fs, v)
		if err != nil {
			return Patch{}, &FieldError{Kind: k, Field: name, Reason: "cannot format value", cause: err}
		}
		p.Fields[name] = val
	}
	return p, nil
}

func coerce(fs fieldSpec, v any) (any, error) {
	switch fs.Kind {
	case store.KindArray:
		return coerceArray(fs.role, v)
	case store.KindInteger:
		return toInt(v)
	case store.KindFloat:
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", v)
		}
		return f, nil
	case store.KindBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", v)
		}
		return b, nil
	case store.KindText:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("field kind %s cannot be provided", fs.Kind)
	}
}

func coerceArray(r role, v any) (vector.Array, error) {
	switch r {
	case coords:
		return vector.Normalize(v, true)
	case topology:
		a, err := vector.Normalize(v, false)
		if err != nil {
			return vector.Array{}, err
		}
		if _, err := a.Indices(); err != nil {
			return vector.Array{}, err
		}
		return a, nil
	default: // scalars
		a, err := vector.Normalize(v, false)
		if err != nil {
			return vector.Array{}, err
		}
		switch {
		case a.Width() == 1:
			return a, nil
		case a.Len() <= 1:
			// A flat list of values is one value per element.
			return vector.FromFlat(1, a.Flat())
		default:
			return vector.Array{}, fmt.Errorf("scalar rows must have width 1, got %d", a.Width())
		}
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	}
	return conv.ToFloat64(reflect.ValueOf(v))
}

func toInt(v any) (int, error) {
	if i, ok := v.(int); ok {
		return i, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("expected integer, got %v", f)
	}
	return int(f), nil
}
