package schema

import "github.com/hupe1980/vizsync/store"

// Field names.
const (
	Positions      = "positions"
	Cells          = "cells"
	Vectors        = "vectors"
	Orientations   = "orientations"
	Indices        = "indices"
	NormalTo       = "normal_to"
	Wireframe      = "wireframe"
	ComputeNormals = "compute_normals"
	LineWidth      = "line_width"
	PointSize      = "point_size"
	Res            = "res"
	Symbol         = "symbol"
	Size           = "size"
	Filled         = "filled"
	Color          = "color"
	Opacity        = "opacity"
	ScalarField    = "scalar_field"
	VisualFK       = "visual_fk"

	// Style fields live in the shared Visual table.
	At       = "at"
	Colormap = "colormap"
)

// StyleTable is the name of the shared style table.
const StyleTable = "Visual"

// Style defaults.
const (
	DefaultAt       = 0
	DefaultColormap = "jet"
	DefaultColor    = "gold"
)

type role uint8

const (
	plain    role = iota
	coords        // array of 3-wide rows
	topology      // array of indices, immutable after creation
	scalars       // array of single values
	target        // immutable reference to another object
)

type fieldSpec struct {
	store.Field
	role     role
	required bool
}

func newField(name string, kind store.Kind, def any, r role, required bool) fieldSpec {
	return fieldSpec{Field: store.Field{Name: name, Kind: kind, Default: def}, role: r, required: required}
}

// common fields shared by every object type, in column order.
var common = []fieldSpec{
	newField(Color, store.KindText, DefaultColor, plain, false),
	newField(Opacity, store.KindFloat, 1.0, plain, false),
	newField(ScalarField, store.KindArray, nil, scalars, false),
	{Field: store.Field{Name: VisualFK, Kind: store.KindRelation, Ref: StyleTable}},
}

var glyph = []fieldSpec{
	newField(Symbol, store.KindText, "o", plain, false),
	newField(Size, store.KindFloat, 0.1, plain, false),
	newField(Filled, store.KindBoolean, true, plain, false),
}

var fieldsByKind = map[Kind][]fieldSpec{
	Mesh: join([]fieldSpec{
		newField(Positions, store.KindArray, nil, coords, true),
		newField(Cells, store.KindArray, nil, topology, true),
		newField(Wireframe, store.KindBoolean, false, plain, false),
		newField(ComputeNormals, store.KindBoolean, true, plain, false),
		newField(LineWidth, store.KindFloat, 1.0, plain, false),
	}),
	Points: join([]fieldSpec{
		newField(Positions, store.KindArray, nil, coords, true),
		newField(PointSize, store.KindInteger, 4, plain, false),
	}),
	Arrows: join([]fieldSpec{
		newField(Positions, store.KindArray, nil, coords, true),
		newField(Vectors, store.KindArray, nil, coords, true),
		newField(Res, store.KindInteger, 12, plain, false),
	}),
	Markers: join([]fieldSpec{
		newField(NormalTo, store.KindInteger, nil, target, true),
		newField(Indices, store.KindArray, nil, topology, true),
	}, glyph...),
	Symbols: join([]fieldSpec{
		newField(Positions, store.KindArray, nil, coords, true),
		newField(Orientations, store.KindArray, nil, coords, true),
	}, glyph...),
}

func join(head []fieldSpec, extra ...fieldSpec) []fieldSpec {
	out := append(head, extra...)
	return append(out, common...)
}

var styleFields = []store.Field{
	{Name: At, Kind: store.KindInteger, Default: DefaultAt},
	{Name: Colormap, Kind: store.KindText, Default: DefaultColormap},
}

// Schema returns the ordered field list of k, or nil for an unknown kind.
func Schema(k Kind) []store.Field {
	ss, ok := fieldsByKind[k]
	if !ok {
		return nil
	}
	out := make([]store.Field, len(ss))
	for i, s := range ss {
		out[i] = s.Field
	}
	return out
}

// StyleSchema returns the fields of the shared Visual table.
func StyleSchema() []store.Field {
	return append([]store.Field(nil), styleFields...)
}

// Required returns the names of the fields k must be created with.
func Required(k Kind) []string {
	var out []string
	for _, s := range fieldsByKind[k] {
		if s.required {
			out = append(out, s.Name)
		}
	}
	return out
}

// IsImmutable reports whether a field of k is fixed after creation.
func IsImmutable(k Kind, name string) bool {
	s, ok := lookup(k, name)
	return ok && (s.role == topology || s.role == target)
}

func lookup(k Kind, name string) (fieldSpec, bool) {
	for _, s := range fieldsByKind[k] {
		if s.Name == name {
			return s, true
		}
	}
	return fieldSpec{}, false
}
