package actor

import (
	"fmt"

	"cogentcore.org/core/math32"
	"github.com/hupe1980/vizsync/render"
	"github.com/hupe1980/vizsync/schema"
	"github.com/hupe1980/vizsync/vector"
)

// variant is the per-type implementation behind an Actor.
type variant interface {
	// create builds the geometry from the first snapshot.
	create(snap schema.Snapshot) (render.Geometry, error)
	// update applies the mutable buffers of a patch in place.
	update(snap schema.Snapshot, p schema.Patch) (render.UpdateFlags, error)
	// colorize assigns one color per element.
	colorize(colors []math32.Vector3) error
	// elements is the number of colorable elements.
	elements() int
}

// follower is implemented by variants whose geometry tracks another actor.
type follower interface {
	follow() (render.UpdateFlags, error)
}

type options struct {
	target *Actor
}

// Option configures an Actor.
type Option func(*options)

// WithTarget attaches a Markers actor to the Mesh actor it decorates.
func WithTarget(mesh *Actor) Option {
	return func(o *options) { o.target = mesh }
}

// Actor owns the backend renderable of one object.
//
// An Actor is not safe for concurrent use; one producer drives an object.
type Actor struct {
	kind    schema.Kind
	name    string
	at      int
	backend render.Backend

	v        variant
	geometry render.Geometry
	mat      render.Material
	style    schema.Style
	colored  bool
	built    bool
	created  bool
	pending  render.UpdateFlags
}

// New returns the actor variant for kind. The renderable is added to the
// backend by Create.
func New(kind schema.Kind, name string, at int, backend render.Backend, optFns ...Option) (*Actor, error) {
	var opts options
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &Actor{kind: kind, name: name, at: at, backend: backend}
	switch kind {
	case schema.Mesh:
		a.v = &meshVariant{}
	case schema.Points:
		a.v = &pointsVariant{}
	case schema.Arrows:
		a.v = &arrowsVariant{}
	case schema.Markers:
		a.v = &markersVariant{target: opts.target}
	case schema.Symbols:
		a.v = &symbolsVariant{}
	default:
		return nil, &UnsupportedTypeError{Kind: kind}
	}
	return a, nil
}

// Kind returns the object type.
func (a *Actor) Kind() schema.Kind { return a.kind }

// Name returns the renderable name.
func (a *Actor) Name() string { return a.name }

// At returns the window index.
func (a *Actor) At() int { return a.at }

// Geometry returns the renderable geometry, nil before Create.
func (a *Actor) Geometry() render.Geometry { return a.geometry }

// Material returns a copy of the current material.
func (a *Actor) Material() render.Material { return a.mat }

// Colored reports whether a colormap has been applied.
func (a *Actor) Colored() bool { return a.colored }

// Follows reports whether the actor must be flushed on every frame because
// its geometry tracks another actor.
func (a *Actor) Follows() bool {
	_, ok := a.v.(follower)
	return ok
}

// Create builds the renderable from the first snapshot and adds it to the
// backend.
func (a *Actor) Create(snap schema.Snapshot, style schema.Style) error {
	if err := a.Build(snap, style); err != nil {
		return err
	}
	return a.Attach()
}

// Build prepares geometry and material from the first snapshot without
// touching the backend. A non-empty scalar field is colormapped right away.
// A failed Build leaves the actor unusable.
func (a *Actor) Build(snap schema.Snapshot, style schema.Style) error {
	if a.built {
		return fmt.Errorf("actor %s already created", a.name)
	}
	if err := schema.Validate(snap); err != nil {
		return fmt.Errorf("%s: %w", a.name, err)
	}

	mat, err := newMaterial(snap, a.kind == schema.Mesh && snap.Bool(schema.Wireframe))
	if err != nil {
		return err
	}
	g, err := a.v.create(snap)
	if err != nil {
		return fmt.Errorf("%s: %w", a.name, err)
	}

	a.mat = mat
	a.geometry = g
	a.style = style
	if err := a.ApplyColormap(snap.Scalars(), style.Colormap); err != nil {
		return err
	}
	a.built = true
	return nil
}

// Attach adds a built renderable to the backend.
func (a *Actor) Attach() error {
	switch {
	case !a.built:
		return fmt.Errorf("%w: %s", ErrNotCreated, a.name)
	case a.created:
		return fmt.Errorf("actor %s already attached", a.name)
	}
	if err := a.backend.Add(a.name, a.at, a.geometry, &a.mat); err != nil {
		return fmt.Errorf("failed to add %s to backend: %w", a.name, err)
	}
	a.created = true
	return nil
}

// Update applies a patch whose merged result is snap. Only buffers and
// material fields change; topology and the wireframe representation stay
// as created. The colormap is re-applied when the scalar field or the
// style colormap changed. snap is validated before any buffer changes, so
// a rejected update leaves the actor as it was.
func (a *Actor) Update(snap schema.Snapshot, p schema.Patch, style schema.Style) error {
	if !a.created {
		return fmt.Errorf("%w: %s", ErrNotCreated, a.name)
	}
	if err := schema.Validate(snap); err != nil {
		return fmt.Errorf("%s: %w", a.name, err)
	}
	if _, err := LookupColormap(style.Colormap); err != nil {
		return err
	}
	if err := CheckColor(p); err != nil {
		return err
	}

	n := a.v.elements()
	flags, err := a.v.update(snap, p)
	if err != nil {
		return fmt.Errorf("%s: %w", a.name, err)
	}
	a.pending |= flags

	// Per-element colors without a scalar field cannot follow a new
	// element count.
	if a.colored && snap.Scalars().IsEmpty() && a.v.elements() != n {
		if err := a.uncolor(snap); err != nil {
			return err
		}
	}

	if err := a.updateMaterial(p); err != nil {
		return err
	}

	recolor := p.Has(schema.ScalarField) || style.Colormap != a.style.Colormap
	a.style = style
	if recolor {
		return a.ApplyColormap(snap.Scalars(), style.Colormap)
	}
	return nil
}

// uncolor drops per-element colors and restores the base color of snap.
func (a *Actor) uncolor(snap schema.Snapshot) error {
	rgb, err := ParseColor(snap.Text(schema.Color))
	if err != nil {
		return err
	}
	switch g := a.geometry.(type) {
	case *render.TriangleMesh:
		g.Colors = nil
	case *render.LineSet:
		g.Colors = nil
	case *render.PointCloud:
		g.Colors = nil
	}
	a.mat.BaseColor = baseColor(rgb, a.mat.BaseColor.W)
	a.colored = false
	a.pending |= render.UpdateColors | render.UpdateMaterial
	return nil
}

func (a *Actor) updateMaterial(p schema.Patch) error {
	changed := false
	if c, ok := p.Fields[schema.Color].(string); ok && !a.colored {
		rgb, err := ParseColor(c)
		if err != nil {
			return err
		}
		a.mat.BaseColor = baseColor(rgb, a.mat.BaseColor.W)
		changed = true
	}
	if v, ok := p.Fields[schema.Opacity].(float64); ok {
		a.mat.BaseColor.W = Opacity(v)
		changed = true
	}
	if v, ok := p.Fields[schema.LineWidth].(float64); ok {
		a.mat.LineWidth = float32(v)
		changed = true
	}
	if v, ok := p.Fields[schema.PointSize].(int); ok {
		a.mat.PointSize = float32(v)
		changed = true
	}
	if changed {
		a.pending |= render.UpdateMaterial
	}
	return nil
}

// ApplyColormap colors every element from scalars through the named
// colormap and resets the base color to white at the current opacity.
// An empty scalar field leaves the current colors untouched.
func (a *Actor) ApplyColormap(scalars vector.Array, name string) error {
	colors, err := MapScalars(scalars, name)
	if err != nil {
		return err
	}
	if len(colors) == 0 {
		return nil
	}
	if n := a.v.elements(); len(colors) != n {
		return fmt.Errorf("%w: %s has %d elements, got %d scalars", ErrScalarCount, a.name, n, len(colors))
	}
	if err := a.v.colorize(colors); err != nil {
		return err
	}

	a.mat.BaseColor = baseColor(white, a.mat.BaseColor.W)
	a.colored = true
	a.pending |= render.UpdateColors | render.UpdateMaterial
	return nil
}

// Flush pushes accumulated changes to the backend. It reports whether the
// backend was notified.
func (a *Actor) Flush() (bool, error) {
	if !a.created {
		return false, nil
	}
	if f, ok := a.v.(follower); ok {
		flags, err := f.follow()
		if err != nil {
			return false, fmt.Errorf("%s: %w", a.name, err)
		}
		a.pending |= flags
	}
	if a.pending == 0 {
		return false, nil
	}
	if err := a.backend.Update(a.name, a.pending); err != nil {
		return false, err
	}
	a.pending = 0
	return true, nil
}
