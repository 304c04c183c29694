// Package memory provides a headless render.Backend that keeps every
// renderable in memory. It is used for tests and for live sessions that
// only need the actor state.
package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/hupe1980/vizsync/render"
)

var _ render.Backend = (*Backend)(nil)

// Object is the state of one renderable.
type Object struct {
	Name     string
	At       int
	Geometry render.Geometry
	Material *render.Material
	// Updates counts Update calls; Flags accumulates their flags since the
	// last rendered frame.
	Updates int
	Flags   render.UpdateFlags
}

// Backend is a headless render.Backend. It is safe for concurrent use.
type Backend struct {
	mu      sync.Mutex
	objects map[string]*Object
	order   []string
	frames  int
	closed  bool
}

// New returns an empty backend.
func New() *Backend {
	return &Backend{objects: make(map[string]*Object)}
}

// Add implements render.Backend.
func (b *Backend) Add(name string, at int, g render.Geometry, mat *render.Material) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return render.ErrClosed
	}
	if _, ok := b.objects[name]; ok {
		return fmt.Errorf("%w: %s", render.ErrDuplicate, name)
	}
	b.objects[name] = &Object{Name: name, At: at, Geometry: g, Material: mat}
	b.order = append(b.order, name)
	return nil
}

// Update implements render.Backend.
func (b *Backend) Update(name string, flags render.UpdateFlags) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return render.ErrClosed
	}
	o, ok := b.objects[name]
	if !ok {
		return fmt.Errorf("%w: %s", render.ErrUnknown, name)
	}
	o.Updates++
	o.Flags |= flags
	return nil
}

// Render implements render.Backend.
func (b *Backend) Render() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return render.ErrClosed
	}
	for _, o := range b.objects {
		o.Flags = 0
	}
	b.frames++
	return nil
}

// Close implements render.Backend.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}

// Frames returns the number of rendered frames.
func (b *Backend) Frames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

// Object returns a copy of the named renderable's bookkeeping. Geometry and
// Material still point at the owner's buffers.
func (b *Backend) Object(name string) (Object, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.objects[name]
	if !ok {
		return Object{}, false
	}
	return *o, true
}

// Names returns renderable names in insertion order.
func (b *Backend) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.order)
}

// Closed reports whether Close was called.
func (b *Backend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
