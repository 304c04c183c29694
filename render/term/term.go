// Package term provides a render.Backend that draws an orthographic XY view
// of every window into a terminal using tcell.
//
// Windows (the at index of a renderable) are laid out side by side; each
// window is scaled to fit the bounds of its renderables.
package term

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"cogentcore.org/core/math32"
	"github.com/gdamore/tcell/v2"
	"github.com/hupe1980/vizsync/render"
)

var _ render.Backend = (*Backend)(nil)

type object struct {
	at  int
	g   render.Geometry
	mat *render.Material
}

// Options configures the terminal backend.
type Options struct {
	// Screen to draw on. A terminal screen is opened when nil.
	Screen tcell.Screen
	// Title is drawn in the first row of every window.
	Title string
}

// Backend is a tcell render.Backend. It is safe for concurrent use.
type Backend struct {
	mu      sync.Mutex
	screen  tcell.Screen
	title   string
	objects map[string]*object
	order   []string
	closed  bool
}

// New initializes the screen and returns a backend drawing on it.
func New(optFns ...func(o *Options)) (*Backend, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	screen := opts.Screen
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, fmt.Errorf("failed to open terminal: %w", err)
		}
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	screen.Clear()

	return &Backend{
		screen:  screen,
		title:   opts.Title,
		objects: make(map[string]*object),
	}, nil
}

// Screen returns the underlying screen, e.g. to poll events.
func (b *Backend) Screen() tcell.Screen { return b.screen }

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
	b.objects[name] = &object{at: at, g: g, mat: mat}
	b.order = append(b.order, name)
	return nil
}

// Update implements render.Backend. Buffers are read on every Render, so
// only the name is checked.
func (b *Backend) Update(name string, _ render.UpdateFlags) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return render.ErrClosed
	}
	if _, ok := b.objects[name]; !ok {
		return fmt.Errorf("%w: %s", render.ErrUnknown, name)
	}
	return nil
}

// Render implements render.Backend.
func (b *Backend) Render() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return render.ErrClosed
	}

	b.screen.Clear()
	width, height := b.screen.Size()

	windows := b.windows()
	if len(windows) > 0 {
		w := width / len(windows)
		for i, at := range windows {
			b.drawWindow(at, viewport{x: i * w, y: 0, w: w, h: height})
		}
	}

	b.screen.Show()
	return nil
}

// Close implements render.Backend.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.screen.Fini()
	return nil
}

func (b *Backend) windows() []int {
	var out []int
	for _, o := range b.objects {
		if !slices.Contains(out, o.at) {
			out = append(out, o.at)
		}
	}
	slices.Sort(out)
	return out
}

func (b *Backend) drawWindow(at int, vp viewport) {
	box := math32.B3Empty()
	var objs []*object
	for _, name := range b.order {
		o := b.objects[name]
		if o.at != at {
			continue
		}
		objs = append(objs, o)
		if gb := o.g.Bounds(); !gb.IsEmpty() {
			box = box.Union(gb)
		}
	}

	label := fmt.Sprintf(" %s[%d] ", b.title, at)
	drawText(b.screen, vp.x+1, vp.y, label, tcell.StyleDefault.Bold(true))

	if box.IsEmpty() {
		return
	}
	p := newProjection(box, vp)
	for _, o := range objs {
		switch g := o.g.(type) {
		case *render.TriangleMesh:
			drawTriangles(b.screen, p, g, o.mat)
		case *render.LineSet:
			drawLines(b.screen, p, g, o.mat)
		case *render.PointCloud:
			drawPoints(b.screen, p, g, o.mat)
		}
	}
}

type viewport struct {
	x, y, w, h int
}

// projection maps world XY into cells of a viewport, keeping aspect ratio.
// Terminal cells are about twice as tall as wide, so X is stretched by two.
type projection struct {
	center       math32.Vector3
	scale        float32
	originCol    int
	originRow    int
	minCol, maxC int
	minRow, maxR int
}

func newProjection(box math32.Box3, vp viewport) projection {
	iw, ih := max(vp.w-2, 1), max(vp.h-2, 1)
	size := box.Size()

	scale := float32(math.MaxFloat32)
	if size.X > 0 {
		scale = min(scale, float32(iw-1)/(2*size.X))
	}
	if size.Y > 0 {
		scale = min(scale, float32(ih-1)/size.Y)
	}
	if scale == math.MaxFloat32 {
		scale = 0
	}

	return projection{
		center:    box.Center(),
		scale:     scale,
		originCol: vp.x + 1 + (iw-1)/2,
		originRow: vp.y + 1 + (ih-1)/2,
		minCol:    vp.x + 1,
		maxC:      vp.x + iw,
		minRow:    vp.y + 1,
		maxR:      vp.y + ih,
	}
}

func (p projection) cell(v math32.Vector3) (int, int) {
	col := p.originCol + int(math32.Round(2*(v.X-p.center.X)*p.scale))
	row := p.originRow - int(math32.Round((v.Y-p.center.Y)*p.scale))
	return col, row
}

func (p projection) inside(col, row int) bool {
	return col >= p.minCol && col <= p.maxC && row >= p.minRow && row <= p.maxR
}
