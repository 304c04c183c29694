package vizsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/vizsync/actor"
	"github.com/hupe1980/vizsync/blobstore"
	"github.com/hupe1980/vizsync/render"
	"github.com/hupe1980/vizsync/render/memory"
	"github.com/hupe1980/vizsync/schema"
	"github.com/hupe1980/vizsync/store"
	"github.com/hupe1980/vizsync/store/memstore"
	"github.com/hupe1980/vizsync/store/sqlite"
)

// Params are producer supplied object fields. See schema.Params.
type Params = schema.Params

// Kind is the object type.
type Kind = schema.Kind

// Object types.
const (
	Mesh    = schema.Mesh
	Points  = schema.Points
	Arrows  = schema.Arrows
	Markers = schema.Markers
	Symbols = schema.Symbols
)

type object struct {
	table    *schema.Table
	styleRef store.RowID
	style    schema.Style
	actor    *actor.Actor
	handle   uint32
	// target is the followed mesh of a Markers object.
	target *object
}

type window struct {
	ref   store.RowID
	style schema.Style
}

// Factory is the entry point for producers. It assigns ids, persists every
// add and update, and in live mode keeps one actor per object.
//
// Factory is safe for concurrent use. Updates of one object must come from
// a single producer to keep their order.
type Factory struct {
	mu sync.Mutex

	opts     options
	st       store.Store
	ownStore bool
	backend  render.Backend
	styles   *schema.Styles

	objects map[schema.Kind]map[int]*object
	nextID  map[schema.Kind]int
	windows map[int]window

	// actors is indexed by handle; handles follow creation order so a
	// followed mesh is flushed before its markers.
	actors    []*actor.Actor
	dirty     *roaring.Bitmap
	followers *roaring.Bitmap

	frames uint64
	closed bool
}

// Open creates a Factory.
func Open(ctx context.Context, optFns ...Option) (*Factory, error) {
	o := applyOptions(optFns)

	if o.store != nil && o.recordingPath != "" {
		return nil, fmt.Errorf("%w: WithStore and WithRecording are exclusive", ErrInvalidOptions)
	}
	if o.blobStore != nil && (o.recordingPath == "" || o.uploadName == "") {
		return nil, fmt.Errorf("%w: WithUpload requires WithRecording and a name", ErrInvalidOptions)
	}

	f := &Factory{
		opts:      o,
		st:        o.store,
		objects:   make(map[schema.Kind]map[int]*object),
		nextID:    make(map[schema.Kind]int),
		windows:   make(map[int]window),
		dirty:     roaring.New(),
		followers: roaring.New(),
	}

	if f.st == nil {
		if o.recordingPath != "" {
			st, err := sqlite.New(o.recordingPath, o.sqliteOptions...)
			if err != nil {
				return nil, fmt.Errorf("failed to open recording: %w", err)
			}
			f.st = st
		} else {
			f.st = memstore.New()
		}
		f.ownStore = true
	}
	f.styles = schema.NewStyles(f.st)

	if o.mode == ModeLive {
		f.backend = o.backend
		if f.backend == nil {
			f.backend = memory.New()
		}
	}

	o.logger.InfoContext(ctx, "factory opened", "mode", o.mode.String(), "recording", o.recordingPath)
	return f, nil
}

// Mode returns the factory mode.
func (f *Factory) Mode() Mode { return f.opts.mode }

// Store returns the object store.
func (f *Factory) Store() store.Store { return f.st }

// Backend returns the rendering backend, nil in record mode.
func (f *Factory) Backend() render.Backend { return f.backend }

// Frames returns the number of rendered frames.
func (f *Factory) Frames() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

// Add creates an object of the given kind and returns its id. Ids start at
// zero and are scoped to the kind.
//
// The object is validated and, in live mode, its actor is built before
// anything is written. A rejected object leaves no row in the store and
// does not use up an id.
func (f *Factory) Add(ctx context.Context, kind schema.Kind, params Params) (id int, err error) {
	start := time.Now()
	defer func() {
		f.opts.metricsCollector.RecordAdd(kind, time.Since(start), err)
		f.opts.logger.LogAdd(ctx, kind, id, err)
	}()

	if !kind.Valid() {
		return 0, &UnsupportedTypeError{Kind: kind}
	}
	p, err := schema.FormatCreate(kind, params)
	if err != nil {
		return 0, err
	}
	if err := checkPatch(p); err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, ErrClosed
	}

	snap := schema.NewSnapshot(kind, p.Fields)
	if err := schema.Validate(snap); err != nil {
		return 0, err
	}

	var target *object
	if kind == schema.Markers {
		if target, err = f.markerTarget(p); err != nil {
			return 0, err
		}
		if err := schema.ValidateTarget(snap, target.table.Snapshot()); err != nil {
			return 0, err
		}
	}

	var (
		plan  *stylePlan
		style = f.windowStyle(schema.DefaultAt)
	)
	if p.HasStyle() {
		sp := f.planStyle(p.Style, schema.DefaultAt)
		plan, style = &sp, sp.style
	}

	next := f.nextID[kind]
	tbl := schema.NewTable(f.st, kind, next)

	var a *actor.Actor
	if f.opts.mode == ModeLive {
		if a, err = f.buildActor(kind, tbl.Name(), snap, style, target); err != nil {
			return 0, err
		}
	}

	var ref store.RowID
	if plan != nil {
		if err := f.storeStyle(ctx, plan); err != nil {
			return 0, err
		}
		f.windows[plan.style.At] = window{ref: plan.ref, style: plan.style}
		ref = plan.ref
	}

	// Once the table write starts the id is taken, even if the write fails.
	f.nextID[kind]++
	if _, err := tbl.Create(ctx, p, ref); err != nil {
		return 0, err
	}

	obj := &object{table: tbl, styleRef: ref, style: style, target: target}
	if a != nil {
		if err := a.Attach(); err != nil {
			return 0, err
		}
		obj.actor, obj.handle = a, f.track(a)
	}

	if f.objects[kind] == nil {
		f.objects[kind] = make(map[int]*object)
	}
	f.objects[kind][next] = obj
	return next, nil
}

// buildActor prepares the actor of a new object without adding it to the
// backend.
func (f *Factory) buildActor(kind schema.Kind, name string, snap schema.Snapshot, style schema.Style, target *object) (*actor.Actor, error) {
	var optFns []actor.Option
	if target != nil {
		optFns = append(optFns, actor.WithTarget(target.actor))
	}
	a, err := actor.New(kind, name, style.At, f.backend, optFns...)
	if err != nil {
		return nil, err
	}
	if err := a.Build(snap, style); err != nil {
		return nil, err
	}
	return a, nil
}

// track assigns the next handle to an attached actor.
func (f *Factory) track(a *actor.Actor) uint32 {
	handle := uint32(len(f.actors))
	f.actors = append(f.actors, a)
	f.dirty.Add(handle)
	if a.Follows() {
		f.followers.Add(handle)
	}
	return handle
}

// Update merges params onto object id of the given kind. Only provided
// fields change. Changes to topology fields are ignored.
//
// The merged state is validated before the store is written; a rejected
// update changes neither the store nor the rendered object.
func (f *Factory) Update(ctx context.Context, kind schema.Kind, id int, params Params) (err error) {
	start := time.Now()
	defer func() {
		f.opts.metricsCollector.RecordUpdate(kind, time.Since(start), err)
		f.opts.logger.LogUpdate(ctx, kind, id, err)
	}()

	p, err := schema.FormatUpdate(kind, params)
	if err != nil {
		return err
	}
	if err := checkPatch(p); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	obj, ok := f.objects[kind][id]
	if !ok {
		return &UnknownObjectError{Kind: kind, ID: id}
	}

	if fixed := p.Immutable(kind); len(fixed) > 0 {
		f.opts.logger.DebugContext(ctx, "ignoring fixed fields on update",
			"kind", kind.String(),
			"id", id,
			"fields", fixed,
		)
	}

	merged := obj.table.Snapshot().Merge(schema.Patch{Fields: p.Fields})
	if err := schema.Validate(merged); err != nil {
		return err
	}
	if kind == schema.Mesh && p.Has(schema.Positions) {
		for _, m := range f.objects[schema.Markers] {
			if m.target != obj {
				continue
			}
			if err := schema.ValidateTarget(m.table.Snapshot(), merged); err != nil {
				return fmt.Errorf("%s: %w", m.table.Name(), err)
			}
		}
	}

	var plan *stylePlan
	style := obj.style
	switch {
	case p.HasStyle():
		sp := f.planStyle(p.Style, obj.style.At)
		plan, style = &sp, sp.style
		if obj.actor != nil && style.At != obj.actor.At() {
			f.opts.logger.DebugContext(ctx, "window change applies to the stored style only",
				"kind", kind.String(),
				"id", id,
				"at", style.At,
			)
		}
	case obj.styleRef == 0:
		style = f.windowStyle(schema.DefaultAt)
	}

	var ref store.RowID
	if plan != nil {
		if err := f.storeStyle(ctx, plan); err != nil {
			return err
		}
		f.windows[plan.style.At] = window{ref: plan.ref, style: plan.style}
		if plan.ref != obj.styleRef {
			ref = plan.ref
		}
	}

	snap, err := obj.table.Update(ctx, p, ref)
	if err != nil {
		return err
	}
	if plan != nil {
		obj.styleRef = plan.ref
	}
	obj.style = style

	if obj.actor == nil {
		return nil
	}
	if err := obj.actor.Update(snap, p, style); err != nil {
		return err
	}
	f.dirty.Add(obj.handle)
	return nil
}

// Render presents one frame. In live mode the actors changed since the last
// frame, and actors following other actors, are flushed to the backend
// before it renders. Every frame is marked in the store journal.
func (f *Factory) Render(ctx context.Context) (err error) {
	start := time.Now()
	flushed := 0

	f.mu.Lock()
	defer f.mu.Unlock()

	defer func() {
		f.opts.metricsCollector.RecordRender(flushed, time.Since(start), err)
		f.opts.logger.LogRender(ctx, f.frames, flushed, err)
	}()

	if f.closed {
		return ErrClosed
	}
	if err := f.st.MarkFrame(ctx); err != nil {
		return fmt.Errorf("failed to mark frame: %w", err)
	}
	f.frames++

	if f.opts.mode == ModeRecord {
		return nil
	}

	pending := roaring.Or(f.dirty, f.followers)
	it := pending.Iterator()
	for it.HasNext() {
		ok, err := f.actors[it.Next()].Flush()
		if err != nil {
			return err
		}
		if ok {
			flushed++
		}
	}
	f.dirty.Clear()

	return f.backend.Render()
}

// Record reads object id of the given kind back from the store.
func (f *Factory) Record(ctx context.Context, kind schema.Kind, id int) (schema.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return schema.Snapshot{}, ErrClosed
	}
	if _, ok := f.objects[kind][id]; !ok {
		return schema.Snapshot{}, &UnknownObjectError{Kind: kind, ID: id}
	}
	return schema.Load(ctx, f.st, kind, id)
}

// Style returns the effective style of an object and whether the object
// holds a style relation.
func (f *Factory) Style(ctx context.Context, kind schema.Kind, id int) (schema.Style, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return schema.Style{}, false, ErrClosed
	}
	obj, ok := f.objects[kind][id]
	if !ok {
		return schema.Style{}, false, &UnknownObjectError{Kind: kind, ID: id}
	}
	if obj.styleRef == 0 {
		return f.windowStyle(schema.DefaultAt), false, nil
	}
	s, err := f.styles.Get(ctx, obj.styleRef)
	return s, true, err
}

// Close releases the backend and the store it owns, then uploads the
// recording when WithUpload was given. Close is idempotent.
func (f *Factory) Close() error {
	if f == nil {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	var firstErr error
	if f.backend != nil {
		if err := f.backend.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if f.ownStore {
		if err := f.st.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil && f.opts.blobStore != nil {
		ctx := context.Background()
		err := blobstore.UploadFile(ctx, f.opts.blobStore, f.opts.uploadName, f.opts.recordingPath)
		f.opts.logger.LogUpload(ctx, f.opts.uploadName, err)
		firstErr = err
	}
	return firstErr
}

// windowStyle returns the current style of window at, or the defaults.
func (f *Factory) windowStyle(at int) schema.Style {
	if w, ok := f.windows[at]; ok {
		return w.style
	}
	return schema.Style{At: at, Colormap: schema.DefaultColormap}
}

// stylePlan is the effective style of an add or update. ref is zero until
// a matching Visual row exists.
type stylePlan struct {
	style schema.Style
	ref   store.RowID
}

// planStyle applies the provided style fields to the current style of
// their window. The window row is reused when the values are equal.
func (f *Factory) planStyle(fields store.Row, at int) stylePlan {
	if v, ok := fields[schema.At].(int); ok {
		at = v
	}
	want := f.windowStyle(at).Apply(fields)
	want.At = at

	if w, ok := f.windows[at]; ok && w.style == want {
		return stylePlan{style: want, ref: w.ref}
	}
	return stylePlan{style: want}
}

// storeStyle appends the Visual row of a plan that has none.
func (f *Factory) storeStyle(ctx context.Context, plan *stylePlan) error {
	if plan.ref > 0 {
		return nil
	}
	ref, err := f.styles.Append(ctx, plan.style)
	if err != nil {
		return err
	}
	plan.ref = ref
	return nil
}

func (f *Factory) markerTarget(p schema.Patch) (*object, error) {
	id, _ := p.Fields[schema.NormalTo].(int)
	obj, ok := f.objects[schema.Mesh][id]
	if !ok {
		return nil, &UnknownObjectError{Kind: schema.Mesh, ID: id}
	}
	return obj, nil
}

// checkPatch resolves the provided color and colormap names.
func checkPatch(p schema.Patch) error {
	if name, ok := p.Style[schema.Colormap].(string); ok {
		if _, err := actor.LookupColormap(name); err != nil {
			return err
		}
	}
	return actor.CheckColor(p)
}
