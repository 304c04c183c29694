package replay

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/hupe1980/vizsync"
	"github.com/hupe1980/vizsync/actor"
	"github.com/hupe1980/vizsync/render"
	"github.com/hupe1980/vizsync/schema"
	"github.com/hupe1980/vizsync/store"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultFPS is the playback rate when Options.FPS is zero.
const DefaultFPS = 20

// ErrNoPath is returned in follow mode when the store has no file to watch.
var ErrNoPath = errors.New("follow mode requires a file backed store")

// Options configures a Player.
type Options struct {
	// FPS is the playback rate. Negative disables pacing.
	FPS float64
	// MaxFrames stops playback after that many frames. Zero plays all.
	MaxFrames int
	// Follow keeps waiting for entries after the end of the journal.
	Follow bool
	// IdleTimeout ends follow mode when the recording did not change for
	// that long. Zero waits until the context is done.
	IdleTimeout time.Duration
	// Prefetch is the number of decoded entries buffered ahead.
	Prefetch int
	// Logger receives replay logs.
	Logger *vizsync.Logger
}

// Stats summarizes a playback.
type Stats struct {
	Frames  int
	Entries int
}

type object struct {
	kind   schema.Kind
	snap   schema.Snapshot
	ref    store.RowID
	actor  *actor.Actor
	handle uint32
}

// Player drives actors from the journal of a store.
type Player struct {
	st      store.Store
	backend render.Backend
	opts    Options
	limiter *rate.Limiter

	seq     uint64
	objects map[string]*object
	styles  map[store.RowID]schema.Style
	windows map[int]schema.Style

	actors    []*actor.Actor
	dirty     *roaring.Bitmap
	followers *roaring.Bitmap
}

// New returns a Player reading st and rendering into backend.
func New(st store.Store, backend render.Backend, optFns ...func(o *Options)) *Player {
	opts := Options{
		FPS:      DefaultFPS,
		Prefetch: 64,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = vizsync.NoopLogger()
	}
	if opts.Prefetch <= 0 {
		opts.Prefetch = 1
	}

	limit := rate.Inf
	if opts.FPS > 0 {
		limit = rate.Limit(opts.FPS)
	} else if opts.FPS == 0 {
		limit = rate.Limit(DefaultFPS)
	}

	return &Player{
		st:        st,
		backend:   backend,
		opts:      opts,
		limiter:   rate.NewLimiter(limit, 1),
		objects:   make(map[string]*object),
		styles:    make(map[store.RowID]schema.Style),
		windows:   make(map[int]schema.Style),
		dirty:     roaring.New(),
		followers: roaring.New(),
	}
}

// Seq returns the sequence number of the last applied entry.
func (p *Player) Seq() uint64 { return p.seq }

// Play applies the journal until its end, or in follow mode until the
// context is done or the recording stays idle.
func (p *Player) Play(ctx context.Context) (Stats, error) {
	var stats Stats
	err := p.drain(ctx, &stats)
	if err == nil && p.opts.Follow && !p.done(stats) {
		err = p.follow(ctx, &stats)
	}
	if errors.Is(err, errMaxFrames) {
		err = nil
	}
	p.opts.Logger.LogReplay(ctx, stats.Frames, stats.Entries, err)
	return stats, err
}

var errMaxFrames = errors.New("frame limit reached")

func (p *Player) done(stats Stats) bool {
	return p.opts.MaxFrames > 0 && stats.Frames >= p.opts.MaxFrames
}

// drain applies every entry after the current sequence number.
func (p *Player) drain(ctx context.Context, stats *Stats) error {
	g, gctx := errgroup.WithContext(ctx)
	entries := make(chan store.Entry, p.opts.Prefetch)
	after := p.seq

	g.Go(func() error {
		defer close(entries)
		for e, err := range p.st.Entries(gctx, after) {
			if err != nil {
				return err
			}
			select {
			case entries <- e:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		for e := range entries {
			if err := p.apply(gctx, e); err != nil {
				return fmt.Errorf("entry %d: %w", e.Seq, err)
			}
			p.seq = e.Seq
			stats.Entries++
			if e.Op == store.OpFrame {
				stats.Frames++
				if p.done(*stats) {
					return errMaxFrames
				}
			}
		}
		return nil
	})

	return g.Wait()
}

func (p *Player) follow(ctx context.Context, stats *Stats) error {
	named, ok := p.st.(interface{ Path() string })
	if !ok || named.Path() == "" {
		return ErrNoPath
	}
	path := named.Path()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// SQLite writes the -wal and -shm siblings; watch the directory.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	base := filepath.Base(path)

	// Catch entries written before the watch was in place.
	if err := p.drain(ctx, stats); err != nil {
		return err
	}

	var idle <-chan time.Time
	resetIdle := func() {
		if p.opts.IdleTimeout > 0 {
			idle = time.After(p.opts.IdleTimeout)
		}
	}
	resetIdle()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-idle:
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), base) || !ev.Has(fsnotify.Write) {
				continue
			}
			resetIdle()
			if err := p.drain(ctx, stats); err != nil {
				return err
			}
		}
	}
}

func (p *Player) apply(ctx context.Context, e store.Entry) error {
	switch e.Op {
	case store.OpCreateTable:
		return nil
	case store.OpAppend:
		if e.Table == schema.StyleTable {
			s := schema.StyleFromRow(e.Row)
			p.styles[e.RowID] = s
			p.windows[s.At] = s
			return nil
		}
		return p.create(e)
	case store.OpUpdate:
		return p.update(e)
	case store.OpFrame:
		return p.frame(ctx)
	default:
		return fmt.Errorf("unknown journal op %s", e.Op)
	}
}

func (p *Player) styleOf(row store.Row) (store.RowID, schema.Style) {
	if ref, ok := row[schema.VisualFK].(store.RowID); ok && ref > 0 {
		if s, ok := p.styles[ref]; ok {
			return ref, s
		}
	}
	if s, ok := p.windows[schema.DefaultAt]; ok {
		return 0, s
	}
	return 0, schema.DefaultStyle()
}

func (p *Player) create(e store.Entry) error {
	kind, _, err := schema.ParseTableName(e.Table)
	if err != nil {
		return err
	}

	snap := schema.NewSnapshot(kind, e.Row)
	ref, style := p.styleOf(e.Row)
	obj := &object{kind: kind, snap: snap, ref: ref}

	var optFns []actor.Option
	if kind == schema.Markers {
		target, ok := p.objects[schema.TableName(schema.Mesh, snap.Int(schema.NormalTo))]
		if !ok {
			return fmt.Errorf("%w: %s has no target mesh", actor.ErrNoTarget, e.Table)
		}
		optFns = append(optFns, actor.WithTarget(target.actor))
	}

	a, err := actor.New(kind, e.Table, style.At, p.backend, optFns...)
	if err != nil {
		return err
	}
	if err := a.Create(snap, style); err != nil {
		return err
	}

	obj.actor = a
	obj.handle = uint32(len(p.actors))
	p.actors = append(p.actors, a)
	p.dirty.Add(obj.handle)
	if a.Follows() {
		p.followers.Add(obj.handle)
	}
	p.objects[e.Table] = obj
	return nil
}

func (p *Player) update(e store.Entry) error {
	obj, ok := p.objects[e.Table]
	if !ok {
		return fmt.Errorf("update of unknown table %s", e.Table)
	}

	fields := e.Row.Clone()
	delete(fields, schema.VisualFK)
	patch := schema.Patch{Fields: fields}
	obj.snap = obj.snap.Merge(patch)

	row := e.Row
	if _, ok := row[schema.VisualFK]; !ok && obj.ref > 0 {
		row = store.Row{schema.VisualFK: obj.ref}
	}
	ref, style := p.styleOf(row)
	obj.ref = ref

	if err := obj.actor.Update(obj.snap, patch, style); err != nil {
		return err
	}
	p.dirty.Add(obj.handle)
	return nil
}

func (p *Player) frame(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	pending := roaring.Or(p.dirty, p.followers)
	it := pending.Iterator()
	for it.HasNext() {
		if _, err := p.actors[it.Next()].Flush(); err != nil {
			return err
		}
	}
	p.dirty.Clear()
	return p.backend.Render()
}
