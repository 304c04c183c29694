// Package replay plays a recorded object store back through a rendering
// backend, one journal frame at a time.
//
// Entries are read in generation order by a prefetching goroutine and
// applied on the caller's goroutine. Frames are paced to a fixed rate.
// In follow mode the player keeps waiting for new entries written by a
// producer that is still recording.
//
//	st, _ := sqlite.New("./scene.db")
//	p := replay.New(st, backend, func(o *replay.Options) {
//	    o.FPS = 20
//	})
//	stats, err := p.Play(ctx)
package replay
