// Package vizsync records the evolving state of renderable objects and keeps
// a backend renderable in sync with it.
//
// Every object has a type (Mesh, Points, Arrows, Markers or Symbols) and an
// id assigned once by the Factory. Its fields live in a store table named
// after both, e.g. "Mesh_0". Display style per window ("at") lives in the
// shared Visual table and is referenced by the objects that supplied it.
//
// # Quick Start
//
// Live mode drives one actor per object:
//
//	ctx := context.Background()
//	f, _ := vizsync.Open(ctx, vizsync.WithBackend(backend))
//	defer f.Close()
//
//	id, _ := f.AddMesh(ctx, vizsync.Params{
//	    "positions": [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
//	    "cells":     [][]int{{0, 1, 2}},
//	    "colormap":  "viridis",
//	})
//	for step := range 100 {
//	    _ = f.UpdateMesh(ctx, id, vizsync.Params{"positions": deform(step)})
//	    _ = f.Render(ctx)
//	}
//
// Record mode only writes the store; the recording can be replayed later
// with the replay package:
//
//	f, _ := vizsync.Open(ctx,
//	    vizsync.WithMode(vizsync.ModeRecord),
//	    vizsync.WithRecording("./scene.db"),
//	)
//
// # Updates
//
// Update merges only the provided fields. Omitted fields keep their stored
// values, provided fields always overwrite, including empty arrays. Topology
// fields (Mesh cells, Markers indices) are fixed after creation; updates to
// them are ignored.
package vizsync
