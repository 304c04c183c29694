package vizsync_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/vizsync"
	"github.com/hupe1980/vizsync/codec"
	"github.com/hupe1980/vizsync/render/memory"
	"github.com/hupe1980/vizsync/schema"
	"github.com/hupe1980/vizsync/store/sqlite"
)

func Example() {
	ctx := context.Background()
	backend := memory.New()

	f, err := vizsync.Open(ctx, vizsync.WithBackend(backend))
	if err != nil {
		panic(err)
	}
	defer f.Close()

	id, err := f.AddMesh(ctx, vizsync.Params{
		"positions":    [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		"cells":        [][]int{{0, 1, 2}},
		"scalar_field": []float64{0, 0.5, 1},
		"colormap":     "viridis",
	})
	if err != nil {
		panic(err)
	}

	for step := range 3 {
		dz := float64(step) * 0.1
		_ = f.UpdateMesh(ctx, id, vizsync.Params{
			"positions": [][]float64{{0, 0, dz}, {1, 0, dz}, {0, 1, dz}},
		})
		_ = f.Render(ctx)
	}

	snap, _ := f.Record(ctx, vizsync.Mesh, id)
	fmt.Printf("%s z=%.1f frames=%d\n",
		schema.TableName(vizsync.Mesh, id),
		snap.Array(schema.Positions).At(0, 2),
		backend.Frames(),
	)
	// Output: Mesh_0 z=0.2 frames=3
}

func ExampleWithRecording() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "vizsync-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	f, err := vizsync.Open(ctx,
		vizsync.WithMode(vizsync.ModeRecord),
		vizsync.WithRecording(filepath.Join(dir, "scene.db"), func(o *sqlite.Options) {
			o.Compression = codec.CompressionZSTD
		}),
	)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	id, err := f.AddPoints(ctx, vizsync.Params{
		"positions": [][]float64{{0, 0, 0}, {1, 1, 1}},
	})
	if err != nil {
		panic(err)
	}
	_ = f.Render(ctx)

	snap, _ := f.Record(ctx, vizsync.Points, id)
	fmt.Printf("%s points=%d frames=%d\n",
		schema.TableName(vizsync.Points, id),
		snap.Array(schema.Positions).Len(),
		f.Frames(),
	)
	// Output: Points_0 points=2 frames=1
}
