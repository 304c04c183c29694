package vizsync

import "context"

// AddMesh adds a triangle mesh. Required: positions, cells.
func (f *Factory) AddMesh(ctx context.Context, params Params) (int, error) {
	return f.Add(ctx, Mesh, params)
}

// AddPoints adds a point cloud. Required: positions.
func (f *Factory) AddPoints(ctx context.Context, params Params) (int, error) {
	return f.Add(ctx, Points, params)
}

// AddArrows adds a vector field. Required: positions, vectors.
func (f *Factory) AddArrows(ctx context.Context, params Params) (int, error) {
	return f.Add(ctx, Arrows, params)
}

// AddMarkers adds glyphs on vertices of an existing mesh.
// Required: normal_to (the mesh id), indices.
func (f *Factory) AddMarkers(ctx context.Context, params Params) (int, error) {
	return f.Add(ctx, Markers, params)
}

// AddSymbols adds oriented glyphs. Required: positions, orientations.
func (f *Factory) AddSymbols(ctx context.Context, params Params) (int, error) {
	return f.Add(ctx, Symbols, params)
}

// UpdateMesh updates mesh id.
func (f *Factory) UpdateMesh(ctx context.Context, id int, params Params) error {
	return f.Update(ctx, Mesh, id, params)
}

// UpdatePoints updates point cloud id.
func (f *Factory) UpdatePoints(ctx context.Context, id int, params Params) error {
	return f.Update(ctx, Points, id, params)
}

// UpdateArrows updates vector field id.
func (f *Factory) UpdateArrows(ctx context.Context, id int, params Params) error {
	return f.Update(ctx, Arrows, id, params)
}

// UpdateMarkers updates markers id.
func (f *Factory) UpdateMarkers(ctx context.Context, id int, params Params) error {
	return f.Update(ctx, Markers, id, params)
}

// UpdateSymbols updates symbols id.
func (f *Factory) UpdateSymbols(ctx context.Context, id int, params Params) error {
	return f.Update(ctx, Symbols, id, params)
}
