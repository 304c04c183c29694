package schema

import (
	"context"
	"fmt"

	"github.com/hupe1980/vizsync/store"
)

// Style is the effective per-window display style.
type Style struct {
	At       int
	Colormap string
}

// DefaultStyle is used by objects of windows that never defined a style.
func DefaultStyle() Style {
	return Style{At: DefaultAt, Colormap: DefaultColormap}
}

// Apply returns s overridden by the style fields present in fields.
func (s Style) Apply(fields store.Row) Style {
	if at, ok := fields[At].(int); ok {
		s.At = at
	}
	if cm, ok := fields[Colormap].(string); ok {
		s.Colormap = cm
	}
	return s
}

// Row returns the stored representation of s.
func (s Style) Row() store.Row {
	return store.Row{At: s.At, Colormap: s.Colormap}
}

// StyleFromRow reads a Visual row.
func StyleFromRow(row store.Row) Style {
	return DefaultStyle().Apply(row)
}

// Styles persists rows of the shared Visual table.
type Styles struct {
	st      store.Store
	created bool
}

// NewStyles returns a Visual table accessor.
func NewStyles(st store.Store) *Styles {
	return &Styles{st: st}
}

// Append stores s as a new style row. The table is created on first use.
func (s *Styles) Append(ctx context.Context, style Style) (store.RowID, error) {
	if !s.created {
		if err := s.st.CreateTable(ctx, StyleTable, StyleSchema()); err != nil {
			return 0, fmt.Errorf("failed to create style table: %w", err)
		}
		s.created = true
	}
	id, err := s.st.Append(ctx, StyleTable, style.Row())
	if err != nil {
		return 0, fmt.Errorf("failed to append style: %w", err)
	}
	return id, nil
}

// Get reads a stored style row.
func (s *Styles) Get(ctx context.Context, id store.RowID) (Style, error) {
	row, err := s.st.Get(ctx, StyleTable, id)
	if err != nil {
		return Style{}, fmt.Errorf("failed to read style %d: %w", id, err)
	}
	return StyleFromRow(row), nil
}
