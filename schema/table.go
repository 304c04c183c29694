package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/vizsync/store"
)

// ErrNotCreated is returned when updating a table before Create.
var ErrNotCreated = errors.New("object not created")

// Table binds one object (kind, id) to its store table.
type Table struct {
	kind    Kind
	id      int
	st      store.Store
	snap    Snapshot
	created bool
}

// NewTable returns the table of object id of kind k.
func NewTable(st store.Store, k Kind, id int) *Table {
	return &Table{kind: k, id: id, st: st}
}

// Kind returns the object type.
func (t *Table) Kind() Kind { return t.kind }

// ID returns the object id.
func (t *Table) ID() int { return t.id }

// Name returns the store table name, e.g. "Mesh_0".
func (t *Table) Name() string { return TableName(t.kind, t.id) }

// Create creates the table and appends the object row. A styleRef of zero
// stores no style relation.
func (t *Table) Create(ctx context.Context, p Patch, styleRef store.RowID) (Snapshot, error) {
	if err := t.st.CreateTable(ctx, t.Name(), Schema(t.kind)); err != nil {
		return Snapshot{}, fmt.Errorf("failed to create table %s: %w", t.Name(), err)
	}

	row := p.Fields.Clone()
	if styleRef > 0 {
		row[VisualFK] = styleRef
	}
	if _, err := t.st.Append(ctx, t.Name(), row); err != nil {
		return Snapshot{}, fmt.Errorf("failed to append %s: %w", t.Name(), err)
	}

	t.snap = NewSnapshot(t.kind, row)
	t.created = true
	return t.snap, nil
}

// Update merges the provided fields onto the object row. Fields fixed after
// creation are dropped. A styleRef of zero leaves the relation unchanged.
func (t *Table) Update(ctx context.Context, p Patch, styleRef store.RowID) (Snapshot, error) {
	if !t.created {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotCreated, t.Name())
	}

	row := make(store.Row, len(p.Fields)+1)
	for name, v := range p.Fields {
		if !IsImmutable(t.kind, name) {
			row[name] = v
		}
	}
	if styleRef > 0 {
		row[VisualFK] = styleRef
	}
	if len(row) == 0 {
		return t.snap, nil
	}

	if err := t.st.UpdateLatest(ctx, t.Name(), row); err != nil {
		return Snapshot{}, fmt.Errorf("failed to update %s: %w", t.Name(), err)
	}

	next := t.snap.Merge(Patch{Fields: row})
	t.snap = next
	return next, nil
}

// Snapshot returns the current merged state.
func (t *Table) Snapshot() Snapshot { return t.snap }

// Load reads object id of kind k back from the store.
func Load(ctx context.Context, st store.Store, k Kind, id int) (Snapshot, error) {
	_, row, err := st.Latest(ctx, TableName(k, id))
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(k, row), nil
}
