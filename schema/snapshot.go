package schema

import (
	"github.com/hupe1980/vizsync/store"
	"github.com/hupe1980/vizsync/vector"
)

// Snapshot is an immutable view of one object's merged state.
type Snapshot struct {
	kind    Kind
	version int
	row     store.Row
}

// NewSnapshot builds the first snapshot of an object from its creation
// fields. Omitted fields take their schema defaults.
func NewSnapshot(k Kind, fields store.Row) Snapshot {
	return Snapshot{kind: k, version: 1, row: store.WithDefaults(Schema(k), fields)}
}

// Kind returns the object type.
func (s Snapshot) Kind() Kind { return s.kind }

// Version is 1 after creation and grows by one per merged update.
func (s Snapshot) Version() int { return s.version }

// Merge returns a new snapshot with the patch fields applied. Fields that
// are fixed after creation are left unchanged.
func (s Snapshot) Merge(p Patch) Snapshot {
	row := s.row.Clone()
	for name, v := range p.Fields {
		if IsImmutable(s.kind, name) {
			continue
		}
		row[name] = v
	}
	return Snapshot{kind: s.kind, version: s.version + 1, row: row}
}

// WithStyleRef returns a snapshot related to the given Visual row.
func (s Snapshot) WithStyleRef(id store.RowID) Snapshot {
	row := s.row.Clone()
	row[VisualFK] = id
	s.row = row
	return s
}

// Has reports whether name holds a value, including defaults.
func (s Snapshot) Has(name string) bool {
	v, ok := s.row[name]
	return ok && v != nil
}

// Row returns a copy of the merged fields.
func (s Snapshot) Row() store.Row { return s.row.Clone() }

// Array returns an array field, or an empty array when unset.
func (s Snapshot) Array(name string) vector.Array {
	a, _ := s.row[name].(vector.Array)
	return a
}

// Scalars returns the scalar field, or an empty array when unset.
func (s Snapshot) Scalars() vector.Array { return s.Array(ScalarField) }

// Float returns a float field.
func (s Snapshot) Float(name string) float64 {
	switch v := s.row[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Int returns an integer field.
func (s Snapshot) Int(name string) int {
	v, _ := s.row[name].(int)
	return v
}

// Bool returns a boolean field.
func (s Snapshot) Bool(name string) bool {
	v, _ := s.row[name].(bool)
	return v
}

// Text returns a text field.
func (s Snapshot) Text(name string) string {
	v, _ := s.row[name].(string)
	return v
}

// StyleRef returns the related Visual row, if any.
func (s Snapshot) StyleRef() (store.RowID, bool) {
	id, ok := s.row[VisualFK].(store.RowID)
	return id, ok && id > 0
}
