package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

var (
	// ErrTableNotFound is returned when a table was never created.
	ErrTableNotFound = errors.New("table not found")
	// ErrTableExists is returned when creating a table twice.
	ErrTableExists = errors.New("table already exists")
	// ErrNoRows is returned when merging onto or reading from an empty table.
	ErrNoRows = errors.New("table has no rows")
	// ErrRowNotFound is returned when a row id does not exist.
	ErrRowNotFound = errors.New("row not found")
	// ErrUnknownField is returned when a row names a field outside the table schema.
	ErrUnknownField = errors.New("unknown field")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store closed")
)

// Kind is the storage kind of a field.
type Kind uint8

const (
	// KindInteger stores int values.
	KindInteger Kind = iota + 1
	// KindFloat stores float64 values.
	KindFloat
	// KindText stores string values.
	KindText
	// KindBoolean stores bool values.
	KindBoolean
	// KindArray stores vector.Array values.
	KindArray
	// KindRelation stores a RowID referencing a row of another table.
	KindRelation
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array"
	case KindRelation:
		return "relation"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Field describes one column of a table.
type Field struct {
	Name string
	Kind Kind
	// Default is used when a row omits the field. Nil means no default.
	Default any
	// Ref names the referenced table for KindRelation fields.
	Ref string
}

// RowID identifies a row within its table. Valid ids start at 1.
type RowID int64

// Row maps field names to values.
//
// Value types by kind: int (integer), float64 (float), string (text),
// bool (boolean), vector.Array (array), RowID (relation).
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Op is the kind of a journal entry.
type Op uint8

const (
	// OpCreateTable records a table creation.
	OpCreateTable Op = iota + 1
	// OpAppend records a new row.
	OpAppend
	// OpUpdate records a merge onto the latest row; Row carries only the
	// fields that were written.
	OpUpdate
	// OpFrame marks the end of a producer frame.
	OpFrame
)

func (o Op) String() string {
	switch o {
	case OpCreateTable:
		return "create-table"
	case OpAppend:
		return "append"
	case OpUpdate:
		return "update"
	case OpFrame:
		return "frame"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// Entry is one journal record.
type Entry struct {
	Seq   uint64
	Op    Op
	Table string
	RowID RowID
	Row   Row
	// Fields is set for OpCreateTable.
	Fields []Field
}

// Store is the Object Store contract.
type Store interface {
	// CreateTable creates a table with an ordered field list.
	CreateTable(ctx context.Context, name string, fields []Field) error
	// Append adds a row and returns its id. Omitted fields take their default.
	Append(ctx context.Context, table string, row Row) (RowID, error)
	// UpdateLatest merges row onto the most recent row of table.
	UpdateLatest(ctx context.Context, table string, row Row) error
	// Latest returns the most recent row of table.
	Latest(ctx context.Context, table string) (RowID, Row, error)
	// Get returns a row by id.
	Get(ctx context.Context, table string, id RowID) (Row, error)
	// MarkFrame appends a frame marker to the journal.
	MarkFrame(ctx context.Context) error
	// Entries yields journal entries with Seq > after, in order.
	Entries(ctx context.Context, after uint64) iter.Seq2[Entry, error]
	// Close releases resources.
	Close() error
}

// Check validates the names and value types of row against fields.
func Check(table string, fields []Field, row Row) error {
	for name, v := range row {
		f, ok := Lookup(fields, name)
		if !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, table, name)
		}
		if err := checkValue(f, v); err != nil {
			return fmt.Errorf("%s.%s: %w", table, name, err)
		}
	}
	return nil
}

// Lookup returns the field called name.
func Lookup(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// WithDefaults returns a copy of row with every omitted field that has a
// default filled in.
func WithDefaults(fields []Field, row Row) Row {
	out := row.Clone()
	for _, f := range fields {
		if _, ok := out[f.Name]; !ok && f.Default != nil {
			out[f.Name] = f.Default
		}
	}
	return out
}
