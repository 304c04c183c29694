// Package memstore provides an in-memory store.Store used for live sessions
// and tests.
package memstore

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/hupe1980/vizsync/store"
)

var _ store.Store = (*Store)(nil)

type table struct {
	fields []store.Field
	rows   []store.Row
}

// Store is an in-memory implementation of store.Store.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	tables  map[string]*table
	journal []store.Entry
	seq     uint64
	closed  bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		tables: make(map[string]*table),
	}
}

// CreateTable implements store.Store.
func (s *Store) CreateTable(_ context.Context, name string, fields []store.Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	if _, ok := s.tables[name]; ok {
		return fmt.Errorf("%w: %s", store.ErrTableExists, name)
	}

	s.tables[name] = &table{fields: slices.Clone(fields)}
	s.record(store.Entry{Op: store.OpCreateTable, Table: name, Fields: slices.Clone(fields)})
	return nil
}

// Append implements store.Store.
func (s *Store) Append(_ context.Context, name string, row store.Row) (store.RowID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(name)
	if err != nil {
		return 0, err
	}
	if err := store.Check(name, t.fields, row); err != nil {
		return 0, err
	}

	t.rows = append(t.rows, store.WithDefaults(t.fields, row))
	id := store.RowID(len(t.rows))
	s.record(store.Entry{Op: store.OpAppend, Table: name, RowID: id, Row: row.Clone()})
	return id, nil
}

// UpdateLatest implements store.Store.
func (s *Store) UpdateLatest(_ context.Context, name string, row store.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(name)
	if err != nil {
		return err
	}
	if len(t.rows) == 0 {
		return fmt.Errorf("%w: %s", store.ErrNoRows, name)
	}
	if err := store.Check(name, t.fields, row); err != nil {
		return err
	}

	last := len(t.rows) - 1
	merged := t.rows[last].Clone()
	for k, v := range row {
		merged[k] = v
	}
	t.rows[last] = merged
	s.record(store.Entry{Op: store.OpUpdate, Table: name, RowID: store.RowID(last + 1), Row: row.Clone()})
	return nil
}

// Latest implements store.Store.
func (s *Store) Latest(_ context.Context, name string) (store.RowID, store.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(name)
	if err != nil {
		return 0, nil, err
	}
	if len(t.rows) == 0 {
		return 0, nil, fmt.Errorf("%w: %s", store.ErrNoRows, name)
	}
	return store.RowID(len(t.rows)), t.rows[len(t.rows)-1].Clone(), nil
}

// Get implements store.Store.
func (s *Store) Get(_ context.Context, name string, id store.RowID) (store.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(name)
	if err != nil {
		return nil, err
	}
	if id < 1 || int(id) > len(t.rows) {
		return nil, fmt.Errorf("%w: %s/%d", store.ErrRowNotFound, name, id)
	}
	return t.rows[id-1].Clone(), nil
}

// MarkFrame implements store.Store.
func (s *Store) MarkFrame(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	s.record(store.Entry{Op: store.OpFrame})
	return nil
}

// Entries implements store.Store.
// The journal is captured when iteration starts.
func (s *Store) Entries(ctx context.Context, after uint64) iter.Seq2[store.Entry, error] {
	return func(yield func(store.Entry, error) bool) {
		s.mu.RLock()
		closed := s.closed
		i, _ := slices.BinarySearchFunc(s.journal, after+1, func(e store.Entry, seq uint64) int {
			switch {
			case e.Seq < seq:
				return -1
			case e.Seq > seq:
				return 1
			default:
				return 0
			}
		})
		pending := slices.Clone(s.journal[i:])
		s.mu.RUnlock()

		if closed {
			yield(store.Entry{}, store.ErrClosed)
			return
		}
		for _, e := range pending {
			if err := ctx.Err(); err != nil {
				yield(store.Entry{}, err)
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

// Close implements store.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// Tables returns the names of all tables in creation order.
func (s *Store) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for _, e := range s.journal {
		if e.Op == store.OpCreateTable {
			names = append(names, e.Table)
		}
	}
	return names
}

func (s *Store) table(name string) (*table, error) {
	if s.closed {
		return nil, store.ErrClosed
	}
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrTableNotFound, name)
	}
	return t, nil
}

// record appends e to the journal. Callers hold s.mu.
func (s *Store) record(e store.Entry) {
	s.seq++
	e.Seq = s.seq
	s.journal = append(s.journal, e)
}
