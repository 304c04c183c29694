// Package sqlite provides a store.Store backed by a SQLite database file.
//
// Each object table becomes a SQL table with one column per field. Array
// fields are stored as compressed blobs. Every mutation is also written to
// a journal table inside the same transaction so that a recording can be
// replayed in order.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/vizsync/codec"
	"github.com/hupe1980/vizsync/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*Store)(nil)

// entriesBatch bounds how many journal entries are held in memory while
// Entries is iterating.
const entriesBatch = 256

// Options configures a Store.
type Options struct {
	// Compression applied to array blobs. Defaults to LZ4.
	Compression codec.Compression
	// Codec used for journal payloads. Defaults to codec.Default.
	Codec codec.Codec
}

// Store implements store.Store using SQLite.
type Store struct {
	db     *sql.DB
	path   string
	opts   Options
	closed atomic.Bool

	mu     sync.RWMutex
	tables map[string][]store.Field
}

// New opens (or creates) the database at path.
// An existing recording is reopened with its tables intact.
func New(path string, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{
		Compression: codec.CompressionLZ4,
		Codec:       codec.Default,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Serialize writers; SQLite allows only one anyway.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		path:   path,
		opts:   opts,
		tables: make(map[string][]store.Field),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := s.loadTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS _tables (
		name TEXT PRIMARY KEY,
		fields BLOB NOT NULL,
		created_seq INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS _journal (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		op INTEGER NOT NULL,
		tbl TEXT,
		row_id INTEGER,
		payload BLOB
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) loadTables() error {
	rows, err := s.db.Query(`SELECT name, fields FROM _tables ORDER BY created_seq`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name string
			data []byte
		)
		if err := rows.Scan(&name, &data); err != nil {
			return err
		}
		fields, err := s.decodeFields(data)
		if err != nil {
			return fmt.Errorf("table %s: %w", name, err)
		}
		s.tables[name] = fields
	}
	return rows.Err()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// CreateTable implements store.Store.
func (s *Store) CreateTable(ctx context.Context, name string, fields []store.Field) error {
	if s.closed.Load() {
		return store.ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[name]; ok {
		return fmt.Errorf("%w: %s", store.ErrTableExists, name)
	}

	payload, err := s.encodeFields(fields)
	if err != nil {
		return err
	}

	cols := make([]string, 0, len(fields)+1)
	cols = append(cols, "id INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, f := range fields {
		cols = append(cols, quoteIdent(f.Name)+" "+columnType(f.Kind))
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(cols, ", "))); err != nil {
			return fmt.Errorf("failed to create table %s: %w", name, err)
		}
		seq, err := journal(ctx, tx, store.OpCreateTable, name, 0, payload)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO _tables (name, fields, created_seq) VALUES (?, ?, ?)`, name, payload, seq)
		return err
	})
	if err != nil {
		return err
	}

	s.tables[name] = slices.Clone(fields)
	return nil
}

// Append implements store.Store.
func (s *Store) Append(ctx context.Context, name string, row store.Row) (store.RowID, error) {
	fields, err := s.fields(name)
	if err != nil {
		return 0, err
	}
	if err := store.Check(name, fields, row); err != nil {
		return 0, err
	}

	full := store.WithDefaults(fields, row)
	cols, args, err := s.columns(fields, full)
	if err != nil {
		return 0, err
	}
	payload, err := s.encodeRow(row)
	if err != nil {
		return 0, err
	}

	var id store.RowID
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		query := fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", quoteIdent(name))
		if len(cols) > 0 {
			query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
				quoteIdent(name), strings.Join(cols, ", "), placeholders(len(cols)))
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert into %s: %w", name, err)
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		id = store.RowID(lastID)
		_, err = journal(ctx, tx, store.OpAppend, name, id, payload)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateLatest implements store.Store.
func (s *Store) UpdateLatest(ctx context.Context, name string, row store.Row) error {
	fields, err := s.fields(name)
	if err != nil {
		return err
	}
	if err := store.Check(name, fields, row); err != nil {
		return err
	}

	cols, args, err := s.columns(fields, row)
	if err != nil {
		return err
	}
	payload, err := s.encodeRow(row)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var maxID sql.NullInt64
		if err := tx.QueryRowContext(ctx, fmt.Sprintf("SELECT MAX(id) FROM %s", quoteIdent(name))).Scan(&maxID); err != nil {
			return err
		}
		if !maxID.Valid {
			return fmt.Errorf("%w: %s", store.ErrNoRows, name)
		}
		id := maxID.Int64

		if len(cols) > 0 {
			sets := make([]string, len(cols))
			for i, c := range cols {
				sets[i] = c + " = ?"
			}
			query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", quoteIdent(name), strings.Join(sets, ", "))
			if _, err := tx.ExecContext(ctx, query, append(args, id)...); err != nil {
				return fmt.Errorf("failed to update %s: %w", name, err)
			}
		}
		_, err := journal(ctx, tx, store.OpUpdate, name, store.RowID(id), payload)
		return err
	})
}

// Latest implements store.Store.
func (s *Store) Latest(ctx context.Context, name string) (store.RowID, store.Row, error) {
	fields, err := s.fields(name)
	if err != nil {
		return 0, nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id DESC LIMIT 1", selectList(fields), quoteIdent(name))
	id, row, err := s.scanRow(s.db.QueryRowContext(ctx, query), fields)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil, fmt.Errorf("%w: %s", store.ErrNoRows, name)
	}
	return id, row, err
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, name string, id store.RowID) (store.Row, error) {
	fields, err := s.fields(name)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", selectList(fields), quoteIdent(name))
	_, row, err := s.scanRow(s.db.QueryRowContext(ctx, query, int64(id)), fields)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%d", store.ErrRowNotFound, name, id)
	}
	return row, err
}

// MarkFrame implements store.Store.
func (s *Store) MarkFrame(ctx context.Context) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	_, err := journal(ctx, s.db, store.OpFrame, "", 0, nil)
	return err
}

// Entries implements store.Store.
//
// Entries are read in batches; entries appended while iterating are
// included once the iterator reaches them.
func (s *Store) Entries(ctx context.Context, after uint64) iter.Seq2[store.Entry, error] {
	return func(yield func(store.Entry, error) bool) {
		cursor := after
		for {
			if s.closed.Load() {
				yield(store.Entry{}, store.ErrClosed)
				return
			}
			batch, err := s.readJournal(ctx, cursor)
			if err != nil {
				yield(store.Entry{}, err)
				return
			}
			for _, e := range batch {
				if !yield(e, nil) {
					return
				}
				cursor = e.Seq
			}
			if len(batch) < entriesBatch {
				return
			}
		}
	}
}

func (s *Store) readJournal(ctx context.Context, after uint64) ([]store.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, op, tbl, row_id, payload FROM _journal WHERE seq > ? ORDER BY seq LIMIT ?`,
		int64(after), entriesBatch)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var out []store.Entry
	for rows.Next() {
		var (
			seq, op int64
			tbl     sql.NullString
			rowID   sql.NullInt64
			payload []byte
		)
		if err := rows.Scan(&seq, &op, &tbl, &rowID, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e := store.Entry{
			Seq:   uint64(seq),
			Op:    store.Op(op),
			Table: tbl.String,
			RowID: store.RowID(rowID.Int64),
		}
		switch e.Op {
		case store.OpCreateTable:
			if e.Fields, err = s.decodeFields(payload); err != nil {
				return nil, fmt.Errorf("journal entry %d: %w", seq, err)
			}
		case store.OpAppend, store.OpUpdate:
			if e.Row, err = s.decodeRow(payload); err != nil {
				return nil, fmt.Errorf("journal entry %d: %w", seq, err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Snapshot writes a consistent copy of the database to path.
func (s *Store) Snapshot(ctx context.Context, path string) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *Store) fields(name string) ([]store.Field, error) {
	if s.closed.Load() {
		return nil, store.ErrClosed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrTableNotFound, name)
	}
	return fields, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func journal(ctx context.Context, db execer, op store.Op, table string, id store.RowID, payload []byte) (uint64, error) {
	var tbl any
	if table != "" {
		tbl = table
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO _journal (op, tbl, row_id, payload) VALUES (?, ?, ?, ?)`,
		int64(op), tbl, int64(id), payload)
	if err != nil {
		return 0, fmt.Errorf("failed to write journal: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(seq), nil
}
