package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/hupe1980/vizsync/codec"
	"github.com/hupe1980/vizsync/store"
	"github.com/hupe1980/vizsync/vector"
)

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func columnType(k store.Kind) string {
	switch k {
	case store.KindInteger, store.KindBoolean, store.KindRelation:
		return "INTEGER"
	case store.KindFloat:
		return "REAL"
	case store.KindText:
		return "TEXT"
	default:
		return "BLOB"
	}
}

func selectList(fields []store.Field) string {
	cols := make([]string, 0, len(fields)+1)
	cols = append(cols, "id")
	for _, f := range fields {
		cols = append(cols, quoteIdent(f.Name))
	}
	return strings.Join(cols, ", ")
}

// columns converts the row into SQL column names and arguments, in field
// order.
func (s *Store) columns(fields []store.Field, row store.Row) ([]string, []any, error) {
	var (
		cols []string
		args []any
	)
	for _, f := range fields {
		v, ok := row[f.Name]
		if !ok {
			continue
		}
		arg, err := s.toSQL(v)
		if err != nil {
			return nil, nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		cols = append(cols, quoteIdent(f.Name))
		args = append(args, arg)
	}
	return cols, args, nil
}

func (s *Store) toSQL(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case int:
		return int64(x), nil
	case float64, string:
		return x, nil
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case store.RowID:
		return int64(x), nil
	case vector.Array:
		return codec.MarshalArray(x, s.opts.Compression)
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func (s *Store) scanRow(r *sql.Row, fields []store.Field) (store.RowID, store.Row, error) {
	var id int64
	raw := make([]any, len(fields))
	dest := make([]any, 0, len(fields)+1)
	dest = append(dest, &id)
	for i := range raw {
		dest = append(dest, &raw[i])
	}
	if err := r.Scan(dest...); err != nil {
		return 0, nil, err
	}

	row := make(store.Row, len(fields))
	for i, f := range fields {
		if raw[i] == nil {
			continue
		}
		v, err := fromSQL(f.Kind, raw[i])
		if err != nil {
			return 0, nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		row[f.Name] = v
	}
	return store.RowID(id), row, nil
}

func fromSQL(k store.Kind, v any) (any, error) {
	switch k {
	case store.KindInteger:
		n, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("expected integer, got %T", v)
		}
		return int(n), nil
	case store.KindFloat:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int64:
			return float64(x), nil
		}
		return nil, fmt.Errorf("expected real, got %T", v)
	case store.KindText:
		switch x := v.(type) {
		case string:
			return x, nil
		case []byte:
			return string(x), nil
		}
		return nil, fmt.Errorf("expected text, got %T", v)
	case store.KindBoolean:
		n, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("expected integer, got %T", v)
		}
		return n != 0, nil
	case store.KindRelation:
		n, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("expected integer, got %T", v)
		}
		return store.RowID(n), nil
	case store.KindArray:
		b, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("expected blob, got %T", v)
		}
		return codec.UnmarshalArray(b)
	default:
		return nil, fmt.Errorf("unknown kind %s", k)
	}
}

// cell is the journal encoding of one value. Kind zero encodes nil.
type cell struct {
	Kind  store.Kind `json:"k,omitempty"`
	Int   int64      `json:"i,omitempty"`
	Float float64    `json:"f,omitempty"`
	Text  string     `json:"s,omitempty"`
	Bool  bool       `json:"b,omitempty"`
	Blob  []byte     `json:"a,omitempty"`
}

type fieldDesc struct {
	Name    string     `json:"name"`
	Kind    store.Kind `json:"kind"`
	Default *cell      `json:"default,omitempty"`
	Ref     string     `json:"ref,omitempty"`
}

func (s *Store) toCell(v any) (cell, error) {
	switch x := v.(type) {
	case nil:
		return cell{}, nil
	case int:
		return cell{Kind: store.KindInteger, Int: int64(x)}, nil
	case float64:
		return cell{Kind: store.KindFloat, Float: x}, nil
	case string:
		return cell{Kind: store.KindText, Text: x}, nil
	case bool:
		return cell{Kind: store.KindBoolean, Bool: x}, nil
	case store.RowID:
		return cell{Kind: store.KindRelation, Int: int64(x)}, nil
	case vector.Array:
		blob, err := codec.MarshalArray(x, s.opts.Compression)
		if err != nil {
			return cell{}, err
		}
		return cell{Kind: store.KindArray, Blob: blob}, nil
	default:
		return cell{}, fmt.Errorf("unsupported value type %T", v)
	}
}

func (c cell) value() (any, error) {
	switch c.Kind {
	case 0:
		return nil, nil
	case store.KindInteger:
		return int(c.Int), nil
	case store.KindFloat:
		return c.Float, nil
	case store.KindText:
		return c.Text, nil
	case store.KindBoolean:
		return c.Bool, nil
	case store.KindRelation:
		return store.RowID(c.Int), nil
	case store.KindArray:
		return codec.UnmarshalArray(c.Blob)
	default:
		return nil, fmt.Errorf("unknown kind %s", c.Kind)
	}
}

func (s *Store) encodeRow(row store.Row) ([]byte, error) {
	cells := make(map[string]cell, len(row))
	for name, v := range row {
		c, err := s.toCell(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		cells[name] = c
	}
	return s.opts.Codec.Marshal(cells)
}

func (s *Store) decodeRow(data []byte) (store.Row, error) {
	var cells map[string]cell
	if err := s.opts.Codec.Unmarshal(data, &cells); err != nil {
		return nil, fmt.Errorf("failed to decode row: %w", err)
	}
	row := make(store.Row, len(cells))
	for name, c := range cells {
		v, err := c.value()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		row[name] = v
	}
	return row, nil
}

func (s *Store) encodeFields(fields []store.Field) ([]byte, error) {
	descs := make([]fieldDesc, len(fields))
	for i, f := range fields {
		descs[i] = fieldDesc{Name: f.Name, Kind: f.Kind, Ref: f.Ref}
		if f.Default != nil {
			c, err := s.toCell(f.Default)
			if err != nil {
				return nil, fmt.Errorf("default of %s: %w", f.Name, err)
			}
			descs[i].Default = &c
		}
	}
	return s.opts.Codec.Marshal(descs)
}

func (s *Store) decodeFields(data []byte) ([]store.Field, error) {
	var descs []fieldDesc
	if err := s.opts.Codec.Unmarshal(data, &descs); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	fields := make([]store.Field, len(descs))
	for i, d := range descs {
		fields[i] = store.Field{Name: d.Name, Kind: d.Kind, Ref: d.Ref}
		if d.Default != nil {
			v, err := d.Default.value()
			if err != nil {
				return nil, fmt.Errorf("default of %s: %w", d.Name, err)
			}
			fields[i].Default = v
		}
	}
	return fields, nil
}
