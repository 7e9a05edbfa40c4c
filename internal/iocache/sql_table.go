package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/huangsam/hotspotter/schema"
)

var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// tableDef describes how one record type maps onto one table. The first
// len(keys) columns form the primary key.
type tableDef[T any] struct {
	name    string
	columns []string
	keys    []string
	orderBy string
	values  func(row T, backend schema.DatabaseBackend) ([]any, error)
	scan    func(s rowScanner) (T, error)
}

// sqlTable runs the generic statements of one table against one backend.
type sqlTable[T any] struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	def     tableDef[T]
}

func newSQLTable[T any](db *sql.DB, backend schema.DatabaseBackend, def tableDef[T]) (*sqlTable[T], error) {
	if err := validateTableName(def.name); err != nil {
		return nil, err
	}
	return &sqlTable[T]{db: db, backend: backend, def: def}, nil
}

// upsert writes rows in one transaction, replacing rows with the same key.
func (t *sqlTable[T]) upsert(ctx context.Context, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction on %s: %w", t.def.name, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, t.upsertQuery())
	if err != nil {
		return fmt.Errorf("failed to prepare upsert on %s: %w", t.def.name, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		args, err := t.def.values(row, t.backend)
		if err != nil {
			return fmt.Errorf("failed to encode %s row: %w", t.def.name, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to upsert into %s: %w", t.def.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s rows: %w", t.def.name, err)
	}
	return nil
}

// selectWhere returns the rows matching the condition, which must use the
// backend's placeholders.
func (t *sqlTable[T]) selectWhere(ctx context.Context, where string, args ...any) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.def.columns, ", "), quoteTableName(t.def.name, t.backend))
	if where != "" {
		query += " WHERE " + where
	}
	if t.def.orderBy != "" {
		query += " ORDER BY " + t.def.orderBy
	}

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.def.name, err)
	}
	defer func() { _ = rows.Close() }()

	var out []T
	for rows.Next() {
		row, err := t.def.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", t.def.name, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", t.def.name, err)
	}
	return out, nil
}

func (t *sqlTable[T]) count(ctx context.Context) (int64, error) {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(t.def.name, t.backend))
	if err := t.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to get count for table %s: %w", t.def.name, err)
	}
	return n, nil
}

// upsertQuery returns the UPSERT query for the backend.
func (t *sqlTable[T]) upsertQuery() string {
	table := quoteTableName(t.def.name, t.backend)
	cols := strings.Join(t.def.columns, ", ")
	values := placeholders(t.backend, len(t.def.columns))

	var updates []string
	for _, c := range t.def.columns[len(t.def.keys):] {
		switch t.backend {
		case schema.MySQLBackend:
			updates = append(updates, fmt.Sprintf("%s = new.%s", c, c))
		default:
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}

	switch t.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) AS new ON DUPLICATE KEY UPDATE %s",
			table, cols, values, strings.Join(updates, ", "))
	case schema.PostgreSQLBackend:
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
			table, cols, values, strings.Join(t.def.keys, ", "), strings.Join(updates, ", "))
	default: // SQLite
		return fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)", table, cols, values)
	}
}

// placeholder returns the n-th (1-based) bind placeholder for the backend.
func placeholder(backend schema.DatabaseBackend, n int) string {
	if backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func placeholders(backend schema.DatabaseBackend, n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = placeholder(backend, i+1)
	}
	return strings.Join(out, ", ")
}

// validateTableName rejects names that would need quoting to be safe.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNameRe.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern %s)", name, tableNameRe)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("%q", name)
	}
}

// formatTime converts a time.Time to the appropriate format for the backend.
// A zero time is stored as NULL.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if t.IsZero() {
		return nil
	}
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t.UTC()
	}
}

// timeColumn scans native datetimes as well as the text SQLite stores.
type timeColumn struct{ dst *time.Time }

func (c timeColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c.dst = time.Time{}
		return nil
	case time.Time:
		*c.dst = v.UTC()
		return nil
	case string:
		return c.parse(v)
	case []byte:
		return c.parse(string(v))
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
}

func (c timeColumn) parse(s string) error {
	for _, layout := range []string{time.RFC3339Nano, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			*c.dst = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unparseable time %q", s)
}

// jsonColumn scans a JSON text column into dst.
type jsonColumn struct{ dst any }

func (c jsonColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		return json.Unmarshal([]byte(v), c.dst)
	case []byte:
		return json.Unmarshal(v, c.dst)
	default:
		return fmt.Errorf("unsupported json value %T", src)
	}
}

func jsonText(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
