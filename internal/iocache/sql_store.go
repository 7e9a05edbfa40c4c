package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// ErrUnsupportedBackend is returned for a backend no store exists for.
var ErrUnsupportedBackend = errors.New("unsupported backend")

// SQLStore persists results in one of the SQL backends.
type SQLStore struct {
	db      *sql.DB
	backend schema.DatabaseBackend

	runs      *sqlTable[schema.AnalysisInfo]
	knowledge *sqlTable[schema.FileKnowledge]
	ownership *sqlTable[schema.FileOwnership]
	authors   *sqlTable[schema.AuthorStatistics]
	trends    *sqlTable[schema.DailyStats]
	files     *sqlTable[schema.FileInfo]
}

var _ contract.ResultStores = &SQLStore{} // Compile-time check

// NewSQLStore opens the backend, applies pending migrations and returns the
// store. An empty SQLite connection string means the default database file.
func NewSQLStore(backend schema.DatabaseBackend, connStr string) (*SQLStore, error) {
	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := migrateDB(db, backend, -1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create result tables: %w", err)
	}

	s := &SQLStore{db: db, backend: backend}
	var errs []error
	s.runs, err = newSQLTable(db, backend, analysesDef)
	errs = append(errs, err)
	s.knowledge, err = newSQLTable(db, backend, knowledgeDef)
	errs = append(errs, err)
	s.ownership, err = newSQLTable(db, backend, ownershipDef)
	errs = append(errs, err)
	s.authors, err = newSQLTable(db, backend, authorsDef)
	errs = append(errs, err)
	s.trends, err = newSQLTable(db, backend, trendsDef)
	errs = append(errs, err)
	s.files, err = newSQLTable(db, backend, fileInfoDef)
	errs = append(errs, err)
	if err := errors.Join(errs...); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// driverName returns the database/sql driver registered for the backend.
func driverName(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedBackend, backend)
	}
}

// openDB opens and pings the backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	name, err := driverName(backend)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetDBFilePath()
		}
		db, err = sql.Open(name, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		dsn, err := mysqlDSN(connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse MySQL connection string: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}
		db, err = sql.Open(name, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open(name, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Ensure MySQL server is running and accessible. Check that user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Ensure PostgreSQL server is running and accessible. Check that user/password are valid."
		default:
			connDetail = "Verify the database file is readable and not locked by another process."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}
	return db, nil
}

// mysqlDSN forces the options the store relies on: native time scanning
// and multi-statement migration files.
func mysqlDSN(connStr string) (string, error) {
	cfg, err := mysql.ParseDSN(connStr)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	cfg.MultiStatements = true
	return cfg.FormatDSN(), nil
}

// Runs implements contract.ResultStores.
func (s *SQLStore) Runs() contract.RunStore { return sqlRunStore{s.runs} }

// Knowledge implements contract.ResultStores.
func (s *SQLStore) Knowledge() contract.RowStore[schema.FileKnowledge] {
	return sqlRowStore[schema.FileKnowledge]{s.knowledge}
}

// Ownership implements contract.ResultStores.
func (s *SQLStore) Ownership() contract.RowStore[schema.FileOwnership] {
	return sqlRowStore[schema.FileOwnership]{s.ownership}
}

// Authors implements contract.ResultStores.
func (s *SQLStore) Authors() contract.RowStore[schema.AuthorStatistics] {
	return sqlRowStore[schema.AuthorStatistics]{s.authors}
}

// Trends implements contract.ResultStores.
func (s *SQLStore) Trends() contract.RowStore[schema.DailyStats] {
	return sqlRowStore[schema.DailyStats]{s.trends}
}

// Files implements contract.ResultStores.
func (s *SQLStore) Files() contract.RowStore[schema.FileInfo] {
	return sqlRowStore[schema.FileInfo]{s.files}
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetStatus returns status information about the store.
func (s *SQLStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}

	runs, err := s.Runs().ListRuns(ctx)
	if err != nil {
		return status, err
	}
	status.TotalRuns = len(runs)
	if len(runs) > 0 {
		status.LastRunID = runs[0].ID
		status.LastRunTime = runs[0].AnalyzedAt
		status.OldestRunTime = runs[len(runs)-1].AnalyzedAt
	}

	counts := []struct {
		name  string
		count func(context.Context) (int64, error)
	}{
		{analysesTable, s.runs.count},
		{knowledgeTable, s.knowledge.count},
		{ownershipTable, s.ownership.count},
		{authorsTable, s.authors.count},
		{trendsTable, s.trends.count},
		{fileInfoTable, s.files.count},
	}
	for _, c := range counts {
		n, err := c.count(ctx)
		if err != nil {
			return status, err
		}
		status.TableSizes[c.name] = n
	}
	return status, nil
}

// sqlRowStore adapts a result table to contract.RowStore.
type sqlRowStore[T any] struct {
	table *sqlTable[T]
}

func (s sqlRowStore[T]) SaveAll(ctx context.Context, rows []T) error {
	return s.table.upsert(ctx, rows)
}

func (s sqlRowStore[T]) FindAllByRunID(ctx context.Context, runID string) ([]T, error) {
	return s.table.selectWhere(ctx, runIDColumn+" = "+placeholder(s.table.backend, 1), runID)
}

// sqlRunStore adapts the analyses table to contract.RunStore.
type sqlRunStore struct {
	table *sqlTable[schema.AnalysisInfo]
}

func (s sqlRunStore) SaveRun(ctx context.Context, info schema.AnalysisInfo) error {
	return s.table.upsert(ctx, []schema.AnalysisInfo{info})
}

func (s sqlRunStore) GetRun(ctx context.Context, id string) (schema.AnalysisInfo, error) {
	rows, err := s.table.selectWhere(ctx, "id = "+placeholder(s.table.backend, 1), id)
	if err != nil {
		return schema.AnalysisInfo{}, err
	}
	if len(rows) == 0 {
		return schema.AnalysisInfo{}, fmt.Errorf("%w: %s", contract.ErrRunNotFound, id)
	}
	return rows[0], nil
}

func (s sqlRunStore) ListRuns(ctx context.Context) ([]schema.AnalysisInfo, error) {
	return s.table.selectWhere(ctx, "")
}
