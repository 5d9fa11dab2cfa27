package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Store persists all of Vitrine's durable state: admin accounts, banners,
// blog posts, products, newsletter subscribers, and key-value settings.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Options configures how the store connects to its backing database.
type Options struct {
	// Driver is one of DriverSQLite, DriverPostgres, DriverMySQL.
	Driver string
	// DSN is the driver-specific connection string. For SQLite it is a file
	// path; empty means an in-memory database (used by tests).
	DSN string
}

// Open connects to the configured database and runs migrations.
func Open(opts Options) (*Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	var db *sqlx.DB
	var err error

	switch driver {
	case DriverSQLite:
		dsn := opts.DSN
		if dsn == "" {
			dsn = ":memory:?_journal_mode=WAL"
		} else {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
			dsn += "?_journal_mode=WAL&_busy_timeout=5000"
		}
		db, err = sqlx.Connect("sqlite", dsn)
		if err == nil {
			db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
			if _, perr := db.Exec("PRAGMA foreign_keys = ON"); perr != nil {
				return nil, fmt.Errorf("enable foreign keys: %w", perr)
			}
		}
	case DriverPostgres:
		db, err = sqlx.Connect("pgx", opts.DSN)
	case DriverMySQL:
		// parseTime is required so DATETIME columns scan into time.Time.
		dsn := opts.DSN
		if dsn != "" && !strings.Contains(dsn, "parseTime") {
			if strings.Contains(dsn, "?") {
				dsn += "&parseTime=true"
			} else {
				dsn += "?parseTime=true"
			}
		}
		db, err = sqlx.Connect("mysql", dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Driver returns the configured driver name.
func (s *Store) Driver() string {
	return s.driver
}

// insertID executes a named INSERT and returns the generated row id. Postgres
// has no LastInsertId, so the query gets a RETURNING clause there instead.
func (s *Store) insertID(ctx context.Context, ext sqlx.ExtContext, q string, arg interface{}) (int64, error) {
	if s.driver == DriverPostgres {
		rows, err := sqlx.NamedQueryContext(ctx, ext, q+" RETURNING id", arg)
		if err != nil {
			return 0, err
		}
		defer rows.Close()
		if !rows.Next() {
			return 0, fmt.Errorf("insert returned no id")
		}
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		return id, rows.Err()
	}

	result, err := sqlx.NamedExecContext(ctx, ext, q, arg)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
