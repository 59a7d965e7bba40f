package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names a database/sql driver.
type Driver string

const (
	DriverSQLite3  Driver = "sqlite3"
	DriverSQLite   Driver = "sqlite"
	DriverDuckDB   Driver = "duckdb"
	DriverPostgres Driver = "pgx"
)

// AllDrivers lists the supported drivers.
var AllDrivers = []Driver{DriverSQLite3, DriverSQLite, DriverDuckDB, DriverPostgres}

// ParseDriver validates a driver name.
func ParseDriver(s string) (Driver, error) {
	d := Driver(s)
	if !slices.Contains(AllDrivers, d) {
		return "", fmt.Errorf("unknown driver %q (want one of %v)", s, AllDrivers)
	}
	return d, nil
}

// Dialect returns the name of the SQL dialect the driver speaks.
func (d Driver) Dialect() string {
	switch d {
	case DriverSQLite3, DriverSQLite:
		return "sqlite"
	case DriverPostgres:
		return "postgres"
	default:
		return string(d)
	}
}

// Store executes statements against one engine connection pool.
// A Store is owned by a single build at a time.
type Store struct {
	db      *sql.DB
	driver  Driver
	catalog catalogQueries
}

// Open connects to dsn with driver and verifies the connection.
//
// For the SQLite drivers an empty dsn opens a private in-memory database.
// For pgx the dsn is parsed by pgx.ParseConfig (URL or key=value form).
func Open(driver Driver, dsn string) (*Store, error) {
	db, err := openDB(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	if driver == DriverSQLite3 || driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	return &Store{db: db, driver: driver, catalog: catalogFor(driver)}, nil
}

func openDB(driver Driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite3, DriverSQLite:
		if dsn == "" {
			dsn = ":memory:"
		}
		db, err := sql.Open(string(driver), dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return db, nil
	case DriverDuckDB:
		db, err := sql.Open("duckdb", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return db, nil
	case DriverPostgres:
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
		}
		return stdlib.OpenDB(*cfg), nil
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Driver returns the driver the store was opened with.
func (s *Store) Driver() Driver {
	return s.driver
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// conn returns the open pool, or sql.ErrConnDone once the store is closed.
func (s *Store) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, sql.ErrConnDone
	}
	return s.db, nil
}

// Exec runs one statement that returns no rows.
func (s *Store) Exec(ctx context.Context, query string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, query); err != nil {
		return err
	}
	return nil
}

// Query executes a query and returns the resulting rows.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	return db.QueryContext(ctx, query, args...)
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
