// Package store is the connection to the external SQL engine that tables
// are materialized into.
//
// A Store wraps a database/sql handle opened through one of the supported
// drivers:
//   - sqlite3: github.com/mattn/go-sqlite3 (cgo)
//   - sqlite: modernc.org/sqlite (pure Go)
//   - duckdb: github.com/duckdb/duckdb-go/v2
//   - pgx: github.com/jackc/pgx/v5 through its database/sql adapter
//
// Besides executing statements it reads the engine catalog (tables,
// columns, functions) with per-driver queries, so incremental builds can
// skip tables that already exist.
//
// # SQLite Configuration
//
//   - One open connection: an in-memory database lives on a single
//     connection, and SQLite only has one writer anyway
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
