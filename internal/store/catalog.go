package store

import (
	"context"
	"database/sql"
	"fmt"
)

// TableInfo identifies a table in the engine catalog.
type TableInfo struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

// ColumnInfo is one column of a catalog table, in ordinal order.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FunctionInfo is one function known to the engine.
type FunctionInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

// catalogQueries holds the per-driver catalog reads. Every query returns
// rows in a deterministic order.
type catalogQueries struct {
	// Tables takes the schema name (empty: the current schema) and
	// returns (schema, name).
	Tables string
	// Columns takes schema and table and returns (name, type).
	Columns string
	// Functions returns (name, kind).
	Functions string
	// schemaArg reports whether Tables and Columns take the schema.
	schemaArg bool
}

var sqliteCatalog = catalogQueries{
	Tables: `
		SELECT 'main', name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`,
	Columns: `
		SELECT name, type FROM pragma_table_info(?)
		ORDER BY cid`,
	Functions: `
		SELECT DISTINCT name, type FROM pragma_function_list
		ORDER BY name, type`,
}

var duckdbCatalog = catalogQueries{
	Tables: `
		SELECT schema_name, table_name FROM duckdb_tables()
		WHERE schema_name = COALESCE(NULLIF(?, ''), current_schema())
		ORDER BY table_name`,
	Columns: `
		SELECT column_name, data_type FROM duckdb_columns()
		WHERE schema_name = COALESCE(NULLIF(?, ''), current_schema()) AND table_name = ?
		ORDER BY column_index`,
	Functions: `
		SELECT DISTINCT function_name, function_type FROM duckdb_functions()
		ORDER BY function_name, function_type`,
	schemaArg: true,
}

var postgresCatalog = catalogQueries{
	Tables: `
		SELECT table_schema, table_name FROM information_schema.tables
		WHERE table_schema = COALESCE(NULLIF($1, ''), current_schema()) AND table_type = 'BASE TABLE'
		ORDER BY table_name`,
	Columns: `
		SELECT column_name, data_type FROM information_schema.columns
		WHERE table_schema = COALESCE(NULLIF($1, ''), current_schema()) AND table_name = $2
		ORDER BY ordinal_position`,
	Functions: `
		SELECT DISTINCT p.proname, p.prokind::text FROM pg_catalog.pg_proc p
		ORDER BY 1, 2`,
	schemaArg: true,
}

func catalogFor(d Driver) catalogQueries {
	switch d {
	case DriverDuckDB:
		return duckdbCatalog
	case DriverPostgres:
		return postgresCatalog
	default:
		return sqliteCatalog
	}
}

// ListTables returns the tables of schema. An empty schema means the
// engine's current one; SQLite only has "main".
//
// Returns an empty slice (not nil) when there are no tables.
func (s *Store) ListTables(ctx context.Context, schema string) ([]TableInfo, error) {
	var args []any
	if s.catalog.schemaArg {
		args = append(args, schema)
	}

	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, s.catalog.Tables, args...)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	tables := []TableInfo{}
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Schema, &t.Name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

// ListColumns returns the columns of schema.table in ordinal order.
func (s *Store) ListColumns(ctx context.Context, schema, table string) ([]ColumnInfo, error) {
	args := []any{table}
	if s.catalog.schemaArg {
		args = []any{schema, table}
	}

	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, s.catalog.Columns, args...)
	if err != nil {
		return nil, fmt.Errorf("query columns of %s: %w", table, err)
	}
	defer rows.Close()

	cols := []ColumnInfo{}
	for rows.Next() {
		var c ColumnInfo
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return cols, nil
}

// ListFunctions returns the functions the engine knows about.
// SQLite builds without introspection pragmas report an error.
func (s *Store) ListFunctions(ctx context.Context) ([]FunctionInfo, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, s.catalog.Functions)
	if err != nil {
		return nil, fmt.Errorf("query functions: %w", err)
	}
	defer rows.Close()

	fns := []FunctionInfo{}
	for rows.Next() {
		var f FunctionInfo
		var kind sql.NullString
		if err := rows.Scan(&f.Name, &kind); err != nil {
			return nil, fmt.Errorf("scan function: %w", err)
		}
		f.Kind = kind.String
		fns = append(fns, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate functions: %w", err)
	}
	return fns, nil
}

// HasTable reports whether schema.name exists.
func (s *Store) HasTable(ctx context.Context, schema, name string) (bool, error) {
	tables, err := s.ListTables(ctx, schema)
	if err != nil {
		return false, err
	}
	for _, t := range tables {
		if t.Name == name {
			return true, nil
		}
	}
	return false, nil
}
