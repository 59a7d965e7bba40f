package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, driver Driver, dsn string) *Store {
	t.Helper()
	s, err := Open(driver, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s := openTestStore(t, DriverSQLite3, path)
	require.NoError(t, s.Exec(context.Background(), "CREATE TABLE t (id INTEGER)"))

	_, err := os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Pragmas(t *testing.T) {
	s := openTestStore(t, DriverSQLite3, "")
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "")
	assert.ErrorContains(t, err, `unknown driver "oracle"`)
}

func TestParseDriver(t *testing.T) {
	d, err := ParseDriver("pgx")
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, d)
	assert.Equal(t, "postgres", d.Dialect())
	assert.Equal(t, "sqlite", DriverSQLite3.Dialect())
	assert.Equal(t, "sqlite", DriverSQLite.Dialect())
	assert.Equal(t, "duckdb", DriverDuckDB.Dialect())

	_, err = ParseDriver("mysql")
	assert.Error(t, err)
}

func TestClose_Twice(t *testing.T) {
	s, err := Open(DriverSQLite3, "")
	require.NoError(t, err)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestUseAfterClose(t *testing.T) {
	s, err := Open(DriverSQLite3, "")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	ctx := context.Background()

	assert.ErrorIs(t, s.Exec(ctx, "SELECT 1"), sql.ErrConnDone)
	_, err = s.Query(ctx, "SELECT 1")
	assert.ErrorIs(t, err, sql.ErrConnDone)
	_, err = s.ListTables(ctx, "")
	assert.ErrorIs(t, err, sql.ErrConnDone)
	_, err = s.ListColumns(ctx, "", "t")
	assert.ErrorIs(t, err, sql.ErrConnDone)
	_, err = s.ListFunctions(ctx)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestRedactDSN(t *testing.T) {
	cases := []struct {
		name, dsn, want string
	}{
		{"url userinfo", "postgres://etl:s3cret@db:5432/warehouse", "postgres://etl:xxxxx@db:5432/warehouse"},
		{"url query", "postgres://db/warehouse?password=s3cret&sslmode=disable", "postgres://db/warehouse?password=xxxxx&sslmode=disable"},
		{"url without password", "postgres://etl@db/warehouse", "postgres://etl@db/warehouse"},
		{"keyword", "host=db user=etl password=s3cret dbname=warehouse", "host=db user=etl password=xxxxx dbname=warehouse"},
		{"keyword quoted", "host=db password='s3 cret' user=etl", "host=db password=xxxxx user=etl"},
		{"sqlite path", "warehouse.db", "warehouse.db"},
		{"sqlite uri", "file:warehouse.db?cache=shared", "file:warehouse.db?cache=shared"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RedactDSN(tc.dsn)
			assert.Equal(t, tc.want, got)
			assert.NotContains(t, got, "s3cret")
		})
	}
}

func TestCatalog_SQLiteDrivers(t *testing.T) {
	for _, driver := range []Driver{DriverSQLite3, DriverSQLite} {
		t.Run(string(driver), func(t *testing.T) {
			ctx := context.Background()
			s := openTestStore(t, driver, "")
			assert.Equal(t, driver, s.Driver())

			tables, err := s.ListTables(ctx, "")
			require.NoError(t, err)
			assert.NotNil(t, tables)
			assert.Empty(t, tables)

			require.NoError(t, s.Exec(ctx, `CREATE TABLE "b" (id INTEGER, label TEXT)`))
			require.NoError(t, s.Exec(ctx, `CREATE TABLE "a" AS SELECT 1 AS x`))

			tables, err = s.ListTables(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []TableInfo{{Schema: "main", Name: "a"}, {Schema: "main", Name: "b"}}, tables)

			cols, err := s.ListColumns(ctx, "", "b")
			require.NoError(t, err)
			assert.Equal(t, []ColumnInfo{{Name: "id", Type: "INTEGER"}, {Name: "label", Type: "TEXT"}}, cols)

			ok, err := s.HasTable(ctx, "", "a")
			require.NoError(t, err)
			assert.True(t, ok)
			ok, err = s.HasTable(ctx, "", "missing")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestExecAndQuery(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, DriverSQLite, "")

	require.NoError(t, s.Exec(ctx, "CREATE TABLE n AS SELECT 1 AS v UNION ALL SELECT 2"))

	rows, err := s.Query(ctx, "SELECT v FROM n WHERE v > ? ORDER BY v", 0)
	require.NoError(t, err)
	defer rows.Close()

	var got []int
	for rows.Next() {
		var v int
		require.NoError(t, rows.Scan(&v))
		got = append(got, v)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int{1, 2}, got)

	assert.Error(t, s.Exec(ctx, "SELEC nonsense"))
}
