package build

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miles-bartnik/tyr/internal/dialect"
	"github.com/miles-bartnik/tyr/internal/ir"
	"github.com/miles-bartnik/tyr/internal/store"
)

func openSQLite(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.DriverSQLite3, "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func records(name string, ids ...int64) *ir.Table {
	rows := make([][]ir.Value, len(ids))
	for i, id := range ids {
		rows[i] = []ir.Value{ir.Int(id)}
	}
	return ir.NewTable(name, &ir.FromRecords{Names: []string{"id"}, Rows: rows, Alias: "r"},
		ir.Col("r", "id", ir.TypeInteger),
	)
}

func countRows(t *testing.T, s *store.Store, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM "`+table+`"`).Scan(&n))
	return n
}

func TestIntegration_SQLiteBuild(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	a := records("a", 1, 2, 3)
	cond, err := ir.Gt(a.Col("id"), ir.Int(1))
	require.NoError(t, err)
	b := ir.NewTable("b", ir.From("a"), a.Col("id")).WithWhere(cond)
	c := ir.NewTable("c", ir.From("b"), ir.Derive("twice", mustMul(t, b.Col("id"), ir.Int(2))))

	schema, err := ir.NewSchema(ir.Settings{Name: "main"}, c, b, a)
	require.NoError(t, err)

	builder := newBuilder(db, WithDialect(dialect.SQLite))
	report, err := builder.Run(ctx, schema)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, report.Tables(StatusBuilt))

	tables, err := db.ListTables(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []store.TableInfo{
		{Schema: "main", Name: "a"},
		{Schema: "main", Name: "b"},
		{Schema: "main", Name: "c"},
	}, tables)
	assert.Equal(t, 3, countRows(t, db, "a"))
	assert.Equal(t, 2, countRows(t, db, "b"))

	var sum int
	require.NoError(t, db.DB().QueryRow(`SELECT SUM("twice") FROM "c"`).Scan(&sum))
	assert.Equal(t, 10, sum)

	// everything exists now, so an incremental run issues nothing
	again, err := builder.Run(ctx, schema)
	require.NoError(t, err)
	assert.Equal(t, FullRebuild, again.Mode)

	inc, err := New(db, WithDialect(dialect.SQLite), WithMode(Incremental)).Run(ctx, schema)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, inc.Tables(StatusSkipped))
	assert.Zero(t, inc.Statements)
}

func TestIntegration_SQLiteSkipErrors(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	// ghost is not part of the schema and does not exist in the engine
	schema, err := ir.NewSchema(ir.Settings{Name: "main"},
		records("a", 1, 2),
		selectFrom("b", "ghost"),
		selectFrom("c", "b"),
		selectFrom("d", "a"),
	)
	require.NoError(t, err)

	report, err := New(db, WithDialect(dialect.SQLite), WithPolicy(SkipErrors)).Run(ctx, schema)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "d"}, report.Tables(StatusBuilt))
	assert.Equal(t, []string{"b", "c"}, report.Tables(StatusFailed))

	failed, _ := report.Outcome("b")
	assert.Contains(t, failed.Error, "no such table: ghost")

	// a survives b's failure
	assert.Equal(t, 2, countRows(t, db, "a"))
	assert.Equal(t, 2, countRows(t, db, "d"))
}

func mustMul(t *testing.T, l, r ir.Node) ir.Node {
	t.Helper()
	op, err := ir.Mul(l, r)
	require.NoError(t, err)
	return op
}
