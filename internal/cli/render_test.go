package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miles-bartnik/tyr/internal/build"
)

func TestRenderScript(t *testing.T) {
	out, _, err := execute(t, "render", "testdata/shop", "--dialect", "sqlite")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `DROP TABLE IF EXISTS "codes";`, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `CREATE TABLE "codes" AS SELECT "codes"."code", "codes"."n" FROM (SELECT 'm' AS "code", 1 AS "n" UNION ALL`))
	assert.Equal(t, `DROP TABLE IF EXISTS "big";`, lines[2])
	assert.True(t, strings.HasPrefix(lines[3], `CREATE TABLE "big" AS SELECT "codes"."code", "codes"."n" FROM "codes" WHERE`))
}

func TestRenderNamespaceAndExtensions(t *testing.T) {
	out, _, err := execute(t, "render", "testdata/sensors")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "DROP SCHEMA IF EXISTS \"analytics\" CASCADE;\nCREATE SCHEMA \"analytics\";\nINSTALL json;\nLOAD json;\n"), out)

	out, _, err = execute(t, "render", "testdata/sensors", "--incremental")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "CREATE SCHEMA IF NOT EXISTS \"analytics\";\n"), out)
}

func TestRenderOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.sql")
	out, _, err := execute(t, "render", "testdata/shop", "--dialect", "sqlite", "-o", path)
	require.NoError(t, err)
	assert.Equal(t, "✓ Rendered 2 table(s) for sqlite to "+path+"\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `DROP TABLE IF EXISTS "big";`)
}

func TestRenderJSONPlan(t *testing.T) {
	out, _, err := execute(t, "render", "testdata/shop", "--dialect", "sqlite", "--format", "json", "-t", "codes")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   build.Plan `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []string{"codes"}, resp.Data.Order)
	require.Len(t, resp.Data.Steps, 1)
	assert.Len(t, resp.Data.Steps[0].Fingerprint, 64)
}

func TestRenderUnknownDialect(t *testing.T) {
	out, _, err := execute(t, "render", "testdata/shop", "--dialect", "oracle")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E008]")
}
