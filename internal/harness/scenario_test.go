package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "schema"), 0o755))
	path := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario_Defaults(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/diamond_full_rebuild.yaml")
	require.NoError(t, err)

	assert.Equal(t, "diamond_full_rebuild", s.Name)
	assert.Equal(t, filepath.Join("testdata", "schemas", "diamond"), s.Schema)
	assert.Equal(t, "duckdb", s.Dialect)
	assert.Equal(t, "full_rebuild", s.Mode)
	assert.Equal(t, "fail_fast", s.Policy)
	assert.Equal(t, "test-run-default", s.RunID)
	assert.Len(t, s.Assertions, 4)
}

func TestLoadScenario_Failures(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/diamond_skip_errors.yaml")
	require.NoError(t, err)

	assert.Equal(t, "skip_errors", s.Policy)
	assert.Equal(t, []Failure{{Match: `CREATE TABLE "test"."b"`, Error: "boom"}}, s.Failures)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing name",
			body: "description: d\nschema: schema\nassertions: [{type: aborted}]\n",
			want: "name is required",
		},
		{
			name: "missing schema dir",
			body: "name: n\ndescription: d\nschema: nowhere\nassertions: [{type: aborted}]\n",
			want: "schema directory not found",
		},
		{
			name: "unknown key",
			body: "name: n\ndescription: d\nschema: schema\nflow: []\nassertions: [{type: aborted}]\n",
			want: "field flow not found",
		},
		{
			name: "unknown dialect",
			body: "name: n\ndescription: d\nschema: schema\ndialect: oracle\nassertions: [{type: aborted}]\n",
			want: "oracle",
		},
		{
			name: "bad policy",
			body: "name: n\ndescription: d\nschema: schema\npolicy: retry\nassertions: [{type: aborted}]\n",
			want: "unknown policy",
		},
		{
			name: "no assertions",
			body: "name: n\ndescription: d\nschema: schema\n",
			want: "assertions list is required",
		},
		{
			name: "tables missing",
			body: "name: n\ndescription: d\nschema: schema\nassertions: [{type: built}]\n",
			want: "tables is required for built",
		},
		{
			name: "contains missing",
			body: "name: n\ndescription: d\nschema: schema\nassertions: [{type: plan_error}]\n",
			want: "contains is required for plan_error",
		},
		{
			name: "unknown assertion",
			body: "name: n\ndescription: d\nschema: schema\nassertions: [{type: trace_order}]\n",
			want: `unknown assertion type "trace_order"`,
		},
		{
			name: "failure without error",
			body: "name: n\ndescription: d\nschema: schema\nfailures: [{match: x}]\nassertions: [{type: aborted}]\n",
			want: "failures[0]: error is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	assert.ErrorContains(t, err, "failed to read scenario file")
}
