package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"diamond_full_rebuild", "diamond_skip_errors"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_PlanError(t *testing.T) {
	r := NewResult()
	r.PlanError = "cyclic dependency: a -> b -> a"

	data, err := Snapshot("cycle", r)
	require.NoError(t, err)
	assert.Equal(t, `{
  "scenario_name": "cycle",
  "plan_error": "cyclic dependency: a -> b -> a",
  "trace": [],
  "outcomes": []
}
`, string(data))
}
