package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderText(t *testing.T) {
	out, _, err := execute(t, "order", "testdata/sensors")
	require.NoError(t, err)
	assert.Equal(t, "1. raw_readings\n2. readings <- raw_readings\n3. daily <- readings\n", out)
}

func TestOrderTargets(t *testing.T) {
	out, _, err := execute(t, "order", "testdata/sensors", "--target", "readings", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   []OrderEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []OrderEntry{
		{Table: "raw_readings", DependsOn: []string{}},
		{Table: "readings", DependsOn: []string{"raw_readings"}},
	}, resp.Data)
}

func TestOrderUnknownTarget(t *testing.T) {
	out, _, err := execute(t, "order", "testdata/sensors", "-t", "weekly")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E204]")
	assert.Contains(t, out, `"weekly"`)
}

func TestOrderCycle(t *testing.T) {
	out, _, err := execute(t, "order", "testdata/cycle")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E202]: cyclic dependency")
}
