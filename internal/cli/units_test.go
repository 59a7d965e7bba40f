package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitsConvert(t *testing.T) {
	out, _, err := execute(t, "units", "convert", "2.5", "km", "m")
	require.NoError(t, err)
	assert.Equal(t, "2.5 km^1 = 2500 m^1\n", out)
}

func TestUnitsConvertVerbosePlan(t *testing.T) {
	_, errOut, err := execute(t, "units", "convert", "1", "km", "m", "-v")
	require.NoError(t, err)
	assert.Equal(t, "km^1 -> m^1: [km^1 -> m^1 x1000]\n", errOut)
}

func TestUnitsConvertJSON(t *testing.T) {
	out, _, err := execute(t, "units", "convert", "2", "km", "m", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data ConversionResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.InDelta(t, 2000.0, resp.Data.Result, 1e-9)
}

func TestUnitsConvertErrors(t *testing.T) {
	_, _, err := execute(t, "units", "convert", "abc", "km", "m")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "units", "convert", "1", "furlongz", "m")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, _, err := execute(t, "units", "convert", "1", "km", "s")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E103]")
}

func TestUnitsList(t *testing.T) {
	out, _, err := execute(t, "units", "list")
	require.NoError(t, err)
	symbols := strings.Fields(out)
	assert.Contains(t, symbols, "degC")
	assert.Contains(t, symbols, "m")
}
