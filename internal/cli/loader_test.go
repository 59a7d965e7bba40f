package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miles-bartnik/tyr/internal/build"
	"github.com/miles-bartnik/tyr/internal/graph"
)

func TestLoadSchema(t *testing.T) {
	res, err := LoadSchema("testdata/sensors")
	require.NoError(t, err)
	assert.Equal(t, 1, res.FileCount)
	assert.Equal(t, "analytics", res.Schema.Name())
	assert.Equal(t, 3, res.Schema.Len())
}

func TestLoadSchema_Errors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "schema.cue")
	require.NoError(t, os.WriteFile(file, []byte("package x\n"), 0o644))

	tests := []struct {
		name string
		dir  string
		code string
	}{
		{"missing", "testdata/nowhere", ErrCodeNotFound},
		{"not a directory", file, ErrCodeNotFound},
		{"no files", t.TempDir(), ErrCodeNoFiles},
		{"syntax", "testdata/broken", ErrCodeLoadFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSchema(tt.dir)
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.code, le.Code)
		})
	}
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := map[string]string{
		"type":                ErrCodeInvalidType,
		"unit":                ErrCodeInvalidUnit,
		"expr":                ErrCodeInvalidExpr,
		"cue":                 ErrCodeBuildFailed,
		"schema":              ErrCodeSchema,
		"table.raw.file.path": ErrCodeSchema,
		"other":               ErrCodeGeneric,
	}
	for field, want := range tests {
		assert.Equal(t, want, MapFieldToErrorCode(field), field)
	}
}

func TestAnalysisErrorCode(t *testing.T) {
	cycle := &graph.CycleError{Path: []string{"a", "b", "a"}}
	assert.Equal(t, ErrCodeCycle, AnalysisErrorCode(fmt.Errorf("plan: %w", cycle)))
	assert.Equal(t, ErrCodeUnknownTable, AnalysisErrorCode(fmt.Errorf("%w %q", build.ErrUnknownTarget, "x")))
	assert.Equal(t, ErrCodeGeneric, AnalysisErrorCode(errors.New("other")))
}
