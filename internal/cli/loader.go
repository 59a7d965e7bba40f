package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/miles-bartnik/tyr/internal/build"
	"github.com/miles-bartnik/tyr/internal/compiler"
	"github.com/miles-bartnik/tyr/internal/graph"
	"github.com/miles-bartnik/tyr/internal/ir"
	"github.com/miles-bartnik/tyr/internal/render"
)

// LoadResult is a compiled schema directory.
type LoadResult struct {
	Schema    *ir.Schema
	FileCount int // number of CUE files found
}

// LoadError is a schema loading failure with its error code.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSchema loads and compiles the CUE schema definitions in dir.
// Every failure is a *LoadError.
func LoadSchema(dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing schema directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	v, err := compiler.Load(dir)
	switch {
	case errors.Is(err, compiler.ErrBuild):
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}
	case err != nil:
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	}

	schema, err := compiler.Compile(v)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return &LoadResult{Schema: schema, FileCount: len(cueFiles)}, nil
}

// FindCUEFiles returns the .cue files directly inside dir. The CUE package
// loader does not descend into subdirectories either.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeSchema, Message: err.Error()}
}

// Error code constants, shared by every command.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeConfig      = "E008" // Config file or flag value invalid

	// Schema definition errors
	ErrCodeSchema      = "E101" // Malformed table or schema block
	ErrCodeInvalidType = "E102" // Unknown data type
	ErrCodeInvalidUnit = "E103" // Unknown or incompatible unit
	ErrCodeInvalidExpr = "E104" // Malformed expression

	// Schema analysis errors
	ErrCodeValidation   = "E201" // ir.Validate rejected the schema
	ErrCodeCycle        = "E202" // Cyclic table dependency
	ErrCodeUnrenderable = "E203" // Node cannot be rendered in the dialect
	ErrCodeUnknownTable = "E204" // Target table not in schema

	// Engine errors
	ErrCodeEngine      = "E301" // Engine could not be opened
	ErrCodeBuildTables = "E302" // One or more tables failed to build
	ErrCodeTestFailed  = "E303" // One or more scenarios failed
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "type":
		return ErrCodeInvalidType
	case field == "unit":
		return ErrCodeInvalidUnit
	case field == "expr":
		return ErrCodeInvalidExpr
	case field == "cue":
		return ErrCodeBuildFailed
	case field == "table", field == "schema", strings.HasPrefix(field, "table."):
		return ErrCodeSchema
	default:
		return ErrCodeGeneric
	}
}

// AnalysisErrorCode maps a planning error to an error code.
func AnalysisErrorCode(err error) string {
	var unrenderable *render.UnrenderableError
	switch {
	case graph.IsCycleError(err):
		return ErrCodeCycle
	case ir.IsValidationError(err):
		return ErrCodeValidation
	case errors.As(err, &unrenderable):
		return ErrCodeUnrenderable
	case errors.Is(err, build.ErrUnknownTarget):
		return ErrCodeUnknownTable
	default:
		return ErrCodeGeneric
	}
}
