// Package compiler turns CUE schema definitions into an ir.Schema.
//
// A schema file declares settings under `schema` and one entry per table
// under `table`, in build-independent order:
//
//	schema: {
//		name: "analytics"
//		extensions: ["json"]
//	}
//
//	table: readings: {
//		file: {path: "data/readings.csv", format: "csv"}
//		columns: {
//			sensor: type: "VARCHAR"
//			temp_f: {type: "DOUBLE", unit: "degF"}
//		}
//	}
//
//	table: celsius: {
//		from: "readings"
//		columns: {
//			sensor: {}
//			temp_c: expr: {convert: {col: "temp_f"}, to: "degC"}
//		}
//	}
//
// Table and column order follow the CUE field order. Tables may refer to
// each other in any order; cycles are left for the dependency graph to
// report.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/miles-bartnik/tyr/internal/ir"
)

// DefaultSchemaName is used when the schema block has no name.
const DefaultSchemaName = "main"

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Compile builds the schema described by the root CUE value v.
func Compile(v cue.Value) (*ir.Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	settings, err := compileSettings(v.LookupPath(cue.ParsePath("schema")))
	if err != nil {
		return nil, err
	}

	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil, &CompileError{
			Field:   "table",
			Message: "at least one table is required",
			Pos:     v.Pos(),
		}
	}

	c := &compiler{
		specs:     map[string]cue.Value{},
		compiled:  map[string]*ir.Table{},
		resolving: map[string]bool{},
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		name := iter.Selector().Unquoted()
		c.names = append(c.names, name)
		c.specs[name] = iter.Value()
	}

	tables := make([]*ir.Table, 0, len(c.names))
	for _, name := range c.names {
		t, err := c.table(name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	return ir.NewSchema(settings, tables...)
}

func compileSettings(v cue.Value) (ir.Settings, error) {
	settings := ir.Settings{Name: DefaultSchemaName}
	if !v.Exists() {
		return settings, nil
	}

	if name, ok, err := optionalString(v, "name"); err != nil {
		return settings, err
	} else if ok {
		settings.Name = name
	}

	exts, err := optionalStrings(v, "extensions")
	if err != nil {
		return settings, err
	}
	settings.Extensions = exts

	if createSQL, ok, err := optionalString(v, "create_sql"); err != nil {
		return settings, err
	} else if ok {
		settings.CreateSQL = createSQL
	}
	return settings, nil
}

// compiler holds the table specs of one Compile call. Tables are compiled
// on demand so a table can look up the columns of any table it reads.
type compiler struct {
	names     []string
	specs     map[string]cue.Value
	compiled  map[string]*ir.Table
	resolving map[string]bool
}

// upstream returns the compiled schema table name, compiling it first if
// needed. It returns nil for names outside the schema and for tables
// still being compiled further up the stack.
func (c *compiler) upstream(name string) (*ir.Table, error) {
	if t, ok := c.compiled[name]; ok {
		return t, nil
	}
	if _, ok := c.specs[name]; !ok || c.resolving[name] {
		return nil, nil
	}
	return c.table(name)
}

func optionalString(v cue.Value, field string) (string, bool, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", false, nil
	}
	s, err := f.String()
	if err != nil {
		return "", false, formatCUEError(err)
	}
	return s, true, nil
}

func optionalStrings(v cue.Value, field string) ([]string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
