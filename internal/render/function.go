package render

import (
	"slices"
	"strconv"
	"strings"

	"github.com/miles-bartnik/tyr/internal/ir"
)

// argBuilder collects the template arguments of a custom function kind.
type argBuilder func(r *Renderer, f *ir.Function, args map[string]string) error

// customFunctions lists the kinds that need custom syntax. Each one must
// have a template in the dialect; a missing template is unsupported rather
// than rendered generically.
//
// Filled in init: the builders recurse into Render, which reads this map.
var customFunctions map[ir.FunctionKind]argBuilder

func init() {
	customFunctions = map[ir.FunctionKind]argBuilder{
		ir.FuncCast:          castArgs,
		ir.FuncTryCast:       castArgs,
		ir.FuncCountDistinct: noArgs,
		ir.FuncRegexpExtract: regexpArgs,
		ir.FuncRegexpMatches: regexpArgs,
		ir.FuncStrftime:      formatArgs,
		ir.FuncStrptime:      formatArgs,
		ir.FuncDatePart:      datePartArgs,
		ir.FuncDateTrunc:     truncArgs,
		ir.FuncCurrentDate:   noArgs,
		ir.FuncNow:           noArgs,
		ir.FuncIntervalCast:  intervalArgs,
		ir.FuncListExtract:   listArgs,
		ir.FuncJSONExtract:   jsonArgs,
		ir.FuncRowNumber:     windowArgs,
	}
}

func (r *Renderer) function(f *ir.Function) (string, error) {
	if !slices.Contains(ir.AllFunctionKinds, f.Kind) {
		return "", r.fail(f, string(f.Kind), "unknown function kind")
	}

	build, custom := customFunctions[f.Kind]
	if !custom {
		args, err := r.list(f.Args)
		if err != nil {
			return "", err
		}
		return r.Dialect.FunctionName(f.Kind) + "(" + args + ")", nil
	}

	tmpl, ok := r.Dialect.FunctionTemplate(f.Kind)
	if !ok {
		return "", r.unsupported(f, string(f.Kind), "no template")
	}

	args := map[string]string{}
	if len(f.Args) > 0 {
		x, err := r.Render(f.Args[0])
		if err != nil {
			return "", err
		}
		args["x"] = x
	}
	if err := build(r, f, args); err != nil {
		return "", err
	}
	return tmpl.Fill(args), nil
}

func noArgs(*Renderer, *ir.Function, map[string]string) error { return nil }

func castArgs(r *Renderer, f *ir.Function, args map[string]string) error {
	if f.Target == ir.TypeUnknown {
		return r.fail(f, string(f.Kind), "cast without a target type")
	}
	args["type"] = r.Dialect.TypeName(f.Target)
	return nil
}

func regexpArgs(r *Renderer, f *ir.Function, args map[string]string) error {
	args["pattern"] = r.Dialect.QuoteString(f.Pattern)
	args["group"] = strconv.Itoa(f.Group)
	return nil
}

func formatArgs(r *Renderer, f *ir.Function, args map[string]string) error {
	args["fmt"] = r.Dialect.QuoteString(r.Dialect.TranslateFormat(f.Format))
	return nil
}

func datePartArgs(r *Renderer, f *ir.Function, args map[string]string) error {
	if !slices.Contains(ir.AllIntervalParts, f.Part) {
		return r.fail(f, string(f.Kind), "unknown date part")
	}
	args["part"] = r.Dialect.DatePart(f.Part)
	return nil
}

func truncArgs(r *Renderer, f *ir.Function, args map[string]string) error {
	if !slices.Contains(ir.AllIntervalParts, f.Part) {
		return r.fail(f, string(f.Kind), "unknown date part")
	}
	args["part"] = r.Dialect.TruncPart(f.Part)
	return nil
}

func intervalArgs(r *Renderer, f *ir.Function, args map[string]string) error {
	if !slices.Contains(ir.AllIntervalParts, f.Part) {
		return r.fail(f, string(f.Kind), "unknown interval part")
	}
	args["part"] = string(f.Part)
	return nil
}

func listArgs(r *Renderer, f *ir.Function, args map[string]string) error {
	if f.Index < 1 {
		return r.fail(f, string(f.Kind), "list index is 1-based")
	}
	args["index"] = strconv.Itoa(f.Index - 1 + r.Dialect.IndexBase)
	return nil
}

func jsonArgs(r *Renderer, f *ir.Function, args map[string]string) error {
	if len(f.Path) == 0 {
		return r.fail(f, string(f.Kind), "empty JSON path")
	}
	args["path"] = r.Dialect.QuoteString(r.Dialect.JSONPath.Format(f.Path))
	return nil
}

func windowArgs(r *Renderer, f *ir.Function, args map[string]string) error {
	var parts []string
	if len(f.PartitionBy) > 0 {
		s, err := r.list(f.PartitionBy)
		if err != nil {
			return err
		}
		parts = append(parts, "PARTITION BY "+s)
	}
	if len(f.OrderBy) > 0 {
		s, err := r.list(f.OrderBy)
		if err != nil {
			return err
		}
		parts = append(parts, "ORDER BY "+s)
	}
	args["window"] = strings.Join(parts, " ")
	return nil
}
