package compiler

import (
	"fmt"
	"strings"
	"time"

	"cuelang.org/go/cue"

	"github.com/miles-bartnik/tyr/internal/ir"
	"github.com/miles-bartnik/tyr/internal/units"
)

// exprKeys are the keys that select an expression form, in lookup order.
// Other keys of the struct are arguments of the selected form.
var exprKeys = []string{
	"col", "str", "int", "num", "bool", "null", "date", "timestamp",
	"interval", "list", "tuple", "struct", "subquery", "wildcard",
	"convert", "op", "fn", "case", "expr",
}

// operatorWords maps spelled-out operator names onto operator kinds.
var operatorWords = map[string]ir.OperatorKind{
	"!=":     ir.OpNe,
	"ADD":    ir.OpAdd,
	"SUB":    ir.OpSub,
	"MUL":    ir.OpMul,
	"DIV":    ir.OpDiv,
	"MOD":    ir.OpMod,
	"EQ":     ir.OpEq,
	"NE":     ir.OpNe,
	"LT":     ir.OpLt,
	"LE":     ir.OpLe,
	"GT":     ir.OpGt,
	"GE":     ir.OpGe,
	"NOT_IN": ir.OpNotIn,
	"IS_NOT": ir.OpIsNot,
}

// expr compiles one expression. Scalars are literals; structs select a
// form by key, e.g. {col: "temp_f"} or {op: ">", args: [...]}.
func (sc *scope) expr(v cue.Value) (ir.Node, error) {
	switch v.Kind() {
	case cue.NullKind:
		return ir.NullValue(), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Bool(b), nil
	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Int(i), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Num(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Str(s), nil
	case cue.StructKind:
		return sc.form(v)
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return nil, exprError(v, fmt.Sprintf("unsupported expression of kind %s", v.IncompleteKind()))
}

func exprError(v cue.Value, msg string) error {
	return &CompileError{Field: "expr", Message: msg, Pos: v.Pos()}
}

func (sc *scope) form(v cue.Value) (ir.Node, error) {
	key := ""
	for _, k := range exprKeys {
		if v.LookupPath(cue.ParsePath(k)).Exists() {
			key = k
			break
		}
	}
	if key == "" {
		return nil, exprError(v, "struct is not an expression; expected one of "+strings.Join(exprKeys, ", "))
	}
	arg := v.LookupPath(cue.ParsePath(key))

	switch key {
	case "col":
		ref, err := arg.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return sc.ref(ref), nil

	case "str":
		s, err := arg.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Str(s), nil

	case "int":
		i, err := arg.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		u, err := unitArg(v)
		if err != nil {
			return nil, err
		}
		return ir.Int(i).WithUnit(u), nil

	case "num":
		f, err := arg.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		u, err := unitArg(v)
		if err != nil {
			return nil, err
		}
		return ir.Quantity(f, u), nil

	case "bool":
		b, err := arg.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Bool(b), nil

	case "null":
		return ir.NullValue(), nil

	case "date":
		t, err := timeArg(arg, time.DateOnly)
		if err != nil {
			return nil, err
		}
		return &ir.Date{V: t}, nil

	case "timestamp":
		t, err := timeArg(arg, time.RFC3339, time.DateTime)
		if err != nil {
			return nil, err
		}
		return &ir.Timestamp{V: t}, nil

	case "interval":
		n, err := arg.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		part, err := partArg(v)
		if err != nil {
			return nil, err
		}
		return &ir.Interval{N: n, Part: part}, nil

	case "list":
		items, err := sc.exprs(arg)
		if err != nil {
			return nil, err
		}
		l := &ir.List{Items: items}
		if t, ok, err := optionalString(v, "type"); err != nil {
			return nil, err
		} else if ok {
			dt, known := ir.ParseDataType(t)
			if !known {
				return nil, exprError(v, fmt.Sprintf("unknown data type %q", t))
			}
			l.Elem = dt
		} else if len(items) > 0 {
			l.Elem = ir.TypeOf(items[0])
		}
		return l, nil

	case "tuple":
		items, err := sc.exprs(arg)
		if err != nil {
			return nil, err
		}
		return &ir.Tuple{Items: items}, nil

	case "struct":
		return sc.structLiteral(arg)

	case "subquery":
		t, err := sc.subquery(arg)
		if err != nil {
			return nil, err
		}
		return t.AsSubquery(), nil

	case "wildcard":
		table := ""
		if arg.Kind() == cue.StringKind {
			var err error
			if table, err = arg.String(); err != nil {
				return nil, formatCUEError(err)
			}
		}
		return &ir.WildCard{Table: table}, nil

	case "convert":
		return sc.convert(v, arg)

	case "op":
		return sc.operator(v, arg)

	case "fn":
		return sc.function(v, arg)

	case "case":
		return sc.caseExpr(v, arg)

	default: // expr
		return sc.expression(v, arg)
	}
}

func (sc *scope) exprs(v cue.Value) ([]ir.Node, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []ir.Node
	for iter.Next() {
		n, err := sc.expr(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (sc *scope) args(v cue.Value) ([]ir.Node, error) {
	return sc.exprs(v.LookupPath(cue.ParsePath("args")))
}

func (sc *scope) structLiteral(v cue.Value) (ir.Node, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	s := &ir.Struct{}
	for iter.Next() {
		n, err := sc.expr(iter.Value())
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, ir.StructField{Name: iter.Selector().Unquoted(), Value: n})
	}
	return s, nil
}

// subquery resolves a schema table used as a value.
func (sc *scope) subquery(v cue.Value) (*ir.Table, error) {
	name, err := v.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	t, err := sc.c.upstream(name)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, exprError(v, fmt.Sprintf("subquery %s is not a table of this schema or depends on the current table", name))
	}
	return t, nil
}

func (sc *scope) convert(v, arg cue.Value) (ir.Node, error) {
	n, err := sc.expr(arg)
	if err != nil {
		return nil, err
	}
	to, ok, err := optionalString(v, "to")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, exprError(v, "convert needs a target unit in to")
	}
	if to == "SI" {
		out, err := ir.ConvertToSI(n)
		if err != nil {
			return nil, exprError(v, err.Error())
		}
		return out, nil
	}
	u, err := units.Parse(to)
	if err != nil {
		return nil, exprError(v, err.Error())
	}
	out, err := ir.ConvertToUnit(n, u)
	if err != nil {
		return nil, exprError(v, err.Error())
	}
	return out, nil
}

func (sc *scope) operator(v, arg cue.Value) (ir.Node, error) {
	token, err := arg.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	kind := ir.OperatorKind(strings.ToUpper(strings.TrimSpace(token)))
	if k, ok := operatorWords[string(kind)]; ok {
		kind = k
	}

	args, err := sc.args(v)
	if err != nil {
		return nil, err
	}

	switch kind {
	case ir.OpAnd:
		return ir.And(args...), nil
	case ir.OpOr:
		return ir.Or(args...), nil
	case ir.OpIn, ir.OpNotIn:
		if len(args) < 2 {
			return nil, exprError(v, fmt.Sprintf("%s needs a value and at least one item", kind))
		}
		// a single subquery item is the row source rather than a tuple member
		if sub, ok := args[1].(*ir.Subquery); ok && len(args) == 2 {
			return &ir.Operator{Kind: kind, Left: args[0], Right: sub}, nil
		}
		if kind == ir.OpIn {
			return ir.In(args[0], args[1:]...), nil
		}
		return ir.NotIn(args[0], args[1:]...), nil
	}

	if !knownOperator(kind) {
		return nil, exprError(v, fmt.Sprintf("unknown operator %q", token))
	}
	if len(args) != 2 {
		return nil, exprError(v, fmt.Sprintf("operator %s takes two arguments, got %d", kind, len(args)))
	}
	op, err := ir.NewOperator(kind, args[0], args[1])
	if err != nil {
		return nil, exprError(v, err.Error())
	}
	return op, nil
}

func knownOperator(k ir.OperatorKind) bool {
	for _, known := range ir.AllOperatorKinds {
		if known == k {
			return true
		}
	}
	return false
}

func (sc *scope) function(v, arg cue.Value) (ir.Node, error) {
	name, err := arg.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	kind := ir.FunctionKind(strings.ToLower(name))
	known := false
	for _, k := range ir.AllFunctionKinds {
		if k == kind {
			known = true
			break
		}
	}
	if !known {
		return nil, exprError(v, fmt.Sprintf("unknown function %q", name))
	}

	args, err := sc.args(v)
	if err != nil {
		return nil, err
	}
	f := ir.Call(kind, args...)

	switch kind {
	case ir.FuncSum, ir.FuncAvg, ir.FuncMin, ir.FuncMax:
		if len(args) == 1 {
			f.Unit = ir.UnitOf(args[0])
		}
	}

	if t, ok, err := optionalString(v, "target"); err != nil {
		return nil, err
	} else if ok {
		dt, known := ir.ParseDataType(t)
		if !known {
			return nil, exprError(v, fmt.Sprintf("unknown data type %q", t))
		}
		f.Target = dt
	}
	if f.Pattern, _, err = optionalString(v, "pattern"); err != nil {
		return nil, err
	}
	if f.Format, _, err = optionalString(v, "format"); err != nil {
		return nil, err
	}
	if f.Path, err = optionalStrings(v, "path"); err != nil {
		return nil, err
	}
	if g := v.LookupPath(cue.ParsePath("group")); g.Exists() {
		n, err := g.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		f.Group = int(n)
	}
	if i := v.LookupPath(cue.ParsePath("index")); i.Exists() {
		n, err := i.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		f.Index = int(n)
	}
	if v.LookupPath(cue.ParsePath("part")).Exists() {
		if f.Part, err = partArg(v); err != nil {
			return nil, err
		}
	}
	if f.PartitionBy, err = sc.exprs(v.LookupPath(cue.ParsePath("partition_by"))); err != nil {
		return nil, err
	}
	if f.OrderBy, err = sc.exprs(v.LookupPath(cue.ParsePath("order_by"))); err != nil {
		return nil, err
	}
	if v.LookupPath(cue.ParsePath("unit")).Exists() {
		u, err := unitArg(v)
		if err != nil {
			return nil, err
		}
		f = f.WithUnit(u)
	}
	return f, nil
}

func (sc *scope) caseExpr(v, arg cue.Value) (ir.Node, error) {
	iter, err := arg.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var branches []ir.When
	for iter.Next() {
		bv := iter.Value()
		when, err := sc.expr(bv.LookupPath(cue.ParsePath("when")))
		if err != nil {
			return nil, err
		}
		then, err := sc.expr(bv.LookupPath(cue.ParsePath("then")))
		if err != nil {
			return nil, err
		}
		branches = append(branches, ir.When{Cond: when, Then: then})
	}
	if len(branches) == 0 {
		return nil, exprError(v, "case needs at least one branch")
	}

	var els ir.Node
	if ev := v.LookupPath(cue.ParsePath("else")); ev.Exists() {
		if els, err = sc.expr(ev); err != nil {
			return nil, err
		}
	}
	return ir.Case(branches, els), nil
}

func (sc *scope) expression(v, arg cue.Value) (ir.Node, error) {
	name, err := arg.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	kind := ir.ExpressionKind(strings.ToLower(name))

	if kind == ir.ExprExists {
		t, err := sc.subquery(v.LookupPath(cue.ParsePath("table")))
		if err != nil {
			return nil, err
		}
		return ir.Exists(t), nil
	}

	args, err := sc.args(v)
	if err != nil {
		return nil, err
	}
	want := 1
	if kind == ir.ExprBetween {
		want = 3
	}
	if len(args) != want {
		return nil, exprError(v, fmt.Sprintf("%s takes %d arguments, got %d", kind, want, len(args)))
	}

	switch kind {
	case ir.ExprNot:
		return ir.Not(args[0]), nil
	case ir.ExprNegate:
		return ir.Negate(args[0]), nil
	case ir.ExprIsNull:
		return ir.IsNull(args[0]), nil
	case ir.ExprIsNotNull:
		return ir.IsNotNull(args[0]), nil
	case ir.ExprBetween:
		return ir.Between(args[0], args[1], args[2]), nil
	case ir.ExprParen:
		return ir.Paren(args[0]), nil
	}
	return nil, exprError(v, fmt.Sprintf("unknown expression %q; use case for CASE", name))
}

func unitArg(v cue.Value) (units.Unit, error) {
	s, ok, err := optionalString(v, "unit")
	if err != nil || !ok {
		return units.None, err
	}
	u, err := units.Parse(s)
	if err != nil {
		return units.None, exprError(v, err.Error())
	}
	return u, nil
}

func partArg(v cue.Value) (ir.IntervalPart, error) {
	s, ok, err := optionalString(v, "part")
	if err != nil {
		return "", err
	}
	part := ir.IntervalPart(strings.ToLower(strings.TrimSuffix(s, "s")))
	for _, p := range ir.AllIntervalParts {
		if ok && p == part {
			return p, nil
		}
	}
	return "", exprError(v, fmt.Sprintf("unknown interval part %q", s))
}

func timeArg(v cue.Value, layouts ...string) (time.Time, error) {
	s, err := v.String()
	if err != nil {
		return time.Time{}, formatCUEError(err)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, exprError(v, fmt.Sprintf("cannot parse %q as %s", s, strings.Join(layouts, " or ")))
}
