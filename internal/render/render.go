// Package render turns IR nodes into dialect-specific SQL text.
//
// Dispatch happens in two stages. Function kinds with custom syntax are
// rendered through the dialect's function templates; everything else falls
// back to the generic rule of its category (name(args) for functions,
// (left OP right) for operators, SELECT ... for tables).
//
// Rendering is pure: the same node and dialect always produce the same
// bytes, and nodes are never modified.
package render

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/miles-bartnik/tyr/internal/dialect"
	"github.com/miles-bartnik/tyr/internal/ir"
)

// Renderer renders nodes for one dialect. Schema qualifies table
// references; it may be empty.
type Renderer struct {
	Dialect *dialect.Dialect
	Schema  string
}

// New returns a renderer for d that qualifies tables with schema.
func New(d *dialect.Dialect, schema string) *Renderer {
	return &Renderer{Dialect: d, Schema: schema}
}

// Render renders n with dialect d and no schema qualification.
func Render(n ir.Node, d *dialect.Dialect) (string, error) {
	return New(d, "").Render(n)
}

// Render returns the SQL text of n.
func (r *Renderer) Render(n ir.Node) (string, error) {
	if isNil(n) {
		return "", r.fail(n, "", "nil node")
	}

	switch v := n.(type) {
	case ir.Value:
		return r.value(v)
	case *ir.Column:
		return r.columnRef(v)
	case *ir.Table:
		return r.table(v)
	case *ir.Function:
		return r.function(v)
	case *ir.Operator:
		return r.operator(v)
	case *ir.Expression:
		return r.expression(v)
	case ir.Source:
		return r.source(v)
	default:
		return "", r.fail(n, "", "unknown node type")
	}
}

func (r *Renderer) fail(n any, kind, reason string) error {
	return &UnrenderableError{
		Node:    fmt.Sprintf("%T", n),
		Kind:    kind,
		Dialect: r.Dialect.Name,
		Reason:  reason,
	}
}

func (r *Renderer) unsupported(n any, kind, reason string) error {
	return &UnrenderableError{
		Node:        fmt.Sprintf("%T", n),
		Kind:        kind,
		Dialect:     r.Dialect.Name,
		Reason:      reason,
		Unsupported: true,
	}
}

func isNil(n ir.Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// list renders nodes and joins them with ", ".
func (r *Renderer) list(nodes []ir.Node) (string, error) {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		s, err := r.Render(n)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ", "), nil
}

// ----------------------------------------------------------------------------
// Values
// ----------------------------------------------------------------------------

func (r *Renderer) value(v ir.Value) (string, error) {
	d := r.Dialect
	switch val := v.(type) {
	case *ir.Varchar:
		return d.QuoteString(val.V), nil
	case *ir.Integer:
		return strconv.FormatInt(val.V, 10), nil
	case *ir.Float:
		return r.float(val)
	case *ir.Boolean:
		if val.V {
			return "TRUE", nil
		}
		return "FALSE", nil
	case *ir.Date:
		return d.Literals.Date.Fill(map[string]string{"v": val.V.Format("2006-01-02")}), nil
	case *ir.Timestamp:
		return d.Literals.Timestamp.Fill(map[string]string{"v": val.V.Format("2006-01-02 15:04:05")}), nil
	case *ir.Null:
		return "NULL", nil
	case *ir.Interval:
		if !slices.Contains(ir.AllIntervalParts, val.Part) {
			return "", r.fail(v, string(val.Part), "unknown interval part")
		}
		return d.Literals.Interval.Fill(map[string]string{
			"n":    strconv.FormatInt(val.N, 10),
			"part": string(val.Part),
		}), nil
	case *ir.List:
		items, err := r.list(val.Items)
		if err != nil {
			return "", err
		}
		return d.Literals.List.Fill(map[string]string{"items": items}), nil
	case *ir.Struct:
		fields := make([]string, len(val.Fields))
		for i, f := range val.Fields {
			s, err := r.Render(f.Value)
			if err != nil {
				return "", err
			}
			fields[i] = d.Literals.StructField.Fill(map[string]string{
				"name": strings.ReplaceAll(f.Name, "'", "''"),
				"v":    s,
			})
		}
		return d.Literals.Struct.Fill(map[string]string{"fields": strings.Join(fields, ", ")}), nil
	case *ir.Tuple:
		items, err := r.list(val.Items)
		if err != nil {
			return "", err
		}
		return "(" + items + ")", nil
	case *ir.WildCard:
		if val.Table == "" {
			return "*", nil
		}
		return d.Quote(val.Table) + ".*", nil
	case *ir.Subquery:
		if val.Table == nil {
			return "", r.fail(v, "", "subquery without table")
		}
		s, err := r.table(val.Table)
		if err != nil {
			return "", err
		}
		return "(" + s + ")", nil
	case *ir.Datatype:
		if val.T == ir.TypeUnknown {
			return "", r.fail(v, "", "empty type name")
		}
		return d.TypeName(val.T), nil
	default:
		return "", r.fail(v, "", "unknown value type")
	}
}

// float renders the shortest representation that still reads back as a
// floating point literal.
func (r *Renderer) float(v *ir.Float) (string, error) {
	if math.IsNaN(v.V) || math.IsInf(v.V, 0) {
		return "", r.fail(v, "", "non-finite float")
	}
	s := strconv.FormatFloat(v.V, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s, nil
}

// ----------------------------------------------------------------------------
// Columns and tables
// ----------------------------------------------------------------------------

// columnRef renders a column used inside an expression. Derived columns
// are inlined.
func (r *Renderer) columnRef(c *ir.Column) (string, error) {
	if c.Expr != nil {
		return r.Render(c.Expr)
	}
	if c.Name == "" {
		return "", r.fail(c, "", "column without a name")
	}
	if c.Table == "" {
		return r.Dialect.Quote(c.Name), nil
	}
	return r.Dialect.Quote(c.Table) + "." + r.Dialect.Quote(c.Name), nil
}

// projection renders a column in a SELECT list.
func (r *Renderer) projection(c *ir.Column) (string, error) {
	if isNil(c) {
		return "", r.fail(c, "", "nil column")
	}
	s, err := r.columnRef(c)
	if err != nil {
		return "", err
	}
	if c.Expr == nil {
		return s, nil
	}
	return s + " AS " + r.Dialect.Quote(c.Name), nil
}

// Table renders the SELECT statement defining t.
func (r *Renderer) Table(t *ir.Table) (string, error) {
	if t == nil {
		return "", r.fail(t, "", "nil table")
	}
	return r.table(t)
}

func (r *Renderer) table(t *ir.Table) (string, error) {
	if isNil(t.Source) {
		return "", r.fail(t, t.Name, "table without a source")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if t.Distinct {
		b.WriteString("DISTINCT ")
	}

	if len(t.Columns) == 0 {
		b.WriteString("*")
	} else {
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			s, err := r.projection(c)
			if err != nil {
				return "", err
			}
			cols[i] = s
		}
		b.WriteString(strings.Join(cols, ", "))
	}

	src, err := r.source(t.Source)
	if err != nil {
		return "", err
	}
	b.WriteString(" FROM ")
	b.WriteString(src)

	if t.Where != nil {
		cond, err := r.Render(t.Where)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE ")
		b.WriteString(cond)
	}

	if t.GroupBy {
		if len(t.PrimaryKey) == 0 {
			return "", r.fail(t, t.Name, "group by without a primary key")
		}
		keys := make([]string, len(t.PrimaryKey))
		for i, c := range t.PrimaryKey {
			s, err := r.columnRef(c)
			if err != nil {
				return "", err
			}
			keys[i] = s
		}
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(keys, ", "))
	}

	if t.OrderBy != nil && len(t.OrderBy.Columns) > 0 {
		keys := make([]string, len(t.OrderBy.Columns))
		for i, c := range t.OrderBy.Columns {
			keys[i] = r.Dialect.Quote(c.Name) + " " + t.OrderBy.DirectionAt(i).String()
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(keys, ", "))
	}

	return b.String(), nil
}

// ----------------------------------------------------------------------------
// Sources
// ----------------------------------------------------------------------------

func (r *Renderer) source(s ir.Source) (string, error) {
	if isNil(s) {
		return "", r.fail(s, "", "nil source")
	}
	d := r.Dialect

	switch src := s.(type) {
	case *ir.TableRef:
		q := d.Qualify(r.Schema, src.Name)
		if q == d.Quote(src.Name) {
			return q, nil
		}
		return q + " AS " + d.Quote(src.Name), nil
	case *ir.Temp:
		return d.Quote(src.Name), nil
	case *ir.File:
		tmpl, ok := d.FileReader(src.Format)
		if !ok {
			return "", r.unsupported(s, string(src.Format), "no file reader")
		}
		out := tmpl.Fill(map[string]string{"path": d.QuoteString(src.Path)})
		if src.Alias != "" {
			out += " AS " + d.Quote(src.Alias)
		}
		return out, nil
	case *ir.FromRecords:
		return r.records(src)
	case *ir.Union:
		return r.union(src)
	case *ir.Subquery:
		if src.Table == nil {
			return "", r.fail(s, "", "subquery without table")
		}
		body, err := r.table(src.Table)
		if err != nil {
			return "", err
		}
		return "(" + body + ") AS " + d.Quote(src.Table.Name), nil
	case *ir.Join:
		left, err := r.source(src.Left)
		if err != nil {
			return "", err
		}
		return r.joinStep(s, left, src.Kind, src.Right, src.On)
	case *ir.CompoundJoin:
		out, err := r.source(src.Base)
		if err != nil {
			return "", err
		}
		for _, step := range src.Steps {
			out, err = r.joinStep(s, out, step.Kind, step.Right, step.On)
			if err != nil {
				return "", err
			}
		}
		return out, nil
	default:
		return "", r.fail(s, "", "unknown source type")
	}
}

func (r *Renderer) joinStep(n ir.Node, left string, kind ir.JoinKind, right ir.Source, on ir.Node) (string, error) {
	if !slices.Contains(ir.AllJoinKinds, kind) {
		return "", r.fail(n, string(kind), "unknown join kind")
	}
	rs, err := r.source(right)
	if err != nil {
		return "", err
	}
	if kind == ir.CrossJoin {
		return left + " CROSS JOIN " + rs, nil
	}
	cond := "TRUE"
	if on != nil {
		cond, err = r.Render(on)
		if err != nil {
			return "", err
		}
	}
	return left + " " + string(kind) + " JOIN " + rs + " ON " + cond, nil
}

func (r *Renderer) records(src *ir.FromRecords) (string, error) {
	d := r.Dialect
	if len(src.Names) == 0 {
		return "", r.fail(src, "", "records without columns")
	}
	alias := src.Alias
	if alias == "" {
		alias = "records"
	}

	var selects []string
	if len(src.Rows) == 0 {
		cols := make([]string, len(src.Names))
		for i, name := range src.Names {
			cols[i] = "NULL AS " + d.Quote(name)
		}
		selects = append(selects, "SELECT "+strings.Join(cols, ", ")+" WHERE 1 = 0")
	}
	for i, row := range src.Rows {
		if len(row) != len(src.Names) {
			return "", r.fail(src, "", fmt.Sprintf("row %d has %d values, want %d", i, len(row), len(src.Names)))
		}
		cols := make([]string, len(row))
		for j, v := range row {
			s, err := r.Render(v)
			if err != nil {
				return "", err
			}
			cols[j] = s + " AS " + d.Quote(src.Names[j])
		}
		selects = append(selects, "SELECT "+strings.Join(cols, ", "))
	}
	return "(" + strings.Join(selects, " UNION ALL ") + ") AS " + d.Quote(alias), nil
}

func (r *Renderer) union(u *ir.Union) (string, error) {
	if len(u.Members) == 0 {
		return "", r.fail(u, "", "union without members")
	}
	alias := u.Alias
	if alias == "" {
		alias = u.Members[0].Name
	}
	sep := " UNION "
	if u.All {
		sep = " UNION ALL "
	}

	first := u.Members[0]
	branches := make([]string, len(u.Members))
	for i, m := range u.Members {
		branch, err := r.unionBranch(u, first, m)
		if err != nil {
			return "", err
		}
		branches[i] = branch
	}
	return "(" + strings.Join(branches, sep) + ") AS " + r.Dialect.Quote(alias), nil
}

// unionBranch renders member m with its columns renamed positionally after
// the first member.
func (r *Renderer) unionBranch(u *ir.Union, first, m *ir.Table) (string, error) {
	if m == nil {
		return "", r.fail(u, "", "nil union member")
	}
	if m == first || len(first.Columns) == 0 {
		return r.table(m)
	}
	if len(m.Columns) != len(first.Columns) {
		return "", r.fail(u, "", fmt.Sprintf("member %s has %d columns, want %d", m.Name, len(m.Columns), len(first.Columns)))
	}

	cols := make([]*ir.Column, len(m.Columns))
	for i, c := range m.Columns {
		name := first.Columns[i].Name
		switch {
		case c.Name == name:
			cols[i] = c
		case c.Expr != nil:
			cp := *c
			cp.Name = name
			cols[i] = &cp
		default:
			cols[i] = c.As(name)
		}
	}
	return r.table(m.WithColumns(cols...))
}

// ----------------------------------------------------------------------------
// Operators and expressions
// ----------------------------------------------------------------------------

func (r *Renderer) operator(o *ir.Operator) (string, error) {
	if !slices.Contains(ir.AllOperatorKinds, o.Kind) {
		return "", r.fail(o, string(o.Kind), "unknown operator kind")
	}
	if isNil(o.Left) || isNil(o.Right) {
		return "", r.fail(o, string(o.Kind), "missing operand")
	}
	left, err := r.Render(o.Left)
	if err != nil {
		return "", err
	}
	right, err := r.Render(o.Right)
	if err != nil {
		return "", err
	}
	return "(" + left + " " + r.Dialect.OperatorToken(o.Kind) + " " + right + ")", nil
}

func (r *Renderer) expression(e *ir.Expression) (string, error) {
	ops := make([]string, len(e.Operands))
	for i, n := range e.Operands {
		s, err := r.Render(n)
		if err != nil {
			return "", err
		}
		ops[i] = s
	}

	need := func(n int) error {
		if len(ops) != n {
			return r.fail(e, string(e.Kind), fmt.Sprintf("want %d operands, got %d", n, len(ops)))
		}
		return nil
	}

	switch e.Kind {
	case ir.ExprCase:
		if len(ops) < 2 {
			return "", r.fail(e, string(e.Kind), "case without a branch")
		}
		var b strings.Builder
		b.WriteString("CASE")
		i := 0
		for ; i+1 < len(ops); i += 2 {
			b.WriteString(" WHEN " + ops[i] + " THEN " + ops[i+1])
		}
		if i < len(ops) {
			b.WriteString(" ELSE " + ops[i])
		}
		b.WriteString(" END")
		return b.String(), nil
	case ir.ExprNot:
		if err := need(1); err != nil {
			return "", err
		}
		return "(NOT " + ops[0] + ")", nil
	case ir.ExprNegate:
		if err := need(1); err != nil {
			return "", err
		}
		return "(-" + ops[0] + ")", nil
	case ir.ExprIsNull:
		if err := need(1); err != nil {
			return "", err
		}
		return "(" + ops[0] + " IS NULL)", nil
	case ir.ExprIsNotNull:
		if err := need(1); err != nil {
			return "", err
		}
		return "(" + ops[0] + " IS NOT NULL)", nil
	case ir.ExprBetween:
		if err := need(3); err != nil {
			return "", err
		}
		return "(" + ops[0] + " BETWEEN " + ops[1] + " AND " + ops[2] + ")", nil
	case ir.ExprExists:
		if err := need(1); err != nil {
			return "", err
		}
		return "EXISTS " + ops[0], nil
	case ir.ExprParen:
		if err := need(1); err != nil {
			return "", err
		}
		return "(" + ops[0] + ")", nil
	default:
		return "", r.fail(e, string(e.Kind), "unknown expression kind")
	}
}
