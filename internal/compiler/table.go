package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/miles-bartnik/tyr/internal/ir"
	"github.com/miles-bartnik/tyr/internal/units"
)

// sourceKeys are the mutually exclusive ways a table names its source.
var sourceKeys = []string{"from", "file", "temp", "records", "union", "join", "subquery"}

// scope resolves column references inside one table definition.
type scope struct {
	c *compiler
	// qualifier is the table key used for unqualified column names.
	qualifier string
	// tables maps a qualifier to the compiled table whose columns it
	// exposes. Missing entries resolve to untyped references.
	tables map[string]*ir.Table
}

func (c *compiler) table(name string) (*ir.Table, error) {
	if t, ok := c.compiled[name]; ok {
		return t, nil
	}
	c.resolving[name] = true
	defer delete(c.resolving, name)

	v := c.specs[name]
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	src, sc, err := c.source(name, v)
	if err != nil {
		return nil, err
	}

	cols, err := sc.columns(v)
	if err != nil {
		return nil, err
	}
	t := ir.NewTable(name, src, cols...)

	if where := v.LookupPath(cue.ParsePath("where")); where.Exists() {
		cond, err := sc.expr(where)
		if err != nil {
			return nil, err
		}
		t = t.WithWhere(cond)
	}

	if t, err = ownColumns(t, v, "primary_key", func(t *ir.Table, cols []*ir.Column) *ir.Table {
		return t.WithPrimaryKey(cols...)
	}); err != nil {
		return nil, err
	}
	if t, err = ownColumns(t, v, "group_by", func(t *ir.Table, cols []*ir.Column) *ir.Table {
		return t.WithPrimaryKey(cols...).WithGroupBy()
	}); err != nil {
		return nil, err
	}

	if t, err = orderBy(t, v); err != nil {
		return nil, err
	}

	if d := v.LookupPath(cue.ParsePath("distinct")); d.Exists() {
		distinct, err := d.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if distinct {
			t = t.WithDistinct()
		}
	}

	c.compiled[name] = t
	return t, nil
}

// source compiles the table's single source and the scope its columns
// resolve in.
func (c *compiler) source(name string, v cue.Value) (ir.Source, *scope, error) {
	var found []string
	for _, k := range sourceKeys {
		if v.LookupPath(cue.ParsePath(k)).Exists() {
			found = append(found, k)
		}
	}
	if len(found) != 1 {
		return nil, nil, &CompileError{
			Field:   "table." + name,
			Message: fmt.Sprintf("exactly one source is required (one of %s), found %d", strings.Join(sourceKeys, ", "), len(found)),
			Pos:     v.Pos(),
		}
	}

	key := found[0]
	sv := v.LookupPath(cue.ParsePath(key))
	sc := &scope{c: c, qualifier: name, tables: map[string]*ir.Table{}}

	switch key {
	case "from":
		ref, err := sv.String()
		if err != nil {
			return nil, nil, formatCUEError(err)
		}
		if err := sc.bind(ref); err != nil {
			return nil, nil, err
		}
		sc.qualifier = ref
		return ir.From(ref), sc, nil

	case "file":
		f, err := fileSource(name, sv)
		if err != nil {
			return nil, nil, err
		}
		sc.qualifier = f.Alias
		return f, sc, nil

	case "temp":
		tmp, err := sv.String()
		if err != nil {
			return nil, nil, formatCUEError(err)
		}
		sc.qualifier = tmp
		return &ir.Temp{Name: tmp}, sc, nil

	case "records":
		recs, err := sc.records(name, sv)
		if err != nil {
			return nil, nil, err
		}
		return recs, sc, nil

	case "union":
		u, err := sc.union(name, sv)
		if err != nil {
			return nil, nil, err
		}
		return u, sc, nil

	case "join":
		j, err := sc.join(name, sv)
		if err != nil {
			return nil, nil, err
		}
		return j, sc, nil

	default: // subquery
		ref, err := sv.String()
		if err != nil {
			return nil, nil, formatCUEError(err)
		}
		up, err := c.upstream(ref)
		if err != nil {
			return nil, nil, err
		}
		if up == nil {
			return nil, nil, &CompileError{
				Field:   "table." + name + ".subquery",
				Message: fmt.Sprintf("%s is not a table of this schema or depends on %s", ref, name),
				Pos:     sv.Pos(),
			}
		}
		sc.qualifier = ref
		sc.tables[ref] = up
		return up.AsSubquery(), sc, nil
	}
}

// bind makes the columns of schema table ref available under its name.
func (sc *scope) bind(ref string) error {
	up, err := sc.c.upstream(ref)
	if err != nil {
		return err
	}
	if up != nil {
		sc.tables[ref] = up
	}
	return nil
}

func fileSource(name string, v cue.Value) (*ir.File, error) {
	path, ok, err := optionalString(v, "path")
	if err != nil {
		return nil, err
	}
	if !ok || path == "" {
		return nil, &CompileError{Field: "table." + name + ".file.path", Message: "path is required", Pos: v.Pos()}
	}

	format, ok, err := optionalString(v, "format")
	if err != nil {
		return nil, err
	}
	if !ok {
		format = strings.TrimPrefix(strings.ToLower(pathExt(path)), ".")
	}
	ff := ir.FileFormat(strings.ToLower(format))
	if !containsFormat(ff) {
		return nil, &CompileError{
			Field:   "table." + name + ".file.format",
			Message: fmt.Sprintf("unknown file format %q", format),
			Pos:     v.Pos(),
		}
	}

	alias, ok, err := optionalString(v, "alias")
	if err != nil {
		return nil, err
	}
	if !ok {
		alias = name
	}
	return ir.ReadFile(path, ff, alias), nil
}

func pathExt(p string) string {
	if i := strings.LastIndex(p, "."); i >= 0 && !strings.Contains(p[i:], "/") {
		return p[i:]
	}
	return ""
}

func containsFormat(f ir.FileFormat) bool {
	for _, known := range ir.AllFileFormats {
		if known == f {
			return true
		}
	}
	return false
}

func (sc *scope) records(name string, v cue.Value) (*ir.FromRecords, error) {
	names, err := optionalStrings(v, "columns")
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, &CompileError{Field: "table." + name + ".records.columns", Message: "at least one column is required", Pos: v.Pos()}
	}

	recs := &ir.FromRecords{Names: names, Alias: name}
	rows := v.LookupPath(cue.ParsePath("rows"))
	if rows.Exists() {
		iter, err := rows.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			row, err := sc.recordRow(name, names, iter.Value())
			if err != nil {
				return nil, err
			}
			recs.Rows = append(recs.Rows, row)
		}
	}
	return recs, nil
}

func (sc *scope) recordRow(name string, names []string, v cue.Value) ([]ir.Value, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var row []ir.Value
	for iter.Next() {
		n, err := sc.expr(iter.Value())
		if err != nil {
			return nil, err
		}
		val, ok := n.(ir.Value)
		if !ok {
			return nil, &CompileError{
				Field:   "table." + name + ".records.rows",
				Message: fmt.Sprintf("records hold literal values, got %s", n.Category()),
				Pos:     iter.Value().Pos(),
			}
		}
		row = append(row, val)
	}
	if len(row) != len(names) {
		return nil, &CompileError{
			Field:   "table." + name + ".records.rows",
			Message: fmt.Sprintf("row has %d values, want %d", len(row), len(names)),
			Pos:     v.Pos(),
		}
	}
	return row, nil
}

func (sc *scope) union(name string, v cue.Value) (*ir.Union, error) {
	members, err := optionalStrings(v, "members")
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, &CompileError{Field: "table." + name + ".union.members", Message: "at least one member is required", Pos: v.Pos()}
	}

	u := &ir.Union{All: true, Alias: name}
	if all := v.LookupPath(cue.ParsePath("all")); all.Exists() {
		if u.All, err = all.Bool(); err != nil {
			return nil, formatCUEError(err)
		}
	}

	for _, m := range members {
		t, err := sc.c.upstream(m)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, &CompileError{
				Field:   "table." + name + ".union.members",
				Message: fmt.Sprintf("%s is not a table of this schema or depends on %s", m, name),
				Pos:     v.Pos(),
			}
		}
		u.Members = append(u.Members, t)
	}
	// columns of the union take the names and types of the first member
	sc.tables[name] = u.Members[0]
	return u, nil
}

func (sc *scope) join(name string, v cue.Value) (ir.Source, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	type link struct {
		table string
		kind  ir.JoinKind
		on    cue.Value
	}
	var links []link
	for iter.Next() {
		lv := iter.Value()
		ref, ok, err := optionalString(lv, "table")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &CompileError{Field: "table." + name + ".join", Message: "every join entry needs a table", Pos: lv.Pos()}
		}
		kind := ir.InnerJoin
		if k, ok, err := optionalString(lv, "kind"); err != nil {
			return nil, err
		} else if ok {
			kind = ir.JoinKind(strings.ToUpper(k))
		}
		links = append(links, link{table: ref, kind: kind, on: lv.LookupPath(cue.ParsePath("on"))})
		if err := sc.bind(ref); err != nil {
			return nil, err
		}
	}
	if len(links) < 2 {
		return nil, &CompileError{Field: "table." + name + ".join", Message: "a join needs at least two tables", Pos: v.Pos()}
	}
	sc.qualifier = links[0].table

	steps := make([]ir.JoinStep, 0, len(links)-1)
	for _, l := range links[1:] {
		step := ir.JoinStep{Kind: l.kind, Right: ir.From(l.table)}
		if l.on.Exists() {
			on, err := sc.expr(l.on)
			if err != nil {
				return nil, err
			}
			step.On = on
		}
		steps = append(steps, step)
	}

	base := ir.From(links[0].table)
	if len(steps) == 1 {
		return &ir.Join{Kind: steps[0].Kind, Left: base, Right: steps[0].Right, On: steps[0].On}, nil
	}
	return &ir.CompoundJoin{Base: base, Steps: steps}, nil
}

// columns compiles the projection in field order.
func (sc *scope) columns(v cue.Value) ([]*ir.Column, error) {
	cv := v.LookupPath(cue.ParsePath("columns"))
	if !cv.Exists() {
		return nil, nil
	}
	iter, err := cv.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var cols []*ir.Column
	for iter.Next() {
		col, err := sc.column(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func (sc *scope) column(name string, v cue.Value) (*ir.Column, error) {
	var col *ir.Column

	if ev := v.LookupPath(cue.ParsePath("expr")); ev.Exists() {
		n, err := sc.expr(ev)
		if err != nil {
			return nil, err
		}
		col = ir.Derive(name, n)
	} else {
		ref, ok, err := optionalString(v, "select")
		if err != nil {
			return nil, err
		}
		if !ok {
			ref = name
		}
		if q, ok, err := optionalString(v, "table"); err != nil {
			return nil, err
		} else if ok {
			ref = q + "." + ref
		}
		col = sc.ref(ref)
		if col.Name != name {
			col = col.As(name)
		}
	}

	if t, ok, err := optionalString(v, "type"); err != nil {
		return nil, err
	} else if ok {
		dt, known := ir.ParseDataType(t)
		if !known {
			return nil, &CompileError{Field: "type", Message: fmt.Sprintf("unknown data type %q", t), Pos: v.Pos()}
		}
		col = col.WithType(dt)
	}

	if u, ok, err := optionalString(v, "unit"); err != nil {
		return nil, err
	} else if ok {
		unit, err := units.Parse(u)
		if err != nil {
			return nil, &CompileError{Field: "unit", Message: err.Error(), Pos: v.Pos()}
		}
		col = col.WithUnit(unit)
	}
	return col, nil
}

// ref resolves "column" or "qualifier.column" to a column reference,
// typed from the upstream table when it is known.
func (sc *scope) ref(ref string) *ir.Column {
	q, name := sc.qualifier, ref
	if i := strings.Index(ref, "."); i > 0 {
		q, name = ref[:i], ref[i+1:]
	}
	if up, ok := sc.tables[q]; ok {
		if col, ok := up.Column(name); ok {
			return ir.Col(q, name, col.Type).WithUnit(col.Unit)
		}
	}
	return ir.Col(q, name, ir.TypeUnknown)
}

// ownColumns applies a clause listing columns of t by name.
func ownColumns(t *ir.Table, v cue.Value, field string, apply func(*ir.Table, []*ir.Column) *ir.Table) (*ir.Table, error) {
	names, err := optionalStrings(v, field)
	if err != nil || names == nil {
		return t, err
	}
	cols := make([]*ir.Column, len(names))
	for i, n := range names {
		col, ok := t.Column(n)
		if !ok {
			return nil, &CompileError{
				Field:   "table." + t.Name + "." + field,
				Message: fmt.Sprintf("%s is not a column of %s", n, t.Name),
				Pos:     v.LookupPath(cue.ParsePath(field)).Pos(),
			}
		}
		cols[i] = col
	}
	return apply(t, cols), nil
}

// orderBy accepts a list of column names or {col, desc} structs.
func orderBy(t *ir.Table, v cue.Value) (*ir.Table, error) {
	ov := v.LookupPath(cue.ParsePath("order_by"))
	if !ov.Exists() {
		return t, nil
	}
	iter, err := ov.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var cols []*ir.Column
	var dirs []ir.Direction
	for iter.Next() {
		ev := iter.Value()
		name, err := ev.String()
		dir := ir.Asc
		if err != nil {
			var ok bool
			name, ok, err = optionalString(ev, "col")
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &CompileError{Field: "table." + t.Name + ".order_by", Message: "entries are column names or {col, desc}", Pos: ev.Pos()}
			}
			if d := ev.LookupPath(cue.ParsePath("desc")); d.Exists() {
				desc, err := d.Bool()
				if err != nil {
					return nil, formatCUEError(err)
				}
				if desc {
					dir = ir.Desc
				}
			}
		}
		col, ok := t.Column(name)
		if !ok {
			return nil, &CompileError{
				Field:   "table." + t.Name + ".order_by",
				Message: fmt.Sprintf("%s is not a column of %s", name, t.Name),
				Pos:     ev.Pos(),
			}
		}
		cols = append(cols, col)
		dirs = append(dirs, dir)
	}
	return t.WithOrderBy(cols, dirs...), nil
}
