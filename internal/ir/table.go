package ir

// Direction is the sort direction of one ORDER BY column.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// OrderBy is an ordered list of sort columns. Directions is parallel to
// Columns; missing entries default to Asc.
type OrderBy struct {
	Columns    []*Column
	Directions []Direction
}

// DirectionAt returns the direction of the i-th sort column.
func (o *OrderBy) DirectionAt(i int) Direction {
	if i < len(o.Directions) {
		return o.Directions[i]
	}
	return Asc
}

// Table is a named SELECT over a Source.
//
// Semantics:
//
//	SELECT [DISTINCT] <columns> FROM <source>
//	[WHERE <where>] [GROUP BY <primary key>] [ORDER BY <order by>]
//
// An empty column list selects every column of the source. GroupBy groups
// by the primary key columns, so it requires a non-empty PrimaryKey.
type Table struct {
	Name       string
	Source     Source
	Columns    []*Column
	PrimaryKey []*Column
	GroupBy    bool
	Where      Node
	OrderBy    *OrderBy
	Distinct   bool
}

// NewTable returns a table named name selecting cols from src.
func NewTable(name string, src Source, cols ...*Column) *Table {
	return &Table{Name: name, Source: src, Columns: cols}
}

// Col returns a reference to the output column name of t. If t has no such
// column the reference carries an unknown type; Validate reports it.
func (t *Table) Col(name string) *Column {
	for _, c := range t.Columns {
		if c != nil && c.Name == name {
			return &Column{Name: c.Name, Type: c.Type, Unit: c.Unit, Table: t.Name}
		}
	}
	return &Column{Name: name, Table: t.Name}
}

// Column returns the column named name and whether it exists.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c != nil && c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// WithColumns returns a copy of t projecting cols.
func (t *Table) WithColumns(cols ...*Column) *Table {
	cp := *t
	cp.Columns = cols
	return &cp
}

// WithPrimaryKey returns a copy of t keyed by cols.
func (t *Table) WithPrimaryKey(cols ...*Column) *Table {
	cp := *t
	cp.PrimaryKey = cols
	return &cp
}

// WithGroupBy returns a copy of t grouped by its primary key.
func (t *Table) WithGroupBy() *Table {
	cp := *t
	cp.GroupBy = true
	return &cp
}

// WithWhere returns a copy of t filtered by cond.
func (t *Table) WithWhere(cond Node) *Table {
	cp := *t
	cp.Where = cond
	return &cp
}

// WithOrderBy returns a copy of t sorted by cols. dirs is parallel to cols.
func (t *Table) WithOrderBy(cols []*Column, dirs ...Direction) *Table {
	cp := *t
	cp.OrderBy = &OrderBy{Columns: cols, Directions: dirs}
	return &cp
}

// WithDistinct returns a copy of t selecting distinct rows.
func (t *Table) WithDistinct() *Table {
	cp := *t
	cp.Distinct = true
	return &cp
}

// AsSubquery wraps t for use as a value or source.
func (t *Table) AsSubquery() *Subquery {
	return &Subquery{Table: t}
}

func (*Table) Category() Category { return CategoryTable }
func (*Table) irNode()            {}
