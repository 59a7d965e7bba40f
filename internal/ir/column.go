package ir

import "github.com/miles-bartnik/tyr/internal/units"

// Column is either a reference to a column of another table or a derived
// expression.
//
// Reference columns have Expr == nil; Table names the owning table and is a
// lookup key into the Schema, never a pointer. Derived columns carry the
// expression in Expr and leave Table empty.
type Column struct {
	Name  string
	Type  DataType
	Unit  units.Unit
	Table string
	Expr  Node
}

// Col returns a reference to column name of table.
func Col(table, name string, t DataType) *Column {
	return &Column{Name: name, Type: t, Table: table}
}

// Derive returns a derived column whose type and unit are inferred from
// expr.
func Derive(name string, expr Node) *Column {
	return &Column{
		Name: name,
		Type: TypeOf(expr),
		Unit: UnitOf(expr),
		Expr: expr,
	}
}

// IsReference reports whether c selects an existing column rather than
// computing a new one.
func (c *Column) IsReference() bool {
	return c.Expr == nil
}

// As returns a column named name that selects c.
func (c *Column) As(name string) *Column {
	return &Column{Name: name, Type: c.Type, Unit: c.Unit, Expr: c}
}

// WithUnit returns a copy of c carrying u. The stored values are not
// converted; use ConvertToUnit for that.
func (c *Column) WithUnit(u units.Unit) *Column {
	cp := *c
	cp.Unit = u
	return &cp
}

// WithType returns a copy of c with data type t.
func (c *Column) WithType(t DataType) *Column {
	cp := *c
	cp.Type = t
	return &cp
}

func (*Column) Category() Category { return CategoryColumn }
func (*Column) irNode()            {}
