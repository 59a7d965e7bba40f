package ir

import "github.com/miles-bartnik/tyr/internal/units"

// Data-quality checks. Each returns a table holding the offending rows of
// upstream; an empty result means the check passed.

// NotNullCheck selects rows of upstream where column is NULL.
func NotNullCheck(name string, upstream *Table, column string) *Table {
	return NewTable(name, From(upstream.Name)).
		WithWhere(IsNull(upstream.Col(column)))
}

// UniqueCheck selects the values of column that occur more than once in
// upstream, with their count.
func UniqueCheck(name string, upstream *Table, column string) *Table {
	key := upstream.Col(column)
	counts := NewTable(name+"_counts", From(upstream.Name),
		key,
		Derive("occurrences", Count(&WildCard{})),
	).WithPrimaryKey(key).WithGroupBy()

	occurrences := counts.Col("occurrences")
	return NewTable(name, counts.AsSubquery(),
		counts.Col(column),
		occurrences,
	).WithWhere(&Operator{Kind: OpGt, Left: occurrences, Right: Int(1)})
}

// RangeCheck selects rows of upstream whose column lies outside
// [low, high]. Bounds carrying a unit are converted to the unit of column.
func RangeCheck(name string, upstream *Table, column string, low, high Node) (*Table, error) {
	col := upstream.Col(column)
	lo, err := alignTo(low, col.Unit)
	if err != nil {
		return nil, err
	}
	hi, err := alignTo(high, col.Unit)
	if err != nil {
		return nil, err
	}
	return NewTable(name, From(upstream.Name)).
		WithWhere(Not(Between(col, lo, hi))), nil
}

func alignTo(n Node, u units.Unit) (Node, error) {
	from := UnitOf(n)
	if from == units.None || u == units.None || from == u {
		return n, nil
	}
	return ConvertToUnit(n, u)
}
