package ir

// Category is the coarse class of a node. Renderers fall back to a
// per-category rule when no kind-specific rule exists.
type Category int

const (
	CategoryValue Category = iota + 1
	CategoryColumn
	CategoryTable
	CategorySource
	CategoryFunction
	CategoryOperator
	CategoryExpression
	CategoryJoin
)

var categoryNames = map[Category]string{
	CategoryValue:      "value",
	CategoryColumn:     "column",
	CategoryTable:      "table",
	CategorySource:     "source",
	CategoryFunction:   "function",
	CategoryOperator:   "operator",
	CategoryExpression: "expression",
	CategoryJoin:       "join",
}

// String returns the lower-case category name.
func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "unknown"
}

// Node is any element of the IR tree.
//
// This is a sealed interface - only types in this package implement it.
type Node interface {
	Category() Category
	irNode()
}

// Value is a typed literal.
//
// Value types: Varchar, Integer, Float, Boolean, Date, Timestamp, Null,
// Interval, List, Struct, Tuple, WildCard, Subquery, Datatype.
type Value interface {
	Node
	Type() DataType
	irValue()
}

// Source is anything a Table can select from.
//
// Source types: TableRef, File, Temp, FromRecords, Union, Subquery, Join,
// CompoundJoin.
type Source interface {
	Node
	irSource()
}
