package ir

import (
	"time"

	"github.com/miles-bartnik/tyr/internal/units"
)

// Varchar is a string literal.
type Varchar struct {
	V string
}

// Integer is an integer literal with an optional unit.
type Integer struct {
	V    int64
	Unit units.Unit
}

// Float is a floating point literal with an optional unit.
type Float struct {
	V    float64
	Unit units.Unit
}

// Boolean is a TRUE/FALSE literal.
type Boolean struct {
	V bool
}

// Date is a calendar date literal. Only the date part of V is rendered.
type Date struct {
	V time.Time
}

// Timestamp is a timestamp literal rendered at second precision.
type Timestamp struct {
	V time.Time
}

// Null is the SQL NULL literal.
type Null struct{}

// IntervalPart is the calendar unit of an Interval literal.
type IntervalPart string

const (
	PartSecond IntervalPart = "second"
	PartMinute IntervalPart = "minute"
	PartHour   IntervalPart = "hour"
	PartDay    IntervalPart = "day"
	PartWeek   IntervalPart = "week"
	PartMonth  IntervalPart = "month"
	PartYear   IntervalPart = "year"
)

// AllIntervalParts lists the interval parts in ascending size.
var AllIntervalParts = []IntervalPart{
	PartSecond, PartMinute, PartHour, PartDay, PartWeek, PartMonth, PartYear,
}

// Interval is an interval literal such as 3 days.
type Interval struct {
	N    int64
	Part IntervalPart
}

// List is a homogeneous list literal.
type List struct {
	Items []Node
	Elem  DataType
}

// StructField is one named member of a Struct literal.
type StructField struct {
	Name  string
	Value Node
}

// Struct is a record literal with ordered named fields.
type Struct struct {
	Fields []StructField
}

// Tuple is a parenthesised value list, used as the right side of IN.
type Tuple struct {
	Items []Node
}

// WildCard selects every column, optionally qualified by a table name.
type WildCard struct {
	Table string
}

// Subquery embeds a Table as a value or as a source.
type Subquery struct {
	Table *Table
}

// Datatype is a type name used as an argument, e.g. the target of a cast.
type Datatype struct {
	T DataType
}

// Str returns a Varchar literal.
func Str(s string) *Varchar { return &Varchar{V: s} }

// Int returns a unitless Integer literal.
func Int(v int64) *Integer { return &Integer{V: v} }

// Num returns a unitless Float literal.
func Num(v float64) *Float { return &Float{V: v} }

// Bool returns a Boolean literal.
func Bool(v bool) *Boolean { return &Boolean{V: v} }

// NullValue returns the NULL literal.
func NullValue() *Null { return &Null{} }

// Quantity returns a Float literal carrying unit u.
func Quantity(v float64, u units.Unit) *Float { return &Float{V: v, Unit: u} }

// WithUnit returns a copy of the literal carrying u.
func (v *Integer) WithUnit(u units.Unit) *Integer {
	cp := *v
	cp.Unit = u
	return &cp
}

// WithUnit returns a copy of the literal carrying u.
func (v *Float) WithUnit(u units.Unit) *Float {
	cp := *v
	cp.Unit = u
	return &cp
}

// Category implementations.
func (*Varchar) Category() Category   { return CategoryValue }
func (*Integer) Category() Category   { return CategoryValue }
func (*Float) Category() Category     { return CategoryValue }
func (*Boolean) Category() Category   { return CategoryValue }
func (*Date) Category() Category      { return CategoryValue }
func (*Timestamp) Category() Category { return CategoryValue }
func (*Null) Category() Category      { return CategoryValue }
func (*Interval) Category() Category  { return CategoryValue }
func (*List) Category() Category      { return CategoryValue }
func (*Struct) Category() Category    { return CategoryValue }
func (*Tuple) Category() Category     { return CategoryValue }
func (*WildCard) Category() Category  { return CategoryValue }
func (*Subquery) Category() Category  { return CategoryValue }
func (*Datatype) Category() Category  { return CategoryValue }

// Type implementations.
func (*Varchar) Type() DataType   { return TypeVarchar }
func (*Integer) Type() DataType   { return TypeInteger }
func (*Float) Type() DataType     { return TypeDouble }
func (*Boolean) Type() DataType   { return TypeBoolean }
func (*Date) Type() DataType      { return TypeDate }
func (*Timestamp) Type() DataType { return TypeTimestamp }
func (*Null) Type() DataType      { return TypeUnknown }
func (*Interval) Type() DataType  { return TypeInterval }
func (v *List) Type() DataType    { return ListType(v.Elem) }
func (*Struct) Type() DataType    { return TypeStruct }
func (*Tuple) Type() DataType     { return TypeUnknown }
func (*WildCard) Type() DataType  { return TypeUnknown }
func (v *Datatype) Type() DataType {
	return v.T
}

// Type of a subquery is the type of its single projected column.
func (v *Subquery) Type() DataType {
	if v.Table == nil || len(v.Table.Columns) != 1 {
		return TypeUnknown
	}
	return v.Table.Columns[0].Type
}

// Marker methods - seal the interfaces to this package.
func (*Varchar) irNode()   {}
func (*Integer) irNode()   {}
func (*Float) irNode()     {}
func (*Boolean) irNode()   {}
func (*Date) irNode()      {}
func (*Timestamp) irNode() {}
func (*Null) irNode()      {}
func (*Interval) irNode()  {}
func (*List) irNode()      {}
func (*Struct) irNode()    {}
func (*Tuple) irNode()     {}
func (*WildCard) irNode()  {}
func (*Subquery) irNode()  {}
func (*Datatype) irNode()  {}

func (*Varchar) irValue()   {}
func (*Integer) irValue()   {}
func (*Float) irValue()     {}
func (*Boolean) irValue()   {}
func (*Date) irValue()      {}
func (*Timestamp) irValue() {}
func (*Null) irValue()      {}
func (*Interval) irValue()  {}
func (*List) irValue()      {}
func (*Struct) irValue()    {}
func (*Tuple) irValue()     {}
func (*WildCard) irValue()  {}
func (*Subquery) irValue()  {}
func (*Datatype) irValue()  {}

func (*Subquery) irSource() {}
