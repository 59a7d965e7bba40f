package ir

import "strings"

// DataType is a dialect-neutral SQL type name. Dialects translate these to
// their own spelling at render time.
type DataType string

const (
	TypeUnknown   DataType = ""
	TypeVarchar   DataType = "VARCHAR"
	TypeInteger   DataType = "INTEGER"
	TypeBigint    DataType = "BIGINT"
	TypeDouble    DataType = "DOUBLE"
	TypeBoolean   DataType = "BOOLEAN"
	TypeDate      DataType = "DATE"
	TypeTimestamp DataType = "TIMESTAMP"
	TypeInterval  DataType = "INTERVAL"
	TypeJSON      DataType = "JSON"
	TypeStruct    DataType = "STRUCT"
)

// AllDataTypes lists every scalar type in declaration order.
var AllDataTypes = []DataType{
	TypeVarchar, TypeInteger, TypeBigint, TypeDouble, TypeBoolean,
	TypeDate, TypeTimestamp, TypeInterval, TypeJSON, TypeStruct,
}

// ListType returns the list type with element type t ("DOUBLE[]").
func ListType(t DataType) DataType {
	return t + "[]"
}

// IsList reports whether t is a list type.
func (t DataType) IsList() bool {
	return strings.HasSuffix(string(t), "[]")
}

// Elem returns the element type of a list type, or t itself.
func (t DataType) Elem() DataType {
	return DataType(strings.TrimSuffix(string(t), "[]"))
}

// IsNumeric reports whether values of t may carry a unit.
func (t DataType) IsNumeric() bool {
	switch t {
	case TypeInteger, TypeBigint, TypeDouble:
		return true
	}
	return false
}

// ParseDataType accepts a type name in any case and returns the matching
// DataType. The boolean is false for names outside the closed set.
func ParseDataType(s string) (DataType, bool) {
	up := DataType(strings.ToUpper(strings.TrimSpace(s)))
	elem := up.Elem()
	for _, t := range AllDataTypes {
		if t == elem {
			return up, true
		}
	}
	return TypeUnknown, false
}
