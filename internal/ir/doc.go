// Package ir provides the immutable intermediate representation for tyr's
// SQL artifacts: values, columns, tables, functions, operators, expressions,
// joins and schemas.
//
// All other internal packages import ir; ir imports only internal/units.
//
// SEALED INTERFACES:
//
// Node, Value and Source are sealed with unexported marker methods. Only
// types in this package implement them, so backends (internal/render,
// internal/graph) can switch over the closed set of node types and treat
// anything else as a construction bug:
//
//	switch n := node.(type) {
//	case *ir.Column:
//	    // ...
//	case *ir.Function:
//	    // ...
//	default:
//	    // unreachable for well-formed trees
//	}
//
// Function, Operator and Expression nodes carry a Kind tag drawn from a
// closed enum. Every enum exposes an All...Kinds list so that consumers can
// assert exhaustive coverage in tests.
//
// IMMUTABILITY:
//
// Nodes are never mutated after construction. Subtrees may be shared by
// several parents (the same *Column in a projection list and a primary key),
// so every "With..." method returns a shallow copy with one field replaced.
//
// TABLE REFERENCES:
//
// A Column points at its originating table by name (Column.Table), a lookup
// key into the owning Schema. Tables never hold pointers to each other except
// through inline Subquery/Union members, which keeps the tree acyclic.
//
// UNITS:
//
// Integer and Float values carry an optional units.Unit. Operator
// constructors (Add, Sub, Eq, ...) insert conversions automatically when
// operand units differ; see ConvertToUnit.
package ir
