package ir

import "reflect"

// Children returns the direct child nodes of n in evaluation order.
// Nil children, including typed nil pointers, are omitted.
func Children(n Node) []Node {
	var out []Node
	add := func(ns ...Node) {
		for _, c := range ns {
			if !isNil(c) {
				out = append(out, c)
			}
		}
	}

	switch v := n.(type) {
	case *List:
		add(v.Items...)
	case *Struct:
		for _, f := range v.Fields {
			add(f.Value)
		}
	case *Tuple:
		add(v.Items...)
	case *Subquery:
		if v.Table != nil {
			add(v.Table)
		}
	case *Column:
		add(v.Expr)
	case *Table:
		if v.Source != nil {
			add(v.Source)
		}
		for _, c := range v.Columns {
			add(c)
		}
		for _, c := range v.PrimaryKey {
			add(c)
		}
		add(v.Where)
		if v.OrderBy != nil {
			for _, c := range v.OrderBy.Columns {
				add(c)
			}
		}
	case *FromRecords:
		for _, row := range v.Rows {
			for _, val := range row {
				add(val)
			}
		}
	case *Union:
		for _, m := range v.Members {
			if m != nil {
				add(m)
			}
		}
	case *Join:
		if v.Left != nil {
			add(v.Left)
		}
		if v.Right != nil {
			add(v.Right)
		}
		add(v.On)
	case *CompoundJoin:
		if v.Base != nil {
			add(v.Base)
		}
		for _, s := range v.Steps {
			if s.Right != nil {
				add(s.Right)
			}
			add(s.On)
		}
	case *Function:
		add(v.Args...)
		add(v.PartitionBy...)
		add(v.OrderBy...)
	case *Operator:
		add(v.Left, v.Right)
	case *Expression:
		add(v.Operands...)
	}
	return out
}

// Walk visits n and its descendants depth-first, parents before children.
// If fn returns false the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if isNil(n) || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
