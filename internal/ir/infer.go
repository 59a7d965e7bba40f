package ir

import "github.com/miles-bartnik/tyr/internal/units"

// UnitOf returns the unit carried by n, or units.None.
func UnitOf(n Node) units.Unit {
	if isNil(n) {
		return units.None
	}
	switch v := n.(type) {
	case *Integer:
		return v.Unit
	case *Float:
		return v.Unit
	case *Column:
		return v.Unit
	case *Function:
		return v.Unit
	case *Operator:
		switch v.Kind {
		case OpAdd, OpSub, OpMod:
			return UnitOf(v.Left)
		case OpMul:
			return units.Multiply(UnitOf(v.Left), UnitOf(v.Right))
		case OpDiv:
			return units.Divide(UnitOf(v.Left), UnitOf(v.Right))
		}
	case *Expression:
		switch v.Kind {
		case ExprNegate, ExprParen:
			if len(v.Operands) > 0 {
				return UnitOf(v.Operands[0])
			}
		case ExprCase:
			if len(v.Operands) >= 2 {
				return UnitOf(v.Operands[1])
			}
		}
	case *Subquery:
		if v.Table != nil && len(v.Table.Columns) == 1 {
			return v.Table.Columns[0].Unit
		}
	}
	return units.None
}

// TypeOf infers the data type of n. Unknown results are TypeUnknown.
func TypeOf(n Node) DataType {
	if isNil(n) {
		return TypeUnknown
	}
	switch v := n.(type) {
	case Value:
		return v.Type()
	case *Column:
		return v.Type
	case *Function:
		return functionType(v)
	case *Operator:
		if v.Kind.IsComparison() || v.Kind == OpAnd || v.Kind == OpOr {
			return TypeBoolean
		}
		if v.Kind == OpConcat {
			return TypeVarchar
		}
		lt, rt := TypeOf(v.Left), TypeOf(v.Right)
		if lt == TypeDouble || rt == TypeDouble || v.Kind == OpDiv {
			return TypeDouble
		}
		if lt == TypeUnknown {
			return rt
		}
		return lt
	case *Expression:
		switch v.Kind {
		case ExprNegate, ExprParen:
			if len(v.Operands) > 0 {
				return TypeOf(v.Operands[0])
			}
			return TypeUnknown
		case ExprCase:
			if len(v.Operands) >= 2 {
				return TypeOf(v.Operands[1])
			}
			return TypeUnknown
		}
		return TypeBoolean
	}
	return TypeUnknown
}

func functionType(f *Function) DataType {
	arg := TypeUnknown
	if len(f.Args) > 0 {
		arg = TypeOf(f.Args[0])
	}
	switch f.Kind {
	case FuncCast, FuncTryCast:
		return f.Target
	case FuncCount, FuncCountDistinct, FuncRowNumber, FuncLength, FuncDatePart:
		return TypeBigint
	case FuncAvg, FuncSqrt, FuncLn, FuncExp, FuncPower:
		return TypeDouble
	case FuncLower, FuncUpper, FuncTrim, FuncConcat, FuncReplace, FuncSubstring,
		FuncMD5, FuncRegexpExtract, FuncStrftime, FuncJSONExtract:
		return TypeVarchar
	case FuncRegexpMatches:
		return TypeBoolean
	case FuncStrptime, FuncDateTrunc, FuncNow:
		return TypeTimestamp
	case FuncCurrentDate:
		return TypeDate
	case FuncIntervalCast:
		return TypeInterval
	case FuncListExtract:
		return arg.Elem()
	}
	return arg
}
