package ir

import "github.com/miles-bartnik/tyr/internal/units"

// FunctionKind identifies a function. The value is the canonical lower-case
// SQL name; dialects may override it.
type FunctionKind string

const (
	FuncCast          FunctionKind = "cast"
	FuncTryCast       FunctionKind = "try_cast"
	FuncSum           FunctionKind = "sum"
	FuncAvg           FunctionKind = "avg"
	FuncMin           FunctionKind = "min"
	FuncMax           FunctionKind = "max"
	FuncCount         FunctionKind = "count"
	FuncCountDistinct FunctionKind = "count_distinct"
	FuncCoalesce      FunctionKind = "coalesce"
	FuncNullIf        FunctionKind = "nullif"
	FuncAbs           FunctionKind = "abs"
	FuncRound         FunctionKind = "round"
	FuncFloor         FunctionKind = "floor"
	FuncCeil          FunctionKind = "ceil"
	FuncSqrt          FunctionKind = "sqrt"
	FuncPower         FunctionKind = "power"
	FuncLn            FunctionKind = "ln"
	FuncExp           FunctionKind = "exp"
	FuncGreatest      FunctionKind = "greatest"
	FuncLeast         FunctionKind = "least"
	FuncLower         FunctionKind = "lower"
	FuncUpper         FunctionKind = "upper"
	FuncTrim          FunctionKind = "trim"
	FuncLength        FunctionKind = "length"
	FuncConcat        FunctionKind = "concat"
	FuncReplace       FunctionKind = "replace"
	FuncSubstring     FunctionKind = "substring"
	FuncMD5           FunctionKind = "md5"
	FuncRegexpExtract FunctionKind = "regexp_extract"
	FuncRegexpMatches FunctionKind = "regexp_matches"
	FuncStrftime      FunctionKind = "strftime"
	FuncStrptime      FunctionKind = "strptime"
	FuncDatePart      FunctionKind = "date_part"
	FuncDateTrunc     FunctionKind = "date_trunc"
	FuncCurrentDate   FunctionKind = "current_date"
	FuncNow           FunctionKind = "now"
	FuncIntervalCast  FunctionKind = "interval_cast"
	FuncListExtract   FunctionKind = "list_extract"
	FuncJSONExtract   FunctionKind = "json_extract"
	FuncRowNumber     FunctionKind = "row_number"
)

// AllFunctionKinds lists every function kind. Renderers are tested against
// this list.
var AllFunctionKinds = []FunctionKind{
	FuncCast, FuncTryCast,
	FuncSum, FuncAvg, FuncMin, FuncMax, FuncCount, FuncCountDistinct,
	FuncCoalesce, FuncNullIf,
	FuncAbs, FuncRound, FuncFloor, FuncCeil, FuncSqrt, FuncPower, FuncLn, FuncExp,
	FuncGreatest, FuncLeast,
	FuncLower, FuncUpper, FuncTrim, FuncLength, FuncConcat, FuncReplace,
	FuncSubstring, FuncMD5,
	FuncRegexpExtract, FuncRegexpMatches,
	FuncStrftime, FuncStrptime, FuncDatePart, FuncDateTrunc,
	FuncCurrentDate, FuncNow, FuncIntervalCast,
	FuncListExtract, FuncJSONExtract, FuncRowNumber,
}

// IsAggregate reports whether k collapses rows.
func (k FunctionKind) IsAggregate() bool {
	switch k {
	case FuncSum, FuncAvg, FuncMin, FuncMax, FuncCount, FuncCountDistinct:
		return true
	}
	return false
}

// Function is a function call. Kind-specific literal arguments live in the
// auxiliary fields; everything else is an operand in Args.
type Function struct {
	Kind FunctionKind
	Args []Node

	// Target is the cast target.
	Target DataType
	// Pattern and Group drive regular-expression kinds.
	Pattern string
	Group   int
	// Format is a strftime-style format using canonical %-tokens.
	Format string
	// Path is the key path of a JSON extraction.
	Path []string
	// Index is the 1-based element position of a list extraction.
	Index int
	// Part is the calendar part for date and interval kinds.
	Part IntervalPart
	// PartitionBy and OrderBy describe the window of ROW_NUMBER.
	PartitionBy []Node
	OrderBy     []Node

	// Unit is the unit of the result. Set by conversions.
	Unit units.Unit
}

// Call returns a function of kind k over args.
func Call(k FunctionKind, args ...Node) *Function {
	return &Function{Kind: k, Args: args}
}

// Cast converts n to type t.
func Cast(n Node, t DataType) *Function {
	return &Function{Kind: FuncCast, Args: []Node{n}, Target: t, Unit: UnitOf(n)}
}

// TryCast converts n to type t, yielding NULL on failure.
func TryCast(n Node, t DataType) *Function {
	return &Function{Kind: FuncTryCast, Args: []Node{n}, Target: t, Unit: UnitOf(n)}
}

// Sum aggregates n. The unit of n is preserved.
func Sum(n Node) *Function { return &Function{Kind: FuncSum, Args: []Node{n}, Unit: UnitOf(n)} }

// Avg aggregates n. The unit of n is preserved.
func Avg(n Node) *Function { return &Function{Kind: FuncAvg, Args: []Node{n}, Unit: UnitOf(n)} }

// Min aggregates n. The unit of n is preserved.
func Min(n Node) *Function { return &Function{Kind: FuncMin, Args: []Node{n}, Unit: UnitOf(n)} }

// Max aggregates n. The unit of n is preserved.
func Max(n Node) *Function { return &Function{Kind: FuncMax, Args: []Node{n}, Unit: UnitOf(n)} }

// Count counts non-null n. Use a WildCard for COUNT(*).
func Count(n Node) *Function { return Call(FuncCount, n) }

// CountDistinct counts distinct non-null n.
func CountDistinct(n Node) *Function { return Call(FuncCountDistinct, n) }

// Coalesce returns the first non-null argument.
func Coalesce(args ...Node) *Function {
	f := Call(FuncCoalesce, args...)
	if len(args) > 0 {
		f.Unit = UnitOf(args[0])
	}
	return f
}

// Round rounds n to digits decimal places.
func Round(n Node, digits int64) *Function {
	return &Function{Kind: FuncRound, Args: []Node{n, Int(digits)}, Unit: UnitOf(n)}
}

// RegexpExtract returns capture group of pattern in n.
func RegexpExtract(n Node, pattern string, group int) *Function {
	return &Function{Kind: FuncRegexpExtract, Args: []Node{n}, Pattern: pattern, Group: group}
}

// RegexpMatches reports whether n matches pattern.
func RegexpMatches(n Node, pattern string) *Function {
	return &Function{Kind: FuncRegexpMatches, Args: []Node{n}, Pattern: pattern}
}

// Strftime formats timestamp n with format.
func Strftime(n Node, format string) *Function {
	return &Function{Kind: FuncStrftime, Args: []Node{n}, Format: format}
}

// Strptime parses string n with format.
func Strptime(n Node, format string) *Function {
	return &Function{Kind: FuncStrptime, Args: []Node{n}, Format: format}
}

// DatePart extracts part from a date or timestamp.
func DatePart(part IntervalPart, n Node) *Function {
	return &Function{Kind: FuncDatePart, Args: []Node{n}, Part: part}
}

// DateTrunc truncates a date or timestamp to part.
func DateTrunc(part IntervalPart, n Node) *Function {
	return &Function{Kind: FuncDateTrunc, Args: []Node{n}, Part: part}
}

// IntervalCast turns a count n into an interval of part units.
func IntervalCast(n Node, part IntervalPart) *Function {
	return &Function{Kind: FuncIntervalCast, Args: []Node{n}, Part: part}
}

// ListExtract returns the element at the 1-based index of list n.
func ListExtract(n Node, index int) *Function {
	return &Function{Kind: FuncListExtract, Args: []Node{n}, Index: index}
}

// JSONExtract returns the value at path inside JSON document n as text.
func JSONExtract(n Node, path ...string) *Function {
	return &Function{Kind: FuncJSONExtract, Args: []Node{n}, Path: path}
}

// RowNumber numbers rows within each partition in order.
func RowNumber(partitionBy, orderBy []Node) *Function {
	return &Function{Kind: FuncRowNumber, PartitionBy: partitionBy, OrderBy: orderBy}
}

// WithUnit returns a copy of f whose result carries u.
func (f *Function) WithUnit(u units.Unit) *Function {
	cp := *f
	cp.Unit = u
	return &cp
}

func (*Function) Category() Category { return CategoryFunction }
func (*Function) irNode()            {}
