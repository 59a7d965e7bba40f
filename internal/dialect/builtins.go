package dialect

import "github.com/miles-bartnik/tyr/internal/ir"

// Shared templates.
const (
	castTemplate          Template = "CAST({x} AS {type})"
	countDistinctTemplate Template = "count(DISTINCT {x})"
	rowNumberTemplate     Template = "row_number() OVER ({window})"
	dateTruncTemplate     Template = "date_trunc('{part}', {x})"
	datePartTemplate      Template = "date_part('{part}', {x})"
)

var standardStatements = Statements{
	DropSchema:    "DROP SCHEMA IF EXISTS {schema} CASCADE",
	CreateSchema:  "CREATE SCHEMA {schema}",
	EnsureSchema:  "CREATE SCHEMA IF NOT EXISTS {schema}",
	DropTable:     "DROP TABLE IF EXISTS {table}",
	CreateTableAs: "CREATE TABLE {table} AS {select}",
}

// DuckDB is the default dialect.
var DuckDB = &Dialect{
	Name:            "duckdb",
	QuoteChar:       `"`,
	SupportsSchemas: true,
	ListType:        "{elem}[]",
	Functions: map[ir.FunctionKind]string{
		ir.FuncSubstring: "substring",
	},
	FunctionTemplates: map[ir.FunctionKind]Template{
		ir.FuncCast:          castTemplate,
		ir.FuncTryCast:       "TRY_CAST({x} AS {type})",
		ir.FuncCountDistinct: countDistinctTemplate,
		ir.FuncRegexpExtract: "regexp_extract({x}, {pattern}, {group})",
		ir.FuncRegexpMatches: "regexp_matches({x}, {pattern})",
		ir.FuncStrftime:      "strftime({x}, {fmt})",
		ir.FuncStrptime:      "strptime({x}, {fmt})",
		ir.FuncDatePart:      datePartTemplate,
		ir.FuncDateTrunc:     dateTruncTemplate,
		ir.FuncCurrentDate:   "current_date",
		ir.FuncNow:           "now()",
		ir.FuncIntervalCast:  "({x} * INTERVAL '1 {part}')",
		ir.FuncListExtract:   "{x}[{index}]",
		ir.FuncJSONExtract:   "json_extract_string({x}, {path})",
		ir.FuncRowNumber:     rowNumberTemplate,
	},
	IndexBase: 1,
	JSONPath:  JSONPath{Prefix: "$.", Separator: "."},
	FileReaders: map[ir.FileFormat]Template{
		ir.FormatCSV:     "read_csv_auto({path})",
		ir.FormatParquet: "read_parquet({path})",
		ir.FormatJSON:    "read_json_auto({path})",
	},
	Literals: Literals{
		Date:        "DATE '{v}'",
		Timestamp:   "TIMESTAMP '{v}'",
		Interval:    "INTERVAL '{n} {part}'",
		List:        "[{items}]",
		Struct:      "{{fields}}",
		StructField: "'{name}': {v}",
	},
	Statements: Statements{
		DropSchema:    standardStatements.DropSchema,
		CreateSchema:  standardStatements.CreateSchema,
		EnsureSchema:  standardStatements.EnsureSchema,
		DropTable:     standardStatements.DropTable,
		CreateTableAs: standardStatements.CreateTableAs,
		LoadExtension: []Template{"INSTALL {ext}", "LOAD {ext}"},
	},
}

// Postgres targets PostgreSQL 14+.
var Postgres = &Dialect{
	Name:            "postgres",
	QuoteChar:       `"`,
	SupportsSchemas: true,
	Types: map[ir.DataType]string{
		ir.TypeDouble: "DOUBLE PRECISION",
		ir.TypeJSON:   "JSONB",
		ir.TypeStruct: "RECORD",
	},
	ListType: "{elem}[]",
	Functions: map[ir.FunctionKind]string{
		ir.FuncConcat: "concat",
	},
	FunctionTemplates: map[ir.FunctionKind]Template{
		ir.FuncCast:          castTemplate,
		ir.FuncTryCast:       castTemplate,
		ir.FuncCountDistinct: countDistinctTemplate,
		ir.FuncRegexpExtract: "(regexp_match({x}, {pattern}))[{group}]",
		ir.FuncRegexpMatches: "({x} ~ {pattern})",
		ir.FuncStrftime:      "to_char({x}, {fmt})",
		ir.FuncStrptime:      "to_timestamp({x}, {fmt})",
		ir.FuncDatePart:      datePartTemplate,
		ir.FuncDateTrunc:     dateTruncTemplate,
		ir.FuncCurrentDate:   "CURRENT_DATE",
		ir.FuncNow:           "now()",
		ir.FuncIntervalCast:  "({x} * INTERVAL '1 {part}')",
		ir.FuncListExtract:   "({x})[{index}]",
		ir.FuncJSONExtract:   "({x} #>> {path})",
		ir.FuncRowNumber:     rowNumberTemplate,
	},
	FormatTokens: map[string]string{
		"%Y": "YYYY",
		"%y": "YY",
		"%m": "MM",
		"%d": "DD",
		"%H": "HH24",
		"%I": "HH12",
		"%M": "MI",
		"%S": "SS",
		"%f": "US",
		"%p": "AM",
		"%b": "Mon",
		"%B": "Month",
		"%a": "Dy",
		"%A": "Day",
		"%j": "DDD",
		"%z": "OF",
		"%%": "%",
	},
	IndexBase: 1,
	JSONPath:  JSONPath{Prefix: "{", Separator: ",", Suffix: "}"},
	Literals: Literals{
		Date:        "DATE '{v}'",
		Timestamp:   "TIMESTAMP '{v}'",
		Interval:    "INTERVAL '{n} {part}'",
		List:        "ARRAY[{items}]",
		Struct:      "ROW({fields})",
		StructField: "{v}",
	},
	Statements: Statements{
		DropSchema:    standardStatements.DropSchema,
		CreateSchema:  standardStatements.CreateSchema,
		EnsureSchema:  standardStatements.EnsureSchema,
		DropTable:     standardStatements.DropTable,
		CreateTableAs: standardStatements.CreateTableAs,
		LoadExtension: []Template{"CREATE EXTENSION IF NOT EXISTS {ext}"},
	},
}

// SQLite has no schemas, no native list or interval types and reads no
// files. Lists and structs are JSON text.
var SQLite = &Dialect{
	Name:            "sqlite",
	QuoteChar:       `"`,
	SupportsSchemas: false,
	Types: map[ir.DataType]string{
		ir.TypeVarchar:   "TEXT",
		ir.TypeInteger:   "INTEGER",
		ir.TypeBigint:    "INTEGER",
		ir.TypeDouble:    "REAL",
		ir.TypeBoolean:   "INTEGER",
		ir.TypeDate:      "TEXT",
		ir.TypeTimestamp: "TEXT",
		ir.TypeInterval:  "TEXT",
		ir.TypeJSON:      "TEXT",
		ir.TypeStruct:    "TEXT",
	},
	ListType: "TEXT",
	Functions: map[ir.FunctionKind]string{
		ir.FuncSubstring: "substr",
		ir.FuncGreatest:  "max",
		ir.FuncLeast:     "min",
		ir.FuncPower:     "pow",
	},
	Operators: map[ir.OperatorKind]string{
		ir.OpILike: "LIKE",
	},
	FunctionTemplates: map[ir.FunctionKind]Template{
		ir.FuncCast:          castTemplate,
		ir.FuncTryCast:       castTemplate,
		ir.FuncCountDistinct: countDistinctTemplate,
		ir.FuncRegexpMatches: "({x} REGEXP {pattern})",
		ir.FuncStrftime:      "strftime({fmt}, {x})",
		ir.FuncDatePart:      "CAST(strftime('{part}', {x}) AS INTEGER)",
		ir.FuncDateTrunc:     "strftime('{part}', {x})",
		ir.FuncCurrentDate:   "date('now')",
		ir.FuncNow:           "datetime('now')",
		ir.FuncIntervalCast:  "({x} || ' {part}s')",
		ir.FuncListExtract:   "json_extract({x}, '$[{index}]')",
		ir.FuncJSONExtract:   "json_extract({x}, {path})",
		ir.FuncRowNumber:     rowNumberTemplate,
	},
	DateParts: map[ir.IntervalPart]string{
		ir.PartSecond: "%S",
		ir.PartMinute: "%M",
		ir.PartHour:   "%H",
		ir.PartDay:    "%d",
		ir.PartWeek:   "%W",
		ir.PartMonth:  "%m",
		ir.PartYear:   "%Y",
	},
	TruncParts: map[ir.IntervalPart]string{
		ir.PartSecond: "%Y-%m-%d %H:%M:%S",
		ir.PartMinute: "%Y-%m-%d %H:%M:00",
		ir.PartHour:   "%Y-%m-%d %H:00:00",
		ir.PartDay:    "%Y-%m-%d 00:00:00",
		ir.PartMonth:  "%Y-%m-01 00:00:00",
		ir.PartYear:   "%Y-01-01 00:00:00",
	},
	IndexBase: 0,
	JSONPath:  JSONPath{Prefix: "$.", Separator: "."},
	Literals: Literals{
		Date:        "'{v}'",
		Timestamp:   "'{v}'",
		Interval:    "'{n} {part}s'",
		List:        "json_array({items})",
		Struct:      "json_object({fields})",
		StructField: "'{name}', {v}",
	},
	Statements: Statements{
		DropTable:     standardStatements.DropTable,
		CreateTableAs: standardStatements.CreateTableAs,
	},
}

func init() {
	Register(DuckDB)
	Register(Postgres)
	Register(SQLite)
}
