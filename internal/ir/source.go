package ir

// TableRef selects from another table of the same schema by name.
type TableRef struct {
	Name string
}

// From returns a reference to the schema table name.
func From(name string) *TableRef {
	return &TableRef{Name: name}
}

// FileFormat is the format of a raw external input file.
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
	FormatJSON    FileFormat = "json"
)

// AllFileFormats lists the supported file formats.
var AllFileFormats = []FileFormat{FormatCSV, FormatParquet, FormatJSON}

// File reads rows from an external file. Files are dependency leaves.
type File struct {
	Path   string
	Format FileFormat
	Alias  string
}

// ReadFile returns a File source aliased as alias.
func ReadFile(path string, format FileFormat, alias string) *File {
	return &File{Path: path, Format: format, Alias: alias}
}

// Temp selects from a temporary table that lives outside the schema
// namespace. Temps are dependency leaves.
type Temp struct {
	Name string
}

// FromRecords is an inline row set. Each row is parallel to Names.
type FromRecords struct {
	Names []string
	Rows  [][]Value
	Alias string
}

// Union concatenates the rows of its members. Branch columns are matched by
// position and named after the first member.
type Union struct {
	Members []*Table
	All     bool
	Alias   string
}

// UnionAll returns a UNION ALL over members.
func UnionAll(alias string, members ...*Table) *Union {
	return &Union{Members: members, All: true, Alias: alias}
}

// JoinKind selects the SQL join type.
type JoinKind string

const (
	InnerJoin JoinKind = "INNER"
	LeftJoin  JoinKind = "LEFT"
	RightJoin JoinKind = "RIGHT"
	FullJoin  JoinKind = "FULL"
	CrossJoin JoinKind = "CROSS"
)

// AllJoinKinds lists every join kind.
var AllJoinKinds = []JoinKind{InnerJoin, LeftJoin, RightJoin, FullJoin, CrossJoin}

// Join combines two sources. On is ignored for CROSS joins.
type Join struct {
	Kind  JoinKind
	Left  Source
	Right Source
	On    Node
}

// JoinStep is one link of a CompoundJoin.
type JoinStep struct {
	Kind  JoinKind
	Right Source
	On    Node
}

// CompoundJoin chains several joins onto a base source, left to right.
type CompoundJoin struct {
	Base  Source
	Steps []JoinStep
}

// JoinOn returns an inner join of left and right.
func JoinOn(left, right Source, on Node) *Join {
	return &Join{Kind: InnerJoin, Left: left, Right: right, On: on}
}

// Then returns a copy of j with one more join step.
func (j *CompoundJoin) Then(kind JoinKind, right Source, on Node) *CompoundJoin {
	cp := *j
	cp.Steps = append(append([]JoinStep(nil), j.Steps...), JoinStep{Kind: kind, Right: right, On: on})
	return &cp
}

func (*TableRef) Category() Category     { return CategorySource }
func (*File) Category() Category         { return CategorySource }
func (*Temp) Category() Category         { return CategorySource }
func (*FromRecords) Category() Category  { return CategorySource }
func (*Union) Category() Category        { return CategorySource }
func (*Join) Category() Category         { return CategoryJoin }
func (*CompoundJoin) Category() Category { return CategoryJoin }

func (*TableRef) irNode()     {}
func (*File) irNode()         {}
func (*Temp) irNode()         {}
func (*FromRecords) irNode()  {}
func (*Union) irNode()        {}
func (*Join) irNode()         {}
func (*CompoundJoin) irNode() {}

func (*TableRef) irSource()     {}
func (*File) irSource()         {}
func (*Temp) irSource()         {}
func (*FromRecords) irSource()  {}
func (*Union) irSource()        {}
func (*Join) irSource()         {}
func (*CompoundJoin) irSource() {}
