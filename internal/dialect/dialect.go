// Package dialect holds the lookup tables that make rendering
// dialect-specific: identifier quoting, type names, function names,
// timestamp-format tokens and statement templates.
//
// Nothing here branches on the dialect name. A new dialect is a new table.
package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/miles-bartnik/tyr/internal/ir"
)

// ErrUnknownDialect is returned by Lookup for unregistered names.
var ErrUnknownDialect = errors.New("unknown dialect")

// Template is a text pattern with {name} placeholders.
type Template string

// Fill substitutes every {key} in t with args[key]. Unknown placeholders
// are left as-is.
func (t Template) Fill(args map[string]string) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", args[k])
	}
	return strings.NewReplacer(pairs...).Replace(string(t))
}

// JSONPath describes how a key path is spelled inside a string literal.
type JSONPath struct {
	Prefix    string
	Separator string
	Suffix    string
}

// Format joins keys into a path expression.
func (p JSONPath) Format(keys []string) string {
	return p.Prefix + strings.Join(keys, p.Separator) + p.Suffix
}

// Literals holds the templates for literal values whose syntax differs.
type Literals struct {
	Date        Template // {v}
	Timestamp   Template // {v}
	Interval    Template // {n} {part}
	List        Template // {items}
	Struct      Template // {fields}
	StructField Template // {name} {v}
}

// Statements holds DDL templates used by the build scheduler. An empty
// template means the dialect has no such statement.
type Statements struct {
	DropSchema    Template   // {schema}
	CreateSchema  Template   // {schema}
	EnsureSchema  Template   // {schema}
	DropTable     Template   // {table}
	CreateTableAs Template   // {table} {select}
	LoadExtension []Template // {ext}
}

// Dialect is one target SQL syntax.
type Dialect struct {
	Name string

	// QuoteChar wraps identifiers; embedded quote chars are doubled.
	QuoteChar string
	// SupportsSchemas is false for engines without namespaces; table
	// references are then left unqualified.
	SupportsSchemas bool

	// Types maps IR types to dialect spelling. Missing entries keep the
	// IR name. ListType wraps element types: {elem}.
	Types    map[ir.DataType]string
	ListType Template

	// Functions renames generic functions.
	Functions map[ir.FunctionKind]string
	// FunctionTemplates renders kinds that need custom syntax.
	FunctionTemplates map[ir.FunctionKind]Template
	// Operators respells operator tokens.
	Operators map[ir.OperatorKind]string

	// FormatTokens maps canonical %-tokens to dialect tokens. Missing
	// tokens pass through unchanged.
	FormatTokens map[string]string
	// DateParts and TruncParts map interval parts for DatePart and
	// DateTrunc. Missing parts use the IR name.
	DateParts  map[ir.IntervalPart]string
	TruncParts map[ir.IntervalPart]string
	// IndexBase is the position of the first list element.
	IndexBase int
	JSONPath  JSONPath

	// FileReaders render raw file sources: {path}.
	FileReaders map[ir.FileFormat]Template

	Literals   Literals
	Statements Statements
}

// Quote quotes an identifier. Identifiers are NFC-normalized so that
// visually identical names render identically.
func (d *Dialect) Quote(ident string) string {
	q := d.QuoteChar
	return q + strings.ReplaceAll(norm.NFC.String(ident), q, q+q) + q
}

// QuoteString renders a string literal.
func (d *Dialect) QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Qualify returns the quoted name of table in schema. The schema is dropped
// when it is empty or the dialect has no namespaces.
func (d *Dialect) Qualify(schema, table string) string {
	if schema == "" || !d.SupportsSchemas {
		return d.Quote(table)
	}
	return d.Quote(schema) + "." + d.Quote(table)
}

// TypeName spells t for this dialect.
func (d *Dialect) TypeName(t ir.DataType) string {
	if t.IsList() {
		elem := d.TypeName(t.Elem())
		return d.ListType.Fill(map[string]string{"elem": elem})
	}
	if s, ok := d.Types[t]; ok {
		return s
	}
	return string(t)
}

// FunctionName returns the dialect name of a generic function.
func (d *Dialect) FunctionName(k ir.FunctionKind) string {
	if s, ok := d.Functions[k]; ok {
		return s
	}
	return string(k)
}

// FunctionTemplate returns the custom template for k, if any.
func (d *Dialect) FunctionTemplate(k ir.FunctionKind) (Template, bool) {
	t, ok := d.FunctionTemplates[k]
	return t, ok
}

// OperatorToken returns the dialect token for k.
func (d *Dialect) OperatorToken(k ir.OperatorKind) string {
	if s, ok := d.Operators[k]; ok {
		return s
	}
	return string(k)
}

// TranslateFormat rewrites a strftime-style format into dialect tokens.
// A token is '%' followed by one character; unmapped tokens are kept.
func (d *Dialect) TranslateFormat(format string) string {
	if len(d.FormatTokens) == 0 {
		return format
	}
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] == '%' && i+1 < len(format) {
			tok := format[i : i+2]
			if sub, ok := d.FormatTokens[tok]; ok {
				b.WriteString(sub)
			} else {
				b.WriteString(tok)
			}
			i++
			continue
		}
		b.WriteByte(format[i])
	}
	return b.String()
}

// DatePart spells part for date extraction.
func (d *Dialect) DatePart(p ir.IntervalPart) string {
	if s, ok := d.DateParts[p]; ok {
		return s
	}
	return string(p)
}

// TruncPart spells part for date truncation.
func (d *Dialect) TruncPart(p ir.IntervalPart) string {
	if s, ok := d.TruncParts[p]; ok {
		return s
	}
	return string(p)
}

// FileReader returns the reader template for format f.
func (d *Dialect) FileReader(f ir.FileFormat) (Template, bool) {
	t, ok := d.FileReaders[f]
	return t, ok
}

func (d *Dialect) String() string { return d.Name }

var registry = map[string]*Dialect{}

// Register adds d to the registry, replacing any dialect of the same name.
func Register(d *Dialect) {
	registry[d.Name] = d
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (*Dialect, error) {
	d, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownDialect, name, strings.Join(Names(), ", "))
	}
	return d, nil
}

// Names returns the registered dialect names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
