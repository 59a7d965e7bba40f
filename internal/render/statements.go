package render

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/miles-bartnik/tyr/internal/dialect"
	"github.com/miles-bartnik/tyr/internal/ir"
)

// DomainStatement separates statement fingerprints from other hashes.
// The version suffix allows the algorithm to change.
const DomainStatement = "tyr/statement/v1"

// Fingerprint returns a stable content hash of a rendered statement.
// Format: hex(SHA256(domain + 0x00 + sql)).
func Fingerprint(sql string) string {
	h := sha256.New()
	h.Write([]byte(DomainStatement))
	h.Write([]byte{0x00})
	h.Write([]byte(sql))
	return hex.EncodeToString(h.Sum(nil))
}

var extensionName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TableName returns the qualified, quoted name of a schema table.
func (r *Renderer) TableName(name string) string {
	return r.Dialect.Qualify(r.Schema, name)
}

// DropTable returns the DROP TABLE IF EXISTS statement for name.
func (r *Renderer) DropTable(name string) string {
	return r.Dialect.Statements.DropTable.Fill(map[string]string{"table": r.TableName(name)})
}

// CreateTableAs returns the CREATE TABLE ... AS SELECT statement for t.
func (r *Renderer) CreateTableAs(t *ir.Table) (string, error) {
	sel, err := r.Table(t)
	if err != nil {
		return "", err
	}
	return r.Dialect.Statements.CreateTableAs.Fill(map[string]string{
		"table":  r.TableName(t.Name),
		"select": sel,
	}), nil
}

// NamespaceStatements returns the statements that drop and recreate the
// schema namespace. createSQL replaces the CREATE statement when set.
// Dialects without namespaces return nothing unless createSQL is set.
func (r *Renderer) NamespaceStatements(createSQL string) []string {
	var out []string
	st := r.Dialect.Statements
	args := map[string]string{"schema": r.Dialect.Quote(r.Schema)}

	if r.Schema != "" && r.Dialect.SupportsSchemas && st.DropSchema != "" {
		out = append(out, st.DropSchema.Fill(args))
	}
	switch {
	case strings.TrimSpace(createSQL) != "":
		out = append(out, strings.TrimSpace(createSQL))
	case r.Schema != "" && r.Dialect.SupportsSchemas && st.CreateSchema != "":
		out = append(out, st.CreateSchema.Fill(args))
	}
	return out
}

// EnsureNamespace returns the statement that creates the schema namespace
// if it is missing, or nothing when the dialect has no namespaces.
func (r *Renderer) EnsureNamespace() []string {
	st := r.Dialect.Statements
	if r.Schema == "" || !r.Dialect.SupportsSchemas || st.EnsureSchema == "" {
		return nil
	}
	return []string{st.EnsureSchema.Fill(map[string]string{"schema": r.Dialect.Quote(r.Schema)})}
}

// LoadExtension returns the statements that make ext available.
func (r *Renderer) LoadExtension(ext string) ([]string, error) {
	if !extensionName.MatchString(ext) {
		return nil, fmt.Errorf("invalid extension name %q", ext)
	}
	tmpls := r.Dialect.Statements.LoadExtension
	if len(tmpls) == 0 {
		return nil, &UnrenderableError{
			Node:        "extension",
			Kind:        ext,
			Dialect:     r.Dialect.Name,
			Reason:      "dialect cannot load extensions",
			Unsupported: true,
		}
	}
	out := make([]string, len(tmpls))
	for i, t := range tmpls {
		out[i] = t.Fill(map[string]string{"ext": ext})
	}
	return out, nil
}

// Script renders the full rebuild of s as a SQL script: namespace,
// extensions, then DROP and CREATE for every table in order. order must
// name every table of s; pass a build order so the script runs top to
// bottom.
func Script(s *ir.Schema, d *dialect.Dialect, order []string) (string, error) {
	r := New(d, s.Name())
	stmts := r.NamespaceStatements(s.Settings().CreateSQL)

	for _, ext := range s.Settings().Extensions {
		load, err := r.LoadExtension(ext)
		if err != nil {
			return "", err
		}
		stmts = append(stmts, load...)
	}

	for _, name := range order {
		t, ok := s.Table(name)
		if !ok {
			return "", fmt.Errorf("script: table %q is not in schema %q", name, s.Name())
		}
		create, err := r.CreateTableAs(t)
		if err != nil {
			return "", fmt.Errorf("script: table %s: %w", name, err)
		}
		stmts = append(stmts, r.DropTable(name), create)
	}

	var b strings.Builder
	for _, st := range stmts {
		b.WriteString(st)
		b.WriteString(";\n")
	}
	return b.String(), nil
}
