package ir

import "fmt"

// Settings configure how a schema is materialized.
type Settings struct {
	// Name is the target namespace. Empty means the engine default.
	Name string
	// Extensions are engine extensions loaded before any table is built.
	Extensions []string
	// CreateSQL replaces the default namespace creation statement when set.
	CreateSQL string
}

// Schema is a named, ordered set of tables. Table names are unique.
type Schema struct {
	settings Settings
	tables   []*Table
	byName   map[string]*Table
}

// NewSchema returns a schema holding tables in declaration order.
// Duplicate or empty table names are rejected.
func NewSchema(settings Settings, tables ...*Table) (*Schema, error) {
	s := &Schema{
		settings: settings,
		tables:   make([]*Table, 0, len(tables)),
		byName:   make(map[string]*Table, len(tables)),
	}
	for i, t := range tables {
		if t == nil {
			return nil, fmt.Errorf("schema %q: table %d is nil", settings.Name, i)
		}
		if t.Name == "" {
			return nil, fmt.Errorf("schema %q: table %d has no name", settings.Name, i)
		}
		if _, dup := s.byName[t.Name]; dup {
			return nil, fmt.Errorf("schema %q: %w: %s", settings.Name, ErrDuplicateTable, t.Name)
		}
		s.tables = append(s.tables, t)
		s.byName[t.Name] = t
	}
	return s, nil
}

// Name returns the schema namespace.
func (s *Schema) Name() string { return s.settings.Name }

// Settings returns the materialization settings.
func (s *Schema) Settings() Settings { return s.settings }

// Tables returns the tables in declaration order. The slice is a copy.
func (s *Schema) Tables() []*Table {
	return append([]*Table(nil), s.tables...)
}

// Table looks up a table by name.
func (s *Schema) Table(name string) (*Table, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// Names returns the table names in declaration order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.tables))
	for i, t := range s.tables {
		out[i] = t.Name
	}
	return out
}

// Len returns the number of tables.
func (s *Schema) Len() int { return len(s.tables) }
