// Package graph derives table dependencies from a schema and orders them
// for creation.
//
// An edge A -> B means table A reads from table B, so B must be built
// first. References are discovered by walking each table's IR: its source,
// subqueries, join branches, union members and column expressions. Raw
// inputs (files, temp tables, inline records) and names outside the schema
// are leaves.
package graph

import (
	"io"
	"log/slog"
	"slices"

	"github.com/miles-bartnik/tyr/internal/ir"
)

// Graph is the dependency graph of one schema. It is immutable once built.
type Graph struct {
	names      []string
	index      map[string]int
	deps       map[string][]string
	dependents map[string][]string
}

// Build discovers the dependencies of every table in s and checks them
// for cycles. A cycle is reported as a *CycleError wrapping
// ErrCyclicDependency. A nil logger discards events.
func Build(s *ir.Schema, logger *slog.Logger) (*Graph, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	g := &Graph{
		names:      s.Names(),
		index:      make(map[string]int, s.Len()),
		deps:       make(map[string][]string, s.Len()),
		dependents: make(map[string][]string, s.Len()),
	}
	for i, name := range g.names {
		g.index[name] = i
	}

	for _, t := range s.Tables() {
		for _, dep := range g.references(t, logger) {
			g.deps[t.Name] = append(g.deps[t.Name], dep)
			g.dependents[dep] = append(g.dependents[dep], t.Name)
			logger.Debug("dependency", "table", t.Name, "upstream", dep)
		}
	}
	for name := range g.dependents {
		g.sortByDeclaration(g.dependents[name])
	}

	if err := g.checkCycles(); err != nil {
		logger.Error("dependency cycle", "schema", s.Name(), "error", err)
		return nil, err
	}

	logger.Info("dependency graph built", "schema", s.Name(), "tables", len(g.names), "edges", g.EdgeCount())
	return g, nil
}

// references returns the schema tables t reads from, deduplicated and in
// declaration order. A table naming itself as a source is kept so the
// cycle check can report it.
func (g *Graph) references(t *ir.Table, logger *slog.Logger) []string {
	seen := map[string]bool{}
	add := func(name string) {
		if _, ok := g.index[name]; !ok {
			return
		}
		seen[name] = true
	}

	ir.Walk(t, func(n ir.Node) bool {
		switch v := n.(type) {
		case *ir.TableRef:
			if _, ok := g.index[v.Name]; !ok {
				logger.Debug("external reference", "table", t.Name, "name", v.Name)
				return true
			}
			add(v.Name)
		case *ir.Table:
			// Nested tables named after a schema table are inlined copies
			// of it (union members, subqueries).
			if v != t && v.Name != t.Name {
				add(v.Name)
			}
		case *ir.Column:
			if v.IsReference() && v.Table != t.Name {
				add(v.Table)
			}
		}
		return true
	})

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	g.sortByDeclaration(out)
	return out
}

func (g *Graph) sortByDeclaration(names []string) {
	slices.SortFunc(names, func(a, b string) int { return g.index[a] - g.index[b] })
}

// Tables returns every table in declaration order.
func (g *Graph) Tables() []string {
	return slices.Clone(g.names)
}

// Has reports whether name is a node of the graph.
func (g *Graph) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Dependencies returns the tables name reads from directly.
func (g *Graph) Dependencies(name string) []string {
	return slices.Clone(g.deps[name])
}

// Dependents returns the tables that read from name directly.
func (g *Graph) Dependents(name string) []string {
	return slices.Clone(g.dependents[name])
}

// FanIn is the number of tables that depend on name.
func (g *Graph) FanIn(name string) int {
	return len(g.dependents[name])
}

// EdgeCount returns the number of direct dependencies in the graph.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, d := range g.deps {
		n += len(d)
	}
	return n
}

// Upstream returns name and everything it depends on transitively, in
// build order.
func (g *Graph) Upstream(name string) ([]string, error) {
	order, err := g.Order()
	if err != nil {
		return nil, err
	}
	need := map[string]bool{name: true}
	stack := []string{name}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range g.deps[cur] {
			if !need[d] {
				need[d] = true
				stack = append(stack, d)
			}
		}
	}
	out := order[:0:0]
	for _, n := range order {
		if need[n] {
			out = append(out, n)
		}
	}
	return out, nil
}
