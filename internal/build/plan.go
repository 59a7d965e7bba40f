package build

import (
	"fmt"
	"slices"
	"strings"

	"github.com/miles-bartnik/tyr/internal/graph"
	"github.com/miles-bartnik/tyr/internal/ir"
	"github.com/miles-bartnik/tyr/internal/render"
)

// Step is the rendered work for one table.
type Step struct {
	Table string `json:"table"`

	// Statements are issued in order: DROP TABLE IF EXISTS, then CREATE
	// TABLE AS.
	Statements []string `json:"statements"`

	// Fingerprint identifies the CREATE statement's content.
	Fingerprint string `json:"fingerprint"`
}

// Plan is everything a run will send to the engine, computed without
// touching it.
type Plan struct {
	Schema  string   `json:"schema"`
	Dialect string   `json:"dialect"`
	Mode    Mode     `json:"mode"`
	Order   []string `json:"order"`

	// Setup runs before any table: namespace and extension statements.
	Setup []string `json:"setup"`
	Steps []Step   `json:"steps"`
}

// Statements returns every statement of the plan in issue order.
func (p *Plan) Statements() []string {
	out := slices.Clone(p.Setup)
	for _, st := range p.Steps {
		out = append(out, st.Statements...)
	}
	return out
}

// Script returns the plan as a SQL script, one statement per line.
func (p *Plan) Script() string {
	var b strings.Builder
	for _, st := range p.Statements() {
		b.WriteString(st)
		b.WriteString(";\n")
	}
	return b.String()
}

// Plan validates s, orders its tables and renders every statement a run
// would issue. Cycles, validation failures and unrenderable nodes are
// returned here, so a failing plan never reaches the engine.
func (b *Builder) Plan(s *ir.Schema) (*Plan, error) {
	if err := ir.Validate(s); err != nil {
		return nil, fmt.Errorf("validate schema %s: %w", s.Name(), err)
	}

	g, err := graph.Build(s, b.logger)
	if err != nil {
		return nil, err
	}
	order, err := b.order(g)
	if err != nil {
		return nil, err
	}

	r := render.New(b.dialect, s.Name())
	plan := &Plan{
		Schema:  s.Name(),
		Dialect: b.dialect.Name,
		Mode:    b.mode,
		Order:   order,
		Setup:   []string{},
		Steps:   make([]Step, 0, len(order)),
	}

	// A targeted run rebuilds a subset, so the namespace and every other
	// table in it must survive.
	if b.mode == Incremental || len(b.targets) > 0 {
		plan.Setup = append(plan.Setup, r.EnsureNamespace()...)
	} else {
		plan.Setup = append(plan.Setup, r.NamespaceStatements(s.Settings().CreateSQL)...)
	}
	for _, ext := range s.Settings().Extensions {
		load, err := r.LoadExtension(ext)
		if err != nil {
			return nil, fmt.Errorf("extension %s: %w", ext, err)
		}
		plan.Setup = append(plan.Setup, load...)
	}

	for _, name := range order {
		t, _ := s.Table(name)
		create, err := r.CreateTableAs(t)
		if err != nil {
			return nil, fmt.Errorf("render table %s: %w", name, err)
		}
		plan.Steps = append(plan.Steps, Step{
			Table:       name,
			Statements:  []string{r.DropTable(name), create},
			Fingerprint: render.Fingerprint(create),
		})
	}
	return plan, nil
}

// order returns the build order, narrowed to the configured targets.
func (b *Builder) order(g *graph.Graph) ([]string, error) {
	return Order(g, b.targets)
}

// Order returns the build order of g narrowed to targets and their
// upstream tables. No targets means every table.
func Order(g *graph.Graph, targets []string) ([]string, error) {
	order, err := g.Order()
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return order, nil
	}

	need := map[string]bool{}
	for _, t := range targets {
		if !g.Has(t) {
			return nil, fmt.Errorf("%w %q", ErrUnknownTarget, t)
		}
		up, err := g.Upstream(t)
		if err != nil {
			return nil, err
		}
		for _, n := range up {
			need[n] = true
		}
	}
	return slices.DeleteFunc(order, func(n string) bool { return !need[n] }), nil
}
