package graph

import "fmt"

// Order returns every table so that each one comes after the tables it
// reads from (Kahn's algorithm). When several tables are ready at once,
// the one with the fewest dependents goes first, then declaration order.
func (g *Graph) Order() ([]string, error) {
	pending := make(map[string]int, len(g.names))
	var ready []string
	for _, name := range g.names {
		pending[name] = len(g.deps[name])
		if pending[name] == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]string, 0, len(g.names))
	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			if g.before(ready[i], ready[best]) {
				best = i
			}
		}
		next := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		order = append(order, next)

		for _, d := range g.dependents[next] {
			pending[d]--
			if pending[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(order) != len(g.names) {
		// unreachable for graphs from Build, which rejects cycles
		if err := g.checkCycles(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: ordered %d of %d tables", ErrCyclicDependency, len(order), len(g.names))
	}
	return order, nil
}

func (g *Graph) before(a, b string) bool {
	if fa, fb := g.FanIn(a), g.FanIn(b); fa != fb {
		return fa < fb
	}
	return g.index[a] < g.index[b]
}
