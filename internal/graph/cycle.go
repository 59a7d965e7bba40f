package graph

import "slices"

// checkCycles runs Tarjan's algorithm over the dependency edges and
// returns a *CycleError describing every strongly connected component of
// more than one table, plus any table that reads from itself.
func (g *Graph) checkCycles() error {
	var cycles [][]string
	for _, scc := range g.tarjanSCC() {
		if len(scc) > 1 || g.hasSelfLoop(scc[0]) {
			cycles = append(cycles, g.cyclePath(scc))
		}
	}
	if len(cycles) == 0 {
		return nil
	}
	return &CycleError{Path: cycles[0], Others: cycles[1:]}
}

func (g *Graph) hasSelfLoop(name string) bool {
	for _, d := range g.deps[name] {
		if d == name {
			return true
		}
	}
	return false
}

// tarjanSCC returns the strongly connected components. Nodes are visited
// in declaration order so the result is stable between runs.
func (g *Graph) tarjanSCC() [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.deps[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is the root of a component
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, name := range g.names {
		if _, visited := indices[name]; !visited {
			strongConnect(name)
		}
	}
	return sccs
}

// cyclePath returns the shortest loop through the component that starts
// and ends at its earliest declared table. Edges are tried in declaration
// order.
func (g *Graph) cyclePath(scc []string) []string {
	g.sortByDeclaration(scc)
	start := scc[0]
	if len(scc) == 1 {
		return []string{start, start}
	}

	member := make(map[string]bool, len(scc))
	for _, n := range scc {
		member[n] = true
	}

	// breadth-first from start until an edge leads back to it
	prev := map[string]string{}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range g.deps[cur] {
			if !member[d] {
				continue
			}
			if d == start {
				path := []string{start}
				for n := cur; n != start; n = prev[n] {
					path = append(path, n)
				}
				path = append(path, start)
				// path was collected backwards apart from its endpoints
				slices.Reverse(path[1 : len(path)-1])
				return path
			}
			if _, seen := prev[d]; !seen {
				prev[d] = cur
				queue = append(queue, d)
			}
		}
	}
	return append(scc, start)
}
