package graph

import (
	"sort"

	dgraph "github.com/dominikbraun/graph"
)

// Cycles returns groups of defined functions that call each other
// recursively: strongly connected components with more than one member,
// plus functions calling themselves. Members are sorted, and groups are
// sorted by their first member.
func (g *CallGraph) Cycles() ([][]string, error) {
	dg := dgraph.New(dgraph.StringHash, dgraph.Directed())
	for _, k := range g.order {
		if g.nodes[k].CalledOnly {
			continue
		}
		if err := dg.AddVertex(k); err != nil {
			return nil, err
		}
	}

	var selfLoops []string
	for _, k := range g.order {
		n := g.nodes[k]
		if n.CalledOnly {
			continue
		}
		for _, callee := range n.CalleeNames() {
			if callee == k {
				selfLoops = append(selfLoops, k)
				continue
			}
			if c := g.nodes[callee]; c == nil || c.CalledOnly {
				continue
			}
			if err := dg.AddEdge(k, callee); err != nil {
				return nil, err
			}
		}
	}

	sccs, err := dgraph.StronglyConnectedComponents(dg)
	if err != nil {
		return nil, err
	}
	var cycles [][]string
	grouped := make(map[string]struct{})
	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}
		group := append([]string(nil), scc...)
		sort.Strings(group)
		cycles = append(cycles, group)
		for _, k := range group {
			grouped[k] = struct{}{}
		}
	}
	for _, k := range selfLoops {
		if _, ok := grouped[k]; !ok {
			cycles = append(cycles, []string{k})
		}
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles, nil
}
