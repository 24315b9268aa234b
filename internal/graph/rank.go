package graph

import (
	"math"
	"sort"
)

// Rank computes PageRank over the defined nodes, with an edge from caller to
// callee, and returns the score per qualified name. Functions that many
// others depend on rank highest. Called-only nodes are excluded.
func (g *CallGraph) Rank() map[string]float64 {
	nodes := make(map[string]struct{})
	for k, n := range g.nodes {
		if !n.CalledOnly {
			nodes[k] = struct{}{}
		}
	}
	if len(nodes) == 0 {
		return map[string]float64{}
	}

	outEdges := make(map[string][]string)
	outDegree := make(map[string]int)
	for k := range nodes {
		for callee := range g.nodes[k].Callees {
			if _, ok := nodes[callee]; !ok || callee == k {
				continue
			}
			outEdges[k] = append(outEdges[k], callee)
			outDegree[k]++
		}
	}
	return pageRank(nodes, outEdges, outDegree, 0.85, 100, 1e-6)
}

// FileRanks sums function ranks per file.
func (g *CallGraph) FileRanks(ranks map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(g.files))
	for file, fns := range g.files {
		for _, fn := range fns {
			// A name redefined in another file belongs to the later file.
			if n := g.nodes[fn]; n != nil && n.File == file {
				out[file] += ranks[fn]
			}
		}
	}
	return out
}

func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	// Fixed iteration order keeps float sums reproducible.
	order := make([]string, 0, n)
	for node := range nodes {
		order = append(order, node)
	}
	sort.Strings(order)

	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for _, node := range order {
		rank[node] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		newRank := make(map[string]float64, n)

		// Dangling node contribution (nodes with no outgoing edges)
		var danglingSum float64
		for _, node := range order {
			if outDegree[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for _, node := range order {
			newRank[node] = teleport + danglingContrib
		}

		for _, src := range order {
			targets := outEdges[src]
			if len(targets) == 0 {
				continue
			}
			contrib := alpha * rank[src] / float64(outDegree[src])
			for _, tgt := range targets {
				newRank[tgt] += contrib
			}
		}

		var diff float64
		for _, node := range order {
			diff += math.Abs(newRank[node] - rank[node])
		}

		rank = newRank

		if diff < tol {
			break
		}
	}

	return rank
}
