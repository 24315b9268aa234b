package graph

import (
	"iter"

	"github.com/phobologic/hintgraph/internal/model"
)

// Walker yields defined nodes bottom-up: it starts from defined nodes that
// call nothing and moves outward through callers, breadth first. It is not a
// topological order; a node can come out before all of its callees have.
//
// Called-only nodes are never yielded and never marked visited, so each time
// one is dequeued its callers are enqueued again.
type Walker struct {
	graph   *CallGraph
	queue   []string
	visited map[string]struct{}
}

// WalkOptions adjusts the initial queue.
type WalkOptions struct {
	// SeedPlaceholders also seeds called-only nodes, so functions whose
	// callees are all placeholders (builtins, unresolved imports) are
	// reached through them.
	SeedPlaceholders bool
}

// Walker returns a fresh walker over g seeded with the defined nodes that
// call nothing, in registration order.
func (g *CallGraph) Walker() *Walker {
	return g.WalkerWith(WalkOptions{})
}

// WalkerWith returns a fresh walker seeded according to opts.
func (g *CallGraph) WalkerWith(opts WalkOptions) *Walker {
	w := &Walker{graph: g, visited: make(map[string]struct{})}
	for _, k := range g.order {
		n := g.nodes[k]
		if len(n.Callees) == 0 && (!n.CalledOnly || opts.SeedPlaceholders) {
			w.queue = append(w.queue, k)
		}
	}
	return w
}

// Next returns the next node, or false once the queue is exhausted.
func (w *Walker) Next() (*model.FunctionNode, bool) {
	for len(w.queue) > 0 {
		key := w.queue[0]
		w.queue = w.queue[1:]
		if _, seen := w.visited[key]; seen {
			continue
		}
		n := w.graph.nodes[key]
		w.queue = append(w.queue, n.CallerNames()...)
		if n.CalledOnly {
			continue
		}
		w.visited[key] = struct{}{}
		return n, true
	}
	return nil, false
}

// Unvisited returns the defined nodes the walk has not yielded, in
// registration order. After exhaustion these are the nodes unreachable from
// any leaf: members of call cycles and functions whose only callees are
// placeholders with no defined path back to them.
func (w *Walker) Unvisited() []*model.FunctionNode {
	var out []*model.FunctionNode
	for _, k := range w.graph.order {
		n := w.graph.nodes[k]
		if n.CalledOnly {
			continue
		}
		if _, ok := w.visited[k]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// Walk returns an iterator over a fresh walker.
func (g *CallGraph) Walk(opts WalkOptions) iter.Seq[*model.FunctionNode] {
	return func(yield func(*model.FunctionNode) bool) {
		w := g.WalkerWith(opts)
		for {
			n, ok := w.Next()
			if !ok || !yield(n) {
				return
			}
		}
	}
}
