// Package graph builds a cross-file call graph of python functions, resolves
// call expressions heuristically and walks the result bottom-up.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phobologic/hintgraph/internal/discover"
	"github.com/phobologic/hintgraph/internal/model"
)

// CallGraph owns every FunctionNode, keyed by qualified name. Nodes refer to
// each other by key only.
type CallGraph struct {
	nodes map[string]*model.FunctionNode
	order []string

	// files maps a path to its functions in declaration order.
	files    map[string][]string
	declared map[string]map[string]struct{}

	// classSegments holds every second-to-last key segment; names holds
	// every node's own name.
	classSegments map[string]struct{}
	names         map[string]struct{}
}

// New returns an empty graph.
func New() *CallGraph {
	return &CallGraph{
		nodes:         make(map[string]*model.FunctionNode),
		files:         make(map[string][]string),
		declared:      make(map[string]map[string]struct{}),
		classSegments: make(map[string]struct{}),
		names:         make(map[string]struct{}),
	}
}

// Len returns the number of nodes.
func (g *CallGraph) Len() int {
	return len(g.nodes)
}

// Get returns the node registered under qualified.
func (g *CallGraph) Get(qualified string) (*model.FunctionNode, bool) {
	n, ok := g.nodes[qualified]
	return n, ok
}

// Keys returns every qualified name in registration order.
func (g *CallGraph) Keys() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Nodes returns every node in registration order.
func (g *CallGraph) Nodes() []*model.FunctionNode {
	out := make([]*model.FunctionNode, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, g.nodes[k])
	}
	return out
}

func (g *CallGraph) register(n *model.FunctionNode) {
	g.nodes[n.QualifiedName] = n
	g.order = append(g.order, n.QualifiedName)
	g.names[n.Name] = struct{}{}
	parts := strings.Split(n.QualifiedName, ".")
	if len(parts) >= 2 {
		g.classSegments[parts[len(parts)-2]] = struct{}{}
	}
}

// Definition describes an observed function definition.
type Definition struct {
	QualifiedName string
	Name          string
	Class         string
	Module        string
	File          string
	Lines         model.LineRange
}

// Define records a definition. An existing node under the same name, placeholder
// or not, is updated in place; a duplicate is never created.
func (g *CallGraph) Define(d Definition) *model.FunctionNode {
	lines := d.Lines
	n, ok := g.nodes[d.QualifiedName]
	if !ok {
		n = &model.FunctionNode{
			QualifiedName: d.QualifiedName,
			Name:          d.Name,
			Class:         d.Class,
			Module:        d.Module,
			Callees:       make(map[string]struct{}),
			Callers:       make(map[string]struct{}),
		}
		g.register(n)
	}
	n.File = d.File
	n.Lines = &lines
	n.CalledOnly = false
	if n.Class == "" {
		n.Class = d.Class
	}
	if n.Module == "" {
		n.Module = d.Module
	}

	seen := g.declared[d.File]
	if seen == nil {
		seen = make(map[string]struct{})
		g.declared[d.File] = seen
	}
	if _, dup := seen[d.QualifiedName]; !dup {
		seen[d.QualifiedName] = struct{}{}
		g.files[d.File] = append(g.files[d.File], d.QualifiedName)
	}
	return n
}

// AddEdge links caller to callee on both sides. Both must be registered.
func (g *CallGraph) AddEdge(caller, callee string) error {
	from, ok := g.nodes[caller]
	if !ok {
		return fmt.Errorf("unknown caller %q", caller)
	}
	to, ok := g.nodes[callee]
	if !ok {
		return fmt.Errorf("unknown callee %q", callee)
	}
	from.Callees[callee] = struct{}{}
	to.Callers[caller] = struct{}{}
	return nil
}

// HasClassSegment reports whether some key has name as its second-to-last segment.
func (g *CallGraph) HasClassSegment(name string) bool {
	_, ok := g.classSegments[name]
	return ok
}

// HasNodeName reports whether some node's own name equals name.
func (g *CallGraph) HasNodeName(name string) bool {
	_, ok := g.names[name]
	return ok
}

// FindSuffix returns the first key, in registration order, ending in
// "."+segment.
//
// Registration order makes the choice deterministic but it is still a guess:
// with several candidates the earliest registered one wins regardless of
// which module the call came from.
func (g *CallGraph) FindSuffix(segment string) (string, bool) {
	suffix := "." + segment
	for _, k := range g.order {
		if strings.HasSuffix(k, suffix) {
			return k, true
		}
	}
	return "", false
}

// Lookup returns the node for a resolved name: an exact hit, else the first
// key sharing its last segment, else a new placeholder. currentModule
// disambiguates two-segment placeholder names.
func (g *CallGraph) Lookup(resolved, currentModule string) *model.FunctionNode {
	if n, ok := g.nodes[resolved]; ok {
		return n
	}
	if key, ok := g.FindSuffix(lastSegment(resolved)); ok {
		return g.nodes[key]
	}
	n := placeholder(resolved, currentModule)
	g.register(n)
	return n
}

func placeholder(resolved, currentModule string) *model.FunctionNode {
	parts := strings.Split(resolved, ".")
	switch len(parts) {
	case 3:
		return model.NewPlaceholder(resolved, parts[0], parts[1], parts[2])
	case 2:
		if parts[0] == currentModule {
			return model.NewPlaceholder(resolved, parts[0], "", parts[1])
		}
		return model.NewPlaceholder(resolved, "", parts[0], parts[1])
	default:
		// The whole dotted path stands as the name.
		return model.NewPlaceholder(resolved, "", "", resolved)
	}
}

func lastSegment(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Files returns every path with at least one definition, sorted.
func (g *CallGraph) Files() []string {
	out := make([]string, 0, len(g.files))
	for f := range g.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// FileFunctions returns the qualified names defined in path, in declaration order.
func (g *CallGraph) FileFunctions(path string) []string {
	return append([]string(nil), g.files[path]...)
}

// Unreachable returns the defined nodes nothing calls, excluding test
// symbols, sorted by qualified name.
func (g *CallGraph) Unreachable() []*model.FunctionNode {
	var out []*model.FunctionNode
	for _, k := range g.order {
		n := g.nodes[k]
		if n.CalledOnly || len(n.Callers) > 0 {
			continue
		}
		if discover.IsTestFunction(n.Name) || discover.IsTestClass(n.Class) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QualifiedName < out[j].QualifiedName })
	return out
}
