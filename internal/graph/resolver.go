package graph

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/hintgraph/internal/lang"
	"github.com/phobologic/hintgraph/internal/namespace"
)

// DefaultReceiver is the conventional instance receiver name.
const DefaultReceiver = "self"

// Scope is the per-file state a call is resolved against.
type Scope struct {
	Namespace *namespace.Tracker
	Imports   *namespace.ImportTable
}

// Resolver guesses the qualified name a call expression invokes. The guess
// depends on which nodes the graph already holds, so resolution results vary
// with file order.
type Resolver struct {
	graph    *CallGraph
	receiver string
}

// NewResolver returns a resolver consulting g. An empty receiver means
// DefaultReceiver.
func NewResolver(g *CallGraph, receiver string) *Resolver {
	if receiver == "" {
		receiver = DefaultReceiver
	}
	return &Resolver{graph: g, receiver: receiver}
}

// Resolve resolves the function sub-expression of a call node. It reports
// false for callee shapes it does not handle, such as subscripts, calls on
// call results or attribute chains.
func (r *Resolver) Resolve(callee *sitter.Node, source []byte, scope Scope) (string, bool) {
	switch callee.Type() {
	case lang.NodeIdentifier:
		return r.ResolveBare(lang.NodeText(callee, source), scope), true
	case lang.NodeAttribute:
		object := callee.ChildByFieldName("object")
		attr := callee.ChildByFieldName("attribute")
		if object == nil || attr == nil || object.Type() != lang.NodeIdentifier {
			return "", false
		}
		return r.ResolveMethod(lang.NodeText(object, source), lang.NodeText(attr, source), scope), true
	}
	return "", false
}

// ResolveBare resolves f(...).
func (r *Resolver) ResolveBare(name string, scope Scope) string {
	if path, ok := scope.Imports.Lookup(name); ok {
		return path
	}
	if IsBuiltin(name) {
		return BuiltinsModule + "." + name
	}
	if r.graph.HasClassSegment(name) {
		// Constructors resolve against the module, not the calling scope.
		return scope.Namespace.Module() + "." + name + ".__init__"
	}
	return scope.Namespace.Module() + "." + name
}

// ResolveMethod resolves recv.method(...) where recv is a bare identifier.
func (r *Resolver) ResolveMethod(recv, method string, scope Scope) string {
	ns := scope.Namespace
	if path, ok := scope.Imports.Lookup(recv); ok {
		return path + "." + method
	}
	if recv == r.receiver {
		if class := ns.EnclosingClass(); class != "" {
			return ns.WithoutFunctionAndClass(class, method)
		}
	}
	if r.graph.HasNodeName(recv) {
		return ns.WithoutFunction(method)
	}
	if key, ok := r.graph.FindSuffix(recv); ok {
		return ns.WithoutFunction(classBefore(key), method)
	}
	// Frequently wrong: the receiver's type is unknown.
	return ns.WithoutFunction(method)
}

// classBefore returns the segment preceding the last one.
func classBefore(key string) string {
	parts := strings.Split(key, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}
