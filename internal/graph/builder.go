package graph

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/hintgraph/internal/discover"
	"github.com/phobologic/hintgraph/internal/lang"
	"github.com/phobologic/hintgraph/internal/model"
	"github.com/phobologic/hintgraph/internal/namespace"
	"github.com/phobologic/hintgraph/internal/parse"
)

// Options configures a Builder.
type Options struct {
	ModuleSource namespace.ModuleSource
	Receiver     string
	// Workers bounds concurrent parsing; zero means GOMAXPROCS.
	Workers int
	// IncludeTests keeps test files, though test classes and functions
	// inside any file are always skipped.
	IncludeTests bool
}

// Failure is a file that could not be analyzed.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

// BuildResult is a finished graph plus the files that were skipped.
type BuildResult struct {
	Graph    *CallGraph
	Failures []Failure
}

// Builder accumulates definitions and call edges across files into one graph.
type Builder struct {
	opts     Options
	graph    *CallGraph
	resolver *Resolver
}

// NewBuilder returns a builder with an empty graph.
func NewBuilder(opts Options) *Builder {
	if opts.ModuleSource == "" {
		opts.ModuleSource = namespace.FromDocstring
	}
	g := New()
	return &Builder{opts: opts, graph: g, resolver: NewResolver(g, opts.Receiver)}
}

// Graph returns the graph built so far.
func (b *Builder) Graph() *CallGraph {
	return b.graph
}

// Build parses files concurrently and links them into the graph in input
// order. A file that fails to parse is logged, recorded and skipped.
func (b *Builder) Build(ctx context.Context, files []model.SourceFile) (*BuildResult, error) {
	files = b.filter(files)
	type parsed struct {
		tree *parse.Tree
		err  error
	}
	results := make([]parsed, len(files))

	workers := b.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tree, err := parse.Parse(gctx, lang.Python.NewParser(), f.Source)
			results[i] = parsed{tree: tree, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, r := range results {
			if r.tree != nil {
				r.tree.Close()
			}
		}
		return nil, err
	}

	res := &BuildResult{Graph: b.graph}
	for i, f := range files {
		r := results[i]
		if r.err != nil {
			slog.Warn("skipping file", "file", f.Path, "error", r.err)
			res.Failures = append(res.Failures, Failure{Path: f.Path, Err: r.err})
			continue
		}
		err := b.link(f.Path, r.tree)
		r.tree.Close()
		if err != nil {
			slog.Warn("skipping file", "file", f.Path, "error", err)
			res.Failures = append(res.Failures, Failure{Path: f.Path, Err: err})
		}
	}
	slog.Debug("call graph built", "files", len(files), "nodes", b.graph.Len(), "failures", len(res.Failures))
	return res, nil
}

func (b *Builder) filter(files []model.SourceFile) []model.SourceFile {
	if b.opts.IncludeTests {
		return files
	}
	out := make([]model.SourceFile, 0, len(files))
	for _, f := range files {
		if discover.IsTestFile(f.Path) {
			slog.Debug("skipping test file", "file", f.Path)
			continue
		}
		out = append(out, f)
	}
	return out
}

// linker walks one file.
type linker struct {
	b     *Builder
	path  string
	tree  *parse.Tree
	scope Scope
	query *sitter.Query
}

func (b *Builder) link(path string, tree *parse.Tree) error {
	query, err := lang.Python.GetCallQuery()
	if err != nil {
		return err
	}
	l := &linker{
		b:    b,
		path: path,
		tree: tree,
		scope: Scope{
			Namespace: namespace.NewTracker(namespace.ModuleName(tree, path, b.opts.ModuleSource)),
			Imports:   namespace.NewImportTable(),
		},
		query: query,
	}
	l.collectImports(tree.Root())
	return l.visit(tree.Root())
}

func (l *linker) collectImports(node *sitter.Node) {
	switch node.Type() {
	case lang.NodeImport, lang.NodeImportFrom:
		l.scope.Imports.Record(node, l.tree.Source())
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		l.collectImports(node.NamedChild(i))
	}
}

func (l *linker) visit(node *sitter.Node) error {
	switch node.Type() {
	case lang.NodeClassDefinition:
		name := lang.DefinitionName(node, l.tree.Source())
		if discover.IsTestClass(name) {
			return nil
		}
		ns := l.scope.Namespace
		ns.Push(name, namespace.Class)
		defer ns.Pop()
		return l.visitChildren(node)

	case lang.NodeFunctionDefinition:
		name := lang.DefinitionName(node, l.tree.Source())
		if discover.IsTestFunction(name) {
			return nil
		}
		ns := l.scope.Namespace
		ns.Push(name, namespace.Function)
		defer ns.Pop()
		fn := l.b.graph.Define(Definition{
			QualifiedName: ns.Qualified(),
			Name:          name,
			Class:         ns.EnclosingClass(),
			Module:        ns.Module(),
			File:          l.path,
			Lines: model.LineRange{
				Start: int(node.StartPoint().Row) + 1,
				End:   int(node.EndPoint().Row) + 1,
			},
		})
		if err := l.linkCalls(node, fn.QualifiedName); err != nil {
			return err
		}
		return l.visitChildren(node)
	}
	return l.visitChildren(node)
}

func (l *linker) visitChildren(node *sitter.Node) error {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if err := l.visit(node.NamedChild(i)); err != nil {
			return err
		}
	}
	return nil
}

// linkCalls resolves every call inside fn, nested definitions included, and
// links it to caller.
func (l *linker) linkCalls(fn *sitter.Node, caller string) error {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(l.query, body)

	source := l.tree.Source()
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)
		for _, c := range match.Captures {
			if l.query.CaptureNameForId(c.Index) != lang.CaptureCallee {
				continue
			}
			resolved, ok := l.b.resolver.Resolve(c.Node, source, l.scope)
			if !ok {
				slog.Debug("unresolved call", "file", l.path, "caller", caller, "callee", lang.NodeText(c.Node, source))
				continue
			}
			callee := l.b.graph.Lookup(resolved, l.scope.Namespace.Module())
			if err := l.b.graph.AddEdge(caller, callee.QualifiedName); err != nil {
				return err
			}
		}
	}
	return nil
}
