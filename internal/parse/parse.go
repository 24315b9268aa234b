// Package parse wraps a tree-sitter parse of one source file and regenerates
// text from it after byte-range edits.
package parse

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/hintgraph/internal/lang"
)

var (
	// ErrSyntax reports source that tree-sitter could not parse cleanly.
	ErrSyntax = errors.New("syntax error")

	// ErrOverlappingEdit reports an edit intersecting one already queued.
	ErrOverlappingEdit = errors.New("overlapping edit")
)

// Tree is a parsed file plus the edits queued against it.
type Tree struct {
	source []byte
	tree   *sitter.Tree
	edits  []edit
}

type edit struct {
	start, end uint32
	text       string
}

// Parse parses source with parser, which must be set to the python language.
// Sources containing ERROR or MISSING nodes fail with ErrSyntax.
func Parse(ctx context.Context, parser *sitter.Parser, source []byte) (*Tree, error) {
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	root := tree.RootNode()
	if root.HasError() {
		bad := firstError(root)
		tree.Close()
		if bad == nil {
			return nil, ErrSyntax
		}
		return nil, fmt.Errorf("%w at line %d, column %d", ErrSyntax,
			bad.StartPoint().Row+1, bad.StartPoint().Column+1)
	}
	return &Tree{source: source, tree: tree}, nil
}

// ParseSource is a convenience wrapper creating a throwaway python parser.
func ParseSource(ctx context.Context, source []byte) (*Tree, error) {
	return Parse(ctx, lang.Python.NewParser(), source)
}

func firstError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsMissing() {
			if bad := firstError(child); bad != nil {
				return bad
			}
		}
	}
	return nil
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	t.tree.Close()
}

// Root returns the module node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Source returns the original bytes.
func (t *Tree) Source() []byte {
	return t.source
}

// Text returns the source text of node.
func (t *Tree) Text(node *sitter.Node) string {
	return lang.NodeText(node, t.source)
}

// Replace queues replacing source[start:end] with text.
func (t *Tree) Replace(start, end uint32, text string) error {
	if end < start || int(end) > len(t.source) {
		return fmt.Errorf("edit range [%d,%d) outside source", start, end)
	}
	for _, e := range t.edits {
		if start < e.end && e.start < end {
			return fmt.Errorf("%w: [%d,%d) intersects [%d,%d)", ErrOverlappingEdit, start, end, e.start, e.end)
		}
	}
	t.edits = append(t.edits, edit{start: start, end: end, text: text})
	return nil
}

// Delete queues removing source[start:end].
func (t *Tree) Delete(start, end uint32) error {
	return t.Replace(start, end, "")
}

// Edited reports whether any edit has been queued.
func (t *Tree) Edited() bool {
	return len(t.edits) > 0
}

// ModuleDocstring returns the leading string-literal expression statement
// of the module, or nil.
func (t *Tree) ModuleDocstring() *sitter.Node {
	root := t.Root()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() == lang.NodeComment {
			continue
		}
		if child.Type() != lang.NodeExpressionStatement || child.NamedChildCount() == 0 {
			return nil
		}
		if s := child.NamedChild(0); lang.IsStringLiteral(s) {
			return s
		}
		return nil
	}
	return nil
}

// Comments returns every comment token in document order.
func (t *Tree) Comments() []*sitter.Node {
	var out []*sitter.Node
	walk(t.Root(), func(n *sitter.Node) bool {
		if n.Type() == lang.NodeComment {
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

// walk visits node and its descendants depth-first; fn returning false
// skips the children of that node.
func walk(node *sitter.Node, fn func(*sitter.Node) bool) {
	if !fn(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), fn)
	}
}

// Render regenerates source text from the tree: queued edits are applied,
// comments are dropped, lines are right-trimmed and lines left empty are
// removed. Lines lying wholly inside a multi-line string are kept verbatim.
func (t *Tree) Render() string {
	edits := make([]edit, 0, len(t.edits))
	edits = append(edits, t.edits...)
	for _, c := range t.Comments() {
		if !t.covered(c.StartByte(), c.EndByte()) {
			edits = append(edits, edit{start: c.StartByte(), end: c.EndByte()})
		}
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var b strings.Builder
	var pos uint32
	for _, e := range edits {
		b.Write(t.source[pos:e.start])
		b.WriteString(e.text)
		pos = e.end
	}
	b.Write(t.source[pos:])
	out := b.String()

	shift := func(offset uint32) int {
		delta := 0
		for _, e := range edits {
			if e.end <= offset {
				delta += len(e.text) - int(e.end-e.start)
			}
		}
		return int(offset) + delta
	}
	var protected [][2]int
	for _, s := range t.multilineStrings() {
		protected = append(protected, [2]int{shift(s.StartByte()), shift(s.EndByte())})
	}

	lines := strings.Split(out, "\n")
	kept := make([]string, 0, len(lines))
	offset := 0
	for _, line := range lines {
		start, end := offset, offset+len(line)
		offset = end + 1
		if insideAny(protected, start, end) {
			kept = append(kept, line)
			continue
		}
		line = strings.TrimRight(line, " \t\r\f\v")
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "\n") + "\n"
}

// covered reports whether [start,end) lies inside a queued edit.
func (t *Tree) covered(start, end uint32) bool {
	for _, e := range t.edits {
		if e.start <= start && end <= e.end {
			return true
		}
	}
	return false
}

// multilineStrings returns the string literal nodes spanning more than one line.
func (t *Tree) multilineStrings() []*sitter.Node {
	var out []*sitter.Node
	walk(t.Root(), func(n *sitter.Node) bool {
		if n.Type() == lang.NodeString {
			if n.EndPoint().Row > n.StartPoint().Row {
				out = append(out, n)
			}
			return false
		}
		return true
	})
	return out
}

// insideAny reports whether the line [start,end) plus its newline lies
// strictly inside one of the regions.
func insideAny(regions [][2]int, start, end int) bool {
	for _, r := range regions {
		if r[0] < start && end < r[1] {
			return true
		}
	}
	return false
}
