package strip

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/hintgraph/internal/lang"
	"github.com/phobologic/hintgraph/internal/model"
	"github.com/phobologic/hintgraph/internal/namespace"
	"github.com/phobologic/hintgraph/internal/parse"
)

// collector records every annotation of a tree and queues the edits that
// remove it.
type collector struct {
	tree        *parse.Tree
	ns          *namespace.Tracker
	receiver    string
	placeholder string
	ann         *model.Annotations
}

// Collect fills a fresh annotation table from tree and queues the removal
// edits on it. Render the tree afterwards to get the stripped text.
func Collect(tree *parse.Tree, module string, opts Options) (*model.Annotations, error) {
	opts = opts.withDefaults()
	c := &collector{
		tree:        tree,
		ns:          namespace.NewTracker(module),
		receiver:    opts.Receiver,
		placeholder: opts.Placeholder,
		ann:         model.NewAnnotations(),
	}
	if err := c.visit(tree.Root()); err != nil {
		return nil, err
	}
	return c.ann, nil
}

func (c *collector) visit(node *sitter.Node) error {
	switch node.Type() {
	case lang.NodeClassDefinition:
		c.ns.Push(lang.DefinitionName(node, c.tree.Source()), namespace.Class)
		defer c.ns.Pop()
		return c.visitChildren(node)

	case lang.NodeFunctionDefinition:
		c.ns.Push(lang.DefinitionName(node, c.tree.Source()), namespace.Function)
		defer c.ns.Pop()
		if err := c.visitChildren(node); err != nil {
			return err
		}
		return c.leaveFunction(node)

	case lang.NodeTypedParameter, lang.NodeTypedDefaultParameter:
		return c.leaveParameter(node)

	case lang.NodeAssignment:
		if err := c.visitChildren(node); err != nil {
			return err
		}
		return c.leaveAssignment(node)
	}
	return c.visitChildren(node)
}

func (c *collector) visitChildren(node *sitter.Node) error {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if err := c.visit(node.NamedChild(i)); err != nil {
			return err
		}
	}
	return nil
}

// def f(...) -> T:  becomes  def f(...):
func (c *collector) leaveFunction(node *sitter.Node) error {
	ret := node.ChildByFieldName("return_type")
	params := node.ChildByFieldName("parameters")
	if ret == nil || params == nil {
		return nil
	}
	c.ann.Functions[c.ns.Qualified()] = c.annotation(ret)
	return c.tree.Delete(params.EndByte(), ret.EndByte())
}

// name: T [= v]  becomes  name [= v]
func (c *collector) leaveParameter(node *sitter.Node) error {
	typ := node.ChildByFieldName("type")
	name := lang.ParameterNameNode(node)
	if typ == nil || name == nil {
		return nil
	}
	c.ann.Parameters[c.ns.Qualified(c.tree.Text(name))] = c.annotation(typ)
	return c.tree.Delete(lang.ParameterNameEnd(node), typ.EndByte())
}

// target: T = v  becomes  target = v;  target: T  becomes  target = <placeholder>
func (c *collector) leaveAssignment(node *sitter.Node) error {
	typ := node.ChildByFieldName("type")
	left := node.ChildByFieldName("left")
	if typ == nil || left == nil {
		return nil
	}
	if target := c.variableTarget(left); target != "" {
		c.ann.Variables[c.ns.Qualified(target)] = c.annotation(typ)
	}
	if node.ChildByFieldName("right") == nil {
		return c.tree.Replace(left.EndByte(), typ.EndByte(), " = "+c.placeholder)
	}
	return c.tree.Delete(left.EndByte(), typ.EndByte())
}

// variableTarget names a bare identifier or a receiver attribute; other
// targets are stripped without being recorded.
func (c *collector) variableTarget(left *sitter.Node) string {
	switch left.Type() {
	case lang.NodeIdentifier:
		return c.tree.Text(left)
	case lang.NodeAttribute:
		object := left.ChildByFieldName("object")
		attr := left.ChildByFieldName("attribute")
		if object != nil && attr != nil && object.Type() == lang.NodeIdentifier && c.tree.Text(object) == c.receiver {
			return c.tree.Text(attr)
		}
	}
	return ""
}

func (c *collector) annotation(typ *sitter.Node) string {
	return lang.CollapseWhitespace(c.tree.Text(typ))
}
