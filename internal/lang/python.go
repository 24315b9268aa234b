package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Python node types the analyzers dispatch on.
const (
	NodeClassDefinition       = "class_definition"
	NodeFunctionDefinition    = "function_definition"
	NodeTypedParameter        = "typed_parameter"
	NodeTypedDefaultParameter = "typed_default_parameter"
	NodeAssignment            = "assignment"
	NodeAttribute             = "attribute"
	NodeIdentifier            = "identifier"
	NodeImport                = "import_statement"
	NodeImportFrom            = "import_from_statement"
	NodeAliasedImport         = "aliased_import"
	NodeDottedName            = "dotted_name"
	NodeRelativeImport        = "relative_import"
	NodeExpressionStatement   = "expression_statement"
	NodeString                = "string"
	NodeConcatenatedString    = "concatenated_string"
	NodeComment               = "comment"
)

// Python is the registered python language.
var Python *Language

func init() {
	Python = &Language{
		Name:       "python",
		Extensions: []string{".py"},
		lang:       python.GetLanguage(),
	}
	Languages["python"] = Python
}

// DefinitionName returns the name of a class or function definition.
func DefinitionName(node *sitter.Node, source []byte) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return NodeText(name, source)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == NodeIdentifier {
			return NodeText(child, source)
		}
	}
	return ""
}

// ParameterNameNode returns the node naming an annotated parameter.
// For "*args: T" and "**kw: T" it is the identifier inside the splat pattern.
func ParameterNameNode(param *sitter.Node) *sitter.Node {
	if name := param.ChildByFieldName("name"); name != nil {
		return name
	}
	if param.NamedChildCount() == 0 {
		return nil
	}
	first := param.NamedChild(0)
	switch first.Type() {
	case "list_splat_pattern", "dictionary_splat_pattern":
		for i := 0; i < int(first.NamedChildCount()); i++ {
			if c := first.NamedChild(i); c.Type() == NodeIdentifier {
				return c
			}
		}
	}
	return first
}

// ParameterNameEnd returns the byte offset where a parameter's name (splat
// markers included) ends, which is where its annotation text begins.
func ParameterNameEnd(param *sitter.Node) uint32 {
	if name := param.ChildByFieldName("name"); name != nil {
		return name.EndByte()
	}
	if param.NamedChildCount() == 0 {
		return param.StartByte()
	}
	return param.NamedChild(0).EndByte()
}

// IsStringLiteral reports whether node is a plain or implicitly concatenated string.
func IsStringLiteral(node *sitter.Node) bool {
	t := node.Type()
	return t == NodeString || t == NodeConcatenatedString
}
