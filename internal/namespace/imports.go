package namespace

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/hintgraph/internal/lang"
)

// ImportTable maps a file's local import aliases to the dotted paths they
// denote. Aliases of aliases are not followed.
type ImportTable struct {
	aliases map[string]string
}

// NewImportTable returns an empty table.
func NewImportTable() *ImportTable {
	return &ImportTable{aliases: make(map[string]string)}
}

// Lookup returns the dotted path bound to alias.
func (t *ImportTable) Lookup(alias string) (string, bool) {
	path, ok := t.aliases[alias]
	return path, ok
}

// Len returns the number of recorded aliases.
func (t *ImportTable) Len() int {
	return len(t.aliases)
}

// Add binds alias to path, replacing any earlier binding.
func (t *ImportTable) Add(alias, path string) {
	if alias == "" || path == "" {
		return
	}
	t.aliases[alias] = path
}

// Record adds the aliases bound by an import_statement or
// import_from_statement node. Other node types are ignored.
func (t *ImportTable) Record(node *sitter.Node, source []byte) {
	switch node.Type() {
	case lang.NodeImport:
		t.recordImport(node, source)
	case lang.NodeImportFrom:
		t.recordImportFrom(node, source)
	}
}

// import a.b.c      -> c -> a.b.c
// import a.b as x   -> x -> a.b
func (t *ImportTable) recordImport(node *sitter.Node, source []byte) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case lang.NodeDottedName:
			path := lang.NodeText(child, source)
			t.Add(lastComponent(path), path)
		case lang.NodeAliasedImport:
			path, alias := aliasedParts(child, source)
			t.Add(alias, path)
		}
	}
}

// from m import n        -> n -> m.n
// from m import n as a   -> a -> m.n
// from . import n        -> n -> .n
func (t *ImportTable) recordImportFrom(node *sitter.Node, source []byte) {
	var module string
	sawImport := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import":
			sawImport = true
		case lang.NodeRelativeImport:
			module = lang.NodeText(child, source)
		case lang.NodeDottedName:
			name := lang.NodeText(child, source)
			if !sawImport {
				module = name
				continue
			}
			t.Add(lastComponent(name), qualify(module, name))
		case lang.NodeAliasedImport:
			name, alias := aliasedParts(child, source)
			t.Add(alias, qualify(module, name))
		}
	}
}

func aliasedParts(node *sitter.Node, source []byte) (path, alias string) {
	if n := node.ChildByFieldName("name"); n != nil {
		path = lang.NodeText(n, source)
	}
	if a := node.ChildByFieldName("alias"); a != nil {
		alias = lang.NodeText(a, source)
	}
	return path, alias
}

func qualify(module, name string) string {
	switch {
	case module == "":
		return name
	case strings.HasSuffix(module, "."):
		return module + name
	default:
		return module + "." + name
	}
}

func lastComponent(dotted string) string {
	if i := strings.LastIndex(dotted, "."); i >= 0 {
		return dotted[i+1:]
	}
	return dotted
}
