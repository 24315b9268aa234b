package align

import (
	"strings"

	"github.com/phobologic/hintgraph/internal/model"
	"github.com/phobologic/hintgraph/internal/parse"
)

// Comments maps an original line number (Split numbering) to its comment.
type Comments map[int]model.Comment

// ExtractComments records every comment token of tree. offset is the
// leading-line offset returned by Split for the same source.
func ExtractComments(tree *parse.Tree, offset int) Comments {
	src := tree.Source()
	out := make(Comments)
	for _, node := range tree.Comments() {
		start := int(node.StartByte())
		lineStart := strings.LastIndexByte(string(src[:start]), '\n') + 1
		before := string(src[lineStart:start])
		code := strings.TrimRight(before, " \t\f")

		c := model.Comment{Text: tree.Text(node)}
		if strings.TrimSpace(before) == "" {
			c.Standalone = true
			c.Prefix = before
		} else {
			c.Prefix = before[len(code):]
		}
		out[int(node.StartPoint().Row)+1-offset] = c
	}
	return out
}
