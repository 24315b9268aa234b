// Package namespace tracks the module/class/function nesting of a tree walk
// and the per-file import aliases used by call resolution.
package namespace

import (
	"path/filepath"
	"strings"

	"github.com/phobologic/hintgraph/internal/parse"
)

// DefaultModule names a module that carries no leading docstring.
const DefaultModule = "<module>"

// ModuleSource selects how a file's module segment is derived.
type ModuleSource string

const (
	// FromDocstring uses the module's leading string literal.
	FromDocstring ModuleSource = "docstring"
	// FromPath uses the file name without its extension.
	FromPath ModuleSource = "path"
)

// Kind classifies a namespace segment.
type Kind int

const (
	Module Kind = iota
	Class
	Function
)

func (k Kind) String() string {
	switch k {
	case Module:
		return "module"
	case Class:
		return "class"
	case Function:
		return "function"
	}
	return "unknown"
}

// Segment is one level of nesting.
type Segment struct {
	Name string
	Kind Kind
}

// Tracker is the nesting stack of one walk. The zero value is unusable;
// construct with NewTracker.
type Tracker struct {
	segments []Segment
}

// NewTracker returns a stack seeded with the module segment.
func NewTracker(module string) *Tracker {
	return &Tracker{segments: []Segment{{Name: module, Kind: Module}}}
}

// Push enters a class or function.
func (t *Tracker) Push(name string, kind Kind) {
	t.segments = append(t.segments, Segment{Name: name, Kind: kind})
}

// Pop leaves the innermost class or function. The module segment is never popped.
func (t *Tracker) Pop() {
	if len(t.segments) > 1 {
		t.segments = t.segments[:len(t.segments)-1]
	}
}

// Depth returns the number of segments, module included.
func (t *Tracker) Depth() int {
	return len(t.segments)
}

// Module returns the module segment.
func (t *Tracker) Module() string {
	return t.segments[0].Name
}

// Qualified dot-joins the stack plus any trailing segments.
func (t *Tracker) Qualified(suffix ...string) string {
	return join(t.segments, suffix)
}

// EnclosingClass returns the nearest class on the stack, or "".
func (t *Tracker) EnclosingClass() string {
	for i := len(t.segments) - 1; i >= 0; i-- {
		if t.segments[i].Kind == Class {
			return t.segments[i].Name
		}
	}
	return ""
}

// WithoutFunction returns the qualified name with the current function
// dropped. Nested functions count as part of the current function, so the
// whole trailing run of function segments goes.
func (t *Tracker) WithoutFunction(suffix ...string) string {
	return join(t.segments[:t.functionStart()], suffix)
}

// WithoutFunctionAndClass drops the current function and then the class
// directly enclosing it.
func (t *Tracker) WithoutFunctionAndClass(suffix ...string) string {
	end := t.functionStart()
	if end > 1 && t.segments[end-1].Kind == Class {
		end--
	}
	return join(t.segments[:end], suffix)
}

func (t *Tracker) functionStart() int {
	end := len(t.segments)
	for end > 1 && t.segments[end-1].Kind == Function {
		end--
	}
	return end
}

func join(segments []Segment, suffix []string) string {
	parts := make([]string, 0, len(segments)+len(suffix))
	for _, s := range segments {
		parts = append(parts, s.Name)
	}
	for _, s := range suffix {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ".")
}

// ModuleName derives the module segment for a parsed file.
func ModuleName(tree *parse.Tree, path string, source ModuleSource) string {
	if source == FromPath && path != "" {
		base := filepath.Base(path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	doc := tree.ModuleDocstring()
	if doc == nil {
		return DefaultModule
	}
	name := strings.Trim(tree.Text(doc), "\"' \t\r\n")
	if name == "" {
		return DefaultModule
	}
	return name
}
