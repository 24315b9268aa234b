// Package model defines core data structures for hintgraph.
package model

import "sort"

// UnknownFile is the File value of a node whose definition has not been seen.
const UnknownFile = "unknown"

// SourceFile is one input file: a repo-relative path and its contents.
type SourceFile struct {
	Path   string
	Source []byte
}

// LineRange is the 1-based, inclusive line span of a definition.
type LineRange struct {
	Start int
	End   int
}

// FunctionNode is one function or method symbol in the call graph.
// Callees and Callers hold qualified names; the owning CallGraph resolves them.
type FunctionNode struct {
	QualifiedName string
	Name          string
	Class         string
	Module        string
	File          string
	Lines         *LineRange
	CalledOnly    bool
	Callees       map[string]struct{}
	Callers       map[string]struct{}
}

// NewPlaceholder returns a called-only node for a symbol whose definition
// has not been observed.
func NewPlaceholder(qualified, module, class, name string) *FunctionNode {
	return &FunctionNode{
		QualifiedName: qualified,
		Name:          name,
		Class:         class,
		Module:        module,
		File:          UnknownFile,
		CalledOnly:    true,
		Callees:       make(map[string]struct{}),
		Callers:       make(map[string]struct{}),
	}
}

// Label returns "Class.name" for methods and "name" otherwise.
func (n *FunctionNode) Label() string {
	if n.Class != "" {
		return n.Class + "." + n.Name
	}
	return n.Name
}

// CalleeNames returns the callee qualified names sorted.
func (n *FunctionNode) CalleeNames() []string {
	return sortedSet(n.Callees)
}

// CallerNames returns the caller qualified names sorted.
func (n *FunctionNode) CallerNames() []string {
	return sortedSet(n.Callers)
}

func sortedSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Annotations holds the type annotations removed from one file (or merged
// across a project), keyed by qualified name. Parameter keys are the owning
// function's qualified name followed by the parameter name.
type Annotations struct {
	Functions  map[string]string `yaml:"functions"`
	Parameters map[string]string `yaml:"parameters"`
	Variables  map[string]string `yaml:"variables"`
}

// NewAnnotations returns empty tables.
func NewAnnotations() *Annotations {
	return &Annotations{
		Functions:  make(map[string]string),
		Parameters: make(map[string]string),
		Variables:  make(map[string]string),
	}
}

// Merge copies every entry of other into a. Later entries win.
func (a *Annotations) Merge(other *Annotations) {
	if other == nil {
		return
	}
	for k, v := range other.Functions {
		a.Functions[k] = v
	}
	for k, v := range other.Parameters {
		a.Parameters[k] = v
	}
	for k, v := range other.Variables {
		a.Variables[k] = v
	}
}

// Count returns the number of entries per table.
func (a *Annotations) Count() AnnotationStats {
	return AnnotationStats{
		Functions:  len(a.Functions),
		Parameters: len(a.Parameters),
		Variables:  len(a.Variables),
	}
}

// AnnotationStats counts recorded annotations.
type AnnotationStats struct {
	Functions  int
	Parameters int
	Variables  int
}

// Add accumulates other into s.
func (s *AnnotationStats) Add(other AnnotationStats) {
	s.Functions += other.Functions
	s.Parameters += other.Parameters
	s.Variables += other.Variables
}

// Comment is a comment token found on one original line.
// Prefix is the line's indentation for standalone comments and the
// whitespace between code and comment for inline ones.
type Comment struct {
	Text       string
	Prefix     string
	Standalone bool
}

// FunctionInfo is the report view of a defined function.
type FunctionInfo struct {
	Name      string
	File      string
	Line      int
	EndLine   int
	Calls     []string
	CalledBy  []string
	Rank      float64
	Reachable bool
}

// FileInfo groups a file's functions in declaration order.
type FileInfo struct {
	Path      string
	Functions []string
	Rank      float64
}

// Report is the analyzed call graph, ready for serialization.
type Report struct {
	RepoName    string
	Root        string
	Files       []FileInfo
	Functions   []FunctionInfo
	Unreachable []string
	Cycles      [][]string
	WalkOrder   []string
}
