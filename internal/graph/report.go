package graph

import (
	"sort"

	"github.com/phobologic/hintgraph/internal/model"
)

// Report flattens the graph into a serializable report. Files and functions
// are sorted by rank, highest first.
func (g *CallGraph) Report(repoName, root string, walk WalkOptions) (*model.Report, error) {
	ranks := g.Rank()
	fileRanks := g.FileRanks(ranks)

	rep := &model.Report{RepoName: repoName, Root: root}

	for _, path := range g.Files() {
		var fns []string
		for _, qn := range g.files[path] {
			if n := g.nodes[qn]; n != nil && n.File == path {
				fns = append(fns, qn)
			}
		}
		if len(fns) == 0 {
			continue
		}
		rep.Files = append(rep.Files, model.FileInfo{Path: path, Functions: fns, Rank: fileRanks[path]})
	}
	sort.SliceStable(rep.Files, func(i, j int) bool { return rep.Files[i].Rank > rep.Files[j].Rank })

	for _, n := range g.Nodes() {
		if n.CalledOnly {
			continue
		}
		rep.Functions = append(rep.Functions, model.FunctionInfo{
			Name:      n.QualifiedName,
			File:      n.File,
			Line:      n.Lines.Start,
			EndLine:   n.Lines.End,
			Calls:     n.CalleeNames(),
			CalledBy:  n.CallerNames(),
			Rank:      ranks[n.QualifiedName],
			Reachable: len(n.Callers) > 0,
		})
	}
	sort.SliceStable(rep.Functions, func(i, j int) bool {
		if rep.Functions[i].Rank != rep.Functions[j].Rank {
			return rep.Functions[i].Rank > rep.Functions[j].Rank
		}
		return rep.Functions[i].Name < rep.Functions[j].Name
	})

	for _, n := range g.Unreachable() {
		rep.Unreachable = append(rep.Unreachable, n.QualifiedName)
	}

	cycles, err := g.Cycles()
	if err != nil {
		return nil, err
	}
	rep.Cycles = cycles

	for n := range g.Walk(walk) {
		rep.WalkOrder = append(rep.WalkOrder, n.QualifiedName)
	}
	return rep, nil
}
