// Package ranking narrows a call graph report to the functions of interest.
package ranking

import (
	"strings"

	"github.com/phobologic/hintgraph/internal/model"
)

// SelectFunctions returns a new Report with only the top-ranked functions.
// Functions must already be sorted by rank, as graph.Report produces them.
// If maxFunctions is <= 0 or >= len(functions), the report is returned as is.
func SelectFunctions(r *model.Report, maxFunctions int) *model.Report {
	if maxFunctions <= 0 || maxFunctions >= len(r.Functions) {
		return r
	}

	keep := make(map[string]struct{}, maxFunctions)
	for i := range r.Functions[:maxFunctions] {
		keep[r.Functions[i].Name] = struct{}{}
	}
	return restrict(r, keep)
}

// FilterBySymbol returns a new Report containing the functions whose
// qualified name contains substr (case-insensitive) together with their
// direct callers and callees.
func FilterBySymbol(r *model.Report, substr string) *model.Report {
	lower := strings.ToLower(substr)

	matched := make(map[string]struct{})
	for i := range r.Functions {
		if strings.Contains(strings.ToLower(r.Functions[i].Name), lower) {
			matched[r.Functions[i].Name] = struct{}{}
		}
	}

	keep := make(map[string]struct{}, len(matched))
	for i := range r.Functions {
		fn := &r.Functions[i]
		if _, ok := matched[fn.Name]; !ok {
			continue
		}
		keep[fn.Name] = struct{}{}
		for _, c := range fn.Calls {
			keep[c] = struct{}{}
		}
		for _, c := range fn.CalledBy {
			keep[c] = struct{}{}
		}
	}
	return restrict(r, keep)
}

// FilterByFile returns a new Report containing only the functions defined
// in files whose path contains substr (case-insensitive).
func FilterByFile(r *model.Report, substr string) *model.Report {
	lower := strings.ToLower(substr)

	keep := make(map[string]struct{})
	for i := range r.Functions {
		if strings.Contains(strings.ToLower(r.Functions[i].File), lower) {
			keep[r.Functions[i].Name] = struct{}{}
		}
	}
	return restrict(r, keep)
}

// restrict copies r keeping only the defined functions in keep. Calls and
// callers still name functions outside the selection, so the edges of a
// kept function stay complete. Cycles survive when any member is kept.
func restrict(r *model.Report, keep map[string]struct{}) *model.Report {
	kept := func(name string) bool {
		_, ok := keep[name]
		return ok
	}

	out := &model.Report{RepoName: r.RepoName, Root: r.Root}

	for i := range r.Functions {
		if kept(r.Functions[i].Name) {
			out.Functions = append(out.Functions, r.Functions[i])
		}
	}

	for i := range r.Files {
		fi := r.Files[i]
		var fns []string
		for _, name := range fi.Functions {
			if kept(name) {
				fns = append(fns, name)
			}
		}
		if len(fns) == 0 {
			continue
		}
		fi.Functions = fns
		out.Files = append(out.Files, fi)
	}

	out.Unreachable = filterNames(r.Unreachable, kept)
	out.WalkOrder = filterNames(r.WalkOrder, kept)

	for _, cycle := range r.Cycles {
		for _, name := range cycle {
			if kept(name) {
				out.Cycles = append(out.Cycles, cycle)
				break
			}
		}
	}
	return out
}

func filterNames(names []string, kept func(string) bool) []string {
	var out []string
	for _, n := range names {
		if kept(n) {
			out = append(out, n)
		}
	}
	return out
}
