package ranking

import (
	"slices"
	"testing"

	"github.com/phobologic/hintgraph/internal/model"
)

func makeReport() *model.Report {
	return &model.Report{
		RepoName: "test",
		Root:     "test",
		Files: []model.FileInfo{
			{Path: "shop/cart.py", Functions: []string{"cart.Cart.add_item", "cart.Cart.total"}, Rank: 0.6},
			{Path: "shop/price.py", Functions: []string{"price.format_price"}, Rank: 0.3},
			{Path: "cli.py", Functions: []string{"cli.main"}, Rank: 0.1},
		},
		Functions: []model.FunctionInfo{
			{Name: "price.format_price", File: "shop/price.py", CalledBy: []string{"cart.Cart.total"}, Rank: 0.4},
			{Name: "cart.Cart.total", File: "shop/cart.py", Calls: []string{"price.format_price"}, CalledBy: []string{"cart.Cart.add_item"}, Rank: 0.3},
			{Name: "cart.Cart.add_item", File: "shop/cart.py", Calls: []string{"cart.Cart.total"}, CalledBy: []string{"cli.main"}, Rank: 0.2},
			{Name: "cli.main", File: "cli.py", Calls: []string{"cart.Cart.add_item"}, Rank: 0.1},
		},
		Unreachable: []string{"cli.main"},
		Cycles:      [][]string{{"cli.main"}},
		WalkOrder:   []string{"price.format_price", "cart.Cart.total", "cart.Cart.add_item", "cli.main"},
	}
}

func names(r *model.Report) []string {
	var out []string
	for i := range r.Functions {
		out = append(out, r.Functions[i].Name)
	}
	return out
}

func TestSelectFunctionsAll(t *testing.T) {
	t.Parallel()

	r := makeReport()
	for _, n := range []int{0, 4, 10} {
		if got := SelectFunctions(r, n); got != r {
			t.Errorf("SelectFunctions(r, %d) should return the original", n)
		}
	}
}

func TestSelectFunctionsSubset(t *testing.T) {
	t.Parallel()

	got := SelectFunctions(makeReport(), 2)

	want := []string{"price.format_price", "cart.Cart.total"}
	if !slices.Equal(names(got), want) {
		t.Fatalf("functions = %v, want %v", names(got), want)
	}
	if len(got.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(got.Files))
	}
	if !slices.Equal(got.Files[0].Functions, []string{"cart.Cart.total"}) {
		t.Errorf("cart.py functions = %v", got.Files[0].Functions)
	}
	if !slices.Equal(got.WalkOrder, want) {
		t.Errorf("walk order = %v, want %v", got.WalkOrder, want)
	}
	if len(got.Unreachable) != 0 || len(got.Cycles) != 0 {
		t.Errorf("cli.main should be dropped, got unreachable=%v cycles=%v", got.Unreachable, got.Cycles)
	}
}

func TestFilterBySymbol(t *testing.T) {
	t.Parallel()

	got := FilterBySymbol(makeReport(), "TOTAL")

	want := []string{"price.format_price", "cart.Cart.total", "cart.Cart.add_item"}
	if !slices.Equal(names(got), want) {
		t.Errorf("functions = %v, want %v", names(got), want)
	}
	for _, fi := range got.Files {
		if fi.Path == "cli.py" {
			t.Error("cli.py defines neither the match nor a neighbour")
		}
	}
}

func TestFilterBySymbolNoMatch(t *testing.T) {
	t.Parallel()

	got := FilterBySymbol(makeReport(), "nothing")
	if len(got.Functions) != 0 || len(got.Files) != 0 {
		t.Errorf("expected empty report, got %d functions, %d files", len(got.Functions), len(got.Files))
	}
	if got.RepoName != "test" {
		t.Errorf("repo name = %q", got.RepoName)
	}
}

func TestFilterByFile(t *testing.T) {
	t.Parallel()

	got := FilterByFile(makeReport(), "SHOP/")

	if len(got.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(got.Files))
	}
	if slices.Contains(names(got), "cli.main") {
		t.Error("cli.main should be filtered out")
	}
	// Edges of kept functions still name functions in other files.
	for _, fn := range got.Functions {
		if fn.Name == "cart.Cart.add_item" && !slices.Equal(fn.CalledBy, []string{"cli.main"}) {
			t.Errorf("add_item callers = %v", fn.CalledBy)
		}
	}
}
