package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/hintgraph/internal/model"
)

func TestRankFavorsCallees(t *testing.T) {
	t.Parallel()

	g := New()
	for _, name := range []string{"m.a", "m.b", "m.core"} {
		g.Define(Definition{QualifiedName: name, Name: name[2:], Module: "m", File: "m.py"})
	}
	require.NoError(t, g.AddEdge("m.a", "m.core"))
	require.NoError(t, g.AddEdge("m.b", "m.core"))

	ranks := g.Rank()
	require.Len(t, ranks, 3)
	assert.Greater(t, ranks["m.core"], ranks["m.a"])
	assert.InDelta(t, ranks["m.a"], ranks["m.b"], 1e-9)

	var total float64
	for _, r := range ranks {
		total += r
	}
	assert.InDelta(t, 1.0, total, 1e-6)

	files := g.FileRanks(ranks)
	assert.InDelta(t, 1.0, files["m.py"], 1e-6)
}

func TestRankEmpty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, New().Rank())
}

func TestCycles(t *testing.T) {
	t.Parallel()

	g := New()
	for _, name := range []string{"m.even", "m.odd", "m.fact", "m.main"} {
		g.Define(Definition{QualifiedName: name, Name: name[2:], Module: "m", File: "m.py"})
	}
	require.NoError(t, g.AddEdge("m.even", "m.odd"))
	require.NoError(t, g.AddEdge("m.odd", "m.even"))
	require.NoError(t, g.AddEdge("m.fact", "m.fact"))
	require.NoError(t, g.AddEdge("m.main", "m.even"))
	require.NoError(t, g.AddEdge("m.main", "m.fact"))

	cycles, err := g.Cycles()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"m.even", "m.odd"}, {"m.fact"}}, cycles)
}

func TestReport(t *testing.T) {
	t.Parallel()

	res, err := NewBuilder(Options{}).Build(context.Background(), []model.SourceFile{
		{Path: "ops.py", Source: []byte(squareSource)},
	})
	require.NoError(t, err)

	rep, err := res.Graph.Report("demo", "/src/demo", WalkOptions{})
	require.NoError(t, err)

	assert.Equal(t, "demo", rep.RepoName)
	require.Len(t, rep.Files, 1)
	assert.Equal(t, []string{"<module>.calculate_square", "<module>.add_one"}, rep.Files[0].Functions)

	require.Len(t, rep.Functions, 2)
	assert.Equal(t, "<module>.calculate_square", rep.Functions[0].Name, "callee ranks first")
	assert.True(t, rep.Functions[0].Reachable)
	assert.Equal(t, 1, rep.Functions[0].Line)
	assert.Equal(t, []string{"<module>.add_one"}, rep.Functions[0].CalledBy)

	assert.Equal(t, []string{"<module>.add_one"}, rep.Unreachable)
	assert.Empty(t, rep.Cycles)
	assert.Equal(t, []string{"<module>.calculate_square", "<module>.add_one"}, rep.WalkOrder)
}
