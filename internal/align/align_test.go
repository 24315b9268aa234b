package align

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/hintgraph/internal/model"
	"github.com/phobologic/hintgraph/internal/parse"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	lines, offset := Split("\n  \nx = 1\r\n\ny = 2\n\n")
	assert.Equal(t, []string{"x = 1", "", "y = 2"}, lines)
	assert.Equal(t, 2, offset)

	lines, _ = Split("")
	assert.Empty(t, lines)
}

func TestComparable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want string
	}{
		{"    x = 1  # note", "x = 1"},
		{"# only a comment", ""},
		{`s = "# not a comment"  # real`, `s = "# not a comment"`},
		{`s = 'it\'s # still string'`, `s = 'it\'s # still string'`},
		{`s = "a" + '#' # c`, `s = "a" + '#'`},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Comparable(tt.line), "line %q", tt.line)
	}
}

func TestLineMatches(t *testing.T) {
	t.Parallel()

	assert.True(t, lineMatches("", ""))
	assert.False(t, lineMatches("x", ""))
	assert.False(t, lineMatches("", "x"))
	assert.True(t, lineMatches("def f(a):", "def f(a: int) -> int:"))
	assert.False(t, lineMatches("def g(a):", "def f(a: int) -> int:"))
	assert.False(t, lineMatches("x = 1", "x: int"))
}

func TestAlign(t *testing.T) {
	t.Parallel()

	original := []string{
		"def f(a: int) -> int:",
		"    # explain",
		"    b: int",
		"",
		"    return a",
	}
	processed := []string{
		"def f(a):",
		"    b = None",
		"    return a",
	}
	m, err := Aligner{Placeholder: "None"}.Align(original, processed)
	require.NoError(t, err)
	assert.Equal(t, Mapping{1: 1, 3: 2, 5: 3}, m)

	_, err = Aligner{}.Align(original, processed)
	require.ErrorIs(t, err, ErrAlignment, "without a placeholder the declaration cannot match")
	assert.Contains(t, err.Error(), "b = None")
}

func TestAlignPointerOnlyMovesForward(t *testing.T) {
	t.Parallel()

	original := []string{"b = 2", "a = 1"}
	processed := []string{"a = 1", "b = 2"}
	_, err := Aligner{}.Align(original, processed)
	require.ErrorIs(t, err, ErrAlignment)
}

func TestAlignFoldsContinuationLines(t *testing.T) {
	t.Parallel()

	original := []string{
		"def f(a: Dict[",
		"        str, int]) -> None:  # mapping",
		"    return a",
		"x: Tuple[",
		"    # pair",
		"    int, int",
		"]",
		"y = 1",
	}
	processed := []string{
		"def f(a):",
		"    return a",
		"x = None",
		"y = 1",
	}
	m, err := Aligner{Placeholder: "None"}.Align(original, processed)
	require.NoError(t, err)
	assert.Equal(t, Mapping{1: 1, 3: 2, 4: 3, 8: 4}, m)
}

func TestAlignDoesNotFoldClosedLines(t *testing.T) {
	t.Parallel()

	original := []string{"a = 1", "b = 2"}
	_, err := Aligner{}.Align(original, []string{"a = 12"})
	require.ErrorIs(t, err, ErrAlignment)
}

func TestBracketDepth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, bracketDepth("x: Dict["))
	assert.Equal(t, -1, bracketDepth("]) -> None:"))
	assert.Equal(t, 0, bracketDepth(`s = "(["`))
	assert.Equal(t, 2, bracketDepth(`f(g('\')',`))
}

func TestExtractComments(t *testing.T) {
	t.Parallel()

	src := "\n\n# header\nx = 1  # inline\n    # indented\n"
	tree, err := parse.ParseSource(context.Background(), []byte(src))
	require.NoError(t, err)
	defer tree.Close()

	_, offset := Split(src)
	got := ExtractComments(tree, offset)
	assert.Equal(t, Comments{
		1: {Text: "# header", Prefix: "", Standalone: true},
		2: {Text: "# inline", Prefix: "  ", Standalone: false},
		3: {Text: "# indented", Prefix: "    ", Standalone: true},
	}, got)
}

func TestMerge(t *testing.T) {
	t.Parallel()

	original := []string{
		"def f(a: int):  # entry",
		"",
		"    # body",
		"    return a",
	}
	processed := []string{"def f(a):", "    return a"}
	m := Mapping{1: 1, 4: 2}
	comments := Comments{
		1: model.Comment{Text: "# entry", Prefix: "  "},
		3: model.Comment{Text: "# body", Prefix: "    ", Standalone: true},
	}

	assert.Equal(t, []string{
		"def f(a):  # entry",
		"",
		"    # body",
		"    return a",
	}, Merge(original, processed, m, comments, Preserve))

	assert.Equal(t, []string{
		"def f(a):  # entry",
		"    # body",
		"    return a",
	}, Merge(original, processed, m, comments, Compact))
}

func TestMergeKeepsCommentOfFoldedLine(t *testing.T) {
	t.Parallel()

	original := []string{"x = f(", "    1,  # one", ")"}
	processed := []string{"x = f(1)"}
	m := Mapping{1: 1}
	comments := Comments{2: {Text: "# one", Prefix: "  "}}

	assert.Equal(t, []string{"x = f(1)", "    # one"}, Merge(original, processed, m, comments, Preserve))
}
