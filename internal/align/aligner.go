package align

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlignment reports a regenerated line with no counterpart in the
// original. It means the stripping pass produced text it cannot explain.
var ErrAlignment = errors.New("line alignment failed")

// Mapping maps an original line number to the regenerated line it became.
// Both sides are 1-based and count lines after Split.
type Mapping map[int]int

// Aligner matches regenerated lines to original lines.
type Aligner struct {
	// Placeholder is the value written for declaration-only annotations
	// ("x: int" becomes "x = None"). A regenerated line ending in
	// " = <Placeholder>" may also match an original line with no '='.
	Placeholder string
}

// Align walks processed in order, matching each line against the first
// remaining original line it line-matches. The original pointer only moves
// forward.
//
// Removing an annotation that spans lines folds the statement onto its
// first line. When a line leaves brackets open (or ends in a backslash) and
// does not match alone, it is joined with its continuation lines and the
// shortest matching join wins. The first line of the fold is mapped; the
// rest stay unmapped so Merge can keep their comments.
func (a Aligner) Align(original, processed []string) (Mapping, error) {
	m := make(Mapping, len(processed))
	next := 0
	for p, line := range processed {
		cp := Comparable(line)
		declared, isDecl := a.declarationTarget(cp)
		matches := func(co string) bool {
			return lineMatches(cp, co) || (isDecl && !strings.Contains(co, "=") && lineMatches(declared, co))
		}
		found := false
		for o := next; o < len(original) && !found; o++ {
			co := Comparable(original[o])
			if matches(co) {
				m[o+1] = p + 1
				next = o + 1
				found = true
				break
			}
			if co == "" {
				continue
			}
			if end, ok := foldMatch(original, o, matches); ok {
				m[o+1] = p + 1
				next = end + 1
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: regenerated line %d %q has no match in the original", ErrAlignment, p+1, line)
		}
	}
	return m, nil
}

// foldMatch joins original[start] with the lines continuing it and returns
// the index of the last line of the shortest join that matches.
func foldMatch(original []string, start int, matches func(string) bool) (int, bool) {
	joined := Comparable(original[start])
	depth := bracketDepth(joined)
	open := depth > 0 || strings.HasSuffix(joined, `\`)
	for o := start + 1; open && o < len(original); o++ {
		co := Comparable(original[o])
		joined = strings.TrimSpace(strings.TrimSuffix(joined, `\`) + " " + co)
		if matches(joined) {
			return o, true
		}
		depth += bracketDepth(co)
		open = depth > 0 || strings.HasSuffix(co, `\`)
	}
	return 0, false
}

// bracketDepth returns the net count of opening brackets in s, ignoring
// brackets inside string literals.
func bracketDepth(s string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(' || ch == '[' || ch == '{':
			depth++
		case ch == ')' || ch == ']' || ch == '}':
			depth--
		}
	}
	return depth
}

// declarationTarget strips the placeholder assignment from a regenerated
// declaration-only line.
func (a Aligner) declarationTarget(comparable string) (string, bool) {
	if a.Placeholder == "" {
		return "", false
	}
	target, ok := strings.CutSuffix(comparable, " = "+a.Placeholder)
	if !ok || target == "" {
		return "", false
	}
	return target, true
}

// lineMatches compares comparable contents: both blank match, one blank
// does not, otherwise processed must be a subsequence of original.
func lineMatches(processed, original string) bool {
	if processed == "" || original == "" {
		return processed == original
	}
	return isSubsequence(processed, original)
}

func isSubsequence(sub, s string) bool {
	i := 0
	for j := 0; j < len(s) && i < len(sub); j++ {
		if s[j] == sub[i] {
			i++
		}
	}
	return i == len(sub)
}
