package align

import "strings"

// BlankLines decides what happens to original blank lines on merge.
type BlankLines string

const (
	// Preserve keeps every blank line of the original.
	Preserve BlankLines = "preserve"
	// Compact drops blank lines outside string literals.
	Compact BlankLines = "compact"
)

// Merge rebuilds the output line by line over the original: mapped lines
// take their regenerated text plus any inline comment, unmapped standalone
// comments are copied from the original, and unmapped blank lines follow
// policy. Other unmapped lines are dropped.
func Merge(original, processed []string, m Mapping, comments Comments, policy BlankLines) []string {
	out := make([]string, 0, len(original))
	for i := 1; i <= len(original); i++ {
		c, hasComment := comments[i]
		if p, ok := m[i]; ok {
			line := processed[p-1]
			if hasComment && !c.Standalone {
				line = strings.TrimRight(line, " \t") + c.Prefix + c.Text
			}
			out = append(out, line)
			continue
		}
		switch {
		case hasComment && c.Standalone:
			out = append(out, strings.TrimRight(original[i-1], " \t\r"))
		case hasComment:
			// The code of this line was folded into another one; keep the
			// comment at the line's indentation.
			orig := original[i-1]
			indent := orig[:len(orig)-len(strings.TrimLeft(orig, " \t"))]
			out = append(out, indent+c.Text)
		case isBlank(original[i-1]) && policy != Compact:
			out = append(out, "")
		}
	}
	return out
}
