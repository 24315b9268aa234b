// Package align maps the lines of annotation-free regenerated source back onto
// the original source and restores the comments and blank lines the
// regeneration dropped.
package align

import "strings"

// Normalize converts CRLF and lone CR line endings to LF.
func Normalize(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// Split splits text into lines with leading and trailing blank lines
// removed. offset is the number of leading lines dropped, so line i of the
// result (1-based) is line i+offset of the input.
func Split(text string) (lines []string, offset int) {
	all := strings.Split(Normalize(text), "\n")
	start, end := 0, len(all)
	for start < end && isBlank(all[start]) {
		start++
	}
	for end > start && isBlank(all[end-1]) {
		end--
	}
	return all[start:end], start
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Comparable returns line without its comment, trimmed. A '#' inside a
// quoted string does not start a comment.
func Comparable(line string) string {
	var quote rune
	escaped := false
	for i, r := range line {
		switch {
		case escaped:
			escaped = false
		case quote != 0 && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
		case r == '"' || r == '\'':
			quote = r
		case r == '#':
			return strings.TrimSpace(line[:i])
		}
	}
	return strings.TrimSpace(line)
}
