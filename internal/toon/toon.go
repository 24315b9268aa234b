// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/phobologic/hintgraph/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a call graph Report into TOON format.
func Encode(r *model.Report) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("repo: %s", encodeValue(r.RepoName)))
	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(r.Root)))

	var fileRows [][]string
	for i := range r.Files {
		fi := &r.Files[i]
		fileRows = append(fileRows, []string{
			fi.Path,
			strconv.Itoa(len(fi.Functions)),
			fmt.Sprintf("%.4f", fi.Rank),
		})
	}
	parts = append(parts, formatTabular("files", []string{"path", "functions", "rank"}, fileRows))

	var fnRows [][]string
	for i := range r.Functions {
		fn := &r.Functions[i]
		fnRows = append(fnRows, []string{
			fn.Name,
			fn.File,
			fmt.Sprintf("%d-%d", fn.Line, fn.EndLine),
			fmt.Sprintf("%.4f", fn.Rank),
			strconv.FormatBool(fn.Reachable),
		})
	}
	parts = append(parts, formatTabular("functions", []string{"name", "file", "lines", "rank", "reachable"}, fnRows))

	var callRows [][]string
	for i := range r.Functions {
		fn := &r.Functions[i]
		for _, callee := range fn.Calls {
			callRows = append(callRows, []string{fn.Name, callee})
		}
	}
	parts = append(parts, formatTabular("calls", []string{"caller", "callee"}, callRows))

	parts = append(parts, formatList("unreachable", r.Unreachable))

	if len(r.Cycles) > 0 {
		var cycleRows [][]string
		for _, c := range r.Cycles {
			cycleRows = append(cycleRows, []string{strconv.Itoa(len(c)), strings.Join(c, " ")})
		}
		parts = append(parts, formatTabular("cycles", []string{"size", "members"}, cycleRows))
	}

	if len(r.WalkOrder) > 0 {
		parts = append(parts, formatList("walk", r.WalkOrder))
	}

	return strings.Join(parts, "\n")
}

// EncodeAnnotations converts annotation tables into TOON format, one
// table per kind with rows sorted by name.
func EncodeAnnotations(a *model.Annotations) string {
	tables := []struct {
		name    string
		entries map[string]string
	}{
		{"functions", a.Functions},
		{"parameters", a.Parameters},
		{"variables", a.Variables},
	}
	parts := make([]string, 0, len(tables))
	for _, t := range tables {
		keys := make([]string, 0, len(t.entries))
		for k := range t.entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, t.entries[k]})
		}
		parts = append(parts, formatTabular(t.name, []string{"name", "type"}, rows))
	}
	return strings.Join(parts, "\n")
}

// formatList renders a single-column table.
func formatList(name string, values []string) string {
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		rows = append(rows, []string{v})
	}
	return formatTabular(name, []string{"name"}, rows)
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
