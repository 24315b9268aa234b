package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	sentinelStart = "<!-- hintgraph:start -->"
	sentinelEnd   = "<!-- hintgraph:end -->"
)

// usageExample is one command line shown in the generated section.
type usageExample struct {
	args string
	note string
}

var usageExamples = []usageExample{
	{"graph", "current directory"},
	{"graph /path/to/repo", "explicit path"},
	{"graph -n 20", "top 20 functions (large repos)"},
	{"graph --symbol total", "one function and its neighbours"},
	{"graph --file billing/", "functions defined under a path"},
	{"graph --cache .hintgraph-cache", "cache output (fast on repeat runs)"},
	{"walk", "functions bottom-up, leaves first"},
	{"walk --through-placeholders", "let the walk pass unresolved callees"},
	{"unreachable", "functions nothing calls"},
	{"strip", "diff of annotation removal"},
	{"strip --tables hints.yaml", "save the removed annotations"},
}

// initCmd writes (or updates) a hintgraph usage section in a CLAUDE.md file.
func (c *cli) initCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "init [path-to-CLAUDE.md]",
		Short: "Write a hintgraph usage section to CLAUDE.md",
		Long: `Write a hintgraph usage section to a CLAUDE.md file. The section is wrapped
in sentinel comments and replaced in place on later runs; a block left without
its end marker is replaced up to the end of the file, and duplicate blocks are
removed. Creates the file if it does not exist.

path-to-CLAUDE.md defaults to ./CLAUDE.md.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			section := generateSection()
			if dryRun && len(args) == 0 {
				_, _ = fmt.Fprintln(c.stdout, section)
				return nil
			}

			path := "CLAUDE.md"
			if len(args) > 0 {
				path = args[0]
			}
			existing, err := os.ReadFile(path)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			updated := applySection(string(existing), section)

			if dryRun {
				_, _ = fmt.Fprint(c.stdout, updated)
				return nil
			}
			if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			_, _ = fmt.Fprintf(c.stderr, "wrote hintgraph section to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

// generateSection returns the sentinel-wrapped hintgraph usage block.
func generateSection() string {
	var b strings.Builder
	b.WriteString(sentinelStart + "\n")
	b.WriteString(`## hintgraph: Python call graph

Run ` + "`hintgraph graph`" + ` via the Bash tool before changing unfamiliar Python
code. It lists every function with its callers and callees, ranked by
PageRank, so you can see what a change affects without grepping.

**Availability:** Check with ` + "`hintgraph version`" + ` first; skip gracefully if
not found.

**Run it:**
` + "```bash\n")
	for _, ex := range usageExamples {
		_, _ = fmt.Fprintf(&b, "%-45s# %s\n", "hintgraph "+ex.args, ex.note)
	}
	b.WriteString("```" + `

**Caching:** Use ` + "`--cache <file>`" + ` to avoid re-parsing on every call. Add the
cache file to ` + "`.gitignore`" + `. A conventional path is ` + "`.hintgraph-cache`" + `.

**All flags:** ` + "`hintgraph --help`" + `

**How to use the output:**

1. **Check ` + "`calls`" + ` before editing a function.** Every caller listed there
   may need updating when a signature changes.

2. **Work bottom-up.** ` + "`walk`" + ` lists leaves first, so each function comes
   after the helpers it relies on.

3. **Treat ` + "`unreachable`" + ` as candidates, not verdicts.** Entry points,
   callbacks and dynamically dispatched methods have no static callers.

4. **Review ` + "`strip`" + ` as a diff before ` + "`--write`" + `.** Comments and blank
   lines are kept; declarations without a value become ` + "`= None`" + `.
`)
	b.WriteString(sentinelEnd)
	return b.String()
}

// applySection puts section into content. The first sentinel block is
// replaced; an unterminated block runs to the end of content. Later blocks
// are removed. Without a block the section is appended after one blank line.
func applySection(content, section string) string {
	before, rest, found := strings.Cut(content, sentinelStart)
	if !found {
		content = strings.TrimRight(content, "\n")
		if content == "" {
			return section + "\n"
		}
		return content + "\n\n" + section + "\n"
	}
	after := blockTail(rest)
	for {
		head, stale, ok := strings.Cut(after, sentinelStart)
		if !ok {
			break
		}
		after = strings.TrimRight(head, "\n") + blockTail(stale)
	}
	return before + section + after
}

// blockTail returns what follows the end sentinel in rest, or a single
// newline when the block is unterminated.
func blockTail(rest string) string {
	if _, tail, ok := strings.Cut(rest, sentinelEnd); ok {
		return tail
	}
	return "\n"
}
