package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/hintgraph/internal/discover"
	"github.com/phobologic/hintgraph/internal/graph"
	"github.com/phobologic/hintgraph/internal/ranking"
	"github.com/phobologic/hintgraph/internal/toon"
)

type graphFlags struct {
	maxFunctions int
	symbol       string
	file         string
	cachePath    string
	seedAll      bool
}

func (c *cli) graphCmd() *cobra.Command {
	var f graphFlags
	cmd := &cobra.Command{
		Use:   "graph [root]",
		Short: "Print the call graph report in TOON format",
		Long: `Build the call graph of every non-test Python file under root and print it
as TOON: files and functions ranked by PageRank, call edges, unreachable
functions, recursion cycles and the bottom-up walk order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, args, f)
		},
	}
	cmd.Flags().IntVarP(&f.maxFunctions, "max-functions", "n", 0, "maximum number of functions to include")
	cmd.Flags().StringVarP(&f.symbol, "symbol", "s", "", "only functions whose name contains this, plus their callers and callees")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "only functions defined in files whose path contains this")
	cmd.Flags().StringVar(&f.cachePath, "cache", "", "cache file path (ignored when filtering)")
	cmd.Flags().BoolVar(&f.seedAll, "through-placeholders", false, "let the walk pass through unresolved callees")
	return cmd
}

func (c *cli) runGraph(cmd *cobra.Command, args []string, f graphFlags) error {
	p, err := c.loadProject(args)
	if err != nil {
		return err
	}

	filtered := f.symbol != "" || f.file != ""
	useCache := f.cachePath != "" && !filtered
	if useCache && cacheIsFresh(f.cachePath, p.root, p.entries) {
		if data, err := os.ReadFile(f.cachePath); err == nil {
			_, _ = c.stdout.Write(data)
			return nil
		}
	}

	g, err := c.buildGraph(cmd.Context(), p)
	if err != nil {
		return err
	}
	name := filepath.Base(p.root)
	rep, err := g.Report(name, name, graph.WalkOptions{SeedPlaceholders: f.seedAll})
	if err != nil {
		return err
	}

	if f.symbol != "" {
		rep = ranking.FilterBySymbol(rep, f.symbol)
	}
	if f.file != "" {
		rep = ranking.FilterByFile(rep, f.file)
	}
	if f.maxFunctions > 0 {
		rep = ranking.SelectFunctions(rep, f.maxFunctions)
	}

	output := toon.Encode(rep) + "\n"
	if useCache {
		_ = os.WriteFile(f.cachePath, []byte(output), 0o644)
	}
	_, _ = fmt.Fprint(c.stdout, output)
	return nil
}

func (c *cli) walkCmd() *cobra.Command {
	var seedAll bool
	cmd := &cobra.Command{
		Use:   "walk [root]",
		Short: "Print defined functions bottom-up, leaves first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.loadProject(args)
			if err != nil {
				return err
			}
			g, err := c.buildGraph(cmd.Context(), p)
			if err != nil {
				return err
			}
			w := g.WalkerWith(graph.WalkOptions{SeedPlaceholders: seedAll})
			for {
				n, ok := w.Next()
				if !ok {
					break
				}
				_, _ = fmt.Fprintf(c.stdout, "%s\t%s:%d\n", n.QualifiedName, n.File, n.Lines.Start)
			}
			if rest := w.Unvisited(); len(rest) > 0 {
				names := make([]string, len(rest))
				for i, n := range rest {
					names[i] = n.QualifiedName
				}
				_, _ = fmt.Fprintf(c.stderr, "%d functions not reached: %s\n", len(rest), strings.Join(names, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&seedAll, "through-placeholders", false, "also start from unresolved callees so every caller is reached")
	return cmd
}

func (c *cli) unreachableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unreachable [root]",
		Short: "List defined functions that nothing calls",
		Long: `List defined functions with no callers, excluding test functions and
methods of test classes. Entry points such as main show up here too.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.loadProject(args)
			if err != nil {
				return err
			}
			g, err := c.buildGraph(cmd.Context(), p)
			if err != nil {
				return err
			}
			for _, n := range g.Unreachable() {
				_, _ = fmt.Fprintf(c.stdout, "%s\t%s:%d\n", n.QualifiedName, n.File, n.Lines.Start)
			}
			return nil
		},
	}
}

func cacheIsFresh(cachePath, root string, files []discover.FileEntry) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}
