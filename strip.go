package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/hintgraph/internal/model"
	"github.com/phobologic/hintgraph/internal/strip"
	"github.com/phobologic/hintgraph/internal/toon"
)

type stripFlags struct {
	write      bool
	tablesPath string
	showTables bool
	progress   bool
	workers    int
}

func (c *cli) stripCmd() *cobra.Command {
	var f stripFlags
	cmd := &cobra.Command{
		Use:   "strip [root]",
		Short: "Remove type annotations, keeping comments and layout",
		Long: `Remove parameter, return and variable annotations from every non-test
Python file under root. Comments and blank lines stay where they were.
Declarations without a value become assignments of the placeholder.

By default a unified diff is printed; --write rewrites the files in place.
The removed annotations can be saved with --tables.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStrip(cmd, args, f)
		},
	}
	cmd.Flags().BoolVarP(&f.write, "write", "w", false, "overwrite files instead of printing a diff")
	cmd.Flags().StringVar(&f.tablesPath, "tables", "", "write the removed annotations to this YAML file")
	cmd.Flags().BoolVar(&f.showTables, "show-tables", false, "print the removed annotations as TOON after the diffs")
	cmd.Flags().BoolVar(&f.progress, "progress", false, "show a progress bar")
	cmd.Flags().IntVarP(&f.workers, "workers", "j", 0, "files processed in parallel (default GOMAXPROCS)")
	return cmd
}

func (c *cli) runStrip(cmd *cobra.Command, args []string, f stripFlags) error {
	p, err := c.loadProject(args)
	if err != nil {
		return err
	}
	files, err := p.sources()
	if err != nil {
		return err
	}

	var tick func()
	if f.progress {
		bar := progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(c.stderr),
			progressbar.OptionSetDescription("Stripping files"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprintln(c.stderr)
			}),
		)
		tick = func() { _ = bar.Add(1) }
	}

	results, failed, err := strip.Files(cmd.Context(), files, p.cfg.StripOptions(), f.workers, tick)
	if err != nil {
		return err
	}
	for _, fe := range failed {
		_, _ = fmt.Fprintf(c.stderr, "Warning: %v\n", fe)
	}

	changed := 0
	for _, res := range results {
		if res == nil || !res.Changed() {
			continue
		}
		changed++
		if f.write {
			if err := writeFile(filepath.Join(p.root, res.Path), res.Text); err != nil {
				return err
			}
			continue
		}
		diff, err := unifiedDiff(res)
		if err != nil {
			return fmt.Errorf("diff %s: %w", res.Path, err)
		}
		_, _ = fmt.Fprint(c.stdout, diff)
	}

	tables := collectTables(results)
	if f.tablesPath != "" {
		if err := writeTables(f.tablesPath, tables); err != nil {
			return err
		}
	}
	if f.showTables {
		merged := model.NewAnnotations()
		for _, path := range sortedKeys(tables) {
			merged.Merge(tables[path])
		}
		_, _ = fmt.Fprintln(c.stdout, toon.EncodeAnnotations(merged))
	}

	stats := strip.Stats(results)
	verb := "would change"
	if f.write {
		verb = "changed"
	}
	_, _ = fmt.Fprintf(c.stderr, "%s %d of %d files; removed %d function, %d parameter, %d variable annotations\n",
		verb, changed, len(files), stats.Functions, stats.Parameters, stats.Variables)
	return nil
}

// unifiedDiff renders the change to one file with three lines of context.
func unifiedDiff(res *strip.Result) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(res.Original),
		B:        difflib.SplitLines(res.Text),
		FromFile: "a/" + filepath.ToSlash(res.Path),
		ToFile:   "b/" + filepath.ToSlash(res.Path),
		Context:  3,
	})
}

// writeFile replaces path's contents, keeping its permissions.
func writeFile(path, text string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(text), mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// collectTables keys each file's non-empty annotation tables by path.
func collectTables(results []*strip.Result) map[string]*model.Annotations {
	tables := make(map[string]*model.Annotations)
	for _, res := range results {
		if res == nil || res.Annotations == nil {
			continue
		}
		if res.Annotations.Count() == (model.AnnotationStats{}) {
			continue
		}
		tables[res.Path] = res.Annotations
	}
	return tables
}

func writeTables(path string, tables map[string]*model.Annotations) error {
	data, err := yaml.Marshal(tables)
	if err != nil {
		return fmt.Errorf("encoding annotation tables: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func sortedKeys(m map[string]*model.Annotations) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
