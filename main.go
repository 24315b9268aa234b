// hintgraph builds call graphs of Python projects and strips their type
// annotations without disturbing comments or layout.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phobologic/hintgraph/internal/config"
	"github.com/phobologic/hintgraph/internal/discover"
	"github.com/phobologic/hintgraph/internal/graph"
	"github.com/phobologic/hintgraph/internal/model"
)

var version = "dev"

// logLevel is shared by the process-wide logger so --verbose can lower it.
var logLevel = new(slog.LevelVar)

func main() {
	logLevel.Set(slog.LevelWarn)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries the state shared by every subcommand of one invocation.
type cli struct {
	stdout, stderr io.Writer
	configPath     string
	verbose        bool
}

func run(args []string, stdout, stderr io.Writer) error {
	c := &cli{stdout: stdout, stderr: stderr}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(context.Background())
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hintgraph",
		Short: "Call graphs and annotation stripping for Python projects",
		Long: `hintgraph analyzes a Python project. It builds a function-level call graph
(with PageRank, unreachable functions, recursion cycles and a bottom-up
walk order), and removes type annotations while keeping every comment and
the original layout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				logLevel.Set(slog.LevelDebug)
			}
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default is <root>/"+config.FileName+")")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		c.graphCmd(),
		c.walkCmd(),
		c.unreachableCmd(),
		c.stripCmd(),
		c.exportCmd(),
		c.initCmd(),
		c.versionCmd(),
	)
	return root
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(c.stdout, "hintgraph %s\n", version)
		},
	}
}

// project is a discovered source tree and its configuration.
type project struct {
	root    string
	cfg     *config.Config
	entries []discover.FileEntry
}

// loadProject resolves the root argument, loads configuration and finds the
// Python files to analyze.
func (c *cli) loadProject(args []string) (*project, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	loader := config.NewLoader(root)
	if c.configPath != "" {
		loader.WithFile(c.configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	entries, err := discover.Files(root, cfg.DiscoverOptions())
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no python files found")
	}
	slog.Debug("discovered files", "root", root, "count", len(entries))
	return &project{root: root, cfg: cfg, entries: entries}, nil
}

func (p *project) sources() ([]model.SourceFile, error) {
	return discover.Read(p.root, p.entries)
}

// buildGraph reads and links every project file, warning about the ones
// that could not be analyzed.
func (c *cli) buildGraph(ctx context.Context, p *project) (*graph.CallGraph, error) {
	files, err := p.sources()
	if err != nil {
		return nil, err
	}
	res, err := graph.NewBuilder(p.cfg.GraphOptions(0)).Build(ctx, files)
	if err != nil {
		return nil, err
	}
	for _, f := range res.Failures {
		_, _ = fmt.Fprintf(c.stderr, "Warning: %v\n", f)
	}
	if len(res.Failures) == len(files) {
		return nil, fmt.Errorf("no files could be parsed")
	}
	return res.Graph, nil
}
