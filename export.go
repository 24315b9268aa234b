package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/phobologic/hintgraph/internal/export"
)

type neo4jFlags struct {
	uri      string
	user     string
	password string
	database string
	clean    bool
}

func (c *cli) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the call graph to an external store",
	}
	cmd.AddCommand(c.exportNeo4jCmd())
	return cmd
}

func (c *cli) exportNeo4jCmd() *cobra.Command {
	var f neo4jFlags
	cmd := &cobra.Command{
		Use:   "neo4j [root]",
		Short: "Load the call graph into Neo4j",
		Long: `Load the call graph into Neo4j as :PyFunction nodes joined by :CALLS
relationships, with :DEFINED_IN links to :PyFile nodes. Connection settings
come from the neo4j section of the config; flags override them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.loadProject(args)
			if err != nil {
				return err
			}
			settings := export.Neo4jSettings{
				URI:      p.cfg.Neo4j.URI,
				User:     p.cfg.Neo4j.User,
				Password: p.cfg.Neo4j.Password,
				Database: p.cfg.Neo4j.Database,
			}
			flags := cmd.Flags()
			if flags.Changed("uri") {
				settings.URI = f.uri
			}
			if flags.Changed("user") {
				settings.User = f.user
			}
			if flags.Changed("password") {
				settings.Password = f.password
			}
			if flags.Changed("database") {
				settings.Database = f.database
			}

			ctx := cmd.Context()
			g, err := c.buildGraph(ctx, p)
			if err != nil {
				return err
			}

			loader, err := export.NewNeo4jLoader(ctx, settings)
			if err != nil {
				return err
			}
			defer func() {
				if err := loader.Close(ctx); err != nil {
					slog.Warn("closing neo4j driver", "error", err)
				}
			}()

			if err := loader.CreateIndexes(ctx); err != nil {
				return err
			}
			if f.clean {
				if err := loader.Clean(ctx); err != nil {
					return err
				}
			}
			if err := loader.Load(ctx, g); err != nil {
				return fmt.Errorf("loading call graph: %w", err)
			}
			_, _ = fmt.Fprintf(c.stderr, "exported %d functions to %s\n", g.Len(), settings.URI)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.uri, "uri", "", "Neo4j bolt URI")
	cmd.Flags().StringVar(&f.user, "user", "", "Neo4j username")
	cmd.Flags().StringVar(&f.password, "password", "", "Neo4j password")
	cmd.Flags().StringVar(&f.database, "database", "", "Neo4j database")
	cmd.Flags().BoolVar(&f.clean, "clean", false, "remove previously exported data first")
	return cmd
}
