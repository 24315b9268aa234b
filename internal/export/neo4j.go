// Package export writes the call graph to external stores.
package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/phobologic/hintgraph/internal/graph"
	"github.com/phobologic/hintgraph/internal/model"
)

// DefaultBatchSize is the number of rows sent per UNWIND statement.
const DefaultBatchSize = 500

// Neo4jSettings are the connection parameters for a Neo4jLoader.
type Neo4jSettings struct {
	URI      string
	User     string
	Password string
	Database string
}

// runFunc executes one Cypher statement.
type runFunc func(ctx context.Context, cypher string, params map[string]any) error

// Neo4jLoader loads a call graph into Neo4j using batched UNWIND queries.
// Functions become :PyFunction nodes keyed by qualified name, files become
// :PyFile nodes, and edges become :CALLS relationships.
type Neo4jLoader struct {
	driver    neo4j.DriverWithContext
	run       runFunc
	batchSize int
}

// NewNeo4jLoader connects to Neo4j and verifies connectivity.
func NewNeo4jLoader(ctx context.Context, s Neo4jSettings) (*Neo4jLoader, error) {
	driver, err := neo4j.NewDriverWithContext(s.URI, neo4j.BasicAuth(s.User, s.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connect to %s: %w", s.URI, err)
	}

	var opts []neo4j.ExecuteQueryConfigurationOption
	if s.Database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(s.Database))
	}
	l := &Neo4jLoader{driver: driver, batchSize: DefaultBatchSize}
	l.run = func(ctx context.Context, cypher string, params map[string]any) error {
		_, err := neo4j.ExecuteQuery(ctx, driver, cypher, params, neo4j.EagerResultTransformer, opts...)
		return err
	}
	return l, nil
}

// Close releases the driver.
func (l *Neo4jLoader) Close(ctx context.Context) error {
	if l.driver == nil {
		return nil
	}
	return l.driver.Close(ctx)
}

// Clean removes everything a previous load created.
func (l *Neo4jLoader) Clean(ctx context.Context) error {
	slog.Info("cleaning existing call graph")
	queries := []string{
		"MATCH ()-[r:CALLS]->() DELETE r",
		"MATCH ()-[r:DEFINED_IN]->() DELETE r",
		"MATCH (n:PyFunction) DETACH DELETE n",
		"MATCH (n:PyFile) DETACH DELETE n",
	}
	for _, q := range queries {
		if err := l.run(ctx, q, nil); err != nil {
			return fmt.Errorf("clean: %w", err)
		}
	}
	return nil
}

// CreateIndexes ensures lookups by key are indexed.
func (l *Neo4jLoader) CreateIndexes(ctx context.Context) error {
	slog.Info("creating indexes")
	indexes := []string{
		"CREATE INDEX py_func_qualified IF NOT EXISTS FOR (n:PyFunction) ON (n.qualified_name)",
		"CREATE INDEX py_file_path IF NOT EXISTS FOR (n:PyFile) ON (n.path)",
	}
	for _, q := range indexes {
		if err := l.run(ctx, q, nil); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// Load writes every node and edge of g.
func (l *Neo4jLoader) Load(ctx context.Context, g *graph.CallGraph) error {
	nodes := g.Nodes()
	if err := l.LoadFunctions(ctx, nodes); err != nil {
		return err
	}
	return l.LoadCalls(ctx, CallRows(nodes))
}

// LoadFunctions upserts function nodes and links defined ones to their file.
func (l *Neo4jLoader) LoadFunctions(ctx context.Context, nodes []*model.FunctionNode) error {
	slog.Info("loading functions", "count", len(nodes))
	return l.batched(ctx, FunctionRows(nodes),
		`UNWIND $batch AS row
		 MERGE (n:PyFunction {qualified_name: row.qualified_name})
		 SET n.name = row.name, n.class = row.class, n.module = row.module,
		     n.file = row.file, n.line = row.line, n.end_line = row.end_line,
		     n.called_only = row.called_only
		 WITH n, row
		 WHERE NOT row.called_only
		 MERGE (f:PyFile {path: row.file})
		 MERGE (n)-[:DEFINED_IN]->(f)`)
}

// LoadCalls upserts CALLS relationships.
func (l *Neo4jLoader) LoadCalls(ctx context.Context, rows []map[string]any) error {
	slog.Info("loading call edges", "count", len(rows))
	return l.batched(ctx, rows,
		`UNWIND $batch AS row
		 MERGE (caller:PyFunction {qualified_name: row.caller})
		 MERGE (callee:PyFunction {qualified_name: row.callee})
		 MERGE (caller)-[:CALLS]->(callee)`)
}

func (l *Neo4jLoader) batched(ctx context.Context, rows []map[string]any, cypher string) error {
	for _, batch := range Batches(rows, l.batchSize) {
		if err := l.run(ctx, cypher, map[string]any{"batch": batch}); err != nil {
			return err
		}
	}
	return nil
}

// FunctionRows converts nodes into UNWIND rows.
func FunctionRows(nodes []*model.FunctionNode) []map[string]any {
	rows := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		line, end := 0, 0
		if n.Lines != nil {
			line, end = n.Lines.Start, n.Lines.End
		}
		rows = append(rows, map[string]any{
			"qualified_name": n.QualifiedName,
			"name":           n.Name,
			"class":          n.Class,
			"module":         n.Module,
			"file":           n.File,
			"line":           line,
			"end_line":       end,
			"called_only":    n.CalledOnly,
		})
	}
	return rows
}

// CallRows returns one row per edge, ordered by caller then callee.
func CallRows(nodes []*model.FunctionNode) []map[string]any {
	var rows []map[string]any
	for _, n := range nodes {
		for _, callee := range n.CalleeNames() {
			rows = append(rows, map[string]any{
				"caller": n.QualifiedName,
				"callee": callee,
			})
		}
	}
	return rows
}

// Batches splits rows into chunks of at most size. A non-positive size
// yields a single batch.
func Batches(rows []map[string]any, size int) [][]map[string]any {
	if len(rows) == 0 {
		return nil
	}
	if size <= 0 || size >= len(rows) {
		return [][]map[string]any{rows}
	}
	out := make([][]map[string]any, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		out = append(out, rows[start:end])
	}
	return out
}
