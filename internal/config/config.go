// Package config holds hintgraph's project configuration.
package config

import (
	"github.com/phobologic/hintgraph/internal/align"
	"github.com/phobologic/hintgraph/internal/discover"
	"github.com/phobologic/hintgraph/internal/graph"
	"github.com/phobologic/hintgraph/internal/namespace"
	"github.com/phobologic/hintgraph/internal/strip"
)

// FileName is the project config file looked up in the root directory.
const FileName = ".hintgraph.yaml"

// Config is the complete hintgraph configuration.
type Config struct {
	Namespace NamespaceConfig `yaml:"namespace" mapstructure:"namespace"`
	Strip     StripConfig     `yaml:"strip" mapstructure:"strip"`
	Discover  DiscoverConfig  `yaml:"discover" mapstructure:"discover"`
	Neo4j     Neo4jConfig     `yaml:"neo4j" mapstructure:"neo4j"`
}

// NamespaceConfig controls how qualified names are built.
type NamespaceConfig struct {
	// ModuleSource is "docstring" or "path".
	ModuleSource string `yaml:"module_source" mapstructure:"module_source"`
	// Receiver is the identifier treated as the method receiver.
	Receiver string `yaml:"receiver" mapstructure:"receiver"`
}

// StripConfig controls annotation removal.
type StripConfig struct {
	Placeholder string `yaml:"placeholder" mapstructure:"placeholder"`
	// BlankLines is "preserve" or "compact".
	BlankLines string `yaml:"blank_lines" mapstructure:"blank_lines"`
}

// DiscoverConfig controls which files are scanned.
type DiscoverConfig struct {
	MaxFileSize  int64    `yaml:"max_file_size" mapstructure:"max_file_size"`
	IncludeTests bool     `yaml:"include_tests" mapstructure:"include_tests"`
	Exclude      []string `yaml:"exclude" mapstructure:"exclude"`
}

// Neo4jConfig holds connection settings for the graph export.
type Neo4jConfig struct {
	URI      string `yaml:"uri" mapstructure:"uri"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Namespace: NamespaceConfig{
			ModuleSource: string(namespace.FromDocstring),
			Receiver:     graph.DefaultReceiver,
		},
		Strip: StripConfig{
			Placeholder: strip.DefaultPlaceholder,
			BlankLines:  string(align.Preserve),
		},
		Discover: DiscoverConfig{
			MaxFileSize: discover.DefaultMaxFileSize,
			Exclude:     []string{},
		},
		Neo4j: Neo4jConfig{
			URI:      "bolt://localhost:7687",
			User:     "neo4j",
			Database: "neo4j",
		},
	}
}

// GraphOptions returns the builder options described by c.
func (c *Config) GraphOptions(workers int) graph.Options {
	return graph.Options{
		ModuleSource: namespace.ModuleSource(c.Namespace.ModuleSource),
		Receiver:     c.Namespace.Receiver,
		Workers:      workers,
		IncludeTests: c.Discover.IncludeTests,
	}
}

// StripOptions returns the strip options described by c.
func (c *Config) StripOptions() strip.Options {
	return strip.Options{
		ModuleSource: namespace.ModuleSource(c.Namespace.ModuleSource),
		Receiver:     c.Namespace.Receiver,
		Placeholder:  c.Strip.Placeholder,
		BlankLines:   align.BlankLines(c.Strip.BlankLines),
	}
}

// DiscoverOptions returns the file discovery options described by c.
func (c *Config) DiscoverOptions() discover.Options {
	return discover.Options{
		IncludeTests: c.Discover.IncludeTests,
		MaxFileSize:  c.Discover.MaxFileSize,
		Exclude:      c.Discover.Exclude,
	}
}
