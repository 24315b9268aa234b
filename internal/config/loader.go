package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader loads configuration for one project root.
type Loader struct {
	rootDir string
	file    string
}

// NewLoader returns a Loader that looks for FileName in rootDir.
func NewLoader(rootDir string) *Loader {
	return &Loader{rootDir: rootDir}
}

// WithFile makes the loader read path instead of searching the root.
// A missing explicit file is an error.
func (l *Loader) WithFile(path string) *Loader {
	l.file = path
	return l
}

// Load resolves configuration with the following priority (highest first):
// 1. Environment variables (HINTGRAPH_*)
// 2. Config file (--config, or .hintgraph.yaml in the root)
// 3. Default values
func (l *Loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if l.file != "" {
		v.SetConfigFile(l.file)
	} else {
		v.SetConfigFile(filepath.Join(l.rootDir, FileName))
	}

	v.SetEnvPrefix("HINTGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if l.file != "" || !isNotFound(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("namespace.module_source", d.Namespace.ModuleSource)
	v.SetDefault("namespace.receiver", d.Namespace.Receiver)

	v.SetDefault("strip.placeholder", d.Strip.Placeholder)
	v.SetDefault("strip.blank_lines", d.Strip.BlankLines)

	v.SetDefault("discover.max_file_size", d.Discover.MaxFileSize)
	v.SetDefault("discover.include_tests", d.Discover.IncludeTests)
	v.SetDefault("discover.exclude", d.Discover.Exclude)

	v.SetDefault("neo4j.uri", d.Neo4j.URI)
	v.SetDefault("neo4j.user", d.Neo4j.User)
	v.SetDefault("neo4j.password", d.Neo4j.Password)
	v.SetDefault("neo4j.database", d.Neo4j.Database)
}

// isNotFound reports a missing config file. SetConfigFile surfaces it as an
// fs error rather than viper.ConfigFileNotFoundError.
func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}
