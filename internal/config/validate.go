package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phobologic/hintgraph/internal/align"
	"github.com/phobologic/hintgraph/internal/discover"
	"github.com/phobologic/hintgraph/internal/namespace"
)

var (
	// ErrInvalidModuleSource indicates an unknown namespace.module_source.
	ErrInvalidModuleSource = errors.New("invalid module source")

	// ErrInvalidReceiver indicates an empty or non-identifier receiver.
	ErrInvalidReceiver = errors.New("invalid receiver")

	// ErrInvalidPlaceholder indicates an empty placeholder literal.
	ErrInvalidPlaceholder = errors.New("invalid placeholder")

	// ErrInvalidBlankLines indicates an unknown blank line policy.
	ErrInvalidBlankLines = errors.New("invalid blank line policy")

	// ErrInvalidFileSize indicates a non-positive size limit.
	ErrInvalidFileSize = errors.New("invalid max file size")

	// ErrInvalidPattern indicates an exclude glob that does not compile.
	ErrInvalidPattern = errors.New("invalid exclude pattern")

	// ErrInvalidNeo4j indicates incomplete Neo4j settings.
	ErrInvalidNeo4j = errors.New("invalid neo4j settings")
)

// Validate checks cfg and reports every problem found.
func Validate(cfg *Config) error {
	var errs []error

	switch namespace.ModuleSource(cfg.Namespace.ModuleSource) {
	case namespace.FromDocstring, namespace.FromPath:
	default:
		errs = append(errs, fmt.Errorf("%w: must be %q or %q, got %q",
			ErrInvalidModuleSource, namespace.FromDocstring, namespace.FromPath, cfg.Namespace.ModuleSource))
	}
	if !isIdentifier(cfg.Namespace.Receiver) {
		errs = append(errs, fmt.Errorf("%w: %q is not an identifier", ErrInvalidReceiver, cfg.Namespace.Receiver))
	}

	if strings.TrimSpace(cfg.Strip.Placeholder) == "" {
		errs = append(errs, fmt.Errorf("%w: must not be empty", ErrInvalidPlaceholder))
	}
	switch align.BlankLines(cfg.Strip.BlankLines) {
	case align.Preserve, align.Compact:
	default:
		errs = append(errs, fmt.Errorf("%w: must be %q or %q, got %q",
			ErrInvalidBlankLines, align.Preserve, align.Compact, cfg.Strip.BlankLines))
	}

	if cfg.Discover.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %d", ErrInvalidFileSize, cfg.Discover.MaxFileSize))
	}

	if _, err := discover.CompileExcludes(cfg.Discover.Exclude); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidPattern, err))
	}

	if cfg.Neo4j.URI == "" {
		errs = append(errs, fmt.Errorf("%w: uri must not be empty", ErrInvalidNeo4j))
	}

	return errors.Join(errs...)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
