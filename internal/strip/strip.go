// Package strip removes type annotations from python source while recording
// them, then restores the comments and blank lines that regeneration lost.
package strip

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/hintgraph/internal/align"
	"github.com/phobologic/hintgraph/internal/lang"
	"github.com/phobologic/hintgraph/internal/model"
	"github.com/phobologic/hintgraph/internal/namespace"
	"github.com/phobologic/hintgraph/internal/parse"
)

// DefaultPlaceholder is assigned by declaration-only annotations once stripped.
const DefaultPlaceholder = "None"

// Options configures stripping.
type Options struct {
	ModuleSource namespace.ModuleSource
	Receiver     string
	Placeholder  string
	BlankLines   align.BlankLines
}

func (o Options) withDefaults() Options {
	if o.ModuleSource == "" {
		o.ModuleSource = namespace.FromDocstring
	}
	if o.Receiver == "" {
		o.Receiver = "self"
	}
	if o.Placeholder == "" {
		o.Placeholder = DefaultPlaceholder
	}
	if o.BlankLines == "" {
		o.BlankLines = align.Preserve
	}
	return o
}

// Result is one stripped file.
type Result struct {
	Path        string
	Original    string
	Text        string
	Annotations *model.Annotations
}

// Changed reports whether stripping altered the text.
func (r *Result) Changed() bool {
	return r.Text != r.Original
}

// File strips one file's annotations with parser.
func File(ctx context.Context, parser *sitter.Parser, path string, source []byte, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	text := align.Normalize(string(source))
	res := &Result{Path: path, Original: string(source), Text: string(source), Annotations: model.NewAnnotations()}
	if strings.TrimSpace(text) == "" {
		return res, nil
	}

	tree, err := parse.Parse(ctx, parser, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer tree.Close()

	ann, err := Collect(tree, namespace.ModuleName(tree, path, opts.ModuleSource), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Annotations = ann
	if !tree.Edited() {
		return res, nil
	}

	merged, err := reconcile(tree, text, tree.Render(), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Text = merged
	return res, nil
}

// Source strips source with a throwaway parser.
func Source(ctx context.Context, path string, source []byte, opts Options) (*Result, error) {
	return File(ctx, lang.Python.NewParser(), path, source, opts)
}

// reconcile aligns rendered against the original text of tree and merges
// the original comments and blank lines back in.
func reconcile(tree *parse.Tree, original, rendered string, opts Options) (string, error) {
	origLines, offset := align.Split(original)
	procLines, _ := align.Split(rendered)

	mapping, err := align.Aligner{Placeholder: opts.Placeholder}.Align(origLines, procLines)
	if err != nil {
		return "", err
	}
	comments := align.ExtractComments(tree, offset)
	merged := align.Merge(origLines, procLines, mapping, comments, opts.BlankLines)

	var b strings.Builder
	if opts.BlankLines != align.Compact {
		b.WriteString(strings.Repeat("\n", offset))
	}
	b.WriteString(strings.Join(merged, "\n"))
	if strings.HasSuffix(original, "\n") {
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Stats totals annotations across stripped files.
func Stats(results []*Result) model.AnnotationStats {
	var s model.AnnotationStats
	for _, r := range results {
		if r != nil && r.Annotations != nil {
			s.Add(r.Annotations.Count())
		}
	}
	return s
}

// FileError is a file the project pass could not strip.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Files strips files concurrently. Results keep input order; a file that
// fails leaves a nil result and an entry in the returned errors. progress,
// if non-nil, is called once per finished file.
func Files(ctx context.Context, files []model.SourceFile, opts Options, workers int, progress func()) ([]*Result, []FileError, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]*Result, len(files))
	errs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = Source(gctx, f.Path, f.Source, opts)
			if progress != nil {
				progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var failed []FileError
	for i, err := range errs {
		if err != nil {
			failed = append(failed, FileError{Path: files[i].Path, Err: err})
		}
	}
	return results, failed, nil
}
