package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/kg/gen"
	"github.com/npillmayer/koopa/parse"
	"github.com/npillmayer/koopa/task"
	"golang.org/x/sync/errgroup"
)

// KGPattern selects grammar definition files in directories.
const KGPattern = "**/*.kg"

// Expand replaces directories in paths by the files below them matching
// pattern. Files are kept as they are. A path which does not exist is an
// error of kind *koopa.IOError.
func Expand(paths []string, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}
	var files []string
	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			return nil, &koopa.IOError{Path: path, Err: err}
		}
		if !fi.IsDir() {
			files = append(files, path)
			continue
		}
		matches, err := doublestar.Glob(os.DirFS(path), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, &koopa.IOError{Path: path, Err: err}
		}
		sort.Strings(matches)
		for _, m := range matches {
			files = append(files, filepath.Join(path, filepath.FromSlash(m)))
		}
		tracer().Debugf("%s: %d files matching %s", path, len(matches), pattern)
	}
	return files, nil
}

// --- Generation ------------------------------------------------------------

// Options control a batch generation.
type Options struct {
	gen.Options
	Workers int // number of parallel workers, at least 1
}

// Outcome is the result of generating a single file.
type Outcome struct {
	Path   string
	Report *gen.Report // nil if generation failed
	Err    error
}

// Generate generates Go code for every KG file in paths. Directories are
// searched for files matching KGPattern. Outcomes are in the order of the
// expanded files.
//
// The returned error is non-nil only if paths cannot be expanded or if ctx
// has been cancelled. In the latter case, files not yet started carry the
// context's error as their outcome.
func Generate(ctx context.Context, paths []string, opts Options, progress *task.Progress) ([]Outcome, error) {
	files, err := Expand(paths, KGPattern)
	if err != nil {
		return nil, err
	}
	outcomes := make([]Outcome, len(files))
	var g errgroup.Group
	g.SetLimit(max(opts.Workers, 1))
	for i, file := range files {
		outcomes[i].Path = file
		if ctx.Err() != nil {
			outcomes[i].Err = ctx.Err()
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				outcomes[i].Err = ctx.Err()
				return nil
			}
			outcomes[i].Report, outcomes[i].Err = gen.File(file, opts.Options)
			if outcomes[i].Err != nil {
				tracer().Errorf("%v", outcomes[i].Err)
				progress.Report("%s: failed", file)
			} else {
				progress.Report("%s: %s", file, outcomes[i].Report.Status)
			}
			return nil
		})
	}
	g.Wait()
	return outcomes, ctx.Err()
}

// Failed returns the outcomes carrying an error.
func Failed(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// --- Parsing ---------------------------------------------------------------

// Parse parses files one after the other and collects the results in a new
// session. Files which cannot be read are added to the session as failed
// results; they do not stop the batch. Cancellation is checked between files.
func Parse(ctx context.Context, files []string, progress *task.Progress, opts ...parse.Option) (*Session, error) {
	session := NewSession()
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return session, err
		}
		result, err := parse.File(file, opts...)
		if err != nil {
			var ioErr *koopa.IOError
			if !errors.As(err, &ioErr) && !errors.As(err, new(koopa.ContractViolation)) {
				return session, err
			}
			if result == nil {
				result = &parse.Result{Source: file, Err: err}
			}
		}
		session.Add(result)
		progress.Report("%s: %s", file, status(result))
	}
	return session, nil
}
