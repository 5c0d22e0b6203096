package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"reflow/internal/bundle"
	"reflow/internal/format"
	"reflow/internal/observ"
	"reflow/internal/trace"
)

// ErrNoBundles is returned when the given paths hold no layout bundles.
var ErrNoBundles = errors.New("format: no layout bundles found")

// FormatOptions configures a formatting run.
type FormatOptions struct {
	Check    bool
	Stdout   bool
	Options  format.Options
	Jobs     int
	Progress ProgressSink
}

// FormatResult captures the result of formatting a single bundle.
type FormatResult struct {
	Path      string // bundle file
	Target    string // file the text belongs to
	Changed   bool
	Err       error
	Formatted []byte
	Stats     format.Stats
	Timings   observ.Report
}

// FormatPaths formats the given bundles or directories (recursively
// collecting *.rfb files). With opts.Check nothing is written and Changed
// tells whether the target would change. With opts.Stdout the text is
// returned in Formatted. Otherwise changed targets are rewritten in place.
// Per-bundle failures are reported in FormatResult.Err; the returned error
// is reserved for collection failures and cancellation.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := CollectBundles(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoBundles
	}

	tracer := trace.FromContext(ctx)
	parent := trace.SpanFromContext(ctx)
	results := make([]FormatResult, len(files))
	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageDecode, Status: StatusQueued})
	}

	err = forEach(ctx, files, opts.Jobs, func(ctx context.Context, i int, path string) {
		span := trace.Begin(tracer, trace.ScopeFile, "file:"+path, parent)
		res := formatBundle(trace.WithSpan(ctx, span.ID()), path, opts)
		if res.Err != nil {
			span.End(res.Err.Error())
		} else {
			span.WithExtra("changed", fmt.Sprint(res.Changed)).End("")
		}
		results[i] = res
	})
	return results, err
}

func formatBundle(ctx context.Context, path string, opts FormatOptions) FormatResult {
	result := FormatResult{Path: path}
	started := time.Now()
	fail := func(stage Stage, err error) FormatResult {
		result.Err = err
		emit(opts.Progress, Event{File: path, Stage: stage, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		return result
	}

	emit(opts.Progress, Event{File: path, Stage: StageDecode, Status: StatusWorking})
	b, err := bundle.ReadFile(path)
	if err != nil {
		return fail(StageDecode, err)
	}
	result.Target = b.Target(path)

	emit(opts.Progress, Event{File: path, Stage: StageFormat, Status: StatusWorking})
	fo := opts.Options
	if b.Width != 0 {
		fo.Width = int(b.Width)
	}
	out, err := format.Run(ctx, b.Doc, fo, &b.Tables)
	if err != nil {
		return fail(StageFormat, fmt.Errorf("%s: %w", path, err))
	}
	result.Stats = out.Stats
	result.Timings = out.Timings
	formatted := []byte(out.Text)
	if len(formatted) > 0 {
		formatted = append(formatted, '\n')
	}

	if result.Target == "" {
		if !opts.Stdout {
			return fail(StageWrite, fmt.Errorf("%s: bundle has no target path", path))
		}
	} else {
		current, err := os.ReadFile(result.Target)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			result.Changed = true
		case err != nil:
			return fail(StageWrite, err)
		default:
			result.Changed = !bytes.Equal(current, formatted)
		}
	}

	switch {
	case opts.Check:
	case opts.Stdout:
		result.Formatted = formatted
	case result.Changed:
		emit(opts.Progress, Event{File: path, Stage: StageWrite, Status: StatusWorking})
		mode := os.FileMode(0o644)
		if info, statErr := os.Stat(result.Target); statErr == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(result.Target, formatted, mode.Perm()); err != nil {
			return fail(StageWrite, err)
		}
	}
	emit(opts.Progress, Event{File: path, Stage: StageFormat, Status: StatusDone, Elapsed: time.Since(started)})
	return result
}

// CollectBundles expands paths into a sorted list of bundle files. Files
// named explicitly are kept whatever their extension.
func CollectBundles(ctx context.Context, paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			addFile(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == bundle.Ext {
				addFile(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}
