package driver

import (
	"context"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"rbfmt/internal/config"
	"rbfmt/internal/format"
	"rbfmt/internal/observ"
	"rbfmt/internal/source"
	"rbfmt/internal/trace"
)

// FormatOptions configures a formatting run.
type FormatOptions struct {
	// Check reports files that would change without touching them.
	Check bool
	// Stdout returns formatted content in the results instead of writing.
	Stdout bool
	// Diff fills FileResult.Diff and leaves files untouched.
	Diff bool
	// Verify reparses every output and compares meaning trees.
	Verify bool
	// Width overrides the configured line width when positive.
	Width int
	// Jobs bounds parallel workers; GOMAXPROCS when zero.
	Jobs int
	// Config, when set, governs every file instead of the config found
	// next to it.
	Config   *config.Config
	Progress ProgressSink
}

// writes reports whether changed files are written back.
func (o FormatOptions) writes() bool {
	return !o.Check && !o.Stdout && !o.Diff
}

// FileResult captures the result of formatting a single file.
type FileResult struct {
	Path   string
	FileID source.FileID
	// OutputID is the formatted content in the same FileSet; overflow
	// line numbers point into it.
	OutputID  source.FileID
	Changed   bool
	Formatted []byte
	Diff      string
	Overflows []int
	Width     int
	Err       error
	Timing    *observ.Report
}

// FormatPaths formats provided files or directories (recursively collecting
// Ruby files). Files are formatted in parallel; results keep the sorted file
// order. A per-file failure lands in FileResult.Err and leaves that file
// untouched; the returned error is reserved for discovery failures and
// cancellation.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) (*source.FileSet, []FileResult, error) {
	fileSet := source.NewFileSet()
	if err := ctx.Err(); err != nil {
		return fileSet, nil, err
	}

	configs := newConfigCache(opts.Config)
	files, err := collectSourceFiles(ctx, paths, configs)
	if err != nil {
		return fileSet, nil, err
	}
	if len(files) == 0 {
		return fileSet, nil, ErrNoFiles
	}
	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageRead, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = formatFile(gctx, fileSet, configs, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

func formatFile(ctx context.Context, fileSet *source.FileSet, configs *configCache, path string, opts FormatOptions) FileResult {
	ctx, span := trace.StartFile(ctx, path)
	timer := observ.NewTimer()

	result := FileResult{Path: path}
	fail := func(stage Stage, err error) FileResult {
		result.Err = err
		emit(opts.Progress, Event{File: path, Stage: stage, Status: StatusError, Err: err})
		span.End("error")
		report := timer.Report()
		result.Timing = &report
		return result
	}

	started := time.Now()
	emit(opts.Progress, Event{File: path, Stage: StageRead, Status: StatusWorking})
	stop := timer.Start("read")
	// #nosec G304 -- path comes from the user's command line or directory walk
	raw, err := os.ReadFile(path)
	stop("")
	if err != nil {
		result.FileID = fileSet.AddVirtual(path, nil)
		result.OutputID = result.FileID
		return fail(StageRead, &StageError{Stage: StageRead, Path: path, Err: err})
	}
	content, flags := source.Normalize(raw)
	result.FileID = fileSet.Add(path, content, flags)
	result.OutputID = result.FileID

	cfg, err := configs.forFile(path)
	if err != nil {
		return fail(StageRead, err)
	}
	fopts := cfg.Options()
	if opts.Width > 0 {
		fopts.MaxWidth = opts.Width
	}
	fopts.Verify = opts.Verify
	result.Width = fopts.MaxWidth

	stage := StageFormat
	if opts.Verify {
		stage = StageVerify
	}
	emit(opts.Progress, Event{File: path, Stage: stage, Status: StatusWorking})
	stop = timer.Start(string(stage))
	res, err := format.FormatContext(ctx, raw, fopts)
	if err == nil && res.Changed {
		stop("changed")
	} else {
		stop("")
	}
	if err != nil {
		return fail(stage, err)
	}
	result.Changed = res.Changed
	result.Overflows = res.Overflows
	if len(res.Overflows) > 0 && res.Changed {
		out, _ := source.Normalize(res.Output)
		result.OutputID = fileSet.AddVirtual(path, out)
	}

	switch {
	case opts.Stdout:
		result.Formatted = res.Output
	case opts.Diff:
		result.Diff = UnifiedDiff(path, raw, res.Output)
	}

	if opts.writes() && res.Changed {
		emit(opts.Progress, Event{File: path, Stage: StageWrite, Status: StatusWorking})
		stop = timer.Start("write")
		err = writeFile(path, res.Output)
		stop("")
		if err != nil {
			return fail(StageWrite, &StageError{Stage: StageWrite, Path: path, Err: err})
		}
	}

	status := StatusDone
	if !res.Changed {
		status = StatusSkipped
	}
	emit(opts.Progress, Event{File: path, Stage: StageWrite, Status: status, Elapsed: time.Since(started)})
	span.End(string(status))
	report := timer.Report()
	result.Timing = &report
	return result
}

// FormatSource formats src read from somewhere other than a file (stdin).
// name is used for diagnostics and config lookup only.
func FormatSource(ctx context.Context, fileSet *source.FileSet, name string, src []byte, opts FormatOptions) FileResult {
	content, _ := source.Normalize(src)
	result := FileResult{Path: name, FileID: fileSet.AddVirtual(name, content)}
	result.OutputID = result.FileID

	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Discover("."); err != nil {
			result.Err = err
			return result
		}
	}
	fopts := cfg.Options()
	if opts.Width > 0 {
		fopts.MaxWidth = opts.Width
	}
	fopts.Verify = opts.Verify
	result.Width = fopts.MaxWidth

	res, err := format.FormatContext(ctx, src, fopts)
	if err != nil {
		result.Err = err
		return result
	}
	result.Changed = res.Changed
	result.Overflows = res.Overflows
	result.Formatted = res.Output
	if len(res.Overflows) > 0 && res.Changed {
		out, _ := source.Normalize(res.Output)
		result.OutputID = fileSet.AddVirtual(name, out)
	}
	if opts.Diff {
		result.Diff = UnifiedDiff(name, src, res.Output)
	}
	return result
}

// writeFile replaces path keeping its permissions.
func writeFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	return os.WriteFile(path, data, mode.Perm())
}
