package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"argsmat/internal/diag"
	"argsmat/internal/observ"
	"argsmat/internal/rewrite"
	"argsmat/internal/scope"
	"argsmat/internal/source"
	"argsmat/internal/trace"
)

// Options configures a run.
type Options struct {
	// Transform is passed to rewrite.Process. Its Reporter and Timer are
	// replaced per file.
	Transform      rewrite.Options
	Jobs           int
	MaxDiagnostics int
	Filter         *Filter
	Cache          *DiskCache
	// Write selects what happens to changed files.
	Write WriteMode
	Sink  ProgressSink
	// Timings attaches an ObsTimings diagnostic to every file result.
	Timings bool
	// Reporter, if set, also receives every diagnostic of every file as it
	// is produced. Calls are serialised and duplicates dropped.
	Reporter diag.Reporter
}

// teeReporter пишет в bag файла и в общий Reporter прогона.
type teeReporter struct {
	bag    *diag.Bag
	shared diag.Reporter
}

func (r teeReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	diag.BagReporter{Bag: r.bag}.Report(code, sev, primary, msg, notes, fixes)
	if r.shared != nil {
		r.shared.Report(code, sev, primary, msg, notes, fixes)
	}
}

// FileResult содержит результат обработки одного файла.
type FileResult struct {
	Path    string        // путь к файлу, как его видит пользователь
	FileID  source.FileID // ID файла в FileSet
	Bag     *diag.Bag     // диагностики файла
	Changed bool
	Code    string
	Map     []byte // JSON source map, nil when disabled
	Cached  bool
	Written bool

	Redirected int
	Kept       int
	Preambles  int

	Timer *observ.Timer
	Err   error // internal error; the file was left alone
}

// Run is the outcome of Process.
type Run struct {
	FileSet *source.FileSet
	Files   []FileResult
	Timer   *observ.Timer
}

// ChangedCount returns the number of files that changed.
func (r *Run) ChangedCount() int {
	n := 0
	for i := range r.Files {
		if r.Files[i].Changed {
			n++
		}
	}
	return n
}

// HasErrors reports whether any file produced an error diagnostic.
func (r *Run) HasErrors() bool {
	for i := range r.Files {
		if r.Files[i].Bag != nil && r.Files[i].Bag.HasErrors() {
			return true
		}
	}
	return false
}

// Process runs on a file or on every matching file under a directory.
func Process(ctx context.Context, target string, opts Options) (*Run, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", target, err)
	}
	if info.IsDir() {
		return ProcessDir(ctx, target, opts)
	}
	return ProcessFile(ctx, target, opts)
}

// ProcessFile rewrites a single file. The filter is not applied.
func ProcessFile(ctx context.Context, path string, opts Options) (*Run, error) {
	return processFiles(ctx, source.NewFileSetWithBase(filepath.Dir(path)), []string{path}, opts)
}

// ProcessDir rewrites every file under dir accepted by opts.Filter in parallel.
func ProcessDir(ctx context.Context, dir string, opts Options) (*Run, error) {
	files, err := listFiles(dir, opts.Filter)
	if err != nil {
		return nil, err
	}
	return processFiles(ctx, source.NewFileSetWithBase(dir), files, opts)
}

// listFiles возвращает отсортированный список подходящих файлов в директории
func listFiles(dir string, filter *Filter) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() {
			if rel != "." && filter.SkipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && filter.Match(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

func processFiles(ctx context.Context, fileSet *source.FileSet, files []string, opts Options) (*Run, error) {
	tracer := opts.Transform.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	runSpan := trace.Begin(tracer, trace.ScopeDriver, "run", trace.CurrentSpan(ctx).SpanID)
	defer runSpan.End("")

	run := &Run{FileSet: fileSet, Timer: observ.NewTimer()}
	if len(files) == 0 {
		return run, nil
	}

	// Предзагружаем все файлы последовательно: FileSet не потокобезопасен
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		emit(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusQueued})
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}

	if opts.Reporter != nil {
		opts.Reporter = diag.NewSyncReporter(diag.NewDedupReporter(opts.Reporter))
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			bag := diag.NewBag(opts.MaxDiagnostics)
			rep := teeReporter{bag: bag, shared: opts.Reporter}
			if loadErr, hadError := loadErrors[path]; hadError {
				results[i] = FileResult{Path: path, Bag: bag, Err: loadErr}
				diag.ReportError(rep, diag.IOLoadFileError, source.Span{},
					"failed to load file: "+loadErr.Error()).Emit()
				emit(opts.Sink, Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr})
				return nil
			}

			file := fileSet.Get(fileIDs[path])
			res, err := processOne(gctx, file, bag, opts, runSpan.ID())
			if err != nil {
				return err
			}
			res.Path = path
			if res.Changed && opts.Write != WriteNone && res.Err == nil {
				writeStart := time.Now()
				emit(opts.Sink, Event{File: path, Stage: StageWrite, Status: StatusWorking})
				if err := WriteResult(file, &res, opts.Write); err != nil {
					diag.ReportError(rep, diag.IOWriteFileError, source.Span{File: file.ID},
						"failed to write result: "+err.Error()).Emit()
					emit(opts.Sink, Event{File: path, Stage: StageWrite, Status: StatusError, Err: err, Elapsed: time.Since(writeStart)})
				} else {
					emit(opts.Sink, Event{File: path, Stage: StageWrite, Status: StatusDone, Elapsed: time.Since(writeStart)})
				}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		run.Files = results
		return run, err
	}

	run.Files = results
	for i := range results {
		run.Timer.Merge(results[i].Timer)
	}
	runSpan.WithExtra("files", strconv.Itoa(len(files))).
		WithExtra("changed", strconv.Itoa(run.ChangedCount()))
	return run, nil
}

// processOne rewrites one loaded file. Only cancellation is returned as an
// error; everything else is recorded in the result.
func processOne(ctx context.Context, file *source.File, bag *diag.Bag, opts Options, parent uint64) (FileResult, error) {
	res := FileResult{FileID: file.ID, Bag: bag, Timer: observ.NewTimer()}
	start := time.Now()
	emit(opts.Sink, Event{File: file.Path, Stage: StageTransform, Status: StatusWorking})

	tropts := opts.Transform
	rep := teeReporter{bag: bag, shared: opts.Reporter}
	tropts.Reporter = rep
	tropts.Timer = res.Timer
	tropts.MapFile = filepath.Base(file.Path)
	if tropts.Tracer == nil {
		tropts.Tracer = trace.Nop
	}

	span := trace.Begin(tropts.Tracer, trace.ScopeFile, "file:"+file.Path, parent)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})
	defer func() {
		span.WithExtra("redirected", strconv.Itoa(res.Redirected)).End(string(statusOf(&res)))
	}()

	key := cacheKey(file.Hash, file.Path, tropts)
	if opts.Cache != nil {
		var payload DiskPayload
		ok, err := opts.Cache.Get(key, &payload)
		switch {
		case err != nil:
			diag.ReportWarning(rep, diag.IOCacheError, source.Span{File: file.ID},
				"cache read failed: "+err.Error()).Emit()
		case ok:
			res.Cached = true
			res.Changed = payload.Changed
			res.Code = payload.Code
			res.Map = payload.Map
			res.Redirected, res.Kept, res.Preambles = payload.Redirected, payload.Kept, payload.Preambles
			restoreDiagnostics(rep, file.ID, payload.Diagnostics)
			emit(opts.Sink, Event{File: file.Path, Stage: StageTransform, Status: statusOf(&res), Elapsed: time.Since(start)})
			return res, nil
		}
	}

	out, err := rewrite.Process(ctx, file, tropts)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return res, err
		}
		res.Err = err
		code := diag.IntEditOverlap
		if errors.Is(err, scope.ErrUnbalanced) || errors.Is(err, scope.ErrNoEnclosingFunction) {
			code = diag.IntScopeUnbalanced
		}
		diag.ReportError(rep, code, source.Span{File: file.ID},
			"internal error, file left unchanged: "+err.Error()).Emit()
		emit(opts.Sink, Event{File: file.Path, Stage: StageTransform, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return res, nil
	}

	if out != nil {
		res.Changed = true
		res.Code = out.Code
		res.Redirected, res.Kept, res.Preambles = out.Redirected, out.Kept, out.Preambles
		if out.Map != nil {
			out.Map.Sources = []string{filepath.Base(file.Path)}
			data, err := out.Map.JSON()
			if err != nil {
				return res, fmt.Errorf("%s: %w", file.Path, err)
			}
			res.Map = data
		}
	}

	if opts.Cache != nil {
		payload := &DiskPayload{
			Changed:     res.Changed,
			Code:        res.Code,
			Map:         res.Map,
			Redirected:  res.Redirected,
			Kept:        res.Kept,
			Preambles:   res.Preambles,
			Diagnostics: cacheDiagnostics(bag.Items()),
		}
		if err := opts.Cache.Put(key, payload); err != nil {
			diag.ReportWarning(rep, diag.IOCacheError, source.Span{File: file.ID},
				"cache write failed: "+err.Error()).Emit()
		}
	}

	if opts.Timings {
		appendTimingDiagnostic(bag, file.ID, newTimingPayload("file", file.Path, res.Timer.Report()))
	}
	emit(opts.Sink, Event{File: file.Path, Stage: StageTransform, Status: statusOf(&res), Elapsed: time.Since(start)})
	return res, nil
}

func statusOf(res *FileResult) Status {
	switch {
	case res.Err != nil:
		return StatusError
	case res.Changed:
		return StatusDone
	default:
		return StatusUnchanged
	}
}
