package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/qextract/internal/cache"
	"github.com/ppiankov/qextract/internal/pipeline"
)

// ErrDocTimeout marks a document that exceeded its wall-clock ceiling
var ErrDocTimeout = errors.New("document timed out")

// Runner extracts the document at path. The bool reports a cache hit.
type Runner interface {
	RunPath(ctx context.Context, path string) (*pipeline.Result, bool, error)
}

// DocumentRunner loads a file and extracts it through the result cache
type DocumentRunner struct {
	loader    *pipeline.Loader
	extractor *pipeline.Extractor
	cache     cache.Cache
	opts      pipeline.Options
}

// NewDocumentRunner wires a loader, extractor and cache. A nil cache
// disables caching.
func NewDocumentRunner(loader *pipeline.Loader, extractor *pipeline.Extractor, c cache.Cache, opts pipeline.Options) *DocumentRunner {
	if c == nil {
		c = cache.Nop{}
	}
	return &DocumentRunner{loader: loader, extractor: extractor, cache: c, opts: opts}
}

// RunPath loads and extracts one document
func (r *DocumentRunner) RunPath(ctx context.Context, path string) (*pipeline.Result, bool, error) {
	loaded, err := r.loader.Load(ctx, path)
	if err != nil {
		return nil, false, err
	}
	res, cached := r.extractor.RunCached(r.cache, loaded.Document, r.opts)
	return res, cached, nil
}

// ExtractJob extracts a single document
type ExtractJob struct {
	Path    string
	Runner  Runner
	Timeout time.Duration // 0 = no ceiling
	Limiter *Limiter      // nil = no throttle
}

// DocResult is the outcome for one document
type DocResult struct {
	Path       string
	DocumentID string
	Result     *pipeline.Result
	Cached     bool
	Error      error
	Duration   time.Duration
}

// Key returns the document ID
func (r *DocResult) Key() string { return r.DocumentID }

// Err returns the failure, if any
func (r *DocResult) Err() error { return r.Error }

// Execute runs the job. A cancelled batch context fails the document before
// it starts; a document already running is waited for unless it overruns
// its timeout.
func (j *ExtractJob) Execute(ctx context.Context) Result {
	start := time.Now()
	res := &DocResult{Path: j.Path, DocumentID: pipeline.DocumentID(j.Path)}
	defer func() { res.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		res.Error = err
		return res
	}
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Path); err != nil {
			res.Error = fmt.Errorf("throttle: %w", err)
			return res
		}
	}

	runCtx := ctx
	var expired <-chan time.Time
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
		timer := time.NewTimer(j.Timeout)
		defer timer.Stop()
		expired = timer.C
	}

	type outcome struct {
		result *pipeline.Result
		cached bool
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, cached, err := j.Runner.RunPath(runCtx, j.Path)
		done <- outcome{result: r, cached: cached, err: err}
	}()

	select {
	case o := <-done:
		res.Result, res.Cached, res.Error = o.result, o.cached, o.err
	case <-expired:
		res.Error = fmt.Errorf("%w after %s", ErrDocTimeout, j.Timeout)
	}
	return res
}

// Progress is the aggregate batch state
type Progress struct {
	Total  int
	Done   int
	Failed int
	Cached int
}

type progressCounter struct {
	mu sync.Mutex
	p  Progress
}

func (c *progressCounter) record(r *DocResult) Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.p.Done++
	if r.Error != nil {
		c.p.Failed++
	}
	if r.Cached {
		c.p.Cached++
	}
	return c.p
}

func (c *progressCounter) snapshot() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.p
}

// BatchOptions tune a BatchProcessor
type BatchOptions struct {
	Concurrency int
	DocTimeout  time.Duration
	Limiter     *Limiter
	// OnProgress is called once per finished document, from worker
	// goroutines; calls are serialized.
	OnProgress func(Progress, *DocResult)
	Logger     *zap.Logger
}

// BatchResult holds per-document results keyed by document ID
type BatchResult struct {
	Results  map[string]*DocResult
	Order    []string // Document IDs in input order
	Progress Progress
}

// Failures returns failed documents in input order
func (b *BatchResult) Failures() []*DocResult {
	var out []*DocResult
	for _, id := range b.Order {
		if r := b.Results[id]; r != nil && r.Error != nil {
			out = append(out, r)
		}
	}
	return out
}

// BatchProcessor extracts many documents concurrently
type BatchProcessor struct {
	runner Runner
	opts   BatchOptions
	logger *zap.Logger
}

// NewBatchProcessor creates a processor
func NewBatchProcessor(runner Runner, opts BatchOptions) *BatchProcessor {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{runner: runner, opts: opts, logger: logger}
}

// Process extracts every path. Duplicate paths (same document ID) run once.
func (b *BatchProcessor) Process(ctx context.Context, paths []string) *BatchResult {
	out := &BatchResult{Results: make(map[string]*DocResult, len(paths))}

	var unique []string
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		id := pipeline.DocumentID(p)
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, p)
		out.Order = append(out.Order, id)
	}
	if len(unique) == 0 {
		return out
	}

	counter := &progressCounter{p: Progress{Total: len(unique)}}
	var notify sync.Mutex

	pool := NewPool(b.opts.Concurrency)
	pool.OnResult(func(r Result) {
		doc := r.(*DocResult)
		p := counter.record(doc)
		if doc.Error != nil {
			b.logger.Warn("document failed", zap.String("path", doc.Path), zap.Error(doc.Error))
		} else {
			b.logger.Debug("document done",
				zap.String("path", doc.Path),
				zap.Bool("cached", doc.Cached),
				zap.Duration("took", doc.Duration))
		}
		if b.opts.OnProgress != nil {
			notify.Lock()
			b.opts.OnProgress(p, doc)
			notify.Unlock()
		}
	})
	pool.Start(ctx)

	for _, p := range unique {
		pool.Submit(&ExtractJob{
			Path:    p,
			Runner:  b.runner,
			Timeout: b.opts.DocTimeout,
			Limiter: b.opts.Limiter,
		})
	}

	for _, r := range pool.Wait() {
		out.Results[r.Key()] = r.(*DocResult)
	}
	out.Progress = counter.snapshot()
	return out
}

// CollectPaths expands a batch argument: a directory is walked for
// supported documents, any other file is read as a path list.
func CollectPaths(arg string) ([]string, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", arg, err)
	}
	if info.IsDir() {
		return walkDocuments(arg)
	}
	return ReadPathList(arg)
}

func walkDocuments(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if pipeline.Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadPathList reads document paths from a file, one per line. Blank lines
// and # comments are skipped, duplicates dropped, and relative paths
// resolved against the list file's directory.
func ReadPathList(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open list: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan list: %w", err)
	}
	return paths, nil
}
