package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/qextract/internal/cache"
	"github.com/ppiankov/qextract/internal/model"
	"github.com/ppiankov/qextract/internal/pipeline"
)

type fakeRunner struct {
	delay map[string]time.Duration
	fail  map[string]bool
}

func (f *fakeRunner) RunPath(ctx context.Context, path string) (*pipeline.Result, bool, error) {
	time.Sleep(f.delay[path])
	if f.fail[path] {
		return nil, false, errors.New("unreadable")
	}
	return &pipeline.Result{SourcePath: path}, false, nil
}

func TestBatchProcessor_ResultsByDocumentID(t *testing.T) {
	runner := &fakeRunner{fail: map[string]bool{"b.txt": true}}
	var mu sync.Mutex
	var seen []Progress
	proc := NewBatchProcessor(runner, BatchOptions{
		Concurrency: 2,
		OnProgress: func(p Progress, _ *DocResult) {
			mu.Lock()
			seen = append(seen, p)
			mu.Unlock()
		},
	})

	out := proc.Process(context.Background(), []string{"a.txt", "b.txt", "c.txt", "a.txt"})

	if len(out.Order) != 3 || len(out.Results) != 3 {
		t.Fatalf("expected 3 unique documents, got order=%d results=%d", len(out.Order), len(out.Results))
	}
	if out.Order[0] != pipeline.DocumentID("a.txt") {
		t.Error("order should follow input")
	}
	if r := out.Results[pipeline.DocumentID("c.txt")]; r == nil || r.Result == nil || r.Error != nil {
		t.Errorf("c.txt should succeed, got %+v", r)
	}

	want := Progress{Total: 3, Done: 3, Failed: 1}
	if out.Progress != want {
		t.Errorf("progress = %+v, want %+v", out.Progress, want)
	}
	if len(seen) != 3 {
		t.Errorf("expected one progress call per document, got %d", len(seen))
	}
	if f := out.Failures(); len(f) != 1 || f[0].Path != "b.txt" {
		t.Errorf("unexpected failures %+v", f)
	}
}

func TestBatchProcessor_DocTimeout(t *testing.T) {
	runner := &fakeRunner{delay: map[string]time.Duration{"slow.txt": 500 * time.Millisecond}}
	proc := NewBatchProcessor(runner, BatchOptions{Concurrency: 2, DocTimeout: 20 * time.Millisecond})

	out := proc.Process(context.Background(), []string{"slow.txt", "fast.txt"})

	slow := out.Results[pipeline.DocumentID("slow.txt")]
	if !errors.Is(slow.Error, ErrDocTimeout) {
		t.Errorf("expected ErrDocTimeout, got %v", slow.Error)
	}
	if fast := out.Results[pipeline.DocumentID("fast.txt")]; fast.Error != nil {
		t.Errorf("fast document failed: %v", fast.Error)
	}
	if out.Progress.Failed != 1 || out.Progress.Done != 2 {
		t.Errorf("unexpected progress %+v", out.Progress)
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	proc := NewBatchProcessor(&fakeRunner{}, BatchOptions{Concurrency: 1})
	out := proc.Process(ctx, []string{"a.txt", "b.txt"})

	if out.Progress.Failed != 2 {
		t.Errorf("expected both documents to fail, got %+v", out.Progress)
	}
	for _, r := range out.Results {
		if !errors.Is(r.Error, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", r.Error)
		}
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	out := NewBatchProcessor(&fakeRunner{}, BatchOptions{}).Process(context.Background(), nil)
	if len(out.Results) != 0 || out.Progress.Total != 0 {
		t.Errorf("expected empty result, got %+v", out)
	}
}

const examText = "1. What is the boiling point of water at sea level?\n(A) 90 (B) 100 (C) 110 (D) 120\n"

func TestDocumentRunner_UsesCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quiz.txt")
	if err := os.WriteFile(path, []byte(examText), 0o644); err != nil {
		t.Fatal(err)
	}

	c := cache.New(model.CacheConfig{Enabled: true, Dir: filepath.Join(dir, "cache"), MemoryTTL: time.Minute, DiskTTL: time.Hour})
	runner := NewDocumentRunner(pipeline.NewLoader(0), pipeline.NewExtractor(nil, nil), c, pipeline.DefaultOptions())

	first, cached, err := runner.RunPath(context.Background(), path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if cached {
		t.Error("first run cannot be a cache hit")
	}
	if len(first.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(first.Questions))
	}

	second, cached, err := runner.RunPath(context.Background(), path)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !cached {
		t.Error("second run should hit the cache")
	}
	if second.DocumentID != first.DocumentID || len(second.Questions) != 1 {
		t.Errorf("cached result differs: %+v", second)
	}
	if text, _ := second.Questions[0].Options.Get("B"); text != "100" {
		t.Errorf("option B = %q after cache round trip", text)
	}
}

func TestDocumentRunner_LoadError(t *testing.T) {
	runner := NewDocumentRunner(pipeline.NewLoader(0), pipeline.NewExtractor(nil, nil), nil, pipeline.DefaultOptions())
	if _, _, err := runner.RunPath(context.Background(), filepath.Join(t.TempDir(), "exam.docx")); !errors.Is(err, pipeline.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestCollectPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.html", "notes.docx", filepath.Join("sub", "c.pdf"), filepath.Join(".hidden", "d.txt")} {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := CollectPaths(dir)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	want := []string{filepath.Join(dir, "a.html"), filepath.Join(dir, "b.txt"), filepath.Join(dir, "sub", "c.pdf")}
	if len(paths) != len(want) {
		t.Fatalf("got %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], want[i])
		}
	}

	list := filepath.Join(dir, "list.txt")
	content := "# exams\nb.txt\n\n" + filepath.Join(dir, "a.html") + "\nb.txt\n"
	if err := os.WriteFile(list, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	paths, err = CollectPaths(list)
	if err != nil {
		t.Fatalf("read list failed: %v", err)
	}
	if len(paths) != 2 || paths[0] != filepath.Join(dir, "b.txt") {
		t.Errorf("unexpected list paths %v", paths)
	}

	if _, err := CollectPaths(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}
