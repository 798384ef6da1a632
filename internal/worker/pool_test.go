package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubResult struct {
	key string
	err error
}

func (r *stubResult) Key() string { return r.key }
func (r *stubResult) Err() error { return r.err }

type stubJob struct {
	key      string
	duration time.Duration
	fail     bool
	executed *int32
}

func (j *stubJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if err := ctx.Err(); err != nil {
		return &stubResult{key: j.key, err: err}
	}
	time.Sleep(j.duration)
	if j.fail {
		return &stubResult{key: j.key, err: errors.New("job error")}
	}
	return &stubResult{key: j.key}
}

func TestNewPool(t *testing.T) {
	cases := map[int]int{5: 5, 0: 1, -1: 1}
	for in, want := range cases {
		if got := NewPool(in).workers; got != want {
			t.Errorf("NewPool(%d).workers = %d, want %d", in, got, want)
		}
	}
}

func TestPool_RunsEveryJob(t *testing.T) {
	pool := NewPool(2)
	pool.Start(context.Background())

	var executed int32
	const count = 50 // well past the queue capacity
	for i := 0; i < count; i++ {
		pool.Submit(&stubJob{key: fmt.Sprint(i), executed: &executed})
	}

	results := pool.Wait()
	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}
	if got := atomic.LoadInt32(&executed); got != count {
		t.Errorf("expected %d executed jobs, got %d", count, got)
	}
}

type trackingJob struct {
	start, end func()
}

func (j *trackingJob) Execute(ctx context.Context) Result {
	j.start()
	time.Sleep(5 * time.Millisecond)
	j.end()
	return &stubResult{}
}

func TestPool_BoundedConcurrency(t *testing.T) {
	const workers = 4
	pool := NewPool(workers)
	pool.Start(context.Background())

	var current, peak int32
	var mu sync.Mutex
	for i := 0; i < 40; i++ {
		pool.Submit(&trackingJob{
			start: func() {
				n := atomic.AddInt32(&current, 1)
				mu.Lock()
				if n > peak {
					peak = n
				}
				mu.Unlock()
			},
			end: func() { atomic.AddInt32(&current, -1) },
		})
	}
	pool.Wait()

	mu.Lock()
	defer mu.Unlock()
	if peak > workers {
		t.Errorf("peak concurrency %d exceeded %d workers", peak, workers)
	}
}

func TestPool_OnResult(t *testing.T) {
	pool := NewPool(3)
	var calls int32
	pool.OnResult(func(Result) { atomic.AddInt32(&calls, 1) })
	pool.Start(context.Background())

	pool.Submit(&stubJob{fail: true})
	pool.Submit(&stubJob{})
	results := pool.Wait()

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 callbacks, got %d", got)
	}
	failed := 0
	for _, r := range results {
		if r.Err() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failure, got %d", failed)
	}
}

func TestPool_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(2)
	pool.Start(ctx)
	for i := 0; i < 5; i++ {
		pool.Submit(&stubJob{duration: time.Second})
	}

	done := make(chan []Result)
	go func() { done <- pool.Wait() }()

	select {
	case results := <-done:
		if len(results) != 5 {
			t.Fatalf("expected 5 results, got %d", len(results))
		}
		for _, r := range results {
			if !errors.Is(r.Err(), context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", r.Err())
			}
		}
	case <-time.After(time.Second):
		t.Fatal("Wait blocked on a cancelled pool")
	}
}

func TestResultCollector(t *testing.T) {
	c := NewResultCollector()
	c.Add(&stubResult{})
	c.Add(&stubResult{err: errors.New("err")})

	snap := c.Results()
	if len(snap) != 2 {
		t.Fatalf("expected 2 results, got %d", len(snap))
	}
	snap[0] = nil
	if c.Results()[0] == nil {
		t.Error("Results must return a copy")
	}
}
