// Package worker runs document extraction over a bounded pool of goroutines.
package worker

import (
	"context"
	"sync"
)

// Job is one unit of batch work
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a Job reports back
type Result interface {
	Key() string
	Err() error
}

// Pool runs submitted jobs on a fixed number of workers. Every submitted
// job is executed exactly once; jobs see the pool context and decide
// themselves how to react to cancellation.
type Pool struct {
	workers   int
	jobs      chan Job
	collector *ResultCollector
	wg        sync.WaitGroup
	onResult  func(Result)
}

// NewPool creates a pool with the given worker count (minimum 1)
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		workers:   workers,
		jobs:      make(chan Job, workers*2),
		collector: NewResultCollector(),
	}
}

// OnResult registers a callback run on the worker goroutine after each job.
// It must be set before Start.
func (p *Pool) OnResult(fn func(Result)) {
	p.onResult = fn
}

// Start launches the workers
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(ctx)
	}
}

func (p *Pool) work(ctx context.Context) {
	defer p.wg.Done()
	for job := range p.jobs {
		res := job.Execute(ctx)
		p.collector.Add(res)
		if p.onResult != nil {
			p.onResult(res)
		}
	}
}

// Submit queues a job, blocking while the queue is full
func (p *Pool) Submit(job Job) {
	p.jobs <- job
}

// Wait closes the queue, waits for every queued job and returns the
// results in completion order. Submit must not be called afterwards.
func (p *Pool) Wait() []Result {
	close(p.jobs)
	p.wg.Wait()
	return p.collector.Results()
}

// ResultCollector gathers results from concurrent workers
type ResultCollector struct {
	mu      sync.Mutex
	results []Result
}

// NewResultCollector creates an empty collector
func NewResultCollector() *ResultCollector {
	return &ResultCollector{results: make([]Result, 0)}
}

// Add appends a result
func (c *ResultCollector) Add(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

// Results returns a snapshot of the collected results
func (c *ResultCollector) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Result(nil), c.results...)
}
