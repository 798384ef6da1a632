package worker

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles document intake per source directory, so one large
// folder on a slow mount does not starve the others.
type Limiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewLimiter creates a limiter allowing docsPerSecond per directory.
// docsPerSecond <= 0 disables throttling.
func NewLimiter(docsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	limit := rate.Limit(docsPerSecond)
	if docsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// Wait blocks until path may be processed or ctx is done
func (l *Limiter) Wait(ctx context.Context, path string) error {
	return l.forDir(filepath.Dir(path)).Wait(ctx)
}

// Allow reports whether path may be processed now, consuming a token if so
func (l *Limiter) Allow(path string) bool {
	return l.forDir(filepath.Dir(path)).Allow()
}

// Unlimited reports whether throttling is off
func (l *Limiter) Unlimited() bool { return l.limit == rate.Inf }

func (l *Limiter) forDir(dir string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.limiters[dir]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limiters[dir]; ok {
		return lim
	}
	lim = rate.NewLimiter(l.limit, l.burst)
	l.limiters[dir] = lim
	return lim
}
