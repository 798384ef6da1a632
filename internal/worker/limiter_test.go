package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	if l := NewLimiter(10, 3); l.burst != 3 {
		t.Errorf("expected burst 3, got %d", l.burst)
	}
	if l := NewLimiter(10, -1); l.burst != 5 {
		t.Errorf("expected default burst 5, got %d", l.burst)
	}
	if !NewLimiter(0, 1).Unlimited() {
		t.Error("rate 0 should disable throttling")
	}
	if NewLimiter(2, 1).Unlimited() {
		t.Error("rate 2 should throttle")
	}
}

func TestLimiter_PerDirectory(t *testing.T) {
	l := NewLimiter(0.001, 1)

	if !l.Allow("/exams/a/one.txt") {
		t.Fatal("first document in a directory should pass")
	}
	if l.Allow("/exams/a/two.txt") {
		t.Error("second document in the same directory should be throttled")
	}
	if !l.Allow("/exams/b/one.txt") {
		t.Error("another directory has its own budget")
	}
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := NewLimiter(0.001, 1)
	ctx := context.Background()
	if err := l.Wait(ctx, "/d/one.txt"); err != nil {
		t.Fatalf("wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "/d/two.txt"); err == nil {
		t.Error("expected an error when the next token is beyond the deadline")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	l := NewLimiter(0, 1)
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := l.Wait(context.Background(), "/d/x.txt"); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}
	if time.Since(start) > time.Second {
		t.Error("unlimited limiter should not block")
	}
}
