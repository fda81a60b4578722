package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestAcquirePacesSameHost(t *testing.T) {
	l := New(100) // 10ms interval keeps the test fast
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Acquire(ctx, "api.example.com"); err != nil {
			t.Fatalf("acquire: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("expected at least two intervals of pacing, got %v", elapsed)
	}
}

func TestAcquireDifferentHostsIndependent(t *testing.T) {
	l := New(1) // 1s interval would be visible if hosts shared a bucket
	ctx := context.Background()

	start := time.Now()
	if err := l.Acquire(ctx, "a.example.com"); err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	if err := l.Acquire(ctx, "b.example.com"); err != nil {
		t.Fatalf("acquire b: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("hosts should not pace each other, got %v", elapsed)
	}
}

func TestAcquireHonorsContextDeadline(t *testing.T) {
	l := New(0.5) // 2s interval

	ctx := context.Background()
	if err := l.Acquire(ctx, "api.example.com"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := l.Acquire(ctx, "api.example.com"); err == nil {
		t.Fatalf("expected deadline error")
	}
}

func TestAcquireDisabledAndEmptyHost(t *testing.T) {
	disabled := New(0)
	if err := disabled.Acquire(context.Background(), "api.example.com"); err != nil {
		t.Fatalf("disabled limiter should not block: %v", err)
	}

	l := New(0.1)
	if err := l.Acquire(context.Background(), ""); err != nil {
		t.Fatalf("empty host should not block: %v", err)
	}
}

func TestAcquireConcurrentNoDeadlock(t *testing.T) {
	l := New(200)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Acquire(ctx, "api.example.com")
		}()
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("acquires did not finish")
	}
}
