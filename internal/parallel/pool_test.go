package parallel

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestPoolSubmitWait(t *testing.T) {
	p, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Release()

	var count int64
	const n = 200
	for i := 0; i < n; i++ {
		if err := p.Submit(func() error {
			atomic.AddInt64(&count, 1)
			return nil
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	p.Wait()

	if got := atomic.LoadInt64(&count); got != n {
		t.Errorf("count = %d, want %d", got, n)
	}

	stats := p.Stats()
	if stats.Completed != n {
		t.Errorf("Completed = %d, want %d", stats.Completed, n)
	}
}

func TestPoolRecordsErrors(t *testing.T) {
	p, err := New(Options{Size: 4, PreAlloc: true, MaxBlocking: 100})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Release()

	_ = p.Submit(func() error { return nil })
	_ = p.Submit(func() error { return context.Canceled })
	p.Wait()

	if stats := p.Stats(); stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
}

func TestBackpressureControllerAdaptiveSlowsDown(t *testing.T) {
	bc := NewBackpressureController(&BackpressureConfig{
		Strategy:      StrategyAdaptive,
		MaxQueueSize:  100,
		HighWatermark: 0.5,
		LowWatermark:  0.2,
		MinRate:       time.Microsecond,
		MaxRate:       time.Millisecond,
	})

	if !bc.CheckPressure(10, 100) {
		t.Fatalf("low pressure should proceed")
	}
	if bc.IsPressured() {
		t.Fatalf("should not be pressured yet")
	}

	if !bc.CheckPressure(90, 100) {
		t.Fatalf("adaptive strategy should still proceed, just slower")
	}
	if !bc.IsPressured() {
		t.Fatalf("should be pressured above high watermark")
	}
}

func TestWaitRateLimitNoLimiterIsNoop(t *testing.T) {
	if err := WaitRateLimit(context.Background()); err != nil {
		t.Errorf("WaitRateLimit with no limiter: %v", err)
	}
}

func TestWaitRateLimitRespectsLimiter(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(1000), 1)
	ctx := WithRateLimiter(context.Background(), limiter)

	if err := WaitRateLimit(ctx); err != nil {
		t.Errorf("first WaitRateLimit: %v", err)
	}
}
