package kotoba

import (
	"context"
	"testing"
	"time"
)

func TestPacer_FirstWaitCountsElapsedWork(t *testing.T) {
	p := NewPacer(100 * time.Millisecond)
	p.Start(time.Now().Add(-60 * time.Millisecond)) // 60ms of work already done

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	elapsed := time.Since(start)

	// Only the remainder of the interval should be slept.
	if elapsed >= 100*time.Millisecond {
		t.Errorf("Wait slept the full interval (%v), want only the remainder", elapsed)
	}
	if elapsed < 20*time.Millisecond {
		t.Errorf("Wait returned too quickly: %v", elapsed)
	}
}

func TestPacer_BatchAlreadyOverInterval(t *testing.T) {
	p := NewPacer(50 * time.Millisecond)
	p.Start(time.Now().Add(-time.Second))

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Errorf("Expected immediate return, waited %v", elapsed)
	}
}

func TestPacer_ZeroInterval(t *testing.T) {
	p := NewPacer(0)
	p.Start(time.Now())

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("Wait %d failed: %v", i, err)
		}
	}

	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Zero interval should not block, waited %v", elapsed)
	}
}

func TestPacer_NegativeIntervalClamped(t *testing.T) {
	p := NewPacer(-time.Second)
	if p.Interval() != 0 {
		t.Errorf("Expected negative interval clamped to 0, got %v", p.Interval())
	}
}

func TestPacer_RateBound(t *testing.T) {
	// For N calls with interval I, the span between the first and last call
	// must be at least (N-1)*I minus one interval of tolerance, since the
	// anchor starts at the batch rather than at the first call.
	const (
		n        = 4
		interval = 40 * time.Millisecond
	)

	p := NewPacer(interval)
	p.Start(time.Now())

	var first, last time.Time
	for i := 0; i < n; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("Wait %d failed: %v", i, err)
		}
		if i == 0 {
			first = time.Now()
		}
		last = time.Now()
	}

	span := last.Sub(first)
	min := (n-1)*interval - interval
	if span < min {
		t.Errorf("Span between first and last call %v, want at least %v", span, min)
	}
}

func TestPacer_WaitCancelled(t *testing.T) {
	p := NewPacer(time.Minute)
	p.Start(time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := p.Wait(ctx); err == nil {
		t.Error("Expected error when context cancelled")
	}
}

func TestPacer_WaitWithoutStart(t *testing.T) {
	p := NewPacer(time.Minute)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	// No anchor yet: the first call establishes it and proceeds.
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Errorf("Expected immediate return, waited %v", elapsed)
	}
}
