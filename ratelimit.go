package kotoba

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum wall-clock interval between successive calls to
// the translation collaborator. The clock is anchored to the start of the
// batch rather than to each call, so work already performed inside the
// interval counts toward it and a long-running batch does not accumulate
// drift beyond one interval.
type Pacer struct {
	interval time.Duration
	anchor   time.Time
	mu       sync.Mutex
}

// NewPacer creates a pacer with the given minimum interval. A non-positive
// interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	if interval < 0 {
		interval = 0
	}
	return &Pacer{interval: interval}
}

// Start anchors the pacer to the beginning of a batch. It is called once per
// resource file, not once per entry.
func (p *Pacer) Start(t time.Time) {
	p.mu.Lock()
	p.anchor = t
	p.mu.Unlock()
}

// Wait blocks for max(0, interval - elapsedSinceAnchor), then advances the
// anchor. It is called once per outbound translation request. A batch that
// already exceeded the interval proceeds immediately. Returns the context
// error if cancelled while waiting.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	if p.anchor.IsZero() {
		p.anchor = time.Now()
		p.mu.Unlock()
		return nil
	}
	delay := p.interval - time.Since(p.anchor)
	p.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	p.mu.Lock()
	p.anchor = time.Now()
	p.mu.Unlock()
	return nil
}

// Interval returns the configured minimum interval.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}
