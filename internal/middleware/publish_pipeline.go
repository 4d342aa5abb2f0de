package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FolioPulse/internal/domain/models"
	domrepo "FolioPulse/internal/domain/repository"
)

type bufferedEvent struct {
	snaps      []models.CanonicalSnapshot
	allocation *models.AllocationResult
}

// BufferedPublisher sits between the pipeline and the event broker. When the
// downstream publish fails the event is buffered and retried in the
// background with backoff, so broker hiccups never fail a request.
type BufferedPublisher struct {
	next    domrepo.Publisher
	metrics domrepo.Metrics
	bufSize int
	bufCh   chan bufferedEvent
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
}

type PublisherOption func(*BufferedPublisher)

// WithBufferSize sets the retry buffer capacity.
func WithBufferSize(n int) PublisherOption {
	return func(p *BufferedPublisher) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewBufferedPublisher wraps next with retry buffering.
func NewBufferedPublisher(next domrepo.Publisher, metrics domrepo.Metrics, opts ...PublisherOption) *BufferedPublisher {
	p := &BufferedPublisher{
		next:    next,
		metrics: metrics,
		bufSize: 1000,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan bufferedEvent, p.bufSize)
	return p
}

// Start launches background flushing of buffered events.
func (p *BufferedPublisher) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case ev := <-p.bufCh:
				if err := p.deliver(ctx, ev); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("publish_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- ev:
					default:
						p.metrics.RecordError("publish_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop halts the background flusher.
func (p *BufferedPublisher) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// PublishSnapshots forwards the batch, buffering it on failure.
func (p *BufferedPublisher) PublishSnapshots(ctx context.Context, snaps []models.CanonicalSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	start := time.Now()
	if err := p.next.PublishSnapshots(ctx, snaps); err != nil {
		p.buffer(bufferedEvent{snaps: snaps})
		return fmt.Errorf("publish snapshots: %w", err)
	}
	p.metrics.RecordLatency("publish_snapshots", time.Since(start).Seconds())
	return nil
}

// PublishAllocation forwards the result, buffering it on failure.
func (p *BufferedPublisher) PublishAllocation(ctx context.Context, res *models.AllocationResult) error {
	if res == nil {
		return fmt.Errorf("allocation result nil")
	}
	start := time.Now()
	if err := p.next.PublishAllocation(ctx, res); err != nil {
		p.buffer(bufferedEvent{allocation: res})
		return fmt.Errorf("publish allocation: %w", err)
	}
	p.metrics.RecordLatency("publish_allocation", time.Since(start).Seconds())
	return nil
}

// Close stops flushing and closes the downstream publisher.
func (p *BufferedPublisher) Close() error {
	p.Stop()
	return p.next.Close()
}

func (p *BufferedPublisher) buffer(ev bufferedEvent) {
	select {
	case p.bufCh <- ev:
	default:
		p.metrics.RecordError("publish_buffer_full")
	}
}

func (p *BufferedPublisher) deliver(ctx context.Context, ev bufferedEvent) error {
	if ev.allocation != nil {
		return p.next.PublishAllocation(ctx, ev.allocation)
	}
	return p.next.PublishSnapshots(ctx, ev.snaps)
}
