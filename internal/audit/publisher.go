package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"registrar/internal/platform/metrics"
	"registrar/pkg/requestcontext"
)

// Publisher hands events to a Worker through a bounded buffer. Emit never
// blocks the caller: when the buffer is full the event is dropped and counted.
type Publisher struct {
	events  chan Event
	logger  *slog.Logger
	metrics *metrics.Metrics

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

type PublisherOption func(*Publisher)

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logger }
}

func WithPublisherMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) { p.metrics = m }
}

func NewPublisher(buffer int, opts ...PublisherOption) *Publisher {
	if buffer <= 0 {
		buffer = 1024
	}
	p := &Publisher{events: make(chan Event, buffer)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps id, time and request id when unset, then enqueues the event.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.events <- event:
	default:
		if p.metrics != nil {
			p.metrics.IncrementAuditDropped()
		}
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit buffer full, event dropped",
				"action", string(event.Action),
				"request_id", event.RequestID,
			)
		}
	}
}

// Events is the channel a Worker drains.
func (p *Publisher) Events() <-chan Event {
	return p.events
}

// Close stops accepting events and closes the channel so the worker can drain
// what is buffered and exit.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.events)
		p.mu.Unlock()
	})
}
