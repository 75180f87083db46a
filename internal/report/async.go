package report

import (
	"context"
	"log/slog"

	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/metrics"
)

// Publisher delivers an encoded event to a broker.
type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// Async decouples a slow Publisher from the engine. Report never blocks:
// when the buffer is full the event is dropped and counted.
type Async struct {
	name   string
	ch     chan domain.Event
	pub    Publisher
	logger *slog.Logger
}

// NewAsync creates an Async sink with a buffer of size events.
func NewAsync(name string, pub Publisher, size int, logger *slog.Logger) *Async {
	if size <= 0 {
		size = 1 << 16
	}
	return &Async{
		name:   name,
		ch:     make(chan domain.Event, size),
		pub:    pub,
		logger: logger,
	}
}

// Report queues ev for publishing.
func (a *Async) Report(ev domain.Event) {
	select {
	case a.ch <- ev:
	default:
		metrics.ReportDroppedTotal.WithLabelValues(a.name, "full").Inc()
	}
}

// Run publishes queued events until ctx is cancelled, then drains what is
// already buffered.
func (a *Async) Run(ctx context.Context) {
	for {
		select {
		case ev := <-a.ch:
			a.publish(ctx, ev)
		case <-ctx.Done():
			a.drain()
			return
		}
	}
}

func (a *Async) drain() {
	for {
		select {
		case ev := <-a.ch:
			a.publish(context.Background(), ev)
		default:
			return
		}
	}
}

func (a *Async) publish(ctx context.Context, ev domain.Event) {
	if err := a.pub.Publish(ctx, ev); err != nil {
		metrics.ReportDroppedTotal.WithLabelValues(a.name, "error").Inc()
		a.logger.Warn("publish failed",
			slog.String("sink", a.name),
			slog.String("event", string(ev.Type())),
			slog.String("error", err.Error()),
		)
	}
}
