package service

import (
	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/engine"
	"github.com/efreitasn/matchingengine/internal/report"
)

// BookService serves read-only views of the engine: resting orders per
// instrument, registry counters and the most recent events.
type BookService struct {
	engine *engine.Engine
	recent *report.Recorder
}

// NewBookService creates a new BookService. recent may be nil, in which
// case no events are served.
func NewBookService(e *engine.Engine, recent *report.Recorder) *BookService {
	return &BookService{engine: e, recent: recent}
}

// GetBook returns the resting orders of an instrument in priority order.
// It returns domain.ErrInstrumentNotFound if no order was ever submitted
// for the instrument.
func (s *BookService) GetBook(instrument string) (engine.BookSnapshot, error) {
	snap, ok := s.engine.Snapshot(instrument)
	if !ok {
		return engine.BookSnapshot{}, domain.ErrInstrumentNotFound
	}
	return snap, nil
}

// Stats returns the engine counters.
func (s *BookService) Stats() engine.Stats {
	return s.engine.Stats()
}

// RecentEvents returns up to limit of the newest events, oldest first.
func (s *BookService) RecentEvents(limit int) []report.Envelope {
	if s.recent == nil {
		return []report.Envelope{}
	}
	events := s.recent.Recent(limit)
	out := make([]report.Envelope, len(events))
	for i, ev := range events {
		out[i] = report.Wrap(ev)
	}
	return out
}
