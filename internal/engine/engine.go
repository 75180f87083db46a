package engine

import (
	"github.com/efreitasn/matchingengine/internal/domain"
)

// Reporter receives the events produced by the engine. Implementations are
// called from many goroutines at once and, for a single book side, while
// that side's lock is held; they must be safe for concurrent use and must
// not call back into the engine.
type Reporter interface {
	Report(ev domain.Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ev domain.Event)

// Report calls f.
func (f ReporterFunc) Report(ev domain.Event) { f(ev) }

// Discard is a Reporter that drops every event.
var Discard Reporter = ReporterFunc(func(domain.Event) {})

// Engine routes submissions and cancellations to per-instrument books.
//
// The registry lock is only held while routing; it is always released
// before a book lock is taken, so work on different instruments proceeds
// in parallel.
type Engine struct {
	registry *Registry
	reporter Reporter
	clock    domain.Clock
}

// NewEngine creates an Engine that reports to rep and stamps processing
// times with clock.
func NewEngine(rep Reporter, clock domain.Clock) *Engine {
	if rep == nil {
		rep = Discard
	}
	return &Engine{
		registry: NewRegistry(),
		reporter: rep,
		clock:    clock,
	}
}

// Clock returns the clock the engine stamps events with.
func (e *Engine) Clock() domain.Clock {
	return e.clock
}

// HandleSubmit registers a new buy or sell order and runs it through its
// instrument's book.
//
// Reusing an order id is a protocol violation: HandleSubmit panics with a
// *domain.ProtocolViolation and leaves all state untouched.
func (e *Engine) HandleSubmit(o *domain.Order) domain.SubmitResult {
	book, err := e.registry.Register(o.OrderID, o.Instrument, o.Side)
	if err != nil {
		panic(&domain.ProtocolViolation{OrderID: o.OrderID})
	}
	return book.Submit(o, e.reporter, e.clock)
}

// HandleCancel cancels a resting order and reports the outcome. Unknown
// ids fail without touching any book.
func (e *Engine) HandleCancel(req domain.CancelRequest) bool {
	_, accepted := e.Cancel(req)
	return accepted
}

// Cancel is HandleCancel that also tells whether the id was registered.
// Both results come from the same registry lookup, so they agree even
// when the id is submitted concurrently.
func (e *Engine) Cancel(req domain.CancelRequest) (known, accepted bool) {
	route, book, known := e.registry.Lookup(req.OrderID)
	if known {
		accepted = book.Cancel(req.OrderID, route.Side)
	}
	e.reporter.Report(domain.OrderDeleted{
		OrderID:   req.OrderID,
		Accepted:  accepted,
		Arrival:   req.Arrival,
		Processed: e.clock.Now(),
	})
	return known, accepted
}

// Handle dispatches a decoded request stamped with its arrival time.
func (e *Engine) Handle(req domain.Request, arrival int64) {
	switch req.Kind {
	case domain.KindCancel:
		e.HandleCancel(req.Cancel(arrival))
	default:
		e.HandleSubmit(req.Order(arrival))
	}
}

// Registered reports whether an order id has already been submitted.
func (e *Engine) Registered(orderID uint32) bool {
	_, _, ok := e.registry.Lookup(orderID)
	return ok
}

// Snapshot returns a copy of the resting orders of an instrument.
func (e *Engine) Snapshot(instrument string) (BookSnapshot, bool) {
	book, ok := e.registry.Book(instrument)
	if !ok {
		return BookSnapshot{}, false
	}
	return book.Snapshot(), true
}

// Stats summarizes the registry and the books.
type Stats struct {
	Orders      int            `json:"orders"`
	Instruments int            `json:"instruments"`
	Resting     map[string]int `json:"resting"`
}

// Stats returns the number of registered orders and instruments, and the
// number of resting orders per instrument.
func (e *Engine) Stats() Stats {
	symbols := e.registry.Instruments()
	st := Stats{
		Orders:      e.registry.Len(),
		Instruments: len(symbols),
		Resting:     make(map[string]int, len(symbols)),
	}
	for _, s := range symbols {
		book, _ := e.registry.Book(s)
		st.Resting[s] = book.BidCount() + book.AskCount()
	}
	return st
}
