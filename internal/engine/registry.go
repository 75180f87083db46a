package engine

import (
	"sort"
	"sync"

	"github.com/efreitasn/matchingengine/internal/domain"
)

// Registry maps every order id ever submitted to the book and side it was
// routed to, and owns the per-instrument books. A single mutex guards both
// maps so duplicate detection and lazy book creation are totally ordered.
//
// Entries are never deleted.
type Registry struct {
	mu     sync.Mutex
	routes map[uint32]domain.Route
	books  map[string]*InstrumentBook
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		routes: make(map[uint32]domain.Route),
		books:  make(map[string]*InstrumentBook),
	}
}

// Register records the route for a new order id and returns the book for
// its instrument, creating the book on first use. It returns
// domain.ErrDuplicateOrderID, and changes nothing, if the id is already
// registered.
func (r *Registry) Register(orderID uint32, instrument string, side domain.Side) (*InstrumentBook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.routes[orderID]; ok {
		return nil, domain.ErrDuplicateOrderID
	}
	r.routes[orderID] = domain.Route{Instrument: instrument, Side: side}

	book, ok := r.books[instrument]
	if !ok {
		book = NewInstrumentBook(instrument)
		r.books[instrument] = book
	}
	return book, nil
}

// Lookup returns the route and book of a registered order id.
func (r *Registry) Lookup(orderID uint32) (domain.Route, *InstrumentBook, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	route, ok := r.routes[orderID]
	if !ok {
		return domain.Route{}, nil, false
	}
	return route, r.books[route.Instrument], true
}

// Book returns the book for an instrument if any order has been submitted
// for it.
func (r *Registry) Book(instrument string) (*InstrumentBook, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[instrument]
	return book, ok
}

// Instruments returns the known instrument symbols in sorted order.
func (r *Registry) Instruments() []string {
	r.mu.Lock()
	symbols := make([]string, 0, len(r.books))
	for s := range r.books {
		symbols = append(symbols, s)
	}
	r.mu.Unlock()

	sort.Strings(symbols)
	return symbols
}

// Len returns the number of registered order ids.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.routes)
}
