package engine

import (
	"sync"

	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/google/btree"
)

// restingOrder is a single order held on one side of a book. seq records
// insertion order and breaks ties between equal arrival timestamps.
type restingOrder struct {
	order *domain.Order
	seq   uint64
}

// arrivalLess orders resting orders by arrival timestamp ascending, then
// by insertion order. Min() is the earliest-arrived order.
func arrivalLess(a, b *restingOrder) bool {
	if a.order.Arrival != b.order.Arrival {
		return a.order.Arrival < b.order.Arrival
	}
	return a.seq < b.seq
}

// bookSide is one side of an InstrumentBook. All fields are guarded by mu.
type bookSide struct {
	mu      sync.Mutex
	orders  *btree.BTreeG[*restingOrder]
	index   map[uint32]*restingOrder // order_id → entry
	nextSeq uint64
}

func newBookSide() *bookSide {
	const degree = 32
	return &bookSide{
		orders: btree.NewG[*restingOrder](degree, arrivalLess),
		index:  make(map[uint32]*restingOrder),
	}
}

// insert must be called with mu held.
func (s *bookSide) insert(o *domain.Order) {
	s.nextSeq++
	entry := &restingOrder{order: o, seq: s.nextSeq}
	s.orders.ReplaceOrInsert(entry)
	s.index[o.OrderID] = entry
}

// remove must be called with mu held.
func (s *bookSide) remove(entry *restingOrder) {
	s.orders.Delete(entry)
	delete(s.index, entry.order.OrderID)
}

// InstrumentBook holds the resting orders of a single instrument. The bid
// and ask sides are locked independently; a submission holds the opposite
// side's lock while matching and its own side's lock only to rest the
// remainder.
type InstrumentBook struct {
	symbol string
	bids   *bookSide
	asks   *bookSide
}

// NewInstrumentBook creates an empty book for the given symbol.
func NewInstrumentBook(symbol string) *InstrumentBook {
	return &InstrumentBook{
		symbol: symbol,
		bids:   newBookSide(),
		asks:   newBookSide(),
	}
}

// Symbol returns the instrument this book trades.
func (b *InstrumentBook) Symbol() string {
	return b.symbol
}

func (b *InstrumentBook) side(s domain.Side) *bookSide {
	if s == domain.SideSell {
		return b.asks
	}
	return b.bids
}

// Submit matches the incoming order against the opposite side and rests
// any unfilled remainder on its own side.
//
// Every resting order whose price crosses the incoming price is eligible.
// Eligible orders are consumed strictly by arrival time, earliest first;
// price only decides eligibility, never priority among eligible orders.
// Each trade executes at the resting order's price.
func (b *InstrumentBook) Submit(o *domain.Order, rep Reporter, clock domain.Clock) domain.SubmitResult {
	var result domain.SubmitResult
	if o.Quantity == 0 {
		return result
	}

	opposite := b.side(o.Side.Opposite())
	opposite.mu.Lock()

	var (
		filled      []*restingOrder
		executionID uint32
	)
	opposite.orders.Ascend(func(entry *restingOrder) bool {
		resting := entry.order
		if !eligible(o, resting) {
			return true
		}

		qty := min(o.Quantity, resting.Quantity)
		executionID++
		o.Quantity -= qty
		resting.Quantity -= qty
		o.Matched = true
		resting.Matched = true

		ev := domain.OrderExecuted{
			RestingID:   resting.OrderID,
			IncomingID:  o.OrderID,
			ExecutionID: executionID,
			Instrument:  b.symbol,
			Price:       resting.Price,
			Quantity:    qty,
			Arrival:     o.Arrival,
			Processed:   clock.Now(),
		}
		rep.Report(ev)
		result.Executions = append(result.Executions, ev)

		// The tree must not be mutated while it is being walked.
		if resting.Quantity == 0 {
			filled = append(filled, entry)
		}
		return o.Quantity > 0
	})
	for _, entry := range filled {
		opposite.remove(entry)
	}
	opposite.mu.Unlock()

	if o.Quantity == 0 {
		return result
	}

	own := b.side(o.Side)
	own.mu.Lock()
	own.insert(o)
	added := domain.OrderAdded{
		OrderID:    o.OrderID,
		Instrument: b.symbol,
		Price:      o.Price,
		Quantity:   o.Quantity,
		SellSide:   o.Side == domain.SideSell,
		Arrival:    o.Arrival,
		Processed:  clock.Now(),
	}
	rep.Report(added)
	own.mu.Unlock()

	result.Added = &added
	return result
}

// eligible reports whether resting may trade against incoming.
func eligible(incoming, resting *domain.Order) bool {
	if incoming.Side == domain.SideBuy {
		return domain.Crosses(incoming.Price, resting.Price)
	}
	return domain.Crosses(resting.Price, incoming.Price)
}

// Cancel removes the order from the given side if it is still resting and
// has never been matched. It reports whether the order was removed.
func (b *InstrumentBook) Cancel(orderID uint32, side domain.Side) bool {
	s := b.side(side)
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.index[orderID]
	if !ok || entry.order.Matched {
		return false
	}
	s.remove(entry)
	return true
}

// RestingOrder is a copy of an order resting on a book.
type RestingOrder struct {
	OrderID  uint32 `json:"order_id"`
	Price    uint32 `json:"price"`
	Quantity uint32 `json:"quantity"`
	Arrival  int64  `json:"arrival_ts"`
	Matched  bool   `json:"matched"`
}

// BookSnapshot is a point-in-time copy of both sides of a book, each in
// matching priority order. The two sides are copied under their own locks
// and so are not an atomic view of the whole book.
type BookSnapshot struct {
	Instrument string         `json:"instrument"`
	Bids       []RestingOrder `json:"bids"`
	Asks       []RestingOrder `json:"asks"`
}

// Snapshot copies the resting orders of both sides.
func (b *InstrumentBook) Snapshot() BookSnapshot {
	return BookSnapshot{
		Instrument: b.symbol,
		Bids:       b.bids.snapshot(),
		Asks:       b.asks.snapshot(),
	}
}

func (s *bookSide) snapshot() []RestingOrder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RestingOrder, 0, s.orders.Len())
	s.orders.Ascend(func(entry *restingOrder) bool {
		out = append(out, RestingOrder{
			OrderID:  entry.order.OrderID,
			Price:    entry.order.Price,
			Quantity: entry.order.Quantity,
			Arrival:  entry.order.Arrival,
			Matched:  entry.order.Matched,
		})
		return true
	})
	return out
}

// BidCount returns the number of orders resting on the bid side.
func (b *InstrumentBook) BidCount() int {
	b.bids.mu.Lock()
	defer b.bids.mu.Unlock()
	return b.bids.orders.Len()
}

// AskCount returns the number of orders resting on the ask side.
func (b *InstrumentBook) AskCount() int {
	b.asks.mu.Lock()
	defer b.asks.mu.Unlock()
	return b.asks.orders.Len()
}
