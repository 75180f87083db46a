package domain

// Kind identifies the type of an inbound request. The values match the
// command characters of the wire protocol.
type Kind uint32

const (
	KindBuy    Kind = 'B'
	KindSell   Kind = 'S'
	KindCancel Kind = 'C'
)

// String returns the single-character command code.
func (k Kind) String() string {
	switch k {
	case KindBuy, KindSell, KindCancel:
		return string(rune(k))
	}
	return "?"
}

// Valid reports whether k is one of the known request kinds.
func (k Kind) Valid() bool {
	return k == KindBuy || k == KindSell || k == KindCancel
}

// Side indicates which side of the book an order rests on.
type Side uint8

const (
	SideBuy Side = iota + 1
	SideSell
)

// String returns "buy" or "sell".
func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	}
	return "unknown"
}

// Opposite returns the side an incoming order of side s matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// MaxInstrumentLen is the longest instrument symbol the wire record carries.
const MaxInstrumentLen = 8

// Request is a decoded inbound record. Instrument, Price and Quantity are
// only meaningful for buy and sell requests.
type Request struct {
	Kind       Kind
	OrderID    uint32
	Instrument string
	Price      uint32
	Quantity   uint32
}

// Side returns the book side of a buy or sell request.
func (r Request) Side() Side {
	if r.Kind == KindSell {
		return SideSell
	}
	return SideBuy
}

// Order builds the in-flight order for a buy or sell request stamped with
// the given arrival timestamp.
func (r Request) Order(arrival int64) *Order {
	return &Order{
		OrderID:    r.OrderID,
		Instrument: r.Instrument,
		Side:       r.Side(),
		Price:      r.Price,
		Quantity:   r.Quantity,
		Arrival:    arrival,
	}
}

// Cancel builds the cancel request for r stamped with the given arrival
// timestamp.
func (r Request) Cancel(arrival int64) CancelRequest {
	return CancelRequest{OrderID: r.OrderID, Arrival: arrival}
}

// Order is a limit order either in flight or resting on a book.
//
// Quantity is the remaining quantity and only ever decreases. Matched is
// set the first time the order takes part in an execution and is never
// cleared; a matched order cannot be cancelled.
type Order struct {
	OrderID    uint32
	Instrument string
	Side       Side
	Price      uint32
	Quantity   uint32
	Arrival    int64 // microseconds, stamped on ingestion
	Matched    bool
}

// Crosses reports whether a buy at buyPrice and a sell at sellPrice may
// trade with each other.
func Crosses(buyPrice, sellPrice uint32) bool {
	return buyPrice >= sellPrice
}

// CancelRequest asks for a resting order to be removed from its book.
type CancelRequest struct {
	OrderID uint32
	Arrival int64
}

// Route records where an order id was submitted. Routes are written once
// and kept for the life of the process.
type Route struct {
	Instrument string
	Side       Side
}
