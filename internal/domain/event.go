package domain

// EventType identifies an outbound report.
type EventType string

const (
	EventOrderAdded    EventType = "order.added"
	EventOrderExecuted EventType = "order.executed"
	EventOrderDeleted  EventType = "order.deleted"
)

// Event is a report emitted by the engine. Every event carries the arrival
// timestamp of the request that caused it and the timestamp at which the
// engine finished acting on it.
type Event interface {
	Type() EventType
	Timestamps() (arrival, processed int64)
}

// OrderAdded reports that an order, or the unfilled remainder of one, now
// rests on its book.
type OrderAdded struct {
	OrderID    uint32 `json:"order_id"`
	Instrument string `json:"instrument"`
	Price      uint32 `json:"price"`
	Quantity   uint32 `json:"quantity"`
	SellSide   bool   `json:"is_sell_side"`
	Arrival    int64  `json:"arrival_ts"`
	Processed  int64  `json:"processed_ts"`
}

func (e OrderAdded) Type() EventType { return EventOrderAdded }

func (e OrderAdded) Timestamps() (int64, int64) { return e.Arrival, e.Processed }

// OrderExecuted reports a single trade between a resting order and an
// incoming order. ExecutionID starts at 1 for every submission.
type OrderExecuted struct {
	RestingID   uint32 `json:"resting_order_id"`
	IncomingID  uint32 `json:"incoming_order_id"`
	ExecutionID uint32 `json:"execution_seq"`
	Instrument  string `json:"instrument"`
	Price       uint32 `json:"execution_price"`
	Quantity    uint32 `json:"traded_quantity"`
	Arrival     int64  `json:"arrival_ts"`
	Processed   int64  `json:"processed_ts"`
}

func (e OrderExecuted) Type() EventType { return EventOrderExecuted }

func (e OrderExecuted) Timestamps() (int64, int64) { return e.Arrival, e.Processed }

// OrderDeleted reports the outcome of a cancel request.
type OrderDeleted struct {
	OrderID   uint32 `json:"order_id"`
	Accepted  bool   `json:"success"`
	Arrival   int64  `json:"arrival_ts"`
	Processed int64  `json:"processed_ts"`
}

func (e OrderDeleted) Type() EventType { return EventOrderDeleted }

func (e OrderDeleted) Timestamps() (int64, int64) { return e.Arrival, e.Processed }

// SubmitResult collects what a single submission produced.
type SubmitResult struct {
	Executions []OrderExecuted
	Added      *OrderAdded // nil when the order was fully filled
}

// Filled returns the total quantity traded by the submission.
func (r SubmitResult) Filled() uint32 {
	var total uint32
	for _, e := range r.Executions {
		total += e.Quantity
	}
	return total
}
