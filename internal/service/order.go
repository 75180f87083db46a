package service

import (
	"fmt"

	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/engine"
	"github.com/efreitasn/matchingengine/internal/metrics"
)

// SubmitOrderRequest represents the input for order submission.
type SubmitOrderRequest struct {
	OrderID    uint32
	Side       string // "buy" or "sell"
	Instrument string
	Price      uint32
	Quantity   uint32
}

// OrderService feeds orders and cancellations received over HTTP into the
// engine, next to the binary and text streams.
type OrderService struct {
	engine *engine.Engine
	clock  domain.Clock
}

// NewOrderService creates a new OrderService stamping arrivals with the
// engine's clock.
func NewOrderService(e *engine.Engine) *OrderService {
	return &OrderService{engine: e, clock: e.Clock()}
}

// SubmitOrder validates the request and runs it through the engine.
//
// A reused order id returns domain.ErrDuplicateOrderID instead of taking
// the process down: an HTTP caller gets a 409 and no state changes.
func (s *OrderService) SubmitOrder(req SubmitOrderRequest) (res domain.SubmitResult, err error) {
	var kind domain.Kind
	switch req.Side {
	case "buy":
		kind = domain.KindBuy
	case "sell":
		kind = domain.KindSell
	default:
		return res, &domain.ValidationError{
			Message: fmt.Sprintf("Unknown side: %q. Must be one of: buy, sell", req.Side),
		}
	}
	if err := domain.ValidateInstrument(req.Instrument); err != nil {
		return res, &domain.ValidationError{
			Message: fmt.Sprintf("instrument must be 1 to %d printable characters without spaces", domain.MaxInstrumentLen),
		}
	}
	if req.Quantity == 0 {
		return res, &domain.ValidationError{Message: "quantity must be a positive integer"}
	}

	r := domain.Request{
		Kind:       kind,
		OrderID:    req.OrderID,
		Instrument: req.Instrument,
		Price:      req.Price,
		Quantity:   req.Quantity,
	}
	arrival := s.clock.Now()
	metrics.RequestsTotal.WithLabelValues(kind.String(), "http").Inc()

	defer func() {
		if p := recover(); p != nil {
			pv, ok := p.(*domain.ProtocolViolation)
			if !ok {
				panic(p)
			}
			err = pv
		}
	}()
	return s.engine.HandleSubmit(r.Order(arrival)), nil
}

// CancelResult is the outcome of a cancel request.
type CancelResult struct {
	OrderID  uint32 `json:"order_id"`
	Accepted bool   `json:"accepted"`
}

// CancelOrder asks the engine to cancel a resting order. The outcome event
// is always reported; unknown ids additionally return
// domain.ErrOrderNotFound.
func (s *OrderService) CancelOrder(orderID uint32) (CancelResult, error) {
	arrival := s.clock.Now()
	metrics.RequestsTotal.WithLabelValues(domain.KindCancel.String(), "http").Inc()

	known, accepted := s.engine.Cancel(domain.CancelRequest{OrderID: orderID, Arrival: arrival})
	if !known {
		return CancelResult{}, domain.ErrOrderNotFound
	}
	return CancelResult{OrderID: orderID, Accepted: accepted}, nil
}
