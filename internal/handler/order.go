package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// submitOrderRequest is the JSON request body for POST /orders.
type submitOrderRequest struct {
	OrderID    uint32 `json:"order_id"`
	Side       string `json:"side"`
	Instrument string `json:"instrument"`
	Price      uint32 `json:"price"`
	Quantity   uint32 `json:"quantity"`
}

// submitOrderResponse is the JSON response for POST /orders. Executions is
// always present; Added is null when the order was fully filled.
type submitOrderResponse struct {
	OrderID        uint32                 `json:"order_id"`
	FilledQuantity uint32                 `json:"filled_quantity"`
	Executions     []domain.OrderExecuted `json:"executions"`
	Added          *domain.OrderAdded     `json:"added"`
}

// SubmitOrder handles POST /orders.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := h.orderSvc.SubmitOrder(service.SubmitOrderRequest{
		OrderID:    req.OrderID,
		Side:       req.Side,
		Instrument: req.Instrument,
		Price:      req.Price,
		Quantity:   req.Quantity,
	})
	if err != nil {
		mapOrderError(w, err)
		return
	}

	executions := res.Executions
	if executions == nil {
		executions = []domain.OrderExecuted{}
	}
	WriteJSON(w, http.StatusCreated, submitOrderResponse{
		OrderID:        req.OrderID,
		FilledQuantity: res.Filled(),
		Executions:     executions,
		Added:          res.Added,
	})
}

// CancelOrder handles DELETE /orders/{order_id}. A known order that can no
// longer be cancelled answers 200 with accepted=false.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "order_id"), 10, 32)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "order_id must be an unsigned 32-bit integer")
		return
	}

	res, err := h.orderSvc.CancelOrder(uint32(id))
	if err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, res)
}

func mapOrderError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrDuplicateOrderID):
		WriteError(w, http.StatusConflict, "duplicate_order_id", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "order_not_found", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
