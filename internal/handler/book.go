package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/service"
)

const defaultEventLimit = 100

// BookHandler handles the read-only book, event and stats endpoints.
type BookHandler struct {
	bookSvc *service.BookService
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(bookSvc *service.BookService) *BookHandler {
	return &BookHandler{bookSvc: bookSvc}
}

// GetBook handles GET /instruments/{symbol}/book.
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	book, err := h.bookSvc.GetBook(symbol)
	if err != nil {
		if errors.Is(err, domain.ErrInstrumentNotFound) {
			WriteError(w, http.StatusNotFound, "instrument_not_found", "no order was ever submitted for "+symbol)
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	WriteJSON(w, http.StatusOK, book)
}

// ListEvents handles GET /events?limit=N.
func (h *BookHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer")
			return
		}
		limit = n
	}

	WriteJSON(w, http.StatusOK, h.bookSvc.RecentEvents(limit))
}

// GetStats handles GET /stats.
func (h *BookHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.bookSvc.Stats())
}
