package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrUnknownKind        = errors.New("unknown_kind")
	ErrInvalidInstrument  = errors.New("invalid_instrument")
	ErrMalformedRecord    = errors.New("malformed_record")
	ErrOrderNotFound      = errors.New("order_not_found")
	ErrInstrumentNotFound = errors.New("instrument_not_found")
	ErrDuplicateOrderID   = errors.New("duplicate_order_id")
	ErrUnsupportedFormat  = errors.New("unsupported_format")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProtocolViolation is the fault raised when a client breaks the protocol
// contract by reusing an order id. It is raised with panic, never returned:
// routing state cannot be trusted once it happens.
type ProtocolViolation struct {
	OrderID uint32
}

func (p *ProtocolViolation) Error() string {
	return fmt.Sprintf("protocol violation: order id %d already registered", p.OrderID)
}

// Unwrap lets callers match the fault with errors.Is(err, ErrDuplicateOrderID).
func (p *ProtocolViolation) Unwrap() error {
	return ErrDuplicateOrderID
}

// ValidateInstrument checks that a symbol fits the wire record.
func ValidateInstrument(symbol string) error {
	if symbol == "" || len(symbol) > MaxInstrumentLen {
		return fmt.Errorf("%w: %q must be 1-%d bytes", ErrInvalidInstrument, symbol, MaxInstrumentLen)
	}
	for i := 0; i < len(symbol); i++ {
		c := symbol[i]
		if c <= ' ' || c > '~' {
			return fmt.Errorf("%w: %q contains a non-printable byte", ErrInvalidInstrument, symbol)
		}
	}
	return nil
}
