package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/efreitasn/matchingengine/internal/domain"
)

// Text writes one line per event in the engine's classic output format:
//
//	A <id> <instrument> <price> <quantity> <B|S> <arrival> <processed>
//	E <resting_id> <incoming_id> <exec_id> <instrument> <price> <quantity> <arrival> <processed>
//	X <id> <A|R> <arrival> <processed>
//
// Lines from concurrent callers never interleave.
type Text struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewText creates a Text reporter writing to w.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// Report writes the line for ev. The first write error is kept and all
// later events are dropped.
func (t *Text) Report(ev domain.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	_, t.err = io.WriteString(t.w, FormatLine(ev))
}

// Err returns the first write error, if any.
func (t *Text) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// FormatLine renders ev as a newline-terminated output line.
func FormatLine(ev domain.Event) string {
	switch e := ev.(type) {
	case domain.OrderAdded:
		side := "B"
		if e.SellSide {
			side = "S"
		}
		return fmt.Sprintf("A %d %s %d %d %s %d %d\n",
			e.OrderID, e.Instrument, e.Price, e.Quantity, side, e.Arrival, e.Processed)
	case domain.OrderExecuted:
		return fmt.Sprintf("E %d %d %d %s %d %d %d %d\n",
			e.RestingID, e.IncomingID, e.ExecutionID, e.Instrument, e.Price, e.Quantity, e.Arrival, e.Processed)
	case domain.OrderDeleted:
		outcome := "R"
		if e.Accepted {
			outcome = "A"
		}
		return fmt.Sprintf("X %d %s %d %d\n", e.OrderID, outcome, e.Arrival, e.Processed)
	}
	return ""
}
