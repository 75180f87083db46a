package report

import (
	"sync"

	"github.com/efreitasn/matchingengine/internal/domain"
)

// Recorder keeps the most recent events in a fixed-size ring, oldest
// first.
type Recorder struct {
	mu     sync.RWMutex
	events []domain.Event
	next   int
	full   bool
}

// NewRecorder creates a Recorder holding up to capacity events.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 1
	}
	return &Recorder{events: make([]domain.Event, capacity)}
}

// Report stores ev, evicting the oldest event when full.
func (r *Recorder) Report(ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[r.next] = ev
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.full = true
	}
}

// Recent returns up to n of the newest events in chronological order.
// n <= 0 returns everything held.
func (r *Recorder) Recent(n int) []domain.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	size := r.next
	if r.full {
		size = len(r.events)
	}
	if n <= 0 || n > size {
		n = size
	}

	// Return a copy to avoid callers reading the ring while it is written.
	out := make([]domain.Event, n)
	start := r.next - n
	if start < 0 {
		start += len(r.events)
	}
	for i := 0; i < n; i++ {
		out[i] = r.events[(start+i)%len(r.events)]
	}
	return out
}
