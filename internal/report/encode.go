package report

import (
	"github.com/segmentio/encoding/json"

	"github.com/efreitasn/matchingengine/internal/domain"
)

// Envelope is the JSON form of an event published to a broker or served
// over HTTP.
type Envelope struct {
	Type  domain.EventType `json:"type"`
	Event domain.Event     `json:"event"`
}

// Wrap puts ev in an Envelope.
func Wrap(ev domain.Event) Envelope {
	return Envelope{Type: ev.Type(), Event: ev}
}

// Encode renders ev as a JSON envelope: {"type": ..., "event": {...}}.
func Encode(ev domain.Event) ([]byte, error) {
	return json.Marshal(Wrap(ev))
}

// Subject returns the broker subject for ev under prefix, e.g.
// "engine.events.order.executed".
func Subject(prefix string, ev domain.Event) string {
	if prefix == "" {
		return string(ev.Type())
	}
	return prefix + "." + string(ev.Type())
}
