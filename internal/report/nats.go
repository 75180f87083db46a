package report

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/efreitasn/matchingengine/internal/domain"
)

// NATS publishes events as JSON envelopes to "<prefix>.<event type>".
type NATS struct {
	nc     *nats.Conn
	prefix string
}

// DialNATS connects to the NATS server at url.
func DialNATS(url, prefix string, opts ...nats.Option) (*NATS, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &NATS{nc: nc, prefix: prefix}, nil
}

// Publish sends ev.
func (n *NATS) Publish(ctx context.Context, ev domain.Event) error {
	payload, err := Encode(ev)
	if err != nil {
		return err
	}
	return n.nc.Publish(Subject(n.prefix, ev), payload)
}

// Close flushes pending messages and closes the connection.
func (n *NATS) Close() error {
	if n.nc == nil {
		return nil
	}
	err := n.nc.Flush()
	n.nc.Close()
	if err != nil {
		return fmt.Errorf("flush nats: %w", err)
	}
	return nil
}
