package report

import (
	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/metrics"
)

// Metrics counts events into the process Prometheus collectors.
type Metrics struct{}

// NewMetrics creates a Metrics reporter.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Report updates the collectors for ev.
func (Metrics) Report(ev domain.Event) {
	arrival, processed := ev.Timestamps()
	metrics.EventLatency.WithLabelValues(string(ev.Type())).Observe(float64(processed-arrival) / 1e6)

	switch e := ev.(type) {
	case domain.OrderAdded:
		side := domain.SideBuy
		if e.SellSide {
			side = domain.SideSell
		}
		metrics.OrdersAddedTotal.WithLabelValues(side.String()).Inc()
	case domain.OrderExecuted:
		metrics.ExecutionsTotal.WithLabelValues(e.Instrument).Inc()
		metrics.TradedQuantityTotal.WithLabelValues(e.Instrument).Add(float64(e.Quantity))
	case domain.OrderDeleted:
		result := "rejected"
		if e.Accepted {
			result = "accepted"
		}
		metrics.CancelsTotal.WithLabelValues(result).Inc()
	}
}
