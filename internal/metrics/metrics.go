// Package metrics holds the Prometheus collectors of the engine process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/efreitasn/matchingengine/internal/engine"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_requests_total",
		Help: "Requests handed to the engine, partitioned by kind and source",
	}, []string{"kind", "source"}) // kind: B/S/C, source: stream/http

	ExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_executions_total",
		Help: "Trades executed, partitioned by instrument",
	}, []string{"instrument"})
	TradedQuantityTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_traded_quantity_total",
		Help: "Quantity traded, partitioned by instrument",
	}, []string{"instrument"})
	OrdersAddedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_orders_added_total",
		Help: "Orders (or remainders) rested on a book",
	}, []string{"side"})
	CancelsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_cancels_total",
		Help: "Cancel requests, partitioned by outcome",
	}, []string{"result"}) // accepted/rejected

	EventLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "engine_event_latency_seconds",
		Help:    "Time between request arrival and the engine reporting an event",
		Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12), // 1µs -> ~4s
	}, []string{"type"})

	ConnsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "engine_stream_conns",
		Help: "Active request stream connections",
	})
	ConnOpenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_stream_conn_open_total",
		Help: "Total request stream connections accepted",
	})
	DecodeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_decode_errors_total",
		Help: "Connections closed because of a malformed record",
	})

	RegisteredOrders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "engine_registered_orders",
		Help: "Order ids ever submitted",
	})
	RestingOrders = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "engine_resting_orders",
		Help: "Orders resting on a book, partitioned by instrument",
	}, []string{"instrument"})

	ReportDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_report_dropped_total",
		Help: "Events dropped by an asynchronous sink",
	}, []string{"sink", "why"}) // why: full/error
)

// OnConnOpen records a newly accepted stream connection.
func OnConnOpen() {
	ConnsActive.Inc()
	ConnOpenTotal.Inc()
}

// OnConnClose records a closed stream connection.
func OnConnClose() {
	ConnsActive.Dec()
}

// ObserveStats publishes a sample of the engine's registry and books.
func ObserveStats(st engine.Stats) {
	RegisteredOrders.Set(float64(st.Orders))
	for instrument, n := range st.Resting {
		RestingOrders.WithLabelValues(instrument).Set(float64(n))
	}
}
