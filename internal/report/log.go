package report

import (
	"context"
	"log/slog"

	"github.com/efreitasn/matchingengine/internal/domain"
)

const eventLevel = slog.LevelInfo

// Log writes each event as a structured slog record at info level.
// Choosing the sink is the opt-in, so it shows under the default level.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a Log reporter.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

// Report logs ev.
func (l *Log) Report(ev domain.Event) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, eventLevel) {
		return
	}
	switch e := ev.(type) {
	case domain.OrderAdded:
		l.logger.LogAttrs(ctx, eventLevel, "order added",
			slog.Any("order_id", e.OrderID),
			slog.String("instrument", e.Instrument),
			slog.Any("price", e.Price),
			slog.Any("quantity", e.Quantity),
			slog.Bool("sell_side", e.SellSide),
			slog.Int64("arrival_ts", e.Arrival),
			slog.Int64("processed_ts", e.Processed),
		)
	case domain.OrderExecuted:
		l.logger.LogAttrs(ctx, eventLevel, "order executed",
			slog.Any("resting_order_id", e.RestingID),
			slog.Any("incoming_order_id", e.IncomingID),
			slog.Any("execution_seq", e.ExecutionID),
			slog.String("instrument", e.Instrument),
			slog.Any("price", e.Price),
			slog.Any("quantity", e.Quantity),
			slog.Int64("arrival_ts", e.Arrival),
			slog.Int64("processed_ts", e.Processed),
		)
	case domain.OrderDeleted:
		l.logger.LogAttrs(ctx, eventLevel, "order deleted",
			slog.Any("order_id", e.OrderID),
			slog.Bool("success", e.Accepted),
			slog.Int64("arrival_ts", e.Arrival),
			slog.Int64("processed_ts", e.Processed),
		)
	}
}
