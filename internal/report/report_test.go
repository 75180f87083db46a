package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/metrics"
)

var (
	added    = domain.OrderAdded{OrderID: 1, Instrument: "INSTR", Price: 100, Quantity: 10, SellSide: false, Arrival: 11, Processed: 12}
	executed = domain.OrderExecuted{RestingID: 1, IncomingID: 2, ExecutionID: 1, Instrument: "INSTR", Price: 100, Quantity: 4, Arrival: 13, Processed: 14}
	deleted  = domain.OrderDeleted{OrderID: 3, Accepted: true, Arrival: 15, Processed: 16}
)

func TestFormatLine(t *testing.T) {
	assert.Equal(t, "A 1 INSTR 100 10 B 11 12\n", FormatLine(added))
	assert.Equal(t, "E 1 2 1 INSTR 100 4 13 14\n", FormatLine(executed))
	assert.Equal(t, "X 3 A 15 16\n", FormatLine(deleted))

	sellAdded := added
	sellAdded.SellSide = true
	assert.Equal(t, "A 1 INSTR 100 10 S 11 12\n", FormatLine(sellAdded))

	rejected := deleted
	rejected.Accepted = false
	assert.Equal(t, "X 3 R 15 16\n", FormatLine(rejected))
}

func TestText_ConcurrentLinesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	text := NewText(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text.Report(executed)
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 50)
	for _, l := range lines {
		assert.Equal(t, "E 1 2 1 INSTR 100 4 13 14", l)
	}
	assert.NoError(t, text.Err())
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("broken pipe")
}

func TestText_StopsAfterWriteError(t *testing.T) {
	w := &failingWriter{}
	text := NewText(w)

	text.Report(added)
	text.Report(added)

	assert.Error(t, text.Err())
	assert.Equal(t, 1, w.calls)
}

func TestRecorder_RecentWrapsAround(t *testing.T) {
	rec := NewRecorder(3)
	assert.Empty(t, rec.Recent(0))

	for i := uint32(1); i <= 5; i++ {
		rec.Report(domain.OrderDeleted{OrderID: i})
	}

	all := rec.Recent(0)
	require.Len(t, all, 3)
	for i, want := range []uint32{3, 4, 5} {
		assert.Equal(t, want, all[i].(domain.OrderDeleted).OrderID)
	}

	last := rec.Recent(2)
	require.Len(t, last, 2)
	assert.Equal(t, uint32(4), last[0].(domain.OrderDeleted).OrderID)
	assert.Equal(t, uint32(5), last[1].(domain.OrderDeleted).OrderID)
}

func TestRecorder_PartiallyFilled(t *testing.T) {
	rec := NewRecorder(10)
	rec.Report(added)
	rec.Report(executed)

	got := rec.Recent(5)
	require.Len(t, got, 2)
	assert.Equal(t, added, got[0])
	assert.Equal(t, executed, got[1])
}

func TestFanout(t *testing.T) {
	a, b := NewRecorder(4), NewRecorder(4)

	single := Fanout(a)
	assert.Same(t, a, single)

	Fanout(a, b).Report(deleted)
	assert.Len(t, a.Recent(0), 1)
	assert.Len(t, b.Recent(0), 1)
}

func TestEncode(t *testing.T) {
	payload, err := Encode(executed)
	require.NoError(t, err)

	var got struct {
		Type  string               `json:"type"`
		Event domain.OrderExecuted `json:"event"`
	}
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, "order.executed", got.Type)
	assert.Equal(t, executed, got.Event)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "engine.events.order.added", Subject("engine.events", added))
	assert.Equal(t, "order.deleted", Subject("", deleted))
}

type fakePublisher struct {
	mu    sync.Mutex
	got   []domain.Event
	fail  bool
	block chan struct{}
}

func (p *fakePublisher) Publish(ctx context.Context, ev domain.Event) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("unavailable")
	}
	p.got = append(p.got, ev)
	return nil
}

func (p *fakePublisher) events() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Event(nil), p.got...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAsync_PublishesAndDrainsOnShutdown(t *testing.T) {
	pub := &fakePublisher{}
	async := NewAsync("test", pub, 16, discardLogger())

	async.Report(added)
	async.Report(executed)
	async.Report(deleted)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	async.Run(ctx)

	got := pub.events()
	require.Len(t, got, 3)
	assert.Equal(t, domain.Event(added), got[0])
	assert.Equal(t, domain.Event(deleted), got[2])
}

func TestAsync_DropsWhenFull(t *testing.T) {
	pub := &fakePublisher{}
	async := NewAsync("full-test", pub, 1, discardLogger())
	before := testutil.ToFloat64(metrics.ReportDroppedTotal.WithLabelValues("full-test", "full"))

	async.Report(added)
	async.Report(executed)

	after := testutil.ToFloat64(metrics.ReportDroppedTotal.WithLabelValues("full-test", "full"))
	assert.Equal(t, before+1, after)
}

func TestAsync_CountsPublishErrors(t *testing.T) {
	pub := &fakePublisher{fail: true}
	async := NewAsync("err-test", pub, 4, discardLogger())
	async.Report(added)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	async.Run(ctx)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReportDroppedTotal.WithLabelValues("err-test", "error")))
}

func TestMetrics_CountsEvents(t *testing.T) {
	m := NewMetrics()
	before := testutil.ToFloat64(metrics.TradedQuantityTotal.WithLabelValues("INSTR"))
	beforeCancels := testutil.ToFloat64(metrics.CancelsTotal.WithLabelValues("accepted"))

	m.Report(executed)
	m.Report(deleted)

	assert.Equal(t, before+4, testutil.ToFloat64(metrics.TradedQuantityTotal.WithLabelValues("INSTR")))
	assert.Equal(t, beforeCancels+1, testutil.ToFloat64(metrics.CancelsTotal.WithLabelValues("accepted")))
}

func TestLog_WritesInfoRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	NewLog(logger).Report(executed)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "order executed", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "INSTR", rec["instrument"])
	assert.EqualValues(t, 2, rec["incoming_order_id"])
}

func TestLog_SilentAboveInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	NewLog(logger).Report(added)
	assert.Zero(t, buf.Len())
}

func TestNATS_CloseWithoutConnection(t *testing.T) {
	assert.NoError(t, (&NATS{}).Close())
}
