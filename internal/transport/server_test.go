package transport

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/engine"
	"github.com/efreitasn/matchingengine/internal/report"
	"github.com/efreitasn/matchingengine/internal/wire"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(format wire.Format) (*Server, *report.Recorder) {
	rec := report.NewRecorder(1024)
	clock := domain.NewMonotonicClock()
	eng := engine.NewEngine(rec, clock)
	return NewServer(eng, clock, format, discardLogger()), rec
}

func encode(t *testing.T, reqs ...domain.Request) []byte {
	t.Helper()
	var buf []byte
	for _, r := range reqs {
		var err error
		buf, err = wire.AppendRecord(buf, r)
		require.NoError(t, err)
	}
	return buf
}

func TestServeStream_Text(t *testing.T) {
	srv, rec := newTestServer(wire.FormatText)
	input := "B 1 INSTR 100 10\nS 2 INSTR 90 4\nS 3 INSTR 200 100\nC 1\nC 3\n"

	n, err := srv.ServeStream(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	var lines []string
	for _, ev := range rec.Recent(0) {
		line := report.FormatLine(ev)
		// Drop the timestamps.
		fields := strings.Fields(line)
		lines = append(lines, strings.Join(fields[:len(fields)-2], " "))
	}
	assert.Equal(t, []string{
		"A 1 INSTR 100 10 B",
		"E 1 2 1 INSTR 100 4",
		"A 3 INSTR 200 100 S",
		"X 1 R",
		"X 3 A",
	}, lines)
}

func TestServeStream_ArrivalPrecedesProcessing(t *testing.T) {
	srv, rec := newTestServer(wire.FormatText)

	_, err := srv.ServeStream(strings.NewReader("B 1 AAPL 1 1\nC 1\n"))
	require.NoError(t, err)

	for _, ev := range rec.Recent(0) {
		arrival, processed := ev.Timestamps()
		assert.LessOrEqual(t, arrival, processed)
		assert.Positive(t, arrival)
	}
}

func TestServeStream_MalformedStopsStream(t *testing.T) {
	srv, rec := newTestServer(wire.FormatBinary)
	buf := encode(t, domain.Request{Kind: domain.KindBuy, OrderID: 1, Instrument: "AAPL", Price: 1, Quantity: 1})
	buf = append(buf, 'C', 0, 0)

	n, err := srv.ServeStream(bytes.NewReader(buf))
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	assert.Equal(t, 1, n)
	assert.Len(t, rec.Recent(0), 1)
}

func TestServeStream_DuplicateIDIsFatal(t *testing.T) {
	srv, _ := newTestServer(wire.FormatText)

	assert.Panics(t, func() {
		_, _ = srv.ServeStream(strings.NewReader("B 1 AAPL 1 1\nS 1 AAPL 1 1\n"))
	})
}

func TestServe_ManyConnections(t *testing.T) {
	srv, rec := newTestServer(wire.FormatBinary)
	ln, err := Listen("unix", filepath.Join(t.TempDir(), "engine.sock"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	const clients = 4
	for c := 0; c < clients; c++ {
		conn, err := net.Dial("unix", ln.Addr().String())
		require.NoError(t, err)
		base := uint32(c * 100)
		_, err = conn.Write(encode(t,
			domain.Request{Kind: domain.KindBuy, OrderID: base + 1, Instrument: "AAAA", Price: 10, Quantity: 1},
			domain.Request{Kind: domain.KindSell, OrderID: base + 2, Instrument: "BBBB", Price: 10, Quantity: 1},
			domain.Request{Kind: domain.KindCancel, OrderID: base + 2},
		))
		require.NoError(t, err)
		require.NoError(t, conn.Close())
	}

	require.Eventually(t, func() bool {
		return len(rec.Recent(0)) >= clients*3
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	// Buys only ever rest on AAAA and sells on BBBB, so nothing trades.
	var added, deleted int
	for _, ev := range rec.Recent(0) {
		switch e := ev.(type) {
		case domain.OrderAdded:
			added++
		case domain.OrderDeleted:
			deleted++
			assert.True(t, e.Accepted, "cancel of order %d", e.OrderID)
		case domain.OrderExecuted:
			t.Errorf("unexpected execution %+v", e)
		}
	}
	assert.Equal(t, clients*2, added)
	assert.Equal(t, clients, deleted)
}

func TestServe_ShutdownClosesIdleConnections(t *testing.T) {
	srv, _ := newTestServer(wire.FormatText)
	ln, err := Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("B 1 AAPL 1 1\n"))
	require.NoError(t, err)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return with an idle connection open")
	}
}

func TestListen_UnsupportedNetwork(t *testing.T) {
	_, err := Listen("udp", "127.0.0.1:0")
	assert.Error(t, err)
}

func TestListen_RemovesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.sock")
	first, err := Listen("unix", path)
	require.NoError(t, err)
	// Closing a unix listener unlinks the socket; recreate a stale file.
	first.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, first.Close())

	second, err := Listen("unix", path)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}
