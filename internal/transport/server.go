// Package transport accepts client streams and feeds their requests to the
// engine, one goroutine per connection.
package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/metrics"
	"github.com/efreitasn/matchingengine/internal/wire"
)

// Handler is the engine entry point a connection calls for every decoded
// request. Calls are synchronous and made concurrently from many
// connections.
type Handler interface {
	Handle(req domain.Request, arrival int64)
}

// Server reads request records from stream connections.
type Server struct {
	handler Handler
	clock   domain.Clock
	format  wire.Format
	logger  *slog.Logger

	wg sync.WaitGroup
}

// NewServer creates a Server that stamps arrivals with clock and decodes
// records in the given format.
func NewServer(h Handler, clock domain.Clock, format wire.Format, logger *slog.Logger) *Server {
	return &Server{
		handler: h,
		clock:   clock,
		format:  format,
		logger:  logger,
	}
}

// Serve accepts connections on ln until ctx is cancelled or ln fails.
// Cancelling ctx closes the listener and every open connection; Serve
// returns once all connection goroutines have finished.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.logger.Info("stream listener started",
		slog.String("network", ln.Addr().Network()),
		slog.String("addr", ln.Addr().String()),
		slog.String("format", string(s.format)),
	)

	var err error
	for {
		conn, aerr := ln.Accept()
		if aerr != nil {
			if ctx.Err() == nil {
				err = aerr
			}
			break
		}
		s.wg.Add(1)
		go s.handleConn(ctx, conn)
	}

	cancel()
	s.wg.Wait()
	return err
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()

	id := uuid.New().String()
	logger := s.logger.With(slog.String("conn_id", id))
	metrics.OnConnOpen()
	defer metrics.OnConnClose()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	logger.Debug("connection opened", slog.String("remote", conn.RemoteAddr().String()))

	n, err := s.ServeStream(conn)
	switch {
	case err == nil:
		logger.Debug("connection closed", slog.Int("requests", n))
	case ctx.Err() != nil:
		logger.Debug("connection closed on shutdown", slog.Int("requests", n))
	default:
		logger.Warn("connection closed on error",
			slog.Int("requests", n),
			slog.String("error", err.Error()),
		)
	}
}

// ServeStream decodes and handles requests from r until it ends. It
// returns the number of requests handled and a nil error on a clean end of
// stream.
func (s *Server) ServeStream(r io.Reader) (int, error) {
	dec, err := wire.NewDecoder(s.format, r)
	if err != nil {
		return 0, err
	}
	n := 0
	for {
		req, err := dec.Decode()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return n, nil
			}
			if errors.Is(err, domain.ErrMalformedRecord) || errors.Is(err, domain.ErrUnknownKind) || errors.Is(err, domain.ErrInvalidInstrument) {
				metrics.DecodeErrorsTotal.Inc()
			}
			return n, err
		}
		arrival := s.clock.Now()
		metrics.RequestsTotal.WithLabelValues(req.Kind.String(), "stream").Inc()
		s.handler.Handle(req, arrival)
		n++
	}
}
