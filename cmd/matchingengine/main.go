package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/efreitasn/matchingengine/internal/config"
	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/engine"
	"github.com/efreitasn/matchingengine/internal/handler"
	"github.com/efreitasn/matchingengine/internal/metrics"
	"github.com/efreitasn/matchingengine/internal/report"
	"github.com/efreitasn/matchingengine/internal/service"
	"github.com/efreitasn/matchingengine/internal/transport"
	"github.com/efreitasn/matchingengine/internal/wire"
)

const asyncBuffer = 1 << 16

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:HTTP_PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("HTTP_PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Logs go to stderr; stdout carries the event lines.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("engine stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("engine stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	format, err := wire.ParseFormat(cfg.WireFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reporters.
	recent := report.NewRecorder(cfg.RecentEvents)
	reporters := []report.Reporter{report.NewMetrics(), recent}
	var (
		asyncs  []*report.Async
		closers []io.Closer
	)
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Warn("publisher close failed", slog.String("error", err.Error()))
			}
		}
	}()

	var text *report.Text
	if cfg.HasSink(config.SinkText) {
		text = report.NewText(os.Stdout)
		reporters = append(reporters, text)
	}
	if cfg.HasSink(config.SinkLog) {
		reporters = append(reporters, report.NewLog(logger))
	}
	if cfg.HasSink(config.SinkNATS) {
		pub, err := report.DialNATS(cfg.NATSURL, cfg.NATSSubjectPrefix, nats.Name("matchingengine"))
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		closers = append(closers, pub)
		asyncs = append(asyncs, report.NewAsync(config.SinkNATS, pub, asyncBuffer, logger))
		logger.Info("publishing events to nats", slog.String("url", cfg.NATSURL))
	}
	if cfg.HasSink(config.SinkRedis) {
		pub, err := report.DialRedis(ctx, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, pub)
		asyncs = append(asyncs, report.NewAsync(config.SinkRedis, pub, asyncBuffer, logger))
		logger.Info("publishing events to redis", slog.String("addr", cfg.RedisAddr))
	}
	for _, a := range asyncs {
		reporters = append(reporters, a)
	}

	// Async sinks outlive the listeners so nothing emitted during shutdown
	// is lost.
	sinkCtx, stopSinks := context.WithCancel(context.Background())
	var sinks sync.WaitGroup
	for _, a := range asyncs {
		sinks.Add(1)
		go func(a *report.Async) {
			defer sinks.Done()
			a.Run(sinkCtx)
		}(a)
	}
	defer func() {
		stopSinks()
		sinks.Wait()
	}()

	eng := engine.NewEngine(report.Fanout(reporters...), domain.NewMonotonicClock())

	ln, err := transport.Listen(cfg.ListenNetwork, cfg.ListenAddr)
	if err != nil {
		return err
	}
	stream := transport.NewServer(eng, eng.Clock(), format, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return stream.Serve(gctx, ln)
	})
	engine.NewSampler(cfg.SampleInterval, eng, engine.StatsObserverFunc(metrics.ObserveStats)).Start(gctx)

	if cfg.HTTPPort > 0 {
		router := handler.NewRouter(service.NewOrderService(eng), service.NewBookService(eng, recent), logger)
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		srv := &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		}
		g.Go(func() error {
			logger.Info("http server starting", slog.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	<-gctx.Done()
	logger.Info("shutting down")
	err = g.Wait()
	if text != nil && text.Err() != nil {
		logger.Warn("event output stopped early", slog.String("error", text.Err().Error()))
	}
	return err
}
