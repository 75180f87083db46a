// Command loadclient feeds requests to a running matching engine. With
// -gen it writes random commands over one or more connections; otherwise
// it reads text commands from stdin and forwards them.
package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand/v2"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/efreitasn/matchingengine/internal/loadgen"
	"github.com/efreitasn/matchingengine/internal/wire"
)

func main() {
	network := flag.String("network", "unix", "Engine listener network (unix or tcp)")
	addr := flag.String("addr", "/tmp/matchingengine.sock", "Engine listener address")
	formatFlag := flag.String("format", "binary", "Wire format the engine expects (binary or text)")
	gen := flag.String("gen", "", "Generate random commands for ids begin:end instead of reading stdin")
	conns := flag.Int("conns", 1, "Connections to spread generated commands over")
	seed := flag.Uint64("seed", 0, "Random seed (0 picks one from the clock)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	format, err := wire.ParseFormat(*formatFlag)
	if err != nil {
		logger.Error("invalid -format", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *gen == "" {
		n, err := pipeStdin(ctx, *network, *addr, format)
		if err != nil {
			logger.Error("forwarding stdin failed", slog.Int("sent", n), slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("stdin forwarded", slog.Int("sent", n))
		return
	}

	r, err := loadgen.ParseRange(*gen)
	if err != nil {
		logger.Error("invalid -gen", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}

	start := time.Now()
	if err := generate(ctx, *network, *addr, format, r, *conns, *seed); err != nil {
		logger.Error("load run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("load run finished",
		slog.Int("requests", int(r.End-r.Begin)),
		slog.Int("conns", *conns),
		slog.Uint64("seed", *seed),
		slog.Duration("duration", time.Since(start)),
	)
}

func pipeStdin(ctx context.Context, network, addr string, format wire.Format) (int, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	return loadgen.Pipe(wire.NewTextDecoder(os.Stdin), conn, format)
}

// generate writes one random command batch per connection. Every
// connection gets its own id range and random stream.
func generate(ctx context.Context, network, addr string, format wire.Format, r loadgen.Range, conns int, seed uint64) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, part := range loadgen.Split(r, conns) {
		rng := rand.New(rand.NewPCG(seed, uint64(i)))
		reqs := loadgen.Generate(rng, part)
		g.Go(func() error {
			var d net.Dialer
			conn, err := d.DialContext(gctx, network, addr)
			if err != nil {
				return err
			}
			defer conn.Close()
			return loadgen.Write(conn, format, reqs)
		})
	}
	return g.Wait()
}
