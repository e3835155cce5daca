// Command sample demonstrates the github.com/bjaus/bridge exchange bridge
// with one endpoint per response body variant.
//
// Run:
//
//	go run ./cmd/sample
//	go run ./cmd/sample -config config.yaml
//
// Then explore:
//
//	GET http://localhost:8080/hello     — text body
//	GET http://localhost:8080/report    — finite sequence body
//	GET http://localhost:8080/readme    — file body
//	GET http://localhost:8080/ticker    — asynchronous stream body
//	GET http://localhost:8080/raw       — callback body
//	GET http://localhost:8080/metrics   — prometheus metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/bjaus/bridge"
)

func main() {
	configFlag := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	cfg := bridge.DefaultConfig()
	if *configFlag != "" {
		loaded, err := bridge.LoadConfig(*configFlag)
		if err != nil {
			slog.Error("config load failed", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	}))
	slog.SetDefault(logger)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      newHandler(cfg, logger),
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		//nolint:errcheck // best-effort shutdown
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("starting server", "addr", cfg.Server.Address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
	}

	slog.Info("server stopped")
}

func newHandler(cfg bridge.Config, logger *slog.Logger) http.Handler {
	opts := []bridge.Option{}
	if cfg.Server.ContextPath != "" {
		opts = append(opts, bridge.WithContextPath(cfg.Server.ContextPath))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /hello", bridge.Handler(hello, opts...))
	mux.Handle("GET /report", bridge.Handler(report, opts...))
	mux.Handle("GET /readme", bridge.Handler(readme, opts...))
	mux.Handle("GET /ticker", bridge.Handler(ticker, opts...))
	mux.Handle("GET /raw", bridge.Handler(raw, opts...))
	mux.Handle("GET /metrics", bridge.MetricsHandler())

	mw := []bridge.Middleware{
		bridge.Recovery(),
		bridge.RequestID(),
		bridge.Logger(logger),
		bridge.Metrics(),
	}
	if cfg.Limits.Rate > 0 {
		mw = append(mw, bridge.RateLimit(bridge.RateLimitConfig{
			Rate:  cfg.Limits.Rate,
			Burst: cfg.Limits.Burst,
		}))
	}
	if cfg.Server.HandlerTimeout.Std() > 0 {
		mw = append(mw, bridge.Timeout(cfg.Server.HandlerTimeout.Std()))
	}

	return bridge.Chain(mux, mw...)
}

func hello(req *bridge.Request) (*bridge.Response, error) {
	name := req.QueryString
	if name == "" {
		name = "world"
	}
	return &bridge.Response{
		Status:  http.StatusOK,
		Headers: map[string]any{"Content-Type": "text/plain"},
		Body:    "hello, " + name + "\n",
	}, nil
}

func report(req *bridge.Request) (*bridge.Response, error) {
	return &bridge.Response{
		Status:  http.StatusOK,
		Headers: map[string]any{"Content-Type": "text/plain"},
		Body: []any{
			"method=", req.Method, "\n",
			"scheme=", req.Scheme, "\n",
			"port=", req.ServerPort, "\n",
		},
	}, nil
}

func readme(_ *bridge.Request) (*bridge.Response, error) {
	return &bridge.Response{
		Status:  http.StatusOK,
		Headers: map[string]any{"Content-Type": "text/markdown"},
		Body:    bridge.File("README.md"),
	}, nil
}

func ticker(_ *bridge.Request) (*bridge.Response, error) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan any)

	go func() {
		defer close(ch)
		for i := 1; i <= 5; i++ {
			select {
			case <-ctx.Done():
				return
			case ch <- fmt.Sprintf("tick %d\n", i):
				time.Sleep(500 * time.Millisecond)
			}
		}
	}()

	return &bridge.Response{
		Status:  http.StatusOK,
		Headers: map[string]any{"Content-Type": "text/plain"},
		Body:    &bridge.Stream{Chunks: ch, Cancel: cancel},
	}, nil
}

func raw(_ *bridge.Request) (*bridge.Response, error) {
	return &bridge.Response{
		Status:  http.StatusOK,
		Headers: map[string]any{"Content-Type": "text/plain"},
		Body: bridge.WriterFunc(func(sink bridge.Sink) error {
			if _, err := fmt.Fprintln(sink, "written by callback"); err != nil {
				return err
			}
			return sink.Flush()
		}),
	}, nil
}
