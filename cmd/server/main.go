package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Brownie44l1/waste-api/internal/chat"
	"github.com/Brownie44l1/waste-api/internal/config"
	"github.com/Brownie44l1/waste-api/internal/handlers"
	"github.com/Brownie44l1/waste-api/internal/logging"
	"github.com/Brownie44l1/waste-api/internal/model"
)

const shutdownGrace = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	logging.Init(cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	slog.Info("loading model", "path", cfg.Model.Path)
	m, err := model.Load(model.LoadOptions{
		CheckpointPath: cfg.Model.Path,
		ORTLibPath:     cfg.Model.ORTLibPath,
		RequireTrained: cfg.Model.RequireTrained,
		Seed:           cfg.Model.Seed,
	})
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	defer model.DestroyRuntime()
	defer m.Close()

	gemini, err := chat.NewGemini(context.Background(), cfg.Chat.APIKey, cfg.Chat.Model)
	if err != nil {
		return fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer gemini.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	h := handlers.NewHandler(
		model.NewClassifier(m),
		chat.NewProxy(gemini, slog.Default()),
		handlers.NewMetrics(reg),
		cfg.Server.MaxUploadBytes,
		slog.Default(),
	)

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	srv := &http.Server{
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	slog.Info("server starting",
		"addr", ln.Addr().String(),
		"model", m.Kind(),
		"chat_model", gemini.Model(),
	)
	slog.Info("endpoints",
		"health", "GET /health",
		"classify", "POST /classify (multipart field \"image\" or JSON {\"image\": base64})",
		"chat", "POST /chat (JSON {\"message\": ...})",
		"metrics", "GET /metrics",
	)

	return serve(srv, ln, sigCh, shutdownGrace)
}

// serve runs srv on ln until a signal arrives on stop. It returns only after
// in-flight requests have drained or grace has elapsed, so deferred cleanup
// never races a running handler.
func serve(srv *http.Server, ln net.Listener, stop <-chan os.Signal, grace time.Duration) error {
	drained := make(chan error, 1)
	go func() {
		sig := <-stop
		slog.Info("shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		drained <- srv.Shutdown(ctx)
	}()

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-drained; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
