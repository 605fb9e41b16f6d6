package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/internship-allocator/internal/adapters/http"
	"github.com/kirillkom/internship-allocator/internal/bootstrap"
	"github.com/kirillkom/internship-allocator/internal/config"
	"github.com/kirillkom/internship-allocator/internal/core/ports"
	"github.com/kirillkom/internship-allocator/internal/observability/logging"
	"github.com/kirillkom/internship-allocator/internal/observability/metrics"
)

const serviceName = "allocator-api"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.QueueOptional)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)

	var requester ports.MatchRequester
	if app.RequestUC != nil {
		requester = app.RequestUC
	}
	router := httpadapter.NewRouter(cfg, app.MatchUC, app.MatchUC, requester).
		WithReadiness(app.MatchUC.Ready).
		WithMetrics(httpMetrics).
		Handler()

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           http.TimeoutHandler(router, cfg.APIRequestTimeout, `{"error":"request timed out"}`),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	// The corpus loads in the background; /readyz flips once it is installed.
	go func() {
		e, err := app.LoadEngine(ctx)
		if err != nil {
			slog.Error("engine_load_failed", "corpus", cfg.CorpusPath, "error", err)
			stop()
			return
		}
		httpMetrics.SetCorpusSize(e.OpportunityCount())
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
