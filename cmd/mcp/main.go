package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/kirillkom/internship-allocator/internal/adapters/mcp"
	"github.com/kirillkom/internship-allocator/internal/bootstrap"
	"github.com/kirillkom/internship-allocator/internal/config"
	"github.com/kirillkom/internship-allocator/internal/observability/logging"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	// stdout carries MCP frames.
	slog.SetDefault(logging.New(os.Stderr, "allocator-mcp", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.QueueDisabled)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if _, err := app.LoadEngine(ctx); err != nil {
		slog.Error("engine_load_failed", "corpus", cfg.CorpusPath, "error", err)
		os.Exit(1)
	}

	s := mcpadapter.NewServer(version, mcpadapter.NewTools(app.MatchUC, app.MatchUC))
	if err := server.ServeStdio(s); err != nil {
		slog.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
