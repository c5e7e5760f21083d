package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FieldsBarnett/mediocre-mastermind/internal/api"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/completion"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/config"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/ingester"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/orchestrator"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/persona"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/prompt"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/selector"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/sequencer"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("mastermind starting",
		"port", cfg.Port,
		"nats_url", cfg.NatsURL,
		"model", cfg.CompletionModel,
		"history_window", cfg.HistoryWindow,
		"responders", cfg.MaxResponders,
		"paced_delivery", cfg.PacedDelivery,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Step 1: Connect to the database.
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		slog.Error("failed to init schema", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	// Step 2: Load the persona roster.
	roster := persona.DefaultRoster()
	if cfg.RosterPath != "" {
		roster, err = persona.Load(cfg.RosterPath)
		if err != nil {
			slog.Error("failed to load roster", "path", cfg.RosterPath, "error", err)
			os.Exit(1)
		}
		slog.Info("roster loaded", "path", cfg.RosterPath, "personas", len(roster))
	}

	// Step 3: Assemble the orchestration engine.
	if cfg.CompletionKey == "" {
		slog.Warn("COMPLETION_API_KEY not set, orchestration runs will fail until configured")
	}

	pick := selector.New(
		rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg.MinResponders, cfg.MaxResponders,
	)
	build := prompt.NewBuilder(roster, cfg.HistoryWindow)
	complete := completion.NewClient(
		cfg.CompletionURL, cfg.CompletionKey, cfg.CompletionModel,
		cfg.CompletionTemperature, cfg.CompletionTimeout,
	)
	deliver := sequencer.New(
		db,
		rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg.TypingHoldMin, cfg.TypingHoldMax,
	)
	orch := orchestrator.New(db, roster, pick, build, complete, deliver, cfg.PacedDelivery)

	// Step 4: Connect to NATS and start consuming chat events.
	ing, err := ingester.New(cfg.NatsURL, orch)
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer ing.Close()

	if err := ing.Start(); err != nil {
		slog.Error("failed to start ingester", "error", err)
		os.Exit(1)
	}
	slog.Info("NATS ingester started")

	// Step 5: Start the HTTP API. Its write path publishes user-message
	// events through the shared NATS connection.
	srv := api.NewServer(db, ing.Publish, cfg.Port)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("mastermind ready", "port", cfg.Port)

	// Wait for shutdown signal.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	slog.Info("shutting down", "signal", sig)
	cancel()
	slog.Info("mastermind stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
