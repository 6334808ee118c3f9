// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

// Command server runs the Harmonium API server.
//
// Startup order matters and is sequential:
//
//  1. Configuration is loaded (defaults, optional YAML file, environment
//     overrides) so that logging can be initialized with the configured
//     level and format.
//  2. The DuckDB database is opened and the schema is created.
//  3. The recommendation engine is built on top of the database through
//     the store adapter.
//  4. The in-process event stream (watermill GoChannel) is wired: one
//     publisher used by the API to emit play events, one consumer that
//     persists them into listening history.
//  5. Everything long-running is handed to a suture supervisor tree.
//     The consumer lives in the messaging layer, the HTTP server in the
//     API layer, so a crashing consumer never takes the API down.
//
// Shutdown is signal driven: SIGINT or SIGTERM cancels the supervisor
// context, the HTTP server drains in-flight requests, the consumer
// drains buffered events, and the database is closed last.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/harmonium-app/harmonium/internal/api"
	"github.com/harmonium-app/harmonium/internal/config"
	"github.com/harmonium-app/harmonium/internal/database"
	"github.com/harmonium-app/harmonium/internal/eventstream"
	"github.com/harmonium-app/harmonium/internal/logging"
	"github.com/harmonium-app/harmonium/internal/recommend"
	"github.com/harmonium-app/harmonium/internal/supervisor"
	"github.com/harmonium-app/harmonium/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Harmonium")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	store := database.NewStoreAdapter(db)
	engine, err := recommend.New(store, cfg.Recommend,
		recommend.WithLogger(logging.With().Str("component", "recommend").Logger()))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build recommendation engine")
	}

	// In-process pubsub: the API publishes play events, the consumer
	// persists them. Keeping persistence off the request path means a
	// slow insert never blocks a client.
	pubsub := eventstream.NewPubSub(cfg.Events,
		eventstream.NewWatermillLogger(logging.With().Str("component", "eventstream").Logger()))
	defer func() {
		if err := pubsub.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing pubsub")
		}
	}()

	publisher := eventstream.NewPublisher(pubsub, cfg.Events)
	defer publisher.Close()

	consumer, err := eventstream.NewConsumer(pubsub, db, cfg.Events)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create event consumer")
	}

	handler := api.NewHandler(engine, db, publisher)
	router := api.NewRouter(handler, api.DefaultChiMiddlewareConfig())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddMessagingService(services.NewConsumerService(consumer))
	logging.Info().Str("topic", cfg.Events.Topic).Msg("Event consumer service added")

	tree.AddAPIService(services.NewHTTPServerService(server, tree.ShutdownTimeout()))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
