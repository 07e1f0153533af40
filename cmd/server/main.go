package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rcaballes/salesdesk/backend/internal/alerts"
	"github.com/rcaballes/salesdesk/backend/internal/analytics"
	"github.com/rcaballes/salesdesk/backend/internal/api"
	"github.com/rcaballes/salesdesk/backend/internal/auth"
	"github.com/rcaballes/salesdesk/backend/internal/cache"
	"github.com/rcaballes/salesdesk/backend/internal/config"
	"github.com/rcaballes/salesdesk/backend/internal/event"
	"github.com/rcaballes/salesdesk/backend/internal/ingestion"
	"github.com/rcaballes/salesdesk/backend/internal/live"
	"github.com/rcaballes/salesdesk/backend/internal/metrics"
	"github.com/rcaballes/salesdesk/backend/internal/refresh"
	"github.com/rcaballes/salesdesk/backend/internal/rollup"
	"github.com/rcaballes/salesdesk/backend/internal/storage"
	"github.com/rcaballes/salesdesk/backend/internal/websocket"
	"github.com/rcaballes/salesdesk/backend/pkg/middleware"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Msg("starting salesdesk backend server")

	// Load classification rules (optional YAML override)
	rules := analytics.DefaultRules()
	if cfg.RulesFile != "" {
		rules, err = analytics.LoadRules(cfg.RulesFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.RulesFile).Msg("failed to load rules file")
		}
		log.Info().Str("file", cfg.RulesFile).Msg("classification rules loaded")
	}
	engine := analytics.NewEngine(rules, analytics.Options{
		SegmentCountSalesOnly: cfg.SegmentCountSalesOnly,
	})

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create persistence store
	store, err := storage.NewStore(ctx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}

	// Create caches
	activityCache := cache.NewActivityCache()
	rosterCache := cache.NewRosterCache()

	// Create WebSocket hub
	hub := websocket.NewHub(log.Logger)
	go hub.Run()

	// Create WebSocket handler
	wsHandler := websocket.NewHandler(hub, cfg, log.Logger)

	// Create ingestion pipeline
	processor := ingestion.NewDefaultProcessor(activityCache, rosterCache, log.Logger)
	processor.SetSaver(store)
	receiver := event.NewReceiver(processor, log.Logger)

	// Alert thresholds shared by the live publisher and REST reports
	thresholds := alerts.Thresholds{
		LowConversionPercent: cfg.LowConversionThreshold,
		SlowResponseSeconds:  cfg.SlowResponseSeconds,
	}

	// Create live publisher
	publisher := live.NewPublisher(engine, activityCache, rosterCache, hub, cfg.PublishInterval, cfg.WindowDays, thresholds, log.Logger)
	go publisher.Start(ctx)

	// Create store refresher
	refresher := refresh.NewRefresher(store, activityCache, cfg.RefreshInterval, cfg.WindowDays, log.Logger)
	go refresher.Start(ctx)

	// Create nightly rollup job
	rollupJob, err := rollup.NewJob(engine, activityCache, store, cfg.RollupCron, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Str("cron", cfg.RollupCron).Msg("invalid rollup schedule")
	}
	go rollupJob.Start(ctx)

	// Create REST handlers
	reportsHandler := api.NewReportsHandler(engine, activityCache, rosterCache, thresholds, log.Logger)
	rollupsHandler := api.NewRollupsHandler(store, log.Logger)
	adminHandler := api.NewAdminHandler(activityCache, rosterCache, store, refresher, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes (no auth required)
	r.Get("/health", healthHandler)
	r.Get("/metrics", metrics.Get().Handler())

	// Internal routes (no auth - for the CRM sync job)
	r.Route("/internal", func(r chi.Router) {
		r.Post("/activities", receiver.HandleActivities)
		r.Get("/activities/stats", receiver.GetStats)
		r.Post("/roster", receiver.HandleRoster)
	})

	// Add auth middleware for protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Get("/ws", wsHandler.ServeHTTP)

		r.Route("/api", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(api.RequireManagerOrAdmin)
				r.Get("/reports/{grouping}", reportsHandler.GetReport)
				r.Get("/rollups/{ref}", rollupsHandler.GetRollups)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(api.RequireAdmin)
			r.Post("/reset", adminHandler.ResetMemory)
			r.Post("/wipe-store", adminHandler.WipeStore)
			r.Post("/refresh", adminHandler.RefreshCache)
			r.Get("/stats", adminHandler.GetStats)
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop background services
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"salesdesk-backend"}`)
}
