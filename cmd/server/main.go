package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/rentalwatch/enjoytravel-scraper/internal/api"
	"github.com/rentalwatch/enjoytravel-scraper/internal/artifacts"
	"github.com/rentalwatch/enjoytravel-scraper/internal/browserql"
	"github.com/rentalwatch/enjoytravel-scraper/internal/config"
	"github.com/rentalwatch/enjoytravel-scraper/internal/jobs"
	"github.com/rentalwatch/enjoytravel-scraper/internal/progress"
	"github.com/rentalwatch/enjoytravel-scraper/internal/scrape"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	executor, err := browserql.NewClient(browserql.Options{
		Endpoint: cfg.Browserless.Endpoint,
		APIKey:   cfg.Browserless.APIKey,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize browserql client", "error", err)
		os.Exit(1)
	}

	// Progress state lives in Redis when an address is configured, so
	// polls can land on any instance; otherwise process memory.
	var store progress.Store
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		store = progress.NewRedisStore(redisClient, cfg.Scraper.SessionTTL)
		logger.Info("using redis progress store", "addr", cfg.Redis.Addr)
	} else {
		store = progress.NewMemoryStore(cfg.Scraper.SessionTTL)
	}

	artifactStore := artifacts.NewStore(cfg.Scraper.SessionTTL)
	scraperService := scrape.NewService(executor, store, artifactStore, cfg.Scraper, logger)
	runner := jobs.NewRunner(store, logger)
	handlers := api.NewHandlers(scraperService, runner, store, artifactStore, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	handlers.Routes(r)

	// Frontend assets, when deployed alongside the API.
	if info, err := os.Stat("public"); err == nil && info.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir("public")))
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
