package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/we-zayed/results-portal/internal/assistant"
	"github.com/we-zayed/results-portal/internal/ingest"
	"github.com/we-zayed/results-portal/internal/platform/cache"
	"github.com/we-zayed/results-portal/internal/platform/config"
	"github.com/we-zayed/results-portal/internal/platform/database"
	"github.com/we-zayed/results-portal/internal/roster"
	"github.com/we-zayed/results-portal/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	srv, cleanup, err := buildServer(ctx, cfg)
	if err != nil {
		slog.Error("failed to build server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// buildServer wires the store, pipeline, and assistant from config.
func buildServer(ctx context.Context, cfg *config.Config) (*server.Server, func(), error) {
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	curriculum, err := ingest.LoadCurriculum(cfg.Ingest.CurriculumPath)
	if err != nil {
		return nil, cleanup, fmt.Errorf("load curriculum: %w", err)
	}
	pipeline := ingest.NewPipeline(curriculum)

	var store roster.Store = roster.NewMemoryStore()
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect database: %w", err)
		}
		cleanups = append(cleanups, db.Close)

		pgStore, err := roster.NewPostgresStore(ctx, db.Pool)
		if err != nil {
			return nil, cleanup, fmt.Errorf("init postgres store: %w", err)
		}
		store = pgStore
	}

	var snapshot *roster.Snapshot
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect cache: %w", err)
		}
		cleanups = append(cleanups, func() { c.Close() })

		snapshot = roster.NewSnapshot(c.Client, cfg.Cache.SnapshotKey)
		seedFromSnapshot(ctx, snapshot, store)
	}

	var engine *assistant.Engine
	if cfg.HasAssistant() {
		router := assistant.NewRouter()
		if cfg.Assistant.GoogleAPIKey != "" {
			var opts []assistant.GoogleOption
			if cfg.Assistant.GoogleModel != "" {
				opts = append(opts, assistant.WithGoogleModel(cfg.Assistant.GoogleModel))
			}
			router.Register("google", assistant.NewGoogleProvider(cfg.Assistant.GoogleAPIKey, opts...))
		}
		if cfg.Assistant.OpenAIAPIKey != "" {
			router.Register("openai", assistant.NewOpenAIProvider(cfg.Assistant.OpenAIAPIKey))
		}
		engine = assistant.NewEngine(router)
	}

	srv := server.New(server.Options{
		Store:          store,
		Pipeline:       pipeline,
		Fetcher:        ingest.NewFetcher(pipeline, ingest.WithAllowedHosts(cfg.Ingest.RemoteAllowlist)),
		Snapshot:       snapshot,
		Engine:         engine,
		Gate:           server.NewAdminGate(cfg.Admin.PasswordHash, cfg.Admin.Password),
		MaxUploadBytes: int64(cfg.Ingest.MaxUploadMB) << 20,
	})
	return srv, cleanup, nil
}

// seedFromSnapshot restores the last imported dataset so a restart does
// not present an empty portal. Best effort only.
func seedFromSnapshot(ctx context.Context, snapshot *roster.Snapshot, store roster.Store) {
	students, err := snapshot.Load(ctx)
	if err != nil {
		slog.Warn("snapshot load failed", "error", err)
		return
	}
	if len(students) == 0 {
		return
	}

	if n, err := store.Count(ctx); err == nil && n > 0 {
		// Durable store already holds a dataset; don't clobber it.
		return
	}
	if err := store.ReplaceAll(ctx, students); err != nil {
		slog.Warn("snapshot restore failed", "error", err)
		return
	}
	slog.Info("dataset restored from snapshot", "students", len(students))
}

func setupLogger(cfg config.LogConfig) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}
