package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gyaneshwarpardhi/scrimstats/internal/api"
	"github.com/gyaneshwarpardhi/scrimstats/internal/config"
	"github.com/gyaneshwarpardhi/scrimstats/internal/engine"
	"github.com/gyaneshwarpardhi/scrimstats/internal/pipeline"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roles"
	"github.com/gyaneshwarpardhi/scrimstats/internal/store"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to read environment", "err", err)
		os.Exit(1)
	}
	addr := flag.String("addr", env.Addr, "HTTP listen address")
	cfgPath := flag.String("config", env.ConfigPath, "Path to pipeline YAML config")
	flag.Parse()

	var level slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &level}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath, env.Apply, logger)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	setLevel(&level, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Role cache ───────────────────────────────────────────────────────────
	var cache roles.Cache
	if env.RedisURL != "" {
		rc, err := roles.NewRedisCache(ctx, env.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, role tables will not be cached", "err", err)
		} else {
			defer rc.Close()
			cache = rc
		}
	}

	// ── Initial pipeline ─────────────────────────────────────────────────────
	builder := pipeline.NewBuilder(cache, logger)
	p, err := builder.Build(ctx, cfg)
	if err != nil {
		slog.Error("failed to build pipeline", "err", err)
		os.Exit(1)
	}
	slog.Info("pipeline built", "variant", cfg.Variant.Name, "schema", p.Schema().Name, "columns", len(p.Header()))

	// ── Storage ──────────────────────────────────────────────────────────────
	var st *store.Store
	if cfg.Store.Path != "" {
		st, err = store.Open(ctx, cfg.Store.Path, logger)
		if err != nil {
			slog.Error("failed to open store", "path", cfg.Store.Path, "err", err)
			os.Exit(1)
		}
		defer st.Close()
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	eng := engine.New(ctx, p, cfg.Engine)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.PipelineConfig) {
		buildCtx, buildCancel := context.WithTimeout(ctx, newCfg.Roles.FetchTimeout+5*time.Second)
		defer buildCancel()
		np, err := builder.Build(buildCtx, newCfg)
		if err != nil {
			slog.Warn("hot-reload skipped: pipeline build failed", "err", err)
			return
		}
		setLevel(&level, newCfg.LogLevel)
		eng.SwapPipeline(np)
		slog.Info("pipeline hot-reloaded", "variant", newCfg.Variant.Name)
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.New(eng, loader, st, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Engine.JobTimeout() + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	eng.Shutdown()
	slog.Info("goodbye")
}

func setLevel(v *slog.LevelVar, name string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		slog.Warn("unknown log level, keeping current", "level", name)
		return
	}
	v.Set(l)
}
