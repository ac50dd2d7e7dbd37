package pipeline

import (
	"context"
	"log/slog"

	"github.com/gyaneshwarpardhi/scrimstats/internal/config"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roles"
)

// LoadLookup builds the role lookup for cfg: static entries plus the
// remote contract table when a source URL is set. cache may be nil.
func LoadLookup(ctx context.Context, cfg *config.PipelineConfig, cache roles.Cache, logger *slog.Logger) (*roles.Static, error) {
	var fetch roles.FetchFunc
	if cfg.Roles.SourceURL != "" {
		fetch = roles.NewFetcher(cfg.Roles.FetchTimeout).Fetch
	}
	src := roles.NewSource(fetch, cache, logger)
	return src.Load(ctx, roles.SourceOptions{
		URL:      cfg.Roles.SourceURL,
		Columns:  cfg.Roles.Columns,
		Aliases:  cfg.Roles.Aliases,
		CacheTTL: cfg.Roles.CacheTTL,
		Static:   cfg.Roles.Static,
	})
}

// Builder compiles pipelines from configs, loading the role lookup for
// each one. It is used for the initial build and every hot reload.
type Builder struct {
	cache  roles.Cache
	logger *slog.Logger
}

// NewBuilder returns a Builder. cache may be nil.
func NewBuilder(cache roles.Cache, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{cache: cache, logger: logger}
}

// Build loads cfg's role lookup and compiles a pipeline.
func (b *Builder) Build(ctx context.Context, cfg *config.PipelineConfig) (*Pipeline, error) {
	lookup, err := LoadLookup(ctx, cfg, b.cache, b.logger)
	if err != nil {
		return nil, err
	}
	return New(cfg, lookup, b.logger)
}
