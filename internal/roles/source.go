package roles

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gyaneshwarpardhi/scrimstats/internal/metrics"
)

// FetchFunc retrieves the raw page at url. (*Fetcher).Fetch satisfies it.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// SourceOptions describes where a run's role table comes from.
type SourceOptions struct {
	URL      string
	Columns  Columns
	Aliases  map[string]string
	CacheTTL time.Duration
	// Static entries take precedence over fetched rows of the same name.
	Static []Entry
}

// Source builds a Lookup from static entries and an optional remote
// contract table, consulting Cache before fetching.
type Source struct {
	fetch  FetchFunc
	cache  Cache
	logger *slog.Logger
}

// NewSource returns a Source. cache may be nil; fetch may be nil when
// only static entries are used.
func NewSource(fetch FetchFunc, cache Cache, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{fetch: fetch, cache: cache, logger: logger}
}

// Load returns the lookup for opts. Cache failures are logged and fall
// through to a fetch; fetch or parse failures are returned.
func (s *Source) Load(ctx context.Context, opts SourceOptions) (*Static, error) {
	entries := append([]Entry(nil), opts.Static...)
	if opts.URL == "" {
		return NewStatic(entries, opts.Aliases), nil
	}

	remote, err := s.remote(ctx, opts)
	if err != nil {
		metrics.RoleSourceFetches.WithLabelValues("error").Inc()
		return nil, err
	}
	entries = append(entries, remote...)
	lookup := NewStatic(entries, opts.Aliases)
	s.logger.Info("role table loaded", "url", opts.URL, "players", lookup.Len())
	return lookup, nil
}

func (s *Source) remote(ctx context.Context, opts SourceOptions) ([]Entry, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, opts.URL)
		switch {
		case err != nil:
			s.logger.Warn("role cache read failed", "url", opts.URL, "err", err)
		case ok:
			metrics.RoleSourceFetches.WithLabelValues("cache_hit").Inc()
			return cached, nil
		}
	}

	if s.fetch == nil {
		return nil, fmt.Errorf("role source %s: no fetcher configured", opts.URL)
	}
	body, err := s.fetch(ctx, opts.URL)
	if err != nil {
		return nil, err
	}
	cols := opts.Columns
	if cols == (Columns{}) {
		cols = DefaultColumns
	}
	entries, err := ParseContractTable(bytes.NewReader(body), cols)
	if err != nil {
		return nil, fmt.Errorf("role source %s: %w", opts.URL, err)
	}
	metrics.RoleSourceFetches.WithLabelValues("fetched").Inc()

	if s.cache != nil && opts.CacheTTL > 0 {
		if err := s.cache.Set(ctx, opts.URL, entries, opts.CacheTTL); err != nil {
			s.logger.Warn("role cache write failed", "url", opts.URL, "err", err)
		}
	}
	return entries, nil
}
