// Package pipeline runs one match from raw records to a summary row.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gyaneshwarpardhi/scrimstats/internal/config"
	"github.com/gyaneshwarpardhi/scrimstats/internal/event"
	"github.com/gyaneshwarpardhi/scrimstats/internal/identity"
	"github.com/gyaneshwarpardhi/scrimstats/internal/metrics"
	"github.com/gyaneshwarpardhi/scrimstats/internal/milestone"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roles"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roster"
	"github.com/gyaneshwarpardhi/scrimstats/internal/source"
	"github.com/gyaneshwarpardhi/scrimstats/internal/summary"
	"github.com/gyaneshwarpardhi/scrimstats/internal/timeline"
)

// Result is a match's row plus run diagnostics.
type Result struct {
	Row        *summary.Row  `json:"row"`
	Home       string        `json:"home_side"`
	Events     int           `json:"events"`
	Duplicates int           `json:"duplicates"`
	Dropped    int           `json:"dropped_snapshots"`
	Unresolved []string      `json:"unresolved_players,omitempty"`
	Incomplete []string      `json:"incomplete_clocks,omitempty"`
	Duration   time.Duration `json:"-"`
}

// Pipeline is compiled from one config and is safe for concurrent runs.
type Pipeline struct {
	cfg      *config.PipelineConfig
	variant  roster.Variant
	schema   summary.Schema
	rules    *milestone.Rules
	resolver *roles.Resolver
	loader   *source.Loader
	logger   *slog.Logger
}

// New compiles cfg. lookup may be nil, in which case roles resolve
// through the config's overrides only.
func New(cfg *config.PipelineConfig, lookup roles.Lookup, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := summary.Select(cfg.Variant.Schema, cfg.Schemas)
	if err != nil {
		return nil, err
	}
	rules, err := milestone.Build(cfg.Milestones, nil)
	if err != nil {
		return nil, err
	}
	strict := true
	if cfg.Variant.Strict != nil {
		strict = *cfg.Variant.Strict
	}
	return &Pipeline{
		cfg: cfg,
		variant: roster.Variant{
			Name:       cfg.Variant.Name,
			Strict:     strict,
			TagParsing: roster.TagParsing(cfg.Variant.TagParsing),
			RosterSize: cfg.RosterSize,
		},
		schema:   schema,
		rules:    rules,
		resolver: roles.NewResolver(lookup, cfg.Roles.Overrides),
		loader:   source.NewLoader(cfg.Engine.LoaderWorkers, logger),
		logger:   logger,
	}, nil
}

// Config returns the config the pipeline was compiled from.
func (p *Pipeline) Config() *config.PipelineConfig { return p.cfg }

// Schema returns the output layout.
func (p *Pipeline) Schema() summary.Schema { return p.schema }

// Header returns the column names every row from this pipeline carries.
func (p *Pipeline) Header() []string {
	out := []string{"Date"}
	if p.schema.IncludeWin {
		out = append(out, "Win")
	}
	out = append(out, "Team")
	for _, r := range p.rules.Rules() {
		out = append(out, r.Column)
	}
	return append(out, p.schema.Headers()...)
}

// RunDir loads every event file under dir and runs the match.
func (p *Pipeline) RunDir(ctx context.Context, dir string) (*Result, error) {
	records, err := p.loader.Load(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}
	metrics.EventsLoaded.Add(float64(len(records)))
	res, err := p.Run(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", dir, err)
	}
	return res, nil
}

// Run executes timeline, rosters, milestones, identity and assembly.
func (p *Pipeline) Run(ctx context.Context, records []event.Record) (*Result, error) {
	start := time.Now()

	tl, err := timeline.Build(records)
	if err != nil {
		return nil, err
	}
	metrics.DuplicateEvents.Add(float64(tl.Duplicates()))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	one, err := roster.Build(tl, roster.TeamOne, p.resolver, p.variant)
	if err != nil {
		return nil, fmt.Errorf("team one roster: %w", err)
	}
	two, err := roster.Build(tl, roster.TeamTwo, p.resolver, p.variant)
	if err != nil {
		return nil, fmt.Errorf("team two roster: %w", err)
	}
	for _, r := range []*roster.Roster{one, two} {
		metrics.SnapshotsDropped.Add(float64(r.Dropped))
		metrics.UnresolvedRoles.Add(float64(len(r.Unresolved)))
		if len(r.Unresolved) > 0 {
			p.logger.Warn("unresolved roles", "side", r.Side, "players", r.Unresolved, "err", roles.ErrUnresolvedRole)
		}
		if len(r.Incomplete) > 0 {
			p.logger.Warn("snapshots without a full set of roles",
				"side", r.Side, "clocks", len(r.Incomplete), "first", r.Incomplete[0], "roster_size", p.variant.RosterSize)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ms, err := p.rules.Extract(tl, one, two)
	if err != nil {
		return nil, err
	}
	ms.Apply(one, two)

	home, opp, err := identity.Resolve(p.cfg.Home.Players, p.variant.RosterSize, one, two)
	if err != nil {
		return nil, err
	}

	row, err := summary.Assemble(home, opp, p.schema, summary.Options{TeamLabel: p.cfg.Variant.TeamLabel})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Row:        row,
		Home:       home.Side.String(),
		Events:     tl.Len(),
		Duplicates: tl.Duplicates(),
		Dropped:    one.Dropped + two.Dropped,
		Unresolved: append(append([]string(nil), one.Unresolved...), two.Unresolved...),
		Incomplete: append(append([]string(nil), one.Incomplete...), two.Incomplete...),
		Duration:   time.Since(start),
	}
	p.logger.Debug("match assembled",
		"events", res.Events, "duplicates", res.Duplicates, "dropped", res.Dropped,
		"home", res.Home, "opponent", row.Team, "duration", res.Duration)
	return res, nil
}
