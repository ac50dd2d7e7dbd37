package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gyaneshwarpardhi/scrimstats/internal/condition"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roster"
)

// Validate checks the config for:
//   - Required fields and positive engine limits
//   - Known variant options and a resolvable output schema
//   - Duplicate milestone and schema names
//   - Milestone expressions that fail to parse
//   - Role override teams that differ only in case
func Validate(cfg *PipelineConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string

	e := cfg.Engine
	limits := []struct {
		name string
		v    int
	}{
		{"engine.workers", e.Workers},
		{"engine.queue_depth", e.QueueDepth},
		{"engine.job_timeout_ms", e.JobTimeoutMs},
		{"engine.loader_workers", e.LoaderWorkers},
		{"roster_size", cfg.RosterSize},
	}
	for _, l := range limits {
		if l.v <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got %d", l.name, l.v))
		}
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log_level %q must be one of debug, info, warn, error", cfg.LogLevel))
	}

	switch roster.TagParsing(cfg.Variant.TagParsing) {
	case roster.TagSplit, roster.TagMajority:
	default:
		errs = append(errs, fmt.Sprintf("variant.tag_parsing %q must be split or majority", cfg.Variant.TagParsing))
	}
	switch cfg.Variant.TeamLabel {
	case TeamLabelSource, TeamLabelTag:
	default:
		errs = append(errs, fmt.Sprintf("variant.team_label %q must be source or tag", cfg.Variant.TeamLabel))
	}

	if len(cfg.Home.Players) == 0 {
		errs = append(errs, "home.players must list at least one player")
	}
	for i, p := range cfg.Home.Players {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Sprintf("home.players[%d]: empty name", i))
		}
	}

	if u := cfg.Roles.SourceURL; u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		errs = append(errs, fmt.Sprintf("roles.source_url %q must be an http(s) URL", u))
	}
	folded := make(map[string]string)
	for _, team := range slices.Sorted(maps.Keys(cfg.Roles.Overrides)) {
		key := strings.ToLower(team)
		if prev, ok := folded[key]; ok {
			errs = append(errs, fmt.Sprintf("roles.overrides: teams %q and %q differ only in case", prev, team))
		} else {
			folded[key] = team
		}
		players := cfg.Roles.Overrides[team]
		for _, player := range slices.Sorted(maps.Keys(players)) {
			if !players[player].Resolved() {
				errs = append(errs, fmt.Sprintf("roles.overrides[%s][%s]: role is required", team, player))
			}
		}
	}

	validateMilestones(cfg.Milestones, &errs)
	schemas := validateSchemas(cfg.Schemas, &errs)
	if _, ok := schemas[cfg.Variant.Schema]; !ok {
		errs = append(errs, fmt.Sprintf("variant.schema %q is not defined", cfg.Variant.Schema))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validateMilestones(defs []MilestoneDef, errs *[]string) {
	ids := make(map[string]int)
	for i, m := range defs {
		if m.ID == "" {
			*errs = append(*errs, fmt.Sprintf("milestones[%d]: id is required", i))
			continue
		}
		if prev, ok := ids[m.ID]; ok {
			*errs = append(*errs, fmt.Sprintf("duplicate milestone id %q (milestones[%d] and milestones[%d])", m.ID, prev, i))
		} else {
			ids[m.ID] = i
		}
		if m.Column == "" {
			*errs = append(*errs, fmt.Sprintf("milestone %s: column is required", m.ID))
		}
		if m.Credit == "" {
			*errs = append(*errs, fmt.Sprintf("milestone %s: credit is required", m.ID))
		}
		if m.When == "" {
			*errs = append(*errs, fmt.Sprintf("milestone %s: when is required", m.ID))
		} else if _, err := condition.Parse(m.When); err != nil {
			*errs = append(*errs, fmt.Sprintf("milestone %s: when %q: %v", m.ID, m.When, err))
		}
	}
}

// validateSchemas returns the set of resolvable schema names, built-ins included.
func validateSchemas(defs []SchemaDef, errs *[]string) map[string]struct{} {
	names := map[string]struct{}{
		VariantStandard:  {},
		VariantSecondary: {},
	}
	declared := make(map[string]bool)
	for i, s := range defs {
		if s.Name == "" {
			*errs = append(*errs, fmt.Sprintf("schemas[%d]: name is required", i))
			continue
		}
		if declared[s.Name] {
			*errs = append(*errs, fmt.Sprintf("duplicate schema name %q", s.Name))
		}
		declared[s.Name] = true
		names[s.Name] = struct{}{}
		if len(s.Blocks) == 0 {
			*errs = append(*errs, fmt.Sprintf("schema %s: blocks must not be empty", s.Name))
		}
		for j, b := range s.Blocks {
			loc := fmt.Sprintf("schema %s.blocks[%d]", s.Name, j)
			if b.Kind != "role" && b.Kind != "team" {
				*errs = append(*errs, fmt.Sprintf("%s: kind %q must be role or team", loc, b.Kind))
			}
			if _, err := roster.ParseStat(b.Stat); err != nil {
				*errs = append(*errs, fmt.Sprintf("%s: %v", loc, err))
			}
			if b.Minute < 0 {
				*errs = append(*errs, fmt.Sprintf("%s: minute must not be negative", loc))
			}
		}
	}
	return names
}
