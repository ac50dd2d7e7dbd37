// Package milestone derives first-occurrence flags (first blood, first
// dragon and so on) from a match timeline.
package milestone

import (
	"fmt"

	"github.com/gyaneshwarpardhi/scrimstats/internal/condition"
	"github.com/gyaneshwarpardhi/scrimstats/internal/config"
)

// Rule is a compiled milestone definition. Immutable after Build.
type Rule struct {
	ID     string
	Column string
	when   condition.Expr
	policy Policy
	params map[string]interface{}
}

// Rules is an ordered, compiled rule set.
type Rules struct {
	rules []*Rule
}

// Build compiles defs against reg. All expressions are parsed here; none
// at extraction time. An empty defs slice uses Defaults; a nil reg uses
// DefaultRegistry.
func Build(defs []config.MilestoneDef, reg *Registry) (*Rules, error) {
	if len(defs) == 0 {
		defs = Defaults()
	}
	if reg == nil {
		reg = DefaultRegistry()
	}
	rs := &Rules{rules: make([]*Rule, 0, len(defs))}
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if seen[d.ID] {
			return nil, fmt.Errorf("milestone %s: duplicate id", d.ID)
		}
		seen[d.ID] = true

		ast, err := condition.Parse(d.When)
		if err != nil {
			return nil, fmt.Errorf("milestone %s: parse %q: %w", d.ID, d.When, err)
		}
		p, err := reg.Get(d.Credit)
		if err != nil {
			return nil, fmt.Errorf("milestone %s: %w", d.ID, err)
		}
		if err := p.Validate(d.Params); err != nil {
			return nil, fmt.Errorf("milestone %s: credit %s: %w", d.ID, d.Credit, err)
		}
		rs.rules = append(rs.rules, &Rule{
			ID:     d.ID,
			Column: d.Column,
			when:   ast,
			policy: p,
			params: d.Params,
		})
	}
	return rs, nil
}

// Rules returns the compiled rules in declaration order.
func (rs *Rules) Rules() []*Rule { return rs.rules }

// Rule IDs of the default set.
const (
	FirstBlood    = "first_blood"
	FirstDragon   = "first_dragon"
	FirstHerald   = "first_herald"
	FirstTower    = "first_tower"
	FirstMidTower = "first_mid_tower"
)

// Defaults returns the five standard milestone rules.
func Defaults() []config.MilestoneDef {
	return []config.MilestoneDef{
		{
			ID:     FirstBlood,
			Column: "First Blood",
			When:   "victimTeamUrn != null",
			Credit: "opponent",
			Params: map[string]interface{}{"field": "victimTeamUrn"},
		},
		{
			ID:     FirstDragon,
			Column: "First Drag",
			When:   "teamOne.dragonKills == 1 OR teamTwo.dragonKills == 1",
			Credit: "counter",
			Params: map[string]interface{}{"team_one": "teamOne.dragonKills", "team_two": "teamTwo.dragonKills"},
		},
		{
			ID:     FirstHerald,
			Column: "First Herald",
			When:   `monsterType == "riftHerald"`,
			Credit: "team",
			Params: map[string]interface{}{"field": "killerTeamUrn"},
		},
		{
			ID:     FirstTower,
			Column: "First Tower",
			When:   `buildingType == "turret"`,
			Credit: "opponent",
			Params: map[string]interface{}{"field": "buildingTeamUrn"},
		},
		{
			ID:     FirstMidTower,
			Column: "Mid Tower",
			When:   `buildingType == "turret" AND lane == "mid" AND turretTier == "outer"`,
			Credit: "opponent",
			Params: map[string]interface{}{"field": "buildingTeamUrn"},
		},
	}
}
