// Package summary assembles a match's single output row.
package summary

import (
	"fmt"

	"github.com/gyaneshwarpardhi/scrimstats/internal/config"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roles"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roster"
)

// Kind selects per-role or team-aggregate columns.
type Kind string

const (
	RoleBlock Kind = "role"
	TeamBlock Kind = "team"
)

// Block emits differential columns for one stat at one checkpoint minute.
type Block struct {
	Kind   Kind
	Stat   roster.Stat
	Minute int
}

// Headers returns the block's column headers in output order.
func (b Block) Headers() []string {
	prefix := fmt.Sprintf("%sD@%d", b.Stat.Prefix(), b.Minute)
	if b.Kind == TeamBlock {
		return []string{prefix + " Team"}
	}
	out := make([]string, len(roles.Canonical))
	for i, r := range roles.Canonical {
		out[i] = prefix + " " + r.Short()
	}
	return out
}

// Schema is an ordered output layout.
type Schema struct {
	Name       string
	IncludeWin bool
	Blocks     []Block
}

func perRole(minute int, stats ...roster.Stat) []Block {
	out := make([]Block, len(stats))
	for i, s := range stats {
		out[i] = Block{Kind: RoleBlock, Stat: s, Minute: minute}
	}
	return out
}

// Standard is the layout for professional matches.
var Standard = Schema{
	Name:       config.VariantStandard,
	IncludeWin: true,
	Blocks: append(append(
		perRole(10, roster.CS, roster.Gold, roster.XP),
		perRole(15, roster.CS, roster.XP)...),
		Block{Kind: TeamBlock, Stat: roster.Gold, Minute: 15},
		Block{Kind: TeamBlock, Stat: roster.Gold, Minute: 20},
	),
}

// Secondary is the layout for amateur matches, which carry no reliable
// win signal.
var Secondary = Schema{
	Name: config.VariantSecondary,
	Blocks: append(
		perRole(10, roster.CS, roster.Gold, roster.XP),
		perRole(15, roster.CS, roster.Gold, roster.XP)...),
}

// Headers returns every differential column header in order.
func (s Schema) Headers() []string {
	var out []string
	for _, b := range s.Blocks {
		out = append(out, b.Headers()...)
	}
	return out
}

// Minutes returns the distinct checkpoint minutes in first-use order.
func (s Schema) Minutes() []int {
	seen := make(map[int]bool)
	var out []int
	for _, b := range s.Blocks {
		if !seen[b.Minute] {
			seen[b.Minute] = true
			out = append(out, b.Minute)
		}
	}
	return out
}

// FromConfig converts a declared schema.
func FromConfig(def config.SchemaDef) (Schema, error) {
	s := Schema{Name: def.Name, IncludeWin: def.IncludeWin}
	for i, b := range def.Blocks {
		st, err := roster.ParseStat(b.Stat)
		if err != nil {
			return Schema{}, fmt.Errorf("schema %s block %d: %w", def.Name, i, err)
		}
		kind := Kind(b.Kind)
		if kind != RoleBlock && kind != TeamBlock {
			return Schema{}, fmt.Errorf("schema %s block %d: unknown kind %q", def.Name, i, b.Kind)
		}
		s.Blocks = append(s.Blocks, Block{Kind: kind, Stat: st, Minute: b.Minute})
	}
	return s, nil
}

// Select returns the schema called name. Declared schemas shadow the
// built-in ones.
func Select(name string, declared []config.SchemaDef) (Schema, error) {
	for _, d := range declared {
		if d.Name == name {
			return FromConfig(d)
		}
	}
	switch name {
	case Standard.Name:
		return Standard, nil
	case Secondary.Name:
		return Secondary, nil
	}
	return Schema{}, fmt.Errorf("unknown schema %q", name)
}
