package roles

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolvedRole is reported when a player is in neither the lookup
// source nor the override table.
var ErrUnresolvedRole = errors.New("unresolved role")

// Entry is one row of a roster source.
type Entry struct {
	Name string `json:"name" yaml:"name"`
	Team string `json:"team,omitempty" yaml:"team"`
	Role Role   `json:"role" yaml:"role"`
}

// Lookup resolves a canonical player name to its roster entry.
type Lookup interface {
	Lookup(name string) (Entry, bool)
}

// Static is an in-memory Lookup. It is read-only after construction.
type Static struct {
	entries map[string]Entry
}

// NewStatic indexes entries by name. Aliases rename source names before
// indexing (source -> canonical); the first entry for a name wins.
func NewStatic(entries []Entry, aliases map[string]string) *Static {
	s := &Static{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if canonical, ok := aliases[e.Name]; ok {
			e.Name = canonical
		}
		if e.Name == "" {
			continue
		}
		if _, dup := s.entries[e.Name]; dup {
			continue
		}
		s.entries[e.Name] = e
	}
	return s
}

// Lookup implements Lookup.
func (s *Static) Lookup(name string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	e, ok := s.entries[name]
	return e, ok
}

// Len returns the number of indexed names.
func (s *Static) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns all indexed entries in no particular order.
func (s *Static) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out
}

// Overrides maps team label -> player name -> role for teams the lookup
// source does not cover.
type Overrides map[string]map[string]Role

// Resolver applies a Lookup and falls back to Overrides.
type Resolver struct {
	lookup    Lookup
	overrides Overrides
}

// NewResolver builds a Resolver. A nil lookup resolves through overrides only.
func NewResolver(lookup Lookup, overrides Overrides) *Resolver {
	return &Resolver{lookup: lookup, overrides: overrides}
}

// Resolve returns the entry for player on team. On a miss the returned
// error wraps ErrUnresolvedRole and the entry carries an Unresolved role.
func (r *Resolver) Resolve(player, team string) (Entry, error) {
	if r.lookup != nil {
		if e, ok := r.lookup.Lookup(player); ok && e.Role.Resolved() {
			return e, nil
		}
	}
	if byPlayer, ok := r.overrideTeam(team); ok {
		if role, ok := byPlayer[player]; ok {
			return Entry{Name: player, Team: team, Role: role}, nil
		}
	}
	return Entry{Name: player}, fmt.Errorf("%w: %q (team %q)", ErrUnresolvedRole, player, team)
}

func (r *Resolver) overrideTeam(team string) (map[string]Role, bool) {
	if m, ok := r.overrides[team]; ok {
		return m, true
	}
	// Case-insensitive fallback; the smallest matching key wins.
	var (
		key   string
		found map[string]Role
		ok    bool
	)
	for k, m := range r.overrides {
		if strings.EqualFold(k, team) && (!ok || k < key) {
			key, found, ok = k, m, true
		}
	}
	return found, ok
}
