// Package roster reconstructs per-player stat series for one team of a match.
package roster

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/gyaneshwarpardhi/scrimstats/internal/roles"
	"github.com/gyaneshwarpardhi/scrimstats/internal/timeline"
)

// Flag is one milestone indicator attached to a roster.
type Flag struct {
	ID     string `json:"id"`
	Column string `json:"column"`
	Value  int    `json:"value"`
}

// Roster is one team's snapshots across a match plus its derived flags.
type Roster struct {
	Side      Side
	Variant   Variant
	Snapshots []Snapshot

	// Unresolved lists player names whose role could not be resolved, in
	// first-seen order.
	Unresolved []string
	// Dropped counts snapshots discarded for lacking a wall-clock time
	// (any variant) or a required stat (strict variants).
	Dropped int
	// Incomplete lists clocks holding a full roster but fewer distinct
	// resolved roles than the roster size.
	Incomplete []string

	Milestones []Flag
	Won        bool
}

// Build extracts side's snapshots from tl. Role resolution failures are
// recorded on the roster and never fail the build.
func Build(tl *timeline.Timeline, side Side, resolver *roles.Resolver, variant Variant) (*Roster, error) {
	if tl == nil {
		return nil, errors.New("nil timeline")
	}
	if !side.Valid() {
		return nil, fmt.Errorf("invalid side %d", int(side))
	}
	variant = variant.withDefaults()
	if err := variant.validate(); err != nil {
		return nil, err
	}
	if resolver == nil {
		resolver = roles.NewResolver(nil, nil)
	}

	r := &Roster{Side: side, Variant: variant}
	key := side.Field() + ".players"
	for _, ev := range tl.Events() {
		players, ok := ev.List(key)
		if !ok || len(players) == 0 {
			continue
		}
		for _, p := range players {
			m, ok := p.(map[string]interface{})
			if !ok {
				continue
			}
			// A snapshot needs a wall-clock time to sit on a checkpoint clock.
			if ev.UpdatedAt.IsZero() {
				r.Dropped++
				continue
			}
			r.Snapshots = append(r.Snapshots, newSnapshot(ev, side, m))
		}
	}

	splitTags(r.Snapshots, variant.TagParsing)

	if variant.Strict {
		kept := r.Snapshots[:0]
		for _, s := range r.Snapshots {
			if !s.complete() {
				r.Dropped++
				continue
			}
			kept = append(kept, s)
		}
		r.Snapshots = kept
	}
	r.resolveRoles(resolver)

	slices.SortStableFunc(r.Snapshots, func(a, b Snapshot) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	})
	r.Incomplete = incompleteClocks(r.Snapshots, variant.RosterSize)
	return r, nil
}

func splitTags(snaps []Snapshot, mode TagParsing) {
	for i := range snaps {
		snaps[i].TeamLabel, snaps[i].Player = splitTag(snaps[i].Tag)
	}
	if mode != TagMajority {
		return
	}
	majority := majorityLabel(snaps)
	for i := range snaps {
		s := &snaps[i]
		if s.TeamLabel == majority {
			continue
		}
		// Reversed or unprefixed tag: the first token is the player.
		first, _ := splitTag(s.Tag)
		if first == "" {
			first = s.Player
		}
		s.Player = first
		s.TeamLabel = majority
	}
}

func splitTag(tag string) (label, player string) {
	tag = strings.TrimSpace(tag)
	i := strings.IndexFunc(tag, unicode.IsSpace)
	if i < 0 {
		return "", tag
	}
	return tag[:i], strings.TrimSpace(tag[i:])
}

// majorityLabel returns the most frequent team label; ties go to the
// label seen first.
func majorityLabel(snaps []Snapshot) string {
	counts := make(map[string]int)
	var order []string
	for _, s := range snaps {
		if _, seen := counts[s.TeamLabel]; !seen {
			order = append(order, s.TeamLabel)
		}
		counts[s.TeamLabel]++
	}
	best := ""
	bestN := 0
	for _, label := range order {
		if counts[label] > bestN {
			best, bestN = label, counts[label]
		}
	}
	return best
}

func (r *Roster) resolveRoles(resolver *roles.Resolver) {
	type key struct{ player, label string }
	cache := make(map[key]roles.Entry)
	unresolved := make(map[string]bool)
	for i := range r.Snapshots {
		s := &r.Snapshots[i]
		k := key{s.Player, s.TeamLabel}
		e, ok := cache[k]
		if !ok {
			var err error
			e, err = resolver.Resolve(s.Player, s.TeamLabel)
			if err != nil && !unresolved[s.Player] {
				unresolved[s.Player] = true
				r.Unresolved = append(r.Unresolved, s.Player)
			}
			cache[k] = e
		}
		s.Role = e.Role
		s.SourceTeam = e.Team
	}
}

func incompleteClocks(snaps []Snapshot, size int) []string {
	var out []string
	for i := 0; i < len(snaps); {
		j := i
		seen := make(map[roles.Role]bool)
		for ; j < len(snaps) && snaps[j].Clock == snaps[i].Clock; j++ {
			if snaps[j].Role.Resolved() {
				seen[snaps[j].Role] = true
			}
		}
		if j-i >= size && len(seen) < size {
			out = append(out, snaps[i].Clock)
		}
		i = j
	}
	return out
}

// TeamID is the in-game team id of the roster's first snapshot, or 0.
func (r *Roster) TeamID() int {
	if len(r.Snapshots) == 0 {
		return 0
	}
	return r.Snapshots[0].TeamID
}

// Label is the parsed team label of the first snapshot.
func (r *Roster) Label() string {
	if len(r.Snapshots) == 0 {
		return ""
	}
	return r.Snapshots[0].TeamLabel
}

// SourceTeam is the first team name reported by the role source, if any.
func (r *Roster) SourceTeam() string {
	for _, s := range r.Snapshots {
		if s.SourceTeam != "" {
			return s.SourceTeam
		}
	}
	return ""
}

// Date is the calendar date of the first snapshot.
func (r *Roster) Date() string {
	if len(r.Snapshots) == 0 {
		return ""
	}
	return r.Snapshots[0].Date
}

// HasRole reports whether any snapshot carries role.
func (r *Roster) HasRole(role roles.Role) bool {
	for _, s := range r.Snapshots {
		if s.Role == role {
			return true
		}
	}
	return false
}

// Players returns the player names of the first n snapshots.
func (r *Roster) Players(n int) []string {
	n = min(n, len(r.Snapshots))
	out := make([]string, n)
	for i := range n {
		out[i] = r.Snapshots[i].Player
	}
	return out
}

// Flag returns the value of milestone id.
func (r *Roster) Flag(id string) (int, bool) {
	for _, f := range r.Milestones {
		if f.ID == id {
			return f.Value, true
		}
	}
	return 0, false
}
