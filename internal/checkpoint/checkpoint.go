// Package checkpoint compares two rosters at fixed offsets into a match.
package checkpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/gyaneshwarpardhi/scrimstats/internal/roles"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roster"
)

// ErrCheckpointNotFound is returned when a clock, or a role at that
// clock, has no snapshot. Resolve clocks with Resolve first.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// Resolve maps an offset from the roster's first timestamped snapshot to
// the clock of an existing snapshot: the exact clock when present,
// otherwise the snapshot nearest in time, earliest on a tie. Snapshots
// without a wall-clock time are never anchors or candidates.
func Resolve(r *roster.Roster, offset time.Duration) (string, error) {
	if r == nil || len(r.Snapshots) == 0 {
		return "", errors.New("checkpoint: empty roster")
	}
	anchor := -1
	for i := range r.Snapshots {
		if !r.Snapshots[i].UpdatedAt.IsZero() {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		return "", fmt.Errorf("checkpoint: %v has no timestamped snapshot", r.Side)
	}
	target := r.Snapshots[anchor].UpdatedAt.Add(offset)
	clock := target.UTC().Format(roster.ClockLayout)

	best := -1
	var bestDist time.Duration
	for i, s := range r.Snapshots[anchor:] {
		if s.UpdatedAt.IsZero() {
			continue
		}
		if s.Clock == clock {
			return clock, nil
		}
		d := s.UpdatedAt.Sub(target)
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDist {
			best, bestDist = anchor+i, d
		}
	}
	return r.Snapshots[best].Clock, nil
}

// StatAt returns role's reading at clock. A role the roster never holds
// yields Missing; a clock without snapshots, or without one for role, is
// ErrCheckpointNotFound.
func StatAt(r *roster.Roster, clock string, role roles.Role, stat roster.Stat) (roster.Value, error) {
	if !role.Resolved() || !r.HasRole(role) {
		return roster.Missing, nil
	}
	found := false
	for i := range r.Snapshots {
		s := &r.Snapshots[i]
		if s.Clock != clock {
			continue
		}
		found = true
		if s.Role == role {
			return s.Stat(stat), nil
		}
	}
	if !found {
		return roster.Missing, fmt.Errorf("%w: %v has no snapshot at %s", ErrCheckpointNotFound, r.Side, clock)
	}
	return roster.Missing, fmt.Errorf("%w: %v has no %s snapshot at %s", ErrCheckpointNotFound, r.Side, role, clock)
}

// Differential is StatAt(a) minus StatAt(b). Missing on either side yields Missing.
func Differential(a, b *roster.Roster, clock string, role roles.Role, stat roster.Stat) (roster.Value, error) {
	va, err := StatAt(a, clock, role, stat)
	if err != nil {
		return roster.Missing, err
	}
	vb, err := StatAt(b, clock, role, stat)
	if err != nil {
		return roster.Missing, err
	}
	return va.Sub(vb), nil
}

// TeamStat sums StatAt over the canonical roles.
func TeamStat(r *roster.Roster, clock string, stat roster.Stat) (roster.Value, error) {
	total := roster.Of(0)
	for _, role := range roles.Canonical {
		v, err := StatAt(r, clock, role, stat)
		if err != nil {
			return roster.Missing, err
		}
		total = total.Add(v)
	}
	return total, nil
}

// TeamDifferential is TeamStat(a) minus TeamStat(b).
func TeamDifferential(a, b *roster.Roster, clock string, stat roster.Stat) (roster.Value, error) {
	va, err := TeamStat(a, clock, stat)
	if err != nil {
		return roster.Missing, err
	}
	vb, err := TeamStat(b, clock, stat)
	if err != nil {
		return roster.Missing, err
	}
	return va.Sub(vb), nil
}
