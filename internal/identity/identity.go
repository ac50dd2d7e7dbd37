// Package identity decides which of a match's two rosters is the home team.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/scrimstats/internal/roster"
)

// ErrAmbiguousIdentity is returned when the home players appear in
// neither roster or in both.
var ErrAmbiguousIdentity = errors.New("ambiguous home team identity")

// Resolve returns (home, opponent). A roster matches when any of its first
// size snapshots names one of the home players, compared case-insensitively.
func Resolve(home []string, size int, a, b *roster.Roster) (*roster.Roster, *roster.Roster, error) {
	if a == nil || b == nil {
		return nil, nil, errors.New("identity: both rosters are required")
	}
	ma, mb := matches(home, size, a), matches(home, size, b)
	switch {
	case ma && !mb:
		return a, b, nil
	case mb && !ma:
		return b, a, nil
	case ma && mb:
		return nil, nil, fmt.Errorf("%w: home players found in both rosters", ErrAmbiguousIdentity)
	default:
		return nil, nil, fmt.Errorf("%w: none of %v found in either roster", ErrAmbiguousIdentity, home)
	}
}

func matches(home []string, size int, r *roster.Roster) bool {
	for _, p := range r.Players(size) {
		for _, h := range home {
			if strings.EqualFold(strings.TrimSpace(h), p) {
				return true
			}
		}
	}
	return false
}
