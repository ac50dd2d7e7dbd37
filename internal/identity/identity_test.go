package identity_test

import (
	"errors"
	"testing"

	"github.com/gyaneshwarpardhi/scrimstats/internal/identity"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roster"
)

func team(side roster.Side, players ...string) *roster.Roster {
	r := &roster.Roster{Side: side}
	for _, p := range players {
		r.Snapshots = append(r.Snapshots, roster.Snapshot{Player: p})
	}
	return r
}

func TestResolve(t *testing.T) {
	clg := team(roster.TeamTwo, "Ssumday", "Broxah", "Palafox", "Luger", "Poome")
	dig := team(roster.TeamOne, "Armao", "Dardoch", "Yusui", "Neo", "Breezy")

	home, opp, err := identity.Resolve([]string{"palafox"}, 5, dig, clg)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if home != clg || opp != dig {
		t.Errorf("got home %v, want team two", home.Side)
	}

	home, _, err = identity.Resolve([]string{"Nobody", "Armao"}, 5, dig, clg)
	if err != nil || home != dig {
		t.Errorf("second home player should match team one, got %v, %v", home, err)
	}
}

func TestResolveOnlyFirstSnapshots(t *testing.T) {
	a := team(roster.TeamOne, "A1", "A2", "A3", "A4", "A5", "Finn")
	b := team(roster.TeamTwo, "B1", "B2")
	if _, _, err := identity.Resolve([]string{"Finn"}, 5, a, b); !errors.Is(err, identity.ErrAmbiguousIdentity) {
		t.Errorf("player beyond the first 5 snapshots should not match, err = %v", err)
	}
}

func TestResolveAmbiguous(t *testing.T) {
	a := team(roster.TeamOne, "Finn", "Broxah")
	b := team(roster.TeamTwo, "Armao", "Dardoch")

	cases := map[string][]string{
		"neither": {"Palafox"},
		"both":    {"Finn", "Armao"},
		"empty":   nil,
	}
	for name, home := range cases {
		t.Run(name, func(t *testing.T) {
			h, o, err := identity.Resolve(home, 5, a, b)
			if !errors.Is(err, identity.ErrAmbiguousIdentity) {
				t.Fatalf("err = %v, want ErrAmbiguousIdentity", err)
			}
			if h != nil || o != nil {
				t.Error("ambiguous result should not pick a roster")
			}
		})
	}
}
