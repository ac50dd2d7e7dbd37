// Package matchtest builds synthetic match event files for tests.
package matchtest

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gyaneshwarpardhi/scrimstats/internal/event"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roles"
)

// Start is the wall-clock time of the first snapshot.
var Start = time.Date(2021, 8, 8, 19, 0, 0, 0, time.UTC)

// TeamOne lists team one (id 100) in canonical role order.
var TeamOne = []string{"Armao", "Dardoch", "Yusui", "Neo", "Breezy"}

// TeamTwo lists team two (id 200) in canonical role order.
var TeamTwo = []string{"Ssumday", "Broxah", "Palafox", "Luger", "Poome"}

// Lookup returns a role table covering both teams.
func Lookup() []roles.Entry {
	var out []roles.Entry
	for i, name := range TeamOne {
		out = append(out, roles.Entry{Name: name, Team: "Dignitas", Role: roles.Canonical[i]})
	}
	for i, name := range TeamTwo {
		out = append(out, roles.Entry{Name: name, Team: "Counter Logic Gaming", Role: roles.Canonical[i]})
	}
	return out
}

// CS is the minions-killed value the fixture reports for a player.
// Team two farms twice as fast as team one.
func CS(teamID, roleIdx, minute int) float64 {
	factor := 1.0
	if teamID == 200 {
		factor = 2
	}
	return factor * float64((roleIdx+1)*minute)
}

func players(label string, teamID int, names []string, minute int) []interface{} {
	out := make([]interface{}, len(names))
	for i, n := range names {
		cs := CS(teamID, i, minute)
		out[i] = map[string]interface{}{
			"summonerName":  label + " " + n,
			"teamID":        float64(teamID),
			"championID":    float64(100 + i),
			"level":         float64(1 + minute/2),
			"experience":    50 * cs,
			"currentGold":   float64(500),
			"totalGold":     100*cs + 500,
			"goldPerSecond": float64(2),
			"stats": map[string]interface{}{
				"minionsKilled":   cs,
				"championsKilled": float64(0),
			},
		}
	}
	return out
}

func record(seq int, at time.Duration, payload map[string]interface{}) event.Record {
	payload["sourceUpdatedAt"] = Start.Add(at).Format(time.RFC3339)
	payload["gameTime"] = float64(at / time.Millisecond)
	return event.Record{
		"seqIdx":  float64(seq),
		"payload": map[string]interface{}{"payload": payload},
	}
}

// Records returns a 21-minute match: a snapshot every minute plus kill,
// dragon, herald, tower and win events. Team two (CLG) wins and takes
// first blood, first dragon, first herald and both towers.
func Records() []event.Record {
	var out []event.Record
	for m := 0; m <= 20; m++ {
		at := time.Duration(m) * time.Minute
		out = append(out, record(m*10, at, map[string]interface{}{
			"type":   "SNAPSHOT",
			"action": "UPDATE",
			"teamOne": map[string]interface{}{
				"players": players("DIG", 100, TeamOne, m),
			},
			"teamTwo": map[string]interface{}{
				"players": players("CLG", 200, TeamTwo, m),
			},
		}))
	}
	out = append(out,
		record(35, 3*time.Minute+30*time.Second, map[string]interface{}{
			"action": "KILLED_PLAYER", "victimTeamUrn": "live:lol:riot:team:one", "killerTeamUrn": "live:lol:riot:team:two",
		}),
		record(36, 3*time.Minute+40*time.Second, map[string]interface{}{
			"action": "KILLED_PLAYER", "victimTeamUrn": "live:lol:riot:team:two",
		}),
		record(65, 6*time.Minute+30*time.Second, map[string]interface{}{
			"action":  "KILLED_DRAGON",
			"teamOne": map[string]interface{}{"dragonKills": 0.0},
			"teamTwo": map[string]interface{}{"dragonKills": 1.0},
		}),
		record(85, 8*time.Minute+30*time.Second, map[string]interface{}{
			"action": "KILLED_EPIC_MONSTER", "monsterType": "riftHerald", "killerTeamUrn": "live:lol:riot:team:two",
		}),
		record(125, 12*time.Minute+30*time.Second, map[string]interface{}{
			"action": "DESTROYED_BUILDING", "buildingType": "turret", "lane": "mid", "turretTier": "outer",
			"buildingTeamUrn": "live:lol:riot:team:one",
		}),
		record(999, 21*time.Minute, map[string]interface{}{
			"action": "END_MAP", "winningTeam": 200.0,
		}),
	)
	return out
}

// WriteDir writes records as JSON lines spread over several files in
// shuffled order and returns the directory.
func WriteDir(t testing.TB, records []event.Record) string {
	t.Helper()
	dir := t.TempDir()
	shuffled := append([]event.Record(nil), records...)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	const files = 3
	for f := 0; f < files; f++ {
		sub := filepath.Join(dir, fmt.Sprintf("part%d", f))
		if err := os.MkdirAll(sub, 0o755); err != nil {
			t.Fatal(err)
		}
		fh, err := os.Create(filepath.Join(sub, "events.json"))
		if err != nil {
			t.Fatal(err)
		}
		enc := json.NewEncoder(fh)
		for i := f; i < len(shuffled); i += files {
			if err := enc.Encode(shuffled[i]); err != nil {
				t.Fatal(err)
			}
		}
		if err := fh.Close(); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
