package milestone_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/gyaneshwarpardhi/scrimstats/internal/config"
	"github.com/gyaneshwarpardhi/scrimstats/internal/event"
	"github.com/gyaneshwarpardhi/scrimstats/internal/milestone"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roster"
	"github.com/gyaneshwarpardhi/scrimstats/internal/timeline"
)

const (
	urnOne = "live:lol:riot:team:one"
	urnTwo = "live:lol:riot:team:two"
)

var start = time.Date(2021, 8, 8, 19, 0, 0, 0, time.UTC)

func record(seq int, payload map[string]interface{}) event.Record {
	if _, ok := payload["sourceUpdatedAt"]; !ok {
		payload["sourceUpdatedAt"] = start.Add(time.Duration(seq) * time.Second).Format(time.RFC3339)
	}
	return event.Record{
		"seqIdx":  float64(seq),
		"payload": map[string]interface{}{"payload": payload},
	}
}

func rosterEvent(seq int) event.Record {
	p := func(tag string, team int) map[string]interface{} {
		return map[string]interface{}{
			"summonerName": tag, "teamID": float64(team),
			"level": 1.0, "experience": 0.0, "currentGold": 500.0, "totalGold": 500.0, "goldPerSecond": 0.0,
			"stats": map[string]interface{}{"minionsKilled": 0.0, "championsKilled": 0.0},
		}
	}
	return record(seq, map[string]interface{}{
		"teamOne": map[string]interface{}{"players": []interface{}{p("CLG Finn", 100)}},
		"teamTwo": map[string]interface{}{"players": []interface{}{p("DIG Armao", 200)}},
	})
}

func build(t *testing.T, records ...event.Record) (*timeline.Timeline, *roster.Roster, *roster.Roster) {
	t.Helper()
	tl, err := timeline.Build(records)
	if err != nil {
		t.Fatalf("timeline.Build: %v", err)
	}
	one, err := roster.Build(tl, roster.TeamOne, nil, roster.Standard)
	if err != nil {
		t.Fatalf("roster.Build: %v", err)
	}
	two, err := roster.Build(tl, roster.TeamTwo, nil, roster.Standard)
	if err != nil {
		t.Fatalf("roster.Build: %v", err)
	}
	return tl, one, two
}

func flags(r *roster.Roster) map[string]int {
	out := make(map[string]int)
	for _, f := range r.Milestones {
		out[f.ID] = f.Value
	}
	return out
}

func extract(t *testing.T, tl *timeline.Timeline, one, two *roster.Roster) *milestone.Result {
	t.Helper()
	rules, err := milestone.Build(nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	res, err := rules.Extract(tl, one, two)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	res.Apply(one, two)
	return res
}

func TestFirstDragonOutOfOrder(t *testing.T) {
	tl, one, two := build(t,
		rosterEvent(0),
		record(2, map[string]interface{}{
			"teamOne": map[string]interface{}{"dragonKills": 1.0},
			"teamTwo": map[string]interface{}{"dragonKills": 0.0},
		}),
		record(1, map[string]interface{}{
			"teamOne": map[string]interface{}{"dragonKills": 0.0},
			"teamTwo": map[string]interface{}{"dragonKills": 0.0},
		}),
	)
	extract(t, tl, one, two)
	if got := flags(one)[milestone.FirstDragon]; got != 1 {
		t.Errorf("team one first dragon = %d, want 1", got)
	}
	if got := flags(two)[milestone.FirstDragon]; got != 0 {
		t.Errorf("team two first dragon = %d, want 0", got)
	}
}

func TestNoKillsNoFirstBlood(t *testing.T) {
	tl, one, two := build(t, rosterEvent(0), rosterEvent(1))
	res := extract(t, tl, one, two)
	for _, r := range []*roster.Roster{one, two} {
		for id, v := range flags(r) {
			if v != 0 {
				t.Errorf("%v %s = %d, want 0", r.Side, id, v)
			}
		}
		if r.Won {
			t.Errorf("%v won without a winning-team event", r.Side)
		}
	}
	if res.Outcomes[0].Seq != -1 {
		t.Errorf("first blood Seq = %d, want -1", res.Outcomes[0].Seq)
	}
}

func TestFullMatch(t *testing.T) {
	records := []event.Record{
		rosterEvent(0),
		record(1, map[string]interface{}{"victimTeamUrn": urnOne, "killerTeamUrn": urnTwo}),
		record(2, map[string]interface{}{"victimTeamUrn": urnTwo}),
		record(3, map[string]interface{}{"monsterType": "riftHerald", "killerTeamUrn": urnOne}),
		record(4, map[string]interface{}{"buildingType": "turret", "lane": "bot", "turretTier": "outer", "buildingTeamUrn": urnTwo}),
		record(5, map[string]interface{}{"buildingType": "turret", "lane": "mid", "turretTier": "outer", "buildingTeamUrn": urnOne}),
		record(6, map[string]interface{}{
			"teamOne": map[string]interface{}{"dragonKills": 0.0},
			"teamTwo": map[string]interface{}{"dragonKills": 1.0},
		}),
		record(7, map[string]interface{}{"winningTeam": 0.0}),
		record(8, map[string]interface{}{"winningTeam": 200.0}),
	}
	tl, one, two := build(t, records...)
	extract(t, tl, one, two)

	wantOne := map[string]int{
		milestone.FirstBlood: 0, milestone.FirstDragon: 0, milestone.FirstHerald: 1,
		milestone.FirstTower: 1, milestone.FirstMidTower: 0,
	}
	wantTwo := map[string]int{
		milestone.FirstBlood: 1, milestone.FirstDragon: 1, milestone.FirstHerald: 0,
		milestone.FirstTower: 0, milestone.FirstMidTower: 1,
	}
	if got := flags(one); !reflect.DeepEqual(got, wantOne) {
		t.Errorf("team one flags = %v, want %v", got, wantOne)
	}
	if got := flags(two); !reflect.DeepEqual(got, wantTwo) {
		t.Errorf("team two flags = %v, want %v", got, wantTwo)
	}
	if one.Won || !two.Won {
		t.Errorf("won: one=%v two=%v", one.Won, two.Won)
	}

	cols := make([]string, len(one.Milestones))
	for i, f := range one.Milestones {
		cols[i] = f.Column
	}
	if want := []string{"First Blood", "First Drag", "First Herald", "First Tower", "Mid Tower"}; !reflect.DeepEqual(cols, want) {
		t.Errorf("columns = %v", cols)
	}

	// Re-running yields the same outcome.
	rules, _ := milestone.Build(nil, nil)
	a, _ := rules.Extract(tl, one, two)
	b, _ := rules.Extract(tl, one, two)
	if !reflect.DeepEqual(a, b) {
		t.Error("extraction is not deterministic")
	}
}

func TestUnknownURNCreditsNobody(t *testing.T) {
	tl, one, two := build(t,
		rosterEvent(0),
		record(1, map[string]interface{}{"buildingType": "turret", "lane": "mid", "turretTier": "outer", "buildingTeamUrn": "lie:lol:riot:team:one"}),
	)
	res := extract(t, tl, one, two)
	for _, o := range res.Outcomes {
		if o.ID == milestone.FirstMidTower && (o.Credited != 0 || o.Seq != 1) {
			t.Errorf("mid tower outcome = %+v", o)
		}
	}
	if flags(one)[milestone.FirstMidTower] != 0 || flags(two)[milestone.FirstMidTower] != 0 {
		t.Error("unknown URN should credit nobody")
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name string
		defs []config.MilestoneDef
	}{
		{"bad expression", []config.MilestoneDef{{ID: "x", When: "lane ==", Credit: "team", Params: map[string]interface{}{"field": "f"}}}},
		{"unknown policy", []config.MilestoneDef{{ID: "x", When: "lane == 1", Credit: "nobody"}}},
		{"missing params", []config.MilestoneDef{{ID: "x", When: "lane == 1", Credit: "counter", Params: map[string]interface{}{"team_one": "a"}}}},
		{"duplicate id", []config.MilestoneDef{
			{ID: "x", When: "lane == 1", Credit: "team", Params: map[string]interface{}{"field": "f"}},
			{ID: "x", When: "lane == 2", Credit: "team", Params: map[string]interface{}{"field": "f"}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := milestone.Build(tc.defs, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	reg := milestone.DefaultRegistry()
	if got := reg.Names(); !reflect.DeepEqual(got, []string{"counter", "opponent", "team"}) {
		t.Errorf("Names = %v", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	reg.Register(milestone.TeamPolicy{})
}
