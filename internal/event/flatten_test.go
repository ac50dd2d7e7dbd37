package event_test

import (
	"errors"
	"testing"
	"time"

	"github.com/gyaneshwarpardhi/scrimstats/internal/event"
)

func TestFlatten_CollapsesPayloadSegments(t *testing.T) {
	rec := event.Record{
		"seqIdx": float64(42),
		"payload": map[string]interface{}{
			"type":            "SNAPSHOT",
			"action":          "UPDATE",
			"sourceUpdatedAt": "2021-08-08T23:05:12.500Z",
			"payload": map[string]interface{}{
				"gameTime": float64(65000),
				"teamOne": map[string]interface{}{
					"dragonKills": float64(1),
					"players": []interface{}{
						map[string]interface{}{"summonerName": "CLG Finn"},
					},
				},
			},
		},
	}

	ev, err := event.Flatten(rec)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if ev.Seq != 42 {
		t.Errorf("Seq = %d, want 42", ev.Seq)
	}
	if ev.Type != "SNAPSHOT" || ev.Action != "UPDATE" {
		t.Errorf("Type/Action = %q/%q", ev.Type, ev.Action)
	}
	if ev.GameTime != 65*time.Second {
		t.Errorf("GameTime = %v, want 65s", ev.GameTime)
	}
	want := time.Date(2021, 8, 8, 23, 5, 12, 500*int(time.Millisecond), time.UTC)
	if !ev.UpdatedAt.Equal(want) {
		t.Errorf("UpdatedAt = %v, want %v", ev.UpdatedAt, want)
	}
	if n, ok := ev.Number("teamOne.dragonKills"); !ok || n != 1 {
		t.Errorf("teamOne.dragonKills = %v (%v)", n, ok)
	}
	players, ok := ev.List("teamOne.players")
	if !ok || len(players) != 1 {
		t.Fatalf("teamOne.players should stay an array, got %#v", ev.Fields["teamOne.players"])
	}
	for k := range ev.Fields {
		if len(k) >= 8 && k[:8] == "payload." {
			t.Errorf("key %q still carries a payload prefix", k)
		}
	}
}

func TestFlatten_ShallowKeyWins(t *testing.T) {
	rec := event.Record{
		"seqIdx": float64(1),
		"payload": map[string]interface{}{
			"type":    "GAME_EVENT",
			"payload": map[string]interface{}{"type": "inner"},
		},
	}
	ev, err := event.Flatten(rec)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if ev.Type != "GAME_EVENT" {
		t.Errorf("Type = %q, want GAME_EVENT", ev.Type)
	}
}

func TestFlatten_MissingSeq(t *testing.T) {
	cases := []struct {
		name string
		rec  event.Record
	}{
		{"absent", event.Record{"payload": map[string]interface{}{}}},
		{"null", event.Record{"seqIdx": nil}},
		{"fractional", event.Record{"seqIdx": 1.5}},
		{"text", event.Record{"seqIdx": "abc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := event.Flatten(tc.rec)
			if !errors.Is(err, event.ErrMalformedInput) {
				t.Fatalf("expected ErrMalformedInput, got %v", err)
			}
		})
	}
}

func TestEvent_Resolve(t *testing.T) {
	ev := &event.Event{Fields: map[string]interface{}{
		"teamOne.dragonKills": float64(2),
		"extra":               map[string]interface{}{},
		"victimTeamUrn":       nil,
	}}
	if v, ok := ev.Resolve([]string{"teamOne", "dragonKills"}); !ok || v != float64(2) {
		t.Errorf("Resolve teamOne.dragonKills = %v (%v)", v, ok)
	}
	if _, ok := ev.Resolve([]string{"missing"}); ok {
		t.Error("missing field should not resolve")
	}
	if _, ok := ev.Field("victimTeamUrn"); ok {
		t.Error("null field should report absent via Field")
	}
}
