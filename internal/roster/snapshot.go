package roster

import (
	"time"

	"github.com/gyaneshwarpardhi/scrimstats/internal/event"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roles"
)

const (
	ClockLayout = "15:04:05"
	DateLayout  = "2006-01-02"
)

// Snapshot is one player's state at one timeline event.
type Snapshot struct {
	UpdatedAt  time.Time
	Clock      string
	Date       string
	GameTime   time.Duration
	TeamID     int
	Tag        string
	TeamLabel  string
	Player     string
	Role       roles.Role
	SourceTeam string
	ChampionID int

	MinionsKilled   Value
	ChampionsKilled Value
	Level           Value
	Experience      Value
	CurrentGold     Value
	TotalGold       Value
	GoldPerSecond   Value
}

// Stat returns the named reading, or Missing for an unknown stat.
func (s *Snapshot) Stat(st Stat) Value {
	switch st {
	case CS:
		return s.MinionsKilled
	case Gold:
		return s.TotalGold
	case XP:
		return s.Experience
	case Kills:
		return s.ChampionsKilled
	case Level:
		return s.Level
	case CurrentGold:
		return s.CurrentGold
	case GoldPerSecond:
		return s.GoldPerSecond
	}
	return Missing
}

// complete reports whether every stat a strict variant requires is present.
func (s *Snapshot) complete() bool {
	for _, v := range []Value{
		s.Level, s.Experience, s.CurrentGold, s.TotalGold,
		s.GoldPerSecond, s.MinionsKilled, s.ChampionsKilled,
	} {
		if !v.Valid() {
			return false
		}
	}
	return true
}

// player field keys after flattening a roster array entry.
const (
	keyTag             = "summonerName"
	keyTeamID          = "teamID"
	keyChampionID      = "championID"
	keyLevel           = "level"
	keyExperience      = "experience"
	keyCurrentGold     = "currentGold"
	keyTotalGold       = "totalGold"
	keyGoldPerSecond   = "goldPerSecond"
	keyMinionsKilled   = "stats.minionsKilled"
	keyChampionsKilled = "stats.championsKilled"
)

func newSnapshot(ev *event.Event, side Side, player map[string]interface{}) Snapshot {
	p := event.FlattenMap(player)
	ts := ev.UpdatedAt.UTC()
	s := Snapshot{
		UpdatedAt: ts,
		Clock:     ts.Format(ClockLayout),
		Date:      ts.Format(DateLayout),
		GameTime:  ev.GameTime,
		TeamID:    side.DefaultTeamID(),

		MinionsKilled:   value(p, keyMinionsKilled),
		ChampionsKilled: value(p, keyChampionsKilled),
		Level:           value(p, keyLevel),
		Experience:      value(p, keyExperience),
		CurrentGold:     value(p, keyCurrentGold),
		TotalGold:       value(p, keyTotalGold),
		GoldPerSecond:   value(p, keyGoldPerSecond),
	}
	if tag, ok := p[keyTag].(string); ok {
		s.Tag = tag
	}
	if id, ok := value(p, keyTeamID).Float(); ok {
		s.TeamID = int(id)
	}
	if id, ok := value(p, keyChampionID).Float(); ok {
		s.ChampionID = int(id)
	}
	return s
}

func value(m map[string]interface{}, key string) Value {
	raw, ok := m[key]
	if !ok || raw == nil {
		return Missing
	}
	f, ok := event.Number(raw)
	if !ok {
		return Missing
	}
	return Of(f)
}
