package roster

import (
	"fmt"
	"strings"
)

// Stat names a snapshot reading addressable by the differencer.
type Stat string

const (
	CS            Stat = "cs"
	Gold          Stat = "gold"
	XP            Stat = "xp"
	Kills         Stat = "kills"
	Level         Stat = "level"
	CurrentGold   Stat = "current_gold"
	GoldPerSecond Stat = "gold_per_second"
)

var statPrefixes = map[Stat]string{
	CS:            "CS",
	Gold:          "G",
	XP:            "XP",
	Kills:         "K",
	Level:         "LV",
	CurrentGold:   "CG",
	GoldPerSecond: "GPS",
}

// ParseStat accepts a stat name case-insensitively.
func ParseStat(s string) (Stat, error) {
	st := Stat(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := statPrefixes[st]; !ok {
		return "", fmt.Errorf("unknown stat %q", s)
	}
	return st, nil
}

// Prefix is the abbreviation used in summary column headers.
func (s Stat) Prefix() string { return statPrefixes[s] }

func (s *Stat) UnmarshalText(b []byte) error {
	st, err := ParseStat(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
