package roster

import "fmt"

// Side selects one of the two teams in a match.
type Side int

const (
	TeamOne Side = iota + 1
	TeamTwo
)

const (
	urnTeamOne = "live:lol:riot:team:one"
	urnTeamTwo = "live:lol:riot:team:two"
)

// Field is the payload prefix carrying this side's team-level fields.
func (s Side) Field() string {
	switch s {
	case TeamOne:
		return "teamOne"
	case TeamTwo:
		return "teamTwo"
	}
	return ""
}

// URN is the team reference used by kill, monster and building events.
func (s Side) URN() string {
	switch s {
	case TeamOne:
		return urnTeamOne
	case TeamTwo:
		return urnTeamTwo
	}
	return ""
}

// DefaultTeamID is the in-game team id conventionally assigned to the side.
func (s Side) DefaultTeamID() int {
	switch s {
	case TeamOne:
		return 100
	case TeamTwo:
		return 200
	}
	return 0
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == TeamOne {
		return TeamTwo
	}
	return TeamOne
}

func (s Side) Valid() bool { return s == TeamOne || s == TeamTwo }

func (s Side) String() string {
	switch s {
	case TeamOne:
		return "team_one"
	case TeamTwo:
		return "team_two"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// SideForURN maps a team URN back to its side.
func SideForURN(urn string) (Side, bool) {
	switch urn {
	case urnTeamOne:
		return TeamOne, true
	case urnTeamTwo:
		return TeamTwo, true
	}
	return 0, false
}
