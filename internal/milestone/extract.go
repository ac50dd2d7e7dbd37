package milestone

import (
	"errors"
	"fmt"

	"github.com/gyaneshwarpardhi/scrimstats/internal/condition"
	"github.com/gyaneshwarpardhi/scrimstats/internal/event"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roster"
	"github.com/gyaneshwarpardhi/scrimstats/internal/timeline"
)

const winningTeamKey = "winningTeam"

// Outcome is the result of one rule over a timeline.
type Outcome struct {
	ID     string
	Column string
	// Credited is the side awarded the milestone; zero when nobody is.
	Credited roster.Side
	// Seq is the sequence index of the deciding event, or -1.
	Seq int64
}

// Result holds every rule's outcome plus the match winner.
type Result struct {
	Outcomes []Outcome
	// Winner is the side whose team id matched the first non-zero
	// winning-team value; zero when none did.
	Winner roster.Side
}

// Extract runs every rule as one forward scan of tl. Team ids for the win
// check come from the rosters' first snapshots.
func (rs *Rules) Extract(tl *timeline.Timeline, one, two *roster.Roster) (*Result, error) {
	if tl == nil || one == nil || two == nil {
		return nil, errors.New("milestone: timeline and both rosters are required")
	}
	res := &Result{Outcomes: make([]Outcome, 0, len(rs.rules))}
	for _, r := range rs.rules {
		out := Outcome{ID: r.ID, Column: r.Column, Seq: -1}
		ev, err := first(tl, r.when)
		if err != nil {
			return nil, fmt.Errorf("milestone %s: %w", r.ID, err)
		}
		if ev != nil {
			out.Seq = ev.Seq
			if side, ok := r.policy.Credit(ev, r.params); ok {
				out.Credited = side
			}
		}
		res.Outcomes = append(res.Outcomes, out)
	}

	if ev := tl.First(hasWinner); ev != nil {
		id, _ := ev.Number(winningTeamKey)
		for _, r := range []*roster.Roster{one, two} {
			if r.TeamID() != 0 && int(id) == r.TeamID() {
				res.Winner = r.Side
				break
			}
		}
	}
	return res, nil
}

func first(tl *timeline.Timeline, when condition.Expr) (*event.Event, error) {
	for _, ev := range tl.Events() {
		ok, err := condition.Evaluate(when, ev)
		if err != nil {
			return nil, fmt.Errorf("seq %d: %w", ev.Seq, err)
		}
		if ok {
			return ev, nil
		}
	}
	return nil, nil
}

func hasWinner(ev *event.Event) bool {
	n, ok := ev.Number(winningTeamKey)
	return ok && n != 0
}

// Flags returns side's indicator per rule: 1 when credited, else 0.
func (res *Result) Flags(side roster.Side) []roster.Flag {
	out := make([]roster.Flag, len(res.Outcomes))
	for i, o := range res.Outcomes {
		out[i] = roster.Flag{ID: o.ID, Column: o.Column}
		if o.Credited == side {
			out[i].Value = 1
		}
	}
	return out
}

// Apply writes each roster's flags and win outcome, keyed by its side.
func (res *Result) Apply(rosters ...*roster.Roster) {
	for _, r := range rosters {
		r.Milestones = res.Flags(r.Side)
		r.Won = res.Winner != 0 && res.Winner == r.Side
	}
}
