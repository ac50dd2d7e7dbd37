package milestone

import (
	"fmt"

	"github.com/gyaneshwarpardhi/scrimstats/internal/event"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roster"
)

// Policy decides which side a rule's first matching event credits.
type Policy interface {
	// Name returns the key this policy is registered under.
	Name() string
	// Credit returns the credited side, or false when the event credits nobody.
	Credit(ev *event.Event, params map[string]interface{}) (roster.Side, bool)
	// Validate checks params at build time.
	Validate(params map[string]interface{}) error
}

func stringParam(params map[string]interface{}, key string) (string, error) {
	raw, ok := params[key]
	if !ok {
		return "", fmt.Errorf("param %q is required", key)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("param %q must be a non-empty string", key)
	}
	return s, nil
}

// TeamPolicy credits the team referenced by the URN in params["field"].
type TeamPolicy struct{}

func (TeamPolicy) Name() string { return "team" }

func (TeamPolicy) Validate(params map[string]interface{}) error {
	_, err := stringParam(params, "field")
	return err
}

func (TeamPolicy) Credit(ev *event.Event, params map[string]interface{}) (roster.Side, bool) {
	return urnSide(ev, params)
}

// OpponentPolicy credits the team opposite the URN in params["field"]:
// the victim of a kill or the owner of a destroyed building.
type OpponentPolicy struct{}

func (OpponentPolicy) Name() string { return "opponent" }

func (OpponentPolicy) Validate(params map[string]interface{}) error {
	_, err := stringParam(params, "field")
	return err
}

func (OpponentPolicy) Credit(ev *event.Event, params map[string]interface{}) (roster.Side, bool) {
	side, ok := urnSide(ev, params)
	if !ok {
		return 0, false
	}
	return side.Other(), true
}

func urnSide(ev *event.Event, params map[string]interface{}) (roster.Side, bool) {
	field, err := stringParam(params, "field")
	if err != nil {
		return 0, false
	}
	urn, ok := ev.String(field)
	if !ok {
		return 0, false
	}
	return roster.SideForURN(urn)
}

// CounterPolicy credits the side whose counter field (params["team_one"],
// params["team_two"]) is nonzero. Team one wins a tie.
type CounterPolicy struct{}

func (CounterPolicy) Name() string { return "counter" }

func (CounterPolicy) Validate(params map[string]interface{}) error {
	if _, err := stringParam(params, "team_one"); err != nil {
		return err
	}
	_, err := stringParam(params, "team_two")
	return err
}

func (CounterPolicy) Credit(ev *event.Event, params map[string]interface{}) (roster.Side, bool) {
	for _, c := range []struct {
		key  string
		side roster.Side
	}{{"team_one", roster.TeamOne}, {"team_two", roster.TeamTwo}} {
		field, err := stringParam(params, c.key)
		if err != nil {
			continue
		}
		if n, ok := ev.Number(field); ok && n != 0 {
			return c.side, true
		}
	}
	return 0, false
}
