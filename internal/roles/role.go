// Package roles maps player names to lane roles.
package roles

import (
	"fmt"
	"strings"
)

// Role is a lane position. The zero value is Unresolved.
type Role string

const (
	Unresolved Role = ""
	Top        Role = "Top"
	Jungle     Role = "Jungle"
	Mid        Role = "Mid"
	Bot        Role = "Bot"
	Support    Role = "Support"
)

// Canonical lists the five lane roles in output order.
var Canonical = []Role{Top, Jungle, Mid, Bot, Support}

var aliases = map[string]Role{
	"top":     Top,
	"jungle":  Jungle,
	"jungler": Jungle,
	"jg":      Jungle,
	"jgl":     Jungle,
	"mid":     Mid,
	"middle":  Mid,
	"bot":     Bot,
	"bottom":  Bot,
	"adc":     Bot,
	"ad":      Bot,
	"support": Support,
	"sup":     Support,
	"supp":    Support,
	"utility": Support,
}

// ParseRole accepts the canonical names and common aliases, case-insensitively.
func ParseRole(s string) (Role, error) {
	if r, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return r, nil
	}
	return Unresolved, fmt.Errorf("unknown role %q", s)
}

// Resolved reports whether r is one of the canonical roles.
func (r Role) Resolved() bool { return r != Unresolved }

// Short is the column suffix used in summary headers.
func (r Role) Short() string {
	switch r {
	case Jungle:
		return "Jg"
	case Bot:
		return "AD"
	case Support:
		return "Sup"
	case Unresolved:
		return "?"
	}
	return string(r)
}

// UnmarshalText lets roles be read from YAML and JSON by any alias.
func (r *Role) UnmarshalText(b []byte) error {
	if strings.TrimSpace(string(b)) == "" {
		*r = Unresolved
		return nil
	}
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
