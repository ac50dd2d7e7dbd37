package roster

import "fmt"

// TagParsing selects how a raw player tag is split into team label and
// player name.
type TagParsing string

const (
	// TagSplit splits on the first whitespace. A tag without whitespace is
	// taken as the player name with an empty label.
	TagSplit TagParsing = "split"
	// TagMajority splits like TagSplit, then treats any tag whose label
	// differs from the roster's most common label as reversed.
	TagMajority TagParsing = "majority"
)

// DefaultRosterSize is the number of players per team.
const DefaultRosterSize = 5

// Variant parameterizes reconstruction for a data source.
type Variant struct {
	Name string
	// Strict drops snapshots missing any required stat.
	Strict     bool
	TagParsing TagParsing
	RosterSize int
}

// Standard is the variant for fully-populated professional match data.
var Standard = Variant{Name: "standard", Strict: true, TagParsing: TagSplit, RosterSize: DefaultRosterSize}

// Secondary is the tolerant variant for amateur match data.
var Secondary = Variant{Name: "secondary", Strict: false, TagParsing: TagMajority, RosterSize: DefaultRosterSize}

func (v Variant) withDefaults() Variant {
	if v.TagParsing == "" {
		v.TagParsing = TagSplit
	}
	if v.RosterSize <= 0 {
		v.RosterSize = DefaultRosterSize
	}
	return v
}

func (v Variant) validate() error {
	switch v.TagParsing {
	case TagSplit, TagMajority:
		return nil
	}
	return fmt.Errorf("unknown tag parsing %q", v.TagParsing)
}
