// Package timeline orders a match's flattened events into one chronology.
package timeline

import (
	"fmt"
	"slices"

	"github.com/gyaneshwarpardhi/scrimstats/internal/event"
)

// ErrMalformedInput is returned when a record has no usable ordering key.
var ErrMalformedInput = event.ErrMalformedInput

// Timeline is an immutable, sequence-ordered list of events for one match.
type Timeline struct {
	events     []*event.Event
	duplicates int
}

// Build flattens records and sorts them by sequence index, then by source
// update time. Later records repeating an already-seen sequence index are
// discarded. Any record without a sequence index fails the whole build.
func Build(records []event.Record) (*Timeline, error) {
	events := make([]*event.Event, 0, len(records))
	for i, r := range records {
		ev, err := event.Flatten(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		events = append(events, ev)
	}
	return FromEvents(events), nil
}

// FromEvents orders already-flattened events.
func FromEvents(events []*event.Event) *Timeline {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b *event.Event) int {
		if a.Seq != b.Seq {
			if a.Seq < b.Seq {
				return -1
			}
			return 1
		}
		return a.UpdatedAt.Compare(b.UpdatedAt)
	})

	tl := &Timeline{events: make([]*event.Event, 0, len(sorted))}
	for _, ev := range sorted {
		if n := len(tl.events); n > 0 && tl.events[n-1].Seq == ev.Seq {
			tl.duplicates++
			continue
		}
		tl.events = append(tl.events, ev)
	}
	return tl
}

// Events returns the ordered events. Callers must not modify the slice.
func (t *Timeline) Events() []*event.Event { return t.events }

// Len returns the number of events.
func (t *Timeline) Len() int { return len(t.events) }

// Duplicates returns how many records were dropped for a repeated sequence index.
func (t *Timeline) Duplicates() int { return t.duplicates }

// First returns the earliest event satisfying pred, or nil.
func (t *Timeline) First(pred func(*event.Event) bool) *event.Event {
	for _, ev := range t.events {
		if pred(ev) {
			return ev
		}
	}
	return nil
}
