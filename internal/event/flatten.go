package event

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	seqKey       = "seqIdx"
	payloadKey   = "payload"
	updatedAtKey = "sourceUpdatedAt"
	gameTimeKey  = "gameTime"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// Flatten turns a raw record into an Event.
//
// The record's payload is hoisted into dotted keys and every "payload"
// path segment is collapsed, so payload.payload.teamOne.players becomes
// teamOne.players. Arrays are kept as values. When two paths collapse onto
// the same key the shallower one wins.
func Flatten(r Record) (*Event, error) {
	raw, ok := r[seqKey]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: %s missing", ErrMalformedInput, seqKey)
	}
	seq, ok := Number(raw)
	if !ok || seq != math.Trunc(seq) {
		return nil, fmt.Errorf("%w: %s %v is not an integer", ErrMalformedInput, seqKey, raw)
	}

	ev := &Event{
		Seq:    int64(seq),
		Fields: make(map[string]interface{}),
	}
	if p, ok := r[payloadKey].(map[string]interface{}); ok {
		ev.Fields = FlattenMap(p)
	}

	ev.Type, _ = ev.String("type")
	ev.Subject, _ = ev.String("subject")
	ev.Action, _ = ev.String("action")
	if s, ok := ev.String(updatedAtKey); ok {
		ev.UpdatedAt = ParseTime(s)
	}
	if ms, ok := ev.Number(gameTimeKey); ok {
		ev.GameTime = time.Duration(ms * float64(time.Millisecond))
	}
	return ev, nil
}

// FlattenMap hoists nested objects of m into dotted keys using the same
// rules as Flatten. It is used for the player objects inside roster arrays.
func FlattenMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	hoist(out, make(map[string]int), nil, m)
	return out
}

func hoist(dst map[string]interface{}, depth map[string]int, prefix []string, m map[string]interface{}) {
	for k, v := range m {
		path := append(prefix[:len(prefix):len(prefix)], k)
		if sub, ok := v.(map[string]interface{}); ok && len(sub) > 0 {
			hoist(dst, depth, path, sub)
			continue
		}
		key := collapse(path)
		if d, seen := depth[key]; seen && d <= len(path) {
			continue
		}
		dst[key] = v
		depth[key] = len(path)
	}
}

// collapse drops "payload" segments from a path, keeping the last segment
// even when it is itself named payload.
func collapse(path []string) string {
	out := make([]string, 0, len(path))
	for i, seg := range path {
		if seg == payloadKey && i < len(path)-1 {
			continue
		}
		out = append(out, seg)
	}
	return strings.Join(out, ".")
}

// ParseTime parses the source timestamp formats; unparsable input yields
// the zero time.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
