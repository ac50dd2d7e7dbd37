package event

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedInput is returned when a record cannot be placed on the timeline.
var ErrMalformedInput = errors.New("malformed input")

// Record is one decoded line from a match's event files, before flattening.
type Record map[string]interface{}

// Event is a single flattened timeline entry.
type Event struct {
	Seq       int64
	UpdatedAt time.Time
	GameTime  time.Duration
	Type      string
	Subject   string
	Action    string
	Fields    map[string]interface{} // flattened payload, dotted keys
}

// Field returns a flattened payload value. Null JSON values report ok=false.
func (e *Event) Field(key string) (interface{}, bool) {
	v, ok := e.Fields[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns a string field.
func (e *Event) String(key string) (string, bool) {
	v, ok := e.Field(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Number returns a numeric field.
func (e *Event) Number(key string) (float64, bool) {
	v, ok := e.Field(key)
	if !ok {
		return 0, false
	}
	return Number(v)
}

// List returns an array field.
func (e *Event) List(key string) ([]interface{}, bool) {
	v, ok := e.Field(key)
	if !ok {
		return nil, false
	}
	l, ok := v.([]interface{})
	return l, ok
}

// Resolve implements condition.EvalContext.
// The joined dotted path is looked up as a flat key first, then walked
// through any nested objects that survived flattening (empty objects).
func (e *Event) Resolve(path []string) (interface{}, bool) {
	if len(path) == 0 {
		return nil, false
	}
	if v, ok := e.Fields[strings.Join(path, ".")]; ok {
		return v, true
	}
	for i := len(path) - 1; i > 0; i-- {
		head, ok := e.Fields[strings.Join(path[:i], ".")]
		if !ok {
			continue
		}
		m, ok := head.(map[string]interface{})
		if !ok {
			return nil, false
		}
		return walk(m, path[i:])
	}
	return nil, false
}

func walk(m map[string]interface{}, path []string) (interface{}, bool) {
	v, ok := m[path[0]]
	if !ok {
		return nil, false
	}
	if len(path) == 1 {
		return v, true
	}
	sub, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	return walk(sub, path[1:])
}

// Number coerces a decoded JSON value to float64.
func Number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
