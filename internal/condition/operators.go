package condition

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Operator is a comparison operator.
type Operator string

const (
	OpEq       Operator = "=="
	OpNeq      Operator = "!="
	OpGt       Operator = ">"
	OpGte      Operator = ">="
	OpLt       Operator = "<"
	OpLte      Operator = "<="
	OpContains Operator = "contains"
	OpMatches  Operator = "matches"
)

type compareFunc func(left, right interface{}) (bool, error)

// Null handling: nil equals only nil; every other operator is false when
// either side is nil.
var comparators = map[Operator]compareFunc{
	OpEq:       func(l, r interface{}) (bool, error) { return equal(l, r), nil },
	OpNeq:      func(l, r interface{}) (bool, error) { return !equal(l, r), nil },
	OpGt:       ordered(OpGt, func(a, b float64) bool { return a > b }),
	OpGte:      ordered(OpGte, func(a, b float64) bool { return a >= b }),
	OpLt:       ordered(OpLt, func(a, b float64) bool { return a < b }),
	OpLte:      ordered(OpLte, func(a, b float64) bool { return a <= b }),
	OpContains: nullFalse(contains),
	OpMatches:  nullFalse(matches),
}

func compare(op Operator, left, right interface{}) (bool, error) {
	fn, ok := comparators[op]
	if !ok {
		return false, fmt.Errorf("unknown operator %q", op)
	}
	return fn(left, right)
}

func nullFalse(fn compareFunc) compareFunc {
	return func(l, r interface{}) (bool, error) {
		if l == nil || r == nil {
			return false, nil
		}
		return fn(l, r)
	}
}

func ordered(op Operator, cmp func(a, b float64) bool) compareFunc {
	return nullFalse(func(l, r interface{}) (bool, error) {
		a, aok := number(l)
		b, bok := number(r)
		if !aok || !bok {
			return false, fmt.Errorf("operator %s needs numbers, got %T and %T", op, l, r)
		}
		return cmp(a, b), nil
	})
}

func number(v interface{}) (float64, bool) {
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
	}
	return 0, false
}

// equal compares numbers by value, bools by identity, anything else by its
// printed form.
func equal(l, r interface{}) bool {
	if l == nil || r == nil {
		return l == nil && r == nil
	}
	if a, ok := number(l); ok {
		b, ok := number(r)
		return ok && math.Abs(a-b) < 1e-9
	}
	if a, ok := l.(bool); ok {
		b, ok := r.(bool)
		return ok && a == b
	}
	return fmt.Sprint(l) == fmt.Sprint(r)
}

// contains is substring match on strings and membership on arrays.
func contains(l, r interface{}) (bool, error) {
	switch v := l.(type) {
	case string:
		return strings.Contains(v, fmt.Sprint(r)), nil
	case []interface{}:
		for _, item := range v {
			if equal(item, r) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("contains: left operand must be a string or array, got %T", l)
}

func matches(l, r interface{}) (bool, error) {
	s, ok := l.(string)
	if !ok {
		return false, fmt.Errorf("matches: left operand must be a string, got %T", l)
	}
	re, ok := r.(*regexp.Regexp)
	if !ok {
		return false, fmt.Errorf("matches: pattern was not compiled, got %T", r)
	}
	return re.MatchString(s), nil
}

// compilePattern replaces a string literal with its compiled regexp.
func compilePattern(o Operand) (Operand, error) {
	lit, ok := o.(*Literal)
	if !ok {
		return nil, fmt.Errorf("matches: pattern must be a string literal")
	}
	s, ok := lit.Value.(string)
	if !ok {
		return nil, fmt.Errorf("matches: pattern must be a string literal")
	}
	re, err := regexp.Compile(s)
	if err != nil {
		return nil, fmt.Errorf("matches: invalid regex %q: %w", s, err)
	}
	return &Literal{Value: re}, nil
}
