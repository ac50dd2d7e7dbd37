// Package condition implements the predicate language milestone rules are
// written in:
//
//	buildingType == "turret" AND lane == "mid" AND turretTier == "outer"
//	victimTeamUrn != null
//	NOT (monsterType == "dragon") OR killerTeamUrn matches ":two$"
//
// Fields are dotted paths into a flattened event. A field the event does
// not carry evaluates to null.
package condition

import (
	"fmt"
	"strings"
)

// EvalContext provides field values for expression evaluation.
// event.Event satisfies it.
type EvalContext interface {
	Resolve(path []string) (interface{}, bool)
}

// Expr is a parsed boolean expression.
type Expr interface {
	eval(ctx EvalContext) (bool, error)
	walk(fn func(Operand))
}

// Logic is AND or OR.
type Logic string

const (
	And Logic = "AND"
	Or  Logic = "OR"
)

// BinaryExpr joins two expressions, short-circuiting left to right.
type BinaryExpr struct {
	Op          Logic
	Left, Right Expr
}

func (e *BinaryExpr) eval(ctx EvalContext) (bool, error) {
	l, err := e.Left.eval(ctx)
	if err != nil {
		return false, err
	}
	if (e.Op == And && !l) || (e.Op == Or && l) {
		return l, nil
	}
	return e.Right.eval(ctx)
}

func (e *BinaryExpr) walk(fn func(Operand)) {
	e.Left.walk(fn)
	e.Right.walk(fn)
}

// NotExpr negates its operand.
type NotExpr struct {
	Expr Expr
}

func (e *NotExpr) eval(ctx EvalContext) (bool, error) {
	v, err := e.Expr.eval(ctx)
	return !v && err == nil, err
}

func (e *NotExpr) walk(fn func(Operand)) { e.Expr.walk(fn) }

// ComparisonExpr applies Op to two operands.
type ComparisonExpr struct {
	Left  Operand
	Op    Operator
	Right Operand
}

func (e *ComparisonExpr) eval(ctx EvalContext) (bool, error) {
	return compare(e.Op, e.Left.value(ctx), e.Right.value(ctx))
}

func (e *ComparisonExpr) walk(fn func(Operand)) {
	fn(e.Left)
	fn(e.Right)
}

// Operand is a Literal or a Field.
type Operand interface {
	value(ctx EvalContext) interface{}
}

// Literal is a constant: string, float64, bool, compiled pattern, or nil
// for null.
type Literal struct {
	Value interface{}
}

func (l *Literal) value(EvalContext) interface{} { return l.Value }

// Field is a dotted path such as teamOne.dragonKills.
type Field struct {
	Path []string
}

func (f *Field) value(ctx EvalContext) interface{} {
	v, ok := ctx.Resolve(f.Path)
	if !ok {
		return nil
	}
	return v
}

// Evaluate reports whether expr holds for ctx.
func Evaluate(expr Expr, ctx EvalContext) (bool, error) {
	if expr == nil {
		return false, fmt.Errorf("nil expression")
	}
	return expr.eval(ctx)
}

// Fields returns every field path referenced by expr, in source order.
func Fields(expr Expr) []string {
	var out []string
	expr.walk(func(o Operand) {
		if f, ok := o.(*Field); ok {
			out = append(out, strings.Join(f.Path, "."))
		}
	})
	return out
}
