package condition

import (
	"fmt"
	"strconv"
	"strings"
)

// parser is a precedence-climbing parser over a one-token lookahead.
//
//	expr       = unary { ("AND" | "OR") unary }     AND binds tighter
//	unary      = "NOT" unary | "(" expr ")" | comparison
//	comparison = operand op operand
type parser struct {
	lex *lexer
	tok token
}

// Parse compiles an expression string.
func Parse(src string) (Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	p := &parser{lex: &lexer{src: src}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	e, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at position %d after expression", p.tok.text, p.tok.pos)
	}
	return e, nil
}

// MustParse is Parse for expressions known at compile time.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(fmt.Sprintf("condition: %q: %v", src, err))
	}
	return e
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) isKeyword(kw string) bool {
	return p.tok.kind == tokIdent && strings.EqualFold(p.tok.text, kw)
}

// logic returns the connective at the cursor and its binding power.
func (p *parser) logic() (Logic, int, bool) {
	switch {
	case p.isKeyword("OR"):
		return Or, 1, true
	case p.isKeyword("AND"):
		return And, 2, true
	}
	return "", 0, false
}

func (p *parser) expr(minPrec int) (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, prec, ok := p.logic()
		if !ok || prec <= minPrec {
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.expr(prec)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *parser) unary() (Expr, error) {
	switch {
	case p.isKeyword("NOT"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Expr: inner}, nil
	case p.tok.kind == tokOpen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokClose {
			return nil, fmt.Errorf("expected \")\" at position %d, got %q", p.tok.pos, p.tok.text)
		}
		return inner, p.advance()
	}
	return p.comparison()
}

func (p *parser) comparison() (Expr, error) {
	left, err := p.operand()
	if err != nil {
		return nil, err
	}

	var op Operator
	switch {
	case p.tok.kind == tokCompare:
		op = Operator(p.tok.text)
	case p.isKeyword(string(OpContains)):
		op = OpContains
	case p.isKeyword(string(OpMatches)):
		op = OpMatches
	default:
		return nil, fmt.Errorf("expected comparison operator at position %d, got %q", p.tok.pos, p.tok.text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	right, err := p.operand()
	if err != nil {
		return nil, err
	}
	if op == OpMatches {
		if right, err = compilePattern(right); err != nil {
			return nil, err
		}
	}
	return &ComparisonExpr{Left: left, Op: op, Right: right}, nil
}

func (p *parser) operand() (Operand, error) {
	t := p.tok
	var o Operand
	switch t.kind {
	case tokString:
		o = &Literal{Value: t.text}
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at position %d", t.text, t.pos)
		}
		o = &Literal{Value: f}
	case tokBool:
		o = &Literal{Value: t.text == "true"}
	case tokNull:
		o = &Literal{Value: nil}
	case tokIdent:
		o = &Field{Path: strings.Split(t.text, ".")}
	default:
		return nil, fmt.Errorf("expected operand at position %d, got %q", t.pos, t.text)
	}
	return o, p.advance()
}
