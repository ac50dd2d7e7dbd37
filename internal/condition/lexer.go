package condition

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokCompare
	tokString
	tokNumber
	tokBool
	tokNull
	tokOpen
	tokClose
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexer produces tokens on demand.
type lexer struct {
	src string
	pos int
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) || c == '.' }

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	start := l.pos
	if start >= len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}

	c := l.src[start]
	switch {
	case c == '(':
		l.pos++
		return token{tokOpen, "(", start}, nil
	case c == ')':
		l.pos++
		return token{tokClose, ")", start}, nil
	case c == '"' || c == '\'':
		return l.quoted(c)
	case c == '=' || c == '!' || c == '<' || c == '>':
		return l.comparison()
	case isDigit(c) || (c == '-' && start+1 < len(l.src) && isDigit(l.src[start+1])):
		l.pos++
		for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
			l.pos++
		}
		return token{tokNumber, l.src[start:l.pos], start}, nil
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		word := l.src[start:l.pos]
		switch strings.ToLower(word) {
		case "true", "false":
			return token{tokBool, strings.ToLower(word), start}, nil
		case "null", "nil":
			return token{tokNull, "null", start}, nil
		}
		return token{tokIdent, word, start}, nil
	}
	return token{}, fmt.Errorf("unexpected character %q at position %d", c, start)
}

func (l *lexer) comparison() (token, error) {
	start := l.pos
	c := l.src[start]
	if start+1 < len(l.src) && l.src[start+1] == '=' {
		l.pos += 2
		return token{tokCompare, l.src[start:l.pos], start}, nil
	}
	if c == '=' || c == '!' {
		return token{}, fmt.Errorf("unexpected %q at position %d (did you mean \"%c=\"?)", c, start, c)
	}
	l.pos++
	return token{tokCompare, string(c), start}, nil
}

// quoted reads a string literal. A backslash escapes the next byte.
func (l *lexer) quoted(quote byte) (token, error) {
	start := l.pos
	var b strings.Builder
	for i := start + 1; i < len(l.src); i++ {
		c := l.src[i]
		switch {
		case c == '\\' && i+1 < len(l.src):
			i++
			b.WriteByte(l.src[i])
		case c == quote:
			l.pos = i + 1
			return token{tokString, b.String(), start}, nil
		default:
			b.WriteByte(c)
		}
	}
	return token{}, fmt.Errorf("unterminated string starting at position %d", start)
}
