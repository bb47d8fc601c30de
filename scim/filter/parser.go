package filter

import (
	"strconv"
	"strings"

	"github.com/scimhub/core/internal/errs"
)

// Parse lexes and parses a SCIM filter string into an Expr.
func Parse(s string) (Expr, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks, src: s}

	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.peek().kind != tEOF {
		return nil, errs.FilterParse("trailing garbage after filter", s, p.peek().pos)
	}

	return expr, nil
}

type parser struct {
	toks []token
	pos  int
	src  string
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for isWordKeyword(p.peek(), "or") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{L: left, R: right}
	}

	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for isWordKeyword(p.peek(), "and") {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = And{L: left, R: right}
	}

	return left, nil
}

func (p *parser) parseNot() (Expr, error) {
	if isWordKeyword(p.peek(), "not") {
		p.advance()
		x, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return Not{X: x}, nil
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.peek()

	switch t.kind {
	case tLParen:
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tRParen {
			return nil, errs.FilterParse("unbalanced parenthesis", p.src, p.peek().pos)
		}
		p.advance()
		return inner, nil

	case tWord:
		attr := t.text
		p.advance()

		if p.peek().kind == tLBracket {
			p.advance()
			inner, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if p.peek().kind != tRBracket {
				return nil, errs.FilterParse("unbalanced bracket", p.src, p.peek().pos)
			}
			p.advance()
			return Complex{Attr: attr, Inner: inner}, nil
		}

		return p.parseSimple(attr)

	default:
		return nil, errs.FilterParse("expected attribute path or '('", p.src, t.pos)
	}
}

func (p *parser) parseSimple(attr string) (Expr, error) {
	t := p.peek()

	if isWordKeyword(t, "pr") {
		p.advance()
		return Present{Attr: attr}, nil
	}

	if t.kind != tWord {
		return nil, errs.FilterParse("expected comparison operator", p.src, t.pos)
	}

	op, ok := compareOps[strings.ToLower(t.text)]
	if !ok {
		return nil, errs.FilterParse("unknown operator "+strconv.Quote(t.text), p.src, t.pos)
	}
	p.advance()

	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	return Compare{Attr: attr, Op: op, Val: val}, nil
}

func (p *parser) parseValue() (Value, error) {
	t := p.peek()

	switch t.kind {
	case tString:
		p.advance()
		return Value{Kind: KindString, Str: t.text}, nil

	case tWord:
		p.advance()
		switch strings.ToLower(t.text) {
		case "true":
			return Value{Kind: KindBool, Bool: true}, nil
		case "false":
			return Value{Kind: KindBool, Bool: false}, nil
		case "null":
			return Value{Kind: KindNull}, nil
		default:
			n, err := strconv.ParseFloat(t.text, 64)
			if err != nil {
				return Value{}, errs.FilterParse("expected JSON value, got "+strconv.Quote(t.text), p.src, t.pos)
			}
			return Value{Kind: KindNumber, Num: n, Raw: t.text}, nil
		}

	default:
		return Value{}, errs.FilterParse("expected a comparison value", p.src, t.pos)
	}
}
