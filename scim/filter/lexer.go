package filter

import (
	"strings"

	"github.com/scimhub/core/internal/errs"
)

type tokenKind int

const (
	tEOF tokenKind = iota
	tLParen
	tRParen
	tLBracket
	tRBracket
	tWord   // attribute path token or a bare operator/keyword
	tString // quoted JSON string literal, already unescaped
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// tokenize performs a quote- and paren-aware scan:
// quoted values may contain escaped quotes, spaces, parens, and operator
// words without those being treated as structural.
func tokenize(s string) ([]token, error) {
	var toks []token

	i := 0
	n := len(s)

	for i < n {
		c := s[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tRParen, ")", i})
			i++
		case c == '[':
			toks = append(toks, token{tLBracket, "[", i})
			i++
		case c == ']':
			toks = append(toks, token{tRBracket, "]", i})
			i++
		case c == '"':
			start := i
			i++
			var b strings.Builder
			closed := false
			for i < n {
				ch := s[i]
				if ch == '\\' && i+1 < n {
					b.WriteByte(s[i+1])
					i += 2
					continue
				}
				if ch == '"' {
					i++
					closed = true
					break
				}
				b.WriteByte(ch)
				i++
			}
			if !closed {
				return nil, errs.FilterParse("unclosed quote", s, start)
			}
			toks = append(toks, token{tString, b.String(), start})
		default:
			start := i
			for i < n && !strings.ContainsRune(" \t\n\r()[]", rune(s[i])) {
				i++
			}
			if i == start {
				return nil, errs.FilterParse("unexpected character", s, start)
			}
			toks = append(toks, token{tWord, s[start:i], start})
		}
	}

	toks = append(toks, token{tEOF, "", n})

	return toks, nil
}

func isWordKeyword(t token, kw string) bool {
	return t.kind == tWord && strings.EqualFold(t.text, kw)
}

var compareOps = map[string]Op{
	"eq": Eq, "ne": Ne, "co": Co, "sw": Sw, "ew": Ew,
	"gt": Gt, "ge": Ge, "lt": Lt, "le": Le,
}
