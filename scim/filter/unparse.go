package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Unparse renders an Expr back to canonical filter text: single spaces
// around logical operators, double-quoted string values with escapes, and
// parentheses only where precedence requires them (not > and > or, so
// And/Or children that are themselves Or get parenthesized).
func Unparse(e Expr) string {
	return unparse(e, 0)
}

// prec gives each node a binding strength so the printer only parenthesizes
// a child when its own precedence is weaker than its parent's.
func prec(e Expr) int {
	switch e.(type) {
	case Or:
		return 1
	case And:
		return 2
	case Not:
		return 3
	default:
		return 4
	}
}

func unparse(e Expr, parent int) string {
	s := render(e)
	if prec(e) < parent {
		return "(" + s + ")"
	}
	return s
}

func render(e Expr) string {
	switch x := e.(type) {
	case Or:
		return unparse(x.L, 1) + " or " + unparse(x.R, 2)
	case And:
		return unparse(x.L, 2) + " and " + unparse(x.R, 3)
	case Not:
		return "not " + unparse(x.X, 4)
	case Present:
		return x.Attr + " pr"
	case Compare:
		return x.Attr + " " + string(x.Op) + " " + renderValue(x.Val)
	case Complex:
		return x.Attr + "[" + unparse(x.Inner, 0) + "]"
	default:
		return fmt.Sprintf("%v", e)
	}
}

func renderValue(v Value) string {
	switch v.Kind {
	case KindString:
		return strconv.Quote(v.Str)
	case KindNumber:
		if v.Raw != "" {
			return v.Raw
		}
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNull:
		return "null"
	default:
		return ""
	}
}

// equalExpr is used by tests to compare two ASTs through their canonical
// Unparse text. Number literals render from Value.Raw when it is set, so
// "1.50" and "1.5" compare as different.
func equalExpr(a, b Expr) bool {
	return strings.TrimSpace(Unparse(a)) == strings.TrimSpace(Unparse(b))
}
