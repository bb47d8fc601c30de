package filter

import (
	"strings"
)

// Eval walks expr against an in-memory JSON document (map[string]any), the
// same shape the patch engine and storage layer work with. This is the
// in-memory counterpart of the SQL path compiled by scim/sqlcompile. It
// takes no catalog and compares every string case-insensitively, so for
// case-exact attributes (id, externalId, ...) it can match where the
// compiled SQL does not.
func Eval(expr Expr, doc map[string]any) bool {
	switch x := expr.(type) {
	case And:
		return Eval(x.L, doc) && Eval(x.R, doc)
	case Or:
		return Eval(x.L, doc) || Eval(x.R, doc)
	case Not:
		return !Eval(x.X, doc)
	case Present:
		for _, v := range lookupAll(doc, x.Attr) {
			if !isEmpty(v) {
				return true
			}
		}
		return false
	case Compare:
		return evalCompare(x, doc)
	case Complex:
		return evalComplex(x, doc)
	default:
		return false
	}
}

func evalComplex(x Complex, doc map[string]any) bool {
	for _, v := range lookupAll(doc, x.Attr) {
		switch el := v.(type) {
		case []any:
			for _, inner := range el {
				if m, ok := inner.(map[string]any); ok && Eval(x.Inner, m) {
					return true
				}
			}
		case map[string]any:
			if Eval(x.Inner, el) {
				return true
			}
		}
	}
	return false
}

func evalCompare(x Compare, doc map[string]any) bool {
	candidates := lookupAll(doc, x.Attr)
	if len(candidates) == 0 {
		// An absent attribute is unequal to every value.
		return x.Op == Ne
	}

	for _, v := range candidates {
		if compareValue(x.Op, v, x.Val) {
			return true
		}
	}
	return false
}

func compareValue(op Op, have any, want Value) bool {
	switch t := have.(type) {
	case string:
		return compareString(op, t, want)
	case bool:
		if want.Kind != KindBool {
			return false
		}
		return boolOp(op, t, want.Bool)
	case float64:
		if want.Kind != KindNumber {
			return false
		}
		return numOp(op, t, want.Num)
	case []any:
		// A bare multi-valued attribute compares through its elements'
		// value sub-attribute.
		for _, el := range t {
			if m, ok := el.(map[string]any); ok {
				if compareValue(op, m["value"], want) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

func compareString(op Op, have string, want Value) bool {
	if want.Kind != KindString {
		return false
	}
	l, r := strings.ToLower(have), strings.ToLower(want.Str)

	switch op {
	case Eq:
		return l == r
	case Ne:
		return l != r
	case Co:
		return strings.Contains(l, r)
	case Sw:
		return strings.HasPrefix(l, r)
	case Ew:
		return strings.HasSuffix(l, r)
	case Gt:
		return l > r
	case Ge:
		return l >= r
	case Lt:
		return l < r
	case Le:
		return l <= r
	default:
		return false
	}
}

func boolOp(op Op, have, want bool) bool {
	switch op {
	case Eq:
		return have == want
	case Ne:
		return have != want
	default:
		return false
	}
}

func numOp(op Op, have, want float64) bool {
	switch op {
	case Eq:
		return have == want
	case Ne:
		return have != want
	case Gt:
		return have > want
	case Ge:
		return have >= want
	case Lt:
		return have < want
	case Le:
		return have <= want
	default:
		return false
	}
}

// lookupAll resolves a dotted attribute path case-insensitively, fanning
// out across arrays: "emails.value" against a multi-valued emails attribute
// yields every element's value, mirroring the EXISTS form the SQL compiler
// emits for the same path.
func lookupAll(doc map[string]any, dotted string) []any {
	segs := strings.Split(dotted, ".")
	return resolve(doc, segs)
}

func resolve(cur any, segs []string) []any {
	if len(segs) == 0 {
		return []any{cur}
	}

	switch t := cur.(type) {
	case map[string]any:
		for k, v := range t {
			if strings.EqualFold(k, segs[0]) {
				return resolve(v, segs[1:])
			}
		}
		return nil
	case []any:
		var out []any
		for _, el := range t {
			out = append(out, resolve(el, segs)...)
		}
		return out
	default:
		return nil
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
