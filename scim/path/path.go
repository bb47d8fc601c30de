// Package path parses SCIM PATCH PATH strings (RFC 7644 §3.5.2)
// into either a simple attribute path or a value-path (attribute + inner
// filter + optional sub-attribute).
package path

import (
	"strings"

	"github.com/scimhub/core/internal/errs"
	"github.com/scimhub/core/scim/filter"
)

// Path is a parsed PATCH PATH. Filter is nil for a plain attrPath.
type Path struct {
	SchemaURN string // e.g. "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User", or ""
	Attr      string // dotted attribute chain, schema prefix stripped
	Filter    filter.Expr
	SubAttr   string // only set when Filter != nil
	Raw       string
}

// Parse parses a PATH string. Empty segments, a missing
// closing ']', or trailing garbage after the value-path yield BadRequest.
func Parse(s string) (*Path, error) {
	if strings.TrimSpace(s) == "" {
		return &Path{Raw: s}, nil
	}

	attrPart, filterPart, subAttr, hasValuePath, err := splitValuePath(s)
	if err != nil {
		return nil, err
	}

	urn, rest := splitSchemaURN(attrPart)
	if rest == "" {
		return nil, errs.PathParse("empty attribute path", s)
	}

	for _, seg := range strings.Split(rest, ".") {
		if seg == "" {
			return nil, errs.PathParse("empty path segment", s)
		}
	}

	p := &Path{SchemaURN: urn, Attr: rest, Raw: s}

	if !hasValuePath {
		return p, nil
	}

	innerExpr, err := filter.Parse(filterPart)
	if err != nil {
		return nil, err
	}

	p.Filter = innerExpr
	p.SubAttr = subAttr

	return p, nil
}

// splitSchemaURN separates an optional "urn:...:" prefix from the dotted
// attribute chain. A schema URN always itself contains colons, so the
// split point is the *last* colon in the string, not the first.
func splitSchemaURN(attrPart string) (urn, rest string) {
	if !strings.HasPrefix(attrPart, "urn:") {
		return "", attrPart
	}

	idx := strings.LastIndex(attrPart, ":")
	if idx < 0 {
		return "", attrPart
	}

	return attrPart[:idx], attrPart[idx+1:]
}

// splitValuePath locates the top-level "[...]" segment (bracket- and
// quote-aware, so quoted values inside the filter may themselves contain
// brackets) and whatever ".subAttr" trails it.
func splitValuePath(s string) (attrPart, filterPart, subAttr string, hasValuePath bool, err error) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return s, "", "", false, nil
	}

	depth := 0
	inQuote := false
	end := -1

	for i := start; i < len(s); i++ {
		c := s[i]

		switch {
		case inQuote:
			if c == '\\' {
				i++
				continue
			}
			if c == '"' {
				inQuote = false
			}
		case c == '"':
			inQuote = true
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				end = i
			}
		}

		if end >= 0 {
			break
		}
	}

	if end < 0 {
		return "", "", "", false, errs.PathParse("missing closing ']'", s)
	}

	attrPart = s[:start]
	filterPart = s[start+1 : end]

	remainder := s[end+1:]
	if remainder == "" {
		return attrPart, filterPart, "", true, nil
	}

	if remainder[0] != '.' || len(remainder) == 1 {
		return "", "", "", false, errs.PathParse("trailing garbage after value-path", s)
	}

	return attrPart, filterPart, remainder[1:], true, nil
}
