package sqlcompile

import (
	"fmt"
	"strings"

	"github.com/scimhub/core/scim/catalog"
	"github.com/scimhub/core/scim/filter"
)

// StructuredColumn maps a SCIM attribute to a reserved, non-JSON structured
// column when one exists: id, userName (User)
// / displayName (Group), externalId, meta.created, meta.lastModified.
func StructuredColumn(resourceType, attr string) (string, bool) {
	switch strings.ToLower(attr) {
	case "id":
		return "id", true
	case "externalid":
		return "external_id", true
	case "meta.created":
		return "created_at", true
	case "meta.lastmodified":
		return "updated_at", true
	case "username":
		if resourceType == "User" {
			return "display_name", true
		}
	case "displayname":
		if resourceType == "Group" {
			return "display_name", true
		}
	}
	return "", false
}

// Compile walks expr and returns a parameterized WHERE fragment plus its
// bound parameter values, in dialect's placeholder style.
func Compile(resourceType string, expr filter.Expr, cat *catalog.Catalog, dialect Dialect) (string, []any, error) {
	c := &compiler{resourceType: resourceType, cat: cat, dialect: dialect}

	frag, err := c.compile(expr, "", "")
	if err != nil {
		return "", nil, err
	}

	return frag, c.args, nil
}

type compiler struct {
	resourceType string
	cat          *catalog.Catalog
	dialect      Dialect
	args         []any
	aliasN       int
}

func (c *compiler) bind(v any) string {
	c.args = append(c.args, v)
	return c.dialect.Placeholder(len(c.args))
}

func (c *compiler) nextAlias() string {
	c.aliasN++
	return fmt.Sprintf("e%d", c.aliasN)
}

func joinPrefix(prefix, attr string) string {
	if prefix == "" {
		return attr
	}
	return prefix + "." + attr
}

func (c *compiler) compile(e filter.Expr, alias, prefix string) (string, error) {
	switch x := e.(type) {
	case filter.And:
		l, err := c.compile(x.L, alias, prefix)
		if err != nil {
			return "", err
		}
		r, err := c.compile(x.R, alias, prefix)
		if err != nil {
			return "", err
		}
		return "(" + l + " AND " + r + ")", nil

	case filter.Or:
		l, err := c.compile(x.L, alias, prefix)
		if err != nil {
			return "", err
		}
		r, err := c.compile(x.R, alias, prefix)
		if err != nil {
			return "", err
		}
		return "(" + l + " OR " + r + ")", nil

	case filter.Not:
		inner, err := c.compile(x.X, alias, prefix)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil

	case filter.Present:
		if alias == "" && prefix == "" {
			if arr, rest, ok := c.splitMultiValued(x.Attr); ok {
				return c.compileComplex(filter.Complex{Attr: arr, Inner: filter.Present{Attr: rest}}, "", "")
			}
		}
		return c.compilePresent(x.Attr, alias, prefix), nil

	case filter.Compare:
		if alias == "" && prefix == "" {
			if arr, rest, ok := c.splitMultiValued(x.Attr); ok {
				return c.compileComplex(filter.Complex{Attr: arr, Inner: filter.Compare{Attr: rest, Op: x.Op, Val: x.Val}}, "", "")
			}
		}
		return c.compileCompare(x, alias, prefix), nil

	case filter.Complex:
		return c.compileComplex(x, alias, prefix)

	default:
		return "", fmt.Errorf("sqlcompile: unsupported node %T", e)
	}
}

// extract returns the SQL text-extraction fragment for attr (relative to
// prefix), the attribute's catalog entry, and the full dotted path used for
// the catalog lookup.
func (c *compiler) extract(attr, alias, prefix string) (string, catalog.Attribute, string) {
	full := joinPrefix(prefix, attr)
	meta, _ := c.cat.Lookup(c.resourceType, full)

	if alias != "" {
		return c.dialect.ElementText(alias, strings.Split(attr, ".")), meta, full
	}

	if col, ok := StructuredColumn(c.resourceType, full); ok {
		// Structured name columns are stored case-preserved; the
		// case-insensitive comparison the catalog prescribes happens here
		// rather than via data_norm.
		if meta.Type == catalog.TypeString && !meta.CaseExact {
			col = "LOWER(" + col + ")"
		}
		return col, meta, full
	}

	column := "data_norm"
	if meta.CaseExact {
		column = "data_orig"
	}

	segs := pointerSegments(full)
	if meta.MultiValued && meta.Type == catalog.TypeComplex {
		// A bare multi-valued attribute compares through its first
		// element's value sub-attribute.
		segs = append(segs, "0", "value")
	}

	return c.dialect.JSONText(column, segs), meta, full
}

// splitMultiValued implements the "Equal(emails.value, v)" shortcut: if attr's path crosses a multi-valued attribute, the comparison
// compiles as an EXISTS over that array rather than a direct JSON pointer.
func (c *compiler) splitMultiValued(attr string) (arrayAttr, rest string, ok bool) {
	segs := strings.Split(attr, ".")
	if len(segs) < 2 {
		return "", "", false
	}

	for i := 0; i < len(segs)-1; i++ {
		candidate := strings.Join(segs[:i+1], ".")
		meta, found := c.cat.Lookup(c.resourceType, candidate)
		if found && meta.MultiValued {
			return candidate, strings.Join(segs[i+1:], "."), true
		}
	}

	return "", "", false
}

func pointerSegments(dotted string) []string {
	return strings.Split(strings.ToLower(dotted), ".")
}

func (c *compiler) compilePresent(attr, alias, prefix string) string {
	text, _, _ := c.extract(attr, alias, prefix)
	return fmt.Sprintf("(%s IS NOT NULL AND %s <> '')", text, text)
}

func (c *compiler) compileCompare(x filter.Compare, alias, prefix string) string {
	text, meta, _ := c.extract(x.Attr, alias, prefix)

	switch x.Val.Kind {
	case filter.KindBool:
		op := "="
		if x.Op == filter.Ne {
			op = "<>"
		}
		return fmt.Sprintf("%s %s %s", text, op, c.dialect.BoolText(x.Val.Bool))

	case filter.KindNumber:
		// Bound as a number so both backends compare numerically rather
		// than by the text form.
		return fmt.Sprintf("CAST(%s AS DECIMAL) %s %s", text, sqlOp(x.Op), c.bind(x.Val.Num))

	default: // string / null
		return c.compileStringCompare(x, text, meta)
	}
}

func (c *compiler) compileStringCompare(x filter.Compare, text string, meta catalog.Attribute) string {
	val := x.Val.Str
	if !meta.CaseExact {
		val = strings.ToLower(val)
	}

	switch x.Op {
	case filter.Eq:
		return fmt.Sprintf("%s = %s", text, c.bind(val))
	case filter.Ne:
		return fmt.Sprintf("%s <> %s", text, c.bind(val))
	case filter.Co:
		return fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", text, c.bind("%"+val+"%"))
	case filter.Sw:
		return fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", text, c.bind(val+"%"))
	case filter.Ew:
		return fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", text, c.bind("%"+val))
	case filter.Gt, filter.Ge, filter.Lt, filter.Le:
		return fmt.Sprintf("%s %s %s", text, sqlOp(x.Op), c.bind(val))
	default:
		return fmt.Sprintf("%s = %s", text, c.bind(val))
	}
}

func sqlOp(op filter.Op) string {
	switch op {
	case filter.Eq:
		return "="
	case filter.Ne:
		return "<>"
	case filter.Gt:
		return ">"
	case filter.Ge:
		return ">="
	case filter.Lt:
		return "<"
	case filter.Le:
		return "<="
	default:
		return "="
	}
}

// compileComplex handles an explicit "attr[inner]" node against a
// multi-valued attribute. Complex nodes nested inside another Complex's
// inner filter (an array-of-arrays shape no core SCIM schema here uses)
// are not supported and produce an error rather than silently wrong SQL.
func (c *compiler) compileComplex(x filter.Complex, alias, prefix string) (string, error) {
	if alias != "" {
		return "", fmt.Errorf("sqlcompile: nested complex filters are not supported")
	}

	full := joinPrefix(prefix, x.Attr)

	column := "data_norm"
	if anyCaseExactLeaf(x.Inner, c.resourceType, full, c.cat) {
		column = "data_orig"
	}

	segs := pointerSegments(full)
	childAlias := c.nextAlias()

	innerWhere, err := c.compile(x.Inner, childAlias, full)
	if err != nil {
		return "", err
	}

	return c.dialect.ExistsOverArray(column, segs, childAlias, innerWhere), nil
}

// anyCaseExactLeaf reports whether any Compare leaf reachable under expr
// (without crossing into a nested Complex) names a case-exact attribute —
// used to decide whether an EXISTS block should source data_orig or
// data_norm when its sub-comparisons have mixed case sensitivity.
func anyCaseExactLeaf(expr filter.Expr, resourceType, prefix string, cat *catalog.Catalog) bool {
	switch x := expr.(type) {
	case filter.And:
		return anyCaseExactLeaf(x.L, resourceType, prefix, cat) || anyCaseExactLeaf(x.R, resourceType, prefix, cat)
	case filter.Or:
		return anyCaseExactLeaf(x.L, resourceType, prefix, cat) || anyCaseExactLeaf(x.R, resourceType, prefix, cat)
	case filter.Not:
		return anyCaseExactLeaf(x.X, resourceType, prefix, cat)
	case filter.Compare:
		attr, _ := cat.Lookup(resourceType, joinPrefix(prefix, x.Attr))
		return attr.CaseExact
	case filter.Present:
		attr, _ := cat.Lookup(resourceType, joinPrefix(prefix, x.Attr))
		return attr.CaseExact
	default:
		return false
	}
}
