// Package patch applies SCIM PATCH operation sequences to a JSON resource
// document (RFC 7644 §3.5.2). The document is an ordinary
// map[string]any tree, mutated in place; operations are applied in
// declaration order.
package patch

import (
	"reflect"
	"strings"

	"github.com/scimhub/core/internal/errs"
	"github.com/scimhub/core/scim/catalog"
	"github.com/scimhub/core/scim/filter"
	"github.com/scimhub/core/scim/path"
)

// Op is a PATCH operation verb.
type Op string

const (
	OpAdd     Op = "add"
	OpReplace Op = "replace"
	OpRemove  Op = "remove"
)

// Operation is one entry of a PATCH request's Operations array.
type Operation struct {
	Op    Op
	Path  string
	Value any
}

// Options carries the per-tenant compatibility knobs that alter patch
// semantics.
type Options struct {
	// CompatEmptyValueClears makes "replace" with value [{"value":""}]
	// clear the attribute entirely, matching some providers' behavior.
	// Without it the element is stored literally.
	CompatEmptyValueClears bool
}

// Apply runs ops against doc in order, returning the first error encountered.
// doc is mutated in place.
func Apply(doc map[string]any, ops []Operation, resourceType string, cat *catalog.Catalog, opts Options) error {
	for _, op := range ops {
		if err := applyOne(doc, op, resourceType, cat, opts); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(doc map[string]any, op Operation, resourceType string, cat *catalog.Catalog, opts Options) error {
	switch op.Op {
	case OpAdd, OpReplace, OpRemove:
	default:
		return errs.BadRequest(errs.ScimTypeInvalidValue, "unknown patch op "+string(op.Op))
	}

	if strings.TrimSpace(op.Path) == "" {
		return applyRoot(doc, op)
	}

	p, err := path.Parse(op.Path)
	if err != nil {
		return err
	}

	if p.Filter == nil {
		if err := applyAttrPath(doc, p, op, resourceType, cat, opts); err != nil {
			return err
		}
	} else if err := applyValuePath(doc, p, op); err != nil {
		return err
	}

	if p.SchemaURN != "" {
		ensureSchemaListed(doc, p.SchemaURN)
	}

	return nil
}

func applyRoot(doc map[string]any, op Operation) error {
	if op.Op == OpRemove {
		return errs.BadRequest(errs.ScimTypeInvalidPath, "remove requires a path")
	}

	obj, ok := op.Value.(map[string]any)
	if !ok {
		return errs.InvalidValue("add/replace with no path requires an object value")
	}

	for k, v := range obj {
		setKey(doc, k, v)
	}

	return nil
}

// applyAttrPath implements the "attrPath" row of the operation table.
func applyAttrPath(doc map[string]any, p *path.Path, op Operation, resourceType string, cat *catalog.Catalog, opts Options) error {
	segs := strings.Split(p.Attr, ".")

	switch op.Op {
	case OpAdd:
		existing, _ := getPath(doc, segs)
		if arr, ok := existing.([]any); ok {
			incoming, err := toArray(op.Value)
			if err != nil {
				return err
			}
			return setPath(doc, segs, mergeMultiValued(arr, incoming))
		}
		return setPath(doc, segs, op.Value)

	case OpReplace:
		if clearsMultiValued(op.Value, opts) {
			deletePath(doc, segs)
			return nil
		}
		if arr, err := toArray(op.Value); err == nil && isArrayAttr(resourceType, p.Attr, cat) {
			return setPath(doc, segs, dedupePrimary(arr))
		}
		return setPath(doc, segs, op.Value)

	case OpRemove:
		if op.Value == nil {
			deletePath(doc, segs)
			return nil
		}
		toRemove, err := toArray(op.Value)
		if err != nil {
			deletePath(doc, segs)
			return nil
		}
		existing, ok := getPath(doc, segs)
		if !ok {
			return nil
		}
		arr, ok := existing.([]any)
		if !ok {
			deletePath(doc, segs)
			return nil
		}
		kept := removeMatching(arr, toRemove)
		return setPath(doc, segs, kept)
	}

	return nil
}

// applyValuePath implements the "valuePath" rows of the operation table.
func applyValuePath(doc map[string]any, p *path.Path, op Operation) error {
	segs := strings.Split(p.Attr, ".")

	existing, _ := getPath(doc, segs)
	arr, _ := existing.([]any)

	if p.SubAttr == "" {
		switch op.Op {
		case OpAdd:
			obj, ok := op.Value.(map[string]any)
			if !ok {
				return errs.InvalidValue("add on a value-path requires an object value")
			}
			elem := cloneMap(obj)
			applyFilterLiterals(elem, p.Filter)
			return setPath(doc, segs, mergeMultiValued(arr, []any{elem}))

		case OpReplace:
			obj, ok := op.Value.(map[string]any)
			if !ok {
				return errs.InvalidValue("replace on a value-path requires an object value")
			}
			replaced := map[int]bool{}
			for i, el := range arr {
				m, ok := el.(map[string]any)
				if ok && filter.Eval(p.Filter, m) {
					arr[i] = obj
					replaced[i] = true
				}
			}
			if len(replaced) == 0 {
				return errs.BadRequest(errs.ScimTypeInvalidPath, "no value-path match for replace")
			}
			if truthy(obj["primary"]) {
				// The incoming primary wins over any untouched element's.
				for i, el := range arr {
					if replaced[i] {
						continue
					}
					if m, ok := el.(map[string]any); ok && truthy(m["primary"]) {
						m["primary"] = false
					}
				}
				return setPath(doc, segs, arr)
			}
			return setPath(doc, segs, dedupePrimary(arr))

		case OpRemove:
			var kept []any
			for _, el := range arr {
				m, ok := el.(map[string]any)
				if ok && filter.Eval(p.Filter, m) {
					continue
				}
				kept = append(kept, el)
			}
			return setPath(doc, segs, kept)
		}

		return nil
	}

	switch op.Op {
	case OpReplace:
		matched := false
		for _, el := range arr {
			m, ok := el.(map[string]any)
			if ok && filter.Eval(p.Filter, m) {
				setKey(m, p.SubAttr, op.Value)
				matched = true
			}
		}
		if !matched {
			return errs.BadRequest(errs.ScimTypeInvalidPath, "no value-path match for replace")
		}
		return setPath(doc, segs, arr)

	case OpRemove:
		for _, el := range arr {
			m, ok := el.(map[string]any)
			if ok && filter.Eval(p.Filter, m) {
				deleteKey(m, p.SubAttr)
			}
		}
		return setPath(doc, segs, arr)

	case OpAdd:
		return errs.BadRequest(errs.ScimTypeInvalidPath, "add is not defined for a value-path sub-attribute")
	}

	return nil
}

// applyFilterLiterals walks a (possibly And-joined) set of equality
// comparisons and stamps the resulting element with their literal values,
// so `emails[type eq "work"]` add produces {"type": "work", ...}.
func applyFilterLiterals(elem map[string]any, expr filter.Expr) {
	switch x := expr.(type) {
	case filter.And:
		applyFilterLiterals(elem, x.L)
		applyFilterLiterals(elem, x.R)
	case filter.Compare:
		if x.Op == filter.Eq {
			elem[x.Attr] = valueLiteral(x.Val)
		}
	}
}

func valueLiteral(v filter.Value) any {
	switch v.Kind {
	case filter.KindString:
		return v.Str
	case filter.KindNumber:
		return v.Num
	case filter.KindBool:
		return v.Bool
	default:
		return nil
	}
}

func clearsMultiValued(value any, opts Options) bool {
	arr, ok := value.([]any)
	if !ok {
		return false
	}
	if len(arr) == 0 {
		return true
	}
	if !opts.CompatEmptyValueClears {
		return false
	}
	if len(arr) != 1 {
		return false
	}
	m, ok := arr[0].(map[string]any)
	if !ok || len(m) != 1 {
		return false
	}
	v, ok := m["value"]
	return ok && v == ""
}

func toArray(v any) ([]any, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, errs.InvalidValue("expected a JSON array value")
	}
	return arr, nil
}

// mergeMultiValued appends incoming elements to an existing multi-valued
// array. An incoming primary takes precedence: pre-existing primaries are
// cleared before the append, and multiple incoming primaries collapse to
// the first.
func mergeMultiValued(existing, incoming []any) []any {
	if anyPrimary(incoming) {
		clearPrimaries(existing)
	}
	return dedupePrimary(append(append([]any{}, existing...), incoming...))
}

func anyPrimary(arr []any) bool {
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok && truthy(m["primary"]) {
			return true
		}
	}
	return false
}

func clearPrimaries(arr []any) {
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok && truthy(m["primary"]) {
			m["primary"] = false
		}
	}
}

// dedupePrimary enforces "at most one element has primary=true": if the
// slice carries more than one primary, only the first survives.
func dedupePrimary(arr []any) []any {
	seenPrimary := false
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if truthy(m["primary"]) {
			if seenPrimary {
				m["primary"] = false
			} else {
				seenPrimary = true
			}
		}
	}
	return arr
}

func truthy(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

// removeMatching implements the selective-remove-by-value-array rule:
// for each element of toRemove, drop any existing element that matches it,
// in priority order: equal "value" field, equal "type" when the criterion
// names only type, all specified fields equal, then deep equality.
func removeMatching(existing, toRemove []any) []any {
	dropped := make([]bool, len(existing))

	for _, crit := range toRemove {
		cm, ok := crit.(map[string]any)
		if !ok {
			for i, el := range existing {
				if !dropped[i] && reflect.DeepEqual(el, crit) {
					dropped[i] = true
				}
			}
			continue
		}

		for i, el := range existing {
			if dropped[i] {
				continue
			}
			em, ok := el.(map[string]any)
			if !ok {
				continue
			}
			if matchesCriterion(em, cm) {
				dropped[i] = true
			}
		}
	}

	var kept []any
	for i, el := range existing {
		if !dropped[i] {
			kept = append(kept, el)
		}
	}
	return kept
}

func matchesCriterion(el, crit map[string]any) bool {
	if v, ok := crit["value"]; ok {
		return reflect.DeepEqual(el["value"], v)
	}
	if t, ok := crit["type"]; ok && len(crit) == 1 {
		return reflect.DeepEqual(el["type"], t)
	}
	if len(crit) > 0 {
		for k, v := range crit {
			if !reflect.DeepEqual(el[k], v) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(el, crit)
}

func isArrayAttr(resourceType, attr string, cat *catalog.Catalog) bool {
	a, _ := cat.Lookup(resourceType, attr)
	return a.MultiValued
}

func ensureSchemaListed(doc map[string]any, urn string) {
	raw, _ := doc["schemas"].([]any)
	for _, s := range raw {
		if str, ok := s.(string); ok && str == urn {
			return
		}
	}
	doc["schemas"] = append(raw, urn)
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
