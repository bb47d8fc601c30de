// Package projection implements attribute include/exclude selection and
// null/empty stripping on response bodies.
package projection

import (
	"strings"

	"github.com/scimhub/core/scim/catalog"
)

// Params are the two mutually-exclusive projection knobs from the request
// query string.
type Params struct {
	Attributes         []string
	ExcludedAttributes []string
}

// Options carries per-tenant compatibility flags that affect stripping.
type Options struct {
	// KeepEmptyUserGroups keeps an empty User.groups array visible instead
	// of stripping it.
	KeepEmptyUserGroups bool
}

var alwaysTopLevel = map[string]bool{"schemas": true, "id": true, "meta": true}

// Project selects attributes per p (include-only if Attributes is set,
// else default-set-minus-excluded), then strips null/empty values.
func Project(resourceType string, doc map[string]any, p Params, cat *catalog.Catalog, opts Options) map[string]any {
	var selected map[string]any
	if len(p.Attributes) > 0 {
		selected = selectInclude(resourceType, doc, p.Attributes, cat)
	} else {
		selected = selectExclude(resourceType, doc, p.ExcludedAttributes, cat)
	}

	return stripEmpty(resourceType, selected, opts)
}

func selectInclude(resourceType string, doc map[string]any, attrs []string, cat *catalog.Catalog) map[string]any {
	out := map[string]any{}

	for k := range alwaysTopLevel {
		if v, ok := doc[k]; ok {
			out[k] = v
		}
	}

	grouped := groupDotted(attrs)
	for top, subs := range grouped {
		key, v, ok := findKey(doc, top)
		if !ok {
			continue
		}
		if attr, _ := cat.Lookup(resourceType, top); attr.Returned == catalog.ReturnedNever {
			continue
		}
		if len(subs) == 0 {
			out[key] = v
			continue
		}
		out[key] = projectSub(v, subs)
	}

	for k, v := range doc {
		if alwaysTopLevel[strings.ToLower(k)] {
			continue
		}
		attr, _ := cat.Lookup(resourceType, k)
		if attr.Returned == catalog.ReturnedAlways {
			out[k] = v
		}
	}

	return out
}

func selectExclude(resourceType string, doc map[string]any, excluded []string, cat *catalog.Catalog) map[string]any {
	exSet := map[string]bool{}
	for _, e := range excluded {
		exSet[strings.ToLower(e)] = true
	}

	out := map[string]any{}
	for k, v := range doc {
		if alwaysTopLevel[strings.ToLower(k)] {
			out[k] = v
			continue
		}

		attr, _ := cat.Lookup(resourceType, k)
		switch attr.Returned {
		case catalog.ReturnedNever, catalog.ReturnedRequest:
			continue
		case catalog.ReturnedAlways:
			out[k] = v
		default:
			if exSet[strings.ToLower(k)] {
				continue
			}
			out[k] = v
		}
	}

	return out
}

// groupDotted turns ["name.givenName", "emails"] into {"name": ["givenName"], "emails": nil}.
func groupDotted(attrs []string) map[string][]string {
	out := map[string][]string{}
	for _, a := range attrs {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		idx := strings.Index(a, ".")
		if idx < 0 {
			if _, ok := out[a]; !ok {
				out[a] = nil
			}
			continue
		}
		top, sub := a[:idx], a[idx+1:]
		out[top] = append(out[top], sub)
	}
	return out
}

func projectSub(v any, subs []string) any {
	m, ok := v.(map[string]any)
	if ok {
		out := map[string]any{}
		for _, s := range subs {
			if key, sv, ok := findKey(m, s); ok {
				out[key] = sv
			}
		}
		return out
	}

	arr, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]any, len(arr))
	for i, el := range arr {
		out[i] = projectSub(el, subs)
	}
	return out
}

func findKey(m map[string]any, name string) (string, any, bool) {
	if v, ok := m[name]; ok {
		return name, v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return k, v, true
		}
	}
	return "", nil, false
}

// stripEmpty removes nil values, empty strings, empty maps, and empty
// arrays — except a Group's members array, which is preserved as [] when
// empty, and a User's groups array under opts.KeepEmptyUserGroups.
func stripEmpty(resourceType string, doc map[string]any, opts Options) map[string]any {
	out := map[string]any{}
	for k, v := range doc {
		keepEmptyArray := (resourceType == "Group" && strings.EqualFold(k, "members")) ||
			(resourceType == "User" && opts.KeepEmptyUserGroups && strings.EqualFold(k, "groups"))

		cleaned, ok := stripValue(v, keepEmptyArray)
		if !ok {
			continue
		}
		out[k] = cleaned
	}
	return out
}

func stripValue(v any, keepEmptyArray bool) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		if t == "" {
			return nil, false
		}
		return t, true
	case map[string]any:
		out := map[string]any{}
		for k, sv := range t {
			cleaned, ok := stripValue(sv, false)
			if !ok {
				continue
			}
			out[k] = cleaned
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	case []any:
		out := make([]any, 0, len(t))
		for _, el := range t {
			cleaned, ok := stripValue(el, false)
			if !ok {
				continue
			}
			out = append(out, cleaned)
		}
		if len(out) == 0 && !keepEmptyArray {
			return nil, false
		}
		return out, true
	default:
		return v, true
	}
}
