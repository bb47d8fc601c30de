// Package normalize produces the case-folded twin of a resource document:
// keys lowercased, string values lowercased except where the schema catalog
// marks the attribute case-exact.
package normalize

import (
	"strings"

	"github.com/scimhub/core/scim/catalog"
)

// alwaysCaseExact are top-level keys whose case matters regardless of what
// the catalog says — the schema URNs. The catalog
// doesn't carry a "schemas" attribute entry (it's a message-level array,
// not part of any single schema's attribute list), so it's special-cased.
var alwaysCaseExact = map[string]bool{"schemas": true}

// Normalize walks doc and returns a new document with lowercased keys and,
// for every non-case-exact string attribute (per cat), a lowercased value.
// Array order and structure are preserved.
func Normalize(resourceType string, doc map[string]any, cat *catalog.Catalog) map[string]any {
	out, _ := normalizeValue(resourceType, "", doc, cat).(map[string]any)
	return out
}

func normalizeValue(resourceType, path string, v any, cat *catalog.Catalog) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			childPath := k
			if path != "" {
				childPath = path + "." + k
			}
			out[strings.ToLower(k)] = normalizeValue(resourceType, childPath, child, cat)
		}
		return out

	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = normalizeValue(resourceType, path, el, cat)
		}
		return out

	case string:
		if alwaysCaseExact[path] || cat.CaseExact(resourceType, path) {
			return t
		}
		return strings.ToLower(t)

	default:
		return v
	}
}
