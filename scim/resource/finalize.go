package resource

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scimhub/core/internal/errs"
	"github.com/scimhub/core/scim/catalog"
	"github.com/scimhub/core/scim/normalize"
	"github.com/scimhub/core/scim/patch"
)

// Finalize shapes a document for the response after a write or read:
// stamps the absolute meta.location from the tenant's base URL and redacts
// the write-only password field. The stored document keeps the hashed
// password and the relative location (see StorageDoc).
func Finalize(d Descriptor, doc map[string]any, baseURL string) map[string]any {
	id, _ := doc["id"].(string)
	meta, _ := doc["meta"].(map[string]any)
	if meta == nil {
		meta = map[string]any{}
	}
	meta["location"] = strings.TrimRight(baseURL, "/") + "/" + plural(d.ResourceType) + "/" + id
	doc["meta"] = meta
	return StripPassword(doc)
}

func plural(resourceType string) string {
	if resourceType == "Group" {
		return "Groups"
	}
	return "Users"
}

// StorageDoc strips the membership fields that live in the
// membership table rather than the resource's own JSON document (a Group's
// members and a User's computed groups), and rewrites meta.location to its
// relative form. The absolute location depends on the tenant's base URL
// and is recomputed by Finalize at response time.
func StorageDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if strings.EqualFold(k, "groups") || strings.EqualFold(k, "members") {
			continue
		}
		out[k] = v
	}

	if meta, ok := doc["meta"].(map[string]any); ok {
		m := cloneMap(meta)
		if id, ok := doc["id"].(string); ok && id != "" {
			rt, _ := meta["resourceType"].(string)
			m["location"] = "/" + plural(rt) + "/" + id
		}
		out["meta"] = m
	}

	return out
}

// NormalizedJSON renders both JSON twins storage persists for a resource:
// data_orig (case-preserved) and data_norm (case-folded per the catalog).
func NormalizedJSON(resourceType string, doc map[string]any, cat *catalog.Catalog) ([]byte, []byte, error) {
	orig, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal data_orig: %w", err)
	}

	normDoc := normalize.Normalize(resourceType, cloneMap(doc), cat)
	norm, err := json.Marshal(normDoc)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal data_norm: %w", err)
	}

	return orig, norm, nil
}

// ValidateID rejects an empty resource id on delete/update paths.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errs.InvalidValue("resource id must not be empty")
	}
	return nil
}

// ApplyPatch applies ops to a deep copy of the resource's current document
// and re-runs it through PrepareUpdate, so a patch re-enters the same
// validate/prepare path a PUT would. The copy is deep because value-path
// operations rewrite nested arrays in place.
func (e *Engine) ApplyPatch(d Descriptor, id string, version int, current map[string]any, ops []patch.Operation, opts patch.Options) (map[string]any, error) {
	working, _ := deepClone(current).(map[string]any)
	if err := patch.Apply(working, ops, d.ResourceType, e.Catalog, opts); err != nil {
		return nil, err
	}
	return e.PrepareUpdate(d, id, version, working)
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func deepClone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, c := range t {
			out[k] = deepClone(c)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, c := range t {
			out[i] = deepClone(c)
		}
		return out
	default:
		return v
	}
}
