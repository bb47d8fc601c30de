package patch

import "strings"

// findKey does a case-insensitive lookup of name in m, returning the key as
// actually stored (SCIM attribute names are case-insensitive on the wire).
func findKey(m map[string]any, name string) (string, bool) {
	if _, ok := m[name]; ok {
		return name, true
	}
	for k := range m {
		if strings.EqualFold(k, name) {
			return k, true
		}
	}
	return "", false
}

func setKey(m map[string]any, name string, value any) {
	if k, ok := findKey(m, name); ok {
		m[k] = value
		return
	}
	m[name] = value
}

func deleteKey(m map[string]any, name string) {
	if k, ok := findKey(m, name); ok {
		delete(m, k)
	}
}

// getPath walks segs through nested maps, returning (nil, false) if any
// intermediate segment is absent or not a map.
func getPath(doc map[string]any, segs []string) (any, bool) {
	cur := any(doc)

	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		k, ok := findKey(m, seg)
		if !ok {
			return nil, false
		}
		cur = m[k]
	}

	return cur, true
}

// setPath assigns value at segs, creating intermediate maps as needed.
func setPath(doc map[string]any, segs []string, value any) error {
	cur := doc

	for i, seg := range segs {
		if i == len(segs)-1 {
			setKey(cur, seg, value)
			return nil
		}

		k, ok := findKey(cur, seg)
		if !ok {
			next := map[string]any{}
			cur[seg] = next
			cur = next
			continue
		}

		next, ok := cur[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[k] = next
		}
		cur = next
	}

	return nil
}

// deletePath removes the key named by the last segment of segs, a no-op if
// any intermediate segment or the final key is absent (idempotent remove).
func deletePath(doc map[string]any, segs []string) {
	cur := doc

	for i, seg := range segs {
		if i == len(segs)-1 {
			deleteKey(cur, seg)
			return
		}

		k, ok := findKey(cur, seg)
		if !ok {
			return
		}
		next, ok := cur[k].(map[string]any)
		if !ok {
			return
		}
		cur = next
	}
}
