package model

import "encoding/json"

// immutableItemFields are stripped from inbound item patches. Identity and
// membership are assigned server-side and never writable through updates.
var immutableItemFields = []string{"id", "list_id", "added_by"}

// MergePatch recursively merges src into dst, returning dst. Nested objects are
// merged key-by-key; any other value (including arrays and nulls) replaces the
// destination wholesale.
func MergePatch(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}

	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)

		if srcIsMap && dstIsMap {
			dst[k] = MergePatch(dstMap, srcMap)
			continue
		}

		dst[k] = v
	}

	return dst
}

// ApplyItemPatch applies a deep-partial field update to a list item and returns
// the patched item. Unknown fields are dropped by the round trip through the
// item's JSON shape.
func ApplyItemPatch(item ListItem, patch map[string]any) (ListItem, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return item, err
	}

	current := map[string]any{}
	if err := json.Unmarshal(raw, &current); err != nil {
		return item, err
	}

	for _, field := range immutableItemFields {
		delete(patch, field)
	}

	merged, err := json.Marshal(MergePatch(current, patch))
	if err != nil {
		return item, err
	}

	patched := ListItem{}
	if err := json.Unmarshal(merged, &patched); err != nil {
		return item, err
	}

	return patched, nil
}
