// Config Merger (spec.md §4.3): combines a parent dev-container config
// with a child under a per-key ExtendBehavior table. No teacher or pack
// example implements a generic per-key merge policy table (grep across
// the whole retrieval pack found only nlsantos-brig's narrow
// mergo.Merge use for PortAttributes defaults) — this component is
// authored fresh, but borrows dario.cat/mergo for the MERGE-array append
// step rather than hand-rolling slice concatenation, since mergo already
// expresses "append slice" as a first-class merge option
// (mergo.WithAppendSlice) and the rest of the pack treats mergo as the
// idiomatic struct/slice merge library.
package devcontainer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"dario.cat/mergo"

	"github.com/corewright/vessel/internal/util"
)

// ExtendBehavior controls how a single top-level key is combined across
// a parent/child merge.
type ExtendBehavior string

const (
	BehaviorReplace ExtendBehavior = "REPLACE"
	BehaviorSkip    ExtendBehavior = "SKIP"
	BehaviorMerge   ExtendBehavior = "MERGE"
)

// BehaviorOrDefault looks up key in the table, defaulting to REPLACE
// when the key is absent. This resolves SPEC_FULL.md Open Question 3:
// an absent/undefined table entry is REPLACE, matching the source's
// GetBehaviorTypeOrDefault semantics.
func BehaviorOrDefault(table map[string]ExtendBehavior, key string) ExtendBehavior {
	if b, ok := table[key]; ok {
		return b
	}
	return BehaviorReplace
}

// Merge combines parent into child per spec.md §4.3 and returns the
// resulting DevContainerConfig. Merging is a pure function: neither
// input is mutated.
func Merge(parent, child *DevContainerConfig, behaviors map[string]ExtendBehavior) (*DevContainerConfig, error) {
	parentMap, parentOrder, err := orderedTopLevel(parent)
	if err != nil {
		return nil, fmt.Errorf("merge: decode parent: %w", err)
	}
	childMap, childOrder, err := orderedTopLevel(child)
	if err != nil {
		return nil, fmt.Errorf("merge: decode child: %w", err)
	}

	result := make(map[string]json.RawMessage, len(parentMap)+len(childMap))
	order := unionOrder(parentOrder, childOrder)

	for _, key := range order {
		behavior := BehaviorOrDefault(behaviors, key)
		pVal, pHas := parentMap[key]
		cVal, cHas := childMap[key]

		util.Slog().Debug("config merge decision", "key", key, "behavior", string(behavior))

		switch behavior {
		case BehaviorSkip:
			if pHas {
				result[key] = pVal
			}
		case BehaviorMerge:
			merged, err := mergeArrays(pVal, cVal, pHas, cHas)
			if err != nil {
				return nil, util.NewMergeTypeError(key, err)
			}
			result[key] = merged
		case BehaviorReplace:
			fallthrough
		default:
			if cHas {
				result[key] = cVal
			}
			// child absent => key removed, matching "REPLACE: result
			// key = child's value (even if child value is absent -> key
			// removed)".
		}
	}

	merged, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("merge: re-encode: %w", err)
	}
	return Parse(merged)
}

// mergeArrays applies the MERGE behavior: both values MUST be ordered
// sequences; result is their deduplicated union preserving
// parent-first insertion order.
func mergeArrays(pVal, cVal json.RawMessage, pHas, cHas bool) (json.RawMessage, error) {
	var parentSlice, childSlice []any
	if pHas {
		if err := json.Unmarshal(pVal, &parentSlice); err != nil {
			return nil, fmt.Errorf("parent value is not an ordered sequence: %w", err)
		}
	}
	if cHas {
		if err := json.Unmarshal(cVal, &childSlice); err != nil {
			return nil, fmt.Errorf("child value is not an ordered sequence: %w", err)
		}
	}

	dst := struct{ V []any }{V: parentSlice}
	src := struct{ V []any }{V: childSlice}
	if err := mergo.Merge(&dst, src, mergo.WithAppendSlice); err != nil {
		return nil, fmt.Errorf("append slices: %w", err)
	}

	deduped := dedupe(dst.V)
	return json.Marshal(deduped)
}

// dedupe removes duplicates from an []any, keeping the first occurrence
// (parent-first order, since parent elements were appended before
// child's). Elements are compared by their JSON encoding since maps and
// slices aren't comparable with ==.
func dedupe(items []any) []any {
	seen := make(map[string]bool, len(items))
	out := make([]any, 0, len(items))
	for _, item := range items {
		key, err := json.Marshal(item)
		k := string(key)
		if err != nil {
			// Unmarshalable values can't repeat meaningfully; keep them.
			out = append(out, item)
			continue
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, item)
	}
	return out
}

// orderedTopLevel decodes a config's raw JSON into both a key->value map
// and the document's original top-level key order, so merge iteration
// can follow "the union's stable order" instead of Go's randomized map
// order.
func orderedTopLevel(cfg *DevContainerConfig) (map[string]json.RawMessage, []string, error) {
	raw := cfg.GetRawJSON()
	if raw == nil {
		encoded, err := json.Marshal(cfg)
		if err != nil {
			return nil, nil, err
		}
		raw = encoded
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected a JSON object at the top level")
	}

	m := make(map[string]json.RawMessage)
	var order []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected a string key, got %v", keyTok)
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, nil, fmt.Errorf("decode value for key %q: %w", key, err)
		}
		if _, exists := m[key]; !exists {
			order = append(order, key)
		}
		m[key] = val
	}
	return m, order, nil
}

// unionOrder merges two key-order slices, keeping parent's order first
// and appending any child-only keys in child's order.
func unionOrder(parentOrder, childOrder []string) []string {
	seen := make(map[string]bool, len(parentOrder)+len(childOrder))
	out := make([]string, 0, len(parentOrder)+len(childOrder))
	for _, k := range parentOrder {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, k := range childOrder {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
