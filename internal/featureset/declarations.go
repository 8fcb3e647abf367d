package featureset

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/corewright/vessel/internal/devcontainer"
)

// Declaration is one entry of devcontainer.json's "features" object,
// in source declaration order. Go's map[string]any loses key order, so
// the assembler needs this ordered view to honor spec.md §5's
// requirement that "within one feature set, build-stage emission order
// equals feature declaration order".
type Declaration struct {
	ID    string
	Value any
}

// OrderedDeclarations decodes cfg's "features" key preserving the
// key order from the original document text.
func OrderedDeclarations(cfg *devcontainer.DevContainerConfig) ([]Declaration, error) {
	raw := cfg.GetRawJSON()
	if raw == nil {
		return nil, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("decode top level: %w", err)
	}
	featuresRaw, ok := top["features"]
	if !ok {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(featuresRaw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("features must be a JSON object")
	}

	var decls []Declaration
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		id, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("feature key must be a string, got %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode value for feature %q: %w", id, err)
		}
		decls = append(decls, Declaration{ID: id, Value: value})
	}
	return decls, nil
}
