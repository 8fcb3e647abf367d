package featureset

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/corewright/vessel/internal/util"
)

// metadataSchemaPath is a synthetic resource name for the in-memory
// schema; it never resolves over the network.
const metadataSchemaPath = "vessel://devcontainer-features.json"

// metadataSchemaDoc is a minimal JSON Schema for the array spec.md §6
// names for devcontainer-features.json: "array of feature records
// { id, name?, options?, buildArg?, containerEnv?, entrypoint? };
// unknown keys ignored."
const metadataSchemaDoc = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "name": {"type": "string"},
      "options": {"type": "object"},
      "buildArg": {"type": "string"},
      "containerEnv": {"type": "object"},
      "entrypoint": {"type": "string"}
    }
  }
}`

var compiledMetadataSchema *jsonschema.Schema

func init() {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(metadataSchemaDoc))
	if err != nil {
		panic(fmt.Sprintf("featureset: invalid embedded metadata schema: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(metadataSchemaPath, doc); err != nil {
		panic(fmt.Sprintf("featureset: failed to register metadata schema: %v", err))
	}
	compiledMetadataSchema = c.MustCompile(metadataSchemaPath)
}

// validateMetadataDocument checks a devcontainer-features.json payload
// against metadataSchemaDoc before it's unmarshaled into []Metadata,
// grounded on nlsantos-brig's writ.Parser.Validate schema-validation
// pattern (jsonschema.UnmarshalJSON + compiled-schema Validate).
func validateMetadataDocument(sourceInfo string, data []byte) error {
	input, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return util.NewPayloadError(sourceInfo, fmt.Errorf("unmarshal devcontainer-features.json for validation: %w", err))
	}
	if err := compiledMetadataSchema.Validate(input); err != nil {
		return util.NewPayloadError(sourceInfo, fmt.Errorf("devcontainer-features.json failed schema validation: %w", err))
	}
	return nil
}
