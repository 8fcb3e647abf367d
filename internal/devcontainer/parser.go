package devcontainer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Parse decodes a devcontainer.json document that may contain JSONC
// comments and trailing commas, adapted from the teacher's
// internal/devcontainer/parser.go which uses the same tidwall/jsonc
// strip-then-unmarshal approach.
func Parse(data []byte) (*DevContainerConfig, error) {
	clean := jsonc.ToJSON(data)

	var cfg DevContainerConfig
	if err := json.Unmarshal(clean, &cfg); err != nil {
		return nil, fmt.Errorf("parse devcontainer.json: %w", err)
	}
	cfg.SetRawJSON(clean)
	substituteConfig(&cfg)
	return &cfg, nil
}

// substituteConfig expands ${localEnv:...} / ${env:...} references
// against the host environment in every string-valued field a
// devcontainer.json author could plausibly parameterize this way. Run
// once, immediately after parsing, so every downstream consumer
// (Config Merger, Feature Set Assembler, Build Recipe Synthesizer) sees
// already-resolved values.
func substituteConfig(cfg *DevContainerConfig) {
	cfg.Image = SubstituteHostEnv(cfg.Image)
	cfg.RemoteUser = SubstituteHostEnv(cfg.RemoteUser)
	cfg.ContainerUser = SubstituteHostEnv(cfg.ContainerUser)
	cfg.WorkspaceFolder = SubstituteHostEnv(cfg.WorkspaceFolder)
	cfg.WorkspaceMount = SubstituteHostEnv(cfg.WorkspaceMount)

	for k, v := range cfg.ContainerEnv {
		cfg.ContainerEnv[k] = SubstituteHostEnv(v)
	}
	for k, v := range cfg.RemoteEnv {
		cfg.RemoteEnv[k] = SubstituteHostEnv(v)
	}
	if cfg.Build != nil {
		for k, v := range cfg.Build.Args {
			cfg.Build.Args[k] = SubstituteHostEnv(v)
		}
	}
}

// ParseFile reads and parses a devcontainer.json file from disk.
func ParseFile(path string) (*DevContainerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// RawTopLevel decodes the config's raw JSON into a generic top-level key
// map, including keys DevContainerConfig doesn't name by field. The
// Config Merger itself reads the same keys, with their order, through
// merge.go's orderedTopLevel.
func RawTopLevel(cfg *DevContainerConfig) (map[string]json.RawMessage, error) {
	raw := cfg.GetRawJSON()
	if raw == nil {
		encoded, err := json.Marshal(cfg)
		if err != nil {
			return nil, err
		}
		raw = encoded
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode top-level keys: %w", err)
	}
	return m, nil
}
