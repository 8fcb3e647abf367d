// Package tempproject implements the Temp Project Generator (spec.md
// §4.7), used by the `features test` CLI command to stand up a
// throwaway devcontainer.json exercising one or more features against a
// base image.
package tempproject

import (
	"encoding/json"
	"fmt"

	"github.com/corewright/vessel/internal/host"
	"github.com/corewright/vessel/internal/util"
)

// Generate creates <tmp>/vsch/container-features-test/<timestamp>/.devcontainer/
// with a devcontainer.json pinning image to baseImage and declaring
// every featureID under collectionPath at "latest", per spec.md §4.7.
// It returns the generated project's root folder (the parent of
// .devcontainer).
func Generate(h host.Host, timestamp string, baseImage, collectionPath string, featureIDs []string) (string, error) {
	root := h.Join(h.TempDir(), "vsch", "container-features-test", timestamp)
	devContainerDir := h.Join(root, ".devcontainer")

	if err := h.MkdirAll(devContainerDir, 0o755); err != nil {
		return "", util.NewHostIOError("tempproject:mkdir", err)
	}

	features := make(map[string]string, len(featureIDs))
	for _, id := range featureIDs {
		features[fmt.Sprintf("%s/%s", collectionPath, id)] = "latest"
	}

	doc := struct {
		Image    string            `json:"image"`
		Features map[string]string `json:"features"`
	}{
		Image:    baseImage,
		Features: features,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal devcontainer.json: %w", err)
	}

	configPath := h.Join(devContainerDir, "devcontainer.json")
	if err := h.WriteFile(configPath, data, 0o644); err != nil {
		return "", util.NewHostIOError("tempproject:write-config", err)
	}

	return root, nil
}

// DevContainerPath is a small helper mirroring the layout Generate
// produces, for callers that only have the project root.
func DevContainerPath(h host.Host, projectRoot string) string {
	return h.Join(projectRoot, ".devcontainer", "devcontainer.json")
}
