// Package devcontainer provides the DevContainerConfig type, its JSONC
// parser, variable substitution, and the Config Merger (spec.md §4.3).
//
// Adapted from the teacher's internal/devcontainer/config.go: the
// compose-plan fields are dropped (compose lifecycle management is out
// of scope for the Feature Composition Engine), and Features keeps its
// original map[string]any shape since the Feature Set Assembler needs
// the raw, not-yet-typed option values.
package devcontainer

import (
	"encoding/json"
	"fmt"
)

// DevContainerConfig represents the parsed devcontainer.json
// configuration. spec.md §3 states that, for the engine, only image,
// features, remoteUser, updateRemoteUserUID, and extension-policy keys
// are read; the remaining fields are carried because a complete
// implementation's parser still needs to round-trip the rest of the
// document through the Config Merger (every top-level key, known or
// not, participates in a merge).
type DevContainerConfig struct {
	Name string `json:"name,omitempty"`

	Image string       `json:"image,omitempty"`
	Build *BuildConfig `json:"build,omitempty"`

	WorkspaceFolder string `json:"workspaceFolder,omitempty"`
	WorkspaceMount  string `json:"workspaceMount,omitempty"`

	RemoteUser          string `json:"remoteUser,omitempty"`
	ContainerUser       string `json:"containerUser,omitempty"`
	UpdateRemoteUserUID *bool  `json:"updateRemoteUserUID,omitempty"`

	ContainerEnv map[string]string `json:"containerEnv,omitempty"`
	RemoteEnv    map[string]string `json:"remoteEnv,omitempty"`

	// Features maps identifier string (spec.md §4.1 grammar) to either a
	// scalar value or an option-name->value object. Left untyped because
	// the Feature Set Assembler is what gives it structure.
	Features                    map[string]any `json:"features,omitempty"`
	OverrideFeatureInstallOrder []string       `json:"overrideFeatureInstallOrder,omitempty"`

	Mounts  []Mount  `json:"mounts,omitempty"`
	RunArgs []string `json:"runArgs,omitempty"`

	InitializeCommand    any `json:"initializeCommand,omitempty"`
	OnCreateCommand      any `json:"onCreateCommand,omitempty"`
	UpdateContentCommand any `json:"updateContentCommand,omitempty"`
	PostCreateCommand    any `json:"postCreateCommand,omitempty"`
	PostStartCommand     any `json:"postStartCommand,omitempty"`
	PostAttachCommand    any `json:"postAttachCommand,omitempty"`

	HostRequirements *HostRequirements `json:"hostRequirements,omitempty"`

	Customizations map[string]any `json:"customizations,omitempty"`

	// rawJSON holds the document bytes as parsed, used by the Config
	// Merger to recover the full top-level key set (including keys this
	// struct doesn't name) so merge behavior applies to unknown keys too.
	rawJSON []byte
}

// BuildConfig represents the "build" section for a Dockerfile-backed
// devcontainer.
type BuildConfig struct {
	Dockerfile string            `json:"dockerfile,omitempty"`
	Context    string            `json:"context,omitempty"`
	Args       map[string]string `json:"args,omitempty"`
	Target     string            `json:"target,omitempty"`
	CacheFrom  []string          `json:"cacheFrom,omitempty"`
}

// HostRequirements specifies host machine requirements.
type HostRequirements struct {
	CPUs    int    `json:"cpus,omitempty"`
	Memory  string `json:"memory,omitempty"`
	Storage string `json:"storage,omitempty"`
}

// Mount represents a mount specification that can be either a string or
// an object, matching the devcontainer.json mounts grammar.
type Mount struct {
	Source   string `json:"source,omitempty"`
	Target   string `json:"target,omitempty"`
	Type     string `json:"type,omitempty"`
	ReadOnly bool   `json:"readonly,omitempty"`
	Raw      string `json:"-"`
}

func (m *Mount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m.Raw = s
		for _, part := range splitMountString(s) {
			k, v, ok := splitKV(part)
			if !ok {
				continue
			}
			switch k {
			case "source", "src":
				m.Source = v
			case "target", "dst", "destination":
				m.Target = v
			case "type":
				m.Type = v
			}
		}
		return nil
	}

	type mountAlias Mount
	var obj mountAlias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*m = Mount(obj)
	return nil
}

func (m Mount) String() string {
	if m.Raw != "" {
		return m.Raw
	}
	t := m.Type
	if t == "" {
		t = "bind"
	}
	s := fmt.Sprintf("type=%s,source=%s,target=%s", t, m.Source, m.Target)
	if m.ReadOnly {
		s += ",readonly"
	}
	return s
}

// GetRawJSON returns the raw JSON content the config was parsed from.
func (c *DevContainerConfig) GetRawJSON() []byte { return c.rawJSON }

// SetRawJSON stores the raw JSON content, called by Parse/ParseFile.
func (c *DevContainerConfig) SetRawJSON(data []byte) { c.rawJSON = data }

func (c *DevContainerConfig) MarshalJSON() ([]byte, error) {
	type alias DevContainerConfig
	return json.Marshal((*alias)(c))
}
