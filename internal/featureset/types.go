// Package featureset implements the Feature Set Assembler (spec.md
// §4.4) and the FeatureSet/FeaturesConfig data model (spec.md §3).
package featureset

import "github.com/corewright/vessel/internal/source"

// Feature is a single resolved, option-bound feature entry.
type Feature struct {
	ID       string
	Value    any // scalar, or map[string]any of option-name->value
	BuildArg string
	// ContainerEnv is populated from the feature's devcontainer-features.json
	// metadata (spec.md §6), not from the devcontainer.json containerEnv.
	ContainerEnv map[string]string
	Options      map[string]OptionDefinition
	Included     bool

	// Metadata is the parsed devcontainer-features.json record for this
	// feature id.
	Metadata Metadata

	// PayloadDir is the feature's materialized features/<id>/ directory
	// under the owning FeatureSet's dstFolder.
	PayloadDir string
}

// HasAcquire reports whether the feature's payload declares bin/acquire,
// making it eligible for its own build stage (spec.md §4.5, GLOSSARY
// "Acquire/Configure").
func (f Feature) HasAcquire() bool { return f.Metadata.HasAcquire }

// HasConfigure reports whether the feature's payload declares
// bin/configure. The synthesizer only runs it for features that also
// have bin/acquire.
func (f Feature) HasConfigure() bool { return f.Metadata.HasConfigure }

// Metadata is the devcontainer-features.json record for one feature,
// plus filesystem facts about its payload layout (spec.md §6).
type Metadata struct {
	ID           string                      `json:"id"`
	Name         string                      `json:"name,omitempty"`
	Options      map[string]OptionDefinition `json:"options,omitempty"`
	BuildArg     string                      `json:"buildArg,omitempty"`
	ContainerEnv map[string]string           `json:"containerEnv,omitempty"`
	Entrypoint   string                      `json:"entrypoint,omitempty"`

	// HasAcquire/HasConfigure/HasInstall are not part of the JSON
	// document; they are filled in by the assembler after inspecting the
	// feature's payload directory.
	HasAcquire   bool `json:"-"`
	HasConfigure bool `json:"-"`
	HasInstall   bool `json:"-"`
}

// OptionDefinition defines one feature option's declared shape.
type OptionDefinition struct {
	Type        string   `json:"type"`
	Default     any      `json:"default,omitempty"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// FeatureSet groups every Feature sharing one SourceInformation.
// spec.md §3 invariant: dstFolder equals the containing FeaturesConfig's
// dstFolder; features materialize under
// dstFolder/<source-info-string>/features/<id>/.
type FeatureSet struct {
	SourceInformation source.Information
	Features          []Feature
	DstFolder         string

	// metadataCache and payloadDir are populated once by the assembler
	// from the source's devcontainer-features.json and are only a
	// build-time convenience; they aren't part of the spec's FeatureSet
	// data model and carry no meaning once assembly completes.
	metadataCache map[string]Metadata
	payloadDir    string
}

// SourceInfoString returns the canonical directory/stage-name prefix for
// this set.
func (fs FeatureSet) SourceInfoString() string { return fs.SourceInformation.String() }

// FeaturesConfig is the fully assembled, read-only-after-assembly result
// the Build Recipe Synthesizer consumes.
type FeaturesConfig struct {
	FeatureSets []*FeatureSet
	DstFolder   string
}
