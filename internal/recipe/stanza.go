package recipe

// StanzaKind discriminates the typed stanza variants named in spec.md
// §9's design note: "the recipe is a list of typed stanzas (base,
// stage, copy, env, install) emitted in a fixed order; string splicing
// is confined to the final pretty-printer to keep the core purely
// structural." Like source.Information, this uses a single tagged
// struct rather than a sealed interface, for the same reason: every
// stanza kind is small and the synthesizer builds a flat, ordered list
// of them rather than dispatching on type.
type StanzaKind string

const (
	StanzaBase    StanzaKind = "base"
	StanzaStage   StanzaKind = "stage"
	StanzaCopy    StanzaKind = "copy"
	StanzaEnv     StanzaKind = "env"
	StanzaInstall StanzaKind = "install"
)

// Stanza is one structural unit of the emitted container build file.
// Only the fields relevant to Kind are populated; the pretty-printer in
// render.go switches on Kind and reads the matching fields.
type Stanza struct {
	Kind StanzaKind

	// StanzaBase: nonBuildKitFeatureContentFallback, legacy mode only.
	// "FROM <ContentImage> AS dev_containers_feature_content_source".
	ContentImage string

	// StanzaStage: one featureBuildStages entry, emitted for every
	// acquire-using feature.
	StageName   string // "<source-info-string>_<id>"
	FeaturePath string // "/tmp/build-features/<source-info>/<id>"
	CommonPath  string // "/tmp/build-features/<source-info>/common"
	EnvFilePath string // path (relative to build context) sourced before acquire/install runs

	// StanzaCopy: copyFeatureBuildStages entry, one per acquire-using
	// feature, paired 1:1 with the StanzaStage of the same feature.
	CopyFromStage    string
	CopyPath         string
	HasConfigure     bool
	ConfigureEnvPath string

	// StanzaInstall: featureLayer, a single aggregating stanza listing
	// every install.sh-style feature in set-then-declaration order.
	InstallEntries []InstallEntry

	// StanzaEnv: containerEnv, one ENV line per (feature, entry).
	EnvLines []EnvLine
}

// InstallEntry is one feature installed in the shared featureLayer
// stanza (no dedicated build stage, install.sh-style).
type InstallEntry struct {
	SourceInfo  string
	FeatureID   string
	EnvFilePath string // relative to content root, sourced before install.sh
	TargetPath  string // /usr/local/devcontainer-features/<source-info>/<id>
	SourcePath  string // <contentSourceRootPath>/<source-info>/features/<id>, copied in before install.sh runs
	CommonPath  string // <contentSourceRootPath>/<source-info>/common, copied alongside SourcePath
}

// EnvLine is one `ENV K=V` emitted for an included feature's non-empty
// containerEnv entry.
type EnvLine struct {
	Key   string
	Value string
}
