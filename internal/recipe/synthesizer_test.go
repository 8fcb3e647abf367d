package recipe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corewright/vessel/internal/featureset"
	"github.com/corewright/vessel/internal/host"
	"github.com/corewright/vessel/internal/source"
)

func sampleConfig() *featureset.FeaturesConfig {
	set := &featureset.FeatureSet{
		SourceInformation: source.Information{Kind: source.KindLocalCache},
		Features: []featureset.Feature{
			{
				ID:       "helloworld",
				Value:    map[string]any{"greeting": "hi"},
				Included: true,
				Metadata: featureset.Metadata{HasInstall: true},
			},
		},
	}
	return &featureset.FeaturesConfig{FeatureSets: []*featureset.FeatureSet{set}, DstFolder: "/tmp/dst"}
}

func TestSynthesize_AdvancedBackend_NoContentImage(t *testing.T) {
	cfg := sampleConfig()
	r, err := Synthesize(host.OSHost{}, cfg, "ubuntu:22.04", AdvancedBackend{}, "")
	require.NoError(t, err)
	require.False(t, r.NeedsContentImage)
	require.Equal(t, ".", r.ContentSourceRootPath)

	rendered := r.Render()
	require.Contains(t, rendered, "ARG _DEV_CONTAINERS_BASE_IMAGE=ubuntu:22.04")
	require.Contains(t, rendered, "install.sh")
	// Advanced mode never builds a throwaway content image; the named
	// build-context reference is still expected since the driver injects
	// it as an external context under this exact name (spec.md §4.6 op.1).
	require.NotContains(t, rendered, "FROM dev_container_feature_content_temp")
	require.Contains(t, rendered, "COPY --from=dev_containers_feature_content_source")
}

func TestSynthesize_LegacyBackend_EmitsContentImage(t *testing.T) {
	cfg := sampleConfig()
	r, err := Synthesize(host.OSHost{}, cfg, "ubuntu:22.04", LegacyBackend{}, "dev_container_feature_content_temp_abc123")
	require.NoError(t, err)
	require.True(t, r.NeedsContentImage)
	require.Equal(t, "/tmp/build-features/", r.ContentSourceRootPath)

	rendered := r.Render()
	require.True(t, strings.Contains(rendered, "dev_container_feature_content_temp_abc123"))
}

func TestSynthesize_InstallStyleFeatureCopiesPayloadBeforeRunningInstall(t *testing.T) {
	cfg := sampleConfig()
	r, err := Synthesize(host.OSHost{}, cfg, "ubuntu:22.04", AdvancedBackend{}, "")
	require.NoError(t, err)

	rendered := r.Render()
	copyIdx := strings.Index(rendered, "COPY --from=dev_containers_feature_content_source local-cache/features/helloworld /usr/local/devcontainer-features/local-cache/helloworld")
	runIdx := strings.Index(rendered, "RUN . ")
	require.NotEqual(t, -1, copyIdx, "expected a COPY of the install.sh-style feature's payload before its RUN line:\n%s", rendered)
	require.Less(t, copyIdx, runIdx)
}

func TestSynthesize_SubstitutesContainerEnvCrossReference(t *testing.T) {
	set := &featureset.FeatureSet{
		SourceInformation: source.Information{Kind: source.KindLocalCache},
		Features: []featureset.Feature{
			{
				ID:       "helloworld",
				Included: true,
				Metadata: featureset.Metadata{HasInstall: true},
				ContainerEnv: map[string]string{
					"GREETING_NAME": "world",
					"GREETING":      "hello, ${containerEnv:GREETING_NAME}!",
				},
			},
		},
	}
	cfg := &featureset.FeaturesConfig{FeatureSets: []*featureset.FeatureSet{set}, DstFolder: "/tmp/dst"}

	r, err := Synthesize(host.OSHost{}, cfg, "ubuntu:22.04", AdvancedBackend{}, "")
	require.NoError(t, err)

	rendered := r.Render()
	require.Contains(t, rendered, "ENV GREETING=hello, world!")
}

func TestSynthesize_EmitsSafeIDOptionBuildArgs(t *testing.T) {
	cfg := sampleConfig()
	r, err := Synthesize(host.OSHost{}, cfg, "ubuntu:22.04", AdvancedBackend{}, "")
	require.NoError(t, err)
	require.NotEmpty(t, r.Stanzas)

	env, err := os.ReadFile(filepath.Join(cfg.DstFolder, "local-cache", "devcontainer-features.env"))
	require.NoError(t, err)
	require.Contains(t, string(env), `_BUILD_ARG_HELLOWORLD_GREETING="hi"`)
	require.Contains(t, string(env), "_BUILD_ARG_HELLOWORLD=true")
}
