// Package recipe implements the Build Recipe Synthesizer (spec.md
// §4.5), the engine's centerpiece: it turns an assembled FeaturesConfig
// into a structured Recipe (stanza.go) which render.go's pretty-printer
// turns into the actual container build file text.
package recipe

import (
	"fmt"
	"path"
	"sort"

	"github.com/corewright/vessel/internal/devcontainer"
	"github.com/corewright/vessel/internal/featureset"
	"github.com/corewright/vessel/internal/host"
	"github.com/corewright/vessel/internal/util"
)

// legacyContentSourceRoot is the contentSourceRootPath used in legacy
// mode: the directory inside the throwaway content image that holds the
// feature tree (ContentDockerfile copies the build context there). The
// content image name itself is passed in already namespaced per build
// (see internal/builder.NewContentImageName).
const legacyContentSourceRoot = "/tmp/build-features/"

// Recipe is the fully synthesized build artifact: a prefix plus an
// ordered stanza list, per spec.md §4.5(a)/(b). Rendering is confined to
// render.go; every field here is structural.
type Recipe struct {
	SyntaxDirective       string // advanced mode only, e.g. "# syntax=docker/dockerfile:1.4"
	BaseImage             string
	ContentSourceRootPath string // "." (advanced) or "/tmp/build-features/" (legacy)
	Stanzas               []Stanza

	// NeedsContentImage is true in legacy mode: the driver must build a
	// throwaway FROM-scratch content image before this recipe.
	NeedsContentImage bool
	ContentImageName  string
}

// Synthesize builds a Recipe from cfg, writing each feature's
// devcontainer-features.env file to disk via h. Stage/install ordering
// follows cfg's feature-set order and, within a set, declaration order,
// per spec.md §5's ordering guarantee (layer hash / build-cache
// stability depends on this being stable).
func Synthesize(h host.Host, cfg *featureset.FeaturesConfig, baseImage string, backend Backend, contentImageName string) (*Recipe, error) {
	r := &Recipe{BaseImage: baseImage}

	if backend.SupportsBuildContext() {
		r.SyntaxDirective = "# syntax=docker/dockerfile:1.4"
		r.ContentSourceRootPath = "."
	} else {
		r.NeedsContentImage = true
		r.ContentImageName = contentImageName
		r.ContentSourceRootPath = legacyContentSourceRoot
		r.Stanzas = append(r.Stanzas, Stanza{Kind: StanzaBase, ContentImage: contentImageName})
	}

	var (
		copyStanzas    []Stanza
		installEntries []InstallEntry
		envLines       []EnvLine
	)

	for _, set := range cfg.FeatureSets {
		sourceInfo := set.SourceInfoString()
		installEnvByEntry := map[string]string{}

		for _, f := range set.Features {
			if !f.Included {
				continue
			}

			if f.HasAcquire() {
				targetPath := path.Join("/usr/local/devcontainer-features", sourceInfo, f.ID)
				envContent := renderEnvFile(f, targetPath)
				envPath := h.Join(cfg.DstFolder, sourceInfo, "features", f.ID, "devcontainer-features.env")
				if err := h.MkdirAll(h.Join(cfg.DstFolder, sourceInfo, "features", f.ID), 0o755); err != nil {
					return nil, util.NewHostIOError("recipe:mkdir-acquire-env", err)
				}
				if err := h.WriteFile(envPath, []byte(envContent), 0o644); err != nil {
					return nil, util.NewHostIOError("recipe:write-acquire-env", err)
				}

				stageName := fmt.Sprintf("%s_%s", sourceInfo, f.ID)
				featurePath := path.Join("/tmp/build-features", sourceInfo, f.ID)
				commonPath := path.Join("/tmp/build-features", sourceInfo, "common")

				r.Stanzas = append(r.Stanzas, Stanza{
					Kind:        StanzaStage,
					StageName:   stageName,
					FeaturePath: featurePath,
					CommonPath:  commonPath,
					EnvFilePath: envPath,
				})
				copyStanzas = append(copyStanzas, Stanza{
					Kind:             StanzaCopy,
					CopyFromStage:    stageName,
					CopyPath:         featurePath,
					HasConfigure:     f.HasConfigure(),
					ConfigureEnvPath: envPath,
				})
			} else {
				targetPath := path.Join("/usr/local/devcontainer-features", sourceInfo, f.ID)
				envContent := renderEnvFile(f, "")
				installEnvByEntry[f.ID] = envContent

				envPath := h.Join(cfg.DstFolder, sourceInfo, "devcontainer-features.env")
				installEntries = append(installEntries, InstallEntry{
					SourceInfo:  sourceInfo,
					FeatureID:   f.ID,
					EnvFilePath: envPath,
					TargetPath:  targetPath,
					SourcePath:  path.Join(r.ContentSourceRootPath, sourceInfo, "features", f.ID),
					CommonPath:  path.Join(r.ContentSourceRootPath, sourceInfo, "common"),
				})
			}

			envKeys := make([]string, 0, len(f.ContainerEnv))
			for k, v := range f.ContainerEnv {
				if v != "" {
					envKeys = append(envKeys, k)
				}
			}
			sort.Strings(envKeys)
			for _, k := range envKeys {
				// A feature's own containerEnv map may reference a sibling
				// entry via ${containerEnv:OTHER} before that entry is
				// otherwise available (parser.go's substituteConfig
				// only covers the devcontainer.json side of this).
				value := devcontainer.SubstituteContainerEnv(f.ContainerEnv[k], f.ContainerEnv)
				envLines = append(envLines, EnvLine{Key: k, Value: value})
			}
		}

		if len(installEnvByEntry) > 0 {
			combined := ""
			for _, f := range set.Features {
				if content, ok := installEnvByEntry[f.ID]; ok {
					combined += content
				}
			}
			envPath := h.Join(cfg.DstFolder, sourceInfo, "devcontainer-features.env")
			if err := h.MkdirAll(h.Join(cfg.DstFolder, sourceInfo), 0o755); err != nil {
				return nil, util.NewHostIOError("recipe:mkdir-install-env", err)
			}
			if err := h.WriteFile(envPath, []byte(combined), 0o644); err != nil {
				return nil, util.NewHostIOError("recipe:write-install-env", err)
			}
		}
	}

	// Copy stanzas open the final stage, so they follow every build stage.
	r.Stanzas = append(r.Stanzas, copyStanzas...)
	if len(installEntries) > 0 {
		r.Stanzas = append(r.Stanzas, Stanza{Kind: StanzaInstall, InstallEntries: installEntries})
	}
	if len(envLines) > 0 {
		r.Stanzas = append(r.Stanzas, Stanza{Kind: StanzaEnv, EnvLines: envLines})
	}

	return r, nil
}
