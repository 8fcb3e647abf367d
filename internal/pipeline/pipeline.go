// Package pipeline wires the engine's seven components together end to
// end: parse (+ optional merge) -> ordered declarations -> assemble ->
// synthesize -> drive. This is the "explicit task graph joined at
// well-defined barriers" spec.md §9 calls for in place of the source's
// Promise chains; internal/cli commands are thin wrappers around it.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/corewright/vessel/internal/builder"
	"github.com/corewright/vessel/internal/devcontainer"
	"github.com/corewright/vessel/internal/featureset"
	"github.com/corewright/vessel/internal/fetch"
	"github.com/corewright/vessel/internal/host"
	"github.com/corewright/vessel/internal/recipe"
	"github.com/corewright/vessel/internal/ui"
	"github.com/corewright/vessel/internal/util"
)

// Options configures one end-to-end build.
type Options struct {
	// ConfigPath is the devcontainer.json to build.
	ConfigPath string
	// ParentConfigPath, if set, is merged as the parent of ConfigPath's
	// config via the Config Merger (an "extends" style composition the
	// distilled spec's test command doesn't name but the merger exists
	// to serve).
	ParentConfigPath string
	// ExtendBehaviors overrides the per-key merge behavior; nil uses
	// REPLACE for every key.
	ExtendBehaviors map[string]devcontainer.ExtendBehavior

	// DstFolder is the working directory fetched payloads, env files,
	// and the synthesized recipe are written under.
	DstFolder string
	// LocalCacheDir is the bundled feature tree for local-cache sources.
	LocalCacheDir string
	// GitHubToken authenticates GitHub release API fetches.
	GitHubToken string

	// Backend selects advanced (buildx build-context) or legacy
	// (throwaway content image) recipe synthesis and driving.
	Backend recipe.Backend
	// Tag is the resulting image tag.
	Tag string
	// Stdout receives build output.
	Stdout io.Writer
}

// Run executes the full pipeline and returns the built image tag.
func Run(ctx context.Context, h host.Host, opts Options) (string, error) {
	cfg, err := devcontainer.ParseFile(opts.ConfigPath)
	if err != nil {
		return "", err
	}

	if opts.ParentConfigPath != "" {
		parent, err := devcontainer.ParseFile(opts.ParentConfigPath)
		if err != nil {
			return "", err
		}
		cfg, err = devcontainer.Merge(parent, cfg, opts.ExtendBehaviors)
		if err != nil {
			return "", err
		}
	}

	if cfg.Image == "" {
		return "", util.NewHostIOError("pipeline:load-config", fmt.Errorf("devcontainer.json at %s has no image", opts.ConfigPath))
	}

	ordered, err := featureset.OrderedDeclarations(cfg)
	if err != nil {
		return "", err
	}

	f := &fetch.Fetcher{LocalCacheDir: opts.LocalCacheDir, GitHubToken: opts.GitHubToken}

	spinner := ui.StartSpinner("resolving and fetching features")
	featuresCfg, err := featureset.Assemble(ctx, h, f, ordered, opts.DstFolder, nil)
	if err != nil {
		spinner.Fail("feature assembly failed")
		return "", err
	}
	spinner.Success(fmt.Sprintf("assembled %d feature set(s)", len(featuresCfg.FeatureSets)))

	backend := opts.Backend
	if backend == nil {
		backend = recipe.AdvancedBackend{}
	}

	contentImageName := ""
	if !backend.SupportsBuildContext() {
		contentImageName = builder.NewContentImageName()
	}

	r, err := recipe.Synthesize(h, featuresCfg, cfg.Image, backend, contentImageName)
	if err != nil {
		return "", err
	}

	dockerfilePath := h.Join(opts.DstFolder, "Dockerfile")
	if err := h.WriteFile(dockerfilePath, []byte(r.Render()), 0o644); err != nil {
		return "", util.NewHostIOError("pipeline:write-dockerfile", err)
	}

	if r.NeedsContentImage {
		contentDockerfilePath := h.Join(opts.DstFolder, "Dockerfile.buildContent")
		if err := h.WriteFile(contentDockerfilePath, []byte(recipe.ContentDockerfile()), 0o644); err != nil {
			return "", util.NewHostIOError("pipeline:write-content-dockerfile", err)
		}
		spinner = ui.StartSpinner("building feature content image")
		if err := builder.BuildContentImage(ctx, h, opts.DstFolder, contentDockerfilePath, contentImageName, opts.Stdout); err != nil {
			spinner.Fail("content image build failed")
			return "", err
		}
		spinner.Success("content image built")
	}

	emptyDir := h.Join(opts.DstFolder, ".empty-context")
	if err := h.MkdirAll(emptyDir, 0o755); err != nil {
		return "", util.NewHostIOError("pipeline:mkdir-empty-context", err)
	}

	buildArgs := map[string]string{"_DEV_CONTAINERS_BASE_IMAGE": cfg.Image}
	buildOpts := builder.FromRecipe(r, dockerfilePath, opts.DstFolder, emptyDir, opts.Tag, buildArgs)
	buildOpts.Stdout = opts.Stdout

	spinner = ui.StartSpinner("building image")
	if err := builder.Build(ctx, h, buildOpts); err != nil {
		spinner.Fail("build failed")
		return "", err
	}
	spinner.Success(fmt.Sprintf("built %s", opts.Tag))

	return opts.Tag, nil
}
