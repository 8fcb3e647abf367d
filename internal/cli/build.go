package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corewright/vessel/internal/host"
	"github.com/corewright/vessel/internal/pipeline"
	"github.com/corewright/vessel/internal/recipe"
	"github.com/corewright/vessel/internal/ui"
)

var (
	configFlag       string
	parentConfigFlag string
	tagFlag          string
	backendFlag      string
	localCacheFlag   string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Resolve, fetch, assemble, synthesize, and build a dev container image with features",
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&configFlag, "config", "c", "", "path to devcontainer.json (default: <workspace>/.devcontainer/devcontainer.json)")
	buildCmd.Flags().StringVar(&parentConfigFlag, "parent-config", "", "optional parent devcontainer.json to merge before building")
	buildCmd.Flags().StringVarP(&tagFlag, "tag", "t", "", "tag to apply to the built image (required)")
	buildCmd.Flags().StringVar(&backendFlag, "backend", "advanced", "builder backend: advanced (buildx build-context) or legacy (throwaway content image)")
	buildCmd.Flags().StringVar(&localCacheFlag, "local-cache", "", "directory containing the bundled local-cache feature tree")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfgPath := configFlag
	if cfgPath == "" {
		cfgPath = filepath.Join(workspacePath, ".devcontainer", "devcontainer.json")
	}
	if tagFlag == "" {
		return fmt.Errorf("--tag is required")
	}

	backend, err := resolveBackend(backendFlag)
	if err != nil {
		return err
	}

	dstFolder, err := os.MkdirTemp("", "vessel-build-*")
	if err != nil {
		return fmt.Errorf("create build scratch directory: %w", err)
	}

	opts := pipeline.Options{
		ConfigPath:       cfgPath,
		ParentConfigPath: parentConfigFlag,
		DstFolder:        dstFolder,
		LocalCacheDir:    localCacheFlag,
		GitHubToken:      os.Getenv("GITHUB_TOKEN"),
		Backend:          backend,
		Tag:              tagFlag,
		Stdout:           os.Stdout,
	}

	tag, err := pipeline.Run(ctx, host.OSHost{}, opts)
	if err != nil {
		ui.Error("build failed: %v", err)
		ui.Warning("scratch directory %s left in place for postmortem", dstFolder)
		return err
	}

	os.RemoveAll(dstFolder)
	ui.Success("built %s", tag)
	return nil
}

func resolveBackend(name string) (recipe.Backend, error) {
	switch name {
	case "advanced", "":
		return recipe.AdvancedBackend{}, nil
	case "legacy":
		return recipe.LegacyBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want advanced or legacy)", name)
	}
}
