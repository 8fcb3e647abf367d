package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/corewright/vessel/internal/host"
	"github.com/corewright/vessel/internal/pipeline"
	"github.com/corewright/vessel/internal/tempproject"
	"github.com/corewright/vessel/internal/ui"
)

var (
	testBaseImage     string
	testCollection    string
	testFeaturesCSV   string
	testBackend       string
	testLocalCacheDir string
)

// featuresCmd groups feature-development subcommands, mirroring the
// upstream devcontainer CLI's "features" command group.
var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Feature development commands",
}

// featuresTestCmd implements spec.md §6's test command surface:
// "features test --base-image <img> --collection <path> --features <csv>".
// Exits 0 on success, 1 on "no features specified", non-zero on build
// failure.
var featuresTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Build a throwaway project exercising one or more features against a base image",
	RunE:  runFeaturesTest,
}

func init() {
	featuresTestCmd.Flags().StringVar(&testBaseImage, "base-image", "", "base image to build features against (required)")
	featuresTestCmd.Flags().StringVar(&testCollection, "collection", "", "feature collection path, e.g. an owner/repo (required)")
	featuresTestCmd.Flags().StringVar(&testFeaturesCSV, "features", "", "comma-separated feature ids to test (required)")
	featuresTestCmd.Flags().StringVar(&testBackend, "backend", "advanced", "builder backend: advanced or legacy")
	featuresTestCmd.Flags().StringVar(&testLocalCacheDir, "local-cache", "", "directory containing the bundled local-cache feature tree")
	featuresCmd.AddCommand(featuresTestCmd)
}

func runFeaturesTest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if testBaseImage == "" || testCollection == "" {
		return fmt.Errorf("--base-image and --collection are required")
	}

	ids := splitCSV(testFeaturesCSV)
	if len(ids) == 0 {
		ui.Error("no features specified")
		os.Exit(1)
	}

	backend, err := resolveBackend(testBackend)
	if err != nil {
		return err
	}

	h := host.OSHost{}
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	projectRoot, err := tempproject.Generate(h, timestamp, testBaseImage, testCollection, ids)
	if err != nil {
		return err
	}
	ui.Println(fmt.Sprintf("generated test project at %s", projectRoot))

	dstFolder, err := os.MkdirTemp("", "vessel-features-test-*")
	if err != nil {
		return fmt.Errorf("create build scratch directory: %w", err)
	}

	tag := fmt.Sprintf("vessel-features-test:%s", timestamp)
	opts := pipeline.Options{
		ConfigPath:    tempproject.DevContainerPath(h, projectRoot),
		DstFolder:     dstFolder,
		LocalCacheDir: testLocalCacheDir,
		GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		Backend:       backend,
		Tag:           tag,
		Stdout:        os.Stdout,
	}

	if _, err := pipeline.Run(ctx, h, opts); err != nil {
		ui.Error("features test build failed: %v", err)
		ui.Warning("scratch directory %s left in place for postmortem", dstFolder)
		return err
	}

	os.RemoveAll(dstFolder)
	ui.Success("features test build succeeded: %s", tag)
	return nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
