package featureset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corewright/vessel/internal/host"
	"github.com/corewright/vessel/internal/source"
)

// fakeFetcher materializes a minimal local-cache-style payload directly
// under dstFolder/<source-info-string>/, skipping any network/IO beyond
// what the test needs.
type fakeFetcher struct{}

func (fakeFetcher) Fetch(_ context.Context, info source.Information, dstFolder string) (string, error) {
	root := filepath.Join(dstFolder, info.String())
	for _, id := range []string{"helloworld", "color"} {
		featureDir := filepath.Join(root, "features", id)
		if err := os.MkdirAll(featureDir, 0o755); err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(featureDir, "install.sh"), []byte("#!/bin/sh\n"), 0o755); err != nil {
			return "", err
		}
	}
	return root, nil
}

func TestAssemble_DeclarationOrderWithinSet(t *testing.T) {
	dst := t.TempDir()
	decls := []Declaration{
		{ID: "helloworld", Value: "latest"},
		{ID: "color", Value: "latest"},
	}

	cfg, err := Assemble(context.Background(), host.OSHost{}, fakeFetcher{}, decls, dst, nil)
	require.NoError(t, err)
	require.Len(t, cfg.FeatureSets, 1)
	require.Len(t, cfg.FeatureSets[0].Features, 2)
	require.True(t, cfg.FeatureSets[0].Features[0].Included)
	require.Equal(t, "helloworld", cfg.FeatureSets[0].Features[0].ID)
	require.Equal(t, "color", cfg.FeatureSets[0].Features[1].ID)
}

func TestAssemble_SkipsUnrecognizedIdentifiers(t *testing.T) {
	dst := t.TempDir()
	decls := []Declaration{
		{ID: "octocat/myfeatures", Value: "latest"}, // rejected: only 2 segments
		{ID: "helloworld", Value: "latest"},
	}

	cfg, err := Assemble(context.Background(), host.OSHost{}, fakeFetcher{}, decls, dst, nil)
	require.NoError(t, err)
	require.Len(t, cfg.FeatureSets, 1)
}
