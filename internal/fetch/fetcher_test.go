package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corewright/vessel/internal/source"
	"github.com/corewright/vessel/internal/util"
)

func writeLocalCacheFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	featureDir := filepath.Join(dir, "features", "helloworld")
	require.NoError(t, os.MkdirAll(featureDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(featureDir, "install.sh"), []byte("#!/bin/sh\n"), 0o755))
	return dir
}

func TestFetch_LocalCache(t *testing.T) {
	cache := writeLocalCacheFixture(t)
	dst := t.TempDir()

	f := &Fetcher{LocalCacheDir: cache}
	info := source.Information{Kind: source.KindLocalCache}

	payloadDir, err := f.Fetch(context.Background(), info, dst)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(payloadDir, "features", "helloworld", "install.sh"))
}

func TestFetch_FilePath(t *testing.T) {
	cache := writeLocalCacheFixture(t)
	dst := t.TempDir()

	f := &Fetcher{}
	info := source.Information{Kind: source.KindFilePath, FilePath: cache}

	payloadDir, err := f.Fetch(context.Background(), info, dst)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(payloadDir, "features", "helloworld", "install.sh"))
}

// TestFetch_PersistentCacheHitSkipsExtraction seeds the persistent cache
// (keyed by the source-info slug, under $XDG_CACHE_HOME) with a payload
// and a sidecar hash matching the server's response body, then serves
// bytes that are NOT a valid gzip stream. A cache hit must copy the
// seeded payload straight through without ever calling extract.Gz on
// the bogus body; a miss would fail extraction and surface an error.
func TestFetch_PersistentCacheHitSkipsExtraction(t *testing.T) {
	xdgCache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdgCache)

	body := []byte("not a real gzip stream")
	sum := sha256.Sum256(body)
	digest := hex.EncodeToString(sum[:])

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body) //nolint:errcheck
	}))
	defer srv.Close()

	info := source.Information{Kind: source.KindDirectTarball, TarballURI: srv.URL}
	slug := info.String()

	cacheDir := filepath.Join(xdgCache, "vessel", "features", slug)
	require.NoError(t, os.MkdirAll(filepath.Join(cacheDir, "features", "helloworld"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "features", "helloworld", "install.sh"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(cacheDir+".sha256", []byte(digest), 0o644))

	dst := t.TempDir()
	f := &Fetcher{}
	payloadDir, err := f.Fetch(context.Background(), info, dst)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(payloadDir, "features", "helloworld", "install.sh"))
}

func TestFetch_MissingFeaturesSubtreeIsPayloadError(t *testing.T) {
	emptyCache := t.TempDir()
	dst := t.TempDir()

	f := &Fetcher{LocalCacheDir: emptyCache}
	info := source.Information{Kind: source.KindLocalCache}

	_, err := f.Fetch(context.Background(), info, dst)
	require.Error(t, err)
	var engineErr *util.EngineError
	require.ErrorAs(t, err, &engineErr)
	require.Equal(t, util.KindPayload, engineErr.Kind)
}
