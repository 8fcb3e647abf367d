// Package fetch implements the Feature Fetcher (spec.md §4.2): for each
// SourceInformation, produce a local directory containing the feature's
// payload.
package fetch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/codeclysm/extract/v4"
	"github.com/gofrs/flock"

	"github.com/corewright/vessel/internal/source"
	"github.com/corewright/vessel/internal/util"
)

// DefaultTimeout is the caller-configurable per-fetch deadline from
// spec.md §5 ("each network fetch has a caller-configurable deadline,
// default 60s").
const DefaultTimeout = 60 * time.Second

// Fetcher implements featureset.Fetcher. It is grounded on the teacher's
// internal/features/resolver.go caching scheme (cache keyed by a hashed
// canonical id, tar/tar.gz extraction with path-traversal guarding) but
// swaps the hand-rolled archive/tar extraction for codeclysm/extract/v4
// (the ecosystem library nlsantos-brig reaches for) and adds a
// gofrs/flock advisory lock per source-info key. The lock file sits
// under dstFolder and is taken exclusively for the whole Fetch, so reads
// of the same key are serialized along with writes; the persistent cache
// that populateFromPersistentCache reads and writes is not locked.
type Fetcher struct {
	// LocalCacheDir is the tool's bundled feature tree, copied verbatim
	// for local-cache sources.
	LocalCacheDir string

	// Timeout bounds each network fetch; zero means DefaultTimeout.
	Timeout time.Duration

	// GitHubToken, if set, authenticates GitHub release API calls
	// (spec.md §6 "Environment: GITHUB_TOKEN"). Falls back to
	// unauthenticated when empty.
	GitHubToken string

	httpClient *http.Client
}

func (f *Fetcher) client() *http.Client {
	if f.httpClient == nil {
		f.httpClient = &http.Client{}
	}
	return f.httpClient
}

func (f *Fetcher) timeout() time.Duration {
	if f.Timeout <= 0 {
		return DefaultTimeout
	}
	return f.Timeout
}

// Fetch produces dstFolder/<source-info-string>/ populated with info's
// payload, per spec.md §4.2.
func (f *Fetcher) Fetch(ctx context.Context, info source.Information, dstFolder string) (string, error) {
	slug := info.String()
	destPath := filepath.Join(dstFolder, slug)

	lockPath := destPath + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return "", util.NewHostIOError("fetch:mkdir-lock-parent", err)
	}
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return "", util.NewHostIOError("fetch:lock", err)
	}
	defer fl.Unlock() //nolint:errcheck

	switch info.Kind {
	case source.KindLocalCache:
		if err := copyTree(f.LocalCacheDir, destPath); err != nil {
			return "", util.NewFetchError(slug, util.FetchNetwork, err)
		}
	case source.KindFilePath:
		src := info.FilePath
		if info.IsRelative {
			// FilePath reaches Fetch exactly as the identifier wrote it;
			// nothing upstream rewrites a relative path against the
			// devcontainer.json's directory. A relative path is resolved
			// against the current working directory, matching a bare
			// os.Open's behavior.
			abs, err := filepath.Abs(src)
			if err != nil {
				return "", util.NewFetchError(slug, util.FetchNetwork, err)
			}
			src = abs
		}
		if err := copyTree(src, destPath); err != nil {
			return "", util.NewFetchError(slug, util.FetchNetwork, err)
		}
	case source.KindDirectTarball:
		if err := f.fetchAndExtract(ctx, info.TarballURI, "", destPath, slug); err != nil {
			return "", err
		}
	case source.KindGitHubRepo:
		if err := f.fetchAndExtract(ctx, info.UnauthenticatedURI, f.GitHubToken, destPath, slug); err != nil {
			return "", err
		}
	default:
		return "", util.NewFetchError(slug, util.FetchNetwork, fmt.Errorf("unsupported source kind %q", info.Kind))
	}

	if err := verifyPayload(destPath); err != nil {
		return "", err
	}

	return destPath, nil
}

func (f *Fetcher) fetchAndExtract(ctx context.Context, uri, token, destPath, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return util.NewFetchError(slug, util.FetchNetwork, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.client().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return util.NewFetchError(slug, util.FetchTimeout, ctx.Err())
		}
		return util.NewFetchError(slug, util.FetchNetwork, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return util.NewFetchError(slug, util.FetchAuth, fmt.Errorf("registry returned %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return util.NewFetchError(slug, util.FetchHTTPStatus, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return util.NewFetchError(slug, util.FetchNetwork, err)
	}

	if err := os.MkdirAll(destPath, 0o755); err != nil {
		return util.NewHostIOError("fetch:mkdir", err)
	}

	cached, err := f.populateFromPersistentCache(ctx, slug, body, destPath)
	if err != nil {
		return err
	}
	if cached {
		return nil
	}

	if err := extract.Gz(ctx, bytes.NewReader(body), destPath, nil); err != nil {
		return util.NewExtractError(slug, err)
	}
	return nil
}

// persistentCacheRoot is $XDG_CACHE_HOME/vessel/features, falling back to
// os.UserCacheDir() when XDG_CACHE_HOME is unset, per SPEC_FULL.md's
// "Supplemented features" entry for a persistent, integrity-checked
// fetch cache keyed by source-info string. A cache directory that can't
// be resolved or created is not fatal: Fetch falls back to extracting
// the freshly downloaded archive directly into destPath.
func persistentCacheRoot() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "vessel", "features"), nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "vessel", "features"), nil
}

// populateFromPersistentCache checks body's SHA-256 against the sidecar
// file recorded for slug the last time it was fetched. On a match, the
// previously extracted payload is copied straight into destPath and
// extraction is skipped; on a miss (or no prior cache entry), body is
// extracted into the persistent cache directory and the sidecar is
// (re)written, then copied into destPath. Returns true if destPath was
// populated from the cache (caller must not also extract).
func (f *Fetcher) populateFromPersistentCache(ctx context.Context, slug string, body []byte, destPath string) (bool, error) {
	root, err := persistentCacheRoot()
	if err != nil {
		util.Slog().Debug("persistent fetch cache unavailable, skipping", "source", slug, "error", err)
		return false, nil
	}

	cacheDir := filepath.Join(root, slug)
	sidecarPath := cacheDir + ".sha256"
	sum := sha256.Sum256(body)
	digest := hex.EncodeToString(sum[:])

	if existing, err := os.ReadFile(sidecarPath); err == nil && string(existing) == digest {
		if info, err := os.Stat(cacheDir); err == nil && info.IsDir() {
			if err := copyTree(cacheDir, destPath); err != nil {
				return false, util.NewFetchError(slug, util.FetchNetwork, err)
			}
			util.Slog().Debug("fetch cache hit", "source", slug, "cache_dir", cacheDir)
			return true, nil
		}
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		util.Slog().Debug("persistent fetch cache unwritable, skipping", "source", slug, "error", err)
		return false, nil
	}
	if err := extract.Gz(ctx, bytes.NewReader(body), cacheDir, nil); err != nil {
		return false, util.NewExtractError(slug, err)
	}
	if err := os.WriteFile(sidecarPath, []byte(digest), 0o644); err != nil {
		util.Slog().Debug("failed writing fetch cache sidecar", "source", slug, "error", err)
	}
	if err := copyTree(cacheDir, destPath); err != nil {
		return false, util.NewFetchError(slug, util.FetchNetwork, err)
	}
	return true, nil
}

// verifyPayload checks the extracted tree has the expected features/
// subtree, per spec.md §4.2 ("PayloadError if the extracted tree lacks
// the expected features/<id>/ subtree").
func verifyPayload(destPath string) error {
	featuresDir := filepath.Join(destPath, "features")
	info, err := os.Stat(featuresDir)
	if err != nil || !info.IsDir() {
		return util.NewPayloadError(filepath.Base(destPath), fmt.Errorf("missing features/ subtree under %s", destPath))
	}
	return nil
}

// copyTree recursively copies src into dst, used for local-cache and
// file-path sources which don't go through the archive extractor.
func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.WriteFile(target, data, info.Mode())
	})
}
