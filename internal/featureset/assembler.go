package featureset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/corewright/vessel/internal/host"
	"github.com/corewright/vessel/internal/source"
	"github.com/corewright/vessel/internal/util"
)

// Fetcher produces a local directory containing a SourceInformation's
// payload, rooted under dstFolder. Implemented by internal/fetch.Fetcher;
// declared here (rather than imported) so featureset stays decoupled
// from the fetch package's concrete caching/locking machinery.
type Fetcher interface {
	Fetch(ctx context.Context, info source.Information, dstFolder string) (payloadDir string, err error)
}

// InclusionPolicy decides whether a resolved feature should be included
// in the final image. spec.md §4.4: "bare-id features bundled in
// local-cache always considered included" regardless of what the policy
// returns for anything else.
type InclusionPolicy func(id string, info source.Information) bool

// AlwaysIncluded is the default InclusionPolicy: every feature is
// included. Product-specific exclusion rules plug in by passing a
// different predicate to Assemble.
func AlwaysIncluded(string, source.Information) bool { return true }

// Assemble builds a FeaturesConfig from a devcontainer.json's ordered
// feature declarations, per spec.md §4.4. It is deterministic: given
// the same declarations, the same fetched payloads, and the same
// policy, it produces a bitwise-identical FeaturesConfig (modulo temp
// paths), because feature sets are grouped and ordered strictly by
// first-encounter order and features are appended in declaration order.
//
// Fetching fans out concurrently across distinct SourceInformation
// values and joins before any FeatureSet is populated, per spec.md §5
// ("feature-set assembly MAY fan out fetches concurrently and join
// before assembly completes; the concurrency bound is the number of
// distinct source-info strings").
func Assemble(ctx context.Context, h host.Host, fetcher Fetcher, decls []Declaration, dstFolder string, policy InclusionPolicy) (*FeaturesConfig, error) {
	if policy == nil {
		policy = AlwaysIncluded
	}

	resolved := make([]source.Result, 0, len(decls))
	declByIndex := make([]Declaration, 0, len(decls))
	distinctOrder := make([]string, 0)
	distinctInfo := make(map[string]source.Information)

	for _, decl := range decls {
		res, ok := source.Resolve(decl.ID)
		if !ok {
			util.Slog().Debug("skipping unrecognized feature identifier", "id", decl.ID)
			continue
		}
		resolved = append(resolved, res)
		declByIndex = append(declByIndex, decl)

		key := res.Info.String()
		if _, seen := distinctInfo[key]; !seen {
			distinctInfo[key] = res.Info
			distinctOrder = append(distinctOrder, key)
		}
	}

	payloadDirs, err := fetchConcurrently(ctx, fetcher, distinctOrder, distinctInfo, dstFolder)
	if err != nil {
		return nil, err
	}

	cfg := &FeaturesConfig{DstFolder: dstFolder}
	setByInfo := make(map[string]*FeatureSet, len(distinctOrder))
	for _, key := range distinctOrder {
		set := &FeatureSet{SourceInformation: distinctInfo[key], DstFolder: dstFolder}
		if err := loadSetMetadata(h, payloadDirs[key], set); err != nil {
			return nil, err
		}
		setByInfo[key] = set
		cfg.FeatureSets = append(cfg.FeatureSets, set)
	}

	for i, res := range resolved {
		set := setByInfo[res.Info.String()]
		feature, err := buildFeature(h, set, res.ID, declByIndex[i].Value)
		if err != nil {
			return nil, err
		}
		feature.Included = res.Info.Kind == source.KindLocalCache || policy(res.ID, res.Info)
		set.Features = append(set.Features, feature)
	}

	return cfg, nil
}

// fetchConcurrently fans a Fetch call out per distinct source-info
// string using an errgroup, bounding concurrency to len(order) as
// spec.md §5 specifies, and joins before returning.
func fetchConcurrently(ctx context.Context, fetcher Fetcher, order []string, infos map[string]source.Information, dstFolder string) (map[string]string, error) {
	results := make(map[string]string, len(order))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, key := range order {
		key, info := key, infos[key]
		g.Go(func() error {
			dir, err := fetcher.Fetch(gctx, info, dstFolder)
			if err != nil {
				return err
			}
			mu.Lock()
			results[key] = dir
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func loadSetMetadata(h host.Host, payloadDir string, set *FeatureSet) error {
	metadataPath := filepath.Join(payloadDir, "devcontainer-features.json")
	data, err := os.ReadFile(metadataPath)
	if err != nil {
		if os.IsNotExist(err) {
			// A missing metadata file is valid for a source that
			// only carries bare install.sh features with no declared
			// options or env; fall back to per-id filesystem inspection.
			set.payloadDir = payloadDir
			return nil
		}
		return util.NewPayloadError(set.SourceInfoString(), err)
	}

	if err := validateMetadataDocument(set.SourceInfoString(), data); err != nil {
		return err
	}

	var records []Metadata
	if err := json.Unmarshal(data, &records); err != nil {
		return util.NewPayloadError(set.SourceInfoString(), fmt.Errorf("parse devcontainer-features.json: %w", err))
	}

	set.metadataCache = make(map[string]Metadata, len(records))
	for _, rec := range records {
		set.metadataCache[rec.ID] = rec
	}
	set.payloadDir = payloadDir
	return nil
}

func buildFeature(h host.Host, set *FeatureSet, id string, value any) (Feature, error) {
	meta := set.metadataCache[id]
	meta.ID = id

	featureDir := filepath.Join(set.payloadDir, "features", id)
	meta.HasAcquire = h.IsFile(filepath.Join(featureDir, "bin", "acquire"))
	meta.HasConfigure = h.IsFile(filepath.Join(featureDir, "bin", "configure"))
	meta.HasInstall = h.IsFile(filepath.Join(featureDir, "install.sh"))

	if !meta.HasAcquire && !meta.HasInstall {
		return Feature{}, util.NewPayloadError(set.SourceInfoString(), fmt.Errorf("feature %q has neither bin/acquire nor install.sh", id))
	}

	return Feature{
		ID:           id,
		Value:        value,
		BuildArg:     meta.BuildArg,
		ContainerEnv: meta.ContainerEnv,
		Options:      meta.Options,
		Metadata:     meta,
		PayloadDir:   featureDir,
	}, nil
}
