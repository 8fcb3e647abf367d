package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_LocalCache(t *testing.T) {
	res, ok := Resolve("helloworld")
	require.True(t, ok)
	assert.Equal(t, KindLocalCache, res.Info.Kind)
	assert.Equal(t, "helloworld", res.ID)
}

func TestResolve_GitHubRepoLatest(t *testing.T) {
	res, ok := Resolve("octocat/myfeatures/helloworld")
	require.True(t, ok)
	assert.Equal(t, KindGitHubRepo, res.Info.Kind)
	assert.Equal(t, "octocat", res.Info.Owner)
	assert.Equal(t, "myfeatures", res.Info.Repo)
	assert.True(t, res.Info.IsLatest)
	assert.Equal(t, "https://api.github.com/repos/octocat/myfeatures/releases/latest", res.Info.APIURI)
	assert.Equal(t, "https://github.com/octocat/myfeatures/releases/latest/download/devcontainer-features.tgz", res.Info.UnauthenticatedURI)
	assert.Equal(t, "helloworld", res.ID)
}

func TestResolve_GitHubRepoTagged(t *testing.T) {
	res, ok := Resolve("octocat/myfeatures/helloworld@v0.0.4")
	require.True(t, ok)
	assert.Equal(t, "v0.0.4", res.Info.Tag)
	assert.False(t, res.Info.IsLatest)
	assert.Equal(t, "https://api.github.com/repos/octocat/myfeatures/releases/tags/v0.0.4", res.Info.APIURI)
	assert.Equal(t, "https://github.com/octocat/myfeatures/releases/download/v0.0.4/devcontainer-features.tgz", res.Info.UnauthenticatedURI)
}

func TestResolve_DirectTarball(t *testing.T) {
	res, ok := Resolve("https://example.com/x/devcontainer-features.tgz#helloworld")
	require.True(t, ok)
	assert.Equal(t, KindDirectTarball, res.Info.Kind)
	assert.Equal(t, "https://example.com/x/devcontainer-features.tgz", res.Info.TarballURI)
	assert.Equal(t, "helloworld", res.ID)
}

func TestResolve_FilePath(t *testing.T) {
	res, ok := Resolve("./local/helloworld")
	require.True(t, ok)
	assert.Equal(t, KindFilePath, res.Info.Kind)
	assert.True(t, res.Info.IsRelative)
	assert.Equal(t, "./local", res.Info.FilePath)
	assert.Equal(t, "helloworld", res.ID)

	abs, ok := Resolve("/opt/features/helloworld")
	require.True(t, ok)
	assert.False(t, abs.Info.IsRelative)
}

func TestResolve_Rejections(t *testing.T) {
	cases := []string{
		"octocat/myfeatures",
		"octocat/myfeatures#",
		"https://example.com/x/devcontainer-features.tgz/",
		"octocat/myfeatures/@x",
		"octocat/myfeatures/MY_$UPER",
	}
	for _, id := range cases {
		_, ok := Resolve(id)
		assert.Falsef(t, ok, "expected rejection for %q", id)
	}
}

func TestSourceInfoString_GitHub(t *testing.T) {
	latest := Information{Kind: KindGitHubRepo, Owner: "bob", Repo: "mobileapp", IsLatest: true}
	assert.Equal(t, "github-bob-mobileapp-latest", latest.String())

	tagged := Information{Kind: KindGitHubRepo, Owner: "bob", Repo: "mobileapp", Tag: "v0.0.4"}
	assert.Equal(t, "github-bob-mobileapp-v0.0.4", tagged.String())
}

func TestSourceInfoString_Injective(t *testing.T) {
	infos := []Information{
		{Kind: KindLocalCache},
		{Kind: KindGitHubRepo, Owner: "a", Repo: "b", IsLatest: true},
		{Kind: KindGitHubRepo, Owner: "a", Repo: "b", Tag: "v1"},
		{Kind: KindDirectTarball, TarballURI: "https://example.com/a.tgz"},
		{Kind: KindDirectTarball, TarballURI: "https://example.com/b.tgz"},
		{Kind: KindFilePath, FilePath: "/a/b"},
		{Kind: KindFilePath, FilePath: "/a/c"},
	}
	seen := make(map[string]bool)
	for _, info := range infos {
		s := info.String()
		assert.Falsef(t, seen[s], "collision for %+v at %q", info, s)
		seen[s] = true
	}
}
