package source

import (
	"regexp"
	"strings"
)

// validID matches spec.md's "valid-id charset": [A-Za-z0-9_][A-Za-z0-9_\-]*
var validID = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_\-]*$`)

// Result is what Resolve returns for a recognized identifier.
type Result struct {
	Info Information
	ID   string
}

// Resolve parses a feature identifier string per spec.md §4.1. A
// rejection is not an error: ok is false and the caller (the Feature Set
// Assembler) skips the entry after logging. The rules are evaluated in
// the order given in the spec; the first that matches wins.
func Resolve(identifier string) (result Result, ok bool) {
	// Rule 1: direct-tarball. Scoped tightly: any identifier containing
	// "://" is a URI and must fully conform to the "<uri>.tgz#<id>" shape
	// or be rejected outright — it can never fall through to rules 2-4,
	// since those never apply to URIs with a scheme.
	if strings.Contains(identifier, "://") {
		return resolveTarball(identifier)
	}

	// Rule 2: file-path.
	if strings.HasPrefix(identifier, "./") || strings.HasPrefix(identifier, "../") || strings.HasPrefix(identifier, "/") {
		return resolveFilePath(identifier)
	}

	// Rule 3: github-repo.
	if strings.Contains(identifier, "/") {
		return resolveGitHubRepo(identifier)
	}

	// Rule 4: local-cache (bare id).
	if validID.MatchString(identifier) {
		return Result{Info: Information{Kind: KindLocalCache}, ID: identifier}, true
	}

	// Rule 5: reject.
	return Result{}, false
}

func resolveTarball(identifier string) (Result, bool) {
	hashIdx := strings.LastIndex(identifier, "#")
	if hashIdx == -1 {
		return Result{}, false // missing #
	}

	tarballURI := identifier[:hashIdx]
	id := identifier[hashIdx+1:]

	if id == "" {
		return Result{}, false // empty #
	}
	if strings.HasSuffix(tarballURI, "/") {
		return Result{}, false // trailing slash before #
	}
	if !strings.HasSuffix(tarballURI, ".tgz") {
		return Result{}, false
	}
	if !validID.MatchString(id) {
		return Result{}, false // invalid id
	}

	return Result{
		Info: Information{Kind: KindDirectTarball, TarballURI: tarballURI},
		ID:   id,
	}, true
}

func resolveFilePath(identifier string) (Result, bool) {
	isRelative := !strings.HasPrefix(identifier, "/")

	// The trailing "/<id>" segment is the feature id; filePath is
	// everything before it. See SPEC_FULL.md §9 Open Question 1 for why
	// this is resolved as a literal trailing-segment strip rather than
	// the test fixture's apparent rewrite to the constant "features".
	slashIdx := strings.LastIndex(identifier, "/")
	if slashIdx == -1 || slashIdx == len(identifier)-1 {
		return Result{}, false // no id segment, or trailing slash
	}

	filePath := identifier[:slashIdx]
	id := identifier[slashIdx+1:]
	if id == "" {
		return Result{}, false
	}

	return Result{
		Info: Information{Kind: KindFilePath, FilePath: filePath, IsRelative: isRelative},
		ID:   id,
	}, true
}

func resolveGitHubRepo(identifier string) (Result, bool) {
	base := identifier
	tag := ""
	isLatest := true
	if atIdx := strings.Index(identifier, "@"); atIdx != -1 {
		base = identifier[:atIdx]
		tag = identifier[atIdx+1:]
		isLatest = false
	}

	parts := strings.Split(base, "/")
	if len(parts) != 3 {
		return Result{}, false
	}
	owner, repo, id := parts[0], parts[1], parts[2]
	if owner == "" || repo == "" || !validID.MatchString(id) {
		return Result{}, false
	}
	if !isLatest && tag == "" {
		return Result{}, false
	}

	info := Information{
		Kind:     KindGitHubRepo,
		Owner:    owner,
		Repo:     repo,
		Tag:      tag,
		IsLatest: isLatest,
	}
	if isLatest {
		info.APIURI = "https://api.github.com/repos/" + owner + "/" + repo + "/releases/latest"
		info.UnauthenticatedURI = "https://github.com/" + owner + "/" + repo + "/releases/latest/download/devcontainer-features.tgz"
	} else {
		info.APIURI = "https://api.github.com/repos/" + owner + "/" + repo + "/releases/tags/" + tag
		info.UnauthenticatedURI = "https://github.com/" + owner + "/" + repo + "/releases/download/" + tag + "/devcontainer-features.tgz"
	}

	return Result{Info: info, ID: id}, true
}
