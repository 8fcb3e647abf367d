// Package source implements the Identifier Resolver: parsing an opaque
// feature identifier string into a typed SourceInformation variant, per
// spec.md §4.1.
package source

import "fmt"

// Kind tags which SourceInformation variant a value holds.
type Kind string

const (
	KindLocalCache    Kind = "local-cache"
	KindGitHubRepo    Kind = "github-repo"
	KindDirectTarball Kind = "direct-tarball"
	KindFilePath      Kind = "file-path"
)

// Information is the sealed tagged-variant type for SourceInformation.
// Exactly one of the field groups below is meaningful, selected by Kind.
// A sealed interface (rather than a single struct with optional fields)
// would force every call site to type-switch; spec.md's data model reads
// more naturally as a single comparable struct with a discriminant,
// which is also what getSourceInfoString (String, below) needs to stay
// injective across variants — so this mirrors the teacher's
// devcontainer.Mount pattern (tagged struct, not sealed interface) rather
// than its plan.go sealed-interface pattern, which fits better when the
// variants carry materially different *behavior*, not just fields.
type Information struct {
	Kind Kind

	// github-repo fields.
	Owner              string
	Repo               string
	Tag                string // empty iff IsLatest
	IsLatest           bool
	APIURI             string
	UnauthenticatedURI string

	// direct-tarball fields.
	TarballURI string

	// file-path fields.
	FilePath   string
	IsRelative bool
}

// String returns the canonical source-info string: a stable,
// collision-resistant name used as a directory name and stage-name
// prefix. getSourceInfoString in spec.md §8 must be injective across
// distinct variant-plus-field combinations; each branch below namespaces
// its output with the Kind so that, e.g., a file-path slug can never
// collide with a github-repo slug.
func (i Information) String() string {
	switch i.Kind {
	case KindLocalCache:
		return "local-cache"
	case KindGitHubRepo:
		tag := i.Tag
		if i.IsLatest {
			tag = "latest"
		}
		return fmt.Sprintf("github-%s-%s-%s", i.Owner, i.Repo, tag)
	case KindDirectTarball:
		return "tarball-" + slugify(i.TarballURI)
	case KindFilePath:
		return "path-" + slugify(i.FilePath)
	default:
		return "unknown"
	}
}
