package util

import "fmt"

// ErrorKind enumerates the error kinds named in the engine's error
// handling design. ParseError is deliberately excluded from this type:
// a rejected identifier is not an error, it is a typed "not recognized"
// result that the Identifier Resolver returns instead of raising.
type ErrorKind string

const (
	// KindFetch covers network failure, timeout, bad HTTP status, and
	// auth failure while downloading a feature payload.
	KindFetch ErrorKind = "fetch"
	// KindExtract covers a malformed tar/tar.gz archive.
	KindExtract ErrorKind = "extract"
	// KindPayload covers an extracted tree missing its features/<id>/
	// subtree.
	KindPayload ErrorKind = "payload"
	// KindMergeType covers a Config Merger MERGE behavior applied to
	// values that are not both ordered sequences.
	KindMergeType ErrorKind = "merge-type"
	// KindBuild covers a non-zero exit from the container builder.
	KindBuild ErrorKind = "build"
	// KindHostIO covers a failure surfaced untouched from the host
	// abstraction (filesystem, process exec).
	KindHostIO ErrorKind = "host-io"
)

// FetchFailureMode distinguishes the sub-cases of KindFetch called out in
// spec.md §5 (timeout) and §7 (network|timeout|http-status|auth).
type FetchFailureMode string

const (
	FetchNetwork    FetchFailureMode = "network"
	FetchTimeout    FetchFailureMode = "timeout"
	FetchHTTPStatus FetchFailureMode = "http-status"
	FetchAuth       FetchFailureMode = "auth"
)

// EngineError is the single error type the engine surfaces to callers.
// It carries the failing feature id (or global step) so the CLI can
// print the "identifying the failing feature id (or global step) plus
// the error kind" line required by spec.md §7.
type EngineError struct {
	Kind       ErrorKind
	FetchMode  FetchFailureMode // only meaningful when Kind == KindFetch
	FeatureID  string           // empty for a global-step failure
	Step       string           // e.g. "assemble", "synthesize", "drive"
	BuilderLog string           // captured stderr, only for KindBuild
	Err        error
}

func (e *EngineError) Error() string {
	subject := e.Step
	if e.FeatureID != "" {
		subject = e.FeatureID
	}
	if subject == "" {
		subject = "<unknown>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, subject, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, subject)
}

func (e *EngineError) Unwrap() error { return e.Err }

// NewFetchError builds a KindFetch EngineError for the given source-info
// string (used as FeatureID/subject since a fetch is per-SourceInformation,
// not per-feature).
func NewFetchError(sourceInfo string, mode FetchFailureMode, err error) *EngineError {
	return &EngineError{Kind: KindFetch, FetchMode: mode, FeatureID: sourceInfo, Err: err}
}

func NewExtractError(sourceInfo string, err error) *EngineError {
	return &EngineError{Kind: KindExtract, FeatureID: sourceInfo, Err: err}
}

func NewPayloadError(sourceInfo string, err error) *EngineError {
	return &EngineError{Kind: KindPayload, FeatureID: sourceInfo, Err: err}
}

func NewMergeTypeError(key string, err error) *EngineError {
	return &EngineError{Kind: KindMergeType, FeatureID: key, Step: "merge", Err: err}
}

func NewBuildError(builderLog string, err error) *EngineError {
	return &EngineError{Kind: KindBuild, Step: "build", BuilderLog: builderLog, Err: err}
}

func NewHostIOError(step string, err error) *EngineError {
	return &EngineError{Kind: KindHostIO, Step: step, Err: err}
}
