package recipe

// Backend is the builder-strategy interface from spec.md §9's design
// note ("two backends with overlapping argv are expressed as a builder
// strategy interface with two implementations; the synthesizer selects
// placeholders based on the strategy's declared capability"). It is
// grounded on the teacher's overrideGenerator pattern
// (internal/compose/override.go), which also drives template selection
// off small capability-flag fields on a private generator struct.
type Backend interface {
	// Name identifies the backend for logging and for the content-image
	// build step's skip/run decision.
	Name() string

	// SupportsBuildContext reports whether the underlying builder
	// understands --build-context, letting the synthesizer skip the
	// legacy throwaway content image.
	SupportsBuildContext() bool
}

// AdvancedBackend targets a buildx-capable builder: feature content is
// injected as a named build context, no content image is built.
type AdvancedBackend struct{}

func (AdvancedBackend) Name() string               { return "advanced" }
func (AdvancedBackend) SupportsBuildContext() bool { return true }

// LegacyBackend targets a classic builder with no build-context support:
// feature content must be staged via a throwaway FROM scratch image
// built ahead of the main recipe.
type LegacyBackend struct{}

func (LegacyBackend) Name() string               { return "legacy" }
func (LegacyBackend) SupportsBuildContext() bool { return false }
