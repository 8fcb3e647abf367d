package recipe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/corewright/vessel/internal/featureset"
)

// safeID renders a feature id as the upper-cased, underscore-delimited
// token spec.md §4.5 calls SAFE_ID: "upper-case feature id with / and -
// replaced by _".
func safeID(id string) string {
	s := strings.ToUpper(id)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// optionValueString renders an option value as the env-file value text.
// Scalars stringify directly; anything else (bools, numbers) uses their
// default fmt rendering, matching the loose coercion the devcontainer
// spec applies to feature option values.
func optionValueString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// mainOptionValue extracts the scalar "main" option used for a legacy
// buildArg substitution: if Value is a scalar, that value; if it's an
// options map, the conventional "version" key when present, else empty.
func mainOptionValue(value any) string {
	switch v := value.(type) {
	case map[string]any:
		if ver, ok := v["version"]; ok {
			return optionValueString(ver)
		}
		return ""
	default:
		return optionValueString(v)
	}
}

// renderEnvFile builds the content of one devcontainer-features.env
// file for a single feature, per spec.md §4.5(c). targetPath is only
// set for acquire-style features.
func renderEnvFile(f featureset.Feature, targetPath string) string {
	var b strings.Builder
	id := safeID(f.ID)

	options := optionMap(f.Value)
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(&b, "_BUILD_ARG_%s_%s=%q\n", id, strings.ToUpper(k), optionValueString(options[k]))
	}

	fmt.Fprintf(&b, "_BUILD_ARG_%s=true\n", id)

	if f.BuildArg != "" {
		fmt.Fprintf(&b, "%s=%s\n", f.BuildArg, mainOptionValue(f.Value))
	}

	if targetPath != "" {
		fmt.Fprintf(&b, "_BUILD_ARG_%s_TARGETPATH=%s\n", id, targetPath)
	}

	return b.String()
}

// optionMap normalizes a Feature.Value into an option name->value map;
// a bare scalar (string/bool) carries no named options.
func optionMap(value any) map[string]any {
	if m, ok := value.(map[string]any); ok {
		return m
	}
	return nil
}
