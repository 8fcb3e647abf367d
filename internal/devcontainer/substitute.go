package devcontainer

import (
	"os"
	"regexp"
)

// localEnvPattern matches ${localEnv:VAR} or ${localEnv:VAR:default}.
var localEnvPattern = regexp.MustCompile(`\$\{localEnv:([^}:]+)(?::([^}]*))?\}`)

// envPattern matches ${env:VAR} or ${env:VAR:default}, an alias for
// localEnv.
var envPattern = regexp.MustCompile(`\$\{env:([^}:]+)(?::([^}]*))?\}`)

// containerEnvPattern matches ${containerEnv:VAR}, resolved against the
// set of containerEnv values the recipe synthesizer is about to emit
// rather than the host environment.
var containerEnvPattern = regexp.MustCompile(`\$\{containerEnv:([^}:]+)(?::([^}]*))?\}`)

// SubstituteHostEnv expands ${localEnv:...} and ${env:...} references
// against the host process environment. Adapted from the teacher's
// substituteVariables (internal/features/types.go), generalized to a
// standalone function. parser.go's substituteConfig applies it to the
// devcontainer.json string fields after every Parse (including the
// Config Merger's re-parse of its result); feature option values and
// env-file values are not substituted.
func SubstituteHostEnv(s string) string {
	s = replaceVarPattern(localEnvPattern, s, os.Getenv)
	s = replaceVarPattern(envPattern, s, os.Getenv)
	return s
}

// SubstituteContainerEnv expands ${containerEnv:...} references against
// a caller-supplied map of container environment variables, since those
// aren't available in the host's own environment.
func SubstituteContainerEnv(s string, containerEnv map[string]string) string {
	return replaceVarPattern(containerEnvPattern, s, func(name string) string {
		return containerEnv[name]
	})
}

func replaceVarPattern(pattern *regexp.Regexp, s string, lookup func(string) string) string {
	return pattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := pattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		value := lookup(parts[1])
		if value == "" && len(parts) >= 3 {
			value = parts[2]
		}
		return value
	})
}
