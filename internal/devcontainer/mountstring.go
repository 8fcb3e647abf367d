package devcontainer

import "strings"

// splitMountString splits a docker-style mount string
// ("type=bind,source=...,target=...") on commas.
func splitMountString(s string) []string {
	return strings.Split(s, ",")
}

// splitKV splits a single "key=value" mount string part.
func splitKV(part string) (key, value string, ok bool) {
	kv := strings.SplitN(part, "=", 2)
	if len(kv) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1]), true
}
