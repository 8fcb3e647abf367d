package devcontainer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *DevContainerConfig {
	t.Helper()
	cfg, err := Parse([]byte(raw))
	require.NoError(t, err)
	return cfg
}

// TestMerge_Scenario7 reproduces spec.md §8 scenario 7:
// merge({a:1, list:[1,2]}, {a:2, list:[2,3]}) with list bound to MERGE
// and a defaulting to REPLACE -> {a:2, list:[1,2,3]}.
func TestMerge_Scenario7(t *testing.T) {
	parent := mustParse(t, `{"name":"p", "list":[1,2]}`)
	child := mustParse(t, `{"name":"c", "list":[2,3]}`)

	behaviors := map[string]ExtendBehavior{"list": BehaviorMerge}
	merged, err := Merge(parent, child, behaviors)
	require.NoError(t, err)

	require.Equal(t, "c", merged.Name) // REPLACE default: child wins

	top, err := RawTopLevel(merged)
	require.NoError(t, err)
	require.JSONEq(t, `[1,2,3]`, string(top["list"]))
}

func TestMerge_Skip(t *testing.T) {
	parent := mustParse(t, `{"remoteUser":"parent-user"}`)
	child := mustParse(t, `{"remoteUser":"child-user"}`)

	merged, err := Merge(parent, child, map[string]ExtendBehavior{"remoteUser": BehaviorSkip})
	require.NoError(t, err)
	require.Equal(t, "parent-user", merged.RemoteUser)
}

func TestMerge_ReplaceIdempotent(t *testing.T) {
	parent := mustParse(t, `{"image":"base:1"}`)
	child := mustParse(t, `{"image":"child:1"}`)

	once, err := Merge(parent, child, nil)
	require.NoError(t, err)

	twice, err := Merge(parent, once, nil)
	require.NoError(t, err)

	require.Equal(t, once.Image, twice.Image)
}

func TestMerge_ArrayMustBeOrderedSequence(t *testing.T) {
	parent := mustParse(t, `{"list":[1,2]}`)
	child := mustParse(t, `{"list":{"not":"an array"}}`)

	_, err := Merge(parent, child, map[string]ExtendBehavior{"list": BehaviorMerge})
	require.Error(t, err)
}

func TestMerge_ReplaceRemovesKeyWhenChildAbsent(t *testing.T) {
	parent := mustParse(t, `{"name":"parent-only"}`)
	child := mustParse(t, `{}`)

	merged, err := Merge(parent, child, nil)
	require.NoError(t, err)
	require.Empty(t, merged.Name)
}
