package tempproject

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corewright/vessel/internal/host"
)

func TestGenerate_WritesDevContainerJSON(t *testing.T) {
	h := host.OSHost{}
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	root, err := Generate(fakeHost{Host: h, tmpDir: tmp}, "20260730", "ubuntu:22.04", "octocat/myfeatures", []string{"helloworld"})
	require.NoError(t, err)

	data, err := os.ReadFile(DevContainerPath(h, root))
	require.NoError(t, err)

	var doc struct {
		Image    string            `json:"image"`
		Features map[string]string `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, "ubuntu:22.04", doc.Image)
	require.Equal(t, "latest", doc.Features["octocat/myfeatures/helloworld"])
}

type fakeHost struct {
	host.Host
	tmpDir string
}

func (f fakeHost) TempDir() string { return f.tmpDir }
