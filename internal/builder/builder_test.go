package builder

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corewright/vessel/internal/host"
)

type fakeHost struct {
	host.Host
	execCalls []execCall
}

type execCall struct {
	cmd  string
	args []string
}

func (f *fakeHost) Exec(_ context.Context, cmd string, args []string, _ string, _, _ io.Writer) (host.ExecResult, error) {
	f.execCalls = append(f.execCalls, execCall{cmd: cmd, args: args})
	return host.ExecResult{ExitCode: 0}, nil
}

func TestBuild_AssemblesBuildxArgs(t *testing.T) {
	fh := &fakeHost{}
	falseVal := false
	opts := Options{
		Dockerfile:    "/tmp/recipe/Dockerfile",
		Context:       "/tmp/dst",
		Tag:           "myimage:latest",
		BuildArgs:     map[string]string{"_DEV_CONTAINERS_BASE_IMAGE": "ubuntu:22.04"},
		BuildContexts: map[string]string{"dev_containers_feature_content_source": "/tmp/dst"},
		IsTTY:         &falseVal,
	}

	err := Build(context.Background(), fh, opts)
	require.NoError(t, err)
	require.Len(t, fh.execCalls, 1)
	require.Equal(t, "docker", fh.execCalls[0].cmd)
	require.Contains(t, fh.execCalls[0].args, "buildx")
	require.Contains(t, fh.execCalls[0].args, "--load")
	require.Contains(t, fh.execCalls[0].args, "-t")
	require.Contains(t, fh.execCalls[0].args, "myimage:latest")
}

func TestNewContentImageName_IsNamespacedPerBuild(t *testing.T) {
	a := NewContentImageName()
	b := NewContentImageName()
	require.NotEqual(t, a, b)
	require.Contains(t, a, "dev_container_feature_content_temp_")
}
