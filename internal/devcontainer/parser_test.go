package devcontainer

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_SubstitutesLocalEnvInImage(t *testing.T) {
	t.Setenv("VESSEL_TEST_TAG", "22.04")
	data := []byte(`{"image": "ubuntu:${localEnv:VESSEL_TEST_TAG}"}`)

	cfg, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, "ubuntu:22.04", cfg.Image)
}

func TestParse_SubstitutesEnvDefaultWhenUnset(t *testing.T) {
	os.Unsetenv("VESSEL_TEST_UNSET")
	data := []byte(`{"image": "ubuntu:${env:VESSEL_TEST_UNSET:latest}"}`)

	cfg, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, "ubuntu:latest", cfg.Image)
}

func TestParse_SubstitutesContainerEnvValues(t *testing.T) {
	t.Setenv("VESSEL_TEST_HOME", "/home/vessel")
	data := []byte(`{"containerEnv": {"HOME": "${localEnv:VESSEL_TEST_HOME}"}}`)

	cfg, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, "/home/vessel", cfg.ContainerEnv["HOME"])
}
