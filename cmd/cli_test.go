package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

var smallBlocks = []string{
	"--samples", "3", "--height", "3", "--width", "3", "--block-size", "2",
	"--states", "2", "--noise", "0", "--max-iter", "100",
}

func TestTrainConvergesAndWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "result.yaml")
	prom := filepath.Join(dir, "metrics.prom")

	args := append([]string{"train", "--output", out, "--metrics", prom}, smallBlocks...)
	stdout, _, err := executeCLI(t, args...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "state:        converged")
	assert.Contains(t, stdout, "train loss:   0.0000")

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &res))
	assert.Equal(t, "converged", res["state"])
	assert.Equal(t, "exact", res["mode"])
	assert.NotEmpty(t, res["run_id"])
	assert.Contains(t, stdout, res["run_id"].(string))

	text, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(text), "ssvm_learner_passes_total")
	assert.Contains(t, string(text), "ssvm_learner_exact_mode 1")
}

func TestTrainHonoursEnvironment(t *testing.T) {
	t.Setenv("SSVM_MAX_ITER", "1")
	// the flag default must not mask the environment
	args := []string{"train", "--samples", "2", "--height", "4", "--width", "4", "--states", "3", "--noise", "1"}
	stdout, _, err := executeCLI(t, args...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "state:        max_iter_reached")
	assert.Contains(t, stdout, "iterations:   1\n")
}

func TestTrainDirectionalModel(t *testing.T) {
	args := append([]string{"train", "--model", "directional", "--conn", "8"}, smallBlocks...)
	stdout, _, err := executeCLI(t, args...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "state:")
}

func TestTrainRejectsBadInput(t *testing.T) {
	_, _, err := executeCLI(t, append([]string{"train", "--model", "dense"}, smallBlocks...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--model")

	_, _, err = executeCLI(t, append([]string{"train", "--conn", "6"}, smallBlocks...)...)
	require.Error(t, err)

	_, _, err = executeCLI(t, append([]string{"train", "--c", "0"}, smallBlocks...)...)
	require.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ssvm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tol: 0.05\nswitch_to: exhaustive\n"), 0o600))

	stdout, _, err := executeCLI(t, "config", "--config", path, "--c", "3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "c: 3\n")
	assert.Contains(t, stdout, "tol: 0.05\n")
	assert.Contains(t, stdout, "switch_to: exhaustive\n")
	assert.Contains(t, stdout, "max_iter: 1000\n")
}

func TestVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ssvm dev\n", stdout)
}
