package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssvm/config"
	"github.com/katalvlaran/ssvm/inference"
	"github.com/katalvlaran/ssvm/learner"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", viper.New())
	require.NoError(t, err)
	require.Equal(t, learner.DefaultConfig(), cfg)
}

// TestLoad_Layering: file overrides defaults, env overrides file, flags override env.
func TestLoad_Layering(t *testing.T) {
	path := writeFile(t, "ssvm.yaml", `
c: 0.5
max_iter: 20
tol: 0.01
switch_to: exhaustive
check_constraints: false
`)
	t.Setenv("SSVM_MAX_ITER", "30")
	t.Setenv("SSVM_INFERENCE_CACHE", "7")

	fs := pflag.NewFlagSet("train", pflag.ContinueOnError)
	config.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--inference-cache", "9", "--verbose", "2"}))

	v := viper.New()
	require.NoError(t, config.BindFlags(v, fs))
	cfg, err := config.Load(path, v)
	require.NoError(t, err)

	// file
	require.Equal(t, 0.5, cfg.C)
	require.Equal(t, 0.01, cfg.Tol)
	require.Equal(t, inference.MethodExhaustive, cfg.SwitchTo)
	require.False(t, cfg.CheckConstraints)
	// env over file, flag over env
	require.Equal(t, 30, cfg.MaxIter)
	require.Equal(t, 9, cfg.InferenceCache)
	require.Equal(t, 2, cfg.Verbose)
	// defaults
	require.Equal(t, 50, cfg.InactiveWindow)
	require.Equal(t, inference.MethodGraphCut, cfg.InferenceMethod)
	require.Equal(t, 10, cfg.ShowLossEvery)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), viper.New())
	require.ErrorIs(t, err, config.ErrLoad)

	path := writeFile(t, "bad.yaml", "max_iter: [1, 2]\n")
	_, err = config.Load(path, viper.New())
	require.ErrorIs(t, err, config.ErrLoad)

	path = writeFile(t, "invalid.yaml", "c: -1\n")
	_, err = config.Load(path, viper.New())
	require.ErrorIs(t, err, learner.ErrInvalidConfig)
}

// TestWrite_RoundTrip: a written config loads back unchanged.
func TestWrite_RoundTrip(t *testing.T) {
	want := learner.DefaultConfig()
	want.C = 2.5
	want.MaxIter = 12
	want.SwitchTo = inference.MethodExhaustive
	want.StartExact = true

	var buf bytes.Buffer
	require.NoError(t, config.Write(&buf, want))
	path := writeFile(t, "out.yaml", buf.String())

	got, err := config.Load(path, viper.New())
	require.NoError(t, err)
	require.Equal(t, want, got)
}
