// Package config loads learner.Config with viper.
//
// Precedence, lowest first:
//  1. learner.DefaultConfig()
//  2. an optional config file (yaml, toml or json, by extension)
//  3. SSVM_* environment variables (SSVM_MAX_ITER, SSVM_SWITCH_TO, ...)
//  4. command-line flags registered with AddFlags and bound with BindFlags
//
// Keys are the mapstructure tags of learner.Config; flags use the same names
// with dashes (max_iter → --max-iter).
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/ssvm/learner"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SSVM"

// ErrLoad indicates the configuration could not be read or decoded.
var ErrLoad = errors.New("config: load failed")

// keys lists every recognised option, in learner.Config order.
var keys = []string{
	"c", "max_iter", "tol", "n_jobs", "inference_cache", "inactive_window",
	"inference_method", "switch_to", "start_exact", "check_constraints",
	"show_loss_every", "verbose", "inactive_threshold", "solver_eps", "solver_max_iter",
}

// flagName maps a config key to its flag name.
func flagName(key string) string { return strings.ReplaceAll(key, "_", "-") }

// SetDefaults installs learner.DefaultConfig() as viper defaults.
func SetDefaults(v *viper.Viper) {
	d := learner.DefaultConfig()
	v.SetDefault("c", d.C)
	v.SetDefault("max_iter", d.MaxIter)
	v.SetDefault("tol", d.Tol)
	v.SetDefault("n_jobs", d.NJobs)
	v.SetDefault("inference_cache", d.InferenceCache)
	v.SetDefault("inactive_window", d.InactiveWindow)
	v.SetDefault("inference_method", string(d.InferenceMethod))
	v.SetDefault("switch_to", string(d.SwitchTo))
	v.SetDefault("start_exact", d.StartExact)
	v.SetDefault("check_constraints", d.CheckConstraints)
	v.SetDefault("show_loss_every", d.ShowLossEvery)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("inactive_threshold", d.InactiveThreshold)
	v.SetDefault("solver_eps", d.SolverEps)
	v.SetDefault("solver_max_iter", d.SolverMaxIter)
}

// AddFlags registers one flag per option on fs, defaulting to DefaultConfig.
func AddFlags(fs *pflag.FlagSet) {
	d := learner.DefaultConfig()
	fs.Float64("c", d.C, "regularization strength")
	fs.Int("max-iter", d.MaxIter, "maximum number of passes")
	fs.Float64("tol", d.Tol, "violation tolerance")
	fs.Int("n-jobs", d.NJobs, "parallel inference workers (<1 uses all CPUs)")
	fs.Int("inference-cache", d.InferenceCache, "cached constraints per example")
	fs.Int("inactive-window", d.InactiveWindow, "passes a constraint may stay inactive before pruning")
	fs.String("inference-method", string(d.InferenceMethod), "starting oracle (icm, graphcut, bb, exhaustive)")
	fs.String("switch-to", string(d.SwitchTo), "exact oracle used after the switch (bb, exhaustive)")
	fs.Bool("start-exact", d.StartExact, "run exact inference from the first pass")
	fs.Bool("check-constraints", d.CheckConstraints, "re-solve the master problem on every pass")
	fs.Int("show-loss-every", d.ShowLossEvery, "record the training loss every N passes (0 disables)")
	fs.IntP("verbose", "v", d.Verbose, "diagnostic verbosity (0-3)")
	fs.Float64("inactive-threshold", d.InactiveThreshold, "dual weight below which a constraint counts as inactive")
	fs.Float64("solver-eps", d.SolverEps, "master problem duality gap tolerance")
	fs.Int("solver-max-iter", d.SolverMaxIter, "master problem iteration cap")
}

// BindFlags binds the flags registered by AddFlags to their keys.
// Flags missing from fs are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range keys {
		f := fs.Lookup(flagName(key))
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("%w: bind %s: %w", ErrLoad, key, err)
		}
	}

	return nil
}

// Load resolves the configuration on v. An empty path skips the file layer.
// The result is validated; a nil v uses a fresh viper instance.
func Load(path string, v *viper.Viper) (learner.Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return learner.Config{}, fmt.Errorf("%w: read %s: %w", ErrLoad, path, err)
		}
	}

	var cfg learner.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return learner.Config{}, fmt.Errorf("%w: decode: %w", ErrLoad, err)
	}
	if err := cfg.Validate(); err != nil {
		return learner.Config{}, err
	}

	return cfg, nil
}

// Write encodes cfg as YAML, in a form Load reads back.
func Write(w io.Writer, cfg learner.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	return enc.Close()
}
