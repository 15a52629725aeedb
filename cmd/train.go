package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/ssvm/config"
	"github.com/katalvlaran/ssvm/gridcrf"
	"github.com/katalvlaran/ssvm/gridgraph"
	"github.com/katalvlaran/ssvm/learner"
	"github.com/katalvlaran/ssvm/metrics"
	"github.com/katalvlaran/ssvm/toy"
)

const (
	modelGrid        = "grid"
	modelDirectional = "directional"
)

type trainFlags struct {
	configPath  string
	outputPath  string
	metricsPath string
	model       string
	conn        int
	data        toy.Options
}

func newTrainCmd() *cobra.Command {
	f := trainFlags{data: toy.DefaultOptions()}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a grid CRF on a generated blocks dataset",
		Long: "train generates a seeded blocks dataset, fits a grid CRF with the cutting-plane learner " +
			"and prints a summary. Learner options come from defaults, --config, SSVM_* variables and flags, " +
			"in increasing precedence.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrain(cmd, f)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "config file (yaml, toml or json)")
	fs.StringVarP(&f.outputPath, "output", "o", "", "write the training result as YAML to this file")
	fs.StringVar(&f.metricsPath, "metrics", "", "write Prometheus metrics in text format to this file")
	fs.StringVar(&f.model, "model", modelGrid, "model: grid or directional")
	fs.IntVar(&f.conn, "conn", 4, "grid connectivity: 4 or 8")
	fs.IntVar(&f.data.NSamples, "samples", f.data.NSamples, "training samples")
	fs.IntVar(&f.data.Height, "height", f.data.Height, "grid height")
	fs.IntVar(&f.data.Width, "width", f.data.Width, "grid width")
	fs.IntVar(&f.data.BlockSize, "block-size", f.data.BlockSize, "side of constant label blocks")
	fs.IntVar(&f.data.NStates, "states", f.data.NStates, "states per cell")
	fs.Float64Var(&f.data.Noise, "noise", f.data.Noise, "standard deviation of the evidence noise")
	fs.Int64Var(&f.data.Seed, "seed", f.data.Seed, "dataset seed")
	config.AddFlags(fs)

	return cmd
}

func runTrain(cmd *cobra.Command, f trainFlags) error {
	v := viper.New()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(f.configPath, v)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ds, err := toy.BlocksMultinomial(f.data)
	if err != nil {
		return err
	}
	model, err := newModel(f)
	if err != nil {
		return err
	}
	examples := make([]learner.Example[gridcrf.Image, gridcrf.Labeling], len(ds.X))
	for i := range ds.X {
		examples[i] = learner.Example[gridcrf.Image, gridcrf.Labeling]{X: ds.X[i], Y: ds.Y[i]}
	}

	reg := prometheus.NewRegistry()
	l, err := learner.New[gridcrf.Image, gridcrf.Labeling](model, cfg,
		learner.WithLogger(logger),
		learner.WithRecorder(metrics.NewRecorder(reg)),
	)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	res, err := l.Fit(ctx, examples, nil)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	loss, err := l.Loss(ctx, examples, res.Weights)
	if err != nil {
		return fmt.Errorf("training loss: %w", err)
	}
	logger.Debug("training loss computed", zap.String("run_id", res.RunID), zap.Float64("loss", loss))

	if err = printSummary(cmd.OutOrStdout(), res, loss); err != nil {
		return err
	}
	if f.outputPath != "" {
		if err = writeResult(f.outputPath, res); err != nil {
			return err
		}
	}
	if f.metricsPath != "" {
		if err = prometheus.WriteToTextfile(f.metricsPath, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	return nil
}

func newModel(f trainFlags) (learner.Model[gridcrf.Image, gridcrf.Labeling], error) {
	opts := gridcrf.Options{NStates: f.data.NStates, NFeatures: f.data.NStates}
	switch f.conn {
	case 4:
		opts.Conn = gridgraph.Conn4
	case 8:
		opts.Conn = gridgraph.Conn8
	default:
		return nil, fmt.Errorf("--conn must be 4 or 8, got %d", f.conn)
	}

	switch f.model {
	case modelGrid:
		return gridcrf.NewGridCRF(opts)
	case modelDirectional:
		return gridcrf.NewDirectionalGridCRF(opts)
	default:
		return nil, fmt.Errorf("--model must be %q or %q, got %q", modelGrid, modelDirectional, f.model)
	}
}

func printSummary(w io.Writer, res *learner.Result, loss float64) error {
	_, err := fmt.Fprintf(w,
		"run:          %s\nstate:        %s\niterations:   %d\nswitched at:  %d\nconstraints:  %d\nskipped:      %d\nprimal:       %.6f\ndual:         %.6f\nslack:        %.6f\ntrain loss:   %.4f\n",
		res.RunID, res.State, res.Iterations, res.SwitchIteration, res.ConstraintsAdded,
		res.Skipped, res.Primal, res.Dual, res.Slack, loss)
	return err
}

func writeResult(path string, res *learner.Result) error {
	out, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err = os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	return nil
}
