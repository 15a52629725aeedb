// Package cmd implements the ssvm command line: training a grid CRF on a
// generated blocks dataset and inspecting the effective configuration.
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ssvm",
		Short: "Cutting-plane structured SVM trainer for grid CRFs",
		Long: "ssvm trains structured SVMs with the 1-slack cutting-plane method, " +
			"starting with fast approximate inference and certifying convergence with exact inference.",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		newTrainCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// newLogger builds a production zap logger on stderr. Verbosity 0 keeps
// warnings and errors, 1 adds Info, 2 and above add Debug.
func newLogger(verbose int) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	switch {
	case verbose >= 2:
		level = zapcore.DebugLevel
	case verbose == 1:
		level = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.Sampling = nil

	return cfg.Build()
}
