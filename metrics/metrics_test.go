package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssvm/metrics"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	r := metrics.NewRecorder(reg)

	r.Pass()
	r.Pass()
	r.Constraints("added", 3)
	r.Constraints("pruned", 0)
	r.OracleFailure("approximate")
	r.ModeSwitch()
	r.OracleLatency("exact", 2*time.Millisecond)
	r.SolveLatency(time.Millisecond)
	r.Objective(1.5, 1.25, 0.5)
	r.CacheSize(7)
	r.TrainingLoss(0)

	expected := `
# HELP ssvm_learner_passes_total Completed passes over the training set
# TYPE ssvm_learner_passes_total counter
ssvm_learner_passes_total 2
# HELP ssvm_learner_constraints_total Working-set constraint events
# TYPE ssvm_learner_constraints_total counter
ssvm_learner_constraints_total{event="added"} 3
# HELP ssvm_learner_mode_switches_total Switches from approximate to exact inference
# TYPE ssvm_learner_mode_switches_total counter
ssvm_learner_mode_switches_total 1
# HELP ssvm_learner_exact_mode 1 while the learner runs exact inference, 0 otherwise
# TYPE ssvm_learner_exact_mode gauge
ssvm_learner_exact_mode 1
# HELP ssvm_learner_objective Latest objective values
# TYPE ssvm_learner_objective gauge
ssvm_learner_objective{kind="dual"} 1.25
ssvm_learner_objective{kind="gap"} 0.25
ssvm_learner_objective{kind="primal"} 1.5
ssvm_learner_objective{kind="slack"} 0.5
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"ssvm_learner_passes_total",
		"ssvm_learner_constraints_total",
		"ssvm_learner_mode_switches_total",
		"ssvm_learner_exact_mode",
		"ssvm_learner_objective",
	))
	n, err := testutil.GatherAndCount(reg, "ssvm_learner_oracle_failures_total", "ssvm_learner_working_set_size")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestNilRecorder(t *testing.T) {
	var r *metrics.Recorder
	require.NotPanics(t, func() {
		r.Pass()
		r.Constraints("added", 1)
		r.OracleFailure("exact")
		r.ModeSwitch()
		r.Mode(true)
		r.OracleLatency("exact", time.Second)
		r.SolveLatency(time.Second)
		r.Objective(1, 1, 0)
		r.CacheSize(1)
		r.TrainingLoss(1)
	})
}
