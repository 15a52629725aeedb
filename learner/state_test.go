package learner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssvm/learner"
)

// TestTransitionTable checks every (state, event) pair.
func TestTransitionTable(t *testing.T) {
	valid := []struct {
		from learner.State
		ev   learner.Event
		to   learner.State
	}{
		{learner.RunningApproximate, learner.EventViolations, learner.RunningApproximate},
		{learner.RunningApproximate, learner.EventClean, learner.RunningExact},
		{learner.RunningApproximate, learner.EventIncomplete, learner.RunningExact},
		{learner.RunningApproximate, learner.EventIterCap, learner.MaxIterReached},
		{learner.RunningExact, learner.EventViolations, learner.RunningExact},
		{learner.RunningExact, learner.EventClean, learner.Converged},
		{learner.RunningExact, learner.EventIncomplete, learner.RunningExact},
		{learner.RunningExact, learner.EventIterCap, learner.MaxIterReached},
	}
	for _, tc := range valid {
		got, err := learner.Next(tc.from, tc.ev)
		require.NoError(t, err, "%s on %s", tc.ev, tc.from)
		require.Equal(t, tc.to, got, "%s on %s", tc.ev, tc.from)
	}

	events := []learner.Event{learner.EventViolations, learner.EventClean, learner.EventIncomplete, learner.EventIterCap}
	for _, s := range []learner.State{learner.Converged, learner.MaxIterReached} {
		require.True(t, s.Terminal())
		for _, ev := range events {
			got, err := learner.Next(s, ev)
			require.ErrorIs(t, err, learner.ErrInvalidTransition)
			require.Equal(t, s, got)
		}
	}
	_, err := learner.Next(learner.RunningExact, learner.Event(42))
	require.ErrorIs(t, err, learner.ErrInvalidTransition)
}

// TestConvergedOnlyFromExact: no event sequence reaches Converged without
// passing through RunningExact, and exact never returns to approximate.
func TestConvergedOnlyFromExact(t *testing.T) {
	events := []learner.Event{learner.EventViolations, learner.EventClean, learner.EventIncomplete}
	var walk func(s learner.State, depth int, seenExact bool)
	walk = func(s learner.State, depth int, seenExact bool) {
		if s == learner.Converged {
			require.True(t, seenExact)
			return
		}
		if depth == 0 || s.Terminal() {
			return
		}
		for _, ev := range events {
			next, err := learner.Next(s, ev)
			require.NoError(t, err)
			if s == learner.RunningExact {
				require.NotEqual(t, learner.RunningApproximate, next)
			}
			if next == learner.Converged {
				require.Equal(t, learner.RunningExact, s)
				require.Equal(t, learner.EventClean, ev)
			}
			walk(next, depth-1, seenExact || next == learner.RunningExact)
		}
	}
	walk(learner.RunningApproximate, 6, false)
}

func TestStateStrings(t *testing.T) {
	require.Equal(t, "running_approximate", learner.RunningApproximate.String())
	require.Equal(t, "converged", learner.Converged.String())
	b, err := learner.MaxIterReached.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "max_iter_reached", string(b))
	require.Equal(t, "State(9)", learner.State(9).String())
	require.Equal(t, "clean", learner.EventClean.String())
}
