package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSupervisor(t *testing.T, h *harness) *Supervisor {
	t.Helper()
	intervals := Intervals{
		Dispatch: time.Hour,
		Planning: time.Hour,
		Cleanup:  time.Hour,
	}
	return NewSupervisor(h.planner, h.dispatcher, h.repo, zap.NewNop(), h.loc, intervals, 30)
}

func TestSupervisorStartStop(t *testing.T) {
	h := newHarness(t)
	s := newTestSupervisor(t, h)

	require.False(t, s.Running())
	require.NoError(t, s.Start())
	require.True(t, s.Running())

	// Starting twice is a no-op, not an error.
	require.NoError(t, s.Start())
	require.True(t, s.Running())

	require.NoError(t, s.Stop())
	require.False(t, s.Running())

	// The supervisor can be restarted after a stop.
	require.NoError(t, s.Start())
	require.True(t, s.Running())
	require.NoError(t, s.Stop())
}

func TestSupervisorStopWithoutStart(t *testing.T) {
	h := newHarness(t)
	s := newTestSupervisor(t, h)
	require.NoError(t, s.Stop())
}

func TestSupervisorManualTriggers(t *testing.T) {
	h := newHarness(t)
	s := newTestSupervisor(t, h)
	ctx := context.Background()

	// The triggers run a full pass synchronously even when no timers run.
	require.NoError(t, s.TriggerScheduling(ctx))
	require.NoError(t, s.TriggerProcessing(ctx))
	require.NoError(t, s.TriggerCleanup(ctx))
}
