package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-trip-planner/internal/adapters/engine"
	"fixture-trip-planner/internal/mip"
	"fixture-trip-planner/internal/ports"
)

func TestSolveLexicographicAddsToleranceBand(t *testing.T) {
	_, f := formulateScenarioA(t)
	before := len(f.Model.Constraints)

	rec := &recordingEngine{inner: engine.NewBranchAndBound(0, 0)}
	res, err := SolveLexicographic(context.Background(), rec, f)
	require.NoError(t, err)

	require.Equal(t, 2, rec.calls)
	assert.Len(t, rec.models[0].Constraints, before)
	require.Len(t, rec.models[1].Constraints, before+1)

	band := rec.models[1].Constraints[before]
	assert.Equal(t, "lex[trip_span]", band.Name)
	assert.Equal(t, mip.LessEq, band.Sense)
	assert.InDelta(t, 48*1.2, band.RHS, 1e-9)

	assert.Len(t, f.Model.Constraints, before, "formulation must not change")

	span, ok := res.Value(SpanObjective)
	require.True(t, ok)
	assert.InDelta(t, 48, span, 1e-9)
	travel, _ := res.Value(TravelObjective)
	assert.InDelta(t, 400.0/60, travel, 1e-9)
	assert.True(t, res.Optimal)
}

func TestSolveLexicographicMapsEngineFailures(t *testing.T) {
	_, f := formulateScenarioA(t)

	tests := []struct {
		name string
		err  error
		want error
		msg  string
	}{
		{name: "infeasible", err: ports.ErrEngineInfeasible, want: ErrInfeasible, msg: "no path covers all 3 teams within interval 12h"},
		{name: "unbounded", err: ports.ErrEngineUnbounded, want: ErrUnbounded},
		{name: "cancelled", err: ports.ErrEngineCancelled, want: ErrCancelled},
		{name: "other", err: errors.New("license expired"), want: ErrSolver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SolveLexicographic(context.Background(), stubEngine{err: tt.err}, f)
			require.ErrorIs(t, err, tt.want)
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestSolveLexicographicRejectsShortAssignment(t *testing.T) {
	_, f := formulateScenarioA(t)

	_, err := SolveLexicographic(context.Background(), stubEngine{sol: &mip.Solution{Values: []float64{1}}}, f)
	assert.ErrorIs(t, err, ErrSolver)
}

func TestSolveLexicographicCancelledContext(t *testing.T) {
	_, f := formulateScenarioA(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recordingEngine{inner: engine.NewBranchAndBound(0, 0)}
	_, err := SolveLexicographic(ctx, rec, f)

	assert.ErrorIs(t, err, ErrCancelled)
	assert.NotErrorIs(t, err, ErrInfeasible)
	assert.Zero(t, rec.calls)
}

func TestToleranceBand(t *testing.T) {
	minimize := mip.Objective{Name: "min", RelTol: 0.1, AbsTol: 2}
	c := toleranceBand(minimize, 10)
	assert.Equal(t, mip.LessEq, c.Sense)
	assert.InDelta(t, 12, c.RHS, 1e-9)

	maximize := mip.Objective{Name: "max", Sense: mip.Maximize, RelTol: 0.1}
	c = toleranceBand(maximize, 10)
	assert.Equal(t, mip.GreaterEq, c.Sense)
	assert.InDelta(t, 9, c.RHS, 1e-9)
}
