package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-trip-planner/internal/mip"
	"fixture-trip-planner/internal/ports"
)

func TestNewSelectsEngine(t *testing.T) {
	e, err := New("bnb", 10, time.Second)
	require.NoError(t, err)
	bb, ok := e.(*BranchAndBound)
	require.True(t, ok)
	assert.Equal(t, 10, bb.NodeLimit)
	assert.Equal(t, time.Second, bb.TimeBudget)

	e, err = New("auto", 0, 0)
	require.NoError(t, err)
	_, isBB := e.(*BranchAndBound)
	assert.Equal(t, !GLPKAvailable, isBB)

	_, err = New("glpk", 0, 0)
	assert.Equal(t, GLPKAvailable, err == nil)

	_, err = New("cplex", 0, 0)
	assert.Error(t, err)
}

func TestLinearRows(t *testing.T) {
	m := mip.NewModel("rows")
	x := m.AddBinary("x")
	y := m.AddBinary("y")

	var eq mip.Expr
	eq.Add(x, 1)
	eq.Add(y, 1)
	eq.Add(x, 2)
	m.AddConstraint(mip.Constraint{Name: "eq", Expr: eq, Sense: mip.Equal, RHS: 3})

	le := mip.Expr{Constant: 1}
	le.Add(y, 4)
	m.AddConstraint(mip.Constraint{Name: "le", Expr: le, Sense: mip.LessEq, RHS: 5})

	var ge mip.Expr
	ge.Add(x, 1)
	ge.Add(x, -1)
	m.AddConstraint(mip.Constraint{Name: "empty", Expr: ge, Sense: mip.GreaterEq, RHS: 0})

	rows, err := linearRows(m, 1e-9)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, boundFixed, rows[0].kind)
	assert.Equal(t, []int32{0, 1, 2}, rows[0].ind)
	assert.Equal(t, []float64{0, 3, 1}, rows[0].val)
	assert.Equal(t, 3.0, rows[0].lo)
	assert.Equal(t, 3.0, rows[0].hi)

	assert.Equal(t, boundUpper, rows[1].kind)
	assert.Equal(t, []int32{0, 2}, rows[1].ind)
	assert.Equal(t, 4.0, rows[1].hi)
}

func TestLinearRowsRejectsViolatedEmptyRow(t *testing.T) {
	m := mip.NewModel("rows")
	m.AddBinary("x")
	m.AddConstraint(mip.Constraint{Name: "never", Expr: mip.Expr{Constant: 2}, Sense: mip.LessEq, RHS: 1})

	_, err := linearRows(m, 1e-9)
	assert.ErrorIs(t, err, ports.ErrEngineInfeasible)
}

func TestCheckInputReportsPassedDeadline(t *testing.T) {
	m := mip.NewModel("m")
	m.AddBinary("x")

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Millisecond))
	defer cancel()

	err := checkInput(ctx, m, mip.Objective{Name: "o"})
	assert.ErrorIs(t, err, ports.ErrEngineCancelled)
}
