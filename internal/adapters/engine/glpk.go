//go:build glpk

package engine

import (
	"context"
	"fmt"

	"github.com/lukpank/go-glpk/glpk"

	"fixture-trip-planner/internal/mip"
	"fixture-trip-planner/internal/platform/obs"
	"fixture-trip-planner/internal/ports"
)

const glpkAvailable = true

// GLPK solves binary programs with the GLPK branch and cut solver through
// cgo. Model.Start is not passed on.
type GLPK struct {
	// Tol is used for rows left without variables and for the final check.
	Tol float64
}

func newGLPK() ports.OptimizationEngine {
	return &GLPK{Tol: defaultTol}
}

type glpkResult struct {
	sol *mip.Solution
	err error
}

// Solve runs glp_intopt with presolve. GLPK cannot be interrupted: when ctx
// ends first Solve returns at once and the solver finishes in the background.
func (g *GLPK) Solve(ctx context.Context, model *mip.Model, objective mip.Objective) (_ *mip.Solution, err error) {
	defer obs.Time(ctx, "engine.GLPK.Solve")(&err)

	if err := checkInput(ctx, model, objective); err != nil {
		return nil, err
	}
	rows, err := linearRows(model, g.Tol)
	if err != nil {
		return nil, err
	}

	done := make(chan glpkResult, 1)
	go func() {
		sol, err := g.solve(model, rows, objective)
		done <- glpkResult{sol: sol, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ports.ErrEngineCancelled, ctx.Err())
	case r := <-done:
		return r.sol, r.err
	}
}

func (g *GLPK) solve(model *mip.Model, rows []linearRow, objective mip.Objective) (*mip.Solution, error) {
	lp := glpk.New()
	defer lp.Delete()
	lp.SetProbName(model.Name)
	lp.SetObjName(objective.Name)
	if objective.Sense == mip.Maximize {
		lp.SetObjDir(glpk.ObjDir(glpk.MAX))
	} else {
		lp.SetObjDir(glpk.ObjDir(glpk.MIN))
	}

	n := model.NumVars()
	if n > 0 {
		lp.AddCols(n)
	}
	for j := 1; j <= n; j++ {
		lp.SetColName(j, model.VarName(mip.Var(j-1)))
		lp.SetColKind(j, glpk.VarType(glpk.BV))
	}
	cost := make([]float64, n)
	for _, t := range objective.Expr.Terms {
		cost[t.Var] += t.Coef
	}
	for j, c := range cost {
		lp.SetObjCoef(j+1, c)
	}
	lp.SetObjCoef(0, objective.Expr.Constant)

	if len(rows) > 0 {
		lp.AddRows(len(rows))
	}
	for i, r := range rows {
		lp.SetRowName(i+1, r.name)
		switch r.kind {
		case boundUpper:
			lp.SetRowBnds(i+1, glpk.BndsType(glpk.UP), 0, r.hi)
		case boundLower:
			lp.SetRowBnds(i+1, glpk.BndsType(glpk.LO), r.lo, 0)
		case boundFixed:
			lp.SetRowBnds(i+1, glpk.BndsType(glpk.FX), r.lo, r.hi)
		}
		lp.SetMatRow(i+1, r.ind, r.val)
	}

	iocp := glpk.NewIocp()
	iocp.SetPresolve(true)
	iocp.SetMsgLev(glpk.MsgLev(glpk.MSG_ERR))

	if err := lp.Intopt(iocp); err != nil {
		if lp.MipStatus() == glpk.NOFEAS {
			return nil, fmt.Errorf("%w: %v", ports.ErrEngineInfeasible, err)
		}
		return nil, fmt.Errorf("%w: intopt: %v", ports.ErrEngineFailure, err)
	}

	status := mip.Optimal
	switch st := lp.MipStatus(); st {
	case glpk.OPT:
	case glpk.FEAS:
		status = mip.Feasible
	case glpk.NOFEAS:
		return nil, fmt.Errorf("%w: glpk found no integer solution", ports.ErrEngineInfeasible)
	default:
		return nil, fmt.Errorf("%w: glpk status %v", ports.ErrEngineFailure, st)
	}

	values := make([]float64, n)
	for j := range values {
		if lp.MipColVal(j+1) > 0.5 {
			values[j] = 1
		}
	}
	if c := model.Violated(values, 10*g.Tol); c != nil {
		return nil, fmt.Errorf("%w: glpk solution violates %s", ports.ErrEngineFailure, c.Name)
	}

	return &mip.Solution{
		Values:    values,
		Objective: objective.Expr.Eval(values),
		Status:    status,
	}, nil
}
