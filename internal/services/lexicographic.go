package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"fixture-trip-planner/internal/mip"
	"fixture-trip-planner/internal/platform/obs"
	"fixture-trip-planner/internal/ports"
)

// ObjectiveResult is what one lexicographic stage achieved.
type ObjectiveResult struct {
	Name string
	// Optimum is the stage's own optimum, before later stages relaxed it.
	Optimum float64
	// Value is the objective evaluated on the final assignment.
	Value   float64
	Optimal bool
	Nodes   int
}

type LexicographicResult struct {
	Assignment []float64
	Objectives []ObjectiveResult
	// Optimal is true when every stage proved optimality.
	Optimal bool
}

// Value returns the final value of the named objective.
func (r *LexicographicResult) Value(name string) (float64, bool) {
	for _, o := range r.Objectives {
		if o.Name == name {
			return o.Value, true
		}
	}
	return 0, false
}

// SolveLexicographic optimizes the formulation's objectives in priority
// order. After each stage except the last, the objective is held within
// max(AbsTol, RelTol*|optimum|) of its optimum by an extra constraint on a
// copy of the model. The first stage is warm-started from the greedy path
// when one exists. Engine failures are terminal and never retried.
func SolveLexicographic(
	ctx context.Context,
	engine ports.OptimizationEngine,
	f *Formulation,
) (_ *LexicographicResult, err error) {
	defer obs.Time(ctx, "services.SolveLexicographic")(&err)

	if engine == nil {
		return nil, errors.New("solve lexicographic: engine is nil")
	}
	if f == nil || f.Model == nil {
		return nil, errors.New("solve lexicographic: formulation is nil")
	}

	objectives := slices.Clone(f.Model.Objectives)
	if len(objectives) == 0 {
		return nil, errors.New("solve lexicographic: model has no objectives")
	}
	slices.SortStableFunc(objectives, func(a, b mip.Objective) int { return a.Priority - b.Priority })

	model := f.Model.Clone()
	model.Start = f.warmStart()
	res := &LexicographicResult{Optimal: true}

	for i, obj := range objectives {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: before objective %s: %w", ErrCancelled, obj.Name, err)
		}

		sol, err := engine.Solve(ctx, model, obj)
		if err != nil {
			return nil, classifyEngineError(ctx, f, obj, i, err)
		}
		if sol == nil || len(sol.Values) != model.NumVars() {
			return nil, fmt.Errorf("%w: objective %s: engine returned a malformed assignment", ErrSolver, obj.Name)
		}

		opt := obj.Expr.Eval(sol.Values)
		res.Assignment = sol.Values
		res.Objectives = append(res.Objectives, ObjectiveResult{
			Name:    obj.Name,
			Optimum: opt,
			Optimal: sol.Status == mip.Optimal,
			Nodes:   sol.Nodes,
		})
		res.Optimal = res.Optimal && sol.Status == mip.Optimal

		if i < len(objectives)-1 {
			model.AddConstraint(toleranceBand(obj, opt))
			// The stage's own solution satisfies its band, so the next
			// stage starts with an incumbent.
			model.Start = sol.Values
		}
	}

	for i := range res.Objectives {
		res.Objectives[i].Value = objectives[i].Expr.Eval(res.Assignment)
	}
	return res, nil
}

// toleranceBand keeps a solved objective within its tolerance of opt.
func toleranceBand(obj mip.Objective, opt float64) mip.Constraint {
	band := math.Max(obj.AbsTol, obj.RelTol*math.Abs(opt))
	c := mip.Constraint{Name: "lex[" + obj.Name + "]", Expr: obj.Expr}
	if obj.Sense == mip.Maximize {
		c.Sense = mip.GreaterEq
		c.RHS = opt - band
	} else {
		c.Sense = mip.LessEq
		c.RHS = opt + band
	}
	return c
}

func classifyEngineError(ctx context.Context, f *Formulation, obj mip.Objective, stage int, err error) error {
	switch {
	case errors.Is(err, ports.ErrEngineCancelled) || ctx.Err() != nil:
		return fmt.Errorf("%w: objective %s: %v", ErrCancelled, obj.Name, err)
	case errors.Is(err, ports.ErrEngineInfeasible) && stage == 0:
		return fmt.Errorf("%w: no path covers all %d teams within interval %gh",
			ErrInfeasible, f.Teams, f.Graph.MinIntervalHours)
	case errors.Is(err, ports.ErrEngineInfeasible):
		// A tolerance band around an attained optimum cannot be infeasible.
		return fmt.Errorf("%w: objective %s: infeasible after tolerance band: %v", ErrSolver, obj.Name, err)
	case errors.Is(err, ports.ErrEngineUnbounded):
		return fmt.Errorf("%w: objective %s", ErrUnbounded, obj.Name)
	default:
		return fmt.Errorf("%w: objective %s: %v", ErrSolver, obj.Name, err)
	}
}
