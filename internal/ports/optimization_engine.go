package ports

import (
	"context"
	"errors"

	"fixture-trip-planner/internal/mip"
)

// Typed engine failures. Adapters wrap one of these so callers can classify
// an error with errors.Is without knowing the engine.
var (
	ErrEngineInfeasible = errors.New("engine: model is infeasible")
	ErrEngineUnbounded  = errors.New("engine: model is unbounded")
	ErrEngineFailure    = errors.New("engine: solver failure")
	ErrEngineCancelled  = errors.New("engine: solve cancelled")
)

// OptimizationEngine solves a binary linear model for a single objective.
// Implementations must honour ctx and must not mutate the model.
type OptimizationEngine interface {
	Solve(ctx context.Context, model *mip.Model, objective mip.Objective) (*mip.Solution, error)
}
