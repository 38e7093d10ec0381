package services

import (
	"context"
	"errors"
	"fmt"

	"fixture-trip-planner/internal/domain"
)

// Planning failures. Every error returned by TripPlanner.Plan wraps exactly
// one of these (or domain.ErrInvalidLeague) inside a *StageError.
var (
	ErrInvalidOptions      = errors.New("invalid planning options")
	ErrMissingTravelTime   = errors.New("missing travel time entry")
	ErrNoReachableSchedule = errors.New("no reachable schedule")
	ErrInfeasible          = errors.New("infeasible")
	ErrUnbounded           = errors.New("unbounded")
	ErrSolver              = errors.New("solver error")
	ErrCancelled           = errors.New("cancelled")
	ErrMalformedSolution   = errors.New("malformed solution")
)

// Stage names the pipeline step a failure came from.
type Stage string

const (
	StageLeague  Stage = "league"
	StageMatrix  Stage = "matrix"
	StageGraph   Stage = "graph"
	StageModel   Stage = "model"
	StageSolve   Stage = "solve"
	StageExtract Stage = "extract"
)

type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// stageErr tags err with its stage and folds context errors into ErrCancelled.
func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCancelled) && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		err = fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return &StageError{Stage: stage, Err: err}
}

// IsInputError reports whether err is caused by the planning inputs (bad
// fixtures or options, incomplete travel data, or an instance with no valid
// trip), as opposed to cancellation or an internal defect.
func IsInputError(err error) bool {
	return errors.Is(err, domain.ErrInvalidLeague) ||
		errors.Is(err, ErrInvalidOptions) ||
		errors.Is(err, ErrMissingTravelTime) ||
		errors.Is(err, ErrNoReachableSchedule) ||
		errors.Is(err, ErrInfeasible)
}
