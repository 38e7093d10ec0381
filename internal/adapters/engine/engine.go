package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"fixture-trip-planner/internal/mip"
	"fixture-trip-planner/internal/ports"
)

// GLPKAvailable reports whether this binary was built with the glpk tag.
const GLPKAvailable = glpkAvailable

// New returns the engine named by kind: "glpk", "bnb", or "auto" for GLPK
// when it is compiled in and branch and bound otherwise. nodeLimit and
// budget only apply to branch and bound.
func New(kind string, nodeLimit int, budget time.Duration) (ports.OptimizationEngine, error) {
	switch kind {
	case "auto", "":
		if GLPKAvailable {
			return newGLPK(), nil
		}
		return NewBranchAndBound(nodeLimit, budget), nil
	case "glpk":
		if !GLPKAvailable {
			return nil, fmt.Errorf("engine: glpk requested but the binary was built without -tags glpk")
		}
		return newGLPK(), nil
	case "bnb":
		return NewBranchAndBound(nodeLimit, budget), nil
	}
	return nil, fmt.Errorf("engine: unknown engine %q", kind)
}

func checkInput(ctx context.Context, model *mip.Model, objective mip.Objective) error {
	if model == nil {
		return fmt.Errorf("%w: model is nil", ports.ErrEngineFailure)
	}
	if err := model.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrEngineFailure, err)
	}
	for _, t := range objective.Expr.Terms {
		if int(t.Var) < 0 || int(t.Var) >= model.NumVars() {
			return fmt.Errorf("%w: objective %s references unknown variable %d", ports.ErrEngineFailure, objective.Name, t.Var)
		}
	}
	if err := expired(ctx); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrEngineCancelled, err)
	}
	return nil
}

// expired is ctx.Err, but also reports a passed deadline whose timer has not
// fired yet.
func expired(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dl, ok := ctx.Deadline(); ok && !time.Now().Before(dl) {
		return context.DeadlineExceeded
	}
	return nil
}

type boundKind int

const (
	boundUpper boundKind = iota
	boundLower
	boundFixed
)

// linearRow is a constraint in the 1-based layout GLPK expects: ind[0] and
// val[0] are placeholders, and each variable appears once.
type linearRow struct {
	name   string
	kind   boundKind
	lo, hi float64
	ind    []int32
	val    []float64
}

// linearRows flattens the model constraints into rows with merged
// coefficients and the expression constant moved to the bounds. Rows left
// without variables are dropped when they hold and reported when they do not.
func linearRows(model *mip.Model, tol float64) ([]linearRow, error) {
	rows := make([]linearRow, 0, len(model.Constraints))
	for _, c := range model.Constraints {
		merged := make(map[mip.Var]float64, len(c.Expr.Terms))
		order := make([]mip.Var, 0, len(c.Expr.Terms))
		for _, t := range c.Expr.Terms {
			if _, seen := merged[t.Var]; !seen {
				order = append(order, t.Var)
			}
			merged[t.Var] += t.Coef
		}

		rhs := c.RHS - c.Expr.Constant
		r := linearRow{name: c.Name, ind: []int32{0}, val: []float64{0}}
		switch c.Sense {
		case mip.LessEq:
			r.kind, r.hi = boundUpper, rhs
		case mip.GreaterEq:
			r.kind, r.lo = boundLower, rhs
		case mip.Equal:
			r.kind, r.lo, r.hi = boundFixed, rhs, rhs
		}

		for _, v := range order {
			if a := merged[v]; a != 0 {
				r.ind = append(r.ind, int32(v)+1)
				r.val = append(r.val, a)
			}
		}

		if len(r.ind) == 1 {
			holds := (r.kind == boundUpper && 0 <= rhs+tol) ||
				(r.kind == boundLower && 0 >= rhs-tol) ||
				(r.kind == boundFixed && math.Abs(rhs) <= tol)
			if !holds {
				return nil, fmt.Errorf("%w: constraint %s has no variables and cannot hold", ports.ErrEngineInfeasible, c.Name)
			}
			continue
		}
		rows = append(rows, r)
	}
	return rows, nil
}
