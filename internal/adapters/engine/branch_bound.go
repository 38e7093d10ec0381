// Package engine provides the optimization engines for the binary programs
// produced by the trip planner: GLPK through cgo when built with the glpk
// tag, and a pure-Go branch and bound that is always available.
//
// BranchAndBound runs a depth-first search over 0/1 assignments:
//   - Every linear row keeps its minimum and maximum attainable activity.
//     Assigning a variable updates both; a row whose range no longer meets
//     its bounds is a conflict, and a row that can only be satisfied by one
//     value of a free variable forces that value (bound propagation).
//   - Branching follows the undecided equality row with the fewest free
//     variables, trying the cheapest variable that moves the row towards
//     feasibility first. On path models this walks the path greedily and
//     finds a good incumbent early.
//   - The lower bound is the fixed cost plus every free negative cost, plus
//     the cheapest positive cost of each open "exactly one" row that shares
//     no free variable with a row already counted. Nodes whose bound cannot
//     beat the incumbent are pruned.
//   - A feasible Model.Start becomes the first incumbent.
//   - The context is polled on the first node and every 4096 nodes after.
//     An optional node limit or time budget stops the search and returns
//     the incumbent as a feasible (not optimal) solution. Cancellation by
//     the caller always wins over a found incumbent.
//
// It is exponential in the worst case and meant for small leagues, tests,
// and environments without an industrial MIP solver.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"fixture-trip-planner/internal/mip"
	"fixture-trip-planner/internal/platform/obs"
	"fixture-trip-planner/internal/ports"
)

const defaultTol = 1e-6

var (
	errNodeLimit  = errors.New("node limit reached")
	errTimeBudget = errors.New("time budget spent")
)

type BranchAndBound struct {
	// NodeLimit stops the search after this many nodes. Zero means no limit.
	NodeLimit int
	// TimeBudget stops one Solve call after this long. Zero means no budget.
	TimeBudget time.Duration
	// Tol is the feasibility tolerance applied to every row.
	Tol float64
}

func NewBranchAndBound(nodeLimit int, budget time.Duration) *BranchAndBound {
	return &BranchAndBound{NodeLimit: nodeLimit, TimeBudget: budget, Tol: defaultTol}
}

// Solve finds an assignment optimizing objective subject to every model
// constraint. The model is not modified.
func (b *BranchAndBound) Solve(ctx context.Context, model *mip.Model, objective mip.Objective) (_ *mip.Solution, err error) {
	defer obs.Time(ctx, "engine.BranchAndBound.Solve")(&err)

	if err := checkInput(ctx, model, objective); err != nil {
		return nil, err
	}

	tol := b.Tol
	if tol <= 0 {
		tol = defaultTol
	}

	s, ok := compile(model, objective, tol)
	if !ok {
		return nil, fmt.Errorf("%w: constraint without variables cannot hold", ports.ErrEngineInfeasible)
	}
	s.ctx = ctx
	if b.TimeBudget > 0 {
		s.deadline = time.Now().Add(b.TimeBudget)
	}
	s.nodeLimit = b.NodeLimit
	s.seed(model, tol)

	s.dfs()

	status := mip.Optimal
	switch {
	case s.stop == nil:
	case errors.Is(s.stop, errNodeLimit), errors.Is(s.stop, errTimeBudget):
		if !s.found {
			return nil, fmt.Errorf("%w: %v after %d nodes without a feasible solution", ports.ErrEngineFailure, s.stop, s.nodes)
		}
		status = mip.Feasible
	default:
		return nil, fmt.Errorf("%w: after %d nodes: %w", ports.ErrEngineCancelled, s.nodes, s.stop)
	}
	if !s.found {
		return nil, fmt.Errorf("%w: search exhausted after %d nodes", ports.ErrEngineInfeasible, s.nodes)
	}

	values := make([]float64, len(s.best))
	for j, x := range s.best {
		values[j] = float64(x)
	}
	if c := model.Violated(values, 10*tol); c != nil {
		return nil, fmt.Errorf("%w: incumbent violates %s", ports.ErrEngineFailure, c.Name)
	}

	return &mip.Solution{
		Values:    values,
		Objective: objective.Expr.Eval(values),
		Status:    status,
		Nodes:     s.nodes,
	}, nil
}

type rowRef struct {
	row  int
	coef float64
}

type row struct {
	idx    []int
	coef   []float64
	lo, hi float64
	minAct float64
	maxAct float64
	free   int
	eq     bool
}

// searcher is the mutable state of one Solve call.
type searcher struct {
	rows    []row
	varRows [][]rowRef

	// Objective in minimization form.
	cost      []float64
	costConst float64
	fixedCost float64
	freeNeg   float64

	val   []int8 // -1 free, else 0 or 1
	trail []int

	queue   []int
	inQueue []bool

	// oneRows are equality rows of the form sum(x) = 1.
	oneRows []int
	mark    []int
	stamp   int

	best     []int8
	bestCost float64
	found    bool

	tol       float64
	nodes     int
	nodeLimit int
	ctx       context.Context
	deadline  time.Time
	stop      error
}


// compile flattens the model into activity rows. It reports false when a
// constraint without variables is violated.
func compile(model *mip.Model, objective mip.Objective, tol float64) (*searcher, bool) {
	n := model.NumVars()
	s := &searcher{
		varRows: make([][]rowRef, n),
		cost:    make([]float64, n),
		val:     make([]int8, n),
		mark:    make([]int, n),
		tol:     tol,
	}
	for j := range s.val {
		s.val[j] = -1
	}

	sign := 1.0
	if objective.Sense == mip.Maximize {
		sign = -1
	}
	s.costConst = sign * objective.Expr.Constant
	for _, t := range objective.Expr.Terms {
		s.cost[t.Var] += sign * t.Coef
	}
	for _, c := range s.cost {
		s.freeNeg += math.Min(0, c)
	}

	for _, c := range model.Constraints {
		merged := make(map[int]float64, len(c.Expr.Terms))
		order := make([]int, 0, len(c.Expr.Terms))
		for _, t := range c.Expr.Terms {
			if _, seen := merged[int(t.Var)]; !seen {
				order = append(order, int(t.Var))
			}
			merged[int(t.Var)] += t.Coef
		}

		rhs := c.RHS - c.Expr.Constant
		r := row{lo: math.Inf(-1), hi: math.Inf(1)}
		switch c.Sense {
		case mip.LessEq:
			r.hi = rhs
		case mip.GreaterEq:
			r.lo = rhs
		case mip.Equal:
			r.lo, r.hi, r.eq = rhs, rhs, true
		}

		for _, j := range order {
			a := merged[j]
			if a == 0 {
				continue
			}
			r.idx = append(r.idx, j)
			r.coef = append(r.coef, a)
			r.minAct += math.Min(0, a)
			r.maxAct += math.Max(0, a)
		}
		r.free = len(r.idx)

		if r.free == 0 {
			if 0 < r.lo-tol || 0 > r.hi+tol {
				return nil, false
			}
			continue
		}

		ri := len(s.rows)
		s.rows = append(s.rows, r)
		if r.eq && r.lo == 1 && allOnes(r.coef) {
			s.oneRows = append(s.oneRows, ri)
		}
		for k, j := range r.idx {
			s.varRows[j] = append(s.varRows[j], rowRef{row: ri, coef: r.coef[k]})
		}
	}

	s.inQueue = make([]bool, len(s.rows))
	for ri := range s.rows {
		s.enqueue(ri)
	}
	return s, true
}

func allOnes(coefs []float64) bool {
	for _, a := range coefs {
		if a != 1 {
			return false
		}
	}
	return true
}

func (s *searcher) enqueue(ri int) {
	if !s.inQueue[ri] {
		s.inQueue[ri] = true
		s.queue = append(s.queue, ri)
	}
}

func (s *searcher) assign(j int, x int8) {
	s.val[j] = x
	s.trail = append(s.trail, j)

	c := s.cost[j]
	s.freeNeg -= math.Min(0, c)
	if x == 1 {
		s.fixedCost += c
	}

	for _, ref := range s.varRows[j] {
		r := &s.rows[ref.row]
		a := ref.coef
		if x == 1 {
			r.minAct += a - math.Min(0, a)
			r.maxAct += a - math.Max(0, a)
		} else {
			r.minAct -= math.Min(0, a)
			r.maxAct -= math.Max(0, a)
		}
		r.free--
		s.enqueue(ref.row)
	}
}

// undo reverts every assignment made after the trail reached mark.
func (s *searcher) undo(mark int) {
	for len(s.trail) > mark {
		j := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]
		x := s.val[j]
		s.val[j] = -1

		c := s.cost[j]
		s.freeNeg += math.Min(0, c)
		if x == 1 {
			s.fixedCost -= c
		}

		for _, ref := range s.varRows[j] {
			r := &s.rows[ref.row]
			a := ref.coef
			if x == 1 {
				r.minAct -= a - math.Min(0, a)
				r.maxAct -= a - math.Max(0, a)
			} else {
				r.minAct += math.Min(0, a)
				r.maxAct += math.Max(0, a)
			}
			r.free++
		}
	}
}

func (s *searcher) clearQueue() {
	for _, ri := range s.queue {
		s.inQueue[ri] = false
	}
	s.queue = s.queue[:0]
}

// propagate applies bound propagation until a fixpoint. It reports false on
// conflict.
func (s *searcher) propagate() bool {
	for len(s.queue) > 0 {
		ri := s.queue[len(s.queue)-1]
		s.queue = s.queue[:len(s.queue)-1]
		s.inQueue[ri] = false

		r := &s.rows[ri]
		if r.minAct > r.hi+s.tol || r.maxAct < r.lo-s.tol {
			s.clearQueue()
			return false
		}
		if r.free == 0 {
			continue
		}

		for k, j := range r.idx {
			if s.val[j] != -1 {
				continue
			}
			a := r.coef[k]
			if a > 0 {
				if r.minAct+a > r.hi+s.tol {
					s.assign(j, 0)
				} else if r.maxAct-a < r.lo-s.tol {
					s.assign(j, 1)
				}
			} else {
				if r.maxAct+a < r.lo-s.tol {
					s.assign(j, 0)
				} else if r.minAct-a > r.hi+s.tol {
					s.assign(j, 1)
				}
			}
		}
	}
	return true
}

// base is the cost of the current assignment with every free variable at
// its cheaper value.
func (s *searcher) base() float64 {
	return s.costConst + s.fixedCost + s.freeNeg
}

func (s *searcher) bound() float64 {
	lb := s.base()
	s.stamp++
	for _, ri := range s.oneRows {
		r := &s.rows[ri]
		if r.free == 0 || r.minAct > s.tol {
			continue
		}
		cheapest, shared := math.Inf(1), false
		for _, j := range r.idx {
			if s.val[j] != -1 {
				continue
			}
			if s.mark[j] == s.stamp {
				shared = true
				break
			}
			cheapest = math.Min(cheapest, math.Max(0, s.cost[j]))
		}
		if shared || math.IsInf(cheapest, 1) {
			continue
		}
		for _, j := range r.idx {
			if s.val[j] == -1 {
				s.mark[j] = s.stamp
			}
		}
		lb += cheapest
	}
	return lb
}

// pickRow returns the undecided row to branch on, or -1 when every
// completion of the current assignment satisfies all rows.
func (s *searcher) pickRow() int {
	best, bestFree, bestEq := -1, 0, false
	for ri := range s.rows {
		r := &s.rows[ri]
		if r.free == 0 || (r.minAct >= r.lo-s.tol && r.maxAct <= r.hi+s.tol) {
			continue
		}
		switch {
		case best < 0,
			r.eq && !bestEq,
			r.eq == bestEq && r.free < bestFree:
			best, bestFree, bestEq = ri, r.free, r.eq
		}
	}
	return best
}

// pickVar chooses the branching variable of row ri and the value to try
// first. With every free variable at 0 the row is either short of its lower
// bound, over its upper bound, or within both; the cheapest variable whose
// value 1 moves the row the right way is tried at 1 first. Otherwise the
// cheapest free variable is tried at its cost-preferred value first.
func (s *searcher) pickVar(ri int) (int, int8) {
	r := &s.rows[ri]

	act0 := r.minAct
	for k, j := range r.idx {
		if s.val[j] == -1 {
			act0 -= math.Min(0, r.coef[k])
		}
	}
	increase := act0 < r.lo-s.tol
	decrease := act0 > r.hi+s.tol

	pick, pickHelps := -1, false
	for k, j := range r.idx {
		if s.val[j] != -1 {
			continue
		}
		helps := (increase && r.coef[k] > 0) || (decrease && r.coef[k] < 0)
		switch {
		case pick < 0,
			helps && !pickHelps,
			helps == pickHelps && s.cost[j] < s.cost[pick]:
			pick, pickHelps = j, helps
		}
	}
	if pickHelps || s.cost[pick] < 0 {
		return pick, 1
	}
	return pick, 0
}

// seed installs model.Start as the first incumbent when it is a feasible
// 0/1 assignment.
func (s *searcher) seed(model *mip.Model, tol float64) {
	start := model.Start
	if len(start) != len(s.val) {
		return
	}
	best := make([]int8, len(start))
	cost := s.costConst
	for j, x := range start {
		switch {
		case math.Abs(x) <= tol:
		case math.Abs(x-1) <= tol:
			best[j] = 1
			cost += s.cost[j]
		default:
			return
		}
	}
	if model.Violated(start, tol) != nil {
		return
	}
	s.best, s.bestCost, s.found = best, cost, true
}

// complete records the cheapest completion of a decided assignment.
func (s *searcher) complete() {
	cost := s.base()
	if s.found && cost >= s.bestCost-s.tol {
		return
	}
	if s.best == nil {
		s.best = make([]int8, len(s.val))
	}
	for j, x := range s.val {
		switch {
		case x >= 0:
			s.best[j] = x
		case s.cost[j] < 0:
			s.best[j] = 1
		default:
			s.best[j] = 0
		}
	}
	s.bestCost = cost
	s.found = true
}

func (s *searcher) dfs() {
	s.nodes++
	if s.nodes&4095 == 1 {
		if err := expired(s.ctx); err != nil {
			s.stop = err
			return
		}
		if !s.deadline.IsZero() && !time.Now().Before(s.deadline) {
			s.stop = errTimeBudget
			return
		}
	}
	if s.nodeLimit > 0 && s.nodes > s.nodeLimit {
		s.stop = errNodeLimit
		return
	}

	mark := len(s.trail)
	defer s.undo(mark)

	if !s.propagate() {
		return
	}
	if s.found && s.bound() >= s.bestCost-s.tol {
		return
	}

	ri := s.pickRow()
	if ri < 0 {
		s.complete()
		return
	}

	j, first := s.pickVar(ri)
	for _, x := range [2]int8{first, 1 - first} {
		branch := len(s.trail)
		s.assign(j, x)
		s.dfs()
		s.undo(branch)
		s.clearQueue()
		if s.stop != nil {
			return
		}
	}
}
