// Package mip holds the value types exchanged with an optimization engine:
// binary decision variables, linear constraints over them, and prioritized
// objectives. It contains no solving logic.
package mip

import (
	"errors"
	"fmt"
	"math"
)

// Var indexes a binary decision variable within its Model.
type Var int

// Term is a coefficient applied to one variable.
type Term struct {
	Var  Var
	Coef float64
}

// Expr is a linear expression: sum(Coef*Var) + Constant.
type Expr struct {
	Terms    []Term
	Constant float64
}

// Add appends coef*v to the expression.
func (e *Expr) Add(v Var, coef float64) {
	e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
}

// Eval computes the expression for the given variable values.
func (e Expr) Eval(values []float64) float64 {
	sum := e.Constant
	for _, t := range e.Terms {
		sum += t.Coef * values[t.Var]
	}
	return sum
}

type Sense int

const (
	LessEq Sense = iota
	Equal
	GreaterEq
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case Equal:
		return "=="
	case GreaterEq:
		return ">="
	}
	return fmt.Sprintf("Sense(%d)", int(s))
}

// Constraint is Expr <sense> RHS. The expression constant is moved to the
// right-hand side by engines.
type Constraint struct {
	Name  string
	Expr  Expr
	Sense Sense
	RHS   float64
}

type ObjectiveSense int

const (
	Minimize ObjectiveSense = iota
	Maximize
)

// Objective is one named goal of a lexicographic model. Lower Priority values
// are optimized first; RelTol and AbsTol define how far later stages may
// relax this objective's optimum.
type Objective struct {
	Name     string
	Expr     Expr
	Sense    ObjectiveSense
	Priority int
	RelTol   float64
	AbsTol   float64
}

// Model is a binary linear program: variables, constraints and the declared
// objectives.
type Model struct {
	Name        string
	varNames    []string
	Constraints []Constraint
	Objectives  []Objective

	// Start is an optional initial assignment. Engines may use it as the
	// first incumbent when it satisfies every constraint, and ignore it
	// otherwise.
	Start []float64
}

func NewModel(name string) *Model {
	return &Model{Name: name}
}

// AddBinary declares a new binary variable and returns its handle.
func (m *Model) AddBinary(name string) Var {
	m.varNames = append(m.varNames, name)
	return Var(len(m.varNames) - 1)
}

func (m *Model) AddConstraint(c Constraint) {
	m.Constraints = append(m.Constraints, c)
}

func (m *Model) AddObjective(o Objective) {
	m.Objectives = append(m.Objectives, o)
}

func (m *Model) NumVars() int { return len(m.varNames) }

func (m *Model) VarName(v Var) string {
	if int(v) < 0 || int(v) >= len(m.varNames) {
		return fmt.Sprintf("x%d", int(v))
	}
	return m.varNames[v]
}

// Clone returns a model that can take extra constraints without affecting m.
// Expressions are shared; they are never mutated after construction.
func (m *Model) Clone() *Model {
	return &Model{
		Name:        m.Name,
		varNames:    m.varNames,
		Constraints: append([]Constraint(nil), m.Constraints...),
		Objectives:  append([]Objective(nil), m.Objectives...),
		Start:       m.Start,
	}
}

var ErrInvalidModel = errors.New("invalid model")

// Validate checks variable references and coefficient finiteness.
func (m *Model) Validate() error {
	check := func(where string, e Expr) error {
		if math.IsNaN(e.Constant) || math.IsInf(e.Constant, 0) {
			return fmt.Errorf("%w: %s: non-finite constant", ErrInvalidModel, where)
		}
		for _, t := range e.Terms {
			if int(t.Var) < 0 || int(t.Var) >= len(m.varNames) {
				return fmt.Errorf("%w: %s: unknown variable %d", ErrInvalidModel, where, t.Var)
			}
			if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
				return fmt.Errorf("%w: %s: non-finite coefficient on %s", ErrInvalidModel, where, m.VarName(t.Var))
			}
		}
		return nil
	}

	for _, c := range m.Constraints {
		if err := check("constraint "+c.Name, c.Expr); err != nil {
			return err
		}
		if math.IsNaN(c.RHS) || math.IsInf(c.RHS, 0) {
			return fmt.Errorf("%w: constraint %s: non-finite rhs", ErrInvalidModel, c.Name)
		}
	}
	for _, o := range m.Objectives {
		if err := check("objective "+o.Name, o.Expr); err != nil {
			return err
		}
		if o.RelTol < 0 || o.AbsTol < 0 {
			return fmt.Errorf("%w: objective %s: negative tolerance", ErrInvalidModel, o.Name)
		}
	}
	return nil
}

// Violated returns the first constraint the values break by more than tol,
// or nil when every constraint holds.
func (m *Model) Violated(values []float64, tol float64) *Constraint {
	for i := range m.Constraints {
		c := &m.Constraints[i]
		lhs := c.Expr.Eval(values)
		switch c.Sense {
		case LessEq:
			if lhs > c.RHS+tol {
				return c
			}
		case GreaterEq:
			if lhs < c.RHS-tol {
				return c
			}
		case Equal:
			if math.Abs(lhs-c.RHS) > tol {
				return c
			}
		}
	}
	return nil
}
