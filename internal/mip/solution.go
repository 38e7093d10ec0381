package mip

type Status int

const (
	// Optimal means the engine proved no better assignment exists.
	Optimal Status = iota
	// Feasible means the engine stopped early with a valid assignment.
	Feasible
)

func (s Status) String() string {
	if s == Optimal {
		return "optimal"
	}
	return "feasible"
}

// Solution is an engine's answer for one objective.
type Solution struct {
	Values    []float64
	Objective float64
	Status    Status
	Nodes     int
}

func (s *Solution) Value(v Var) float64 { return s.Values[v] }
