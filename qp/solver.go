package qp

import (
	"time"

	"gonum.org/v1/gonum/mat"
)

// FeasibilityTolerance is the slack allowed when checking a candidate solution against
// inequality rows (§4.6).
const FeasibilityTolerance = 1e-6

// Solver is the narrow external-collaborator interface the core plans against (§9 design note):
// a dense Hessian, linear constraints, and a deadline in, a status and solution vector out. This
// lets the core be tested against an in-process solver without depending on any particular
// production QP library.
type Solver interface {
	Solve(problem Assembled, deadline time.Duration) (Solution, Status, error)
}

// Solution is a flattened decision vector in the [segment][control point][axis] ordering used by
// Problem.varIndex.
type Solution struct {
	X []float64
}

// DefaultSolver is an in-process solver adapter: a closed-form KKT solve of the equality
// constraints, checked against the inequality set, escalating to an SLSQP local solve (via nlopt)
// when the closed-form point is infeasible, with one Hessian-regularization retry when the KKT
// system itself is singular (§4.6). It requires no external process and is deterministic given a
// deterministic Hessian/constraint set, making it usable both standalone and as a test double for
// a production solver with the same interface.
type DefaultSolver struct {
	// Regularization is the diagonal term (epsilon*I) added to the Hessian on a NUMERICAL_FAIL
	// retry. Defaults to 1e-6 if zero.
	Regularization float64
}

func (s *DefaultSolver) Solve(problem Assembled, deadline time.Duration) (Solution, Status, error) {
	reg := s.Regularization
	if reg <= 0 {
		reg = 1e-6
	}

	x, err := solveEqualityConstrainedQP(problem.Hessian, problem.Linear, problem.Equalities)
	if err != nil {
		regularized := regularize(problem.Hessian, reg)
		x, err = solveEqualityConstrainedQP(regularized, problem.Linear, problem.Equalities)
		if err != nil {
			return fallback(problem), NUMERICAL_FAIL, nil
		}
	}

	if feasible(x, problem.Inequalities) {
		return Solution{X: x}, SUCCESS, nil
	}

	refined, ok := localRefine(problem, x, deadline)
	if ok && feasible(refined, problem.Inequalities) {
		return Solution{X: refined}, SUCCESS, nil
	}

	return fallback(problem), INFEASIBLE, nil
}

func regularize(h *mat.SymDense, eps float64) *mat.SymDense {
	n := h.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := h.At(i, j)
			if i == j {
				v += eps
			}
			out.SetSym(i, j, v)
		}
	}
	return out
}

func feasible(x []float64, ineq []Constraint) bool {
	for _, c := range ineq {
		var v float64
		for i, coef := range c.Row {
			v += coef * x[i]
		}
		if v < c.RHS-FeasibilityTolerance {
			return false
		}
	}
	return true
}

// fallback returns the warm start unchanged, or an all-zero vector if there is none, per §4.6's
// "on INFEASIBLE, return the warm start unchanged" rule.
func fallback(problem Assembled) Solution {
	if problem.WarmStart != nil {
		return Solution{X: problem.WarmStart}
	}
	return Solution{X: make([]float64, problem.NumVars)}
}
