package qp

import (
	"time"

	"github.com/go-nlopt/nlopt"
)

// localRefine runs SLSQP on the QP objective, starting from a closed-form KKT point that violates
// the inequality set, to find a local optimum that honors every constraint (§4.6's escalation path beyond the closed-form equality solve; the KKT
// solve alone has no mechanism to honor the LSC/SFC/dynamic-limit half-spaces). Every inequality
// and equality row is registered as a generic nlopt constraint closure built from the same Row/RHS
// data the closed-form solver consumed, so there is exactly one definition of each constraint.
func localRefine(problem Assembled, start []float64, deadline time.Duration) ([]float64, bool) {
	n := len(start)
	if n == 0 {
		return nil, false
	}

	opt, err := nlopt.NewNLopt(nlopt.LD_SLSQP, uint(n))
	if err != nil {
		return nil, false
	}
	defer opt.Destroy()

	hessian := problem.Hessian
	linear := problem.Linear
	if err := opt.SetMinObjective(func(x, grad []float64) float64 {
		if len(grad) > 0 {
			for i := range grad {
				var g float64
				for j := 0; j < n; j++ {
					g += 2 * hessian.At(i, j) * x[j]
				}
				if linear != nil {
					g += linear[i]
				}
				grad[i] = g
			}
		}
		var quad float64
		for i := 0; i < n; i++ {
			var hx float64
			for j := 0; j < n; j++ {
				hx += hessian.At(i, j) * x[j]
			}
			quad += x[i] * hx
		}
		var lin float64
		if linear != nil {
			for i, v := range linear {
				lin += v * x[i]
			}
		}
		return quad + lin
	}); err != nil {
		return nil, false
	}

	// nlopt's inequality convention is fc(x) <= 0; our rows are Row.x >= RHS, so fc(x) = RHS - Row.x.
	for _, c := range problem.Inequalities {
		row := c.Row
		rhs := c.RHS
		if err := opt.AddInequalityConstraint(func(x, grad []float64) float64 {
			if len(grad) > 0 {
				for i := range grad {
					grad[i] = -row[i]
				}
			}
			var v float64
			for i, coef := range row {
				v += coef * x[i]
			}
			return rhs - v
		}, FeasibilityTolerance); err != nil {
			return nil, false
		}
	}
	for _, c := range problem.Equalities {
		row := c.Row
		rhs := c.RHS
		if err := opt.AddEqualityConstraint(func(x, grad []float64) float64 {
			if len(grad) > 0 {
				copy(grad, row)
			}
			var v float64
			for i, coef := range row {
				v += coef * x[i]
			}
			return v - rhs
		}, FeasibilityTolerance); err != nil {
			return nil, false
		}
	}

	if err := opt.SetXtolRel(1e-5); err != nil {
		return nil, false
	}
	if err := opt.SetMaxEval(2000); err != nil {
		return nil, false
	}
	if deadline > 0 {
		if err := opt.SetMaxTime(deadline.Seconds()); err != nil {
			return nil, false
		}
	}

	x0 := make([]float64, n)
	copy(x0, start)
	xOpt, _, err := opt.Optimize(x0)
	if err != nil {
		return nil, false
	}
	return xOpt, true
}
