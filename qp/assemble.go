package qp

import (
	"gonum.org/v1/gonum/mat"

	"go.viam.com/trajplan/geometry"
)

// Constraint is one row of a linear (in)equality: Row . x {=,>=} RHS.
type Constraint struct {
	Row []float64
	RHS float64
}

// Assembled holds the dense matrices handed to the solver adapter.
type Assembled struct {
	Hessian      *mat.SymDense
	Linear       []float64 // nil means no linear term (pure jerk/snap objective)
	Equalities   []Constraint
	Inequalities []Constraint // interpreted as Row . x >= RHS
	NumVars      int
	WarmStart    []float64 // decision-vector form of the warm start, nil if none; used as the
	// nonlinear solver's starting point and the final infeasible-fallback value
}

// Assemble builds the Hessian and constraint set for p (§4.6). The Hessian is block-diagonal
// across segments and axes since the objective does not couple them; equality constraints
// (continuity, boundary conditions) are likewise per-axis; inequality constraints from LSCs
// couple the axes of a single control point through the half-space normal.
func Assemble(p *Problem) Assembled {
	n := p.NumVariables()
	hessian := mat.NewSymDense(n, nil)

	segH := segmentHessian(p.Degree, p.SegmentDuration, p.Weights.Jerk, p.Weights.Snap)
	for k := 0; k < p.SegmentCount; k++ {
		for axis := 0; axis < p.Dimension; axis++ {
			for i := 0; i <= p.Degree; i++ {
				for j := 0; j <= p.Degree; j++ {
					gi, gj := p.varIndex(k, i, axis), p.varIndex(k, j, axis)
					if gi > gj {
						continue // SymDense only needs the upper triangle
					}
					v := hessian.At(gi, gj) + segH.At(i, j)
					hessian.SetSym(gi, gj, v)
				}
			}
		}
	}
	if p.Weights.Deviation > 0 && p.WarmStart != nil {
		addDeviationPenalty(hessian, p)
	}

	eq := buildEqualityConstraints(p)
	ineq := buildInequalityConstraints(p)

	return Assembled{
		Hessian:      hessian,
		Linear:       linearTerm(p),
		Equalities:   eq,
		Inequalities: ineq,
		NumVars:      n,
		WarmStart:    warmStartVector(p),
	}
}

// addDeviationPenalty adds Deviation to every diagonal entry of the Hessian: the quadratic half of
// Deviation*||x-w||^2. The matching linear term (-2*Deviation*w) is computed by linearTerm.
func addDeviationPenalty(hessian *mat.SymDense, p *Problem) {
	n := p.NumVariables()
	for i := 0; i < n; i++ {
		hessian.SetSym(i, i, hessian.At(i, i)+p.Weights.Deviation)
	}
}

// row allocates a zeroed constraint row of the problem's size.
func (p *Problem) row() []float64 {
	return make([]float64, p.NumVariables())
}

func buildEqualityConstraints(p *Problem) []Constraint {
	var out []Constraint

	// Initial position/velocity/acceleration pin segment 0 to the current state (§4.6).
	out = append(out, pinStateConstraints(p, 0, true, p.Initial.Position, p.Initial.Velocity, p.Initial.Acceleration)...)

	// C2 continuity at each interior segment boundary (§3, §4.6).
	for k := 0; k < p.SegmentCount-1; k++ {
		out = append(out, continuityConstraints(p, k)...)
	}

	// Terminal velocity/acceleration = 0 on the last segment (§4.6).
	out = append(out, terminalZeroConstraints(p, p.SegmentCount-1)...)

	return out
}

// pinStateConstraints pins segment k's control points (start if atStart, else irrelevant here
// since only used for segment 0's start) to the given kinematic state, using the same
// control-point/derivative relations as trajectory.derivativeControlPoints run in reverse.
func pinStateConstraints(p *Problem, k int, atStart bool, position, velocity, acceleration geometry.Vector) []Constraint {
	var out []Constraint
	n := p.Degree
	dt := p.SegmentDuration
	for axis := 0; axis < p.Dimension; axis++ {
		// position
		r := p.row()
		idx := 0
		if !atStart {
			idx = n
		}
		r[p.varIndex(k, idx, axis)] = 1
		out = append(out, Constraint{Row: r, RHS: axisValue(position, axis)})

		if n >= 1 {
			r = p.row()
			i0, i1 := 0, 1
			sign := float64(n) / dt
			if !atStart {
				i0, i1 = n, n-1
			}
			r[p.varIndex(k, i1, axis)] = sign
			r[p.varIndex(k, i0, axis)] = -sign
			out = append(out, Constraint{Row: r, RHS: axisValue(velocity, axis)})
		}
		if n >= 2 {
			r = p.row()
			scale := float64(n*(n-1)) / (dt * dt)
			i0, i1, i2 := 0, 1, 2
			if !atStart {
				i0, i1, i2 = n, n-1, n-2
			}
			r[p.varIndex(k, i0, axis)] += scale
			r[p.varIndex(k, i1, axis)] += -2 * scale
			r[p.varIndex(k, i2, axis)] += scale
			out = append(out, Constraint{Row: r, RHS: axisValue(acceleration, axis)})
		}
	}
	return out
}

// continuityConstraints ties the end of segment k to the start of segment k+1 in position,
// velocity, and acceleration.
func continuityConstraints(p *Problem, k int) []Constraint {
	var out []Constraint
	n := p.Degree
	dt := p.SegmentDuration
	for axis := 0; axis < p.Dimension; axis++ {
		// position
		r := p.row()
		r[p.varIndex(k, n, axis)] = 1
		r[p.varIndex(k+1, 0, axis)] = -1
		out = append(out, Constraint{Row: r, RHS: 0})

		if n >= 1 {
			r = p.row()
			scale := float64(n) / dt
			r[p.varIndex(k, n, axis)] += scale
			r[p.varIndex(k, n-1, axis)] += -scale
			r[p.varIndex(k+1, 1, axis)] += -scale
			r[p.varIndex(k+1, 0, axis)] += scale
			out = append(out, Constraint{Row: r, RHS: 0})
		}
		if n >= 2 {
			r = p.row()
			scale := float64(n*(n-1)) / (dt * dt)
			r[p.varIndex(k, n, axis)] += scale
			r[p.varIndex(k, n-1, axis)] += -2 * scale
			r[p.varIndex(k, n-2, axis)] += scale
			r[p.varIndex(k+1, 2, axis)] += -scale
			r[p.varIndex(k+1, 1, axis)] += 2 * scale
			r[p.varIndex(k+1, 0, axis)] += -scale
			out = append(out, Constraint{Row: r, RHS: 0})
		}
	}
	return out
}

// terminalZeroConstraints pins the velocity and acceleration at the end of the last segment to
// zero (§4.3 b, §4.6).
func terminalZeroConstraints(p *Problem, k int) []Constraint {
	var out []Constraint
	n := p.Degree
	dt := p.SegmentDuration
	for axis := 0; axis < p.Dimension; axis++ {
		if n >= 1 {
			r := p.row()
			scale := float64(n) / dt
			r[p.varIndex(k, n, axis)] = scale
			r[p.varIndex(k, n-1, axis)] = -scale
			out = append(out, Constraint{Row: r, RHS: 0})
		}
		if n >= 2 {
			r := p.row()
			scale := float64(n*(n-1)) / (dt * dt)
			r[p.varIndex(k, n, axis)] += scale
			r[p.varIndex(k, n-1, axis)] += -2 * scale
			r[p.varIndex(k, n-2, axis)] += scale
			out = append(out, Constraint{Row: r, RHS: 0})
		}
	}
	return out
}
