package qp

import "go.viam.com/trajplan/geometry"

// buildInequalityConstraints assembles, as Row . x >= RHS rows, the per-axis dynamic-limit
// bounds on control points, every LSC half-space (applied to all n+1 control points of its
// segment via the Bernstein convex-hull property), and every SFC box face (§4.6).
func buildInequalityConstraints(p *Problem) []Constraint {
	var out []Constraint
	out = append(out, velocityBoundConstraints(p)...)
	out = append(out, accelerationBoundConstraints(p)...)
	out = append(out, lscConstraints(p)...)
	out = append(out, sfcConstraints(p)...)
	return out
}

// velocityBoundConstraints translates v_max into bounds on the first-derivative control points
// (§4.6): for each consecutive pair of control points within a segment, |n/dt*(p[i+1]-p[i])| <=
// v_max on each axis, expressed as two inequality rows (>= -v_max and the negated row for <=
// v_max).
func velocityBoundConstraints(p *Problem) []Constraint {
	var out []Constraint
	n := p.Degree
	dt := p.SegmentDuration
	scale := float64(n) / dt
	for k := 0; k < p.SegmentCount; k++ {
		for i := 0; i < n; i++ {
			for axis := 0; axis < p.Dimension; axis++ {
				bound := axisValue(p.MaxVelocity, axis)
				r := p.row()
				r[p.varIndex(k, i+1, axis)] = scale
				r[p.varIndex(k, i, axis)] = -scale
				out = append(out, Constraint{Row: r, RHS: -bound})
				out = append(out, Constraint{Row: negate(r), RHS: -bound})
			}
		}
	}
	return out
}

// accelerationBoundConstraints is the second-derivative analogue of velocityBoundConstraints.
func accelerationBoundConstraints(p *Problem) []Constraint {
	var out []Constraint
	n := p.Degree
	if n < 2 {
		return out
	}
	dt := p.SegmentDuration
	scale := float64(n*(n-1)) / (dt * dt)
	for k := 0; k < p.SegmentCount; k++ {
		for i := 0; i < n-1; i++ {
			for axis := 0; axis < p.Dimension; axis++ {
				bound := axisValue(p.MaxAcceleration, axis)
				r := p.row()
				r[p.varIndex(k, i+2, axis)] = scale
				r[p.varIndex(k, i+1, axis)] = -2 * scale
				r[p.varIndex(k, i, axis)] = scale
				out = append(out, Constraint{Row: r, RHS: -bound})
				out = append(out, Constraint{Row: negate(r), RHS: -bound})
			}
		}
	}
	return out
}

// lscConstraints applies each LSC half-space to all n+1 control points of its segment, relying on
// the convex-hull property: the polynomial satisfies the half-space over the whole segment iff
// every control point does (§3 LSC invariant).
func lscConstraints(p *Problem) []Constraint {
	var out []Constraint
	for _, hs := range p.LSCs {
		for i := 0; i <= p.Degree; i++ {
			r := p.row()
			for axis := 0; axis < p.Dimension; axis++ {
				r[p.varIndex(hs.SegmentIndex, i, axis)] = axisValue(hs.Normal, axis)
			}
			rhs := hs.Offset + geometry.Dot(hs.Normal, hs.Point)
			if p.Dimension == 2 {
				// z is fixed at PlaneZ rather than a decision variable; fold its contribution
				// into the right-hand side.
				rhs -= hs.Normal.Z * p.PlaneZ
			}
			out = append(out, Constraint{Row: r, RHS: rhs})
		}
	}
	return out
}

// sfcConstraints bounds every control point of a segment inside its assigned box, on every axis,
// as two inequality rows per axis per control point.
func sfcConstraints(p *Problem) []Constraint {
	var out []Constraint
	for _, box := range p.SFCs {
		for i := 0; i <= p.Degree; i++ {
			for axis := 0; axis < p.Dimension; axis++ {
				lo := axisValue(box.Min, axis)
				hi := axisValue(box.Max, axis)

				rLo := p.row()
				rLo[p.varIndex(box.SegmentIndex, i, axis)] = 1
				out = append(out, Constraint{Row: rLo, RHS: lo})

				rHi := p.row()
				rHi[p.varIndex(box.SegmentIndex, i, axis)] = -1
				out = append(out, Constraint{Row: rHi, RHS: -hi})
			}
		}
	}
	return out
}

func negate(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = -v
	}
	return out
}
