// Package trajectory implements the Bernstein-basis piecewise-polynomial trajectory
// representation used across the planning core (§3, §4.2).
package trajectory

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"

	"go.viam.com/trajplan/geometry"
)

// basisValue evaluates the degree-n Bernstein basis polynomial i at parameter t in [0,1]:
// B_{i,n}(t) = C(n,i) * t^i * (1-t)^(n-i).
func basisValue(n, i int, t float64) float64 {
	if i < 0 || i > n {
		return 0
	}
	coeff := float64(combin.Binomial(n, i))
	return coeff * math.Pow(t, float64(i)) * math.Pow(1-t, float64(n-i))
}

// derivativeControlPoints returns the n control points of the (degree n-1) derivative of a
// degree-n Bernstein polynomial whose control points are pts, scaled by 1/dt to account for the
// parameter running over [0,1] across a segment of real duration dt. This is the standard
// Bernstein derivative formula, used here for velocity/acceleration evaluation; the qp package
// encodes the same relation in its own v_max/a_max bound-constraint rows (§4.6).
func derivativeControlPoints(pts []geometry.Vector, dt float64) []geometry.Vector {
	n := len(pts) - 1
	if n <= 0 {
		return nil
	}
	out := make([]geometry.Vector, n)
	scale := float64(n) / dt
	for i := 0; i < n; i++ {
		out[i] = geometry.Vector{
			X: (pts[i+1].X - pts[i].X) * scale,
			Y: (pts[i+1].Y - pts[i].Y) * scale,
			Z: (pts[i+1].Z - pts[i].Z) * scale,
		}
	}
	return out
}

// evalBernstein evaluates a degree-n Bernstein polynomial with the given control points at
// parameter t in [0,1].
func evalBernstein(pts []geometry.Vector, t float64) geometry.Vector {
	n := len(pts) - 1
	out := geometry.Vector{}
	for i, p := range pts {
		b := basisValue(n, i, t)
		out.X += b * p.X
		out.Y += b * p.Y
		out.Z += b * p.Z
	}
	return out
}
