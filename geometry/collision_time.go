package geometry

import "math"

// CollisionTime computes the time at which two points moving along linear paths of equal
// duration T first come within combined radius r of each other, per §4.1's closed form.
//
// R(alpha) = (aEnd - aStart) - (bEnd - bStart), parameterized by alpha in [0,1], gives the
// relative displacement path; ||R(alpha)|| is a quadratic in alpha, so its minimizer and its
// roots at ||R|| = r are both closed-form.
//
// Returns +Inf if the separation over [0,T] never drops to r or below (including when the agents
// only move apart from a start outside r), and 0 if they are already within r at t=0.
func CollisionTime(aStart, aEnd, bStart, bEnd Vector, T, r float64) float64 {
	relStart := sub(aStart, bStart)
	relEnd := sub(aEnd, bEnd)
	delta := sub(relEnd, relStart)

	// ||R(alpha)||^2 = ||relStart||^2 + 2*alpha*dot(relStart,delta) + alpha^2*||delta||^2
	a := norm2(delta)
	b := 2 * dot(relStart, delta)
	c := norm2(relStart)

	if a < ZeroLengthEpsilon {
		// Relative position is constant over the horizon: either always colliding or never.
		if math.Sqrt(c) <= r {
			return 0
		}
		return math.Inf(1)
	}

	alphaStar := -b / (2 * a)
	alphaStarClamped := clamp01(alphaStar)
	minDistSq := a*alphaStarClamped*alphaStarClamped + b*alphaStarClamped + c

	if minDistSq > r*r {
		return math.Inf(1)
	}

	// Solve a*alpha^2 + b*alpha + (c - r^2) = 0 for the smaller root (entry time).
	cr := c - r*r
	disc := b*b - 4*a*cr
	if disc < 0 {
		// Numerical edge case right at tangency; treat as no true crossing.
		return math.Inf(1)
	}
	sqrtDisc := math.Sqrt(disc)
	alphaEntry := (-b - sqrtDisc) / (2 * a)
	alphaExit := (-b + sqrtDisc) / (2 * a)

	if alphaStar == alphaStarClamped {
		// Minimum attained strictly inside [0,1]: the entry root nearest but not after alphaStar,
		// clamped into range, is the true entry time.
		if alphaEntry < 0 {
			if alphaExit < 0 {
				return math.Inf(1)
			}
			// Already inside the collision radius at t=0 and approaching from "before start":
			// treat entry as immediate.
			return 0
		}
		if alphaEntry > 1 {
			return math.Inf(1)
		}
		return alphaEntry * T
	}

	// alpha* coincides with an endpoint: the closest approach is at the boundary of the path, so
	// the agents are either already separating (alpha*==0, moving away) or only reach minimum
	// separation at the far end (alpha*==1); in the latter case entry (if any) must lie at or
	// before alpha=1.
	if alphaStarClamped == 0 {
		// Moving apart from the start; if already within r at t=0 that is an immediate collision.
		if math.Sqrt(c) <= r {
			return 0
		}
		return math.Inf(1)
	}
	// alphaStarClamped == 1: approaching throughout; entry, if it exists within range, is the
	// smaller root clamped to [0,1].
	if alphaEntry < 0 {
		if math.Sqrt(c) <= r {
			return 0
		}
		return math.Inf(1)
	}
	if alphaEntry > 1 {
		return math.Inf(1)
	}
	return alphaEntry * T
}
