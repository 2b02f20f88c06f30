// Package qp assembles the constrained quadratic program over Bernstein control points (§4.6)
// and adapts it to an external solver collaborator, with a deterministic in-process
// implementation usable standalone or as a test mock for a production solver.
package qp

import (
	"go.viam.com/trajplan/corridor/lsc"
	"go.viam.com/trajplan/corridor/sfc"
	"go.viam.com/trajplan/geometry"
	"go.viam.com/trajplan/obstacle"
	"go.viam.com/trajplan/trajectory"
)

// Weights configures the objective: a weighted sum of squared jerk and snap, plus an optional
// term penalizing deviation from the warm start (§4.6).
type Weights struct {
	Jerk      float64
	Snap      float64
	Deviation float64
}

// Problem bundles everything needed to build the QP for one replanning tick.
type Problem struct {
	StartTime       float64
	Degree          int
	SegmentCount    int
	SegmentDuration float64
	Dimension       int     // 2 or 3; in 2D mode the z axis is fixed and removed from the decision vector
	PlaneZ          float64 // world_z_2d: the fixed plane height used when Dimension == 2

	Initial   obstacle.State
	WarmStart *trajectory.Trajectory

	MaxVelocity     geometry.Vector
	MaxAcceleration geometry.Vector

	LSCs []lsc.HalfSpace
	SFCs []sfc.Box

	Weights Weights
}

// varIndex returns the global decision-vector index of control point i of segment k on the given
// axis (0=x,1=y,2=z, or 0=x,1=y in 2D mode), under the ordering [segment][control point][axis].
func (p *Problem) varIndex(k, i, axis int) int {
	perCP := p.Dimension
	perSegment := (p.Degree + 1) * perCP
	return k*perSegment + i*perCP + axis
}

// NumVariables returns the total size of the decision vector.
func (p *Problem) NumVariables() int {
	return p.SegmentCount * (p.Degree + 1) * p.Dimension
}

// axisValue extracts the axis-th component (x/y/z) of v, respecting 2D mode where axis 2 does
// not exist in the decision vector (z is fixed at the configured plane height, not a variable).
func axisValue(v geometry.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
