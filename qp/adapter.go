package qp

import (
	"time"

	"go.viam.com/trajplan/geometry"
	"go.viam.com/trajplan/logging"
	"go.viam.com/trajplan/trajectory"
)

// Adapter assembles a Problem, drives a Solver, and converts the result back into a Trajectory,
// owning the fallback-to-warm-start-with-alert behavior that §4.6 assigns to the QP layer as a
// whole rather than to any particular solver implementation.
type Adapter struct {
	Solver   Solver
	Deadline time.Duration
	Logger   logging.Logger
}

// NewAdapter builds an Adapter around the in-process DefaultSolver.
func NewAdapter(logger logging.Logger) *Adapter {
	return &Adapter{Solver: &DefaultSolver{}, Deadline: 50 * time.Millisecond, Logger: logger}
}

// Plan solves p and returns the resulting trajectory, the solver status, and whether collision
// alert should be raised for this tick (true whenever the fallback trajectory was used).
func (a *Adapter) Plan(p *Problem) (*trajectory.Trajectory, Status, bool, error) {
	assembled := Assemble(p)

	solution, status, err := a.Solver.Solve(assembled, a.Deadline)
	if err != nil {
		return nil, NUMERICAL_FAIL, true, err
	}

	if status != SUCCESS {
		if a.Logger != nil {
			a.Logger.Warnw("QP solve did not succeed, falling back to warm start", "status", status.String())
		}
		if p.WarmStart != nil {
			return p.WarmStart, status, true, nil
		}
		return nil, status, true, nil
	}

	traj, err := unflatten(p, solution.X)
	if err != nil {
		return nil, NUMERICAL_FAIL, true, err
	}
	return traj, SUCCESS, false, nil
}

// unflatten converts a decision vector back into segment control points, reinserting the fixed
// plane height on the z axis when the problem was solved in 2D mode.
func unflatten(p *Problem, x []float64) (*trajectory.Trajectory, error) {
	segments := make([][]geometry.Vector, p.SegmentCount)
	for k := 0; k < p.SegmentCount; k++ {
		pts := make([]geometry.Vector, p.Degree+1)
		for i := 0; i <= p.Degree; i++ {
			v := geometry.Vector{Z: p.PlaneZ}
			for axis := 0; axis < p.Dimension; axis++ {
				val := x[p.varIndex(k, i, axis)]
				switch axis {
				case 0:
					v.X = val
				case 1:
					v.Y = val
				case 2:
					v.Z = val
				}
			}
			pts[i] = v
		}
		segments[k] = pts
	}
	return trajectory.New(p.StartTime, p.SegmentDuration, p.Degree, segments)
}
