// Package warmstart implements the initial trajectory generator (§4.3): a feasible polynomial
// from the agent's current state toward its current goal, used both as the QP's warm start and
// as the fallback trajectory on solver failure.
package warmstart

import (
	"github.com/pkg/errors"

	"go.viam.com/trajplan/geometry"
	"go.viam.com/trajplan/obstacle"
	"go.viam.com/trajplan/trajectory"
)

// ErrInitTrajGeneration is returned when no feasible warm start could be constructed, surfaced by
// the planner as the INITTRAJGENERATIONFAIL exit status (§6).
var ErrInitTrajGeneration = errors.New("initial trajectory generation failed")

// Params bundles the horizon configuration needed to size the generated trajectory.
type Params struct {
	SegmentDuration float64
	SegmentCount    int
	Degree          int
}

// Generate builds the warm-start trajectory for one replanning tick.
//
// If agent.PublishedTrajectory is nil, a stay-in-place trajectory is built: every control point
// sits at the current position, with the low-order control points perturbed to match the current
// velocity and acceleration (the Bernstein derivative formulas run in reverse). Otherwise its
// one-segment shift (trajectory.Shift) is preferred and then re-pinned to the current state,
// since the agent's actual state may have drifted slightly from what the previous plan predicted.
func Generate(agent *obstacle.Agent, params Params) (*trajectory.Trajectory, error) {
	if params.SegmentCount <= 0 || params.Degree <= 0 || params.SegmentDuration <= 0 {
		return nil, ErrInitTrajGeneration
	}

	var base *trajectory.Trajectory
	if agent.PublishedTrajectory != nil {
		base = agent.PublishedTrajectory.Shift()
	} else {
		base = stayInPlace(agent.Current, params)
	}

	return pinToGoal(base, agent, params)
}

// stayInPlace builds a trajectory whose control points all sit at the current position, with the
// first two control points offset to reproduce the current velocity and acceleration exactly, and
// every other segment flat at the current position (zero velocity/acceleration elsewhere), used
// when there is no previous trajectory to shift.
func stayInPlace(state obstacle.State, params Params) *trajectory.Trajectory {
	segments := make([][]geometry.Vector, params.SegmentCount)
	for k := 0; k < params.SegmentCount; k++ {
		segments[k] = flatSegment(state.Position, params.Degree)
	}
	segments[0] = pinFirstSegment(state, params.SegmentDuration, params.Degree)
	tr, _ := trajectory.New(0, params.SegmentDuration, params.Degree, segments)
	return tr
}

func flatSegment(p geometry.Vector, degree int) []geometry.Vector {
	seg := make([]geometry.Vector, degree+1)
	for i := range seg {
		seg[i] = p
	}
	return seg
}

// pinFirstSegment returns a degree-n segment whose first three control points reproduce the given
// position/velocity/acceleration, the remaining control points held at the last pinned control
// point (so the curve comes to rest there within the segment). This is the
// direct inverse of the Bernstein derivative formulas: for a segment of duration dt,
//
//	p1 = p0 + dt/n * v0
//	p2 = 2*p1 - p0 + dt^2/(n*(n-1)) * a0
func pinFirstSegment(state obstacle.State, dt float64, n int) []geometry.Vector {
	seg := make([]geometry.Vector, n+1)
	p0 := state.Position
	seg[0] = p0

	if n >= 1 {
		p1 := geometry.Vector{
			X: p0.X + dt/float64(n)*state.Velocity.X,
			Y: p0.Y + dt/float64(n)*state.Velocity.Y,
			Z: p0.Z + dt/float64(n)*state.Velocity.Z,
		}
		seg[1] = p1
		for i := 2; i <= n; i++ {
			seg[i] = p1
		}
	}
	if n >= 2 {
		factor := dt * dt / float64(n*(n-1))
		p2 := geometry.Vector{
			X: 2*seg[1].X - p0.X + factor*state.Acceleration.X,
			Y: 2*seg[1].Y - p0.Y + factor*state.Acceleration.Y,
			Z: 2*seg[1].Z - p0.Z + factor*state.Acceleration.Z,
		}
		seg[2] = p2
		for i := 3; i <= n; i++ {
			seg[i] = p2
		}
	}
	return seg
}

// pinToGoal re-pins a candidate base trajectory's first segment to the agent's exact current
// state (correcting any drift a shifted previous trajectory carries), aims the remaining control
// points toward the current goal clamped to a maximum per-segment displacement of v_max*Delta
// (§4.3 b,c), and drives the final segment's terminal velocity/acceleration to zero (§4.3 a).
//
// Every segment is built by boundaryPinnedSegment, each one's head pinned to exactly the state
// the previous segment's tail implies (the same control-point/derivative relations
// qp/assemble.go's continuityConstraints encodes as equality rows for the QP path), so the whole
// trajectory is C2-continuous end to end (§3, §8 "Continuity") even when it is published verbatim
// as the adapter's solver-failure fallback rather than consumed only as a QP seed.
func pinToGoal(base *trajectory.Trajectory, agent *obstacle.Agent, params Params) (*trajectory.Trajectory, error) {
	m := params.SegmentCount
	dt := params.SegmentDuration
	n := params.Degree

	maxStep := geometry.Distance(geometry.Vector{}, geometry.Vector{
		X: agent.MaxVelocity.X, Y: agent.MaxVelocity.Y, Z: agent.MaxVelocity.Z,
	}) * dt

	direction := geometry.Sub(agent.CurrentGoal, agent.Current.Position)
	dist := geometry.Distance(agent.Current.Position, agent.CurrentGoal)
	target := agent.CurrentGoal
	if maxStep > 0 && dist > maxStep {
		target = geometry.Add(agent.Current.Position, geometry.Scale(geometry.Normalize(direction), maxStep))
	}

	// waypoints[k] is the position held (with zero velocity/acceleration) at the end of segment
	// k, for k=0..m-1; waypoints[m-1] is always the clamped target. Earlier waypoints reuse the
	// base trajectory's own segment boundaries as a shape hint (where it already intended each
	// segment to end) when available, falling back to the target itself otherwise.
	waypoints := make([]geometry.Vector, m)
	for k := 0; k < m; k++ {
		waypoints[k] = target
		if k+1 < len(base.Segments) {
			waypoints[k] = base.Segments[k+1][0]
		}
	}
	waypoints[m-1] = target

	segments := make([][]geometry.Vector, m)
	segments[0] = boundaryPinnedSegment(agent.Current, waypoints[0], dt, n)
	head := obstacle.State{Position: waypoints[0]}
	for k := 1; k < m; k++ {
		segments[k] = boundaryPinnedSegment(head, waypoints[k], dt, n)
		head = obstacle.State{Position: waypoints[k]}
	}

	tr, err := trajectory.New(0, dt, n, segments)
	if err != nil {
		return nil, errors.Wrap(ErrInitTrajGeneration, err.Error())
	}
	return tr, nil
}

// boundaryPinnedSegment builds a degree-n segment whose first three control points reproduce head
// exactly (via pinFirstSegment) and whose last three control points hold tail with zero exit
// velocity and acceleration, any remaining interior control points linearly interpolated between
// the two pinned ends. Consecutive calls chained head-to-tail (this call's tail fed as the next
// call's head, with zero velocity/acceleration) are therefore C2-continuous at every shared
// boundary: position, velocity, and acceleration all agree on both sides by construction.
func boundaryPinnedSegment(head obstacle.State, tail geometry.Vector, dt float64, n int) []geometry.Vector {
	seg := pinFirstSegment(head, dt, n)
	headEnd := 2
	if headEnd > n {
		headEnd = n
	}
	tailStart := n - 2
	if tailStart < 0 {
		tailStart = 0
	}
	if tailStart <= headEnd {
		// Too few control points to pin both ends independently; collapse straight to tail.
		for i := headEnd; i <= n; i++ {
			seg[i] = tail
		}
		return seg
	}
	for i := tailStart; i <= n; i++ {
		seg[i] = tail
	}
	for i := headEnd + 1; i < tailStart; i++ {
		frac := float64(i-headEnd) / float64(tailStart-headEnd)
		seg[i] = geometry.Add(seg[headEnd], geometry.Scale(geometry.Sub(tail, seg[headEnd]), frac))
	}
	return seg
}
