package trajectory

import "go.viam.com/trajplan/geometry"

// ContinuityResidual returns, for each interior segment boundary, the magnitude of the position,
// velocity, and acceleration mismatch between the end of segment k and the start of segment k+1.
// Used by tests to verify the C2-continuity invariant (§8) to within a numerical tolerance; the
// QP assembler enforces these as equality constraints at construction time so in normal operation
// every residual is ~0.
func (tr *Trajectory) ContinuityResidual() []float64 {
	residuals := make([]float64, 0, 3*(tr.SegmentCount()-1))
	for k := 0; k < tr.SegmentCount()-1; k++ {
		endPos, _ := boundaryDerivatives(tr.Segments[k], tr.SegmentDuration)
		startPos, _ := boundaryDerivatives(tr.Segments[k+1], tr.SegmentDuration)
		residuals = append(residuals, geometry.Distance(endPos[0], startPos[0]))
		residuals = append(residuals, geometry.Distance(endPos[1], startPos[1]))
		residuals = append(residuals, geometry.Distance(endPos[2], startPos[2]))
	}
	return residuals
}

// boundaryDerivatives returns, for a segment's control points, the position/velocity/acceleration
// at both its start (t=0) and end (t=1) as two 3-tuples [pos, vel, accel].
func boundaryDerivatives(pts []geometry.Vector, dt float64) (end, start [3]geometry.Vector) {
	d1 := derivativeControlPoints(pts, dt)
	d2 := derivativeControlPoints(d1, dt)
	start = [3]geometry.Vector{evalBernstein(pts, 0), evalBernstein(d1, 0), evalBernstein(d2, 0)}
	end = [3]geometry.Vector{evalBernstein(pts, 1), evalBernstein(d1, 1), evalBernstein(d2, 1)}
	return end, start
}

// BoundaryState returns the position, velocity, and acceleration at the very start (t0) and very
// end (t0+T) of the whole trajectory, used to verify the Boundary invariant of §8.
func (tr *Trajectory) BoundaryState() (startPos, startVel, startAccel, endPos, endVel, endAccel geometry.Vector) {
	first := tr.Segments[0]
	last := tr.Segments[len(tr.Segments)-1]
	d1First := derivativeControlPoints(first, tr.SegmentDuration)
	d2First := derivativeControlPoints(d1First, tr.SegmentDuration)
	d1Last := derivativeControlPoints(last, tr.SegmentDuration)
	d2Last := derivativeControlPoints(d1Last, tr.SegmentDuration)

	startPos = evalBernstein(first, 0)
	startVel = evalBernstein(d1First, 0)
	startAccel = evalBernstein(d2First, 0)
	endPos = evalBernstein(last, 1)
	endVel = evalBernstein(d1Last, 1)
	endAccel = evalBernstein(d2Last, 1)
	return
}
