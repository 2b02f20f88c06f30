package trajectory

import (
	"github.com/pkg/errors"

	"go.viam.com/trajplan/geometry"
)

// ErrSegmentOutOfRange is returned by Trajectory construction when a segment does not carry
// exactly Degree+1 control points.
var ErrSegmentOutOfRange = errors.New("segment does not have degree+1 control points")

// Trajectory is a sequence of Bernstein-basis polynomial segments over a fixed horizon, as
// specified in §3: M segments of duration Delta, basis degree n. C2 continuity across segment
// boundaries depends on the control points supplied; New checks only the per-segment control
// point count and does not check continuity.
type Trajectory struct {
	StartTime       float64
	SegmentDuration float64
	Degree          int
	Segments        [][]geometry.Vector // each of length Degree+1
}

// New validates and wraps a set of per-segment control point arrays into a Trajectory.
func New(startTime, segmentDuration float64, degree int, segments [][]geometry.Vector) (*Trajectory, error) {
	for _, seg := range segments {
		if len(seg) != degree+1 {
			return nil, ErrSegmentOutOfRange
		}
	}
	return &Trajectory{
		StartTime:       startTime,
		SegmentDuration: segmentDuration,
		Degree:          degree,
		Segments:        segments,
	}, nil
}

// SegmentCount returns M, the number of segments.
func (tr *Trajectory) SegmentCount() int { return len(tr.Segments) }

// Horizon returns the total planning horizon T = M*Delta.
func (tr *Trajectory) Horizon() float64 {
	return float64(tr.SegmentCount()) * tr.SegmentDuration
}

// segmentIndexAndParam maps an absolute time to a (segment index, local parameter in [0,1]) pair,
// clamping the segment index to [0, M-1] as specified in §4.2.
func (tr *Trajectory) segmentIndexAndParam(t float64) (int, float64) {
	rel := t - tr.StartTime
	idx := int(rel / tr.SegmentDuration)
	if idx < 0 {
		idx = 0
	}
	if m := tr.SegmentCount(); idx > m-1 {
		idx = m - 1
	}
	local := (rel - float64(idx)*tr.SegmentDuration) / tr.SegmentDuration
	if local < 0 {
		local = 0
	}
	if local > 1 {
		local = 1
	}
	return idx, local
}

// Position evaluates the trajectory's position at absolute time t.
func (tr *Trajectory) Position(t float64) geometry.Vector {
	idx, local := tr.segmentIndexAndParam(t)
	return evalBernstein(tr.Segments[idx], local)
}

// Velocity evaluates the trajectory's first derivative (real-time units) at absolute time t.
func (tr *Trajectory) Velocity(t float64) geometry.Vector {
	idx, local := tr.segmentIndexAndParam(t)
	d1 := derivativeControlPoints(tr.Segments[idx], tr.SegmentDuration)
	if d1 == nil {
		return geometry.Vector{}
	}
	return evalBernstein(d1, local)
}

// Acceleration evaluates the trajectory's second derivative (real-time units) at absolute time t.
func (tr *Trajectory) Acceleration(t float64) geometry.Vector {
	idx, local := tr.segmentIndexAndParam(t)
	d1 := derivativeControlPoints(tr.Segments[idx], tr.SegmentDuration)
	d2 := derivativeControlPoints(d1, tr.SegmentDuration)
	if d2 == nil {
		return geometry.Vector{}
	}
	return evalBernstein(d2, local)
}

// SegmentEndpoints returns the first and last control point of segment k, the pair used by LSC
// construction when it treats a segment as a line segment between its endpoints' positions.
func (tr *Trajectory) SegmentEndpoints(k int) (geometry.Vector, geometry.Vector) {
	seg := tr.Segments[k]
	return seg[0], seg[len(seg)-1]
}

// Shift returns a copy of the trajectory advanced by one segment duration: segment k becomes
// segment k-1, and the final segment is extrapolated by repeating its last control point's
// displacement, per §4.3's "previous trajectory shifted by one segment" warm start rule.
func (tr *Trajectory) Shift() *Trajectory {
	m := tr.SegmentCount()
	segments := make([][]geometry.Vector, m)
	for k := 0; k < m-1; k++ {
		segments[k] = tr.Segments[k+1]
	}
	segments[m-1] = extrapolateSegment(tr.Segments[m-1])
	return &Trajectory{
		StartTime:       tr.StartTime + tr.SegmentDuration,
		SegmentDuration: tr.SegmentDuration,
		Degree:          tr.Degree,
		Segments:        segments,
	}
}

// extrapolateSegment continues the last segment's final displacement to synthesize a plausible
// next segment, keeping the same first control point as the previous segment's last (preserving
// position continuity) and repeating the final control-point delta across the new segment.
func extrapolateSegment(seg []geometry.Vector) []geometry.Vector {
	n := len(seg)
	delta := geometry.Vector{
		X: seg[n-1].X - seg[n-2].X,
		Y: seg[n-1].Y - seg[n-2].Y,
		Z: seg[n-1].Z - seg[n-2].Z,
	}
	out := make([]geometry.Vector, n)
	out[0] = seg[n-1]
	for i := 1; i < n; i++ {
		prev := out[i-1]
		out[i] = geometry.Vector{X: prev.X + delta.X, Y: prev.Y + delta.Y, Z: prev.Z + delta.Z}
	}
	return out
}
