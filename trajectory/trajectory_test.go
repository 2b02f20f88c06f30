package trajectory

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/trajplan/geometry"
)

// straightLineSegments builds M segments of degree n whose control points lie evenly spaced
// along a straight line from start to end, a convenient fixture since such a trajectory has zero
// acceleration/jerk and known boundary derivatives.
func straightLineSegments(m, n int, start, end geometry.Vector) [][]geometry.Vector {
	segs := make([][]geometry.Vector, m)
	total := float64(m * n)
	for k := 0; k < m; k++ {
		seg := make([]geometry.Vector, n+1)
		for i := 0; i <= n; i++ {
			s := float64(k*n+i) / total
			seg[i] = geometry.Lerp(start, end, s)
		}
		segs[k] = seg
	}
	return segs
}

func TestPositionAtBoundaries(t *testing.T) {
	segs := straightLineSegments(5, 5, geometry.Vector{}, geometry.Vector{X: 10})
	tr, err := New(0, 0.2, 5, segs)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, tr.Position(0), test.ShouldResemble, geometry.Vector{})
	test.That(t, tr.Position(tr.Horizon()).X, test.ShouldAlmostEqual, 10)
}

func TestSegmentIndexClamping(t *testing.T) {
	segs := straightLineSegments(5, 5, geometry.Vector{}, geometry.Vector{X: 10})
	tr, err := New(0, 0.2, 5, segs)
	test.That(t, err, test.ShouldBeNil)

	// Past the horizon clamps to the last segment, not an out-of-range index.
	idx, local := tr.segmentIndexAndParam(100)
	test.That(t, idx, test.ShouldEqual, 4)
	test.That(t, local, test.ShouldEqual, 1)

	idx, local = tr.segmentIndexAndParam(-5)
	test.That(t, idx, test.ShouldEqual, 0)
	test.That(t, local, test.ShouldEqual, 0)
}

func TestContinuityResidualZeroOnStraightLine(t *testing.T) {
	segs := straightLineSegments(5, 5, geometry.Vector{}, geometry.Vector{X: 10})
	tr, err := New(0, 0.2, 5, segs)
	test.That(t, err, test.ShouldBeNil)

	for _, r := range tr.ContinuityResidual() {
		test.That(t, r, test.ShouldBeLessThan, 1e-9)
	}
}

func TestShiftPreservesDegreeAndCount(t *testing.T) {
	segs := straightLineSegments(5, 5, geometry.Vector{}, geometry.Vector{X: 10})
	tr, err := New(0, 0.2, 5, segs)
	test.That(t, err, test.ShouldBeNil)

	shifted := tr.Shift()
	test.That(t, shifted.SegmentCount(), test.ShouldEqual, tr.SegmentCount())
	test.That(t, shifted.StartTime, test.ShouldAlmostEqual, tr.SegmentDuration)
	// Segment 0 of the shifted trajectory is the old segment 1.
	test.That(t, shifted.Segments[0], test.ShouldResemble, tr.Segments[1])
}

func TestNewRejectsWrongControlPointCount(t *testing.T) {
	_, err := New(0, 0.2, 5, [][]geometry.Vector{{{}, {}}})
	test.That(t, err, test.ShouldEqual, ErrSegmentOutOfRange)
}
