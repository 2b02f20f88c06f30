package lsc

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/trajplan/geometry"
	"go.viam.com/trajplan/obstacle"
	"go.viam.com/trajplan/trajectory"
)

func straightLine(start, end geometry.Vector) *trajectory.Trajectory {
	segments := make([][]geometry.Vector, 5)
	total := float64(5 * 5)
	for k := 0; k < 5; k++ {
		seg := make([]geometry.Vector, 6)
		for i := 0; i <= 5; i++ {
			s := float64(k*5+i) / total
			seg[i] = geometry.Lerp(start, end, s)
		}
		segments[k] = seg
	}
	tr, _ := trajectory.New(0, 0.2, 5, segments)
	return tr
}

func TestBuildHeadOnSeparates(t *testing.T) {
	selfTraj := straightLine(geometry.Vector{X: 0}, geometry.Vector{X: 10})
	neighborTraj := straightLine(geometry.Vector{X: 10}, geometry.Vector{X: 0})

	neighbor := obstacle.Obstacle{ID: 2, Kind: obstacle.AGENT, Radius: 0.15, Downwash: 1, PrevTraj: neighborTraj}
	params := Params{
		SelfID: 1, SelfRadius: 0.15, SelfDownwash: 1,
		SelfPriority:        obstacle.Priority{RemainingDistance: 5, ID: 1},
		SegmentDuration:     0.2, SegmentCount: 5, Degree: 5,
		HardCollisionMargin: 0.05,
	}
	priorities := map[int]obstacle.Priority{2: {RemainingDistance: 5, ID: 2}}

	result := Build(selfTraj, []obstacle.Obstacle{neighbor}, priorities, params, nil)
	test.That(t, len(result.Constraints), test.ShouldEqual, 5)
	for _, hs := range result.Constraints {
		test.That(t, hs.NeighborID, test.ShouldEqual, 2)
		// Self is below neighbor in x through segment 2 (where the two straight lines cross), so
		// the outward normal points toward negative x there; in segments 3 and 4 self has passed
		// the neighbor and the normal points toward positive x.
		if hs.SegmentIndex <= 2 {
			test.That(t, hs.Normal.X, test.ShouldBeLessThanOrEqualTo, 0.01)
		} else {
			test.That(t, hs.Normal.X, test.ShouldBeGreaterThanOrEqualTo, -0.01)
		}
	}
}

func TestBuildLowerPriorityYields(t *testing.T) {
	selfTraj := straightLine(geometry.Vector{X: 4.9}, geometry.Vector{X: 5.1})
	neighborTraj := straightLine(geometry.Vector{X: 5.1}, geometry.Vector{X: 4.9})
	neighbor := obstacle.Obstacle{ID: 2, Kind: obstacle.AGENT, Radius: 0.15, Downwash: 1, PrevTraj: neighborTraj}

	lowPriority := Params{
		SelfID: 1, SelfRadius: 0.15, SelfDownwash: 1,
		SelfPriority:        obstacle.Priority{RemainingDistance: 100, ID: 1},
		SegmentDuration:     0.2, SegmentCount: 5, Degree: 5,
		HardCollisionMargin: 0.05,
	}
	priorities := map[int]obstacle.Priority{2: {RemainingDistance: 1, ID: 2}}

	result := Build(selfTraj, []obstacle.Obstacle{neighbor}, priorities, lowPriority, nil)
	test.That(t, result.CollisionAlert, test.ShouldBeTrue)
	found := false
	for _, hs := range result.Constraints {
		if hs.Offset > 0.15 {
			found = true
		}
	}
	test.That(t, found, test.ShouldBeTrue)
}

func TestBuildSkipsStaticObstacles(t *testing.T) {
	selfTraj := straightLine(geometry.Vector{}, geometry.Vector{X: 5})
	static := obstacle.Obstacle{ID: 9, Kind: obstacle.STATIC}
	result := Build(selfTraj, []obstacle.Obstacle{static}, nil, Params{SegmentCount: 5, Degree: 5, SegmentDuration: 0.2}, nil)
	test.That(t, len(result.Constraints), test.ShouldEqual, 0)
}
