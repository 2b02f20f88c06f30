// Package lsc builds Linear Safe Corridors: per-segment, per-neighbor half-space constraints
// guaranteeing pairwise non-collision over a segment's time window (§4.4).
package lsc

import (
	"strconv"

	"go.viam.com/trajplan/geometry"
	"go.viam.com/trajplan/logging"
	"go.viam.com/trajplan/obstacle"
	"go.viam.com/trajplan/trajectory"
)

// HalfSpace is an oriented half-space {x : Normal.(x - Point) >= Offset}, assigned to a specific
// (segment index, neighbor id) pair and valid for that segment's time interval (§3).
type HalfSpace struct {
	SegmentIndex int
	NeighborID   int
	Normal       geometry.Vector
	Point        geometry.Vector
	Offset       float64
}

// Result is the outcome of constructing all LSCs for one replanning tick.
type Result struct {
	Constraints    []HalfSpace
	CollisionAlert bool
	Failures       []error
}

// RadiusPolicy selects how two agents' radii combine into the minimum separation distance a
// half-space must enforce (§6 Configuration: "collision_radius policy").
type RadiusPolicy int

const (
	// RadiusSum requires clearance of the sum of both radii, the conservative default.
	RadiusSum RadiusPolicy = iota
	// RadiusMax requires clearance of only the larger of the two radii.
	RadiusMax
)

func (p RadiusPolicy) combine(a, b float64) float64 {
	if p == RadiusMax {
		return max(a, b)
	}
	return a + b
}

// Params carries the self-agent parameters and hard safety threshold the constructor needs.
type Params struct {
	SelfID              int
	SelfRadius          float64
	SelfDownwash        float64
	SelfPriority        obstacle.Priority
	SegmentDuration     float64
	SegmentCount        int
	Degree              int
	HardCollisionMargin float64 // ε added for the lower-priority agent, §4.4 step 4
	RadiusPolicy        RadiusPolicy
}

// Build constructs the LSCs between self and every neighbor with known or extrapolated motion.
// warmStart is self's own candidate trajectory for this tick (used as the "self" side of each
// segment's line-segment approximation, per §4.4 step 1).
func Build(warmStart *trajectory.Trajectory, neighbors []obstacle.Obstacle, priorities map[int]obstacle.Priority, params Params, logger logging.Logger) Result {
	result := Result{}

	for _, neighbor := range neighbors {
		if neighbor.Kind == obstacle.STATIC {
			// Static obstacles are handled exclusively by the SFC/distance-map path (§9 open
			// question a) and never produce an LSC.
			continue
		}
		neighborTraj := obstacle.PredictedTrajectory(neighbor, params.SegmentDuration, params.SegmentCount, params.Degree)
		if neighborTraj == nil {
			result.Failures = append(result.Failures, errConstraintGeneration(neighbor.ID))
			continue
		}

		neighborPriority, ok := priorities[neighbor.ID]
		if !ok {
			neighborPriority = obstacle.Priority{RemainingDistance: geometry.Distance(neighbor.Pose, neighbor.Goal), ID: neighbor.ID}
		}

		for k := 0; k < params.SegmentCount; k++ {
			hs, alert, err := buildOne(warmStart, neighborTraj, k, neighbor, params, neighborPriority)
			if err != nil {
				result.Failures = append(result.Failures, err)
				if logger != nil {
					logger.Warnw("LSC construction failed for segment", "neighbor", neighbor.ID, "segment", k, "err", err)
				}
				continue
			}
			result.Constraints = append(result.Constraints, hs)
			result.CollisionAlert = result.CollisionAlert || alert
		}
	}
	return result
}

func buildOne(
	selfTraj, neighborTraj *trajectory.Trajectory,
	k int,
	neighbor obstacle.Obstacle,
	params Params,
	neighborPriority obstacle.Priority,
) (HalfSpace, bool, error) {
	selfStart, selfEnd := selfTraj.SegmentEndpoints(k)
	neighStart, neighEnd := neighborTraj.SegmentEndpoints(k)

	metricStart, metricEnd := selfStart, selfEnd
	metricNeighStart, metricNeighEnd := neighStart, neighEnd
	downwash := 1.0
	if neighbor.Kind == obstacle.AGENT {
		downwash = harmonicDownwash(params.SelfDownwash, neighbor.Downwash)
		metricStart = geometry.Ellipsoidal(selfStart, downwash)
		metricEnd = geometry.Ellipsoidal(selfEnd, downwash)
		metricNeighStart = geometry.Ellipsoidal(neighStart, downwash)
		metricNeighEnd = geometry.Ellipsoidal(neighEnd, downwash)
	}

	witness := geometry.ClosestSegments(metricStart, metricEnd, metricNeighStart, metricNeighEnd)
	if witness.Distance < 1e-9 {
		// Degenerate: the two segments' metrics coincide exactly. Fail fast is not appropriate in
		// release mode (§7); fall back to a hyperplane through the current positions.
		return tightestFeasible(selfStart, neighStart, neighbor, params, k), true, nil
	}

	combinedRadius := params.RadiusPolicy.combine(params.SelfRadius, neighbor.Radius)
	normal := geometry.Normalize(geometry.Sub(witness.PointA, witness.PointB))
	midpoint := geometry.Scale(geometry.Add(witness.PointA, witness.PointB), 0.5)
	offset := combinedRadius / 2

	alert := false
	if witness.Distance < combinedRadius {
		alert = true
		if params.SelfPriority.Less(neighborPriority) {
			// self is higher priority: no extra margin conceded.
		} else {
			// self is lower priority: yield additional margin so the pair of half-spaces (this
			// one and the neighbor's own, symmetric, computation) remains jointly feasible
			// (§4.4 step 4).
			offset += params.HardCollisionMargin
		}
	}

	return HalfSpace{
		SegmentIndex: k,
		NeighborID:   neighbor.ID,
		Normal:       normal,
		Point:        midpoint,
		Offset:       offset,
	}, alert, nil
}

// tightestFeasible builds the tightest feasible half-space through the agent's current position
// when the witness points coincide (§4.4 "Failure mode"): the separating direction degenerates, so
// fall back to pointing directly away from the neighbor's current position.
func tightestFeasible(selfPos, neighborPos geometry.Vector, neighbor obstacle.Obstacle, params Params, k int) HalfSpace {
	normal := geometry.Normalize(geometry.Sub(selfPos, neighborPos))
	if geometry.Distance(geometry.Vector{}, normal) < 1e-9 {
		normal = geometry.Vector{X: 1}
	}
	return HalfSpace{
		SegmentIndex: k,
		NeighborID:   neighbor.ID,
		Normal:       normal,
		Point:        selfPos,
		Offset:       0,
	}
}

// harmonicDownwash combines two agents' downwash ratios into the single scale factor applied when
// both bodies are rotorcraft affecting each other; the harmonic mean lies between the two ratios
// and is pulled toward the smaller one. Non-positive ratios are treated as 1.
func harmonicDownwash(a, b float64) float64 {
	if a <= 0 {
		a = 1
	}
	if b <= 0 {
		b = 1
	}
	return 2 * a * b / (a + b)
}

func errConstraintGeneration(neighborID int) error {
	return &constraintError{neighborID: neighborID}
}

type constraintError struct {
	neighborID int
}

func (e *constraintError) Error() string {
	return "LSC constraint generation failed for neighbor " + strconv.Itoa(e.neighborID)
}
