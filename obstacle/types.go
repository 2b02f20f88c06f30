// Package obstacle holds the per-tick data model shared by every other planning component:
// agent/obstacle state, and the neighbor snapshot each replanning tick builds and discards (§3).
package obstacle

import (
	"go.viam.com/trajplan/geometry"
	"go.viam.com/trajplan/trajectory"
)

// State is an agent's kinematic state: position, velocity, and acceleration, each a 3-vector.
type State struct {
	Position     geometry.Vector
	Velocity     geometry.Vector
	Acceleration geometry.Vector
}

// Type distinguishes the three obstacle kinds of §3.
type Type int

const (
	// AGENT is another planner instance broadcasting its own published trajectory.
	AGENT Type = iota
	// DYNAMIC is a non-cooperative obstacle; only position/velocity are known.
	DYNAMIC
	// STATIC is occupancy voxels, consumed only through the distance map (never through an LSC).
	STATIC
)

func (t Type) String() string {
	switch t {
	case AGENT:
		return "AGENT"
	case DYNAMIC:
		return "DYNAMIC"
	case STATIC:
		return "STATIC"
	default:
		return "UNKNOWN"
	}
}

// Obstacle is the per-tick reported state of one other entity in the workspace, as delivered over
// the (out-of-scope) pub/sub bus. PrevTraj and Goal are empty for everything but AGENT.
type Obstacle struct {
	ID              int
	Kind            Type
	Pose            geometry.Vector
	Velocity        geometry.Vector
	Goal            geometry.Vector
	Radius          float64
	Downwash        float64
	PrevTraj        *trajectory.Trajectory
	CollisionAlert  bool
	MaxAcceleration geometry.Vector
}

// Agent is this planner's own identity and kinematic bookkeeping (§3).
type Agent struct {
	ID       int
	Radius   float64
	Downwash float64

	MaxVelocity     geometry.Vector
	MaxAcceleration geometry.Vector

	Current State

	StartPoint   geometry.Vector
	DesiredGoal  geometry.Vector
	CurrentGoal  geometry.Vector
	NextWaypoint *geometry.Vector

	PublishedTrajectory *trajectory.Trajectory
}

// AsObstacle renders this agent's current public state as the Obstacle message it broadcasts to
// peers (§6 Outputs: "Agent-as-obstacle message").
func (a *Agent) AsObstacle(collisionAlert bool) Obstacle {
	return Obstacle{
		ID:              a.ID,
		Kind:            AGENT,
		Pose:            a.Current.Position,
		Velocity:        a.Current.Velocity,
		Goal:            a.CurrentGoal,
		Radius:          a.Radius,
		Downwash:        a.Downwash,
		PrevTraj:        a.PublishedTrajectory,
		CollisionAlert:  collisionAlert,
		MaxAcceleration: a.MaxAcceleration,
	}
}

// DistanceToGoal is the remaining Euclidean distance to the desired goal, the first component of
// an agent's Priority (§3).
func (a *Agent) DistanceToGoal() float64 {
	return geometry.Distance(a.Current.Position, a.DesiredGoal)
}
