package obstacle

import (
	"sync"

	"go.viam.com/trajplan/geometry"
	"go.viam.com/trajplan/trajectory"
)

// NeighborCache persists the last known Obstacle message per neighbor id across ticks. It is the
// one piece of state that survives between replanning ticks for the coordination protocol: "the
// last known trajectory for that neighbor is reused" when a tick's message is missed (§5
// Ordering). The cache itself is safe for concurrent Update calls from a pub/sub delivery
// goroutine racing the planning tick that reads a Snapshot.
type NeighborCache struct {
	mu        sync.Mutex
	neighbors map[int]Obstacle
}

// NewNeighborCache constructs an empty cache.
func NewNeighborCache() *NeighborCache {
	return &NeighborCache{neighbors: map[int]Obstacle{}}
}

// Update records the latest message received for a neighbor, overwriting any prior entry for the
// same id.
func (c *NeighborCache) Update(obs Obstacle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.neighbors[obs.ID] = obs
}

// Remove drops a neighbor from the cache entirely, e.g. once it leaves communication range.
func (c *NeighborCache) Remove(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.neighbors, id)
}

// Snapshot builds the value snapshot of all currently-known neighbors, valid for exactly one
// replanning tick and discarded afterward (§3 Lifecycles). It captures "whatever has arrived by
// the start of its plan step" (§5 Ordering) by copying out of the cache under lock.
func (c *NeighborCache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	obstacles := make(map[int]Obstacle, len(c.neighbors))
	for id, obs := range c.neighbors {
		obstacles[id] = obs
	}
	return Snapshot{obstacles: obstacles}
}

// Snapshot is the immutable, tick-scoped view of every known neighbor and obstacle.
type Snapshot struct {
	obstacles map[int]Obstacle
}

// All returns every obstacle in the snapshot.
func (s Snapshot) All() []Obstacle {
	out := make([]Obstacle, 0, len(s.obstacles))
	for _, obs := range s.obstacles {
		out = append(out, obs)
	}
	return out
}

// Get returns the obstacle for an id and whether it is present.
func (s Snapshot) Get(id int) (Obstacle, bool) {
	obs, ok := s.obstacles[id]
	return obs, ok
}

// PredictedTrajectory returns the neighbor's trajectory to use for this tick's LSC construction:
// its published trajectory when known (AGENT with a prev_traj), or else a constant-velocity
// extrapolation of its current position/velocity built fresh from the snapshot (§5 Ordering,
// §4.4 step 5 for DYNAMIC obstacles).
func PredictedTrajectory(obs Obstacle, segmentDuration float64, segmentCount, degree int) *trajectory.Trajectory {
	if obs.Kind == AGENT && obs.PrevTraj != nil {
		return obs.PrevTraj
	}
	return constantVelocityTrajectory(obs.Pose, obs.Velocity, segmentDuration, segmentCount, degree)
}

// constantVelocityTrajectory builds a degenerate (zero-jerk) trajectory whose control points lie
// evenly along the straight line a constant-velocity extrapolation would trace, sufficient input
// for LSC construction's segment-as-line-segment treatment (§4.4 step 1).
func constantVelocityTrajectory(pose, velocity geometry.Vector, segmentDuration float64, segmentCount, degree int) *trajectory.Trajectory {
	segments := make([][]geometry.Vector, segmentCount)
	for k := 0; k < segmentCount; k++ {
		seg := make([]geometry.Vector, degree+1)
		tStart := float64(k) * segmentDuration
		for i := 0; i <= degree; i++ {
			t := tStart + segmentDuration*float64(i)/float64(degree)
			seg[i] = geometry.Vector{
				X: pose.X + velocity.X*t,
				Y: pose.Y + velocity.Y*t,
				Z: pose.Z + velocity.Z*t,
			}
		}
		segments[k] = seg
	}
	tr, _ := trajectory.New(0, segmentDuration, degree, segments)
	return tr
}
