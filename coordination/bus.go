// Package coordination implements the tick-boundary coordination protocol of §4.8: trajectory
// exchange over an in-memory bus (standing in for the out-of-scope pub/sub collaborator of §1)
// and a co-simulation harness driving several planner.Planner instances in-process for the
// end-to-end scenarios of §8.
package coordination

import (
	"sync"

	"go.viam.com/trajplan/geometry"
	"go.viam.com/trajplan/obstacle"
)

// Bus is an in-memory publish/subscribe stand-in for the external pub/sub message bus (§1's
// out-of-scope collaborator): every agent publishes its AsObstacle message after replanning, and
// every other agent's NeighborCache picks it up at the start of its own next tick. There is no
// shared mutable state between agents beyond this bus (§5 Concurrency Model).
type Bus struct {
	mu     sync.RWMutex
	latest map[int]obstacle.Obstacle
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{latest: map[int]obstacle.Obstacle{}}
}

// Publish records the latest message from one agent, visible to subscribers from this point on.
func (b *Bus) Publish(msg obstacle.Obstacle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest[msg.ID] = msg
}

// Deliver copies every currently published message except selfID into cache, modeling "whatever
// has arrived by the start of its plan step" (§5 Ordering).
func (b *Bus) Deliver(selfID int, cache *obstacle.NeighborCache) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, msg := range b.latest {
		if id == selfID {
			continue
		}
		cache.Update(msg)
	}
}

// Priorities returns every published agent's current Priority, keyed by id, for LSC tie-breaking.
func (b *Bus) Priorities() map[int]obstacle.Priority {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[int]obstacle.Priority, len(b.latest))
	for id, msg := range b.latest {
		if msg.Kind != obstacle.AGENT {
			continue
		}
		out[id] = obstacle.Priority{RemainingDistance: geometry.Distance(msg.Pose, msg.Goal), ID: id}
	}
	return out
}
