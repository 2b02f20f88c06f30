package obstacle

// Priority is the per-agent total order used to break ties during LSC construction (§3): agents
// closer to their desired goal are higher priority, ties broken by id ascending so no two agents
// can ever compare equal.
type Priority struct {
	RemainingDistance float64
	ID                int
}

// PriorityOf computes an agent's current priority key.
func PriorityOf(a *Agent) Priority {
	return Priority{RemainingDistance: a.DistanceToGoal(), ID: a.ID}
}

// Less reports whether p has strictly higher priority than other (smaller remaining distance
// wins; ties broken by smaller id).
func (p Priority) Less(other Priority) bool {
	if p.RemainingDistance != other.RemainingDistance {
		return p.RemainingDistance < other.RemainingDistance
	}
	return p.ID < other.ID
}
