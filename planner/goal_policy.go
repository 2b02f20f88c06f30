package planner

import (
	"go.viam.com/trajplan/geometry"
	"go.viam.com/trajplan/obstacle"
)

// GoalPolicy selects the current goal point for an agent given its neighbor snapshot, the
// pluggable strategy behind goal_mode (§6 Configuration, §9 open question b): one small interface
// implemented per named strategy rather than a type switch at call sites.
type GoalPolicy interface {
	SelectGoal(agent *obstacle.Agent, neighbors obstacle.Snapshot) geometry.Vector
}

// GoalMode names the three policies of §6 Configuration.
type GoalMode int

const (
	PRIORBASED GoalMode = iota
	RIGHTHANDRULE
	GRIDBASEDPLANNER
)

func (m GoalMode) String() string {
	switch m {
	case PRIORBASED:
		return "PRIORBASED"
	case RIGHTHANDRULE:
		return "RIGHTHANDRULE"
	case GRIDBASEDPLANNER:
		return "GRIDBASEDPLANNER"
	default:
		return "UNKNOWN"
	}
}

// NewGoalPolicy constructs the concrete policy named by mode.
func NewGoalPolicy(mode GoalMode) GoalPolicy {
	switch mode {
	case RIGHTHANDRULE:
		return RightHandRulePolicy{}
	case GRIDBASEDPLANNER:
		return GridBasedPolicy{}
	default:
		return PriorBasedPolicy{}
	}
}

// PriorBasedPolicy always heads straight for the agent's currently assigned goal (whatever the
// state machine set it to); no neighbor-dependent deviation.
type PriorBasedPolicy struct{}

func (PriorBasedPolicy) SelectGoal(agent *obstacle.Agent, _ obstacle.Snapshot) geometry.Vector {
	return agent.CurrentGoal
}

// RightHandRulePolicy biases the goal to the agent's right, relative to its heading toward the
// goal, when any AGENT neighbor lies within twice the two agents' combined radius, in any
// direction — a convention-based deadlock-breaker that does not require explicit negotiation,
// distinct from PriorBasedPolicy's direct approach.
type RightHandRulePolicy struct {
	// SidestepDistance is how far to the right the goal is nudged when at least one neighbor is
	// near; the nudge is applied once, not once per near neighbor. Defaults to 0.5 if not positive.
	SidestepDistance float64
}

func (p RightHandRulePolicy) SelectGoal(agent *obstacle.Agent, neighbors obstacle.Snapshot) geometry.Vector {
	goal := agent.CurrentGoal
	sidestep := p.SidestepDistance
	if sidestep <= 0 {
		sidestep = 0.5
	}

	heading := geometry.Sub(goal, agent.Current.Position)
	if geometry.Norm(heading) < geometry.ZeroLengthEpsilon {
		return goal
	}
	heading = geometry.Normalize(heading)
	right := geometry.Vector{X: heading.Y, Y: -heading.X, Z: 0}

	for _, n := range neighbors.All() {
		if n.Kind != obstacle.AGENT {
			continue
		}
		if geometry.Distance(n.Pose, agent.Current.Position) < 2*(agent.Radius+n.Radius) {
			return geometry.Add(goal, geometry.Scale(right, sidestep))
		}
	}
	return goal
}

// GridBasedPolicy defers to an externally supplied next waypoint (the out-of-scope global grid
// planner of spec.md §1), falling back to the direct goal when no waypoint has been supplied yet.
type GridBasedPolicy struct{}

func (GridBasedPolicy) SelectGoal(agent *obstacle.Agent, _ obstacle.Snapshot) geometry.Vector {
	if agent.NextWaypoint != nil {
		return *agent.NextWaypoint
	}
	return agent.CurrentGoal
}
