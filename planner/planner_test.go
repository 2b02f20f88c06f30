package planner

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/trajplan/corridor/sfc"
	"go.viam.com/trajplan/geometry"
	"go.viam.com/trajplan/logging"
	"go.viam.com/trajplan/obstacle"
	"go.viam.com/trajplan/qp"
)

func headOnAgent(id int, pos, goal geometry.Vector) *obstacle.Agent {
	return &obstacle.Agent{
		ID:              id,
		Radius:          0.15,
		Downwash:        1,
		MaxVelocity:     geometry.Vector{X: 3, Y: 3, Z: 3},
		MaxAcceleration: geometry.Vector{X: 5, Y: 5, Z: 5},
		Current:         obstacle.State{Position: pos},
		StartPoint:      pos,
		DesiredGoal:     goal,
		CurrentGoal:     goal,
	}
}

func testConfig() Config {
	return Config{
		SegmentDuration: 0.5,
		SegmentCount:    3,
		Degree:          5,
		Dimension:       3,
		GoalThreshold:   0.2,
		ResetThreshold:  0.3,
		Weights:         qp.Weights{Jerk: 1, Snap: 0.1, Deviation: 0.01},
		SFC:             sfc.Params{SelfRadius: 0.15, StepSize: 0.2, MaxSteps: 10},
	}
}

func TestStateMachineWaitBlocksPlanning(t *testing.T) {
	agent := headOnAgent(1, geometry.Vector{}, geometry.Vector{X: 5})
	p := New(agent, PriorBasedPolicy{}, nil, testConfig(), logging.NewTestLogger())

	_, status, _ := p.Plan(obstacle.Snapshot{}, nil, nil)
	test.That(t, status, test.ShouldEqual, WAITFORROSMSG)
}

func TestStateMachineGotoProducesSuccess(t *testing.T) {
	agent := headOnAgent(1, geometry.Vector{}, geometry.Vector{X: 5})
	p := New(agent, PriorBasedPolicy{}, nil, testConfig(), logging.NewTestLogger())
	p.SetState(GOTO)

	traj, status, report := p.Plan(obstacle.Snapshot{}, nil, nil)
	test.That(t, status, test.ShouldEqual, SUCCESS)
	test.That(t, traj, test.ShouldNotBeNil)
	test.That(t, report.QPStatus, test.ShouldEqual, qp.SUCCESS)
}

func TestLandLocksOutSetState(t *testing.T) {
	agent := headOnAgent(1, geometry.Vector{}, geometry.Vector{X: 5})
	p := New(agent, PriorBasedPolicy{}, nil, testConfig(), logging.NewTestLogger())
	p.SetState(LAND)
	p.SetState(GOTO) // should be ignored while landing

	test.That(t, p.State(), test.ShouldEqual, LAND)
	p.SignalLandingComplete()
	p.SetState(GOTO)
	test.That(t, p.State(), test.ShouldEqual, GOTO)
}

func TestPatrolSwapsEndpointsOnArrival(t *testing.T) {
	agent := headOnAgent(1, geometry.Vector{X: 4.95}, geometry.Vector{X: 5})
	agent.StartPoint = geometry.Vector{}
	p := New(agent, PriorBasedPolicy{}, nil, testConfig(), logging.NewTestLogger())
	p.SetState(PATROL)

	_, status, _ := p.Plan(obstacle.Snapshot{}, nil, nil)
	test.That(t, status, test.ShouldEqual, SUCCESS)
	// Arrived within threshold: start and goal swap, so the new desired goal is the old start.
	test.That(t, agent.DesiredGoal, test.ShouldResemble, geometry.Vector{})
	test.That(t, agent.StartPoint, test.ShouldResemble, geometry.Vector{X: 5})
}

func TestRightHandRulePolicyDeflectsGoalNearNeighbor(t *testing.T) {
	agent := headOnAgent(1, geometry.Vector{}, geometry.Vector{X: 5})
	p := New(agent, RightHandRulePolicy{SidestepDistance: 0.5}, nil, testConfig(), logging.NewTestLogger())
	p.SetState(GOTO)

	cache := obstacle.NewNeighborCache()
	cache.Update(obstacle.Obstacle{ID: 2, Kind: obstacle.AGENT, Pose: geometry.Vector{X: 0.1}, Radius: 0.15})

	_, status, _ := p.Plan(cache.Snapshot(), nil, nil)
	test.That(t, status, test.ShouldEqual, SUCCESS)
	// The right-hand-rule policy, not the raw DesiredGoal, must have driven CurrentGoal: a
	// neighbor sits well within the deflection radius, so the goal is nudged off the straight
	// line toward DesiredGoal.
	test.That(t, agent.CurrentGoal, test.ShouldNotResemble, agent.DesiredGoal)
}

func TestDisturbanceOverridesState(t *testing.T) {
	agent := headOnAgent(1, geometry.Vector{}, geometry.Vector{X: 5})
	agent.Current.Velocity = geometry.Vector{X: 2}
	p := New(agent, PriorBasedPolicy{}, nil, testConfig(), logging.NewTestLogger())
	p.SetState(GOTO)

	observed := &obstacle.State{Position: geometry.Vector{X: 1}}
	_, status, _ := p.Plan(obstacle.Snapshot{}, nil, observed)
	test.That(t, status, test.ShouldEqual, SUCCESS)
	test.That(t, agent.Current.Velocity, test.ShouldResemble, geometry.Vector{})
}
