package coordination

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"go.viam.com/trajplan/distancemap"
	"go.viam.com/trajplan/geometry"
	"go.viam.com/trajplan/logging"
	"go.viam.com/trajplan/obstacle"
	"go.viam.com/trajplan/planner"
	"go.viam.com/trajplan/qp"
)

// Scenario 1 (head-on): already covered by TestSimulatorTickPublishesBothAgents, extended here to
// multiple ticks and the pairwise-separation invariant.
func TestScenarioHeadOnAgentsMaintainSeparation(t *testing.T) {
	logger := logging.NewTestLogger()
	sim := NewSimulator(clock.NewMock(), 2, logger)

	a := headOnAgent(1, geometry.Vector{X: 0}, geometry.Vector{X: 10})
	b := headOnAgent(2, geometry.Vector{X: 10}, geometry.Vector{X: 0})

	pa := planner.New(a, planner.PriorBasedPolicy{}, nil, headOnConfig(), logger)
	pb := planner.New(b, planner.PriorBasedPolicy{}, nil, headOnConfig(), logger)
	pa.SetState(planner.GOTO)
	pb.SetState(planner.GOTO)
	sim.AddAgent(1, pa)
	sim.AddAgent(2, pb)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		results, err := sim.RunSteps(ctx, 1, 500*time.Millisecond)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, results[0][1], test.ShouldEqual, planner.SUCCESS)
		test.That(t, results[0][2], test.ShouldEqual, planner.SUCCESS)

		if a.PublishedTrajectory != nil && b.PublishedTrajectory != nil {
			samples := 10
			for s := 0; s <= samples; s++ {
				frac := float64(s) / float64(samples)
				tAt := a.PublishedTrajectory.StartTime + frac*a.PublishedTrajectory.SegmentDuration
				dist := geometry.Distance(a.PublishedTrajectory.Position(tAt), b.PublishedTrajectory.Position(tAt))
				test.That(t, dist, test.ShouldBeGreaterThanOrEqualTo, a.Radius+b.Radius-1e-6)
			}
		}
	}
}

// Scenario 2 (passing with a static obstacle): a single agent flies from (0,0,1) to (5,0,1) past
// a cube centered at (2.5,0,1), and the SFC/distance-map path keeps it clear of the box.
func TestScenarioPassesStaticObstacle(t *testing.T) {
	logger := logging.NewTestLogger()
	dmap := distancemap.Static{Obstacles: []distancemap.Box{{
		Min: geometry.Vector{X: 2.0, Y: -0.5, Z: 0.5},
		Max: geometry.Vector{X: 3.0, Y: 0.5, Z: 1.5},
	}}}

	agent := headOnAgent(1, geometry.Vector{X: 0, Z: 1}, geometry.Vector{X: 5, Z: 1})
	cfg := headOnConfig()
	cfg.SFC.SelfRadius = agent.Radius

	p := planner.New(agent, planner.PriorBasedPolicy{}, dmap, cfg, logger)
	p.SetState(planner.GOTO)

	traj, status, report := p.Plan(obstacle.Snapshot{}, nil, nil)
	test.That(t, status, test.ShouldEqual, planner.SUCCESS)
	test.That(t, traj, test.ShouldNotBeNil)
	test.That(t, report.SFCConstraints, test.ShouldBeGreaterThan, 0)

	samples := 20
	for s := 0; s <= samples; s++ {
		frac := float64(s) / float64(samples)
		tAt := traj.StartTime + frac*traj.Horizon()
		d := dmap.Query(traj.Position(tAt))
		test.That(t, d, test.ShouldBeGreaterThanOrEqualTo, agent.Radius-1e-6)
	}
}

// Scenario 3 (infeasible corner): the agent's reported initial velocity exceeds v_max, a
// contradiction between the pinned initial-state equality and the dynamic-limit inequality that
// no control-point assignment can satisfy. plan must fall back to the warm start with
// collision_alert raised rather than fail outright.
func TestScenarioInfeasibleCornerFallsBackWithAlert(t *testing.T) {
	logger := logging.NewTestLogger()
	agent := headOnAgent(1, geometry.Vector{}, geometry.Vector{X: 5})
	agent.Current.Velocity = geometry.Vector{X: 100} // far beyond MaxVelocity.X (3)
	cfg := headOnConfig()

	p := planner.New(agent, planner.PriorBasedPolicy{}, nil, cfg, logger)
	p.SetState(planner.GOTO)

	traj, status, report := p.Plan(obstacle.Snapshot{}, nil, nil)
	test.That(t, status, test.ShouldEqual, planner.SUCCESS)
	test.That(t, traj, test.ShouldNotBeNil)
	test.That(t, report.QPStatus, test.ShouldEqual, qp.INFEASIBLE)
	test.That(t, p.CollisionAlert(), test.ShouldBeTrue)
}

// Alert-clearing half of scenario 3: once the cause of the alert (a too-close neighbor) is no
// longer reported, collision_alert lifts after the hysteresis window's consecutive clean ticks
// rather than flapping on the very next tick.
func TestScenarioCollisionAlertClearsAfterHysteresisWindow(t *testing.T) {
	logger := logging.NewTestLogger()
	agent := headOnAgent(1, geometry.Vector{}, geometry.Vector{X: 5})
	p := planner.New(agent, planner.PriorBasedPolicy{}, nil, headOnConfig(), logger)
	p.SetState(planner.GOTO)

	cache := obstacle.NewNeighborCache()
	cache.Update(obstacle.Obstacle{
		ID:     2,
		Kind:   obstacle.DYNAMIC,
		Pose:   geometry.Vector{X: 0.1},
		Radius: 0.15,
	})

	_, status, _ := p.Plan(cache.Snapshot(), nil, nil)
	test.That(t, status, test.ShouldEqual, planner.SUCCESS)
	test.That(t, p.CollisionAlert(), test.ShouldBeTrue)

	cache.Remove(2)
	_, status, _ = p.Plan(cache.Snapshot(), nil, nil)
	test.That(t, status, test.ShouldEqual, planner.SUCCESS)
	test.That(t, p.CollisionAlert(), test.ShouldBeTrue) // clearStreak 1 of 2

	_, status, _ = p.Plan(cache.Snapshot(), nil, nil)
	test.That(t, status, test.ShouldEqual, planner.SUCCESS)
	test.That(t, p.CollisionAlert(), test.ShouldBeFalse)
}

// Scenario 5 (patrol cycle): once the agent arrives within goal_threshold of its current leg's
// endpoint, start and goal swap and it heads back the other way; having just swapped onto a goal
// far from its current position, it must not immediately swap back on the very next tick.
func TestScenarioPatrolCycleReverses(t *testing.T) {
	logger := logging.NewTestLogger()
	agent := headOnAgent(1, geometry.Vector{X: 4.95}, geometry.Vector{X: 5})
	agent.StartPoint = geometry.Vector{}
	agent.DesiredGoal = geometry.Vector{X: 5}
	cfg := headOnConfig()
	cfg.GoalThreshold = 0.2

	p := planner.New(agent, planner.PriorBasedPolicy{}, nil, cfg, logger)
	p.SetState(planner.PATROL)

	_, status, _ := p.Plan(obstacle.Snapshot{}, nil, nil)
	test.That(t, status, test.ShouldEqual, planner.SUCCESS)
	test.That(t, agent.DesiredGoal, test.ShouldResemble, geometry.Vector{})
	test.That(t, agent.StartPoint, test.ShouldResemble, geometry.Vector{X: 5})

	_, status, _ = p.Plan(obstacle.Snapshot{}, nil, nil)
	test.That(t, status, test.ShouldEqual, planner.SUCCESS)
	// Still heading toward the zero vector: integrating one segment forward along the first
	// leg's trajectory leaves it nowhere near the far goal_threshold radius yet.
	test.That(t, agent.DesiredGoal, test.ShouldResemble, geometry.Vector{})
}

// Scenario 6 (landing): once LAND is signaled, subsequent plan calls hand off to the command
// executor and do not modify the published trajectory, until completion is signaled.
func TestScenarioLandingHandsOffControl(t *testing.T) {
	logger := logging.NewTestLogger()
	agent := headOnAgent(1, geometry.Vector{}, geometry.Vector{X: 5})
	p := planner.New(agent, planner.PriorBasedPolicy{}, nil, headOnConfig(), logger)
	p.SetState(planner.GOTO)

	traj, status, _ := p.Plan(obstacle.Snapshot{}, nil, nil)
	test.That(t, status, test.ShouldEqual, planner.SUCCESS)
	published := traj

	p.SetState(planner.LAND)
	traj2, status, _ := p.Plan(obstacle.Snapshot{}, nil, nil)
	test.That(t, status, test.ShouldEqual, planner.SUCCESS)
	test.That(t, traj2, test.ShouldEqual, published)

	// Attempting to change state mid-landing is ignored (§4.7 LAND lockout).
	p.SetState(planner.GOTO)
	test.That(t, p.State(), test.ShouldEqual, planner.LAND)

	p.SignalLandingComplete()
	p.SetState(planner.WAIT)
	test.That(t, p.State(), test.ShouldEqual, planner.WAIT)
}
