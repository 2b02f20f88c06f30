package coordination

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"go.viam.com/trajplan/corridor/sfc"
	"go.viam.com/trajplan/geometry"
	"go.viam.com/trajplan/logging"
	"go.viam.com/trajplan/obstacle"
	"go.viam.com/trajplan/planner"
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

func headOnConfig() planner.Config {
	return planner.Config{
		SegmentDuration: 0.5,
		SegmentCount:    3,
		Degree:          5,
		Dimension:       3,
		GoalThreshold:   0.2,
		ResetThreshold:  0.3,
		Weights:         qp.Weights{Jerk: 1, Snap: 0.1, Deviation: 0.01},
		SFC:             sfc.Params{SelfRadius: 0.15, StepSize: 0.2, MaxSteps: 10},
		HardCollisionMargin: 0.05,
	}
}

func TestSimulatorTickPublishesBothAgents(t *testing.T) {
	logger := logging.NewTestLogger()
	sim := NewSimulator(clock.NewMock(), 2, logger)

	a := headOnAgent(1, geometry.Vector{}, geometry.Vector{X: 10})
	b := headOnAgent(2, geometry.Vector{X: 10}, geometry.Vector{})

	pa := planner.New(a, planner.PriorBasedPolicy{}, nil, headOnConfig(), logger)
	pb := planner.New(b, planner.PriorBasedPolicy{}, nil, headOnConfig(), logger)
	pa.SetState(planner.GOTO)
	pb.SetState(planner.GOTO)

	sim.AddAgent(1, pa)
	sim.AddAgent(2, pb)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := sim.Tick(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, results[1], test.ShouldEqual, planner.SUCCESS)
	test.That(t, results[2], test.ShouldEqual, planner.SUCCESS)

	history1 := sim.History(1)
	test.That(t, len(history1), test.ShouldEqual, 1)
}

func TestSimulatorRunStepsAdvancesClock(t *testing.T) {
	logger := logging.NewTestLogger()
	mock := clock.NewMock()
	sim := NewSimulator(mock, 0, logger)

	a := headOnAgent(1, geometry.Vector{}, geometry.Vector{X: 5})
	pa := planner.New(a, planner.PriorBasedPolicy{}, nil, headOnConfig(), logger)
	pa.SetState(planner.GOTO)
	sim.AddAgent(1, pa)

	before := mock.Now()
	_, err := sim.RunSteps(context.Background(), 3, 500*time.Millisecond)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mock.Now().Sub(before), test.ShouldEqual, 1500*time.Millisecond)
	test.That(t, len(sim.History(1)), test.ShouldEqual, 3)
}
