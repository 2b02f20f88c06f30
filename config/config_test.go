package config

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/trajplan/corridor/lsc"
	"go.viam.com/trajplan/logging"
	"go.viam.com/trajplan/obstacle"
)

func validAttributes() map[string]interface{} {
	return map[string]interface{}{
		"world_dimension":  3,
		"world_z_2d":       1.0,
		"goal_mode":        "PRIORBASED",
		"goal_threshold":   0.2,
		"reset_threshold":  0.3,
		"horizon":          1.5,
		"segment_count":    3,
		"basis_degree":     5,
		"v_max_x":          3.0,
		"v_max_y":          3.0,
		"v_max_z":          1.0,
		"a_max_x":          5.0,
		"a_max_y":          5.0,
		"a_max_z":          2.0,
		"collision_radius": "sum",
		"jerk_weight":      1.0,
		"snap_weight":      0.1,
		"deviation_weight": 0.01,
		"sfc_step_size":    0.2,
		"sfc_max_steps":    10,
	}
}

func TestDecodeValidConfiguration(t *testing.T) {
	cfg, err := Decode(validAttributes())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.SegmentDuration(), test.ShouldAlmostEqual, 0.5)
	test.That(t, cfg.GoalPolicyMode(), test.ShouldEqual, 0) // PRIORBASED
}

func TestDecodeRejectsBadWorldDimension(t *testing.T) {
	attrs := validAttributes()
	attrs["world_dimension"] = 4
	_, err := Decode(attrs)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDecodeRejectsUnknownGoalMode(t *testing.T) {
	attrs := validAttributes()
	attrs["goal_mode"] = "BOGUS"
	_, err := Decode(attrs)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPlannerConfigCarriesWeights(t *testing.T) {
	cfg, err := Decode(validAttributes())
	test.That(t, err, test.ShouldBeNil)
	pc := cfg.PlannerConfig()
	test.That(t, pc.Weights.Jerk, test.ShouldEqual, 1.0)
	test.That(t, pc.SegmentCount, test.ShouldEqual, 3)
	test.That(t, pc.RadiusPolicy, test.ShouldEqual, lsc.RadiusSum)
}

func TestPlannerConfigMapsMaxRadiusPolicy(t *testing.T) {
	attrs := validAttributes()
	attrs["collision_radius"] = "max"
	cfg, err := Decode(attrs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.PlannerConfig().RadiusPolicy, test.ShouldEqual, lsc.RadiusMax)
}

func TestDecodeRejectsUnknownRadiusPolicy(t *testing.T) {
	attrs := validAttributes()
	attrs["collision_radius"] = "bogus"
	_, err := Decode(attrs)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewPlannerWiresGoalMode(t *testing.T) {
	attrs := validAttributes()
	attrs["goal_mode"] = "RIGHTHANDRULE"
	cfg, err := Decode(attrs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.GoalPolicyMode().String(), test.ShouldEqual, "RIGHTHANDRULE")

	agent := &obstacle.Agent{ID: 1}
	p := cfg.NewPlanner(agent, nil, logging.NewTestLogger())
	test.That(t, p, test.ShouldNotBeNil)
	test.That(t, p.Agent(), test.ShouldEqual, agent)
}
