// Package config decodes the enumerated options of §6 Configuration from a loosely-typed
// map/YAML blob into a concrete, validated struct: an `Attributes` map decoded into a typed
// `Configuration` with a `Validate` method.
package config

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/trajplan/corridor/lsc"
	"go.viam.com/trajplan/corridor/sfc"
	"go.viam.com/trajplan/distancemap"
	"go.viam.com/trajplan/logging"
	"go.viam.com/trajplan/obstacle"
	"go.viam.com/trajplan/planner"
	"go.viam.com/trajplan/qp"
)

// ErrInvalidConfiguration wraps every validation failure in Configuration.Validate.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Configuration is the full set of enumerated options from §6.
type Configuration struct {
	WorldDimension int     `mapstructure:"world_dimension"`
	WorldZ2D       float64 `mapstructure:"world_z_2d"`

	GoalMode      string  `mapstructure:"goal_mode"`
	GoalThreshold float64 `mapstructure:"goal_threshold"`

	ResetThreshold float64 `mapstructure:"reset_threshold"`

	Horizon      float64 `mapstructure:"horizon"`
	SegmentCount int     `mapstructure:"segment_count"`
	BasisDegree  int     `mapstructure:"basis_degree"`

	VMaxX float64 `mapstructure:"v_max_x"`
	VMaxY float64 `mapstructure:"v_max_y"`
	VMaxZ float64 `mapstructure:"v_max_z"`
	AMaxX float64 `mapstructure:"a_max_x"`
	AMaxY float64 `mapstructure:"a_max_y"`
	AMaxZ float64 `mapstructure:"a_max_z"`

	// CollisionRadiusPolicy selects how an agent's reported radius is combined with a
	// neighbor's: "sum" (default, radius_i + radius_j) or "max" (max(radius_i, radius_j)), a
	// policy knob the distilled spec names but does not enumerate options for.
	CollisionRadiusPolicy string `mapstructure:"collision_radius"`

	// MultisimExperiment is decoded from multisim_experiment and stored here only: PlannerConfig
	// does not carry it and no other package reads it, so it does not change planner behavior.
	MultisimExperiment bool `mapstructure:"multisim_experiment"`

	JerkWeight      float64 `mapstructure:"jerk_weight"`
	SnapWeight      float64 `mapstructure:"snap_weight"`
	DeviationWeight float64 `mapstructure:"deviation_weight"`

	SFCStepSize float64 `mapstructure:"sfc_step_size"`
	SFCMaxSteps int     `mapstructure:"sfc_max_steps"`

	HardCollisionMargin float64 `mapstructure:"hard_collision_margin"`
	YieldBoxHalfExtent  float64 `mapstructure:"yield_box_half_extent"`
}

// Decode converts a generic attributes map (as would arrive from YAML/JSON mission config) into
// a Configuration.
func Decode(attributes map[string]interface{}) (*Configuration, error) {
	var cfg Configuration
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "building configuration decoder")
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "decoding configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every enumerated option is within its allowed range (§6 Configuration). Only
// configuration errors at construction are fatal (§7).
func (c *Configuration) Validate() error {
	if c.WorldDimension != 2 && c.WorldDimension != 3 {
		return errors.Wrapf(ErrInvalidConfiguration, "world_dimension must be 2 or 3, got %d", c.WorldDimension)
	}
	switch GoalMode(c.GoalMode) {
	case GoalModePriorBased, GoalModeRightHandRule, GoalModeGridBased:
	default:
		return errors.Wrapf(ErrInvalidConfiguration, "unknown goal_mode %q", c.GoalMode)
	}
	if c.GoalThreshold <= 0 {
		return errors.Wrap(ErrInvalidConfiguration, "goal_threshold must be positive")
	}
	if c.ResetThreshold <= 0 {
		return errors.Wrap(ErrInvalidConfiguration, "reset_threshold must be positive")
	}
	if c.Horizon <= 0 || c.SegmentCount <= 0 || c.BasisDegree <= 0 {
		return errors.Wrap(ErrInvalidConfiguration, "horizon, segment_count, and basis_degree must be positive")
	}
	if c.SegmentCount > 0 && c.Horizon/float64(c.SegmentCount) <= 0 {
		return errors.Wrap(ErrInvalidConfiguration, "segment duration derived from horizon/segment_count must be positive")
	}
	if c.CollisionRadiusPolicy != "" && !strings.EqualFold(c.CollisionRadiusPolicy, "sum") && !strings.EqualFold(c.CollisionRadiusPolicy, "max") {
		return errors.Wrapf(ErrInvalidConfiguration, "collision_radius must be \"sum\" or \"max\", got %q", c.CollisionRadiusPolicy)
	}
	return nil
}

// GoalMode names the string values accepted by Configuration.GoalMode.
type GoalMode string

const (
	GoalModePriorBased    GoalMode = "PRIORBASED"
	GoalModeRightHandRule GoalMode = "RIGHTHANDRULE"
	GoalModeGridBased     GoalMode = "GRIDBASEDPLANNER"
)

// SegmentDuration derives Delta from the configured horizon and segment count.
func (c *Configuration) SegmentDuration() float64 {
	return c.Horizon / float64(c.SegmentCount)
}

// PlannerConfig derives a planner.Config from the decoded configuration.
func (c *Configuration) PlannerConfig() planner.Config {
	return planner.Config{
		SegmentDuration: c.SegmentDuration(),
		SegmentCount:    c.SegmentCount,
		Degree:          c.BasisDegree,
		Dimension:       c.WorldDimension,
		PlaneZ:          c.WorldZ2D,
		GoalThreshold:   c.GoalThreshold,
		ResetThreshold:  c.ResetThreshold,
		Weights: qp.Weights{
			Jerk:      c.JerkWeight,
			Snap:      c.SnapWeight,
			Deviation: c.DeviationWeight,
		},
		SFC: sfc.Params{
			StepSize: c.SFCStepSize,
			MaxSteps: c.SFCMaxSteps,
		},
		HardCollisionMargin: c.HardCollisionMargin,
		YieldBoxHalfExtent:  c.YieldBoxHalfExtent,
		RadiusPolicy:        c.radiusPolicy(),
	}
}

// radiusPolicy converts the decoded collision_radius string into the lsc package's enum,
// defaulting to the conservative RadiusSum when unset.
func (c *Configuration) radiusPolicy() lsc.RadiusPolicy {
	if strings.EqualFold(c.CollisionRadiusPolicy, "max") {
		return lsc.RadiusMax
	}
	return lsc.RadiusSum
}

// GoalPolicyMode converts the decoded string into the planner package's GoalMode.
func (c *Configuration) GoalPolicyMode() planner.GoalMode {
	switch GoalMode(c.GoalMode) {
	case GoalModeRightHandRule:
		return planner.RIGHTHANDRULE
	case GoalModeGridBased:
		return planner.GRIDBASEDPLANNER
	default:
		return planner.PRIORBASED
	}
}

// NewPlanner builds a planner.Planner for agent from this Configuration: the derived
// planner.Config, the distancemap.DistanceMap collaborator it plans SFCs against, and the
// GoalPolicy named by goal_mode (§6 Configuration), so a mission's goal_mode setting actually
// reaches the per-tick goal selection rather than only validating as a string.
func (c *Configuration) NewPlanner(agent *obstacle.Agent, dmap distancemap.DistanceMap, logger logging.Logger) *planner.Planner {
	return planner.New(agent, planner.NewGoalPolicy(c.GoalPolicyMode()), dmap, c.PlannerConfig(), logger)
}
