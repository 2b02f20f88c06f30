package planner

import (
	"go.uber.org/multierr"

	"go.viam.com/trajplan/corridor/lsc"
	"go.viam.com/trajplan/corridor/sfc"
	"go.viam.com/trajplan/diagnostics"
	"go.viam.com/trajplan/distancemap"
	"go.viam.com/trajplan/geometry"
	"go.viam.com/trajplan/logging"
	"go.viam.com/trajplan/obstacle"
	"go.viam.com/trajplan/qp"
	"go.viam.com/trajplan/trajectory"
	"go.viam.com/trajplan/warmstart"
)

// YieldThreshold is N in §4.8's deadlock-avoidance rule: the number of consecutive INFEASIBLE
// ticks before an agent enters yielding mode.
const YieldThreshold = 3

// ClearStreak is how many consecutive alert-free ticks are required before collision_alert is
// allowed to drop, preventing flapping (SPEC_FULL supplemented feature "collision-alert decay").
const ClearStreak = 2

// Config bundles the per-agent planning parameters that stay fixed across ticks (§6
// Configuration), except for goal_mode which is captured by the GoalPolicy passed to New.
type Config struct {
	SegmentDuration float64
	SegmentCount    int
	Degree          int
	Dimension       int
	PlaneZ          float64

	GoalThreshold  float64
	ResetThreshold float64

	Weights             qp.Weights
	SFC                 sfc.Params
	HardCollisionMargin float64
	RadiusPolicy        lsc.RadiusPolicy

	YieldBoxHalfExtent float64
}

// Planner owns one agent's replanning state across ticks: the state machine (§4.7), the
// deadlock-avoidance yield tracker and collision-alert hysteresis (§4.8), and the orchestration
// of warm start -> LSC -> SFC -> QP into a single Plan call (§4.6).
type Planner struct {
	agent      *obstacle.Agent
	goalPolicy GoalPolicy
	dmap       distancemap.DistanceMap
	adapter    *qp.Adapter
	cfg        Config
	logger     logging.Logger

	state           State
	landingComplete bool

	consecutiveInfeasible int
	yielding              bool

	collisionAlert bool
	clearStreak    int

	tick uint64
}

// New constructs a Planner for agent, starting in the WAIT state.
func New(agent *obstacle.Agent, goalPolicy GoalPolicy, dmap distancemap.DistanceMap, cfg Config, logger logging.Logger) *Planner {
	return &Planner{
		agent:      agent,
		goalPolicy: goalPolicy,
		dmap:       dmap,
		adapter:    qp.NewAdapter(logger),
		cfg:        cfg,
		logger:     logger,
		state:      WAIT,
	}
}

// Plan runs one replanning tick (§4.6, §4.7, §4.8).
//
// observed, when non-nil, is the externally reported state for a disturbance override (§4.7):
// the agent's integrated state is replaced by it, with velocity and acceleration zeroed, before
// replanning proceeds, whenever it drifts from the internally integrated state by more than
// ResetThreshold. Absent an observation, the current state is the "ideal state" integrated one
// segment forward along the previously published trajectory (§6 Inputs: current state is
// "mutually exclusive with the internal ideal state integrated from the previous plan").
// neighbors is this tick's snapshot of known agent/obstacle states (§5 Ordering); priorities
// carries every known agent's current Priority, keyed by id, including the caller's own (self
// uses PriorityOf(agent) if its own id is absent).
func (p *Planner) Plan(neighbors obstacle.Snapshot, priorities map[int]obstacle.Priority, observed *obstacle.State) (*trajectory.Trajectory, ExitStatus, diagnostics.TickReport) {
	p.tick++
	report := diagnostics.TickReport{AgentID: p.agent.ID, Tick: p.tick}

	if p.state == LAND {
		// Control has been handed to the command executor; no planning until landing
		// completes (§4.7).
		return p.agent.PublishedTrajectory, SUCCESS, report
	}

	p.integrateState(observed)

	if !p.resolveGoal(neighbors) {
		return nil, WAITFORROSMSG, report
	}

	rec := &diagnostics.Recorder{}

	var warm *trajectory.Trajectory
	var err error
	rec.Phase("warmstart", func() {
		warm, err = warmstart.Generate(p.agent, warmstart.Params{
			SegmentDuration: p.cfg.SegmentDuration,
			SegmentCount:    p.cfg.SegmentCount,
			Degree:          p.cfg.Degree,
		})
	})
	if err != nil {
		report.Timings = rec.Timings()
		return nil, INITTRAJGENERATIONFAIL, report
	}

	selfPriority, ok := priorities[p.agent.ID]
	if !ok {
		selfPriority = obstacle.PriorityOf(p.agent)
	}
	var lscResult lsc.Result
	rec.Phase("lsc", func() {
		lscResult = lsc.Build(warm, neighbors.All(), priorities, lsc.Params{
			SelfID:              p.agent.ID,
			SelfRadius:          p.agent.Radius,
			SelfDownwash:        p.agent.Downwash,
			SelfPriority:        selfPriority,
			SegmentDuration:     p.cfg.SegmentDuration,
			SegmentCount:        p.cfg.SegmentCount,
			Degree:              p.cfg.Degree,
			HardCollisionMargin: p.cfg.HardCollisionMargin,
			RadiusPolicy:        p.cfg.RadiusPolicy,
		}, p.logger)
	})

	var boxes []sfc.Box
	var sfcErr error
	if p.dmap != nil {
		sfcParams := p.cfg.SFC
		sfcParams.SelfRadius = p.agent.Radius
		rec.Phase("sfc", func() {
			boxes, sfcErr = sfc.Build(warm, p.dmap, sfcParams)
		})
	}

	if len(lscResult.Failures) > 0 && p.logger != nil {
		p.logger.Warnw("some LSC constraints failed this tick", "count", len(lscResult.Failures), "err", multierr.Combine(lscResult.Failures...))
	}
	report.LSCFailures = len(lscResult.Failures)
	if sfcErr != nil {
		report.Timings = rec.Timings()
		p.updateAlert(true)
		report.CollisionAlert = p.collisionAlert
		return nil, CONSTRAINTGENERATIONFAIL, report
	}

	problem := &qp.Problem{
		StartTime:       warm.StartTime,
		Degree:          p.cfg.Degree,
		SegmentCount:    p.cfg.SegmentCount,
		SegmentDuration: p.cfg.SegmentDuration,
		Dimension:       p.cfg.Dimension,
		PlaneZ:          p.cfg.PlaneZ,
		Initial:         p.agent.Current,
		WarmStart:       warm,
		MaxVelocity:     p.agent.MaxVelocity,
		MaxAcceleration: p.agent.MaxAcceleration,
		LSCs:            lscResult.Constraints,
		SFCs:            boxes,
		Weights:         p.cfg.Weights,
	}

	var traj *trajectory.Trajectory
	var status qp.Status
	var alert bool
	var qpErr error
	rec.Phase("qp", func() {
		traj, status, alert, qpErr = p.adapter.Plan(problem)
	})
	report.Timings = rec.Timings()
	report.LSCConstraints = len(lscResult.Constraints)
	report.SFCConstraints = len(boxes)
	report.QPStatus = status

	if qpErr != nil || traj == nil {
		p.updateAlert(true)
		report.CollisionAlert = p.collisionAlert
		return nil, QPFAIL, report
	}

	p.updateYield(status)
	p.updateAlert(alert || lscResult.CollisionAlert)
	report.CollisionAlert = p.collisionAlert

	p.agent.PublishedTrajectory = traj
	return traj, SUCCESS, report
}

// integrateState advances the agent's current state for this tick: a disturbance override (§4.7)
// when observed drifts from the last integrated state by more than ResetThreshold, otherwise the
// ideal state one segment duration into the previously published trajectory (since the agent is
// assumed to have flown it), or left untouched on an agent's very first tick.
func (p *Planner) integrateState(observed *obstacle.State) {
	if observed != nil && geometry.Distance(observed.Position, p.agent.Current.Position) > p.cfg.ResetThreshold {
		p.agent.Current = obstacle.State{Position: observed.Position}
		return
	}
	if p.agent.PublishedTrajectory == nil {
		return
	}
	prev := p.agent.PublishedTrajectory
	at := prev.StartTime + p.cfg.SegmentDuration
	p.agent.Current = obstacle.State{
		Position:     prev.Position(at),
		Velocity:     prev.Velocity(at),
		Acceleration: prev.Acceleration(at),
	}
}

// resolveGoal applies the state machine's goal-assignment rule (§4.7), then the pluggable goal
// policy against this tick's neighbor snapshot, then the yielding override (§4.8) if active. It
// returns false when the planner has no goal to pursue yet (WAIT).
func (p *Planner) resolveGoal(neighbors obstacle.Snapshot) bool {
	switch p.state {
	case WAIT:
		return false
	case GOTO:
		p.agent.CurrentGoal = p.agent.DesiredGoal
	case PATROL:
		if geometry.Distance(p.agent.Current.Position, p.agent.DesiredGoal) < p.cfg.GoalThreshold {
			p.agent.StartPoint, p.agent.DesiredGoal = p.agent.DesiredGoal, p.agent.StartPoint
		}
		p.agent.CurrentGoal = p.agent.DesiredGoal
	case GOBACK:
		p.agent.CurrentGoal = p.agent.StartPoint
	}

	if p.goalPolicy != nil {
		p.agent.CurrentGoal = p.goalPolicy.SelectGoal(p.agent, neighbors)
	}

	if p.yielding {
		p.agent.CurrentGoal = p.yieldGoal()
	}
	return true
}

// yieldGoal clamps the desired goal into a box of half-extent cfg.YieldBoxHalfExtent around the
// agent's current position, the deadlock-avoidance override of §4.8.
func (p *Planner) yieldGoal() geometry.Vector {
	half := p.cfg.YieldBoxHalfExtent
	if half <= 0 {
		half = 1
	}
	pos := p.agent.Current.Position
	goal := p.agent.DesiredGoal
	clampAxis := func(center, v, h float64) float64 {
		if v < center-h {
			return center - h
		}
		if v > center+h {
			return center + h
		}
		return v
	}
	return geometry.Vector{
		X: clampAxis(pos.X, goal.X, half),
		Y: clampAxis(pos.Y, goal.Y, half),
		Z: clampAxis(pos.Z, goal.Z, half),
	}
}

func (p *Planner) updateYield(status qp.Status) {
	if status == qp.INFEASIBLE {
		p.consecutiveInfeasible++
	} else {
		p.consecutiveInfeasible = 0
		p.yielding = false
	}
	if p.consecutiveInfeasible >= YieldThreshold {
		p.yielding = true
	}
}

func (p *Planner) updateAlert(raised bool) {
	if raised {
		p.collisionAlert = true
		p.clearStreak = 0
		return
	}
	if !p.collisionAlert {
		return
	}
	p.clearStreak++
	if p.clearStreak >= ClearStreak {
		p.collisionAlert = false
		p.clearStreak = 0
	}
}

// IsYielding reports whether the planner is currently in deadlock-avoidance yielding mode.
func (p *Planner) IsYielding() bool {
	return p.yielding
}

// CollisionAlert reports the latched, hysteresis-decayed collision alert state (§4.8, SPEC_FULL
// supplemented feature "collision-alert decay").
func (p *Planner) CollisionAlert() bool {
	return p.collisionAlert
}

// Agent exposes the underlying agent state for the coordination layer.
func (p *Planner) Agent() *obstacle.Agent {
	return p.agent
}
