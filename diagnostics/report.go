// Package diagnostics captures per-tick planning statistics as a first-class output (§6 Outputs:
// "Planning statistics"), not merely a log line, with an optional rendering path for offline
// inspection.
package diagnostics

import (
	"time"

	"go.viam.com/trajplan/qp"
)

// PhaseTimings breaks wall time down by the phases a tick runs through (§6 Outputs: "wall time
// per phase").
type PhaseTimings struct {
	WarmStart time.Duration
	LSC       time.Duration
	SFC       time.Duration
	QP        time.Duration
}

// Total sums the phase timings.
func (t PhaseTimings) Total() time.Duration {
	return t.WarmStart + t.LSC + t.SFC + t.QP
}

// TickReport is the full statistics record for one replanning tick.
type TickReport struct {
	AgentID        int
	Tick           uint64
	Timings        PhaseTimings
	QPStatus       qp.Status
	LSCConstraints int
	SFCConstraints int
	LSCFailures    int
	CollisionAlert bool
}

// Recorder accumulates PhaseTimings across a single tick by timing closures passed to Phase,
// letting the planner instrument phases without threading time.Now() calls through every call site.
type Recorder struct {
	timings PhaseTimings
}

// Phase runs fn and adds its wall time to the named phase.
func (r *Recorder) Phase(name string, fn func()) {
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	switch name {
	case "warmstart":
		r.timings.WarmStart += elapsed
	case "lsc":
		r.timings.LSC += elapsed
	case "sfc":
		r.timings.SFC += elapsed
	case "qp":
		r.timings.QP += elapsed
	}
}

// Timings returns the accumulated phase timings.
func (r *Recorder) Timings() PhaseTimings {
	return r.timings
}
