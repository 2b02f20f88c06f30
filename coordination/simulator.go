package coordination

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"go.viam.com/trajplan/diagnostics"
	"go.viam.com/trajplan/logging"
	"go.viam.com/trajplan/obstacle"
	"go.viam.com/trajplan/planner"
	"go.viam.com/utils"
)

// member is one co-simulated agent: its planner and the neighbor cache collecting what the bus
// has delivered to it.
type member struct {
	id      int
	plan    *planner.Planner
	cache   *obstacle.NeighborCache
	history []diagnostics.TickReport
}

// Simulator runs N in-process planner.Planner instances exchanging trajectories over an in-memory
// Bus, sufficient to drive the end-to-end scenarios of §8 without depending on a real pub/sub
// collaborator (SPEC_FULL supplemented feature "a co-simulation harness"). Each agent is an
// independent worker with no shared mutable state beyond the Bus (§5 Concurrency Model); a
// semaphore caps how many agents may be inside their whole Plan call (which includes the QP
// solve) at once.
type Simulator struct {
	mu      sync.Mutex
	clock   *clock.Mock
	bus     *Bus
	members []*member
	sem     *semaphore.Weighted
	logger  logging.Logger

	tickCount uint64
}

// NewSimulator constructs a Simulator around an injectable mock clock (§5 Determinism: tick
// boundaries advance explicitly, never by sleeping on the wall clock). maxConcurrentSolves bounds
// how many agents may be inside their Plan call (bus delivery, planning, and the QP solve within
// it) simultaneously; 0 means unbounded.
func NewSimulator(clk *clock.Mock, maxConcurrentSolves int64, logger logging.Logger) *Simulator {
	var sem *semaphore.Weighted
	if maxConcurrentSolves > 0 {
		sem = semaphore.NewWeighted(maxConcurrentSolves)
	}
	return &Simulator{clock: clk, bus: NewBus(), sem: sem, logger: logger}
}

// AddAgent registers a planner as a co-simulated agent, identified by its own agent id.
func (s *Simulator) AddAgent(id int, p *planner.Planner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append(s.members, &member{id: id, plan: p, cache: obstacle.NewNeighborCache()})
}

// Bus exposes the underlying message bus, e.g. to inject a non-cooperative DYNAMIC or STATIC
// obstacle message directly.
func (s *Simulator) Bus() *Bus {
	return s.bus
}

// Tick runs one replanning round for every registered agent (§4.8): each reads the bus snapshot
// delivered so far, replans concurrently with every other agent (bounded by the solver
// semaphore), and publishes its result before Tick returns. A unique tick id (via uuid) tags each
// agent's "tick complete" debug log line for this round; the recorded TickReports do not carry it.
func (s *Simulator) Tick(ctx context.Context) (map[int]planner.ExitStatus, error) {
	s.mu.Lock()
	members := append([]*member(nil), s.members...)
	s.tickCount++
	s.mu.Unlock()

	tickID := uuid.New()
	results := make(map[int]planner.ExitStatus, len(members))
	var resultsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, m := range members {
		m := m
		g.Go(func() error {
			if s.sem != nil {
				if err := s.sem.Acquire(gctx, 1); err != nil {
					return err
				}
				defer s.sem.Release(1)
			}

			s.bus.Deliver(m.id, m.cache)
			priorities := s.bus.Priorities()

			traj, status, report := m.plan.Plan(m.cache.Snapshot(), priorities, nil)
			resultsMu.Lock()
			results[m.id] = status
			m.history = append(m.history, report)
			resultsMu.Unlock()

			if status == planner.SUCCESS && traj != nil {
				s.bus.Publish(m.plan.Agent().AsObstacle(m.plan.CollisionAlert()))
			}
			if s.logger != nil {
				s.logger.Debugw("tick complete", "tick", tickID.String(), "agent", m.id, "status", status.String())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunSteps runs n ticks in sequence, advancing the simulator's injected clock by dt before each
// one (§5 Determinism: no wall-clock sleeps, the clock is advanced explicitly).
func (s *Simulator) RunSteps(ctx context.Context, n int, dt time.Duration) ([]map[int]planner.ExitStatus, error) {
	results := make([]map[int]planner.ExitStatus, 0, n)
	for i := 0; i < n; i++ {
		s.clock.Add(dt)
		res, err := s.Tick(ctx)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// History returns every recorded TickReport for the given agent id, in tick order.
func (s *Simulator) History(id int) []diagnostics.TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.id == id {
			return append([]diagnostics.TickReport(nil), m.history...)
		}
	}
	return nil
}

// RunBackground launches a persistent goroutine that calls Tick once per clock tick of period dt
// until ctx is done, recovering from any agent-induced panic via utils.PanicCapturingGo so one
// misbehaving planner cannot take down the whole simulation.
func (s *Simulator) RunBackground(ctx context.Context, dt time.Duration) {
	ticker := s.clock.Ticker(dt)
	utils.PanicCapturingGo(func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Tick(ctx); err != nil && s.logger != nil {
					s.logger.Warnw("tick failed", "err", err)
				}
			}
		}
	})
}
