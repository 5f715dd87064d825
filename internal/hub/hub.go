// Package hub owns the single mutation domain around the world and drives
// the periodic tick and snapshot broadcast.
package hub

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sportsracer/repman/internal/entity"
	"github.com/sportsracer/repman/internal/geom"
	"github.com/sportsracer/repman/internal/net/proto"
	"github.com/sportsracer/repman/internal/session"
	"github.com/sportsracer/repman/internal/telemetry"
	"github.com/sportsracer/repman/internal/world"
	"github.com/sportsracer/repman/logging"
	"github.com/sportsracer/repman/logging/simulation"
)

// DefaultTickInterval is the broadcast period.
const DefaultTickInterval = 50 * time.Millisecond

const (
	metricTicks            = "hub.ticks"
	metricSnapshotsSent    = "hub.snapshots_sent"
	metricSnapshotsSkipped = "hub.snapshots_skipped"
	metricEncodeFailures   = "hub.encode_failures"
	metricSessions         = "hub.sessions"
	metricTickOverruns     = "hub.tick_overruns"
)

type Config struct {
	TickInterval time.Duration
	Logger       telemetry.Logger
	Metrics      telemetry.Metrics
	Publisher    logging.Publisher
	Clock        logging.Clock
}

func DefaultConfig() Config {
	return Config{TickInterval: DefaultTickInterval}
}

func (cfg Config) normalized() Config {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = telemetry.WrapLogger(log.Default())
	}
	if cfg.Publisher == nil {
		cfg.Publisher = logging.NopPublisher()
	}
	if cfg.Clock == nil {
		cfg.Clock = logging.SystemClock{}
	}
	return cfg
}

// Hub serializes every world mutation behind one mutex and fans snapshots
// out to registered sessions. It implements session.World.
type Hub struct {
	cfg Config

	mu    sync.Mutex
	world *world.World

	sessionsMu sync.RWMutex
	sessions   map[string]*session.Session
	closed     bool

	overrunStreak uint64
}

func New(w *world.World, cfg Config) *Hub {
	return &Hub{
		cfg:      cfg.normalized(),
		world:    w,
		sessions: make(map[string]*session.Session),
	}
}

func (h *Hub) AddPlayer(name string) (string, geom.Position) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.AddPlayer(name)
}

func (h *Hub) RemovePlayer(id string) (*entity.Player, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.RemovePlayer(id)
}

func (h *Hub) ApplyInput(id string, up, left, down, right bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.ApplyInput(id, up, left, down, right)
}

func (h *Hub) TickCount() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.TickCount()
}

// Connect creates a session bound to this hub and registers it. It returns
// nil once the hub is closed.
func (h *Hub) Connect(transport session.Transport, codec proto.Codec) *session.Session {
	s := session.New(session.Deps{
		World:     h,
		Transport: transport,
		Codec:     codec,
		Publisher: h.cfg.Publisher,
	})
	h.sessionsMu.Lock()
	defer h.sessionsMu.Unlock()
	if h.closed {
		return nil
	}
	h.sessions[s.ID()] = s
	h.recordSessionsLocked()
	return s
}

// Disconnect tears the session down and forgets it. Safe to repeat.
func (h *Hub) Disconnect(ctx context.Context, s *session.Session) {
	if s == nil {
		return
	}
	s.Close(ctx)
	h.sessionsMu.Lock()
	delete(h.sessions, s.ID())
	h.recordSessionsLocked()
	h.sessionsMu.Unlock()
}

func (h *Hub) recordSessionsLocked() {
	if h.cfg.Metrics != nil {
		h.cfg.Metrics.Store(metricSessions, uint64(len(h.sessions)))
	}
}

// StepResult reports what one broadcast period did.
type StepResult struct {
	world.TickReport
	Duration  time.Duration
	Delivered int
	Skipped   int
}

// Step advances the world once and offers the resulting snapshot to every
// InGame session. Messages that arrive while the world is locked are
// applied after this tick and first show up in the next snapshot. Step is
// not safe to call from more than one goroutine.
func (h *Hub) Step(ctx context.Context) StepResult {
	start := h.cfg.Clock.Now()

	h.mu.Lock()
	report := h.world.Tick(ctx)
	snapshot := h.world.Snapshot()
	h.mu.Unlock()

	result := StepResult{TickReport: report}
	result.Delivered, result.Skipped = h.broadcast(snapshot)
	result.Duration = h.cfg.Clock.Now().Sub(start)

	h.observe(ctx, result)
	return result
}

func (h *Hub) broadcast(snapshot world.Snapshot) (int, int) {
	msg := proto.NewState(snapshot)
	frames := make(map[string][]byte, 2)
	delivered, skipped := 0, 0

	h.sessionsMu.RLock()
	defer h.sessionsMu.RUnlock()
	for _, s := range h.sessions {
		if s.State() != session.InGame {
			continue
		}
		codec := s.Codec()
		frame, ok := frames[codec.Name()]
		if !ok {
			encoded, err := codec.Marshal(msg)
			if err != nil {
				h.cfg.Logger.Printf("failed to encode state snapshot as %s: %v", codec.Name(), err)
				if h.cfg.Metrics != nil {
					h.cfg.Metrics.Add(metricEncodeFailures, 1)
				}
			}
			frames[codec.Name()] = encoded
			frame = encoded
		}
		if frame != nil && s.Deliver(frame) {
			delivered++
		} else {
			skipped++
		}
	}
	return delivered, skipped
}

func (h *Hub) observe(ctx context.Context, result StepResult) {
	if m := h.cfg.Metrics; m != nil {
		m.Add(metricTicks, 1)
		m.Add(metricSnapshotsSent, uint64(result.Delivered))
		m.Add(metricSnapshotsSkipped, uint64(result.Skipped))
	}

	budget := h.cfg.TickInterval
	if result.Duration <= budget {
		h.overrunStreak = 0
		return
	}
	h.overrunStreak++
	if h.cfg.Metrics != nil {
		h.cfg.Metrics.Add(metricTickOverruns, 1)
	}
	simulation.TickBudgetOverrun(ctx, h.cfg.Publisher, result.Tick, simulation.TickBudgetOverrunPayload{
		DurationMillis: result.Duration.Milliseconds(),
		BudgetMillis:   budget.Milliseconds(),
		Ratio:          float64(result.Duration) / float64(budget),
		Streak:         h.overrunStreak,
	})
}

// Run ticks every TickInterval until ctx is cancelled, then closes the hub.
// Ticks never overlap; a slow tick delays the next one.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.cfg.TickInterval)
	defer ticker.Stop()
	defer h.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Step(ctx)
		}
	}
}

// Close stops accepting sessions and closes every open transport. Read
// loops observe the closure and disconnect their sessions.
func (h *Hub) Close() {
	h.sessionsMu.Lock()
	if h.closed {
		h.sessionsMu.Unlock()
		return
	}
	h.closed = true
	open := make([]*session.Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		open = append(open, s)
	}
	h.sessionsMu.Unlock()

	for _, s := range open {
		if t := s.Transport(); t != nil {
			if err := t.Close(); err != nil {
				h.cfg.Logger.Printf("failed to close session %s: %v", s.ID(), err)
			}
		}
	}
}

// Diagnostics is a point-in-time summary for the diagnostics endpoint.
type Diagnostics struct {
	Tick      uint64  `json:"tick"`
	Timer     float64 `json:"timer"`
	Players   int     `json:"players"`
	TopFlops  int     `json:"topsFlops"`
	Respawns  int     `json:"pendingRespawns"`
	Sessions  int     `json:"sessions"`
	InGame    int     `json:"inGame"`
	TickEvery string  `json:"tickInterval"`
}

func (h *Hub) Diagnostics() Diagnostics {
	h.mu.Lock()
	d := Diagnostics{
		Tick:      h.world.TickCount(),
		Timer:     h.world.Timer(),
		Players:   h.world.NumPlayers(),
		TopFlops:  h.world.NumTopFlops(),
		Respawns:  h.world.PendingRespawns(),
		TickEvery: h.cfg.TickInterval.String(),
	}
	h.mu.Unlock()

	h.sessionsMu.RLock()
	defer h.sessionsMu.RUnlock()
	d.Sessions = len(h.sessions)
	for _, s := range h.sessions {
		if s.State() == session.InGame {
			d.InGame++
		}
	}
	return d
}

// Snapshot returns the current world state without advancing it.
func (h *Hub) Snapshot() world.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.Snapshot()
}

var _ session.World = (*Hub)(nil)
