// Package world owns the authoritative simulation state. A World is not safe
// for concurrent use; callers serialize every method call (see hub.Hub).
package world

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sportsracer/repman/internal/entity"
	"github.com/sportsracer/repman/internal/geom"
	"github.com/sportsracer/repman/logging"
	"github.com/sportsracer/repman/logging/simulation"
)

// ErrNoFreeTile is returned by New when walls cover every integer position
// of the world, which would make free-position sampling spin forever.
var ErrNoFreeTile = errors.New("world: walls leave no free tile")

// Deps bundles runtime dependencies required to construct a World.
type Deps struct {
	Publisher logging.Publisher
	Clock     logging.Clock
	RNG       RNGFactory
}

// World holds walls, collectibles, players and the simulation clock.
type World struct {
	cfg    Config
	bounds geom.Bounds

	walls     []*entity.Wall
	obstacles []entity.Obstacle
	topFlops  []*entity.TopFlop
	players   []*entity.Player
	respawns  respawnQueue

	timer     float64
	tick      uint64
	lastTick  time.Time
	hasTicked bool

	clock     logging.Clock
	rng       *rand.Rand
	publisher logging.Publisher

	nextPlayerID  uint64
	nextTopFlopID uint64
}

// New builds a world from cfg and spawns cfg.TopFlopCount collectibles,
// alternating top and flop starting with top.
func New(cfg Config, deps Deps) (*World, error) {
	normalized := cfg.normalized()

	factory := deps.RNG
	if factory == nil {
		factory = NewDeterministicRNG
	}
	clock := deps.Clock
	if clock == nil {
		clock = logging.SystemClock{}
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	w := &World{
		cfg:       normalized,
		bounds:    geom.FromOrigin(float64(normalized.Width), float64(normalized.Height)),
		clock:     clock,
		rng:       factory(normalized.Seed, "world"),
		publisher: publisher,
	}
	for _, pos := range normalized.Walls {
		wall := entity.NewWall(pos.X, pos.Y)
		w.walls = append(w.walls, wall)
		w.obstacles = append(w.obstacles, wall)
	}
	if w.freeTileCount() == 0 {
		return nil, fmt.Errorf("%w (%dx%d, %d walls)", ErrNoFreeTile, normalized.Width, normalized.Height, len(w.walls))
	}

	for i := 0; i < normalized.TopFlopCount; i++ {
		kind := entity.KindTop
		if i%2 == 1 {
			kind = entity.KindFlop
		}
		w.SpawnTopFlop(kind)
	}
	return w, nil
}

// NewDefault builds the standard arena.
func NewDefault(deps Deps) (*World, error) {
	return New(DefaultConfig(), deps)
}

func (w *World) Config() Config      { return w.cfg }
func (w *World) Bounds() geom.Bounds { return w.bounds }
func (w *World) Timer() float64      { return w.timer }
func (w *World) TickCount() uint64   { return w.tick }
func (w *World) NumPlayers() int     { return len(w.players) }
func (w *World) NumTopFlops() int    { return len(w.topFlops) }
func (w *World) PendingRespawns() int {
	return w.respawns.Len()
}

// AddPlayer places a new player at a free position and returns its ID.
func (w *World) AddPlayer(name string) (string, geom.Position) {
	w.nextPlayerID++
	id := fmt.Sprintf("player-%d", w.nextPlayerID)
	pos := w.RandomFreePosition()
	w.players = append(w.players, entity.NewPlayer(id, name, pos, w.cfg.Tuning))
	return id, pos
}

// RemovePlayer deletes the player with id. It reports false if no such
// player exists, which makes repeated removal harmless.
func (w *World) RemovePlayer(id string) (*entity.Player, bool) {
	for i, p := range w.players {
		if p.ID() == id {
			w.players = append(w.players[:i], w.players[i+1:]...)
			return p, true
		}
	}
	return nil, false
}

// ApplyInput forwards w/a/s/d key state to the player with id.
func (w *World) ApplyInput(id string, up, left, down, right bool) bool {
	p := w.player(id)
	if p == nil {
		return false
	}
	p.Input(up, left, down, right)
	return true
}

// PlayerPoints reports the point total of the player with id.
func (w *World) PlayerPoints(id string) (int, bool) {
	p := w.player(id)
	if p == nil {
		return 0, false
	}
	return p.Points(), true
}

func (w *World) player(id string) *entity.Player {
	for _, p := range w.players {
		if p.ID() == id {
			return p
		}
	}
	return nil
}

// SpawnTopFlop adds a collectible of kind at a free position with a random
// heading.
func (w *World) SpawnTopFlop(kind entity.Kind) *entity.TopFlop {
	w.nextTopFlopID++
	id := fmt.Sprintf("topflop-%d", w.nextTopFlopID)
	tf := entity.NewTopFlop(id, w.RandomFreePosition(), RandomAngle(w.rng), kind, w.cfg.Tuning)
	w.topFlops = append(w.topFlops, tf)
	return tf
}

// RandomFreePosition draws integer positions from [0,width]x[0,height] until
// one lies outside every wall. New guarantees at least one such position
// exists.
func (w *World) RandomFreePosition() geom.Position {
	for {
		pos := geom.Pos(
			float64(w.rng.Intn(w.cfg.Width+1)),
			float64(w.rng.Intn(w.cfg.Height+1)),
		)
		if !w.occupied(pos) {
			return pos
		}
	}
}

func (w *World) occupied(pos geom.Position) bool {
	for _, wall := range w.walls {
		if wall.CollidesWith(pos) {
			return true
		}
	}
	return false
}

func (w *World) freeTileCount() int {
	free := 0
	for x := 0; x <= w.cfg.Width; x++ {
		for y := 0; y <= w.cfg.Height; y++ {
			if !w.occupied(geom.Pos(float64(x), float64(y))) {
				free++
			}
		}
	}
	return free
}

// TickReport summarizes one Tick.
type TickReport struct {
	Tick      uint64
	Delta     float64
	Collected int
	Respawned int
}

// Tick advances the simulation by the wall-clock time since the previous
// tick (zero on the first). Due respawns fire first, then every player moves
// and collects, then every remaining collectible wanders.
func (w *World) Tick(ctx context.Context) TickReport {
	now := w.clock.Now()
	delta := 0.0
	if w.hasTicked {
		delta = max(now.Sub(w.lastTick).Seconds(), 0)
	}
	w.lastTick = now
	w.hasTicked = true
	w.tick++

	report := TickReport{Tick: w.tick, Delta: delta}

	for _, kind := range w.respawns.popDue(now) {
		tf := w.SpawnTopFlop(kind)
		report.Respawned++
		simulation.TopFlopRespawned(ctx, w.publisher, w.tick, simulation.RespawnedPayload{
			Kind: string(kind),
			X:    tf.Pos().X,
			Y:    tf.Pos().Y,
		})
	}

	for _, p := range w.players {
		p.Move(delta, &w.bounds, w.obstacles)
		for _, tf := range p.Collect(w.topFlops) {
			w.removeTopFlop(tf)
			w.respawns.push(tf.Kind(), now.Add(w.cfg.RespawnDelay))
			report.Collected++
			simulation.TopFlopCollected(ctx, w.publisher, w.tick,
				logging.EntityRef{ID: p.ID(), Kind: logging.EntityKindPlayer},
				simulation.CollectedPayload{Kind: string(tf.Kind()), Delta: tf.Kind().Points(), Points: p.Points()},
			)
		}
	}

	for _, tf := range w.topFlops {
		tf.Randomize(now, w.rng)
		tf.Move(delta, &w.bounds, w.obstacles)
	}

	w.timer += delta
	return report
}

func (w *World) removeTopFlop(target *entity.TopFlop) {
	for i, tf := range w.topFlops {
		if tf == target {
			w.topFlops = append(w.topFlops[:i], w.topFlops[i+1:]...)
			return
		}
	}
}
