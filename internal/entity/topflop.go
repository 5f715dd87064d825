package entity

import (
	"math"
	"math/rand"
	"time"

	"github.com/sportsracer/repman/internal/geom"
)

// Kind tags a collectible as a top (worth a point) or a flop (costs one).
type Kind string

const (
	KindTop  Kind = "top"
	KindFlop Kind = "flop"
)

func (k Kind) Valid() bool {
	return k == KindTop || k == KindFlop
}

// Points is the score change for collecting k.
func (k Kind) Points() int {
	if k == KindTop {
		return 1
	}
	return -1
}

// TopFlop is a wandering collectible.
type TopFlop struct {
	Body
	id          string
	kind        Kind
	cruiseSpeed float64
}

func NewTopFlop(id string, pos geom.Position, angle float64, kind Kind, tuning Tuning) *TopFlop {
	return &TopFlop{
		Body:        NewBody(pos, angle),
		id:          id,
		kind:        kind,
		cruiseSpeed: tuning.normalized().CruiseSpeed,
	}
}

func (t *TopFlop) ID() string { return t.id }
func (t *TopFlop) Kind() Kind { return t.kind }

// Randomize sets up the next wander step. A collectible that was blocked on
// its last move first swings its heading by 3π/4 plus up to π/2 more. The
// turn rate is sin(seed/1000) where seed is the squared wall-clock
// millisecond count mod 1e6, so every collectible sharing a tick wobbles
// together.
func (t *TopFlop) Randomize(now time.Time, rng *rand.Rand) {
	if t.colliding {
		t.angle += math.Pi*3/4 + uniform(rng)*math.Pi/2
	}
	seed := float64(now.UnixMilli() % 1_000_000)
	seed *= seed
	t.moveSpeed = t.cruiseSpeed
	t.turnSpeed = math.Sin(seed / 1000)
}

func uniform(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}
