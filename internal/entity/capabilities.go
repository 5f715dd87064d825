// Package entity implements the world's actors as small capability sets
// assembled by embedding rather than a type hierarchy.
package entity

import (
	"math/rand"
	"time"

	"github.com/sportsracer/repman/internal/geom"
)

// Positioned is anything with a location in the world.
type Positioned interface {
	Pos() geom.Position
}

// Obstacle blocks movement into its footprint.
type Obstacle interface {
	Positioned
	CollidesWith(p geom.Position) bool
}

// Movable advances along its heading, refusing moves that would leave the
// world or enter an obstacle.
type Movable interface {
	Positioned
	Angle() float64
	Colliding() bool
	Move(delta float64, bounds *geom.Bounds, walls []Obstacle)
}

// Controllable maps directional key state to motion.
type Controllable interface {
	Movable
	Input(w, a, s, d bool)
}

// Collectible wanders on its own until a player picks it up.
type Collectible interface {
	Movable
	Kind() Kind
	Randomize(now time.Time, rng *rand.Rand)
}

var (
	_ Obstacle     = (*Wall)(nil)
	_ Controllable = (*Player)(nil)
	_ Collectible  = (*TopFlop)(nil)
)
