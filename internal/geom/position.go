// Package geom holds the immutable 2D values the simulation is built on.
package geom

import "math"

// Position is a point in world units. Methods return new values.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pos(x, y float64) Position {
	return Position{X: x, Y: y}
}

func Origin() Position {
	return Position{}
}

func (p Position) Add(other Position) Position {
	return Position{X: p.X + other.X, Y: p.Y + other.Y}
}

func (p Position) Scale(factor float64) Position {
	return Position{X: p.X * factor, Y: p.Y * factor}
}

// FromAngle returns the unit vector pointing along angle (radians).
func FromAngle(angle float64) Position {
	return Position{X: math.Cos(angle), Y: math.Sin(angle)}
}

func (p Position) DistanceTo(other Position) float64 {
	return math.Hypot(other.X-p.X, other.Y-p.Y)
}
