package entity

import "github.com/sportsracer/repman/internal/geom"

// WallSize is the edge length of every wall tile.
var WallSize = geom.Pos(1, 1)

// Wall is a fixed 1x1 tile anchored at its top-left corner.
type Wall struct {
	pos geom.Position
}

func NewWall(x, y float64) *Wall {
	return &Wall{pos: geom.Pos(x, y)}
}

func (w *Wall) Pos() geom.Position { return w.pos }

// Footprint returns the closed rectangle the wall occupies.
func (w *Wall) Footprint() geom.Bounds {
	return geom.NewBounds(w.pos, w.pos.Add(WallSize))
}

func (w *Wall) CollidesWith(p geom.Position) bool {
	return w.Footprint().Contains(p)
}
