package entity

import "github.com/sportsracer/repman/internal/geom"

// Body is the shared motion state embedded by every movable entity.
type Body struct {
	pos       geom.Position
	angle     float64
	moveSpeed float64
	turnSpeed float64
	colliding bool
}

func NewBody(pos geom.Position, angle float64) Body {
	return Body{pos: pos, angle: angle}
}

func (b *Body) Pos() geom.Position { return b.pos }
func (b *Body) Angle() float64     { return b.angle }
func (b *Body) MoveSpeed() float64 { return b.moveSpeed }
func (b *Body) TurnSpeed() float64 { return b.turnSpeed }

// Colliding reports whether the most recent Move was blocked.
func (b *Body) Colliding() bool { return b.colliding }

// SetMotion sets forward and angular speed directly.
func (b *Body) SetMotion(moveSpeed, turnSpeed float64) {
	b.moveSpeed = moveSpeed
	b.turnSpeed = turnSpeed
}

// Move translates along the current heading by moveSpeed*delta and then
// turns by turnSpeed*delta. The translation is skipped when the candidate
// position is outside bounds (if given) or inside any wall; the turn always
// happens so a blocked body can pivot away.
func (b *Body) Move(delta float64, bounds *geom.Bounds, walls []Obstacle) {
	candidate := b.pos.Add(geom.FromAngle(b.angle).Scale(b.moveSpeed * delta))

	colliding := bounds != nil && !bounds.Contains(candidate)
	for _, wall := range walls {
		if colliding {
			break
		}
		colliding = wall.CollidesWith(candidate)
	}
	b.colliding = colliding

	if !colliding {
		b.pos = candidate
	}
	b.angle += b.turnSpeed * delta
}
