package entity

import "github.com/sportsracer/repman/internal/geom"

// Player is a user-controlled actor with a running point total.
type Player struct {
	Body
	id     string
	name   string
	points int
	tuning Tuning
}

func NewPlayer(id, name string, pos geom.Position, tuning Tuning) *Player {
	return &Player{
		Body:   NewBody(pos, 0),
		id:     id,
		name:   name,
		tuning: tuning.normalized(),
	}
}

func (p *Player) ID() string   { return p.id }
func (p *Player) Name() string { return p.name }
func (p *Player) Points() int  { return p.points }

// Input maps key state to speeds: w drives forward, d and a turn clockwise
// and counter-clockwise. There is no reverse; s is accepted and ignored.
func (p *Player) Input(w, a, s, d bool) {
	p.moveSpeed = float64(b2i(w)) * p.tuning.PlayerMoveSpeed
	p.turnSpeed = float64(b2i(d)-b2i(a)) * p.tuning.PlayerTurnSpeed
}

// Collect returns the collectibles within reach, in input order, and applies
// their point value. Removing them from the world is the caller's job.
func (p *Player) Collect(items []*TopFlop) []*TopFlop {
	var collected []*TopFlop
	for _, item := range items {
		if p.pos.DistanceTo(item.Pos()) > p.tuning.CollectDistance {
			continue
		}
		p.points += item.Kind().Points()
		collected = append(collected, item)
	}
	return collected
}

func b2i(v bool) int {
	if v {
		return 1
	}
	return 0
}
