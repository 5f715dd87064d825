package world

import (
	"github.com/sportsracer/repman/internal/entity"
	"github.com/sportsracer/repman/internal/geom"
)

// Snapshot is a full copy of the world state suitable for serialization.
type Snapshot struct {
	Tick     uint64         `json:"-"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Timer    float64        `json:"timer"`
	Players  []PlayerState  `json:"players"`
	Walls    []WallState    `json:"walls"`
	TopFlops []TopFlopState `json:"topsFlops"`
}

// MotionState is the shared serialized form of a movable body.
type MotionState struct {
	Pos       geom.Position `json:"pos"`
	Angle     float64       `json:"angle"`
	Colliding bool          `json:"colliding"`
	MoveSpeed float64       `json:"moveSpeed"`
	TurnSpeed float64       `json:"turnSpeed"`
}

type PlayerState struct {
	MotionState
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type WallState struct {
	Pos geom.Position `json:"pos"`
}

type TopFlopState struct {
	MotionState
	TopFlop entity.Kind `json:"topFlop"`
}

func motionOf(b *entity.Body) MotionState {
	return MotionState{
		Pos:       b.Pos(),
		Angle:     b.Angle(),
		Colliding: b.Colliding(),
		MoveSpeed: b.MoveSpeed(),
		TurnSpeed: b.TurnSpeed(),
	}
}

// Snapshot copies the current state. Slices are never nil so they encode
// as empty arrays.
func (w *World) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:     w.tick,
		Width:    w.cfg.Width,
		Height:   w.cfg.Height,
		Timer:    w.timer,
		Players:  make([]PlayerState, 0, len(w.players)),
		Walls:    make([]WallState, 0, len(w.walls)),
		TopFlops: make([]TopFlopState, 0, len(w.topFlops)),
	}
	for _, p := range w.players {
		snap.Players = append(snap.Players, PlayerState{
			MotionState: motionOf(&p.Body),
			Name:        p.Name(),
			Points:      p.Points(),
		})
	}
	for _, wall := range w.walls {
		snap.Walls = append(snap.Walls, WallState{Pos: wall.Pos()})
	}
	for _, tf := range w.topFlops {
		snap.TopFlops = append(snap.TopFlops, TopFlopState{
			MotionState: motionOf(&tf.Body),
			TopFlop:     tf.Kind(),
		})
	}
	return snap
}
