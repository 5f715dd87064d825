package entity

import "math"

const (
	// PlayerMoveSpeed is the forward speed of a player holding w, in world
	// units per second.
	PlayerMoveSpeed = 4.0
	// PlayerTurnSpeed is the rotation rate of a player holding a or d, in
	// radians per second.
	PlayerTurnSpeed = math.Pi
	// CollectDistance is the pickup radius around a player.
	CollectDistance = 1.0
	// CruiseSpeed is the constant speed of wandering collectibles.
	CruiseSpeed = 0.5
)

// Tuning carries the motion constants shared by every entity in a world.
type Tuning struct {
	PlayerMoveSpeed float64
	PlayerTurnSpeed float64
	CollectDistance float64
	CruiseSpeed     float64
}

func DefaultTuning() Tuning {
	return Tuning{
		PlayerMoveSpeed: PlayerMoveSpeed,
		PlayerTurnSpeed: PlayerTurnSpeed,
		CollectDistance: CollectDistance,
		CruiseSpeed:     CruiseSpeed,
	}
}

func (t Tuning) normalized() Tuning {
	defaults := DefaultTuning()
	if t.PlayerMoveSpeed <= 0 {
		t.PlayerMoveSpeed = defaults.PlayerMoveSpeed
	}
	if t.PlayerTurnSpeed <= 0 {
		t.PlayerTurnSpeed = defaults.PlayerTurnSpeed
	}
	if t.CollectDistance <= 0 {
		t.CollectDistance = defaults.CollectDistance
	}
	if t.CruiseSpeed <= 0 {
		t.CruiseSpeed = defaults.CruiseSpeed
	}
	return t
}

// Normalized replaces non-positive fields with their defaults.
func (t Tuning) Normalized() Tuning {
	return t.normalized()
}
