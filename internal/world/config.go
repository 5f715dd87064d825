package world

import (
	"strings"
	"time"

	"github.com/sportsracer/repman/internal/entity"
	"github.com/sportsracer/repman/internal/geom"
)

const (
	DefaultSeed         = "repman"
	DefaultWidth        = 32
	DefaultHeight       = 18
	DefaultTopFlopCount = 16
	DefaultRespawnDelay = 2000 * time.Millisecond
)

// Config describes a world at construction time. Every field is optional;
// zero values fall back to the defaults above.
type Config struct {
	Width        int             `json:"width"`
	Height       int             `json:"height"`
	Walls        []geom.Position `json:"walls,omitempty"`
	TopFlopCount int             `json:"topFlopCount"`
	RespawnDelay time.Duration   `json:"respawnDelay"`
	Seed         string          `json:"seed"`
	Tuning       entity.Tuning   `json:"tuning"`
}

func (cfg Config) normalized() Config {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	if normalized.Width <= 0 {
		normalized.Width = DefaultWidth
	}
	if normalized.Height <= 0 {
		normalized.Height = DefaultHeight
	}
	if normalized.TopFlopCount < 0 {
		normalized.TopFlopCount = 0
	}
	if normalized.RespawnDelay <= 0 {
		normalized.RespawnDelay = DefaultRespawnDelay
	}
	normalized.Tuning = normalized.Tuning.Normalized()
	if len(cfg.Walls) > 0 {
		normalized.Walls = append([]geom.Position(nil), cfg.Walls...)
	}
	return normalized
}

func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

// DefaultConfig is the 32x18 arena with three wall columns and sixteen
// collectibles.
func DefaultConfig() Config {
	return Config{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Walls:        DefaultWalls(),
		TopFlopCount: DefaultTopFlopCount,
		RespawnDelay: DefaultRespawnDelay,
		Seed:         DefaultSeed,
		Tuning:       entity.DefaultTuning(),
	}
}

// DefaultWalls lays out three eight-tile columns: two hanging from the
// bottom edge at x=7 and x=23 and one from the top edge at x=15.
func DefaultWalls() []geom.Position {
	walls := make([]geom.Position, 0, 24)
	for i := 0; i < 8; i++ {
		walls = append(walls,
			geom.Pos(7, float64(i+10)),
			geom.Pos(15, float64(i)),
			geom.Pos(23, float64(i+10)),
		)
	}
	return walls
}
