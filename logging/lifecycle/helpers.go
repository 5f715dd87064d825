package lifecycle

import (
	"context"

	"github.com/sportsracer/repman/logging"
)

const (
	// EventPlayerJoined is emitted when a session's join creates a player.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerLeft is emitted when a player is removed from the world.
	EventPlayerLeft logging.EventType = "lifecycle.player_left"
)

const (
	ReasonLeave      = "leave"
	ReasonDisconnect = "disconnect"
)

// PlayerJoinedPayload captures spawn metadata for a new player.
type PlayerJoinedPayload struct {
	Name   string  `json:"name"`
	SpawnX float64 `json:"spawnX"`
	SpawnY float64 `json:"spawnY"`
}

// PlayerLeftPayload captures why a player left and the points it held.
type PlayerLeftPayload struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Points int    `json:"points"`
}

// PlayerJoined publishes a player join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerJoinedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerJoined,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
	})
}

// PlayerLeft publishes a player removal event.
func PlayerLeft(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerLeftPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerLeft,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
	})
}
