package simulation

import (
	"context"

	"github.com/sportsracer/repman/logging"
)

const (
	// EventTopFlopCollected is emitted when a player picks up a top or flop.
	EventTopFlopCollected logging.EventType = "simulation.topflop_collected"
	// EventTopFlopRespawned is emitted when a deferred respawn fires.
	EventTopFlopRespawned logging.EventType = "simulation.topflop_respawned"
	// EventTickBudgetOverrun is emitted when a tick takes longer than the
	// tick interval.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
)

// CollectedPayload reports a pickup and the collector's new total.
type CollectedPayload struct {
	Kind   string `json:"kind"`
	Delta  int    `json:"delta"`
	Points int    `json:"points"`
}

// RespawnedPayload reports where a replacement collectible appeared.
type RespawnedPayload struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// TickBudgetOverrunPayload captures timing details for a slow tick.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Streak         uint64  `json:"streak"`
}

// TopFlopCollected publishes a collection event. The player is the actor.
func TopFlopCollected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CollectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTopFlopCollected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "simulation",
		Payload:  payload,
	})
}

// TopFlopRespawned publishes a debug event for a completed respawn.
func TopFlopRespawned(ctx context.Context, pub logging.Publisher, tick uint64, payload RespawnedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTopFlopRespawned,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityDebug,
		Category: "simulation",
		Payload:  payload,
	})
}

// TickBudgetOverrun publishes a warning when a tick exceeds its budget.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityWarn,
		Category: "simulation",
		Payload:  payload,
	})
}
