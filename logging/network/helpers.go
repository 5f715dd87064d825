package network

import (
	"context"

	"github.com/sportsracer/repman/logging"
)

const (
	// EventProtocolViolation is emitted when a session receives a message
	// that is not valid in its current state.
	EventProtocolViolation logging.EventType = "network.protocol_violation"
	// EventMalformedPayload is emitted when a session cannot decode a message.
	EventMalformedPayload logging.EventType = "network.malformed_payload"
)

// ViolationPayload describes a rejected message.
type ViolationPayload struct {
	State       string `json:"state"`
	Msg         string `json:"msg,omitempty"`
	Description string `json:"description"`
}

// ProtocolViolation publishes a warning for a message rejected by the
// session state machine.
func ProtocolViolation(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload ViolationPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventProtocolViolation,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: "network",
		Payload:  payload,
	})
}

// MalformedPayload publishes a warning for an undecodable message.
func MalformedPayload(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload ViolationPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMalformedPayload,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: "network",
		Payload:  payload,
	})
}
