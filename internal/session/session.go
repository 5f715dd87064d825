// Package session implements the per-connection protocol state machine that
// sits between a client transport and the shared world.
package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sportsracer/repman/internal/entity"
	"github.com/sportsracer/repman/internal/geom"
	"github.com/sportsracer/repman/internal/net/proto"
	"github.com/sportsracer/repman/logging"
	"github.com/sportsracer/repman/logging/lifecycle"
	"github.com/sportsracer/repman/logging/network"
)

// MaxNameLength caps player names, counted in runes.
const MaxNameLength = 32

const (
	errAlreadyJoined = "already joined"
	errNameRequired  = "join requires a name"
)

// World is the mutation surface a session needs. Implementations serialize
// each call against the simulation tick.
type World interface {
	AddPlayer(name string) (string, geom.Position)
	RemovePlayer(id string) (*entity.Player, bool)
	ApplyInput(id string, up, left, down, right bool) bool
	TickCount() uint64
}

// Transport is the outbound half of a client connection.
type Transport interface {
	// Send queues an encoded frame. It reports false when the transport is
	// not writable; the frame is then dropped.
	Send(frame []byte) bool
	Close() error
}

type Deps struct {
	World     World
	Transport Transport
	Codec     proto.Codec
	Publisher logging.Publisher
}

// Session tracks one connection through Connected, InGame and Left.
type Session struct {
	id        string
	world     World
	transport Transport
	codec     proto.Codec
	publisher logging.Publisher

	mu       sync.Mutex
	state    atomic.Int32
	playerID string
	name     string
}

func New(deps Deps) *Session {
	codec := deps.Codec
	if codec == nil {
		codec = proto.JSON
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	s := &Session{
		id:        uuid.NewString(),
		world:     deps.World,
		transport: deps.Transport,
		codec:     codec,
		publisher: publisher,
	}
	s.state.Store(int32(Connected))
	return s
}

func (s *Session) ID() string             { return s.id }
func (s *Session) Codec() proto.Codec     { return s.codec }
func (s *Session) Transport() Transport   { return s.transport }
func (s *Session) State() State           { return State(s.state.Load()) }
func (s *Session) ref() logging.EntityRef { return logging.EntityRef{ID: s.id, Kind: logging.EntityKindSession} }

// PlayerID returns the world ID of the session's player, or "" outside
// InGame.
func (s *Session) PlayerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerID
}

// HandleFrame decodes one inbound frame and applies it.
func (s *Session) HandleFrame(ctx context.Context, frame []byte) {
	msg, err := proto.Decode(s.codec, frame)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() == Left {
		return
	}
	if err != nil {
		network.MalformedPayload(ctx, s.publisher, s.ref(), network.ViolationPayload{
			State:       s.State().String(),
			Description: err.Error(),
		})
		s.reply(proto.NewError(err.Error()))
		return
	}
	s.handle(ctx, msg)
}

// Handle applies an already decoded message.
func (s *Session) Handle(ctx context.Context, msg proto.ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle(ctx, msg)
}

func (s *Session) handle(ctx context.Context, msg proto.ClientMessage) {
	switch s.State() {
	case Connected:
		join, ok := msg.(proto.Join)
		if !ok {
			s.violation(ctx, msg, mustBeOneOf(proto.MsgJoin))
			return
		}
		s.join(ctx, join)
	case InGame:
		switch m := msg.(type) {
		case proto.Input:
			s.world.ApplyInput(s.playerID, m.W, m.A, m.S, m.D)
		case proto.Leave:
			s.leave(ctx, lifecycle.ReasonLeave)
		case proto.Join:
			s.violation(ctx, msg, errAlreadyJoined)
		default:
			s.violation(ctx, msg, mustBeOneOf(proto.MsgInput, proto.MsgLeave))
		}
	case Left:
	}
}

func (s *Session) join(ctx context.Context, msg proto.Join) {
	name := sanitizeName(msg.Name)
	if name == "" {
		s.violation(ctx, msg, errNameRequired)
		return
	}
	id, spawn := s.world.AddPlayer(name)
	s.playerID = id
	s.name = name
	s.reply(proto.NewJoined())
	s.state.Store(int32(InGame))

	lifecycle.PlayerJoined(ctx, s.publisher, s.world.TickCount(),
		logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer},
		lifecycle.PlayerJoinedPayload{Name: name, SpawnX: spawn.X, SpawnY: spawn.Y},
	)
}

// leave removes the player and moves to Left. Callers hold s.mu.
func (s *Session) leave(ctx context.Context, reason string) {
	if s.State() != InGame {
		s.state.Store(int32(Left))
		return
	}
	s.state.Store(int32(Left))
	player, removed := s.world.RemovePlayer(s.playerID)
	if removed {
		lifecycle.PlayerLeft(ctx, s.publisher, s.world.TickCount(),
			logging.EntityRef{ID: s.playerID, Kind: logging.EntityKindPlayer},
			lifecycle.PlayerLeftPayload{Name: s.name, Reason: reason, Points: player.Points()},
		)
	}
	s.playerID = ""
}

// Close handles transport closure as an implicit leave. It is safe to call
// more than once and after an explicit leave.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leave(ctx, lifecycle.ReasonDisconnect)
}

// Deliver offers an encoded snapshot frame. Only InGame sessions accept it.
func (s *Session) Deliver(frame []byte) bool {
	if s.State() != InGame || s.transport == nil {
		return false
	}
	return s.transport.Send(frame)
}

func (s *Session) violation(ctx context.Context, msg proto.ClientMessage, description string) {
	network.ProtocolViolation(ctx, s.publisher, s.ref(), network.ViolationPayload{
		State:       s.State().String(),
		Msg:         string(msg.Type()),
		Description: description,
	})
	s.reply(proto.NewError(description))
}

func (s *Session) reply(msg any) {
	if s.transport == nil {
		return
	}
	frame, err := s.codec.Marshal(msg)
	if err != nil {
		return
	}
	s.transport.Send(frame)
}

func mustBeOneOf(valid ...proto.MsgType) string {
	names := make([]string, len(valid))
	for i, v := range valid {
		names[i] = string(v)
	}
	return "'msg' must be one of " + strings.Join(names, ", ")
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	return strings.TrimSpace(string([]rune(name)[:MaxNameLength]))
}
