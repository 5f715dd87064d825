// Package proto defines the messages exchanged between clients and the
// server. Every message is a flat record discriminated by its "msg" field.
package proto

import "github.com/sportsracer/repman/internal/world"

type MsgType string

const (
	MsgJoin  MsgType = "join"
	MsgInput MsgType = "input"
	MsgLeave MsgType = "leave"

	MsgJoined MsgType = "joined"
	MsgState  MsgType = "state"
	MsgError  MsgType = "error"
)

// Envelope reads only the discriminator of an inbound message.
type Envelope struct {
	Msg MsgType `json:"msg"`
}

// ClientMessage is a decoded client to server message.
type ClientMessage interface {
	Type() MsgType
}

type Join struct {
	Msg  MsgType `json:"msg" jsonschema:"enum=join"`
	Name string  `json:"name"`
}

type Input struct {
	Msg MsgType `json:"msg" jsonschema:"enum=input"`
	W   bool    `json:"w"`
	A   bool    `json:"a"`
	S   bool    `json:"s"`
	D   bool    `json:"d"`
}

type Leave struct {
	Msg MsgType `json:"msg" jsonschema:"enum=leave"`
}

// Unknown carries a discriminator the server does not recognise. It is not
// an error at the codec level; the session decides how to answer it.
type Unknown struct {
	Msg MsgType `json:"msg"`
}

func (Join) Type() MsgType      { return MsgJoin }
func (Input) Type() MsgType     { return MsgInput }
func (Leave) Type() MsgType     { return MsgLeave }
func (u Unknown) Type() MsgType { return u.Msg }

type Joined struct {
	Msg MsgType `json:"msg" jsonschema:"enum=joined"`
}

type Error struct {
	Msg         MsgType `json:"msg" jsonschema:"enum=error"`
	Description string  `json:"description"`
}

// State is a full world snapshot. The snapshot fields are inlined next to
// the discriminator.
type State struct {
	Msg MsgType `json:"msg" jsonschema:"enum=state"`
	world.Snapshot
}

func NewJoined() Joined {
	return Joined{Msg: MsgJoined}
}

func NewError(description string) Error {
	return Error{Msg: MsgError, Description: description}
}

func NewState(snapshot world.Snapshot) State {
	return State{Msg: MsgState, Snapshot: snapshot}
}
