package session

// State is a session's position in the connection lifecycle.
type State int32

const (
	Connected State = iota
	InGame
	Left
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case InGame:
		return "in_game"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}
