package proto

import (
	"errors"
	"fmt"
)

// ParseError wraps a decoding failure of an inbound frame.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse message: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err came from a malformed frame.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Decode reads one client frame. Unrecognised discriminators decode to
// Unknown without error; frames that cannot be read as the shape their
// discriminator names return a *ParseError.
func Decode(codec Codec, data []byte) (ClientMessage, error) {
	if len(data) == 0 {
		return nil, &ParseError{Err: ErrEmptyPayload}
	}
	var env Envelope
	if err := codec.Unmarshal(data, &env); err != nil {
		return nil, &ParseError{Err: err}
	}
	switch env.Msg {
	case MsgJoin:
		return decodeAs[Join](codec, data)
	case MsgInput:
		return decodeAs[Input](codec, data)
	case MsgLeave:
		return decodeAs[Leave](codec, data)
	default:
		return Unknown{Msg: env.Msg}, nil
	}
}

func decodeAs[T ClientMessage](codec Codec, data []byte) (ClientMessage, error) {
	var out T
	if err := codec.Unmarshal(data, &out); err != nil {
		return nil, &ParseError{Err: err}
	}
	return out, nil
}
