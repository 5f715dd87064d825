package proto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrEmptyPayload is returned when a frame carries no bytes.
	ErrEmptyPayload = errors.New("proto: empty payload")
	// ErrUnknownCodec is returned by CodecByName for unsupported encodings.
	ErrUnknownCodec = errors.New("proto: unknown codec")
)

const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// Codec serializes messages for one transport encoding.
type Codec interface {
	Name() string
	// Binary reports whether frames must be sent as binary rather than text.
	Binary() bool
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON is the default text codec.
var JSON Codec = jsonCodec{}

// Msgpack is an opt-in binary codec using the same field names as JSON.
var Msgpack Codec = msgpackCodec{}

// CodecByName resolves an encoding name; the empty name selects JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", CodecJSON:
		return JSON, nil
	case CodecMsgpack:
		return Msgpack, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return CodecJSON }
func (jsonCodec) Binary() bool { return false }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string { return CodecMsgpack }
func (msgpackCodec) Binary() bool { return true }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
