package proto

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsracer/repman/internal/world"
)

func TestDecodeClientMessages(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    ClientMessage
	}{
		{"join", `{"msg":"join","name":"alice"}`, Join{Msg: MsgJoin, Name: "alice"}},
		{"input", `{"msg":"input","w":true,"a":false,"s":false,"d":true}`, Input{Msg: MsgInput, W: true, D: true}},
		{"input missing keys", `{"msg":"input","a":true}`, Input{Msg: MsgInput, A: true}},
		{"leave", `{"msg":"leave"}`, Leave{Msg: MsgLeave}},
		{"extra fields ignored", `{"msg":"leave","reason":"bye"}`, Leave{Msg: MsgLeave}},
		{"unknown", `{"msg":"dance"}`, Unknown{Msg: "dance"}},
		{"missing discriminator", `{"name":"alice"}`, Unknown{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(JSON, []byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Type(), got.Type())
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `hello`},
		{"array", `[1,2]`},
		{"wrong discriminator type", `{"msg":5}`},
		{"wrong field type", `{"msg":"input","w":"yes"}`},
		{"wrong name type", `{"msg":"join","name":7}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(JSON, []byte(tt.payload))
			require.Error(t, err)
			assert.True(t, IsParseError(err))
			assert.Contains(t, err.Error(), "could not parse message: ")
		})
	}
}

func TestDecodeEmptyPayload(t *testing.T) {
	_, err := Decode(JSON, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyPayload))
	assert.True(t, IsParseError(err))
}

func TestMsgpackDecode(t *testing.T) {
	data, err := Msgpack.Marshal(map[string]any{"msg": "input", "w": true, "d": true})
	require.NoError(t, err)

	got, err := Decode(Msgpack, data)
	require.NoError(t, err)
	assert.Equal(t, Input{Msg: MsgInput, W: true, D: true}, got)

	_, err = Decode(Msgpack, []byte{0xc1})
	assert.True(t, IsParseError(err))
}

func TestStateEncodesInlineSnapshot(t *testing.T) {
	w, err := world.New(world.Config{Width: 4, Height: 3, TopFlopCount: 1}, world.Deps{})
	require.NoError(t, err)
	w.AddPlayer("alice")

	data, err := JSON.Marshal(NewState(w.Snapshot()))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "state", decoded["msg"])
	assert.EqualValues(t, 4, decoded["width"])
	assert.EqualValues(t, 3, decoded["height"])
	assert.Len(t, decoded["players"], 1)
	assert.Len(t, decoded["topsFlops"], 1)
	assert.Empty(t, decoded["walls"])
	assert.NotContains(t, decoded, "Snapshot")
}

func TestStateMsgpackUsesJSONFieldNames(t *testing.T) {
	w, err := world.New(world.Config{Width: 4, Height: 3, TopFlopCount: 2}, world.Deps{})
	require.NoError(t, err)
	w.AddPlayer("bob")

	data, err := Msgpack.Marshal(NewState(w.Snapshot()))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, Msgpack.Unmarshal(data, &decoded))
	assert.Equal(t, "state", decoded["msg"])
	assert.Contains(t, decoded, "topsFlops")
	assert.Contains(t, decoded, "players")
	assert.Len(t, decoded["topsFlops"], 2)
}

func TestReplyMessages(t *testing.T) {
	data, err := JSON.Marshal(NewJoined())
	require.NoError(t, err)
	assert.JSONEq(t, `{"msg":"joined"}`, string(data))

	data, err = JSON.Marshal(NewError("already joined"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"msg":"error","description":"already joined"}`, string(data))
}

func TestCodecByName(t *testing.T) {
	c, err := CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, CodecJSON, c.Name())
	assert.False(t, c.Binary())

	c, err = CodecByName("msgpack")
	require.NoError(t, err)
	assert.Equal(t, CodecMsgpack, c.Name())
	assert.True(t, c.Binary())

	_, err = CodecByName("xml")
	assert.True(t, errors.Is(err, ErrUnknownCodec))
}
