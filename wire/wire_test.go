package wire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := NewEnvelope(EventChatMessage, ChatSend{Msg: "hi", Room: "general"})
	require.NoError(t, err)

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var got Envelope
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, EventChatMessage, got.Event)

	var payload ChatSend
	require.NoError(t, got.Decode(&payload))
	require.Equal(t, "hi", payload.Msg)
	require.Equal(t, "general", payload.Room)
}

func TestEnvelopeStringPayload(t *testing.T) {
	env, err := NewEnvelope(EventJoinRoom, "tech")
	require.NoError(t, err)

	var room string
	require.NoError(t, env.Decode(&room))
	require.Equal(t, "tech", room)
}

func TestMessageJSONShape(t *testing.T) {
	raw, err := json.Marshal(Message{User: "alice", Msg: "hello", Time: "14:05"})
	require.NoError(t, err)
	require.JSONEq(t, `{"user":"alice","msg":"hello","time":"14:05"}`, string(raw))
}

func TestStamp(t *testing.T) {
	ts := time.Date(2025, 3, 9, 14, 5, 33, 0, time.UTC)
	require.Equal(t, "14:05", Stamp(ts))
}

func TestNamingHelpers(t *testing.T) {
	require.Equal(t, "chat-history-general", HistoryKey("general"))
	require.Equal(t, "general-chat-history.json", ExportName("general"))
}
