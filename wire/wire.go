// Package wire defines the event names and payloads exchanged between the
// roomchat server and its clients, plus the shared naming helpers for the
// client-local history keys and export files.
package wire

import (
	"encoding/json"
	"time"
)

// Event names. Kept as the original protocol spells them, spaces included.
const (
	EventSetUsername = "set username"
	EventJoinRoom    = "join room"
	EventChatMessage = "chat message"
	EventTyping      = "typing"
)

// DefaultRoom is the room a connection notionally starts in before the
// client's first explicit join.
const DefaultRoom = "general"

// Message is a chat message as broadcast by the server. The server stamps
// Time; clients never set it.
type Message struct {
	User string `json:"user"`
	Msg  string `json:"msg"`
	Time string `json:"time"`
}

// ChatSend is the client-to-server payload of a chat message event.
type ChatSend struct {
	Msg  string `json:"msg"`
	Room string `json:"room"`
}

// Envelope frames one event on the websocket. Data holds the event payload
// still encoded, so each side decodes only the events it handles.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope encodes payload into an envelope for event.
func NewEnvelope(event string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: data}, nil
}

// Decode unmarshals the envelope payload into v.
func (e Envelope) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Stamp renders t as the short wall-clock time shown next to messages.
func Stamp(t time.Time) string {
	return t.Format("15:04")
}

// HistoryKey is the storage key for a room's local history.
func HistoryKey(room string) string {
	return "chat-history-" + room
}

// ExportName is the file name used when exporting a room's history.
func ExportName(room string) string {
	return room + "-chat-history.json"
}
