package main

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/roomchat/wire"
)

var errInvalidHistory = errors.New("history content is not a message array")

// HistoryStore is the per-room append log of messages seen by this client.
// Each room's history lives under one key as a JSON array in arrival order.
type HistoryStore struct {
	kv kvStore
}

func NewHistoryStore(kv kvStore) *HistoryStore {
	return &HistoryStore{kv: kv}
}

// Load returns the full ordered history for room. Missing or corrupt stored
// content degrades to an empty history, never an error.
func (h *HistoryStore) Load(room string) []wire.Message {
	raw, ok, err := h.kv.Get(wire.HistoryKey(room))
	if err != nil {
		log.Debug().Err(err).Str("room", room).Msg("load history")
		return nil
	}
	if !ok {
		return nil
	}
	var msgs []wire.Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		log.Debug().Err(err).Str("room", room).Msg("corrupt history, treating as empty")
		return nil
	}
	return msgs
}

// Raw returns the stored bytes for room as-is, for export.
func (h *HistoryStore) Raw(room string) ([]byte, bool) {
	raw, ok, err := h.kv.Get(wire.HistoryKey(room))
	if err != nil || !ok {
		return nil, false
	}
	return raw, true
}

// Append adds msg to the end of room's history. The write is durable before
// Append returns.
func (h *HistoryStore) Append(room string, msg wire.Message) error {
	msgs := append(h.Load(room), msg)
	raw, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	return h.kv.Set(wire.HistoryKey(room), raw)
}

// Replace overwrites room's history with msgs.
func (h *HistoryStore) Replace(room string, msgs []wire.Message) error {
	if msgs == nil {
		msgs = []wire.Message{}
	}
	raw, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	return h.kv.Set(wire.HistoryKey(room), raw)
}

// ReplaceRaw overwrites room's history with raw, which must decode to a
// message array. Anything else is rejected and the store is left unchanged.
func (h *HistoryStore) ReplaceRaw(room string, raw []byte) error {
	var msgs []wire.Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return errInvalidHistory
	}
	if msgs == nil {
		// "null" decodes cleanly but is not an array
		return errInvalidHistory
	}
	return h.kv.Set(wire.HistoryKey(room), raw)
}

// Clear empties room's history and returns the pre-clear content so the
// caller can hand it to the undo buffer. Returns nil when nothing was stored.
func (h *HistoryStore) Clear(room string) ([]byte, error) {
	raw, ok, err := h.kv.Get(wire.HistoryKey(room))
	if err != nil {
		return nil, err
	}
	if err := h.kv.Delete(wire.HistoryKey(room)); err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return raw, nil
}
