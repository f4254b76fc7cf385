package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosuda/roomchat/wire"
)

func TestUndoRoundTrip(t *testing.T) {
	h := NewHistoryStore(newMemStore())
	u := NewUndoBuffer()
	require.NoError(t, h.Append("general", wire.Message{User: "a", Msg: "one", Time: "10:00"}))
	require.NoError(t, h.Append("general", wire.Message{User: "b", Msg: "two", Time: "10:01"}))
	want, ok := h.Raw("general")
	require.True(t, ok)

	raw, err := h.Clear("general")
	require.NoError(t, err)
	u.Capture("general", raw)
	require.Empty(t, h.Load("general"))

	restored, err := u.Restore("general", h)
	require.NoError(t, err)
	require.True(t, restored)

	got, ok := h.Raw("general")
	require.True(t, ok)
	require.Equal(t, want, got, "restore must reproduce byte-identical content")
}

func TestUndoRestoreWithoutClear(t *testing.T) {
	h := NewHistoryStore(newMemStore())
	u := NewUndoBuffer()

	restored, err := u.Restore("general", h)
	require.NoError(t, err)
	require.False(t, restored)
	require.Empty(t, h.Load("general"))
}

func TestUndoSnapshotSurvivesRestore(t *testing.T) {
	h := NewHistoryStore(newMemStore())
	u := NewUndoBuffer()
	require.NoError(t, h.Append("general", wire.Message{User: "a", Msg: "hi", Time: "10:00"}))

	raw, err := h.Clear("general")
	require.NoError(t, err)
	u.Capture("general", raw)

	for i := 0; i < 2; i++ {
		restored, err := u.Restore("general", h)
		require.NoError(t, err)
		require.True(t, restored, "snapshot persists until overwritten, restore %d", i)
	}
}

func TestUndoSecondClearOverwrites(t *testing.T) {
	h := NewHistoryStore(newMemStore())
	u := NewUndoBuffer()

	require.NoError(t, h.Append("general", wire.Message{User: "a", Msg: "first", Time: "10:00"}))
	raw, err := h.Clear("general")
	require.NoError(t, err)
	u.Capture("general", raw)

	require.NoError(t, h.Append("general", wire.Message{User: "b", Msg: "second", Time: "10:05"}))
	raw, err = h.Clear("general")
	require.NoError(t, err)
	u.Capture("general", raw)

	restored, err := u.Restore("general", h)
	require.NoError(t, err)
	require.True(t, restored)

	msgs := h.Load("general")
	require.Len(t, msgs, 1)
	require.Equal(t, "second", msgs[0].Msg, "only the most recent clear is undoable")
}

func TestUndoSlotsArePerRoom(t *testing.T) {
	h := NewHistoryStore(newMemStore())
	u := NewUndoBuffer()

	require.NoError(t, h.Append("a", wire.Message{User: "x", Msg: "room a", Time: "10:00"}))
	raw, err := h.Clear("a")
	require.NoError(t, err)
	u.Capture("a", raw)

	restored, err := u.Restore("b", h)
	require.NoError(t, err)
	require.False(t, restored)

	restored, err = u.Restore("a", h)
	require.NoError(t, err)
	require.True(t, restored)
}

func TestUndoCaptureNilClearsSlot(t *testing.T) {
	h := NewHistoryStore(newMemStore())
	u := NewUndoBuffer()
	u.Capture("general", []byte(`[{"user":"a","msg":"hi","time":"10:00"}]`))

	// clearing an already-empty history overwrites the slot with nothing
	u.Capture("general", nil)
	restored, err := u.Restore("general", h)
	require.NoError(t, err)
	require.False(t, restored)
}
