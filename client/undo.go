package main

// UndoBuffer keeps the most recently cleared history per room so one clear
// can be taken back. One slot per room: a later clear overwrites the earlier
// snapshot, and a restore leaves the snapshot in place, so it can be
// re-restored until the next clear.
type UndoBuffer struct {
	snaps map[string][]byte
}

func NewUndoBuffer() *UndoBuffer {
	return &UndoBuffer{snaps: make(map[string][]byte)}
}

// Capture records raw as the only recoverable snapshot for room. A nil raw
// (clearing an already-empty history) still overwrites the slot, matching
// the single-undo behavior.
func (u *UndoBuffer) Capture(room string, raw []byte) {
	u.snaps[room] = raw
}

// Restore writes the snapshot back into store. Returns false when there is
// nothing to restore; that is a no-op, not an error.
func (u *UndoBuffer) Restore(room string, store *HistoryStore) (bool, error) {
	raw := u.snaps[room]
	if raw == nil {
		return false, nil
	}
	if err := store.ReplaceRaw(room, raw); err != nil {
		return false, err
	}
	return true, nil
}
