package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/roomchat/wire"
)

const typingQuiet = 2 * time.Second

// ui is what the façade drives on screen.
type ui interface {
	Repaint(room string, msgs []wire.Message)
	Message(msg wire.Message)
	Typing(user string)
	ClearTyping()
	Notice(text string)
	Problem(text string)
}

// Facade keeps the visible conversation, the local history store, and the
// network event stream consistent. All state is touched from a single
// goroutine: network events, user commands, and the typing quiet timer are
// serialized through Run's select loop.
type Facade struct {
	store  *HistoryStore
	undo   *UndoBuffer
	ui     ui
	sendFn func(wire.Envelope) error

	room  string
	quiet time.Duration

	events chan wire.Envelope
	cmds   chan func(*Facade)
	typing *time.Timer
}

func NewFacade(store *HistoryStore, undo *UndoBuffer, u ui, send func(wire.Envelope) error, room string) *Facade {
	return &Facade{
		store:  store,
		undo:   undo,
		ui:     u,
		sendFn: send,
		room:   room,
		quiet:  typingQuiet,
		events: make(chan wire.Envelope, 64),
		cmds:   make(chan func(*Facade), 16),
	}
}

// Deliver hands an inbound server event to the façade's loop.
func (f *Facade) Deliver(env wire.Envelope) {
	f.events <- env
}

// enqueue schedules a user command onto the façade's loop.
func (f *Facade) enqueue(fn func(*Facade)) {
	f.cmds <- fn
}

// Run processes events, commands, and the typing timer until ctx is done.
func (f *Facade) Run(ctx context.Context) {
	f.typing = time.NewTimer(f.quiet)
	if !f.typing.Stop() {
		<-f.typing.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-f.events:
			f.handleEvent(env)
		case fn := <-f.cmds:
			fn(f)
		case <-f.typing.C:
			f.ui.ClearTyping()
		}
	}
}

func (f *Facade) handleEvent(env wire.Envelope) {
	switch env.Event {
	case wire.EventChatMessage:
		var msg wire.Message
		if err := env.Decode(&msg); err != nil {
			log.Debug().Err(err).Msg("bad chat message payload")
			return
		}
		f.ui.Message(msg)
		if err := f.store.Append(f.room, msg); err != nil {
			log.Warn().Err(err).Str("room", f.room).Msg("persist message")
		}
	case wire.EventTyping:
		var name string
		if err := env.Decode(&name); err != nil {
			log.Debug().Err(err).Msg("bad typing payload")
			return
		}
		f.ui.Typing(name)
		f.resetTypingTimer()
	default:
		log.Debug().Str("event", env.Event).Msg("unknown event")
	}
}

// resetTypingTimer restarts the quiet-period countdown. A fresh typing event
// replaces any pending clear rather than stacking another one.
func (f *Facade) resetTypingTimer() {
	if !f.typing.Stop() {
		select {
		case <-f.typing.C:
		default:
		}
	}
	f.typing.Reset(f.quiet)
}

func (f *Facade) emit(event string, payload any) {
	env, err := wire.NewEnvelope(event, payload)
	if err != nil {
		log.Warn().Err(err).Str("event", event).Msg("encode event")
		return
	}
	if err := f.sendFn(env); err != nil {
		log.Warn().Err(err).Str("event", event).Msg("send event")
	}
}

// JoinRoom switches the active room: tells the server, then repaints the
// view from the new room's stored history.
func (f *Facade) JoinRoom(room string) {
	f.emit(wire.EventJoinRoom, room)
	f.room = room
	f.ui.Repaint(room, f.store.Load(room))
}

// Send submits a chat message. Nothing is echoed locally: the message shows
// up when the server broadcast comes back with its stamped time.
func (f *Facade) Send(text string) {
	f.emit(wire.EventChatMessage, wire.ChatSend{Msg: text, Room: f.room})
}

// SendTyping announces typing activity in the active room.
func (f *Facade) SendTyping() {
	f.emit(wire.EventTyping, f.room)
}

// Clear empties the active room's history, keeping the prior content in the
// undo buffer.
func (f *Facade) Clear() {
	raw, err := f.store.Clear(f.room)
	if err != nil {
		f.ui.Problem(fmt.Sprintf("clear failed: %v", err))
		return
	}
	f.undo.Capture(f.room, raw)
	f.ui.Repaint(f.room, nil)
	f.ui.Notice("Chat history cleared. Use /undo to restore.")
}

// Undo restores the last cleared history, if any.
func (f *Facade) Undo() {
	restored, err := f.undo.Restore(f.room, f.store)
	if err != nil {
		f.ui.Problem(fmt.Sprintf("restore failed: %v", err))
		return
	}
	if !restored {
		f.ui.Notice("Nothing to restore.")
		return
	}
	f.ui.Repaint(f.room, f.store.Load(f.room))
	f.ui.Notice("Chat history restored.")
}

// Export writes the active room's stored history, byte for byte, to
// <room>-chat-history.json in the working directory.
func (f *Facade) Export() {
	raw, ok := f.store.Raw(f.room)
	if !ok {
		f.ui.Notice("No history to export.")
		return
	}
	name := wire.ExportName(f.room)
	if err := os.WriteFile(name, raw, 0o644); err != nil {
		f.ui.Problem(fmt.Sprintf("export failed: %v", err))
		return
	}
	f.ui.Notice("Chat history exported to " + name + ".")
}

// Import replaces the active room's history with the contents of path. The
// file must hold a message array; anything else is rejected and the stored
// history is left untouched.
func (f *Facade) Import(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		f.ui.Problem(fmt.Sprintf("import failed: %v", err))
		return
	}
	if err := f.store.ReplaceRaw(f.room, raw); err != nil {
		f.ui.Problem("Invalid file format.")
		return
	}
	f.ui.Repaint(f.room, f.store.Load(f.room))
	f.ui.Notice("Chat history imported.")
}
