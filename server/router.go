package main

import (
	"github.com/rs/zerolog/log"

	"github.com/gosuda/roomchat/wire"
)

// Router fans chat and typing events out to a room's current members.
// Broadcasting to a room with no members is a no-op, not an error.
type Router struct {
	reg *Registry
}

func NewRouter(reg *Registry) *Router {
	return &Router{reg: reg}
}

// BroadcastMessage delivers msg to every member of room, sender included;
// the sender needs the server-stamped time like everyone else.
func (r *Router) BroadcastMessage(room string, msg wire.Message) {
	env, err := wire.NewEnvelope(wire.EventChatMessage, msg)
	if err != nil {
		log.Debug().Err(err).Str("room", room).Msg("encode chat message")
		return
	}
	for _, c := range r.reg.Members(room) {
		c.push(env)
	}
}

// BroadcastTyping notifies every member of room except the sender that name
// is typing.
func (r *Router) BroadcastTyping(room string, sender *conn, name string) {
	env, err := wire.NewEnvelope(wire.EventTyping, name)
	if err != nil {
		log.Debug().Err(err).Str("room", room).Msg("encode typing")
		return
	}
	for _, c := range r.reg.Members(room) {
		if c == sender {
			continue
		}
		c.push(env)
	}
}
