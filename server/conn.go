package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/roomchat/wire"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	sendBufferSize = 64
)

// conn is one live websocket session, from upgrade to disconnect.
// name and room are guarded by the registry lock.
type conn struct {
	id   string
	name string
	room string

	ws   *websocket.Conn
	send chan wire.Envelope
	done chan struct{}
	reg  *Registry
	rt   *Router

	mu     sync.Mutex
	closed bool
}

func newConn(ws *websocket.Conn, reg *Registry, rt *Router) *conn {
	return &conn{
		id:   uuid.NewString(),
		ws:   ws,
		send: make(chan wire.Envelope, sendBufferSize),
		done: make(chan struct{}),
		reg:  reg,
		rt:   rt,
	}
}

func (c *conn) readLoop() {
	defer c.close()
	c.ws.SetReadLimit(1 << 20)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("conn", c.id).Msg("read message")
			return
		}
		var env wire.Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			log.Debug().Err(err).Str("conn", c.id).Msg("bad envelope")
			continue
		}
		c.dispatch(env)
	}
}

// dispatch handles one inbound event. The protocol has no error channel, so
// undecodable payloads are logged and skipped.
func (c *conn) dispatch(env wire.Envelope) {
	switch env.Event {
	case wire.EventSetUsername:
		var name string
		if err := env.Decode(&name); err != nil {
			log.Debug().Err(err).Str("conn", c.id).Msg("bad username payload")
			return
		}
		c.reg.SetUsername(c, name)
	case wire.EventJoinRoom:
		var room string
		if err := env.Decode(&room); err != nil {
			log.Debug().Err(err).Str("conn", c.id).Msg("bad room payload")
			return
		}
		c.reg.JoinRoom(c, room)
	case wire.EventChatMessage:
		var req wire.ChatSend
		if err := env.Decode(&req); err != nil {
			log.Debug().Err(err).Str("conn", c.id).Msg("bad chat payload")
			return
		}
		c.rt.BroadcastMessage(req.Room, wire.Message{
			User: c.reg.Username(c),
			Msg:  req.Msg,
			Time: wire.Stamp(time.Now()),
		})
	case wire.EventTyping:
		var room string
		if err := env.Decode(&room); err != nil {
			log.Debug().Err(err).Str("conn", c.id).Msg("bad typing payload")
			return
		}
		c.rt.BroadcastTyping(room, c, c.reg.Username(c))
	default:
		log.Debug().Str("event", env.Event).Str("conn", c.id).Msg("unknown event")
	}
}

func (c *conn) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case env := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(env); err != nil {
				log.Debug().Err(err).Str("conn", c.id).Msg("write json")
				return
			}
		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// push queues env for delivery. A conn that disconnected between the member
// snapshot and the push silently drops the event.
func (c *conn) push(env wire.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- env:
	default:
		// drop oldest to avoid blocking
		select {
		case <-c.send:
		default:
		}
		c.send <- env
	}
}

func (c *conn) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	c.reg.Remove(c)
	close(c.done)
	if c.ws != nil {
		_ = c.ws.Close()
	}
}
