package main

import "sync"

// Registry is the single source of truth for which connection carries which
// display name and sits in which room. A room exists only as its member set:
// created lazily on first join, pruned when the last member leaves.
type Registry struct {
	mu    sync.Mutex
	conns map[string]*conn
	rooms map[string]map[string]*conn
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*conn),
		rooms: make(map[string]map[string]*conn),
	}
}

// Add registers a freshly upgraded connection. The connection is not
// subscribed to any room until it asks to join one.
func (g *Registry) Add(c *conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.conns[c.id] = c
}

// SetUsername overwrites the display name. Names are labels, not identities:
// no validation, no uniqueness.
func (g *Registry) SetUsername(c *conn, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c.name = name
}

// JoinRoom moves the connection into room, leaving its previous room first.
// A connection belongs to exactly one room at a time.
func (g *Registry) JoinRoom(c *conn, room string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.leaveLocked(c)
	members, ok := g.rooms[room]
	if !ok {
		members = make(map[string]*conn)
		g.rooms[room] = members
	}
	members[c.id] = c
	c.room = room
}

// Remove drops the connection from the registry and from whatever room set it
// was in. Safe to call more than once.
func (g *Registry) Remove(c *conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.conns[c.id]; !ok {
		return
	}
	g.leaveLocked(c)
	delete(g.conns, c.id)
}

func (g *Registry) leaveLocked(c *conn) {
	if c.room == "" {
		return
	}
	if members, ok := g.rooms[c.room]; ok {
		delete(members, c.id)
		if len(members) == 0 {
			delete(g.rooms, c.room)
		}
	}
	c.room = ""
}

// Username returns the connection's current display name.
func (g *Registry) Username(c *conn) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return c.name
}

// Members returns a snapshot of the connections currently in room.
func (g *Registry) Members(room string) []*conn {
	g.mu.Lock()
	defer g.mu.Unlock()
	members := g.rooms[room]
	out := make([]*conn, 0, len(members))
	for _, c := range members {
		out = append(out, c)
	}
	return out
}

// Conns returns a snapshot of every registered connection.
func (g *Registry) Conns() []*conn {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*conn, 0, len(g.conns))
	for _, c := range g.conns {
		out = append(out, c)
	}
	return out
}
