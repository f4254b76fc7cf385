package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gosuda/roomchat/wire"
)

func drain(t *testing.T, c *conn) []wire.Envelope {
	t.Helper()
	var out []wire.Envelope
	for {
		select {
		case env := <-c.send:
			out = append(out, env)
		default:
			return out
		}
	}
}

func TestBroadcastMessageIncludesSender(t *testing.T) {
	reg := NewRegistry()
	rt := NewRouter(reg)
	sender := testConn("c1")
	peer := testConn("c2")
	reg.Add(sender)
	reg.Add(peer)
	reg.SetUsername(sender, "alice")
	reg.JoinRoom(sender, "general")
	reg.JoinRoom(peer, "general")

	msg := wire.Message{User: "alice", Msg: "hi", Time: "14:05"}
	rt.BroadcastMessage("general", msg)

	for _, c := range []*conn{sender, peer} {
		envs := drain(t, c)
		require.Len(t, envs, 1)
		require.Equal(t, wire.EventChatMessage, envs[0].Event)
		var got wire.Message
		require.NoError(t, envs[0].Decode(&got))
		require.Equal(t, msg, got)
	}
}

func TestBroadcastTypingExcludesSender(t *testing.T) {
	reg := NewRegistry()
	rt := NewRouter(reg)
	sender := testConn("c1")
	peer := testConn("c2")
	other := testConn("c3")
	reg.Add(sender)
	reg.Add(peer)
	reg.Add(other)
	reg.JoinRoom(sender, "general")
	reg.JoinRoom(peer, "general")
	reg.JoinRoom(other, "general")

	rt.BroadcastTyping("general", sender, "alice")

	require.Empty(t, drain(t, sender), "sender must not see own typing notice")
	for _, c := range []*conn{peer, other} {
		envs := drain(t, c)
		require.Len(t, envs, 1)
		require.Equal(t, wire.EventTyping, envs[0].Event)
		var name string
		require.NoError(t, envs[0].Decode(&name))
		require.Equal(t, "alice", name)
	}
}

func TestBroadcastRespectsMembership(t *testing.T) {
	reg := NewRegistry()
	rt := NewRouter(reg)
	c := testConn("c1")
	reg.Add(c)
	reg.JoinRoom(c, "a")
	reg.JoinRoom(c, "b")

	rt.BroadcastMessage("a", wire.Message{User: "x", Msg: "to a", Time: "10:00"})
	require.Empty(t, drain(t, c), "no delivery from a room already left")

	rt.BroadcastMessage("b", wire.Message{User: "x", Msg: "to b", Time: "10:01"})
	require.Len(t, drain(t, c), 1)
}

func TestBroadcastEmptyRoomIsNoOp(t *testing.T) {
	reg := NewRegistry()
	rt := NewRouter(reg)

	require.NotPanics(t, func() {
		rt.BroadcastMessage("nowhere", wire.Message{User: "x", Msg: "y", Time: "10:00"})
		rt.BroadcastTyping("nowhere", nil, "x")
	})
}

func TestBroadcastDuringDisconnectIsDropped(t *testing.T) {
	reg := NewRegistry()
	rt := NewRouter(reg)
	leaving := testConn("c1")
	leaving.reg = reg
	peer := testConn("c2")
	peer.reg = reg
	reg.Add(leaving)
	reg.Add(peer)
	reg.JoinRoom(leaving, "general")
	reg.JoinRoom(peer, "general")

	// teardown lands between the member snapshot and the pushes
	members := reg.Members("general")
	leaving.close()

	msg := wire.Message{User: "x", Msg: "hi", Time: "10:00"}
	env, err := wire.NewEnvelope(wire.EventChatMessage, msg)
	require.NoError(t, err)
	require.NotPanics(t, func() {
		for _, c := range members {
			c.push(env)
		}
	})
	require.Empty(t, drain(t, leaving), "in-flight broadcast to a gone member is simply not delivered")
	require.Len(t, drain(t, peer), 1)

	// later routes see the connection gone entirely
	rt.BroadcastMessage("general", msg)
	require.Empty(t, drain(t, leaving))
	require.Len(t, drain(t, peer), 1)
}

func TestConnCloseIdempotent(t *testing.T) {
	reg := NewRegistry()
	c := testConn("c1")
	c.reg = reg
	reg.Add(c)
	reg.JoinRoom(c, "general")

	c.close()
	require.NotPanics(t, func() { c.close() })
	require.Empty(t, reg.Members("general"))
}

func TestBroadcastOrderPreserved(t *testing.T) {
	reg := NewRegistry()
	rt := NewRouter(reg)
	c := testConn("c1")
	reg.Add(c)
	reg.JoinRoom(c, "general")

	for _, text := range []string{"one", "two", "three"} {
		rt.BroadcastMessage("general", wire.Message{User: "x", Msg: text, Time: "10:00"})
	}

	envs := drain(t, c)
	require.Len(t, envs, 3)
	for i, want := range []string{"one", "two", "three"} {
		var got wire.Message
		require.NoError(t, envs[i].Decode(&got))
		require.Equal(t, want, got.Msg)
	}
}
