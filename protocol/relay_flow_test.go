package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketch-relay-server/hub"
)

// End-to-end dispatch over a real hub: join replies, fan-out, disconnects.

func newFlow(t *testing.T, relayTypes []string) (*hub.Hub, *Handler) {
	t.Helper()
	h := hub.New(func() string { return "glacier" })
	return h, NewHandler(h, h, relayTypes)
}

func TestFlow_JoinAndDraw(t *testing.T) {
	registry, handler := newFlow(t, []string{"draw", "clear"})

	x := newMockConn("x")
	y := newMockConn("y")

	handler.Handle(x, []byte(`{"type":"join","roomId":"r1","userId":"alice"}`))
	handler.Handle(y, []byte(`{"type":"join","roomId":"r1","userId":"bob"}`))

	// Both joiners get a roomState reply with the same topic; neither sees
	// the other's join frame.
	xSent := x.getSent()
	ySent := y.getSent()
	require.Len(t, xSent, 1)
	require.Len(t, ySent, 1)

	var xReply, yReply struct {
		Type  string `json:"type"`
		Topic string `json:"topic"`
	}
	require.NoError(t, json.Unmarshal(xSent[0], &xReply))
	require.NoError(t, json.Unmarshal(ySent[0], &yReply))
	assert.Equal(t, "roomState", xReply.Type)
	assert.Equal(t, xReply.Topic, yReply.Topic)

	draw := []byte(`{"type":"draw","path":[[1,2],[3,4]]}`)
	handler.Handle(x, draw)

	ySent = y.getSent()
	require.Len(t, ySent, 2, "receiver gets the relayed frame")
	assert.Equal(t, draw, ySent[1], "relayed frame is verbatim")
	assert.Len(t, x.getSent(), 1, "sender does not receive its own frame")

	rooms, clients := registry.Stats()
	assert.Equal(t, 1, rooms)
	assert.Equal(t, 2, clients)
}

func TestFlow_SendAfterPeerDisconnect(t *testing.T) {
	registry, handler := newFlow(t, []string{"draw", "clear"})

	x := newMockConn("x")
	y := newMockConn("y")
	handler.Handle(x, []byte(`{"type":"join","roomId":"r1","userId":"alice"}`))
	handler.Handle(y, []byte(`{"type":"join","roomId":"r1","userId":"bob"}`))

	// X's transport closes.
	x.Close()
	registry.Leave(x)

	// Y broadcasts into a room where it is the only member left.
	handler.Handle(y, []byte(`{"type":"draw","path":[]}`))

	assert.Len(t, y.getSent(), 1, "only the earlier roomState reply")
	assert.Len(t, x.getSent(), 1, "departed member receives nothing new")

	rooms, clients := registry.Stats()
	assert.Equal(t, 1, rooms)
	assert.Equal(t, 1, clients)
}

func TestFlow_RoomTeardownAndFreshJoin(t *testing.T) {
	var calls int
	registry := hub.New(func() string {
		calls++
		if calls == 1 {
			return "first"
		}
		return "second"
	})
	handler := NewHandler(registry, registry, nil)

	x := newMockConn("x")
	handler.Handle(x, []byte(`{"type":"join","roomId":"r2","userId":"alice"}`))
	registry.Leave(x)

	rooms, _ := registry.Stats()
	require.Equal(t, 0, rooms, "last disconnect removes the room")

	y := newMockConn("y")
	handler.Handle(y, []byte(`{"type":"join","roomId":"r2","userId":"bob"}`))

	var reply struct {
		Topic string `json:"topic"`
	}
	sent := y.getSent()
	require.Len(t, sent, 1)
	require.NoError(t, json.Unmarshal(sent[0], &reply))
	assert.Equal(t, "second", reply.Topic, "recreated room draws a fresh topic")
}
