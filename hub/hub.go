package hub

import (
	"log/slog"
	"sync"

	"sketch-relay-server/domain"
	"sketch-relay-server/metrics"
)

// TopicSource supplies the ephemeral topic assigned to a room when it is
// first created.
type TopicSource func() string

type room struct {
	members map[string]domain.Connection
	topic   string
}

// Hub is the room registry and broadcast relay. It owns the room → member-set
// mapping; rooms are created lazily on first join and removed synchronously
// when the last member leaves.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	topics TopicSource
}

func New(topics TopicSource) *Hub {
	return &Hub{
		rooms:  make(map[string]*room),
		topics: topics,
	}
}

// Join attaches conn to roomID, creating the room and picking its topic if it
// does not exist yet. A connection already in a different room leaves it
// first; membership is single-room. Returns the room's ephemeral state.
func (h *Hub) Join(conn domain.Connection, roomID, userID string) domain.RoomState {
	if prev := conn.RoomID(); prev != "" && prev != roomID {
		h.Leave(conn)
	}

	h.mu.Lock()
	r, exists := h.rooms[roomID]
	if !exists {
		r = &room{
			members: make(map[string]domain.Connection),
			topic:   h.topics(),
		}
		h.rooms[roomID] = r
		metrics.RoomsActive.Inc()
	}
	if _, member := r.members[conn.ID()]; !member {
		r.members[conn.ID()] = conn
		metrics.ClientsActive.Inc()
	}
	count := len(r.members)
	topic := r.topic
	h.mu.Unlock()

	conn.SetMembership(roomID, userID)

	slog.Info("client joined", "room", roomID, "userId", userID, "clientId", conn.ID(), "members", count)
	return domain.RoomState{Topic: topic}
}

// Leave detaches conn from its room, removing the room and its topic when the
// member set empties. No-op for connections that never joined.
func (h *Hub) Leave(conn domain.Connection) {
	roomID := conn.RoomID()
	if roomID == "" {
		return
	}

	h.mu.Lock()
	r, exists := h.rooms[roomID]
	if !exists {
		h.mu.Unlock()
		return
	}
	if _, member := r.members[conn.ID()]; !member {
		h.mu.Unlock()
		return
	}
	delete(r.members, conn.ID())
	metrics.ClientsActive.Dec()
	count := len(r.members)
	if count == 0 {
		delete(h.rooms, roomID)
		metrics.RoomsActive.Dec()
	}
	h.mu.Unlock()

	slog.Info("client left", "room", roomID, "userId", conn.UserID(), "clientId", conn.ID(), "members", count)
	if count == 0 {
		slog.Info("room removed", "room", roomID)
	}
}

// MembersOf returns a snapshot of the room's current members, or nil for an
// unknown room.
func (h *Hub) MembersOf(roomID string) []domain.Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, exists := h.rooms[roomID]
	if !exists {
		return nil
	}
	out := make([]domain.Connection, 0, len(r.members))
	for _, c := range r.members {
		out = append(out, c)
	}
	return out
}

// Broadcast delivers payload to every open member of roomID except exclude.
// The member set is snapshotted under the read lock and sends happen outside
// it, so a slow recipient cannot stall joins and leaves. Per-recipient send
// failures are counted and skipped, never propagated.
func (h *Hub) Broadcast(roomID string, payload []byte, exclude domain.Connection) {
	h.mu.RLock()
	r, exists := h.rooms[roomID]
	var targets []domain.Connection
	if exists {
		targets = make([]domain.Connection, 0, len(r.members))
		for id, c := range r.members {
			if exclude != nil && id == exclude.ID() {
				continue
			}
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	if !exists {
		return
	}
	metrics.FramesRelayed.Inc()

	for _, c := range targets {
		if !c.IsOpen() {
			continue
		}
		if err := c.Send(payload); err != nil {
			metrics.SendFailures.Inc()
			slog.Debug("send failed", "room", roomID, "clientId", c.ID(), "error", err)
		}
	}
}

// Stats reports the current number of rooms and joined clients.
func (h *Hub) Stats() (rooms, clients int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms = len(h.rooms)
	for _, r := range h.rooms {
		clients += len(r.members)
	}
	return rooms, clients
}
