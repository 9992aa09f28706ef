package domain

// RoomState is the per-room ephemeral state, assigned once when the room is
// created and discarded when the room is torn down.
type RoomState struct {
	Topic string
}

// Connection is one client's live transport session. RoomID and UserID are
// empty until the connection joins a room; the registry stamps them via
// SetMembership.
type Connection interface {
	ID() string
	RoomID() string
	UserID() string
	SetMembership(roomID, userID string)
	Send(data []byte) error
	IsOpen() bool
	Close() error
}

// Registry owns the room → member-set mapping. Rooms are created lazily on
// first join and deleted synchronously when their last member leaves.
type Registry interface {
	Join(conn Connection, roomID, userID string) RoomState
	Leave(conn Connection)
	MembersOf(roomID string) []Connection
}

// Broadcaster fans a payload out to every open member of a room except the
// excluded connection. Best effort: per-recipient failures are isolated.
type Broadcaster interface {
	Broadcast(roomID string, payload []byte, exclude Connection)
}

type MessageHandler interface {
	Handle(conn Connection, data []byte)
}
