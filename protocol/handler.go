package protocol

import (
	"encoding/json"
	"log/slog"

	"sketch-relay-server/domain"
	"sketch-relay-server/metrics"
)

// Handler is the message dispatcher. Join frames go to the registry and get a
// direct roomState reply; allow-listed types fan out verbatim to the sender's
// room. Everything else is dropped silently: this is a best-effort relay with
// no error channel back to the client.
type Handler struct {
	registry domain.Registry
	relay    domain.Broadcaster
	allowed  map[string]struct{} // empty = every non-join type relays
}

// NewHandler builds a dispatcher over the given registry and relay. An empty
// relayTypes list relays every non-join type.
func NewHandler(registry domain.Registry, relay domain.Broadcaster, relayTypes []string) *Handler {
	var allowed map[string]struct{}
	if len(relayTypes) > 0 {
		allowed = make(map[string]struct{}, len(relayTypes))
		for _, t := range relayTypes {
			allowed[t] = struct{}{}
		}
	}
	return &Handler{registry: registry, relay: relay, allowed: allowed}
}

func (h *Handler) Handle(conn domain.Connection, data []byte) {
	in := Parse(data)

	switch in.Kind {
	case KindInvalid:
		metrics.FramesDropped.Inc()
		slog.Debug("discarding unparseable frame", "clientId", conn.ID())
		return

	case KindJoin:
		state := h.registry.Join(conn, in.RoomID, in.UserID)
		reply, err := json.Marshal(roomStateReply{Type: TypeRoomState, Topic: state.Topic})
		if err != nil {
			slog.Warn("marshal roomState", "clientId", conn.ID(), "error", err)
			return
		}
		// Reply goes to the joiner only; a join is never broadcast.
		if err := conn.Send(reply); err != nil {
			slog.Debug("roomState reply failed", "clientId", conn.ID(), "error", err)
		}
		return
	}

	roomID := conn.RoomID()
	if roomID == "" {
		// Message before join.
		metrics.FramesDropped.Inc()
		return
	}
	if !h.relayable(in.Type) {
		metrics.FramesDropped.Inc()
		return
	}

	// Relay the original bytes untouched, excluding the sender.
	h.relay.Broadcast(roomID, in.Raw, conn)
}

func (h *Handler) relayable(t string) bool {
	if len(h.allowed) == 0 {
		return true
	}
	_, ok := h.allowed[t]
	return ok
}
