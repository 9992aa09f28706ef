package protocol

import "encoding/json"

// Message type discriminators.
const (
	TypeJoin      = "join"
	TypeRoomState = "roomState"
)

// Kind classifies an inbound frame.
type Kind int

const (
	// KindInvalid marks frames that are unparseable or carry no type.
	KindInvalid Kind = iota
	// KindJoin is a room join request.
	KindJoin
	// KindRelay is any other declared type; relay eligibility is decided by
	// the handler's allow-list.
	KindRelay
)

// Inbound is the parsed form of one client frame. Raw keeps the original
// bytes so relayed frames go out exactly as they arrived.
type Inbound struct {
	Kind   Kind
	Type   string
	RoomID string
	UserID string
	Raw    []byte
}

type envelope struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type roomStateReply struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

// Parse classifies a raw frame. Join fields are passed through as-is; empty
// roomId or userId is legal by contract.
func Parse(data []byte) Inbound {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Inbound{Kind: KindInvalid, Raw: data}
	}
	if env.Type == "" {
		return Inbound{Kind: KindInvalid, Raw: data}
	}
	if env.Type == TypeJoin {
		return Inbound{
			Kind:   KindJoin,
			Type:   env.Type,
			RoomID: env.RoomID,
			UserID: env.UserID,
			Raw:    data,
		}
	}
	return Inbound{Kind: KindRelay, Type: env.Type, Raw: data}
}
