// Package protocol defines the wire format: one JSON envelope per frame,
// tagged with a message type, sender id, and timestamp, with the payload
// shape resolved through a per-type lookup. Unknown types pass through with
// their payload kept opaque so newer clients do not break the read loop.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType tags an envelope with its payload shape.
type MessageType string

// Client -> server.
const (
	TypeJoinRequest    MessageType = "JoinRequest"
	TypeSetReady       MessageType = "SetReady"
	TypeSelectClass    MessageType = "SelectClass"
	TypeSelectColor    MessageType = "SelectColor"
	TypeRename         MessageType = "Rename"
	TypeChangeSettings MessageType = "ChangeSettings"
	TypeStartMatch     MessageType = "StartMatch"
	TypeKickPlayer     MessageType = "KickPlayer"
	TypeChat           MessageType = "Chat"
	TypeTurnAction     MessageType = "TurnAction"
	TypeMoveRequest    MessageType = "MoveRequest"
	TypeResyncRequest  MessageType = "ResyncRequest"
)

// Server -> client.
const (
	TypeWelcome        MessageType = "Welcome"
	TypeLobbySnapshot  MessageType = "LobbySnapshot"
	TypeMatchStart     MessageType = "MatchStart"
	TypeMovementResult MessageType = "MovementResult"
	TypeActionResult   MessageType = "ActionResult"
	TypeTurnNotice     MessageType = "TurnNotice"
	TypeHeartbeat      MessageType = "Heartbeat"
	TypeFullSync       MessageType = "FullSync"
	TypeMatchEnded     MessageType = "MatchEnded"
	TypeError          MessageType = "Error"
)

// Envelope is the frame every message travels in.
type Envelope struct {
	Type      MessageType     `json:"type"`
	SenderID  string          `json:"senderId,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// payloadFactories maps each known type to a fresh payload value to decode
// into. Types absent here are carried opaquely, not rejected.
var payloadFactories = map[MessageType]func() any{
	TypeJoinRequest:    func() any { return &JoinRequest{} },
	TypeSetReady:       func() any { return &SetReady{} },
	TypeSelectClass:    func() any { return &SelectClass{} },
	TypeSelectColor:    func() any { return &SelectColor{} },
	TypeRename:         func() any { return &Rename{} },
	TypeChangeSettings: func() any { return &ChangeSettings{} },
	TypeStartMatch:     func() any { return &StartMatch{} },
	TypeKickPlayer:     func() any { return &KickPlayer{} },
	TypeChat:           func() any { return &Chat{} },
	TypeTurnAction:     func() any { return &TurnAction{} },
	TypeMoveRequest:    func() any { return &MoveRequest{} },
	TypeResyncRequest:  func() any { return &ResyncRequest{} },
	TypeWelcome:        func() any { return &Welcome{} },
	TypeLobbySnapshot:  func() any { return &LobbySnapshot{} },
	TypeMatchStart:     func() any { return &MatchStart{} },
	TypeMovementResult: func() any { return &MovementResult{} },
	TypeActionResult:   func() any { return &ActionResult{} },
	TypeTurnNotice:     func() any { return &TurnNotice{} },
	TypeHeartbeat:      func() any { return &Heartbeat{} },
	TypeFullSync:       func() any { return &FullSync{} },
	TypeMatchEnded:     func() any { return &MatchEnded{} },
	TypeError:          func() any { return &ErrorMessage{} },
}

// NewEnvelope builds an envelope around a payload, stamping the sender and
// the current time.
func NewEnvelope(t MessageType, senderID string, payload any) (Envelope, error) {
	env := Envelope{
		Type:      t,
		SenderID:  senderID,
		Timestamp: time.Now().UnixMilli(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("encode %s payload: %w", t, err)
		}
		env.Payload = raw
	}
	return env, nil
}

// Encode serializes an envelope to a single JSON document.
func Encode(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// DecodeEnvelope parses a frame and, when the type is known, its payload.
// Unknown types return a nil decoded value with Envelope.Payload intact.
func DecodeEnvelope(data []byte) (Envelope, any, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("decode envelope: %w", err)
	}
	factory, ok := payloadFactories[env.Type]
	if !ok {
		return env, nil, nil
	}
	decoded := factory()
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, decoded); err != nil {
			return Envelope{}, nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	}
	return env, decoded, nil
}
