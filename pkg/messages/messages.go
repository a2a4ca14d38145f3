package messages

import (
	"encoding/json"

	"github.com/cbodonnell/deacoudre/pkg/game"
	"github.com/cbodonnell/deacoudre/pkg/game/types"
	"github.com/cbodonnell/deacoudre/pkg/state"
)

type MessageType string

// Message types
const (
	MessageTypeClientJoin   MessageType = "cjn"
	MessageTypeClientMove   MessageType = "cmv"
	MessageTypeClientDamage MessageType = "cdm"
	MessageTypeClientStart  MessageType = "cst"

	MessageTypeServerJoinSuccess MessageType = "sjs"
	MessageTypeServerJoinFailure MessageType = "sjf"
	MessageTypeServerChat        MessageType = "sch"
	MessageTypeServerSound       MessageType = "ssd"
	MessageTypeServerSnapshot    MessageType = "ssn"
	MessageTypeServerScoreboard  MessageType = "ssb"
)

// Message represents a generic message for serialization/deserialization
type Message struct {
	ClientID uint32          `json:"clientID"`
	Type     MessageType     `json:"type"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// ClientJoin asks the server to register the client as a player.
// Participant is set when reconnecting to keep the same identity.
type ClientJoin struct {
	Name        string             `json:"name"`
	Participant *types.Participant `json:"participant,omitempty"`
}

// ClientMove reports the player's current position
type ClientMove struct {
	Timestamp int64      `json:"timestamp"`
	Position  types.Vec3 `json:"position"`
}

// ClientDamage reports damage taken by the player.
// Fatal damage is treated as a death.
type ClientDamage struct {
	Source string `json:"source"`
	Fatal  bool   `json:"fatal"`
}

// ClientStart asks the server to start a game with the players in the lobby
type ClientStart struct{}

type ServerJoinSuccess struct {
	ClientID    uint32            `json:"clientID"`
	Participant types.Participant `json:"participant"`
}

type ServerJoinFailure struct {
	Reason string `json:"reason"`
}

type ServerChat struct {
	Text types.Text `json:"text"`
}

type ServerSound struct {
	Sound types.Sound `json:"sound"`
}

type ServerSnapshot struct {
	Status *state.Status `json:"status"`
}

type ServerScoreboard struct {
	Snapshot game.Snapshot `json:"snapshot"`
}

// NewMessage marshals v as the payload of a new message.
func NewMessage(clientID uint32, t MessageType, v interface{}) (*Message, error) {
	msg := &Message{
		ClientID: clientID,
		Type:     t,
	}
	if v == nil {
		return msg, nil
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	msg.Payload = payload
	return msg, nil
}
