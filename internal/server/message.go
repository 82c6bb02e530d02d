package server

import (
	"encoding/json"
	"time"

	"github.com/lox/hundred/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	var dataBytes json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		dataBytes = b
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type NameData struct {
	Name string `json:"name"`
}

type HostSetConfigData struct {
	NPCDifficulty string `json:"npcDifficulty,omitempty"`
	GameType      string `json:"gameType,omitempty"`
}

// PlayData is the payload of play_hand and draw_play. HandIndex is only read
// for play_hand. JokerValue is floored before use. Key, when present, pins
// the action to the decision point the client saw.
type PlayData struct {
	HandIndex  *int          `json:"handIndex,omitempty"`
	JokerValue *float64      `json:"jokerValue,omitempty"`
	Key        *game.TurnKey `json:"key,omitempty"`
}

// Server → Client Messages

type WelcomeData struct {
	SeatIndex int       `json:"seatIndex"`
	Room      RoomState `json:"room"`
}

type RoomStateData struct {
	Room RoomState `json:"room"`
}

type GameStateData struct {
	State game.GameState `json:"state"`
}

// GameStatesData is a batch of consecutive states for the client to replay
// IntervalMS apart. Seq increases with every batch of a game.
type GameStatesData struct {
	Seq        int              `json:"seq"`
	IntervalMS int              `json:"intervalMs"`
	States     []game.GameState `json:"states"`
}

type TurnTimeoutData struct {
	Seat           int          `json:"seat"`
	Key            game.TurnKey `json:"key"`
	TimeoutSeconds int          `json:"timeoutSeconds"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RoomInfo is returned when a room is created. It is the only place the host
// token is ever handed out.
type RoomInfo struct {
	RoomID    string    `json:"roomId"`
	HostToken string    `json:"hostToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}
