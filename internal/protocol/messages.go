// Package protocol defines the JSON messages exchanged between the
// blackjack server and its clients over a websocket.
//
// Every frame is a Message envelope whose Data holds the payload for its
// Type:
//
//	{"type":"place_bet","data":{"amount":50},"timestamp":"..."}
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lox/blackjack/internal/game"
)

// MessageType identifies the payload carried by a Message
type MessageType string

const (
	// Client -> Server
	TypeSetName  MessageType = "set_name"
	TypePlaceBet MessageType = "place_bet"
	TypeAction   MessageType = "action"
	TypeLeave    MessageType = "leave"

	// Both directions
	TypeChat MessageType = "chat"

	// Server -> Client
	TypeWelcome     MessageType = "welcome"
	TypeTableUpdate MessageType = "table_update"
	TypeError       MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Error codes carried by ErrorData
const (
	CodeInvalidBet         = "invalid_bet"
	CodeWrongPhase         = "wrong_phase"
	CodeOutOfTurn          = "out_of_turn"
	CodeInvalidAction      = "invalid_action"
	CodeInvalidName        = "invalid_name"
	CodeTableFull          = "table_full"
	CodeNotSeated          = "not_seated"
	CodeInvalidMessage     = "invalid_message"
	CodeUnknownMessageType = "unknown_message_type"
	CodeInternal           = "internal"
)

var ErrEmptyPayload = errors.New("message has no data")

// Message is the envelope for every websocket frame
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", messageType, err)
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Decode unmarshals the payload into v
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%s: %w", m.Type, ErrEmptyPayload)
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", m.Type, err)
	}
	return nil
}

// Encode returns the wire form of a message
func Encode(messageType MessageType, data any) ([]byte, error) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}

// Client -> Server payloads

type SetNameData struct {
	Name string `json:"name"`
}

type PlaceBetData struct {
	Amount int `json:"amount"`
}

type ActionData struct {
	Action string `json:"action"`
}

type LeaveData struct{}

// ChatData is sent by a client with Text, and relayed by the server with
// From set to the sender's display name.
type ChatData struct {
	From string `json:"from,omitempty"`
	Text string `json:"text"`
}

// Server -> Client payloads

type WelcomeData struct {
	PlayerID      string `json:"player_id"`
	MinBet        int    `json:"min_bet"`
	StartingChips int    `json:"starting_chips"`
	MaxPlayers    int    `json:"max_players"`
}

// TableUpdateData is the full table projection broadcast after every
// accepted change
type TableUpdateData = game.Snapshot

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ErrorData) Error() string {
	return e.Code + ": " + e.Message
}

// FormatChat renders a relayed chat line
func FormatChat(c ChatData) string {
	if c.From == "" {
		return c.Text
	}
	return c.From + ": " + c.Text
}
