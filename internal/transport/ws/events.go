package ws

import (
	"encoding/json"
	"time"

	"github.com/Princeaman007/agence/internal/domain/model"
)

// Event types - Client → Server
const (
	EventTypeTyping            = "typing"
	EventTypeStopTyping        = "stop_typing"
	EventTypeMarkRead          = "mark_read"
	EventTypeJoinConversation  = "join_conversation"
	EventTypeLeaveConversation = "leave_conversation"
	EventTypePing              = "ping"
)

// Event types - Server → Client
const (
	EventTypeNewMessage     = "new_message"
	EventTypeMessageSent    = "message_sent"
	EventTypeMessagesRead   = "messages_read"
	EventTypeUserTyping     = "user_typing"
	EventTypeUserStopTyping = "user_stop_typing"
	EventTypeUserOnline     = "user_online"
	EventTypeUserOffline    = "user_offline"
	EventTypePong           = "pong"
	EventTypeError          = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

type MessagePayload struct {
	model.Message
}

type ConversationPayload struct {
	ConversationID int64 `json:"conversation_id"`
}

type ReadPayload struct {
	ConversationID int64 `json:"conversation_id"`
	ReaderID       int64 `json:"reader_id"`
}

type TypingPayload struct {
	ConversationID int64 `json:"conversation_id"`
	UserID         int64 `json:"user_id"`
}

type PresencePayload struct {
	UserID int64  `json:"user_id"`
	Status string `json:"status"` // "online" | "offline"
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
