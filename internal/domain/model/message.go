package model

import (
	"time"

	"github.com/Princeaman007/agence/internal/domain/enums"
)

type Message struct {
	ID             int64             `json:"id"`
	ConversationID int64             `json:"conversation_id"`
	SenderID       int64             `json:"sender_id"`
	RecipientID    int64             `json:"recipient_id"`
	Type           enums.MessageType `json:"type"`
	Content        string            `json:"content"`
	IsRead         bool              `json:"is_read"`
	ReadAt         *time.Time        `json:"read_at,omitempty"`
	DeletedBy      []int64           `json:"-"`
	CreatedAt      time.Time         `json:"created_at"`
}

// DeletedFor reports whether the user soft-deleted the message for themselves.
func (m *Message) DeletedFor(userID int64) bool {
	for _, id := range m.DeletedBy {
		if id == userID {
			return true
		}
	}
	return false
}
