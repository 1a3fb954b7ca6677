package model

import (
	"time"

	"github.com/Princeaman007/agence/internal/domain/enums"
)

// Conversation is the single row for an unordered participant pair. The pair
// is stored canonically (UserLowID < UserHighID) so a unique index over the
// two columns rules out duplicates.
type Conversation struct {
	ID                  int64                    `json:"id"`
	UserLowID           int64                    `json:"user_low_id"`
	UserHighID          int64                    `json:"user_high_id"`
	Status              enums.ConversationStatus `json:"status"`
	LastMessageContent  string                   `json:"last_message_content,omitempty"`
	LastMessageSenderID int64                    `json:"last_message_sender_id,omitempty"`
	LastMessageAt       *time.Time               `json:"last_message_at,omitempty"`
	UnreadLow           int                      `json:"unread_low"`
	UnreadHigh          int                      `json:"unread_high"`
	CreatedAt           time.Time                `json:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at"`
}

// CanonicalPair orders two user ids so (a,b) and (b,a) address the same row.
func CanonicalPair(a, b int64) (low, high int64) {
	if a < b {
		return a, b
	}
	return b, a
}

func (c *Conversation) HasParticipant(userID int64) bool {
	return c.UserLowID == userID || c.UserHighID == userID
}

func (c *Conversation) OtherParticipant(userID int64) int64 {
	if c.UserLowID == userID {
		return c.UserHighID
	}
	return c.UserLowID
}

// UnreadFor returns the unread counter belonging to the given participant.
func (c *Conversation) UnreadFor(userID int64) int {
	if c.UserLowID == userID {
		return c.UnreadLow
	}
	return c.UnreadHigh
}
