package dto

import (
	"time"

	"github.com/Princeaman007/agence/internal/domain/model"
	"github.com/Princeaman007/agence/internal/services/messaging"
)

type SendMessageRequest struct {
	RecipientID int64  `json:"recipient_id"`
	Content     string `json:"content"`
	Type        string `json:"type,omitempty"`
}

type SendMessageResponse struct {
	Message           model.Message `json:"message"`
	ConversationID    int64         `json:"conversation_id"`
	MessagesRemaining int           `json:"messages_remaining"` // -1 means unlimited
}

type ConversationsResponse struct {
	Conversations []messaging.ConversationView `json:"conversations"`
}

type MessagesResponse struct {
	Messages []model.Message `json:"messages"`
	Page     int             `json:"page"`
}

type MarkReadResponse struct {
	OK          bool  `json:"ok"`
	MarkedCount int64 `json:"marked_count"`
}

type MessageLimitsResponse struct {
	Limit     int        `json:"limit"`
	Used      int        `json:"used"`
	Remaining int        `json:"remaining"`
	Unlimited bool       `json:"unlimited"`
	ResetAt   *time.Time `json:"reset_at,omitempty"`
}
