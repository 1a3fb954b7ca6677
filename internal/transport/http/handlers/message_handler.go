package handlers

import (
	"errors"
	"net/http"

	"github.com/Princeaman007/agence/internal/domain/enums"
	authsvc "github.com/Princeaman007/agence/internal/services/auth"
	messagingsvc "github.com/Princeaman007/agence/internal/services/messaging"
	quotasvc "github.com/Princeaman007/agence/internal/services/quota"
	"github.com/Princeaman007/agence/internal/transport/http/dto"
	httperrors "github.com/Princeaman007/agence/internal/transport/http/errors"
)

type MessageHandler struct {
	service *messagingsvc.Service
}

func NewMessageHandler(service *messagingsvc.Service) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGING_SERVICE_UNAVAILABLE", "messaging service is unavailable")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	result, err := h.service.Send(r.Context(), identity.UserID, messagingsvc.SendInput{
		RecipientID: req.RecipientID,
		Content:     req.Content,
		Type:        enums.MessageType(req.Type),
		Timezone:    timezoneFromRequest(r),
	})
	if err != nil {
		if exceeded, ok := quotasvc.IsExceeded(err); ok {
			writeQuotaExceeded(w, "MESSAGES_LIMIT_REACHED", "daily message limit reached", exceeded)
			return
		}
		handleMessagingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.SendMessageResponse{
		Message:           result.Message,
		ConversationID:    result.Conversation.ID,
		MessagesRemaining: result.MessagesRemaining,
	})
}

func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGING_SERVICE_UNAVAILABLE", "messaging service is unavailable")
		return
	}

	views, err := h.service.Conversations(r.Context(), identity.UserID)
	if err != nil {
		handleMessagingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ConversationsResponse{Conversations: views})
}

func (h *MessageHandler) Messages(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGING_SERVICE_UNAVAILABLE", "messaging service is unavailable")
		return
	}
	conversationID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid conversation id")
		return
	}

	page := queryInt(r, "page")
	if page <= 0 {
		page = 1
	}

	msgs, err := h.service.Messages(r.Context(), identity.UserID, conversationID, page, queryInt(r, "limit"))
	if err != nil {
		handleMessagingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MessagesResponse{Messages: msgs, Page: page})
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGING_SERVICE_UNAVAILABLE", "messaging service is unavailable")
		return
	}
	conversationID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid conversation id")
		return
	}

	marked, err := h.service.MarkRead(r.Context(), identity.UserID, conversationID)
	if err != nil {
		handleMessagingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MarkReadResponse{OK: true, MarkedCount: marked})
}

func (h *MessageHandler) Archive(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGING_SERVICE_UNAVAILABLE", "messaging service is unavailable")
		return
	}
	conversationID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid conversation id")
		return
	}

	if err := h.service.Archive(r.Context(), identity.UserID, conversationID); err != nil {
		handleMessagingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGING_SERVICE_UNAVAILABLE", "messaging service is unavailable")
		return
	}
	messageID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid message id")
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, messageID); err != nil {
		handleMessagingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *MessageHandler) Limits(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGING_SERVICE_UNAVAILABLE", "messaging service is unavailable")
		return
	}

	limits, err := h.service.Limits(r.Context(), identity.UserID, timezoneFromRequest(r))
	if err != nil {
		handleMessagingError(w, err)
		return
	}

	resp := dto.MessageLimitsResponse{
		Limit:     limits.Limit,
		Used:      limits.Used,
		Remaining: limits.Remaining,
		Unlimited: limits.Unlimited,
	}
	if !limits.Unlimited {
		resetAt := limits.ResetAt.UTC()
		resp.ResetAt = &resetAt
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func handleMessagingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, messagingsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid message payload")
	case errors.Is(err, messagingsvc.ErrRecipientNotFound):
		writeNotFound(w, "USER_NOT_FOUND", "recipient not found")
	case errors.Is(err, messagingsvc.ErrSelfMessage):
		writeBadRequest(w, "VALIDATION_ERROR", "cannot message yourself")
	case errors.Is(err, messagingsvc.ErrBlocked):
		writeForbidden(w, "BLOCKED", "messaging is not available with this user")
	case errors.Is(err, messagingsvc.ErrConversationNotFound):
		writeNotFound(w, "CONVERSATION_NOT_FOUND", "conversation not found")
	case errors.Is(err, messagingsvc.ErrMessageNotFound):
		writeNotFound(w, "MESSAGE_NOT_FOUND", "message not found")
	case errors.Is(err, messagingsvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "you are not part of this conversation")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
