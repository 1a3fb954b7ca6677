package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Princeaman007/agence/internal/domain/enums"
	"github.com/Princeaman007/agence/internal/domain/model"
	"github.com/Princeaman007/agence/internal/domain/rules"
	pgrepo "github.com/Princeaman007/agence/internal/repo/postgres"
	quotasvc "github.com/Princeaman007/agence/internal/services/quota"
)

var (
	ErrValidation           = errors.New("invalid message payload")
	ErrRecipientNotFound    = errors.New("recipient not found")
	ErrSelfMessage          = errors.New("cannot message yourself")
	ErrBlocked              = errors.New("messaging blocked between users")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrForbidden            = errors.New("forbidden")
	ErrDependenciesNil      = errors.New("messaging service dependencies are nil")
)

type ConversationStore interface {
	GetOrCreate(ctx context.Context, tx pgx.Tx, userA, userB int64) (model.Conversation, error)
	GetByID(ctx context.Context, conversationID int64) (model.Conversation, error)
	ListActive(ctx context.Context, userID int64) ([]model.Conversation, error)
	RecordMessage(ctx context.Context, tx pgx.Tx, conversationID, senderID, recipientID int64, content string, at time.Time) error
	ResetUnread(ctx context.Context, tx pgx.Tx, conversationID, userID int64) error
	Archive(ctx context.Context, conversationID int64) error
}

type MessageStore interface {
	Create(ctx context.Context, tx pgx.Tx, msg model.Message) (model.Message, error)
	GetByID(ctx context.Context, messageID int64) (model.Message, error)
	ListPage(ctx context.Context, conversationID, viewerID int64, page, limit int) ([]model.Message, error)
	MarkConversationRead(ctx context.Context, tx pgx.Tx, conversationID, readerID int64, at time.Time) (int64, error)
	SoftDelete(ctx context.Context, messageID, userID int64) error
}

type QuotaStore interface {
	ConsumeMessageWithLimit(ctx context.Context, tx pgx.Tx, userID int64, dayKey, timezone string, limit int) (int, error)
}

type UserStore interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
}

type BlockStore interface {
	IsBlockedEither(ctx context.Context, userA, userB int64) (bool, error)
}

type LimitsProvider interface {
	MessageLimitsFor(ctx context.Context, user model.User, timezone string) (quotasvc.MessageLimits, error)
}

// Notifier pushes live events after a send has durably committed. It must
// never fail the send: implementations swallow their own errors, and an
// offline recipient is simply skipped.
type Notifier interface {
	NewMessage(recipientID int64, msg model.Message)
	MessageSent(senderID int64, msg model.Message)
	MessagesRead(participantID int64, conversationID, readerID int64)
}

type Config struct {
	FreeMessagesPerDay int
	MessageMaxLength   int
	DefaultTimezone    string
}

type Service struct {
	convs    ConversationStore
	msgs     MessageStore
	quotas   QuotaStore
	users    UserStore
	blocks   BlockStore
	limits   LimitsProvider
	notifier Notifier
	cfg      Config
	runTx    func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	now      func() time.Time
}

type SendInput struct {
	RecipientID int64
	Content     string
	Type        enums.MessageType
	Timezone    string
}

type SendResult struct {
	Message           model.Message
	Conversation      model.Conversation
	MessagesRemaining int // -1 means unlimited
}

type UserSummary struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	IsOnline   bool       `json:"is_online"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

type LastMessage struct {
	Content  string    `json:"content"`
	SenderID int64     `json:"sender_id"`
	At       time.Time `json:"at"`
}

type ConversationView struct {
	ID          int64                    `json:"id"`
	Status      enums.ConversationStatus `json:"status"`
	Other       UserSummary              `json:"other"`
	LastMessage *LastMessage             `json:"last_message,omitempty"`
	UnreadCount int                      `json:"unread_count"`
}

func NewService(pool *pgxpool.Pool, convs ConversationStore, msgs MessageStore, quotas QuotaStore, users UserStore, blocks BlockStore, limits LimitsProvider, cfg Config) *Service {
	if cfg.FreeMessagesPerDay <= 0 {
		cfg.FreeMessagesPerDay = 5
	}
	if cfg.MessageMaxLength <= 0 {
		cfg.MessageMaxLength = 2000
	}
	if strings.TrimSpace(cfg.DefaultTimezone) == "" {
		cfg.DefaultTimezone = "UTC"
	}

	return &Service{
		convs:  convs,
		msgs:   msgs,
		quotas: quotas,
		users:  users,
		blocks: blocks,
		limits: limits,
		cfg:    cfg,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
		now: time.Now,
	}
}

// AttachNotifier wires the live push path; the service works without one.
func (s *Service) AttachNotifier(n Notifier) {
	s.notifier = n
}

// AttachTxRunner overrides the transaction wrapper. The default wraps the
// injected pool with pgrepo.WithTx.
func (s *Service) AttachTxRunner(run func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error) {
	if run != nil {
		s.runTx = run
	}
}

// Send delivers one message. Preconditions run in a fixed order: payload
// validation, recipient existence, self-send, block state, then the
// free-tier daily quota. Nothing is written until every precondition holds;
// the quota consume, conversation upsert, message insert and snapshot update
// then commit as one transaction. Live notifications happen after commit.
func (s *Service) Send(ctx context.Context, senderID int64, input SendInput) (SendResult, error) {
	if s.convs == nil || s.msgs == nil || s.quotas == nil || s.users == nil || s.blocks == nil {
		return SendResult{}, ErrDependenciesNil
	}

	content := strings.TrimSpace(input.Content)
	msgType := input.Type
	if msgType == "" {
		msgType = enums.MessageTypeText
	}
	if senderID <= 0 || input.RecipientID <= 0 || content == "" ||
		utf8.RuneCountInString(content) > s.cfg.MessageMaxLength || !msgType.Valid() {
		return SendResult{}, ErrValidation
	}

	if _, err := s.users.FindByID(ctx, input.RecipientID); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return SendResult{}, ErrRecipientNotFound
		}
		return SendResult{}, fmt.Errorf("find recipient: %w", err)
	}

	if senderID == input.RecipientID {
		return SendResult{}, ErrSelfMessage
	}

	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		return SendResult{}, fmt.Errorf("find sender: %w", err)
	}

	blocked, err := s.blocks.IsBlockedEither(ctx, senderID, input.RecipientID)
	if err != nil {
		return SendResult{}, fmt.Errorf("check block state: %w", err)
	}
	if blocked {
		return SendResult{}, ErrBlocked
	}

	var result SendResult
	err = s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		remaining := -1
		if !sender.AccountType.Paid() {
			loc := s.resolveLocation(sender, input.Timezone)
			dayKey := rules.DayKey(s.now().UTC(), loc)
			used, err := s.quotas.ConsumeMessageWithLimit(txCtx, tx, senderID, dayKey, loc.String(), s.cfg.FreeMessagesPerDay)
			if err != nil {
				if errors.Is(err, pgrepo.ErrMessagesLimitReached) {
					return &quotasvc.ExceededError{
						Kind:  "messages",
						Limit: s.cfg.FreeMessagesPerDay,
						Used:  s.cfg.FreeMessagesPerDay,
					}
				}
				return fmt.Errorf("consume message quota: %w", err)
			}
			remaining = s.cfg.FreeMessagesPerDay - used
		}

		conv, err := s.convs.GetOrCreate(txCtx, tx, senderID, input.RecipientID)
		if err != nil {
			return fmt.Errorf("resolve conversation: %w", err)
		}

		msg, err := s.msgs.Create(txCtx, tx, model.Message{
			ConversationID: conv.ID,
			SenderID:       senderID,
			RecipientID:    input.RecipientID,
			Type:           msgType,
			Content:        content,
		})
		if err != nil {
			return fmt.Errorf("create message: %w", err)
		}

		if err := s.convs.RecordMessage(txCtx, tx, conv.ID, senderID, input.RecipientID, content, msg.CreatedAt); err != nil {
			return fmt.Errorf("update conversation snapshot: %w", err)
		}

		result = SendResult{Message: msg, Conversation: conv, MessagesRemaining: remaining}
		return nil
	})
	if err != nil {
		return SendResult{}, err
	}

	if s.notifier != nil {
		s.notifier.NewMessage(input.RecipientID, result.Message)
		s.notifier.MessageSent(senderID, result.Message)
	}

	return result, nil
}

// Conversations lists the caller's active conversations, most recent first.
func (s *Service) Conversations(ctx context.Context, userID int64) ([]ConversationView, error) {
	if s.convs == nil || s.users == nil {
		return nil, ErrDependenciesNil
	}

	convs, err := s.convs.ListActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	views := make([]ConversationView, 0, len(convs))
	for _, conv := range convs {
		otherID := conv.OtherParticipant(userID)
		other, err := s.users.FindByID(ctx, otherID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrUserNotFound) {
				continue
			}
			return nil, fmt.Errorf("find participant %d: %w", otherID, err)
		}

		view := ConversationView{
			ID:     conv.ID,
			Status: conv.Status,
			Other: UserSummary{
				ID:         other.ID,
				Name:       other.Name,
				IsOnline:   other.IsOnline,
				LastSeenAt: other.LastSeenAt,
			},
			UnreadCount: conv.UnreadFor(userID),
		}
		if conv.LastMessageAt != nil {
			view.LastMessage = &LastMessage{
				Content:  conv.LastMessageContent,
				SenderID: conv.LastMessageSenderID,
				At:       *conv.LastMessageAt,
			}
		}
		views = append(views, view)
	}

	return views, nil
}

// Messages returns one chronological page of a conversation the caller
// participates in, minus messages the caller deleted for themselves.
func (s *Service) Messages(ctx context.Context, userID, conversationID int64, page, limit int) ([]model.Message, error) {
	if s.convs == nil || s.msgs == nil {
		return nil, ErrDependenciesNil
	}

	conv, err := s.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.msgs.ListPage(ctx, conv.ID, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return msgs, nil
}

// MarkRead marks every unread message addressed to the caller and zeroes the
// caller's unread counter. Safe to repeat.
func (s *Service) MarkRead(ctx context.Context, userID, conversationID int64) (int64, error) {
	if s.convs == nil || s.msgs == nil {
		return 0, ErrDependenciesNil
	}

	conv, err := s.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return 0, err
	}

	var marked int64
	err = s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		n, err := s.msgs.MarkConversationRead(txCtx, tx, conv.ID, userID, s.now().UTC())
		if err != nil {
			return fmt.Errorf("mark messages read: %w", err)
		}
		if err := s.convs.ResetUnread(txCtx, tx, conv.ID, userID); err != nil {
			return fmt.Errorf("reset unread counter: %w", err)
		}
		marked = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.notifier != nil {
		s.notifier.MessagesRead(conv.OtherParticipant(userID), conv.ID, userID)
	}

	return marked, nil
}

// Delete hides a message from the caller only; sender-only.
func (s *Service) Delete(ctx context.Context, userID, messageID int64) error {
	if s.msgs == nil {
		return ErrDependenciesNil
	}

	msg, err := s.msgs.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("get message: %w", err)
	}
	if msg.SenderID != userID {
		return ErrForbidden
	}

	if err := s.msgs.SoftDelete(ctx, messageID, userID); err != nil {
		return fmt.Errorf("soft-delete message: %w", err)
	}

	return nil
}

// Archive moves an active conversation to archived; there is no way back.
func (s *Service) Archive(ctx context.Context, userID, conversationID int64) error {
	if s.convs == nil {
		return ErrDependenciesNil
	}

	conv, err := s.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return err
	}

	if err := s.convs.Archive(ctx, conv.ID); err != nil {
		return fmt.Errorf("archive conversation: %w", err)
	}

	return nil
}

// Limits reports the caller's remaining daily message allowance.
func (s *Service) Limits(ctx context.Context, userID int64, timezone string) (quotasvc.MessageLimits, error) {
	if s.users == nil || s.limits == nil {
		return quotasvc.MessageLimits{}, ErrDependenciesNil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return quotasvc.MessageLimits{}, fmt.Errorf("find user: %w", err)
	}

	return s.limits.MessageLimitsFor(ctx, user, timezone)
}

func (s *Service) participantConversation(ctx context.Context, userID, conversationID int64) (model.Conversation, error) {
	conv, err := s.convs.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrConversationNotFound) {
			return model.Conversation{}, ErrConversationNotFound
		}
		return model.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}
	if !conv.HasParticipant(userID) {
		return model.Conversation{}, ErrForbidden
	}
	return conv, nil
}

func (s *Service) resolveLocation(user model.User, timezone string) *time.Location {
	fallback := user.Timezone
	if strings.TrimSpace(fallback) == "" {
		fallback = s.cfg.DefaultTimezone
	}
	return rules.ResolveLocation(timezone, fallback)
}
