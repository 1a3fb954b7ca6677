package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Princeaman007/agence/internal/domain/model"
)

var ErrConversationNotFound = errors.New("conversation not found")

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

const conversationColumns = `id, user_low_id, user_high_id, status,
	last_message_content, last_message_sender_id, last_message_at,
	unread_low, unread_high, created_at, updated_at`

func scanConversation(row pgx.Row) (model.Conversation, error) {
	var c model.Conversation
	err := row.Scan(
		&c.ID,
		&c.UserLowID,
		&c.UserHighID,
		&c.Status,
		&c.LastMessageContent,
		&c.LastMessageSenderID,
		&c.LastMessageAt,
		&c.UnreadLow,
		&c.UnreadHigh,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

// GetOrCreate resolves the single conversation row for an unordered user
// pair. The canonical ordering plus the unique index over (user_low_id,
// user_high_id) makes concurrent first messages race-safe: the losing
// insert hits the conflict, does nothing, and re-selects the winner's row.
func (r *ConversationRepo) GetOrCreate(ctx context.Context, tx pgx.Tx, userA, userB int64) (model.Conversation, error) {
	if userA <= 0 || userB <= 0 || userA == userB {
		return model.Conversation{}, fmt.Errorf("invalid conversation pair")
	}
	if tx == nil {
		return model.Conversation{}, fmt.Errorf("transaction is required")
	}

	low, high := model.CanonicalPair(userA, userB)

	conv, err := scanConversation(tx.QueryRow(ctx, `
INSERT INTO conversations (user_low_id, user_high_id, status, unread_low, unread_high, created_at, updated_at)
VALUES ($1, $2, 'active', 0, 0, NOW(), NOW())
ON CONFLICT (user_low_id, user_high_id) DO NOTHING
RETURNING `+conversationColumns+`
`, low, high))
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}

	conv, err = scanConversation(tx.QueryRow(ctx, `
SELECT `+conversationColumns+`
FROM conversations
WHERE user_low_id = $1 AND user_high_id = $2
`, low, high))
	if err != nil {
		return model.Conversation{}, fmt.Errorf("get conversation by pair: %w", err)
	}

	return conv, nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, conversationID int64) (model.Conversation, error) {
	if conversationID <= 0 {
		return model.Conversation{}, ErrConversationNotFound
	}
	if r.pool == nil {
		return model.Conversation{}, fmt.Errorf("postgres pool is nil")
	}

	conv, err := scanConversation(r.pool.QueryRow(ctx, `
SELECT `+conversationColumns+`
FROM conversations
WHERE id = $1
`, conversationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Conversation{}, ErrConversationNotFound
		}
		return model.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}

	return conv, nil
}

// ListActive returns the user's active conversations, most recent activity
// first.
func (r *ConversationRepo) ListActive(ctx context.Context, userID int64) ([]model.Conversation, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+conversationColumns+`
FROM conversations
WHERE (user_low_id = $1 OR user_high_id = $1) AND status = 'active'
ORDER BY COALESCE(last_message_at, created_at) DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active conversations: %w", err)
	}
	defer rows.Close()

	var convs []model.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}

	return convs, nil
}

// ListActiveIDs returns the ids of the user's active conversations; the live
// transport uses it to auto-subscribe a freshly connected client.
func (r *ConversationRepo) ListActiveIDs(ctx context.Context, userID int64) ([]int64, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id
FROM conversations
WHERE (user_low_id = $1 OR user_high_id = $1) AND status = 'active'
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active conversation ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan conversation id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation ids: %w", err)
	}

	return ids, nil
}

// RecordMessage updates the last-message snapshot and bumps the recipient's
// unread counter in one atomic statement.
func (r *ConversationRepo) RecordMessage(ctx context.Context, tx pgx.Tx, conversationID, senderID, recipientID int64, content string, at time.Time) error {
	if conversationID <= 0 || senderID <= 0 || recipientID <= 0 {
		return fmt.Errorf("invalid message snapshot payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	tag, err := tx.Exec(ctx, `
UPDATE conversations
SET
	last_message_content = $2,
	last_message_sender_id = $3,
	last_message_at = $4,
	unread_low = unread_low + CASE WHEN user_low_id = $5 THEN 1 ELSE 0 END,
	unread_high = unread_high + CASE WHEN user_high_id = $5 THEN 1 ELSE 0 END,
	updated_at = NOW()
WHERE id = $1
`, conversationID, content, senderID, at, recipientID)
	if err != nil {
		return fmt.Errorf("record message on conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}

	return nil
}

// ResetUnread zeroes the given participant's unread counter.
func (r *ConversationRepo) ResetUnread(ctx context.Context, tx pgx.Tx, conversationID, userID int64) error {
	if conversationID <= 0 || userID <= 0 {
		return fmt.Errorf("invalid unread reset payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
UPDATE conversations
SET
	unread_low = CASE WHEN user_low_id = $2 THEN 0 ELSE unread_low END,
	unread_high = CASE WHEN user_high_id = $2 THEN 0 ELSE unread_high END,
	updated_at = NOW()
WHERE id = $1
`, conversationID, userID); err != nil {
		return fmt.Errorf("reset unread counter: %w", err)
	}

	return nil
}

func (r *ConversationRepo) Archive(ctx context.Context, conversationID int64) error {
	if conversationID <= 0 {
		return ErrConversationNotFound
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE conversations
SET status = 'archived', updated_at = NOW()
WHERE id = $1 AND status = 'active'
`, conversationID); err != nil {
		return fmt.Errorf("archive conversation: %w", err)
	}

	return nil
}
