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

var ErrMessageNotFound = errors.New("message not found")

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

const messageColumns = `id, conversation_id, sender_id, recipient_id, type, content, is_read, read_at, deleted_by, created_at`

func scanMessage(row pgx.Row) (model.Message, error) {
	var m model.Message
	err := row.Scan(
		&m.ID,
		&m.ConversationID,
		&m.SenderID,
		&m.RecipientID,
		&m.Type,
		&m.Content,
		&m.IsRead,
		&m.ReadAt,
		&m.DeletedBy,
		&m.CreatedAt,
	)
	return m, err
}

func (r *MessageRepo) Create(ctx context.Context, tx pgx.Tx, msg model.Message) (model.Message, error) {
	if msg.ConversationID <= 0 || msg.SenderID <= 0 || msg.RecipientID <= 0 {
		return model.Message{}, fmt.Errorf("invalid message payload")
	}
	if tx == nil {
		return model.Message{}, fmt.Errorf("transaction is required")
	}

	saved, err := scanMessage(tx.QueryRow(ctx, `
INSERT INTO messages (conversation_id, sender_id, recipient_id, type, content, is_read, deleted_by, created_at)
VALUES ($1, $2, $3, $4, $5, FALSE, '{}', NOW())
RETURNING `+messageColumns+`
`, msg.ConversationID, msg.SenderID, msg.RecipientID, msg.Type, msg.Content))
	if err != nil {
		return model.Message{}, fmt.Errorf("create message: %w", err)
	}

	return saved, nil
}

func (r *MessageRepo) GetByID(ctx context.Context, messageID int64) (model.Message, error) {
	if messageID <= 0 {
		return model.Message{}, ErrMessageNotFound
	}
	if r.pool == nil {
		return model.Message{}, fmt.Errorf("postgres pool is nil")
	}

	msg, err := scanMessage(r.pool.QueryRow(ctx, `
SELECT `+messageColumns+`
FROM messages
WHERE id = $1
`, messageID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Message{}, ErrMessageNotFound
		}
		return model.Message{}, fmt.Errorf("get message: %w", err)
	}

	return msg, nil
}

// ListPage returns one page of a conversation, newest page first, skipping
// messages the viewer soft-deleted. Page numbering starts at 1.
func (r *MessageRepo) ListPage(ctx context.Context, conversationID, viewerID int64, page, limit int) ([]model.Message, error) {
	if conversationID <= 0 || viewerID <= 0 {
		return nil, fmt.Errorf("invalid message page payload")
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+messageColumns+`
FROM messages
WHERE conversation_id = $1 AND NOT ($2 = ANY(deleted_by))
ORDER BY created_at DESC
OFFSET $3 LIMIT $4
`, conversationID, viewerID, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list message page: %w", err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Reverse into chronological order for display.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	return msgs, nil
}

// MarkConversationRead bulk-marks every unread message addressed to the
// reader and returns how many rows changed.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, tx pgx.Tx, conversationID, readerID int64, at time.Time) (int64, error) {
	if conversationID <= 0 || readerID <= 0 {
		return 0, fmt.Errorf("invalid mark-read payload")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	tag, err := tx.Exec(ctx, `
UPDATE messages
SET is_read = TRUE, read_at = $3
WHERE conversation_id = $1 AND recipient_id = $2 AND NOT is_read
`, conversationID, readerID, at)
	if err != nil {
		return 0, fmt.Errorf("mark conversation read: %w", err)
	}

	return tag.RowsAffected(), nil
}

// SoftDelete hides the message from the given user only; idempotent.
func (r *MessageRepo) SoftDelete(ctx context.Context, messageID, userID int64) error {
	if messageID <= 0 || userID <= 0 {
		return fmt.Errorf("invalid message delete payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE messages
SET deleted_by = array_append(deleted_by, $2)
WHERE id = $1 AND NOT ($2 = ANY(deleted_by))
`, messageID, userID); err != nil {
		return fmt.Errorf("soft-delete message: %w", err)
	}

	return nil
}
