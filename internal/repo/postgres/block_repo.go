package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type BlockRepo struct {
	pool *pgxpool.Pool
}

func NewBlockRepo(pool *pgxpool.Pool) *BlockRepo {
	return &BlockRepo{pool: pool}
}

func (r *BlockRepo) Upsert(ctx context.Context, actorUserID, targetUserID int64, reason string) error {
	if actorUserID <= 0 || targetUserID <= 0 || actorUserID == targetUserID {
		return fmt.Errorf("invalid block payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO blocks (
	actor_user_id,
	target_user_id,
	reason,
	created_at
) VALUES ($1, $2, $3, NOW())
ON CONFLICT (actor_user_id, target_user_id) DO UPDATE SET
	reason = EXCLUDED.reason
`, actorUserID, targetUserID, strings.TrimSpace(reason)); err != nil {
		return fmt.Errorf("upsert block: %w", err)
	}

	return nil
}

func (r *BlockRepo) Delete(ctx context.Context, actorUserID, targetUserID int64) error {
	if actorUserID <= 0 || targetUserID <= 0 {
		return fmt.Errorf("invalid unblock payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
DELETE FROM blocks
WHERE actor_user_id = $1 AND target_user_id = $2
`, actorUserID, targetUserID); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}

	return nil
}

// IsBlockedEither reports whether either user blocked the other.
func (r *BlockRepo) IsBlockedEither(ctx context.Context, userA, userB int64) (bool, error) {
	if userA <= 0 || userB <= 0 {
		return false, fmt.Errorf("invalid block lookup payload")
	}
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var blocked bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM blocks
	WHERE (actor_user_id = $1 AND target_user_id = $2)
	   OR (actor_user_id = $2 AND target_user_id = $1)
)
`, userA, userB).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("check block state: %w", err)
	}

	return blocked, nil
}
