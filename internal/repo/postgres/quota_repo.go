package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrMessagesLimitReached     = errors.New("daily message limit reached")
	ErrProfileViewsLimitReached = errors.New("daily profile view limit reached")
)

type QuotaRepo struct {
	pool *pgxpool.Pool
}

func NewQuotaRepo(pool *pgxpool.Pool) *QuotaRepo {
	return &QuotaRepo{pool: pool}
}

func (r *QuotaRepo) GetMessagesUsed(ctx context.Context, userID int64, dayKey string) (int, error) {
	if userID <= 0 || strings.TrimSpace(dayKey) == "" {
		return 0, fmt.Errorf("invalid quota lookup payload")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var used int
	err := r.pool.QueryRow(ctx, `
SELECT messages_used
FROM quotas_daily
WHERE user_id = $1 AND day_key = $2::date
LIMIT 1
`, userID, dayKey).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get daily quota usage: %w", err)
	}

	return used, nil
}

// ConsumeMessageWithLimit increments the day's message counter, failing
// without a write once the limit is hit. The WHERE guard on the conflict
// branch makes check-and-increment a single atomic statement.
func (r *QuotaRepo) ConsumeMessageWithLimit(ctx context.Context, tx pgx.Tx, userID int64, dayKey, timezone string, limit int) (int, error) {
	if userID <= 0 || strings.TrimSpace(dayKey) == "" || limit <= 0 {
		return 0, fmt.Errorf("invalid message quota consume payload")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}
	if strings.TrimSpace(timezone) == "" {
		timezone = "UTC"
	}

	var used int
	err := tx.QueryRow(ctx, `
INSERT INTO quotas_daily (
	user_id,
	day_key,
	tz_name,
	messages_used,
	profile_views_used,
	updated_at
) VALUES ($1, $2::date, $3, 1, 0, NOW())
ON CONFLICT (user_id, day_key) DO UPDATE SET
	messages_used = quotas_daily.messages_used + 1,
	tz_name = EXCLUDED.tz_name,
	updated_at = NOW()
WHERE quotas_daily.messages_used < $4
RETURNING messages_used
`, userID, dayKey, timezone, limit).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrMessagesLimitReached
		}
		return 0, fmt.Errorf("consume message quota with limit: %w", err)
	}

	return used, nil
}

func (r *QuotaRepo) ConsumeProfileViewWithLimit(ctx context.Context, userID int64, dayKey, timezone string, limit int) (int, error) {
	if userID <= 0 || strings.TrimSpace(dayKey) == "" || limit <= 0 {
		return 0, fmt.Errorf("invalid profile view quota consume payload")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(timezone) == "" {
		timezone = "UTC"
	}

	var used int
	err := r.pool.QueryRow(ctx, `
INSERT INTO quotas_daily (
	user_id,
	day_key,
	tz_name,
	messages_used,
	profile_views_used,
	updated_at
) VALUES ($1, $2::date, $3, 0, 1, NOW())
ON CONFLICT (user_id, day_key) DO UPDATE SET
	profile_views_used = quotas_daily.profile_views_used + 1,
	tz_name = EXCLUDED.tz_name,
	updated_at = NOW()
WHERE quotas_daily.profile_views_used < $4
RETURNING profile_views_used
`, userID, dayKey, timezone, limit).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrProfileViewsLimitReached
		}
		return 0, fmt.Errorf("consume profile view quota with limit: %w", err)
	}

	return used, nil
}

// DeleteOlderThan prunes stale quota rows; the cleanup job calls it.
func (r *QuotaRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM quotas_daily
WHERE day_key < $1::date
`, cutoff.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("delete stale quota rows: %w", err)
	}

	return tag.RowsAffected(), nil
}
