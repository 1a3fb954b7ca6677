package quota

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Princeaman007/agence/internal/domain/model"
	"github.com/Princeaman007/agence/internal/domain/rules"
	pgrepo "github.com/Princeaman007/agence/internal/repo/postgres"
)

var ErrDependenciesNil = errors.New("quota service dependencies are nil")

// ExceededError is returned when a free-tier daily counter is exhausted. The
// HTTP boundary serializes Limit and Used so clients can render the paywall.
type ExceededError struct {
	Kind  string
	Limit int
	Used  int
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("daily %s limit reached (%d/%d)", e.Kind, e.Used, e.Limit)
}

func IsExceeded(err error) (*ExceededError, bool) {
	var exceeded *ExceededError
	if errors.As(err, &exceeded) {
		return exceeded, true
	}
	return nil, false
}

type Store interface {
	GetMessagesUsed(ctx context.Context, userID int64, dayKey string) (int, error)
	ConsumeProfileViewWithLimit(ctx context.Context, userID int64, dayKey, timezone string, limit int) (int, error)
}

type Config struct {
	FreeMessagesPerDay     int
	FreeProfileViewsPerDay int
	DefaultTimezone        string
}

type Service struct {
	store Store
	cfg   Config
	now   func() time.Time
}

type MessageLimits struct {
	Limit     int
	Used      int
	Remaining int
	Unlimited bool
	ResetAt   time.Time
}

func NewService(store Store, cfg Config) *Service {
	if cfg.FreeMessagesPerDay <= 0 {
		cfg.FreeMessagesPerDay = 5
	}
	if cfg.FreeProfileViewsPerDay <= 0 {
		cfg.FreeProfileViewsPerDay = 10
	}
	if strings.TrimSpace(cfg.DefaultTimezone) == "" {
		cfg.DefaultTimezone = "UTC"
	}

	return &Service{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// MessageLimitsFor reports the user's remaining daily message allowance.
// Remaining is -1 for paid tiers.
func (s *Service) MessageLimitsFor(ctx context.Context, user model.User, timezone string) (MessageLimits, error) {
	if s.store == nil {
		return MessageLimits{}, ErrDependenciesNil
	}

	now := s.now().UTC()
	loc := s.resolveLocation(user, timezone)
	resetAt := rules.NextResetAt(now, loc)

	if user.AccountType.Paid() {
		return MessageLimits{
			Limit:     -1,
			Remaining: -1,
			Unlimited: true,
			ResetAt:   resetAt,
		}, nil
	}

	used, err := s.store.GetMessagesUsed(ctx, user.ID, rules.DayKey(now, loc))
	if err != nil {
		return MessageLimits{}, fmt.Errorf("read daily message quota: %w", err)
	}

	remaining := s.cfg.FreeMessagesPerDay - used
	if remaining < 0 {
		remaining = 0
	}

	return MessageLimits{
		Limit:     s.cfg.FreeMessagesPerDay,
		Used:      used,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// ConsumeProfileView spends one daily profile view for free-tier users; paid
// tiers pass through untouched.
func (s *Service) ConsumeProfileView(ctx context.Context, viewer model.User, timezone string) error {
	if s.store == nil {
		return ErrDependenciesNil
	}
	if viewer.AccountType.Paid() {
		return nil
	}

	now := s.now().UTC()
	loc := s.resolveLocation(viewer, timezone)
	dayKey := rules.DayKey(now, loc)

	_, err := s.store.ConsumeProfileViewWithLimit(ctx, viewer.ID, dayKey, loc.String(), s.cfg.FreeProfileViewsPerDay)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileViewsLimitReached) {
			return &ExceededError{
				Kind:  "profile_views",
				Limit: s.cfg.FreeProfileViewsPerDay,
				Used:  s.cfg.FreeProfileViewsPerDay,
			}
		}
		return fmt.Errorf("consume profile view quota: %w", err)
	}

	return nil
}

func (s *Service) resolveLocation(user model.User, timezone string) *time.Location {
	fallback := user.Timezone
	if strings.TrimSpace(fallback) == "" {
		fallback = s.cfg.DefaultTimezone
	}
	return rules.ResolveLocation(timezone, fallback)
}
