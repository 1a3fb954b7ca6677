package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Princeaman007/agence/internal/domain/enums"
	"github.com/Princeaman007/agence/internal/domain/model"
	pgrepo "github.com/Princeaman007/agence/internal/repo/postgres"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrSelfBlock       = errors.New("cannot block yourself")
	ErrBlocked         = errors.New("blocked")
	ErrDependenciesNil = errors.New("users service dependencies are nil")
)

type UserStore interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
	SetOnline(ctx context.Context, userID int64, online bool, lastSeen time.Time) error
}

type BlockStore interface {
	Upsert(ctx context.Context, actorUserID, targetUserID int64, reason string) error
	Delete(ctx context.Context, actorUserID, targetUserID int64) error
	IsBlockedEither(ctx context.Context, userA, userB int64) (bool, error)
}

// ViewGate spends a free-tier profile view before a profile is served.
type ViewGate interface {
	ConsumeProfileView(ctx context.Context, viewer model.User, timezone string) error
}

type Service struct {
	users  UserStore
	blocks BlockStore
	views  ViewGate
	now    func() time.Time
}

// PublicProfile is the projection other users are allowed to see.
type PublicProfile struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	AccountType enums.AccountType `json:"account_type"`
	IsOnline    bool              `json:"is_online"`
	LastSeenAt  *time.Time        `json:"last_seen_at,omitempty"`
}

func NewService(users UserStore, blocks BlockStore, views ViewGate) *Service {
	return &Service{
		users:  users,
		blocks: blocks,
		views:  views,
		now:    time.Now,
	}
}

func (s *Service) Me(ctx context.Context, userID int64) (model.User, error) {
	if s.users == nil {
		return model.User{}, ErrDependenciesNil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("find user: %w", err)
	}

	return user, nil
}

// Profile serves another user's public profile. Free-tier viewers consume a
// daily profile view first; a block in either direction hides the profile.
func (s *Service) Profile(ctx context.Context, viewerID, targetID int64, timezone string) (PublicProfile, error) {
	if s.users == nil || s.blocks == nil || s.views == nil {
		return PublicProfile{}, ErrDependenciesNil
	}
	if viewerID == targetID {
		return PublicProfile{}, ErrNotFound
	}

	viewer, err := s.Me(ctx, viewerID)
	if err != nil {
		return PublicProfile{}, err
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return PublicProfile{}, ErrNotFound
		}
		return PublicProfile{}, fmt.Errorf("find target user: %w", err)
	}

	blocked, err := s.blocks.IsBlockedEither(ctx, viewerID, targetID)
	if err != nil {
		return PublicProfile{}, fmt.Errorf("check block state: %w", err)
	}
	if blocked {
		return PublicProfile{}, ErrBlocked
	}

	if err := s.views.ConsumeProfileView(ctx, viewer, timezone); err != nil {
		return PublicProfile{}, err
	}

	return PublicProfile{
		ID:          target.ID,
		Name:        target.Name,
		AccountType: target.AccountType,
		IsOnline:    target.IsOnline,
		LastSeenAt:  target.LastSeenAt,
	}, nil
}

func (s *Service) Block(ctx context.Context, actorID, targetID int64, reason string) error {
	if s.users == nil || s.blocks == nil {
		return ErrDependenciesNil
	}
	if actorID == targetID {
		return ErrSelfBlock
	}

	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("find target user: %w", err)
	}

	if err := s.blocks.Upsert(ctx, actorID, targetID, reason); err != nil {
		return fmt.Errorf("block user: %w", err)
	}

	return nil
}

func (s *Service) Unblock(ctx context.Context, actorID, targetID int64) error {
	if s.blocks == nil {
		return ErrDependenciesNil
	}

	if err := s.blocks.Delete(ctx, actorID, targetID); err != nil {
		return fmt.Errorf("unblock user: %w", err)
	}

	return nil
}

// SetOnline flips the presence flag; the live transport calls it on connect
// and disconnect.
func (s *Service) SetOnline(ctx context.Context, userID int64, online bool) error {
	if s.users == nil {
		return ErrDependenciesNil
	}

	if err := s.users.SetOnline(ctx, userID, online, s.now().UTC()); err != nil {
		return fmt.Errorf("set online state: %w", err)
	}

	return nil
}
