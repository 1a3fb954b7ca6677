package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Princeaman007/agence/internal/domain/enums"
	"github.com/Princeaman007/agence/internal/domain/model"
	pgrepo "github.com/Princeaman007/agence/internal/repo/postgres"
	redrepo "github.com/Princeaman007/agence/internal/repo/redis"
	authsvc "github.com/Princeaman007/agence/internal/services/auth"
)

type fakeUserStore struct {
	nextID int64
	byMail map[string]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, byMail: map[string]model.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, email, passwordHash, name, timezone string) (model.User, error) {
	if _, ok := s.byMail[email]; ok {
		return model.User{}, pgrepo.ErrEmailTaken
	}
	user := model.User{
		ID:           s.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		AccountType:  enums.AccountTypeFree,
		Timezone:     timezone,
	}
	s.nextID++
	s.byMail[email] = user
	return user, nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	user, ok := s.byMail[email]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t, 10)
	defer cleanup()

	ctx := context.Background()
	regRes, err := svc.Register(ctx, "alice@example.com", "s3cret-pass", "Alice", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if regRes.Me.AccountType != string(enums.AccountTypeFree) {
		t.Fatalf("new accounts should start on the free tier, got %s", regRes.Me.AccountType)
	}

	if _, err := svc.Register(ctx, "alice@example.com", "another-pass", "Alice", ""); !errors.Is(err, authsvc.ErrEmailTaken) {
		t.Fatalf("duplicate email should fail with ErrEmailTaken, got err=%v", err)
	}

	loginRes, err := svc.Login(ctx, "alice@example.com", "s3cret-pass", "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken); err != nil {
		t.Fatalf("validate access token: %v", err)
	}

	if _, err := svc.Login(ctx, "alice@example.com", "wrong-pass", "10.0.0.1"); !errors.Is(err, authsvc.ErrBadCredentials) {
		t.Fatalf("wrong password should fail with ErrBadCredentials, got err=%v", err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t, 3)
	defer cleanup()

	ctx := context.Background()
	if _, err := svc.Register(ctx, "bob@example.com", "s3cret-pass", "Bob", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Login(ctx, "bob@example.com", "wrong-pass", "10.0.0.2"); !errors.Is(err, authsvc.ErrBadCredentials) {
			t.Fatalf("attempt %d: expected ErrBadCredentials, got %v", i+1, err)
		}
	}

	if _, err := svc.Login(ctx, "bob@example.com", "s3cret-pass", "10.0.0.2"); !errors.Is(err, authsvc.ErrTooManyAttempts) {
		t.Fatalf("fourth attempt should be rate limited, got err=%v", err)
	}

	// A different address is counted separately.
	if _, err := svc.Login(ctx, "bob@example.com", "s3cret-pass", "10.0.0.3"); err != nil {
		t.Fatalf("login from another ip: %v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t, 10)
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.Register(ctx, "carol@example.com", "s3cret-pass", "Carol", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	refreshRes, err := svc.Refresh(ctx, loginRes.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if refreshRes.RefreshToken == loginRes.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	if _, err := svc.Refresh(ctx, loginRes.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("old refresh token should be unauthorized, got err=%v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, refreshRes.AccessToken); err != nil {
		t.Fatalf("new access token validation failed: %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t, 10)
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.Register(ctx, "dave@example.com", "s3cret-pass", "Dave", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken)
	if err != nil {
		t.Fatalf("validate access token before logout: %v", err)
	}

	if err := svc.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("access token should be unauthorized after logout, got err=%v", err)
	}
}

func newAuthServiceForTest(t *testing.T, loginMax int) (*authsvc.Service, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	sessions := redrepo.NewSessionRepo(client)
	rate := redrepo.NewRateRepo(client)
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, sessions, newFakeUserStore(), rate, 45*24*time.Hour, loginMax, "Europe/Paris")

	cleanup := func() {
		_ = client.Close()
		mini.Close()
	}

	return svc, cleanup
}
