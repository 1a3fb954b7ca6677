package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
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

func (s *fakeUserStore) Create(_ context.Context, email, passwordHash, name, timezone string) (model.User, error) {
	if _, ok := s.byMail[email]; ok {
		return model.User{}, pgrepo.ErrEmailTaken
	}
	s.nextID++
	user := model.User{
		ID:           s.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		AccountType:  enums.AccountTypeFree,
		Timezone:     timezone,
	}
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

func newAuthServiceForTest(t *testing.T) (*authsvc.Service, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	sessions := redrepo.NewSessionRepo(client)
	rate := redrepo.NewRateRepo(client)
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, sessions, &fakeUserStore{byMail: map[string]model.User{}}, rate, 45*24*time.Hour, 10, "Europe/Paris")

	cleanup := func() {
		_ = client.Close()
		mini.Close()
	}

	return svc, cleanup
}

func TestAuthMiddlewareRejectsMissingBearer(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	mw := AuthMiddleware(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without a bearer token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	mw := AuthMiddleware(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called with an invalid token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	res, err := svc.Register(context.Background(), "alice@example.com", "s3cret-pass", "Alice", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	mw := AuthMiddleware(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+res.AccessToken)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("identity missing in context")
		}
		if identity.UserID != res.Me.ID {
			t.Fatalf("identity user mismatch: got %d want %d", identity.UserID, res.Me.ID)
		}
		if identity.AccountType != string(enums.AccountTypeFree) {
			t.Fatalf("unexpected account type: %q", identity.AccountType)
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}
