package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Princeaman007/agence/internal/domain/enums"
	"github.com/Princeaman007/agence/internal/domain/model"
	pgrepo "github.com/Princeaman007/agence/internal/repo/postgres"
	authsvc "github.com/Princeaman007/agence/internal/services/auth"
	compatsvc "github.com/Princeaman007/agence/internal/services/compat"
)

type stubAnswerStore struct {
	sets map[int64]model.AnswerSet
}

func (s *stubAnswerStore) Upsert(_ context.Context, set model.AnswerSet) (model.AnswerSet, error) {
	s.sets[set.UserID] = set
	return set, nil
}

func (s *stubAnswerStore) Get(_ context.Context, userID int64) (model.AnswerSet, error) {
	set, ok := s.sets[userID]
	if !ok {
		return model.AnswerSet{}, pgrepo.ErrAnswerSetNotFound
	}
	return set, nil
}

func (s *stubAnswerStore) ListCompletedExcept(_ context.Context, userID int64) ([]model.AnswerSet, error) {
	var out []model.AnswerSet
	for id, set := range s.sets {
		if id != userID && set.IsCompleted {
			out = append(out, set)
		}
	}
	return out, nil
}

func intp(v int) *int { return &v }

func completedAnswerSet(userID int64) model.AnswerSet {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return model.AnswerSet{
		UserID:      userID,
		Personality: model.Personality{Openness: intp(7), Extraversion: intp(5)},
		Values:      model.Values{Family: intp(8)},
		LifeGoals:   model.LifeGoals{WantsChildren: enums.GoalYes},
		IsCompleted: true,
		CompletedAt: &now,
	}
}

func TestCalculateHandlerHappyPath(t *testing.T) {
	answers := &stubAnswerStore{sets: map[int64]model.AnswerSet{
		1: completedAnswerSet(1),
		2: completedAnswerSet(2),
	}}
	users := &stubUserStore{users: map[int64]model.User{
		1: {ID: 1, AccountType: enums.AccountTypeFree},
		2: {ID: 2, AccountType: enums.AccountTypeFree},
	}}
	h := NewCompatHandler(compatsvc.NewService(answers, users, compatsvc.Config{}))

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("userID", "2")

	req := httptest.NewRequest(http.MethodGet, "/compatibility/calculate/2", nil)
	ctx := authsvc.WithIdentity(context.Background(), authsvc.Identity{UserID: 1, SID: "sid-1"})
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	h.Calculate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var payload struct {
		UserID         int64 `json:"user_id"`
		Score          int   `json:"score"`
		HasDealbreaker bool  `json:"has_dealbreaker"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.UserID != 2 {
		t.Fatalf("unexpected user id: %d", payload.UserID)
	}
	if payload.Score != 100 {
		t.Fatalf("identical questionnaires should score 100, got %d", payload.Score)
	}
	if payload.HasDealbreaker {
		t.Fatalf("no dealbreaker expected")
	}
}
