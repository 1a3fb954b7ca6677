package handlers

import (
	"errors"
	"net/http"

	"github.com/Princeaman007/agence/internal/domain/model"
	authsvc "github.com/Princeaman007/agence/internal/services/auth"
	compatsvc "github.com/Princeaman007/agence/internal/services/compat"
	"github.com/Princeaman007/agence/internal/transport/http/dto"
	httperrors "github.com/Princeaman007/agence/internal/transport/http/errors"
)

type CompatHandler struct {
	service *compatsvc.Service
}

func NewCompatHandler(service *compatsvc.Service) *CompatHandler {
	return &CompatHandler{service: service}
}

func (h *CompatHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "COMPAT_SERVICE_UNAVAILABLE", "compatibility service is unavailable")
		return
	}

	var req dto.SubmitTestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	saved, err := h.service.Submit(r.Context(), identity.UserID, model.AnswerSet{
		Personality:  req.Personality,
		Values:       req.Values,
		Lifestyle:    req.Lifestyle,
		LifeGoals:    req.LifeGoals,
		Dealbreakers: req.Dealbreakers,
	})
	if err != nil {
		handleCompatError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SubmitTestResponse{OK: true, AnswerSet: saved})
}

func (h *CompatHandler) MyTest(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "COMPAT_SERVICE_UNAVAILABLE", "compatibility service is unavailable")
		return
	}

	set, err := h.service.Mine(r.Context(), identity.UserID)
	if err != nil {
		handleCompatError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, set)
}

func (h *CompatHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "COMPAT_SERVICE_UNAVAILABLE", "compatibility service is unavailable")
		return
	}
	targetID, ok := pathID(r, "userID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	result, err := h.service.ScoreAgainst(r.Context(), identity.UserID, targetID)
	if err != nil {
		handleCompatError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CalculateResponse{
		UserID:         targetID,
		Score:          result.Score,
		HasDealbreaker: result.HasDealbreaker,
	})
}

func (h *CompatHandler) Matches(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "COMPAT_SERVICE_UNAVAILABLE", "compatibility service is unavailable")
		return
	}

	result, err := h.service.Matches(r.Context(), identity.UserID, queryInt(r, "min_score"), queryInt(r, "limit"))
	if err != nil {
		handleCompatError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{
		Matches:   result.Matches,
		Total:     result.Total,
		Displayed: result.Displayed,
	})
}

func (h *CompatHandler) Details(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "COMPAT_SERVICE_UNAVAILABLE", "compatibility service is unavailable")
		return
	}
	targetID, ok := pathID(r, "userID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	details, err := h.service.Details(r.Context(), identity.UserID, targetID)
	if err != nil {
		handleCompatError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, details)
}

func handleCompatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, compatsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid questionnaire payload")
	case errors.Is(err, compatsvc.ErrNotFound):
		writeNotFound(w, "TEST_NOT_FOUND", "questionnaire not found")
	case errors.Is(err, compatsvc.ErrTargetNotFound):
		writeNotFound(w, "USER_NOT_FOUND", "target user not found")
	case errors.Is(err, compatsvc.ErrTestIncomplete):
		writeBadRequest(w, "TEST_INCOMPLETE", "complete your questionnaire first")
	case errors.Is(err, compatsvc.ErrTargetIncomplete):
		writeBadRequest(w, "TARGET_TEST_INCOMPLETE", "target has not completed the questionnaire")
	case errors.Is(err, compatsvc.ErrPremiumRequired):
		writeForbidden(w, "PREMIUM_REQUIRED", "detailed breakdown requires a premium account")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
