package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/Princeaman007/agence/internal/services/auth"
	quotasvc "github.com/Princeaman007/agence/internal/services/quota"
	userssvc "github.com/Princeaman007/agence/internal/services/users"
	"github.com/Princeaman007/agence/internal/transport/http/dto"
	httperrors "github.com/Princeaman007/agence/internal/transport/http/errors"
)

type MeHandler struct {
	service *userssvc.Service
}

func NewMeHandler(service *userssvc.Service) *MeHandler {
	return &MeHandler{service: service}
}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	user, err := h.service.Me(r.Context(), identity.UserID)
	if err != nil {
		handleUsersError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MeResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		AccountType: string(user.AccountType),
		Timezone:    user.Timezone,
		IsOnline:    user.IsOnline,
		LastSeenAt:  user.LastSeenAt,
		CreatedAt:   user.CreatedAt,
	})
}

// Profile serves another user's public card; free tier spends one of its
// daily profile views here.
func (h *MeHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}
	targetID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	profile, err := h.service.Profile(r.Context(), identity.UserID, targetID, timezoneFromRequest(r))
	if err != nil {
		if exceeded, ok := quotasvc.IsExceeded(err); ok {
			writeQuotaExceeded(w, "PROFILE_VIEWS_LIMIT_REACHED", "daily profile view limit reached", exceeded)
			return
		}
		handleUsersError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PublicProfileResponse{
		ID:          profile.ID,
		Name:        profile.Name,
		AccountType: string(profile.AccountType),
		IsOnline:    profile.IsOnline,
		LastSeenAt:  profile.LastSeenAt,
	})
}

func (h *MeHandler) Block(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	var req dto.BlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.service.Block(r.Context(), identity.UserID, req.UserID, req.Reason); err != nil {
		handleUsersError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *MeHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	var req dto.UnblockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.service.Unblock(r.Context(), identity.UserID, req.UserID); err != nil {
		handleUsersError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func handleUsersError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, userssvc.ErrNotFound):
		writeNotFound(w, "USER_NOT_FOUND", "user not found")
	case errors.Is(err, userssvc.ErrSelfBlock):
		writeBadRequest(w, "VALIDATION_ERROR", "cannot block yourself")
	case errors.Is(err, userssvc.ErrBlocked):
		writeForbidden(w, "BLOCKED", "profile is not available")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
