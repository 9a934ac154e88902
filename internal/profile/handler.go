package profile

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/salesloop/crm-backend/internal"
	"github.com/salesloop/crm-backend/internal/transport"
	"github.com/salesloop/crm-backend/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, actorID int64, req CreateProfileRequest) (*Profile, error)
	GetByProfileID(ctx context.Context, profileID string) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
	Update(ctx context.Context, actorID int64, profileID string, req UpdateProfileRequest) (*Profile, error)
	SoftDelete(ctx context.Context, actorID int64, profileID string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// CreateProfile handles POST /profiles
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	tc, ok := internal.TenantFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(r.Context(), tc.UserID, req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

// GetProfile handles GET /profiles/{profileID}
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	found, err := h.Service.GetByProfileID(r.Context(), chi.URLParam(r, "profileID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, found)
}

// ListProfiles handles GET /profiles
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Profiles: profiles})
}

// UpdateProfile handles PATCH /profiles/{profileID}
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	tc, ok := internal.TenantFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(r.Context(), tc.UserID, chi.URLParam(r, "profileID"), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

// DeleteProfile handles DELETE /profiles/{profileID}
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	tc, ok := internal.TenantFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Service.SoftDelete(r.Context(), tc.UserID, chi.URLParam(r, "profileID")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
