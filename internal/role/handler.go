package role

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
	Create(ctx context.Context, actorID int64, req CreateRoleRequest) (*Role, error)
	GetByRoleID(ctx context.Context, roleID string) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
	Update(ctx context.Context, actorID int64, roleID string, req UpdateRoleRequest) (*Role, error)
	SoftDelete(ctx context.Context, actorID int64, roleID string) error
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

// CreateRole handles POST /roles
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	tc, ok := internal.TenantFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateRoleRequest
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

// GetRole handles GET /roles/{roleID}
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	found, err := h.Service.GetByRoleID(r.Context(), chi.URLParam(r, "roleID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, found)
}

// ListRoles handles GET /roles
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Roles: roles})
}

// UpdateRole handles PATCH /roles/{roleID}
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	tc, ok := internal.TenantFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(r.Context(), tc.UserID, chi.URLParam(r, "roleID"), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

// DeleteRole handles DELETE /roles/{roleID}
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	tc, ok := internal.TenantFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Service.SoftDelete(r.Context(), tc.UserID, chi.URLParam(r, "roleID")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
