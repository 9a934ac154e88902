package lead

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/salesloop/crm-backend/internal"
	"github.com/salesloop/crm-backend/internal/transport"
	"github.com/salesloop/crm-backend/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, actorID int64, req CreateLeadRequest) (*Lead, error)
	Get(ctx context.Context, actorID int64, leadID string) (*Lead, error)
	List(ctx context.Context, actorID int64, limit, offset int) ([]*Lead, error)
	Update(ctx context.Context, actorID int64, leadID string, req UpdateLeadRequest) (*Lead, error)
	SoftDelete(ctx context.Context, actorID int64, leadID string) error
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

// CreateLead handles POST /leads
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	tc, ok := internal.TenantFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateLeadRequest
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

// GetLead handles GET /leads/{leadID}
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	tc, ok := internal.TenantFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	found, err := h.Service.Get(r.Context(), tc.UserID, chi.URLParam(r, "leadID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, found)
}

// ListLeads handles GET /leads
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	tc, ok := internal.TenantFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	leads, err := h.Service.List(r.Context(), tc.UserID, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Leads: leads})
}

// UpdateLead handles PATCH /leads/{leadID}
func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	tc, ok := internal.TenantFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(r.Context(), tc.UserID, chi.URLParam(r, "leadID"), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

// DeleteLead handles DELETE /leads/{leadID}
func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	tc, ok := internal.TenantFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Service.SoftDelete(r.Context(), tc.UserID, chi.URLParam(r, "leadID")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
