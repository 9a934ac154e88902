package lead

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/salesloop/crm-backend/internal"
	"github.com/salesloop/crm-backend/internal/authz"
	"github.com/salesloop/crm-backend/internal/core/common/validation"
	leadDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/lead"
)

// Field names checked against the caller's field permissions before a value
// is returned or written.
const (
	FieldEmail         = "email"
	FieldPhone         = "phone"
	FieldAnnualRevenue = "annual_revenue"
)

type Service struct {
	repo    Repository
	decider authz.Decider
	logger  *slog.Logger
}

func NewService(repo Repository, decider authz.Decider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		decider: decider,
		logger:  logger,
	}
}

// Create inserts a lead owned by the actor.
func (s *Service) Create(ctx context.Context, actorID int64, req CreateLeadRequest) (*Lead, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}

	allowed, err := s.decider.HasPermission(ctx, actorID, authz.ObjectLead, authz.ActionCreate)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, internal.ErrAccessDenied
	}

	if err := validation.ValidateLeadName(req.FirstName, req.LastName); err != nil {
		return nil, err
	}
	if req.Email != "" {
		if err := validation.ValidateEmail(req.Email); err != nil {
			return nil, err
		}
	}

	newLead := &leadDatamodel.Lead{
		LeadID:    uuid.NewString(),
		TenantID:  tenantID,
		OwnerID:   actorID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Company:   req.Company,
		Email:     req.Email,
		Phone:     req.Phone,
		Status:    leadDatamodel.StatusNew,
		Source:    req.Source,
	}
	if req.AnnualRevenue != nil {
		newLead.AnnualRevenue = *req.AnnualRevenue
	}

	if err := s.repo.CreateLead(ctx, newLead); err != nil {
		return nil, internal.NewInternalError("failed to create lead", err)
	}

	s.logger.Info("lead created", "tenant_id", tenantID, "lead_id", newLead.LeadID, "owner_id", actorID)
	return s.mask(ctx, actorID, newLead)
}

// Get returns one lead after the full decision chain: tenant ownership,
// object permission, record visibility, then field masking.
func (s *Service) Get(ctx context.Context, actorID int64, leadID string) (*Lead, error) {
	l, err := s.resolveVisible(ctx, actorID, leadID, authz.ActionRead)
	if err != nil {
		return nil, err
	}
	return s.mask(ctx, actorID, l)
}

// List pages through the tenant's leads and keeps the ones the actor may
// view. Filtering goes record by record through CanViewRecord, so repeated
// pages hit the decision cache rather than recomputing scope.
func (s *Service) List(ctx context.Context, actorID int64, limit, offset int) ([]*Lead, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}

	allowed, err := s.decider.HasPermission(ctx, actorID, authz.ObjectLead, authz.ActionRead)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, internal.ErrAccessDenied
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.repo.ListLeads(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list leads", err)
	}

	leads := make([]*Lead, 0, len(rows))
	for _, row := range rows {
		visible, err := s.decider.CanViewRecord(ctx, actorID, row.OwnerID, authz.ObjectLead)
		if err != nil {
			return nil, err
		}
		if !visible {
			continue
		}
		masked, err := s.mask(ctx, actorID, row)
		if err != nil {
			return nil, err
		}
		leads = append(leads, masked)
	}
	return leads, nil
}

// Update edits a visible lead. A field carried in the request that the
// caller's profile denies editing fails the whole update.
func (s *Service) Update(ctx context.Context, actorID int64, leadID string, req UpdateLeadRequest) (*Lead, error) {
	l, err := s.resolveVisible(ctx, actorID, leadID, authz.ActionEdit)
	if err != nil {
		return nil, err
	}

	type fieldEdit struct {
		name  string
		apply func()
	}
	var gated []fieldEdit
	if req.Email != nil {
		v := *req.Email
		gated = append(gated, fieldEdit{FieldEmail, func() { l.Email = v }})
	}
	if req.Phone != nil {
		v := *req.Phone
		gated = append(gated, fieldEdit{FieldPhone, func() { l.Phone = v }})
	}
	if req.AnnualRevenue != nil {
		v := *req.AnnualRevenue
		gated = append(gated, fieldEdit{FieldAnnualRevenue, func() { l.AnnualRevenue = v }})
	}

	for _, edit := range gated {
		editable, err := s.decider.HasFieldPermission(ctx, actorID, authz.ObjectLead, edit.name, authz.FieldEdit)
		if err != nil {
			return nil, err
		}
		if !editable {
			return nil, internal.ErrAccessDenied
		}
	}
	for _, edit := range gated {
		edit.apply()
	}

	if req.FirstName != nil {
		l.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		l.LastName = *req.LastName
	}
	if req.Company != nil {
		l.Company = *req.Company
	}
	if req.Source != nil {
		l.Source = *req.Source
	}
	if req.Status != nil {
		if !validLeadStatus(*req.Status) {
			return nil, internal.NewValidationError("unknown lead status", internal.ErrCodeValidationFailed)
		}
		l.Status = *req.Status
	}
	if err := validation.ValidateLeadName(l.FirstName, l.LastName); err != nil {
		return nil, err
	}

	if err := s.repo.SaveLead(ctx, l); err != nil {
		return nil, internal.NewInternalError("failed to update lead", err)
	}

	s.logger.Info("lead updated", "tenant_id", l.TenantID, "lead_id", l.LeadID, "actor_id", actorID)
	return s.mask(ctx, actorID, l)
}

// SoftDelete marks a visible lead deleted.
func (s *Service) SoftDelete(ctx context.Context, actorID int64, leadID string) error {
	l, err := s.resolveVisible(ctx, actorID, leadID, authz.ActionDelete)
	if err != nil {
		return err
	}

	l.IsDeleted = true
	if err := s.repo.SaveLead(ctx, l); err != nil {
		return internal.NewInternalError("failed to delete lead", err)
	}

	s.logger.Info("lead deleted", "tenant_id", l.TenantID, "lead_id", l.LeadID, "actor_id", actorID)
	return nil
}

// resolveVisible loads the lead and runs the decision chain for the given
// action. The cross-tenant check runs even though the repo query is already
// tenant-scoped; it is the single choke point nothing bypasses.
func (s *Service) resolveVisible(ctx context.Context, actorID int64, leadID string, action authz.Action) (*leadDatamodel.Lead, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}

	l, err := s.repo.FindLeadByLeadID(ctx, tenantID, leadID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get lead", err)
	}
	if l == nil || l.IsDeleted {
		return nil, internal.ErrLeadNotFound
	}

	if err := internal.ValidateResourceOwnership(ctx, l.TenantID); err != nil {
		return nil, err
	}

	allowed, err := s.decider.HasPermission(ctx, actorID, authz.ObjectLead, action)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, internal.ErrAccessDenied
	}

	visible, err := s.decider.CanViewRecord(ctx, actorID, l.OwnerID, authz.ObjectLead)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, internal.ErrAccessDenied
	}
	return l, nil
}

// mask drops the fields the actor's profile denies reading.
func (s *Service) mask(ctx context.Context, actorID int64, l *leadDatamodel.Lead) (*Lead, error) {
	view := fromDataModel(l)

	readable, err := s.decider.HasFieldPermission(ctx, actorID, authz.ObjectLead, FieldEmail, authz.FieldRead)
	if err != nil {
		return nil, err
	}
	if !readable {
		view.Email = nil
	}

	readable, err = s.decider.HasFieldPermission(ctx, actorID, authz.ObjectLead, FieldPhone, authz.FieldRead)
	if err != nil {
		return nil, err
	}
	if !readable {
		view.Phone = nil
	}

	readable, err = s.decider.HasFieldPermission(ctx, actorID, authz.ObjectLead, FieldAnnualRevenue, authz.FieldRead)
	if err != nil {
		return nil, err
	}
	if !readable {
		view.AnnualRevenue = nil
	}

	return view, nil
}

func validLeadStatus(status string) bool {
	switch status {
	case leadDatamodel.StatusNew, leadDatamodel.StatusContacted, leadDatamodel.StatusQualified,
		leadDatamodel.StatusUnqualified, leadDatamodel.StatusConverted:
		return true
	}
	return false
}
