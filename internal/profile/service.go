package profile

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/salesloop/crm-backend/internal"
	"github.com/salesloop/crm-backend/internal/authz"
	"github.com/salesloop/crm-backend/internal/core/common/validation"
	profileDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/profile"
)

type Service struct {
	repo        Repository
	decider     authz.Decider
	invalidator authz.Invalidator
	logger      *slog.Logger
}

func NewService(repo Repository, decider authz.Decider, invalidator authz.Invalidator, logger *slog.Logger) *Service {
	if invalidator == nil {
		invalidator = authz.NoopInvalidator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		decider:     decider,
		invalidator: invalidator,
		logger:      logger,
	}
}

func (s *Service) requireManageProfiles(ctx context.Context, actorID int64) error {
	allowed, err := s.decider.HasSystemPermission(ctx, actorID, authz.PermManageProfiles)
	if err != nil {
		return err
	}
	if !allowed {
		return internal.ErrAccessDenied
	}
	return nil
}

// validatePermissionObjects rejects entries naming objects outside the
// closed set, so typos never become silent denies in the engine.
func validatePermissionObjects(objectPerms []profileDatamodel.ObjectPermission, fieldPerms []profileDatamodel.FieldPermission) error {
	for _, op := range objectPerms {
		if _, err := authz.ParseObjectType(op.ObjectName); err != nil {
			return err
		}
	}
	for _, fp := range fieldPerms {
		if _, err := authz.ParseObjectType(fp.ObjectName); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, actorID int64, req CreateProfileRequest) (*Profile, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireManageProfiles(ctx, actorID); err != nil {
		return nil, err
	}
	if err := validation.ValidateProfileName(req.Name); err != nil {
		return nil, err
	}
	if err := validatePermissionObjects(req.ObjectPermissions, req.FieldPermissions); err != nil {
		return nil, err
	}

	newProfile := &profileDatamodel.Profile{
		ProfileID:         uuid.NewString(),
		TenantID:          &tenantID,
		Name:              req.Name,
		Description:       req.Description,
		ObjectPermissions: req.ObjectPermissions,
		FieldPermissions:  req.FieldPermissions,
		SystemPerms:       req.SystemPerms,
		IsActive:          true,
	}

	if err := s.repo.CreateProfile(ctx, newProfile); err != nil {
		return nil, internal.NewInternalError("failed to create profile", err)
	}

	s.invalidator.InvalidateTenant(tenantID)
	s.logger.Info("profile created", "tenant_id", tenantID, "profile_id", newProfile.ProfileID, "actor_id", actorID)
	return FromDataModel(newProfile), nil
}

func (s *Service) GetByProfileID(ctx context.Context, profileID string) (*Profile, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.FindProfileByProfileID(ctx, tenantID, profileID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get profile", err)
	}
	if p == nil || p.IsDeleted {
		return nil, internal.ErrProfileNotFound
	}
	return FromDataModel(p), nil
}

func (s *Service) List(ctx context.Context) ([]*Profile, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListProfiles(ctx, tenantID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list profiles", err)
	}

	profiles := make([]*Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, FromDataModel(row))
	}
	return profiles, nil
}

// Update applies the requested changes. System profiles are immutable.
func (s *Service) Update(ctx context.Context, actorID int64, profileID string, req UpdateProfileRequest) (*Profile, error) {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireManageProfiles(ctx, actorID); err != nil {
		return nil, err
	}

	p, err := s.repo.FindProfileByProfileID(ctx, tenantID, profileID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get profile", err)
	}
	if p == nil || p.IsDeleted {
		return nil, internal.ErrProfileNotFound
	}
	if p.IsSystemProfile {
		return nil, internal.ErrSystemRoleImmutable
	}

	if req.Name != nil {
		if err := validation.ValidateProfileName(*req.Name); err != nil {
			return nil, err
		}
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.ObjectPermissions != nil {
		if err := validatePermissionObjects(*req.ObjectPermissions, nil); err != nil {
			return nil, err
		}
		p.ObjectPermissions = *req.ObjectPermissions
	}
	if req.FieldPermissions != nil {
		if err := validatePermissionObjects(nil, *req.FieldPermissions); err != nil {
			return nil, err
		}
		p.FieldPermissions = *req.FieldPermissions
	}
	if req.SystemPerms != nil {
		p.SystemPerms = *req.SystemPerms
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return nil, internal.NewInternalError("failed to update profile", err)
	}

	s.invalidator.InvalidateTenant(tenantID)
	s.logger.Info("profile updated", "tenant_id", tenantID, "profile_id", profileID, "actor_id", actorID)
	return FromDataModel(p), nil
}

// SoftDelete marks the profile deleted. Users still pointing at it lose all
// object permissions on their next decision, which is the fail-closed
// default.
func (s *Service) SoftDelete(ctx context.Context, actorID int64, profileID string) error {
	tenantID, err := internal.RequireTenantID(ctx)
	if err != nil {
		return err
	}
	if err := s.requireManageProfiles(ctx, actorID); err != nil {
		return err
	}

	p, err := s.repo.FindProfileByProfileID(ctx, tenantID, profileID)
	if err != nil {
		return internal.NewInternalError("failed to get profile", err)
	}
	if p == nil || p.IsDeleted {
		return internal.ErrProfileNotFound
	}
	if p.IsSystemProfile {
		return internal.ErrSystemRoleImmutable
	}

	p.IsDeleted = true
	p.IsActive = false
	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return internal.NewInternalError("failed to delete profile", err)
	}

	s.invalidator.InvalidateTenant(tenantID)
	s.logger.Info("profile deleted", "tenant_id", tenantID, "profile_id", profileID, "actor_id", actorID)
	return nil
}
