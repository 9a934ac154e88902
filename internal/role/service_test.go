package role_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/salesloop/crm-backend/internal"
	"github.com/salesloop/crm-backend/internal/authz"
	roleDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/role"
	"github.com/salesloop/crm-backend/internal/role"
)

func TestRole(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Role Suite")
}

type mockRepo struct {
	roles map[string]*roleDatamodel.Role
}

func newMockRepo() *mockRepo {
	return &mockRepo{roles: make(map[string]*roleDatamodel.Role)}
}

func (m *mockRepo) FindRoleByRoleID(_ context.Context, tenantID, roleID string) (*roleDatamodel.Role, error) {
	r, ok := m.roles[roleID]
	if !ok || r.TenantID == nil || *r.TenantID != tenantID {
		return nil, nil
	}
	return r, nil
}

func (m *mockRepo) ListRoles(_ context.Context, tenantID string) ([]*roleDatamodel.Role, error) {
	var out []*roleDatamodel.Role
	for _, r := range m.roles {
		if r.TenantID != nil && *r.TenantID == tenantID && !r.IsDeleted {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRepo) CreateRole(_ context.Context, r *roleDatamodel.Role) error {
	m.roles[r.RoleID] = r
	return nil
}

func (m *mockRepo) SaveRole(_ context.Context, r *roleDatamodel.Role) error {
	m.roles[r.RoleID] = r
	return nil
}

type mockDecider struct {
	grants map[authz.RolePermission]bool
}

func (m *mockDecider) HasPermission(context.Context, int64, authz.ObjectType, authz.Action) (bool, error) {
	return false, nil
}

func (m *mockDecider) CanViewRecord(context.Context, int64, int64, authz.ObjectType) (bool, error) {
	return false, nil
}

func (m *mockDecider) HasFieldPermission(context.Context, int64, authz.ObjectType, string, authz.FieldAction) (bool, error) {
	return true, nil
}

func (m *mockDecider) HasSystemPermission(_ context.Context, _ int64, perm authz.RolePermission) (bool, error) {
	return m.grants[perm], nil
}

func (m *mockDecider) IsSubordinate(context.Context, int64, int64) (bool, error) {
	return false, nil
}

func (m *mockDecider) AllSubordinates(context.Context, int64) ([]int64, error) {
	return nil, nil
}

type recordingInvalidator struct {
	tenants []string
}

func (r *recordingInvalidator) InvalidateTenant(tenantID string) {
	r.tenants = append(r.tenants, tenantID)
}

var _ = Describe("Role Service", func() {
	var (
		repo        *mockRepo
		decider     *mockDecider
		invalidator *recordingInvalidator
		svc         *role.Service
		ctx         context.Context
	)

	tenant := "tenant-a"

	strPtr := func(s string) *string { return &s }

	seedRole := func(roleID string, parentID *string, level int, system bool) *roleDatamodel.Role {
		r := &roleDatamodel.Role{
			RoleID:       roleID,
			TenantID:     &tenant,
			Name:         roleID,
			ParentRoleID: parentID,
			Level:        level,
			IsSystemRole: system,
			IsActive:     true,
			Permissions:  roleDatamodel.RolePermissions{DataVisibility: roleDatamodel.VisibilityOwn},
		}
		repo.roles[roleID] = r
		return r
	}

	BeforeEach(func() {
		repo = newMockRepo()
		decider = &mockDecider{grants: map[authz.RolePermission]bool{authz.PermManageRoles: true}}
		invalidator = &recordingInvalidator{}
		svc = role.NewService(repo, decider, invalidator, nil)
		ctx = internal.ContextWithTenant(context.Background(), &internal.TenantContext{
			TenantID: tenant,
			UserID:   1,
		})
	})

	Describe("Create", func() {
		It("creates a top-level role at level zero", func() {
			created, err := svc.Create(ctx, 1, role.CreateRoleRequest{Name: "VP Sales"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Level).To(Equal(0))
			Expect(created.ParentRoleID).To(BeNil())
			Expect(created.Permissions.DataVisibility).To(Equal(roleDatamodel.VisibilityOwn))
			Expect(invalidator.tenants).To(Equal([]string{tenant}))
		})

		It("derives the level from the parent and back-links the child", func() {
			parent := seedRole("role-ceo", nil, 0, false)

			created, err := svc.Create(ctx, 1, role.CreateRoleRequest{
				Name:         "Regional Manager",
				ParentRoleID: strPtr("role-ceo"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Level).To(Equal(1))
			Expect(*created.ParentRoleID).To(Equal("role-ceo"))
			Expect(parent.ChildRoleIDs).To(ContainElement(created.RoleID))
		})

		It("rejects an unknown parent", func() {
			_, err := svc.Create(ctx, 1, role.CreateRoleRequest{
				Name:         "Orphan",
				ParentRoleID: strPtr("no-such-role"),
			})
			Expect(err).To(MatchError(internal.ErrParentRoleNotFound))
		})

		It("rejects an unknown visibility scope", func() {
			_, err := svc.Create(ctx, 1, role.CreateRoleRequest{
				Name:        "Bad Scope",
				Permissions: roleDatamodel.RolePermissions{DataVisibility: "EVERYONE"},
			})
			Expect(err).To(HaveOccurred())
		})

		It("denies actors without the manage-roles grant", func() {
			decider.grants[authz.PermManageRoles] = false
			_, err := svc.Create(ctx, 1, role.CreateRoleRequest{Name: "Denied"})
			Expect(err).To(MatchError(internal.ErrAccessDenied))
			Expect(invalidator.tenants).To(BeEmpty())
		})
	})

	Describe("Update", func() {
		It("refuses to touch system roles", func() {
			seedRole("role-sys", nil, 0, true)
			newName := "Renamed"
			_, err := svc.Update(ctx, 1, "role-sys", role.UpdateRoleRequest{Name: &newName})
			Expect(err).To(MatchError(internal.ErrSystemRoleImmutable))
		})

		It("updates name and permissions of a tenant role", func() {
			seedRole("role-mgr", nil, 0, false)
			newName := "Sales Manager"
			perms := roleDatamodel.RolePermissions{
				DataVisibility: roleDatamodel.VisibilitySubordinates,
				CanManageUsers: true,
			}
			updated, err := svc.Update(ctx, 1, "role-mgr", role.UpdateRoleRequest{
				Name:        &newName,
				Permissions: &perms,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Sales Manager"))
			Expect(updated.Permissions.DataVisibility).To(Equal(roleDatamodel.VisibilitySubordinates))
			Expect(invalidator.tenants).To(Equal([]string{tenant}))
		})

		It("reparenting recomputes levels across the moved subtree", func() {
			ceo := seedRole("role-ceo", nil, 0, false)
			seedRole("role-vp", nil, 0, false)
			mgr := seedRole("role-mgr", strPtr("role-vp"), 1, false)
			rep := seedRole("role-rep", strPtr("role-mgr"), 2, false)
			vp := repo.roles["role-vp"]
			vp.ChildRoleIDs = []string{"role-mgr"}
			mgr.ChildRoleIDs = []string{"role-rep"}

			_, err := svc.Update(ctx, 1, "role-vp", role.UpdateRoleRequest{
				ReparentTo: strPtr("role-ceo"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(vp.Level).To(Equal(1))
			Expect(mgr.Level).To(Equal(2))
			Expect(rep.Level).To(Equal(3))
			Expect(ceo.ChildRoleIDs).To(ContainElement("role-vp"))
		})

		It("detaches to top level when reparent target is empty", func() {
			parent := seedRole("role-ceo", nil, 0, false)
			seedRole("role-vp", strPtr("role-ceo"), 1, false)
			parent.ChildRoleIDs = []string{"role-vp"}

			updated, err := svc.Update(ctx, 1, "role-vp", role.UpdateRoleRequest{
				ReparentTo: strPtr(""),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Level).To(Equal(0))
			Expect(updated.ParentRoleID).To(BeNil())
			Expect(parent.ChildRoleIDs).NotTo(ContainElement("role-vp"))
		})

		It("rejects making a role its own parent", func() {
			seedRole("role-vp", nil, 0, false)
			_, err := svc.Update(ctx, 1, "role-vp", role.UpdateRoleRequest{
				ReparentTo: strPtr("role-vp"),
			})
			Expect(err).To(HaveOccurred())
		})

		It("rejects moving a role under its own descendant", func() {
			vp := seedRole("role-vp", nil, 0, false)
			mgr := seedRole("role-mgr", strPtr("role-vp"), 1, false)
			rep := seedRole("role-rep", strPtr("role-mgr"), 2, false)
			vp.ChildRoleIDs = []string{"role-mgr"}
			mgr.ChildRoleIDs = []string{"role-rep"}

			_, err := svc.Update(ctx, 1, "role-vp", role.UpdateRoleRequest{
				ReparentTo: strPtr("role-rep"),
			})
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))

			// Nothing moved: links and levels are exactly as seeded.
			Expect(vp.ParentRoleID).To(BeNil())
			Expect(vp.Level).To(Equal(0))
			Expect(vp.ChildRoleIDs).To(Equal([]string{"role-mgr"}))
			Expect(*mgr.ParentRoleID).To(Equal("role-vp"))
			Expect(rep.ChildRoleIDs).NotTo(ContainElement("role-vp"))
		})

		It("rejects moving a role under its direct child and leaves both untouched", func() {
			a := seedRole("role-a", nil, 0, false)
			b := seedRole("role-b", strPtr("role-a"), 1, false)
			a.ChildRoleIDs = []string{"role-b"}

			_, err := svc.Update(ctx, 1, "role-a", role.UpdateRoleRequest{
				ReparentTo: strPtr("role-b"),
			})
			Expect(err).To(HaveOccurred())

			Expect(a.ParentRoleID).To(BeNil())
			Expect(a.Level).To(Equal(0))
			Expect(a.ChildRoleIDs).To(Equal([]string{"role-b"}))
			Expect(*b.ParentRoleID).To(Equal("role-a"))
			Expect(b.Level).To(Equal(1))
			Expect(b.ChildRoleIDs).NotTo(ContainElement("role-a"))
		})
	})

	Describe("SoftDelete", func() {
		It("refuses while child roles remain", func() {
			parent := seedRole("role-ceo", nil, 0, false)
			seedRole("role-vp", strPtr("role-ceo"), 1, false)
			parent.ChildRoleIDs = []string{"role-vp"}

			err := svc.SoftDelete(ctx, 1, "role-ceo")
			Expect(err).To(MatchError(internal.ErrRoleHasChildren))
			Expect(parent.IsDeleted).To(BeFalse())
		})

		It("deletes a leaf and detaches it from its parent", func() {
			parent := seedRole("role-ceo", nil, 0, false)
			leaf := seedRole("role-vp", strPtr("role-ceo"), 1, false)
			parent.ChildRoleIDs = []string{"role-vp"}

			err := svc.SoftDelete(ctx, 1, "role-vp")
			Expect(err).NotTo(HaveOccurred())
			Expect(leaf.IsDeleted).To(BeTrue())
			Expect(leaf.IsActive).To(BeFalse())
			Expect(parent.ChildRoleIDs).To(BeEmpty())
			Expect(invalidator.tenants).To(Equal([]string{tenant}))
		})

		It("refuses system roles", func() {
			seedRole("role-sys", nil, 0, true)
			err := svc.SoftDelete(ctx, 1, "role-sys")
			Expect(err).To(MatchError(internal.ErrSystemRoleImmutable))
		})

		It("reports deleted roles as not found", func() {
			r := seedRole("role-gone", nil, 0, false)
			r.IsDeleted = true
			err := svc.SoftDelete(ctx, 1, "role-gone")
			Expect(err).To(MatchError(internal.ErrRoleNotFound))
		})
	})
})
