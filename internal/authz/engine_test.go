package authz

import (
	"context"
	"errors"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/salesloop/crm-backend/internal"
	profileDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/profile"
	userDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/user"
)

var _ = ginkgo.Describe("Engine object permissions", func() {
	const tenantID = "tenant-a"

	var (
		dir    *fakeDirectory
		engine *Engine
		ctx    context.Context
	)

	ginkgo.BeforeEach(func() {
		dir = newFakeDirectory()
		engine = NewEngine(dir, dir, dir, nil)
		ctx = tenantCtx(tenantID)
	})

	ginkgo.Context("with a sales representative profile", func() {
		ginkgo.BeforeEach(func() {
			dir.addProfile(tenantID, activeProfile("prof-rep", tenantID, []profileDatamodel.ObjectPermission{
				{ObjectName: "LEAD", CanCreate: true, CanRead: true, CanEdit: true, CanDelete: true, CanViewAll: false},
			}))
			dir.addUser(activeUser(1, tenantID, nil, strPtr("prof-rep"), nil))
		})

		ginkgo.It("should grant the actions the entry allows", func() {
			allowed, err := engine.HasPermission(ctx, 1, ObjectLead, ActionDelete)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(allowed).To(gomega.BeTrue())
		})

		ginkgo.It("should deny actions the entry withholds", func() {
			allowed, err := engine.HasPermission(ctx, 1, ObjectLead, ActionViewAll)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(allowed).To(gomega.BeFalse())
		})

		ginkgo.It("should deny every action on an object with no entry", func() {
			for _, action := range []Action{ActionCreate, ActionRead, ActionEdit, ActionDelete, ActionViewAll, ActionModifyAll} {
				allowed, err := engine.HasPermission(ctx, 1, ObjectAccount, action)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(allowed).To(gomega.BeFalse(), "action %s should be denied", action)
			}
		})
	})

	ginkgo.Context("with a read-only profile", func() {
		ginkgo.BeforeEach(func() {
			dir.addProfile(tenantID, activeProfile("prof-ro", tenantID, []profileDatamodel.ObjectPermission{
				{ObjectName: "ACCOUNT", CanRead: true},
				{ObjectName: "LEAD", CanRead: true},
			}))
			dir.addUser(activeUser(2, tenantID, nil, strPtr("prof-ro"), nil))
		})

		ginkgo.It("should allow read and deny create", func() {
			canRead, err := engine.HasPermission(ctx, 2, ObjectAccount, ActionRead)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(canRead).To(gomega.BeTrue())

			canCreate, err := engine.HasPermission(ctx, 2, ObjectAccount, ActionCreate)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(canCreate).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("when user or profile state is broken", func() {
		ginkgo.It("should deny an unknown user", func() {
			allowed, err := engine.HasPermission(ctx, 99, ObjectLead, ActionRead)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(allowed).To(gomega.BeFalse())
		})

		ginkgo.It("should deny an inactive user", func() {
			u := activeUser(3, tenantID, nil, strPtr("prof-rep"), nil)
			u.Status = userDatamodel.StatusSuspended
			dir.addUser(u)

			allowed, err := engine.HasPermission(ctx, 3, ObjectLead, ActionRead)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(allowed).To(gomega.BeFalse())
		})

		ginkgo.It("should deny a soft-deleted user", func() {
			u := activeUser(4, tenantID, nil, strPtr("prof-rep"), nil)
			u.IsDeleted = true
			dir.addUser(u)

			allowed, err := engine.HasPermission(ctx, 4, ObjectLead, ActionRead)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(allowed).To(gomega.BeFalse())
		})

		ginkgo.It("should deny every action when the profile id resolves to nothing", func() {
			dir.addUser(activeUser(5, tenantID, nil, strPtr("prof-missing"), nil))

			for _, action := range []Action{ActionCreate, ActionRead, ActionEdit, ActionDelete, ActionViewAll, ActionModifyAll} {
				allowed, err := engine.HasPermission(ctx, 5, ObjectLead, action)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(allowed).To(gomega.BeFalse(), "action %s should be denied", action)
			}
		})

		ginkgo.It("should deny when the profile is soft-deleted", func() {
			p := activeProfile("prof-gone", tenantID, []profileDatamodel.ObjectPermission{
				{ObjectName: "LEAD", CanRead: true},
			})
			p.IsDeleted = true
			dir.addProfile(tenantID, p)
			dir.addUser(activeUser(6, tenantID, nil, strPtr("prof-gone"), nil))

			allowed, err := engine.HasPermission(ctx, 6, ObjectLead, ActionRead)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(allowed).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("tenant isolation", func() {
		ginkgo.It("should fail hard without a tenant in context", func() {
			_, err := engine.HasPermission(context.Background(), 1, ObjectLead, ActionRead)
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(errors.Is(err, internal.ErrTenantContextMissing) || err == internal.ErrTenantContextMissing).To(gomega.BeTrue())
		})

		ginkgo.It("should not resolve a user that belongs to another tenant", func() {
			dir.addProfile("tenant-b", activeProfile("prof-rep", "tenant-b", []profileDatamodel.ObjectPermission{
				{ObjectName: "LEAD", CanRead: true},
			}))
			dir.addUser(activeUser(7, "tenant-b", nil, strPtr("prof-rep"), nil))

			allowed, err := engine.HasPermission(ctx, 7, ObjectLead, ActionRead)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(allowed).To(gomega.BeFalse())
		})
	})
})

var _ = ginkgo.Describe("Engine field permissions", func() {
	const tenantID = "tenant-a"

	var (
		dir    *fakeDirectory
		engine *Engine
		ctx    context.Context
	)

	ginkgo.BeforeEach(func() {
		dir = newFakeDirectory()
		engine = NewEngine(dir, dir, dir, nil)
		ctx = tenantCtx(tenantID)

		p := activeProfile("prof-rep", tenantID, []profileDatamodel.ObjectPermission{
			{ObjectName: "LEAD", CanRead: true, CanEdit: true},
		})
		p.FieldPermissions = []profileDatamodel.FieldPermission{
			{ObjectName: "LEAD", FieldName: "annual_revenue", CanRead: true, CanEdit: false},
			{ObjectName: "LEAD", FieldName: "ssn", CanRead: true, CanEdit: true, IsHidden: true},
		}
		dir.addProfile(tenantID, p)
		dir.addUser(activeUser(1, tenantID, nil, strPtr("prof-rep"), nil))
	})

	ginkgo.It("should allow both actions on a field with no entry", func() {
		canRead, err := engine.HasFieldPermission(ctx, 1, ObjectLead, "email", FieldRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(canRead).To(gomega.BeTrue())

		canEdit, err := engine.HasFieldPermission(ctx, 1, ObjectLead, "email", FieldEdit)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(canEdit).To(gomega.BeTrue())
	})

	ginkgo.It("should honor per-action flags on a matching entry", func() {
		canRead, err := engine.HasFieldPermission(ctx, 1, ObjectLead, "annual_revenue", FieldRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(canRead).To(gomega.BeTrue())

		canEdit, err := engine.HasFieldPermission(ctx, 1, ObjectLead, "annual_revenue", FieldEdit)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(canEdit).To(gomega.BeFalse())
	})

	ginkgo.It("should deny both actions on a hidden field regardless of its flags", func() {
		canRead, err := engine.HasFieldPermission(ctx, 1, ObjectLead, "ssn", FieldRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(canRead).To(gomega.BeFalse())

		canEdit, err := engine.HasFieldPermission(ctx, 1, ObjectLead, "ssn", FieldEdit)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(canEdit).To(gomega.BeFalse())
	})

	ginkgo.It("should match field entries case-insensitively", func() {
		canEdit, err := engine.HasFieldPermission(ctx, 1, ObjectLead, "Annual_Revenue", FieldEdit)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(canEdit).To(gomega.BeFalse())
	})
})

var _ = ginkgo.Describe("Engine system permissions", func() {
	const tenantID = "tenant-a"

	var (
		dir    *fakeDirectory
		engine *Engine
		ctx    context.Context
	)

	ginkgo.BeforeEach(func() {
		dir = newFakeDirectory()
		engine = NewEngine(dir, dir, dir, nil)
		ctx = tenantCtx(tenantID)

		r := activeRole("role-admin", tenantID, "OWN")
		r.Permissions.CanManageUsers = true
		r.Permissions.CanManageRoles = true
		dir.addRole(tenantID, r)
		dir.addUser(activeUser(1, tenantID, strPtr("role-admin"), nil, nil))
	})

	ginkgo.It("should return the named grant from the role", func() {
		ok, err := engine.HasSystemPermission(ctx, 1, PermManageUsers)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeTrue())

		ok, err = engine.HasSystemPermission(ctx, 1, PermExportData)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("should deny an unknown permission name", func() {
		ok, err := engine.HasSystemPermission(ctx, 1, RolePermission("canDoAnything"))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("should deny a user without a role", func() {
		dir.addUser(activeUser(2, tenantID, nil, nil, nil))

		ok, err := engine.HasSystemPermission(ctx, 2, PermManageUsers)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("should deny a missing user", func() {
		ok, err := engine.HasSystemPermission(ctx, 42, PermManageUsers)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeFalse())
	})
})

var _ = ginkgo.Describe("Boundary parsing", func() {
	ginkgo.It("should resolve object names case-insensitively once at the boundary", func() {
		obj, err := ParseObjectType("lead")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(obj).To(gomega.Equal(ObjectLead))

		_, err = ParseObjectType("invoice")
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("should accept UPDATE as an alias for EDIT", func() {
		action, err := ParseAction("update")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(action).To(gomega.Equal(ActionEdit))
	})
})
