package authz

import (
	"context"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	profileDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/profile"
	roleDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/role"
)

var _ = ginkgo.Describe("Engine record visibility", func() {
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

	ginkgo.It("should always allow a user to view their own record", func() {
		// no role, no profile, not even a directory row: self-ownership wins
		allowed, err := engine.CanViewRecord(ctx, 1, 1, ObjectLead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(allowed).To(gomega.BeTrue())
	})

	ginkgo.It("should deny an unknown user viewing someone else's record", func() {
		allowed, err := engine.CanViewRecord(ctx, 1, 2, ObjectLead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(allowed).To(gomega.BeFalse())
	})

	ginkgo.Context("profile CanViewAll short-circuit", func() {
		ginkgo.BeforeEach(func() {
			dir.addRole(tenantID, activeRole("role-own", tenantID, roleDatamodel.VisibilityOwn))
			dir.addProfile(tenantID, activeProfile("prof-viewall", tenantID, []profileDatamodel.ObjectPermission{
				{ObjectName: "LEAD", CanRead: true, CanViewAll: true},
			}))
			dir.addUser(activeUser(1, tenantID, strPtr("role-own"), strPtr("prof-viewall"), nil))
		})

		ginkgo.It("should allow before role scope is even considered", func() {
			allowed, err := engine.CanViewRecord(ctx, 1, 2, ObjectLead)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(allowed).To(gomega.BeTrue())
		})

		ginkgo.It("should not extend the grant to other objects", func() {
			allowed, err := engine.CanViewRecord(ctx, 1, 2, ObjectAccount)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(allowed).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("role data-visibility scopes", func() {
		ginkgo.It("should allow ALL and ALL_USERS scopes unconditionally", func() {
			dir.addRole(tenantID, activeRole("role-all", tenantID, roleDatamodel.VisibilityAll))
			dir.addRole(tenantID, activeRole("role-all-users", tenantID, roleDatamodel.VisibilityAllUsers))
			dir.addUser(activeUser(1, tenantID, strPtr("role-all"), nil, nil))
			dir.addUser(activeUser(2, tenantID, strPtr("role-all-users"), nil, nil))

			allowed, err := engine.CanViewRecord(ctx, 1, 9, ObjectLead)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(allowed).To(gomega.BeTrue())

			allowed, err = engine.CanViewRecord(ctx, 2, 9, ObjectLead)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(allowed).To(gomega.BeTrue())
		})

		ginkgo.It("should deny OWN scope for records owned by someone else", func() {
			dir.addRole(tenantID, activeRole("role-own", tenantID, roleDatamodel.VisibilityOwn))
			dir.addUser(activeUser(1, tenantID, strPtr("role-own"), nil, nil))
			dir.addUser(activeUser(2, tenantID, strPtr("role-own"), nil, nil))

			allowed, err := engine.CanViewRecord(ctx, 1, 2, ObjectLead)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(allowed).To(gomega.BeFalse())
		})

		ginkgo.It("should default a missing role to OWN scope", func() {
			dir.addUser(activeUser(1, tenantID, strPtr("role-gone"), nil, nil))
			dir.addUser(activeUser(2, tenantID, nil, nil, nil))

			allowed, err := engine.CanViewRecord(ctx, 1, 2, ObjectLead)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(allowed).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("SUBORDINATES scope with a manager chain", func() {
		ginkgo.BeforeEach(func() {
			dir.addRole(tenantID, activeRole("role-mgr", tenantID, roleDatamodel.VisibilitySubordinates))

			manager := activeUser(10, tenantID, strPtr("role-mgr"), nil, nil)
			rep := activeUser(11, tenantID, strPtr("role-mgr"), nil, i64Ptr(10))
			dir.addUser(manager)
			dir.addUser(rep)
		})

		ginkgo.It("should let a manager view a report's record but not the reverse", func() {
			allowed, err := engine.CanViewRecord(ctx, 10, 11, ObjectLead)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(allowed).To(gomega.BeTrue())

			allowed, err = engine.CanViewRecord(ctx, 11, 10, ObjectLead)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(allowed).To(gomega.BeFalse())
		})
	})

	ginkgo.It("should fail hard without a tenant in context", func() {
		_, err := engine.CanViewRecord(context.Background(), 1, 2, ObjectLead)
		gomega.Expect(err).To(gomega.HaveOccurred())

		_, err = engine.CanViewRecord(context.Background(), 1, 1, ObjectLead)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
