package authz

import (
	"context"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	profileDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/profile"
	roleDatamodel "github.com/salesloop/crm-backend/internal/core/datamodel/role"
)

var _ = ginkgo.Describe("CachedEngine", func() {
	const tenantID = "tenant-a"

	var (
		dir    *fakeDirectory
		engine *Engine
		cached *CachedEngine
		ctx    context.Context
	)

	ginkgo.BeforeEach(func() {
		dir = newFakeDirectory()
		engine = NewEngine(dir, dir, dir, nil)
		cached = NewCachedEngine(engine, 128, time.Minute)
		ctx = tenantCtx(tenantID)

		dir.addRole(tenantID, activeRole("role-mgr", tenantID, roleDatamodel.VisibilitySubordinates))
		dir.addProfile(tenantID, activeProfile("prof-rep", tenantID, []profileDatamodel.ObjectPermission{
			{ObjectName: "LEAD", CanRead: true, CanEdit: true},
		}))
		dir.addUser(activeUser(1, tenantID, strPtr("role-mgr"), strPtr("prof-rep"), nil))
		dir.addUser(activeUser(2, tenantID, strPtr("role-mgr"), strPtr("prof-rep"), i64Ptr(1)))
	})

	ginkgo.It("should return exactly what the wrapped engine computes", func() {
		direct, err := engine.HasPermission(ctx, 1, ObjectLead, ActionRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		viaCache, err := cached.HasPermission(ctx, 1, ObjectLead, ActionRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(viaCache).To(gomega.Equal(direct))

		directView, err := engine.CanViewRecord(ctx, 1, 2, ObjectLead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		cachedView, err := cached.CanViewRecord(ctx, 1, 2, ObjectLead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(cachedView).To(gomega.Equal(directView))
	})

	ginkgo.It("should serve repeated identical calls from the cache", func() {
		_, err := cached.HasPermission(ctx, 1, ObjectLead, ActionRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = cached.HasPermission(ctx, 1, ObjectLead, ActionRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		stats := cached.Stats()
		gomega.Expect(stats.Hits).To(gomega.Equal(int64(1)))
		gomega.Expect(stats.Misses).To(gomega.Equal(int64(1)))
	})

	ginkgo.It("should key entries by the full argument tuple", func() {
		_, err := cached.HasPermission(ctx, 1, ObjectLead, ActionRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = cached.HasPermission(ctx, 1, ObjectLead, ActionEdit)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = cached.HasPermission(ctx, 2, ObjectLead, ActionRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		stats := cached.Stats()
		gomega.Expect(stats.Hits).To(gomega.BeZero())
		gomega.Expect(stats.Misses).To(gomega.Equal(int64(3)))
	})

	ginkgo.It("should memoize subordinate closures", func() {
		first, err := cached.AllSubordinates(ctx, 1)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(first).To(gomega.Equal([]int64{2}))

		second, err := cached.AllSubordinates(ctx, 1)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(second).To(gomega.Equal(first))

		stats := cached.Stats()
		gomega.Expect(stats.Hits).To(gomega.Equal(int64(1)))
	})

	ginkgo.It("should recompute after an explicit invalidation", func() {
		allowed, err := cached.HasPermission(ctx, 1, ObjectLead, ActionRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(allowed).To(gomega.BeTrue())

		// the profile loses its LEAD entry; the stale cached allow survives
		// until the mutation path invalidates
		dir.addProfile(tenantID, activeProfile("prof-rep", tenantID, nil))

		stale, err := cached.HasPermission(ctx, 1, ObjectLead, ActionRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(stale).To(gomega.BeTrue())

		cached.InvalidateTenant(tenantID)

		fresh, err := cached.HasPermission(ctx, 1, ObjectLead, ActionRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(fresh).To(gomega.BeFalse())
	})

	ginkgo.It("should keep other tenants' entries warm across an invalidation", func() {
		const otherTenant = "tenant-b"
		otherCtx := tenantCtx(otherTenant)
		dir.addRole(otherTenant, activeRole("role-mgr", otherTenant, roleDatamodel.VisibilitySubordinates))
		dir.addProfile(otherTenant, activeProfile("prof-rep", otherTenant, []profileDatamodel.ObjectPermission{
			{ObjectName: "LEAD", CanRead: true},
		}))
		dir.addUser(activeUser(7, otherTenant, strPtr("role-mgr"), strPtr("prof-rep"), nil))

		_, err := cached.HasPermission(ctx, 1, ObjectLead, ActionRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		_, err = cached.HasPermission(otherCtx, 7, ObjectLead, ActionRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		cached.InvalidateTenant(tenantID)

		// tenant-b's entry is still served from the cache
		_, err = cached.HasPermission(otherCtx, 7, ObjectLead, ActionRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(cached.Stats().Hits).To(gomega.Equal(int64(1)))

		// the invalidated tenant misses and recomputes
		_, err = cached.HasPermission(ctx, 1, ObjectLead, ActionRead)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(cached.Stats().Misses).To(gomega.Equal(int64(3)))
	})

	ginkgo.It("should fail hard without a tenant in context", func() {
		_, err := cached.HasPermission(context.Background(), 1, ObjectLead, ActionRead)
		gomega.Expect(err).To(gomega.HaveOccurred())

		gomega.Expect(cached.Stats().Misses).To(gomega.BeZero())
	})
})
