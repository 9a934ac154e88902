package authz

import (
	"context"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Engine hierarchy traversal", func() {
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

	ginkgo.Context("IsSubordinate over the chain C -> B -> A", func() {
		ginkgo.BeforeEach(func() {
			a := activeUser(1, tenantID, nil, nil, nil)
			b := activeUser(2, tenantID, nil, nil, i64Ptr(1))
			c := activeUser(3, tenantID, nil, nil, i64Ptr(2))
			dir.addUser(a)
			dir.addUser(b)
			dir.addUser(c)
		})

		ginkgo.It("should be transitive upward", func() {
			ok, err := engine.IsSubordinate(ctx, 1, 3)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeTrue())

			ok, err = engine.IsSubordinate(ctx, 1, 2)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeTrue())
		})

		ginkgo.It("should not hold in the reverse direction", func() {
			ok, err := engine.IsSubordinate(ctx, 3, 1)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeFalse())
		})

		ginkgo.It("should never consider a user their own subordinate", func() {
			ok, err := engine.IsSubordinate(ctx, 1, 1)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeFalse())
		})

		ginkgo.It("should return false when the chain terminates at a null manager", func() {
			ok, err := engine.IsSubordinate(ctx, 9, 3)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("cycle defense on a corrupted chain B -> C -> B", func() {
		ginkgo.BeforeEach(func() {
			b := activeUser(2, tenantID, nil, nil, i64Ptr(3))
			c := activeUser(3, tenantID, nil, nil, i64Ptr(2))
			dir.addUser(b)
			dir.addUser(c)
		})

		ginkgo.It("should terminate IsSubordinate with a deterministic answer", func() {
			// C's manager is B, so the upward walk from C hits B immediately
			ok, err := engine.IsSubordinate(ctx, 2, 3)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeTrue())

			// from an unrelated root the walk loops once and stops
			ok, err = engine.IsSubordinate(ctx, 99, 3)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeFalse())
		})

		ginkgo.It("should terminate AllSubordinates", func() {
			subs, err := engine.AllSubordinates(ctx, 2)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(subs).To(gomega.Equal([]int64{3}))
		})
	})

	ginkgo.Context("AllSubordinates over a two-level tree", func() {
		ginkgo.BeforeEach(func() {
			dir.addUser(activeUser(1, tenantID, nil, nil, nil))
			dir.addUser(activeUser(4, tenantID, nil, nil, i64Ptr(1)))
			dir.addUser(activeUser(2, tenantID, nil, nil, i64Ptr(1)))
			dir.addUser(activeUser(5, tenantID, nil, nil, i64Ptr(2)))
			dir.addUser(activeUser(3, tenantID, nil, nil, i64Ptr(2)))
		})

		ginkgo.It("should return the transitive closure in a stable order", func() {
			subs, err := engine.AllSubordinates(ctx, 1)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(subs).To(gomega.Equal([]int64{2, 4, 3, 5}))

			// store iteration order is randomized; output must not be
			for i := 0; i < 5; i++ {
				again, err := engine.AllSubordinates(ctx, 1)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(again).To(gomega.Equal(subs))
			}
		})

		ginkgo.It("should return an empty closure for a leaf user", func() {
			subs, err := engine.AllSubordinates(ctx, 5)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(subs).To(gomega.BeEmpty())
		})

		ginkgo.It("should not cross tenants", func() {
			dir.addUser(activeUser(50, "tenant-b", nil, nil, i64Ptr(1)))

			subs, err := engine.AllSubordinates(ctx, 1)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(subs).ToNot(gomega.ContainElement(int64(50)))
		})
	})

	ginkgo.It("should fail hard without a tenant in context", func() {
		_, err := engine.IsSubordinate(context.Background(), 1, 2)
		gomega.Expect(err).To(gomega.HaveOccurred())

		_, err = engine.AllSubordinates(context.Background(), 1)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
