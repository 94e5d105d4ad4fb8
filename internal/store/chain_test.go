package store_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frankfika/gitlab-issuehelper/internal/store"
)

var _ = Describe("Chain", func() {
	var (
		ctx       context.Context
		primary   *flakyBackend
		secondary *flakyBackend
		chain     *store.Chain
		fallbacks []string
	)

	BeforeEach(func() {
		ctx = context.Background()
		primary = newFlakyBackend("primary")
		secondary = newFlakyBackend("secondary")
		fallbacks = nil
		chain = store.NewChain(primary, secondary).OnFallback(func(key, backend string) {
			fallbacks = append(fallbacks, key+"@"+backend)
		})
	})

	It("writes to the first backend and mirrors to the rest", func() {
		Expect(chain.Set(ctx, "k", "v")).To(Succeed())

		v, ok, _ := primary.Get(ctx, "k")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("v"))

		v, ok, _ = secondary.Get(ctx, "k")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("v"))
		Expect(fallbacks).To(BeEmpty())
	})

	It("falls through when the first backend rejects the write", func() {
		primary.failWrites = true

		Expect(chain.Set(ctx, "k", "v")).To(Succeed())
		Expect(fallbacks).To(Equal([]string{"k@secondary"}))

		v, ok, err := chain.Get(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("v"))
	})

	It("falls through when a write cannot be read back", func() {
		primary.dropWrites = true

		Expect(chain.Set(ctx, "k", "v")).To(Succeed())
		Expect(fallbacks).To(Equal([]string{"k@secondary"}))
	})

	It("clears a stale copy from a backend that refused the newer write", func() {
		Expect(chain.Set(ctx, "k", "old")).To(Succeed())

		primary.failWrites = true
		Expect(chain.Set(ctx, "k", "new")).To(Succeed())
		primary.failWrites = false

		v, ok, err := chain.Get(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("new"))
	})

	It("returns ErrWriteFailed when no backend verifies", func() {
		primary.failWrites = true
		secondary.dropWrites = true

		err := chain.Set(ctx, "k", "v")
		Expect(err).To(MatchError(store.ErrWriteFailed))
	})

	It("heals earlier backends on read", func() {
		Expect(secondary.MemoryBackend.Set(ctx, "k", "v")).To(Succeed())

		v, ok, err := chain.Get(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("v"))

		v, ok, _ = primary.Get(ctx, "k")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("v"))
	})

	It("treats a read error as a miss", func() {
		Expect(secondary.MemoryBackend.Set(ctx, "k", "v")).To(Succeed())
		primary.failReads = true

		v, ok, err := chain.Get(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("v"))
	})

	It("reports a miss when no backend holds the key", func() {
		_, ok, err := chain.Get(ctx, "missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("deletes from every backend", func() {
		Expect(chain.Set(ctx, "k", "v")).To(Succeed())
		Expect(chain.Delete(ctx, "k")).To(Succeed())

		_, ok, _ := primary.Get(ctx, "k")
		Expect(ok).To(BeFalse())
		_, ok, _ = secondary.Get(ctx, "k")
		Expect(ok).To(BeFalse())
	})

	It("names its backends in order", func() {
		Expect(chain.Name()).To(Equal("chain(primary,secondary)"))
	})
})
