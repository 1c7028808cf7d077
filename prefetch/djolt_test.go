package prefetch_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/iprefetch/prefetch"
)

func newDJOLT() *prefetch.DJOLT {
	return prefetch.NewDJOLT(prefetch.DefaultDJOLTConfig(log2BlockSize))
}

var _ = Describe("DJOLT", func() {
	var (
		p   *prefetch.DJOLT
		iss *recordingIssuer
	)

	BeforeEach(func() {
		p = newDJOLT()
		iss = &recordingIssuer{}
	})

	Describe("Next-k-line fallback degree adaptation", func() {
		It("fires AggressiveDegree next-line prefetches with no prior productive branch", func() {
			// A fresh prefetcher, single miss, no signature hit yet.
			p.CacheOperate(0x10000, false, iss)

			want := make([]uint64, 0, 5)
			for i := 1; i <= 5; i++ {
				want = append(want, 0x10000+uint64(i)*64)
			}
			Expect(iss.issued).To(ContainElements(want))
			Expect(p.Stats().FallbackAggressive).To(Equal(uint64(1)))
			Expect(p.Stats().FallbackConservative).To(Equal(uint64(0)))
		})

		It("fires ConservativeDegree next-line prefetches right after a branch that issued a directed prefetch", func() {
			// Train signature A, then recur it so the branch event issues
			// at least one directed prefetch; the following miss must use
			// the conservative degree.
			p.BranchOperate(0x1000, prefetch.DirectCall, 0x2000, iss)
			p.CacheOperate(0x10000, false, iss)
			p.BranchOperate(0x1000, prefetch.DirectCall, 0x2000, iss) // replays, sets prefetchIssued

			iss.issued = nil
			p.CacheOperate(0x20000, false, iss)

			want := make([]uint64, 0, 2)
			for i := 1; i <= 2; i++ {
				want = append(want, 0x20000+uint64(i)*64)
			}
			Expect(iss.issued).To(ContainElements(want))
			Expect(p.Stats().FallbackConservative).To(Equal(uint64(1)))
		})
	})

	Describe("Training, overflow and replay", func() {
		It("spills a third address to the extra table and replays from both on recurrence", func() {
			// With this configuration's two slots per entry (Vectors=2),
			// a third distinct upper region already overflows into the
			// extra table. Each address sits in its own 2MB-aligned
			// upper-bit region (bit 21 and up), so each forces its own
			// slot rather than sharing one via the lower-offset window.
			p.BranchOperate(0x1000, prefetch.DirectCall, 0x2000, iss)

			p.CacheOperate(0x10000, false, iss)
			p.CacheOperate(0x210000, false, iss)
			p.CacheOperate(0x410000, false, iss)
			Expect(p.Stats().ExtraTableSpills).To(BeNumerically(">=", 1))

			iss.issued = nil
			p.BranchOperate(0x1000, prefetch.DirectCall, 0x2000, iss)

			Expect(iss.issued).To(ContainElements(uint64(0x10000), uint64(0x210000), uint64(0x410000)))
		})
	})

	Describe("Hard invariants", func() {
		It("panics when the upper-bit table is exhausted", func() {
			for i := 0; i < 31; i++ {
				addr := uint64(i) << 21
				Expect(func() { p.CacheOperate(addr, false, iss) }).NotTo(Panic())
			}
			addr := uint64(31) << 21
			Expect(func() { p.CacheOperate(addr, false, iss) }).To(Panic())
		})
	})
})
