package memsim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/iprefetch/internal/memsim"
	"github.com/sarchlab/iprefetch/prefetch"
)

var _ = Describe("L1I", func() {
	var (
		l       *memsim.L1I
		mem     *memsim.FlatMemory
		backing *memsim.MemoryBacking
		config  memsim.Config
	)

	BeforeEach(func() {
		mem = memsim.NewFlatMemory()
		backing = memsim.NewMemoryBacking(mem)
		config = memsim.Config{
			Size:          4 * 1024,
			Associativity: 4,
			BlockSize:     64,
			HitLatency:    1,
			MissLatency:   10,
		}
		l = memsim.New(config, backing)
	})

	Describe("Fetch", func() {
		It("misses on a cold line and hits on a repeat fetch", func() {
			Expect(l.Fetch(0x1000)).To(BeFalse())
			Expect(l.Fetch(0x1000)).To(BeTrue())

			stats := l.Stats()
			Expect(stats.Fetches).To(Equal(uint64(2)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(1)))
		})

		It("hits on a different address within the same line", func() {
			l.Fetch(0x1000)
			Expect(l.Fetch(0x1004)).To(BeTrue())
		})
	})

	Describe("RDIP wiring", func() {
		It("replays a learned miss line as a prefetch the next time its signature recurs", func() {
			l.AttachRDIP(prefetch.DefaultRDIPConfig(6))

			l.BranchOperate(0x1000, prefetch.DirectCall, 0x2000) // trains under sig(A)
			l.Fetch(0x4000)                                      // miss, learned, and filled in

			l.BranchOperate(0x1004, prefetch.Return, 0x1008)     // undoes call A
			l.BranchOperate(0x3000, prefetch.DirectCall, 0x3500) // unrelated call B
			l.BranchOperate(0x3004, prefetch.Return, 0x3008)     // undoes call B

			// Evict 0x4000's line: these four addresses share its set
			// (1024-byte stride, matching this cache's 16 sets) and this
			// cache is 4-way, so the fourth new fill evicts the least
			// recently touched resident - 0x4000's line, untouched since
			// its own fetch above.
			l.Fetch(0x4400)
			l.Fetch(0x4800)
			l.Fetch(0x4c00)
			l.Fetch(0x5000)

			l.BranchOperate(0x1000, prefetch.DirectCall, 0x2000) // sig(A) recurs, replays

			Expect(l.Stats().PrefetchesIssued).To(Equal(uint64(1)))

			// The replayed line is now resident; a later demand fetch hits.
			Expect(l.Fetch(0x4000)).To(BeTrue())
		})
	})

	Describe("D-JOLT wiring", func() {
		It("issues next-line fallback prefetches on a miss with no directed hit", func() {
			l.AttachDJOLT(prefetch.DefaultDJOLTConfig(6))

			l.Fetch(0x8000)

			Expect(l.Stats().PrefetchesIssued).To(Equal(uint64(5)))
			Expect(l.Fetch(0x8040)).To(BeTrue()) // the next line was prefetched in
		})
	})
})
