package prefetch_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/iprefetch/prefetch"
)

const log2BlockSize = 6 // 64-byte lines

func newRDIP() *prefetch.RDIP {
	return prefetch.NewRDIP(prefetch.DefaultRDIPConfig(log2BlockSize))
}

type recordingIssuer struct {
	issued []uint64
}

func (r *recordingIssuer) PrefetchCodeLine(addr uint64) {
	r.issued = append(r.issued, addr)
}

var _ = Describe("RDIP", func() {
	var (
		p   *prefetch.RDIP
		iss *recordingIssuer
	)

	BeforeEach(func() {
		p = newRDIP()
		iss = &recordingIssuer{}
	})

	Describe("Suppression", func() {
		It("suppresses a signature that recurs exactly Distance branches later", func() {
			// Distance=2: CALL, RETURN, CALL. The matching return restores
			// the RAS to its pre-call state, so the third branch (the
			// repeated call) reproduces the first call's signature -
			// exactly the signature sitting at the front of the 2-deep
			// history queue, which is what the suppression check consults.
			p.BranchOperate(0x1000, prefetch.DirectCall, 0x2000, iss)
			Expect(iss.issued).To(BeEmpty(), "nothing learned yet")

			p.BranchOperate(0x1004, prefetch.Return, 0x1008, iss)

			p.BranchOperate(0x1000, prefetch.DirectCall, 0x2000, iss)

			stats := p.Stats()
			Expect(stats.Suppressed).To(Equal(uint64(1)))
			Expect(stats.Branches).To(Equal(uint64(3)))
		})

		It("does not suppress when the signature has not recurred", func() {
			p.BranchOperate(0x1000, prefetch.DirectCall, 0x2000, iss)
			p.BranchOperate(0x3000, prefetch.DirectCall, 0x3100, iss)

			Expect(p.Stats().Suppressed).To(Equal(uint64(0)))
		})

		It("ignores branch types other than call and return", func() {
			p.BranchOperate(0x1000, prefetch.OtherBranch, 0x1100, iss)
			Expect(p.Stats().Branches).To(Equal(uint64(0)))
		})
	})

	Describe("Training and replay", func() {
		It("replays learned miss lines the next time a call's signature recurs", func() {
			// RDIP's real 4-deep RAS means a bare repeated call without an
			// intervening return does not reproduce the same signature (an
			// extra RAS slot folds in), so an unrelated call/return pair sits
			// between training and replay instead.
			p.BranchOperate(0x1000, prefetch.DirectCall, 0x2000, iss) // trains under sig(A)

			p.CacheOperate(0x4000, false) // miss -> line 0x100
			p.CacheOperate(0x4080, false) // miss -> line 0x102

			p.BranchOperate(0x1004, prefetch.Return, 0x1008, iss)       // undoes call A
			p.BranchOperate(0x3000, prefetch.DirectCall, 0x3500, iss)   // unrelated call B
			p.BranchOperate(0x3004, prefetch.Return, 0x3008, iss)       // undoes call B

			iss.issued = nil
			p.BranchOperate(0x1000, prefetch.DirectCall, 0x2000, iss) // sig(A) recurs

			Expect(iss.issued).To(ConsistOf(uint64(0x4000), uint64(0x4080)))
		})

		It("only trains on misses, never on hits", func() {
			p.BranchOperate(0x1000, prefetch.DirectCall, 0x2000, iss)
			p.CacheOperate(0x4000, true)

			Expect(p.Stats().SignaturesLearned).To(Equal(uint64(0)))
		})
	})
})
