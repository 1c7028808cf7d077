package memsim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/iprefetch/internal/memsim"
	"github.com/sarchlab/iprefetch/prefetch"
)

var _ = Describe("Synthetic traces", func() {
	It("GenRDIPSuppression drives exactly one suppressed branch", func() {
		l := memsim.New(memsim.DefaultL1IConfig(), nil)
		rdip := l.AttachRDIP(prefetch.DefaultRDIPConfig(6))

		memsim.Replay(l, memsim.GenRDIPSuppression())

		Expect(rdip.Stats().Suppressed).To(Equal(uint64(1)))
	})

	It("GenDJOLTOverflow spills to the extra table and replays from it", func() {
		l := memsim.New(memsim.DefaultL1IConfig(), nil)
		djolt := l.AttachDJOLT(prefetch.DefaultDJOLTConfig(6))

		memsim.Replay(l, memsim.GenDJOLTOverflow())

		Expect(djolt.Stats().ExtraTableSpills).To(BeNumerically(">=", 1))
		Expect(l.Stats().PrefetchesIssued).To(BeNumerically(">=", 3))
	})

	It("GenUpperBitExhaustion panics on the 32nd distinct region", func() {
		l := memsim.New(memsim.DefaultL1IConfig(), nil)
		l.AttachDJOLT(prefetch.DefaultDJOLTConfig(6))

		Expect(func() {
			memsim.Replay(l, memsim.GenUpperBitExhaustion())
		}).To(Panic())
	})
})
