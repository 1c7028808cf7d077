package memsim

import "github.com/sarchlab/iprefetch/prefetch"

// GenRDIPSuppression builds a trace that exercises RDIP's suppression
// rule: a call/return pair followed by the same call again, so the third
// branch's signature matches the one sitting at the front of the
// 2-deep history queue.
func GenRDIPSuppression() []Event {
	return []Event{
		{Kind: EventBranch, IP: 0x1000, BranchType: prefetch.DirectCall, Target: 0x2000},
		{Kind: EventBranch, IP: 0x1004, BranchType: prefetch.Return, Target: 0x1008},
		{Kind: EventBranch, IP: 0x1000, BranchType: prefetch.DirectCall, Target: 0x2000},
	}
}

// GenDJOLTOverflow builds a trace that trains one call signature against
// three misses in three distinct 2MB-aligned upper-bit regions, which
// overflows D-JOLT's two-slot short-range entry into the shared extra
// table, then recurs the signature so both tables replay.
func GenDJOLTOverflow() []Event {
	return []Event{
		{Kind: EventBranch, IP: 0x1000, BranchType: prefetch.DirectCall, Target: 0x2000},
		{Kind: EventFetch, Addr: 0x10000},
		{Kind: EventFetch, Addr: 0x210000},
		{Kind: EventFetch, Addr: 0x410000},
		{Kind: EventBranch, IP: 0x1000, BranchType: prefetch.DirectCall, Target: 0x2000},
	}
}

// GenUpperBitExhaustion builds a trace of distinct 2MB-aligned fetches one
// past what D-JOLT's 31-entry upper-bit table can hold; replaying it
// through an L1I with D-JOLT attached panics on the last event, since the
// table is never evicted and a 32nd distinct region has nowhere to go.
func GenUpperBitExhaustion() []Event {
	events := make([]Event, 0, 32)
	for i := 0; i < 32; i++ {
		events = append(events, Event{Kind: EventFetch, Addr: uint64(i) << 21})
	}
	return events
}
