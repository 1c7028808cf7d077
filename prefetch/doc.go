// Package prefetch implements two L1 instruction-cache directed
// prefetchers, RDIP and mini D-JOLT, for integration into an out-of-order
// CPU simulator.
//
// Both prefetchers observe the fetched instruction stream through two
// hooks, BranchOperate and CacheOperate, and emit prefetch requests for
// predicted future fetch lines through a host-supplied Issuer. Neither
// prefetcher talks to the memory hierarchy, decodes instructions, or keeps
// any state beyond what is described below; everything else (the pipeline,
// the cache, block-size constants) belongs to the simulator host.
package prefetch
