package memsim

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/iprefetch/prefetch"
)

// Config holds the demo L1I's cache geometry. Defaults mirror a small,
// trace-friendly instruction cache rather than any particular machine.
type Config struct {
	Size          int // bytes
	Associativity int
	BlockSize     int // bytes; must be a power of two
	HitLatency    uint64
	MissLatency   uint64
}

// DefaultL1IConfig returns a 32KB, 4-way, 64B-line instruction cache.
func DefaultL1IConfig() Config {
	return Config{
		Size:          32 * 1024,
		Associativity: 4,
		BlockSize:     64,
		HitLatency:    1,
		MissLatency:   12,
	}
}

func (c Config) log2BlockSize() uint {
	n := uint(0)
	for (1 << n) < c.BlockSize {
		n++
	}
	return n
}

// BackingStore is the next level in the memory hierarchy.
type BackingStore interface {
	Read(addr uint64, size int) []byte
	Write(addr uint64, data []byte)
}

// Statistics holds running counters for the L1I model, on top of whatever
// the attached prefetcher's own Stats() reports.
type Statistics struct {
	Fetches           uint64
	Hits              uint64
	Misses            uint64
	Evictions         uint64
	PrefetchesIssued  uint64
	PrefetchRedundant uint64
}

// L1I is a demo L1 instruction cache that drives an attached RDIP or
// D-JOLT prefetcher from real fetch and branch-retirement events. It
// implements prefetch.Issuer so it can be handed directly to either
// front-end as the sink for directed prefetches.
type L1I struct {
	config    Config
	directory *akitacache.DirectoryImpl
	dataStore [][]byte
	backing   BackingStore
	stats     Statistics

	rdip  *prefetch.RDIP
	djolt *prefetch.DJOLT
}

// New builds an L1I with no prefetcher attached; use AttachRDIP or
// AttachDJOLT to wire one in.
func New(config Config, backing BackingStore) *L1I {
	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &L1I{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// AttachRDIP wires an RDIP front-end to this cache's fetch stream.
func (l *L1I) AttachRDIP(cfg prefetch.RDIPConfig) *prefetch.RDIP {
	l.rdip = prefetch.NewRDIP(cfg)
	return l.rdip
}

// AttachDJOLT wires a D-JOLT front-end to this cache's fetch stream.
func (l *L1I) AttachDJOLT(cfg prefetch.DJOLTConfig) *prefetch.DJOLT {
	l.djolt = prefetch.NewDJOLT(cfg)
	return l.djolt
}

// Stats returns the cache's own running counters.
func (l *L1I) Stats() Statistics {
	return l.stats
}

func (l *L1I) blockIndex(block *akitacache.Block) int {
	return block.SetID*l.config.Associativity + block.WayID
}

func (l *L1I) blockAddr(addr uint64) uint64 {
	return (addr / uint64(l.config.BlockSize)) * uint64(l.config.BlockSize)
}

// Fetch performs a demand instruction fetch at addr, driving the attached
// prefetcher's CacheOperate hook exactly once with the resulting hit/miss.
// RDIP trains silently on a miss (its replay happens from BranchOperate);
// D-JOLT may itself issue next-k-line fallback prefetches right here,
// since its CacheOperate hook takes an Issuer.
func (l *L1I) Fetch(addr uint64) bool {
	l.stats.Fetches++

	blockAddr := l.blockAddr(addr)
	block := l.directory.Lookup(0, blockAddr)

	hit := block != nil && block.IsValid
	if hit {
		l.stats.Hits++
		l.directory.Visit(block)
	} else {
		l.stats.Misses++
		l.fill(blockAddr)
	}

	if l.rdip != nil {
		l.rdip.CacheOperate(addr, hit)
	}
	if l.djolt != nil {
		l.djolt.CacheOperate(addr, hit, l)
	}

	return hit
}

// BranchOperate is the branch-retirement hook, forwarded verbatim to
// whichever front-end is attached (both, if both are).
func (l *L1I) BranchOperate(ip uint64, branchType prefetch.BranchType, target uint64) {
	if l.rdip != nil {
		l.rdip.BranchOperate(ip, branchType, target, l)
	}
	if l.djolt != nil {
		l.djolt.BranchOperate(ip, branchType, target, l)
	}
}

// PrefetchCodeLine implements prefetch.Issuer: it fills the named line
// into the cache as if a correctly-predicted fetch had warmed it, without
// touching demand-access statistics.
func (l *L1I) PrefetchCodeLine(byteAddress uint64) {
	blockAddr := l.blockAddr(byteAddress)

	if block := l.directory.Lookup(0, blockAddr); block != nil && block.IsValid {
		l.stats.PrefetchRedundant++
		return
	}

	l.stats.PrefetchesIssued++
	l.fill(blockAddr)
}

// fill fetches blockAddr from the backing store into a victim way,
// evicting and (if dirty, which instruction lines never are) writing
// back whatever was there.
func (l *L1I) fill(blockAddr uint64) {
	victim := l.directory.FindVictim(blockAddr)
	if victim == nil {
		return
	}

	if victim.IsValid {
		l.stats.Evictions++
	}

	victimData := l.dataStore[l.blockIndex(victim)]
	if l.backing != nil {
		copy(victimData, l.backing.Read(blockAddr, l.config.BlockSize))
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false

	l.directory.Visit(victim)
}
