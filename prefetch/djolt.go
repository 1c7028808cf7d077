package prefetch

// DJOLTConfig holds mini D-JOLT's fixed construction parameters.
type DJOLTConfig struct {
	SigBits       uint
	SigRot        uint // signature rotation amount, coprime with SigBits
	ShortDistance int  // short-range history queue depth
	LongDistance  int  // long-range history queue depth
	ShortSets     int
	LongSets      int
	ExtraSets     int
	Ways          int
	Vectors       int
	VectorSize    int
	Conservative  int // next-k-line degree after a productive branch
	Aggressive    int // next-k-line degree otherwise
	Log2BlockSize uint
}

// DefaultDJOLTConfig returns mini D-JOLT's reference parameters: 16-bit
// rotated signatures over 128 short-range and 512 long-range 4-way sets,
// a 128-set extra table, 2 MissInfo slots of 8 bits each, and a next-line
// fallback degree of 2 after a productive branch or 5 otherwise.
func DefaultDJOLTConfig(log2BlockSize uint) DJOLTConfig {
	return DJOLTConfig{
		SigBits:       16,
		SigRot:        5,
		ShortDistance: 4,
		LongDistance:  15,
		ShortSets:     128,
		LongSets:      512,
		ExtraSets:     128,
		Ways:          4,
		Vectors:       2,
		VectorSize:    8,
		Conservative:  2,
		Aggressive:    5,
		Log2BlockSize: log2BlockSize,
	}
}

// DJOLTStats are running counters the core keeps on itself.
type DJOLTStats struct {
	Branches             uint64
	LinesIssued          uint64
	ExtraTableSpills     uint64
	UpperBitExhausted    uint64
	FallbackConservative uint64
	FallbackAggressive   uint64
}

// DJOLT is the mini D-JOLT two-range directed prefetcher with a
// next-k-line fallback.
type DJOLT struct {
	cfg DJOLTConfig

	siggenShort *fifoRetCountSignatureGen
	siggenLong  *fifoRetCountSignatureGen
	histShort   *signatureHistoryQueue
	histLong    *signatureHistoryQueue

	tableShort *missTable
	tableLong  *missTable
	extra      *missTable
	upperBits  *upperBitTable

	prefetchIssued bool
	scratch        []upperLowerSlot
	stats          DJOLTStats
}

// NewDJOLT builds a mini D-JOLT instance with cfg.
func NewDJOLT(cfg DJOLTConfig) *DJOLT {
	return &DJOLT{
		cfg:         cfg,
		siggenShort: newFIFORetCountSignatureGen(1, cfg.SigBits, cfg.SigRot),
		siggenLong:  newFIFORetCountSignatureGen(1, cfg.SigBits, cfg.SigRot),
		histShort:   newSignatureHistoryQueue(cfg.ShortDistance),
		histLong:    newSignatureHistoryQueue(cfg.LongDistance),
		tableShort:  newMissTable(cfg.ShortSets, cfg.Ways, cfg.Vectors, cfg.VectorSize, false),
		tableLong:   newMissTable(cfg.LongSets, cfg.Ways, cfg.Vectors, cfg.VectorSize, false),
		extra:       newMissTable(cfg.ExtraSets, cfg.Ways, cfg.Vectors, cfg.VectorSize, false),
		upperBits:   newUpperBitTable(),
	}
}

// BranchOperate is the branch-retirement hook. Both signature generators
// advance unconditionally on every call/return, even though only one of
// their tables may end up replayed: each history queue's back() reflects
// the most recent branch only if every branch is observed by both.
func (p *DJOLT) BranchOperate(ip uint64, branchType BranchType, target uint64, issuer Issuer) {
	if !branchType.IsCall() && branchType != Return {
		return
	}

	var sig1, sig2 uint32
	if branchType.IsCall() {
		sig1 = p.siggenShort.onCall(ip, target)
		sig2 = p.siggenLong.onCall(ip, target)
	} else {
		sig1 = p.siggenShort.onReturn(ip, target)
		sig2 = p.siggenLong.onReturn(ip, target)
	}
	p.histShort.push(sig1)
	p.histLong.push(sig2)
	p.stats.Branches++

	p.prefetchIssued = false
	p.replayIfPresent(p.tableShort, sig1, issuer)
	p.replayIfPresent(p.extra, sig1, issuer)
	p.replayIfPresent(p.tableLong, sig2, issuer)
	p.replayIfPresent(p.extra, sig2, issuer)
}

func (p *DJOLT) replayIfPresent(table *missTable, sig uint32, issuer Issuer) {
	if !table.contains(sig) {
		return
	}
	entry := table.peek(sig)
	p.scratch = entry.validCompressed(p.scratch[:0])
	for _, slot := range p.scratch {
		for _, lower := range slot.lowers {
			addr := p.upperBits.decompress(slot.upper, lower, p.cfg.Log2BlockSize)
			issuer.PrefetchCodeLine(addr)
			p.prefetchIssued = true
			p.stats.LinesIssued++
		}
	}
}

// CacheOperate is the L1I access hook. Only misses trigger the fallback
// and the learning step.
func (p *DJOLT) CacheOperate(vAddr uint64, hit bool, issuer Issuer) {
	if hit {
		return
	}

	p.fallback(vAddr, issuer)

	id, lower, ok := p.upperBits.compress(vAddr, p.cfg.Log2BlockSize)
	if !ok {
		p.stats.UpperBitExhausted++
		panic("prefetch: upper-bit table exhausted; the design assumes this cannot happen")
	}

	p.learnWithSig(p.tableShort, p.histShort.back(), id, lower)
	p.learnWithSig(p.tableLong, p.histLong.back(), id, lower)
}

// fallback issues the next-k-line prefetches that cover the simple
// sequential-fetch case the directed tables miss. The degree reflects
// whether the most recent branch event issued a directed prefetch, not
// whether this particular miss followed one; that branch-scoped flag is
// carried as-is rather than rescoped to the individual miss.
func (p *DJOLT) fallback(vAddr uint64, issuer Issuer) {
	degree := p.cfg.Aggressive
	if p.prefetchIssued {
		degree = p.cfg.Conservative
		p.stats.FallbackConservative++
	} else {
		p.stats.FallbackAggressive++
	}

	blockSize := uint64(1) << p.cfg.Log2BlockSize
	for i := 1; i <= degree; i++ {
		issuer.PrefetchCodeLine(vAddr + uint64(i)*blockSize)
	}
}

// learnWithSig is learn_with_sig: insert/touch the signature's entry in
// table, try to record (id, lower) in it without eviction, and on failure
// fall through to the shared extra table.
func (p *DJOLT) learnWithSig(table *missTable, sig uint32, id uint32, lower uint64) {
	entry := table.entry(sig)
	if entry.insertButDoNotEvict(lower, id) {
		p.extra.touchIfPresent(sig)
		return
	}

	p.stats.ExtraTableSpills++
	extraEntry := p.extra.entry(sig)
	extraEntry.insertButDoNotEvict(lower, id) // failure here is silently dropped
}

// CacheFill is a no-op in the core.
func (p *DJOLT) CacheFill(uint64) {}

// CycleOperate is a no-op in the core.
func (p *DJOLT) CycleOperate() {}

// FinalStats is a no-op in the core; see Stats for the accessor the host
// should poll instead.
func (p *DJOLT) FinalStats() {}

// Stats returns a snapshot of the running counters.
func (p *DJOLT) Stats() DJOLTStats {
	return p.stats
}
