package prefetch

// RDIPConfig holds RDIP's fixed construction parameters.
type RDIPConfig struct {
	HistLen       int // RAS shadow-stack depth feeding the signature
	Distance      int // signature history queue depth
	Sets          int
	Ways          int
	Vectors       int // MissInfo slots per entry
	VectorSize    int // bits per MissInfo slot
	Log2BlockSize uint
}

// DefaultRDIPConfig returns RDIP's reference parameters: a 4-deep RAS, a
// 2-deep signature history queue, 2048 4-way sets, and 3 MissInfo slots of
// 8 bits each per entry.
func DefaultRDIPConfig(log2BlockSize uint) RDIPConfig {
	return RDIPConfig{
		HistLen:       4,
		Distance:      2,
		Sets:          2048,
		Ways:          4,
		Vectors:       3,
		VectorSize:    8,
		Log2BlockSize: log2BlockSize,
	}
}

// RDIPStats are running counters the core keeps on itself. There is no
// end-of-run finalization step; Stats() is a pure accessor the host may
// poll whenever it likes.
type RDIPStats struct {
	Branches          uint64
	Suppressed        uint64
	SignaturesLearned uint64
	LinesIssued       uint64
}

// RDIP is the Return-address-stack Directed Instruction Prefetcher.
type RDIP struct {
	cfg     RDIPConfig
	siggen  *rasSignatureGen
	history *signatureHistoryQueue
	table   *missTable
	scratch []uint64
	stats   RDIPStats
}

// NewRDIP builds an RDIP instance with cfg.
func NewRDIP(cfg RDIPConfig) *RDIP {
	return &RDIP{
		cfg:     cfg,
		siggen:  newRASSignatureGen(cfg.HistLen),
		history: newSignatureHistoryQueue(cfg.Distance),
		table:   newMissTable(cfg.Sets, cfg.Ways, cfg.Vectors, cfg.VectorSize, true),
	}
}

// BranchOperate is the branch-retirement hook. Only DirectCall,
// IndirectCall and Return advance RDIP's state; every other branch type is
// ignored.
func (p *RDIP) BranchOperate(ip uint64, branchType BranchType, target uint64, issuer Issuer) {
	var sig uint32
	switch {
	case branchType.IsCall():
		sig = p.siggen.onCall(ip, target)
	case branchType == Return:
		sig = p.siggen.onReturn(ip, target)
	default:
		return
	}

	p.stats.Branches++

	if sig == p.history.front() {
		p.stats.Suppressed++
		return
	}
	p.history.push(sig)

	if p.table.contains(sig) {
		entry := p.table.peek(sig)
		p.scratch = entry.validAddresses(p.scratch[:0])
		for _, line := range p.scratch {
			issuer.PrefetchCodeLine(LineAddress(line).byteAddress(p.cfg.Log2BlockSize))
			p.stats.LinesIssued++
		}
	}
}

// CacheOperate is the L1I access hook. Only misses train the table.
func (p *RDIP) CacheOperate(vAddr uint64, hit bool) {
	if hit {
		return
	}

	line := uint64(lineOf(vAddr, p.cfg.Log2BlockSize))
	sig := p.history.back()
	p.table.entry(sig).insertOrTouch(line)
	p.stats.SignaturesLearned++
}

// CacheFill is a no-op in the core; the host's fill accounting lives
// elsewhere.
func (p *RDIP) CacheFill(uint64) {}

// CycleOperate is a no-op in the core.
func (p *RDIP) CycleOperate() {}

// FinalStats is a no-op in the core; see Stats for the accessor the host
// should poll instead.
func (p *RDIP) FinalStats() {}

// Stats returns a snapshot of the running counters.
func (p *RDIP) Stats() RDIPStats {
	return p.stats
}
