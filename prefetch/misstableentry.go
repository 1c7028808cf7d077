package prefetch

// missTableEntry is a bounded collection of nVectors missInfo slots. RDIP
// additionally keeps an LRU order over the slots themselves (insertOrTouch);
// D-JOLT never evicts a slot, it just refuses once all are full
// (insertButDoNotEvict) and lets the caller redirect to the extra table.
type missTableEntry struct {
	slots      []missInfo
	vectorSize int
	lru        *lruRank // nil for D-JOLT entries
}

func newMissTableEntry(nVectors, vectorSize int, withLRU bool) *missTableEntry {
	e := &missTableEntry{
		slots:      make([]missInfo, nVectors),
		vectorSize: vectorSize,
	}
	for i := range e.slots {
		e.slots[i] = newMissInfo(vectorSize)
	}
	if withLRU {
		e.lru = newLRURank(nVectors)
	}
	return e
}

// insertOrTouch is RDIP's policy: try each slot in index order, the first
// to accept becomes most recently used. If every slot refuses, evict the
// max-rank slot, reinitialise it, and add addr to it, which must succeed.
func (e *missTableEntry) insertOrTouch(lineAddr uint64) {
	for i := range e.slots {
		if e.slots[i].add(lineAddr, 0, false) {
			e.lru.touch(i)
			return
		}
	}

	victim := e.lru.victim()
	e.slots[victim].reset()
	if !e.slots[victim].add(lineAddr, 0, false) {
		panic("prefetch: freshly reset slot refused its seed address")
	}
	e.lru.touch(victim)
}

// insertButDoNotEvict is D-JOLT's policy: try each slot in index order,
// stop on first success, return false (no mutation beyond what the
// successful add already did) if every slot refuses.
func (e *missTableEntry) insertButDoNotEvict(lower uint64, upper uint32) bool {
	for i := range e.slots {
		if e.slots[i].add(lower, upper, true) {
			return true
		}
	}
	return false
}

// validAddresses appends every valid slot's line addresses, in slot-index
// order, to dst. RDIP only: its slots carry line addresses directly.
func (e *missTableEntry) validAddresses(dst []uint64) []uint64 {
	for i := range e.slots {
		dst = e.slots[i].addresses(dst)
	}
	return dst
}

// upperLowerSlot is one valid D-JOLT slot's compressed addresses, left
// undecompressed because only the caller holds the UpperBitTable.
type upperLowerSlot struct {
	upper  uint32
	lowers []uint64
}

// validCompressed appends one upperLowerSlot per valid slot, in slot-index
// order, to dst. D-JOLT only.
func (e *missTableEntry) validCompressed(dst []upperLowerSlot) []upperLowerSlot {
	for i := range e.slots {
		if !e.slots[i].valid {
			continue
		}
		lowers := e.slots[i].addresses(nil)
		dst = append(dst, upperLowerSlot{upper: e.slots[i].upper, lowers: lowers})
	}
	return dst
}
