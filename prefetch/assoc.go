package prefetch

// setAssocTable is a set-associative LRU map: signature -> *V. Index is
// h(key) mod nSets, tag is h(key) div nSets; each set is an independent
// fully-associative table over the tag. Keys here are always signatures,
// so the hash is the identity function: the modulo/divide split
// still works unconditionally, it just gives an uneven tag width if the
// signature space is wider than nSets*2^tagBits describes.
type setAssocTable[V any] struct {
	nSets int
	sets  []*fullyAssocTable[V]
}

func newSetAssocTable[V any](nSets, nWays int) *setAssocTable[V] {
	t := &setAssocTable[V]{
		nSets: nSets,
		sets:  make([]*fullyAssocTable[V], nSets),
	}
	for i := range t.sets {
		t.sets[i] = newFullyAssocTable[V](nWays)
	}
	return t
}

func (t *setAssocTable[V]) split(key uint64) (set *fullyAssocTable[V], tag uint64) {
	idx := key % uint64(t.nSets)
	tag = key / uint64(t.nSets)
	return t.sets[idx], tag
}

func (t *setAssocTable[V]) contains(key uint64) bool {
	set, tag := t.split(key)
	return set.contains(tag)
}

func (t *setAssocTable[V]) insert(key uint64, value V) {
	set, tag := t.split(key)
	set.insert(tag, value)
}

func (t *setAssocTable[V]) touch(key uint64) {
	set, tag := t.split(key)
	set.touch(tag)
}

func (t *setAssocTable[V]) get(key uint64) *V {
	set, tag := t.split(key)
	return set.get(tag)
}
