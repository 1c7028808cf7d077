package prefetch

// lruRank is the rank-vector LRU ordering primitive: lru[i] is the age of
// slot i, 0 being most recently used. It is the substrate every table in
// this package is built on, chosen over a linked list because the ways per
// set are always small (at most four here) and an O(N) touch over a plain
// array beats a linked list's pointer chasing at that size.
type lruRank struct {
	rank []int
}

func newLRURank(n int) *lruRank {
	r := &lruRank{rank: make([]int, n)}
	for i := range r.rank {
		r.rank[i] = i
	}
	return r
}

// touch marks slot k as most recently used.
func (r *lruRank) touch(k int) {
	old := r.rank[k]
	for i, rk := range r.rank {
		if rk < old {
			r.rank[i] = rk + 1
		}
	}
	r.rank[k] = 0
}

// victim returns the slot with the maximum rank.
func (r *lruRank) victim() int {
	maxI := 0
	for i, rk := range r.rank {
		if rk > r.rank[maxI] {
			maxI = i
		}
	}
	return maxI
}

// fullyAssocTable is a fixed N-way tag -> value store with LRU
// replacement. Tags arrive already hashed by the caller; an evicted slot
// is overwritten with the inserted tag and value.
type fullyAssocTable[V any] struct {
	ways  int
	tag   []uint64
	value []V
	valid []bool
	lru   *lruRank
}

func newFullyAssocTable[V any](ways int) *fullyAssocTable[V] {
	return &fullyAssocTable[V]{
		ways:  ways,
		tag:   make([]uint64, ways),
		value: make([]V, ways),
		valid: make([]bool, ways),
		lru:   newLRURank(ways),
	}
}

func (t *fullyAssocTable[V]) indexOf(tag uint64) (int, bool) {
	for i := 0; i < t.ways; i++ {
		if t.valid[i] && t.tag[i] == tag {
			return i, true
		}
	}
	return -1, false
}

// contains reports whether a valid slot's tag equals tag.
func (t *fullyAssocTable[V]) contains(tag uint64) bool {
	_, ok := t.indexOf(tag)
	return ok
}

// insert writes value under tag, overwriting in place if present, else
// evicting the max-rank slot. Either way the written slot becomes most
// recently used.
func (t *fullyAssocTable[V]) insert(tag uint64, value V) {
	if i, ok := t.indexOf(tag); ok {
		t.value[i] = value
		t.lru.touch(i)
		return
	}

	i := t.lru.victim()
	t.tag[i] = tag
	t.value[i] = value
	t.valid[i] = true
	t.lru.touch(i)
}

// touch marks the slot holding tag as most recently used. Precondition:
// contains(tag).
func (t *fullyAssocTable[V]) touch(tag uint64) {
	i, ok := t.indexOf(tag)
	if !ok {
		panic("prefetch: touch of absent key")
	}
	t.lru.touch(i)
}

// get returns a pointer to the value stored under tag, allowing in-place
// mutation. Precondition: contains(tag).
func (t *fullyAssocTable[V]) get(tag uint64) *V {
	i, ok := t.indexOf(tag)
	if !ok {
		panic("prefetch: get of absent key")
	}
	return &t.value[i]
}
