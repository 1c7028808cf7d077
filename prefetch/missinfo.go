package prefetch

// missInfo is a compact descriptor covering up to 1+vectorSize contiguous
// line addresses: a base line plus a bit-vector of positive offsets from
// that base. valid == false means the slot is empty; once valid, any base
// value, including 0, is a recorded address.
type missInfo struct {
	valid      bool
	base       uint64 // line address (RDIP) or compressed lower bits (D-JOLT)
	upper      uint32 // D-JOLT only: the base's upper-region id, for the same-region check
	vectorSize int
	bits       []bool
}

func newMissInfo(vectorSize int) missInfo {
	return missInfo{vectorSize: vectorSize, bits: make([]bool, vectorSize)}
}

func (m *missInfo) reset() {
	m.valid = false
	m.base = 0
	m.upper = 0
	for i := range m.bits {
		m.bits[i] = false
	}
}

// add tries to record lower (a line address, or D-JOLT's compressed lower
// half) in this slot. When hasUpper is true, upper must agree with the
// slot's stored upper region for D-JOLT's same-region invariant; RDIP
// passes hasUpper=false, since it has no upper/lower split.
func (m *missInfo) add(lower uint64, upper uint32, hasUpper bool) bool {
	if !m.valid {
		m.valid = true
		m.base = lower
		m.upper = upper
		return true
	}

	if hasUpper && upper != m.upper {
		return false
	}

	diff := int64(lower) - int64(m.base)
	switch {
	case diff < 0:
		return false
	case diff == 0:
		return true
	case diff <= int64(m.vectorSize):
		m.bits[diff-1] = true
		return true
	default:
		return false
	}
}

// addresses appends base first, then base+(i+1) for every set bit, in
// ascending offset order, to dst. Returning via an append target avoids a
// fresh allocation per call at the hot-path replay sites. Used by RDIP,
// where base already is a line address.
func (m *missInfo) addresses(dst []uint64) []uint64 {
	if !m.valid {
		return dst
	}
	dst = append(dst, m.base)
	for i, set := range m.bits {
		if set {
			dst = append(dst, m.base+uint64(i+1))
		}
	}
	return dst
}
