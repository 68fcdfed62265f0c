package adaptivesampler

import "github.com/bits-and-blooms/bitset"

// The number of closed windows to track outcomes for.
const defaultWindowStatsSize = 10

// A stats implementation that records closed window outcomes in a BitSet
// ring, where a set bit marks a window that exhausted its sample budget.
// Not concurrency safe; guarded by the sampler's rotation mutex.
type windowStats struct {
	bitSet *bitset.BitSet
	size   uint

	// Index to write next entry to
	currentIndex uint
	occupiedBits uint
	saturated    uint
}

func newWindowStats(size uint) *windowStats {
	return &windowStats{
		bitSet: bitset.New(size),
		size:   size,
	}
}

// record sets the next bit in the ring, evicting the oldest outcome once the
// ring is full.
func (s *windowStats) record(saturated bool) {
	if s.occupiedBits < s.size {
		s.occupiedBits++
	} else if s.bitSet.Test(s.currentIndex) {
		s.saturated--
	}

	s.bitSet.SetTo(s.currentIndex, saturated)
	if saturated {
		s.saturated++
	}
	s.currentIndex = s.indexAfter(s.currentIndex)
}

// saturationRate returns the ratio of tracked windows that exhausted their
// budget, else 0 if no windows have closed yet.
func (s *windowStats) saturationRate() float64 {
	if s.occupiedBits == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.occupiedBits)
}

func (s *windowStats) indexAfter(index uint) uint {
	if index == s.size-1 {
		return 0
	}
	return index + 1
}
