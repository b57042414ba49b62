package racetrack

import (
	"github.com/bits-and-blooms/bitset"
)

// Storage is the flat bit sequence of all racetracks of a device. It is only
// mutated through the primitive operations of the device that owns it.
type Storage struct {
	layout Layout
	bits   *bitset.BitSet
}

// NewStorage allocates an all-zero storage for layout.
func NewStorage(layout Layout) *Storage {
	return &Storage{
		layout: layout,
		bits:   bitset.New(uint(layout.Len())),
	}
}

// Layout returns the layout of the storage.
func (s *Storage) Layout() Layout {
	return s.layout
}

// Len returns the number of bits in the storage.
func (s *Storage) Len() int {
	return s.layout.Len()
}

// Bit returns the bit at offset as 0 or 1.
func (s *Storage) Bit(offset int) uint8 {
	if s.bits.Test(uint(offset)) {
		return 1
	}

	return 0
}

// PopCount returns the number of set bits.
func (s *Storage) PopCount() int {
	return int(s.bits.Count())
}

// Snapshot returns a copy of the bits.
func (s *Storage) Snapshot() *bitset.BitSet {
	return s.bits.Clone()
}

func (s *Storage) set(offset int, v bool) {
	s.bits.SetTo(uint(offset), v)
}

// moveUp shifts the bits in [lo, hi) one position up, so that the bit at hi
// is replaced by the bit at hi-1. The bit at lo keeps its value.
func (s *Storage) moveUp(lo, hi int) {
	for i := hi; i > lo; i-- {
		s.bits.SetTo(uint(i), s.bits.Test(uint(i-1)))
	}
}

// moveDown shifts the bits in (lo, hi] one position down, so that the bit at
// lo is replaced by the bit at lo+1. The bit at hi keeps its value.
func (s *Storage) moveDown(lo, hi int) {
	for i := lo; i < hi; i++ {
		s.bits.SetTo(uint(i), s.bits.Test(uint(i+1)))
	}
}
