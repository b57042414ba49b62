package racetrack

import "github.com/sarchlab/skrm/ieee754"

// PermutationPlusName selects the PermutationPlus strategy.
const PermutationPlusName = "pw_plus"

// PermutationPlus improves on Permutation in three ways. Values are written
// flipped, so a word never needs more than half of its bits set. The old word
// is only scanned until enough carriers are found. Leading zeros of the new
// value are skipped when the scan ends ahead of the first set bit.
type PermutationPlus struct{}

// Name returns "pw_plus".
func (PermutationPlus) Name() string {
	return PermutationPlusName
}

// FlagBits returns 1, for the flip flag.
func (PermutationPlus) FlagBits() int {
	return 1
}

// Write issues the assemble, reconcile and re-permute phases.
func (PermutationPlus) Write(d Device, value float32, targetWord int) error {
	if err := targetMustBeValid(d, targetWord); err != nil {
		return err
	}

	pattern, err := encodePattern(d, value, true)
	if err != nil {
		return err
	}

	wordSize := d.WordSize()
	needed := ieee754.PopCount(pattern)
	leadingOne := ieee754.LeadingOne(pattern)

	port := targetWord + 1
	s := &opSequence{d: d}
	carriers := 0

	// Assemble from the most significant end. stopIdx stays -1 unless the
	// scan finds all needed carriers before the last bit.
	stopIdx := -1
	s.shift(targetWord, port)
	for i := wordSize - 1; i >= 0; i-- {
		b := s.detect(port)
		s.shift(targetWord, port)

		if b == 0 {
			continue
		}

		carriers++
		if carriers == needed {
			stopIdx = i - 1
			break
		}
	}

	// Reconcile. When the scan ends ahead of the first set bit, the leading
	// zeros of the new value need no work. Otherwise the old bits left in
	// the word are removed while the new value is shifted in.
	start := 0
	activeRemoval := true
	if stopIdx < leadingOne {
		for i := stopIdx; i >= 0; i-- {
			s.remove(port)
		}

		start = leadingOne
		activeRemoval = false
	}

	// Re-permute and inject.
	for i := start; i < wordSize; i++ {
		s.shift(port, targetWord)

		if pattern[i] == '1' {
			if carriers > 0 {
				carriers--
				s.reuse(port)
			} else {
				s.inject(port)
			}
		}

		if activeRemoval {
			s.remove(targetWord)
		}
	}

	s.shift(port, targetWord)
	s.remove(targetWord)

	return s.err
}
