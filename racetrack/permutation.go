package racetrack

// PermutationName selects the Permutation strategy.
const PermutationName = "pw"

// Permutation shifts the old word out through the access port, counting its
// carriers, and reuses them for the set bits of the new value. Only the set
// bits that cannot be served by an old carrier are injected.
type Permutation struct{}

// Name returns "pw".
func (Permutation) Name() string {
	return PermutationName
}

// FlagBits returns 0.
func (Permutation) FlagBits() int {
	return 0
}

// Write issues the assemble, re-permute and settlement phases.
func (Permutation) Write(d Device, value float32, targetWord int) error {
	if err := targetMustBeValid(d, targetWord); err != nil {
		return err
	}

	pattern, err := encodePattern(d, value, false)
	if err != nil {
		return err
	}

	port := targetWord + 1
	s := &opSequence{d: d}
	carriers := 0

	// Assemble.
	s.shift(targetWord, port)
	for i := 0; i < d.WordSize(); i++ {
		if s.detect(port) == 1 {
			carriers++
		}
		s.shift(targetWord, port)
	}

	// Re-permute and inject.
	for i := 0; i < len(pattern); i++ {
		s.shift(port, targetWord)

		if pattern[i] != '1' {
			continue
		}

		if carriers > 0 {
			carriers--
			s.reuse(port)
		} else {
			s.inject(port)
		}
	}
	s.shift(port, targetWord)

	for ; carriers > 0; carriers-- {
		s.retire()
	}

	return s.err
}
