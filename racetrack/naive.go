package racetrack

// NaiveName selects the Naive strategy.
const NaiveName = "naive"

// Naive clears the whole target word and injects every set bit of the new
// value. It never looks at what the word held before.
type Naive struct{}

// Name returns "naive".
func (Naive) Name() string {
	return NaiveName
}

// FlagBits returns 0.
func (Naive) FlagBits() int {
	return 0
}

// Write costs 2*wordSize shifts, wordSize removes and one inject per set bit.
func (Naive) Write(d Device, value float32, targetWord int) error {
	if err := targetMustBeValid(d, targetWord); err != nil {
		return err
	}

	pattern, err := encodePattern(d, value, false)
	if err != nil {
		return err
	}

	port := targetWord + 1
	s := &opSequence{d: d}

	for i := 0; i < d.WordSize(); i++ {
		s.shift(targetWord, port)
		s.remove(port)
	}

	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '1' {
			s.inject(port)
		}
		s.shift(port, targetWord)
	}

	return s.err
}
