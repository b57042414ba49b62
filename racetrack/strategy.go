package racetrack

import (
	"sort"

	"github.com/sarchlab/skrm/ieee754"
)

// A WriteStrategy turns a write into a sequence of primitive operations.
type WriteStrategy interface {
	// Name returns the name the strategy is selected by.
	Name() string

	// FlagBits returns the number of bits the strategy adds to each word.
	FlagBits() int

	// Write writes value into word targetWord of d.
	Write(d Device, value float32, targetWord int) error
}

// StrategyFunc adapts a function to the WriteStrategy interface, so that
// callers can plug in their own algorithm.
type StrategyFunc struct {
	Label string
	Flags int
	Fn    func(d Device, value float32, targetWord int) error
}

// Name returns the label of the strategy.
func (s StrategyFunc) Name() string {
	return s.Label
}

// FlagBits returns the number of flag bits.
func (s StrategyFunc) FlagBits() int {
	return s.Flags
}

// Write checks the target word and calls the function.
func (s StrategyFunc) Write(d Device, value float32, targetWord int) error {
	if s.Fn == nil {
		return newArgumentError("strategy %q has no write function", s.Label)
	}

	if err := targetMustBeValid(d, targetWord); err != nil {
		return err
	}

	return s.Fn(d, value, targetWord)
}

var builtinStrategies = map[string]WriteStrategy{
	NaiveName:           Naive{},
	PermutationName:     Permutation{},
	PermutationPlusName: PermutationPlus{},
}

// StrategyByName returns the built-in strategy called name.
func StrategyByName(name string) (WriteStrategy, error) {
	s, ok := builtinStrategies[name]
	if !ok {
		return nil, newArgumentError("invalid update strategy %q", name)
	}

	return s, nil
}

// StrategyNames returns the names of the built-in strategies.
func StrategyNames() []string {
	names := make([]string, 0, len(builtinStrategies))
	for name := range builtinStrategies {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// encodePattern encodes value and checks that the pattern fills a word.
func encodePattern(d Device, value float32, flipped bool) (string, error) {
	var pattern string
	if flipped {
		pattern = d.Encoder().EncodeFlipped(value)
	} else {
		pattern = d.Encoder().Encode(value)
	}

	if len(pattern) != d.WordSize() {
		return "", newArgumentError(
			"encoded pattern has %d bits, but a word holds %d",
			len(pattern), d.WordSize())
	}

	if !ieee754.IsBinary(pattern) {
		return "", newArgumentError(
			"encoded pattern %q has characters other than 0 and 1", pattern)
	}

	return pattern, nil
}

// opSequence issues operations on a device until one of them fails. After a
// failure, later operations are skipped and the first error is kept.
type opSequence struct {
	d   Device
	err error
}

func (s *opSequence) inject(ap int) {
	if s.err == nil {
		s.err = s.d.Inject(ap)
	}
}

func (s *opSequence) detect(ap int) uint8 {
	if s.err != nil {
		return 0
	}

	var b uint8
	b, s.err = s.d.Detect(ap)

	return b
}

func (s *opSequence) remove(ap int) {
	if s.err == nil {
		s.err = s.d.Remove(ap)
	}
}

func (s *opSequence) shift(startAP, endAP int) {
	if s.err == nil {
		s.err = s.d.Shift(startAP, endAP)
	}
}

func (s *opSequence) reuse(ap int) {
	if s.err == nil {
		s.err = s.d.ReuseCarrier(ap)
	}
}

func (s *opSequence) retire() {
	if s.err == nil {
		s.d.RetireCarrier()
	}
}
