package racetrack

import (
	"github.com/sarchlab/skrm/ieee754"
	"github.com/sarchlab/skrm/sim/hooking"
	"github.com/sarchlab/skrm/sim/id"
	"github.com/sarchlab/skrm/sim/naming"
)

// Builder can build SKRM devices.
type Builder struct {
	geometry     Geometry
	strategyName string
	strategy     WriteStrategy
	cost         CostModel
	encoder      ieee754.Encoder
	idGen        id.IDGenerator
	hooks        []hooking.Hook
}

// MakeBuilder returns a Builder for a single racetrack with two overhead
// blocks, written with the naive strategy.
func MakeBuilder() Builder {
	return Builder{
		geometry: Geometry{
			WordSize:     ieee754.SingleBits,
			NumWords:     1,
			NumOverhead:  2,
			NumRacetrack: 1,
		},
		strategyName: NaiveName,
		cost:         DefaultCostModel(),
		encoder:      ieee754.Default,
	}
}

// WithGeometry sets the whole geometry.
func (b Builder) WithGeometry(g Geometry) Builder {
	b.geometry = g
	return b
}

// WithWordSize sets the number of data bits in a word.
func (b Builder) WithWordSize(wordSize int) Builder {
	b.geometry.WordSize = wordSize
	return b
}

// WithNumWords sets the number of addressable words.
func (b Builder) WithNumWords(numWords int) Builder {
	b.geometry.NumWords = numWords
	return b
}

// WithNumOverhead sets the number of buffer blocks.
func (b Builder) WithNumOverhead(numOverhead int) Builder {
	b.geometry.NumOverhead = numOverhead
	return b
}

// WithNumRacetrack sets the number of parallel racetracks.
func (b Builder) WithNumRacetrack(numRacetrack int) Builder {
	b.geometry.NumRacetrack = numRacetrack
	return b
}

// WithStrategyName selects a built-in strategy by name.
func (b Builder) WithStrategyName(name string) Builder {
	b.strategyName = name
	b.strategy = nil
	return b
}

// WithStrategy binds a strategy directly, taking precedence over the name.
func (b Builder) WithStrategy(s WriteStrategy) Builder {
	b.strategy = s
	return b
}

// WithCostModel sets the cost model.
func (b Builder) WithCostModel(cost CostModel) Builder {
	b.cost = cost
	return b
}

// WithEncoder replaces the IEEE-754 encoder.
func (b Builder) WithEncoder(e ieee754.Encoder) Builder {
	b.encoder = e
	return b
}

// WithIDGenerator sets the generator of write task IDs.
func (b Builder) WithIDGenerator(g id.IDGenerator) Builder {
	b.idGen = g
	return b
}

// WithHook registers a hook on the built device.
func (b Builder) WithHook(h hooking.Hook) Builder {
	b.hooks = append(append([]hooking.Hook(nil), b.hooks...), h)
	return b
}

func (b Builder) resolveStrategy() (WriteStrategy, error) {
	if b.strategy != nil {
		return b.strategy, nil
	}

	return StrategyByName(b.strategyName)
}

// Build builds a new SKRM with all-zero storage. The strategy is resolved
// before anything is allocated.
func (b Builder) Build(name string) (*SKRM, error) {
	strategy, err := b.resolveStrategy()
	if err != nil {
		return nil, err
	}

	if err := naming.ValidName(name); err != nil {
		return nil, &ArgumentError{Msg: err.Error()}
	}

	if err := b.geometry.mustBeValid(); err != nil {
		return nil, err
	}

	if b.encoder == nil {
		return nil, newArgumentError("encoder must not be nil")
	}

	layout := NewLayout(b.geometry, b.geometry.WordSize+strategy.FlagBits())

	m := &SKRM{
		NamedBase: naming.MakeNamedBase(name),
		geometry:  b.geometry,
		layout:    layout,
		storage:   NewStorage(layout),
		cost:      b.cost,
		strategy:  strategy,
		encoder:   b.encoder,
		idGen:     b.idGen,
	}

	if m.idGen == nil {
		m.idGen = id.NewIDGenerator()
	}

	for _, h := range b.hooks {
		m.AcceptHook(h)
	}

	return m, nil
}
