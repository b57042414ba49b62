// Package racetrack models a skyrmion racetrack memory (SKRM) and the
// primitive operations a controller issues to write words into it.
package racetrack

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/sarchlab/skrm/ieee754"
	"github.com/sarchlab/skrm/sim/hooking"
	"github.com/sarchlab/skrm/sim/id"
	"github.com/sarchlab/skrm/sim/naming"
	"github.com/sarchlab/skrm/tracing"
)

// Hook positions fired by the primitive operations. The hook item is an
// OpEvent.
var (
	HookPosInject = &hooking.HookPos{Name: "Inject"}
	HookPosDetect = &hooking.HookPos{Name: "Detect"}
	HookPosRemove = &hooking.HookPos{Name: "Remove"}
	HookPosShift  = &hooking.HookPos{Name: "Shift"}

	// HookPosReuse fires when a strategy parks a carrier it already owns at
	// an access port. No operation is counted.
	HookPosReuse = &hooking.HookPos{Name: "Reuse"}
)

// WriteTaskKind is the kind of the tracing tasks created by Write.
const WriteTaskKind = "write"

// OpEvent describes one primitive operation.
type OpEvent struct {
	Kind OpKind

	// AP is the access port the operation addresses. For a shift, it is the
	// start port.
	AP int

	// EndAP is the end port of a shift. It equals AP for other kinds.
	EndAP int

	// Retired marks bookkeeping operations that retire a leftover carrier
	// without touching the storage.
	Retired bool
}

// WriteDetail is attached to the tracing task of a write.
type WriteDetail struct {
	Value      float32
	TargetWord int
}

// A Device is what a write strategy drives: the primitive operations of a
// racetrack plus the encoder that turns values into bit patterns.
type Device interface {
	// WordSize returns the effective number of bits in a word, including the
	// flag bit of strategies that use one.
	WordSize() int

	// NumWords returns the number of addressable words.
	NumWords() int

	// Encoder returns the encoder used to turn values into patterns.
	Encoder() ieee754.Encoder

	Inject(ap int) error
	Detect(ap int) (uint8, error)
	Remove(ap int) error
	Shift(startAP, endAP int) error

	// ReuseCarrier parks a carrier the strategy already holds at ap. It is
	// not counted as an injection.
	ReuseCarrier(ap int) error

	// RetireCarrier accounts one shift and one remove for discarding a
	// leftover carrier outside the active word region.
	RetireCarrier()
}

// SKRM is a skyrmion racetrack memory with a bound write strategy.
type SKRM struct {
	naming.NamedBase
	hooking.HookableBase

	geometry Geometry
	layout   Layout
	storage  *Storage
	counts   Counts
	cost     CostModel
	strategy WriteStrategy
	encoder  ieee754.Encoder

	idGen  id.IDGenerator
	taskID string
}

// Geometry returns the geometry the device was built with.
func (m *SKRM) Geometry() Geometry {
	return m.geometry
}

// Layout returns the storage layout.
func (m *SKRM) Layout() Layout {
	return m.layout
}

// WordSize returns the effective word size.
func (m *SKRM) WordSize() int {
	return m.layout.WordSize()
}

// NumWords returns the number of addressable words.
func (m *SKRM) NumWords() int {
	return m.layout.NumWords()
}

// Encoder returns the encoder used by the write strategies.
func (m *SKRM) Encoder() ieee754.Encoder {
	return m.encoder
}

// Storage returns the storage for read access. Use the primitive operations
// to change it.
func (m *SKRM) Storage() *Storage {
	return m.storage
}

// Bits returns a copy of the raw bit sequence.
func (m *SKRM) Bits() *bitset.BitSet {
	return m.storage.Snapshot()
}

// Counts returns the number of operations issued so far.
func (m *SKRM) Counts() Counts {
	return m.counts
}

// CostModel returns the cost model used by reports.
func (m *SKRM) CostModel() CostModel {
	return m.cost
}

// SetCostModel replaces the cost model. Counts are kept.
func (m *SKRM) SetCostModel(cost CostModel) {
	m.cost = cost
}

// Strategy returns the bound write strategy.
func (m *SKRM) Strategy() WriteStrategy {
	return m.strategy
}

// SetStrategy binds another write strategy. Storage and counts are kept and
// the layout does not change, so the new strategy must fit the current word
// size.
func (m *SKRM) SetStrategy(s WriteStrategy) {
	if s == nil {
		panic("strategy must not be nil")
	}

	m.strategy = s
}

// Summarize prices the operations issued so far.
func (m *SKRM) Summarize() CostReport {
	return NewCostReport(m.counts, m.cost)
}

// Latency returns the latency of the operations issued so far, per kind.
func (m *SKRM) Latency() Breakdown {
	return m.Summarize().Latency
}

// Energy returns the energy of the operations issued so far, per kind.
func (m *SKRM) Energy() Breakdown {
	return m.Summarize().Energy
}

// Now returns the accumulated latency of all operations issued so far.
func (m *SKRM) Now() float64 {
	return m.Summarize().TotalLatency()
}

// Write writes value into word targetWord with the bound strategy. The target
// is checked before any operation is issued. If the strategy fails halfway,
// the operations already issued are kept.
func (m *SKRM) Write(value float32, targetWord int) error {
	if err := targetMustBeValid(m, targetWord); err != nil {
		return err
	}

	m.taskID = m.idGen.Generate()
	defer func() { m.taskID = "" }()

	tracing.StartTask(m.taskID, "", m, WriteTaskKind, m.strategy.Name(),
		WriteDetail{Value: value, TargetWord: targetWord})
	defer tracing.EndTask(m.taskID, m)

	return m.strategy.Write(m, value, targetWord)
}

func targetMustBeValid(d Device, targetWord int) error {
	if targetWord < 0 || targetWord > d.NumWords()-1 {
		return newArgumentError(
			"target word must be between 0 and %d (num_words - 1), got %d",
			d.NumWords()-1, targetWord)
	}

	return nil
}
