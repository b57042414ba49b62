package racetrack

import (
	"fmt"
	"io"
	"strconv"
)

// OpKind is the kind of a primitive operation.
type OpKind int

// The four primitive operations of a racetrack.
const (
	OpInject OpKind = iota
	OpDetect
	OpRemove
	OpShift
)

var opKindNames = [...]string{"inject", "detect", "remove", "shift"}

// OpKinds lists every OpKind in report order.
var OpKinds = []OpKind{OpInject, OpDetect, OpRemove, OpShift}

func (k OpKind) String() string {
	if k < 0 || int(k) >= len(opKindNames) {
		return "OpKind(" + strconv.Itoa(int(k)) + ")"
	}

	return opKindNames[k]
}

// Counts is the number of operations issued per kind.
type Counts struct {
	Inject uint64 `json:"inject"`
	Detect uint64 `json:"detect"`
	Remove uint64 `json:"remove"`
	Shift  uint64 `json:"shift"`
}

// Of returns the count of kind.
func (c Counts) Of(kind OpKind) uint64 {
	switch kind {
	case OpInject:
		return c.Inject
	case OpDetect:
		return c.Detect
	case OpRemove:
		return c.Remove
	case OpShift:
		return c.Shift
	default:
		panic(fmt.Sprintf("unknown op kind %d", kind))
	}
}

func (c *Counts) add(kind OpKind) {
	switch kind {
	case OpInject:
		c.Inject++
	case OpDetect:
		c.Detect++
	case OpRemove:
		c.Remove++
	case OpShift:
		c.Shift++
	default:
		panic(fmt.Sprintf("unknown op kind %d", kind))
	}
}

// Sub returns the operations issued since prev was taken.
func (c Counts) Sub(prev Counts) Counts {
	return Counts{
		Inject: c.Inject - prev.Inject,
		Detect: c.Detect - prev.Detect,
		Remove: c.Remove - prev.Remove,
		Shift:  c.Shift - prev.Shift,
	}
}

// Total returns the number of operations of all kinds.
func (c Counts) Total() uint64 {
	return c.Inject + c.Detect + c.Remove + c.Shift
}

// OpCost is the latency and energy of one operation.
type OpCost struct {
	Latency float64 `json:"latency"`
	Energy  float64 `json:"energy"`
}

// CostModel gives the cost of each kind of operation. It never changes what
// the device does, only what the report says.
type CostModel struct {
	Inject OpCost `json:"inject"`
	Detect OpCost `json:"detect"`
	Remove OpCost `json:"remove"`
	Shift  OpCost `json:"shift"`
}

// DefaultCostModel returns the costs of a reference skyrmion racetrack.
func DefaultCostModel() CostModel {
	return CostModel{
		Inject: OpCost{Latency: 1, Energy: 200},
		Detect: OpCost{Latency: 0.1, Energy: 2},
		Remove: OpCost{Latency: 0.8, Energy: 20},
		Shift:  OpCost{Latency: 0.5, Energy: 20},
	}
}

// Of returns the cost of kind.
func (m CostModel) Of(kind OpKind) OpCost {
	switch kind {
	case OpInject:
		return m.Inject
	case OpDetect:
		return m.Detect
	case OpRemove:
		return m.Remove
	case OpShift:
		return m.Shift
	default:
		panic(fmt.Sprintf("unknown op kind %d", kind))
	}
}

// Set replaces the cost of kind.
func (m *CostModel) Set(kind OpKind, c OpCost) {
	switch kind {
	case OpInject:
		m.Inject = c
	case OpDetect:
		m.Detect = c
	case OpRemove:
		m.Remove = c
	case OpShift:
		m.Shift = c
	default:
		panic(fmt.Sprintf("unknown op kind %d", kind))
	}
}

// Breakdown splits a quantity by operation kind.
type Breakdown struct {
	Inject float64 `json:"inject"`
	Detect float64 `json:"detect"`
	Remove float64 `json:"remove"`
	Shift  float64 `json:"shift"`
}

// Of returns the share of kind.
func (b Breakdown) Of(kind OpKind) float64 {
	switch kind {
	case OpInject:
		return b.Inject
	case OpDetect:
		return b.Detect
	case OpRemove:
		return b.Remove
	case OpShift:
		return b.Shift
	default:
		panic(fmt.Sprintf("unknown op kind %d", kind))
	}
}

// Total sums the shares.
func (b Breakdown) Total() float64 {
	return b.Inject + b.Detect + b.Remove + b.Shift
}

// CostReport aggregates the counts of a device with their latency and energy.
type CostReport struct {
	Counts  Counts    `json:"counts"`
	Latency Breakdown `json:"latency"`
	Energy  Breakdown `json:"energy"`
}

// NewCostReport prices counts with model.
func NewCostReport(counts Counts, model CostModel) CostReport {
	r := CostReport{Counts: counts}

	r.Latency = Breakdown{
		Inject: float64(counts.Inject) * model.Inject.Latency,
		Detect: float64(counts.Detect) * model.Detect.Latency,
		Remove: float64(counts.Remove) * model.Remove.Latency,
		Shift:  float64(counts.Shift) * model.Shift.Latency,
	}

	r.Energy = Breakdown{
		Inject: float64(counts.Inject) * model.Inject.Energy,
		Detect: float64(counts.Detect) * model.Detect.Energy,
		Remove: float64(counts.Remove) * model.Remove.Energy,
		Shift:  float64(counts.Shift) * model.Shift.Energy,
	}

	return r
}

// TotalLatency returns the latency of all operations.
func (r CostReport) TotalLatency() float64 {
	return r.Latency.Total()
}

// TotalEnergy returns the energy of all operations.
func (r CostReport) TotalEnergy() float64 {
	return r.Energy.Total()
}

const reportRule = "----------------------"

// Format writes the report as text, one line per operation kind, followed by
// the latency and energy sections.
func (r CostReport) Format(w io.Writer) error {
	ew := &errWriter{w: w}

	for _, k := range OpKinds {
		ew.printf("%s count: %d\n", title(k), r.Counts.Of(k))
	}

	ew.printf("%s\n", reportRule)

	for _, k := range OpKinds {
		ew.printf("%s latency: %.1f\n", title(k), r.Latency.Of(k))
	}

	ew.printf("%s\n", reportRule)
	ew.printf("Total latency: %.1f\n", r.TotalLatency())
	ew.printf("%s\n", reportRule)

	for _, k := range OpKinds {
		ew.printf("%s energy: %s\n", title(k), formatFloat(r.Energy.Of(k)))
	}

	ew.printf("%s\n", reportRule)
	ew.printf("Total energy: %s\n", formatFloat(r.TotalEnergy()))

	return ew.err
}

func title(k OpKind) string {
	s := k.String()
	return string(s[0]-'a'+'A') + s[1:]
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
