package experiment

import (
	"fmt"

	"github.com/sarchlab/skrm/datarecording"
	"github.com/sarchlab/skrm/monitoring"
	"github.com/sarchlab/skrm/racetrack"
	"github.com/sarchlab/skrm/sim/id"
	"github.com/sarchlab/skrm/tracing"
)

// Builder can be used to build an experiment.
type Builder struct {
	geometry   racetrack.Geometry
	strategies []string
	values     []float32
	targetWord int
	cost       racetrack.CostModel
	parallel   bool
	recorder   datarecording.DataRecorder
	monitor    *monitoring.Monitor
	tracers    []tracing.Tracer
	idGen      id.IDGenerator
}

// MakeBuilder creates a builder for a single 32-bit word written with the
// naive strategy.
func MakeBuilder() Builder {
	return Builder{
		geometry: racetrack.Geometry{
			WordSize:     32,
			NumWords:     1,
			NumOverhead:  2,
			NumRacetrack: 1,
		},
		strategies: []string{racetrack.NaiveName},
		cost:       racetrack.DefaultCostModel(),
		idGen:      id.NewGlobalIDGenerator(),
	}
}

// WithGeometry sets the geometry of every device.
func (b Builder) WithGeometry(g racetrack.Geometry) Builder {
	b.geometry = g
	return b
}

// WithStrategies sets the strategies to compare. Each strategy gets its own
// device.
func (b Builder) WithStrategies(names ...string) Builder {
	b.strategies = append([]string(nil), names...)
	return b
}

// WithValues sets the values written, in order.
func (b Builder) WithValues(values ...float32) Builder {
	b.values = append([]float32(nil), values...)
	return b
}

// WithTargetWord sets the word every value is written into.
func (b Builder) WithTargetWord(w int) Builder {
	b.targetWord = w
	return b
}

// WithCostModel sets the cost model of every device.
func (b Builder) WithCostModel(cost racetrack.CostModel) Builder {
	b.cost = cost
	return b
}

// WithParallelRuns runs the devices of different strategies concurrently.
func (b Builder) WithParallelRuns() Builder {
	b.parallel = true
	return b
}

// WithRecorder sets the recorder that receives the write and summary tables.
func (b Builder) WithRecorder(r datarecording.DataRecorder) Builder {
	b.recorder = r
	return b
}

// WithMonitor sets the monitor that the devices are registered to.
func (b Builder) WithMonitor(m *monitoring.Monitor) Builder {
	b.monitor = m
	return b
}

// WithTracer attaches a tracer to every device.
func (b Builder) WithTracer(t tracing.Tracer) Builder {
	b.tracers = append(append([]tracing.Tracer(nil), b.tracers...), t)
	return b
}

// WithIDGenerator sets the generator of the experiment ID.
func (b Builder) WithIDGenerator(g id.IDGenerator) Builder {
	b.idGen = g
	return b
}

// Build validates the parameters and creates one device per strategy.
func (b Builder) Build() (*Experiment, error) {
	if len(b.strategies) == 0 {
		return nil, &racetrack.ArgumentError{Msg: "no strategy given"}
	}

	if b.targetWord < 0 || b.targetWord > b.geometry.NumWords-1 {
		return nil, &racetrack.ArgumentError{Msg: fmt.Sprintf(
			"target word must be between 0 and %d (num_words - 1), got %d",
			b.geometry.NumWords-1, b.targetWord)}
	}

	e := &Experiment{
		id:         b.idGen.Generate(),
		values:     b.values,
		targetWord: b.targetWord,
		parallel:   b.parallel,
		recorder:   b.recorder,
		monitor:    b.monitor,
	}

	taskIDs := id.NewIDGenerator()
	seen := make(map[string]bool)
	for _, name := range b.strategies {
		if seen[name] {
			return nil, &racetrack.ArgumentError{
				Msg: fmt.Sprintf("strategy %q given twice", name)}
		}
		seen[name] = true

		r, err := b.buildRun(name, taskIDs)
		if err != nil {
			return nil, err
		}

		e.runs = append(e.runs, r)
	}

	if b.recorder != nil {
		b.recorder.CreateTable(WriteTable, Record{})
		b.recorder.CreateTable(SummaryTable, Summary{})
	}

	for _, r := range e.runs {
		if b.monitor != nil {
			b.monitor.RegisterDevice(r)
		}
	}

	return e, nil
}

func (b Builder) buildRun(
	strategy string,
	taskIDs id.IDGenerator,
) (*Run, error) {
	device, err := racetrack.MakeBuilder().
		WithGeometry(b.geometry).
		WithStrategyName(strategy).
		WithCostModel(b.cost).
		WithIDGenerator(taskIDs).
		Build("SKRM." + strategy)
	if err != nil {
		return nil, err
	}

	for _, t := range b.tracers {
		tracing.CollectTrace(device, t)
	}

	return &Run{device: device}, nil
}
