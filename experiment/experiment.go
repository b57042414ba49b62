// Package experiment writes a sequence of values into fresh racetrack devices,
// one per write strategy, and collects the cost of every write.
package experiment

import (
	"fmt"
	"sync"

	"github.com/sarchlab/skrm/datarecording"
	"github.com/sarchlab/skrm/monitoring"
)

// Names of the tables written into the recorder.
const (
	WriteTable   = "skrm_writes"
	SummaryTable = "skrm_summary"
)

// Record is the cost of one write.
type Record struct {
	Experiment string
	Strategy   string
	Seq        int
	Value      float64
	Pattern    string
	TargetWord int
	Inject     uint64
	Detect     uint64
	Remove     uint64
	Shift      uint64
	Latency    float64
	Energy     float64
}

// Summary is the total cost of all the writes of a strategy.
type Summary struct {
	Experiment string
	Strategy   string
	NumWrites  int
	Inject     uint64
	Detect     uint64
	Remove     uint64
	Shift      uint64
	Latency    float64
	Energy     float64
}

// Experiment writes the same values with several strategies.
type Experiment struct {
	id         string
	values     []float32
	targetWord int
	parallel   bool
	recorder   datarecording.DataRecorder
	monitor    *monitoring.Monitor

	runs []*Run
}

// ID returns the unique ID of the experiment.
func (e *Experiment) ID() string {
	return e.id
}

// Runs returns one run per strategy, in the order the strategies were given.
func (e *Experiment) Runs() []*Run {
	return e.runs
}

// Run writes all the values with every strategy. The records and summaries
// are inserted into the recorder once all runs finish. The first failing
// write stops its run and is returned.
func (e *Experiment) Run() error {
	errs := make([]error, len(e.runs))

	if e.parallel {
		var wg sync.WaitGroup
		for i, r := range e.runs {
			wg.Add(1)
			go func(i int, r *Run) {
				defer wg.Done()
				errs[i] = e.execute(r)
			}(i, r)
		}
		wg.Wait()
	} else {
		for i, r := range e.runs {
			errs[i] = e.execute(r)
		}
	}

	e.record()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}

func (e *Experiment) execute(r *Run) error {
	var bar *monitoring.ProgressBar
	if e.monitor != nil {
		bar = e.monitor.CreateProgressBar(r.Name(), uint64(len(e.values)))
		defer e.monitor.CompleteProgressBar(bar)
	}

	for seq, v := range e.values {
		if bar != nil {
			bar.IncrementInProgress(1)
		}

		record, err := r.write(seq, v, e.targetWord)
		if err != nil {
			return fmt.Errorf("%s: write %d (%v): %w", r.Strategy(), seq, v, err)
		}

		record.Experiment = e.id

		r.lock.Lock()
		r.records = append(r.records, record)
		r.lock.Unlock()

		if bar != nil {
			bar.MoveInProgressToFinished(1)
		}
	}

	return nil
}

func (e *Experiment) record() {
	if e.recorder == nil {
		return
	}

	for _, r := range e.runs {
		for _, rec := range r.Records() {
			e.recorder.InsertData(WriteTable, rec)
		}

		s := r.Summary()
		s.Experiment = e.id
		e.recorder.InsertData(SummaryTable, s)
	}

	e.recorder.Flush()
}
