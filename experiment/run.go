package experiment

import (
	"sync"

	"github.com/sarchlab/skrm/racetrack"
)

// Run is the device of one strategy and the writes issued to it. It is safe
// to inspect a run while it is being executed.
type Run struct {
	lock    sync.Mutex
	device  *racetrack.SKRM
	records []Record
}

// Name returns the name of the device.
func (r *Run) Name() string {
	return r.device.Name()
}

// Strategy returns the name of the strategy of the device.
func (r *Run) Strategy() string {
	return r.device.Strategy().Name()
}

// Device returns the device. Use it only when the run is not executing.
func (r *Run) Device() *racetrack.SKRM {
	return r.device
}

// Records returns the records of the finished writes.
func (r *Run) Records() []Record {
	r.lock.Lock()
	defer r.lock.Unlock()

	return append([]Record(nil), r.records...)
}

// Summarize returns the cost report of the device.
func (r *Run) Summarize() racetrack.CostReport {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.device.Summarize()
}

// Render draws the storage of the device.
func (r *Run) Render() string {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.device.Render()
}

// Inspect calls fn with the device while no write is in progress.
func (r *Run) Inspect(fn func(state any)) {
	r.lock.Lock()
	defer r.lock.Unlock()

	fn(r.device)
}

// Summary adds up the records of the run.
func (r *Run) Summary() Summary {
	r.lock.Lock()
	defer r.lock.Unlock()

	s := Summary{
		Strategy:  r.device.Strategy().Name(),
		NumWrites: len(r.records),
	}

	for _, rec := range r.records {
		s.Inject += rec.Inject
		s.Detect += rec.Detect
		s.Remove += rec.Remove
		s.Shift += rec.Shift
		s.Latency += rec.Latency
		s.Energy += rec.Energy
	}

	return s
}

func (r *Run) write(seq int, v float32, targetWord int) (Record, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	d := r.device
	before := d.Counts()

	if err := d.Write(v, targetWord); err != nil {
		return Record{}, err
	}

	delta := d.Counts().Sub(before)
	report := racetrack.NewCostReport(delta, d.CostModel())
	pattern, _ := d.RenderWord(targetWord)

	return Record{
		Strategy:   d.Strategy().Name(),
		Seq:        seq,
		Value:      float64(v),
		Pattern:    pattern,
		TargetWord: targetWord,
		Inject:     delta.Inject,
		Detect:     delta.Detect,
		Remove:     delta.Remove,
		Shift:      delta.Shift,
		Latency:    report.TotalLatency(),
		Energy:     report.TotalEnergy(),
	}, nil
}
