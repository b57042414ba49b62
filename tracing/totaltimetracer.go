package tracing

import (
	"sync"

	"github.com/sarchlab/skrm/sim/hooking"
)

// TotalTimeTracer adds up the time spent on accepted tasks. For a racetrack
// device, this is the write latency. Overlapping tasks are simply summed.
type TotalTimeTracer struct {
	timeTeller hooking.TimeTeller
	filter     TaskFilter

	lock     sync.Mutex
	started  map[string]float64
	total    float64
	numTasks uint64
}

// NewTotalTimeTracer creates a TotalTimeTracer. With a nil timeTeller, the
// times stamped by CollectTrace are used.
func NewTotalTimeTracer(
	timeTeller hooking.TimeTeller,
	filter TaskFilter,
) *TotalTimeTracer {
	return &TotalTimeTracer{
		timeTeller: timeTeller,
		filter:     filter,
		started:    make(map[string]float64),
	}
}

// TotalTime returns the summed duration of the finished tasks.
func (t *TotalTimeTracer) TotalTime() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.total
}

// NumTasks returns the number of finished tasks.
func (t *TotalTimeTracer) NumTasks() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.numTasks
}

// AverageTime returns the mean duration of the finished tasks, or 0 before
// any task finishes.
func (t *TotalTimeTracer) AverageTime() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.numTasks == 0 {
		return 0
	}

	return t.total / float64(t.numTasks)
}

// StartTask remembers when an accepted task started.
func (t *TotalTimeTracer) StartTask(task Task) {
	start := now(t.timeTeller, task.StartTime)

	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.started[task.ID] = start
	t.lock.Unlock()
}

// StepTask is a no-op. Only the task boundaries matter.
func (t *TotalTimeTracer) StepTask(_ Task) {}

// EndTask adds the duration of a tracked task.
func (t *TotalTimeTracer) EndTask(task Task) {
	end := now(t.timeTeller, task.EndTime)

	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.started[task.ID]
	if !ok {
		return
	}

	delete(t.started, task.ID)
	t.total += end - start
	t.numTasks++
}
