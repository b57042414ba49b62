package tracing

import "sync"

// StepCountTracer counts steps by name. On a racetrack device the step names
// are the operation kinds, so the tracer reproduces the operation counters of
// the writes it accepts.
type StepCountTracer struct {
	filter TaskFilter

	lock     sync.Mutex
	inflight map[string]map[string]bool
	names    []string
	steps    map[string]uint64
	tasks    map[string]uint64
}

// NewStepCountTracer creates a StepCountTracer that only counts the tasks
// accepted by filter.
func NewStepCountTracer(filter TaskFilter) *StepCountTracer {
	return &StepCountTracer{
		filter:   filter,
		inflight: make(map[string]map[string]bool),
		steps:    make(map[string]uint64),
		tasks:    make(map[string]uint64),
	}
}

// StepNames returns the step names in the order they were first counted.
func (t *StepCountTracer) StepNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return append([]string(nil), t.names...)
}

// StepCount returns how many steps called name were taken.
func (t *StepCountTracer) StepCount(name string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.steps[name]
}

// TaskCount returns how many tasks took at least one step called name.
func (t *StepCountTracer) TaskCount(name string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.tasks[name]
}

// StartTask starts tracking the task if the filter accepts it.
func (t *StepCountTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflight[task.ID] = make(map[string]bool)
	t.lock.Unlock()
}

// StepTask counts the step of a tracked task.
func (t *StepCountTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	seen, ok := t.inflight[task.ID]
	if !ok {
		return
	}

	name := task.Steps[0].What
	if _, counted := t.steps[name]; !counted {
		t.names = append(t.names, name)
	}
	t.steps[name]++

	if !seen[name] {
		seen[name] = true
		t.tasks[name]++
	}
}

// EndTask stops tracking the task.
func (t *StepCountTracer) EndTask(task Task) {
	t.lock.Lock()
	delete(t.inflight, task.ID)
	t.lock.Unlock()
}
