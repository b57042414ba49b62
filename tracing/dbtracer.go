package tracing

import (
	"fmt"
	"sync"

	"github.com/sarchlab/skrm/datarecording"
	"github.com/sarchlab/skrm/sim/hooking"
)

// Tables written by DBTracer.
const (
	TaskTable = "trace"
	StepTable = "trace_steps"
)

type taskRow struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	Detail    string
	StartTime float64
	EndTime   float64
	NumSteps  int
}

type stepRow struct {
	TaskID string
	Seq    int
	Time   float64
	What   string
}

// DBTracer stores finished tasks, and optionally their steps, in a data
// recorder. A write becomes one row of TaskTable and each of its operations
// one row of StepTable.
type DBTracer struct {
	timeTeller hooking.TimeTeller
	backend    datarecording.DataRecorder
	withSteps  bool

	lock     sync.Mutex
	inflight map[string]Task
}

// NewDBTracer creates the tables and returns the tracer. With a nil
// timeTeller, the times stamped by CollectTrace are kept.
func NewDBTracer(
	timeTeller hooking.TimeTeller,
	recorder datarecording.DataRecorder,
	withSteps bool,
) *DBTracer {
	recorder.CreateTable(TaskTable, taskRow{})
	if withSteps {
		recorder.CreateTable(StepTable, stepRow{})
	}

	return &DBTracer{
		timeTeller: timeTeller,
		backend:    recorder,
		withSteps:  withSteps,
		inflight:   make(map[string]Task),
	}
}

// StartTask tracks the task. It panics if the task misses a field that
// StartTask always sets.
func (t *DBTracer) StartTask(task Task) {
	if task.ID == "" || task.Kind == "" || task.What == "" ||
		task.Location == "" {
		panic(fmt.Sprintf("incomplete task %+v", task))
	}

	task.StartTime = now(t.timeTeller, task.StartTime)

	t.lock.Lock()
	t.inflight[task.ID] = task
	t.lock.Unlock()
}

// StepTask appends the step to its task.
func (t *DBTracer) StepTask(task Task) {
	step := task.Steps[0]
	step.Time = now(t.timeTeller, step.Time)

	t.lock.Lock()
	defer t.lock.Unlock()

	tracked, ok := t.inflight[task.ID]
	if !ok {
		return
	}

	tracked.Steps = append(tracked.Steps, step)
	t.inflight[task.ID] = tracked
}

// EndTask writes the task and its steps.
func (t *DBTracer) EndTask(task Task) {
	end := now(t.timeTeller, task.EndTime)

	t.lock.Lock()
	defer t.lock.Unlock()

	tracked, ok := t.inflight[task.ID]
	if !ok {
		return
	}

	delete(t.inflight, task.ID)
	tracked.EndTime = end
	t.insert(tracked)
}

func (t *DBTracer) insert(task Task) {
	detail := ""
	if task.Detail != nil {
		detail = fmt.Sprintf("%+v", task.Detail)
	}

	t.backend.InsertData(TaskTable, taskRow{
		ID:        task.ID,
		ParentID:  task.ParentID,
		Kind:      task.Kind,
		What:      task.What,
		Location:  task.Location,
		Detail:    detail,
		StartTime: task.StartTime,
		EndTime:   task.EndTime,
		NumSteps:  len(task.Steps),
	})

	if !t.withSteps {
		return
	}

	for i, s := range task.Steps {
		t.backend.InsertData(StepTable, stepRow{
			TaskID: task.ID,
			Seq:    i,
			Time:   s.Time,
			What:   s.What,
		})
	}
}

// Terminate drops the unfinished tasks and flushes the recorder.
func (t *DBTracer) Terminate() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.inflight = make(map[string]Task)
	t.backend.Flush()
}
