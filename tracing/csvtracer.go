package tracing

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/sarchlab/skrm/sim/hooking"
	"github.com/tebeka/atexit"
)

// CSVTracer writes each finished task as one line of comma-separated values.
type CSVTracer struct {
	lock       sync.Mutex
	timeTeller hooking.TimeTeller
	w          io.Writer
	closer     io.Closer

	inflightTasks map[string]Task
	tasks         []Task
	bufferSize    int
}

// NewCSVTracer creates a CSVTracer that writes into w. The header line is
// written right away. With a nil timeTeller, the times stamped by
// CollectTrace are kept.
func NewCSVTracer(timeTeller hooking.TimeTeller, w io.Writer) *CSVTracer {
	t := &CSVTracer{
		timeTeller:    timeTeller,
		w:             w,
		inflightTasks: make(map[string]Task),
		bufferSize:    1000,
	}

	fmt.Fprintf(w, "ID, ParentID, Kind, What, Location, Start, End, Steps\n")

	return t
}

// CreateCSVTracer creates the file path + ".csv" and traces into it. An empty
// path generates a unique name. The file is flushed and closed at exit.
func CreateCSVTracer(
	timeTeller hooking.TimeTeller,
	path string,
) (*CSVTracer, error) {
	if path == "" {
		path = "skrm_trace_" + xid.New().String()
	}

	filename := path + ".csv"
	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("file %s already exists", filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	t := NewCSVTracer(timeTeller, file)
	t.closer = file

	atexit.Register(func() {
		if err := t.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing trace %s: %v\n", filename, err)
		}
	})

	return t, nil
}

// StartTask records the start time of the task.
func (t *CSVTracer) StartTask(task Task) {
	task.StartTime = now(t.timeTeller, task.StartTime)

	t.lock.Lock()
	t.inflightTasks[task.ID] = task
	t.lock.Unlock()
}

// StepTask counts the step for the task.
func (t *CSVTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	originalTask.Steps = append(originalTask.Steps, task.Steps...)
	t.inflightTasks[task.ID] = originalTask
}

// EndTask buffers the finished task.
func (t *CSVTracer) EndTask(task Task) {
	endTime := now(t.timeTeller, task.EndTime)

	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	delete(t.inflightTasks, task.ID)

	originalTask.EndTime = endTime
	t.tasks = append(t.tasks, originalTask)

	if len(t.tasks) >= t.bufferSize {
		t.flush()
	}
}

// Flush writes the buffered tasks.
func (t *CSVTracer) Flush() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.flush()
}

func (t *CSVTracer) flush() {
	for _, task := range t.tasks {
		fmt.Fprintf(t.w, "%s, %s, %s, %s, %s, %.10f, %.10f, %d\n",
			task.ID,
			task.ParentID,
			task.Kind,
			task.What,
			task.Location,
			task.StartTime,
			task.EndTime,
			len(task.Steps),
		)
	}

	t.tasks = nil
}

// Close flushes the buffered tasks and closes the file, if the tracer owns
// one.
func (t *CSVTracer) Close() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.flush()

	if t.closer == nil {
		return nil
	}

	err := t.closer.Close()
	t.closer = nil

	return err
}
